package sedscript

import (
	"strconv"
	"strings"

	"github.com/rcarmo/hawksed/pkg/cutsel"
	"github.com/rcarmo/hawksed/pkg/sedaddr"
	"github.com/rcarmo/hawksed/pkg/sedregex"
)

// parseSubstitution parses the 's' command body: delimiter, regex body,
// delimiter, replacement body, delimiter, flags, per spec §4.3's table.
func (p *parser) parseSubstitution(loc Location, negated bool, addr1, addr2 *sedaddr.Address) error {
	if p.atEnd() {
		return newErr(loc, ErrRegexIncomplete, "'s' requires a delimiter")
	}
	delim := p.peek()
	if delim == '\\' {
		return newErr(loc, ErrBackslashIsBadDelimiter, "backslash cannot be used as a delimiter")
	}
	if delim == '\n' {
		return newErr(loc, ErrRegexIncomplete, "'s' requires a delimiter")
	}
	p.advance()

	reBody, err := p.readDelimitedPart(delim, loc)
	if err != nil {
		return err
	}
	replBody, err := p.readDelimitedPart(delim, loc)
	if err != nil {
		return err
	}

	sub := &Substitution{}
	if reBody == "" {
		sub.EmptyRegex = true
	}

	caseInsensitive := false
	for !p.atEnd() {
		c := p.peek()
		switch c {
		case 'g':
			sub.Global = true
			p.advance()
		case 'p':
			sub.Print = true
			p.advance()
		case 'i', 'I':
			if sub.EmptyRegex {
				return newErr(loc, ErrRegexIncomplete, "I modifier is rejected on an empty regex")
			}
			caseInsensitive = true
			p.advance()
		case 'k':
			sub.DiscardUnmatched = true
			p.advance()
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			numLoc := p.loc()
			n := p.parseNumber()
			if n == 0 {
				return newErr(numLoc, ErrOccurrenceIsZero, "occurrence must be positive")
			}
			if n > 1<<31 {
				return newErr(numLoc, ErrOccurrenceTooLarge, "occurrence too large")
			}
			sub.Occurrence = int(n)
		case 'w':
			p.advance()
			path, err := p.parseFilePath()
			if err != nil {
				return err
			}
			sub.WritePath = path
			p.registerAux(path, loc)
			goto flagsDone
		default:
			goto flagsDone
		}
	}
flagsDone:
	sub.CaseInsensitive = caseInsensitive

	if !sub.EmptyRegex {
		m, err := sedregex.Build(processEscapes(reBody, ctxRegex), caseInsensitive, p.opts.ExtendedRegex)
		if err != nil {
			return newErr(loc, ErrRegexIncomplete, "%v", err)
		}
		sub.Re = m
	}
	sub.Replacement = parseReplacementTemplate(processEscapes(replBody, ctxReplacement))

	p.emit(&Command{Loc: loc, Code: Code('s'), RawCode: 's', Negated: negated, Addr1: addr1, Addr2: addr2, Sub: sub})
	return p.expectTerminator()
}

// readDelimitedPart reads up to (not including) the next unescaped
// occurrence of delim, honoring backslash-escapes (which are kept
// verbatim so later escape processing sees the full \x sequences).
func (p *parser) readDelimitedPart(delim byte, loc Location) (string, error) {
	var b strings.Builder
	for {
		if p.atEnd() {
			return "", newErr(loc, ErrRegexIncomplete, "unterminated 's' command")
		}
		c := p.advance()
		if c == '\\' {
			if p.atEnd() {
				return "", newErr(loc, ErrRegexIncomplete, "trailing backslash in 's' command")
			}
			n := p.advance()
			if n == delim {
				b.WriteByte(delim)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(n)
			continue
		}
		if c == delim {
			return b.String(), nil
		}
		if c == '\n' {
			return "", newErr(loc, ErrRegexIncomplete, "newline inside 's' command")
		}
		b.WriteByte(c)
	}
}

// parseReplacementTemplate splits an already-escape-processed replacement
// body into literal/whole-match/group parts, per spec §4.5.1 step f.
func parseReplacementTemplate(s string) []ReplPart {
	var parts []ReplPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, ReplPart{Kind: ReplLiteral, Lit: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '&' {
			flush()
			parts = append(parts, ReplPart{Kind: ReplWhole})
			continue
		}
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			if next >= '1' && next <= '9' {
				flush()
				g, _ := strconv.Atoi(string(next))
				parts = append(parts, ReplPart{Kind: ReplGroup, Group: g})
				i++
				continue
			}
			// "\c for any other c -> literal c"; a bare "\\" -> literal "\".
			lit.WriteByte(next)
			i++
			continue
		}
		lit.WriteByte(c)
	}
	flush()
	return parts
}

// parseTranslit parses the 'y' command: two equal-length bodies after
// escape processing.
func (p *parser) parseTranslit(loc Location, negated bool, addr1, addr2 *sedaddr.Address) error {
	if p.atEnd() {
		return newErr(loc, ErrRegexIncomplete, "'y' requires a delimiter")
	}
	delim := p.peek()
	if delim == '\\' || delim == '\n' {
		return newErr(loc, ErrBackslashIsBadDelimiter, "'y' delimiter must not be backslash or newline")
	}
	p.advance()
	fromBody, err := p.readDelimitedPart(delim, loc)
	if err != nil {
		return err
	}
	toBody, err := p.readDelimitedPart(delim, loc)
	if err != nil {
		return err
	}
	from := []rune(processEscapes(fromBody, ctxTranslit))
	to := []rune(processEscapes(toBody, ctxTranslit))
	if len(from) != len(to) {
		return newErr(loc, ErrTranslitLengthMismatch, "'y' source and target must be the same length")
	}
	p.emit(&Command{Loc: loc, Code: Code('y'), RawCode: 'y', Negated: negated, Addr1: addr1, Addr2: addr2,
		Translit: &Translit{From: from, To: to}})
	return p.expectTerminator()
}

// parseCut parses the 'C' command: delimiter, selector list, delimiter,
// optional "dX"/"DXY" delimiter spec, delimiter, option flags, per spec
// §4.3/§4.5.2. "dX" sets a single input+output delimiter to X; "DXY" sets
// the input delimiter to X and the output delimiter to Y.
func (p *parser) parseCut(loc Location, negated bool, addr1, addr2 *sedaddr.Address) error {
	if p.atEnd() {
		return newErr(loc, ErrInvalidCutSelector, "'C' requires a delimiter")
	}
	delim := p.peek()
	if delim == '\\' || delim == '\n' {
		return newErr(loc, ErrBackslashIsBadDelimiter, "'C' delimiter must not be backslash or newline")
	}
	p.advance()
	selBody, err := p.readDelimitedPart(delim, loc)
	if err != nil {
		return err
	}
	ranges, err := cutsel.ParseRanges(selBody)
	if err != nil {
		return newErr(loc, ErrInvalidCutSelector, "%v", err)
	}
	spec := cutsel.NewSpec()
	spec.Ranges = ranges

	delimSpecBody, err := p.readDelimitedPart(delim, loc)
	if err != nil {
		return err
	}
	if delimSpecBody != "" {
		switch delimSpecBody[0] {
		case 'd':
			if len(delimSpecBody) != 2 {
				return newErr(loc, ErrInvalidCutSelector, "'d' delimiter spec takes exactly one character")
			}
			spec.InDelim, spec.OutDelim = delimSpecBody[1], delimSpecBody[1]
		case 'D':
			if len(delimSpecBody) != 3 {
				return newErr(loc, ErrInvalidCutSelector, "'D' delimiter spec takes exactly two characters")
			}
			spec.InDelim, spec.OutDelim = delimSpecBody[1], delimSpecBody[2]
		default:
			return newErr(loc, ErrInvalidCutSelector, "delimiter spec must start with 'd' or 'D'")
		}
	}

	for !p.atEnd() && p.peek() != ';' && p.peek() != '\n' && p.peek() != '}' {
		switch p.peek() {
		case 'f':
			spec.Fold = true
			p.advance()
		case 'w':
			spec.Whitespace = true
			p.advance()
		case 'd':
			spec.DropUndelimited = true
			p.advance()
		case ' ', '\t':
			p.advance()
		default:
			return newErr(p.loc(), ErrInvalidCutSelector, "unrecognized cut option %q", p.peek())
		}
	}

	p.emit(&Command{Loc: loc, Code: Code('C'), RawCode: 'C', Negated: negated, Addr1: addr1, Addr2: addr2, Cut: spec})
	return p.expectTerminator()
}
