package sedscript

import (
	"io"
	"strconv"
	"strings"

	"github.com/rcarmo/hawksed/pkg/sedaddr"
	"github.com/rcarmo/hawksed/pkg/sedregex"
	"github.com/rcarmo/hawksed/pkg/sedstream"
)

// Options are the compile-time traits from spec.md §6.
type Options struct {
	ExtendedRegex              bool
	NonstandardRegexExtensions bool
	Strict                     bool
	ExtendedAddress            bool
	SameLine                   bool
	EnsureNewline              bool
	KeepTrailingBackslash      bool

	// OpenAux, when set, is used by Compile's post-pass to open every
	// w/W/s///w target eagerly (spec §4.3 "Open auxiliary sinks eagerly"),
	// so an unwritable path is a compile error rather than something that
	// only surfaces the first time a never-matching address finally
	// matches. Left nil, aux sinks are opened lazily by the executor on
	// first write instead.
	OpenAux func(path string) (io.WriteCloser, error)
}

const maxGroupDepth = 128

// parser walks a fully-assembled script source (already concatenated by
// the caller from -e/-f elements, per spec §4.1's squeezed-newline rule)
// character by character, building the flat command list described in
// command.go. It mirrors the teacher's own sed.go parser structure
// (a single *parser with position/line/col fields and one parseX method
// per grammar production) but never recurses into nested command lists:
// "{" emits a synthetic CodeGroupTest command instead of opening a new
// sub-list, per the Design Notes in spec.md §9.
type parser struct {
	src        string
	sourceName string
	pos        int
	line, col  int
	opts       Options

	cmds     []*Command
	labels   map[string]*Command
	groupStk []*Command // open CodeGroupTest commands awaiting their "}"
	auxPaths []string
	auxSeen  map[string]bool
	auxLocs  map[string]Location
}

// Compile parses source into a Program. sourceName identifies the script
// element for error locations (spec §4.3's "Error surface"). If
// opts.OpenAux is set, every w/W/s///w target is opened eagerly once
// label resolution succeeds, so an unwritable path is reported as a
// compile error instead of surfacing only when some address finally
// matches at runtime.
func Compile(source, sourceName string, opts Options) (*Program, error) {
	if source == "" {
		return nil, newErr(Location{Source: sourceName, Line: 1, Col: 1}, ErrScriptMissing, "script is empty")
	}
	p := &parser{
		src:        source,
		sourceName: sourceName,
		line:       1,
		col:        1,
		opts:       opts,
		labels:     make(map[string]*Command),
		auxSeen:    make(map[string]bool),
		auxLocs:    make(map[string]Location),
	}
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	if len(p.groupStk) > 0 {
		return nil, newErr(p.loc(), ErrUnbalancedGroup, "unterminated '{' group")
	}
	prog := &Program{Commands: p.cmds, Labels: p.labels, AuxPaths: p.auxPaths}
	if err := resolveProgram(prog); err != nil {
		return nil, err
	}
	if opts.OpenAux != nil {
		sinks := make(map[string]*sedstream.AuxSink, len(prog.AuxPaths))
		for _, path := range prog.AuxPaths {
			sink, err := sedstream.OpenAuxSink(path, opts.OpenAux)
			if err != nil {
				for _, s := range sinks {
					_ = s.Close()
				}
				return nil, newErr(p.auxLocs[path], ErrAuxSinkOpenFailed, "cannot open %q: %v", path, err)
			}
			sinks[path] = sink
		}
		prog.AuxSinks = sinks
	}
	return prog, nil
}

func (p *parser) loc() Location {
	return Location{Source: p.sourceName, Line: p.line, Col: p.col}
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

func (p *parser) skipBlankAndSemis() {
	for !p.atEnd() {
		c := p.peek()
		switch c {
		case ' ', '\t', '\r', '\n', ';':
			p.advance()
		case '#':
			for !p.atEnd() && p.peek() != '\n' {
				p.advance()
			}
		default:
			return
		}
	}
}

// parseProgram consumes commands until EOF.
func (p *parser) parseProgram() error {
	for {
		p.skipBlankAndSemis()
		if p.atEnd() {
			return nil
		}
		if err := p.parseOneCommand(); err != nil {
			return err
		}
	}
}

func (p *parser) emit(c *Command) {
	p.cmds = append(p.cmds, c)
}

// parseOneCommand parses a single addressed command (or ':' / '{' / '}',
// which are address-exempt per the table in spec §4.3).
func (p *parser) parseOneCommand() error {
	startLoc := p.loc()

	if p.peek() == ':' {
		p.advance()
		return p.parseLabel(startLoc)
	}
	if p.peek() == '}' {
		p.advance()
		return p.closeGroup(startLoc)
	}

	addr1, addr2, err := p.parseAddressPair()
	if err != nil {
		return err
	}

	negated := false
	for p.peek() == '!' {
		p.advance()
		negated = !negated
		p.skipHSpace()
	}

	p.skipHSpace()
	if p.atEnd() {
		return newErr(p.loc(), ErrCommandMissing, "expected a command after address")
	}

	code := p.advance()

	switch code {
	case '{':
		// CodeGroupTest stores the address/negation exactly as written;
		// the executor enters the block (falls through to Next) when it
		// matches and skips to Target (the matching '}') when it doesn't
		// - see sedexec's dispatch for CodeGroupTest.
		if len(p.groupStk) >= maxGroupDepth {
			return newErr(startLoc, ErrGroupNestingTooDeep, "group nesting exceeds %d", maxGroupDepth)
		}
		cmd := &Command{Loc: startLoc, Code: CodeGroupTest, RawCode: '{', Negated: negated, Addr1: addr1, Addr2: addr2}
		p.emit(cmd)
		p.groupStk = append(p.groupStk, cmd)
		return nil
	case 'q', 'Q':
		if p.opts.Strict && addr2 != nil {
			return newErr(startLoc, ErrAddressInvalidForCommand, "%q takes at most one address in strict mode", code)
		}
		p.emit(&Command{Loc: startLoc, Code: Code(code), RawCode: code, Negated: negated, Addr1: addr1, Addr2: addr2})
		return p.expectTerminator()
	case 'a', 'i', 'c':
		if p.opts.Strict && addr2 != nil && code != 'c' {
			return newErr(startLoc, ErrAddressInvalidForCommand, "%q takes at most one address in strict mode", code)
		}
		text, err := p.parseTextBlock()
		if err != nil {
			return err
		}
		p.emit(&Command{Loc: startLoc, Code: Code(code), RawCode: code, Negated: negated, Addr1: addr1, Addr2: addr2, Text: text})
		return nil
	case '=':
		if p.opts.Strict && addr2 != nil {
			return newErr(startLoc, ErrAddressInvalidForCommand, "'=' takes at most one address in strict mode")
		}
		p.emit(&Command{Loc: startLoc, Code: Code(code), RawCode: code, Negated: negated, Addr1: addr1, Addr2: addr2})
		return p.expectTerminator()
	case 'd', 'D', 'p', 'P', 'l', 'h', 'H', 'g', 'G', 'x', 'n', 'N', 'z':
		p.emit(&Command{Loc: startLoc, Code: Code(code), RawCode: code, Negated: negated, Addr1: addr1, Addr2: addr2})
		return p.expectTerminator()
	case 'b', 't', 'T':
		label := p.parseOptionalLabelRef()
		p.emit(&Command{Loc: startLoc, Code: Code(code), RawCode: code, Negated: negated, Addr1: addr1, Addr2: addr2, TargetLabel: label})
		return p.expectTerminator()
	case 'r', 'R', 'w', 'W':
		path, err := p.parseFilePath()
		if err != nil {
			return err
		}
		cmd := &Command{Loc: startLoc, Code: Code(code), RawCode: code, Negated: negated, Addr1: addr1, Addr2: addr2, Path: path}
		p.emit(cmd)
		if code == 'w' || code == 'W' {
			p.registerAux(path, startLoc)
		}
		return nil
	case 's':
		return p.parseSubstitution(startLoc, negated, addr1, addr2)
	case 'y':
		return p.parseTranslit(startLoc, negated, addr1, addr2)
	case 'C':
		return p.parseCut(startLoc, negated, addr1, addr2)
	default:
		return newErr(startLoc, ErrUnknownCommand, "unknown command %q", code)
	}
}

func (p *parser) skipHSpace() {
	for !p.atEnd() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance()
	}
}

// expectTerminator consumes the ';'/'\n'/'#'/EOF that must follow a
// no-payload command.
func (p *parser) expectTerminator() error {
	p.skipHSpace()
	if p.atEnd() {
		return nil
	}
	switch p.peek() {
	case ';', '\n':
		p.advance()
		return nil
	case '}':
		return nil
	case '#':
		for !p.atEnd() && p.peek() != '\n' {
			p.advance()
		}
		return nil
	}
	return newErr(p.loc(), ErrExpectedSemicolonOrEnd, "expected ';' or newline, found %q", p.peek())
}

func (p *parser) closeGroup(loc Location) error {
	if len(p.groupStk) == 0 {
		return newErr(loc, ErrUnbalancedGroup, "unmatched '}'")
	}
	open := p.groupStk[len(p.groupStk)-1]
	p.groupStk = p.groupStk[:len(p.groupStk)-1]
	noop := &Command{Loc: loc, Code: CodeNoop, RawCode: '}'}
	p.emit(noop)
	open.Target = noop // Target marks "skip to this noop"; resolveProgram leaves it as set here
	return nil
}

func (p *parser) parseLabel(loc Location) error {
	p.skipHSpace()
	start := p.pos
	for !p.atEnd() {
		c := p.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';' {
			break
		}
		p.advance()
	}
	name := p.src[start:p.pos]
	if name == "" {
		if p.opts.Strict {
			return newErr(loc, ErrEmptyLabelInStrictMode, "empty label")
		}
		p.emit(&Command{Loc: loc, Code: CodeNoop, RawCode: ':'})
		return nil
	}
	if _, dup := p.labels[name]; dup {
		return newErr(loc, ErrDuplicateLabel, "duplicate label %q", name)
	}
	noop := &Command{Loc: loc, Code: CodeNoop, RawCode: ':', Text: name}
	p.emit(noop)
	p.labels[name] = noop
	return nil
}

func (p *parser) parseOptionalLabelRef() string {
	p.skipHSpace()
	start := p.pos
	for !p.atEnd() {
		c := p.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';' || c == '}' {
			break
		}
		p.advance()
	}
	return p.src[start:p.pos]
}

// --- addresses ---

func (p *parser) parseAddressPair() (*sedaddr.Address, *sedaddr.Address, error) {
	p.skipBlankAndSemis()
	addrLoc := p.loc()
	a1, stepK, hadStep, err := p.parseOneAddress(true)
	if err != nil {
		return nil, nil, err
	}
	if a1 == nil {
		return nil, nil, nil
	}
	if hadStep {
		// "0~3" - Line(0) paired with a step is explicitly legal (spec §3).
		return a1, &sedaddr.Address{Kind: sedaddr.Step, K: stepK}, nil
	}
	if p.peek() != ',' {
		// Bare "0" is legal only as the first element of "0,/re/" or
		// "0~step"; standing alone it is a compile error (spec §3).
		if a1.Kind == sedaddr.Line && a1.N == 0 {
			return nil, nil, newErr(addrLoc, ErrZeroLineAddressInvalid, "line address 0 is only valid as the first address of a 0,/regexp/ range")
		}
		return a1, nil, nil
	}
	p.advance()
	p.skipHSpace()
	a2, err := p.parseSecondAddress()
	if err != nil {
		return nil, nil, err
	}
	if a1.Kind == sedaddr.Line && a1.N == 0 && a2.Kind != sedaddr.Regex && a2.Kind != sedaddr.EmptyRegex {
		return nil, nil, newErr(addrLoc, ErrZeroLineAddressInvalid, "line address 0 may only be paired with a regex second address")
	}
	return a1, a2, nil
}

// parseOneAddress parses a first address. If it is the GNU-style
// "first~step" shorthand (first~step), it reports hadStep with the K
// value so the caller packages it as (Line(n), Step(k)) per spec §3.
func (p *parser) parseOneAddress(isFirst bool) (*sedaddr.Address, uint64, bool, error) {
	switch p.peek() {
	case '$':
		p.advance()
		return &sedaddr.Address{Kind: sedaddr.LastLine}, 0, false, nil
	case '/', '\\':
		return p.parseRegexAddress()
	}
	if isDigit(p.peek()) {
		loc := p.loc()
		n := p.parseNumber()
		if p.opts.ExtendedAddress && p.peek() == '~' {
			p.advance()
			k := p.parseNumber()
			if k == 0 {
				return nil, 0, false, newErr(loc, ErrInvalidSecondAddress, "step address requires k > 0")
			}
			return &sedaddr.Address{Kind: sedaddr.Line, N: n}, k, true, nil
		}
		return &sedaddr.Address{Kind: sedaddr.Line, N: n}, 0, false, nil
	}
	return nil, 0, false, nil
}

func (p *parser) parseSecondAddress() (*sedaddr.Address, error) {
	switch p.peek() {
	case '+':
		loc := p.loc()
		p.advance()
		n := p.parseNumber()
		if !p.opts.ExtendedAddress {
			return nil, newErr(loc, ErrInvalidSecondAddress, "relative address requires the extended-address trait")
		}
		return &sedaddr.Address{Kind: sedaddr.RelLine, N: n}, nil
	case '~':
		loc := p.loc()
		p.advance()
		k := p.parseNumber()
		if !p.opts.ExtendedAddress {
			return nil, newErr(loc, ErrInvalidSecondAddress, "relative address requires the extended-address trait")
		}
		if k == 0 {
			return nil, newErr(loc, ErrInvalidSecondAddress, "~N address requires N > 0")
		}
		return &sedaddr.Address{Kind: sedaddr.RelLineMultiple, K: k}, nil
	}
	a, _, _, err := p.parseOneAddress(false)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, newErr(p.loc(), ErrInvalidSecondAddress, "expected a second address after ','")
	}
	return a, nil
}

func (p *parser) parseNumber() uint64 {
	start := p.pos
	for !p.atEnd() && isDigit(p.peek()) {
		p.advance()
	}
	n, _ := strconv.ParseUint(p.src[start:p.pos], 10, 64)
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseRegexAddress parses "/re/" or "\cREc" with an optional trailing
// "I" case-insensitivity modifier, per spec §4.3's delimiter rule.
func (p *parser) parseRegexAddress() (*sedaddr.Address, uint64, bool, error) {
	loc := p.loc()
	body, caseInsensitive, err := p.parseDelimitedRegexBody()
	if err != nil {
		return nil, 0, false, err
	}
	if body == "" {
		if caseInsensitive {
			return nil, 0, false, newErr(loc, ErrRegexIncomplete, "I modifier is rejected on an empty regex")
		}
		return &sedaddr.Address{Kind: sedaddr.EmptyRegex}, 0, false, nil
	}
	m, err := sedregex.Build(processEscapes(body, ctxRegex), caseInsensitive, p.opts.ExtendedRegex)
	if err != nil {
		return nil, 0, false, newErr(loc, ErrRegexIncomplete, "%v", err)
	}
	return &sedaddr.Address{Kind: sedaddr.Regex, Re: m}, 0, false, nil
}

// parseDelimitedRegexBody consumes a regex body, tracking bracket-
// expression and POSIX-class depth so the delimiter loses its special
// meaning inside "[...]"/"[:...:]", per spec §4.3.
func (p *parser) parseDelimitedRegexBody() (body string, caseInsensitive bool, err error) {
	loc := p.loc()
	delim := p.advance()
	if delim == '\\' {
		if p.atEnd() {
			return "", false, newErr(loc, ErrRegexIncomplete, "expected delimiter after backslash")
		}
		delim = p.advance()
	} else if delim != '/' {
		return "", false, newErr(loc, ErrRegexIncomplete, "expected '/' or '\\' to start a regex")
	}
	if delim == '\\' {
		return "", false, newErr(loc, ErrBackslashIsBadDelimiter, "backslash cannot be used as a regex delimiter")
	}

	var b strings.Builder
	inClass, inPosix := false, false
	for {
		if p.atEnd() {
			return "", false, newErr(loc, ErrRegexIncomplete, "unterminated regex body")
		}
		c := p.advance()
		if c == '\\' && !p.atEnd() {
			b.WriteByte(c)
			b.WriteByte(p.advance())
			continue
		}
		if inClass {
			if inPosix {
				if c == ':' && p.peek() == ']' {
					inPosix = false
					b.WriteByte(c)
					b.WriteByte(p.advance())
					continue
				}
				b.WriteByte(c)
				continue
			}
			if c == '[' && p.peek() == ':' {
				inPosix = true
				b.WriteByte(c)
				continue
			}
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '[' {
			inClass = true
			b.WriteByte(c)
			continue
		}
		if c == delim {
			break
		}
		if c == '\n' {
			return "", false, newErr(loc, ErrRegexIncomplete, "newline inside regex body")
		}
		b.WriteByte(c)
	}
	if p.peek() == 'I' {
		p.advance()
		caseInsensitive = true
	}
	return b.String(), caseInsensitive, nil
}

// --- text blocks (a/i/c) ---

func (p *parser) parseTextBlock() (string, error) {
	p.skipHSpace()
	if p.opts.SameLine && p.peek() != '\\' && p.peek() != '\n' {
		start := p.pos
		for !p.atEnd() && p.peek() != '\n' {
			p.advance()
		}
		return processEscapes(p.src[start:p.pos], ctxText), nil
	}
	if p.peek() == '\\' {
		p.advance()
		if p.peek() == '\n' {
			p.advance()
		}
	}
	var b strings.Builder
	for {
		if p.atEnd() {
			break
		}
		c := p.advance()
		if c == '\\' {
			if p.atEnd() {
				if p.opts.KeepTrailingBackslash {
					b.WriteByte('\\')
				}
				break
			}
			n := p.advance()
			if n == '\n' {
				b.WriteByte('\n')
				continue
			}
			b.WriteByte(n)
			continue
		}
		if c == '\n' {
			break
		}
		b.WriteByte(c)
	}
	text := b.String()
	if p.opts.EnsureNewline && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text, nil
}

// --- file paths ---

func (p *parser) parseFilePath() (string, error) {
	loc := p.loc()
	p.skipHSpace()
	start := p.pos
	for !p.atEnd() && p.peek() != '\n' {
		p.advance()
	}
	raw := strings.TrimRight(p.src[start:p.pos], " \t\r")
	if raw == "" {
		return "", newErr(loc, ErrFileNameInvalid, "empty file name")
	}
	path, err := processPathEscapes(raw)
	if err != nil {
		return "", newErr(loc, ErrFileNameInvalid, "%v", err)
	}
	if !p.atEnd() {
		p.advance() // trailing newline
	}
	return path, nil
}

func (p *parser) registerAux(path string, loc Location) {
	if p.auxSeen[path] {
		return
	}
	p.auxSeen[path] = true
	p.auxPaths = append(p.auxPaths, path)
	p.auxLocs[path] = loc
}
