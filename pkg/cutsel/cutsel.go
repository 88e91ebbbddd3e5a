// Package cutsel implements the char/field selector grammar shared by the
// standalone cut applet and sed's C (cut) command (spec.md §4.3's cut-spec
// payload and §4.5.2). It is grounded on original_source/bin/cut.c and
// original_source/lib/std-cut.c, the historical hawk cut engine this
// grammar reproduces: ranges of the form N, N-M, N-, -M, selected per
// character or per field, with ascending and descending directions, a
// configurable input/output delimiter pair, and fold/whitespace/drop
// options.
package cutsel

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes a character range from a field range.
type Kind int

const (
	Char Kind = iota
	Field
)

// Range is a single (kind, start, end) selector. Start/End are 1-origin
// inclusive; HasStart/HasEnd false means an open end ("-n" or "n-").
// Start > End (both set) denotes a descending range.
type Range struct {
	Kind             Kind
	Start, End       int
	HasStart, HasEnd bool
}

// Spec is a fully-parsed cut selector program.
type Spec struct {
	Ranges          []Range
	InDelim         byte
	OutDelim        byte
	Fold            bool // f: fold consecutive input delimiters into one
	Whitespace      bool // w: treat any whitespace run as the delimiter
	DropUndelimited bool // d: drop the line entirely if it has no delimiter
}

const defaultDelim = ' '

// NewSpec returns a Spec with the default space delimiter on both sides.
func NewSpec() *Spec {
	return &Spec{InDelim: defaultDelim, OutDelim: defaultDelim}
}

// ParseRanges parses a comma-separated selector list such as
// "c1-3,f2,f5-,c-7" (the leading prefix is required on every element).
func ParseRanges(s string) ([]Range, error) {
	var ranges []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("invalid cut selector: empty element")
		}
		var kind Kind
		switch part[0] {
		case 'c':
			kind = Char
		case 'f':
			kind = Field
		default:
			return nil, fmt.Errorf("invalid cut selector %q: must start with 'c' or 'f'", part)
		}
		r, err := parseOneRange(part[1:], kind)
		if err != nil {
			return nil, fmt.Errorf("invalid cut selector %q: %w", part, err)
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("invalid cut selector: empty list")
	}
	return ranges, nil
}

func parseOneRange(spec string, kind Kind) (Range, error) {
	r := Range{Kind: kind}
	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		n, err := strconv.Atoi(spec)
		if err != nil || n < 1 {
			return r, fmt.Errorf("bad number %q", spec)
		}
		r.Start, r.HasStart = n, true
		r.End, r.HasEnd = n, true
		return r, nil
	}
	left, right := spec[:dash], spec[dash+1:]
	if left != "" {
		n, err := strconv.Atoi(left)
		if err != nil || n < 1 {
			return r, fmt.Errorf("bad range start %q", left)
		}
		r.Start, r.HasStart = n, true
	}
	if right != "" {
		n, err := strconv.Atoi(right)
		if err != nil || n < 1 {
			return r, fmt.Errorf("bad range end %q", right)
		}
		r.End, r.HasEnd = n, true
	}
	if !r.HasStart && !r.HasEnd {
		return r, fmt.Errorf("range has neither bound")
	}
	return r, nil
}

// splitFields tokenizes text on spec's delimiter rule, reporting whether
// any delimiter was actually observed.
func splitFields(text string, spec *Spec) (fields []string, delimited bool) {
	if spec.Whitespace {
		cur := strings.Builder{}
		for _, r := range text {
			if r == ' ' || r == '\t' {
				delimited = true
				if cur.Len() > 0 {
					fields = append(fields, cur.String())
					cur.Reset()
				}
				continue
			}
			cur.WriteRune(r)
		}
		if cur.Len() > 0 || len(fields) == 0 {
			fields = append(fields, cur.String())
		}
		return fields, delimited
	}

	if strings.IndexByte(text, spec.InDelim) < 0 {
		return []string{text}, false
	}
	delimited = true
	if !spec.Fold {
		return strings.Split(text, string(spec.InDelim)), true
	}
	raw := strings.Split(text, string(spec.InDelim))
	for _, f := range raw {
		if f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = append(fields, "")
	}
	return fields, true
}

// charIndices resolves a char range against the text length, returning
// the 0-origin indexes it selects: in ascending order for an ascending
// range, in reverse order for a descending one.
func charIndices(r Range, length int) []int {
	start := 1
	if r.HasStart {
		start = r.Start
	}
	end := length
	if r.HasEnd {
		end = r.End
	} else if start > length {
		return nil // "N-" starting past the end selects nothing
	}
	var idx []int
	if start <= end {
		for i := start; i <= end && i <= length; i++ {
			if i >= 1 {
				idx = append(idx, i-1)
			}
		}
	} else {
		for i := start; i >= end && i >= 1; i-- {
			if i <= length {
				idx = append(idx, i-1)
			}
		}
	}
	return idx
}

func fieldIndices(r Range, count int) []int {
	start := 1
	if r.HasStart {
		start = r.Start
	}
	end := count
	if r.HasEnd {
		end = r.End
	} else if start > count {
		return nil // "N-" starting past the last field selects nothing
	}
	var idx []int
	if start <= end {
		for i := start; i <= end && i <= count; i++ {
			if i >= 1 {
				idx = append(idx, i-1)
			}
		}
	} else {
		for i := start; i >= end && i >= 1; i-- {
			if i <= count {
				idx = append(idx, i-1)
			}
		}
	}
	return idx
}

// emitState tracks whether the last emission was a char slice or a field,
// so Apply can decide when to insert the output delimiter (spec §4.5.2
// step 3).
type emitState int

const (
	emitNone emitState = iota
	emitChar
	emitField
)

// Apply runs spec against text (already stripped of its line terminator
// by the caller) and returns the cut result. drop is true when
// spec.DropUndelimited fired (no input delimiter observed on an undelimited line).
func Apply(text string, spec *Spec) (out string, drop bool) {
	needsFields := false
	for _, r := range spec.Ranges {
		if r.Kind == Field {
			needsFields = true
			break
		}
	}

	var fields []string
	delimited := false
	if needsFields {
		fields, delimited = splitFields(text, spec)
	}

	if spec.DropUndelimited && needsFields && !delimited {
		return "", true
	}

	var b strings.Builder
	state := emitNone
	for _, r := range spec.Ranges {
		switch r.Kind {
		case Char:
			idx := charIndices(r, len(text))
			if len(idx) == 0 {
				continue
			}
			if state != emitNone {
				b.WriteByte(spec.OutDelim)
			}
			// Characters within one range concatenate directly; only
			// ranges themselves are delimiter-separated.
			for _, at := range idx {
				b.WriteByte(text[at])
			}
			state = emitChar
		case Field:
			idx := fieldIndices(r, len(fields))
			if len(idx) == 0 {
				continue
			}
			if state != emitNone {
				b.WriteByte(spec.OutDelim)
			}
			for i, at := range idx {
				if i > 0 {
					b.WriteByte(spec.OutDelim)
				}
				b.WriteString(fields[at])
			}
			state = emitField
		}
	}
	return b.String(), false
}
