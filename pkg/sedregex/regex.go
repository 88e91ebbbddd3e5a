// Package sedregex wraps github.com/dlclark/regexp2 behind the narrow
// contract the sed compiler and executor need: compile a BRE/ERE source
// (with an optional case-insensitive flag) to an opaque matcher, and run
// it against a range of text returning the whole match plus up to nine
// submatches.
//
// The teacher repo's sed.go translates sed's basic-regex syntax to Go's
// stdlib regexp (RE2) and drops backreferences on the floor because RE2
// cannot execute them. regexp2 executes backreferences natively, so the
// translation here is the same shape but targets regexp2's syntax and
// keeps \1..\9 alive end to end.
package sedregex

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Matcher is an opaque compiled regex, built once by Build and shared by
// every execution over the same compiled sed program.
type Matcher struct {
	re     *regexp2.Regexp
	source string
}

// Flags adjusts a single Match call.
type Flags uint8

// NotBeginningOfLine signals that text before startAt should not be
// eligible for a leading ^ anchor.
const NotBeginningOfLine Flags = 1 << iota

// Span is a single capture location: [Start,End) byte offsets into the
// text passed to Match. Set is false if the group did not participate.
type Span struct {
	Start, End int
	Set        bool
}

// Result is the outcome of a single Match call.
type Result struct {
	Spans [10]Span // Spans[0] is the whole match; Spans[1..9] are groups.
}

// Build compiles source to a Matcher. caseInsensitive sets the 'I'
// address/substitution modifier. extended selects the source dialect: when
// false (the default, matching historical sed), source is BRE and group/
// alternation/brace metacharacters must be backslash-escaped to be special;
// when true (the -r/extended-regex trait), source is ERE and they are
// special bare, matching the teacher's own `-E`-less vs not distinction.
func Build(source string, caseInsensitive, extended bool) (*Matcher, error) {
	translated := source
	if !extended {
		translated = translateBRE(source)
	}
	// regexp2.RE2 narrows parsing to RE2-compatible syntax, which would
	// reject some of the escapes translateBRE produces and silently cap
	// backreference support; leave it off so \1..\9 keep working the way
	// the package doc promises.
	opts := regexp2.Unicode
	if caseInsensitive {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(translated, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", source, err)
	}
	re.MatchTimeout = 0
	return &Matcher{re: re, source: source}, nil
}

// Source returns the original, untranslated pattern text.
func (m *Matcher) Source() string {
	return m.source
}

// Match runs the matcher against text starting the search at startAt.
// flags carries NotBeginningOfLine when startAt is mid-string and ^
// should not match there (regexp2 already only anchors ^ to offset 0 of
// the string passed to FindStringMatchStartingAt, which is exactly this
// contract when the caller always passes the full text and varies
// startAt, as sed's substitution loop does).
func (m *Matcher) Match(text string, startAt int, _ Flags) (*Result, error) {
	match, err := m.re.FindStringMatchStartingAt(text, startAt)
	if err != nil {
		return nil, fmt.Errorf("regex exec failed: %w", err)
	}
	if match == nil {
		return nil, nil
	}
	var res Result
	// regexp2 reports capture positions in runes; byteAt maps a rune index
	// to its byte offset in text.
	byteAt := make([]int, 0, len(text)+1)
	for at := range text {
		byteAt = append(byteAt, at)
	}
	byteAt = append(byteAt, len(text))
	groups := match.Groups()
	for i := 0; i < 10 && i < len(groups); i++ {
		g := groups[i]
		if len(g.Captures) == 0 {
			continue
		}
		c := g.Captures[len(g.Captures)-1]
		res.Spans[i] = Span{Start: byteAt[c.Index], End: byteAt[c.Index+c.Length], Set: true}
	}
	return &res, nil
}

// MatchString reports whether the matcher matches anywhere in text; used
// by address evaluation, which only needs a boolean.
func (m *Matcher) MatchString(text string) (bool, error) {
	res, err := m.Match(text, 0, 0)
	if err != nil {
		return false, err
	}
	return res != nil, nil
}
