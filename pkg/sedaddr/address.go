// Package sedaddr implements the address data model shared by the sed
// script compiler and execution engine: the tagged address variant that
// gates whether a command runs on a given input cycle.
package sedaddr

import "github.com/rcarmo/hawksed/pkg/sedregex"

// Kind identifies the shape of an Address.
type Kind int

const (
	// None means the address slot is absent; the command always matches it.
	None Kind = iota
	// Line matches when the current line number equals N.
	Line
	// LastLine matches once EOF on the input is observed.
	LastLine
	// Regex matches when Re matches the pattern space.
	Regex
	// EmptyRegex reuses the most recently executed regex.
	EmptyRegex
	// RelLine is valid only as a second address: matches when the current
	// line number is >= the first-match line + N.
	RelLine
	// RelLineMultiple is valid only as a second address: matches when the
	// current line is >= the first-match line + K - (first-match line mod K).
	RelLineMultiple
	// Step pairs with a Line first address: matches whenever
	// (current-N) mod K == 0 and current >= N.
	Step
)

// Address is the tagged variant described in spec.md §3.
type Address struct {
	Kind Kind
	N    uint64 // Line/RelLine: line number or relative offset
	K    uint64 // RelLineMultiple/Step: modulus
	Re   *sedregex.Matcher
}

// IsAbsent reports whether the address slot is absent (always matches).
func (a *Address) IsAbsent() bool {
	return a == nil || a.Kind == None
}
