// Package sedscript implements the Script Compiler (spec.md §4.3) and
// Command List (§4.4): it parses a sed script into a flat, ordered list
// of commands with resolved branch targets and linear successors, ready
// for the Execution Engine (pkg/sedexec) to walk.
//
// Groups ("{" ... "}") are not represented as nested blocks the way the
// teacher's sed.go recurses over cmd.sub; per the Design Notes in
// spec.md §9 ("Sentinels-by-pointer-identity"), a group compiles to a
// synthetic branch-like command that skips to just past the matching "}"
// when the group's own address does not match, keeping the command list
// one flat, pointer-stable sequence.
package sedscript

import (
	"github.com/rcarmo/hawksed/pkg/cutsel"
	"github.com/rcarmo/hawksed/pkg/sedaddr"
	"github.com/rcarmo/hawksed/pkg/sedregex"
	"github.com/rcarmo/hawksed/pkg/sedstream"
)

// Code identifies a command. User-facing codes are their sed byte
// ('s', 'y', 'd', ...); internal is reserved for compiler-synthesized
// pseudo-commands that never appear in a script.
type Code byte

const (
	CodeGroupTest Code = 0x01 // synthetic: skip block if address doesn't match
	CodeNoop      Code = 0x02 // '}' anchor, branch-target placeholder
)

// ReplPartKind identifies one piece of a parsed substitution replacement
// template (spec.md §4.5.1 step f).
type ReplPartKind int

const (
	ReplLiteral ReplPartKind = iota
	ReplWhole                // &
	ReplGroup                // \1..\9
)

// ReplPart is one piece of a replacement template.
type ReplPart struct {
	Kind  ReplPartKind
	Lit   string
	Group int
}

// Substitution is the s/// payload (spec.md §3 "substitution triple").
type Substitution struct {
	Re              *sedregex.Matcher // nil iff EmptyRegex
	EmptyRegex      bool
	Replacement     []ReplPart
	Global          bool
	CaseInsensitive bool
	Print           bool
	DiscardUnmatched bool // 'k' flag: emit only replaced text, drop context
	Occurrence      int  // 0 means unset
	WritePath       string
}

// Translit is the y/// payload: equal-length from/to rune sets.
type Translit struct {
	From []rune
	To   []rune
}

// Location identifies where a command (or a compile error) originated:
// the symbolic name of the source element plus line/column.
type Location struct {
	Source string
	Line   int
	Col    int
}

// execState is the mutable per-command runtime state from spec.md §3's
// Command record ("ExecState"). It is reset by the execution engine at
// the start of every execute() call, never by the compiler.
type execState struct {
	a1Matched    bool
	a1MatchLine  uint64
	cReady       bool
	zeroRangeHit bool
}

// Command is one compiled sed command: an address-gated action plus its
// command-specific payload and resolved successors.
type Command struct {
	Loc     Location
	Code    Code
	RawCode byte // the sed letter, e.g. 's', 'd', '{'; 0 for internal codes
	Negated bool

	Addr1, Addr2 *sedaddr.Address

	Text string // a/i/c text block; ':' label text
	Path string // r/R/w/W file path

	Sub      *Substitution
	Translit *Translit
	Cut      *cutsel.Spec

	TargetLabel string   // b/t/T, pre-resolution ("" means end of script)
	Target      *Command // resolved jump target; nil means end of script

	Next *Command // linear successor; nil at program end

	st execState
}

// RangeActive reports whether this command's two-address range is
// currently open (its first address matched on some earlier cycle and its
// second address has not yet closed it).
func (c *Command) RangeActive() bool { return c.st.a1Matched }

// RangeStartLine returns the input line number at which the currently
// open range was opened.
func (c *Command) RangeStartLine() uint64 { return c.st.a1MatchLine }

// SetRangeActive marks the range open, recording the line that opened it.
func (c *Command) SetRangeActive(line uint64) {
	c.st.a1Matched = true
	c.st.a1MatchLine = line
}

// ClearRangeActive closes the range (silently or by a genuine second-
// address match; the caller distinguishes those for its own purposes).
func (c *Command) ClearRangeActive() { c.st.a1Matched = false }

// ZeroRangeStarted reports whether a "0,/re/" range (spec §3's Line(0)
// first address) has already begun once during this execution. Line(0)
// can never match a real line number again, so without this flag the
// range's opening behaviour (testing the second address on the very
// first line, per GNU sed) would need to be told apart from an ordinary,
// permanently-closed range.
func (c *Command) ZeroRangeStarted() bool { return c.st.zeroRangeHit }

// MarkZeroRangeStarted records that the "0,/re/" range has begun.
func (c *Command) MarkZeroRangeStarted() { c.st.zeroRangeHit = true }

// SetReady records whether this cycle's address evaluation fully
// addressed the command (single address, stepping, or range closure) as
// opposed to a mid-range continuation. Consulted by 'c' (change).
func (c *Command) SetReady(v bool) { c.st.cReady = v }

// Ready returns the value last recorded by SetReady.
func (c *Command) Ready() bool { return c.st.cReady }

// ResetState clears the command's per-execution runtime state. Called by
// the execution engine once per execute() call so that a compiled
// Program can be run repeatedly and/or concurrently across sequential
// (not parallel) executions, per spec.md §5's "Shared resources".
func (c *Command) ResetState() {
	c.st = execState{}
}

// Program is the compiled artifact returned by Compile: an immutable
// (except for per-command ExecState) flat command list plus the set of
// commands that open auxiliary sinks, collected so the executor can
// register them in its output file table.
type Program struct {
	Commands []*Command
	Labels   map[string]*Command

	// AuxPaths collects every path referenced by w, W, or s///w, in the
	// order first seen, so the executor can validate/open them.
	AuxPaths []string

	// AuxSinks holds the sinks Compile opened eagerly for AuxPaths (spec
	// §4.3 "Open auxiliary sinks eagerly"), keyed by path. Populated only
	// when Options.OpenAux was supplied; nil otherwise, in which case the
	// executor falls back to opening on first write. New takes ownership
	// of this map and clears it, so a second Execute over the same Program
	// reopens lazily rather than reusing already-closed handles.
	AuxSinks map[string]*sedstream.AuxSink
}

// Command 'next' vs true linear successor, kept in sync by the compiler's
// post-pass (resolveProgram in compile.go).
