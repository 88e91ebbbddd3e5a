package sedscript

import "fmt"

// CompileErrorKind is one of the taxonomy entries from spec.md §4.3/§7.
type CompileErrorKind string

const (
	ErrScriptMissing            CompileErrorKind = "ScriptMissing"
	ErrCommandMissing           CompileErrorKind = "CommandMissing"
	ErrUnknownCommand           CompileErrorKind = "UnknownCommand"
	ErrAddressInvalidForCommand CompileErrorKind = "AddressInvalidForCommand"
	ErrInvalidSecondAddress     CompileErrorKind = "InvalidSecondAddress"
	ErrEmptyLabelInStrictMode   CompileErrorKind = "EmptyLabelInStrictMode"
	ErrDuplicateLabel           CompileErrorKind = "DuplicateLabel"
	ErrUnbalancedGroup          CompileErrorKind = "UnbalancedGroup"
	ErrGroupNestingTooDeep      CompileErrorKind = "GroupNestingTooDeep"
	ErrRegexIncomplete          CompileErrorKind = "RegexIncomplete"
	ErrBackslashIsBadDelimiter  CompileErrorKind = "BackslashIsBadDelimiter"
	ErrTranslitLengthMismatch   CompileErrorKind = "TranslitLengthMismatch"
	ErrOccurrenceTooLarge       CompileErrorKind = "OccurrenceTooLarge"
	ErrOccurrenceIsZero         CompileErrorKind = "OccurrenceIsZero"
	ErrInvalidCutSelector       CompileErrorKind = "InvalidCutSelector"
	ErrFileNameInvalid          CompileErrorKind = "FileNameInvalid"
	ErrLabelNotFound            CompileErrorKind = "LabelNotFound"
	ErrExpectedSemicolonOrEnd   CompileErrorKind = "ExpectedSemicolonOrEnd"
	ErrBackslashExpected        CompileErrorKind = "BackslashExpected"
	ErrAuxSinkOpenFailed        CompileErrorKind = "OpenFailed"
	ErrZeroLineAddressInvalid   CompileErrorKind = "ZeroLineAddressInvalid"
)

// CompileError is the typed, located error every compile failure returns,
// per spec.md §7's "cannot compile <source> - <message> at line L column C".
type CompileError struct {
	Loc  Location
	Kind CompileErrorKind
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("cannot compile %s - %s at line %d column %d", e.Loc.Source, e.Msg, e.Loc.Line, e.Loc.Col)
}

func newErr(loc Location, kind CompileErrorKind, format string, args ...any) *CompileError {
	return &CompileError{Loc: loc, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
