package sedexec

import (
	"fmt"
	"strings"

	"github.com/rcarmo/hawksed/pkg/sedregex"
	"github.com/rcarmo/hawksed/pkg/sedscript"
)

// dispatchSubstitute implements spec.md §4.5.1's eight-step algorithm.
func (ex *Executor) dispatchSubstitute(cmd *sedscript.Command) error {
	sub := cmd.Sub

	re := sub.Re
	if sub.EmptyRegex {
		if ex.lastRegex == nil {
			return fmt.Errorf("no previous regex for empty substitution")
		}
		re = ex.lastRegex
	}

	term := ""
	text := ex.patternSpace
	if strings.HasSuffix(text, "\n") {
		term = "\n"
		text = text[:len(text)-1]
	}

	// required bounds how many matches the loop visits. A bare occurrence
	// (no 'g') stops right after the target match; 'g' (with or without
	// an occurrence prefix, e.g. "3g" = replace from the 3rd match on)
	// keeps scanning to the end of the text.
	required := 1
	switch {
	case sub.Global:
		required = -1
	case sub.Occurrence > 0:
		required = sub.Occurrence
	}

	var out strings.Builder
	cursor := 0
	matchesDone := 0
	lastMatchEnd := -1
	didSubst := false

	for cursor <= len(text) && (required < 0 || matchesDone < required) {
		flags := sedregex.Flags(0)
		if cursor > 0 {
			flags = sedregex.NotBeginningOfLine
		}
		res, err := re.Match(text, cursor, flags)
		if err != nil {
			return err
		}
		if res == nil {
			break
		}
		span := res.Spans[0]

		if span.Start == span.End && span.Start == lastMatchEnd {
			if span.Start >= len(text) {
				break
			}
			out.WriteByte(text[span.Start])
			cursor = span.Start + 1
			continue
		}

		matchesDone++
		if !sub.DiscardUnmatched {
			out.WriteString(text[cursor:span.Start])
		}

		isTarget := sub.Occurrence == 0 || matchesDone == sub.Occurrence || (sub.Global && sub.Occurrence > 0 && matchesDone >= sub.Occurrence)
		if sub.Occurrence > 0 && !sub.Global && matchesDone != sub.Occurrence {
			isTarget = false
		}

		if isTarget {
			expandReplacement(&out, sub.Replacement, text, res)
			didSubst = true
		} else {
			out.WriteString(text[span.Start:span.End])
		}

		lastMatchEnd = span.End
		if span.End == span.Start {
			cursor = span.End
		} else {
			cursor = span.End
		}
	}

	if !didSubst {
		ex.lastRegex = re
		return nil
	}

	if !sub.DiscardUnmatched {
		out.WriteString(text[cursor:])
	}

	ex.patternSpace = out.String() + term
	ex.lastRegex = re
	ex.tFlag = true

	if sub.Print {
		if err := ex.writeMain(ex.patternSpace); err != nil {
			return err
		}
	}
	if sub.WritePath != "" {
		if err := ex.writeAux(cmd, ex.patternSpace); err != nil {
			return err
		}
	}
	return nil
}

// expandReplacement appends the expansion of tmpl (spec §4.5.1 step f) to
// out, given the just-completed match res against text.
func expandReplacement(out *strings.Builder, tmpl []sedscript.ReplPart, text string, res *sedregex.Result) {
	for _, part := range tmpl {
		switch part.Kind {
		case sedscript.ReplLiteral:
			out.WriteString(part.Lit)
		case sedscript.ReplWhole:
			span := res.Spans[0]
			out.WriteString(text[span.Start:span.End])
		case sedscript.ReplGroup:
			if part.Group < len(res.Spans) && res.Spans[part.Group].Set {
				span := res.Spans[part.Group]
				out.WriteString(text[span.Start:span.End])
			}
		}
	}
}

// dispatchTranslit implements 'y': a straightforward even/odd-pair scan
// over runes, preserving the trailing terminator.
func (ex *Executor) dispatchTranslit(cmd *sedscript.Command) {
	term := ""
	text := ex.patternSpace
	if strings.HasSuffix(text, "\n") {
		term = "\n"
		text = text[:len(text)-1]
	}
	tr := cmd.Translit
	var out strings.Builder
	for _, r := range text {
		mapped := r
		for i, from := range tr.From {
			if from == r {
				mapped = tr.To[i]
				break
			}
		}
		out.WriteRune(mapped)
	}
	ex.patternSpace = out.String() + term
}
