package sedexec

import (
	"strconv"
	"strings"

	"github.com/rcarmo/hawksed/pkg/cutsel"
	"github.com/rcarmo/hawksed/pkg/sedscript"
)

// control is the CycleControl enum the Design Notes (spec §9) call for in
// place of the C engine's sentinel-pointer-identity scheme.
type control int

const (
	ctrlContinue   control = iota // use the returned next command
	ctrlEndCycle                  // run steps 6-8, then read the next input line
	ctrlDropCycle                 // skip steps 6-8 entirely, then read the next input line ('d', empty 'D')
	ctrlRestartCycle               // skip steps 6-8, restart dispatch from the head without reading ('D')
	ctrlQuit                       // run steps 6-8, then stop reading input entirely ('q')
	ctrlQuitSilent                 // stop reading input entirely with no further emission ('Q', 'n' at EOF)
)

// dispatch evaluates cmd's address and, if it matches, runs its handler.
// It returns the next command to run (meaningful only for ctrlContinue),
// the control outcome, and any execution error.
func (ex *Executor) dispatch(cmd *sedscript.Command) (*sedscript.Command, control, error) {
	if cmd.Code == sedscript.CodeNoop {
		return cmd.Next, ctrlContinue, nil
	}

	if cmd.Code == sedscript.CodeGroupTest {
		matched, err := ex.matchAddress(cmd)
		if err != nil {
			return nil, ctrlContinue, ex.wrapErr(cmd, err)
		}
		if ex.opts.Tracer != nil {
			ex.opts.Tracer.OnMatch(cmd, matched)
		}
		if matched {
			return cmd.Next, ctrlContinue, nil
		}
		return cmd.Target, ctrlContinue, nil
	}

	matched, err := ex.matchAddress(cmd)
	if err != nil {
		return nil, ctrlContinue, ex.wrapErr(cmd, err)
	}
	if ex.opts.Tracer != nil {
		ex.opts.Tracer.OnMatch(cmd, matched)
	}
	if !matched {
		return cmd.Next, ctrlContinue, nil
	}

	switch cmd.RawCode {
	case '=':
		if err := ex.writeMain(strconv.FormatUint(ex.lineNum, 10) + "\n"); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil

	case 'a':
		ex.appendQueue = append(ex.appendQueue, appendItem{kind: appendText, text: cmd.Text})
		return cmd.Next, ctrlContinue, nil

	case 'i':
		if err := ex.writeMain(cmd.Text); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil

	case 'c':
		if cmd.Ready() {
			ex.patternSpace = cmd.Text
		} else {
			ex.patternSpace = ""
		}
		return nil, ctrlEndCycle, nil

	case 'd':
		ex.patternSpace = ""
		return nil, ctrlDropCycle, nil

	case 'D':
		idx := strings.IndexByte(ex.patternSpace, '\n')
		if idx < 0 {
			ex.patternSpace = ""
			return nil, ctrlDropCycle, nil
		}
		ex.patternSpace = ex.patternSpace[idx+1:]
		if ex.patternSpace == "" {
			return nil, ctrlDropCycle, nil
		}
		return nil, ctrlRestartCycle, nil

	case 'p':
		if err := ex.writeMain(ex.patternSpace); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil

	case 'P':
		if err := ex.writeMain(firstLine(ex.patternSpace)); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil

	case 'l':
		formatted := ex.formatClearly(ex.trimTerminator(ex.patternSpace))
		if err := ex.writeMain(formatted); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil

	case 'h':
		ex.holdSpace = ex.patternSpace
		return cmd.Next, ctrlContinue, nil
	case 'H':
		ex.holdSpace = ex.holdSpace + "\n" + ex.trimTerminator(ex.patternSpace)
		return cmd.Next, ctrlContinue, nil
	case 'g':
		ex.patternSpace = ex.holdSpace
		return cmd.Next, ctrlContinue, nil
	case 'G':
		ex.patternSpace = ex.patternSpace + "\n" + ex.trimTerminator(ex.holdSpace)
		return cmd.Next, ctrlContinue, nil
	case 'x':
		ex.patternSpace, ex.holdSpace = ex.holdSpace, ex.patternSpace
		return cmd.Next, ctrlContinue, nil

	case 'z':
		ex.patternSpace = ""
		return cmd.Next, ctrlContinue, nil

	case 'n':
		return ex.dispatchNext(cmd)
	case 'N':
		return ex.dispatchNextAppend(cmd)

	case 'r':
		ex.appendQueue = append(ex.appendQueue, appendItem{kind: appendFile, path: cmd.Path})
		return cmd.Next, ctrlContinue, nil
	case 'R':
		ex.appendQueue = append(ex.appendQueue, appendItem{kind: appendFileFirstLine, path: cmd.Path})
		return cmd.Next, ctrlContinue, nil

	case 'w':
		if err := ex.writeAux(cmd, ex.patternSpace); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil
	case 'W':
		if err := ex.writeAux(cmd, firstLine(ex.patternSpace)); err != nil {
			return nil, ctrlContinue, err
		}
		return cmd.Next, ctrlContinue, nil

	case 'b':
		return ex.branchTarget(cmd), ctrlContinue, nil
	case 't':
		if ex.tFlag {
			ex.tFlag = false
			return ex.branchTarget(cmd), ctrlContinue, nil
		}
		return cmd.Next, ctrlContinue, nil
	case 'T':
		if !ex.tFlag {
			return ex.branchTarget(cmd), ctrlContinue, nil
		}
		ex.tFlag = false
		return cmd.Next, ctrlContinue, nil

	case 's':
		if err := ex.dispatchSubstitute(cmd); err != nil {
			return nil, ctrlContinue, ex.wrapErr(cmd, err)
		}
		return cmd.Next, ctrlContinue, nil

	case 'y':
		ex.dispatchTranslit(cmd)
		return cmd.Next, ctrlContinue, nil

	case 'C':
		return ex.dispatchCut(cmd)

	case 'q':
		return nil, ctrlQuit, nil
	case 'Q':
		return nil, ctrlQuitSilent, nil

	default:
		return nil, ctrlContinue, ex.wrapErr(cmd, errUnknownRuntimeCommand(cmd.RawCode))
	}
}

func (ex *Executor) branchTarget(cmd *sedscript.Command) *sedscript.Command {
	if cmd.Target == nil {
		return nil // empty label or unresolved-to-end: end of script == "over"
	}
	return cmd.Target
}

// dispatchNext implements 'n': emit the current pattern space and appended
// queue now (as spec §4.5's highlights describe), then read the next line.
// On EOF, per the deviation documented in DESIGN.md, we stop entirely
// rather than literally "jump to over" (which would re-run the emission
// this handler just performed).
func (ex *Executor) dispatchNext(cmd *sedscript.Command) (*sedscript.Command, control, error) {
	if !ex.opts.Quiet {
		if err := ex.writeMain(ex.patternSpace); err != nil {
			return nil, ctrlContinue, err
		}
	}
	if err := ex.drainAppendQueue(); err != nil {
		return nil, ctrlContinue, err
	}
	line, ok, err := ex.lr.Next()
	if err != nil {
		return nil, ctrlContinue, err
	}
	if !ok {
		if err := ex.out.Flush(); err != nil {
			return nil, ctrlContinue, err
		}
		return nil, ctrlQuitSilent, nil
	}
	ex.lineNum++
	ex.patternSpace = line
	ex.tFlag = false
	if ex.opts.Tracer != nil {
		ex.opts.Tracer.OnRead(ex.lineNum, line)
	}
	return cmd.Next, ctrlContinue, nil
}

// dispatchNextAppend implements 'N': drain the appended queue (but not the
// pattern space), then append the next line to the pattern space. On EOF
// this naturally falls through to ctrlEndCycle, matching spec's literal
// "jumps to over" (steps 6-8 run once, printing the accumulated pattern
// space - no double emission, unlike 'n').
func (ex *Executor) dispatchNextAppend(cmd *sedscript.Command) (*sedscript.Command, control, error) {
	if err := ex.drainAppendQueue(); err != nil {
		return nil, ctrlContinue, err
	}
	line, ok, err := ex.lr.Next()
	if err != nil {
		return nil, ctrlContinue, err
	}
	if !ok {
		return nil, ctrlEndCycle, nil
	}
	ex.lineNum++
	ex.patternSpace += line
	ex.tFlag = false
	if ex.opts.Tracer != nil {
		ex.opts.Tracer.OnRead(ex.lineNum, line)
	}
	return cmd.Next, ctrlContinue, nil
}

func (ex *Executor) writeAux(cmd *sedscript.Command, text string) error {
	sink, err := ex.auxSink(cmd.Loc, cmd.Path)
	if err != nil {
		if ex.auxFailed[cmd.Path] {
			return nil // "closes that sink for the remainder of execution"
		}
		return err
	}
	if err := sink.WriteString(text); err != nil {
		delete(ex.auxSinks, cmd.Path)
		ex.auxFailed[cmd.Path] = true
		return nil
	}
	return nil
}

func (ex *Executor) wrapErr(cmd *sedscript.Command, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Loc: cmd.Loc, Msg: err.Error()}
}

func errUnknownRuntimeCommand(code byte) error {
	return &ExecutionError{Msg: "unknown command at runtime: " + string(code)}
}

// dispatchCut implements 'C' (spec §4.5.2).
func (ex *Executor) dispatchCut(cmd *sedscript.Command) (*sedscript.Command, control, error) {
	term := ""
	text := ex.patternSpace
	if strings.HasSuffix(text, "\n") {
		term = "\n"
		text = text[:len(text)-1]
	}
	out, drop := cutsel.Apply(text, cmd.Cut)
	if drop {
		ex.patternSpace = ""
		return nil, ctrlDropCycle, nil
	}
	ex.patternSpace = out + term
	return cmd.Next, ctrlContinue, nil
}
