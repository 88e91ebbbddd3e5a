// Package sedexec implements the Execution Engine (spec.md §4.5) and the
// Orchestrator (§4.6): the per-cycle state machine that walks a compiled
// sedscript.Program over a sedstream-fed input, plus the compile/execute/
// halt entry points a caller drives it through.
package sedexec

import (
	"fmt"
	"io"
	"strings"

	"github.com/rcarmo/hawksed/pkg/sedaddr"
	"github.com/rcarmo/hawksed/pkg/sedregex"
	"github.com/rcarmo/hawksed/pkg/sedscript"
	"github.com/rcarmo/hawksed/pkg/sedstream"
)

// FileSystem is the narrow capability the engine needs for r/R/w/W and
// s///w, kept as an interface so tests can inject an in-memory fake
// instead of pkg/core/fs. pkg/applets/sed wires the real fs package.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	OpenWrite(path string) (io.WriteCloser, error)
}

// Tracer receives READ/WRITE/MATCH/EXEC events, per spec §6's "tracer hook".
type Tracer interface {
	OnRead(lineNum uint64, line string)
	OnMatch(cmd *sedscript.Command, matched bool)
	OnExec(cmd *sedscript.Command)
	OnWrite(text string)
}

// Options configures one Execute call.
type Options struct {
	Quiet      bool
	FS         FileSystem
	Tracer     Tracer
	LineFormat func(pattern string) string // overrides the 'l' command formatter
}

// ExecutionError is an execution-time failure, carrying an optional
// location (the originating command), per spec §7's "cannot execute -
// <message>" surface.
type ExecutionError struct {
	Loc sedscript.Location
	Msg string
}

func (e *ExecutionError) Error() string {
	if e.Loc.Source == "" {
		return "cannot execute - " + e.Msg
	}
	return fmt.Sprintf("cannot execute - %s at %s:%d:%d", e.Msg, e.Loc.Source, e.Loc.Line, e.Loc.Col)
}

// appendKind distinguishes the three things that can land in the
// appended-text queue.
type appendKind int

const (
	appendText appendKind = iota
	appendFile
	appendFileFirstLine
)

type appendItem struct {
	kind appendKind
	text string
	path string
}

// Executor runs a compiled Program's cycle loop over one input/output pair.
// Per spec §5, it is single-threaded and confined to the caller's
// goroutine; regex matchers are shared (read-only) with the compiled
// Program and safe across sequential (not concurrent) executions.
type Executor struct {
	prog *sedscript.Program
	opts Options

	patternSpace string // retains its trailing terminator, per spec §4.5 step 2
	holdSpace    string
	lineNum      uint64
	lastRegex    *sedregex.Matcher
	tFlag        bool // substitution-made flag consumed by 't'

	appendQueue []appendItem

	auxSinks  map[string]*sedstream.AuxSink
	auxFailed map[string]bool

	lr  *sedstream.LineReader
	out *sedstream.Sink

	halted bool
}

// New builds an Executor for prog. opts.FS is required if the script uses
// r/R/w/W/s///w.
//
// If prog was compiled with Options.OpenAux set, prog.AuxSinks already
// holds every w/W/s///w sink opened eagerly at compile time (spec §4.3);
// New takes ownership of those handles so the executor reuses them
// instead of reopening. It then clears prog.AuxSinks, since those handles
// are consumed by (and closed with) this Executor - a second Execute over
// the same Program falls back to opening lazily on first write.
func New(prog *sedscript.Program, opts Options) *Executor {
	for _, c := range prog.Commands {
		c.ResetState()
	}
	ex := &Executor{
		prog:      prog,
		opts:      opts,
		holdSpace: "\n",
		auxSinks:  make(map[string]*sedstream.AuxSink),
		auxFailed: make(map[string]bool),
	}
	for path, sink := range prog.AuxSinks {
		ex.auxSinks[path] = sink
	}
	prog.AuxSinks = nil
	return ex
}

// Halt sets the halt flag, polled between commands and between cycles.
func (ex *Executor) Halt() { ex.halted = true }

// Execute runs the cycle loop (spec §4.5 "Cycle protocol") reading from
// chain and writing to sink, until EOF, a quit command, or Halt.
func (ex *Executor) Execute(chain *sedstream.Chain, w io.Writer) error {
	ex.lr = sedstream.NewLineReader(chain)
	ex.out = sedstream.NewSink(w)
	defer ex.closeAuxSinks()
	defer ex.lr.Close()

	for {
		line, ok, err := ex.lr.Next()
		if err != nil {
			return &ExecutionError{Msg: fmt.Sprintf("read failed: %v", err)}
		}
		if !ok {
			return nil
		}
		ex.lineNum++
		ex.patternSpace = line
		ex.tFlag = false
		if ex.opts.Tracer != nil {
			ex.opts.Tracer.OnRead(ex.lineNum, line)
		}

		outcome, err := ex.runCycle()
		if err != nil {
			return err
		}
		if outcome == cycleTerminate {
			return nil
		}
		if ex.halted {
			return nil
		}
	}
}

type cycleOutcome int

const (
	cycleNormal cycleOutcome = iota
	cycleTerminate
)

// runCycle dispatches commands starting from the head of the list until a
// terminal control is reached, then performs steps 6-8 (auto-print,
// appended-queue drain, flush) unless the terminating command said not to.
func (ex *Executor) runCycle() (cycleOutcome, error) {
restart:
	cmd := ex.headCommand()
	for cmd != nil {
		if ex.halted {
			return cycleTerminate, nil
		}
		if ex.opts.Tracer != nil {
			ex.opts.Tracer.OnExec(cmd)
		}
		next, ctrl, err := ex.dispatch(cmd)
		if err != nil {
			return cycleNormal, err
		}
		switch ctrl {
		case ctrlRestartCycle:
			goto restart
		case ctrlDropCycle:
			return cycleNormal, nil
		case ctrlEndCycle:
			cmd = nil
		case ctrlQuit:
			if err := ex.emitCycleEnd(); err != nil {
				return cycleNormal, err
			}
			return cycleTerminate, nil
		case ctrlQuitSilent:
			return cycleTerminate, nil
		default:
			cmd = next
		}
	}
	if err := ex.emitCycleEnd(); err != nil {
		return cycleNormal, err
	}
	return cycleNormal, nil
}

func (ex *Executor) headCommand() *sedscript.Command {
	if len(ex.prog.Commands) == 0 {
		return nil
	}
	return ex.prog.Commands[0]
}

// emitCycleEnd performs steps 6-8: auto-print, drain the appended queue,
// flush.
func (ex *Executor) emitCycleEnd() error {
	if !ex.opts.Quiet {
		if err := ex.writeMain(ex.patternSpace); err != nil {
			return err
		}
	}
	if err := ex.drainAppendQueue(); err != nil {
		return err
	}
	return ex.out.Flush()
}

func (ex *Executor) writeMain(s string) error {
	if ex.opts.Tracer != nil {
		ex.opts.Tracer.OnWrite(s)
	}
	return ex.out.WriteString(s)
}

func (ex *Executor) drainAppendQueue() error {
	for _, item := range ex.appendQueue {
		switch item.kind {
		case appendText:
			if err := ex.writeMain(item.text); err != nil {
				return err
			}
		case appendFile:
			data, err := ex.readFile(item.path)
			if err != nil {
				continue // "missing files are silently ignored"
			}
			if err := ex.writeMain(string(data)); err != nil {
				return err
			}
		case appendFileFirstLine:
			data, err := ex.readFile(item.path)
			if err != nil {
				continue
			}
			line := string(data)
			if idx := strings.IndexByte(line, '\n'); idx >= 0 {
				line = line[:idx+1]
			}
			if err := ex.writeMain(line); err != nil {
				return err
			}
		}
	}
	ex.appendQueue = ex.appendQueue[:0]
	return nil
}

func (ex *Executor) readFile(path string) ([]byte, error) {
	if ex.opts.FS == nil {
		return nil, fmt.Errorf("no filesystem configured")
	}
	return ex.opts.FS.ReadFile(path)
}

func (ex *Executor) auxSink(cmdLoc sedscript.Location, path string) (*sedstream.AuxSink, error) {
	if sink, ok := ex.auxSinks[path]; ok {
		return sink, nil
	}
	if ex.opts.FS == nil {
		return nil, &ExecutionError{Loc: cmdLoc, Msg: "no filesystem configured for output file " + path}
	}
	sink, err := sedstream.OpenAuxSink(path, ex.opts.FS.OpenWrite)
	if err != nil {
		ex.auxFailed[path] = true
		return nil, &ExecutionError{Loc: cmdLoc, Msg: err.Error()}
	}
	ex.auxSinks[path] = sink
	return sink, nil
}

func (ex *Executor) closeAuxSinks() {
	for _, sink := range ex.auxSinks {
		_ = sink.Close()
	}
}

// matchAddress evaluates a command's address pair against current engine
// state, per spec §4.5 "Address matching". The $ address is decided by
// ex.lr.AtEOF (one-byte look-ahead on the primary input).
func (ex *Executor) matchAddress(cmd *sedscript.Command) (bool, error) {
	matched, err := ex.matchAddressRaw(cmd)
	if err != nil {
		return false, err
	}
	if cmd.Negated {
		matched = !matched
	}
	return matched, nil
}

func (ex *Executor) matchAddressRaw(cmd *sedscript.Command) (bool, error) {
	a1, a2 := cmd.Addr1, cmd.Addr2

	if a1.IsAbsent() && a2.IsAbsent() {
		cmd.SetReady(true)
		return true, nil
	}

	if a2 != nil && a2.Kind == sedaddr.Step {
		if ex.lineNum < a1.N {
			cmd.SetReady(false)
			return false, nil
		}
		matched := (ex.lineNum-a1.N)%a2.K == 0
		cmd.SetReady(matched)
		return matched, nil
	}

	if !a2.IsAbsent() {
		return ex.matchRange(cmd, a1, a2)
	}

	matched, err := ex.evalSingle(a1)
	if err != nil {
		return false, err
	}
	cmd.SetReady(matched)
	return matched, nil
}

func (ex *Executor) matchRange(cmd *sedscript.Command, a1, a2 *sedaddr.Address) (bool, error) {
	if !cmd.RangeActive() {
		if a1.Kind == sedaddr.Line && a1.N == 0 && !cmd.ZeroRangeStarted() {
			// GNU "0,/re/": the range is considered open before line 1
			// ever arrives, so the second address is tested against this
			// very first line instead of waiting for the next cycle
			// (spec §3's Line(0) special case). Line(0) can never match
			// evalSingle again afterward, so ZeroRangeStarted guards
			// against re-entering this branch once the range has closed.
			cmd.MarkZeroRangeStarted()
			ok2, err := ex.evalSecond(cmd, a2)
			if err != nil {
				return false, err
			}
			if ok2 {
				cmd.SetReady(true)
				return true, nil
			}
			cmd.SetRangeActive(0)
			cmd.SetReady(false)
			return true, nil
		}
		ok, err := ex.evalSingle(a1)
		if err != nil {
			return false, err
		}
		if !ok {
			cmd.SetReady(false)
			return false, nil
		}
		if a2.Kind == sedaddr.Line && a2.N <= ex.lineNum {
			// Degenerate range: the second address is already behind us
			// (e.g. "1,1" on line 1). sed.c:3202-3216 sets c_ready but
			// leaves a1_matched clear, so the range matches only this
			// line instead of opening and closing on the next one.
			cmd.SetReady(true)
			return true, nil
		}
		cmd.SetRangeActive(ex.lineNum)
		cmd.SetReady(false)
		return true, nil
	}

	ok, err := ex.evalSecond(cmd, a2)
	if err != nil {
		return false, err
	}
	if ok {
		cmd.ClearRangeActive()
		cmd.SetReady(true)
		return true, nil
	}
	// "close on line-number second address exceeded but not on regex-miss"
	// (spec §9 Open Questions) - a quirk we preserve explicitly rather
	// than silently guessing a different closing rule.
	if a2.Kind == sedaddr.Line && ex.lineNum > a2.N {
		cmd.ClearRangeActive()
		cmd.SetReady(false)
		return false, nil
	}
	cmd.SetReady(false)
	return true, nil
}

func (ex *Executor) evalSingle(a *sedaddr.Address) (bool, error) {
	if a.IsAbsent() {
		return true, nil
	}
	switch a.Kind {
	case sedaddr.Line:
		return ex.lineNum == a.N, nil
	case sedaddr.LastLine:
		return ex.lr.AtEOF()
	case sedaddr.Regex:
		ex.lastRegex = a.Re
		return a.Re.MatchString(ex.trimTerminator(ex.patternSpace))
	case sedaddr.EmptyRegex:
		if ex.lastRegex == nil {
			return false, fmt.Errorf("no previous regex for empty address")
		}
		return ex.lastRegex.MatchString(ex.trimTerminator(ex.patternSpace))
	default:
		return false, fmt.Errorf("address kind %v invalid as a first address", a.Kind)
	}
}

func (ex *Executor) evalSecond(cmd *sedscript.Command, a *sedaddr.Address) (bool, error) {
	switch a.Kind {
	case sedaddr.Line:
		return ex.lineNum >= a.N, nil
	case sedaddr.LastLine:
		return ex.lr.AtEOF()
	case sedaddr.Regex:
		ex.lastRegex = a.Re
		return a.Re.MatchString(ex.trimTerminator(ex.patternSpace))
	case sedaddr.EmptyRegex:
		if ex.lastRegex == nil {
			return false, fmt.Errorf("no previous regex for empty address")
		}
		return ex.lastRegex.MatchString(ex.trimTerminator(ex.patternSpace))
	case sedaddr.RelLine:
		return ex.lineNum >= cmd.RangeStartLine()+a.N, nil
	case sedaddr.RelLineMultiple:
		start := cmd.RangeStartLine()
		return ex.lineNum >= start+a.K-(start%a.K), nil
	default:
		return false, fmt.Errorf("address kind %v invalid as a second address", a.Kind)
	}
}

// trimTerminator strips a single trailing newline for address/regex testing
// and output trimming; the stripped byte is never lost since callers
// reattach it separately.
func (ex *Executor) trimTerminator(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// firstLine returns text up to and including its first embedded newline
// (used by P/W/N's "first line" semantics), or the whole string if there
// is no embedded newline.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx+1]
	}
	return s
}

