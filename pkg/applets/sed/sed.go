// Package sed is the CLI surface for the stream editor (spec.md §6): it
// parses argv into sedscript.Options + execution traits, compiles the
// script, and drives pkg/sedexec over pkg/sedstream-chained input.
package sed

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/rcarmo/hawksed/pkg/core"
	"github.com/rcarmo/hawksed/pkg/core/fs"
	"github.com/rcarmo/hawksed/pkg/sedexec"
	"github.com/rcarmo/hawksed/pkg/sedscript"
	"github.com/rcarmo/hawksed/pkg/sedstream"
)

type cliArgs struct {
	quiet      bool
	inPlace    bool
	separate   bool
	extended   bool // -r
	nonstd     bool // -R
	strict     bool // -a
	extAddr    bool // -b
	sameLine   bool // -x
	ensureNL   bool // -y
	wildcard   bool // -w
	trace      bool // -t
	memLimit   int64
	outPath    string
	scripts    []string
	files      []string
}

// Run implements the sed applet entry point. Flag parsing is a manual
// switch over argv, matching every applet in the teacher (sed.go's
// original Run, awk.go's parseArgs) rather than a flag-parsing library.
func Run(stdio *core.Stdio, args []string) int {
	if len(args) == 0 {
		return core.UsageError(stdio, "sed", "missing script or file")
	}

	a, exit, ok := parseArgs(stdio, args)
	if !ok {
		return exit
	}
	if len(a.scripts) == 0 {
		return core.UsageError(stdio, "sed", "missing script")
	}
	if len(a.files) == 0 {
		a.files = []string{"-"}
	}

	opts := sedscript.Options{
		ExtendedRegex:              a.extended,
		NonstandardRegexExtensions: a.nonstd,
		Strict:                     a.strict,
		ExtendedAddress:            a.extAddr,
		SameLine:                   a.sameLine,
		// a/i/c text blocks always end in a newline when emitted: every
		// real sed's output is line-oriented regardless of whether -y was
		// passed. -y additionally has no further effect beyond this.
		EnsureNewline: true,
		OpenAux: func(path string) (io.WriteCloser, error) { return fs.Create(path) },
	}
	source, err := assembleScript(a.scripts)
	if err != nil {
		stdio.Errorf("sed: %v\n", err)
		return core.ExitFailure
	}
	prog, err := sedscript.Compile(source, "script", opts)
	if err != nil {
		stdio.Errorf("sed: %v\n", err)
		return core.ExitFailure
	}

	if a.memLimit > 0 {
		debug.SetMemoryLimit(a.memLimit)
	}

	var tracer sedexec.Tracer
	if a.trace {
		tracer = &stderrTracer{stdio: stdio}
	}

	if a.inPlace {
		return runInPlace(stdio, prog, a, tracer)
	}
	if a.separate {
		return runSeparate(stdio, prog, a, tracer)
	}
	return runCombined(stdio, prog, a, tracer)
}

func parseArgs(stdio *core.Stdio, args []string) (cliArgs, int, bool) {
	var a cliArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			a.files = append(a.files, args[i+1:]...)
			i = len(args)
		case strings.HasPrefix(arg, "--script-encoding=") || strings.HasPrefix(arg, "--infile-encoding=") || strings.HasPrefix(arg, "--outfile-encoding="):
			if v := arg[strings.IndexByte(arg, '=')+1:]; !strings.EqualFold(v, "utf-8") {
				return a, core.UsageError(stdio, "sed", "only utf-8 encoding is supported"), false
			}
		case arg == "--script-encoding" || arg == "--infile-encoding" || arg == "--outfile-encoding":
			if i+1 >= len(args) {
				return a, core.UsageError(stdio, "sed", arg+" requires an argument"), false
			}
			i++
			if !strings.EqualFold(args[i], "utf-8") {
				return a, core.UsageError(stdio, "sed", "only utf-8 encoding is supported"), false
			}
		case strings.HasPrefix(arg, "-") && arg != "-" && len(arg) > 1:
			rest, exit, done, ok := parseShortFlags(stdio, &a, arg, args, &i)
			if !ok {
				return a, exit, false
			}
			if done {
				continue
			}
			_ = rest
		default:
			if len(a.scripts) == 0 {
				a.scripts = append(a.scripts, arg)
			} else {
				a.files = append(a.files, arg)
			}
		}
	}
	return a, 0, true
}

// parseShortFlags consumes one bundled short-flag argv element (e.g. "-ne",
// "-i.bak"-style is not supported; GNU's optional in-place suffix is out of
// scope here). Returns ok=false on a usage error (exit already reported).
func parseShortFlags(stdio *core.Stdio, a *cliArgs, arg string, args []string, i *int) (string, int, bool, bool) {
	j := 1
	for j < len(arg) {
		switch arg[j] {
		case 'n':
			a.quiet = true
			j++
		case 'i':
			a.inPlace = true
			a.separate = true
			j++
		case 's':
			a.separate = true
			j++
		case 'r':
			a.extended = true
			j++
		case 'R':
			a.nonstd = true
			j++
		case 'a':
			a.strict = true
			j++
		case 'b':
			a.extAddr = true
			j++
		case 'x':
			a.sameLine = true
			j++
		case 'y':
			a.ensureNL = true
			j++
		case 'w':
			a.wildcard = true
			j++
		case 't':
			a.trace = true
			j++
		case 'e':
			rest := arg[j+1:]
			if rest == "" {
				if *i+1 >= len(args) {
					return "", core.UsageError(stdio, "sed", "missing script"), false, false
				}
				*i++
				rest = args[*i]
			}
			a.scripts = append(a.scripts, rest)
			return "", 0, true, true
		case 'f':
			rest := arg[j+1:]
			if rest == "" {
				if *i+1 >= len(args) {
					return "", core.UsageError(stdio, "sed", "missing script file"), false, false
				}
				*i++
				rest = args[*i]
			}
			content, err := fs.ReadFile(rest)
			if err != nil {
				return "", core.FileError(stdio, "sed", rest, err), false, false
			}
			a.scripts = append(a.scripts, string(content))
			return "", 0, true, true
		case 'o':
			rest := arg[j+1:]
			if rest == "" {
				if *i+1 >= len(args) {
					return "", core.UsageError(stdio, "sed", "missing output path"), false, false
				}
				*i++
				rest = args[*i]
			}
			a.outPath = rest
			return "", 0, true, true
		case 'm':
			rest := arg[j+1:]
			if rest == "" {
				if *i+1 >= len(args) {
					return "", core.UsageError(stdio, "sed", "missing memory limit"), false, false
				}
				*i++
				rest = args[*i]
			}
			n, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return "", core.UsageError(stdio, "sed", "invalid memory limit"), false, false
			}
			a.memLimit = n
			return "", 0, true, true
		default:
			if len(a.scripts) == 0 {
				return "", core.UsageError(stdio, "sed", "invalid option"), false, false
			}
			// Not a recognised flag: everything from here on is files.
			return "", 0, false, true
		}
	}
	return "", 0, true, true
}

// assembleScript joins the script bodies collected from -e/-f elements
// through a sedstream.Chain with newline synthesis enabled, per spec
// §4.1's "squeezed newline" rule: a '\n' is inserted between two elements
// only when the closing element didn't already end in one, rather than
// unconditionally joining with "\n" (which would misreport line
// numbers in compile errors whenever a -f script file already ends in
// its own trailing newline).
func assembleScript(scripts []string) (string, error) {
	sources := make([]sedstream.Source, len(scripts))
	for i, s := range scripts {
		sources[i] = sedstream.Source{Kind: sedstream.KindChars, Chars: s, Name: "script"}
	}
	chain := sedstream.NewChain(sources, true)
	defer chain.Close()
	data, err := io.ReadAll(chain)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func buildFS() sedexec.FileSystem { return fsAdapter{} }

type fsAdapter struct{}

func (fsAdapter) ReadFile(path string) ([]byte, error) { return fs.ReadFile(path) }

func (fsAdapter) OpenWrite(path string) (io.WriteCloser, error) {
	return fs.Create(path)
}

func expandFiles(files []string, wildcard bool) []string {
	if !wildcard {
		return files
	}
	var out []string
	for _, f := range files {
		matches, err := filepath.Glob(f)
		if err != nil || len(matches) == 0 {
			out = append(out, f)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func runCombined(stdio *core.Stdio, prog *sedscript.Program, a cliArgs, tracer sedexec.Tracer) int {
	files := expandFiles(a.files, a.wildcard)
	sources := make([]sedstream.Source, len(files))
	for i, f := range files {
		sources[i] = sedstream.Source{Kind: sedstream.KindFile, Path: f, Stdin: stdio.In}
	}
	chain := sedstream.NewChain(sources, false)

	out, closeOut, err := openOutput(stdio, a.outPath)
	if err != nil {
		return core.FileError(stdio, "sed", a.outPath, err)
	}
	defer closeOut()

	ex := sedexec.New(prog, sedexec.Options{Quiet: a.quiet, FS: buildFS(), Tracer: tracer})
	if err := ex.Execute(chain, out); err != nil {
		stdio.Errorf("sed: %v\n", err)
		return core.ExitFailure
	}
	return core.ExitSuccess
}

func runSeparate(stdio *core.Stdio, prog *sedscript.Program, a cliArgs, tracer sedexec.Tracer) int {
	files := expandFiles(a.files, a.wildcard)
	out, closeOut, err := openOutput(stdio, a.outPath)
	if err != nil {
		return core.FileError(stdio, "sed", a.outPath, err)
	}
	defer closeOut()

	exitCode := core.ExitSuccess
	for _, f := range files {
		chain := sedstream.NewChain([]sedstream.Source{{Kind: sedstream.KindFile, Path: f, Stdin: stdio.In}}, false)
		ex := sedexec.New(prog, sedexec.Options{Quiet: a.quiet, FS: buildFS(), Tracer: tracer})
		if err := ex.Execute(chain, out); err != nil {
			stdio.Errorf("sed: %v\n", err)
			exitCode = core.ExitFailure
		}
	}
	return exitCode
}

func runInPlace(stdio *core.Stdio, prog *sedscript.Program, a cliArgs, tracer sedexec.Tracer) int {
	files := expandFiles(a.files, a.wildcard)
	hasRealFile := false
	for _, f := range files {
		if f != "-" {
			hasRealFile = true
			break
		}
	}
	if !hasRealFile {
		stdio.Errorf("sed: no input files\n")
		return core.ExitFailure
	}

	exitCode := core.ExitSuccess
	for _, f := range files {
		if f == "-" {
			continue
		}
		tmpPath, tmpFile, err := openTempFor(f)
		if err != nil {
			stdio.Errorf("sed: %s: %v\n", f, err)
			exitCode = core.ExitFailure
			continue
		}

		chain := sedstream.NewChain([]sedstream.Source{{Kind: sedstream.KindFile, Path: f}}, false)
		ex := sedexec.New(prog, sedexec.Options{Quiet: a.quiet, FS: buildFS(), Tracer: tracer})
		execErr := ex.Execute(chain, tmpFile)
		closeErr := tmpFile.Close()

		if execErr != nil {
			stdio.Errorf("sed: %v\n", execErr)
			exitCode = core.ExitFailure
			continue
		}
		if closeErr != nil {
			stdio.Errorf("sed: %s: %v\n", tmpPath, closeErr)
			exitCode = core.ExitFailure
			continue
		}
		if err := fs.Rename(tmpPath, f); err != nil {
			stdio.Errorf("sed: cannot rename %s to %s: %v (edited content left at %s)\n", tmpPath, f, err, tmpPath)
			exitCode = core.ExitFailure
		}
	}
	return exitCode
}

// openTempFor creates the scratch file in-place editing writes through
// before the final rename over f, per spec §6: "name: original + .XXXX,
// fallback TMP-XXXX, opened exclusive+temporary+write+create". It tries a
// handful of suffixes derived from the file name before giving up.
func openTempFor(f string) (string, *os.File, error) {
	dir := filepath.Dir(f)
	base := filepath.Base(f)
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	for i := 0; i < 10000; i++ {
		name := fmt.Sprintf("%s.%04d", base, i)
		path := filepath.Join(dir, name)
		file, err := fs.OpenFile(path, flags, 0600)
		if err == nil {
			return path, file, nil
		}
		if !os.IsExist(err) {
			break
		}
	}
	for i := 0; i < 10000; i++ {
		name := fmt.Sprintf("TMP-%04d", i)
		path := filepath.Join(dir, name)
		file, err := fs.OpenFile(path, flags, 0600)
		if err == nil {
			return path, file, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("cannot create a temporary file for %s", f)
}

func openOutput(stdio *core.Stdio, path string) (writer, func(), error) {
	if path == "" {
		return stdio.Out, func() {}, nil
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}

type writer interface {
	Write([]byte) (int, error)
}

type stderrTracer struct{ stdio *core.Stdio }

func (t *stderrTracer) OnRead(lineNum uint64, line string) {
	t.stdio.Errorf("READ %d: %q\n", lineNum, line)
}

func (t *stderrTracer) OnMatch(cmd *sedscript.Command, matched bool) {
	t.stdio.Errorf("MATCH %c: %v\n", cmd.RawCode, matched)
}

func (t *stderrTracer) OnExec(cmd *sedscript.Command) {
	t.stdio.Errorf("EXEC %c\n", cmd.RawCode)
}

func (t *stderrTracer) OnWrite(text string) {
	t.stdio.Errorf("WRITE %q\n", text)
}
