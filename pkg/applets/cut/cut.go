// Package cut is the CLI surface for the field/character extractor built
// on pkg/cutsel, the same selector grammar sed's C command dispatches
// through (pkg/sedexec's dispatchCut).
package cut

import (
	"fmt"
	"strings"

	"github.com/rcarmo/hawksed/pkg/core"
	"github.com/rcarmo/hawksed/pkg/cutsel"
	"github.com/rcarmo/hawksed/pkg/sedstream"
)

// Run implements the cut applet: -c/-f select character or field ranges,
// -d sets the input delimiter (and, absent -D, the output delimiter too),
// -D sets a distinct output delimiter, -s drops lines with no delimiter
// (without -s, such a line is printed whole when fields are selected),
// -w treats runs of whitespace as the delimiter. Manual switch-based argv
// parsing, matching every applet in the teacher rather than a flag library
// (see DESIGN.md).
func Run(stdio *core.Stdio, args []string) int {
	spec := cutsel.NewSpec()
	var selector string
	var files []string
	haveOutDelim := false

	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "-c" || arg == "-f":
			if i+1 >= len(args) {
				return core.UsageError(stdio, "cut", fmt.Sprintf("%s requires an argument", arg))
			}
			i++
			selector = prefixSelector(arg[1:], args[i])
		case strings.HasPrefix(arg, "-c") && len(arg) > 2:
			selector = prefixSelector("c", arg[2:])
		case strings.HasPrefix(arg, "-f") && len(arg) > 2:
			selector = prefixSelector("f", arg[2:])
		case arg == "-d":
			if i+1 >= len(args) || len(args[i+1]) != 1 {
				return core.UsageError(stdio, "cut", "-d requires a single-character argument")
			}
			i++
			spec.InDelim = args[i][0]
			if !haveOutDelim {
				spec.OutDelim = spec.InDelim
			}
		case strings.HasPrefix(arg, "-d") && len(arg) == 3:
			spec.InDelim = arg[2]
			if !haveOutDelim {
				spec.OutDelim = spec.InDelim
			}
		case arg == "-D":
			if i+1 >= len(args) || len(args[i+1]) != 1 {
				return core.UsageError(stdio, "cut", "-D requires a single-character argument")
			}
			i++
			spec.OutDelim = args[i][0]
			haveOutDelim = true
		case arg == "-s":
			spec.DropUndelimited = true
		case arg == "-w":
			spec.Whitespace = true
		case arg == "-f-fold" || arg == "--fold":
			spec.Fold = true
		case arg == "--":
			i++
			files = append(files, args[i+1:]...)
			i = len(args)
			continue
		default:
			files = append(files, arg)
		}
		i++
	}

	if selector == "" {
		return core.UsageError(stdio, "cut", "one of -c or -f is required")
	}
	ranges, err := cutsel.ParseRanges(selector)
	if err != nil {
		return core.UsageError(stdio, "cut", err.Error())
	}
	spec.Ranges = ranges
	fieldMode := strings.HasPrefix(selector, "f")
	delims := string(spec.InDelim)
	if spec.Whitespace {
		delims = " \t"
	}

	chain := sedstream.NewChain(buildSources(files, stdio), false)
	lr := sedstream.NewLineReader(chain)
	defer lr.Close()
	out := sedstream.NewSink(stdio.Out)

	for {
		line, ok, err := lr.Next()
		if err != nil {
			return core.FileError(stdio, "cut", lr.CurrentName(), err)
		}
		if !ok {
			break
		}
		term := ""
		text := line
		if strings.HasSuffix(text, "\n") {
			term = "\n"
			text = text[:len(text)-1]
		}
		result, drop := cutsel.Apply(text, spec)
		if drop {
			continue
		}
		if fieldMode && !strings.ContainsAny(text, delims) {
			result = text
		}
		if err := out.WriteString(result + term); err != nil {
			return core.FileError(stdio, "cut", "stdout", err)
		}
	}
	if err := out.Flush(); err != nil {
		return core.FileError(stdio, "cut", "stdout", err)
	}
	return core.ExitSuccess
}

// prefixSelector prepends kind ("c" or "f") to every comma-separated
// element of list so it matches cutsel.ParseRanges's "c1-3,f2" grammar.
func prefixSelector(kind, list string) string {
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = kind + p
	}
	return strings.Join(parts, ",")
}

func buildSources(files []string, stdio *core.Stdio) []sedstream.Source {
	if len(files) == 0 {
		return []sedstream.Source{{Kind: sedstream.KindFile, Path: "-", Stdin: stdio.In}}
	}
	sources := make([]sedstream.Source, len(files))
	for i, f := range files {
		sources[i] = sedstream.Source{Kind: sedstream.KindFile, Path: f, Stdin: stdio.In}
	}
	return sources
}
