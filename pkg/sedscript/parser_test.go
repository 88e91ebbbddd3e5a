package sedscript_test

import (
	"errors"
	"io"
	"testing"

	"github.com/rcarmo/hawksed/pkg/sedaddr"
	"github.com/rcarmo/hawksed/pkg/sedscript"
)

func TestCompileBasicSubstitution(t *testing.T) {
	prog, err := sedscript.Compile("s/foo/bar/g", "test", sedscript.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(prog.Commands))
	}
	cmd := prog.Commands[0]
	if cmd.RawCode != 's' || cmd.Sub == nil || !cmd.Sub.Global {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestCompileGroupWithNegationAndLabel(t *testing.T) {
	prog, err := sedscript.Compile("/^#/!{p;d};:end", "test", sedscript.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var sawGroupTest, sawNoop bool
	for _, cmd := range prog.Commands {
		if cmd.Code == sedscript.CodeGroupTest {
			sawGroupTest = true
			if cmd.Target == nil {
				t.Fatal("group test target not resolved")
			}
		}
		if cmd.RawCode == ':' {
			sawNoop = true
		}
	}
	if !sawGroupTest || !sawNoop {
		t.Fatalf("expected group test and label noop in %+v", prog.Commands)
	}
	if _, ok := prog.Labels["end"]; !ok {
		t.Fatal("expected label 'end' registered")
	}
}

func TestCompileUnbalancedGroupFails(t *testing.T) {
	_, err := sedscript.Compile("{p", "test", sedscript.Options{})
	if err == nil {
		t.Fatal("expected UnbalancedGroup error")
	}
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrUnbalancedGroup {
		t.Fatalf("expected UnbalancedGroup, got %v", err)
	}
}

func TestCompileLabelNotFoundFails(t *testing.T) {
	_, err := sedscript.Compile("b nowhere", "test", sedscript.Options{})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrLabelNotFound {
		t.Fatalf("expected LabelNotFound, got %v", err)
	}
}

func TestCompileBranchToEndAllowsEmptyLabel(t *testing.T) {
	prog, err := sedscript.Compile("b", "test", sedscript.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if prog.Commands[0].Target != nil {
		t.Fatal("expected nil target for branch-to-end")
	}
}

func TestCompileStepAddress(t *testing.T) {
	prog, err := sedscript.Compile("0~3p", "test", sedscript.Options{ExtendedAddress: true})
	if err != nil {
		t.Fatal(err)
	}
	cmd := prog.Commands[0]
	if cmd.Addr1.Kind != sedaddr.Line || cmd.Addr1.N != 0 {
		t.Fatalf("unexpected addr1: %+v", cmd.Addr1)
	}
	if cmd.Addr2.Kind != sedaddr.Step || cmd.Addr2.K != 3 {
		t.Fatalf("unexpected addr2: %+v", cmd.Addr2)
	}
}

func TestCompileTranslitLengthMismatch(t *testing.T) {
	_, err := sedscript.Compile("y/abc/xy/", "test", sedscript.Options{})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrTranslitLengthMismatch {
		t.Fatalf("expected TranslitLengthMismatch, got %v", err)
	}
}

func TestCompileEmptyRegexReuse(t *testing.T) {
	prog, err := sedscript.Compile("/abc/{s//XYZ/;s///g}", "test", sedscript.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var subs int
	for _, cmd := range prog.Commands {
		if cmd.RawCode == 's' {
			subs++
			if !cmd.Sub.EmptyRegex {
				t.Fatalf("expected empty regex reuse on %+v", cmd.Sub)
			}
		}
	}
	if subs != 2 {
		t.Fatalf("expected 2 substitutions, got %d", subs)
	}
}

func TestCompileCutSelector(t *testing.T) {
	prog, err := sedscript.Compile("C/f1-3//dw", "test", sedscript.Options{})
	if err != nil {
		t.Fatal(err)
	}
	cmd := prog.Commands[0]
	if cmd.Cut == nil || len(cmd.Cut.Ranges) != 1 {
		t.Fatalf("unexpected cut spec: %+v", cmd.Cut)
	}
}

func TestCompileRejectsIOnEmptyRegex(t *testing.T) {
	_, err := sedscript.Compile("s//X/I", "test", sedscript.Options{})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrRegexIncomplete {
		t.Fatalf("expected RegexIncomplete, got %v", err)
	}
}

type discardWriteCloser struct{}

func (discardWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (discardWriteCloser) Close() error                { return nil }

func TestCompileOpensAuxSinksEagerly(t *testing.T) {
	var opened []string
	prog, err := sedscript.Compile("w out.txt", "test", sedscript.Options{
		OpenAux: func(path string) (io.WriteCloser, error) {
			opened = append(opened, path)
			return discardWriteCloser{}, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(opened) != 1 || opened[0] != "out.txt" {
		t.Fatalf("expected OpenAux called once for out.txt, got %v", opened)
	}
	if prog.AuxSinks["out.txt"] == nil {
		t.Fatalf("expected prog.AuxSinks to hold the eagerly-opened sink")
	}
}

func TestCompileAuxSinkOpenFailureSurfacesAtCompile(t *testing.T) {
	_, err := sedscript.Compile("w /no/such/dir/out.txt", "test", sedscript.Options{
		OpenAux: func(path string) (io.WriteCloser, error) {
			return nil, errors.New("permission denied")
		},
	})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrAuxSinkOpenFailed {
		t.Fatalf("expected OpenFailed compile error, got %v", err)
	}
}

func TestCompileUnknownCommandFails(t *testing.T) {
	_, err := sedscript.Compile("k", "test", sedscript.Options{})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrUnknownCommand {
		t.Fatalf("expected UnknownCommand, got %v", err)
	}
}

func TestCompileBareZeroLineAddressFails(t *testing.T) {
	_, err := sedscript.Compile("0p", "test", sedscript.Options{})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrZeroLineAddressInvalid {
		t.Fatalf("expected ZeroLineAddressInvalid, got %v", err)
	}
}

func TestCompileZeroLineNonRegexSecondAddressFails(t *testing.T) {
	_, err := sedscript.Compile("0,5p", "test", sedscript.Options{})
	ce, ok := err.(*sedscript.CompileError)
	if !ok || ce.Kind != sedscript.ErrZeroLineAddressInvalid {
		t.Fatalf("expected ZeroLineAddressInvalid, got %v", err)
	}
}

func TestCompileZeroLineRegexRangeAccepted(t *testing.T) {
	prog, err := sedscript.Compile("0,/b/d", "test", sedscript.Options{})
	if err != nil {
		t.Fatal(err)
	}
	cmd := prog.Commands[0]
	if cmd.Addr1.Kind != sedaddr.Line || cmd.Addr1.N != 0 {
		t.Fatalf("unexpected addr1: %+v", cmd.Addr1)
	}
	if cmd.Addr2.Kind != sedaddr.Regex {
		t.Fatalf("unexpected addr2: %+v", cmd.Addr2)
	}
}
