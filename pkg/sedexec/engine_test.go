package sedexec_test

import (
	"bytes"
	"testing"

	"github.com/rcarmo/hawksed/pkg/sedexec"
	"github.com/rcarmo/hawksed/pkg/sedscript"
	"github.com/rcarmo/hawksed/pkg/sedstream"
)

func runScript(t *testing.T, script, input string) string {
	t.Helper()
	prog, err := sedscript.Compile(script, "test", sedscript.Options{})
	if err != nil {
		t.Fatalf("compile %q: %v", script, err)
	}
	chain := sedstream.NewChain([]sedstream.Source{{Kind: sedstream.KindChars, Chars: input}}, false)
	var out bytes.Buffer
	ex := sedexec.New(prog, sedexec.Options{})
	if err := ex.Execute(chain, &out); err != nil {
		t.Fatalf("execute %q: %v", script, err)
	}
	return out.String()
}

func TestEngineBasicSubstitute(t *testing.T) {
	got := runScript(t, "s/foo/bar/g", "foo foo barfoo\n")
	if want := "bar bar barbar\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEngineEmptyRegexReuse(t *testing.T) {
	got := runScript(t, "/abc/{s//XYZ/;s///g}", "abc\n")
	if want := "XYZ\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEngineHoldSwap(t *testing.T) {
	got := runScript(t, "1h;2{x;p;x}", "one\ntwo\n")
	if want := "one\none\ntwo\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEngineAddressRangeSilentExit(t *testing.T) {
	got := runScript(t, "1,3d", "a\nb\nc\nd\ne\n")
	if want := "d\ne\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEngineGroupNegation(t *testing.T) {
	got := runScript(t, "/^#/!{p;d}", "#a\nb\nc\n")
	if want := "#a\nb\nc\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEngineTransliteration(t *testing.T) {
	got := runScript(t, "y/abc/xyz/", "abc\n")
	if want := "xyz\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestEngineDegenerateRange guards against the range opening twice: a
// second address that is already behind the current line must match only
// the opening line, not the one after it.
func TestEngineDegenerateRange(t *testing.T) {
	got := runScript(t, "1,1p", "a\nb\n")
	if want := "a\na\nb\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestEngineTFlagResetsPerLine guards against 't' firing on a line that
// did not itself contain a substitution, just because an earlier line did:
// line 1's 't' branches past s/.*/NOPE/, while line 2 makes no
// substitution, so its 't' falls through and s/.*/NOPE/ runs.
func TestEngineTFlagResetsPerLine(t *testing.T) {
	got := runScript(t, "s/a/b/;t end;s/.*/NOPE/;:end", "a\nx\n")
	if want := "b\nNOPE\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestEngineZeroLineRange exercises GNU sed's "0,/re/" form: the range is
// open before line 1 even arrives, so the regex is tested against the
// first line instead of only from the second line on.
func TestEngineZeroLineRange(t *testing.T) {
	got := runScript(t, "0,/b/d", "b\nc\nd\n")
	if want := "c\nd\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
