package sedstream_test

import (
	"bytes"
	"testing"

	"github.com/rcarmo/hawksed/pkg/sedstream"
)

func TestChainReadsAcrossSources(t *testing.T) {
	chain := sedstream.NewChain([]sedstream.Source{
		{Kind: sedstream.KindChars, Chars: "foo\n"},
		{Kind: sedstream.KindChars, Chars: "bar\n"},
	}, false)
	lr := sedstream.NewLineReader(chain)

	line, ok, err := lr.Next()
	if err != nil || !ok || line != "foo\n" {
		t.Fatalf("got %q %v %v", line, ok, err)
	}
	line, ok, err = lr.Next()
	if err != nil || !ok || line != "bar\n" {
		t.Fatalf("got %q %v %v", line, ok, err)
	}
	_, ok, err = lr.Next()
	if err != nil || ok {
		t.Fatalf("expected clean eof, got %v %v", ok, err)
	}
}

func TestChainSynthesizesNewlineBetweenElements(t *testing.T) {
	chain := sedstream.NewChain([]sedstream.Source{
		{Kind: sedstream.KindChars, Chars: "s/a/b/"}, // no trailing newline
		{Kind: sedstream.KindChars, Chars: "p\n"},
	}, true)
	lr := sedstream.NewLineReader(chain)

	line, ok, err := lr.Next()
	if err != nil || !ok || line != "s/a/b/\n" {
		t.Fatalf("got %q %v %v", line, ok, err)
	}
	line, ok, err = lr.Next()
	if err != nil || !ok || line != "p\n" {
		t.Fatalf("got %q %v %v", line, ok, err)
	}
}

func TestChainDoesNotSynthesizeForDataStreams(t *testing.T) {
	chain := sedstream.NewChain([]sedstream.Source{
		{Kind: sedstream.KindChars, Chars: "abc"},
		{Kind: sedstream.KindChars, Chars: "def\n"},
	}, false)
	lr := sedstream.NewLineReader(chain)

	line, ok, err := lr.Next()
	if err != nil || !ok || line != "abcdef\n" {
		t.Fatalf("got %q %v %v", line, ok, err)
	}
}

func TestAtEOFLookAhead(t *testing.T) {
	chain := sedstream.NewChain([]sedstream.Source{
		{Kind: sedstream.KindChars, Chars: "only\n"},
	}, false)
	lr := sedstream.NewLineReader(chain)

	line, ok, err := lr.Next()
	if err != nil || !ok || line != "only\n" {
		t.Fatalf("got %q %v %v", line, ok, err)
	}
	atEOF, err := lr.AtEOF()
	if err != nil || !atEOF {
		t.Fatalf("expected EOF, got %v %v", atEOF, err)
	}
}

func TestSinkFlushesOnNewline(t *testing.T) {
	var buf bytes.Buffer
	sink := sedstream.NewSink(&buf)
	if err := sink.WriteString("hello\n"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n" {
		t.Fatalf("expected immediate flush, got %q", buf.String())
	}
}
