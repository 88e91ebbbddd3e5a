package cutsel_test

import (
	"testing"

	"github.com/rcarmo/hawksed/pkg/cutsel"
)

func TestParseRangesMixed(t *testing.T) {
	ranges, err := cutsel.ParseRanges("c1-3,f2,f5-,c-7")
	if err != nil {
		t.Fatal(err)
	}
	if len(ranges) != 4 {
		t.Fatalf("expected 4 ranges, got %d", len(ranges))
	}
	if ranges[0].Kind != cutsel.Char || ranges[0].Start != 1 || ranges[0].End != 3 {
		t.Fatalf("unexpected range[0]: %+v", ranges[0])
	}
	if ranges[2].Kind != cutsel.Field || !ranges[2].HasStart || ranges[2].HasEnd {
		t.Fatalf("unexpected open range[2]: %+v", ranges[2])
	}
}

func TestApplyFieldRange(t *testing.T) {
	spec := cutsel.NewSpec()
	spec.Ranges, _ = cutsel.ParseRanges("f1,f3")
	out, drop := cutsel.Apply("a b c d", spec)
	if drop {
		t.Fatal("unexpected drop")
	}
	if out != "a c" {
		t.Fatalf("got %q", out)
	}
}

func TestApplyCharDescendingRange(t *testing.T) {
	spec := cutsel.NewSpec()
	spec.Ranges, _ = cutsel.ParseRanges("c3-1")
	out, _ := cutsel.Apply("abcdef", spec)
	if out != "cba" {
		t.Fatalf("got %q", out)
	}
}

func TestApplyDropWhenUndelimited(t *testing.T) {
	spec := cutsel.NewSpec()
	spec.DropUndelimited = true
	spec.Ranges, _ = cutsel.ParseRanges("f1")
	_, drop := cutsel.Apply("nodelimiterhere", spec)
	if !drop {
		t.Fatal("expected drop")
	}
}

func TestApplyOpenEndedRanges(t *testing.T) {
	spec := cutsel.NewSpec()
	spec.Ranges, _ = cutsel.ParseRanges("c2-")
	out, _ := cutsel.Apply("abcdef", spec)
	if out != "bcdef" {
		t.Fatalf("got %q", out)
	}
}
