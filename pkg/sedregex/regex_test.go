package sedregex_test

import (
	"testing"

	"github.com/rcarmo/hawksed/pkg/sedregex"
)

func TestMatchBasic(t *testing.T) {
	m, err := sedregex.Build(`fo\{2\}`, false, false)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := m.MatchString("foo")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected match")
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	m, err := sedregex.Build("abc", true, false)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := m.MatchString("ABC")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
}

func TestMatchGroupsAndBackreference(t *testing.T) {
	m, err := sedregex.Build(`\(a\)\1`, false, false)
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Match("aa", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil {
		t.Fatal("expected match on backreference \\1")
	}
	if !res.Spans[1].Set || res.Spans[1].Start != 0 || res.Spans[1].End != 1 {
		t.Fatalf("unexpected group span: %+v", res.Spans[1])
	}
}

func TestMatchNoMatch(t *testing.T) {
	m, err := sedregex.Build("xyz", false, false)
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Match("abc", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatal("expected no match")
	}
}

func TestStartAtAnchorsBeginning(t *testing.T) {
	m, err := sedregex.Build("^a", false, false)
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Match("aa", 1, sedregex.NotBeginningOfLine)
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatal("^ should not match mid-string")
	}
}
