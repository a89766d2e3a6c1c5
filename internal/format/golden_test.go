package format

import (
	"strings"
	"testing"
)

const sampleFixture = `Fixture for list layout.

## Input
x = [1, 2,]

## Pyfmt Output
x = [
    1,
    2,
]

## Reference Output
x = [
    1,
    2,
]

## Reference Differences
none
`

func TestParseFixture(t *testing.T) {
	f, err := ParseFixture("lists.md", []byte(sampleFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Input != "x = [1, 2,]\n" {
		t.Errorf("input = %q", f.Input)
	}
	if !strings.HasPrefix(f.Expected, "x = [\n") || !strings.HasSuffix(f.Expected, "]\n") {
		t.Errorf("expected = %q", f.Expected)
	}
	if f.ReferenceOutput != f.Expected {
		t.Errorf("reference = %q", f.ReferenceOutput)
	}
	if f.Notes != "none" {
		t.Errorf("notes = %q", f.Notes)
	}
}

func TestParseFixtureMissingSections(t *testing.T) {
	if _, err := ParseFixture("x", []byte("## Input\na = 1\n")); err == nil {
		t.Error("missing output section must fail")
	}
	if _, err := ParseFixture("x", []byte("## Pyfmt Output\na = 1\n")); err == nil {
		t.Error("missing input section must fail")
	}
	if _, err := ParseFixture("x", []byte("## Input\na\n## Bogus\nb\n## Pyfmt Output\na\n")); err == nil {
		t.Error("unknown section must fail")
	}
}

func TestFixtureAgainstFormatter(t *testing.T) {
	f, err := ParseFixture("lists.md", []byte(sampleFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := Source(f.Name, []byte(f.Input), Default())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if d := f.Diff(out); d != "" {
		t.Errorf("fixture mismatch:\n%s", d)
	}
}

func TestFixtureDiff(t *testing.T) {
	f := &Fixture{Name: "t", Expected: "a\n"}
	if f.Diff("a\n") != "" {
		t.Error("matching output diffs empty")
	}
	d := f.Diff("b\n")
	if !strings.Contains(d, "-a") || !strings.Contains(d, "+b") {
		t.Errorf("diff missing changes:\n%s", d)
	}
}

func TestUnifiedDiff(t *testing.T) {
	if UnifiedDiff("f.py", "same\n", "same\n") != "" {
		t.Error("identical texts diff empty")
	}
	d := UnifiedDiff("f.py", "x=1\n", "x = 1\n")
	if !strings.Contains(d, "f.py") || !strings.Contains(d, "+x = 1") {
		t.Errorf("unexpected diff:\n%s", d)
	}
}
