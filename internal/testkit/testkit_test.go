package testkit

import (
	"testing"

	"pyfmt/internal/format"
)

func TestCommentSeqOrder(t *testing.T) {
	src := "# one\nx = 1  # two\n# three\ny = 2\n"
	want := []string{"one", "two", "three"}
	got := commentSeq("order.py", []byte(src))
	if len(got) != len(want) {
		t.Fatalf("seq = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("seq[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCompareComments(t *testing.T) {
	if err := compareComments([]string{"a", "b"}, []string{"a", "b"}); err != nil {
		t.Errorf("equal sequences: %v", err)
	}
	if err := compareComments([]string{"a", "b"}, []string{"b", "a"}); err == nil {
		t.Error("reordered comments must fail")
	}
	if err := compareComments([]string{"a", "b"}, []string{"a"}); err == nil {
		t.Error("lost comment must fail")
	}
	if err := compareComments([]string{"a"}, []string{"a", "b"}); err == nil {
		t.Error("invented comment must fail")
	}
}

func TestConservationOnCommentHeavyInput(t *testing.T) {
	src := "# top\nx = 1  # trail\nf(a,  # arg\n  b)\n# tail\n"
	if err := CheckCommentConservation("c.py", []byte(src), format.Default()); err != nil {
		t.Error(err)
	}
}
