// Package testkit holds the property checks shared by formatter tests:
// idempotence, semantic preservation across a reparse, and comment
// conservation. Each check formats for itself and returns a descriptive
// error, so tests stay one-liners.
package testkit

import (
	"fmt"
	"strings"

	"pyfmt/internal/ast"
	"pyfmt/internal/comments"
	"pyfmt/internal/diag"
	"pyfmt/internal/format"
	"pyfmt/internal/lexer"
	"pyfmt/internal/parser"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

// CheckIdempotent formats src twice and fails if the second pass changes
// anything.
func CheckIdempotent(name string, src []byte, cfg format.Config) error {
	first, err := format.Source(name, src, cfg)
	if err != nil {
		return fmt.Errorf("first pass: %w", err)
	}
	second, err := format.Source(name, []byte(first), cfg)
	if err != nil {
		return fmt.Errorf("second pass: %w", err)
	}
	if first != second {
		return fmt.Errorf("not idempotent:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
	return nil
}

// CheckReparse formats src and fails if the output parses to a different
// tree than the input, up to literal spelling.
func CheckReparse(name string, src []byte, cfg format.Config) error {
	out, err := format.Source(name, src, cfg)
	if err != nil {
		return err
	}

	before, err := dumpTree(name, src)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	after, err := dumpTree(name, []byte(out))
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if before != after {
		return fmt.Errorf("tree changed across formatting:\n--- before ---\n%s\n--- after ---\n%s\n--- output ---\n%s",
			before, after, out)
	}
	return nil
}

// CheckCommentConservation formats src and fails unless the comments of
// the input survive in the output in the same relative order, compared
// by canonical text.
func CheckCommentConservation(name string, src []byte, cfg format.Config) error {
	out, err := format.Source(name, src, cfg)
	if err != nil {
		return err
	}
	want := commentSeq(name, src)
	got := commentSeq(name, []byte(out))
	if err := compareComments(want, got); err != nil {
		return fmt.Errorf("%w\n--- output ---\n%s", err, out)
	}
	return nil
}

func compareComments(want, got []string) error {
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			return fmt.Errorf("comment %d changed or moved: want %q, got %q", i, want[i], got[i])
		}
	}
	if len(got) < len(want) {
		return fmt.Errorf("comment lost: %q", want[len(got)])
	}
	if len(got) > len(want) {
		return fmt.Errorf("comment invented: %q", got[len(want)])
	}
	return nil
}

// CheckAll runs every formatter property against one input.
func CheckAll(name string, src []byte, cfg format.Config) error {
	if err := CheckIdempotent(name, src, cfg); err != nil {
		return err
	}
	if err := CheckReparse(name, src, cfg); err != nil {
		return err
	}
	return CheckCommentConservation(name, src, cfg)
}

func dumpTree(name string, src []byte) (string, error) {
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual(name, src))
	bag := diag.NewBag(50)
	rep := &diag.BagReporter{Bag: bag}
	toks, comms := lexer.Tokenize(sf, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(sf, toks, b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		return "", fmt.Errorf("parse failed: %s", bag.Items()[0].Message)
	}
	if err := CheckSpanInvariants(b, res.File, sf); err != nil {
		return "", err
	}
	if err := comments.Attach(b, res.File, sf, comms).Verify(); err != nil {
		return "", err
	}
	return ast.Dump(b, res.File, format.CanonLiteral), nil
}

// commentSeq lists a file's comments in source order by canonical text.
func commentSeq(name string, src []byte) []string {
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual(name, src))
	_, comms := lexer.Tokenize(sf, lexer.Options{})
	seq := make([]string, len(comms))
	for i, c := range comms {
		seq[i] = canonComment(c)
	}
	return seq
}

func canonComment(c token.Comment) string {
	return strings.TrimSpace(strings.TrimLeft(c.Text, "#"))
}
