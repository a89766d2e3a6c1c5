package parser

import (
	"testing"

	"pyfmt/internal/ast"
	"pyfmt/internal/diag"
	"pyfmt/internal/lexer"
	"pyfmt/internal/source"
)

func parse(t *testing.T, src string) (*ast.Builder, ast.FileID) {
	t.Helper()
	b, file, bag := parseMaybe(t, src)
	if bag.HasErrors() {
		t.Fatalf("parse %q failed: %s", src, bag.Items()[0].Message)
	}
	return b, file
}

func parseMaybe(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual("test.py", []byte(src)))
	bag := diag.NewBag(10)
	rep := &diag.BagReporter{Bag: bag}
	toks, _ := lexer.Tokenize(sf, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{})
	res := ParseFile(sf, toks, b, Options{Reporter: rep})
	return b, res.File, bag
}

func TestTreeShapes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"assign", "x = 1\n", "(module (assign x 1))"},
		{"chained assign", "a = b = c\n", "(module (assign a b c))"},
		{"call", "f(a, b=1)\n", "(module (expr (call f a (keyword b= 1))))"},
		{"tuple targets", "a, b = pair\n", "(module (assign (tuple a b) pair))"},
		{"binary precedence", "x = 1 + 2 * 3\n", "(module (assign x (binop + 1 (binop * 2 3))))"},
		{"parens regroup", "x = (1 + 2) * 3\n", "(module (assign x (binop * (binop + 1 2) 3)))"},
		{"bool nesting", "x = a and b or c\n", "(module (assign x (boolop or (boolop and a b) c)))"},
		{"unary", "x = -y\n", "(module (assign x (unary - y)))"},
		{"compare chain", "x = 1 < a <= 10\n", "(module (assign x (compare < <= 1 a 10)))"},
		{"attr and subscript", "x = a.b[c]\n", "(module (assign x (subscript (attr .b a) c)))"},
		{"slice", "x = a[1:2:3]\n", "(module (assign x (subscript a (slice 1 2 3))))"},
		{"ifexp", "x = a if c else b\n", "(module (assign x (ifexp a c b)))"},
		{"lambda", "f = lambda x: x\n", "(module (assign f (lambda [x] x)))"},
		{"starred", "f(*args, **kw)\n", "(module (expr (call f (starred * args) (starred ** kw))))"},
		{"import", "import os, sys as system\n", "(module (import os@ sys@system))"},
		{"from import", "from ..pkg import a as b\n", "(module (importfrom ..pkg a@b))"},
		{"from import star", "from m import *\n", "(module (importfrom m *))"},
		{"if elif", "if a:\n    pass\nelif b:\n    pass\n", "(module (if a (pass) (if b (pass))))"},
		{"def", "def f(a, b):\n    return a\n", "(module (def f [a b] (return a)))"},
		{"class", "class C(Base):\n    pass\n", "(module (class C Base (pass)))"},
		{"with", "with a as b:\n    pass\n", "(module (with a b (pass)))"},
		{"semicolons", "a = 1; b = 2\n", "(module (assign a 1) (assign b 2))"},
		{"annassign", "x: int = 1\n", "(module (annassign x int 1))"},
		{"augassign", "x += 1\n", "(module (augassign += x 1))"},
		{"del", "del a, b\n", "(module (del a b))"},
		{"raise from", "raise E from err\n", "(module (raise E err))"},
		{"const", "x = None\n", "(module (assign x None))"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, file := parse(t, tc.src)
			if got := ast.Dump(b, file, nil); got != tc.want {
				t.Errorf("got  %s\nwant %s", got, tc.want)
			}
		})
	}
}

func firstStmt(t *testing.T, b *ast.Builder, file ast.FileID) ast.StmtID {
	t.Helper()
	stmts := b.Files.Get(file).Stmts
	if len(stmts) == 0 {
		t.Fatal("no statements")
	}
	return stmts[0]
}

func TestTrailingCommaRecorded(t *testing.T) {
	b, file := parse(t, "x = [1, 2,]\n")
	seq := b.Exprs.Seq(b.Stmts.Assign(firstStmt(t, b, file)).Value)
	if !seq.HasTrailingComma {
		t.Error("list trailing comma not recorded")
	}

	b, file = parse(t, "x = [1, 2]\n")
	seq = b.Exprs.Seq(b.Stmts.Assign(firstStmt(t, b, file)).Value)
	if seq.HasTrailingComma {
		t.Error("phantom trailing comma")
	}
}

func TestTupleParensRecorded(t *testing.T) {
	b, file := parse(t, "x = (1, 2)\n")
	seq := b.Exprs.Seq(b.Stmts.Assign(firstStmt(t, b, file)).Value)
	if !seq.HasParens {
		t.Error("parenthesized tuple not recorded")
	}

	b, file = parse(t, "x = 1, 2\n")
	seq = b.Exprs.Seq(b.Stmts.Assign(firstStmt(t, b, file)).Value)
	if seq.HasParens {
		t.Error("bare tuple must not record parens")
	}
}

func TestWithParenHeuristic(t *testing.T) {
	b, file := parse(t, "with (a as x, b):\n    pass\n")
	d := b.Stmts.With(firstStmt(t, b, file))
	if !d.HasParens || len(d.Items) != 2 {
		t.Errorf("item list: HasParens=%v items=%d", d.HasParens, len(d.Items))
	}

	// A parenthesized single expression is a context manager, not a list.
	b, file = parse(t, "with (a):\n    pass\n")
	d = b.Stmts.With(firstStmt(t, b, file))
	if d.HasParens || len(d.Items) != 1 {
		t.Errorf("single context: HasParens=%v items=%d", d.HasParens, len(d.Items))
	}

	b, file = parse(t, "with (a as x, b as y,):\n    pass\n")
	d = b.Stmts.With(firstStmt(t, b, file))
	if !d.HasTrailingComma {
		t.Error("with trailing comma not recorded")
	}
}

func TestImportFromFlags(t *testing.T) {
	b, file := parse(t, "from m import (a, b,)\n")
	d := b.Stmts.ImportFrom(firstStmt(t, b, file))
	if !d.HasParens || !d.HasTrailingComma {
		t.Errorf("HasParens=%v HasTrailingComma=%v", d.HasParens, d.HasTrailingComma)
	}

	b, file = parse(t, "from m import a, b\n")
	d = b.Stmts.ImportFrom(firstStmt(t, b, file))
	if d.HasParens || d.HasTrailingComma {
		t.Errorf("bare form: HasParens=%v HasTrailingComma=%v", d.HasParens, d.HasTrailingComma)
	}
}

func TestElifChain(t *testing.T) {
	b, file := parse(t, "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n")
	d := b.Stmts.If(firstStmt(t, b, file))
	if d.IsElif {
		t.Error("outer if must not be elif")
	}
	if len(d.Orelse) != 1 {
		t.Fatalf("orelse = %d", len(d.Orelse))
	}
	inner := b.Stmts.If(d.Orelse[0])
	if inner == nil || !inner.IsElif {
		t.Error("nested branch must be an elif")
	}
	if len(inner.Orelse) != 1 {
		t.Errorf("elif orelse = %d", len(inner.Orelse))
	}
}

func TestDecoratorSpanCoversStatement(t *testing.T) {
	b, file := parse(t, "@dec\ndef f():\n    pass\n")
	st := b.Stmts.Get(firstStmt(t, b, file))
	if st.Span.Start != 0 {
		t.Errorf("decorated def span starts at %d, want 0", st.Span.Start)
	}
}

func TestParamForms(t *testing.T) {
	b, file := parse(t, "def f(a, b=1, /, c, *, d, **kw):\n    pass\n")
	d := b.Stmts.FuncDef(firstStmt(t, b, file))
	stars := make([]ast.ParamStar, 0, len(d.Params.Params))
	for _, pm := range d.Params.Params {
		stars = append(stars, pm.Star)
	}
	want := []ast.ParamStar{
		ast.ParamPlain, ast.ParamPlain, ast.ParamSlash,
		ast.ParamPlain, ast.ParamBareStar, ast.ParamPlain,
		ast.ParamStarStarKwargs,
	}
	if len(stars) != len(want) {
		t.Fatalf("param count %d, want %d", len(stars), len(want))
	}
	for i := range want {
		if stars[i] != want[i] {
			t.Errorf("param %d star = %v, want %v", i, stars[i], want[i])
		}
	}
	if !d.Params.Params[1].Default.IsValid() {
		t.Error("default of b missing")
	}
}

func TestErrorsReported(t *testing.T) {
	for _, src := range []string{
		"x = = 1\n",
		"if a\n    pass\n",
		"def f(:\n    pass\n",
		"@dec\nx = 1\n",
	} {
		_, _, bag := parseMaybe(t, src)
		if !bag.HasErrors() {
			t.Errorf("expected errors for %q", src)
		}
	}
}

func TestDiagnosticCodes(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"import 1\n", diag.SynExpectIdentifier},
		{"global 1\n", diag.SynExpectIdentifier},
		{"x = (1\n", diag.SynUnclosedDelimiter},
		{"x = [1, 2\n", diag.SynUnclosedDelimiter},
		{"f() = 1\n", diag.SynBadAssignTarget},
		{"a + b = 1\n", diag.SynBadAssignTarget},
		{"1 += 2\n", diag.SynBadAssignTarget},
	}
	for _, tc := range cases {
		_, _, bag := parseMaybe(t, tc.src)
		found := false
		for _, d := range bag.Items() {
			if d.Code == tc.code {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%q: code %s not reported, got %v", tc.src, tc.code, bag.Items())
		}
	}
}

func TestValidTargetsAccepted(t *testing.T) {
	for _, src := range []string{
		"a, *rest = xs\n",
		"a.b[c] = 1\n",
		"[x, y] = pair\n",
		"obj.attr += 1\n",
	} {
		parse(t, src)
	}
}

func TestErrorRecoveryKeepsGoing(t *testing.T) {
	_, file, bag := parseMaybe(t, "x = = 1\ny = 2\n")
	if !bag.HasErrors() {
		t.Fatal("expected errors")
	}
	_ = file
	if bag.Len() == 0 {
		t.Fatal("bag empty")
	}
}
