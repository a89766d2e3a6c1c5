package comments

import (
	"testing"

	"pyfmt/internal/ast"
	"pyfmt/internal/diag"
	"pyfmt/internal/lexer"
	"pyfmt/internal/parser"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

func attach(t *testing.T, src string) (*ast.Builder, ast.FileID, *Table) {
	t.Helper()
	fs := source.NewFileSet()
	sf := fs.Get(fs.AddVirtual("test.py", []byte(src)))
	bag := diag.NewBag(10)
	rep := &diag.BagReporter{Bag: bag}
	toks, comms := lexer.Tokenize(sf, lexer.Options{Reporter: rep})
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(sf, toks, b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("parse %q failed: %s", src, bag.Items()[0].Message)
	}
	tab := Attach(b, res.File, sf, comms)
	if err := tab.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return b, res.File, tab
}

func stmtAt(t *testing.T, b *ast.Builder, file ast.FileID, i int) ast.StmtID {
	t.Helper()
	stmts := b.Files.Get(file).Stmts
	if i >= len(stmts) {
		t.Fatalf("want statement %d, have %d", i, len(stmts))
	}
	return stmts[i]
}

func TestTrailingSameLine(t *testing.T) {
	b, file, tab := attach(t, "x = 1  # note\n")
	if tab.Len() != 1 {
		t.Fatalf("len = %d", tab.Len())
	}
	att := tab.Of(0)
	want := ast.StmtRef(stmtAt(t, b, file, 0))
	if att.Place != Trailing || att.Node != want {
		t.Errorf("attachment = %+v, want trailing on first stmt", att)
	}
	if got := tab.TrailingOf(want); len(got) != 1 || got[0] != 0 {
		t.Errorf("TrailingOf = %v", got)
	}
}

func TestLeadingOwnLine(t *testing.T) {
	b, file, tab := attach(t, "# lead\nx = 1\n")
	att := tab.Of(0)
	want := ast.StmtRef(stmtAt(t, b, file, 0))
	if att.Place != Leading || att.Node != want {
		t.Errorf("attachment = %+v, want leading on first stmt", att)
	}
}

func TestLeadingOrderPreserved(t *testing.T) {
	b, file, tab := attach(t, "# one\n# two\nx = 1\n")
	want := ast.StmtRef(stmtAt(t, b, file, 0))
	ids := tab.LeadingOf(want)
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		t.Fatalf("LeadingOf = %v", ids)
	}
	if tab.Comment(ids[0]).Text != "# one" || tab.Comment(ids[1]).Text != "# two" {
		t.Error("leading comments out of source order")
	}
}

func TestLeadingAttachesToSecondStatement(t *testing.T) {
	b, file, tab := attach(t, "x = 1\n\n# about y\ny = 2\n")
	att := tab.Of(0)
	want := ast.StmtRef(stmtAt(t, b, file, 1))
	if att.Place != Leading || att.Node != want {
		t.Errorf("attachment = %+v, want leading on second stmt", att)
	}
}

func TestDanglingAtFileEnd(t *testing.T) {
	_, file, tab := attach(t, "x = 1\n# tail\n")
	att := tab.Of(0)
	if att.Place != Dangling || att.Node != ast.FileRef(file) {
		t.Errorf("attachment = %+v, want dangling on the file", att)
	}
	if got := tab.DanglingOf(ast.FileRef(file)); len(got) != 1 {
		t.Errorf("DanglingOf = %v", got)
	}
}

func TestDanglingInEmptyBrackets(t *testing.T) {
	b, file, tab := attach(t, "x = [  # only\n]\n")
	value := b.Stmts.Assign(stmtAt(t, b, file, 0)).Value
	att := tab.Of(0)
	if att.Place != Dangling || att.Node != ast.ExprRef(value) {
		t.Errorf("attachment = %+v, want dangling on the list", att)
	}
}

func TestLeadingInsideBrackets(t *testing.T) {
	b, file, tab := attach(t, "x = [\n    # first\n    1,\n]\n")
	value := b.Stmts.Assign(stmtAt(t, b, file, 0)).Value
	elt := b.Exprs.Seq(value).Elts[0]
	att := tab.Of(0)
	if att.Place != Leading || att.Node != ast.ExprRef(elt) {
		t.Errorf("attachment = %+v, want leading on the first element", att)
	}
}

func TestTrailingInsideBrackets(t *testing.T) {
	b, file, tab := attach(t, "f(\n    a,  # arg\n    b,\n)\n")
	call := b.Stmts.ExprStmt(stmtAt(t, b, file, 0)).Value
	arg := b.Exprs.Call(call).Args[0]
	att := tab.Of(0)
	if att.Place != Trailing || att.Node != ast.ExprRef(arg) {
		t.Errorf("attachment = %+v, want trailing on the first argument", att)
	}
}

func TestBlockTailDangles(t *testing.T) {
	b, file, tab := attach(t, "if a:\n    pass\n    # after body\nx = 1\n")
	att := tab.Of(0)
	want := ast.StmtRef(stmtAt(t, b, file, 0))
	if att.Place != Dangling || att.Node != want {
		t.Errorf("attachment = %+v, want dangling on the if", att)
	}
}

func TestCommentInsideBodyLeadsNextStatement(t *testing.T) {
	b, file, tab := attach(t, "if a:\n    # about pass\n    pass\n")
	ifStmt := stmtAt(t, b, file, 0)
	body := b.Stmts.If(ifStmt).Body
	att := tab.Of(0)
	if att.Place != Leading || att.Node != ast.StmtRef(body[0]) {
		t.Errorf("attachment = %+v, want leading on the body statement", att)
	}
}

func TestEveryCommentAttachedOnce(t *testing.T) {
	_, _, tab := attach(t, "# a\nx = 1  # b\nif x:\n    # c\n    pass\n# d\n")
	if tab.Len() != 4 {
		t.Fatalf("len = %d", tab.Len())
	}
	seen := map[token.CommentID]bool{}
	for i := 0; i < tab.Len(); i++ {
		id := token.CommentID(i)
		att := tab.Of(id)
		if !att.Node.IsValid() {
			t.Errorf("comment %d attached to invalid node", i)
		}
		seen[id] = true
	}
	if len(seen) != 4 {
		t.Errorf("attachments = %d", len(seen))
	}
}

func TestPlacementString(t *testing.T) {
	if Leading.String() != "leading" || Trailing.String() != "trailing" || Dangling.String() != "dangling" {
		t.Error("placement names changed")
	}
}
