package ast

import (
	"fmt"
	"strings"
)

// Dump renders the tree as a canonical s-expression, ignoring spans and
// layout. normLit canonicalizes string literal spellings so that two trees
// compare equal across quote normalization; pass nil to compare verbatim.
func Dump(b *Builder, file FileID, normLit func(string) string) string {
	if normLit == nil {
		normLit = func(s string) string { return s }
	}
	d := dumper{b: b, norm: normLit}
	var sb strings.Builder
	sb.WriteString("(module")
	for _, id := range b.Files.Get(file).Stmts {
		sb.WriteByte(' ')
		d.stmt(&sb, id)
	}
	sb.WriteByte(')')
	return sb.String()
}

type dumper struct {
	b    *Builder
	norm func(string) string
}

func (d *dumper) stmt(sb *strings.Builder, id StmtID) {
	s := d.b.Stmts.Get(id)
	fmt.Fprintf(sb, "(%s", stmtName(s.Kind))
	switch s.Kind {
	case StmtImport:
		for _, a := range d.b.Stmts.Import(id).Names {
			fmt.Fprintf(sb, " %s@%s", a.Path, a.AsName)
		}
	case StmtImportFrom:
		f := d.b.Stmts.ImportFrom(id)
		fmt.Fprintf(sb, " %s%s", strings.Repeat(".", f.Level), f.Module)
		if f.Star {
			sb.WriteString(" *")
		}
		for _, a := range f.Names {
			fmt.Fprintf(sb, " %s@%s", a.Path, a.AsName)
		}
	case StmtGlobal, StmtNonlocal:
		for _, n := range d.b.Stmts.Names(id).Names {
			sb.WriteByte(' ')
			sb.WriteString(n)
		}
	case StmtAugAssign:
		fmt.Fprintf(sb, " %s", d.b.Stmts.AugAssign(id).Op)
	case StmtFuncDef:
		fmt.Fprintf(sb, " %s", d.b.Stmts.FuncDef(id).Name)
		d.params(sb, d.b.Stmts.FuncDef(id).Params)
	case StmtClassDef:
		fmt.Fprintf(sb, " %s", d.b.Stmts.ClassDef(id).Name)
	}
	for _, child := range d.b.Children(StmtRef(id)) {
		sb.WriteByte(' ')
		switch child.Kind {
		case RefStmt:
			d.stmt(sb, StmtID(child.Index))
		case RefExpr:
			d.expr(sb, ExprID(child.Index))
		}
	}
	sb.WriteByte(')')
}

func (d *dumper) params(sb *strings.Builder, pl ParamList) {
	sb.WriteString(" [")
	for i, p := range pl.Params {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch p.Star {
		case ParamStarArgs:
			sb.WriteByte('*')
		case ParamStarStarKwargs:
			sb.WriteString("**")
		case ParamBareStar:
			sb.WriteString("*,")
		case ParamSlash:
			sb.WriteString("/,")
		case ParamPlain:
		}
		sb.WriteString(p.Name)
	}
	sb.WriteByte(']')
}

func (d *dumper) expr(sb *strings.Builder, id ExprID) {
	e := d.b.Exprs.Get(id)
	switch e.Kind {
	case ExprName:
		sb.WriteString(d.b.Exprs.Name(id).Name)
		return
	case ExprNumber:
		sb.WriteString(d.norm(d.b.Exprs.Number(id).Text))
		return
	case ExprConst:
		sb.WriteString(d.b.Exprs.Const(id).Kind.String())
		return
	case ExprString:
		// Implicitly concatenated parts are one value; compare the joined
		// canonical spelling.
		parts := d.b.Exprs.String(id).Parts
		sb.WriteString("(str")
		for _, p := range parts {
			sb.WriteByte(' ')
			sb.WriteString(d.norm(p))
		}
		sb.WriteByte(')')
		return
	}

	fmt.Fprintf(sb, "(%s", exprName(e.Kind))
	switch e.Kind {
	case ExprAttr:
		fmt.Fprintf(sb, " .%s", d.b.Exprs.Attr(id).Name)
	case ExprBinary:
		fmt.Fprintf(sb, " %s", d.b.Exprs.Binary(id).Op)
	case ExprUnary:
		fmt.Fprintf(sb, " %s", d.b.Exprs.Unary(id).Op)
	case ExprBoolOp:
		fmt.Fprintf(sb, " %s", d.b.Exprs.BoolOp(id).Op)
	case ExprCompare:
		for _, op := range d.b.Exprs.Compare(id).Ops {
			fmt.Fprintf(sb, " %s", op)
		}
	case ExprKeyword:
		fmt.Fprintf(sb, " %s=", d.b.Exprs.Keyword(id).Name)
	case ExprStarred:
		if d.b.Exprs.Starred(id).Double {
			sb.WriteString(" **")
		} else {
			sb.WriteString(" *")
		}
	case ExprLambda:
		d.params(sb, d.b.Exprs.Lambda(id).Params)
	}
	for _, child := range d.b.Children(ExprRef(id)) {
		sb.WriteByte(' ')
		d.expr(sb, ExprID(child.Index))
	}
	sb.WriteByte(')')
}

func stmtName(k StmtKind) string {
	switch k {
	case StmtExpr:
		return "expr"
	case StmtAssign:
		return "assign"
	case StmtAugAssign:
		return "augassign"
	case StmtAnnAssign:
		return "annassign"
	case StmtReturn:
		return "return"
	case StmtPass:
		return "pass"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	case StmtImport:
		return "import"
	case StmtImportFrom:
		return "importfrom"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtFor:
		return "for"
	case StmtWith:
		return "with"
	case StmtFuncDef:
		return "def"
	case StmtClassDef:
		return "class"
	case StmtRaise:
		return "raise"
	case StmtAssert:
		return "assert"
	case StmtDel:
		return "del"
	case StmtGlobal:
		return "global"
	case StmtNonlocal:
		return "nonlocal"
	default:
		return "invalid"
	}
}

func exprName(k ExprKind) string {
	switch k {
	case ExprCall:
		return "call"
	case ExprAttr:
		return "attr"
	case ExprSubscript:
		return "subscript"
	case ExprSlice:
		return "slice"
	case ExprBinary:
		return "binop"
	case ExprUnary:
		return "unary"
	case ExprBoolOp:
		return "boolop"
	case ExprCompare:
		return "compare"
	case ExprTuple:
		return "tuple"
	case ExprList:
		return "list"
	case ExprDict:
		return "dict"
	case ExprSet:
		return "set"
	case ExprStarred:
		return "starred"
	case ExprKeyword:
		return "keyword"
	case ExprLambda:
		return "lambda"
	case ExprCond:
		return "ifexp"
	default:
		return "invalid"
	}
}
