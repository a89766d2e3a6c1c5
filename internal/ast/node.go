package ast

import "pyfmt/internal/source"

// RefKind tags a NodeRef.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefFile
	RefStmt
	RefExpr
)

// NodeRef addresses any node in the tree without a pointer, so comment
// attachments and other side tables cannot form reference cycles.
type NodeRef struct {
	Kind  RefKind
	Index uint32
}

func FileRef(id FileID) NodeRef { return NodeRef{Kind: RefFile, Index: uint32(id)} }
func StmtRef(id StmtID) NodeRef { return NodeRef{Kind: RefStmt, Index: uint32(id)} }
func ExprRef(id ExprID) NodeRef { return NodeRef{Kind: RefExpr, Index: uint32(id)} }

func (r NodeRef) IsValid() bool { return r.Kind != RefInvalid && r.Index != 0 }

// RefSpan returns the source span of any node.
func (b *Builder) RefSpan(ref NodeRef) source.Span {
	switch ref.Kind {
	case RefFile:
		return b.Files.Get(FileID(ref.Index)).Span
	case RefStmt:
		return b.Stmts.Get(StmtID(ref.Index)).Span
	case RefExpr:
		return b.Exprs.Get(ExprID(ref.Index)).Span
	}
	return source.Span{}
}

// Children returns the direct children of a node in source order.
func (b *Builder) Children(ref NodeRef) []NodeRef {
	var out []NodeRef
	expr := func(id ExprID) {
		if id.IsValid() {
			out = append(out, ExprRef(id))
		}
	}
	exprs := func(ids []ExprID) {
		for _, id := range ids {
			expr(id)
		}
	}
	stmts := func(ids []StmtID) {
		for _, id := range ids {
			out = append(out, StmtRef(id))
		}
	}
	params := func(pl ParamList) {
		for _, p := range pl.Params {
			expr(p.Annot)
			expr(p.Default)
		}
	}

	switch ref.Kind {
	case RefFile:
		stmts(b.Files.Get(FileID(ref.Index)).Stmts)

	case RefStmt:
		id := StmtID(ref.Index)
		switch b.Stmts.Get(id).Kind {
		case StmtExpr:
			expr(b.Stmts.ExprStmt(id).Value)
		case StmtAssign:
			d := b.Stmts.Assign(id)
			exprs(d.Targets)
			expr(d.Value)
		case StmtAugAssign:
			d := b.Stmts.AugAssign(id)
			expr(d.Target)
			expr(d.Value)
		case StmtAnnAssign:
			d := b.Stmts.AnnAssign(id)
			expr(d.Target)
			expr(d.Annot)
			expr(d.Value)
		case StmtReturn:
			expr(b.Stmts.Return(id).Value)
		case StmtIf:
			d := b.Stmts.If(id)
			expr(d.Cond)
			stmts(d.Body)
			stmts(d.Orelse)
		case StmtWhile:
			d := b.Stmts.While(id)
			expr(d.Cond)
			stmts(d.Body)
			stmts(d.Orelse)
		case StmtFor:
			d := b.Stmts.For(id)
			expr(d.Target)
			expr(d.Iter)
			stmts(d.Body)
			stmts(d.Orelse)
		case StmtWith:
			d := b.Stmts.With(id)
			for _, item := range d.Items {
				expr(item.Context)
				expr(item.Var)
			}
			stmts(d.Body)
		case StmtFuncDef:
			d := b.Stmts.FuncDef(id)
			exprs(d.Decorators)
			params(d.Params)
			expr(d.Returns)
			stmts(d.Body)
		case StmtClassDef:
			d := b.Stmts.ClassDef(id)
			exprs(d.Decorators)
			exprs(d.Bases)
			stmts(d.Body)
		case StmtRaise:
			d := b.Stmts.Raise(id)
			expr(d.Exc)
			expr(d.From)
		case StmtAssert:
			d := b.Stmts.Assert(id)
			expr(d.Test)
			expr(d.Msg)
		case StmtDel:
			exprs(b.Stmts.Del(id).Targets)
		case StmtPass, StmtBreak, StmtContinue, StmtImport, StmtImportFrom,
			StmtGlobal, StmtNonlocal, StmtInvalid:
			// leaves
		}

	case RefExpr:
		id := ExprID(ref.Index)
		switch b.Exprs.Get(id).Kind {
		case ExprCall:
			d := b.Exprs.Call(id)
			expr(d.Func)
			exprs(d.Args)
		case ExprAttr:
			expr(b.Exprs.Attr(id).Value)
		case ExprSubscript:
			d := b.Exprs.Subscript(id)
			expr(d.Value)
			expr(d.Index)
		case ExprSlice:
			d := b.Exprs.Slice(id)
			expr(d.Lo)
			expr(d.Hi)
			expr(d.Step)
		case ExprBinary:
			d := b.Exprs.Binary(id)
			expr(d.Left)
			expr(d.Right)
		case ExprUnary:
			expr(b.Exprs.Unary(id).Operand)
		case ExprBoolOp:
			exprs(b.Exprs.BoolOp(id).Values)
		case ExprCompare:
			d := b.Exprs.Compare(id)
			expr(d.Left)
			exprs(d.Comparators)
		case ExprTuple, ExprList, ExprSet:
			exprs(b.Exprs.Seq(id).Elts)
		case ExprDict:
			d := b.Exprs.Dict(id)
			for i := range d.Values {
				expr(d.Keys[i])
				expr(d.Values[i])
			}
		case ExprStarred:
			expr(b.Exprs.Starred(id).Value)
		case ExprKeyword:
			expr(b.Exprs.Keyword(id).Value)
		case ExprLambda:
			d := b.Exprs.Lambda(id)
			params(d.Params)
			expr(d.Body)
		case ExprCond:
			d := b.Exprs.Cond(id)
			expr(d.Body)
			expr(d.Test)
			expr(d.Orelse)
		case ExprName, ExprNumber, ExprString, ExprConst, ExprInvalid:
			// leaves
		}
	}
	return out
}
