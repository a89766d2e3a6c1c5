package format

import (
	"strings"

	"pyfmt/internal/ast"
	"pyfmt/internal/doc"
)

func (p *printer) stmt(id ast.StmtID, depth int) doc.ID {
	t := p.t
	st := p.b.Stmts.Get(id)

	switch st.Kind {
	case ast.StmtPass:
		return t.Text("pass")
	case ast.StmtBreak:
		return t.Text("break")
	case ast.StmtContinue:
		return t.Text("continue")

	case ast.StmtExpr:
		return p.guardExpr(p.b.Stmts.ExprStmt(id).Value, precLowest)

	case ast.StmtAssign:
		d := p.b.Stmts.Assign(id)
		parts := make([]doc.ID, 0, len(d.Targets)*2+1)
		for _, tgt := range d.Targets {
			parts = append(parts, p.exprFlat(tgt, precLowest), t.Text(" = "))
		}
		parts = append(parts, p.rhs(d.Value))
		return t.Concat(parts...)

	case ast.StmtAugAssign:
		d := p.b.Stmts.AugAssign(id)
		return t.Concat(
			p.exprFlat(d.Target, precPostfix),
			t.Text(" "+d.Op.String()+" "),
			p.rhs(d.Value),
		)

	case ast.StmtAnnAssign:
		d := p.b.Stmts.AnnAssign(id)
		parts := []doc.ID{
			p.exprFlat(d.Target, precPostfix),
			t.Text(": "),
			p.guardExpr(d.Annot, precTest),
		}
		if d.Value.IsValid() {
			parts = append(parts, t.Text(" = "), p.rhs(d.Value))
		}
		return t.Concat(parts...)

	case ast.StmtReturn:
		d := p.b.Stmts.Return(id)
		if !d.Value.IsValid() {
			return t.Text("return")
		}
		return t.Concat(t.Text("return "), p.rhs(d.Value))

	case ast.StmtRaise:
		d := p.b.Stmts.Raise(id)
		if !d.Exc.IsValid() {
			return t.Text("raise")
		}
		parts := []doc.ID{t.Text("raise "), p.guardExpr(d.Exc, precTest)}
		if d.From.IsValid() {
			parts = append(parts, t.Text(" from "), p.guardExpr(d.From, precTest))
		}
		return t.Concat(parts...)

	case ast.StmtAssert:
		d := p.b.Stmts.Assert(id)
		parts := []doc.ID{t.Text("assert "), p.guardExpr(d.Test, precTest)}
		if d.Msg.IsValid() {
			parts = append(parts, t.Text(", "), p.guardExpr(d.Msg, precTest))
		}
		return t.Concat(parts...)

	case ast.StmtDel:
		d := p.b.Stmts.Del(id)
		parts := []doc.ID{t.Text("del ")}
		for i, tgt := range d.Targets {
			if i > 0 {
				parts = append(parts, t.Text(", "))
			}
			parts = append(parts, p.exprFlat(tgt, precPostfix))
		}
		return t.Concat(parts...)

	case ast.StmtGlobal:
		return t.Text("global " + strings.Join(p.b.Stmts.Names(id).Names, ", "))
	case ast.StmtNonlocal:
		return t.Text("nonlocal " + strings.Join(p.b.Stmts.Names(id).Names, ", "))

	case ast.StmtImport:
		d := p.b.Stmts.Import(id)
		parts := []doc.ID{t.Text("import ")}
		for i, a := range d.Names {
			if i > 0 {
				parts = append(parts, t.Text(", "))
			}
			parts = append(parts, t.Text(aliasText(a)))
		}
		return t.Concat(parts...)

	case ast.StmtImportFrom:
		return p.importFrom(id)

	case ast.StmtIf:
		return p.ifStmt(id, depth)

	case ast.StmtWhile:
		d := p.b.Stmts.While(id)
		header := t.Concat(
			t.Text("while "),
			p.guard(d.Cond, precLowest),
			t.Text(":"),
			p.trail(ast.ExprRef(d.Cond)),
		)
		bodyDangle := ast.StmtRef(id)
		if len(d.Orelse) > 0 {
			bodyDangle = ast.NodeRef{}
		}
		parts := []doc.ID{header, p.block(d.Body, depth, bodyDangle)}
		if len(d.Orelse) > 0 {
			parts = append(parts, t.Hard(), t.Text("else:"), p.block(d.Orelse, depth, ast.StmtRef(id)))
		}
		return t.Concat(parts...)

	case ast.StmtFor:
		d := p.b.Stmts.For(id)
		header := t.Concat(
			t.Text("for "),
			p.exprFlatBare(d.Target, precLowest),
			t.Text(" in "),
			p.guard(d.Iter, precLowest),
			t.Text(":"),
			p.trail(ast.ExprRef(d.Iter)),
		)
		bodyDangle := ast.StmtRef(id)
		if len(d.Orelse) > 0 {
			bodyDangle = ast.NodeRef{}
		}
		parts := []doc.ID{header, p.block(d.Body, depth, bodyDangle)}
		if len(d.Orelse) > 0 {
			parts = append(parts, t.Hard(), t.Text("else:"), p.block(d.Orelse, depth, ast.StmtRef(id)))
		}
		return t.Concat(parts...)

	case ast.StmtWith:
		return p.withStmt(id, depth)

	case ast.StmtFuncDef:
		return p.funcDef(id, depth)

	case ast.StmtClassDef:
		return p.classDef(id, depth)
	}

	return t.Text("")
}

// rhs lays out the right-hand side of a binding. Bare operator chains
// gain parentheses when they must break; bracketed expressions break
// inside their own brackets instead.
func (p *printer) rhs(id ast.ExprID) doc.ID {
	return p.guardExpr(id, precLowest)
}

func aliasText(a ast.ImportAlias) string {
	if a.AsName != "" {
		return a.Path + " as " + a.AsName
	}
	return a.Path
}

func (p *printer) importFrom(id ast.StmtID) doc.ID {
	t := p.t
	d := p.b.Stmts.ImportFrom(id)
	prefix := "from " + strings.Repeat(".", d.Level) + d.Module + " import "
	if d.Star {
		return t.Text(prefix + "*")
	}

	var inner []doc.ID
	inner = append(inner, t.IfBreak(t.Text("("), doc.None))
	inner = append(inner, t.Indent(func() doc.ID {
		var items []doc.ID
		items = append(items, t.Soft())
		for i, a := range d.Names {
			items = append(items, t.Text(aliasText(a)))
			if i < len(d.Names)-1 {
				items = append(items, t.Text(","), t.Space())
			} else {
				items = append(items, t.IfBreak(t.Text(","), doc.None))
			}
		}
		return t.Concat(items...)
	}()))
	inner = append(inner, t.Soft(), t.IfBreak(t.Text(")"), doc.None))

	content := t.Concat(append([]doc.ID{t.Text(prefix)}, inner...)...)
	if d.HasParens && d.HasTrailingComma {
		return t.GroupForced(content)
	}
	return t.Group(content)
}

func (p *printer) ifStmt(id ast.StmtID, depth int) doc.ID {
	t := p.t
	d := p.b.Stmts.If(id)
	kw := "if "
	if d.IsElif {
		kw = "elif "
	}
	header := t.Concat(
		t.Text(kw),
		p.guard(d.Cond, precLowest),
		t.Text(":"),
		p.trail(ast.ExprRef(d.Cond)),
	)

	bodyDangle := ast.StmtRef(id)
	if len(d.Orelse) > 0 {
		bodyDangle = ast.NodeRef{}
	}
	parts := []doc.ID{header, p.block(d.Body, depth, bodyDangle)}

	switch {
	case len(d.Orelse) == 1 && p.isElif(d.Orelse[0]):
		next := d.Orelse[0]
		parts = append(parts, t.Hard(), p.lead(ast.StmtRef(next)), p.stmt(next, depth))
	case len(d.Orelse) > 0:
		parts = append(parts, t.Hard(), t.Text("else:"), p.block(d.Orelse, depth, ast.StmtRef(id)))
	}
	return t.Concat(parts...)
}

func (p *printer) isElif(id ast.StmtID) bool {
	d := p.b.Stmts.If(id)
	return d != nil && d.IsElif
}

// withStmt lays out a with statement. Parenthesized item lists stay
// breakable brackets with the usual trailing-comma handling; bare item
// lists are emitted flat and are never parenthesized just because the
// line is long. Only a comment pinned inside an item forces the
// parenthesized form.
func (p *printer) withStmt(id ast.StmtID, depth int) doc.ID {
	t := p.t
	d := p.b.Stmts.With(id)

	itemDocs := make([]doc.ID, len(d.Items))
	itemRefs := make([]ast.NodeRef, len(d.Items))
	for i, it := range d.Items {
		parts := []doc.ID{p.guard(it.Context, precTest)}
		ref := ast.ExprRef(it.Context)
		if it.Var.IsValid() {
			parts = append(parts, p.trail(ref), t.Text(" as "), p.exprFlatBare(it.Var, precPostfix))
			ref = ast.ExprRef(it.Var)
		}
		itemDocs[i] = t.Concat(parts...)
		itemRefs[i] = ref
	}

	var head doc.ID
	mustParen := false
	if len(d.Items) >= 2 {
		for _, it := range itemDocs {
			if t.HasHard(it) {
				mustParen = true
				break
			}
		}
	}
	switch {
	case d.HasParens && (len(d.Items) > 1 || d.HasTrailingComma):
		head = p.brackets("(", ")", itemDocs, itemRefs, d.HasTrailingComma, ast.NodeRef{})
	case mustParen:
		head = p.brackets("(", ")", itemDocs, itemRefs, true, ast.NodeRef{})
	default:
		flat := make([]doc.ID, 0, len(itemDocs)*2)
		for i, it := range itemDocs {
			if i > 0 {
				flat = append(flat, t.Text(", "))
			}
			flat = append(flat, it)
		}
		head = t.Concat(flat...)
	}

	lastRef := itemRefs[len(itemRefs)-1]
	return t.Concat(
		t.Text("with "),
		head,
		t.Text(":"),
		p.trail(lastRef),
		p.block(d.Body, depth, ast.StmtRef(id)),
	)
}

func (p *printer) funcDef(id ast.StmtID, depth int) doc.ID {
	t := p.t
	d := p.b.Stmts.FuncDef(id)

	var parts []doc.ID
	for _, dec := range d.Decorators {
		parts = append(parts, t.Text("@"), p.exprFlat(dec, precPostfix), t.Hard())
	}

	parts = append(parts, t.Text("def "+d.Name), p.paramsDoc(d.Params))
	if d.Returns.IsValid() {
		parts = append(parts, t.Text(" -> "), p.guard(d.Returns, precTest))
	}
	parts = append(parts, t.Text(":"))
	if d.Returns.IsValid() {
		parts = append(parts, p.trail(ast.ExprRef(d.Returns)))
	}
	parts = append(parts, p.block(d.Body, depth, ast.StmtRef(id)))
	return t.Concat(parts...)
}

func (p *printer) paramsDoc(pl ast.ParamList) doc.ID {
	if len(pl.Params) == 0 {
		return p.t.Text("()")
	}
	docs := make([]doc.ID, len(pl.Params))
	refs := make([]ast.NodeRef, len(pl.Params))
	for i, pm := range pl.Params {
		docs[i] = p.paramDoc(pm)
		switch {
		case pm.Default.IsValid():
			refs[i] = ast.ExprRef(pm.Default)
		case pm.Annot.IsValid():
			refs[i] = ast.ExprRef(pm.Annot)
		}
	}
	return p.brackets("(", ")", docs, refs, pl.HasTrailingComma, ast.NodeRef{})
}

func (p *printer) paramDoc(pm ast.Param) doc.ID {
	t := p.t
	switch pm.Star {
	case ast.ParamBareStar:
		return t.Text("*")
	case ast.ParamSlash:
		return t.Text("/")
	}
	prefix := ""
	switch pm.Star {
	case ast.ParamStarArgs:
		prefix = "*"
	case ast.ParamStarStarKwargs:
		prefix = "**"
	}
	parts := []doc.ID{t.Text(prefix + pm.Name)}
	switch {
	case pm.Annot.IsValid() && pm.Default.IsValid():
		parts = append(parts,
			t.Text(": "), p.exprBare(pm.Annot, precTest),
			t.Text(" = "), p.exprBare(pm.Default, precTest))
	case pm.Annot.IsValid():
		parts = append(parts, t.Text(": "), p.exprBare(pm.Annot, precTest))
	case pm.Default.IsValid():
		parts = append(parts, t.Text("="), p.exprBare(pm.Default, precTest))
	}
	return t.Concat(parts...)
}

func (p *printer) classDef(id ast.StmtID, depth int) doc.ID {
	t := p.t
	d := p.b.Stmts.ClassDef(id)

	var parts []doc.ID
	for _, dec := range d.Decorators {
		parts = append(parts, t.Text("@"), p.exprFlat(dec, precPostfix), t.Hard())
	}

	parts = append(parts, t.Text("class "+d.Name))
	if len(d.Bases) > 0 {
		docs := make([]doc.ID, len(d.Bases))
		refs := make([]ast.NodeRef, len(d.Bases))
		for i, b := range d.Bases {
			docs[i] = p.exprBare(b, precTest)
			refs[i] = ast.ExprRef(b)
		}
		parts = append(parts, p.brackets("(", ")", docs, refs, d.HasTrailingComma, ast.NodeRef{}))
	}
	// Empty base lists lose their parentheses.
	parts = append(parts, t.Text(":"), p.block(d.Body, depth, ast.StmtRef(id)))
	return t.Concat(parts...)
}
