package format

import (
	"strings"

	"pyfmt/internal/ast"
	"pyfmt/internal/comments"
	"pyfmt/internal/doc"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

// printer lowers one syntax tree into a layout document. It is created
// per invocation and discarded with its document tree.
type printer struct {
	b   *ast.Builder
	sf  *source.File
	tbl *comments.Table
	cfg Config
	t   *doc.Tree

	// emitted tracks which comments made it into the document, so the
	// file builder can sweep up anything no construct claimed. Output
	// never drops a comment.
	emitted []bool

	// flatChains suppresses call-chain splitting while rendering
	// assignment targets, del lists, and decorators.
	flatChains bool
}

func newPrinter(b *ast.Builder, sf *source.File, tbl *comments.Table, cfg Config) *printer {
	return &printer{
		b: b, sf: sf, tbl: tbl, cfg: cfg,
		t:       doc.NewTree(),
		emitted: make([]bool, tbl.Len()),
	}
}

func (p *printer) fileDoc(file ast.FileID) doc.ID {
	f := p.b.Files.Get(file)
	body := p.statements(f.Stmts, 0, ast.FileRef(file))

	var rest []doc.ID
	for i := range p.emitted {
		if !p.emitted[i] {
			c := p.tbl.Comment(token.CommentID(i)) // #nosec G115 -- comment counts fit uint32
			rest = append(rest, p.t.Hard(), p.t.Text(normalizeComment(c.Text)))
			p.emitted[i] = true
		}
	}
	if rest == nil {
		return body
	}
	return p.t.Concat(append([]doc.ID{body}, rest...)...)
}

// statements lays out a statement sequence: blank-line separation,
// leading comments, the statement itself with its trailing comments, and
// finally any dangling comments attached to the enclosing node.
//
// Blank runs are clamped to two at module level and one inside blocks,
// and def/class statements are held apart from neighbors by the full
// allowance even when the source had none.
func (p *printer) statements(stmts []ast.StmtID, depth int, enclosing ast.NodeRef) doc.ID {
	maxBlank := 1
	if depth == 0 {
		maxBlank = 2
	}

	var parts []doc.ID
	var prevEnd uint32 // last emitted source line; 0 before the first
	prevKind := ast.StmtInvalid

	emitBlanks := func(n int) {
		for i := 0; i < n; i++ {
			parts = append(parts, p.t.Blank())
		}
	}
	gapTo := func(startOff uint32) int {
		if prevEnd == 0 {
			return 0
		}
		start := p.sf.LineOf(startOff)
		if start <= prevEnd+1 {
			return 0
		}
		g := int(start - prevEnd - 1)
		if g > maxBlank {
			g = maxBlank
		}
		return g
	}

	for i, id := range stmts {
		st := p.b.Stmts.Get(id)
		ref := ast.StmtRef(id)
		leads := p.tbl.LeadingOf(ref)

		want := 0
		if i > 0 && (isDefLike(st.Kind) || isDefLike(prevKind)) {
			want = maxBlank
		}

		for j, cid := range leads {
			c := p.tbl.Comment(cid)
			g := gapTo(c.Span.Start)
			if j == 0 && g < want {
				g = want
			}
			emitBlanks(g)
			parts = append(parts, p.t.Text(normalizeComment(c.Text)), p.t.Hard())
			p.emitted[cid] = true
			prevEnd = p.endLine(c.Span)
		}

		g := gapTo(st.Span.Start)
		if len(leads) == 0 && g < want {
			g = want
		}
		emitBlanks(g)
		parts = append(parts, p.stmt(id, depth), p.trail(ref), p.orphanDangling(ref), p.t.Hard())
		prevEnd = p.endLine(st.Span)
		prevKind = st.Kind
	}

	if enclosing.IsValid() {
		for _, cid := range p.tbl.DanglingOf(enclosing) {
			if p.emitted[cid] {
				continue
			}
			c := p.tbl.Comment(cid)
			emitBlanks(gapTo(c.Span.Start))
			parts = append(parts, p.t.Text(normalizeComment(c.Text)), p.t.Hard())
			p.emitted[cid] = true
			prevEnd = p.endLine(c.Span)
		}
	}
	return p.t.Concat(parts...)
}

// block renders an indented suite. dangle names the compound statement
// whose dangling comments belong at the end of this suite; pass an
// invalid ref for all but the statement's last suite.
func (p *printer) block(body []ast.StmtID, depth int, dangle ast.NodeRef) doc.ID {
	inner := p.statements(body, depth+1, dangle)
	return p.t.Indent(p.t.Concat(p.t.Hard(), inner))
}

func isDefLike(k ast.StmtKind) bool {
	return k == ast.StmtFuncDef || k == ast.StmtClassDef
}

// endLine is the last content line of a span. Compound statement spans
// run through the dedent that closed them, so trailing blank lines are
// skipped rather than counted against the gap to the next statement.
func (p *printer) endLine(sp source.Span) uint32 {
	off := sp.End
	for off > sp.Start {
		switch p.sf.Content[off-1] {
		case '\n', '\r', ' ', '\t':
			off--
		default:
			return p.sf.LineOf(off - 1)
		}
	}
	return p.sf.LineOf(sp.Start)
}

// lead renders a node's leading comments, each on its own line. The
// embedded hard breaks force any enclosing group to break, so a comment
// inside brackets expands them.
func (p *printer) lead(ref ast.NodeRef) doc.ID {
	ids := p.tbl.LeadingOf(ref)
	if len(ids) == 0 {
		return doc.None
	}
	parts := make([]doc.ID, 0, len(ids)*2)
	for _, cid := range ids {
		parts = append(parts, p.t.Text(normalizeComment(p.tbl.Comment(cid).Text)), p.t.Hard())
		p.emitted[cid] = true
	}
	return p.t.Concat(parts...)
}

// trail renders a node's trailing comments. Callers place this after any
// separator that must stay on the node's line (a comma or colon).
func (p *printer) trail(ref ast.NodeRef) doc.ID {
	ids := p.tbl.TrailingOf(ref)
	if len(ids) == 0 {
		return doc.None
	}
	parts := make([]doc.ID, 0, len(ids)*2)
	for _, cid := range ids {
		if p.emitted[cid] {
			continue
		}
		parts = append(parts, p.t.Text("  "+normalizeComment(p.tbl.Comment(cid).Text)), p.t.Hard())
		p.emitted[cid] = true
	}
	return p.t.Concat(parts...)
}

// orphanDangling emits dangling comments that no inner construct placed,
// on their own lines after the statement.
func (p *printer) orphanDangling(ref ast.NodeRef) doc.ID {
	ids := p.tbl.DanglingOf(ref)
	var parts []doc.ID
	for _, cid := range ids {
		if p.emitted[cid] {
			continue
		}
		parts = append(parts, p.t.Hard(), p.t.Text(normalizeComment(p.tbl.Comment(cid).Text)))
		p.emitted[cid] = true
	}
	if parts == nil {
		return doc.None
	}
	return p.t.Concat(parts...)
}

// danglingInside renders comments that sit inside otherwise empty
// brackets, keeping them expanded.
func (p *printer) danglingInside(ref ast.NodeRef, open, close string) doc.ID {
	ids := p.tbl.DanglingOf(ref)
	if len(ids) == 0 {
		return doc.None
	}
	parts := make([]doc.ID, 0, len(ids)*2)
	for _, cid := range ids {
		parts = append(parts, p.t.Hard(), p.t.Text(normalizeComment(p.tbl.Comment(cid).Text)))
		p.emitted[cid] = true
	}
	return p.t.GroupForced(p.t.Concat(
		p.t.Text(open),
		p.t.Indent(p.t.Concat(parts...)),
		p.t.Hard(),
		p.t.Text(close),
	))
}

// normalizeComment trims trailing whitespace and ensures a space after
// the hash. Shebang lines, shorthand markers, and banner rows keep their
// spelling.
func normalizeComment(text string) string {
	text = strings.TrimRight(text, " \t")
	if len(text) <= 1 {
		return "#"
	}
	body := text[1:]
	switch body[0] {
	case '!', ':', '#', ' ':
		return "#" + body
	}
	return "# " + body
}

// brackets renders a delimited, breakable item list:
//
//	flat:   open i1, i2 close
//	broken: open \n i1, \n i2, \n close   (one indent level, trailing comma)
//
// A recorded trailing comma in the source forces the broken form, and a
// comment hanging after the last item keeps the brackets expanded.
func (p *printer) brackets(open, close string, items []doc.ID, itemRefs []ast.NodeRef, forced bool, dangle ast.NodeRef) doc.ID {
	t := p.t
	if len(items) == 0 {
		if dangle.IsValid() && len(p.tbl.DanglingOf(dangle)) > 0 {
			return p.danglingInside(dangle, open, close)
		}
		return t.Text(open + close)
	}
	var inner []doc.ID
	inner = append(inner, t.Soft())
	for i, it := range items {
		inner = append(inner, it)
		if i < len(items)-1 {
			inner = append(inner, t.Text(","))
			if itemRefs != nil && itemRefs[i].IsValid() {
				inner = append(inner, p.trail(itemRefs[i]))
			}
			inner = append(inner, t.Space())
		} else {
			inner = append(inner, t.IfBreak(t.Text(","), doc.None))
			if itemRefs != nil && itemRefs[i].IsValid() {
				inner = append(inner, p.trail(itemRefs[i]))
			}
		}
	}
	if dangle.IsValid() {
		for _, cid := range p.tbl.DanglingOf(dangle) {
			if p.emitted[cid] {
				continue
			}
			inner = append(inner, t.Hard(), t.Text(normalizeComment(p.tbl.Comment(cid).Text)))
			p.emitted[cid] = true
		}
	}
	content := t.Concat(
		t.Text(open),
		t.Indent(t.Concat(inner...)),
		t.Soft(),
		t.Text(close),
	)
	if forced {
		return t.GroupForced(content)
	}
	return t.Group(content)
}

// needsGuard reports whether an expression can break between operands.
// Such a break is only legal inside brackets, so bare statement
// positions wrap these in optParens.
func (p *printer) needsGuard(id ast.ExprID) bool {
	switch p.b.Exprs.Get(id).Kind {
	case ast.ExprBoolOp, ast.ExprCompare, ast.ExprCond:
		return true
	case ast.ExprBinary:
		d := p.b.Exprs.Binary(id)
		if d.Op != token.StarStar {
			return true
		}
		return p.chainBreakable(d.Left) || p.chainBreakable(d.Right)
	case ast.ExprUnary:
		return p.needsGuard(p.b.Exprs.Unary(id).Operand)
	case ast.ExprAttr, ast.ExprCall, ast.ExprSubscript:
		return p.chainBreakable(id)
	case ast.ExprString:
		return len(p.b.Exprs.String(id).Parts) > 1
	}
	return false
}

// guard renders an expression for a bare statement position: operator
// runs, breakable call chains, and implicit string concatenations gain
// parentheses when they break, everything else renders as usual. No
// trailing comments.
func (p *printer) guard(id ast.ExprID, minPrec int) doc.ID {
	if p.needsGuard(id) {
		return p.optParens(p.exprBare(id, precLowest))
	}
	return p.exprBare(id, minPrec)
}

// guardExpr is guard with the node's trailing comments appended after
// the closing parenthesis, so a same-line comment never forces one.
func (p *printer) guardExpr(id ast.ExprID, minPrec int) doc.ID {
	if p.needsGuard(id) {
		return p.t.Concat(p.optParens(p.exprBare(id, precLowest)), p.trail(ast.ExprRef(id)))
	}
	return p.expr(id, minPrec)
}

// optParens wraps content in parentheses that materialize only when the
// content breaks onto multiple lines.
func (p *printer) optParens(content doc.ID) doc.ID {
	t := p.t
	return t.Group(t.Concat(
		t.IfBreak(t.Text("("), doc.None),
		t.Indent(t.Concat(t.Soft(), content)),
		t.Soft(),
		t.IfBreak(t.Text(")"), doc.None),
	))
}

// parens wraps content in always-present parentheses that admit an
// internal break.
func (p *printer) parens(content doc.ID) doc.ID {
	t := p.t
	return t.Group(t.Concat(
		t.Text("("),
		t.Indent(t.Concat(t.Soft(), content)),
		t.Soft(),
		t.Text(")"),
	))
}
