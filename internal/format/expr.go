package format

import (
	"pyfmt/internal/ast"
	"pyfmt/internal/doc"
	"pyfmt/internal/token"
)

// Operator tiers, loosest binding first. A child whose tier is below the
// position's minimum is re-parenthesized; the parser stripped redundant
// parentheses, so this is where they come back.
const (
	precLowest = iota
	precTest
	precOr
	precAnd
	precNot
	precCmp
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precArith
	precTerm
	precUnary
	precPower
	precPostfix
	precAtom
)

func binOpPrec(k token.Kind) int {
	switch k {
	case token.Pipe:
		return precBitOr
	case token.Caret:
		return precBitXor
	case token.Amp:
		return precBitAnd
	case token.Shl, token.Shr:
		return precShift
	case token.Plus, token.Minus:
		return precArith
	case token.StarStar:
		return precPower
	default: // *, /, //, %, @
		return precTerm
	}
}

func (p *printer) prec(id ast.ExprID) int {
	e := p.b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprLambda, ast.ExprCond:
		return precTest
	case ast.ExprBoolOp:
		if p.b.Exprs.BoolOp(id).Op == token.KwOr {
			return precOr
		}
		return precAnd
	case ast.ExprUnary:
		if p.b.Exprs.Unary(id).Op == token.KwNot {
			return precNot
		}
		return precUnary
	case ast.ExprCompare:
		return precCmp
	case ast.ExprBinary:
		return binOpPrec(p.b.Exprs.Binary(id).Op)
	case ast.ExprCall, ast.ExprAttr, ast.ExprSubscript:
		return precPostfix
	case ast.ExprTuple:
		if !p.b.Exprs.Seq(id).HasParens {
			return precLowest
		}
		return precAtom
	default:
		return precAtom
	}
}

// expr renders a node with its leading and trailing comments attached.
func (p *printer) expr(id ast.ExprID, minPrec int) doc.ID {
	return p.exprDoc(id, minPrec, true)
}

// exprBare renders a node with leading comments only; the caller owns
// placement of trailing comments, typically after a separator.
func (p *printer) exprBare(id ast.ExprID, minPrec int) doc.ID {
	return p.exprDoc(id, minPrec, false)
}

// exprFlat renders a node with chain splitting suppressed, for target
// positions where a continuation line would be invalid syntax.
func (p *printer) exprFlat(id ast.ExprID, minPrec int) doc.ID {
	saved := p.flatChains
	p.flatChains = true
	d := p.exprDoc(id, minPrec, true)
	p.flatChains = saved
	return d
}

// exprFlatBare is exprFlat without trailing comments.
func (p *printer) exprFlatBare(id ast.ExprID, minPrec int) doc.ID {
	saved := p.flatChains
	p.flatChains = true
	d := p.exprDoc(id, minPrec, false)
	p.flatChains = saved
	return d
}

func (p *printer) exprDoc(id ast.ExprID, minPrec int, withTrail bool) doc.ID {
	if !id.IsValid() {
		return doc.None
	}
	ref := ast.ExprRef(id)
	d := p.t.Concat(p.lead(ref), p.exprInner(id))
	if p.prec(id) < minPrec {
		d = p.parens(d)
	}
	if withTrail {
		d = p.t.Concat(d, p.trail(ref))
	}
	return d
}

func (p *printer) exprInner(id ast.ExprID) doc.ID {
	t := p.t
	e := p.b.Exprs.Get(id)

	switch e.Kind {
	case ast.ExprName:
		return t.Text(p.b.Exprs.Name(id).Name)

	case ast.ExprNumber:
		return t.Text(normalizeNumber(p.b.Exprs.Number(id).Text))

	case ast.ExprConst:
		return t.Text(p.b.Exprs.Const(id).Kind.String())

	case ast.ExprString:
		parts := p.b.Exprs.String(id).Parts
		if len(parts) == 1 {
			return t.Text(normalizeString(parts[0], p.cfg.Quotes))
		}
		// Implicit concatenation breaks between the pieces.
		docs := make([]doc.ID, 0, len(parts)*2)
		for i, s := range parts {
			if i > 0 {
				docs = append(docs, t.Space())
			}
			docs = append(docs, t.Text(normalizeString(s, p.cfg.Quotes)))
		}
		return t.Group(t.Concat(docs...))

	case ast.ExprCall, ast.ExprAttr, ast.ExprSubscript:
		return p.postfix(id)

	case ast.ExprSlice:
		d := p.b.Exprs.Slice(id)
		parts := []doc.ID{p.exprBare(d.Lo, precTest), t.Text(":"), p.exprBare(d.Hi, precTest)}
		if d.Step.IsValid() {
			parts = append(parts, t.Text(":"), p.exprBare(d.Step, precTest))
		}
		return t.Concat(parts...)

	case ast.ExprBinary:
		return p.binary(id)

	case ast.ExprUnary:
		d := p.b.Exprs.Unary(id)
		if d.Op == token.KwNot {
			return t.Concat(t.Text("not "), p.exprBare(d.Operand, precNot))
		}
		return t.Concat(t.Text(d.Op.String()), p.exprBare(d.Operand, precUnary))

	case ast.ExprBoolOp:
		d := p.b.Exprs.BoolOp(id)
		op := d.Op.String() + " "
		min := precAnd
		if d.Op == token.KwAnd {
			min = precNot
		}
		parts := make([]doc.ID, 0, len(d.Values)*3)
		for i, v := range d.Values {
			if i > 0 {
				parts = append(parts, t.Space(), t.Text(op))
			}
			parts = append(parts, p.exprBare(v, min))
		}
		return t.Group(t.Concat(parts...))

	case ast.ExprCompare:
		d := p.b.Exprs.Compare(id)
		parts := []doc.ID{p.exprBare(d.Left, precBitOr)}
		for i, op := range d.Ops {
			parts = append(parts, t.Space(), t.Text(op.String()+" "), p.exprBare(d.Comparators[i], precBitOr))
		}
		return t.Group(t.Concat(parts...))

	case ast.ExprTuple:
		return p.tuple(id)

	case ast.ExprList:
		seq := p.b.Exprs.Seq(id)
		elts, refs := p.seqItems(seq)
		return p.brackets("[", "]", elts, refs, seq.HasTrailingComma, ast.ExprRef(id))

	case ast.ExprSet:
		seq := p.b.Exprs.Seq(id)
		elts, refs := p.seqItems(seq)
		return p.brackets("{", "}", elts, refs, seq.HasTrailingComma, ast.ExprRef(id))

	case ast.ExprDict:
		d := p.b.Exprs.Dict(id)
		items := make([]doc.ID, len(d.Values))
		refs := make([]ast.NodeRef, len(d.Values))
		for i, v := range d.Values {
			if d.Keys[i].IsValid() {
				items[i] = t.Concat(p.exprBare(d.Keys[i], precTest), t.Text(": "), p.exprBare(v, precTest))
			} else {
				items[i] = t.Concat(t.Text("**"), p.exprBare(v, precOr))
			}
			refs[i] = ast.ExprRef(v)
		}
		return p.brackets("{", "}", items, refs, d.HasTrailingComma, ast.ExprRef(id))

	case ast.ExprStarred:
		d := p.b.Exprs.Starred(id)
		star := "*"
		if d.Double {
			star = "**"
		}
		return t.Concat(t.Text(star), p.exprBare(d.Value, precOr))

	case ast.ExprKeyword:
		d := p.b.Exprs.Keyword(id)
		if d.Name == "" {
			return t.Concat(t.Text("**"), p.exprBare(d.Value, precOr))
		}
		return t.Concat(t.Text(d.Name+"="), p.exprBare(d.Value, precTest))

	case ast.ExprLambda:
		d := p.b.Exprs.Lambda(id)
		parts := []doc.ID{t.Text("lambda")}
		for i, pm := range d.Params.Params {
			if i == 0 {
				parts = append(parts, t.Text(" "))
			} else {
				parts = append(parts, t.Text(", "))
			}
			parts = append(parts, p.paramDoc(pm))
		}
		parts = append(parts, t.Text(": "), p.guard(d.Body, precTest))
		return t.Concat(parts...)

	case ast.ExprCond:
		d := p.b.Exprs.Cond(id)
		return t.Group(t.Concat(
			p.exprBare(d.Body, precOr),
			t.Space(), t.Text("if "), p.exprBare(d.Test, precOr),
			t.Space(), t.Text("else "), p.exprBare(d.Orelse, precTest),
		))
	}

	return t.Text("")
}

// postfix renders attribute access, calls, and subscripts. A chain with
// two or more attribute steps lays out as one unit that breaks before
// the dots, so no single trailer absorbs the break on its own. A magic
// trailing comma in any trailer pins the break inside that trailer
// instead, and the dots stay flat around it.
func (p *printer) postfix(id ast.ExprID) doc.ID {
	if !p.flatChains {
		if dots, pinned := p.chainShape(id); dots >= 2 {
			if !pinned {
				return p.chainDoc(id)
			}
			saved := p.flatChains
			p.flatChains = true
			d := p.postfixOne(id)
			p.flatChains = saved
			return d
		}
	}
	return p.postfixOne(id)
}

func (p *printer) postfixOne(id ast.ExprID) doc.ID {
	t := p.t
	switch p.b.Exprs.Get(id).Kind {
	case ast.ExprAttr:
		d := p.b.Exprs.Attr(id)
		return t.Concat(p.attrBase(d.Value), t.Text("."+d.Name))
	case ast.ExprCall:
		return t.Concat(p.exprBare(p.b.Exprs.Call(id).Func, precPostfix), p.callTrailer(id))
	default:
		return t.Concat(p.exprBare(p.b.Exprs.Subscript(id).Value, precPostfix), p.subscriptTrailer(id))
	}
}

// chainShape walks a postfix spine, counting attribute steps and noting
// whether any trailer carries a magic trailing comma.
func (p *printer) chainShape(id ast.ExprID) (dots int, pinned bool) {
	for {
		switch p.b.Exprs.Get(id).Kind {
		case ast.ExprAttr:
			dots++
			id = p.b.Exprs.Attr(id).Value
		case ast.ExprCall:
			d := p.b.Exprs.Call(id)
			pinned = pinned || d.HasTrailingComma
			id = d.Func
		case ast.ExprSubscript:
			d := p.b.Exprs.Subscript(id)
			if p.b.Exprs.Get(d.Index).Kind == ast.ExprTuple {
				if seq := p.b.Exprs.Seq(d.Index); !seq.HasParens {
					pinned = pinned || seq.HasTrailingComma
				}
			}
			id = d.Value
		default:
			return dots, pinned
		}
	}
}

// chainBreakable reports whether a postfix spine splits at its dots: at
// least two attribute steps and no trailer pinned by a magic comma.
func (p *printer) chainBreakable(id ast.ExprID) bool {
	dots, pinned := p.chainShape(id)
	return dots >= 2 && !pinned
}

// chainDoc lays out a postfix chain. Flat while it fits; over width it
// breaks before each attribute step after the first, keeping every
// trailer whole. The first step stays on the base's line.
func (p *printer) chainDoc(id ast.ExprID) doc.ID {
	t := p.t

	var links []ast.ExprID
	base := id
	for {
		e := p.b.Exprs.Get(base)
		if e.Kind != ast.ExprAttr && e.Kind != ast.ExprCall && e.Kind != ast.ExprSubscript {
			break
		}
		links = append(links, base)
		switch e.Kind {
		case ast.ExprAttr:
			base = p.b.Exprs.Attr(base).Value
		case ast.ExprCall:
			base = p.b.Exprs.Call(base).Func
		default:
			base = p.b.Exprs.Subscript(base).Value
		}
	}

	parts := []doc.ID{p.attrBase(base)}
	firstDot := true
	for i := len(links) - 1; i >= 0; i-- {
		l := links[i]
		if l != id {
			// The outermost node's leading comments were already placed
			// by exprDoc.
			parts = append(parts, p.lead(ast.ExprRef(l)))
		}
		switch p.b.Exprs.Get(l).Kind {
		case ast.ExprAttr:
			if firstDot {
				firstDot = false
			} else {
				parts = append(parts, t.Soft())
			}
			parts = append(parts, t.Text("."+p.b.Exprs.Attr(l).Name))
		case ast.ExprCall:
			parts = append(parts, p.callTrailer(l))
		default:
			parts = append(parts, p.subscriptTrailer(l))
		}
	}
	return t.Group(t.Concat(parts...))
}

// attrBase parenthesizes number literals whose trailing dot would
// otherwise read as part of the literal.
func (p *printer) attrBase(id ast.ExprID) doc.ID {
	base := p.exprBare(id, precPostfix)
	if p.b.Exprs.Get(id).Kind == ast.ExprNumber {
		return p.t.Concat(p.t.Text("("), base, p.t.Text(")"))
	}
	return base
}

func (p *printer) callTrailer(id ast.ExprID) doc.ID {
	d := p.b.Exprs.Call(id)
	args := make([]doc.ID, len(d.Args))
	refs := make([]ast.NodeRef, len(d.Args))
	for i, a := range d.Args {
		args[i] = p.exprBare(a, precTest)
		refs[i] = ast.ExprRef(a)
	}
	return p.brackets("(", ")", args, refs, d.HasTrailingComma, ast.ExprRef(id))
}

func (p *printer) subscriptTrailer(id ast.ExprID) doc.ID {
	t := p.t
	d := p.b.Exprs.Subscript(id)
	if p.b.Exprs.Get(d.Index).Kind == ast.ExprTuple {
		if seq := p.b.Exprs.Seq(d.Index); !seq.HasParens {
			elts, refs := p.seqItems(seq)
			return p.brackets("[", "]", elts, refs, seq.HasTrailingComma, ast.ExprRef(id))
		}
	}
	return t.Group(t.Concat(
		t.Text("["),
		t.Indent(t.Concat(t.Soft(), p.expr(d.Index, precLowest))),
		t.Soft(),
		t.Text("]"),
	))
}

func (p *printer) seqItems(seq *ast.SeqData) ([]doc.ID, []ast.NodeRef) {
	elts := make([]doc.ID, len(seq.Elts))
	refs := make([]ast.NodeRef, len(seq.Elts))
	for i, el := range seq.Elts {
		elts[i] = p.exprBare(el, precTest)
		refs[i] = ast.ExprRef(el)
	}
	return elts, refs
}

func (p *printer) binary(id ast.ExprID) doc.ID {
	t := p.t
	d := p.b.Exprs.Binary(id)
	op := binOpPrec(d.Op)

	if d.Op == token.StarStar {
		left := p.exprBare(d.Left, precPostfix)
		right := p.exprBare(d.Right, precUnary)
		if p.simplePowerOperand(d.Left) && p.simplePowerOperand(d.Right) {
			return t.Concat(left, t.Text("**"), right)
		}
		return t.Concat(left, t.Text(" ** "), right)
	}

	left := p.exprBare(d.Left, op)
	right := p.exprBare(d.Right, op+1)
	// Breaks land before the operator.
	return t.Group(t.Concat(left, t.Space(), t.Text(d.Op.String()+" "), right))
}

// simplePowerOperand mirrors the hug rule for exponentiation: names,
// literals, attribute chains, and signed forms of those keep ** tight.
func (p *printer) simplePowerOperand(id ast.ExprID) bool {
	e := p.b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprName, ast.ExprNumber, ast.ExprConst:
		return true
	case ast.ExprAttr:
		return p.simplePowerOperand(p.b.Exprs.Attr(id).Value)
	case ast.ExprUnary:
		d := p.b.Exprs.Unary(id)
		return d.Op != token.KwNot && p.simplePowerOperand(d.Operand)
	default:
		return false
	}
}

func (p *printer) tuple(id ast.ExprID) doc.ID {
	t := p.t
	seq := p.b.Exprs.Seq(id)

	if len(seq.Elts) == 0 {
		return t.Text("()")
	}
	if len(seq.Elts) == 1 {
		// The single-element comma is syntax, not a magic comma; the
		// parentheses are always written.
		elt := p.exprBare(seq.Elts[0], precTest)
		return t.Group(t.Concat(
			t.Text("("),
			t.Indent(t.Concat(t.Soft(), elt, t.Text(","), p.trail(ast.ExprRef(seq.Elts[0])))),
			t.Soft(),
			t.Text(")"),
		))
	}

	elts, refs := p.seqItems(seq)
	if seq.HasParens {
		return p.brackets("(", ")", elts, refs, seq.HasTrailingComma, ast.ExprRef(id))
	}

	// A bare tuple stays bare while it fits and gains parentheses when
	// it breaks.
	var inner []doc.ID
	inner = append(inner, t.Soft())
	for i, el := range elts {
		inner = append(inner, el)
		if i < len(elts)-1 {
			inner = append(inner, t.Text(","), p.trail(refs[i]), t.Space())
		} else {
			inner = append(inner, t.IfBreak(t.Text(","), doc.None), p.trail(refs[i]))
		}
	}
	content := t.Concat(
		t.IfBreak(t.Text("("), doc.None),
		t.Indent(t.Concat(inner...)),
		t.Soft(),
		t.IfBreak(t.Text(")"), doc.None),
	)
	if seq.HasTrailingComma {
		return t.GroupForced(content)
	}
	return t.Group(content)
}
