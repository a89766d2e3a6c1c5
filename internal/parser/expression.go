package parser

import (
	"pyfmt/internal/ast"
	"pyfmt/internal/diag"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

// parseTest is the entry for a single expression: lambda and conditional
// expressions sit at the lowest precedence.
func (p *parser) parseTest() ast.ExprID {
	if p.at(token.KwLambda) {
		return p.parseLambda()
	}
	start := p.peek().Span
	body := p.parseOr()
	if !p.at(token.KwIf) {
		return body
	}
	p.advance()
	test := p.parseOr()
	p.expect(token.KwElse)
	orelse := p.parseTest()
	return p.b.Exprs.NewCond(p.spanFrom(start), ast.CondData{Body: body, Test: test, Orelse: orelse})
}

func (p *parser) parseLambda() ast.ExprID {
	start := p.expect(token.KwLambda).Span
	params := p.parseParamList(token.Colon)
	p.expect(token.Colon)
	body := p.parseTest()
	return p.b.Exprs.NewLambda(p.spanFrom(start), ast.LambdaData{Params: params, Body: body})
}

// parseTestList parses "test (',' test)*"; two or more elements form an
// unparenthesized tuple.
func (p *parser) parseTestList() ast.ExprID {
	return p.parseExprSeq(p.parseTest)
}

// parseTestListStar additionally allows starred elements, as in
// "a, *rest = value".
func (p *parser) parseTestListStar() ast.ExprID {
	return p.parseExprSeq(p.parseTestOrStar)
}

func (p *parser) parseTestOrStar() ast.ExprID {
	if p.at(token.Star) {
		start := p.advance().Span
		value := p.parseOr()
		return p.b.Exprs.NewStarred(p.spanFrom(start), ast.StarredData{Value: value})
	}
	return p.parseTest()
}

func (p *parser) parseExprSeq(elem func() ast.ExprID) ast.ExprID {
	start := p.peek().Span
	first := elem()
	if !p.at(token.Comma) {
		return first
	}
	elts := []ast.ExprID{first}
	trailing := false
	for p.eat(token.Comma) {
		if p.atExprEnd() {
			trailing = true
			break
		}
		elts = append(elts, elem())
	}
	return p.b.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(start), ast.SeqData{
		Elts:             elts,
		HasTrailingComma: trailing,
	})
}

func (p *parser) atExprEnd() bool {
	switch p.peek().Kind {
	case token.Newline, token.EOF, token.Semicolon, token.Colon, token.Assign,
		token.RParen, token.RBracket, token.RBrace, token.KwIn, token.Dedent:
		return true
	}
	return p.peek().Kind.IsAugAssign()
}

// parseTargetList parses assignment/for targets, which share testlist
// syntax; semantic restriction to valid targets is out of scope here.
func (p *parser) parseTargetList() ast.ExprID {
	return p.parseExprSeq(p.parseTargetOrStar)
}

func (p *parser) parseTarget() ast.ExprID {
	return p.parseTargetOrStar()
}

func (p *parser) parseTargetOrStar() ast.ExprID {
	if p.at(token.Star) {
		start := p.advance().Span
		value := p.parsePostfix()
		return p.b.Exprs.NewStarred(p.spanFrom(start), ast.StarredData{Value: value})
	}
	return p.parsePostfix()
}

func (p *parser) parseOr() ast.ExprID {
	start := p.peek().Span
	first := p.parseAnd()
	if !p.at(token.KwOr) {
		return first
	}
	values := []ast.ExprID{first}
	for p.eat(token.KwOr) {
		values = append(values, p.parseAnd())
	}
	return p.b.Exprs.NewBoolOp(p.spanFrom(start), ast.BoolOpData{Op: token.KwOr, Values: values})
}

func (p *parser) parseAnd() ast.ExprID {
	start := p.peek().Span
	first := p.parseNot()
	if !p.at(token.KwAnd) {
		return first
	}
	values := []ast.ExprID{first}
	for p.eat(token.KwAnd) {
		values = append(values, p.parseNot())
	}
	return p.b.Exprs.NewBoolOp(p.spanFrom(start), ast.BoolOpData{Op: token.KwAnd, Values: values})
}

func (p *parser) parseNot() ast.ExprID {
	if p.at(token.KwNot) {
		start := p.advance().Span
		operand := p.parseNot()
		return p.b.Exprs.NewUnary(p.spanFrom(start), ast.UnaryData{Op: token.KwNot, Operand: operand})
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() ast.ExprID {
	start := p.peek().Span
	left := p.parseBitOr()
	var ops []ast.CmpOp
	var comparators []ast.ExprID
	for {
		op, ok := p.peekCmpOp()
		if !ok {
			break
		}
		ops = append(ops, op)
		comparators = append(comparators, p.parseBitOr())
	}
	if len(ops) == 0 {
		return left
	}
	return p.b.Exprs.NewCompare(p.spanFrom(start), ast.CompareData{Left: left, Ops: ops, Comparators: comparators})
}

// peekCmpOp consumes a comparison operator if one is present, handling the
// two-token "is not" and "not in" forms.
func (p *parser) peekCmpOp() (ast.CmpOp, bool) {
	switch p.peek().Kind {
	case token.Eq:
		p.advance()
		return ast.CmpEq, true
	case token.NotEq:
		p.advance()
		return ast.CmpNotEq, true
	case token.Lt:
		p.advance()
		return ast.CmpLt, true
	case token.LtEq:
		p.advance()
		return ast.CmpLtEq, true
	case token.Gt:
		p.advance()
		return ast.CmpGt, true
	case token.GtEq:
		p.advance()
		return ast.CmpGtEq, true
	case token.KwIn:
		p.advance()
		return ast.CmpIn, true
	case token.KwIs:
		p.advance()
		if p.eat(token.KwNot) {
			return ast.CmpIsNot, true
		}
		return ast.CmpIs, true
	case token.KwNot:
		if p.peekAt(1).Kind == token.KwIn {
			p.advance()
			p.advance()
			return ast.CmpNotIn, true
		}
	}
	return 0, false
}

func (p *parser) parseBitOr() ast.ExprID {
	return p.parseBinaryChain(p.parseBitXor, token.Pipe)
}

func (p *parser) parseBitXor() ast.ExprID {
	return p.parseBinaryChain(p.parseBitAnd, token.Caret)
}

func (p *parser) parseBitAnd() ast.ExprID {
	return p.parseBinaryChain(p.parseShift, token.Amp)
}

func (p *parser) parseShift() ast.ExprID {
	return p.parseBinaryChain(p.parseArith, token.Shl, token.Shr)
}

func (p *parser) parseArith() ast.ExprID {
	return p.parseBinaryChain(p.parseTerm, token.Plus, token.Minus)
}

func (p *parser) parseTerm() ast.ExprID {
	return p.parseBinaryChain(p.parseFactor,
		token.Star, token.Slash, token.SlashSlash, token.Percent, token.At)
}

func (p *parser) parseBinaryChain(next func() ast.ExprID, ops ...token.Kind) ast.ExprID {
	start := p.peek().Span
	left := next()
	for {
		matched := false
		for _, op := range ops {
			if p.at(op) {
				p.advance()
				right := next()
				left = p.b.Exprs.NewBinary(p.spanFrom(start), ast.BinaryData{Op: op, Left: left, Right: right})
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (p *parser) parseFactor() ast.ExprID {
	switch p.peek().Kind {
	case token.Plus, token.Minus, token.Tilde:
		start := p.peek().Span
		op := p.advance().Kind
		operand := p.parseFactor()
		return p.b.Exprs.NewUnary(p.spanFrom(start), ast.UnaryData{Op: op, Operand: operand})
	}
	return p.parsePower()
}

func (p *parser) parsePower() ast.ExprID {
	start := p.peek().Span
	base := p.parsePostfix()
	if p.eat(token.StarStar) {
		// Right-associative.
		exp := p.parseFactor()
		return p.b.Exprs.NewBinary(p.spanFrom(start), ast.BinaryData{Op: token.StarStar, Left: base, Right: exp})
	}
	return base
}

func (p *parser) parsePostfix() ast.ExprID {
	start := p.peek().Span
	value := p.parseAtom()
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			name := p.expectIdent().Text
			value = p.b.Exprs.NewAttr(p.spanFrom(start), ast.AttrData{Value: value, Name: name})
		case token.LParen:
			value = p.parseCall(start, value)
		case token.LBracket:
			p.advance()
			index := p.parseSubscriptIndex()
			p.expect(token.RBracket)
			value = p.b.Exprs.NewSubscript(p.spanFrom(start), ast.SubscriptData{Value: value, Index: index})
		default:
			return value
		}
	}
}

func (p *parser) parseCall(start source.Span, fn ast.ExprID) ast.ExprID {
	p.expect(token.LParen)
	data := ast.CallData{Func: fn}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		data.Args = append(data.Args, p.parseCallArg())
		if !p.eat(token.Comma) {
			break
		}
		if p.at(token.RParen) {
			data.HasTrailingComma = true
		}
	}
	p.expect(token.RParen)
	return p.b.Exprs.NewCall(p.spanFrom(start), data)
}

// parseCallArg parses one call argument: positional, name=value, *args,
// or **kwargs. The same grammar covers class bases.
func (p *parser) parseCallArg() ast.ExprID {
	start := p.peek().Span
	switch {
	case p.at(token.Star):
		p.advance()
		value := p.parseTest()
		return p.b.Exprs.NewStarred(p.spanFrom(start), ast.StarredData{Value: value})
	case p.at(token.StarStar):
		p.advance()
		value := p.parseTest()
		return p.b.Exprs.NewStarred(p.spanFrom(start), ast.StarredData{Value: value, Double: true})
	case p.at(token.Ident) && p.peekAt(1).Kind == token.Assign:
		name := p.advance().Text
		p.advance()
		value := p.parseTest()
		return p.b.Exprs.NewKeyword(p.spanFrom(start), ast.KeywordData{Name: name, Value: value})
	default:
		return p.parseTest()
	}
}

// parseSubscriptIndex parses the bracket interior: slices, single
// subscripts, or comma-separated combinations of both.
func (p *parser) parseSubscriptIndex() ast.ExprID {
	start := p.peek().Span
	first := p.parseSubscriptItem()
	if !p.at(token.Comma) {
		return first
	}
	elts := []ast.ExprID{first}
	trailing := false
	for p.eat(token.Comma) {
		if p.at(token.RBracket) {
			trailing = true
			break
		}
		elts = append(elts, p.parseSubscriptItem())
	}
	return p.b.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(start), ast.SeqData{
		Elts:             elts,
		HasTrailingComma: trailing,
	})
}

func (p *parser) parseSubscriptItem() ast.ExprID {
	start := p.peek().Span
	var lo ast.ExprID
	if !p.at(token.Colon) {
		lo = p.parseTest()
		if !p.at(token.Colon) {
			return lo
		}
	}
	p.expect(token.Colon)
	data := ast.SliceData{Lo: lo}
	if !p.at(token.Colon) && !p.at(token.RBracket) && !p.at(token.Comma) {
		data.Hi = p.parseTest()
	}
	if p.eat(token.Colon) {
		if !p.at(token.RBracket) && !p.at(token.Comma) {
			data.Step = p.parseTest()
		}
	}
	return p.b.Exprs.NewSlice(p.spanFrom(start), data)
}

func (p *parser) parseAtom() ast.ExprID {
	tok := p.peek()
	start := tok.Span
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.b.Exprs.NewName(start, tok.Text)
	case token.Number:
		p.advance()
		return p.b.Exprs.NewNumber(start, tok.Text)
	case token.String:
		parts := []string{p.advance().Text}
		for p.at(token.String) {
			// Implicit concatenation of adjacent literals.
			parts = append(parts, p.advance().Text)
		}
		return p.b.Exprs.NewString(p.spanFrom(start), ast.StringData{Parts: parts})
	case token.KwNone:
		p.advance()
		return p.b.Exprs.NewConst(start, ast.ConstNone)
	case token.KwTrue:
		p.advance()
		return p.b.Exprs.NewConst(start, ast.ConstTrue)
	case token.KwFalse:
		p.advance()
		return p.b.Exprs.NewConst(start, ast.ConstFalse)
	case token.Ellipsis:
		p.advance()
		return p.b.Exprs.NewConst(start, ast.ConstEllipsis)
	case token.KwLambda:
		return p.parseLambda()
	case token.LParen:
		return p.parseParenAtom()
	case token.LBracket:
		return p.parseListAtom()
	case token.LBrace:
		return p.parseDictOrSetAtom()
	default:
		p.report(diag.SynBadExpression, start, "expected an expression, found "+tok.Kind.String())
		p.advance()
		return p.b.Exprs.NewName(start, tok.Text)
	}
}

// parseParenAtom parses "()", a grouped expression (whose redundant parens
// the formatter re-decides), or a parenthesized tuple.
func (p *parser) parseParenAtom() ast.ExprID {
	start := p.expect(token.LParen).Span
	if p.at(token.RParen) {
		p.advance()
		return p.b.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(start), ast.SeqData{HasParens: true})
	}
	first := p.parseTestOrStar()
	if p.at(token.RParen) {
		p.advance()
		return first
	}
	elts := []ast.ExprID{first}
	trailing := false
	for p.eat(token.Comma) {
		if p.at(token.RParen) {
			// "(x,)" is a one-element tuple; its comma is the tuple maker,
			// not a magic trailing comma.
			trailing = len(elts) > 1
			break
		}
		elts = append(elts, p.parseTestOrStar())
	}
	p.expect(token.RParen)
	return p.b.Exprs.NewSeq(ast.ExprTuple, p.spanFrom(start), ast.SeqData{
		Elts:             elts,
		HasParens:        true,
		HasTrailingComma: trailing,
	})
}

func (p *parser) parseListAtom() ast.ExprID {
	start := p.expect(token.LBracket).Span
	data := ast.SeqData{}
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		data.Elts = append(data.Elts, p.parseTestOrStar())
		if !p.eat(token.Comma) {
			break
		}
		if p.at(token.RBracket) {
			data.HasTrailingComma = true
		}
	}
	p.expect(token.RBracket)
	return p.b.Exprs.NewSeq(ast.ExprList, p.spanFrom(start), data)
}

func (p *parser) parseDictOrSetAtom() ast.ExprID {
	start := p.expect(token.LBrace).Span
	if p.at(token.RBrace) {
		p.advance()
		return p.b.Exprs.NewDict(p.spanFrom(start), ast.DictData{})
	}

	// A leading ** or "key: value" makes it a dict; otherwise a set.
	if p.at(token.StarStar) || p.dictAhead() {
		data := ast.DictData{}
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			if p.eat(token.StarStar) {
				data.Keys = append(data.Keys, ast.NoExprID)
				data.Values = append(data.Values, p.parseOr())
			} else {
				key := p.parseTest()
				p.expect(token.Colon)
				data.Keys = append(data.Keys, key)
				data.Values = append(data.Values, p.parseTest())
			}
			if !p.eat(token.Comma) {
				break
			}
			if p.at(token.RBrace) {
				data.HasTrailingComma = true
			}
		}
		p.expect(token.RBrace)
		return p.b.Exprs.NewDict(p.spanFrom(start), data)
	}

	data := ast.SeqData{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		data.Elts = append(data.Elts, p.parseTestOrStar())
		if !p.eat(token.Comma) {
			break
		}
		if p.at(token.RBrace) {
			data.HasTrailingComma = true
		}
	}
	p.expect(token.RBrace)
	return p.b.Exprs.NewSeq(ast.ExprSet, p.spanFrom(start), data)
}

// dictAhead looks past the first element for a top-level ':' before the
// closing brace or a comma.
func (p *parser) dictAhead() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 {
				return false
			}
			depth--
		case token.Colon:
			if depth == 0 {
				return true
			}
		case token.Comma:
			if depth == 0 {
				return false
			}
		case token.KwLambda:
			// A lambda's colon would be a false positive; lambdas in set
			// displays are rare enough to scan past conservatively.
			for i < len(p.toks) && p.toks[i].Kind != token.Colon {
				i++
			}
		case token.EOF, token.Newline:
			return false
		}
	}
	return false
}
