// Package parser builds the arena AST from the token stream.
//
// Recursive descent over the lexer's output. The parser records layout
// facts the formatter needs later (trailing commas, parenthesized forms,
// blank-line counts) but performs no layout itself. Errors go to the
// reporter; the resulting tree is best-effort and callers must check the
// bag before trusting it.
package parser

import (
	"pyfmt/internal/ast"
	"pyfmt/internal/diag"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint
}

type Result struct {
	File ast.FileID
}

type parser struct {
	sf     *source.File
	toks   []token.Token
	pos    int
	b      *ast.Builder
	opts   Options
	errors uint

	prevStmtEndLine uint32
}

// ParseFile parses one tokenized file into the builder.
func ParseFile(sf *source.File, toks []token.Token, b *ast.Builder, opts Options) Result {
	p := &parser{sf: sf, toks: toks, b: b, opts: opts}
	fileSpan := source.Span{File: sf.ID, Start: 0, End: uint32(len(sf.Content))} // #nosec G115
	fileID := b.Files.New(fileSpan)

	for !p.at(token.EOF) {
		if p.eat(token.Newline) {
			continue
		}
		for _, id := range p.parseStatement() {
			b.PushStmt(fileID, id)
		}
	}
	return Result{File: fileID}
}

func (p *parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.advance()
	}
	if p.at(token.EOF) && isCloser(k) {
		p.report(diag.SynUnclosedDelimiter, p.peek().Span, "unclosed delimiter, expected "+k.String())
	} else {
		p.report(diag.SynUnexpectedToken, p.peek().Span, "expected "+k.String()+", found "+p.peek().Kind.String())
	}
	return token.Token{Kind: k, Span: p.peek().Span}
}

// expectIdent is expect(token.Ident) with a more specific diagnostic.
func (p *parser) expectIdent() token.Token {
	if p.at(token.Ident) {
		return p.advance()
	}
	p.report(diag.SynExpectIdentifier, p.peek().Span, "expected an identifier, found "+p.peek().Kind.String())
	return token.Token{Kind: token.Ident, Span: p.peek().Span}
}

func isCloser(k token.Kind) bool {
	return k == token.RParen || k == token.RBracket || k == token.RBrace
}

func (p *parser) report(code diag.Code, sp source.Span, msg string) {
	p.errors++
	if p.opts.Reporter != nil && (p.opts.MaxErrors == 0 || p.errors <= p.opts.MaxErrors) {
		p.opts.Reporter.Report(code, diag.SevError, sp, msg)
	}
}

// sync skips ahead to the next statement boundary after an error.
func (p *parser) sync() {
	for !p.at(token.EOF) && !p.at(token.Newline) && !p.at(token.Dedent) {
		p.advance()
	}
	p.eat(token.Newline)
}

func (p *parser) spanFrom(start source.Span) source.Span {
	end := start
	if p.pos > 0 {
		end = p.toks[p.pos-1].Span
	}
	return start.Cover(end)
}

// blankBefore counts blank source lines between the previous statement and
// the token at hand. Comment lines in the gap are not blanks; the comment
// attacher accounts for them separately.
func (p *parser) blankBefore(tok token.Token) uint8 {
	line := p.sf.LineOf(tok.Span.Start)
	if p.prevStmtEndLine == 0 {
		return 0
	}
	if line <= p.prevStmtEndLine+1 {
		return 0
	}
	gap := line - p.prevStmtEndLine - 1
	if gap > 250 {
		gap = 250
	}
	return uint8(gap) // #nosec G115 -- clamped above
}

// parseStatement parses one logical line (which may carry several simple
// statements separated by semicolons) or one compound statement.
func (p *parser) parseStatement() []ast.StmtID {
	tok := p.peek()
	blank := p.blankBefore(tok)

	var ids []ast.StmtID
	switch tok.Kind {
	case token.KwIf:
		ids = []ast.StmtID{p.parseIf(false)}
	case token.KwWhile:
		ids = []ast.StmtID{p.parseWhile()}
	case token.KwFor:
		ids = []ast.StmtID{p.parseFor()}
	case token.KwWith:
		ids = []ast.StmtID{p.parseWith()}
	case token.KwDef:
		ids = []ast.StmtID{p.parseFuncDef(nil)}
	case token.KwClass:
		ids = []ast.StmtID{p.parseClassDef(nil)}
	case token.At:
		ids = []ast.StmtID{p.parseDecorated()}
	default:
		ids = p.parseSimpleLine()
	}

	if len(ids) > 0 {
		p.b.Stmts.Get(ids[0]).BlankBefore = blank
	}
	if p.pos > 0 {
		p.prevStmtEndLine = p.sf.LineOf(p.toks[p.pos-1].Span.End)
	}
	return ids
}

// parseSimpleLine parses "small_stmt (';' small_stmt)* NEWLINE".
func (p *parser) parseSimpleLine() []ast.StmtID {
	var ids []ast.StmtID
	for {
		id := p.parseSmallStmt()
		if id.IsValid() {
			ids = append(ids, id)
		}
		if !p.eat(token.Semicolon) {
			break
		}
		if p.at(token.Newline) || p.at(token.EOF) {
			break
		}
	}
	if !p.eat(token.Newline) && !p.at(token.EOF) && !p.at(token.Dedent) {
		p.report(diag.SynUnexpectedToken, p.peek().Span, "expected end of statement")
		p.sync()
	}
	return ids
}

func (p *parser) parseSmallStmt() ast.StmtID {
	tok := p.peek()
	start := tok.Span
	switch tok.Kind {
	case token.KwPass:
		p.advance()
		return p.b.Stmts.NewSimple(ast.StmtPass, start)
	case token.KwBreak:
		p.advance()
		return p.b.Stmts.NewSimple(ast.StmtBreak, start)
	case token.KwContinue:
		p.advance()
		return p.b.Stmts.NewSimple(ast.StmtContinue, start)
	case token.KwReturn:
		p.advance()
		var value ast.ExprID
		if !p.at(token.Newline) && !p.at(token.Semicolon) && !p.at(token.EOF) && !p.at(token.Dedent) {
			value = p.parseTestList()
		}
		return p.b.Stmts.NewReturn(p.spanFrom(start), ast.ReturnData{Value: value})
	case token.KwRaise:
		p.advance()
		var exc, from ast.ExprID
		if !p.at(token.Newline) && !p.at(token.Semicolon) && !p.at(token.EOF) {
			exc = p.parseTest()
			if p.eat(token.KwFrom) {
				from = p.parseTest()
			}
		}
		return p.b.Stmts.NewRaise(p.spanFrom(start), ast.RaiseData{Exc: exc, From: from})
	case token.KwAssert:
		p.advance()
		test := p.parseTest()
		var msg ast.ExprID
		if p.eat(token.Comma) {
			msg = p.parseTest()
		}
		return p.b.Stmts.NewAssert(p.spanFrom(start), ast.AssertData{Test: test, Msg: msg})
	case token.KwDel:
		p.advance()
		targets := []ast.ExprID{p.parseTarget()}
		for p.eat(token.Comma) {
			targets = append(targets, p.parseTarget())
		}
		return p.b.Stmts.NewDel(p.spanFrom(start), ast.DelData{Targets: targets})
	case token.KwGlobal, token.KwNonlocal:
		p.advance()
		kind := ast.StmtGlobal
		if tok.Kind == token.KwNonlocal {
			kind = ast.StmtNonlocal
		}
		names := []string{p.expectIdent().Text}
		for p.eat(token.Comma) {
			names = append(names, p.expectIdent().Text)
		}
		return p.b.Stmts.NewNames(kind, p.spanFrom(start), ast.NamesData{Names: names})
	case token.KwImport:
		return p.parseImport()
	case token.KwFrom:
		return p.parseImportFrom()
	default:
		return p.parseExprLikeStmt()
	}
}

// parseExprLikeStmt handles expression statements, assignments, augmented
// and annotated assignments.
func (p *parser) parseExprLikeStmt() ast.StmtID {
	start := p.peek().Span
	first := p.parseTestListStar()

	switch {
	case p.at(token.Colon):
		p.advance()
		p.checkAssignTarget(first)
		annot := p.parseTest()
		var value ast.ExprID
		if p.eat(token.Assign) {
			value = p.parseTestListStar()
		}
		return p.b.Stmts.NewAnnAssign(p.spanFrom(start), ast.AnnAssignData{Target: first, Annot: annot, Value: value})

	case p.peek().Kind.IsAugAssign():
		op := p.advance().Kind
		p.checkAssignTarget(first)
		value := p.parseTestListStar()
		return p.b.Stmts.NewAugAssign(p.spanFrom(start), ast.AugAssignData{Target: first, Op: op, Value: value})

	case p.at(token.Assign):
		targets := []ast.ExprID{first}
		var value ast.ExprID = first
		for p.eat(token.Assign) {
			value = p.parseTestListStar()
			targets = append(targets, value)
		}
		targets = targets[:len(targets)-1]
		for _, tgt := range targets {
			p.checkAssignTarget(tgt)
		}
		return p.b.Stmts.NewAssign(p.spanFrom(start), ast.AssignData{Targets: targets, Value: value})

	default:
		return p.b.Stmts.NewExprStmt(p.spanFrom(start), ast.ExprStmtData{Value: first})
	}
}

// checkAssignTarget rejects binding to a non-target expression. The tree
// is kept as parsed; the diagnostic alone blocks formatting.
func (p *parser) checkAssignTarget(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	e := p.b.Exprs.Get(id)
	switch e.Kind {
	case ast.ExprName, ast.ExprAttr, ast.ExprSubscript:
	case ast.ExprStarred:
		p.checkAssignTarget(p.b.Exprs.Starred(id).Value)
	case ast.ExprTuple, ast.ExprList:
		for _, el := range p.b.Exprs.Seq(id).Elts {
			p.checkAssignTarget(el)
		}
	default:
		p.report(diag.SynBadAssignTarget, e.Span, "cannot assign to this expression")
	}
}

func (p *parser) parseImport() ast.StmtID {
	start := p.expect(token.KwImport).Span
	var names []ast.ImportAlias
	for {
		names = append(names, p.parseImportAlias())
		if !p.eat(token.Comma) {
			break
		}
	}
	return p.b.Stmts.NewImport(p.spanFrom(start), ast.ImportData{Names: names})
}

func (p *parser) parseImportAlias() ast.ImportAlias {
	start := p.peek().Span
	path := p.expectIdent().Text
	for p.eat(token.Dot) {
		path += "." + p.expectIdent().Text
	}
	var asName string
	if p.eat(token.KwAs) {
		asName = p.expectIdent().Text
	}
	return ast.ImportAlias{Path: path, AsName: asName, Span: p.spanFrom(start)}
}

func (p *parser) parseImportFrom() ast.StmtID {
	start := p.expect(token.KwFrom).Span
	level := 0
	for {
		if p.eat(token.Dot) {
			level++
			continue
		}
		if p.eat(token.Ellipsis) {
			level += 3
			continue
		}
		break
	}
	var module string
	if p.at(token.Ident) {
		module = p.advance().Text
		for p.eat(token.Dot) {
			module += "." + p.expectIdent().Text
		}
	}
	p.expect(token.KwImport)

	data := ast.ImportFromData{Module: module, Level: level}
	switch {
	case p.eat(token.Star):
		data.Star = true
	case p.at(token.LParen):
		p.advance()
		data.HasParens = true
		for !p.at(token.RParen) && !p.at(token.EOF) {
			data.Names = append(data.Names, p.parseImportAlias())
			if !p.eat(token.Comma) {
				break
			}
			if p.at(token.RParen) {
				data.HasTrailingComma = true
			}
		}
		p.expect(token.RParen)
	default:
		for {
			data.Names = append(data.Names, p.parseImportAlias())
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	return p.b.Stmts.NewImportFrom(p.spanFrom(start), data)
}

// parseBlock parses ":" NEWLINE INDENT stmt+ DEDENT, or an inline suite
// after the colon (which the formatter will expand onto its own lines).
func (p *parser) parseBlock() []ast.StmtID {
	p.expect(token.Colon)
	if !p.at(token.Newline) {
		return p.parseSimpleLine()
	}
	p.advance()
	if !p.eat(token.Indent) {
		p.report(diag.SynExpectIndent, p.peek().Span, "expected an indented block")
		return nil
	}
	var body []ast.StmtID
	for !p.at(token.Dedent) && !p.at(token.EOF) {
		if p.eat(token.Newline) {
			continue
		}
		body = append(body, p.parseStatement()...)
	}
	p.eat(token.Dedent)
	return body
}

func (p *parser) parseIf(isElif bool) ast.StmtID {
	start := p.advance().Span // if / elif
	cond := p.parseTest()
	body := p.parseBlock()
	data := ast.IfData{Cond: cond, Body: body, IsElif: isElif}

	switch p.peek().Kind {
	case token.KwElif:
		data.Orelse = []ast.StmtID{p.parseIf(true)}
	case token.KwElse:
		p.advance()
		data.Orelse = p.parseBlock()
	}
	return p.b.Stmts.NewIf(p.spanFrom(start), data)
}

func (p *parser) parseWhile() ast.StmtID {
	start := p.expect(token.KwWhile).Span
	cond := p.parseTest()
	body := p.parseBlock()
	var orelse []ast.StmtID
	if p.eat(token.KwElse) {
		orelse = p.parseBlock()
	}
	return p.b.Stmts.NewWhile(p.spanFrom(start), ast.WhileData{Cond: cond, Body: body, Orelse: orelse})
}

func (p *parser) parseFor() ast.StmtID {
	start := p.expect(token.KwFor).Span
	target := p.parseTargetList()
	p.expect(token.KwIn)
	iter := p.parseTestList()
	body := p.parseBlock()
	var orelse []ast.StmtID
	if p.eat(token.KwElse) {
		orelse = p.parseBlock()
	}
	return p.b.Stmts.NewFor(p.spanFrom(start), ast.ForData{Target: target, Iter: iter, Body: body, Orelse: orelse})
}

func (p *parser) parseWith() ast.StmtID {
	start := p.expect(token.KwWith).Span
	data := ast.WithData{}

	if p.at(token.LParen) && p.parenWrapsWithItems() {
		p.advance()
		data.HasParens = true
		for !p.at(token.RParen) && !p.at(token.EOF) {
			data.Items = append(data.Items, p.parseWithItem())
			if !p.eat(token.Comma) {
				break
			}
			if p.at(token.RParen) {
				data.HasTrailingComma = true
			}
		}
		p.expect(token.RParen)
	} else {
		for {
			data.Items = append(data.Items, p.parseWithItem())
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	data.Body = p.parseBlock()
	return p.b.Stmts.NewWith(p.spanFrom(start), data)
}

func (p *parser) parseWithItem() ast.WithItem {
	start := p.peek().Span
	ctx := p.parseTest()
	var bind ast.ExprID
	if p.eat(token.KwAs) {
		bind = p.parseTarget()
	}
	return ast.WithItem{Context: ctx, Var: bind, Span: p.spanFrom(start)}
}

// parenWrapsWithItems distinguishes "with (a, b):" item lists from a single
// parenthesized context-manager expression: the paren is an item list when
// its matching close is followed by ':' and the parens hold a top-level
// comma or 'as'.
func (p *parser) parenWrapsWithItems() bool {
	depth := 0
	sawListSyntax := false
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 {
				next := token.Token{Kind: token.EOF}
				if i+1 < len(p.toks) {
					next = p.toks[i+1]
				}
				return sawListSyntax && next.Kind == token.Colon
			}
		case token.Comma, token.KwAs:
			if depth == 1 {
				sawListSyntax = true
			}
		case token.EOF:
			return false
		}
	}
	return false
}

func (p *parser) parseDecorated() ast.StmtID {
	atStart := p.peek().Span
	var decorators []ast.ExprID
	for p.at(token.At) {
		p.advance()
		decorators = append(decorators, p.parseTest())
		p.expect(token.Newline)
	}
	var id ast.StmtID
	switch p.peek().Kind {
	case token.KwDef:
		id = p.parseFuncDef(decorators)
	case token.KwClass:
		id = p.parseClassDef(decorators)
	default:
		p.report(diag.SynUnexpectedToken, p.peek().Span, "expected def or class after decorator")
		p.sync()
		return ast.NoStmtID
	}
	// The statement span covers its decorators.
	st := p.b.Stmts.Get(id)
	st.Span = atStart.Cover(st.Span)
	return id
}

func (p *parser) parseFuncDef(decorators []ast.ExprID) ast.StmtID {
	start := p.expect(token.KwDef).Span
	name := p.expectIdent().Text
	p.expect(token.LParen)
	params := p.parseParamList(token.RParen)
	p.expect(token.RParen)
	var returns ast.ExprID
	if p.eat(token.Arrow) {
		returns = p.parseTest()
	}
	body := p.parseBlock()
	return p.b.Stmts.NewFuncDef(p.spanFrom(start), ast.FuncDefData{
		Name:       name,
		Decorators: decorators,
		Params:     params,
		Returns:    returns,
		Body:       body,
	})
}

func (p *parser) parseParamList(closer token.Kind) ast.ParamList {
	var pl ast.ParamList
	for !p.at(closer) && !p.at(token.Colon) && !p.at(token.EOF) {
		pl.Params = append(pl.Params, p.parseParam())
		if !p.eat(token.Comma) {
			break
		}
		if p.at(closer) || p.at(token.Colon) {
			pl.HasTrailingComma = true
		}
	}
	return pl
}

func (p *parser) parseParam() ast.Param {
	start := p.peek().Span
	var param ast.Param
	switch {
	case p.eat(token.Slash):
		param.Star = ast.ParamSlash
		param.Span = p.spanFrom(start)
		return param
	case p.eat(token.StarStar):
		param.Star = ast.ParamStarStarKwargs
	case p.eat(token.Star):
		if p.at(token.Comma) || p.at(token.RParen) || p.at(token.Colon) {
			param.Star = ast.ParamBareStar
			param.Span = p.spanFrom(start)
			return param
		}
		param.Star = ast.ParamStarArgs
	}
	param.Name = p.expectIdent().Text
	if p.eat(token.Colon) {
		param.Annot = p.parseTest()
	}
	if p.eat(token.Assign) {
		param.Default = p.parseTest()
	}
	param.Span = p.spanFrom(start)
	return param
}

func (p *parser) parseClassDef(decorators []ast.ExprID) ast.StmtID {
	start := p.expect(token.KwClass).Span
	name := p.expectIdent().Text
	data := ast.ClassDefData{Name: name, Decorators: decorators}
	if p.eat(token.LParen) {
		data.HasParens = true
		for !p.at(token.RParen) && !p.at(token.EOF) {
			data.Bases = append(data.Bases, p.parseCallArg())
			if !p.eat(token.Comma) {
				break
			}
			if p.at(token.RParen) {
				data.HasTrailingComma = true
			}
		}
		p.expect(token.RParen)
	}
	data.Body = p.parseBlock()
	return p.b.Stmts.NewClassDef(p.spanFrom(start), data)
}
