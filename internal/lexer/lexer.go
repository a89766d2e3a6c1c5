// Package lexer tokenizes the indentation-sensitive source language.
//
// The lexer is whole-file: Tokenize returns the significant token stream
// (with synthetic NEWLINE/INDENT/DEDENT tokens) plus a separate comment
// trivia slice. Newlines inside bracket pairs and after explicit
// backslash joins are suppressed, matching the language's logical-line
// rules.
package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"pyfmt/internal/diag"
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

const tabSize = 8

type Options struct {
	Reporter diag.Reporter // may be nil; errors are then ignored
}

type Lexer struct {
	file *source.File
	opts Options

	off          uint32
	limit        uint32
	parenDepth   int
	indents      []int
	atLineStart  bool
	lineHasToken bool

	tokens   []token.Token
	comments []token.Comment
}

// Tokenize lexes the whole file.
func Tokenize(file *source.File, opts Options) ([]token.Token, []token.Comment) {
	limit, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("file content length overflow: %w", err))
	}
	lx := &Lexer{
		file:        file,
		opts:        opts,
		limit:       limit,
		indents:     []int{0},
		atLineStart: true,
		tokens:      make([]token.Token, 0, limit/4+8),
	}
	lx.run()
	return lx.tokens, lx.comments
}

func (lx *Lexer) run() {
	for !lx.eof() {
		if lx.atLineStart && lx.parenDepth == 0 {
			if !lx.scanLineStart() {
				continue
			}
		}
		lx.scanWithinLine()
	}
	lx.finish()
}

// scanLineStart measures indentation and emits INDENT/DEDENT. It returns
// false when the line turned out to be blank or comment-only and the main
// loop should re-enter at the next line.
func (lx *Lexer) scanLineStart() bool {
	col := 0
	for !lx.eof() {
		switch lx.peek() {
		case ' ':
			col++
			lx.off++
		case '\t':
			col += tabSize - col%tabSize
			lx.off++
		default:
			goto measured
		}
	}
measured:
	if lx.eof() {
		return false
	}
	switch lx.peek() {
	case '\n':
		lx.off++
		lx.lineHasToken = false
		return false
	case '#':
		lx.scanComment()
		if !lx.eof() && lx.peek() == '\n' {
			lx.off++
			lx.lineHasToken = false
		}
		return false
	}

	lx.atLineStart = false
	top := lx.indents[len(lx.indents)-1]
	switch {
	case col > top:
		lx.indents = append(lx.indents, col)
		lx.push(token.Token{Kind: token.Indent, Span: lx.here()})
	case col < top:
		for len(lx.indents) > 1 && lx.indents[len(lx.indents)-1] > col {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.push(token.Token{Kind: token.Dedent, Span: lx.here()})
		}
		if lx.indents[len(lx.indents)-1] != col {
			lx.report(diag.LexBadIndent, lx.here(), "unindent does not match any outer indentation level")
			lx.indents[len(lx.indents)-1] = col
		}
	}
	return true
}

// scanWithinLine consumes tokens until the end of the physical line.
func (lx *Lexer) scanWithinLine() {
	for !lx.eof() {
		ch := lx.peek()
		switch {
		case ch == ' ' || ch == '\t':
			lx.off++
		case ch == '\n':
			lx.off++
			lx.lineHasToken = false
			if lx.parenDepth == 0 {
				lx.pushNewline(lx.off - 1)
				lx.atLineStart = true
				return
			}
		case ch == '\\' && lx.peekAt(1) == '\n':
			lx.off += 2
			lx.lineHasToken = false
		case ch == '\\':
			lx.report(diag.LexBadLineJoin, lx.spanFrom(lx.off, lx.off+1), "unexpected character after line continuation")
			lx.off++
		case ch == '#':
			lx.scanComment()
		case ch == '\r':
			lx.off++
		default:
			lx.scanToken()
		}
	}
}

func (lx *Lexer) finish() {
	// An unterminated final line still ends a statement.
	if lx.lineHasToken {
		lx.pushNewline(lx.off)
	}
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.push(token.Token{Kind: token.Dedent, Span: lx.here()})
	}
	lx.push(token.Token{Kind: token.EOF, Span: lx.here()})
}

func (lx *Lexer) scanToken() {
	ch := lx.peek()
	switch {
	case isIdentStartByte(ch) || ch >= 0x80:
		lx.scanIdentOrKeyword()
	case isDec(ch):
		lx.scanNumber()
	case ch == '.' && isDec(lx.peekAt(1)):
		lx.scanNumber()
	case ch == '\'' || ch == '"':
		lx.scanString(lx.off)
	default:
		lx.scanOperatorOrPunct()
	}
}

func (lx *Lexer) scanComment() {
	start := lx.off
	for !lx.eof() && lx.peek() != '\n' {
		lx.off++
	}
	sp := lx.spanFrom(start, lx.off)
	lx.comments = append(lx.comments, token.Comment{
		Text:    string(lx.file.Content[start:lx.off]),
		Span:    sp,
		OwnLine: !lx.lineHasToken,
	})
}

func (lx *Lexer) push(t token.Token) {
	if t.Kind != token.Newline && t.Kind != token.Indent && t.Kind != token.Dedent && t.Kind != token.EOF {
		lx.lineHasToken = true
	}
	lx.tokens = append(lx.tokens, t)
}

func (lx *Lexer) pushNewline(at uint32) {
	// Collapse duplicate NEWLINE tokens (empty statements, trailing joins).
	if n := len(lx.tokens); n > 0 && lx.tokens[n-1].Kind == token.Newline {
		return
	}
	lx.tokens = append(lx.tokens, token.Token{Kind: token.Newline, Span: lx.spanFrom(at, at)})
}

func (lx *Lexer) eof() bool { return lx.off >= lx.limit }

func (lx *Lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.file.Content[lx.off]
}

func (lx *Lexer) peekAt(n uint32) byte {
	if lx.off+n >= lx.limit {
		return 0
	}
	return lx.file.Content[lx.off+n]
}

func (lx *Lexer) here() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.off, End: lx.off}
}

func (lx *Lexer) spanFrom(start, end uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: end}
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg)
	}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }
