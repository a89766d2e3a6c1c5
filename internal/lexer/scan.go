package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"pyfmt/internal/diag"
	"pyfmt/internal/token"
)

func (lx *Lexer) scanIdentOrKeyword() {
	start := lx.off
	ascii := true
	for !lx.eof() {
		b := lx.peek()
		switch {
		case isIdentContinueByte(b):
			lx.off++
		case b >= 0x80:
			r, size := utf8.DecodeRune(lx.file.Content[lx.off:lx.limit])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && !unicode.Is(unicode.Mn, r) {
				goto done
			}
			ascii = false
			lx.off += uint32(size) // #nosec G115 -- size in 1..4
		default:
			goto done
		}
	}
done:
	if lx.off == start {
		// Leading rune was not an identifier letter after all.
		_, size := utf8.DecodeRune(lx.file.Content[lx.off:lx.limit])
		lx.off += uint32(size) // #nosec G115 -- size in 1..4
		lx.report(diag.LexUnknownChar, lx.spanFrom(start, lx.off), "unexpected character")
		return
	}
	text := string(lx.file.Content[start:lx.off])

	// A string prefix directly followed by a quote belongs to the string.
	if !lx.eof() && (lx.peek() == '\'' || lx.peek() == '"') && isStringPrefix(text) {
		lx.scanString(start)
		return
	}

	if kw, ok := token.LookupKeyword(text); ok {
		lx.push(token.Token{Kind: kw, Span: lx.spanFrom(start, lx.off), Text: text})
		return
	}
	if !ascii {
		// Identifiers compare under NFKC per the language definition.
		text = norm.NFKC.String(text)
	}
	lx.push(token.Token{Kind: token.Ident, Span: lx.spanFrom(start, lx.off), Text: text})
}

func isStringPrefix(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	switch strings.ToLower(s) {
	case "r", "b", "u", "f", "rb", "br", "fr", "rf":
		return true
	}
	return false
}

func (lx *Lexer) scanString(start uint32) {
	// Skip the prefix, if any, up to the opening quote.
	for lx.off < lx.limit && lx.peek() != '\'' && lx.peek() != '"' {
		lx.off++
	}
	quote := lx.peek()
	raw := strings.ContainsAny(strings.ToLower(string(lx.file.Content[start:lx.off])), "r")
	lx.off++

	triple := false
	if lx.peek() == quote && lx.peekAt(1) == quote {
		triple = true
		lx.off += 2
	} else if lx.peek() == quote {
		// Empty short string.
		lx.off++
		lx.pushString(start)
		return
	}

	for !lx.eof() {
		ch := lx.peek()
		switch {
		case ch == '\\' && !raw:
			lx.off += 2
		case ch == '\\' && raw:
			// In raw strings a backslash still shields a quote from
			// terminating the literal.
			lx.off += 2
		case ch == quote:
			if !triple {
				lx.off++
				lx.pushString(start)
				return
			}
			if lx.peekAt(1) == quote && lx.peekAt(2) == quote {
				lx.off += 3
				lx.pushString(start)
				return
			}
			lx.off++
		case ch == '\n' && !triple:
			lx.report(diag.LexUnterminatedString, lx.spanFrom(start, lx.off), "unterminated string literal")
			lx.pushString(start)
			return
		default:
			lx.off++
		}
	}
	lx.report(diag.LexUnterminatedString, lx.spanFrom(start, lx.off), "unterminated string literal")
	lx.pushString(start)
}

func (lx *Lexer) pushString(start uint32) {
	lx.push(token.Token{
		Kind: token.String,
		Span: lx.spanFrom(start, lx.off),
		Text: string(lx.file.Content[start:lx.off]),
	})
}

func (lx *Lexer) scanNumber() {
	start := lx.off
	ch := lx.peek()

	if ch == '0' && (lx.peekAt(1)|0x20 == 'x' || lx.peekAt(1)|0x20 == 'o' || lx.peekAt(1)|0x20 == 'b') {
		lx.off += 2
		for !lx.eof() && (isHexDigit(lx.peek()) || lx.peek() == '_') {
			lx.off++
		}
		lx.pushNumber(start)
		return
	}

	lx.consumeDigits()
	if lx.peek() == '.' {
		lx.off++
		lx.consumeDigits()
	}
	if lx.peek()|0x20 == 'e' {
		next := lx.peekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.peekAt(2))) {
			lx.off++
			if lx.peek() == '+' || lx.peek() == '-' {
				lx.off++
			}
			lx.consumeDigits()
		}
	}
	if lx.peek()|0x20 == 'j' {
		lx.off++
	}
	if isIdentStartByte(lx.peek()) {
		lx.report(diag.LexBadNumber, lx.spanFrom(start, lx.off+1), "invalid character in number literal")
	}
	lx.pushNumber(start)
}

func (lx *Lexer) consumeDigits() {
	for !lx.eof() && (isDec(lx.peek()) || lx.peek() == '_') {
		lx.off++
	}
}

func (lx *Lexer) pushNumber(start uint32) {
	lx.push(token.Token{
		Kind: token.Number,
		Span: lx.spanFrom(start, lx.off),
		Text: string(lx.file.Content[start:lx.off]),
	})
}

func isHexDigit(b byte) bool {
	return isDec(b) || (b|0x20 >= 'a' && b|0x20 <= 'f')
}

// operator spellings ordered longest-first for maximal munch.
var operators = []struct {
	text string
	kind token.Kind
}{
	{"...", token.Ellipsis},
	{"**=", token.StarStarAssign},
	{"//=", token.SlashSlashAssign},
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{"==", token.Eq},
	{"!=", token.NotEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
	{"@=", token.AtAssign},
	{"->", token.Arrow},
	{"**", token.StarStar},
	{"//", token.SlashSlash},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"(", token.LParen},
	{")", token.RParen},
	{"[", token.LBracket},
	{"]", token.RBracket},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{",", token.Comma},
	{":", token.Colon},
	{";", token.Semicolon},
	{".", token.Dot},
	{"@", token.At},
	{"=", token.Assign},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"^", token.Caret},
	{"~", token.Tilde},
	{"<", token.Lt},
	{">", token.Gt},
}

func (lx *Lexer) scanOperatorOrPunct() {
	rest := lx.file.Content[lx.off:lx.limit]
	for _, op := range operators {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			start := lx.off
			lx.off += uint32(len(op.text)) // #nosec G115 -- spellings are short
			switch op.kind {
			case token.LParen, token.LBracket, token.LBrace:
				lx.parenDepth++
			case token.RParen, token.RBracket, token.RBrace:
				if lx.parenDepth > 0 {
					lx.parenDepth--
				}
			}
			lx.push(token.Token{Kind: op.kind, Span: lx.spanFrom(start, lx.off), Text: op.text})
			return
		}
	}
	start := lx.off
	_, size := utf8.DecodeRune(rest)
	lx.off += uint32(size) // #nosec G115 -- size in 1..4
	lx.report(diag.LexUnknownChar, lx.spanFrom(start, lx.off), "unexpected character")
}
