package token

import "pyfmt/internal/source"

// Comment is a trivia record produced by the lexer alongside the token
// stream. Text includes the leading '#'. OwnLine is true when nothing but
// whitespace precedes the comment on its source line; such comments sit on
// their own line, the rest trail code.
type Comment struct {
	Text    string
	Span    source.Span
	OwnLine bool
}

// CommentID indexes a comment within the lexer's trivia slice.
type CommentID uint32
