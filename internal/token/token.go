package token

import "pyfmt/internal/source"

// Token is a single lexical token. Text carries the source spelling for
// kinds whose payload matters (identifiers, numbers, strings); structural
// kinds leave it empty.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

func (t Token) Is(kind Kind) bool {
	return t.Kind == kind
}
