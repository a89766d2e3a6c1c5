package token

// Kind identifies a lexical token class.
type Kind uint8

const (
	EOF Kind = iota
	Newline
	Indent
	Dedent

	Ident
	Number
	String

	// Keywords.
	KwFalse
	KwNone
	KwTrue
	KwAnd
	KwAs
	KwAssert
	KwBreak
	KwClass
	KwContinue
	KwDef
	KwDel
	KwElif
	KwElse
	KwFor
	KwFrom
	KwGlobal
	KwIf
	KwImport
	KwIn
	KwIs
	KwLambda
	KwNonlocal
	KwNot
	KwOr
	KwPass
	KwRaise
	KwReturn
	KwWhile
	KwWith

	// Punctuation and operators.
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Semicolon
	Dot
	Arrow
	At
	Ellipsis

	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	SlashSlashAssign
	PercentAssign
	StarStarAssign
	AmpAssign
	PipeAssign
	CaretAssign
	ShlAssign
	ShrAssign
	AtAssign

	Plus
	Minus
	Star
	StarStar
	Slash
	SlashSlash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Shl
	Shr

	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
)

var kindNames = map[Kind]string{
	EOF:     "EOF",
	Newline: "NEWLINE",
	Indent:  "INDENT",
	Dedent:  "DEDENT",
	Ident:   "ident",
	Number:  "number",
	String:  "string",

	KwFalse: "False", KwNone: "None", KwTrue: "True",
	KwAnd: "and", KwAs: "as", KwAssert: "assert", KwBreak: "break",
	KwClass: "class", KwContinue: "continue", KwDef: "def", KwDel: "del",
	KwElif: "elif", KwElse: "else", KwFor: "for", KwFrom: "from",
	KwGlobal: "global", KwIf: "if", KwImport: "import", KwIn: "in",
	KwIs: "is", KwLambda: "lambda", KwNonlocal: "nonlocal", KwNot: "not",
	KwOr: "or", KwPass: "pass", KwRaise: "raise", KwReturn: "return",
	KwWhile: "while", KwWith: "with",

	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	LBrace: "{", RBrace: "}", Comma: ",", Colon: ":", Semicolon: ";",
	Dot: ".", Arrow: "->", At: "@", Ellipsis: "...",

	Assign: "=", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=",
	SlashAssign: "/=", SlashSlashAssign: "//=", PercentAssign: "%=",
	StarStarAssign: "**=", AmpAssign: "&=", PipeAssign: "|=",
	CaretAssign: "^=", ShlAssign: "<<=", ShrAssign: ">>=", AtAssign: "@=",

	Plus: "+", Minus: "-", Star: "*", StarStar: "**", Slash: "/",
	SlashSlash: "//", Percent: "%", Amp: "&", Pipe: "|", Caret: "^",
	Tilde: "~", Shl: "<<", Shr: ">>",

	Eq: "==", NotEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsKeyword reports whether the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwFalse && k <= KwWith
}

// IsAugAssign reports whether the kind is an augmented assignment operator.
func (k Kind) IsAugAssign() bool {
	return k >= PlusAssign && k <= AtAssign
}

var keywords = map[string]Kind{
	"False": KwFalse, "None": KwNone, "True": KwTrue,
	"and": KwAnd, "as": KwAs, "assert": KwAssert, "break": KwBreak,
	"class": KwClass, "continue": KwContinue, "def": KwDef, "del": KwDel,
	"elif": KwElif, "else": KwElse, "for": KwFor, "from": KwFrom,
	"global": KwGlobal, "if": KwIf, "import": KwImport, "in": KwIn,
	"is": KwIs, "lambda": KwLambda, "nonlocal": KwNonlocal, "not": KwNot,
	"or": KwOr, "pass": KwPass, "raise": KwRaise, "return": KwReturn,
	"while": KwWhile, "with": KwWith,
}

// LookupKeyword maps an identifier to its keyword kind, if any.
func LookupKeyword(name string) (Kind, bool) {
	k, ok := keywords[name]
	return k, ok
}
