package ast

import (
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprName
	ExprNumber
	ExprString
	ExprConst
	ExprCall
	ExprAttr
	ExprSubscript
	ExprSlice
	ExprBinary
	ExprUnary
	ExprBoolOp
	ExprCompare
	ExprTuple
	ExprList
	ExprDict
	ExprSet
	ExprStarred
	ExprKeyword
	ExprLambda
	ExprCond
)

// Expr is the arena header for an expression node; per-kind payloads live
// in side tables addressed by Payload.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload uint32
}

type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstTrue
	ConstFalse
	ConstEllipsis
)

func (c ConstKind) String() string {
	switch c {
	case ConstTrue:
		return "True"
	case ConstFalse:
		return "False"
	case ConstEllipsis:
		return "..."
	default:
		return "None"
	}
}

// CmpOp is a comparison operator, including the two-word forms.
type CmpOp uint8

const (
	CmpEq CmpOp = iota
	CmpNotEq
	CmpLt
	CmpLtEq
	CmpGt
	CmpGtEq
	CmpIs
	CmpIsNot
	CmpIn
	CmpNotIn
)

func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "=="
	case CmpNotEq:
		return "!="
	case CmpLt:
		return "<"
	case CmpLtEq:
		return "<="
	case CmpGt:
		return ">"
	case CmpGtEq:
		return ">="
	case CmpIs:
		return "is"
	case CmpIsNot:
		return "is not"
	case CmpIn:
		return "in"
	default:
		return "not in"
	}
}

type (
	NameData   struct{ Name string }
	NumberData struct{ Text string }

	// StringData keeps each implicitly concatenated literal piece with its
	// original spelling.
	StringData struct{ Parts []string }

	ConstData struct{ Kind ConstKind }

	CallData struct {
		Func             ExprID
		Args             []ExprID
		HasTrailingComma bool
	}

	AttrData struct {
		Value ExprID
		Name  string
	}

	SubscriptData struct {
		Value ExprID
		Index ExprID
	}

	SliceData struct {
		Lo   ExprID
		Hi   ExprID
		Step ExprID
	}

	BinaryData struct {
		Op    token.Kind
		Left  ExprID
		Right ExprID
	}

	UnaryData struct {
		Op      token.Kind
		Operand ExprID
	}

	BoolOpData struct {
		Op     token.Kind // KwAnd or KwOr
		Values []ExprID
	}

	CompareData struct {
		Left        ExprID
		Ops         []CmpOp
		Comparators []ExprID
	}

	SeqData struct {
		Elts             []ExprID
		HasParens        bool // tuples only: written with parentheses
		HasTrailingComma bool
	}

	DictData struct {
		Keys             []ExprID // NoExprID marks a ** expansion
		Values           []ExprID
		HasTrailingComma bool
	}

	StarredData struct {
		Value  ExprID
		Double bool
	}

	// KeywordData is a name=value call argument; an empty Name means **value.
	KeywordData struct {
		Name  string
		Value ExprID
	}

	LambdaData struct {
		Params ParamList
		Body   ExprID
	}

	CondData struct {
		Body   ExprID
		Test   ExprID
		Orelse ExprID
	}
)

// Exprs bundles the expression arena with its payload tables.
type Exprs struct {
	Arena *Arena[Expr]

	names      []NameData
	numbers    []NumberData
	strings    []StringData
	consts     []ConstData
	calls      []CallData
	attrs      []AttrData
	subscripts []SubscriptData
	slices     []SliceData
	binaries   []BinaryData
	unaries    []UnaryData
	boolOps    []BoolOpData
	compares   []CompareData
	seqs       []SeqData // tuple, list, set share the shape
	dicts      []DictData
	starred    []StarredData
	keywords   []KeywordData
	lambdas    []LambdaData
	conds      []CondData
}

func NewExprs(capHint uint) *Exprs {
	return &Exprs{Arena: NewArena[Expr](capHint)}
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

func (e *Exprs) NewName(span source.Span, name string) ExprID {
	e.names = append(e.names, NameData{Name: name})
	return e.new(ExprName, span, uint32(len(e.names)))
}

func (e *Exprs) NewNumber(span source.Span, text string) ExprID {
	e.numbers = append(e.numbers, NumberData{Text: text})
	return e.new(ExprNumber, span, uint32(len(e.numbers)))
}

func (e *Exprs) NewString(span source.Span, data StringData) ExprID {
	e.strings = append(e.strings, data)
	return e.new(ExprString, span, uint32(len(e.strings)))
}

func (e *Exprs) NewConst(span source.Span, kind ConstKind) ExprID {
	e.consts = append(e.consts, ConstData{Kind: kind})
	return e.new(ExprConst, span, uint32(len(e.consts)))
}

func (e *Exprs) NewCall(span source.Span, data CallData) ExprID {
	e.calls = append(e.calls, data)
	return e.new(ExprCall, span, uint32(len(e.calls)))
}

func (e *Exprs) NewAttr(span source.Span, data AttrData) ExprID {
	e.attrs = append(e.attrs, data)
	return e.new(ExprAttr, span, uint32(len(e.attrs)))
}

func (e *Exprs) NewSubscript(span source.Span, data SubscriptData) ExprID {
	e.subscripts = append(e.subscripts, data)
	return e.new(ExprSubscript, span, uint32(len(e.subscripts)))
}

func (e *Exprs) NewSlice(span source.Span, data SliceData) ExprID {
	e.slices = append(e.slices, data)
	return e.new(ExprSlice, span, uint32(len(e.slices)))
}

func (e *Exprs) NewBinary(span source.Span, data BinaryData) ExprID {
	e.binaries = append(e.binaries, data)
	return e.new(ExprBinary, span, uint32(len(e.binaries)))
}

func (e *Exprs) NewUnary(span source.Span, data UnaryData) ExprID {
	e.unaries = append(e.unaries, data)
	return e.new(ExprUnary, span, uint32(len(e.unaries)))
}

func (e *Exprs) NewBoolOp(span source.Span, data BoolOpData) ExprID {
	e.boolOps = append(e.boolOps, data)
	return e.new(ExprBoolOp, span, uint32(len(e.boolOps)))
}

func (e *Exprs) NewCompare(span source.Span, data CompareData) ExprID {
	e.compares = append(e.compares, data)
	return e.new(ExprCompare, span, uint32(len(e.compares)))
}

func (e *Exprs) NewSeq(kind ExprKind, span source.Span, data SeqData) ExprID {
	e.seqs = append(e.seqs, data)
	return e.new(kind, span, uint32(len(e.seqs)))
}

func (e *Exprs) NewDict(span source.Span, data DictData) ExprID {
	e.dicts = append(e.dicts, data)
	return e.new(ExprDict, span, uint32(len(e.dicts)))
}

func (e *Exprs) NewStarred(span source.Span, data StarredData) ExprID {
	e.starred = append(e.starred, data)
	return e.new(ExprStarred, span, uint32(len(e.starred)))
}

func (e *Exprs) NewKeyword(span source.Span, data KeywordData) ExprID {
	e.keywords = append(e.keywords, data)
	return e.new(ExprKeyword, span, uint32(len(e.keywords)))
}

func (e *Exprs) NewLambda(span source.Span, data LambdaData) ExprID {
	e.lambdas = append(e.lambdas, data)
	return e.new(ExprLambda, span, uint32(len(e.lambdas)))
}

func (e *Exprs) NewCond(span source.Span, data CondData) ExprID {
	e.conds = append(e.conds, data)
	return e.new(ExprCond, span, uint32(len(e.conds)))
}

func (e *Exprs) Name(id ExprID) *NameData           { return payload(e, id, ExprName, e.names) }
func (e *Exprs) Number(id ExprID) *NumberData       { return payload(e, id, ExprNumber, e.numbers) }
func (e *Exprs) String(id ExprID) *StringData       { return payload(e, id, ExprString, e.strings) }
func (e *Exprs) Const(id ExprID) *ConstData         { return payload(e, id, ExprConst, e.consts) }
func (e *Exprs) Call(id ExprID) *CallData           { return payload(e, id, ExprCall, e.calls) }
func (e *Exprs) Attr(id ExprID) *AttrData           { return payload(e, id, ExprAttr, e.attrs) }
func (e *Exprs) Subscript(id ExprID) *SubscriptData { return payload(e, id, ExprSubscript, e.subscripts) }
func (e *Exprs) Slice(id ExprID) *SliceData         { return payload(e, id, ExprSlice, e.slices) }
func (e *Exprs) Binary(id ExprID) *BinaryData       { return payload(e, id, ExprBinary, e.binaries) }
func (e *Exprs) Unary(id ExprID) *UnaryData         { return payload(e, id, ExprUnary, e.unaries) }
func (e *Exprs) BoolOp(id ExprID) *BoolOpData       { return payload(e, id, ExprBoolOp, e.boolOps) }
func (e *Exprs) Compare(id ExprID) *CompareData     { return payload(e, id, ExprCompare, e.compares) }
func (e *Exprs) Dict(id ExprID) *DictData           { return payload(e, id, ExprDict, e.dicts) }
func (e *Exprs) Starred(id ExprID) *StarredData     { return payload(e, id, ExprStarred, e.starred) }
func (e *Exprs) Keyword(id ExprID) *KeywordData     { return payload(e, id, ExprKeyword, e.keywords) }
func (e *Exprs) Lambda(id ExprID) *LambdaData       { return payload(e, id, ExprLambda, e.lambdas) }
func (e *Exprs) Cond(id ExprID) *CondData           { return payload(e, id, ExprCond, e.conds) }

// Seq returns the shared payload of tuple, list, and set nodes.
func (e *Exprs) Seq(id ExprID) *SeqData {
	expr := e.Get(id)
	if expr == nil {
		return nil
	}
	switch expr.Kind {
	case ExprTuple, ExprList, ExprSet:
		return &e.seqs[expr.Payload-1]
	}
	return nil
}

func payload[T any](e *Exprs, id ExprID, kind ExprKind, table []T) *T {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return nil
	}
	return &table[expr.Payload-1]
}
