package ast

import (
	"pyfmt/internal/source"
	"pyfmt/internal/token"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtExpr
	StmtAssign
	StmtAugAssign
	StmtAnnAssign
	StmtReturn
	StmtPass
	StmtBreak
	StmtContinue
	StmtImport
	StmtImportFrom
	StmtIf
	StmtWhile
	StmtFor
	StmtWith
	StmtFuncDef
	StmtClassDef
	StmtRaise
	StmtAssert
	StmtDel
	StmtGlobal
	StmtNonlocal
)

// Stmt is the arena header for a statement node.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload uint32

	// BlankBefore records how many blank lines separated this statement
	// from the previous one in the source; the renderer clamps it.
	BlankBefore uint8
}

// ParamStar marks the special parameter forms in a def/lambda list.
type ParamStar uint8

const (
	ParamPlain ParamStar = iota
	ParamStarArgs
	ParamStarStarKwargs
	ParamBareStar  // keyword-only marker "*"
	ParamSlash     // positional-only marker "/"
)

type Param struct {
	Name    string
	Star    ParamStar
	Annot   ExprID // NoExprID when absent
	Default ExprID
	Span    source.Span
}

type ParamList struct {
	Params           []Param
	HasTrailingComma bool
}

// ImportAlias is one dotted name with an optional binding.
type ImportAlias struct {
	Path   string
	AsName string
	Span   source.Span
}

// WithItem is one "expr as target" clause of a with statement.
type WithItem struct {
	Context ExprID
	Var     ExprID // NoExprID when absent
	Span    source.Span
}

type (
	ExprStmtData struct{ Value ExprID }

	AssignData struct {
		Targets []ExprID
		Value   ExprID
	}

	AugAssignData struct {
		Target ExprID
		Op     token.Kind
		Value  ExprID
	}

	AnnAssignData struct {
		Target ExprID
		Annot  ExprID
		Value  ExprID // NoExprID when absent
	}

	ReturnData struct{ Value ExprID } // NoExprID for bare return

	ImportData struct{ Names []ImportAlias }

	ImportFromData struct {
		Module           string
		Level            int // leading dots
		Names            []ImportAlias
		Star             bool
		HasParens        bool
		HasTrailingComma bool
	}

	IfData struct {
		Cond   ExprID
		Body   []StmtID
		Orelse []StmtID // a single If marked IsElif renders as elif
		IsElif bool
	}

	WhileData struct {
		Cond   ExprID
		Body   []StmtID
		Orelse []StmtID
	}

	ForData struct {
		Target ExprID
		Iter   ExprID
		Body   []StmtID
		Orelse []StmtID
	}

	WithData struct {
		Items            []WithItem
		Body             []StmtID
		HasParens        bool
		HasTrailingComma bool
	}

	FuncDefData struct {
		Name       string
		Decorators []ExprID
		Params     ParamList
		Returns    ExprID // NoExprID when absent
		Body       []StmtID
	}

	ClassDefData struct {
		Name             string
		Decorators       []ExprID
		Bases            []ExprID // keyword arguments appear as ExprKeyword
		HasParens        bool
		HasTrailingComma bool
		Body             []StmtID
	}

	RaiseData struct {
		Exc  ExprID // NoExprID for bare raise
		From ExprID
	}

	AssertData struct {
		Test ExprID
		Msg  ExprID // NoExprID when absent
	}

	DelData struct{ Targets []ExprID }

	NamesData struct{ Names []string } // global / nonlocal
)

// Stmts bundles the statement arena with its payload tables.
type Stmts struct {
	Arena *Arena[Stmt]

	exprStmts   []ExprStmtData
	assigns     []AssignData
	augAssigns  []AugAssignData
	annAssigns  []AnnAssignData
	returns     []ReturnData
	imports     []ImportData
	importFroms []ImportFromData
	ifs         []IfData
	whiles      []WhileData
	fors        []ForData
	withs       []WithData
	funcDefs    []FuncDefData
	classDefs   []ClassDefData
	raises      []RaiseData
	asserts     []AssertData
	dels        []DelData
	names       []NamesData
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{Arena: NewArena[Stmt](capHint)}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: payload}))
}

// NewSimple allocates a payload-free statement (pass, break, continue).
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return s.new(kind, span, 0)
}

func (s *Stmts) NewExprStmt(span source.Span, data ExprStmtData) StmtID {
	s.exprStmts = append(s.exprStmts, data)
	return s.new(StmtExpr, span, uint32(len(s.exprStmts)))
}

func (s *Stmts) NewAssign(span source.Span, data AssignData) StmtID {
	s.assigns = append(s.assigns, data)
	return s.new(StmtAssign, span, uint32(len(s.assigns)))
}

func (s *Stmts) NewAugAssign(span source.Span, data AugAssignData) StmtID {
	s.augAssigns = append(s.augAssigns, data)
	return s.new(StmtAugAssign, span, uint32(len(s.augAssigns)))
}

func (s *Stmts) NewAnnAssign(span source.Span, data AnnAssignData) StmtID {
	s.annAssigns = append(s.annAssigns, data)
	return s.new(StmtAnnAssign, span, uint32(len(s.annAssigns)))
}

func (s *Stmts) NewReturn(span source.Span, data ReturnData) StmtID {
	s.returns = append(s.returns, data)
	return s.new(StmtReturn, span, uint32(len(s.returns)))
}

func (s *Stmts) NewImport(span source.Span, data ImportData) StmtID {
	s.imports = append(s.imports, data)
	return s.new(StmtImport, span, uint32(len(s.imports)))
}

func (s *Stmts) NewImportFrom(span source.Span, data ImportFromData) StmtID {
	s.importFroms = append(s.importFroms, data)
	return s.new(StmtImportFrom, span, uint32(len(s.importFroms)))
}

func (s *Stmts) NewIf(span source.Span, data IfData) StmtID {
	s.ifs = append(s.ifs, data)
	return s.new(StmtIf, span, uint32(len(s.ifs)))
}

func (s *Stmts) NewWhile(span source.Span, data WhileData) StmtID {
	s.whiles = append(s.whiles, data)
	return s.new(StmtWhile, span, uint32(len(s.whiles)))
}

func (s *Stmts) NewFor(span source.Span, data ForData) StmtID {
	s.fors = append(s.fors, data)
	return s.new(StmtFor, span, uint32(len(s.fors)))
}

func (s *Stmts) NewWith(span source.Span, data WithData) StmtID {
	s.withs = append(s.withs, data)
	return s.new(StmtWith, span, uint32(len(s.withs)))
}

func (s *Stmts) NewFuncDef(span source.Span, data FuncDefData) StmtID {
	s.funcDefs = append(s.funcDefs, data)
	return s.new(StmtFuncDef, span, uint32(len(s.funcDefs)))
}

func (s *Stmts) NewClassDef(span source.Span, data ClassDefData) StmtID {
	s.classDefs = append(s.classDefs, data)
	return s.new(StmtClassDef, span, uint32(len(s.classDefs)))
}

func (s *Stmts) NewRaise(span source.Span, data RaiseData) StmtID {
	s.raises = append(s.raises, data)
	return s.new(StmtRaise, span, uint32(len(s.raises)))
}

func (s *Stmts) NewAssert(span source.Span, data AssertData) StmtID {
	s.asserts = append(s.asserts, data)
	return s.new(StmtAssert, span, uint32(len(s.asserts)))
}

func (s *Stmts) NewDel(span source.Span, data DelData) StmtID {
	s.dels = append(s.dels, data)
	return s.new(StmtDel, span, uint32(len(s.dels)))
}

func (s *Stmts) NewNames(kind StmtKind, span source.Span, data NamesData) StmtID {
	s.names = append(s.names, data)
	return s.new(kind, span, uint32(len(s.names)))
}

func (s *Stmts) ExprStmt(id StmtID) *ExprStmtData     { return stmtPayload(s, id, StmtExpr, s.exprStmts) }
func (s *Stmts) Assign(id StmtID) *AssignData         { return stmtPayload(s, id, StmtAssign, s.assigns) }
func (s *Stmts) AugAssign(id StmtID) *AugAssignData   { return stmtPayload(s, id, StmtAugAssign, s.augAssigns) }
func (s *Stmts) AnnAssign(id StmtID) *AnnAssignData   { return stmtPayload(s, id, StmtAnnAssign, s.annAssigns) }
func (s *Stmts) Return(id StmtID) *ReturnData         { return stmtPayload(s, id, StmtReturn, s.returns) }
func (s *Stmts) Import(id StmtID) *ImportData         { return stmtPayload(s, id, StmtImport, s.imports) }
func (s *Stmts) ImportFrom(id StmtID) *ImportFromData { return stmtPayload(s, id, StmtImportFrom, s.importFroms) }
func (s *Stmts) If(id StmtID) *IfData                 { return stmtPayload(s, id, StmtIf, s.ifs) }
func (s *Stmts) While(id StmtID) *WhileData           { return stmtPayload(s, id, StmtWhile, s.whiles) }
func (s *Stmts) For(id StmtID) *ForData               { return stmtPayload(s, id, StmtFor, s.fors) }
func (s *Stmts) With(id StmtID) *WithData             { return stmtPayload(s, id, StmtWith, s.withs) }
func (s *Stmts) FuncDef(id StmtID) *FuncDefData       { return stmtPayload(s, id, StmtFuncDef, s.funcDefs) }
func (s *Stmts) ClassDef(id StmtID) *ClassDefData     { return stmtPayload(s, id, StmtClassDef, s.classDefs) }
func (s *Stmts) Raise(id StmtID) *RaiseData           { return stmtPayload(s, id, StmtRaise, s.raises) }
func (s *Stmts) Assert(id StmtID) *AssertData         { return stmtPayload(s, id, StmtAssert, s.asserts) }
func (s *Stmts) Del(id StmtID) *DelData               { return stmtPayload(s, id, StmtDel, s.dels) }

// Names returns the payload of global/nonlocal statements.
func (s *Stmts) Names(id StmtID) *NamesData {
	stmt := s.Get(id)
	if stmt == nil {
		return nil
	}
	if stmt.Kind != StmtGlobal && stmt.Kind != StmtNonlocal {
		return nil
	}
	return &s.names[stmt.Payload-1]
}

func stmtPayload[T any](s *Stmts, id StmtID, kind StmtKind, table []T) *T {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != kind {
		return nil
	}
	return &table[stmt.Payload-1]
}
