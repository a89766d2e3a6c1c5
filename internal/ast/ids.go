package ast

type (
	FileID uint32
	StmtID uint32
	ExprID uint32
)

const (
	NoFileID FileID = 0
	NoStmtID StmtID = 0
	NoExprID ExprID = 0
)

func (id FileID) IsValid() bool { return id != NoFileID }
func (id StmtID) IsValid() bool { return id != NoStmtID }
func (id ExprID) IsValid() bool { return id != NoExprID }
