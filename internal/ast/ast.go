package ast

import "minicc/internal/source"

type Program struct {
	Includes []*IncludeStmt
	Funcs    []*FuncDecl
}

type FuncDecl struct {
	Name string
	Ret  Type
	Body []Stmt
	Span source.Span
}

// Type is a declared scalar type. Both kinds are 4 bytes wide.
type Type int

const (
	TypeInt Type = iota
	TypeFloat
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return "?"
	}
}

// Stmt
type Stmt interface {
	stmtNode()
	Span() source.Span
}

// IncludeStmt has no code generation effect; it is kept so drivers can echo it.
type IncludeStmt struct {
	Path   string
	Angled bool
	S      source.Span
}

func (*IncludeStmt) stmtNode()           {}
func (s *IncludeStmt) Span() source.Span { return s.S }

func (s *IncludeStmt) String() string {
	if s.Angled {
		return "<" + s.Path + ">"
	}
	return `"` + s.Path + `"`
}

type DeclareStmt struct {
	Type Type
	Name string
	Init Expr
	S    source.Span
}

func (*DeclareStmt) stmtNode()           {}
func (s *DeclareStmt) Span() source.Span { return s.S }

type AssignStmt struct {
	Name string
	Expr Expr
	S    source.Span
}

func (*AssignStmt) stmtNode()           {}
func (s *AssignStmt) Span() source.Span { return s.S }

type ReturnStmt struct {
	Expr Expr
	S    source.Span
}

func (*ReturnStmt) stmtNode()           {}
func (s *ReturnStmt) Span() source.Span { return s.S }

type PrintStmt struct {
	Args []Expr
	S    source.Span
}

func (*PrintStmt) stmtNode()           {}
func (s *PrintStmt) Span() source.Span { return s.S }

// ScanStmt arguments are variables to read into; string literals are
// format hints and carry no storage.
type ScanStmt struct {
	Args []Expr
	S    source.Span
}

func (*ScanStmt) stmtNode()           {}
func (s *ScanStmt) Span() source.Span { return s.S }

// Expr
type Expr interface {
	exprNode()
	Span() source.Span
}

type IntLit struct {
	Value int32
	S     source.Span
}

func (*IntLit) exprNode()           {}
func (e *IntLit) Span() source.Span { return e.S }

type FloatLit struct {
	Value float32
	S     source.Span
}

func (*FloatLit) exprNode()           {}
func (e *FloatLit) Span() source.Span { return e.S }

// StringLit holds the decoded contents. Only valid as a printf/scanf argument.
type StringLit struct {
	Value string
	S     source.Span
}

func (*StringLit) exprNode()           {}
func (e *StringLit) Span() source.Span { return e.S }

type VarExpr struct {
	Name string
	S    source.Span
}

func (*VarExpr) exprNode()           {}
func (e *VarExpr) Span() source.Span { return e.S }

type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
	S     source.Span
}

func (*BinaryExpr) exprNode()           {}
func (e *BinaryExpr) Span() source.Span { return e.S }
