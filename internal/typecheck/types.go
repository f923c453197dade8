package typecheck

import (
	"minicc/internal/ast"
	"minicc/internal/diag"
)

type Kind int

const (
	TyBad Kind = iota
	TyInt
	TyFloat
	TyString
)

type Type struct {
	K Kind
}

func (t Type) String() string {
	switch t.K {
	case TyInt:
		return "int"
	case TyFloat:
		return "float"
	case TyString:
		return "string"
	default:
		return "<bad>"
	}
}

func (t Type) IsNumeric() bool { return t.K == TyInt || t.K == TyFloat }

func FromAST(t ast.Type) Type {
	switch t {
	case ast.TypeInt:
		return Type{K: TyInt}
	case ast.TypeFloat:
		return Type{K: TyFloat}
	default:
		return Type{K: TyBad}
	}
}

type CheckedProgram struct {
	Prog     *ast.Program
	FuncSigs map[string]FuncSig
	// VarTypes is each function's variable table after its last statement.
	VarTypes  map[*ast.FuncDecl]map[string]Type
	ExprTypes map[ast.Expr]Type
}

type FuncSig struct {
	Ret Type
}

// Check validates prog. The returned CheckedProgram is only meaningful when
// the bag is empty.
func Check(prog *ast.Program) (*CheckedProgram, *diag.Bag) {
	c := &checker{
		prog:      prog,
		diags:     &diag.Bag{},
		funcSigs:  map[string]FuncSig{},
		varTypes:  map[*ast.FuncDecl]map[string]Type{},
		exprTypes: map[ast.Expr]Type{},
	}
	c.collectFuncSigs()
	c.checkAll()
	return &CheckedProgram{Prog: prog, FuncSigs: c.funcSigs, VarTypes: c.varTypes, ExprTypes: c.exprTypes}, c.diags
}

type checker struct {
	prog      *ast.Program
	diags     *diag.Bag
	funcSigs  map[string]FuncSig
	varTypes  map[*ast.FuncDecl]map[string]Type
	exprTypes map[ast.Expr]Type

	curFn *ast.FuncDecl
	scope []map[string]varInfo
}

type varInfo struct {
	ty   Type
	decl *ast.DeclareStmt
}

func (c *checker) collectFuncSigs() {
	for _, fn := range c.prog.Funcs {
		if _, exists := c.funcSigs[fn.Name]; exists {
			c.errorAt(fn.Span, "duplicate function: "+fn.Name)
			continue
		}
		c.funcSigs[fn.Name] = FuncSig{Ret: FromAST(fn.Ret)}
	}
}
