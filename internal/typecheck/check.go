package typecheck

import (
	"fmt"

	"minicc/internal/ast"
)

func (c *checker) checkAll() {
	for _, fn := range c.prog.Funcs {
		c.curFn = fn
		c.pushScope()
		for _, st := range fn.Body {
			c.checkStmt(st, FromAST(fn.Ret))
		}
		vars := map[string]Type{}
		for name, vi := range c.scopeTop() {
			vars[name] = vi.ty
		}
		c.varTypes[fn] = vars
		c.popScope()
	}
	c.curFn = nil
}

func (c *checker) checkStmt(st ast.Stmt, expectedRet Type) {
	switch s := st.(type) {
	case *ast.IncludeStmt:
	case *ast.DeclareStmt:
		// The initializer cannot see the name it initializes.
		c.checkValue(s.Init)
		if prev, ok := c.scopeTop()[s.Name]; ok {
			_, line, col := prev.decl.S.LocStart()
			c.errorAt(s.S, fmt.Sprintf("redeclared variable: %s (previous declaration at %d:%d)", s.Name, line, col))
			return
		}
		c.scopeTop()[s.Name] = varInfo{ty: FromAST(s.Type), decl: s}
	case *ast.AssignStmt:
		if _, ok := c.lookupVar(s.Name); !ok {
			c.errorAt(s.S, "unknown variable: "+s.Name)
		}
		c.checkValue(s.Expr)
	case *ast.ReturnStmt:
		got := c.checkValue(s.Expr)
		if got.K == TyBad || expectedRet.K == TyBad {
			return
		}
		if !assignableTo(expectedRet, got) {
			c.errorAt(s.S, fmt.Sprintf("type mismatch: expected %s, got %s", expectedRet, got))
		}
	case *ast.PrintStmt:
		for _, a := range s.Args {
			if sl, ok := a.(*ast.StringLit); ok {
				c.exprTypes[sl] = Type{K: TyString}
				continue
			}
			c.checkValue(a)
		}
	case *ast.ScanStmt:
		for _, a := range s.Args {
			switch e := a.(type) {
			case *ast.StringLit:
				c.exprTypes[e] = Type{K: TyString}
			case *ast.VarExpr:
				c.checkExpr(e)
			default:
				c.errorAt(a.Span(), "scanf argument must be a variable")
			}
		}
	default:
		c.errorAt(st.Span(), fmt.Sprintf("unsupported statement %T", st))
	}
}

// checkValue checks an expression used as a numeric value.
func (c *checker) checkValue(ex ast.Expr) Type {
	ty := c.checkExpr(ex)
	if ty.K == TyString {
		return Type{K: TyBad}
	}
	return ty
}

func (c *checker) checkExpr(ex ast.Expr) Type {
	ty := c.exprType(ex)
	c.exprTypes[ex] = ty
	return ty
}

func (c *checker) exprType(ex ast.Expr) Type {
	switch e := ex.(type) {
	case *ast.IntLit:
		return Type{K: TyInt}
	case *ast.FloatLit:
		return Type{K: TyFloat}
	case *ast.StringLit:
		c.errorAt(e.S, "string literal is only allowed as a printf or scanf argument")
		return Type{K: TyString}
	case *ast.VarExpr:
		vi, ok := c.lookupVar(e.Name)
		if !ok {
			c.errorAt(e.S, "unknown variable: "+e.Name)
			return Type{K: TyBad}
		}
		return vi.ty
	case *ast.BinaryExpr:
		l := c.checkValue(e.Left)
		r := c.checkValue(e.Right)
		return promote(l, r)
	default:
		c.errorAt(ex.Span(), fmt.Sprintf("unsupported expression %T", ex))
		return Type{K: TyBad}
	}
}

// promote is the result type of a binary operator: float wins over int.
func promote(l, r Type) Type {
	if l.K == TyBad || r.K == TyBad {
		return Type{K: TyBad}
	}
	if l.K == TyFloat || r.K == TyFloat {
		return Type{K: TyFloat}
	}
	return Type{K: TyInt}
}

// assignableTo reports whether a value of type got may be returned as want.
// int widens to float; float never narrows implicitly on return.
func assignableTo(want, got Type) bool {
	if want.K == got.K {
		return true
	}
	return want.K == TyFloat && got.K == TyInt
}
