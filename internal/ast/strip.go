package ast

import "minicc/internal/source"

// StripSpans zeroes every span in prog, in place, so trees can be compared
// or dumped without source positions.
func StripSpans(prog *Program) *Program {
	for _, inc := range prog.Includes {
		inc.S = source.Span{}
	}
	for _, fn := range prog.Funcs {
		fn.Span = source.Span{}
		for _, st := range fn.Body {
			stripStmt(st)
		}
	}
	return prog
}

func stripStmt(st Stmt) {
	switch s := st.(type) {
	case *IncludeStmt:
		s.S = source.Span{}
	case *DeclareStmt:
		s.S = source.Span{}
		stripExpr(s.Init)
	case *AssignStmt:
		s.S = source.Span{}
		stripExpr(s.Expr)
	case *ReturnStmt:
		s.S = source.Span{}
		stripExpr(s.Expr)
	case *PrintStmt:
		s.S = source.Span{}
		for _, a := range s.Args {
			stripExpr(a)
		}
	case *ScanStmt:
		s.S = source.Span{}
		for _, a := range s.Args {
			stripExpr(a)
		}
	}
}

func stripExpr(ex Expr) {
	switch e := ex.(type) {
	case *IntLit:
		e.S = source.Span{}
	case *FloatLit:
		e.S = source.Span{}
	case *StringLit:
		e.S = source.Span{}
	case *VarExpr:
		e.S = source.Span{}
	case *BinaryExpr:
		e.S = source.Span{}
		stripExpr(e.Left)
		stripExpr(e.Right)
	}
}
