package irgen

import (
	"fmt"

	"minicc/internal/ast"
	"minicc/internal/ir"
)

func (g *funcGen) genStmt(st ast.Stmt) error {
	switch s := st.(type) {
	case *ast.IncludeStmt:
		return nil
	case *ast.DeclareStmt:
		if _, exists := g.vars[s.Name]; exists {
			return g.fail(s.S, ErrRedeclared, "variable "+s.Name)
		}
		ty, err := irType(s.Type)
		if err != nil {
			return g.fail(s.S, err, "")
		}
		slot := g.newSlot()
		g.emit(&ir.SlotDecl{Slot: slot, Ty: ty, Name: s.Name})
		// Bound only after the initializer: `int x = x;` does not see itself.
		v, err := g.genExpr(s.Init)
		if err != nil {
			return err
		}
		g.emit(&ir.Store{Slot: slot, Val: g.coerce(v, ty)})
		g.vars[s.Name] = variable{slot: slot, ty: ty}
		return nil
	case *ast.AssignStmt:
		vr, ok := g.vars[s.Name]
		if !ok {
			return g.fail(s.S, ErrUnknownVariable, s.Name)
		}
		v, err := g.genExpr(s.Expr)
		if err != nil {
			return err
		}
		g.emit(&ir.Store{Slot: vr.slot, Val: g.coerce(v, vr.ty)})
		return nil
	case *ast.ReturnStmt:
		v, err := g.genExpr(s.Expr)
		if err != nil {
			return err
		}
		return g.term(&ir.Ret{Val: g.coerce(v, g.ret)}, s.S)
	case *ast.PrintStmt:
		for _, a := range s.Args {
			if err := g.genPrintArg(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.ScanStmt:
		for _, a := range s.Args {
			if err := g.genScanArg(a); err != nil {
				return err
			}
		}
		return nil
	default:
		return g.fail(st.Span(), ErrUnsupported, fmt.Sprintf("statement %T", st))
	}
}

func (g *funcGen) genPrintArg(a ast.Expr) error {
	if sl, ok := a.(*ast.StringLit); ok {
		g.emit(&ir.Call{Ret: ir.Void, Name: ir.PrintStr, Args: []ir.Value{&ir.ConstStr{S: sl.Value}}})
		return nil
	}
	v, err := g.genExpr(a)
	if err != nil {
		return err
	}
	name := ir.PrintInt
	if ir.TypeOf(v).K == ir.TF32 {
		name = ir.PrintFloat
	}
	g.emit(&ir.Call{Ret: ir.Void, Name: name, Args: []ir.Value{v}})
	return nil
}

func (g *funcGen) genScanArg(a ast.Expr) error {
	switch e := a.(type) {
	case *ast.StringLit:
		// Format text; the runtime reads by the variable's type.
		return nil
	case *ast.VarExpr:
		vr, ok := g.vars[e.Name]
		if !ok {
			return g.fail(e.S, ErrUnknownVariable, e.Name)
		}
		name := ir.ReadInt
		if vr.ty.K == ir.TF32 {
			name = ir.ReadFloat
		}
		dst := g.newTemp(vr.ty)
		g.emit(&ir.Call{Dst: dst, Ret: vr.ty, Name: name})
		g.emit(&ir.Store{Slot: vr.slot, Val: dst})
		return nil
	default:
		return g.fail(a.Span(), ErrUnsupported, fmt.Sprintf("scanf argument %T", a))
	}
}
