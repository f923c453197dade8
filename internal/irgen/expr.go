package irgen

import (
	"fmt"
	"math"

	"minicc/internal/ast"
	"minicc/internal/ir"
)

// genExpr returns a value whose type is carried by the value itself
// (see ir.TypeOf): i32 or f32.
func (g *funcGen) genExpr(ex ast.Expr) (ir.Value, error) {
	v, err := g.lowerExpr(ex)
	if err != nil {
		return nil, err
	}
	if err := g.checkExpr(ex, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (g *funcGen) lowerExpr(ex ast.Expr) (ir.Value, error) {
	switch e := ex.(type) {
	case *ast.IntLit:
		return &ir.ConstInt{V: e.Value}, nil
	case *ast.FloatLit:
		return &ir.ConstFloat{V: e.Value}, nil
	case *ast.VarExpr:
		vr, ok := g.vars[e.Name]
		if !ok {
			return nil, g.fail(e.S, ErrUnknownVariable, e.Name)
		}
		tmp := g.newTemp(vr.ty)
		g.emit(&ir.Load{Dst: tmp, Ty: vr.ty, Slot: vr.slot})
		return tmp, nil
	case *ast.BinaryExpr:
		l, err := g.genExpr(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := g.genExpr(e.Right)
		if err != nil {
			return nil, err
		}
		ty := ir.I32
		if ir.TypeOf(l).K == ir.TF32 || ir.TypeOf(r).K == ir.TF32 {
			ty = ir.F32
			l = g.coerce(l, ty)
			r = g.coerce(r, ty)
		}
		op, err := binOp(e.Op)
		if err != nil {
			return nil, g.fail(e.S, err, "")
		}
		tmp := g.newTemp(ty)
		g.emit(&ir.BinOp{Dst: tmp, Op: op, Ty: ty, A: l, B: r})
		return tmp, nil
	case *ast.StringLit:
		return nil, g.fail(e.S, ErrUnsupported, "string literal outside printf/scanf")
	default:
		return nil, g.fail(ex.Span(), ErrUnsupported, fmt.Sprintf("expression %T", ex))
	}
}

func binOp(op ast.BinOp) (ir.BinOpKind, error) {
	switch op {
	case ast.Add:
		return ir.OpAdd, nil
	case ast.Sub:
		return ir.OpSub, nil
	case ast.Mul:
		return ir.OpMul, nil
	case ast.Div:
		return ir.OpDiv, nil
	default:
		return "", fmt.Errorf("%w: operator %v", ErrUnsupported, op)
	}
}

// coerce converts v to ty. i32 widens to f32; f32 narrows to i32 by
// truncation toward zero. Constants are converted in place when the result
// is exact.
func (g *funcGen) coerce(v ir.Value, ty ir.Type) ir.Value {
	from := ir.TypeOf(v)
	if from == ty {
		return v
	}
	switch {
	case from.K == ir.TI32 && ty.K == ir.TF32:
		if c, ok := v.(*ir.ConstInt); ok {
			return &ir.ConstFloat{V: float32(c.V)}
		}
		tmp := g.newTemp(ty)
		g.emit(&ir.Conv{Dst: tmp, Op: ir.ConvSIToFP, A: v})
		return tmp
	case from.K == ir.TF32 && ty.K == ir.TI32:
		if c, ok := v.(*ir.ConstFloat); ok && inInt32Range(c.V) {
			return &ir.ConstInt{V: int32(c.V)}
		}
		tmp := g.newTemp(ty)
		g.emit(&ir.Conv{Dst: tmp, Op: ir.ConvFPToSI, A: v})
		return tmp
	}
	return v
}

func inInt32Range(f float32) bool {
	t := math.Trunc(float64(f))
	return t >= math.MinInt32 && t <= math.MaxInt32
}
