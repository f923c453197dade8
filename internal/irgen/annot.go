package irgen

import (
	"fmt"

	"minicc/internal/ast"
	"minicc/internal/ir"
	"minicc/internal/typecheck"
)

// annotations are the checker's results. Generated types must agree with
// them; a disagreement is a defect in one of the two passes.
type annotations struct {
	sigs  map[string]typecheck.FuncSig
	vars  map[*ast.FuncDecl]map[string]typecheck.Type
	exprs map[ast.Expr]typecheck.Type
}

func annotationsOf(p *typecheck.CheckedProgram) *annotations {
	return &annotations{sigs: p.FuncSigs, vars: p.VarTypes, exprs: p.ExprTypes}
}

func checkerKind(t ir.Type) typecheck.Kind {
	switch t.K {
	case ir.TI32:
		return typecheck.TyInt
	case ir.TF32:
		return typecheck.TyFloat
	case ir.TStr:
		return typecheck.TyString
	default:
		return typecheck.TyBad
	}
}

// agree reports a mismatch between a generated type and the checker's type
// for the same thing. Unannotated or non-numeric entries are skipped.
func (g *funcGen) agree(what string, ann typecheck.Type, annotated bool, got ir.Type) error {
	if !annotated || !ann.IsNumeric() || checkerKind(got) == ann.K {
		return nil
	}
	return fmt.Errorf("%w: %s is %s, checker says %s", ErrTypeMismatch, what, got, ann)
}

func (g *funcGen) checkSig() error {
	if g.ann == nil {
		return nil
	}
	sig, ok := g.ann.sigs[g.fn.Name]
	if err := g.agree("return type of "+g.fn.Name, sig.Ret, ok, g.ret); err != nil {
		return g.fail(g.fn.Span, err, "")
	}
	return nil
}

func (g *funcGen) checkExpr(ex ast.Expr, v ir.Value) error {
	if g.ann == nil {
		return nil
	}
	ann, ok := g.ann.exprs[ex]
	if err := g.agree(fmt.Sprintf("expression %T", ex), ann, ok, ir.TypeOf(v)); err != nil {
		return g.fail(ex.Span(), err, "")
	}
	return nil
}

func (g *funcGen) checkVars() error {
	if g.ann == nil {
		return nil
	}
	table := g.ann.vars[g.fn]
	for name, vr := range g.vars {
		ann, ok := table[name]
		if err := g.agree("variable "+name, ann, ok, vr.ty); err != nil {
			return g.fail(g.fn.Span, err, "")
		}
	}
	return nil
}
