package irgen

import (
	"fmt"

	"minicc/internal/ast"
	"minicc/internal/ir"
	"minicc/internal/source"
)

// funcGen lowers one function. Its variable table lives and dies with it.
type funcGen struct {
	fn     *ast.FuncDecl
	ret    ir.Type
	tmpID  int
	slotID int
	blocks []*ir.Block
	cur    *ir.Block
	vars   map[string]variable
	ann    *annotations // nil when generating without a checker
}

type variable struct {
	slot *ir.Slot
	ty   ir.Type
}

func newFuncGen(fn *ast.FuncDecl, ann *annotations) *funcGen {
	return &funcGen{fn: fn, vars: map[string]variable{}, ann: ann}
}

func irType(t ast.Type) (ir.Type, error) {
	switch t {
	case ast.TypeInt:
		return ir.I32, nil
	case ast.TypeFloat:
		return ir.F32, nil
	default:
		return ir.Type{}, fmt.Errorf("%w: type %v", ErrUnsupported, t)
	}
}

func (g *funcGen) gen() (*ir.Func, error) {
	ret, err := irType(g.fn.Ret)
	if err != nil {
		return nil, g.fail(g.fn.Span, err, "")
	}
	g.ret = ret
	if err := g.checkSig(); err != nil {
		return nil, err
	}
	g.cur = g.newBlock("entry")
	for _, st := range g.fn.Body {
		if err := g.genStmt(st); err != nil {
			return nil, err
		}
		// The rest of the body is unreachable.
		if g.cur.Term != nil {
			break
		}
	}
	if g.cur.Term == nil {
		if err := g.term(&ir.Ret{Val: zeroValue(ret)}, g.fn.Span); err != nil {
			return nil, err
		}
	}
	for _, b := range g.blocks {
		if b.Term == nil {
			return nil, g.fail(g.fn.Span, ErrMissingTerminator, "block "+b.Name)
		}
	}
	if err := g.checkVars(); err != nil {
		return nil, err
	}
	return &ir.Func{Name: g.fn.Name, Ret: ret, Blocks: g.blocks}, nil
}

func zeroValue(t ir.Type) ir.Value {
	if t.K == ir.TF32 {
		return &ir.ConstFloat{V: 0}
	}
	return &ir.ConstInt{V: 0}
}

func (g *funcGen) newTemp(ty ir.Type) *ir.Temp {
	t := &ir.Temp{ID: g.tmpID, Ty: ty}
	g.tmpID++
	return t
}

func (g *funcGen) newSlot() *ir.Slot {
	s := &ir.Slot{ID: g.slotID}
	g.slotID++
	return s
}

func (g *funcGen) newBlock(name string) *ir.Block {
	b := &ir.Block{Name: name}
	g.blocks = append(g.blocks, b)
	return b
}

func (g *funcGen) emit(i ir.Instr) { g.cur.Instr = append(g.cur.Instr, i) }

func (g *funcGen) term(t ir.Term, at source.Span) error {
	if g.cur.Term != nil {
		return g.fail(at, ErrDuplicateTerminator, "block "+g.cur.Name)
	}
	g.cur.Term = t
	return nil
}

func (g *funcGen) fail(at source.Span, sentinel error, detail string) error {
	return internalErr(g.fn, at, sentinel, detail)
}
