//go:build llvm

package llvmgen

import (
	"fmt"
	"math"

	"tinygo.org/x/go-llvm"

	"minicc/internal/ir"
)

type Options struct {
	// EmitDriverMain adds an `i32 main()` that returns the program's main
	// result, as the C backend does.
	EmitDriverMain bool
}

// Module owns an LLVM module and its context.
type Module struct {
	ctx llvm.Context
	mod llvm.Module
}

func (m *Module) String() string { return m.mod.String() }

func (m *Module) Dispose() {
	m.mod.Dispose()
	m.ctx.Dispose()
}

type lowerer struct {
	ctx     llvm.Context
	mod     llvm.Module
	b       llvm.Builder
	fnTypes map[string]llvm.Type
	fns     map[string]llvm.Value
	strs    int
}

// Lower translates m into a verified LLVM module. Runtime entry points are
// declared as external C functions; user functions get internal linkage.
func Lower(m *ir.Module, opts Options) (*Module, error) {
	if err := m.Verify(); err != nil {
		return nil, err
	}
	ctx := llvm.NewContext()
	l := &lowerer{
		ctx:     ctx,
		mod:     ctx.NewModule("minicc"),
		b:       ctx.NewBuilder(),
		fnTypes: map[string]llvm.Type{},
		fns:     map[string]llvm.Value{},
	}
	defer l.b.Dispose()
	out := &Module{ctx: ctx, mod: l.mod}

	for _, e := range m.Externs {
		params := make([]llvm.Type, len(e.Params))
		for i, p := range e.Params {
			params[i] = l.llType(p)
		}
		l.declare(e.Name, llvm.FunctionType(l.llType(e.Ret), params, false))
	}
	for _, f := range m.Funcs {
		fn := l.declare(fnName(f.Name), llvm.FunctionType(l.llType(f.Ret), nil, false))
		fn.SetLinkage(llvm.InternalLinkage)
	}
	for _, f := range m.Funcs {
		if err := l.lowerFunc(f); err != nil {
			out.Dispose()
			return nil, fmt.Errorf("fn %s: %w", f.Name, err)
		}
	}
	if opts.EmitDriverMain {
		if err := l.driverMain(m); err != nil {
			out.Dispose()
			return nil, err
		}
	}
	if err := llvm.VerifyModule(l.mod, llvm.ReturnStatusAction); err != nil {
		out.Dispose()
		return nil, fmt.Errorf("llvm verify: %w", err)
	}
	return out, nil
}

func fnName(name string) string { return "mc_fn_" + name }

func (l *lowerer) declare(name string, ty llvm.Type) llvm.Value {
	fn := llvm.AddFunction(l.mod, name, ty)
	l.fnTypes[name] = ty
	l.fns[name] = fn
	return fn
}

func (l *lowerer) llType(t ir.Type) llvm.Type {
	switch t.K {
	case ir.TI32:
		return l.ctx.Int32Type()
	case ir.TF32:
		return l.ctx.FloatType()
	case ir.TStr:
		return llvm.PointerType(l.ctx.Int8Type(), 0)
	default:
		return l.ctx.VoidType()
	}
}

type funcState struct {
	temps map[int]llvm.Value
	slots map[int]llvm.Value
}

func (l *lowerer) lowerFunc(f *ir.Func) error {
	fn := l.fns[fnName(f.Name)]
	bbs := make([]llvm.BasicBlock, len(f.Blocks))
	for i, b := range f.Blocks {
		bbs[i] = l.ctx.AddBasicBlock(fn, b.Name)
	}
	st := &funcState{temps: map[int]llvm.Value{}, slots: map[int]llvm.Value{}}

	// Slots live in the entry block and start at zero.
	l.b.SetInsertPointAtEnd(bbs[0])
	for _, b := range f.Blocks {
		for _, ins := range b.Instr {
			d, ok := ins.(*ir.SlotDecl)
			if !ok {
				continue
			}
			ty := l.llType(d.Ty)
			a := l.b.CreateAlloca(ty, fmt.Sprintf("v%d", d.Slot.ID))
			l.b.CreateStore(llvm.ConstNull(ty), a)
			st.slots[d.Slot.ID] = a
		}
	}

	for i, b := range f.Blocks {
		l.b.SetInsertPointAtEnd(bbs[i])
		for _, ins := range b.Instr {
			if err := l.lowerInstr(st, ins); err != nil {
				return err
			}
		}
		ret, ok := b.Term.(*ir.Ret)
		if !ok {
			return fmt.Errorf("block %s: unsupported terminator %T", b.Name, b.Term)
		}
		if ret.Val == nil {
			l.b.CreateRetVoid()
		} else {
			l.b.CreateRet(l.value(st, ret.Val))
		}
	}
	return nil
}

func (l *lowerer) lowerInstr(st *funcState, ins ir.Instr) error {
	switch i := ins.(type) {
	case *ir.SlotDecl:
	case *ir.Store:
		l.b.CreateStore(l.value(st, i.Val), st.slots[i.Slot.ID])
	case *ir.Load:
		st.temps[i.Dst.ID] = l.b.CreateLoad(l.llType(i.Ty), st.slots[i.Slot.ID], tempName(i.Dst))
	case *ir.BinOp:
		v, err := l.binOp(i, l.value(st, i.A), l.value(st, i.B))
		if err != nil {
			return err
		}
		st.temps[i.Dst.ID] = v
	case *ir.Conv:
		a := l.value(st, i.A)
		switch i.Op {
		case ir.ConvSIToFP:
			st.temps[i.Dst.ID] = l.b.CreateSIToFP(a, l.ctx.FloatType(), tempName(i.Dst))
		case ir.ConvFPToSI:
			// Plain fptosi is poison out of range; the intrinsic saturates and maps NaN to 0.
			sat := l.function("llvm.fptosi.sat.i32.f32", l.ctx.Int32Type(), l.ctx.FloatType())
			st.temps[i.Dst.ID] = l.b.CreateCall(l.fnTypes["llvm.fptosi.sat.i32.f32"], sat, []llvm.Value{a}, tempName(i.Dst))
		default:
			return fmt.Errorf("unsupported conversion %s", i.Op)
		}
	case *ir.Call:
		args := make([]llvm.Value, len(i.Args))
		for j, a := range i.Args {
			args[j] = l.value(st, a)
		}
		name := ""
		if i.Dst != nil {
			name = tempName(i.Dst)
		}
		v := l.b.CreateCall(l.fnTypes[i.Name], l.fns[i.Name], args, name)
		if i.Dst != nil {
			st.temps[i.Dst.ID] = v
		}
	default:
		return fmt.Errorf("unsupported instruction %T", ins)
	}
	return nil
}

func tempName(t *ir.Temp) string { return fmt.Sprintf("t%d", t.ID) }

func (l *lowerer) binOp(i *ir.BinOp, a, b llvm.Value) (llvm.Value, error) {
	name := tempName(i.Dst)
	if i.Ty.K == ir.TF32 {
		switch i.Op {
		case ir.OpAdd:
			return l.b.CreateFAdd(a, b, name), nil
		case ir.OpSub:
			return l.b.CreateFSub(a, b, name), nil
		case ir.OpMul:
			return l.b.CreateFMul(a, b, name), nil
		case ir.OpDiv:
			return l.b.CreateFDiv(a, b, name), nil
		}
		return llvm.Value{}, fmt.Errorf("unsupported operator %s", i.Op)
	}
	switch i.Op {
	case ir.OpAdd:
		return l.b.CreateAdd(a, b, name), nil
	case ir.OpSub:
		return l.b.CreateSub(a, b, name), nil
	case ir.OpMul:
		return l.b.CreateMul(a, b, name), nil
	case ir.OpDiv:
		div := l.divHelper()
		return l.b.CreateCall(l.fnTypes["mc_div"], div, []llvm.Value{a, b}, name), nil
	}
	return llvm.Value{}, fmt.Errorf("unsupported operator %s", i.Op)
}

func (l *lowerer) function(name string, ret llvm.Type, params ...llvm.Type) llvm.Value {
	if fn, ok := l.fns[name]; ok {
		return fn
	}
	return l.declare(name, llvm.FunctionType(ret, params, false))
}

// divHelper defines mc_div: signed division that traps on a zero divisor
// and returns the dividend for INT32_MIN / -1.
func (l *lowerer) divHelper() llvm.Value {
	if fn, ok := l.fns["mc_div"]; ok {
		return fn
	}
	i32 := l.ctx.Int32Type()
	fn := l.declare("mc_div", llvm.FunctionType(i32, []llvm.Type{i32, i32}, false))
	fn.SetLinkage(llvm.InternalLinkage)
	trap := l.function("llvm.trap", l.ctx.VoidType())

	saved := l.b.GetInsertBlock()
	defer l.b.SetInsertPointAtEnd(saved)

	entry := l.ctx.AddBasicBlock(fn, "entry")
	zero := l.ctx.AddBasicBlock(fn, "zero")
	check := l.ctx.AddBasicBlock(fn, "check")
	overflow := l.ctx.AddBasicBlock(fn, "overflow")
	divide := l.ctx.AddBasicBlock(fn, "divide")
	a, b := fn.Param(0), fn.Param(1)

	l.b.SetInsertPointAtEnd(entry)
	isZero := l.b.CreateICmp(llvm.IntEQ, b, llvm.ConstInt(i32, 0, false), "")
	l.b.CreateCondBr(isZero, zero, check)

	l.b.SetInsertPointAtEnd(zero)
	l.b.CreateCall(l.fnTypes["llvm.trap"], trap, nil, "")
	l.b.CreateUnreachable()

	l.b.SetInsertPointAtEnd(check)
	isMin := l.b.CreateICmp(llvm.IntEQ, a, llvm.ConstInt(i32, uint64(int64(math.MinInt32)), true), "")
	isNeg1 := l.b.CreateICmp(llvm.IntEQ, b, llvm.ConstInt(i32, uint64(int64(-1)), true), "")
	l.b.CreateCondBr(l.b.CreateAnd(isMin, isNeg1, ""), overflow, divide)

	l.b.SetInsertPointAtEnd(overflow)
	l.b.CreateRet(a)

	l.b.SetInsertPointAtEnd(divide)
	l.b.CreateRet(l.b.CreateSDiv(a, b, ""))
	return fn
}

func (l *lowerer) value(st *funcState, v ir.Value) llvm.Value {
	switch x := v.(type) {
	case *ir.Temp:
		return st.temps[x.ID]
	case *ir.ConstInt:
		return llvm.ConstInt(l.ctx.Int32Type(), uint64(int64(x.V)), true)
	case *ir.ConstFloat:
		return llvm.ConstFloat(l.ctx.FloatType(), float64(x.V))
	case *ir.ConstStr:
		l.strs++
		return l.b.CreateGlobalStringPtr(x.S, fmt.Sprintf("str.%d", l.strs))
	default:
		return llvm.Value{}
	}
}

func (l *lowerer) driverMain(m *ir.Module) error {
	f := m.Func("main")
	if f == nil {
		return fmt.Errorf("missing main")
	}
	i32 := l.ctx.Int32Type()
	fn := l.declare("main", llvm.FunctionType(i32, nil, false))
	l.b.SetInsertPointAtEnd(l.ctx.AddBasicBlock(fn, "entry"))
	name := fnName("main")
	res := l.b.CreateCall(l.fnTypes[name], l.fns[name], nil, "res")
	if f.Ret.K != ir.TF32 {
		l.b.CreateRet(res)
		return nil
	}
	pf := l.function(ir.PrintFloat, l.ctx.VoidType(), l.ctx.FloatType())
	l.b.CreateCall(l.fnTypes[ir.PrintFloat], pf, []llvm.Value{res}, "")
	ps := l.function(ir.PrintStr, l.ctx.VoidType(), llvm.PointerType(l.ctx.Int8Type(), 0))
	l.strs++
	nl := l.b.CreateGlobalStringPtr("\n", fmt.Sprintf("str.%d", l.strs))
	l.b.CreateCall(l.fnTypes[ir.PrintStr], ps, []llvm.Value{nl}, "")
	l.b.CreateRet(llvm.ConstInt(i32, 0, false))
	return nil
}
