package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"minicc/internal/ir"
)

var (
	// ErrDivideByZero is raised by integer division at run time. The compiler
	// never checks for it.
	ErrDivideByZero = errors.New("integer division by zero")
	ErrNoEntry      = errors.New("entry function not found")
)

type Options struct {
	Entry  string // defaults to "main"
	Stdin  io.Reader
	Stdout io.Writer
}

// Runtime executes IR modules directly. It serves as the reference for what
// a backend must produce.
type Runtime struct {
	mod *ir.Module
	in  *bufio.Scanner
	out *bufio.Writer
}

type frame struct {
	temps map[int]Value
	slots map[int]Value
}

// Run executes the entry function and returns its result. Output is flushed
// even when execution fails.
func Run(m *ir.Module, opts Options) (ret Value, err error) {
	if opts.Entry == "" {
		opts.Entry = "main"
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	f := m.Func(opts.Entry)
	if f == nil {
		return Value{}, fmt.Errorf("%w: %s", ErrNoEntry, opts.Entry)
	}
	in := bufio.NewScanner(opts.Stdin)
	in.Split(scanCWord)
	rt := &Runtime{mod: m, in: in, out: bufio.NewWriter(opts.Stdout)}
	defer func() {
		if ferr := rt.out.Flush(); err == nil {
			err = ferr
		}
	}()
	return rt.call(f)
}

func (rt *Runtime) call(f *ir.Func) (Value, error) {
	fr := &frame{temps: map[int]Value{}, slots: map[int]Value{}}
	if len(f.Blocks) == 0 {
		return Value{}, fmt.Errorf("fn %s: %w", f.Name, ir.ErrEmptyFunc)
	}
	b := f.Blocks[0]
	for _, ins := range b.Instr {
		if err := rt.exec(fr, ins); err != nil {
			return Value{}, fmt.Errorf("fn %s: %w", f.Name, err)
		}
	}
	switch t := b.Term.(type) {
	case *ir.Ret:
		if t.Val == nil {
			return void(), nil
		}
		return fr.eval(t.Val)
	case nil:
		return Value{}, fmt.Errorf("fn %s block %s: %w", f.Name, b.Name, ir.ErrMissingTerminator)
	default:
		return Value{}, fmt.Errorf("fn %s: unsupported terminator %T", f.Name, t)
	}
}

func (fr *frame) eval(v ir.Value) (Value, error) {
	if c, ok := constValue(v); ok {
		return c, nil
	}
	switch v := v.(type) {
	case *ir.Temp:
		val, ok := fr.temps[v.ID]
		if !ok {
			return Value{}, fmt.Errorf("use of undefined temp %%t%d", v.ID)
		}
		return val, nil
	default:
		return Value{}, fmt.Errorf("unsupported value %T", v)
	}
}

func (rt *Runtime) exec(fr *frame, ins ir.Instr) error {
	switch i := ins.(type) {
	case *ir.SlotDecl:
		// Slots start zeroed, like the C backend's locals after declaration.
		if i.Ty.K == ir.TF32 {
			fr.slots[i.Slot.ID] = FloatValue(0)
		} else {
			fr.slots[i.Slot.ID] = IntValue(0)
		}
	case *ir.Store:
		v, err := fr.eval(i.Val)
		if err != nil {
			return err
		}
		if _, ok := fr.slots[i.Slot.ID]; !ok {
			return fmt.Errorf("store to undeclared slot $v%d", i.Slot.ID)
		}
		fr.slots[i.Slot.ID] = v
	case *ir.Load:
		v, ok := fr.slots[i.Slot.ID]
		if !ok {
			return fmt.Errorf("load from undeclared slot $v%d", i.Slot.ID)
		}
		fr.temps[i.Dst.ID] = v
	case *ir.BinOp:
		a, err := fr.eval(i.A)
		if err != nil {
			return err
		}
		b, err := fr.eval(i.B)
		if err != nil {
			return err
		}
		v, err := binOp(i.Op, i.Ty, a, b)
		if err != nil {
			return err
		}
		fr.temps[i.Dst.ID] = v
	case *ir.Conv:
		a, err := fr.eval(i.A)
		if err != nil {
			return err
		}
		switch i.Op {
		case ir.ConvSIToFP:
			fr.temps[i.Dst.ID] = FloatValue(float32(a.I))
		case ir.ConvFPToSI:
			fr.temps[i.Dst.ID] = IntValue(truncate(a.F))
		default:
			return fmt.Errorf("unsupported conversion %s", i.Op)
		}
	case *ir.Call:
		args := make([]Value, 0, len(i.Args))
		for _, a := range i.Args {
			v, err := fr.eval(a)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		v, err := rt.callRuntime(i.Name, args)
		if err != nil {
			return err
		}
		if i.Dst != nil {
			fr.temps[i.Dst.ID] = v
		}
	default:
		return fmt.Errorf("unsupported instruction %T", ins)
	}
	return nil
}

func binOp(op ir.BinOpKind, ty ir.Type, a, b Value) (Value, error) {
	if ty.K == ir.TF32 {
		switch op {
		case ir.OpAdd:
			return FloatValue(a.F + b.F), nil
		case ir.OpSub:
			return FloatValue(a.F - b.F), nil
		case ir.OpMul:
			return FloatValue(a.F * b.F), nil
		case ir.OpDiv:
			return FloatValue(a.F / b.F), nil
		}
		return Value{}, fmt.Errorf("unsupported f32 op %s", op)
	}
	// i32 arithmetic wraps.
	switch op {
	case ir.OpAdd:
		return IntValue(a.I + b.I), nil
	case ir.OpSub:
		return IntValue(a.I - b.I), nil
	case ir.OpMul:
		return IntValue(a.I * b.I), nil
	case ir.OpDiv:
		if b.I == 0 {
			return Value{}, ErrDivideByZero
		}
		return IntValue(a.I / b.I), nil
	}
	return Value{}, fmt.Errorf("unsupported i32 op %s", op)
}

// truncate rounds toward zero. NaN becomes 0 and out-of-range values
// saturate; C leaves both undefined.
func truncate(f float32) int32 {
	switch {
	case math.IsNaN(float64(f)):
		return 0
	case float64(f) >= math.MaxInt32:
		return math.MaxInt32
	case float64(f) <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}
