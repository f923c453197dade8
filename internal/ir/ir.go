package ir

import (
	"fmt"
	"strconv"
	"strings"

	"minicc/internal/stringlit"
)

type TypeKind int

const (
	TBad TypeKind = iota
	TVoid
	TI32
	TF32
	TStr // pointer to a constant, NUL-terminated string
)

type Type struct {
	K TypeKind
}

func (t Type) String() string {
	switch t.K {
	case TVoid:
		return "void"
	case TI32:
		return "i32"
	case TF32:
		return "f32"
	case TStr:
		return "str"
	default:
		return "<bad>"
	}
}

var (
	Void = Type{K: TVoid}
	I32  = Type{K: TI32}
	F32  = Type{K: TF32}
	Str  = Type{K: TStr}
)

// Module is one translation unit. Funcs keep source order.
type Module struct {
	Externs []*Extern
	Funcs   []*Func
}

// Extern is a function provided by the runtime library.
type Extern struct {
	Name   string
	Params []Type
	Ret    Type
}

type Func struct {
	Name   string
	Ret    Type
	Blocks []*Block
}

type Block struct {
	Name  string
	Instr []Instr
	Term  Term
}

type Instr interface {
	instrNode()
	fmtString() string
}

type Term interface {
	termNode()
	fmtString() string
}

// Values
type Value interface {
	valueNode()
	fmtString() string
}

type Temp struct {
	ID int
	Ty Type
}

func (*Temp) valueNode() {}
func (t *Temp) fmtString() string {
	return fmt.Sprintf("%%t%d", t.ID)
}

type Slot struct {
	ID int
}

func (*Slot) valueNode() {}
func (s *Slot) fmtString() string {
	return fmt.Sprintf("$v%d", s.ID)
}

type ConstInt struct {
	V int32
}

func (*ConstInt) valueNode() {}
func (c *ConstInt) fmtString() string {
	return strconv.FormatInt(int64(c.V), 10)
}

type ConstFloat struct {
	V float32
}

func (*ConstFloat) valueNode() {}
func (c *ConstFloat) fmtString() string {
	return FormatFloat(c.V)
}

type ConstStr struct {
	S string
}

func (*ConstStr) valueNode() {}
func (c *ConstStr) fmtString() string {
	return stringlit.Quote(c.S)
}

// FormatFloat renders v with the fewest digits that round-trip through
// float32, always distinguishable from an integer.
func FormatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// TypeOf returns the type a value carries; slots are not first-class values.
func TypeOf(v Value) Type {
	switch v := v.(type) {
	case *Temp:
		return v.Ty
	case *ConstInt:
		return I32
	case *ConstFloat:
		return F32
	case *ConstStr:
		return Str
	default:
		return Type{K: TBad}
	}
}

// Instructions
type BinOpKind string

const (
	OpAdd BinOpKind = "add"
	OpSub BinOpKind = "sub"
	OpMul BinOpKind = "mul"
	OpDiv BinOpKind = "div" // signed for i32; division by zero is the target's concern
)

type BinOp struct {
	Dst *Temp
	Op  BinOpKind
	Ty  Type
	A   Value
	B   Value
}

func (*BinOp) instrNode() {}
func (i *BinOp) fmtString() string {
	return fmt.Sprintf("%s = %s %s %s %s", i.Dst.fmtString(), string(i.Op), i.Ty.String(), i.A.fmtString(), i.B.fmtString())
}

type ConvKind string

const (
	ConvSIToFP ConvKind = "sitofp"
	ConvFPToSI ConvKind = "fptosi" // truncates toward zero
)

type Conv struct {
	Dst *Temp
	Op  ConvKind
	A   Value
}

func (*Conv) instrNode() {}
func (i *Conv) fmtString() string {
	return fmt.Sprintf("%s = %s %s %s to %s", i.Dst.fmtString(), string(i.Op), TypeOf(i.A), i.A.fmtString(), i.Dst.Ty)
}

type SlotDecl struct {
	Slot *Slot
	Ty   Type
	Name string // source variable, for readers of the IR
}

func (*SlotDecl) instrNode() {}
func (i *SlotDecl) fmtString() string {
	s := fmt.Sprintf("%s = slot %s", i.Slot.fmtString(), i.Ty.String())
	if i.Name != "" {
		s += " ; " + i.Name
	}
	return s
}

type Store struct {
	Slot *Slot
	Val  Value
}

func (*Store) instrNode() {}
func (i *Store) fmtString() string {
	return fmt.Sprintf("store %s %s", i.Slot.fmtString(), i.Val.fmtString())
}

type Load struct {
	Dst  *Temp
	Ty   Type
	Slot *Slot
}

func (*Load) instrNode() {}
func (i *Load) fmtString() string {
	return fmt.Sprintf("%s = load %s %s", i.Dst.fmtString(), i.Ty.String(), i.Slot.fmtString())
}

type Call struct {
	Dst  *Temp // nil when Ret is void
	Ret  Type
	Name string
	Args []Value
}

func (*Call) instrNode() {}
func (i *Call) fmtString() string {
	var sb strings.Builder
	if i.Ret.K != TVoid {
		sb.WriteString(i.Dst.fmtString())
		sb.WriteString(" = ")
	}
	sb.WriteString("call ")
	sb.WriteString(i.Ret.String())
	sb.WriteByte(' ')
	sb.WriteString(i.Name)
	sb.WriteByte('(')
	for j, a := range i.Args {
		if j > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.fmtString())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Terminators
type Ret struct {
	Val Value // nil only in void functions
}

func (*Ret) termNode() {}
func (t *Ret) fmtString() string {
	if t.Val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", t.Val.fmtString())
}

func (m *Module) Format() string {
	var sb strings.Builder
	sb.WriteString("ir v0\n")
	if m == nil {
		return sb.String()
	}
	for _, e := range m.Externs {
		sb.WriteString("extern ")
		sb.WriteString(e.Name)
		sb.WriteByte('(')
		for i, p := range e.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString(") -> ")
		sb.WriteString(e.Ret.String())
		sb.WriteByte('\n')
	}
	for _, f := range m.Funcs {
		sb.WriteString("fn ")
		sb.WriteString(f.Name)
		sb.WriteString("() -> ")
		sb.WriteString(f.Ret.String())
		sb.WriteByte('\n')
		for _, b := range f.Blocks {
			sb.WriteString("block ")
			sb.WriteString(b.Name)
			sb.WriteString(":\n")
			for _, ins := range b.Instr {
				sb.WriteString("  ")
				sb.WriteString(ins.fmtString())
				sb.WriteByte('\n')
			}
			if b.Term != nil {
				sb.WriteString("  ")
				sb.WriteString(b.Term.fmtString())
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Module) Extern(name string) *Extern {
	for _, e := range m.Externs {
		if e.Name == name {
			return e
		}
	}
	return nil
}
