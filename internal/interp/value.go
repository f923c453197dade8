package interp

import (
	"fmt"
	"math"
	"strconv"

	"minicc/internal/ir"
)

type ValueKind int

const (
	VVoid ValueKind = iota
	VInt
	VFloat
	VStr
)

type Value struct {
	K ValueKind
	I int32
	F float32
	S string
}

func void() Value { return Value{K: VVoid} }

func IntValue(i int32) Value     { return Value{K: VInt, I: i} }
func FloatValue(f float32) Value { return Value{K: VFloat, F: f} }

// String renders the value the way the runtime library prints it.
func (v Value) String() string {
	switch v.K {
	case VInt:
		return strconv.FormatInt(int64(v.I), 10)
	case VFloat:
		f := float64(v.F)
		switch {
		case math.IsNaN(f):
			return "nan"
		case math.IsInf(f, 1):
			return "inf"
		case math.IsInf(f, -1):
			return "-inf"
		}
		return fmt.Sprintf("%.6g", f)
	case VStr:
		return v.S
	default:
		return ""
	}
}

func constValue(v ir.Value) (Value, bool) {
	switch c := v.(type) {
	case *ir.ConstInt:
		return IntValue(c.V), true
	case *ir.ConstFloat:
		return FloatValue(c.V), true
	case *ir.ConstStr:
		return Value{K: VStr, S: c.S}, true
	}
	return Value{}, false
}
