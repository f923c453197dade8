package codegen

import (
	"fmt"
	"strings"

	"minicc/internal/ir"
)

func cValue(v ir.Value) string {
	switch x := v.(type) {
	case *ir.Temp:
		return cTempName(x.ID)
	case *ir.Slot:
		return cSlotName(x.ID)
	case *ir.ConstInt:
		if x.V == -2147483648 {
			// The literal 2147483648 does not fit int32_t.
			return "INT32_MIN"
		}
		return fmt.Sprintf("%d", x.V)
	case *ir.ConstFloat:
		return cFloatLit(x.V)
	case *ir.ConstStr:
		return cStringLit(x.S)
	default:
		return "0"
	}
}

func cFloatLit(f float32) string {
	return ir.FormatFloat(f) + "f"
}

func cStringLit(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '?':
			// avoid trigraphs
			b.WriteString("\\?")
		default:
			if ch < 0x20 || ch == 0x7f {
				// Octal stops after three digits; hex would swallow a following digit.
				fmt.Fprintf(&b, "\\%03o", ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// cArith maps an IR operator to the prelude helper (i32) or C operator (f32).
func cArith(op ir.BinOpKind, ty ir.Type, a, b string) string {
	if ty.K == ir.TI32 {
		return fmt.Sprintf("mc_%s(%s, %s)", string(op), a, b)
	}
	sym := "?"
	switch op {
	case ir.OpAdd:
		sym = "+"
	case ir.OpSub:
		sym = "-"
	case ir.OpMul:
		sym = "*"
	case ir.OpDiv:
		sym = "/"
	}
	return fmt.Sprintf("%s %s %s", a, sym, b)
}
