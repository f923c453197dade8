package codegen

import (
	"fmt"

	"minicc/internal/ir"
)

func cType(t ir.Type) string {
	switch t.K {
	case ir.TVoid:
		return "void"
	case ir.TI32:
		return "int32_t"
	case ir.TF32:
		return "float"
	case ir.TStr:
		return "const char*"
	default:
		return "void"
	}
}

// User functions get a prefix so `main` and runtime names never collide
// with the C driver or libc.
func cFnName(name string) string { return "mc_fn_" + name }

func cLabelName(name string) string { return "mc_blk_" + name }

func cSlotName(id int) string { return fmt.Sprintf("v%d", id) }

func cTempName(id int) string { return fmt.Sprintf("t%d", id) }
