package codegen

import (
	"bytes"
	"fmt"
	"sort"

	"minicc/internal/ir"
	"minicc/internal/stdlib"
)

type EmitOptions struct {
	// EmitDriverMain adds a C `main` that calls the program's main and
	// returns its result as the exit status (a float result is printed).
	EmitDriverMain bool
	// OmitRuntime emits prototypes for the runtime entry points instead of
	// their definitions.
	OmitRuntime bool
}

// EmitC renders m as a single C11 translation unit.
func EmitC(m *ir.Module, opts EmitOptions) (string, error) {
	if err := m.Verify(); err != nil {
		return "", err
	}
	var out bytes.Buffer
	out.WriteString("/* generated by minicc */\n")
	out.WriteString(stdlib.Prelude)
	out.WriteByte('\n')
	if opts.OmitRuntime {
		out.WriteString(stdlib.Prototypes)
	} else {
		out.WriteString(stdlib.RuntimeC)
	}
	out.WriteByte('\n')

	for _, f := range m.Funcs {
		fmt.Fprintf(&out, "static %s %s(void);\n", cType(f.Ret), cFnName(f.Name))
	}
	if len(m.Funcs) > 0 {
		out.WriteByte('\n')
	}
	for _, f := range m.Funcs {
		if err := emitFunc(&out, f); err != nil {
			return "", fmt.Errorf("fn %s: %w", f.Name, err)
		}
		out.WriteByte('\n')
	}

	if opts.EmitDriverMain {
		mainFn := m.Func("main")
		if mainFn == nil {
			return "", fmt.Errorf("missing main")
		}
		out.WriteString("int main(void) {\n")
		switch mainFn.Ret.K {
		case ir.TF32:
			out.WriteString("  print_float(mc_fn_main());\n")
			out.WriteString("  fputc('\\n', stdout);\n")
			out.WriteString("  return 0;\n")
		default:
			out.WriteString("  return (int)mc_fn_main();\n")
		}
		out.WriteString("}\n")
	}
	return out.String(), nil
}

func emitFunc(out *bytes.Buffer, f *ir.Func) error {
	slotTypes := map[int]ir.Type{}
	tempTypes := map[int]ir.Type{}
	for _, b := range f.Blocks {
		for _, ins := range b.Instr {
			switch i := ins.(type) {
			case *ir.SlotDecl:
				slotTypes[i.Slot.ID] = i.Ty
			case *ir.Load:
				tempTypes[i.Dst.ID] = i.Dst.Ty
			case *ir.BinOp:
				tempTypes[i.Dst.ID] = i.Dst.Ty
			case *ir.Conv:
				tempTypes[i.Dst.ID] = i.Dst.Ty
			case *ir.Call:
				if i.Dst != nil {
					tempTypes[i.Dst.ID] = i.Dst.Ty
				}
			}
		}
	}

	fmt.Fprintf(out, "static %s %s(void) {\n", cType(f.Ret), cFnName(f.Name))

	slotIDs := sortedKeys(slotTypes)
	for _, id := range slotIDs {
		// Zeroed so reads before a store match the interpreter.
		fmt.Fprintf(out, "  %s %s = 0;\n", cType(slotTypes[id]), cSlotName(id))
	}
	tempIDs := sortedKeys(tempTypes)
	for _, id := range tempIDs {
		fmt.Fprintf(out, "  %s %s;\n", cType(tempTypes[id]), cTempName(id))
	}
	if len(slotIDs) > 0 || len(tempIDs) > 0 {
		out.WriteString("\n")
	}

	for _, b := range f.Blocks {
		out.WriteString(cLabelName(b.Name))
		out.WriteString(":;\n")
		for _, ins := range b.Instr {
			if err := emitInstr(out, ins); err != nil {
				return err
			}
		}
		if b.Term == nil {
			return fmt.Errorf("block %s: %w", b.Name, ir.ErrMissingTerminator)
		}
		if err := emitTerm(out, b.Term); err != nil {
			return err
		}
	}
	out.WriteString("}\n")
	return nil
}

func sortedKeys(m map[int]ir.Type) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func emitInstr(out *bytes.Buffer, ins ir.Instr) error {
	switch i := ins.(type) {
	case *ir.SlotDecl:
		// already declared as a C local
	case *ir.Store:
		fmt.Fprintf(out, "  %s = %s;\n", cSlotName(i.Slot.ID), cValue(i.Val))
	case *ir.Load:
		fmt.Fprintf(out, "  %s = %s;\n", cTempName(i.Dst.ID), cSlotName(i.Slot.ID))
	case *ir.BinOp:
		fmt.Fprintf(out, "  %s = %s;\n", cTempName(i.Dst.ID), cArith(i.Op, i.Ty, cValue(i.A), cValue(i.B)))
	case *ir.Conv:
		switch i.Op {
		case ir.ConvSIToFP:
			fmt.Fprintf(out, "  %s = (float)%s;\n", cTempName(i.Dst.ID), cValue(i.A))
		case ir.ConvFPToSI:
			fmt.Fprintf(out, "  %s = mc_fptosi(%s);\n", cTempName(i.Dst.ID), cValue(i.A))
		default:
			return fmt.Errorf("unsupported conversion %s", i.Op)
		}
	case *ir.Call:
		out.WriteString("  ")
		if i.Dst != nil {
			out.WriteString(cTempName(i.Dst.ID))
			out.WriteString(" = ")
		}
		out.WriteString(i.Name)
		out.WriteByte('(')
		for j, a := range i.Args {
			if j > 0 {
				out.WriteString(", ")
			}
			out.WriteString(cValue(a))
		}
		out.WriteString(");\n")
	default:
		return fmt.Errorf("unsupported instruction %T", ins)
	}
	return nil
}

func emitTerm(out *bytes.Buffer, t ir.Term) error {
	switch t := t.(type) {
	case *ir.Ret:
		if t.Val == nil {
			out.WriteString("  return;\n")
			return nil
		}
		fmt.Fprintf(out, "  return %s;\n", cValue(t.Val))
		return nil
	default:
		return fmt.Errorf("unsupported terminator %T", t)
	}
}
