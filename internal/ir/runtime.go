package ir

// Runtime entry points, in the order a module declares them.
const (
	PrintInt   = "print_int"
	PrintFloat = "print_float"
	PrintStr   = "print_str"
	ReadInt    = "read_int"
	ReadFloat  = "read_float"
)

var runtimeExterns = []Extern{
	{Name: PrintInt, Params: []Type{I32}, Ret: Void},
	{Name: PrintFloat, Params: []Type{F32}, Ret: Void},
	{Name: PrintStr, Params: []Type{Str}, Ret: Void},
	{Name: ReadInt, Ret: I32},
	{Name: ReadFloat, Ret: F32},
}

// RuntimeExterns returns fresh copies of all runtime declarations in
// canonical order.
func RuntimeExterns() []*Extern {
	out := make([]*Extern, 0, len(runtimeExterns))
	for _, e := range runtimeExterns {
		e := e
		e.Params = append([]Type(nil), e.Params...)
		out = append(out, &e)
	}
	return out
}

// RuntimeExtern looks up one runtime declaration by name.
func RuntimeExtern(name string) (*Extern, bool) {
	for _, e := range RuntimeExterns() {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// DeclareUsed sets m.Externs to the runtime entries called anywhere in m,
// in canonical order.
func (m *Module) DeclareUsed() {
	used := map[string]bool{}
	for _, f := range m.Funcs {
		for _, b := range f.Blocks {
			for _, ins := range b.Instr {
				if c, ok := ins.(*Call); ok {
					used[c.Name] = true
				}
			}
		}
	}
	m.Externs = m.Externs[:0]
	for _, e := range RuntimeExterns() {
		if used[e.Name] {
			m.Externs = append(m.Externs, e)
		}
	}
}
