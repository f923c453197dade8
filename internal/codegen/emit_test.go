package codegen

import (
	"errors"
	"strings"
	"testing"

	"minicc/internal/ir"
	"minicc/internal/irgen"
	"minicc/internal/parser"
	"minicc/internal/source"
	"minicc/internal/typecheck"
)

func buildModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	prog, err := parser.Parse(source.NewFile("test.c", src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	checked, diags := typecheck.Check(prog)
	if !diags.Empty() {
		t.Fatalf("type diags: %+v", diags.Items)
	}
	mod, err := irgen.Generate(checked, irgen.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return mod
}

func TestEmitFunctionBody(t *testing.T) {
	mod := buildModule(t, `float f() { int x = 2; float y = x * 3 + 0.5; return y; }`)
	csrc, err := EmitC(mod, EmitOptions{OmitRuntime: true})
	if err != nil {
		t.Fatal(err)
	}
	want := `static float mc_fn_f(void) {
  int32_t v0 = 0;
  float v1 = 0;
  int32_t t0;
  int32_t t1;
  float t2;
  float t3;
  float t4;

mc_blk_entry:;
  v0 = 2;
  t0 = v0;
  t1 = mc_mul(t0, 3);
  t2 = (float)t1;
  t3 = t2 + 0.5f;
  v1 = t3;
  t4 = v1;
  return t4;
}
`
	if !strings.Contains(csrc, want) {
		t.Fatalf("function body not found in:\n%s", csrc)
	}
	if !strings.Contains(csrc, "static float mc_fn_f(void);\n") {
		t.Fatalf("expected prototype, got:\n%s", csrc)
	}
}

func TestEmitRuntimeSelection(t *testing.T) {
	mod := buildModule(t, `int main() { printf("x"); return 0; }`)

	full, err := EmitC(mod, EmitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(full, "void print_str(const char *s) { fputs(s, stdout); }") {
		t.Fatalf("expected runtime definitions")
	}
	if strings.Contains(full, "int main(void)") {
		t.Fatalf("driver main emitted without EmitDriverMain")
	}

	protos, err := EmitC(mod, EmitOptions{OmitRuntime: true, EmitDriverMain: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(protos, "void print_str(const char *s);\n") || strings.Contains(protos, "fputs(s, stdout)") {
		t.Fatalf("expected runtime prototypes only")
	}
	if !strings.Contains(protos, "int main(void) {\n  return (int)mc_fn_main();\n}\n") {
		t.Fatalf("expected driver main, got:\n%s", protos)
	}
	if !strings.Contains(protos, `print_str("x");`) {
		t.Fatalf("expected print_str call, got:\n%s", protos)
	}
}

func TestEmitFloatDriverPrintsResult(t *testing.T) {
	mod := buildModule(t, `float main() { return 1.5; }`)
	csrc, err := EmitC(mod, EmitOptions{EmitDriverMain: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(csrc, "  print_float(mc_fn_main());\n") {
		t.Fatalf("expected float result to be printed, got:\n%s", csrc)
	}
}

func TestEmitDriverNeedsMain(t *testing.T) {
	mod := buildModule(t, `int helper() { return 1; }`)
	if _, err := EmitC(mod, EmitOptions{EmitDriverMain: true}); err == nil {
		t.Fatalf("expected error for missing main")
	}
	if _, err := EmitC(mod, EmitOptions{}); err != nil {
		t.Fatalf("library translation should not need main: %v", err)
	}
}

func TestEmitRejectsUnterminatedBlock(t *testing.T) {
	mod := &ir.Module{Funcs: []*ir.Func{{
		Name:   "main",
		Ret:    ir.I32,
		Blocks: []*ir.Block{{Name: "entry"}},
	}}}
	_, err := EmitC(mod, EmitOptions{})
	if !errors.Is(err, ir.ErrMissingTerminator) {
		t.Fatalf("expected missing terminator, got %v", err)
	}
}

func TestCValues(t *testing.T) {
	cases := []struct {
		v    ir.Value
		want string
	}{
		{&ir.ConstInt{V: 7}, "7"},
		{&ir.ConstInt{V: -2147483648}, "INT32_MIN"},
		{&ir.ConstFloat{V: 2.5}, "2.5f"},
		{&ir.ConstFloat{V: 3}, "3.0f"},
		{&ir.ConstStr{S: "a\"b\\c\n\t"}, `"a\"b\\c\n\t"`},
		{&ir.ConstStr{S: "??=" + "\x01" + "7"}, `"\?\?=\0017"`},
		{&ir.Temp{ID: 3, Ty: ir.I32}, "t3"},
		{&ir.Slot{ID: 1}, "v1"},
	}
	for _, tc := range cases {
		if got := cValue(tc.v); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestCArith(t *testing.T) {
	if got := cArith(ir.OpDiv, ir.I32, "a", "b"); got != "mc_div(a, b)" {
		t.Fatalf("expected mc_div(a, b), got %q", got)
	}
	if got := cArith(ir.OpSub, ir.F32, "a", "b"); got != "a - b" {
		t.Fatalf("expected a - b, got %q", got)
	}
}
