package interp

import (
	"errors"
	"strings"
	"testing"

	"minicc/internal/ast"
	"minicc/internal/ir"
	"minicc/internal/irgen"
	"minicc/internal/parser"
	"minicc/internal/source"
	"minicc/internal/typecheck"
)

func build(t *testing.T, src string) *ir.Module {
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

func runMain(t *testing.T, src, stdin string) (Value, string) {
	t.Helper()
	var out strings.Builder
	v, err := Run(build(t, src), Options{Stdin: strings.NewReader(stdin), Stdout: &out})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return v, out.String()
}

func TestPrecedence(t *testing.T) {
	v, _ := runMain(t, `int main() { return 2 + 3 * 4; }`, "")
	if v.K != VInt || v.I != 14 {
		t.Fatalf("expected 14, got %v", v)
	}
}

func TestPromotionAddsAsFloat(t *testing.T) {
	prog := &ast.Program{Funcs: []*ast.FuncDecl{{
		Name: "main",
		Ret:  ast.TypeFloat,
		Body: []ast.Stmt{&ast.ReturnStmt{Expr: &ast.BinaryExpr{
			Op:    ast.Add,
			Left:  &ast.IntLit{Value: 1},
			Right: &ast.FloatLit{Value: 2.5},
		}}},
	}}}
	mod, err := irgen.GenerateProgram(prog, irgen.Options{})
	if err != nil {
		t.Fatal(err)
	}
	v, err := Run(mod, Options{Stdin: strings.NewReader(""), Stdout: &strings.Builder{}})
	if err != nil {
		t.Fatal(err)
	}
	if v.K != VFloat || v.F != 3.5 {
		t.Fatalf("expected float 3.5, got %+v", v)
	}
}

func TestSemantics(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"left_assoc_sub", `int main() { return 10 - 4 - 3; }`, "3"},
		{"left_assoc_div", `int main() { return 100 / 10 / 5; }`, "2"},
		{"parens", `int main() { return (2 + 3) * 4; }`, "20"},
		{"signed_div", `int main() { return 0 - 7 / 2; }`, "-3"},
		{"negative_div_truncates", `int main() { int a = 0 - 7; return a / 2; }`, "-3"},
		{"float_div", `float main() { return 7 / 2.0; }`, "3.5"},
		{"int_div_before_widening", `float main() { float x = 7 / 2; return x; }`, "3"},
		{"narrow_declare", `int main() { int x = 2.9; return x; }`, "2"},
		{"narrow_negative", `int main() { float f = 0 - 2.9; int x = f; return x; }`, "-2"},
		{"narrow_assign", `int main() { int x = 0; float f = 9.99; x = f * 1; return x; }`, "9"},
		{"widen_return", `float main() { int x = 3; return x; }`, "3"},
		{"implicit_int_return", `int main() { int x = 5; }`, "0"},
		{"implicit_float_return", `float main() { float x = 5.5; }`, "0"},
		{"unreachable_after_return", `int main() { return 1; return 2; }`, "1"},
		{"reassign", `int main() { int x = 1; x = x + 1; x = x * 10; return x; }`, "20"},
		{"wraps", `int main() { int x = 2147483647; return x + 1; }`, "-2147483648"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, _ := runMain(t, tc.src, "")
			if got := v.String(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestPrintAndScan(t *testing.T) {
	src := `#include <stdio.h>
int main() {
	int n = 0;
	float r = 0.0;
	printf("enter: ");
	scanf("%d %f", n, r);
	printf("n=", n, " r=", r, " sum=", n + r, "\n");
	printf("half=", n / 2, "\t", r / 2, "\n");
	return n;
}
`
	v, out := runMain(t, src, "  7\n 1.25 ")
	want := "enter: n=7 r=1.25 sum=8.25\nhalf=3\t0.625\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
	if v.I != 7 {
		t.Fatalf("expected result 7, got %v", v)
	}
}

func TestScanAtEndOfInputYieldsZero(t *testing.T) {
	v, _ := runMain(t, `int main() { int n = 5; float f = 1.5; scanf(n, f); printf(f); return n; }`, "")
	if v.I != 0 {
		t.Fatalf("expected 0 at end of input, got %v", v)
	}
	v, out := runMain(t, `int main() { int n = 5; float f = 1.5; scanf(n, f); printf(f); return n; }`, "abc 2")
	if v.I != 0 || out != "2" {
		t.Fatalf("expected unparsable int to read as 0 and next float 2, got %v and %q", v, out)
	}
}

func TestFloatFormatting(t *testing.T) {
	cases := []struct {
		v    float32
		want string
	}{
		{3.5, "3.5"},
		{0.1, "0.1"},
		{100, "100"},
		{1234567, "1.23457e+06"},
		{1e-7, "1e-07"},
	}
	for _, tc := range cases {
		if got := FloatValue(tc.v).String(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestDivideByZeroIsARuntimeError(t *testing.T) {
	mod := build(t, `int main() { int z = 0; printf("before"); return 1 / z; }`)
	var out strings.Builder
	_, err := Run(mod, Options{Stdin: strings.NewReader(""), Stdout: &out})
	if !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("expected divide by zero, got %v", err)
	}
	if out.String() != "before" {
		t.Fatalf("expected output to be flushed, got %q", out.String())
	}

	// Float division by zero follows IEEE rules.
	v, _ := runMain(t, `float main() { float z = 0.0; return 1 / z; }`, "")
	if v.String() != "inf" {
		t.Fatalf("expected inf, got %q", v.String())
	}
}

func TestEntry(t *testing.T) {
	mod := build(t, `int helper() { return 42; } int main() { return 0; }`)
	v, err := Run(mod, Options{Entry: "helper", Stdin: strings.NewReader(""), Stdout: &strings.Builder{}})
	if err != nil || v.I != 42 {
		t.Fatalf("expected 42, got %v (%v)", v, err)
	}
	_, err = Run(mod, Options{Entry: "nope"})
	if !errors.Is(err, ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   float32
		want int32
	}{
		{2.9, 2},
		{-2.9, -2},
		{3e9, 2147483647},
		{-3e9, -2147483648},
	}
	for _, tc := range cases {
		if got := truncate(tc.in); got != tc.want {
			t.Fatalf("truncate(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestParseCFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float32
		ok   bool
	}{
		{"1.25", 1.25, true},
		{"-2e3", -2000, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"0x1.8", 1.5, true},
		{"0x1p3", 8, true},
		{"1_000", 0, false},
		{"1e-40", 0, false},
		{"1e39", 0, false},
		{"1.5x", 0, false},
		{"1e", 0, false},
		{"infinit", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseCFloat(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%q: expected %v %v, got %v %v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
	for _, in := range []string{"nan", "-NaN", "nan(abc_1)", "inf", "-Infinity"} {
		if _, ok := parseCFloat(in); !ok {
			t.Fatalf("%q: expected a value", in)
		}
	}
	if _, ok := parseCFloat("nan(a-b)"); ok {
		t.Fatalf("expected nan(a-b) to be rejected")
	}
}

func TestParseCInt(t *testing.T) {
	cases := []struct {
		in   string
		want int32
		ok   bool
	}{
		{"42", 42, true},
		{"+7", 7, true},
		{"-2147483648", -2147483648, true},
		{"2147483648", 0, false},
		{"1_000", 0, false},
		{"0x10", 0, false},
		{"12abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseCInt(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%q: expected %v %v, got %v %v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestScanSplitsLongWords(t *testing.T) {
	src := `int main() { int a = 0; int b = 0; scanf(a, b); printf(a, " ", b); return 0; }`
	_, out := runMain(t, src, strings.Repeat("1", 63)+"42")
	// The first 63 digits overflow and read as 0; the tail is the next word.
	if out != "0 42" {
		t.Fatalf("expected %q, got %q", "0 42", out)
	}
}

func TestScanReportsFlushError(t *testing.T) {
	mod := build(t, `int main() { int n = 0; printf("prompt"); scanf(n); return n; }`)
	_, err := Run(mod, Options{Stdin: strings.NewReader("1"), Stdout: failingWriter{}})
	if !errors.Is(err, errWriteFailed) {
		t.Fatalf("expected write error, got %v", err)
	}
}

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWriteFailed }
