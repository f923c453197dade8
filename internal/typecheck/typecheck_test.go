package typecheck

import (
	"strings"
	"testing"

	"minicc/internal/ast"
	"minicc/internal/parser"
	"minicc/internal/source"
)

func checkSource(t *testing.T, src string) (*CheckedProgram, []string) {
	t.Helper()
	prog, err := parser.Parse(source.NewFile("test.c", src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	checked, diags := Check(prog)
	var msgs []string
	for _, it := range diags.Items {
		msgs = append(msgs, it.Msg)
	}
	return checked, msgs
}

func TestCheckValidProgram(t *testing.T) {
	src := `#include <stdio.h>
int main() {
	int a = 1;
	float b = a * 2.5;
	a = b;
	scanf("%d %f", a, b);
	printf("a=", a, " b=", b, a + b);
	return a;
}
float half() { int n = 3; return n / 2; }
`
	checked, msgs := checkSource(t, src)
	if len(msgs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}
	if got := checked.FuncSigs["half"].Ret.K; got != TyFloat {
		t.Fatalf("expected half to return float, got %v", got)
	}
	mainFn := checked.Prog.Funcs[0]
	vars := checked.VarTypes[mainFn]
	if vars["a"].K != TyInt || vars["b"].K != TyFloat {
		t.Fatalf("unexpected variable table %v", vars)
	}
	decl := mainFn.Body[1].(*ast.DeclareStmt)
	if got := checked.ExprTypes[decl.Init]; got.K != TyFloat {
		t.Fatalf("expected a * 2.5 to be float, got %v", got)
	}
}

func TestCheckErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown_variable_use",
			src:  `int main() { return x; }`,
			want: "unknown variable: x",
		},
		{
			name: "assign_before_declare",
			src:  `int main() { x = 1; int x = 2; return x; }`,
			want: "unknown variable: x",
		},
		{
			name: "self_initializer",
			src:  `int main() { int x = x + 1; return x; }`,
			want: "unknown variable: x",
		},
		{
			name: "redeclared",
			src:  "int main() {\n  int x = 1;\n  float x = 2.0;\n  return 0;\n}",
			want: "redeclared variable: x (previous declaration at 2:3)",
		},
		{
			name: "duplicate_function",
			src:  `int f() { return 1; } float f() { return 2.0; }`,
			want: "duplicate function: f",
		},
		{
			name: "float_return_from_int",
			src:  `int main() { float y = 1.5; return y * 2; }`,
			want: "type mismatch: expected int, got float",
		},
		{
			name: "scanf_expression",
			src:  `int main() { int a = 0; scanf(a + 1); return a; }`,
			want: "scanf argument must be a variable",
		},
		{
			name: "scanf_literal",
			src:  `int main() { scanf(3); return 0; }`,
			want: "scanf argument must be a variable",
		},
		{
			name: "scanf_unknown",
			src:  `int main() { scanf("%d", n); return 0; }`,
			want: "unknown variable: n",
		},
		{
			name: "printf_unknown",
			src:  `int main() { printf(n); return 0; }`,
			want: "unknown variable: n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, msgs := checkSource(t, tc.src)
			found := false
			for _, m := range msgs {
				if m == tc.want {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected %q, got: %v", tc.want, msgs)
			}
		})
	}
}

func TestCheckVariablesDoNotLeakAcrossFunctions(t *testing.T) {
	_, msgs := checkSource(t, `int f() { int x = 1; return x; } int main() { return x; }`)
	if len(msgs) != 1 || msgs[0] != "unknown variable: x" {
		t.Fatalf("expected one unknown variable, got %v", msgs)
	}
}

func TestCheckIntReturnWidensToFloat(t *testing.T) {
	_, msgs := checkSource(t, `float f() { int x = 3; return x; }`)
	if len(msgs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}
}

// String literals cannot reach arithmetic through the grammar, so build the tree.
func TestCheckStringInArithmetic(t *testing.T) {
	f := source.NewFile("test.c", "")
	prog := &ast.Program{Funcs: []*ast.FuncDecl{{
		Name: "main",
		Ret:  ast.TypeInt,
		Body: []ast.Stmt{&ast.ReturnStmt{Expr: &ast.BinaryExpr{
			Op:    ast.Add,
			Left:  &ast.IntLit{Value: 1},
			Right: &ast.StringLit{Value: "x", S: f.EOF()},
		}}},
		Span: f.EOF(),
	}}}
	_, diags := Check(prog)
	if diags.Empty() {
		t.Fatalf("expected diagnostics")
	}
	if !strings.Contains(diags.Items[0].Msg, "string literal") {
		t.Fatalf("unexpected message %q", diags.Items[0].Msg)
	}
	if len(diags.Items) != 1 {
		t.Fatalf("expected a single diagnostic, got %+v", diags.Items)
	}
}
