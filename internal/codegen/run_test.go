package codegen

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"minicc/internal/interp"
)

// compileC builds csrc with the system C compiler, skipping when none is
// installed.
func compileC(t *testing.T, csrc string) string {
	t.Helper()
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("cc not found")
	}
	dir := t.TempDir()
	cPath := filepath.Join(dir, "a.c")
	binPath := filepath.Join(dir, "a.out")
	if err := writeFile(cPath, csrc); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(cc, "-std=c11", "-O0", cPath, "-o", binPath, "-lm")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("cc failed: %v\n%s", err, string(out))
	}
	return binPath
}

// runBinary returns stdout and the exit status.
func runBinary(t *testing.T, bin, stdin string) (string, int) {
	t.Helper()
	var stdout bytes.Buffer
	cmd := exec.Command(bin)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), exitErr.ExitCode()
	default:
		t.Fatalf("run failed: %v", err)
		return "", 0
	}
}

func TestCompiledMatchesInterpreter(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		stdin string
	}{
		{"precedence", `int main() { return 2 + 3 * 4; }`, ""},
		{"assoc", `int main() { printf(10 - 4 - 3, " ", 100 / 10 / 5, "\n"); return 0; }`, ""},
		{"negative_div", `int main() { int a = 0 - 7; printf(a / 2, "\n"); return 0; }`, ""},
		{"promotion", `int main() { int a = 1; float b = a + 2.5; printf(b, "\n"); return 0; }`, ""},
		{"narrowing", `int main() { float f = 0 - 2.9; int x = f; printf(x, "\n"); return 3; }`, ""},
		{"float_format", `int main() { printf(1234567.0, " ", 0.1, " ", 100.0, " ", 1.0 / 3, "\n"); return 0; }`, ""},
		{"float_inf", `int main() { float z = 0.0; printf(1 / z, " ", 0 - 1 / z, "\n"); return 0; }`, ""},
		{"wraps", `int main() { int x = 2147483647; printf(x + 1, "\n"); return 0; }`, ""},
		{"escapes", `int main() { printf("a\tb \"q\" \\ ??=\n"); return 0; }`, ""},
		{"io", `#include <stdio.h>
int main() {
	int n = 0;
	float r = 0.0;
	printf("enter: ");
	scanf("%d %f", n, r);
	printf("n=", n, " r=", r, " sum=", n + r, "\n");
	return n;
}`, "7 1.25\n"},
		{"io_eof", `int main() { int n = 5; float f = 1.5; scanf(n, f); printf(n, " ", f, "\n"); return 0; }`, ""},
		{"io_bad_word", `int main() { int n = 5; float f = 1.5; scanf(n, f); printf(n, " ", f, "\n"); return 0; }`, "abc 2"},
		{"io_underscore", `int main() { float f = 1.0; scanf(f); printf(f, "\n"); return 0; }`, "1_000"},
		{"io_subnormal", `int main() { float f = 1.0; scanf(f); printf(f, "\n"); return 0; }`, "1e-40"},
		{"io_hex_float", `int main() { float f = 1.0; scanf(f); printf(f, "\n"); return 0; }`, "0x1.8"},
		{"io_long_word", `int main() { int a = 5; int b = 5; scanf(a, b); printf(a, " ", b, "\n"); return 0; }`, strings.Repeat("1", 63) + "42"},
		{"helpers", `int two() { return 2; } float half() { return 0.5; } int main() { return 1; }`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mod := buildModule(t, tc.src)

			var want strings.Builder
			v, err := interp.Run(mod, interp.Options{Stdin: strings.NewReader(tc.stdin), Stdout: &want})
			if err != nil {
				t.Fatalf("interp: %v", err)
			}

			csrc, err := EmitC(mod, EmitOptions{EmitDriverMain: true})
			if err != nil {
				t.Fatal(err)
			}
			got, code := runBinary(t, compileC(t, csrc), tc.stdin)
			if got != want.String() {
				t.Fatalf("expected output %q, got %q", want.String(), got)
			}
			if code != int(uint8(v.I)) {
				t.Fatalf("expected exit status %d, got %d", uint8(v.I), code)
			}
		})
	}
}

func TestCompiledDivideByZeroExits(t *testing.T) {
	mod := buildModule(t, `int main() { int z = 0; printf("before"); return 1 / z; }`)
	csrc, err := EmitC(mod, EmitOptions{EmitDriverMain: true})
	if err != nil {
		t.Fatal(err)
	}
	out, code := runBinary(t, compileC(t, csrc), "")
	if out != "before" || code != 70 {
		t.Fatalf("expected flushed output and status 70, got %q and %d", out, code)
	}
}

func TestCompiledFloatMainPrints(t *testing.T) {
	mod := buildModule(t, `float main() { return 2.5; }`)
	csrc, err := EmitC(mod, EmitOptions{EmitDriverMain: true})
	if err != nil {
		t.Fatal(err)
	}
	out, code := runBinary(t, compileC(t, csrc), "")
	if out != "2.5\n" || code != 0 {
		t.Fatalf("expected 2.5 and status 0, got %q and %d", out, code)
	}
}

func writeFile(path string, s string) error {
	return os.WriteFile(path, []byte(s), 0o644)
}
