package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"minicc/internal/ir"
)

// maxWord matches the %63s conversion the C runtime reads words with. Longer
// input is split and the rest feeds the next read.
const maxWord = 63

// minNormal32 is the smallest normal float32.
const minNormal32 = 0x1p-126

// callRuntime implements the runtime library entry points. Formatting and
// input handling match the C runtime in internal/stdlib.
func (rt *Runtime) callRuntime(name string, args []Value) (Value, error) {
	want, ok := ir.RuntimeExtern(name)
	if !ok {
		return Value{}, fmt.Errorf("call to unknown runtime function %s", name)
	}
	if len(args) != len(want.Params) {
		return Value{}, fmt.Errorf("%s expects %d arguments, got %d", name, len(want.Params), len(args))
	}
	switch name {
	case ir.PrintInt, ir.PrintFloat, ir.PrintStr:
		if _, err := rt.out.WriteString(args[0].String()); err != nil {
			return Value{}, err
		}
		return void(), nil
	case ir.ReadInt:
		w, ok, err := rt.word()
		if err != nil || !ok {
			return IntValue(0), err
		}
		n, _ := parseCInt(w)
		return IntValue(n), nil
	case ir.ReadFloat:
		w, ok, err := rt.word()
		if err != nil || !ok {
			return FloatValue(0), err
		}
		f, _ := parseCFloat(w)
		return FloatValue(f), nil
	}
	return Value{}, fmt.Errorf("runtime function %s is not implemented", name)
}

// word returns the next input word. Pending output is flushed first so
// prompts appear before the program blocks on input.
func (rt *Runtime) word() (string, bool, error) {
	if err := rt.out.Flush(); err != nil {
		return "", false, err
	}
	if !rt.in.Scan() {
		return "", false, rt.in.Err()
	}
	return rt.in.Text(), true, nil
}

func isCSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// scanCWord is a bufio.SplitFunc with scanf("%63s") semantics: C locale
// whitespace separates words and no word exceeds maxWord bytes.
func scanCWord(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && isCSpace(data[start]) {
		start++
	}
	for i := start; i < len(data); i++ {
		if isCSpace(data[i]) || i-start == maxWord {
			return i, data[start:i], nil
		}
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

// parseCInt accepts what strtol(w, &end, 10) consumes entirely without
// ERANGE, narrowed to int32.
func parseCInt(w string) (int32, bool) {
	n, err := strconv.ParseInt(w, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// parseCFloat accepts what strtof consumes entirely without ERANGE.
func parseCFloat(w string) (float32, bool) {
	if strings.ContainsRune(w, '_') {
		return cNaNPayload(w)
	}
	body := strings.TrimLeft(w, "+-")
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') && !strings.ContainsAny(body, "pP") {
		// strtof allows a hex mantissa without an exponent.
		w += "p0"
	}
	f, err := strconv.ParseFloat(w, 32)
	if err != nil {
		return cNaNPayload(w)
	}
	if f != 0 && math.Abs(f) < minNormal32 {
		// strtof reports ERANGE for inexact subnormal results.
		if exact, err := strconv.ParseFloat(w, 64); err != nil || exact != f {
			return 0, false
		}
	}
	return float32(f), true
}

// cNaNPayload handles the signed nan and nan(chars) forms strconv rejects.
// chars are alphanumerics or underscores.
func cNaNPayload(w string) (float32, bool) {
	body := strings.TrimLeft(w, "+-")
	if len(w)-len(body) > 1 {
		return 0, false
	}
	if strings.EqualFold(body, "nan") {
		return float32(math.NaN()), true
	}
	if len(body) < 5 || !strings.EqualFold(body[:4], "nan(") || body[len(body)-1] != ')' {
		return 0, false
	}
	for _, c := range body[4 : len(body)-1] {
		if c != '_' && !('0' <= c && c <= '9') && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') {
			return 0, false
		}
	}
	return float32(math.NaN()), true
}
