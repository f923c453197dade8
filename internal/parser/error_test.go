package parser

import (
	"errors"
	"testing"

	"minicc/internal/diag"
	"minicc/internal/lexer"
	"minicc/internal/source"
)

func parseErr(t *testing.T, src string) *Error {
	t.Helper()
	_, err := Parse(source.NewFile("test.c", src))
	if err == nil {
		t.Fatalf("expected a syntax error for %q", src)
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %T", err)
	}
	return perr
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		kind  ErrorKind
		index int
		want  string
	}{
		{
			name:  "missing_expression",
			src:   `int main() { int x = ; }`,
			kind:  UnexpectedToken,
			index: 8,
			want:  "expected expression: unexpected token `;` at position 8, expected one of: integer literal, float literal, identifier, `(`",
		},
		{
			name:  "eof_in_return",
			src:   `int main() { return 1`,
			kind:  UnexpectedEOF,
			index: 7,
			want:  "unexpected end of input at position 7, expected one of: `+`, `-`, `*`, `/`, `;`",
		},
		{
			name:  "eof_in_body",
			src:   `int main() {`,
			kind:  UnexpectedEOF,
			index: 5,
			want:  "unexpected end of input at position 5, expected one of: `int`, `float`, identifier, `return`, `printf`, `scanf`, `}`",
		},
		{
			name:  "trailing_brace",
			src:   `int main() { return 0; } }`,
			kind:  ExtraToken,
			index: 9,
			want:  "extra token `}` at position 9 after a complete program",
		},
		{
			name:  "statement_at_top_level",
			src:   `return 0;`,
			kind:  ExtraToken,
			index: 0,
			want:  "extra token `return` at position 0 after a complete program",
		},
		{
			name:  "include_after_function",
			src:   "int main() { return 0; }\n#include <stdio.h>",
			kind:  ExtraToken,
			index: 9,
			want:  "extra token include directive `#include <stdio.h>` at position 9 after a complete program",
		},
		{
			name:  "assign_without_eq",
			src:   `int main() { x 1; }`,
			kind:  UnexpectedToken,
			index: 6,
			want:  "unexpected token integer literal `1` at position 6, expected one of: `=`",
		},
		{
			name:  "missing_name",
			src:   `int () { return 0; }`,
			kind:  UnexpectedToken,
			index: 1,
			want:  "unexpected token `(` at position 1, expected one of: identifier",
		},
		{
			name:  "parameters",
			src:   `int main(int a) { return 0; }`,
			kind:  UnexpectedToken,
			index: 2 + 1,
			want:  "unexpected token `int` at position 3, expected one of: `)`",
		},
		{
			name:  "printf_empty_arg",
			src:   `int main() { printf("x", ); }`,
			kind:  UnexpectedToken,
			index: 9,
			want:  "expected argument: unexpected token `)` at position 9, expected one of: string literal, integer literal, float literal, identifier, `(`",
		},
		{
			name:  "printf_missing_comma",
			src:   `int main() { printf("a" 1); }`,
			kind:  UnexpectedToken,
			index: 8,
			want:  "unexpected token integer literal `1` at position 8, expected one of: `,`, `)`",
		},
		{
			name:  "unclosed_paren",
			src:   `int main() { return (1 + 2; }`,
			kind:  UnexpectedToken,
			index: 10,
			want:  "unexpected token `;` at position 10, expected one of: `+`, `-`, `*`, `/`, `)`",
		},
		{
			name:  "string_in_expression",
			src:   `int main() { return "x"; }`,
			kind:  UnexpectedToken,
			index: 6,
			want:  "expected expression: unexpected token string literal `\"x\"` at position 6, expected one of: integer literal, float literal, identifier, `(`",
		},
		{
			name:  "colon_is_not_a_statement",
			src:   `int main() { : }`,
			kind:  UnexpectedToken,
			index: 5,
			want:  "unexpected token `:` at position 5, expected one of: `int`, `float`, identifier, `return`, `printf`, `scanf`, `}`",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perr := parseErr(t, tc.src)
			if perr.Kind != tc.kind {
				t.Fatalf("expected kind %v, got %v", tc.kind, perr.Kind)
			}
			if perr.Index != tc.index {
				t.Fatalf("expected index %d, got %d", tc.index, perr.Index)
			}
			if got := perr.Error(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseInvalidToken(t *testing.T) {
	perr := parseErr(t, "int main() {\n  @ return 0;\n}")
	if perr.Kind != InvalidToken {
		t.Fatalf("expected InvalidToken, got %v", perr.Kind)
	}
	if perr.Index != 5 {
		t.Fatalf("expected index 5, got %d", perr.Index)
	}
	if got := perr.Error(); got != "invalid token at position 5" {
		t.Fatalf("unexpected message %q", got)
	}
	it := perr.Diag()
	if it.Class != diag.Lexical || it.Line != 2 || it.Col != 3 {
		t.Fatalf("unexpected diagnostic %+v", it)
	}
}

// A gap is reported even when the remaining tokens would form a valid program.
func TestParseGapIsNeverSkipped(t *testing.T) {
	perr := parseErr(t, "int main() { return 0; } $")
	if perr.Kind != InvalidToken || perr.Index != 9 {
		t.Fatalf("expected InvalidToken at 9, got %v at %d", perr.Kind, perr.Index)
	}
}

func TestErrorDiagPosition(t *testing.T) {
	perr := parseErr(t, "int main() {\n\tint x = ;\n}\n")
	it := perr.Diag()
	if it.Class != diag.Syntax {
		t.Fatalf("expected syntax class, got %v", it.Class)
	}
	if it.Filename != "test.c" || it.Line != 2 || it.Col != 10 {
		t.Fatalf("expected test.c:2:10, got %s:%d:%d", it.Filename, it.Line, it.Col)
	}
	if perr.Found.Kind != lexer.TokenSemicolon {
		t.Fatalf("expected found `;`, got %v", perr.Found.Kind)
	}
}

func TestParseTokensWithoutFile(t *testing.T) {
	f := source.NewFile("test.c", "int main() { return 1 +")
	_, err := ParseTokens(nil, lexer.Lex(f))
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != UnexpectedEOF {
		t.Fatalf("expected UnexpectedEOF, got %v", err)
	}
	if perr.Span.Start != len(f.Input) {
		t.Fatalf("expected EOF span at %d, got %d", len(f.Input), perr.Span.Start)
	}
}
