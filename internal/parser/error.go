package parser

import (
	"fmt"
	"strings"

	"minicc/internal/diag"
	"minicc/internal/lexer"
	"minicc/internal/source"
)

type ErrorKind int

const (
	// InvalidToken: some input span produced no token.
	InvalidToken ErrorKind = iota
	UnexpectedEOF
	UnexpectedToken
	// ExtraToken: a complete program is followed by more input.
	ExtraToken
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidToken:
		return "invalid token"
	case UnexpectedEOF:
		return "unexpected end of input"
	case UnexpectedToken:
		return "unexpected token"
	case ExtraToken:
		return "extra token"
	default:
		return "parse error"
	}
}

// Error is a syntax error. Index is the position in the token sequence
// (for InvalidToken, the index the missing token would have had).
type Error struct {
	Kind     ErrorKind
	Index    int
	Span     source.Span
	Found    lexer.Token
	Expected []lexer.Kind
	Hint     string
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case InvalidToken:
		msg = fmt.Sprintf("invalid token at position %d", e.Index)
	case UnexpectedEOF:
		msg = fmt.Sprintf("unexpected end of input at position %d, expected one of: %s", e.Index, describeKinds(e.Expected))
	case UnexpectedToken:
		msg = fmt.Sprintf("unexpected token %s at position %d, expected one of: %s", e.Found.Describe(), e.Index, describeKinds(e.Expected))
	case ExtraToken:
		msg = fmt.Sprintf("extra token %s at position %d after a complete program", e.Found.Describe(), e.Index)
	default:
		msg = fmt.Sprintf("parse error at position %d", e.Index)
	}
	if e.Hint != "" {
		return e.Hint + ": " + msg
	}
	return msg
}

// Diag converts e to a positioned diagnostic.
func (e *Error) Diag() diag.Item {
	fn, line, col := e.Span.LocStart()
	class := diag.Syntax
	if e.Kind == InvalidToken {
		class = diag.Lexical
	}
	return diag.Item{Filename: fn, Line: line, Col: col, Class: class, Msg: e.Error()}
}

func describeKinds(ks []lexer.Kind) string {
	parts := make([]string, 0, len(ks))
	for _, k := range ks {
		parts = append(parts, k.Describe())
	}
	return strings.Join(parts, ", ")
}
