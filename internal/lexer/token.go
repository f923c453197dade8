package lexer

import (
	"fmt"

	"minicc/internal/source"
)

type Kind int

const (
	TokenEOF Kind = iota

	// Literals / identifiers
	TokenIdent
	TokenIntLit
	TokenFloatLit
	TokenString
	TokenInclude

	// Keywords
	TokenInt
	TokenFloat
	TokenReturn
	TokenPrintf
	TokenScanf

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenEq

	// Punct
	TokenSemicolon
	TokenColon
	TokenComma
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
)

var kindNames = [...]string{
	TokenEOF:       "eof",
	TokenIdent:     "ident",
	TokenIntLit:    "intlit",
	TokenFloatLit:  "floatlit",
	TokenString:    "string",
	TokenInclude:   "include",
	TokenInt:       "int",
	TokenFloat:     "float",
	TokenReturn:    "return",
	TokenPrintf:    "printf",
	TokenScanf:     "scanf",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenEq:        "=",
	TokenSemicolon: ";",
	TokenColon:     ":",
	TokenComma:     ",",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
}

// String is the short name used in token dumps.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Describe names the kind for error messages.
func (k Kind) Describe() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenIdent:
		return "identifier"
	case TokenIntLit:
		return "integer literal"
	case TokenFloatLit:
		return "float literal"
	case TokenString:
		return "string literal"
	case TokenInclude:
		return "include directive"
	default:
		return "`" + k.String() + "`"
	}
}

var keywords = map[string]Kind{
	"int":    TokenInt,
	"float":  TokenFloat,
	"return": TokenReturn,
	"printf": TokenPrintf,
	"scanf":  TokenScanf,
}

var punct = map[string]Kind{
	"+": TokenPlus,
	"-": TokenMinus,
	"*": TokenStar,
	"/": TokenSlash,
	"=": TokenEq,
	";": TokenSemicolon,
	":": TokenColon,
	",": TokenComma,
	"(": TokenLParen,
	")": TokenRParen,
	"{": TokenLBrace,
	"}": TokenRBrace,
}

type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span

	Int    int32   // TokenIntLit
	Float  float32 // TokenFloatLit
	Text   string  // identifier name, include path or decoded string contents
	Angled bool    // TokenInclude written as <path>
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

// Describe renders the token for error messages, e.g. "identifier `x`".
func (t Token) Describe() string {
	switch t.Kind {
	case TokenEOF:
		return t.Kind.Describe()
	case TokenIdent, TokenIntLit, TokenFloatLit, TokenString, TokenInclude:
		return t.Kind.Describe() + " `" + t.Lexeme + "`"
	default:
		return t.Kind.Describe()
	}
}
