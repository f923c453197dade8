package lexer

import (
	"strconv"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"minicc/internal/source"
	"minicc/internal/stringlit"
)

// Rules are tried in order and the first match wins; each pattern is greedy,
// so within a class the longest run is taken.
var definition = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\n\f\r]+`},
	{Name: "Include", Pattern: `#include[ \t]*(?:<[^>\n]+>|"[^"\n]+")`},
	{Name: "Word", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\["\\nt])*"`},
	{Name: "Punct", Pattern: `[-+*/=;:,(){}]`},
	{Name: "Gap", Pattern: `(?s).`},
})

var (
	symbols    = definition.Symbols()
	symWS      = symbols["Whitespace"]
	symInclude = symbols["Include"]
	symWord    = symbols["Word"]
	symFloat   = symbols["Float"]
	symInt     = symbols["Int"]
	symString  = symbols["String"]
	symPunct   = symbols["Punct"]
	symGap     = symbols["Gap"]
)

// Lex tokenizes the whole file. It never fails: spans that match no token
// class are dropped.
func Lex(file *source.File) []Token {
	toks, _ := Scan(file)
	return toks
}

// Scan is Lex plus the spans that produced no token. Adjacent unmatched
// characters are merged into one gap.
func Scan(file *source.File) ([]Token, []source.Span) {
	lx := &lexer{file: file}
	lx.run()
	return lx.tokens, lx.gaps
}

type lexer struct {
	file   *source.File
	tokens []Token
	gaps   []source.Span
}

func (lx *lexer) run() {
	stream, err := definition.LexString(lx.file.Name, lx.file.Input)
	if err != nil {
		lx.gap(0, len(lx.file.Input))
		return
	}
	end := 0
	for {
		pt, err := stream.Next()
		if err != nil {
			// Unreachable with the catch-all rule; keep the contract anyway.
			lx.gap(end, len(lx.file.Input))
			return
		}
		if pt.EOF() {
			return
		}
		start := pt.Pos.Offset
		end = start + len(pt.Value)
		switch pt.Type {
		case symWS:
		case symInclude:
			lx.lexInclude(pt.Value, start, end)
		case symWord:
			lx.lexWord(pt.Value, start, end)
		case symFloat:
			lx.lexFloat(pt.Value, start, end)
		case symInt:
			lx.lexInt(pt.Value, start, end)
		case symString:
			lx.lexString(pt.Value, start, end)
		case symPunct:
			lx.emit(Token{Kind: punct[pt.Value], Lexeme: pt.Value}, start, end)
		case symGap:
			lx.gap(start, end)
		default:
			lx.gap(start, end)
		}
	}
}

func (lx *lexer) emit(t Token, start, end int) {
	t.Span = source.Span{File: lx.file, Start: start, End: end}
	lx.tokens = append(lx.tokens, t)
}

func (lx *lexer) gap(start, end int) {
	if start >= end {
		return
	}
	if n := len(lx.gaps); n > 0 && lx.gaps[n-1].End == start {
		lx.gaps[n-1].End = end
		return
	}
	lx.gaps = append(lx.gaps, source.Span{File: lx.file, Start: start, End: end})
}

func (lx *lexer) lexInclude(lex string, start, end int) {
	rest := strings.TrimLeft(strings.TrimPrefix(lex, "#include"), " \t")
	lx.emit(Token{
		Kind:   TokenInclude,
		Lexeme: lex,
		Text:   rest[1 : len(rest)-1],
		Angled: rest[0] == '<',
	}, start, end)
}

func (lx *lexer) lexWord(lex string, start, end int) {
	if k, ok := keywords[lex]; ok {
		lx.emit(Token{Kind: k, Lexeme: lex}, start, end)
		return
	}
	lx.emit(Token{Kind: TokenIdent, Lexeme: lex, Text: lex}, start, end)
}

func (lx *lexer) lexInt(lex string, start, end int) {
	n, err := strconv.ParseInt(lex, 10, 32)
	if err != nil {
		lx.gap(start, end)
		return
	}
	lx.emit(Token{Kind: TokenIntLit, Lexeme: lex, Int: int32(n)}, start, end)
}

func (lx *lexer) lexFloat(lex string, start, end int) {
	f, err := strconv.ParseFloat(lex, 32)
	if err != nil {
		lx.gap(start, end)
		return
	}
	lx.emit(Token{Kind: TokenFloatLit, Lexeme: lex, Float: float32(f)}, start, end)
}

func (lx *lexer) lexString(lex string, start, end int) {
	s, err := stringlit.Decode(lex)
	if err != nil {
		lx.gap(start, end)
		return
	}
	lx.emit(Token{Kind: TokenString, Lexeme: lex, Text: s}, start, end)
}
