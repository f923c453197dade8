package parser

import (
	"sort"

	"minicc/internal/ast"
	"minicc/internal/lexer"
	"minicc/internal/source"
)

// Parser is a single-token-lookahead recursive descent parser. It stops at
// the first error; there is no recovery.
type Parser struct {
	toks []lexer.Token // always ends with an EOF token
	pos  int
}

// Parse lexes and parses one translation unit. Any lexical gap in the input
// fails with an InvalidToken error before the grammar is consulted.
func Parse(file *source.File) (*ast.Program, error) {
	toks, gaps := lexer.Scan(file)
	return ParseScanned(file, toks, gaps)
}

// ParseScanned parses the output of lexer.Scan, for callers that keep the
// tokens.
func ParseScanned(file *source.File, toks []lexer.Token, gaps []source.Span) (*ast.Program, error) {
	if len(gaps) > 0 {
		g := gaps[0]
		idx := sort.Search(len(toks), func(i int) bool { return toks[i].Span.Start >= g.Start })
		return nil, &Error{Kind: InvalidToken, Index: idx, Span: g}
	}
	return ParseTokens(file, toks)
}

// ParseTokens parses an already lexed token sequence. file is only used to
// place the end-of-input position and may be nil.
func ParseTokens(file *source.File, toks []lexer.Token) (*ast.Program, error) {
	eof := source.Span{}
	if file != nil {
		eof = file.EOF()
	} else if n := len(toks); n > 0 {
		last := toks[n-1].Span
		eof = source.Span{File: last.File, Start: last.End, End: last.End}
	}
	all := make([]lexer.Token, 0, len(toks)+1)
	all = append(all, toks...)
	all = append(all, lexer.Token{Kind: lexer.TokenEOF, Span: eof})
	p := &Parser{toks: all}
	return p.parseProgram()
}

var (
	topLevelStart = []lexer.Kind{lexer.TokenInt, lexer.TokenFloat}
	stmtStart     = []lexer.Kind{
		lexer.TokenInt, lexer.TokenFloat, lexer.TokenIdent,
		lexer.TokenReturn, lexer.TokenPrintf, lexer.TokenScanf,
	}
	exprStart = []lexer.Kind{lexer.TokenIntLit, lexer.TokenFloatLit, lexer.TokenIdent, lexer.TokenLParen}
	exprOps   = []lexer.Kind{lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash}
)

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.at(lexer.TokenInclude) {
		t := p.advance()
		prog.Includes = append(prog.Includes, &ast.IncludeStmt{Path: t.Text, Angled: t.Angled, S: t.Span})
	}
	for {
		switch p.peek().Kind {
		case lexer.TokenEOF:
			return prog, nil
		case lexer.TokenInt, lexer.TokenFloat:
			fn, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			prog.Funcs = append(prog.Funcs, fn)
		default:
			// Everything consumed so far is a complete program.
			expected := topLevelStart
			if len(prog.Funcs) == 0 {
				expected = append([]lexer.Kind{lexer.TokenInclude}, topLevelStart...)
			}
			return nil, &Error{
				Kind:     ExtraToken,
				Index:    p.pos,
				Span:     p.peek().Span,
				Found:    p.peek(),
				Expected: append(expected, lexer.TokenEOF),
			}
		}
	}
}

func (p *Parser) parseType() (ast.Type, lexer.Token, error) {
	switch {
	case p.at(lexer.TokenInt):
		return ast.TypeInt, p.advance(), nil
	case p.at(lexer.TokenFloat):
		return ast.TypeFloat, p.advance(), nil
	}
	return 0, lexer.Token{}, p.unexpected(lexer.TokenInt, lexer.TokenFloat)
}

func (p *Parser) parseFuncDecl() (*ast.FuncDecl, error) {
	ret, start, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	for _, k := range []lexer.Kind{lexer.TokenLParen, lexer.TokenRParen, lexer.TokenLBrace} {
		if _, err := p.expect(k); err != nil {
			return nil, err
		}
	}
	fn := &ast.FuncDecl{Name: name.Text, Ret: ret}
	for !p.at(lexer.TokenRBrace) {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, st)
	}
	end := p.advance()
	fn.Span = source.Join(start.Span, end.Span)
	return fn, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.peek().Kind {
	case lexer.TokenInt, lexer.TokenFloat:
		return p.parseDeclare()
	case lexer.TokenIdent:
		return p.parseAssign()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenPrintf, lexer.TokenScanf:
		return p.parseIO()
	}
	return nil, p.unexpected(append(stmtStart, lexer.TokenRBrace)...)
}

func (p *Parser) parseDeclare() (ast.Stmt, error) {
	ty, start, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenEq); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectAfterExpr(lexer.TokenSemicolon)
	if err != nil {
		return nil, err
	}
	return &ast.DeclareStmt{Type: ty, Name: name.Text, Init: init, S: source.Join(start.Span, end.Span)}, nil
}

func (p *Parser) parseAssign() (ast.Stmt, error) {
	name := p.advance()
	if _, err := p.expect(lexer.TokenEq); err != nil {
		return nil, err
	}
	ex, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectAfterExpr(lexer.TokenSemicolon)
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{Name: name.Text, Expr: ex, S: source.Join(name.Span, end.Span)}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.advance()
	ex, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectAfterExpr(lexer.TokenSemicolon)
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Expr: ex, S: source.Join(start.Span, end.Span)}, nil
}

// parseIO handles printf and scanf, which share one argument grammar.
func (p *Parser) parseIO() (ast.Stmt, error) {
	start := p.advance()
	if _, err := p.expect(lexer.TokenLParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		var sep lexer.Token
		if _, ok := arg.(*ast.StringLit); ok {
			sep, err = p.expect(lexer.TokenComma, lexer.TokenRParen)
		} else {
			sep, err = p.expectAfterExpr(lexer.TokenComma, lexer.TokenRParen)
		}
		if err != nil {
			return nil, err
		}
		if sep.Kind == lexer.TokenRParen {
			break
		}
	}
	end, err := p.expect(lexer.TokenSemicolon)
	if err != nil {
		return nil, err
	}
	span := source.Join(start.Span, end.Span)
	if start.Kind == lexer.TokenScanf {
		return &ast.ScanStmt{Args: args, S: span}, nil
	}
	return &ast.PrintStmt{Args: args, S: span}, nil
}

func (p *Parser) parseArg() (ast.Expr, error) {
	if p.at(lexer.TokenString) {
		t := p.advance()
		return &ast.StringLit{Value: t.Text, S: t.Span}, nil
	}
	if !p.atAny(exprStart) {
		err := p.unexpected(append([]lexer.Kind{lexer.TokenString}, exprStart...)...)
		err.Hint = "expected argument"
		return nil, err
	}
	return p.parseExpr()
}

// Expr := Term (('+'|'-') Term)*
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TokenPlus) || p.at(lexer.TokenMinus) {
		op := ast.Add
		if p.advance().Kind == lexer.TokenMinus {
			op = ast.Sub
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, S: source.Join(left.Span(), right.Span())}
	}
	return left, nil
}

// Term := Factor (('*'|'/') Factor)*
func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TokenStar) || p.at(lexer.TokenSlash) {
		op := ast.Mul
		if p.advance().Kind == lexer.TokenSlash {
			op = ast.Div
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, S: source.Join(left.Span(), right.Span())}
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case lexer.TokenIntLit:
		p.advance()
		return &ast.IntLit{Value: t.Int, S: t.Span}, nil
	case lexer.TokenFloatLit:
		p.advance()
		return &ast.FloatLit{Value: t.Float, S: t.Span}, nil
	case lexer.TokenIdent:
		p.advance()
		return &ast.VarExpr{Name: t.Text, S: t.Span}, nil
	case lexer.TokenLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectAfterExpr(lexer.TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	err := p.unexpected(exprStart...)
	err.Hint = "expected expression"
	return nil, err
}

func (p *Parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atAny(ks []lexer.Kind) bool {
	for _, k := range ks {
		if p.at(k) {
			return true
		}
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

// expect consumes one token of any of the given kinds.
func (p *Parser) expect(ks ...lexer.Kind) (lexer.Token, error) {
	if p.atAny(ks) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.unexpected(ks...)
}

// expectAfterExpr is expect at a point where the expression just parsed
// could still have been extended by a binary operator.
func (p *Parser) expectAfterExpr(ks ...lexer.Kind) (lexer.Token, error) {
	if p.atAny(ks) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.unexpected(append(append([]lexer.Kind{}, exprOps...), ks...)...)
}

func (p *Parser) unexpected(expected ...lexer.Kind) *Error {
	t := p.peek()
	kind := UnexpectedToken
	if t.Kind == lexer.TokenEOF {
		kind = UnexpectedEOF
	}
	return &Error{
		Kind:     kind,
		Index:    p.pos,
		Span:     t.Span,
		Found:    t,
		Expected: append([]lexer.Kind{}, expected...),
	}
}
