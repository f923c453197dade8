package loader

import (
	"errors"
	"fmt"
	"log"
	"os"

	"minicc/internal/ast"
	"minicc/internal/diag"
	"minicc/internal/ir"
	"minicc/internal/irgen"
	"minicc/internal/lexer"
	"minicc/internal/parser"
	"minicc/internal/source"
	"minicc/internal/typecheck"
)

type Options struct {
	// Jobs is passed to irgen.Options.
	Jobs int
	// Logger, when set, receives one line per pipeline stage and echoes
	// every include directive.
	Logger *log.Logger
}

// BuildResult holds every stage's output so callers can stop at any of
// them (token dumps, AST dumps, IR, backends).
type BuildResult struct {
	File    *source.File
	Tokens  []lexer.Token
	Program *ast.Program
	Checked *typecheck.CheckedProgram
	Module  *ir.Module
}

// Build reads path and compiles it. User errors come back as diagnostics;
// err is reserved for I/O and compiler defects.
func Build(path string, opts Options) (*BuildResult, *diag.Bag, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return BuildFile(source.NewFile(path, string(b)), opts)
}

// BuildFile compiles an in-memory file. A non-empty bag means the result
// stops at the failing stage and Module is nil.
func BuildFile(file *source.File, opts Options) (*BuildResult, *diag.Bag, error) {
	res := &BuildResult{File: file}

	toks, gaps := lexer.Scan(file)
	res.Tokens = toks
	opts.logf("lexed %d tokens", len(toks))

	prog, err := parser.ParseScanned(file, toks, gaps)
	if err != nil {
		var perr *parser.Error
		if !errors.As(err, &perr) {
			return res, nil, err
		}
		db := &diag.Bag{}
		db.Items = append(db.Items, perr.Diag())
		return res, db, nil
	}
	res.Program = prog
	for _, inc := range prog.Includes {
		opts.logf("include %s", inc)
	}
	opts.logf("parsed %d functions", len(prog.Funcs))

	checked, tdiags := typecheck.Check(prog)
	if !tdiags.Empty() {
		return res, tdiags, nil
	}
	res.Checked = checked

	mod, err := irgen.Generate(checked, irgen.Options{Jobs: opts.Jobs})
	if err != nil {
		return res, nil, fmt.Errorf("generate: %w", err)
	}
	res.Module = mod
	opts.logf("generated %d functions", len(mod.Funcs))
	return res, nil, nil
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
