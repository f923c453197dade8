package irgen

import (
	"golang.org/x/sync/errgroup"

	"minicc/internal/ast"
	"minicc/internal/ir"
	"minicc/internal/typecheck"
)

type Options struct {
	// Jobs is the number of functions generated concurrently. Values below
	// 2 generate sequentially. Output is identical either way.
	Jobs int
}

// Generate lowers a type-checked program into an IR module. On error no
// module is returned.
// Generated types are cross-checked against the checker's annotations.
func Generate(p *typecheck.CheckedProgram, opts Options) (*ir.Module, error) {
	return generate(p.Prog, annotationsOf(p), opts)
}

// GenerateProgram lowers prog without relying on checker annotations; any
// violation the checker would have rejected surfaces as an *InternalError.
func GenerateProgram(prog *ast.Program, opts Options) (*ir.Module, error) {
	return generate(prog, nil, opts)
}

func generate(prog *ast.Program, ann *annotations, opts Options) (*ir.Module, error) {
	seen := map[string]bool{}
	for _, fn := range prog.Funcs {
		if seen[fn.Name] {
			return nil, internalErr(fn, fn.Span, ErrRedeclared, "function "+fn.Name)
		}
		seen[fn.Name] = true
	}

	funcs, err := genFuncs(prog.Funcs, ann, opts.Jobs)
	if err != nil {
		return nil, err
	}

	// Single writer: functions enter the module in source order.
	mod := &ir.Module{Funcs: funcs}
	mod.DeclareUsed()
	for i, f := range mod.Funcs {
		if err := mod.VerifyFunc(f); err != nil {
			fn := prog.Funcs[i]
			return nil, &InternalError{Func: fn.Name, Span: fn.Span, Err: err}
		}
	}
	return mod, nil
}

func genFuncs(decls []*ast.FuncDecl, ann *annotations, jobs int) ([]*ir.Func, error) {
	funcs := make([]*ir.Func, len(decls))
	errs := make([]error, len(decls))
	if jobs < 2 {
		for i, fn := range decls {
			f, err := newFuncGen(fn, ann).gen()
			if err != nil {
				return nil, err
			}
			funcs[i] = f
		}
		return funcs, nil
	}

	var eg errgroup.Group
	eg.SetLimit(jobs)
	for i, fn := range decls {
		i, fn := i, fn
		eg.Go(func() error {
			// Each function owns its generator and variable table.
			f, err := newFuncGen(fn, ann).gen()
			funcs[i], errs[i] = f, err
			return err
		})
	}
	if eg.Wait() != nil {
		// Report the first failure in source order, not completion order.
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	return funcs, nil
}
