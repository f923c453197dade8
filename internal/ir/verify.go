package ir

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTerminator = errors.New("block has no terminator")
	ErrReturnType        = errors.New("return value does not match function type")
	ErrUnknownCallee     = errors.New("call to undeclared function")
	ErrCallSignature     = errors.New("call does not match callee signature")
	ErrEmptyFunc         = errors.New("function has no blocks")
)

// Verify checks the well-formedness rules every backend relies on.
func (m *Module) Verify() error {
	for _, f := range m.Funcs {
		if err := m.VerifyFunc(f); err != nil {
			return err
		}
	}
	return nil
}

// VerifyFunc checks one function: every block is terminated, every return
// carries the function's type and every call matches a declared extern.
func (m *Module) VerifyFunc(f *Func) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("fn %s: %w", f.Name, ErrEmptyFunc)
	}
	for _, b := range f.Blocks {
		if b.Term == nil {
			return fmt.Errorf("fn %s block %s: %w", f.Name, b.Name, ErrMissingTerminator)
		}
		if ret, ok := b.Term.(*Ret); ok {
			got := Void
			if ret.Val != nil {
				got = TypeOf(ret.Val)
			}
			if got != f.Ret {
				return fmt.Errorf("fn %s block %s: %w: expected %s, got %s", f.Name, b.Name, ErrReturnType, f.Ret, got)
			}
		}
		for _, ins := range b.Instr {
			c, ok := ins.(*Call)
			if !ok {
				continue
			}
			if err := m.verifyCall(c); err != nil {
				return fmt.Errorf("fn %s block %s: %w", f.Name, b.Name, err)
			}
		}
	}
	return nil
}

func (m *Module) verifyCall(c *Call) error {
	e := m.Extern(c.Name)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCallee, c.Name)
	}
	if e.Ret != c.Ret || len(e.Params) != len(c.Args) {
		return fmt.Errorf("%w: %s", ErrCallSignature, c.Name)
	}
	for i, a := range c.Args {
		if TypeOf(a) != e.Params[i] {
			return fmt.Errorf("%w: %s argument %d", ErrCallSignature, c.Name, i)
		}
	}
	return nil
}
