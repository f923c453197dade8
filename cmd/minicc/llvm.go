//go:build llvm

package main

import (
	"minicc/internal/ir"
	"minicc/internal/llvmgen"
)

const llvmEnabled = true

func emitLLVM(mod *ir.Module) (string, error) {
	m, err := llvmgen.Lower(mod, llvmgen.Options{EmitDriverMain: mod.Func("main") != nil})
	if err != nil {
		return "", err
	}
	defer m.Dispose()
	return m.String(), nil
}
