//go:build !llvm

package main

import (
	"errors"

	"minicc/internal/ir"
)

const llvmEnabled = false

func emitLLVM(*ir.Module) (string, error) {
	return "", errors.New("-llvm needs a build with -tags llvm")
}
