// Package llvmgen lowers IR modules to LLVM. It needs the LLVM C libraries
// and is only built with -tags llvm.
package llvmgen
