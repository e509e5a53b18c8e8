package compiler

import (
	"context"
	"io"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// DumpOptions selects debugging output written while a file is compiled.
type DumpOptions struct {
	Tokens bool
	Tree   bool
	Out    io.Writer
}

// SubCompiler turns one source file of a given kind into raw productions.
type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dump DumpOptions) ([]idl.Production, error)
}

func DefaultSubCompilers() map[idl.FileKind]SubCompiler {
	return map[idl.FileKind]SubCompiler{
		idl.FileKindWebIDL: &SubCompilerWebIDL{},
	}
}
