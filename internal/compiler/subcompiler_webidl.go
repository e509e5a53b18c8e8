// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"fmt"

	"github.com/kr/pretty"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

type SubCompilerWebIDL struct{}

func (self *SubCompilerWebIDL) CompileFile(ctx context.Context, r exc.Reporter, file idl.File, dump DumpOptions) ([]idl.Production, error) {
	lexer := NewLexerWebIDL(r)
	parser := NewParserWebIDL(r)
	lf, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	if dump.Tokens && dump.Out != nil {
		if err := dumpTokens(ctx, file, dump); err != nil {
			return nil, err
		}
	}
	productions, err := parser.Parse(ctx, lf)
	if err != nil {
		return nil, err
	}
	if dump.Tree && dump.Out != nil {
		_, _ = pretty.Fprintf(dump.Out, "%s\n%# v\n", file.Path(ctx), productions)
	}
	return productions, nil
}

// dumpTokens lexes the file on a separate stream so that the parser still
// sees every token. Lexing errors surface when the file is parsed.
func dumpTokens(ctx context.Context, file idl.File, dump DumpOptions) error {
	lf, err := NewLexerWebIDL(exc.NewReporter(nil)).Lex(ctx, file)
	if err != nil {
		return err
	}
	stream, err := lf.Tokens(ctx)
	if err != nil {
		return err
	}
	defer stream.Close(ctx)
	for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
		token := tok.Value()
		fmt.Fprintf(dump.Out, "%s:%s\t%-24s", lf.Path(ctx), token.Span.Start, token.Type)
		if token.Type != idl.TokenTypeNewline {
			fmt.Fprintf(dump.Out, "'%s'", token.Value)
		}
		fmt.Fprintln(dump.Out)
	}
	return nil
}
