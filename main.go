package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"gopkg.microglot.org/webidl.go/internal/compiler"
	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/fs"
	"gopkg.microglot.org/webidl.go/internal/idl"
	"gopkg.microglot.org/webidl.go/internal/manifest"
)

type opts struct {
	Roots      []string
	Catalogs   []string
	DumpTokens bool
	DumpTree   bool
	ModelOut   string
	LogLevel   string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("webidlc", pflag.ExitOnError)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for targets.")
	flags.StringSliceVar(&op.Catalogs, "catalog", nil, "YAML extended attribute catalogs layered over the built in catalog.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream of each file")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the parsed productions of each file")
	flags.StringVar(&op.ModelOut, "model-out", "", "Writes a YAML manifest of the compiled model to FILE, or - for STDOUT")
	flags.StringVar(&op.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	var level slog.Level
	if err := level.UnmarshalText([]byte(op.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "no targets given")
		flags.Usage()
		os.Exit(2)
	}

	catalog, err := loadCatalogs(op.Catalogs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	f, err := compiler.NewDefaultFS(os.LookupEnv)
	if err != nil {
		panic(err)
	}

	mf := make(fs.FileSystemMulti, 0, len(op.Roots)+1)
	for _, root := range op.Roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			panic(errAbs.Error())
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			panic(err.Error())
		}
		mf = append(mf, rf)
	}
	mf = append(mf, f)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(os.LookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithCatalog(catalog),
		compiler.OptionWithLogger(logger),
	)
	if err != nil {
		panic(err)
	}

	out, err := c.Compile(ctx, &idl.CompileRequest{
		Files:      targets,
		DumpTokens: op.DumpTokens,
		DumpTree:   op.DumpTree,
	})
	if err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, d := range exc.Diagnostics(me) {
				fmt.Fprintln(os.Stderr, d.String())
			}
			logger.Info("compile failed",
				slog.Int("diagnostics", len(me)),
				slog.Int("cycles", exc.CountKind(me, exc.KindCycle)),
			)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if op.ModelOut != "" {
		b, err := manifest.Render(out.Model, targets)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		if op.ModelOut == "-" {
			_, _ = os.Stdout.Write(b)
			return
		}
		if err := os.WriteFile(op.ModelOut, b, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}
}

func loadCatalogs(paths []string) (*compiler.Catalog, error) {
	catalog := compiler.DefaultCatalog()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		extended, err := catalog.Extend(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		catalog = extended
	}
	return catalog, nil
}
