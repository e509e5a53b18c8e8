package compiler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/fs"
	"gopkg.microglot.org/webidl.go/internal/idl"
	"gopkg.microglot.org/webidl.go/internal/target"
)

type Option func(c *compiler) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

// OptionWithCatalog sets the base extended attribute catalog. Catalog files
// named as compile targets are layered on top of it.
func OptionWithCatalog(catalog *Catalog) Option {
	return func(c *compiler) error {
		c.Catalog = catalog
		return nil
	}
}

func OptionWithLogger(logger *slog.Logger) Option {
	return func(c *compiler) error {
		c.Logger = logger
		return nil
	}
}

func OptionWithMaxConcurrency(n int) Option {
	return func(c *compiler) error {
		c.MaxConcurrency = n
		return nil
	}
}

func OptionWithTracer(tracer trace.Tracer) Option {
	return func(c *compiler) error {
		c.Tracer = tracer
		return nil
	}
}

// OptionWithDumpOutput sets where token and tree dumps are written.
func OptionWithDumpOutput(w io.Writer) Option {
	return func(c *compiler) error {
		c.DumpOut = w
		return nil
	}
}

func New(opts ...Option) (idl.Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.Catalog == nil {
		c.Catalog = DefaultCatalog()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
	if c.DumpOut == nil {
		c.DumpOut = os.Stdout
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers()
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             idl.FileSystem
	MaxConcurrency int
	Reporter       exc.Reporter
	Catalog        *Catalog
	Logger         *slog.Logger
	Tracer         trace.Tracer
	DumpOut        io.Writer
	SubCompilers   map[idl.FileKind]SubCompiler
}

// Compile parses every target concurrently and then builds one model from
// the results in target order. Any reported exception is returned as a
// MultiException alongside whatever model could be built.
func (self *compiler) Compile(ctx context.Context, req *idl.CompileRequest) (*idl.CompileResponse, error) {
	ctx, span := self.Tracer.Start(ctx, "Compiler.Compile", trace.WithAttributes(
		attribute.Int("webidl.targets", len(req.Files)),
	))
	defer span.End()

	files, catalogs, err := self.open(ctx, target.NormalizeAll(req.Files))
	if err != nil {
		return nil, err
	}
	catalog := self.Catalog
	for _, f := range catalogs {
		catalog = self.loadCatalog(ctx, catalog, f)
	}

	results, err := self.parseAll(ctx, files, DumpOptions{
		Tokens: req.DumpTokens,
		Tree:   req.DumpTree,
		Out:    &syncWriter{w: self.DumpOut},
	})
	if err != nil {
		return nil, err
	}
	if caught := self.Reporter.Reported(); len(caught) > 0 {
		span.SetStatus(codes.Error, "parse failed")
		return &idl.CompileResponse{}, MultiException(caught)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := NewSession(catalog, self.Reporter, self.Logger, SessionOptionWithTracer(self.Tracer))
	for _, productions := range results {
		if err := session.Add(productions...); err != nil {
			return nil, err
		}
	}
	model, err := session.Finish(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, err
	}
	self.Logger.Debug("compile complete",
		slog.Int("files", len(files)),
		slog.Int("catalogs", len(catalogs)),
		slog.Int("exceptions", self.Reporter.Len()),
	)
	if caught := self.Reporter.Reported(); len(caught) > 0 {
		span.SetStatus(codes.Error, "compile failed")
		return &idl.CompileResponse{Model: model}, MultiException(caught)
	}
	span.SetStatus(codes.Ok, "")
	return &idl.CompileResponse{Model: model}, nil
}

// open resolves targets into WebIDL files and catalog files. Files are
// returned in target order and a file reached through several targets is
// returned once.
func (self *compiler) open(ctx context.Context, targets []string) ([]idl.File, []idl.File, error) {
	files := []idl.File{}
	catalogs := []idl.File{}
	seen := map[string]bool{}
	for _, t := range targets {
		in, err := self.FS.Open(ctx, t)
		if err != nil {
			if e, ok := err.(exc.Exception); ok {
				_ = self.Reporter.Report(e)
				return nil, nil, MultiException(self.Reporter.Reported())
			}
			return nil, nil, err
		}
		for _, f := range in {
			if seen[f.Path(ctx)] {
				continue
			}
			seen[f.Path(ctx)] = true
			switch f.Kind(ctx) {
			case idl.FileKindWebIDL:
				files = append(files, f)
			case idl.FileKindCatalog:
				catalogs = append(catalogs, f)
			}
		}
	}
	return files, catalogs, nil
}

func (self *compiler) loadCatalog(ctx context.Context, base *Catalog, f idl.File) *Catalog {
	content, err := fs.ReadAll(ctx, f)
	if err != nil {
		_ = self.Reporter.Report(exc.Wrap(exc.Location{URI: f.Path(ctx)}, exc.CodeInvalidCatalog, err))
		return base
	}
	extended, err := base.Extend(bytes.NewReader(content))
	if err != nil {
		_ = self.Reporter.Report(exc.Wrap(exc.Location{URI: f.Path(ctx)}, exc.CodeInvalidCatalog, err))
		return base
	}
	return extended
}

// parseAll runs the sub-compilers with at most MaxConcurrency files in
// flight. Results are indexed by file so that their order does not depend on
// scheduling. Syntax errors are reported rather than returned so that every
// file is parsed.
func (self *compiler) parseAll(ctx context.Context, files []idl.File, dump DumpOptions) ([][]idl.Production, error) {
	results := make([][]idl.Production, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(self.MaxConcurrency)
	for x, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sc := self.SubCompilers[file.Kind(gctx)]
			if sc == nil {
				_ = self.Reporter.Report(exc.New(exc.Location{URI: file.Path(gctx)}, exc.CodeUnsupportedFileFormat, "unsupported file format"))
				return nil
			}
			productions, err := sc.CompileFile(gctx, self.Reporter, file, dump)
			if err != nil {
				// Exceptions from the front end have already been reported.
				if _, ok := err.(exc.Exception); ok {
					return nil
				}
				return err
			}
			results[x] = productions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// syncWriter serializes dump output from concurrently parsed files.
type syncWriter struct {
	lock sync.Mutex
	w    io.Writer
}

func (self *syncWriter) Write(p []byte) (int, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.w.Write(p)
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
