// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

const tracerName = "gopkg.microglot.org/webidl.go/internal/compiler"

var (
	ErrSessionFinished = errors.New("session already finished")
)

// Session builds one model from a set of productions. Productions are added
// in declaration order, typically one Add or Parse call per file, and Finish
// runs the scope, merge, link and check phases. A Session is used once and
// by one goroutine at a time.
type Session struct {
	catalog  *Catalog
	reporter exc.Reporter
	logger   *slog.Logger
	tracer   trace.Tracer

	scope *scopeTable
	// start is the reporter length when the session was created. Exceptions
	// after it belong to this session.
	start    int
	failed   bool
	added    int
	finished bool
}

type SessionOption func(s *Session)

func SessionOptionWithTracer(tracer trace.Tracer) SessionOption {
	return func(s *Session) {
		s.tracer = tracer
	}
}

// NewSession creates a session. A nil catalog selects DefaultCatalog and a
// nil logger selects slog.Default.
func NewSession(catalog *Catalog, reporter exc.Reporter, logger *slog.Logger, opts ...SessionOption) *Session {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if reporter == nil {
		reporter = exc.NewReporter(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		catalog:  catalog,
		reporter: reporter,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		scope:    newScopeTable(),
		start:    reporter.Len(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add declares productions in the session scope. Duplicate definitions are
// reported and make Finish fail.
func (s *Session) Add(productions ...idl.Production) error {
	if s.finished {
		return ErrSessionFinished
	}
	before := s.reporter.Len()
	for _, p := range productions {
		_ = s.scope.declare(p, s.reporter)
	}
	s.added = s.added + len(productions)
	if s.reporter.Len() > before {
		s.failed = true
	}
	return nil
}

// Parse reads a WebIDL file and adds its productions. A file with a syntax
// error adds nothing and makes Finish fail.
func (s *Session) Parse(ctx context.Context, file idl.File) error {
	if s.finished {
		return ErrSessionFinished
	}
	before := s.reporter.Len()
	productions, err := (&SubCompilerWebIDL{}).CompileFile(ctx, s.reporter, file, DumpOptions{})
	if err != nil {
		s.failed = true
		return err
	}
	if s.reporter.Len() > before {
		s.failed = true
		return MultiException(s.reporter.Reported()[before:])
	}
	return s.Add(productions...)
}

// Finish builds the model. If scoping, parsing, merging or linking reported
// anything the model is nil. Problems found by the checker are returned
// together with the model. The error is a MultiException holding every
// exception reported since the session was created. Cancelling ctx stops
// Finish between phases with the context's error.
func (s *Session) Finish(ctx context.Context) (*idl.Model, error) {
	if s.finished {
		return nil, ErrSessionFinished
	}
	s.finished = true
	ctx, span := s.tracer.Start(ctx, "Session.Finish", trace.WithAttributes(
		attribute.Int("webidl.productions", s.added),
	))
	defer span.End()

	if s.failed {
		return nil, s.fail(span, "scope")
	}

	var productions []idl.Production
	if err := s.cancelled(ctx, span); err != nil {
		return nil, err
	}
	if !s.phase(ctx, "merge", func() {
		productions = merge(s.scope, s.reporter)
	}) {
		return nil, s.fail(span, "merge")
	}

	var model *idl.Model
	if err := s.cancelled(ctx, span); err != nil {
		return nil, err
	}
	if !s.phase(ctx, "link", func() {
		model = link(productions, s.scope, s.reporter)
	}) {
		return nil, s.fail(span, "link")
	}

	if err := s.cancelled(ctx, span); err != nil {
		return nil, err
	}
	if !s.phase(ctx, "check", func() {
		check(model, s.catalog, s.reporter)
	}) {
		return model, s.fail(span, "check")
	}
	span.SetStatus(codes.Ok, "")
	return model, nil
}

// phase runs one compile phase in its own span and reports whether it
// completed without reporting anything.
func (s *Session) phase(ctx context.Context, name string, f func()) bool {
	_, span := s.tracer.Start(ctx, "Session."+name)
	defer span.End()
	before := s.reporter.Len()
	f()
	reported := s.reporter.Len() - before
	span.SetAttributes(attribute.Int("webidl.reported", reported))
	s.logger.Debug("compile phase complete",
		slog.String("phase", name),
		slog.Int("reported", reported),
	)
	if reported > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d exceptions", reported))
		return false
	}
	return true
}

func (s *Session) cancelled(ctx context.Context, span trace.Span) error {
	err := ctx.Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancelled")
	}
	return err
}

func (s *Session) fail(span trace.Span, phase string) error {
	reported := s.reporter.Reported()
	caught := MultiException(reported[min(s.start, len(reported)):])
	if len(caught) == 0 {
		caught = MultiException{exc.New(exc.Location{}, exc.CodeUnknownFatal, fmt.Sprintf("%s phase failed", phase))}
	}
	span.RecordError(caught)
	span.SetStatus(codes.Error, phase+" failed")
	s.logger.Debug("compile stopped",
		slog.String("phase", phase),
		slog.Int("exceptions", len(caught)),
	)
	return caught
}
