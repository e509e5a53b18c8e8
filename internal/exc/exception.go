// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"

	"gopkg.microglot.org/webidl.go/internal/idl"
)

type Exception interface {
	error
	Code() string
	Kind() Kind
	// Subject is the qualified name of the offending identifier, if any.
	Subject() string
	Message() string
	Location() Location
}

type Location struct {
	idl.Location
	URI string
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.URI, l.Line, l.Column)
}

type exc struct {
	code     string
	subject  string
	message  string
	location Location
}

func (e *exc) Error() string {
	if e.subject != "" {
		return fmt.Sprintf("%s:%d:%d -- %s: %s: %s", e.location.URI, e.location.Line, e.location.Column, e.code, e.subject, e.message)
	}
	return fmt.Sprintf("%s:%d:%d -- %s: %s", e.location.URI, e.location.Line, e.location.Column, e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Kind() Kind {
	return KindOf(e.code)
}

func (e *exc) Subject() string {
	return e.subject
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

// NewSubject creates an exception about a named definition or member.
func NewSubject(location Location, code string, subject string, message string) Exception {
	return &exc{
		location: location,
		subject:  subject,
		message:  message,
		code:     code,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: NewSubject(location, code, e.Subject(), e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}
