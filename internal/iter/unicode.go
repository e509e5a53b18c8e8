// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"gopkg.microglot.org/webidl.go/internal/idl"
	"gopkg.microglot.org/webidl.go/internal/optional"
)

// InvalidCodePoint is produced in place of each byte that is not part of a
// valid UTF-8 sequence. It lies outside the Unicode range so that it cannot
// be confused with an encoded U+FFFD.
const InvalidCodePoint idl.CodePoint = utf8.MaxRune + 1

// NewUnicodeFileBody converts a FileBody into an iterator of code points.
func NewUnicodeFileBody(b idl.FileBody) idl.Iterator[idl.CodePoint] {
	return NewUnicodeFileBodyCtx(context.Background(), b)
}

// NewUnicodeFileBodyCtx is the same as NewUnicodeFileBody but uses the given
// context for all read operations for cancellation or other purposes.
func NewUnicodeFileBodyCtx(ctx context.Context, b idl.FileBody) idl.Iterator[idl.CodePoint] {
	return newFileBody(ctx, b)
}

type fileBody struct {
	body   *fileBodyIO
	reader *bufio.Reader
	err    error
}

func newFileBody(ctx context.Context, b idl.FileBody) *fileBody {
	rc := &fileBodyIO{
		ctx:  ctx,
		body: b,
	}
	return &fileBody{
		body:   rc,
		reader: bufio.NewReader(rc),
	}
}

func (f *fileBody) Next(ctx context.Context) optional.Optional[idl.CodePoint] {
	if f.err != nil {
		return optional.None[idl.CodePoint]()
	}
	r, size, err := f.reader.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			f.err = err
		}
		return optional.None[idl.CodePoint]()
	}
	if r == utf8.RuneError && size == 1 {
		return optional.Some(InvalidCodePoint)
	}
	return optional.Some(idl.CodePoint(r))
}

// Close releases the body and returns the first read error, if any. Reaching
// the end of the body is not an error.
func (f *fileBody) Close(context.Context) error {
	errClose := f.body.Close()
	if f.err != nil {
		return f.err
	}
	return errClose
}

type fileBodyIO struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	if err != nil {
		return n, err
	}
	return n, nil
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
