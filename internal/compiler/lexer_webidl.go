// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"strings"
	"unicode/utf8"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
	"gopkg.microglot.org/webidl.go/internal/iter"
	"gopkg.microglot.org/webidl.go/internal/optional"
)

const (
	lexerWebIDLLookahead = 8
)

// LexerWebIDL tokenizes WebIDL source. Whitespace, newlines and comments are
// emitted as tokens so that token dumps reflect the whole file. The parser
// filters them out.
type LexerWebIDL struct {
	reporter exc.Reporter
}

func NewLexerWebIDL(reporter exc.Reporter) *LexerWebIDL {
	return &LexerWebIDL{reporter: reporter}
}

func (self *LexerWebIDL) Lex(ctx context.Context, f idl.File) (idl.LexerFile, error) {
	return &lexerFileWebIDL{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileWebIDL struct {
	idl.File
	reporter exc.Reporter
}

func (self *lexerFileWebIDL) Tokens(ctx context.Context) (idl.Iterator[*idl.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerWebIDLLookahead)
	return &lexerFileWebIDLTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
	}, nil
}

type lexerFileWebIDLTokens struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	// offset is the byte offset of the most recently consumed code point.
	offset     int64
	nextOffset int64
	// lineBreak is set when the most recently consumed code point ended a
	// line. The line counter advances when the following point is consumed.
	lineBreak bool
	done      bool
}

func (self *lexerFileWebIDLTokens) Next(ctx context.Context) optional.Optional[*idl.Token] {
	if self.done {
		return optional.None[*idl.Token]()
	}
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		start := self.here()
		switch {
		case point.Value() == iter.InvalidCodePoint:
			return self.fail(exc.CodeUnsupportedFileFormat, "invalid UTF-8 encoding")
		case r == 0xFEFF:
			if self.offset != 0 {
				return self.fail(exc.CodeUnsupportedFileFormat, "invalid UTF-8 BOM location")
			}
			continue
		case r == 0x00:
			// A null byte is not valid WebIDL. Treat it as the end of input.
			return self.stop()
		case r == ' ' || r == '\t':
			return self.readWhitespace(ctx, start, r)
		case r == '\n':
			return self.token(start, idl.TokenTypeNewline, "\n")
		case r == '\r':
			if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.token(start, idl.TokenTypeNewline, "\r\n")
			}
			return self.token(start, idl.TokenTypeNewline, "\r")
		case r == '"':
			return self.readString(ctx, start)
		case r == '/':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && n.Value() == '/' {
				_ = self.next(ctx)
				return self.readCommentLine(ctx, start)
			}
			if n.IsPresent() && n.Value() == '*' {
				_ = self.next(ctx)
				return self.readCommentBlock(ctx, start)
			}
			return self.token(start, idl.TokenTypeOther, "/")
		case r == '-':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && (isDigit(rune(n.Value())) || n.Value() == '.') {
				return self.readNumber(ctx, start, "-")
			}
			if n.IsPresent() && isLetter(rune(n.Value())) {
				return self.readIdentifier(ctx, start, "-")
			}
			return self.token(start, idl.TokenTypeMinus, "-")
		case r == '.':
			n1 := self.body.Lookahead(ctx, 1)
			n2 := self.body.Lookahead(ctx, 2)
			if n1.IsPresent() && n2.IsPresent() && n1.Value() == '.' && n2.Value() == '.' {
				_ = self.next(ctx)
				_ = self.next(ctx)
				return self.token(start, idl.TokenTypeEllipsis, "...")
			}
			if n1.IsPresent() && isDigit(rune(n1.Value())) {
				return self.readNumber(ctx, start, ".")
			}
			return self.token(start, idl.TokenTypeOther, ".")
		case isDigit(r):
			return self.readNumber(ctx, start, string(r))
		case r == '_' || isLetter(r):
			return self.readIdentifier(ctx, start, string(r))
		}
		if t, ok := punctuation[r]; ok {
			return self.token(start, t, string(r))
		}
		return self.token(start, idl.TokenTypeOther, string(r))
	}
	return self.stop()
}

var punctuation = map[rune]idl.TokenType{
	'{': idl.TokenTypeCurlyOpen,
	'}': idl.TokenTypeCurlyClose,
	'(': idl.TokenTypeParenOpen,
	')': idl.TokenTypeParenClose,
	'[': idl.TokenTypeSquareOpen,
	']': idl.TokenTypeSquareClose,
	'<': idl.TokenTypeAngleOpen,
	'>': idl.TokenTypeAngleClose,
	';': idl.TokenTypeSemicolon,
	',': idl.TokenTypeComma,
	':': idl.TokenTypeColon,
	'=': idl.TokenTypeEqual,
	'?': idl.TokenTypeQuestion,
}

func (self *lexerFileWebIDLTokens) readWhitespace(ctx context.Context, start idl.Location, first rune) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || (n.Value() != ' ' && n.Value() != '\t') {
			return self.token(start, idl.TokenTypeWhitespace, builder.String())
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

func (self *lexerFileWebIDLTokens) readIdentifier(ctx context.Context, start idl.Location, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			return self.token(start, idl.TokenTypeIdentifier, builder.String())
		}
		r := rune(n.Value())
		if isLetter(r) || isDigit(r) || r == '_' || r == '-' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(r)
			continue
		}
		return self.token(start, idl.TokenTypeIdentifier, builder.String())
	}
}

// readString reads a string literal. WebIDL strings have no escape sequences
// and end at the next double quote.
func (self *lexerFileWebIDLTokens) readString(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	for {
		n := self.next(ctx)
		if !n.IsPresent() {
			return self.fail(exc.CodeUnexpectedEOF, "EOF while reading string literal")
		}
		if n.Value() == '"' {
			return self.token(start, idl.TokenTypeString, builder.String())
		}
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

func (self *lexerFileWebIDLTokens) readCommentLine(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString("//")
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || n.Value() == '\n' || n.Value() == '\r' {
			return self.token(start, idl.TokenTypeComment, builder.String())
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
}

func (self *lexerFileWebIDLTokens) readCommentBlock(ctx context.Context, start idl.Location) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString("/*")
	for {
		n := self.next(ctx)
		if !n.IsPresent() {
			return self.fail(exc.CodeUnexpectedEOF, "EOF while reading comment block")
		}
		_, _ = builder.WriteRune(rune(n.Value()))
		if n.Value() != '*' {
			continue
		}
		if nn := self.body.Lookahead(ctx, 1); nn.IsPresent() && nn.Value() == '/' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune('/')
			return self.token(start, idl.TokenTypeComment, builder.String())
		}
	}
}

// readNumber reads integer and decimal literals:
//
//	integer  -?([1-9][0-9]*|0[Xx][0-9A-Fa-f]+|0[0-7]*)
//	decimal  -?(([0-9]+\.[0-9]*|[0-9]*\.[0-9]+)([Ee][+-]?[0-9]+)?|[0-9]+[Ee][+-]?[0-9]+)
func (self *lexerFileWebIDLTokens) readNumber(ctx context.Context, start idl.Location, prefix string) optional.Optional[*idl.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	if prefix == "-" {
		n := self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	text := builder.String()
	digits := strings.TrimPrefix(text, "-")
	if digits == "0" {
		if n := self.body.Lookahead(ctx, 1); n.IsPresent() && (n.Value() == 'x' || n.Value() == 'X') {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			count := self.readWhile(ctx, &builder, isHexDigit)
			if count == 0 {
				return self.fail(exc.CodeInvalidNumber, "hex literal requires at least one digit")
			}
			return self.token(start, idl.TokenTypeInteger, builder.String())
		}
	}
	count := self.readWhile(ctx, &builder, isDigit)
	decimal := digits == "."
	if decimal && count == 0 {
		return self.fail(exc.CodeInvalidNumber, "decimal literal requires at least one digit")
	}
	if !decimal {
		if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '.' {
			if nn := self.body.Lookahead(ctx, 2); !nn.IsPresent() || nn.Value() != '.' {
				_ = self.next(ctx)
				_, _ = builder.WriteRune('.')
				decimal = true
			}
		}
	}
	if decimal && digits != "." {
		_ = self.readWhile(ctx, &builder, isDigit)
	}
	if n := self.body.Lookahead(ctx, 1); n.IsPresent() && (n.Value() == 'e' || n.Value() == 'E') {
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
		if sign := self.body.Lookahead(ctx, 1); sign.IsPresent() && (sign.Value() == '+' || sign.Value() == '-') {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(sign.Value()))
		}
		if self.readWhile(ctx, &builder, isDigit) == 0 {
			return self.fail(exc.CodeInvalidNumber, "exponent requires at least one digit")
		}
		decimal = true
	}
	if decimal {
		return self.token(start, idl.TokenTypeDecimal, builder.String())
	}
	value := strings.TrimPrefix(builder.String(), "-")
	if len(value) > 1 && value[0] == '0' {
		for _, r := range value[1:] {
			if r < '0' || r > '7' {
				return self.fail(exc.CodeInvalidNumber, "invalid digit in octal literal "+builder.String())
			}
		}
	}
	return self.token(start, idl.TokenTypeInteger, builder.String())
}

func (self *lexerFileWebIDLTokens) readWhile(ctx context.Context, builder *strings.Builder, accept func(rune) bool) int {
	count := 0
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || !accept(rune(n.Value())) {
			return count
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
		count = count + 1
	}
}

func (self *lexerFileWebIDLTokens) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	n := self.body.Next(ctx)
	if !n.IsPresent() {
		return n
	}
	if self.lineBreak {
		self.line = self.line + 1
		self.col = 0
		self.lineBreak = false
	}
	r := rune(n.Value())
	self.col = self.col + 1
	self.offset = self.nextOffset
	if n.Value() == iter.InvalidCodePoint {
		self.nextOffset = self.nextOffset + 1
	} else {
		self.nextOffset = self.nextOffset + int64(utf8.RuneLen(r))
	}
	switch r {
	case '\n':
		self.lineBreak = true
	case '\r':
		if nn := self.body.Lookahead(ctx, 1); !nn.IsPresent() || nn.Value() != '\n' {
			self.lineBreak = true
		}
	}
	return n
}

func (self *lexerFileWebIDLTokens) here() idl.Location {
	return idl.Location{Line: self.line, Column: self.col, Offset: self.offset}
}

func (self *lexerFileWebIDLTokens) token(start idl.Location, kind idl.TokenType, value string) optional.Optional[*idl.Token] {
	return optional.Some(&idl.Token{
		Span:  idl.Span{Start: start, End: self.here()},
		Type:  kind,
		Value: value,
	})
}

func (self *lexerFileWebIDLTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: self.here()}, code, message)
}

// fail reports a lexical error and ends the token stream.
func (self *lexerFileWebIDLTokens) fail(code string, message string) optional.Optional[*idl.Token] {
	_ = self.reporter.Report(self.exc(code, message))
	return self.stop()
}

func (self *lexerFileWebIDLTokens) stop() optional.Optional[*idl.Token] {
	self.done = true
	return optional.None[*idl.Token]()
}

func (self *lexerFileWebIDLTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
