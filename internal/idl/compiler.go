// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.microglot.org/webidl.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindWebIDL
	FileKindCatalog
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindWebIDL:
		return "webidl"
	case FileKindCatalog:
		return "catalog"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	Files      []string
	DumpTokens bool
	DumpTree   bool
}

type CompileResponse struct {
	Model *Model
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

// Parser turns a token stream into raw, unlinked productions in declaration
// order.
type Parser interface {
	Parse(ctx context.Context, f LexerFile) ([]Production, error)
}

// Location is a position in a source file. Line and Column are 1-based and
// Offset is the byte offset from the start of the file.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span covers a token. End is the position of the token's final code point.
type Span struct {
	Start Location
	End   Location
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
}

type TokenType uint16

const (
	TokenTypeUnknown     TokenType = 0
	TokenTypeIdentifier  TokenType = 1
	TokenTypeInteger     TokenType = 2
	TokenTypeDecimal     TokenType = 3
	TokenTypeString      TokenType = 4
	TokenTypeComment     TokenType = 5
	TokenTypeWhitespace  TokenType = 6
	TokenTypeNewline     TokenType = 7
	TokenTypeCurlyOpen   TokenType = 8
	TokenTypeCurlyClose  TokenType = 9
	TokenTypeParenOpen   TokenType = 10
	TokenTypeParenClose  TokenType = 11
	TokenTypeSquareOpen  TokenType = 12
	TokenTypeSquareClose TokenType = 13
	TokenTypeAngleOpen   TokenType = 14
	TokenTypeAngleClose  TokenType = 15
	TokenTypeSemicolon   TokenType = 16
	TokenTypeComma       TokenType = 17
	TokenTypeColon       TokenType = 18
	TokenTypeEqual       TokenType = 19
	TokenTypeQuestion    TokenType = 20
	TokenTypeEllipsis    TokenType = 21
	TokenTypeMinus       TokenType = 22
	TokenTypeOther       TokenType = 23
	TokenTypeEOF         TokenType = 24
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:     "unknown",
	TokenTypeIdentifier:  "identifier",
	TokenTypeInteger:     "integer",
	TokenTypeDecimal:     "decimal",
	TokenTypeString:      "string",
	TokenTypeComment:     "comment",
	TokenTypeWhitespace:  "whitespace",
	TokenTypeNewline:     "newline",
	TokenTypeCurlyOpen:   "'{'",
	TokenTypeCurlyClose:  "'}'",
	TokenTypeParenOpen:   "'('",
	TokenTypeParenClose:  "')'",
	TokenTypeSquareOpen:  "'['",
	TokenTypeSquareClose: "']'",
	TokenTypeAngleOpen:   "'<'",
	TokenTypeAngleClose:  "'>'",
	TokenTypeSemicolon:   "';'",
	TokenTypeComma:       "','",
	TokenTypeColon:       "':'",
	TokenTypeEqual:       "'='",
	TokenTypeQuestion:    "'?'",
	TokenTypeEllipsis:    "'...'",
	TokenTypeMinus:       "'-'",
	TokenTypeOther:       "other",
	TokenTypeEOF:         "EOF",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}
