// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"fmt"
	"strings"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
	"gopkg.microglot.org/webidl.go/internal/iter"
	"gopkg.microglot.org/webidl.go/internal/optional"
)

const (
	parserWebIDLLookahead = 4
)

// ParserWebIDL produces raw, unlinked productions from a WebIDL token stream.
// Parsing stops at the first syntax error and the file yields no productions.
type ParserWebIDL struct {
	reporter exc.Reporter
}

func NewParserWebIDL(reporter exc.Reporter) *ParserWebIDL {
	return &ParserWebIDL{reporter: reporter}
}

func (self *ParserWebIDL) Parse(ctx context.Context, f idl.LexerFile) ([]idl.Production, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		e, ok := err.(exc.Exception)
		if !ok {
			e = exc.WrapUnknown(exc.Location{URI: f.Path(ctx)}, err)
		}
		_ = self.reporter.Report(e)
		return nil, e
	}
	defer ft.Close(ctx)

	filtered := iter.NewIteratorFilter(ft, idl.Filter[*idl.Token](iter.FilterFunc[*idl.Token](func(ctx context.Context, t *idl.Token) bool {
		switch t.Type {
		case idl.TokenTypeComment, idl.TokenTypeWhitespace, idl.TokenTypeNewline:
			return false
		default:
			return true
		}
	})))
	p := &parserWebIDLTokens{
		reporter: self.reporter,
		ctx:      ctx,
		uri:      f.Path(ctx),
		tokens:   iter.NewLookahead(filtered, parserWebIDLLookahead),
		loc:      idl.Location{Line: 1, Column: 1},
	}
	productions := p.parseDefinitions()
	if p.err != nil {
		return nil, p.err
	}
	return productions, nil
}

type parserWebIDLTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	// loc is the end of the last consumed token. It locates EOF errors.
	loc    idl.Location
	tokens idl.Lookahead[*idl.Token]
	// err is sticky. Once set, every helper becomes a no-op so that callers
	// can unwind without checking each step.
	err exc.Exception
	// typeAttrs collects extended attributes written on types. The owner of
	// the type (argument, attribute, member) claims them after parsing it.
	typeAttrs idl.ExtendedAttributes
}

func (p *parserWebIDLTokens) ok() bool {
	return p.err == nil
}

func (p *parserWebIDLTokens) report(code string, message string) {
	if p.err != nil {
		return
	}
	loc := p.loc
	if t := p.peek(); t != nil {
		loc = t.Span.Start
	}
	e := exc.New(exc.Location{URI: p.uri, Location: loc}, code, message)
	_ = p.reporter.Report(e)
	p.err = e
}

func (p *parserWebIDLTokens) unexpected(expecting string) {
	t := p.peek()
	if t == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF (expecting %s)", expecting))
		return
	}
	p.report(exc.CodeSyntaxError, fmt.Sprintf("unexpected %s %q (expecting %s)", t.Type, t.Value, expecting))
}

func (p *parserWebIDLTokens) advance() *idl.Token {
	t := p.peek()
	if t != nil {
		p.loc = t.Span.End
	}
	_ = p.tokens.Next(p.ctx)
	return t
}

func (p *parserWebIDLTokens) peekN(n uint8) *idl.Token {
	if p.err != nil {
		return nil
	}
	maybeToken := p.tokens.Lookahead(p.ctx, n)
	if !maybeToken.IsPresent() {
		return nil
	}
	return maybeToken.Value()
}

func (p *parserWebIDLTokens) peek() *idl.Token {
	return p.peekN(0)
}

func (p *parserWebIDLTokens) peekIs(kind idl.TokenType) bool {
	t := p.peek()
	return t != nil && t.Type == kind
}

func (p *parserWebIDLTokens) peekKeyword(n uint8, keyword string) bool {
	t := p.peekN(n)
	return t != nil && t.Type == idl.TokenTypeIdentifier && t.Value == keyword
}

// acceptKeyword consumes the next token if it is the given keyword.
func (p *parserWebIDLTokens) acceptKeyword(keyword string) bool {
	if p.peekKeyword(0, keyword) {
		p.advance()
		return true
	}
	return false
}

func (p *parserWebIDLTokens) accept(kind idl.TokenType) bool {
	if p.peekIs(kind) {
		p.advance()
		return true
	}
	return false
}

// expectOne reports an error if the current token is not of the expected
// type. It advances on success.
func (p *parserWebIDLTokens) expectOne(kind idl.TokenType) *idl.Token {
	if !p.ok() {
		return nil
	}
	if p.peekIs(kind) {
		return p.advance()
	}
	p.unexpected(kind.String())
	return nil
}

func (p *parserWebIDLTokens) expectKeyword(keyword string) bool {
	if !p.ok() {
		return false
	}
	if p.acceptKeyword(keyword) {
		return true
	}
	p.unexpected(fmt.Sprintf("%q", keyword))
	return false
}

// expectName reads an identifier. A single leading underscore escapes
// identifiers that would otherwise be keywords and is not part of the name.
func (p *parserWebIDLTokens) expectName() (string, idl.Location) {
	t := p.expectOne(idl.TokenTypeIdentifier)
	if t == nil {
		return "", p.loc
	}
	return strings.TrimPrefix(t.Value, "_"), t.Span.Start
}

// Definitions = { ExtendedAttributeList Definition }
func (p *parserWebIDLTokens) parseDefinitions() []idl.Production {
	productions := []idl.Production{}
	for p.ok() && p.peek() != nil {
		attrs := p.parseExtendedAttributeList()
		production := p.parseDefinition(attrs)
		if production == nil {
			break
		}
		productions = append(productions, production)
	}
	return productions
}

func (p *parserWebIDLTokens) declaration(name string, loc idl.Location, partial bool, attrs idl.ExtendedAttributes) idl.Declaration {
	return idl.Declaration{
		Identifier:         idl.NewIdentifier(nil, name),
		Partial:            partial,
		ExtendedAttributes: attrs,
		URI:                p.uri,
		Location:           loc,
	}
}

func (p *parserWebIDLTokens) parseDefinition(attrs idl.ExtendedAttributes) idl.Production {
	t := p.peek()
	if t == nil {
		p.unexpected("a definition")
		return nil
	}
	if t.Type != idl.TokenTypeIdentifier {
		p.unexpected("a definition")
		return nil
	}
	switch t.Value {
	case "callback":
		p.advance()
		if p.acceptKeyword("interface") {
			name, loc := p.expectName()
			decl := p.declaration(name, loc, false, attrs)
			members := p.parseMembers(decl.MemberScope())
			p.expectOne(idl.TokenTypeSemicolon)
			return p.done(&idl.CallbackInterface{Declaration: decl, Members: members})
		}
		return p.parseCallbackRest(attrs)
	case "interface":
		p.advance()
		return p.parseInterfaceRest(attrs, false)
	case "partial":
		p.advance()
		switch {
		case p.acceptKeyword("interface"):
			return p.parseInterfaceRest(attrs, true)
		case p.acceptKeyword("dictionary"):
			return p.parseDictionaryRest(attrs, true)
		case p.acceptKeyword("namespace"):
			return p.parseNamespaceRest(attrs, true)
		}
		p.unexpected(`"interface", "dictionary" or "namespace"`)
		return nil
	case "namespace":
		p.advance()
		return p.parseNamespaceRest(attrs, false)
	case "dictionary":
		p.advance()
		return p.parseDictionaryRest(attrs, false)
	case "enum":
		p.advance()
		return p.parseEnumRest(attrs)
	case "typedef":
		p.advance()
		typ := p.parseTypeWithExtendedAttributes()
		name, loc := p.expectName()
		p.expectOne(idl.TokenTypeSemicolon)
		decl := p.declaration(name, loc, false, append(attrs, p.claimTypeAttrs()...))
		return p.done(&idl.Typedef{Declaration: decl, Type: typ})
	}
	if p.peekKeyword(1, "includes") || p.peekKeyword(1, "implements") {
		includer, loc := p.expectName()
		legacy := p.peekKeyword(0, "implements")
		p.advance()
		included, _ := p.expectName()
		p.expectOne(idl.TokenTypeSemicolon)
		decl := p.declaration(includer, loc, false, attrs)
		return p.done(&idl.IncludesStatement{Declaration: decl, Includer: includer, Included: included, Legacy: legacy})
	}
	p.unexpected("a definition")
	return nil
}

func (p *parserWebIDLTokens) done(production idl.Production) idl.Production {
	if !p.ok() {
		return nil
	}
	return production
}

// CallbackRest = identifier "=" Type "(" ArgumentList ")" ";"
func (p *parserWebIDLTokens) parseCallbackRest(attrs idl.ExtendedAttributes) idl.Production {
	name, loc := p.expectName()
	p.expectOne(idl.TokenTypeEqual)
	ret := p.parseType()
	args := p.parseArgumentList()
	p.expectOne(idl.TokenTypeSemicolon)
	decl := p.declaration(name, loc, false, append(attrs, p.claimTypeAttrs()...))
	return p.done(&idl.Callback{Declaration: decl, Return: ret, Arguments: args})
}

// InterfaceRest = [ "mixin" ] identifier [ ":" identifier ] "{" Members "}" ";"
//
//	| identifier ";"
func (p *parserWebIDLTokens) parseInterfaceRest(attrs idl.ExtendedAttributes, partial bool) idl.Production {
	mixin := false
	if p.peekKeyword(0, "mixin") && p.peekN(1) != nil && p.peekN(1).Type == idl.TokenTypeIdentifier {
		p.advance()
		mixin = true
	}
	name, loc := p.expectName()
	decl := p.declaration(name, loc, partial, attrs)
	if !partial && !mixin && p.accept(idl.TokenTypeSemicolon) {
		return p.done(&idl.ExternalInterface{Declaration: decl})
	}
	inherits := ""
	if !mixin && !partial && p.accept(idl.TokenTypeColon) {
		inherits, _ = p.expectName()
	}
	members := p.parseMembers(decl.MemberScope())
	p.expectOne(idl.TokenTypeSemicolon)
	return p.done(&idl.Interface{Declaration: decl, Inherits: inherits, Mixin: mixin, Members: members})
}

func (p *parserWebIDLTokens) parseNamespaceRest(attrs idl.ExtendedAttributes, partial bool) idl.Production {
	name, loc := p.expectName()
	decl := p.declaration(name, loc, partial, attrs)
	members := p.parseMembers(decl.MemberScope())
	p.expectOne(idl.TokenTypeSemicolon)
	return p.done(&idl.Namespace{Declaration: decl, Members: members})
}

// DictionaryRest = identifier [ ":" identifier ] "{" DictionaryMembers "}" ";"
func (p *parserWebIDLTokens) parseDictionaryRest(attrs idl.ExtendedAttributes, partial bool) idl.Production {
	name, loc := p.expectName()
	decl := p.declaration(name, loc, partial, attrs)
	inherits := ""
	if !partial && p.accept(idl.TokenTypeColon) {
		inherits, _ = p.expectName()
	}
	p.expectOne(idl.TokenTypeCurlyOpen)
	members := []*idl.DictionaryMember{}
	scope := decl.MemberScope()
	for p.ok() && !p.peekIs(idl.TokenTypeCurlyClose) {
		member := p.parseDictionaryMember(scope)
		if member == nil {
			break
		}
		members = append(members, member)
	}
	p.expectOne(idl.TokenTypeCurlyClose)
	p.expectOne(idl.TokenTypeSemicolon)
	return p.done(&idl.Dictionary{Declaration: decl, Inherits: inherits, Members: members})
}

// DictionaryMember = ExtendedAttributeList ( "required" TypeWithExtendedAttributes identifier ";"
//
//	| Type identifier [ Default ] ";" )
func (p *parserWebIDLTokens) parseDictionaryMember(scope *idl.Scope) *idl.DictionaryMember {
	attrs := p.parseExtendedAttributeList()
	required := p.acceptKeyword("required")
	var typ idl.Type
	if required {
		typ = p.parseTypeWithExtendedAttributes()
	} else {
		typ = p.parseType()
	}
	name, loc := p.expectName()
	def := p.parseDefault()
	p.expectOne(idl.TokenTypeSemicolon)
	if !p.ok() {
		return nil
	}
	return &idl.DictionaryMember{
		MemberDeclaration: idl.MemberDeclaration{
			Identifier:         idl.NewIdentifier(scope, name),
			ExtendedAttributes: append(attrs, p.claimTypeAttrs()...),
			Location:           loc,
		},
		Type:     typ,
		Default:  def,
		Required: required,
	}
}

// EnumRest = identifier "{" string { "," string } [ "," ] "}" ";"
func (p *parserWebIDLTokens) parseEnumRest(attrs idl.ExtendedAttributes) idl.Production {
	name, loc := p.expectName()
	p.expectOne(idl.TokenTypeCurlyOpen)
	values := []string{}
	for p.ok() {
		t := p.expectOne(idl.TokenTypeString)
		if t == nil {
			break
		}
		values = append(values, t.Value)
		if !p.accept(idl.TokenTypeComma) || p.peekIs(idl.TokenTypeCurlyClose) {
			break
		}
	}
	p.expectOne(idl.TokenTypeCurlyClose)
	p.expectOne(idl.TokenTypeSemicolon)
	return p.done(&idl.Enum{Declaration: p.declaration(name, loc, false, attrs), Values: values})
}

// Members = "{" { ExtendedAttributeList Member } "}"
func (p *parserWebIDLTokens) parseMembers(scope *idl.Scope) []idl.Member {
	p.expectOne(idl.TokenTypeCurlyOpen)
	members := []idl.Member{}
	for p.ok() && !p.peekIs(idl.TokenTypeCurlyClose) {
		attrs := p.parseExtendedAttributeList()
		member := p.parseMember(scope, attrs)
		if member == nil {
			break
		}
		members = append(members, member)
	}
	p.expectOne(idl.TokenTypeCurlyClose)
	if !p.ok() {
		return nil
	}
	return members
}

func (p *parserWebIDLTokens) memberDecl(scope *idl.Scope, name string, attrs idl.ExtendedAttributes, loc idl.Location) idl.MemberDeclaration {
	return idl.MemberDeclaration{
		Identifier:         idl.NewIdentifier(scope, name),
		ExtendedAttributes: append(attrs, p.claimTypeAttrs()...),
		Location:           loc,
	}
}

func (p *parserWebIDLTokens) parseMember(scope *idl.Scope, attrs idl.ExtendedAttributes) idl.Member {
	t := p.peek()
	if t == nil || t.Type != idl.TokenTypeIdentifier {
		p.unexpected("a member")
		return nil
	}
	start := t.Span.Start
	switch t.Value {
	case "const":
		p.advance()
		typ := p.parseType()
		name, loc := p.expectName()
		p.expectOne(idl.TokenTypeEqual)
		value := p.parseConstValue()
		p.expectOne(idl.TokenTypeSemicolon)
		if !p.ok() {
			return nil
		}
		return &idl.Constant{MemberDeclaration: p.memberDecl(scope, name, attrs, loc), Type: typ, Value: value}
	case "constructor":
		if p.peekN(1) != nil && p.peekN(1).Type == idl.TokenTypeParenOpen {
			p.advance()
			args := p.parseArgumentList()
			p.expectOne(idl.TokenTypeSemicolon)
			if !p.ok() {
				return nil
			}
			return &idl.Operation{
				MemberDeclaration: p.memberDecl(scope, "constructor", attrs, start),
				Special:           idl.SpecialConstructor,
				Arguments:         args,
			}
		}
	case "stringifier":
		p.advance()
		if p.peekIs(idl.TokenTypeSemicolon) {
			p.advance()
			return &idl.Operation{
				MemberDeclaration: p.memberDecl(scope, "", attrs, start),
				Special:           idl.SpecialStringifier,
				Return:            &idl.PrimitiveType{Kind: idl.PrimitiveDOMString},
			}
		}
		if p.peekKeyword(0, "attribute") || p.peekKeyword(0, "readonly") {
			a := p.parseAttributeRest(scope, attrs, start)
			if a != nil {
				a.Stringifier = true
			}
			return nilIfAttribute(a)
		}
		op := p.parseOperationRest(scope, attrs, start, idl.SpecialStringifier)
		return nilIfOperation(op)
	case "static":
		p.advance()
		if p.peekKeyword(0, "attribute") || p.peekKeyword(0, "readonly") {
			a := p.parseAttributeRest(scope, attrs, start)
			if a != nil {
				a.Static = true
				a.StaticKeyword = true
			}
			return nilIfAttribute(a)
		}
		op := p.parseOperationRest(scope, attrs, start, idl.SpecialNone)
		if op != nil {
			op.Static = true
			op.StaticKeyword = true
		}
		return nilIfOperation(op)
	case "inherit":
		p.advance()
		a := p.parseAttributeRest(scope, attrs, start)
		if a != nil {
			a.Inherit = true
		}
		return nilIfAttribute(a)
	case "readonly":
		if p.peekKeyword(1, "maplike") || p.peekKeyword(1, "setlike") {
			p.advance()
			it := p.parseIterableRest(scope, attrs, start, false)
			if it != nil {
				it.Readonly = true
			}
			return nilIfIterable(it)
		}
		return nilIfAttribute(p.parseAttributeRest(scope, attrs, start))
	case "attribute":
		return nilIfAttribute(p.parseAttributeRest(scope, attrs, start))
	case "getter", "setter", "deleter":
		special := map[string]idl.Special{
			"getter":  idl.SpecialGetter,
			"setter":  idl.SpecialSetter,
			"deleter": idl.SpecialDeleter,
		}[t.Value]
		p.advance()
		return nilIfOperation(p.parseOperationRest(scope, attrs, start, special))
	case "iterable", "maplike", "setlike":
		if p.peekN(1) != nil && p.peekN(1).Type == idl.TokenTypeAngleOpen {
			return nilIfIterable(p.parseIterableRest(scope, attrs, start, false))
		}
	case "async":
		if p.peekKeyword(1, "iterable") {
			p.advance()
			return nilIfIterable(p.parseIterableRest(scope, attrs, start, true))
		}
	}
	return nilIfOperation(p.parseOperationRest(scope, attrs, start, idl.SpecialNone))
}

// The helpers below keep typed nil pointers from becoming non-nil
// idl.Member interface values.
func nilIfAttribute(a *idl.Attribute) idl.Member {
	if a == nil {
		return nil
	}
	return a
}

func nilIfOperation(o *idl.Operation) idl.Member {
	if o == nil {
		return nil
	}
	return o
}

func nilIfIterable(i *idl.Iterable) idl.Member {
	if i == nil {
		return nil
	}
	return i
}

// AttributeRest = [ "readonly" ] "attribute" TypeWithExtendedAttributes AttributeName ";"
func (p *parserWebIDLTokens) parseAttributeRest(scope *idl.Scope, attrs idl.ExtendedAttributes, start idl.Location) *idl.Attribute {
	readonly := p.acceptKeyword("readonly")
	p.expectKeyword("attribute")
	typ := p.parseTypeWithExtendedAttributes()
	name, loc := p.expectName()
	p.expectOne(idl.TokenTypeSemicolon)
	if !p.ok() {
		return nil
	}
	return &idl.Attribute{
		MemberDeclaration: p.memberDecl(scope, name, attrs, loc),
		Type:              typ,
		Readonly:          readonly,
	}
}

// OperationRest = Type [ identifier ] "(" ArgumentList ")" ";"
func (p *parserWebIDLTokens) parseOperationRest(scope *idl.Scope, attrs idl.ExtendedAttributes, start idl.Location, special idl.Special) *idl.Operation {
	ret := p.parseType()
	name := ""
	loc := start
	if p.peekIs(idl.TokenTypeIdentifier) {
		name, loc = p.expectName()
	} else if special == idl.SpecialNone && p.ok() {
		p.unexpected("an operation name")
		return nil
	}
	args := p.parseArgumentList()
	p.expectOne(idl.TokenTypeSemicolon)
	if !p.ok() {
		return nil
	}
	return &idl.Operation{
		MemberDeclaration: p.memberDecl(scope, name, attrs, loc),
		Special:           special,
		Arguments:         args,
		Return:            ret,
	}
}

// IterableRest = [ "async" ] ( "iterable" | "maplike" | "setlike" ) "<" Type [ "," Type ] ">" [ "(" ArgumentList ")" ] ";"
func (p *parserWebIDLTokens) parseIterableRest(scope *idl.Scope, attrs idl.ExtendedAttributes, start idl.Location, async bool) *idl.Iterable {
	t := p.expectOne(idl.TokenTypeIdentifier)
	if t == nil {
		return nil
	}
	kind := idl.IterableKindIterable
	switch t.Value {
	case "iterable":
		if async {
			kind = idl.IterableKindAsyncIterable
		}
	case "maplike":
		kind = idl.IterableKindMaplike
	case "setlike":
		kind = idl.IterableKindSetlike
	default:
		p.report(exc.CodeSyntaxError, fmt.Sprintf("unexpected %q (expecting an iterable declaration)", t.Value))
		return nil
	}
	p.expectOne(idl.TokenTypeAngleOpen)
	first := p.parseTypeWithExtendedAttributes()
	var second idl.Type
	if p.accept(idl.TokenTypeComma) {
		second = p.parseTypeWithExtendedAttributes()
	}
	p.expectOne(idl.TokenTypeAngleClose)
	if kind == idl.IterableKindAsyncIterable && p.peekIs(idl.TokenTypeParenOpen) {
		_ = p.parseArgumentList()
	}
	p.expectOne(idl.TokenTypeSemicolon)
	if !p.ok() {
		return nil
	}
	it := &idl.Iterable{
		MemberDeclaration: p.memberDecl(scope, kind.String(), attrs, start),
		IterableKind:      kind,
		Value:             first,
	}
	if second != nil {
		it.Key = first
		it.Value = second
	}
	if kind == idl.IterableKindMaplike && second == nil {
		p.report(exc.CodeSyntaxError, "maplike requires a key and a value type")
		return nil
	}
	if kind == idl.IterableKindSetlike && second != nil {
		p.report(exc.CodeSyntaxError, "setlike takes a single type")
		return nil
	}
	return it
}

// ArgumentList = "(" [ Argument { "," Argument } ] ")"
func (p *parserWebIDLTokens) parseArgumentList() []*idl.Argument {
	p.expectOne(idl.TokenTypeParenOpen)
	args := []*idl.Argument{}
	for p.ok() && !p.peekIs(idl.TokenTypeParenClose) {
		arg := p.parseArgument()
		if arg == nil {
			break
		}
		args = append(args, arg)
		if !p.accept(idl.TokenTypeComma) {
			break
		}
	}
	p.expectOne(idl.TokenTypeParenClose)
	if !p.ok() {
		return nil
	}
	return args
}

// Argument = ExtendedAttributeList ( "optional" TypeWithExtendedAttributes ArgumentName [ Default ]
//
//	| Type [ "..." ] ArgumentName )
func (p *parserWebIDLTokens) parseArgument() *idl.Argument {
	outer := p.typeAttrs
	p.typeAttrs = nil
	defer func() { p.typeAttrs = outer }()

	attrs := p.parseExtendedAttributeList()
	start := p.loc
	if t := p.peek(); t != nil {
		start = t.Span.Start
	}
	arg := &idl.Argument{Location: start}
	if p.acceptKeyword("optional") {
		arg.Optional = true
		arg.Type = p.parseTypeWithExtendedAttributes()
	} else {
		arg.Type = p.parseType()
		arg.Variadic = p.accept(idl.TokenTypeEllipsis)
	}
	arg.Name, _ = p.expectName()
	if arg.Optional {
		arg.Default = p.parseDefault()
	}
	arg.ExtendedAttributes = append(attrs, p.claimTypeAttrs()...)
	if !p.ok() {
		return nil
	}
	return arg
}

// Default = "=" ( ConstValue | string | "[" "]" | "{" "}" | "null" | "undefined" )
func (p *parserWebIDLTokens) parseDefault() optional.Optional[idl.Value] {
	if !p.accept(idl.TokenTypeEqual) {
		return optional.None[idl.Value]()
	}
	switch {
	case p.peekIs(idl.TokenTypeString):
		t := p.advance()
		return optional.Some(idl.Value{Kind: idl.ValueKindString, Text: t.Value})
	case p.peekIs(idl.TokenTypeSquareOpen):
		p.advance()
		p.expectOne(idl.TokenTypeSquareClose)
		return optional.Some(idl.Value{Kind: idl.ValueKindEmptySequence})
	case p.peekIs(idl.TokenTypeCurlyOpen):
		p.advance()
		p.expectOne(idl.TokenTypeCurlyClose)
		return optional.Some(idl.Value{Kind: idl.ValueKindEmptyDictionary})
	case p.peekKeyword(0, "undefined"):
		p.advance()
		return optional.Some(idl.Value{Kind: idl.ValueKindUndefined})
	}
	return optional.Some(p.parseConstValue())
}

// ConstValue = "true" | "false" | "null" | integer | decimal | "Infinity" | "-Infinity" | "NaN"
func (p *parserWebIDLTokens) parseConstValue() idl.Value {
	t := p.peek()
	if t == nil {
		p.unexpected("a constant value")
		return idl.Value{}
	}
	switch t.Type {
	case idl.TokenTypeInteger:
		p.advance()
		return idl.Value{Kind: idl.ValueKindInteger, Text: t.Value}
	case idl.TokenTypeDecimal:
		p.advance()
		return idl.Value{Kind: idl.ValueKindDecimal, Text: t.Value}
	case idl.TokenTypeIdentifier:
		switch t.Value {
		case "true", "false":
			p.advance()
			return idl.Value{Kind: idl.ValueKindBoolean, Text: t.Value}
		case "null":
			p.advance()
			return idl.Value{Kind: idl.ValueKindNull}
		case "Infinity":
			p.advance()
			return idl.Value{Kind: idl.ValueKindInfinity}
		case "-Infinity":
			p.advance()
			return idl.Value{Kind: idl.ValueKindNegativeInfinity}
		case "NaN":
			p.advance()
			return idl.Value{Kind: idl.ValueKindNaN}
		}
	}
	p.unexpected("a constant value")
	return idl.Value{}
}

func (p *parserWebIDLTokens) claimTypeAttrs() idl.ExtendedAttributes {
	attrs := p.typeAttrs
	p.typeAttrs = nil
	return attrs
}

// TypeWithExtendedAttributes = ExtendedAttributeList Type
func (p *parserWebIDLTokens) parseTypeWithExtendedAttributes() idl.Type {
	attrs := p.parseExtendedAttributeList()
	p.typeAttrs = append(p.typeAttrs, attrs...)
	return p.parseType()
}

// Type = UnionType [ "?" ] | SingleType [ "?" ]
func (p *parserWebIDLTokens) parseType() idl.Type {
	if !p.ok() {
		return nil
	}
	var t idl.Type
	if p.peekIs(idl.TokenTypeParenOpen) {
		t = p.parseUnionType()
	} else {
		t = p.parseSingleType()
	}
	return p.parseNull(t)
}

func (p *parserWebIDLTokens) parseNull(t idl.Type) idl.Type {
	if t == nil || !p.ok() {
		return nil
	}
	if p.accept(idl.TokenTypeQuestion) {
		return &idl.NullableType{Inner: t}
	}
	return t
}

// UnionType = "(" UnionMemberType "or" UnionMemberType { "or" UnionMemberType } ")"
func (p *parserWebIDLTokens) parseUnionType() idl.Type {
	p.expectOne(idl.TokenTypeParenOpen)
	members := []idl.Type{}
	for p.ok() {
		attrs := p.parseExtendedAttributeList()
		p.typeAttrs = append(p.typeAttrs, attrs...)
		member := p.parseType()
		if member == nil {
			return nil
		}
		members = append(members, member)
		if !p.acceptKeyword("or") {
			break
		}
	}
	p.expectOne(idl.TokenTypeParenClose)
	if !p.ok() {
		return nil
	}
	if len(members) < 2 {
		p.report(exc.CodeSyntaxError, "a union type requires at least two member types")
		return nil
	}
	return &idl.UnionType{Members: members}
}

// SingleType = builtin | "sequence" "<" T ">" | "FrozenArray" "<" T ">"
//
//	| "record" "<" T "," T ">" | "Promise" "<" T ">" | identifier
func (p *parserWebIDLTokens) parseSingleType() idl.Type {
	t := p.expectOne(idl.TokenTypeIdentifier)
	if t == nil {
		return nil
	}
	switch t.Value {
	case "unsigned":
		next, _ := p.expectName()
		if next == "long" && p.acceptKeyword("long") {
			next = "long long"
		}
		if next != "short" && next != "long" && next != "long long" {
			p.report(exc.CodeSyntaxError, fmt.Sprintf("invalid type unsigned %s", next))
			return nil
		}
		return p.builtin("unsigned " + next)
	case "long":
		if p.acceptKeyword("long") {
			return p.builtin("long long")
		}
		return p.builtin("long")
	case "unrestricted":
		next, _ := p.expectName()
		if next != "float" && next != "double" {
			p.report(exc.CodeSyntaxError, fmt.Sprintf("invalid type unrestricted %s", next))
			return nil
		}
		return p.builtin("unrestricted " + next)
	case "sequence":
		inner := p.parseGeneric(1)
		if inner == nil {
			return nil
		}
		return &idl.SequenceType{Element: inner[0]}
	case "FrozenArray":
		inner := p.parseGeneric(1)
		if inner == nil {
			return nil
		}
		return &idl.FrozenArrayType{Element: inner[0]}
	case "Promise":
		inner := p.parseGeneric(1)
		if inner == nil {
			return nil
		}
		return &idl.PromiseType{Result: inner[0]}
	case "record":
		inner := p.parseGeneric(2)
		if inner == nil {
			return nil
		}
		return &idl.RecordType{Key: inner[0], Value: inner[1]}
	}
	if builtin, ok := idl.LookupBuiltinType(t.Value); ok {
		return builtin
	}
	return &idl.ReferenceType{Name: strings.TrimPrefix(t.Value, "_")}
}

func (p *parserWebIDLTokens) builtin(name string) idl.Type {
	t, _ := idl.LookupBuiltinType(name)
	return t
}

func (p *parserWebIDLTokens) parseGeneric(count int) []idl.Type {
	p.expectOne(idl.TokenTypeAngleOpen)
	out := make([]idl.Type, 0, count)
	for x := 0; x < count && p.ok(); x = x + 1 {
		if x > 0 {
			p.expectOne(idl.TokenTypeComma)
		}
		out = append(out, p.parseTypeWithExtendedAttributes())
	}
	p.expectOne(idl.TokenTypeAngleClose)
	if !p.ok() {
		return nil
	}
	return out
}

// ExtendedAttributeList = [ "[" ExtendedAttribute { "," ExtendedAttribute } "]" ]
func (p *parserWebIDLTokens) parseExtendedAttributeList() idl.ExtendedAttributes {
	attrs := idl.ExtendedAttributes{}
	if !p.accept(idl.TokenTypeSquareOpen) {
		return attrs
	}
	for p.ok() {
		attr := p.parseExtendedAttribute()
		if attr == nil {
			break
		}
		attrs = append(attrs, attr)
		if !p.accept(idl.TokenTypeComma) {
			break
		}
	}
	p.expectOne(idl.TokenTypeSquareClose)
	return attrs
}

// ExtendedAttribute = identifier
//
//	| identifier "=" ( identifier | string | integer | decimal | "*" )
//	| identifier "=" "(" identifier { "," identifier } ")"
//	| identifier "(" ArgumentList ")"
//	| identifier "=" identifier "(" ArgumentList ")"
func (p *parserWebIDLTokens) parseExtendedAttribute() *idl.ExtendedAttribute {
	t := p.expectOne(idl.TokenTypeIdentifier)
	if t == nil {
		return nil
	}
	attr := &idl.ExtendedAttribute{Name: t.Value, Shape: idl.ShapeNoArgs, Location: t.Span.Start}
	switch {
	case p.peekIs(idl.TokenTypeParenOpen):
		attr.Shape = idl.ShapeArgList
		attr.Arguments = p.parseArgumentList()
	case p.accept(idl.TokenTypeEqual):
		v := p.peek()
		if v == nil {
			p.unexpected("an extended attribute value")
			return nil
		}
		switch v.Type {
		case idl.TokenTypeIdentifier, idl.TokenTypeInteger, idl.TokenTypeDecimal:
			p.advance()
			attr.Shape = idl.ShapeIdent
			attr.Value = v.Value
			if v.Type == idl.TokenTypeIdentifier && p.peekIs(idl.TokenTypeParenOpen) {
				attr.Shape = idl.ShapeNamedArgList
				attr.Arguments = p.parseArgumentList()
			}
		case idl.TokenTypeString:
			p.advance()
			attr.Shape = idl.ShapeString
			attr.Value = v.Value
		case idl.TokenTypeOther:
			if v.Value != "*" {
				p.unexpected("an extended attribute value")
				return nil
			}
			p.advance()
			attr.Shape = idl.ShapeWildcard
			attr.Value = "*"
		case idl.TokenTypeParenOpen:
			p.advance()
			attr.Shape = idl.ShapeIdentList
			for p.ok() {
				item := p.peek()
				if item == nil || (item.Type != idl.TokenTypeIdentifier && item.Type != idl.TokenTypeString) {
					p.unexpected("an identifier")
					return nil
				}
				p.advance()
				attr.Values = append(attr.Values, item.Value)
				if !p.accept(idl.TokenTypeComma) {
					break
				}
			}
			p.expectOne(idl.TokenTypeParenClose)
		default:
			p.unexpected("an extended attribute value")
			return nil
		}
	}
	if !p.ok() {
		return nil
	}
	return attr
}
