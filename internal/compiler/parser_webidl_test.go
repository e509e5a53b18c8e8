package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/fs"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

func parseString(t *testing.T, content string) ([]idl.Production, exc.Reporter, error) {
	t.Helper()
	ctx := context.Background()
	r := exc.NewReporter(nil)
	lf, err := NewLexerWebIDL(r).Lex(ctx, fs.NewFileString("/parse.webidl", content, idl.FileKindWebIDL))
	require.NoError(t, err)
	productions, err := NewParserWebIDL(r).Parse(ctx, lf)
	return productions, r, err
}

func mustParse(t *testing.T, content string) []idl.Production {
	t.Helper()
	productions, r, err := parseString(t, content)
	require.NoError(t, err, exc.Diagnostics(r.Reported()))
	require.Equal(t, 0, r.Len())
	return productions
}

func TestParserInterface(t *testing.T) {
	t.Parallel()
	productions := mustParse(t, `
	[Exposed=Window]
	interface Element : Node {
		constructor(DOMString tag);
		const unsigned long long MAX = 0x10;
		[CEReactions] attribute DOMString id;
		readonly attribute unrestricted double? ratio;
		static Element create(optional sequence<DOMString> names = [], long... extra);
		getter any (DOMString name);
		stringifier;
		inherit attribute long inherited;
		maplike<DOMString, long>;
	};`)
	require.Len(t, productions, 1)
	iface, ok := productions[0].(*idl.Interface)
	require.True(t, ok)
	require.Equal(t, "Element", iface.Name())
	require.Equal(t, "::Element", iface.Identifier.QualifiedName())
	require.Equal(t, "Node", iface.Inherits)
	require.False(t, iface.Mixin)
	require.False(t, iface.Partial)
	require.Equal(t, "/parse.webidl", iface.URI)
	require.Equal(t, idl.Location{Line: 3, Column: 12, Offset: 30}, iface.Location)

	exposed, ok := iface.ExtendedAttributes.Get("Exposed")
	require.True(t, ok)
	require.Equal(t, idl.ShapeIdent, exposed.Shape)
	require.Equal(t, "Window", exposed.Value)

	require.Len(t, iface.Members, 9)

	ctor := iface.Members[0].(*idl.Operation)
	require.Equal(t, idl.SpecialConstructor, ctor.Special)
	require.Equal(t, "constructor", ctor.OverloadName())
	require.Len(t, ctor.Arguments, 1)

	constant := iface.Members[1].(*idl.Constant)
	require.Equal(t, "MAX", constant.Name())
	require.Equal(t, "unsigned long long", constant.Type.String())
	require.Equal(t, idl.Value{Kind: idl.ValueKindInteger, Text: "0x10"}, constant.Value)

	id := iface.Members[2].(*idl.Attribute)
	require.Equal(t, "::Element::id", id.Identifier.QualifiedName())
	require.True(t, id.ExtendedAttributes.Has("CEReactions"))
	require.False(t, id.Readonly)

	ratio := iface.Members[3].(*idl.Attribute)
	require.True(t, ratio.Readonly)
	require.Equal(t, "unrestricted double?", ratio.Type.String())

	create := iface.Members[4].(*idl.Operation)
	require.True(t, create.Static)
	require.True(t, create.StaticKeyword)
	require.Equal(t, "Element", create.Return.String())
	require.Len(t, create.Arguments, 2)
	require.True(t, create.Arguments[0].Optional)
	require.Equal(t, idl.ValueKindEmptySequence, create.Arguments[0].Default.Value().Kind)
	require.True(t, create.Arguments[1].Variadic)
	require.Equal(t, "Element create(optional sequence<DOMString> names, long... extra)", create.Signature())

	getter := iface.Members[5].(*idl.Operation)
	require.Equal(t, idl.SpecialGetter, getter.Special)
	require.Equal(t, "", getter.Name())

	stringifier := iface.Members[6].(*idl.Operation)
	require.Equal(t, idl.SpecialStringifier, stringifier.Special)
	require.Equal(t, "DOMString", stringifier.Return.String())

	inherited := iface.Members[7].(*idl.Attribute)
	require.True(t, inherited.Inherit)

	maplike := iface.Members[8].(*idl.Iterable)
	require.Equal(t, idl.IterableKindMaplike, maplike.IterableKind)
	require.Equal(t, "DOMString", maplike.Key.String())
	require.Equal(t, "long", maplike.Value.String())
	require.Equal(t, "maplike", maplike.Name())
}

func TestParserDefinitions(t *testing.T) {
	t.Parallel()
	productions := mustParse(t, `
	interface mixin Walkable { undefined walk(); };
	partial interface Window { attribute long extra; };
	partial dictionary Options { boolean more; };
	partial namespace console { undefined trace(); };
	callback Handler = boolean (Event event);
	callback interface Listener { undefined handleEvent(Event event); };
	dictionary Options : BaseOptions {
		required DOMString name;
		[EnforceRange] unsigned long count = 7;
		DOMString? label = null;
		record<DOMString, any> extra = {};
	};
	enum Direction { "up", "down", };
	typedef (DOMString or sequence<long>)? Input;
	namespace console { undefined log(any... data); };
	Window includes Walkable;
	Window implements EventTarget;
	interface Forward;`)
	require.Len(t, productions, 13)

	mixin := productions[0].(*idl.Interface)
	require.True(t, mixin.Mixin)
	require.Equal(t, "interface mixin", idl.Describe(mixin))

	require.True(t, productions[1].Decl().Partial)
	require.Equal(t, idl.ProductionKindInterface, productions[1].Kind())
	require.True(t, productions[2].Decl().Partial)
	require.Equal(t, idl.ProductionKindDictionary, productions[2].Kind())
	require.True(t, productions[3].Decl().Partial)
	require.Equal(t, idl.ProductionKindNamespace, productions[3].Kind())

	callback := productions[4].(*idl.Callback)
	require.Equal(t, "boolean", callback.Return.String())
	require.Len(t, callback.Arguments, 1)
	require.Equal(t, "Event", callback.Arguments[0].Type.(*idl.ReferenceType).Name)

	require.Equal(t, idl.ProductionKindCallbackInterface, productions[5].Kind())

	dict := productions[6].(*idl.Dictionary)
	require.Equal(t, "BaseOptions", dict.Inherits)
	require.Len(t, dict.Members, 4)
	require.True(t, dict.Members[0].Required)
	require.False(t, dict.Members[0].Default.IsPresent())
	require.True(t, dict.Members[1].ExtendedAttributes.Has("EnforceRange"))
	require.Equal(t, idl.Value{Kind: idl.ValueKindInteger, Text: "7"}, dict.Members[1].Default.Value())
	require.Equal(t, idl.ValueKindNull, dict.Members[2].Default.Value().Kind)
	require.Equal(t, idl.ValueKindEmptyDictionary, dict.Members[3].Default.Value().Kind)

	enum := productions[7].(*idl.Enum)
	require.Equal(t, []string{"up", "down"}, enum.Values)

	typedef := productions[8].(*idl.Typedef)
	require.Equal(t, "(DOMString or sequence<long>)?", typedef.Type.String())

	ns := productions[9].(*idl.Namespace)
	require.False(t, ns.Partial)
	require.True(t, ns.Members[0].(*idl.Operation).Arguments[0].Variadic)

	includes := productions[10].(*idl.IncludesStatement)
	require.Equal(t, "Window", includes.Includer)
	require.Equal(t, "Walkable", includes.Included)
	require.False(t, includes.Legacy)

	implements := productions[11].(*idl.IncludesStatement)
	require.Equal(t, "EventTarget", implements.Included)
	require.True(t, implements.Legacy)

	require.IsType(t, &idl.ExternalInterface{}, productions[12])
}

func TestParserExtendedAttributes(t *testing.T) {
	t.Parallel()
	productions := mustParse(t, `
	[
		NoArgs,
		Ident=Window,
		List=(Window, Worker),
		Args(long x, optional DOMString y),
		Named=Image(unsigned long width),
		Str="dom.enabled",
		Wild=*,
		Num=3
	]
	interface A {};`)
	attrs := productions[0].Decl().ExtendedAttributes
	require.Len(t, attrs, 8)
	expected := []struct {
		name  string
		shape idl.ExtendedAttributeShape
	}{
		{"NoArgs", idl.ShapeNoArgs},
		{"Ident", idl.ShapeIdent},
		{"List", idl.ShapeIdentList},
		{"Args", idl.ShapeArgList},
		{"Named", idl.ShapeNamedArgList},
		{"Str", idl.ShapeString},
		{"Wild", idl.ShapeWildcard},
		{"Num", idl.ShapeIdent},
	}
	for x, e := range expected {
		require.Equal(t, e.name, attrs[x].Name)
		require.Equal(t, e.shape, attrs[x].Shape, e.name)
	}
	require.Equal(t, []string{"Window", "Worker"}, attrs[2].Values)
	require.Len(t, attrs[3].Arguments, 2)
	require.Equal(t, "Image", attrs[4].Value)
	require.Len(t, attrs[4].Arguments, 1)
	require.Equal(t, "dom.enabled", attrs[5].Value)
}

func TestParserTypeAttributes(t *testing.T) {
	t.Parallel()
	productions := mustParse(t, `
	interface A {
		attribute [LegacyNullToEmptyString] DOMString name;
		undefined f([Clamp] octet value, optional [EnforceRange] long other);
	};`)
	iface := productions[0].(*idl.Interface)
	attr := iface.Members[0].(*idl.Attribute)
	require.True(t, attr.ExtendedAttributes.Has("LegacyNullToEmptyString"))
	op := iface.Members[1].(*idl.Operation)
	require.True(t, op.Arguments[0].ExtendedAttributes.Has("Clamp"))
	require.True(t, op.Arguments[1].ExtendedAttributes.Has("EnforceRange"))
	require.Empty(t, op.ExtendedAttributes)
}

func TestParserEscapedIdentifiers(t *testing.T) {
	t.Parallel()
	productions := mustParse(t, `interface _interface { attribute long _attribute; };`)
	iface := productions[0].(*idl.Interface)
	require.Equal(t, "interface", iface.Name())
	require.Equal(t, "attribute", iface.Members[0].MemberDecl().Name())
}

func TestParserErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		content string
		code    string
	}{
		{name: "missing semicolon", content: `interface A {}`, code: exc.CodeUnexpectedEOF},
		{name: "unknown definition", content: `struct A {};`, code: exc.CodeSyntaxError},
		{name: "missing operation name", content: `interface A { long (); };`, code: exc.CodeSyntaxError},
		{name: "single member union", content: `typedef (long) T;`, code: exc.CodeSyntaxError},
		{name: "invalid unsigned", content: `typedef unsigned double T;`, code: exc.CodeSyntaxError},
		{name: "setlike with two types", content: `interface A { setlike<long, long>; };`, code: exc.CodeSyntaxError},
		{name: "maplike with one type", content: `interface A { maplike<long>; };`, code: exc.CodeSyntaxError},
		{name: "partial enum", content: `partial enum E { "a" };`, code: exc.CodeSyntaxError},
		{name: "string constant", content: `interface A { const DOMString X = "a"; };`, code: exc.CodeSyntaxError},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			productions, r, err := parseString(t, testCase.content)
			require.Error(t, err)
			require.Nil(t, productions)
			reported := r.Reported()
			require.Len(t, reported, 1)
			require.Equal(t, testCase.code, reported[0].Code())
			require.Equal(t, exc.KindSyntax, reported[0].Kind())
		})
	}
}
