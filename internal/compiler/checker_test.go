package compiler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/fs"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// compileStrings runs each source through a fresh session as its own file.
// The model is nil when a fatal phase fails.
func compileStrings(t *testing.T, sources ...string) (*idl.Model, []exc.Exception) {
	t.Helper()
	ctx := context.Background()
	r := exc.NewReporter(nil)
	s := NewSession(nil, r, nil)
	for x, src := range sources {
		_ = s.Parse(ctx, fs.NewFileString(fmt.Sprintf("/test%d.webidl", x), src, idl.FileKindWebIDL))
	}
	model, _ := s.Finish(ctx)
	return model, r.Reported()
}

func reportedCodes(reported []exc.Exception) []string {
	out := make([]string, 0, len(reported))
	for _, e := range reported {
		out = append(out, e.Code())
	}
	return out
}

func TestCheckerValid(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		source string
	}{
		{
			name: "interface members",
			source: `
			[Exposed=Window]
			interface Foo {
				constructor(optional long size = 0);
				const unsigned short KIND = 0x1F;
				attribute long x;
				readonly attribute DOMString? label;
				[Throws] Promise<undefined> load(DOMString url, optional boolean force = false);
				getter DOMString item(unsigned long index);
				stringifier;
				iterable<DOMString>;
			};`,
		},
		{
			name: "dictionary",
			source: `
			dictionary Options {
				required DOMString name;
				long depth = 4;
				sequence<DOMString> tags = [];
				record<DOMString, long> counts;
			};`,
		},
		{
			name: "mixin",
			source: `
			interface mixin Walkable { undefined walk(); };
			interface Person { attribute DOMString name; };
			Person includes Walkable;`,
		},
		{
			name: "callbacks",
			source: `
			callback Listener = undefined (DOMString type, optional any detail);
			callback interface Handler { undefined handle(long code); };
			interface Target { undefined listen(Listener l); };`,
		},
		{
			name:   "enum and typedef",
			source: `enum Mode { "open", "closed", }; typedef (Mode or sequence<long>) Input;`,
		},
		{
			name:   "nullable union",
			source: `typedef (DOMString or long)? MaybeValue;`,
		},
		{
			name:   "union of numeric and string kinds",
			source: `typedef (long or double or DOMString or USVString) Mixed;`,
		},
		{
			name:   "union with buffer source and object",
			source: `typedef (ArrayBuffer or object) Data;`,
		},
		{
			name:   "exposure forms",
			source: `[Exposed=(Window,Worker), SecureContext] interface A { [Exposed=*] attribute long x; };`,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			model, reported := compileStrings(t, testCase.source)
			require.Empty(t, reported, exc.Diagnostics(reported))
			require.NotNil(t, model)
		})
	}
}

func TestCheckerErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		source string
		code   string
	}{
		{
			name:   "undefined attribute",
			source: `interface A { attribute undefined x; };`,
			code:   exc.CodeUndefinedPlacement,
		},
		{
			name:   "undefined argument",
			source: `interface A { undefined f(undefined x); };`,
			code:   exc.CodeUndefinedPlacement,
		},
		{
			name:   "nullable of nullable typedef",
			source: `typedef long? T; interface A { attribute T? x; };`,
			code:   exc.CodeInvalidNullable,
		},
		{
			name:   "nullable any",
			source: `interface A { attribute any? x; };`,
			code:   exc.CodeInvalidNullable,
		},
		{
			name:   "nullable promise",
			source: `interface A { Promise<long>? f(); };`,
			code:   exc.CodeInvalidNullable,
		},
		{
			name:   "nullable dictionary argument",
			source: `dictionary D {}; interface A { undefined f(optional D? arg1); };`,
			code:   exc.CodeInvalidTypePlacement,
		},
		{
			name:   "nullable union with dictionary argument",
			source: `dictionary D {}; interface A { undefined f(optional (D or long)? arg1); };`,
			code:   exc.CodeInvalidTypePlacement,
		},
		{
			name:   "union with any",
			source: `typedef (any or long) T;`,
			code:   exc.CodeInvalidUnion,
		},
		{
			name:   "union repeating a type",
			source: `typedef (long or long) T;`,
			code:   exc.CodeInvalidUnion,
		},
		{
			name:   "union of related interfaces",
			source: `interface B {}; interface C : B {}; typedef (B or C) T;`,
			code:   exc.CodeInvalidUnion,
		},
		{
			name:   "union with two nullable members",
			source: `typedef (DOMString? or long?) T;`,
			code:   exc.CodeInvalidUnion,
		},
		{
			name:   "record key",
			source: `typedef record<long, long> T;`,
			code:   exc.CodeInvalidTypePlacement,
		},
		{
			name:   "sequence attribute",
			source: `interface A { attribute sequence<long> x; };`,
			code:   exc.CodeInvalidAttributeType,
		},
		{
			name:   "dictionary attribute",
			source: `dictionary D {}; interface A { attribute D x; };`,
			code:   exc.CodeInvalidAttributeType,
		},
		{
			name:   "string constant",
			source: `typedef DOMString S; interface A { const S X = 1; };`,
			code:   exc.CodeInvalidConstantType,
		},
		{
			name:   "required after optional",
			source: `interface A { undefined f(optional long a, long b); };`,
			code:   exc.CodeArgumentOrdering,
		},
		{
			name:   "variadic not last",
			source: `interface A { undefined f(long... a, long b); };`,
			code:   exc.CodeArgumentOrdering,
		},
		{
			name:   "required dictionary before optional",
			source: `dictionary D {}; interface A { undefined f(D d, optional long x); };`,
			code:   exc.CodeArgumentOrdering,
		},
		{
			name:   "duplicate attribute",
			source: `interface A { attribute long x; attribute DOMString x; };`,
			code:   exc.CodeDuplicateMember,
		},
		{
			name:   "attribute and operation share a name",
			source: `interface A { attribute long x; undefined x(); };`,
			code:   exc.CodeDuplicateMember,
		},
		{
			name:   "duplicate through mixin",
			source: `interface mixin M { attribute long x; }; interface A { attribute long x; }; A includes M;`,
			code:   exc.CodeDuplicateMember,
		},
		{
			name:   "duplicate dictionary member",
			source: `dictionary D { long x; DOMString x; };`,
			code:   exc.CodeDuplicateMember,
		},
		{
			name:   "dictionary member shadows ancestor",
			source: `dictionary P { long x; }; dictionary M : P {}; dictionary C : M { long x; };`,
			code:   exc.CodeDuplicateMember,
		},
		{
			name:   "duplicate enum value",
			source: `enum E { "a", "b", "a" };`,
			code:   exc.CodeDuplicateEnumValue,
		},
		{
			name:   "two iterable declarations",
			source: `interface A { iterable<long>; setlike<long>; };`,
			code:   exc.CodeDuplicateIterable,
		},
		{
			name:   "static in namespace",
			source: `namespace N { static undefined f(); };`,
			code:   exc.CodeStaticInNamespace,
		},
		{
			name:   "multiple stringifiers",
			source: `interface A { stringifier; stringifier attribute DOMString s; };`,
			code:   exc.CodeMultipleStringifiers,
		},
		{
			name:   "multiple stringifiers through mixin",
			source: `interface mixin M { stringifier; }; interface A { stringifier DOMString describe(); }; A includes M;`,
			code:   exc.CodeMultipleStringifiers,
		},
		{
			name:   "non string stringifier attribute",
			source: `interface A { stringifier attribute long x; };`,
			code:   exc.CodeInvalidStringifier,
		},
		{
			name:   "unknown extended attribute",
			source: `[Bogus] interface A {};`,
			code:   exc.CodeUnknownExtendedAttribute,
		},
		{
			name:   "extended attribute shape",
			source: `[Exposed] interface A {};`,
			code:   exc.CodeExtendedAttributeShape,
		},
		{
			name:   "extended attribute on dictionary member",
			source: `dictionary D { [TreatNullAs=EmptyString] DOMString foo; };`,
			code:   exc.CodeExtendedAttributeContext,
		},
		{
			name:   "extended attribute on interface",
			source: `[PutForwards=name] interface A {};`,
			code:   exc.CodeExtendedAttributeContext,
		},
		{
			name:   "type inside extended attribute arguments",
			source: `[Constructor(undefined x)] interface A {};`,
			code:   exc.CodeUndefinedPlacement,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			model, reported := compileStrings(t, testCase.source)
			require.NotNil(t, model)
			require.Contains(t, reportedCodes(reported), testCase.code, exc.Diagnostics(reported))
		})
	}
}

func TestCheckerMixinReportedOnce(t *testing.T) {
	t.Parallel()
	_, reported := compileStrings(t, `
	interface mixin M { attribute undefined x; };
	interface A {};
	interface B {};
	A includes M;
	B includes M;`)
	require.Len(t, reported, 1)
	require.Equal(t, exc.CodeUndefinedPlacement, reported[0].Code())
	require.Equal(t, "::M::x", reported[0].Subject())
}

func TestCheckerNamespaceMembersStatic(t *testing.T) {
	t.Parallel()
	model, reported := compileStrings(t, `namespace MyNamespace { attribute any foo; any bar(); };`)
	require.Empty(t, reported)
	p, ok := model.Lookup("MyNamespace")
	require.True(t, ok)
	ns := p.(*idl.Namespace)
	require.Len(t, ns.Members, 2)
	attr := ns.Members[0].(*idl.Attribute)
	require.True(t, attr.Static)
	require.False(t, attr.StaticKeyword)
	op := ns.Members[1].(*idl.Operation)
	require.True(t, op.Static)
	require.False(t, op.StaticKeyword)
}

func TestCheckerImplicitlyOptionalDictionary(t *testing.T) {
	t.Parallel()
	model, reported := compileStrings(t, `dictionary D {}; interface A { undefined f(long x, D opts); };`)
	require.Empty(t, reported)
	p, ok := model.Lookup("A")
	require.True(t, ok)
	op := p.(*idl.Interface).Members[0].(*idl.Operation)
	require.False(t, op.Arguments[0].Optional)
	require.True(t, op.Arguments[1].Optional)
	require.True(t, op.Arguments[1].ImplicitlyOptional)
	require.Equal(t, "D opts", op.Arguments[1].String())
}

func TestCheckerDictionaryMemberOrder(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		sources  []string
		expected map[string][]string
	}{
		{
			name: "partial adds a member",
			sources: []string{
				`dictionary Foo { long child; };`,
				`partial dictionary Foo { long aaandAnother; };`,
			},
			expected: map[string][]string{"Foo": {"aaandAnother", "child"}},
		},
		{
			name: "child declared before its parent",
			sources: []string{`
				dictionary Dict2 : Dict1 { long child; long aaandAnother; };
				dictionary Dict1 { long parent; };`,
			},
			expected: map[string][]string{
				"Dict1": {"parent"},
				"Dict2": {"aaandAnother", "child"},
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			model, reported := compileStrings(t, testCase.sources...)
			require.Empty(t, reported, exc.Diagnostics(reported))
			for name, expected := range testCase.expected {
				p, ok := model.Lookup(name)
				require.True(t, ok)
				names := []string{}
				for _, m := range p.(*idl.Dictionary).Members {
					names = append(names, m.Name())
				}
				require.Equal(t, expected, names, name)
			}
		})
	}
}

func TestCheckerSynthesizedStringifier(t *testing.T) {
	t.Parallel()
	model, reported := compileStrings(t, `interface A { stringifier attribute USVString href; };`)
	require.Empty(t, reported)
	p, ok := model.Lookup("A")
	require.True(t, ok)
	iface := p.(*idl.Interface)
	require.Len(t, iface.Members, 2)
	op, ok := iface.Members[1].(*idl.Operation)
	require.True(t, ok)
	require.True(t, op.Synthesized)
	require.Equal(t, idl.StringifierOperationName, op.Name())
	require.Equal(t, idl.SpecialStringifier, op.Special)
	require.True(t, idl.IsPrimitive(op.Return, idl.PrimitiveUSVString))

	// Checking again must not add a second operation.
	check(model, DefaultCatalog(), exc.NewReporter(nil))
	require.Len(t, iface.Members, 2)
}

func TestCheckerCustomCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	catalog, err := DefaultCatalog().Extend(strings.NewReader(`
attributes:
  - name: Bogus
    contexts: [interface]
`))
	require.NoError(t, err)
	r := exc.NewReporter(nil)
	s := NewSession(catalog, r, nil)
	require.NoError(t, s.Parse(ctx, fs.NewFileString("/a.webidl", `[Bogus] interface A {};`, idl.FileKindWebIDL)))
	model, err := s.Finish(ctx)
	require.NoError(t, err)
	require.NotNil(t, model)
}

func TestCheckerMixinOrderIndependence(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		sources []string
	}{
		{
			name:    "mixin first",
			sources: []string{`dictionary D {}; interface mixin M { undefined f(D d); }; interface A { undefined f(); }; A includes M;`},
		},
		{
			name:    "mixin last",
			sources: []string{`dictionary D {}; interface A { undefined f(); }; A includes M; interface mixin M { undefined f(D d); };`},
		},
		{
			name:    "mixin in a later file",
			sources: []string{`dictionary D {}; interface A { undefined f(); }; A includes M;`, `interface mixin M { undefined f(D d); };`},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			model, reported := compileStrings(t, testCase.sources...)
			require.NotNil(t, model)
			require.Len(t, reported, 1, exc.Diagnostics(reported))
			require.Equal(t, exc.CodeOverloadAmbiguity, reported[0].Code())
			require.Equal(t, "overloads of f with 0 arguments cannot be distinguished", reported[0].Message())

			p, ok := model.Lookup("M")
			require.True(t, ok)
			arg := p.(*idl.Interface).Members[0].(*idl.Operation).Arguments[0]
			require.True(t, arg.ImplicitlyOptional)
		})
	}
}
