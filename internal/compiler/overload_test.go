package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

func TestEffectiveOverloads(t *testing.T) {
	t.Parallel()
	long := &idl.PrimitiveType{Kind: idl.PrimitiveLong}
	str := &idl.PrimitiveType{Kind: idl.PrimitiveDOMString}
	required := &idl.Operation{Arguments: []*idl.Argument{
		{Name: "a", Type: long},
		{Name: "b", Type: str, Optional: true},
	}}
	variadic := &idl.Operation{Arguments: []*idl.Argument{
		{Name: "rest", Type: str, Variadic: true},
	}}
	set := effectiveOverloads([]*idl.Operation{required, variadic})

	require.Len(t, set[0], 1)
	require.Same(t, variadic, set[0][0].operation)
	require.Len(t, set[1], 2)
	require.Len(t, set[2], 2)
	for _, entry := range set[2] {
		require.Len(t, entry.types, 2)
	}
	_, ok := set[3]
	require.False(t, ok)
}

func TestCheckOverloads(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		source string
		code   string
	}{
		{
			name: "distinguishable at second argument",
			source: `
			interface Dummy {};
			interface TestIface {
				undefined f(long a, TestIface b);
				undefined f(long a, long b);
				undefined f(long a, Dummy b);
				undefined f(DOMString a, DOMString b, DOMString c);
			};`,
		},
		{
			name: "any is not distinguishable",
			source: `
			interface Dummy {};
			interface TestIface {
				undefined f(long a, TestIface b);
				undefined f(long a, long b);
				undefined f(long a, any b);
				undefined f(DOMString a, DOMString b, DOMString c);
			};`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "any replaces the first argument",
			source: `
			interface Dummy {};
			interface TestIface {
				undefined f(long a, TestIface b);
				undefined f(long a, long b);
				undefined f(any a, Dummy b);
				undefined f(DOMString a, DOMString b, DOMString c);
			};`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "numeric kinds are distinguishable",
			source: `
			interface A {
				undefined f(long x);
				undefined f(double x);
				undefined f(unsigned short x);
			};`,
		},
		{
			name: "same type at the only argument",
			source: `
			interface A {
				undefined f(long x);
				undefined f(long y);
			};`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "optional argument collides with shorter overload",
			source: `
			interface A {
				undefined f();
				undefined f(optional long x);
			};`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "mismatched preceding types",
			source: `
			interface Base {};
			interface Derived : Base {};
			interface A {
				undefined f(Base x, DOMString y);
				undefined f(Derived x, long y);
			};`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "constructors",
			source: `
			interface A {
				constructor();
				constructor(DOMString name);
				constructor(sequence<long> values);
			};`,
		},
		{
			name: "inherited interfaces are not distinguishable",
			source: `
			interface Base {};
			interface Derived : Base {};
			interface A {
				undefined f(Base b);
				undefined f(Derived d);
			};`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "overloads across a mixin",
			source: `
			interface mixin M { undefined f(long x); };
			interface A { undefined f(long y); };
			A includes M;`,
			code: exc.CodeOverloadAmbiguity,
		},
		{
			name: "mixed static",
			source: `
			interface A {
				static undefined f();
				undefined f(long x);
			};`,
			code: exc.CodeMixedStatic,
		},
		{
			name: "namespace operations",
			source: `
			namespace N {
				undefined f(long x);
				undefined f(DOMString x);
			};`,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			model, reported := compileStrings(t, testCase.source)
			require.NotNil(t, model)
			if testCase.code == "" {
				require.Empty(t, reported, exc.Diagnostics(reported))
				return
			}
			require.Contains(t, reportedCodes(reported), testCase.code, exc.Diagnostics(reported))
			for _, e := range reported {
				require.Equal(t, exc.KindOverloadAmbiguity, e.Kind())
			}
		})
	}
}

func TestCheckOverloadsSubject(t *testing.T) {
	t.Parallel()
	_, reported := compileStrings(t, `interface A { undefined f(long x); undefined f(long y); };`)
	require.Len(t, reported, 1)
	require.Equal(t, "::A::f", reported[0].Subject())
	require.Equal(t, "overloads of f with 1 arguments cannot be distinguished", reported[0].Message())
}

func TestCheckOverloadsMessages(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		source  string
		message string
	}{
		{
			name: "any at the first argument",
			source: `
			interface Dummy {};
			interface TestIface {
				undefined f(long a, TestIface b);
				undefined f(long a, long b);
				undefined f(any a, Dummy b);
			};`,
			message: "overloads of f with 2 arguments have mismatched preceding types at argument 0",
		},
		{
			name:    "nullable numerics",
			source:  `interface A { undefined f(long? x); undefined f(long? y); };`,
			message: "overloads of f with 1 arguments cannot be distinguished",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, reported := compileStrings(t, testCase.source)
			require.Len(t, reported, 1, exc.Diagnostics(reported))
			require.Equal(t, testCase.message, reported[0].Message())
		})
	}
}
