package idl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testDecl(name string) Declaration {
	return Declaration{Identifier: NewIdentifier(nil, name)}
}

func testModel() *Model {
	base := &Interface{Declaration: testDecl("Base")}
	derived := &Interface{Declaration: testDecl("Derived"), Inherits: "Base"}
	other := &Interface{Declaration: testDecl("Other")}
	mixin := &Interface{Declaration: testDecl("Mix"), Mixin: true}
	host := &Interface{Declaration: testDecl("Host")}
	dict := &Dictionary{Declaration: testDecl("Options")}
	cbi := &CallbackInterface{Declaration: testDecl("Listener")}
	cb := &Callback{Declaration: testDecl("Handler"), Return: &PrimitiveType{Kind: PrimitiveUndefined}}
	enum := &Enum{Declaration: testDecl("Mode"), Values: []string{"a", "b"}}
	fwd := &ExternalInterface{Declaration: testDecl("Window")}
	td := &Typedef{Declaration: testDecl("Count"), Type: &PrimitiveType{Kind: PrimitiveLong}}
	return NewModel(
		[]Production{base, derived, other, mixin, host, dict, cbi, cb, enum, fwd, td},
		map[string]string{"Derived": "Base"},
		map[string][]string{"Host": {"Mix"}},
	)
}

func ref(m *Model, name string) *ReferenceType {
	p, _ := m.Lookup(name)
	return &ReferenceType{Name: name, Target: p}
}

func prim(k PrimitiveKind) *PrimitiveType {
	return &PrimitiveType{Kind: k}
}

func TestIsDistinguishableFrom(t *testing.T) {
	t.Parallel()
	m := testModel()
	testCases := []struct {
		name   string
		a      Type
		b      Type
		expect bool
	}{
		{name: "long vs DOMString", a: prim(PrimitiveLong), b: prim(PrimitiveDOMString), expect: true},
		{name: "long vs double", a: prim(PrimitiveLong), b: prim(PrimitiveDouble), expect: true},
		{name: "long vs unsigned long", a: prim(PrimitiveLong), b: prim(PrimitiveUnsignedLong), expect: true},
		{name: "DOMString vs USVString", a: prim(PrimitiveDOMString), b: prim(PrimitiveUSVString), expect: true},
		{name: "boolean vs long", a: prim(PrimitiveBoolean), b: prim(PrimitiveLong), expect: true},
		{name: "enum vs DOMString", a: ref(m, "Mode"), b: prim(PrimitiveDOMString), expect: false},
		{name: "enum vs long", a: ref(m, "Mode"), b: prim(PrimitiveLong), expect: true},
		{name: "any vs long", a: prim(PrimitiveAny), b: prim(PrimitiveLong), expect: false},
		{name: "promise vs long", a: &PromiseType{Result: prim(PrimitiveLong)}, b: prim(PrimitiveLong), expect: false},
		{name: "unrelated interfaces", a: ref(m, "Base"), b: ref(m, "Other"), expect: true},
		{name: "same interface", a: ref(m, "Base"), b: ref(m, "Base"), expect: false},
		{name: "inherited interfaces", a: ref(m, "Derived"), b: ref(m, "Base"), expect: false},
		{name: "included mixin", a: ref(m, "Host"), b: ref(m, "Mix"), expect: false},
		{name: "forward declaration vs interface", a: ref(m, "Window"), b: ref(m, "Base"), expect: true},
		{name: "interface vs object", a: ref(m, "Base"), b: prim(PrimitiveObject), expect: false},
		{name: "interface vs long", a: ref(m, "Base"), b: prim(PrimitiveLong), expect: true},
		{name: "interface vs dictionary", a: ref(m, "Base"), b: ref(m, "Options"), expect: true},
		{name: "dictionary vs record", a: ref(m, "Options"), b: &RecordType{Key: prim(PrimitiveDOMString), Value: prim(PrimitiveLong)}, expect: false},
		{name: "dictionary vs callback", a: ref(m, "Options"), b: ref(m, "Handler"), expect: false},
		{name: "dictionary vs undefined", a: ref(m, "Options"), b: prim(PrimitiveUndefined), expect: false},
		{name: "callback interface vs dictionary", a: ref(m, "Listener"), b: ref(m, "Options"), expect: false},
		{name: "callback vs interface", a: ref(m, "Handler"), b: ref(m, "Base"), expect: true},
		{name: "callback vs object", a: ref(m, "Handler"), b: prim(PrimitiveObject), expect: false},
		{name: "sequence vs frozen array", a: &SequenceType{Element: prim(PrimitiveLong)}, b: &FrozenArrayType{Element: prim(PrimitiveDOMString)}, expect: false},
		{name: "sequence vs dictionary", a: &SequenceType{Element: prim(PrimitiveLong)}, b: ref(m, "Options"), expect: true},
		{name: "sequence vs object", a: &SequenceType{Element: prim(PrimitiveLong)}, b: prim(PrimitiveObject), expect: false},
		{name: "typed arrays", a: &BufferSourceType{Kind: BufferUint8Array}, b: &BufferSourceType{Kind: BufferFloat64Array}, expect: false},
		{name: "buffer vs interface", a: &BufferSourceType{Kind: BufferArrayBuffer}, b: ref(m, "Base"), expect: true},
		{name: "buffer vs object", a: &BufferSourceType{Kind: BufferArrayBuffer}, b: prim(PrimitiveObject), expect: true},
		{name: "buffer vs sequence", a: &BufferSourceType{Kind: BufferArrayBufferView}, b: &SequenceType{Element: prim(PrimitiveOctet)}, expect: true},
		{name: "array buffer vs view", a: &BufferSourceType{Kind: BufferArrayBuffer}, b: &BufferSourceType{Kind: BufferArrayBufferView}, expect: false},
		{name: "typedef resolved", a: ref(m, "Count"), b: prim(PrimitiveLong), expect: false},
		{name: "typedef vs string", a: ref(m, "Count"), b: prim(PrimitiveDOMString), expect: true},
		{name: "two nullables", a: &NullableType{Inner: prim(PrimitiveLong)}, b: &NullableType{Inner: prim(PrimitiveDOMString)}, expect: true},
		{name: "nullables of one kind", a: &NullableType{Inner: prim(PrimitiveLong)}, b: &NullableType{Inner: prim(PrimitiveLong)}, expect: false},
		{name: "nullable vs dictionary", a: &NullableType{Inner: prim(PrimitiveLong)}, b: ref(m, "Options"), expect: false},
		{name: "nullable vs string", a: &NullableType{Inner: prim(PrimitiveLong)}, b: prim(PrimitiveDOMString), expect: true},
		{
			name:   "union vs member",
			a:      &UnionType{Members: []Type{prim(PrimitiveLong), prim(PrimitiveDOMString)}},
			b:      prim(PrimitiveLong),
			expect: false,
		},
		{
			name:   "union vs other numeric",
			a:      &UnionType{Members: []Type{prim(PrimitiveLong), prim(PrimitiveDOMString)}},
			b:      prim(PrimitiveDouble),
			expect: true,
		},
		{
			name:   "nullable vs union with nullable member",
			a:      &NullableType{Inner: prim(PrimitiveBoolean)},
			b:      &UnionType{Members: []Type{&NullableType{Inner: prim(PrimitiveLong)}, prim(PrimitiveDOMString)}},
			expect: false,
		},
		{
			name:   "nullable vs union with dictionary member",
			a:      &NullableType{Inner: prim(PrimitiveBoolean)},
			b:      &UnionType{Members: []Type{ref(m, "Options"), prim(PrimitiveDOMString)}},
			expect: false,
		},
		{
			name:   "nullable vs plain union",
			a:      &NullableType{Inner: prim(PrimitiveBoolean)},
			b:      &UnionType{Members: []Type{prim(PrimitiveLong), prim(PrimitiveDOMString)}},
			expect: true,
		},
		{
			name:   "union vs disjoint",
			a:      &UnionType{Members: []Type{prim(PrimitiveLong), prim(PrimitiveDOMString)}},
			b:      ref(m, "Base"),
			expect: true,
		},
		{
			name:   "union with nullable member vs dictionary",
			a:      &UnionType{Members: []Type{&NullableType{Inner: prim(PrimitiveLong)}, prim(PrimitiveDOMString)}},
			b:      ref(m, "Options"),
			expect: false,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expect, m.IsDistinguishableFrom(testCase.a, testCase.b))
			require.Equal(t, testCase.expect, m.IsDistinguishableFrom(testCase.b, testCase.a))
		})
	}
}

func TestIsDistinguishableFromIrreflexive(t *testing.T) {
	t.Parallel()
	m := testModel()
	types := []Type{
		prim(PrimitiveBoolean),
		prim(PrimitiveLong),
		prim(PrimitiveDOMString),
		prim(PrimitiveObject),
		prim(PrimitiveUndefined),
		ref(m, "Base"),
		ref(m, "Options"),
		ref(m, "Handler"),
		ref(m, "Mode"),
		&SequenceType{Element: prim(PrimitiveLong)},
		&BufferSourceType{Kind: BufferDataView},
	}
	for _, a := range types {
		require.False(t, m.IsDistinguishableFrom(a, a), a.String())
	}
}

func TestModelGraph(t *testing.T) {
	t.Parallel()
	m := testModel()

	chain := m.ParentChain("::Derived")
	require.Len(t, chain, 1)
	require.Equal(t, "Base", chain[0].Decl().Name())

	mixins := m.Mixins("Host")
	require.Len(t, mixins, 1)
	require.Equal(t, "Mix", mixins[0].Name())

	require.True(t, m.Reaches("Derived", "Base"))
	require.False(t, m.Reaches("Base", "Derived"))
	require.False(t, m.Reaches("Base", "Base"))

	_, ok := m.Lookup("Missing")
	require.False(t, ok)
	require.Len(t, m.Interfaces(), 4)
	require.Len(t, m.Dictionaries(), 1)
}
