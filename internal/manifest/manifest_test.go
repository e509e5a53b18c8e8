package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/webidl.go/internal/compiler"
	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/fs"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

const source = `
[Exposed=Window] interface Node {};
[Exposed=Window] interface Element : Node {
	stringifier attribute DOMString id;
	iterable<DOMString, long>;
	undefined scroll(optional long x = 0, optional DOMString mode = "auto");
};
interface mixin Slotted { readonly attribute long slot; };
Element includes Slotted;
dictionary Base { long a = 7; };
dictionary Options : Base { required DOMString name; boolean flag = false; };
enum Mode { "auto", "smooth" };
typedef sequence<Node> NodeList;
callback Handler = boolean (Node target);
`

func compileModel(t *testing.T) *idl.Model {
	t.Helper()
	ctx := context.Background()
	r := exc.NewReporter(nil)
	s := compiler.NewSession(nil, r, nil)
	require.NoError(t, s.Parse(ctx, fs.NewFileString("/dom.webidl", source, idl.FileKindWebIDL)))
	model, err := s.Finish(ctx)
	require.NoError(t, err, exc.Diagnostics(r.Reported()))
	return model
}

func TestBuild(t *testing.T) {
	t.Parallel()
	m := Build(compileModel(t), []string{"dom.webidl"})
	require.Equal(t, []string{"dom.webidl"}, m.Targets)
	require.Len(t, m.Productions, 9)

	kinds := make([]string, 0, len(m.Productions))
	for _, p := range m.Productions {
		kinds = append(kinds, p.Kind)
	}
	require.Equal(t, []string{
		"interface", "interface", "interface mixin", "includes",
		"dictionary", "dictionary", "enum", "typedef", "callback",
	}, kinds)

	node := m.Productions[0]
	require.Equal(t, "::Node", node.Name)
	require.Equal(t, "/dom.webidl", node.URI)
	require.Empty(t, node.Inherits)

	element := m.Productions[1]
	require.Equal(t, []string{"Exposed=Window"}, element.ExtendedAttributes)
	require.Equal(t, []string{"::Node"}, element.Inherits)
	require.Equal(t, []string{"::Slotted"}, element.Mixins)
	require.Len(t, element.Members, 4)
	require.Equal(t, Member{Kind: "attribute", Name: "id", Type: "DOMString"}, element.Members[0])
	require.Equal(t, Member{Kind: "iterable", Name: "iterable", Key: "DOMString", Type: "long"}, element.Members[1])
	scroll := element.Members[2]
	require.Equal(t, "operation", scroll.Kind)
	require.Equal(t, "undefined", scroll.Type)
	require.Equal(t, []Argument{
		{Name: "x", Type: "long", Optional: true, Default: "0"},
		{Name: "mode", Type: "DOMString", Optional: true, Default: `"auto"`},
	}, scroll.Arguments)
	stringifier := element.Members[3]
	require.True(t, stringifier.Synthesized)
	require.Equal(t, "stringifier", stringifier.Special)
	require.Equal(t, "DOMString", stringifier.Type)

	mixin := m.Productions[2]
	require.Equal(t, []Member{{Kind: "attribute", Name: "slot", Type: "long", Readonly: true}}, mixin.Members)

	includes := m.Productions[3]
	require.Equal(t, "", includes.Name)
	require.Equal(t, "Element", includes.Includer)
	require.Equal(t, "Slotted", includes.Included)
	require.Empty(t, includes.Inherits)

	options := m.Productions[5]
	require.Equal(t, []string{"::Base"}, options.Inherits)
	require.Equal(t, []DictionaryMember{
		{Name: "flag", Type: "boolean", Default: "false"},
		{Name: "name", Type: "DOMString", Required: true},
	}, options.DictionaryMembers)

	require.Equal(t, []string{"auto", "smooth"}, m.Productions[6].Values)
	require.Equal(t, "sequence<Node>", m.Productions[7].Type)

	callback := m.Productions[8]
	require.Equal(t, "boolean", callback.Type)
	require.Equal(t, []Argument{{Name: "target", Type: "Node"}}, callback.Arguments)
}

func TestRender(t *testing.T) {
	t.Parallel()
	out, err := Render(compileModel(t), []string{"dom.webidl"})
	require.NoError(t, err)
	text := string(out)
	require.Contains(t, text, "- dom.webidl")
	require.Contains(t, text, "kind: interface mixin")
	require.Contains(t, text, "includer: Element")
	require.Contains(t, text, "synthesized: true")
	require.NotContains(t, text, "variadic:")
}
