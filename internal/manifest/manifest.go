// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package manifest renders a compiled model as a YAML document for tools that
// generate bindings from it.
package manifest

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/webidl.go/internal/idl"
	"gopkg.microglot.org/webidl.go/internal/optional"
)

type Manifest struct {
	Targets     []string     `yaml:"targets"`
	Productions []Production `yaml:"productions"`
}

type Production struct {
	Kind               string             `yaml:"kind"`
	Name               string             `yaml:"name"`
	URI                string             `yaml:"uri,omitempty"`
	ExtendedAttributes []string           `yaml:"extendedAttributes,omitempty"`
	Inherits           []string           `yaml:"inherits,omitempty"`
	Mixins             []string           `yaml:"mixins,omitempty"`
	Includer           string             `yaml:"includer,omitempty"`
	Included           string             `yaml:"included,omitempty"`
	Type               string             `yaml:"type,omitempty"`
	Values             []string           `yaml:"values,omitempty"`
	Arguments          []Argument         `yaml:"arguments,omitempty"`
	Members            []Member           `yaml:"members,omitempty"`
	DictionaryMembers  []DictionaryMember `yaml:"dictionaryMembers,omitempty"`
}

type Member struct {
	Kind               string     `yaml:"kind"`
	Name               string     `yaml:"name,omitempty"`
	Special            string     `yaml:"special,omitempty"`
	Type               string     `yaml:"type,omitempty"`
	Key                string     `yaml:"key,omitempty"`
	Value              string     `yaml:"value,omitempty"`
	Static             bool       `yaml:"static,omitempty"`
	Readonly           bool       `yaml:"readonly,omitempty"`
	Synthesized        bool       `yaml:"synthesized,omitempty"`
	ExtendedAttributes []string   `yaml:"extendedAttributes,omitempty"`
	Arguments          []Argument `yaml:"arguments,omitempty"`
}

type Argument struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty"`
	Default  string `yaml:"default,omitempty"`
}

type DictionaryMember struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required,omitempty"`
	Default  string `yaml:"default,omitempty"`
}

// Build describes every production of a model in declaration order.
func Build(model *idl.Model, targets []string) *Manifest {
	m := &Manifest{
		Targets:     targets,
		Productions: make([]Production, 0, len(model.Productions)),
	}
	for _, p := range model.Productions {
		m.Productions = append(m.Productions, production(model, p))
	}
	return m
}

// Render encodes the manifest of a model as YAML.
func Render(model *idl.Model, targets []string) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(Build(model, targets)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func production(model *idl.Model, p idl.Production) Production {
	decl := p.Decl()
	out := Production{
		Kind:               idl.Describe(p),
		Name:               decl.Identifier.QualifiedName(),
		URI:                decl.URI,
		ExtendedAttributes: extendedAttributes(decl.ExtendedAttributes),
	}
	switch n := p.(type) {
	case *idl.Interface:
		out.Inherits = inherits(model, n.Name())
		for _, mixin := range model.Mixins(n.Name()) {
			out.Mixins = append(out.Mixins, mixin.Identifier.QualifiedName())
		}
		out.Members = members(n.Members)
	case *idl.Namespace:
		out.Members = members(n.Members)
	case *idl.CallbackInterface:
		out.Members = members(n.Members)
	case *idl.Dictionary:
		out.Inherits = inherits(model, n.Name())
		for _, dm := range n.Members {
			out.DictionaryMembers = append(out.DictionaryMembers, DictionaryMember{
				Name:     dm.Name(),
				Type:     typeString(dm.Type),
				Required: dm.Required,
				Default:  defaultString(dm.Default),
			})
		}
	case *idl.Callback:
		out.Type = typeString(n.Return)
		out.Arguments = arguments(n.Arguments)
	case *idl.Enum:
		out.Values = n.Values
	case *idl.Typedef:
		out.Type = typeString(n.Type)
	case *idl.IncludesStatement:
		out.Name = ""
		out.Includer = n.Includer
		out.Included = n.Included
	}
	return out
}

func inherits(model *idl.Model, name string) []string {
	var out []string
	for _, ancestor := range model.ParentChain(name) {
		out = append(out, ancestor.Decl().Identifier.QualifiedName())
	}
	return out
}

func members(in []idl.Member) []Member {
	out := make([]Member, 0, len(in))
	for _, member := range in {
		md := member.MemberDecl()
		m := Member{
			Kind:               member.MemberKind().String(),
			Name:               md.Name(),
			ExtendedAttributes: extendedAttributes(md.ExtendedAttributes),
		}
		switch n := member.(type) {
		case *idl.Attribute:
			m.Type = typeString(n.Type)
			m.Static = n.Static
			m.Readonly = n.Readonly
		case *idl.Operation:
			m.Special = n.Special.String()
			m.Type = typeString(n.Return)
			m.Static = n.Static
			m.Synthesized = n.Synthesized
			m.Arguments = arguments(n.Arguments)
		case *idl.Constant:
			m.Type = typeString(n.Type)
			m.Value = n.Value.String()
		case *idl.Iterable:
			m.Kind = n.IterableKind.String()
			m.Key = typeString(n.Key)
			m.Type = typeString(n.Value)
			m.Readonly = n.Readonly
		}
		out = append(out, m)
	}
	return out
}

func arguments(in []*idl.Argument) []Argument {
	out := make([]Argument, 0, len(in))
	for _, arg := range in {
		out = append(out, Argument{
			Name:     arg.Name,
			Type:     typeString(arg.Type),
			Optional: arg.Optional,
			Variadic: arg.Variadic,
			Default:  defaultString(arg.Default),
		})
	}
	return out
}

func extendedAttributes(attrs idl.ExtendedAttributes) []string {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.String())
	}
	return out
}

func typeString(t idl.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func defaultString(v optional.Optional[idl.Value]) string {
	if !v.IsPresent() {
		return ""
	}
	return v.Value().String()
}
