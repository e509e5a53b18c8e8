// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"fmt"
	"strings"

	"gopkg.microglot.org/webidl.go/internal/optional"
)

type MemberKind uint8

const (
	MemberKindAttribute MemberKind = iota + 1
	MemberKindOperation
	MemberKindConstant
	MemberKindIterable
)

func (k MemberKind) String() string {
	switch k {
	case MemberKindAttribute:
		return "attribute"
	case MemberKindOperation:
		return "operation"
	case MemberKindConstant:
		return "constant"
	case MemberKindIterable:
		return "iterable"
	default:
		return fmt.Sprintf("member-%d", k)
	}
}

// Member is an element of an interface, mixin, namespace or callback
// interface body: *Attribute, *Operation, *Constant or *Iterable.
type Member interface {
	MemberKind() MemberKind
	MemberDecl() *MemberDeclaration
	member()
}

type MemberDeclaration struct {
	Identifier         Identifier
	ExtendedAttributes ExtendedAttributes
	Location           Location
}

func (m *MemberDeclaration) MemberDecl() *MemberDeclaration {
	return m
}

func (m *MemberDeclaration) Name() string {
	return m.Identifier.Name
}

func (*MemberDeclaration) member() {}

type Attribute struct {
	MemberDeclaration
	Type        Type
	Static      bool
	Readonly    bool
	Stringifier bool
	Inherit     bool
	// StaticKeyword records that `static` was written in source, as opposed to
	// being implied by a namespace.
	StaticKeyword bool
}

func (*Attribute) MemberKind() MemberKind { return MemberKindAttribute }

type Special uint8

const (
	SpecialNone Special = iota
	SpecialGetter
	SpecialSetter
	SpecialDeleter
	SpecialStringifier
	SpecialConstructor
)

func (s Special) String() string {
	switch s {
	case SpecialNone:
		return ""
	case SpecialGetter:
		return "getter"
	case SpecialSetter:
		return "setter"
	case SpecialDeleter:
		return "deleter"
	case SpecialStringifier:
		return "stringifier"
	case SpecialConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("special-%d", s)
	}
}

// StringifierOperationName is the name given to the operation synthesized for
// a stringifier attribute.
const StringifierOperationName = "__stringifier"

type Operation struct {
	MemberDeclaration
	Special       Special
	Arguments     []*Argument
	Return        Type
	Static        bool
	StaticKeyword bool
	// Synthesized marks operations created by the compiler rather than
	// written in source.
	Synthesized bool
}

func (*Operation) MemberKind() MemberKind { return MemberKindOperation }

// OverloadName is the name operations are grouped by for overload
// resolution. Unnamed special operations have no overload name.
func (o *Operation) OverloadName() string {
	if o.Special == SpecialConstructor {
		return "constructor"
	}
	return o.Name()
}

func (o *Operation) Signature() string {
	return fmt.Sprintf("%s %s%s", typeString(o.Return), o.OverloadName(), argumentList(o.Arguments))
}

type Constant struct {
	MemberDeclaration
	Type  Type
	Value Value
}

func (*Constant) MemberKind() MemberKind { return MemberKindConstant }

type IterableKind uint8

const (
	IterableKindIterable IterableKind = iota
	IterableKindAsyncIterable
	IterableKindMaplike
	IterableKindSetlike
)

func (k IterableKind) String() string {
	switch k {
	case IterableKindIterable:
		return "iterable"
	case IterableKindAsyncIterable:
		return "async iterable"
	case IterableKindMaplike:
		return "maplike"
	case IterableKindSetlike:
		return "setlike"
	default:
		return fmt.Sprintf("iterable-%d", k)
	}
}

// Iterable is an iterable, async iterable, maplike or setlike declaration.
// Key is nil for single-typed forms.
type Iterable struct {
	MemberDeclaration
	IterableKind IterableKind
	Key          Type
	Value        Type
	Readonly     bool
}

func (*Iterable) MemberKind() MemberKind { return MemberKindIterable }

type Argument struct {
	Name               string
	Type               Type
	Optional           bool
	Variadic           bool
	Default            optional.Optional[Value]
	ExtendedAttributes ExtendedAttributes
	Location           Location
	// ImplicitlyOptional marks a trailing dictionary argument made optional
	// by the validator.
	ImplicitlyOptional bool
}

func (a *Argument) String() string {
	var b strings.Builder
	if len(a.ExtendedAttributes) > 0 {
		b.WriteString(a.ExtendedAttributes.String())
		b.WriteString(" ")
	}
	if a.Optional && !a.ImplicitlyOptional {
		b.WriteString("optional ")
	}
	b.WriteString(typeString(a.Type))
	if a.Variadic {
		b.WriteString("...")
	}
	b.WriteString(" ")
	b.WriteString(a.Name)
	return b.String()
}

type DictionaryMember struct {
	MemberDeclaration
	Type     Type
	Default  optional.Optional[Value]
	Required bool
}

type ValueKind uint8

const (
	ValueKindNull ValueKind = iota
	ValueKindBoolean
	ValueKindInteger
	ValueKindDecimal
	ValueKindString
	ValueKindEmptySequence
	ValueKindEmptyDictionary
	ValueKindInfinity
	ValueKindNegativeInfinity
	ValueKindNaN
	ValueKindUndefined
)

// Value is a constant or default value literal as written in source.
type Value struct {
	Kind ValueKind
	Text string
}

func (v Value) String() string {
	switch v.Kind {
	case ValueKindNull:
		return "null"
	case ValueKindEmptySequence:
		return "[]"
	case ValueKindEmptyDictionary:
		return "{}"
	case ValueKindInfinity:
		return "Infinity"
	case ValueKindNegativeInfinity:
		return "-Infinity"
	case ValueKindNaN:
		return "NaN"
	case ValueKindUndefined:
		return "undefined"
	case ValueKindString:
		return fmt.Sprintf("%q", v.Text)
	default:
		return v.Text
	}
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
