// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"fmt"
	"strings"
)

// Type is the closed set of IDL types.
type Type interface {
	String() string
	typ()
}

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (t *PrimitiveType) String() string {
	name, ok := GetPrimitiveName(t.Kind)
	if !ok {
		return fmt.Sprintf("primitive-%d", t.Kind)
	}
	return name
}

func (t *PrimitiveType) IsNumeric() bool {
	return t.Kind >= PrimitiveByte && t.Kind <= PrimitiveUnrestrictedDouble
}

func (t *PrimitiveType) IsInteger() bool {
	return t.Kind >= PrimitiveByte && t.Kind <= PrimitiveUnsignedLongLong
}

func (t *PrimitiveType) IsString() bool {
	return t.Kind >= PrimitiveDOMString && t.Kind <= PrimitiveUTF8String
}

type NullableType struct {
	Inner Type
}

func (t *NullableType) String() string { return typeString(t.Inner) + "?" }

type SequenceType struct {
	Element Type
}

func (t *SequenceType) String() string { return "sequence<" + typeString(t.Element) + ">" }

type FrozenArrayType struct {
	Element Type
}

func (t *FrozenArrayType) String() string { return "FrozenArray<" + typeString(t.Element) + ">" }

type RecordType struct {
	Key   Type
	Value Type
}

func (t *RecordType) String() string {
	return "record<" + typeString(t.Key) + ", " + typeString(t.Value) + ">"
}

type PromiseType struct {
	Result Type
}

func (t *PromiseType) String() string { return "Promise<" + typeString(t.Result) + ">" }

type UnionType struct {
	Members []Type
}

func (t *UnionType) String() string {
	parts := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		parts = append(parts, typeString(m))
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

type BufferSourceType struct {
	Kind BufferSourceKind
}

func (t *BufferSourceType) String() string {
	name, ok := GetBufferSourceName(t.Kind)
	if !ok {
		return fmt.Sprintf("buffer-%d", t.Kind)
	}
	return name
}

// ReferenceType names a user defined type. Target is nil until the linker
// resolves it.
type ReferenceType struct {
	Name   string
	Target Production
}

func (t *ReferenceType) String() string { return t.Name }

func (*PrimitiveType) typ()    {}
func (*NullableType) typ()     {}
func (*SequenceType) typ()     {}
func (*FrozenArrayType) typ()  {}
func (*RecordType) typ()       {}
func (*PromiseType) typ()      {}
func (*UnionType) typ()        {}
func (*BufferSourceType) typ() {}
func (*ReferenceType) typ()    {}

// Resolve follows typedef references until it reaches a non-typedef type. A
// nullable typedef target is preserved as a nullable.
func Resolve(t Type) Type {
	for x := 0; x < 64; x = x + 1 {
		ref, ok := t.(*ReferenceType)
		if !ok {
			return t
		}
		td, ok := ref.Target.(*Typedef)
		if !ok {
			return t
		}
		t = td.Type
	}
	return t
}

// IsPrimitive reports whether t resolves to the given primitive kind.
func IsPrimitive(t Type, kind PrimitiveKind) bool {
	p, ok := Resolve(t).(*PrimitiveType)
	return ok && p.Kind == kind
}

// StripNullable removes one level of nullability.
func StripNullable(t Type) Type {
	t = Resolve(t)
	if n, ok := t.(*NullableType); ok {
		return Resolve(n.Inner)
	}
	return t
}

// FlattenedMembers returns the flattened member types of a union: nested
// unions are expanded, typedefs resolved and nullables unwrapped.
func FlattenedMembers(u *UnionType) []Type {
	out := []Type{}
	for _, m := range u.Members {
		m = StripNullable(m)
		if inner, ok := m.(*UnionType); ok {
			out = append(out, FlattenedMembers(inner)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// NullableMemberCount counts the nullable member types of a union, including
// those of nested unions.
func NullableMemberCount(u *UnionType) int {
	count := 0
	for _, m := range u.Members {
		m = Resolve(m)
		if n, ok := m.(*NullableType); ok {
			count = count + 1
			m = Resolve(n.Inner)
		}
		if inner, ok := m.(*UnionType); ok {
			count = count + NullableMemberCount(inner)
		}
	}
	return count
}

// IncludesNullable reports whether t is nullable or a union with a nullable
// member type.
func IncludesNullable(t Type) bool {
	t = Resolve(t)
	if _, ok := t.(*NullableType); ok {
		return true
	}
	if u, ok := t.(*UnionType); ok {
		return NullableMemberCount(u) > 0
	}
	return false
}

// IsDictionary reports whether t resolves to a dictionary reference.
func IsDictionary(t Type) bool {
	ref, ok := Resolve(t).(*ReferenceType)
	if !ok {
		return false
	}
	_, ok = ref.Target.(*Dictionary)
	return ok
}

// ContainsDictionary reports whether t is a dictionary or a union whose
// flattened members include one. Nullability is ignored.
func ContainsDictionary(t Type) bool {
	t = StripNullable(t)
	if u, ok := t.(*UnionType); ok {
		for _, m := range FlattenedMembers(u) {
			if IsDictionary(m) {
				return true
			}
		}
		return false
	}
	return IsDictionary(t)
}

// SameType compares two types structurally after resolving typedefs.
func SameType(a Type, b Type) bool {
	return typeString(canonical(a)) == typeString(canonical(b))
}

func canonical(t Type) Type {
	t = Resolve(t)
	switch n := t.(type) {
	case *NullableType:
		return &NullableType{Inner: canonical(n.Inner)}
	case *SequenceType:
		return &SequenceType{Element: canonical(n.Element)}
	case *FrozenArrayType:
		return &FrozenArrayType{Element: canonical(n.Element)}
	case *RecordType:
		return &RecordType{Key: canonical(n.Key), Value: canonical(n.Value)}
	case *PromiseType:
		return &PromiseType{Result: canonical(n.Result)}
	case *UnionType:
		members := make([]Type, 0, len(n.Members))
		for _, m := range n.Members {
			members = append(members, canonical(m))
		}
		return &UnionType{Members: members}
	}
	return t
}

// WalkType visits t and every type nested inside it, outermost first.
func WalkType(t Type, f func(Type)) {
	if t == nil {
		return
	}
	f(t)
	switch n := t.(type) {
	case *NullableType:
		WalkType(n.Inner, f)
	case *SequenceType:
		WalkType(n.Element, f)
	case *FrozenArrayType:
		WalkType(n.Element, f)
	case *RecordType:
		WalkType(n.Key, f)
		WalkType(n.Value, f)
	case *PromiseType:
		WalkType(n.Result, f)
	case *UnionType:
		for _, m := range n.Members {
			WalkType(m, f)
		}
	}
}
