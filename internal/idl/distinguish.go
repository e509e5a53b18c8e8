// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import "fmt"

type category uint8

const (
	categoryNone category = iota
	categoryBoolean
	categoryNumeric
	categoryString
	categoryObject
	categoryInterfaceLike
	categoryCallbackFunction
	categoryDictionaryLike
	categorySequenceLike
	categoryBufferSource
	categoryUndefined
)

// indistinguishableCategories lists the pairs of distinct categories that
// overlap. Both orders are present.
var indistinguishableCategories = map[[2]category]bool{}

func init() {
	pairs := [][2]category{
		{categoryObject, categoryInterfaceLike},
		{categoryObject, categoryCallbackFunction},
		{categoryObject, categoryDictionaryLike},
		{categoryObject, categorySequenceLike},
		{categoryCallbackFunction, categoryDictionaryLike},
		{categoryUndefined, categoryDictionaryLike},
	}
	for _, p := range pairs {
		indistinguishableCategories[p] = true
		indistinguishableCategories[[2]category{p[1], p[0]}] = true
	}
}

// IsDistinguishableFrom reports whether a value of type a can always be told
// apart from a value of type b at runtime. The relation is symmetric and the
// method panics if an evaluation ever disagrees with its mirror.
func (m *Model) IsDistinguishableFrom(a Type, b Type) bool {
	forward := m.distinguishable(a, b)
	backward := m.distinguishable(b, a)
	if forward != backward {
		panic(fmt.Sprintf("asymmetric distinguishability between %s and %s", typeString(a), typeString(b)))
	}
	return forward
}

func (m *Model) distinguishable(a Type, b Type) bool {
	a, b = Resolve(a), Resolve(b)
	if IncludesNullable(a) && m.acceptsNull(b) {
		return false
	}
	if IncludesNullable(b) && m.acceptsNull(a) {
		return false
	}
	a, b = StripNullable(a), StripNullable(b)

	if u, ok := a.(*UnionType); ok {
		for _, member := range FlattenedMembers(u) {
			if !m.distinguishable(member, b) {
				return false
			}
		}
		return true
	}
	if u, ok := b.(*UnionType); ok {
		for _, member := range FlattenedMembers(u) {
			if !m.distinguishable(a, member) {
				return false
			}
		}
		return true
	}

	if isOpaque(a) || isOpaque(b) {
		return false
	}

	ca, cb := m.categorize(a), m.categorize(b)
	if ca == categoryNone || cb == categoryNone {
		return false
	}
	if ca != cb {
		return !indistinguishableCategories[[2]category{ca, cb}]
	}
	switch ca {
	case categoryBoolean, categoryNumeric, categoryString:
		// Primitive kinds differ from each other. Enums overlap with every
		// string type.
		pa, okA := a.(*PrimitiveType)
		pb, okB := b.(*PrimitiveType)
		return okA && okB && pa.Kind != pb.Kind
	case categoryInterfaceLike:
		return m.interfacesDistinguishable(a, b)
	}
	return false
}

// isOpaque reports types that overlap with every other type.
func isOpaque(t Type) bool {
	switch n := t.(type) {
	case *PrimitiveType:
		return n.Kind == PrimitiveAny
	case *PromiseType:
		return true
	}
	return false
}

func (m *Model) categorize(t Type) category {
	switch n := t.(type) {
	case *PrimitiveType:
		switch {
		case n.Kind == PrimitiveBoolean:
			return categoryBoolean
		case n.IsNumeric():
			return categoryNumeric
		case n.IsString():
			return categoryString
		case n.Kind == PrimitiveObject:
			return categoryObject
		case n.Kind == PrimitiveUndefined:
			return categoryUndefined
		}
		return categoryNone
	case *BufferSourceType:
		return categoryBufferSource
	case *SequenceType, *FrozenArrayType:
		return categorySequenceLike
	case *RecordType:
		return categoryDictionaryLike
	case *ReferenceType:
		switch n.Target.(type) {
		case *Enum:
			return categoryString
		case *Callback:
			return categoryCallbackFunction
		case *Dictionary, *CallbackInterface:
			return categoryDictionaryLike
		}
		// Interfaces, forward declarations and anything left unresolved.
		return categoryInterfaceLike
	}
	return categoryNone
}

// acceptsNull reports whether null is a valid value of t other than through
// an outer nullable: a union with a nullable or dictionary-like member, or a
// dictionary-like type.
func (m *Model) acceptsNull(t Type) bool {
	t = Resolve(t)
	if u, ok := StripNullable(t).(*UnionType); ok {
		return IncludesNullable(t) || m.hasDictionaryLike(u)
	}
	return m.categorize(StripNullable(t)) == categoryDictionaryLike
}

func (m *Model) hasDictionaryLike(t Type) bool {
	t = StripNullable(t)
	if u, ok := t.(*UnionType); ok {
		for _, member := range FlattenedMembers(u) {
			if m.categorize(member) == categoryDictionaryLike {
				return true
			}
		}
		return false
	}
	return m.categorize(t) == categoryDictionaryLike
}

func (m *Model) interfacesDistinguishable(a Type, b Type) bool {
	ra, okA := a.(*ReferenceType)
	rb, okB := b.(*ReferenceType)
	if !okA || !okB {
		return false
	}
	nameA, nameB := UnqualifiedName(ra.Name), UnqualifiedName(rb.Name)
	if nameA == nameB {
		return false
	}
	return !m.Reaches(nameA, nameB) && !m.Reaches(nameB, nameA)
}
