// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import "fmt"

type ProductionKind uint8

const (
	ProductionKindError ProductionKind = iota
	ProductionKindInterface
	ProductionKindNamespace
	ProductionKindDictionary
	ProductionKindCallbackInterface
	ProductionKindCallback
	ProductionKindEnum
	ProductionKindTypedef
	ProductionKindIncludes
	ProductionKindExternalInterface
)

func (k ProductionKind) String() string {
	switch k {
	case ProductionKindInterface:
		return "interface"
	case ProductionKindNamespace:
		return "namespace"
	case ProductionKindDictionary:
		return "dictionary"
	case ProductionKindCallbackInterface:
		return "callback interface"
	case ProductionKindCallback:
		return "callback"
	case ProductionKindEnum:
		return "enum"
	case ProductionKindTypedef:
		return "typedef"
	case ProductionKindIncludes:
		return "includes"
	case ProductionKindExternalInterface:
		return "forward declaration"
	default:
		return fmt.Sprintf("production-%d", k)
	}
}

// Production is the closed set of top level WebIDL definitions. The concrete
// types are *Interface, *Namespace, *Dictionary, *CallbackInterface,
// *Callback, *Enum, *Typedef, *IncludesStatement and *ExternalInterface.
type Production interface {
	Kind() ProductionKind
	Decl() *Declaration
	production()
}

// Declaration holds the fields shared by all productions.
type Declaration struct {
	Identifier         Identifier
	Partial            bool
	ExtendedAttributes ExtendedAttributes
	URI                string
	Location           Location
}

func (d *Declaration) Decl() *Declaration {
	return d
}

func (d *Declaration) Name() string {
	return d.Identifier.Name
}

// MemberScope is the scope that members of the production are declared in.
func (d *Declaration) MemberScope() *Scope {
	return NewScope(d.Identifier.Scope, d.Identifier.Name)
}

func (*Declaration) production() {}

// Interface is a regular interface or, when Mixin is set, an interface mixin.
type Interface struct {
	Declaration
	Inherits string
	Mixin    bool
	Members  []Member
}

func (*Interface) Kind() ProductionKind { return ProductionKindInterface }

type Namespace struct {
	Declaration
	Members []Member
}

func (*Namespace) Kind() ProductionKind { return ProductionKindNamespace }

type CallbackInterface struct {
	Declaration
	Members []Member
}

func (*CallbackInterface) Kind() ProductionKind { return ProductionKindCallbackInterface }

type Dictionary struct {
	Declaration
	Inherits string
	Members  []*DictionaryMember
}

func (*Dictionary) Kind() ProductionKind { return ProductionKindDictionary }

// Callback is a callback function definition.
type Callback struct {
	Declaration
	Return    Type
	Arguments []*Argument
}

func (*Callback) Kind() ProductionKind { return ProductionKindCallback }

type Enum struct {
	Declaration
	Values []string
}

func (*Enum) Kind() ProductionKind { return ProductionKindEnum }

type Typedef struct {
	Declaration
	Type Type
}

func (*Typedef) Kind() ProductionKind { return ProductionKindTypedef }

// IncludesStatement is `Includer includes Included;`. The legacy
// `A implements B;` form is represented the same way with Legacy set.
type IncludesStatement struct {
	Declaration
	Includer string
	Included string
	Legacy   bool
}

func (*IncludesStatement) Kind() ProductionKind { return ProductionKindIncludes }

// ExternalInterface is a forward declaration `interface Foo;`.
type ExternalInterface struct {
	Declaration
}

func (*ExternalInterface) Kind() ProductionKind { return ProductionKindExternalInterface }

// MembersOf returns the interface-style member list of a production, or nil
// for productions that have none.
func MembersOf(p Production) []Member {
	switch n := p.(type) {
	case *Interface:
		return n.Members
	case *Namespace:
		return n.Members
	case *CallbackInterface:
		return n.Members
	}
	return nil
}

// SameKind reports whether two productions are of the same kind, treating
// interface mixins as distinct from regular interfaces.
func SameKind(a Production, b Production) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	ia, ok := a.(*Interface)
	if !ok {
		return true
	}
	return ia.Mixin == b.(*Interface).Mixin
}

// Describe names the kind of a production for diagnostics.
func Describe(p Production) string {
	if i, ok := p.(*Interface); ok && i.Mixin {
		return "interface mixin"
	}
	return p.Kind().String()
}
