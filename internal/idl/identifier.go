// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import "strings"

// Scope is an immutable named scope. A nil *Scope is the global scope.
type Scope struct {
	name   string
	parent *Scope
}

func NewScope(parent *Scope, name string) *Scope {
	return &Scope{name: name, parent: parent}
}

func (s *Scope) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// QualifiedName renders the scope as ::Outer::Inner, or the empty string for
// the global scope.
func (s *Scope) QualifiedName() string {
	if s == nil {
		return ""
	}
	segments := []string{}
	for cur := s; cur != nil; cur = cur.parent {
		segments = append(segments, cur.name)
	}
	var b strings.Builder
	for x := len(segments) - 1; x >= 0; x = x - 1 {
		b.WriteString("::")
		b.WriteString(segments[x])
	}
	return b.String()
}

// Identifier is a name bound inside a scope.
type Identifier struct {
	Name  string
	Scope *Scope
}

func NewIdentifier(scope *Scope, name string) Identifier {
	return Identifier{Name: name, Scope: scope}
}

func (i Identifier) QualifiedName() string {
	return i.Scope.QualifiedName() + "::" + i.Name
}

func (i Identifier) String() string {
	return i.QualifiedName()
}

// UnqualifiedName strips any leading scope qualification from a name such as
// ::Foo or ::Outer::Foo.
func UnqualifiedName(name string) string {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}
	return name
}
