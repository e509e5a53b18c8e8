// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// scopeTable binds top level names to their definitions for one session.
// Partial definitions are queued for the merger rather than bound.
type scopeTable struct {
	definitions map[string]idl.Production
	forwards    map[string]*idl.ExternalInterface
	partials    []idl.Production
	// declared holds every bound production and includes statement in
	// declaration order.
	declared []idl.Production
}

func newScopeTable() *scopeTable {
	return &scopeTable{
		definitions: make(map[string]idl.Production),
		forwards:    make(map[string]*idl.ExternalInterface),
	}
}

// declare registers a raw production.
// reports: duplicate non-partial definitions
func (s *scopeTable) declare(production idl.Production, r exc.Reporter) error {
	decl := production.Decl()
	switch n := production.(type) {
	case *idl.IncludesStatement:
		s.declared = append(s.declared, n)
		return nil
	case *idl.ExternalInterface:
		if _, ok := s.forwards[decl.Identifier.QualifiedName()]; ok {
			return nil
		}
		s.forwards[decl.Identifier.QualifiedName()] = n
		s.declared = append(s.declared, n)
		return nil
	}
	if decl.Partial {
		s.partials = append(s.partials, production)
		return nil
	}
	name := decl.Identifier.QualifiedName()
	if existing, ok := s.definitions[name]; ok {
		prior := existing.Decl()
		return r.Report(exc.NewSubject(
			location(decl.URI, decl.Location),
			exc.CodeDuplicateDefinition,
			name,
			fmt.Sprintf("%s %s is already defined as %s at %s", idl.Describe(production), decl.Name(), idl.Describe(existing), location(prior.URI, prior.Location)),
		))
	}
	s.definitions[name] = production
	s.declared = append(s.declared, production)
	return nil
}

// lookup resolves a name written in source. Full definitions take precedence
// over forward declarations.
func (s *scopeTable) lookup(name string) (idl.Production, bool) {
	qualified := qualify(name)
	if p, ok := s.definitions[qualified]; ok {
		return p, true
	}
	if p, ok := s.forwards[qualified]; ok {
		return p, true
	}
	return nil, false
}

// definition resolves a name to its full definition only.
func (s *scopeTable) definition(name string) (idl.Production, bool) {
	p, ok := s.definitions[qualify(name)]
	return p, ok
}

func (s *scopeTable) isForwardOnly(name string) bool {
	qualified := qualify(name)
	_, full := s.definitions[qualified]
	_, fwd := s.forwards[qualified]
	return fwd && !full
}

func qualify(name string) string {
	return idl.NewIdentifier(nil, idl.UnqualifiedName(name)).QualifiedName()
}

func location(uri string, loc idl.Location) exc.Location {
	return exc.Location{URI: uri, Location: loc}
}
