// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// merge folds every queued partial into its primary definition and returns
// the session's productions in declaration order. The result does not depend
// on whether a partial appears before or after its primary.
// reports: missing primaries, kind mismatches, conflicting extended attributes
func merge(scope *scopeTable, r exc.Reporter) []idl.Production {
	for _, partial := range scope.partials {
		decl := partial.Decl()
		name := decl.Identifier.QualifiedName()
		primary, ok := scope.definition(name)
		if !ok {
			_ = r.Report(exc.NewSubject(
				location(decl.URI, decl.Location),
				exc.CodeNoPrimaryDefinition,
				name,
				fmt.Sprintf("partial %s %s has no primary definition", idl.Describe(partial), decl.Name()),
			))
			continue
		}
		if !idl.SameKind(primary, partial) {
			_ = r.Report(exc.NewSubject(
				location(decl.URI, decl.Location),
				exc.CodePartialKindMismatch,
				name,
				fmt.Sprintf("partial %s %s does not match its primary %s", idl.Describe(partial), decl.Name(), idl.Describe(primary)),
			))
			continue
		}
		mergeExtendedAttributes(primary.Decl(), decl, r)
		switch p := primary.(type) {
		case *idl.Interface:
			p.Members = append(p.Members, partial.(*idl.Interface).Members...)
		case *idl.Namespace:
			p.Members = append(p.Members, partial.(*idl.Namespace).Members...)
		case *idl.Dictionary:
			p.Members = append(p.Members, partial.(*idl.Dictionary).Members...)
		}
	}

	out := make([]idl.Production, 0, len(scope.declared))
	for _, production := range scope.declared {
		if fwd, ok := production.(*idl.ExternalInterface); ok {
			if _, full := scope.definition(fwd.Name()); full {
				continue
			}
		}
		if d, ok := production.(*idl.Dictionary); ok {
			slices.SortStableFunc(d.Members, func(a *idl.DictionaryMember, b *idl.DictionaryMember) int {
				return strings.Compare(a.Name(), b.Name())
			})
		}
		out = append(out, production)
	}
	return out
}

func mergeExtendedAttributes(primary *idl.Declaration, partial *idl.Declaration, r exc.Reporter) {
	for _, attr := range partial.ExtendedAttributes {
		existing, ok := primary.ExtendedAttributes.Get(attr.Name)
		if !ok {
			primary.ExtendedAttributes = append(primary.ExtendedAttributes, attr)
			continue
		}
		if existing.Equal(attr) {
			continue
		}
		_ = r.Report(exc.NewSubject(
			location(partial.URI, attr.Location),
			exc.CodeExtendedAttributeConflict,
			partial.Identifier.QualifiedName(),
			fmt.Sprintf("extended attribute [%s] conflicts with [%s] on the primary definition", attr, existing),
		))
	}
}
