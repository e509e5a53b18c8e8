// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"slices"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// link resolves inheritance, includes statements and type references and
// assembles the model.
// reports: unresolved names, parents or mixins of the wrong kind, cycles
func link(productions []idl.Production, scope *scopeTable, r exc.Reporter) *idl.Model {
	parents := map[string]string{}
	mixins := map[string][]string{}
	combined := graph{}
	dictionaries := graph{}

	for _, production := range productions {
		switch p := production.(type) {
		case *idl.Interface:
			combined.addNode(p.Name())
			if p.Inherits == "" {
				continue
			}
			parent, ok := resolveParent(p, p.Inherits, scope, r)
			if !ok {
				continue
			}
			if pi, isInterface := parent.(*idl.Interface); !isInterface || pi.Mixin {
				_ = r.Report(exc.NewSubject(
					location(p.URI, p.Location),
					exc.CodeKindMismatch,
					p.Identifier.QualifiedName(),
					fmt.Sprintf("interface %s inherits from %s %s which is not an interface", p.Name(), idl.Describe(parent), p.Inherits),
				))
				continue
			}
			parents[p.Name()] = parent.Decl().Name()
			combined.addEdge(p.Name(), parent.Decl().Name())
		case *idl.Dictionary:
			dictionaries.addNode(p.Name())
			if p.Inherits == "" {
				continue
			}
			parent, ok := resolveParent(p, p.Inherits, scope, r)
			if !ok {
				continue
			}
			if _, isDictionary := parent.(*idl.Dictionary); !isDictionary {
				_ = r.Report(exc.NewSubject(
					location(p.URI, p.Location),
					exc.CodeKindMismatch,
					p.Identifier.QualifiedName(),
					fmt.Sprintf("dictionary %s inherits from %s %s which is not a dictionary", p.Name(), idl.Describe(parent), p.Inherits),
				))
				continue
			}
			parents[p.Name()] = parent.Decl().Name()
			dictionaries.addEdge(p.Name(), parent.Decl().Name())
		}
	}

	for _, production := range productions {
		stmt, ok := production.(*idl.IncludesStatement)
		if !ok {
			continue
		}
		includer, okIncluder := resolveIncludesSide(stmt, stmt.Includer, scope, r)
		included, okIncluded := resolveIncludesSide(stmt, stmt.Included, scope, r)
		if !okIncluder || !okIncluded {
			continue
		}
		if !slices.Contains(mixins[includer], included) {
			mixins[includer] = append(mixins[includer], included)
		}
		combined.addEdge(includer, included)
	}

	for _, cycle := range combined.cycles() {
		reportCycle(cycle, exc.CodeInheritanceCycle, "inheritance cycle", scope, r)
	}
	for _, cycle := range dictionaries.cycles() {
		reportCycle(cycle, exc.CodeDictionaryCycle, "dictionary inheritance cycle", scope, r)
	}

	typedefs := graph{}
	for _, production := range productions {
		resolveReferences(production, scope, r)
		if td, ok := production.(*idl.Typedef); ok {
			typedefs.addNode(td.Name())
			idl.WalkType(td.Type, func(t idl.Type) {
				if ref, ok := t.(*idl.ReferenceType); ok {
					if target, ok := ref.Target.(*idl.Typedef); ok {
						typedefs.addEdge(td.Name(), target.Name())
					}
				}
			})
		}
	}
	for _, cycle := range typedefs.cycles() {
		reportCycle(cycle, exc.CodeTypedefCycle, "typedef cycle", scope, r)
	}

	return idl.NewModel(productions, parents, mixins)
}

func resolveParent(child idl.Production, name string, scope *scopeTable, r exc.Reporter) (idl.Production, bool) {
	decl := child.Decl()
	parent, ok := scope.definition(name)
	if ok {
		return parent, true
	}
	message := fmt.Sprintf("%s %s inherits from unknown %s", idl.Describe(child), decl.Name(), name)
	if scope.isForwardOnly(name) {
		message = fmt.Sprintf("%s %s inherits from %s which is only forward declared", idl.Describe(child), decl.Name(), name)
	}
	_ = r.Report(exc.NewSubject(location(decl.URI, decl.Location), exc.CodeUnresolvedReference, decl.Identifier.QualifiedName(), message))
	return nil, false
}

func resolveIncludesSide(stmt *idl.IncludesStatement, name string, scope *scopeTable, r exc.Reporter) (string, bool) {
	target, ok := scope.definition(name)
	if !ok {
		_ = r.Report(exc.NewSubject(
			location(stmt.URI, stmt.Location),
			exc.CodeUnresolvedReference,
			qualify(name),
			fmt.Sprintf("%s includes %s: %s is not defined", stmt.Includer, stmt.Included, name),
		))
		return "", false
	}
	if _, isInterface := target.(*idl.Interface); !isInterface {
		_ = r.Report(exc.NewSubject(
			location(stmt.URI, stmt.Location),
			exc.CodeKindMismatch,
			qualify(name),
			fmt.Sprintf("%s includes %s: %s is a %s, not an interface", stmt.Includer, stmt.Included, name, idl.Describe(target)),
		))
		return "", false
	}
	return target.Decl().Name(), true
}

func reportCycle(cycle []string, code string, what string, scope *scopeTable, r exc.Reporter) {
	qualified := make([]string, 0, len(cycle))
	for _, name := range cycle {
		qualified = append(qualified, qualify(name))
	}
	loc := exc.Location{}
	if p, ok := scope.definition(cycle[0]); ok {
		loc = location(p.Decl().URI, p.Decl().Location)
	}
	_ = r.Report(exc.NewSubject(loc, code, qualified[0], fmt.Sprintf("%s: %s", what, describeCycle(qualified))))
}

// resolveReferences points every reference type inside a production at the
// production it names.
func resolveReferences(production idl.Production, scope *scopeTable, r exc.Reporter) {
	decl := production.Decl()
	resolve := func(loc idl.Location) func(interface{}) {
		return func(node interface{}) {
			ref, ok := node.(*idl.ReferenceType)
			if !ok || ref.Target != nil {
				return
			}
			target, ok := scope.lookup(ref.Name)
			if !ok {
				_ = r.Report(exc.NewSubject(
					location(decl.URI, loc),
					exc.CodeUnresolvedReference,
					qualify(ref.Name),
					fmt.Sprintf("unknown type %s", ref.Name),
				))
				return
			}
			switch t := target.(type) {
			case *idl.Namespace:
				_ = r.Report(exc.NewSubject(
					location(decl.URI, loc),
					exc.CodeKindMismatch,
					qualify(ref.Name),
					fmt.Sprintf("namespace %s cannot be used as a type", ref.Name),
				))
				return
			case *idl.Interface:
				if t.Mixin {
					_ = r.Report(exc.NewSubject(
						location(decl.URI, loc),
						exc.CodeKindMismatch,
						qualify(ref.Name),
						fmt.Sprintf("interface mixin %s cannot be used as a type", ref.Name),
					))
					return
				}
			}
			ref.Target = target
		}
	}
	switch p := production.(type) {
	case *idl.Interface:
		for _, m := range p.Members {
			walkMember(m, resolve(m.MemberDecl().Location))
		}
	case *idl.Namespace:
		for _, m := range p.Members {
			walkMember(m, resolve(m.MemberDecl().Location))
		}
	case *idl.CallbackInterface:
		for _, m := range p.Members {
			walkMember(m, resolve(m.MemberDecl().Location))
		}
	case *idl.Dictionary:
		for _, m := range p.Members {
			walkDictionaryMember(m, resolve(m.Location))
		}
	case *idl.Callback:
		walkType(p.Return, resolve(decl.Location))
		walkArguments(p.Arguments, resolve(decl.Location))
	case *idl.Typedef:
		walkType(p.Type, resolve(decl.Location))
	}
	walkExtendedAttributes(decl.ExtendedAttributes, resolve(decl.Location))
}
