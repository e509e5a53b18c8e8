// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import "slices"

// Model is the linked and validated result of compiling a set of WebIDL
// productions. Interface and dictionary relationships are held as edges keyed
// by name rather than as pointers between productions.
type Model struct {
	// Productions holds every merged top level production in declaration
	// order. Partial fragments are folded into their primary and not listed.
	Productions []Production

	byName  map[string]Production
	parents map[string]string
	mixins  map[string][]string
}

// NewModel assembles a model. parents maps an interface or dictionary name to
// its parent name and mixins maps an interface name to the names it includes,
// in declaration order.
func NewModel(productions []Production, parents map[string]string, mixins map[string][]string) *Model {
	m := &Model{
		Productions: productions,
		byName:      make(map[string]Production, len(productions)),
		parents:     parents,
		mixins:      mixins,
	}
	if m.parents == nil {
		m.parents = map[string]string{}
	}
	if m.mixins == nil {
		m.mixins = map[string][]string{}
	}
	for _, p := range productions {
		if _, ok := p.(*IncludesStatement); ok {
			continue
		}
		name := p.Decl().Name()
		if existing, ok := m.byName[name]; ok {
			if _, fwd := p.(*ExternalInterface); fwd {
				continue
			}
			if _, fwd := existing.(*ExternalInterface); !fwd {
				continue
			}
		}
		m.byName[name] = p
	}
	return m
}

// Lookup finds a top level production by its qualified or unqualified name.
func (m *Model) Lookup(name string) (Production, bool) {
	p, ok := m.byName[UnqualifiedName(name)]
	return p, ok
}

// Parent returns the direct parent name of an interface or dictionary.
func (m *Model) Parent(name string) (string, bool) {
	p, ok := m.parents[UnqualifiedName(name)]
	return p, ok
}

// ParentChain returns the ancestors of an interface or dictionary, nearest
// first.
func (m *Model) ParentChain(name string) []Production {
	chain := []Production{}
	seen := map[string]bool{UnqualifiedName(name): true}
	cur := UnqualifiedName(name)
	for {
		parent, ok := m.parents[cur]
		if !ok || seen[parent] {
			return chain
		}
		seen[parent] = true
		p, ok := m.byName[parent]
		if !ok {
			return chain
		}
		chain = append(chain, p)
		cur = parent
	}
}

// Mixins returns the interfaces directly included by an interface.
func (m *Model) Mixins(name string) []*Interface {
	out := []*Interface{}
	for _, included := range m.mixins[UnqualifiedName(name)] {
		if i, ok := m.byName[included].(*Interface); ok {
			out = append(out, i)
		}
	}
	return out
}

// Reaches reports whether to is reachable from from along parent and includes
// edges. A name does not reach itself unless it lies on a cycle.
func (m *Model) Reaches(from string, to string) bool {
	from, to = UnqualifiedName(from), UnqualifiedName(to)
	visited := map[string]bool{}
	stack := m.successors(from)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, m.successors(cur)...)
	}
	return false
}

func (m *Model) successors(name string) []string {
	out := slices.Clone(m.mixins[name])
	if parent, ok := m.parents[name]; ok {
		out = append(out, parent)
	}
	return out
}

// Interfaces returns all non-mixin interfaces in declaration order.
func (m *Model) Interfaces() []*Interface {
	out := []*Interface{}
	for _, p := range m.Productions {
		if i, ok := p.(*Interface); ok && !i.Mixin {
			out = append(out, i)
		}
	}
	return out
}

// Dictionaries returns all dictionaries in declaration order.
func (m *Model) Dictionaries() []*Dictionary {
	out := []*Dictionary{}
	for _, p := range m.Productions {
		if d, ok := p.(*Dictionary); ok {
			out = append(out, d)
		}
	}
	return out
}

// Namespaces returns all namespaces in declaration order.
func (m *Model) Namespaces() []*Namespace {
	out := []*Namespace{}
	for _, p := range m.Productions {
		if n, ok := p.(*Namespace); ok {
			out = append(out, n)
		}
	}
	return out
}
