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

// overloadEntry is one element of an effective overload set: an operation
// called with exactly len(types) arguments.
type overloadEntry struct {
	operation *idl.Operation
	types     []idl.Type
}

// effectiveOverloads expands a set of same-named operations into entries
// keyed by argument count. Every operation contributes its full signature
// plus each prefix that drops only optional or variadic arguments. A
// variadic argument is repeated up to the longest signature in the set.
func effectiveOverloads(operations []*idl.Operation) map[int][]overloadEntry {
	longest := 0
	for _, op := range operations {
		longest = max(longest, len(op.Arguments))
	}
	out := map[int][]overloadEntry{}
	add := func(op *idl.Operation, types []idl.Type) {
		out[len(types)] = append(out[len(types)], overloadEntry{operation: op, types: types})
	}
	for _, op := range operations {
		types := make([]idl.Type, 0, len(op.Arguments))
		for _, arg := range op.Arguments {
			types = append(types, arg.Type)
		}
		add(op, types)
		n := len(op.Arguments)
		if n > 0 && op.Arguments[n-1].Variadic {
			variadic := op.Arguments[n-1].Type
			extended := slices.Clone(types)
			for len(extended) < longest {
				extended = append(extended, variadic)
				add(op, slices.Clone(extended))
			}
		}
		for x := n - 1; x >= 0; x = x - 1 {
			arg := op.Arguments[x]
			if !arg.Optional && !arg.Variadic {
				break
			}
			add(op, slices.Clone(types[:x]))
		}
	}
	return out
}

// checkOverloads validates every overload set declared on a member container.
// reports: mixed static and regular overloads, ambiguous overloads
func (c *modelChecker) checkOverloads(owner *idl.Declaration, members []idl.Member) {
	groups := map[string][]*idl.Operation{}
	order := []string{}
	for _, member := range members {
		op, ok := member.(*idl.Operation)
		if !ok || op.Synthesized || op.OverloadName() == "" {
			continue
		}
		name := op.OverloadName()
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], op)
	}
	for _, name := range order {
		ops := groups[name]
		if len(ops) < 2 {
			continue
		}
		if mixed := mixedStatic(ops); mixed != nil {
			c.report(owner, mixed.Location, exc.CodeMixedStatic, mixed.Identifier.QualifiedName(),
				fmt.Sprintf("overloads of %s mix static and regular operations", name))
			continue
		}
		c.checkOverloadSet(owner, name, ops)
	}
}

func mixedStatic(ops []*idl.Operation) *idl.Operation {
	for _, op := range ops[1:] {
		if op.Static != ops[0].Static {
			return op
		}
	}
	return nil
}

func (c *modelChecker) checkOverloadSet(owner *idl.Declaration, name string, ops []*idl.Operation) {
	set := effectiveOverloads(ops)
	counts := make([]int, 0, len(set))
	for count := range set {
		counts = append(counts, count)
	}
	slices.Sort(counts)
	for _, count := range counts {
		entries := set[count]
		if len(entries) < 2 {
			continue
		}
		last := entries[len(entries)-1].operation
		index, ok := c.distinguishingIndex(entries, count)
		if !ok {
			c.report(owner, last.Location, exc.CodeOverloadAmbiguity, last.Identifier.QualifiedName(),
				fmt.Sprintf("overloads of %s with %d arguments cannot be distinguished", name, count))
			continue
		}
		for x := 0; x < index; x = x + 1 {
			if !sameTypeAt(entries, x) {
				c.report(owner, last.Location, exc.CodeOverloadAmbiguity, last.Identifier.QualifiedName(),
					fmt.Sprintf("overloads of %s with %d arguments have mismatched preceding types at argument %d", name, count, x))
				break
			}
		}
	}
}

// distinguishingIndex finds the lowest argument index at which every pair of
// entries has distinguishable types.
func (c *modelChecker) distinguishingIndex(entries []overloadEntry, count int) (int, bool) {
	for x := 0; x < count; x = x + 1 {
		if c.allDistinguishable(entries, x) {
			return x, true
		}
	}
	return 0, false
}

func (c *modelChecker) allDistinguishable(entries []overloadEntry, index int) bool {
	for a := 0; a < len(entries); a = a + 1 {
		for b := a + 1; b < len(entries); b = b + 1 {
			if !c.model.IsDistinguishableFrom(entries[a].types[index], entries[b].types[index]) {
				return false
			}
		}
	}
	return true
}

func sameTypeAt(entries []overloadEntry, index int) bool {
	for _, entry := range entries[1:] {
		if !idl.SameType(entries[0].types[index], entry.types[index]) {
			return false
		}
	}
	return true
}
