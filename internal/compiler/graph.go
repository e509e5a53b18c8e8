// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"slices"
	"strings"
)

// graph is a directed graph over qualified names.
type graph map[string][]string

func (g graph) addNode(name string) {
	if _, ok := g[name]; !ok {
		g[name] = nil
	}
}

func (g graph) addEdge(from string, to string) {
	if !slices.Contains(g[from], to) {
		g[from] = append(g[from], to)
	}
	if _, ok := g[to]; !ok {
		g[to] = nil
	}
}

// cycles returns the distinct cycles of the graph. Each cycle starts at its
// lexicographically smallest name and cycles are ordered by that name.
// Traversal order is sorted so that results are deterministic.
func (g graph) cycles() [][]string {
	const (
		unvisited = iota
		onStack
		finished
	)
	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)

	state := make(map[string]int, len(g))
	stack := []string{}
	seen := map[string]bool{}
	out := [][]string{}

	var visit func(n string)
	visit = func(n string) {
		state[n] = onStack
		stack = append(stack, n)
		neighbors := slices.Clone(g[n])
		slices.Sort(neighbors)
		for _, m := range neighbors {
			switch state[m] {
			case unvisited:
				visit(m)
			case onStack:
				idx := slices.Index(stack, m)
				cycle := rotateSmallest(stack[idx:])
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					out = append(out, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = finished
	}
	for _, n := range nodes {
		if state[n] == unvisited {
			visit(n)
		}
	}
	slices.SortStableFunc(out, func(a []string, b []string) int {
		return strings.Compare(strings.Join(a, "\x00"), strings.Join(b, "\x00"))
	})
	return out
}

func rotateSmallest(cycle []string) []string {
	smallest := 0
	for x := range cycle {
		if cycle[x] < cycle[smallest] {
			smallest = x
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[smallest:]...)
	return append(out, cycle[:smallest]...)
}

// describeCycle renders a cycle as A -> B -> A.
func describeCycle(cycle []string) string {
	return strings.Join(append(slices.Clone(cycle), cycle[0]), " -> ")
}
