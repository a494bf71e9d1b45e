// Package cycles finds closed material loops in a directed factory graph.
package cycles

import (
	"sort"
	"strings"
)

// DefaultMaxLen bounds the search depth. Loops longer than this are not
// interesting to surface and the bound keeps the DFS cheap on dense graphs.
const DefaultMaxLen = 10

// Find returns every elementary cycle of length 2..maxLen in the adjacency
// map. Each cycle is reported once in canonical rotation regardless of
// where the walk entered it or which direction it ran, and the result is
// sorted for deterministic output. maxLen <= 0 falls back to DefaultMaxLen.
func Find(graph map[string][]string, maxLen int) [][]string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	seen := make(map[string]bool)
	var out [][]string

	var walk func(start, current string, visited []string, onPath map[string]bool)
	walk = func(start, current string, visited []string, onPath map[string]bool) {
		for _, nxt := range graph[current] {
			if nxt == start && len(visited) >= 2 {
				cyc := canonical(visited)
				key := strings.Join(cyc, "\x00")
				if !seen[key] {
					seen[key] = true
					out = append(out, cyc)
				}
				continue
			}
			if onPath[nxt] || len(visited) >= maxLen {
				continue
			}
			onPath[nxt] = true
			walk(start, nxt, append(visited, nxt), onPath)
			delete(onPath, nxt)
		}
	}

	for _, start := range nodes {
		onPath := map[string]bool{start: true}
		walk(start, start, []string{start}, onPath)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return strings.Join(a, "\x00") < strings.Join(b, "\x00")
	})
	return out
}

// canonical picks a direction-independent representative: the
// lexicographically smallest rotation across the cycle and its reversal.
func canonical(cycle []string) []string {
	best := minRotation(cycle)
	rev := make([]string, len(cycle))
	for i, n := range cycle {
		rev[len(cycle)-1-i] = n
	}
	if r := minRotation(rev); less(r, best) {
		best = r
	}
	return best
}

func minRotation(cycle []string) []string {
	n := len(cycle)
	best := append([]string(nil), cycle...)
	for shift := 1; shift < n; shift++ {
		rot := make([]string, 0, n)
		rot = append(rot, cycle[shift:]...)
		rot = append(rot, cycle[:shift]...)
		if less(rot, best) {
			best = rot
		}
	}
	return best
}

func less(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
