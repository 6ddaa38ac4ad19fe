package graph

import "slices"

// reachable reports whether target can be reached from start by following
// dependency edges. start itself counts as reached.
func reachable(deps func(id string) []string, start, target string) bool {
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		for _, next := range deps(id) {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// FindCycle searches the graph described by order and adjacency for a directed
// cycle and returns it as a closed path (first id repeated at the end), or nil
// if the graph is acyclic.
//
// Nodes are visited in the given order, so the result is deterministic. The
// search is a depth-first walk with white/gray/black colouring; reaching a gray
// node means the walk has come back onto its own stack.
func FindCycle(order []string, adjacency map[string][]string) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(order))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range adjacency[id] {
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
			case gray:
				start := slices.Index(stack, next)
				cycle = append(slices.Clone(stack[start:]), next)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range order {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}
