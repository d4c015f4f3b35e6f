// Package graph holds the pure edge-set algorithms shared by the project
// hierarchy and the task dependency managers. Both graphs are persisted as
// explicit edge rows; callers load the live edge set and pass it in.
package graph

// Edge is a directed edge in an adjacency list.
type Edge struct {
	From string
	To   string
}

// WouldCreateCycle reports whether adding the edge source->target to the
// given edge set would close a loop. It walks edges already persisted in the
// same direction, starting at target: if source is reachable from target,
// then target is already downstream of source and the new edge would form a
// cycle. A self edge (source == target) always cycles.
//
// The walk uses an explicit stack and a visited set, so it terminates on any
// finite edge set in O(V+E) regardless of hierarchy depth.
func WouldCreateCycle(edges []Edge, source, target string) bool {
	if source == target {
		return true
	}

	adj := adjacency(edges)

	stack := []string{target}
	visited := map[string]bool{target: true}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[node] {
			if next == source {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			stack = append(stack, next)
		}
	}
	return false
}

// ReachableFrom returns every node reachable from start by following edges
// in their stored direction. The start node itself is not included unless it
// sits on a path back to itself, which the cycle check prevents upstream.
func ReachableFrom(edges []Edge, start string) map[string]bool {
	adj := adjacency(edges)

	reached := map[string]bool{}
	stack := []string{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[node] {
			if reached[next] {
				continue
			}
			reached[next] = true
			stack = append(stack, next)
		}
	}
	return reached
}

// RelatedSet returns the full set of nodes connected to start through any
// chain of edges, followed in both directions. Used to bound a hierarchy
// read to the projects that can actually appear in the view.
func RelatedSet(edges []Edge, start string) map[string]bool {
	down := adjacency(edges)
	up := map[string][]string{}
	for _, e := range edges {
		up[e.To] = append(up[e.To], e.From)
	}

	related := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range down[node] {
			if !related[next] {
				related[next] = true
				stack = append(stack, next)
			}
		}
		for _, next := range up[node] {
			if !related[next] {
				related[next] = true
				stack = append(stack, next)
			}
		}
	}
	return related
}

func adjacency(edges []Edge) map[string][]string {
	adj := make(map[string][]string, len(edges))
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}
