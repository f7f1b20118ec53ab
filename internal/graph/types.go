package graph

import "github.com/joshharrison/ganttloom/internal/model"

// Graph is the dependency structure of a task snapshot. Edges point from a
// dependency to the tasks it unblocks: Adj[a] lists the dependents of a,
// RevAdj[a] lists the dependencies of a.
type Graph struct {
	Tasks  map[string]*model.Task
	Adj    map[string][]string // task -> its dependents
	RevAdj map[string][]string // task -> its dependencies
	Roots  []string            // tasks with no dependencies
	Leaves []string            // tasks with no dependents
}

// Order is the result of a topological sort. Cyclic holds the tasks that
// could not be ordered because they sit on or behind a dependency cycle;
// callers schedule those through a degraded fallback instead of failing.
type Order struct {
	Sorted []string
	Cyclic []string
}

// HasCycle reports whether the sort left any task unordered.
func (o Order) HasCycle() bool {
	return len(o.Cyclic) > 0
}
