// Package graph builds the task dependency graph and provides the
// topological ordering shared by date resolution and CPM analysis.
package graph

import (
	"sort"

	"github.com/joshharrison/ganttloom/internal/model"
)

// Build constructs a Graph from a task snapshot. Dependency references to
// tasks outside the snapshot are dropped. Build never fails: cycles are
// detected later, by TopoSort and the conflict detector.
func Build(tasks []model.Task) *Graph {
	g := &Graph{
		Tasks:  make(map[string]*model.Task, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	for i := range tasks {
		t := &tasks[i]
		g.Tasks[t.ID] = t
	}

	// Deduplicate edges; snapshots from the CRUD layer may repeat a
	// dependency reference.
	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.Adj[from] = append(g.Adj[from], to)
		g.RevAdj[to] = append(g.RevAdj[to], from)
	}

	for id, task := range g.Tasks {
		for _, dep := range task.DependsOn {
			if _, ok := g.Tasks[dep]; ok && dep != id {
				addEdge(dep, id)
			}
		}
	}

	// Sort adjacency lists for deterministic ordering
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	for id := range g.Tasks {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	return g
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.Tasks)
}

// Dependents returns the number of tasks that depend on id, directly.
func (g *Graph) Dependents(id string) int {
	return len(g.Adj[id])
}

// Dependencies returns the number of direct dependencies of id.
func (g *Graph) Dependencies(id string) int {
	return len(g.RevAdj[id])
}

// TopoSort runs Kahn's algorithm. Tasks left with a positive in-degree when
// the queue drains sit on or behind a cycle; they are returned in Cyclic
// (sorted) rather than causing a failure, so callers can fall back to
// degraded anchoring for exactly those tasks.
func (g *Graph) TopoSort() Order {
	inDegree := make(map[string]int, len(g.Tasks))
	for id := range g.Tasks {
		inDegree[id] = len(g.RevAdj[id])
	}

	var queue []string
	for id := range g.Tasks {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order Order
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order.Sorted = append(order.Sorted, node)

		var newReady []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	if len(order.Sorted) != len(g.Tasks) {
		sorted := make(map[string]bool, len(order.Sorted))
		for _, id := range order.Sorted {
			sorted[id] = true
		}
		for id := range g.Tasks {
			if !sorted[id] {
				order.Cyclic = append(order.Cyclic, id)
			}
		}
		sort.Strings(order.Cyclic)
	}

	return order
}

// CycleFrom returns the dependency cycle reachable from start that leads
// back to start, as a path of task IDs beginning and ending implicitly at
// start, or nil when start is not on a cycle. The walk follows RevAdj: a
// task "reappears in its own ancestor path" through its dependencies.
func (g *Graph) CycleFrom(start string) []string {
	onPath := make(map[string]bool)
	var path []string

	var dfs func(node string) []string
	dfs = func(node string) []string {
		if node == start && len(path) > 0 {
			cycle := make([]string, len(path))
			copy(cycle, path)
			return cycle
		}
		if onPath[node] {
			return nil
		}
		onPath[node] = true
		path = append(path, node)
		deps := append([]string(nil), g.RevAdj[node]...)
		sort.Strings(deps)
		for _, dep := range deps {
			if cycle := dfs(dep); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		onPath[node] = false
		return nil
	}

	return dfs(start)
}
