// Package cycles implements pipeline stage 7 (spec §4.7): strongly
// connected component detection over the file graph.
//
// This runs Tarjan's algorithm with its usual DFS bookkeeping
// (index/lowlink/onStack per node, popping a component once a root is
// found) but replaces the call stack with an explicit work stack, since
// spec §9 calls out that recursion depth is unsafe on adversarial graphs.
package cycles

import (
	"sort"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

// Component is one detected strongly connected component, pre-filtering.
type Component struct {
	Members []string // in discovery pop order
}

// Find runs iterative Tarjan SCC over the adjacency implied by edges and
// returns components with size >= 2, numbered by discovery order starting
// at 1, each carrying a sample of up to five member node IDs (spec §4.7).
func Find(edges []model.DirectedEdge) []model.CycleGroup {
	adj := map[string][]string{}
	nodeSet := map[string]struct{}{}
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		nodeSet[e.From] = struct{}{}
		nodeSet[e.To] = struct{}{}
	}
	for node := range adj {
		sort.Strings(adj[node])
	}

	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	sccs := tarjan(nodes, adj)

	var groups []model.CycleGroup
	id := 1
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		sample := scc
		if len(sample) > 5 {
			sample = sample[:5]
		}
		groups = append(groups, model.CycleGroup{
			ID:     id,
			Size:   len(scc),
			Sample: append([]string(nil), sample...),
		})
		id++
	}
	return groups
}

// frame is one explicit-stack call activation of strongConnect(v), tracking
// how far through v's adjacency list the simulated recursion has advanced.
type frame struct {
	node     string
	childIdx int
}

func tarjan(nodes []string, adj map[string][]string) [][]string {
	index := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var sccs [][]string
	counter := 0

	for _, root := range nodes {
		if _, seen := index[root]; seen {
			continue
		}

		var work []frame
		work = append(work, frame{node: root, childIdx: 0})

		for len(work) > 0 {
			top := &work[len(work)-1]
			v := top.node

			if top.childIdx == 0 {
				if _, seen := index[v]; !seen {
					index[v] = counter
					lowlink[v] = counter
					counter++
					stack = append(stack, v)
					onStack[v] = true
				}
			}

			children := adj[v]
			descended := false
			for top.childIdx < len(children) {
				w := children[top.childIdx]
				top.childIdx++

				if _, seen := index[w]; !seen {
					work = append(work, frame{node: w, childIdx: 0})
					descended = true
					break
				}
				if onStack[w] {
					if index[w] < lowlink[v] {
						lowlink[v] = index[w]
					}
				}
			}
			if descended {
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var scc []string
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}

	return sccs
}
