// Package metrics implements pipeline stage 6 (spec §4.6): fan-in/fan-out
// computation, top-N ranking, and the counts block.
package metrics

import (
	"sort"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

// Counts is the AnalysisReport's counts block (spec §4.6).
type Counts struct {
	NamespaceNodes int
	FileNodes      int
	Edges          int
}

// TopEntry is one ranked node in a fanInTop/fanOutTop list.
type TopEntry struct {
	ID    string
	Label string
	Value int
}

// ApplyFanInOut computes fan-in and fan-out for every node from its own
// graph's deduplicated edge set (spec §4.6, testable property 4).
func ApplyFanInOut(nodes []model.FileNode, edges []model.DirectedEdge) []model.FileNode {
	in, out := fanCounts(edges)
	result := make([]model.FileNode, len(nodes))
	for i, n := range nodes {
		n.FanIn = in[n.ID]
		n.FanOut = out[n.ID]
		result[i] = n
	}
	return result
}

// ApplyNamespaceFanInOut is the namespace-graph counterpart of
// ApplyFanInOut.
func ApplyNamespaceFanInOut(nodes []model.NamespaceNode, edges []model.DirectedEdge) []model.NamespaceNode {
	in, out := fanCounts(edges)
	result := make([]model.NamespaceNode, len(nodes))
	for i, n := range nodes {
		n.FanIn = in[n.ID]
		n.FanOut = out[n.ID]
		result[i] = n
	}
	return result
}

func fanCounts(edges []model.DirectedEdge) (in, out map[string]int) {
	in = map[string]int{}
	out = map[string]int{}
	for _, e := range edges {
		out[e.From]++
		in[e.To]++
	}
	return in, out
}

// TopN selects the n highest-scoring nonzero entries by value, ties
// broken by input order (spec §4.6, glossary "Top-N").
func TopN(entries []TopEntry, n int) []TopEntry {
	type ranked struct {
		entry TopEntry
		order int
	}
	var nonzero []ranked
	for i, e := range entries {
		if e.Value != 0 {
			nonzero = append(nonzero, ranked{entry: e, order: i})
		}
	}
	sort.SliceStable(nonzero, func(i, j int) bool {
		return nonzero[i].entry.Value > nonzero[j].entry.Value
	})
	if len(nonzero) > n {
		nonzero = nonzero[:n]
	}
	out := make([]TopEntry, len(nonzero))
	for i, r := range nonzero {
		out[i] = r.entry
	}
	return out
}

// FanInTopEntries / FanOutTopEntries build the TopEntry slices feeding TopN
// from the union of file and namespace nodes (spec §4.6).
func FanInTopEntries(files []model.FileNode, namespaces []model.NamespaceNode) []TopEntry {
	var entries []TopEntry
	for _, f := range files {
		entries = append(entries, TopEntry{ID: f.ID, Label: f.Label, Value: f.FanIn})
	}
	for _, ns := range namespaces {
		entries = append(entries, TopEntry{ID: ns.ID, Label: ns.Label, Value: ns.FanIn})
	}
	return entries
}

func FanOutTopEntries(files []model.FileNode, namespaces []model.NamespaceNode) []TopEntry {
	var entries []TopEntry
	for _, f := range files {
		entries = append(entries, TopEntry{ID: f.ID, Label: f.Label, Value: f.FanOut})
	}
	for _, ns := range namespaces {
		entries = append(entries, TopEntry{ID: ns.ID, Label: ns.Label, Value: ns.FanOut})
	}
	return entries
}

// BuildCounts assembles the counts block from both graphs' node and edge
// sets.
func BuildCounts(fileNodes []model.FileNode, namespaceNodes []model.NamespaceNode, fileEdges, namespaceEdges []model.DirectedEdge) Counts {
	return Counts{
		NamespaceNodes: len(namespaceNodes),
		FileNodes:      len(fileNodes),
		Edges:          len(fileEdges) + len(namespaceEdges),
	}
}
