// Package depgraph implements pipeline stage 5 (spec §4.5): mapping files
// to namespaces and lifting the file-level dependency graph to a
// namespace-level one.
package depgraph

import (
	"sort"
	"strings"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

// FileGraph is the file-level dependency graph: a node for every
// SourceDocument that participates in at least one edge (spec §3).
type FileGraph struct {
	Nodes []model.FileNode
	Edges []model.DirectedEdge
}

// NamespaceGraph is the namespace-level dependency graph lifted from a
// FileGraph via each file's primary namespace.
type NamespaceGraph struct {
	Nodes []model.NamespaceNode
	Edges []model.DirectedEdge
}

// BuildFileGraph materializes exactly the nodes touched by edges, in
// lexicographic order by node ID, and deduplicates the edge set while
// preserving first-insertion order.
func BuildFileGraph(edges []model.DirectedEdge) FileGraph {
	dedup := dedupeEdges(edges)

	seen := map[string]struct{}{}
	var relPaths []string
	for _, e := range dedup {
		for _, id := range []string{e.From, e.To} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			relPaths = append(relPaths, strings.TrimPrefix(id, "File:"))
		}
	}
	sort.Strings(relPaths)

	nodes := make([]model.FileNode, 0, len(relPaths))
	for _, rel := range relPaths {
		nodes = append(nodes, model.FileNode{
			ID:      model.FileNodeID(rel),
			Label:   lastSegment(rel, "/"),
			RelPath: rel,
		})
	}

	return FileGraph{Nodes: nodes, Edges: dedup}
}

// BuildNamespaceGraph lifts fileEdges to the namespace level using
// fileToNamespace (repository-relative path -> fully-qualified namespace).
// Self-loops are kept as edges (spec §4.5).
func BuildNamespaceGraph(fileEdges []model.DirectedEdge, fileToNamespace map[string]string) NamespaceGraph {
	var lifted []model.DirectedEdge
	for _, e := range fileEdges {
		fromRel := strings.TrimPrefix(e.From, "File:")
		toRel := strings.TrimPrefix(e.To, "File:")
		fromNS := resolveNamespace(fileToNamespace, fromRel)
		toNS := resolveNamespace(fileToNamespace, toRel)
		lifted = append(lifted, model.DirectedEdge{
			From: model.NamespaceNodeID(fromNS),
			To:   model.NamespaceNodeID(toNS),
		})
	}

	dedup := dedupeEdges(lifted)

	seen := map[string]struct{}{}
	var fqns []string
	for _, e := range dedup {
		for _, id := range []string{e.From, e.To} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			fqns = append(fqns, strings.TrimPrefix(id, "Namespace:"))
		}
	}
	sort.Strings(fqns)

	nodes := make([]model.NamespaceNode, 0, len(fqns))
	for _, fqn := range fqns {
		nodes = append(nodes, model.NamespaceNode{
			ID:    model.NamespaceNodeID(fqn),
			Label: namespaceLabel(fqn),
			FQN:   fqn,
		})
	}

	return NamespaceGraph{Nodes: nodes, Edges: dedup}
}

func resolveNamespace(fileToNamespace map[string]string, relPath string) string {
	if ns, ok := fileToNamespace[relPath]; ok && ns != "" {
		return ns
	}
	return model.GlobalNamespace
}

func namespaceLabel(fqn string) string {
	if fqn == model.GlobalNamespace {
		return "(global)"
	}
	return lastSegment(fqn, ".")
}

func lastSegment(s, sep string) string {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s
	}
	return s[idx+len(sep):]
}

// dedupeEdges returns the edge set deduplicated while preserving
// first-insertion order (spec §4.8 edge ordering).
func dedupeEdges(edges []model.DirectedEdge) []model.DirectedEdge {
	seen := map[model.DirectedEdge]struct{}{}
	var ordered []model.DirectedEdge
	for _, e := range edges {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		ordered = append(ordered, e)
	}
	return ordered
}
