package depgraph

import (
	"testing"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

func TestBuildFileGraph_OnlyTouchedFilesBecomeNodes(t *testing.T) {
	edges := []model.DirectedEdge{
		{From: model.FileNodeID("src/A.cs"), To: model.FileNodeID("src/B.cs")},
		{From: model.FileNodeID("src/A.cs"), To: model.FileNodeID("src/B.cs")},
	}
	g := BuildFileGraph(edges)
	if len(g.Edges) != 1 {
		t.Fatalf("expected deduped to 1 edge, got %d", len(g.Edges))
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if g.Nodes[0].RelPath != "src/A.cs" || g.Nodes[1].RelPath != "src/B.cs" {
		t.Fatalf("expected lexicographic node order, got %+v", g.Nodes)
	}
}

func TestBuildNamespaceGraph_LiftsAndKeepsSelfLoops(t *testing.T) {
	fileEdges := []model.DirectedEdge{
		{From: model.FileNodeID("src/A.cs"), To: model.FileNodeID("src/B.cs")},
		{From: model.FileNodeID("src/B.cs"), To: model.FileNodeID("src/C.cs")},
	}
	fileToNS := map[string]string{
		"src/A.cs": "X",
		"src/B.cs": "Y",
		"src/C.cs": "Y",
	}
	g := BuildNamespaceGraph(fileEdges, fileToNS)
	if len(g.Edges) != 2 {
		t.Fatalf("expected 2 namespace edges, got %d", len(g.Edges))
	}

	foundSelfLoop := false
	for _, e := range g.Edges {
		if e.From == e.To && e.From == model.NamespaceNodeID("Y") {
			foundSelfLoop = true
		}
	}
	if !foundSelfLoop {
		t.Fatalf("expected self-loop on namespace Y, got %+v", g.Edges)
	}
}

func TestBuildNamespaceGraph_UnmappedFileFallsBackToGlobal(t *testing.T) {
	fileEdges := []model.DirectedEdge{
		{From: model.FileNodeID("src/A.cs"), To: model.FileNodeID("src/B.cs")},
	}
	g := BuildNamespaceGraph(fileEdges, map[string]string{"src/A.cs": "X"})
	foundGlobal := false
	for _, n := range g.Nodes {
		if n.FQN == model.GlobalNamespace && n.Label == "(global)" {
			foundGlobal = true
		}
	}
	if !foundGlobal {
		t.Fatalf("expected a global namespace node, got %+v", g.Nodes)
	}
}
