// Package report implements pipeline stage 8 (spec §4.8): assembling the
// final AnalysisReport from the outputs of every earlier stage.
//
// Wire field names are camelCase per spec §6, since this shape is an
// external contract consumed outside the codeatlas binary.
package report

import (
	"time"

	"github.com/codeatlas-dev/codeatlas/internal/metrics"
	"github.com/codeatlas-dev/codeatlas/internal/model"
)

type Meta struct {
	Repo        string `json:"repo"`
	Branch      string `json:"branch,omitempty"`
	Commit      string `json:"commit,omitempty"`
	GeneratedAt string `json:"generatedAt"`
}

type NodeView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	LOC    int    `json:"loc"`
	FanIn  int    `json:"fanIn"`
	FanOut int    `json:"fanOut"`
}

type EdgeView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type GraphView struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

type GraphsView struct {
	Namespace GraphView `json:"namespace"`
	File      GraphView `json:"file"`
}

type CountsView struct {
	NamespaceNodes int `json:"namespaceNodes"`
	FileNodes      int `json:"fileNodes"`
	Edges          int `json:"edges"`
}

type TopEntryView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  int    `json:"value"`
}

type MetricsView struct {
	Counts    CountsView     `json:"counts"`
	FanInTop  []TopEntryView `json:"fanInTop"`
	FanOutTop []TopEntryView `json:"fanOutTop"`
}

type CycleView struct {
	ID     int      `json:"id"`
	Size   int      `json:"size"`
	Sample []string `json:"sample"`
}

// AnalysisReport is the pipeline's single output document (spec §3, §6).
type AnalysisReport struct {
	Meta    Meta        `json:"meta"`
	Graphs  GraphsView  `json:"graphs"`
	Metrics MetricsView `json:"metrics"`
	Cycles  []CycleView `json:"cycles"`
}

// Params carries everything the assembler needs from earlier stages.
type Params struct {
	RepoURL   string
	Branch    string
	Commit    string
	FileNodes []model.FileNode
	FileEdges []model.DirectedEdge
	NSNodes   []model.NamespaceNode
	NSEdges   []model.DirectedEdge
	Cycles    []model.CycleGroup
}

// Assemble builds the final AnalysisReport. Nodes are expected to already
// be in lexicographic order by ID (spec §4.8); edges are expected to
// already be deduplicated and in insertion order.
func Assemble(p Params) AnalysisReport {
	counts := metrics.BuildCounts(p.FileNodes, p.NSNodes, p.FileEdges, p.NSEdges)
	fanInTop := metrics.TopN(metrics.FanInTopEntries(p.FileNodes, p.NSNodes), 5)
	fanOutTop := metrics.TopN(metrics.FanOutTopEntries(p.FileNodes, p.NSNodes), 5)

	return AnalysisReport{
		Meta: Meta{
			Repo:        p.RepoURL,
			Branch:      p.Branch,
			Commit:      p.Commit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Graphs: GraphsView{
			Namespace: toGraphView(namespaceNodeViews(p.NSNodes), edgeViews(p.NSEdges)),
			File:      toGraphView(fileNodeViews(p.FileNodes), edgeViews(p.FileEdges)),
		},
		Metrics: MetricsView{
			Counts:    CountsView{NamespaceNodes: counts.NamespaceNodes, FileNodes: counts.FileNodes, Edges: counts.Edges},
			FanInTop:  topEntryViews(fanInTop),
			FanOutTop: topEntryViews(fanOutTop),
		},
		Cycles: cycleViews(p.Cycles),
	}
}

func toGraphView(nodes []NodeView, edges []EdgeView) GraphView {
	return GraphView{Nodes: nodes, Edges: edges}
}

func fileNodeViews(nodes []model.FileNode) []NodeView {
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = NodeView{ID: n.ID, Label: n.Label, LOC: n.LOC, FanIn: n.FanIn, FanOut: n.FanOut}
	}
	return views
}

func namespaceNodeViews(nodes []model.NamespaceNode) []NodeView {
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = NodeView{ID: n.ID, Label: n.Label, LOC: n.LOC, FanIn: n.FanIn, FanOut: n.FanOut}
	}
	return views
}

func edgeViews(edges []model.DirectedEdge) []EdgeView {
	views := make([]EdgeView, len(edges))
	for i, e := range edges {
		views[i] = EdgeView{From: e.From, To: e.To}
	}
	return views
}

func topEntryViews(entries []metrics.TopEntry) []TopEntryView {
	views := make([]TopEntryView, len(entries))
	for i, e := range entries {
		views[i] = TopEntryView{ID: e.ID, Label: e.Label, Value: e.Value}
	}
	return views
}

func cycleViews(groups []model.CycleGroup) []CycleView {
	views := make([]CycleView, len(groups))
	for i, g := range groups {
		views[i] = CycleView{ID: g.ID, Size: g.Size, Sample: g.Sample}
	}
	return views
}
