// Package pipeline orchestrates the sequential stage chain described in
// spec §2: workspace acquisition, triage, project loading, parsing and
// resolution, namespace aggregation, metrics, cycle detection, and report
// assembly. Resources are released on every exit path (spec §4.1, §7).
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/config"
	"github.com/codeatlas-dev/codeatlas/internal/csharp"
	"github.com/codeatlas-dev/codeatlas/internal/cycles"
	"github.com/codeatlas-dev/codeatlas/internal/depgraph"
	"github.com/codeatlas-dev/codeatlas/internal/metrics"
	"github.com/codeatlas-dev/codeatlas/internal/model"
	"github.com/codeatlas-dev/codeatlas/internal/project"
	"github.com/codeatlas-dev/codeatlas/internal/report"
	"github.com/codeatlas-dev/codeatlas/internal/triage"
	"github.com/codeatlas-dev/codeatlas/internal/workspace"
)

// Request is the pipeline's single entry-point input (spec §6 POST /analyze).
type Request struct {
	RepoURL string
	Branch  string
}

// maxParseConcurrency bounds stage 4's fan-out across projects (spec §5);
// each project's documents are parsed sequentially.
const maxParseConcurrency = 8

// Run executes the full pipeline for one request: acquire, analyze,
// release. The workspace is always released before Run returns, on every
// exit path.
func Run(ctx context.Context, cfg config.Config, req Request) (*report.AnalysisReport, error) {
	ws, err := workspace.Acquire(ctx, cfg, req.RepoURL, req.Branch)
	if err != nil {
		return nil, err
	}
	defer func() { _ = workspace.Release(ws) }()

	rep, err := analyze(ctx, ws.Root, req, ws.Commit)
	return rep, err
}

// analyze runs stages 2-8 against an already-checked-out working tree. It
// is split out from Run so stage logic can be exercised in tests without a
// network-backed clone.
func analyze(ctx context.Context, root string, req Request, commit string) (*report.AnalysisReport, error) {
	triageResult, err := triage.Run(root)
	if err != nil {
		return nil, err
	}

	projects, err := project.Load(triageResult.Selection)
	if err != nil {
		return nil, err
	}

	parsedFiles, err := parseProjects(ctx, root, projects)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, f := range parsedFiles {
			f.Close()
		}
	}()

	table := csharp.BuildSymbolTable(parsedFiles)
	fileEdges, err := csharp.ExtractEdges(parsedFiles, table)
	if err != nil {
		return nil, err
	}

	fileToNS := map[string]string{}
	locByFile := map[string]int{}
	for _, f := range parsedFiles {
		fileToNS[f.Doc.RelPath] = f.Namespace
		locByFile[f.Doc.RelPath] = f.LOC
	}

	fileGraph := depgraph.BuildFileGraph(fileEdges)
	nsGraph := depgraph.BuildNamespaceGraph(fileGraph.Edges, fileToNS)

	var cycleGroups []model.CycleGroup
	var fileNodes []model.FileNode
	var nsNodes []model.NamespaceNode

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		cycleGroups = cycles.Find(fileGraph.Edges)
		return nil
	})
	g.Go(func() error {
		withLOC := applyFileLOC(fileGraph.Nodes, locByFile)
		fileNodes = metrics.ApplyFanInOut(withLOC, fileGraph.Edges)
		withNSLoc := applyNamespaceLOC(nsGraph.Nodes, fileGraph.Nodes, withLOC, fileToNS)
		nsNodes = metrics.ApplyNamespaceFanInOut(withNSLoc, nsGraph.Edges)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := report.Assemble(report.Params{
		RepoURL:   req.RepoURL,
		Branch:    req.Branch,
		Commit:    commit,
		FileNodes: fileNodes,
		FileEdges: fileGraph.Edges,
		NSNodes:   nsNodes,
		NSEdges:   nsGraph.Edges,
		Cycles:    cycleGroups,
	})
	return &rep, nil
}

func applyFileLOC(nodes []model.FileNode, locByFile map[string]int) []model.FileNode {
	out := make([]model.FileNode, len(nodes))
	for i, n := range nodes {
		n.LOC = locByFile[n.RelPath]
		out[i] = n
	}
	return out
}

func applyNamespaceLOC(nsNodes []model.NamespaceNode, fileNodes []model.FileNode, filesWithLOC []model.FileNode, fileToNS map[string]string) []model.NamespaceNode {
	sums := map[string]int{}
	for _, f := range filesWithLOC {
		ns := fileToNS[f.RelPath]
		if ns == "" {
			ns = model.GlobalNamespace
		}
		sums[model.NamespaceNodeID(ns)] += f.LOC
	}
	out := make([]model.NamespaceNode, len(nsNodes))
	for i, n := range nsNodes {
		n.LOC = sums[n.ID]
		out[i] = n
	}
	return out
}

// parseProjects parses every surviving project's documents, bounded by
// maxParseConcurrency (spec §5). A document whose source cannot be read or
// parsed is skipped; a project with zero successfully parsed documents is
// dropped. If every project fails to produce any parsed document, the
// stage fails with BuildFailed. Missing-SDK detection runs per project
// before its documents are folded into the shared result.
func parseProjects(ctx context.Context, root string, projects []project.Project) ([]*csharp.ParsedFile, error) {
	type projectResult struct {
		files []*csharp.ParsedFile
	}

	results := make([]projectResult, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParseConcurrency)

	for i := range projects {
		i := i
		g.Go(func() error {
			files, missingSDK, err := parseOneProject(gctx, root, projects[i])
			if err != nil {
				return err
			}
			if missingSDK {
				return apierr.New(apierr.MissingSdk, "project references an unresolved framework/SDK: "+projects[i].Manifest.TargetTag)
			}
			results[i] = projectResult{files: files}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*csharp.ParsedFile
	anyProjectParsed := false
	for _, r := range results {
		if len(r.files) > 0 {
			anyProjectParsed = true
		}
		all = append(all, r.files...)
	}
	if !anyProjectParsed {
		return nil, apierr.New(apierr.BuildFailed, "no project produced a parsed compilation unit; check that all projects reference valid source")
	}

	return all, nil
}

func parseOneProject(ctx context.Context, root string, p project.Project) ([]*csharp.ParsedFile, bool, error) {
	parser := csharp.NewParser()
	var files []*csharp.ParsedFile

	for _, doc := range p.Documents {
		select {
		case <-ctx.Done():
			return files, false, ctx.Err()
		default:
		}

		content, err := os.ReadFile(doc.AbsPath)
		if err != nil {
			continue
		}
		pf, err := parser.Parse(doc, content)
		if err != nil {
			continue
		}
		files = append(files, pf)
	}

	manifestText := ""
	if data, err := os.ReadFile(filepath.Join(root, p.Manifest.ManifestPath)); err == nil {
		manifestText = string(data)
	}
	missingSDK := csharp.DetectMissingSDK(manifestText, files)

	return files, missingSDK, nil
}
