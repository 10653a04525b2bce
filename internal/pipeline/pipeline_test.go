package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// S1 from the concrete scenarios: a tiny acyclic two-file project.
func TestAnalyze_TinyAcyclicProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "App.sln", "")
	writeFile(t, root, "src/App.csproj", "<Project><PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup></Project>")
	writeFile(t, root, "src/A.cs", "namespace X { class A { void M() { var b = new B(); } } }")
	writeFile(t, root, "src/B.cs", "namespace Y { class B {} }")

	rep, err := analyze(context.Background(), root, Request{RepoURL: "https://example.com/app"}, "")
	if err != nil {
		t.Fatalf("analyze returned error: %v", err)
	}

	if len(rep.Graphs.File.Edges) != 1 {
		t.Fatalf("expected 1 file edge, got %+v", rep.Graphs.File.Edges)
	}
	if len(rep.Graphs.Namespace.Edges) != 1 {
		t.Fatalf("expected 1 namespace edge, got %+v", rep.Graphs.Namespace.Edges)
	}
	if len(rep.Cycles) != 0 {
		t.Fatalf("expected no cycles, got %+v", rep.Cycles)
	}
	if rep.Metrics.Counts.FileNodes != 2 {
		t.Fatalf("expected 2 file nodes, got %d", rep.Metrics.Counts.FileNodes)
	}
}

// S2 from the concrete scenarios: a two-node cycle across distinct
// namespaces.
func TestAnalyze_TwoNodeCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "App.sln", "")
	writeFile(t, root, "src/App.csproj", "<Project></Project>")
	writeFile(t, root, "src/A.cs", "namespace X { class A { void M() { var b = new B(); } } }")
	writeFile(t, root, "src/B.cs", "namespace Y { class B { void N() { var a = new A(); } } }")

	rep, err := analyze(context.Background(), root, Request{RepoURL: "https://example.com/app"}, "")
	if err != nil {
		t.Fatalf("analyze returned error: %v", err)
	}

	if len(rep.Cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %+v", rep.Cycles)
	}
	if rep.Cycles[0].Size != 2 {
		t.Fatalf("expected cycle size 2, got %+v", rep.Cycles[0])
	}
}

func TestAnalyze_NoManifestFailsWithNoSolutionOrProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "hello")

	_, err := analyze(context.Background(), root, Request{RepoURL: "https://example.com/app"}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
}
