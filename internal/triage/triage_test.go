package triage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRun_SelectsRootSolutionOverNested(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "App.sln")
	writeFile(t, root, "nested/Other.sln")
	writeFile(t, root, "src/A.cs")

	res, err := Run(root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Selection.Kind != SolutionManifest {
		t.Fatalf("expected SolutionManifest, got %v", res.Selection.Kind)
	}
	if res.Selection.Solution != "App.sln" {
		t.Fatalf("expected App.sln, got %s", res.Selection.Solution)
	}
}

func TestRun_FallsBackToProjectSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/A.csproj")
	writeFile(t, root, "src/B.csproj")
	writeFile(t, root, "src/A.cs")

	res, err := Run(root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Selection.Kind != ProjectManifestSet {
		t.Fatalf("expected ProjectManifestSet, got %v", res.Selection.Kind)
	}
	if len(res.Selection.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(res.Selection.Projects))
	}
}

func TestRun_NoManifestReturnsLanguageEvidence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json")
	writeFile(t, root, "src/index.ts")

	_, err := Run(root)
	if err == nil {
		t.Fatalf("expected error")
	}
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected *apierr.Error, got %T", err)
	}
	if apiErr.Kind != apierr.NoSolutionOrProject {
		t.Fatalf("expected NoSolutionOrProject, got %s", apiErr.Kind)
	}
	if len(apiErr.DetectedLanguages) == 0 {
		t.Fatalf("expected non-empty detected languages")
	}
	if len(apiErr.FoundFiles) == 0 {
		t.Fatalf("expected non-empty found files")
	}
}

func TestRun_IgnoresDefaultSkipDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "App.sln")
	writeFile(t, root, "bin/Debug/Gen.cs")
	writeFile(t, root, "src/A.cs")

	res, err := Run(root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.TotalFiles != 1 {
		t.Fatalf("expected 1 counted file, got %d", res.TotalFiles)
	}
}

func TestDepthFirstLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"A.sln", "nested/B.sln", true},
		{"nested/B.sln", "A.sln", false},
		{"a/x.sln", "b/y.sln", true},
	}
	for _, tc := range cases {
		if got := depthFirstLess(tc.a, tc.b); got != tc.want {
			t.Errorf("depthFirstLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
