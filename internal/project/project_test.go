package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/triage"
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

func TestLoad_FiltersGeneratedAndTestProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/App.csproj", "<Project><PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup></Project>")
	writeFile(t, root, "src/A.cs", "class A {}")
	writeFile(t, root, "src/obj/Debug/Gen.g.cs", "class Gen {}")
	writeFile(t, root, "tests/App.Tests.csproj", "<Project></Project>")
	writeFile(t, root, "tests/T.cs", "class T {}")

	sel := triage.ManifestSelection{
		Kind:     triage.ProjectManifestSet,
		Projects: []string{"src/App.csproj", "tests/App.Tests.csproj"},
		RootDir:  root,
	}

	projects, err := Load(sel)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 surviving project, got %d", len(projects))
	}
	p := projects[0]
	if p.Manifest.Name != "App" {
		t.Fatalf("expected project name App, got %s", p.Manifest.Name)
	}
	if p.Manifest.TargetTag != "net8.0" {
		t.Fatalf("expected target tag net8.0, got %q", p.Manifest.TargetTag)
	}
	if len(p.Documents) != 1 || p.Documents[0].RelPath != "src/A.cs" {
		t.Fatalf("expected exactly src/A.cs, got %+v", p.Documents)
	}
}

func TestLoad_AllTestProjectsFailsWithNoSuitableProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tests/App.Tests.csproj", "<Project></Project>")
	writeFile(t, root, "tests/T.cs", "class T {}")

	sel := triage.ManifestSelection{
		Kind:     triage.ProjectManifestSet,
		Projects: []string{"tests/App.Tests.csproj"},
		RootDir:  root,
	}

	_, err := Load(sel)
	if err == nil {
		t.Fatalf("expected error")
	}
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.NoSuitableProjects {
		t.Fatalf("expected NoSuitableProjects, got %v", err)
	}
}

func TestIsGenerated(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"src/A.cs", false},
		{"obj/Debug/A.cs", true},
		{"bin/Release/A.cs", true},
		{"src/A.g.cs", true},
		{"src/A.generated.cs", true},
		{"src/A.designer.cs", true},
		{"src/A.Designer.cs", true},
	}
	for _, tc := range cases {
		if got := isGenerated(tc.path); got != tc.want {
			t.Errorf("isGenerated(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsTestProject(t *testing.T) {
	cases := []struct {
		name string
		path string
		want bool
	}{
		{"App", "src/App.csproj", false},
		{"App.Tests", "src/App.Tests.csproj", true},
		{"App.Specs", "src/App.Specs.csproj", true},
		{"App", "tests/App.csproj", true},
	}
	for _, tc := range cases {
		if got := isTestProject(tc.name, tc.path); got != tc.want {
			t.Errorf("isTestProject(%q, %q) = %v, want %v", tc.name, tc.path, got, tc.want)
		}
	}
}
