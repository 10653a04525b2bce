// Package project implements pipeline stage 3 (spec §4.3): turning a
// triage.ManifestSelection into a list of loaded projects, each carrying the
// source documents that survive the generated-file and test-project filters.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/model"
	"github.com/codeatlas-dev/codeatlas/internal/triage"
)

// MaxProjects and MaxDocumentsPerProject are the stage 3 safety caps
// (spec §4.3), enforced in direct-filesystem loading mode.
const (
	MaxProjects            = 10
	MaxDocumentsPerProject = 50
	MaxTotalTextBytes      = 200 * 1024 * 1024
)

var testNamePatterns = []string{".tests", ".test", ".specs", ".spec", ".benchmarks"}

// Project is a loaded ProjectManifest plus the documents it governs.
type Project struct {
	Manifest  model.ProjectManifest
	Documents []model.SourceDocument
}

// Load resolves sel into a set of project manifests, loads their source
// documents, applies the test-project and generated-file filters, and
// enforces the safety caps.
func Load(sel triage.ManifestSelection) ([]Project, error) {
	manifestPaths, err := resolveManifestPaths(sel)
	if err != nil {
		return nil, err
	}

	var projects []Project
	var totalBytes int64

	for _, manifestPath := range manifestPaths {
		manifest := buildManifest(sel.RootDir, manifestPath)
		if manifest.Excluded {
			continue
		}

		dir := filepath.Dir(filepath.Join(sel.RootDir, manifestPath))
		docs, size, err := loadDocuments(sel.RootDir, dir, manifest.Name)
		if err != nil {
			return nil, err
		}
		totalBytes += size
		if totalBytes > MaxTotalTextBytes {
			return nil, apierr.New(apierr.LimitsExceeded, "total source text exceeds the 200 MiB cap")
		}
		if len(docs) == 0 {
			continue
		}
		if len(docs) > MaxDocumentsPerProject {
			docs = docs[:MaxDocumentsPerProject]
		}

		projects = append(projects, Project{Manifest: manifest, Documents: docs})
		if len(projects) >= MaxProjects {
			break
		}
	}

	if len(projects) == 0 {
		return nil, apierr.New(apierr.NoSuitableProjects, "no project survived the test-project and language filters")
	}

	return projects, nil
}

func resolveManifestPaths(sel triage.ManifestSelection) ([]string, error) {
	switch sel.Kind {
	case triage.ProjectManifestSet:
		paths := append([]string(nil), sel.Projects...)
		sort.Strings(paths)
		return paths, nil
	case triage.SolutionManifest:
		solutionDir := filepath.Dir(filepath.Join(sel.RootDir, sel.Solution))
		var found []string
		err := filepath.Walk(solutionDir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".csproj") {
				rel, relErr := filepath.Rel(sel.RootDir, path)
				if relErr == nil {
					found = append(found, filepath.ToSlash(rel))
				}
			}
			return nil
		})
		if err != nil {
			return nil, apierr.Wrap(apierr.InternalError, "failed to enumerate project manifests", err)
		}
		sort.Strings(found)
		return found, nil
	default:
		return nil, apierr.New(apierr.NoSuitableProjects, "unrecognized manifest selection")
	}
}

func buildManifest(rootDir, manifestPath string) model.ProjectManifest {
	name := strings.TrimSuffix(filepath.Base(manifestPath), filepath.Ext(manifestPath))
	m := model.ProjectManifest{
		ManifestPath: manifestPath,
		Name:         name,
		Language:     "csharp",
		Dir:          filepath.Dir(manifestPath),
	}

	if isTestProject(name, manifestPath) {
		m.Excluded = true
		m.ExcludeCause = "test-project"
		return m
	}

	m.TargetTag = detectTargetTag(filepath.Join(rootDir, manifestPath))
	return m
}

func isTestProject(name, manifestPath string) bool {
	lowerName := strings.ToLower(name)
	for _, p := range testNamePatterns {
		if strings.Contains(lowerName, p) {
			return true
		}
	}
	for _, seg := range strings.Split(strings.ToLower(manifestPath), "/") {
		if seg == "test" || seg == "tests" {
			return true
		}
	}
	return false
}

var targetFrameworkTag = []byte("<TargetFramework")

func detectTargetTag(absManifestPath string) string {
	data, err := os.ReadFile(absManifestPath)
	if err != nil {
		return ""
	}
	idx := indexOf(data, targetFrameworkTag)
	if idx < 0 {
		return ""
	}
	rest := data[idx:]
	open := indexOfByte(rest, '>')
	if open < 0 {
		return ""
	}
	rest = rest[open+1:]
	end := indexOfByte(rest, '<')
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(string(rest[:end]))
}

func indexOf(haystack, needle []byte) int {
	return strings.Index(string(haystack), string(needle))
}

func indexOfByte(haystack []byte, b byte) int {
	for i, c := range haystack {
		if c == b {
			return i
		}
	}
	return -1
}

func loadDocuments(rootDir, projectDir, projectName string) ([]model.SourceDocument, int64, error) {
	var docs []model.SourceDocument
	var total int64

	err := filepath.Walk(projectDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != triage.SourceExtension {
			return nil
		}
		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if isGenerated(rel) {
			return nil
		}

		docs = append(docs, model.SourceDocument{
			AbsPath: path,
			RelPath: rel,
			Project: projectName,
		})
		total += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, apierr.Wrap(apierr.InternalError, "failed to enumerate project documents", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })
	return docs, total, nil
}

// isGenerated applies the generated-file rule from spec §4.3.
func isGenerated(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if seg == "obj" || seg == "bin" {
			return true
		}
	}
	base := strings.ToLower(filepath.Base(relPath))
	for _, suffix := range []string{".g.cs", ".generated.cs", ".designer.cs"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
