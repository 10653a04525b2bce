// Package triage implements pipeline stage 2 (spec §4.2): counting source
// files, enforcing the file-count cap, classifying repository language for
// the error path, and selecting a solution or project manifest set.
//
// The directory walk composes two layers of ignore rules: internal/ignore,
// holding a small built-in skip-list for tooling output directories plus
// the root .gitignore lines, and the root .gitignore parsed again with a
// dedicated gitignore library. A path is skipped when either layer
// ignores it.
package triage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/fileutil"
	"github.com/codeatlas-dev/codeatlas/internal/ignore"
)

// MaxSourceFiles is the stage 2 file-count cap (spec §4.2).
const MaxSourceFiles = 100_000

// SourceExtension is the analyzed language family's file extension.
const SourceExtension = ".cs"

// ManifestKind distinguishes a solution manifest from a bare project set.
type ManifestKind int

const (
	SolutionManifest ManifestKind = iota
	ProjectManifestSet
)

// ManifestSelection is the outcome of stage 2's manifest search.
type ManifestSelection struct {
	Kind      ManifestKind
	Solution  string   // populated when Kind == SolutionManifest
	Projects  []string // populated when Kind == ProjectManifestSet
	RootDir   string
}

var languageTable = []struct {
	tag     string
	files   []string // exact filenames that are characteristic
	suffix  []string // file extensions that are characteristic
}{
	{tag: "web/scripting", files: []string{"package.json"}, suffix: []string{".js", ".ts", ".jsx", ".tsx"}},
	{tag: "compiled/jvm", files: []string{"pom.xml", "build.gradle"}, suffix: []string{".java", ".kt"}},
	{tag: "systems", files: []string{"Cargo.toml"}, suffix: []string{".rs"}},
	{tag: "scripting", files: []string{"requirements.txt", "pyproject.toml"}, suffix: []string{".py"}},
	{tag: "mobile", files: []string{"Podfile"}, suffix: []string{".swift", ".m"}},
	{tag: "shell", files: nil, suffix: []string{".sh", ".bash"}},
	{tag: "documentation-only", files: []string{"README.md"}, suffix: []string{".md", ".txt"}},
}

// Result is what survives to the project loader: the manifest selection
// plus the raw counted file total.
type Result struct {
	Selection  ManifestSelection
	TotalFiles int
}

// Run walks root, applies the ignore layers, counts .cs files, and selects
// a manifest. On failure the returned *apierr.Error carries detected
// languages and representative evidence files (spec §4.2).
func Run(root string) (*Result, error) {
	matcher := ignore.NewMatcher(readGitignoreLines(root))
	gi := loadGitignore(root)

	var csFiles []string
	var solutions []string
	var projects []string
	evidence := map[string][]string{} // tag -> representative files

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if matcher.ShouldIgnore(rel, true) || (gi != nil && gi.MatchesPath(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.ShouldIgnore(rel, false) || (gi != nil && gi.MatchesPath(rel)) {
			return nil
		}

		base := filepath.Base(rel)
		ext := strings.ToLower(filepath.Ext(rel))

		switch ext {
		case ".sln":
			solutions = append(solutions, rel)
		case ".csproj":
			projects = append(projects, rel)
		}
		if ext == SourceExtension {
			csFiles = append(csFiles, rel)
		}

		classify(base, ext, evidence)
		return nil
	})
	if walkErr != nil {
		return nil, apierr.Wrap(apierr.InternalError, "failed to walk workspace", walkErr)
	}

	if len(csFiles) > MaxSourceFiles {
		return nil, apierr.New(apierr.LimitsExceeded, "source file count exceeds the analysis cap")
	}

	selection, ok := selectManifest(root, solutions, projects)
	if !ok {
		return nil, noSolutionError(evidence)
	}

	return &Result{Selection: selection, TotalFiles: len(csFiles)}, nil
}

func selectManifest(root string, solutions, projects []string) (ManifestSelection, bool) {
	if len(solutions) > 0 {
		rootSolutions := make([]string, 0, 1)
		for _, s := range solutions {
			if !strings.Contains(s, "/") {
				rootSolutions = append(rootSolutions, s)
			}
		}
		sort.Strings(rootSolutions)
		if len(rootSolutions) > 0 {
			return ManifestSelection{Kind: SolutionManifest, Solution: rootSolutions[0], RootDir: root}, true
		}

		sort.Slice(solutions, func(i, j int) bool {
			return depthFirstLess(solutions[i], solutions[j])
		})
		return ManifestSelection{Kind: SolutionManifest, Solution: solutions[0], RootDir: root}, true
	}
	if len(projects) > 0 {
		sort.Strings(projects)
		return ManifestSelection{Kind: ProjectManifestSet, Projects: projects, RootDir: root}, true
	}
	return ManifestSelection{}, false
}

// depthFirstLess orders two repository-relative paths the way a depth-first
// traversal visiting directory entries in name order would reach them: path
// segments are compared lexicographically one by one, and a path whose
// segments are a prefix of the other's sorts first.
func depthFirstLess(a, b string) bool {
	pa := strings.Split(a, "/")
	pb := strings.Split(b, "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}

func classify(base, ext string, evidence map[string][]string) {
	for _, lang := range languageTable {
		matched := false
		for _, f := range lang.files {
			if strings.EqualFold(base, f) {
				matched = true
				break
			}
		}
		if !matched {
			for _, s := range lang.suffix {
				if ext == s {
					matched = true
					break
				}
			}
		}
		if matched && len(evidence[lang.tag]) < 5 {
			evidence[lang.tag] = append(evidence[lang.tag], base)
		}
	}
}

func noSolutionError(evidence map[string][]string) *apierr.Error {
	present := map[string]bool{}
	for tag := range evidence {
		present[tag] = true
	}
	tags := fileutil.MapKeysSorted(present)

	var found []string
	for _, tag := range tags {
		found = append(found, evidence[tag]...)
	}

	e := apierr.New(apierr.NoSolutionOrProject, "no .sln or .csproj manifest found")
	e.DetectedLanguages = tags
	e.FoundFiles = fileutil.DedupeStrings(found)
	return e
}

func readGitignoreLines(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	return lines
}

func loadGitignore(root string) *gitignore.GitIgnore {
	gi, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
