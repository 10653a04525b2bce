// Package model holds the shared data shapes produced and consumed by the
// analysis pipeline's stages (spec §3). It has no dependency on any other
// internal package so every stage can import it without creating cycles.
package model

// SymbolKind classifies a declaration recorded in a SymbolTable.
type SymbolKind int

const (
	SymbolNamespace SymbolKind = iota
	SymbolType
	SymbolMember
	SymbolParameter
	SymbolLocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolNamespace:
		return "namespace"
	case SymbolType:
		return "type"
	case SymbolMember:
		return "member"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Span is the byte and line range of a declaration within its document.
type Span struct {
	StartByte uint32
	EndByte   uint32
	StartLine int
	EndLine   int
}

// SourceDocument is a file accepted into the analysis (spec §3).
type SourceDocument struct {
	AbsPath   string
	RelPath   string // forward-slash separated, repository-relative
	Project   string // owning project name
	Generated bool
}

// ProjectManifest points at a project description file and the files it
// governs (spec §3, §4.3).
type ProjectManifest struct {
	ManifestPath string
	Name         string
	Language     string
	TargetTag    string
	Dir          string
	Excluded     bool
	ExcludeCause string // "test-project" when Excluded, "" otherwise
}

// SymbolLocation is a (document, span) pair where a symbol is declared.
type SymbolLocation struct {
	DocumentPath string // repository-relative
	Span         Span
}

// Symbol is a named declaration with possibly multiple locations (partial
// declarations, spec §3).
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Namespace string // fully-qualified containing namespace; "" for <global>
	Locations []SymbolLocation
}

// InSource reports whether the symbol has at least one declaration location.
func (s *Symbol) InSource() bool {
	return len(s.Locations) > 0
}

// FileNode is one graph node per participating SourceDocument (spec §3).
type FileNode struct {
	ID      string // "File:<relpath>"
	Label   string // filename
	RelPath string
	LOC     int
	FanIn   int
	FanOut  int
}

// NamespaceNode is one graph node per distinct declared namespace (spec §3).
type NamespaceNode struct {
	ID     string // "Namespace:<fqn>"
	Label  string // last dotted segment, "(global)" for the synthetic root
	FQN    string
	LOC    int
	FanIn  int
	FanOut int
}

// DirectedEdge is an ordered pair of node identifiers.
type DirectedEdge struct {
	From string
	To   string
}

// CycleGroup is a strongly connected component of size >= 2 (spec §3, §4.7).
type CycleGroup struct {
	ID     int
	Size   int
	Sample []string // up to 5 member node IDs
}

const GlobalNamespace = "<global>"

// FileNodeID formats the canonical file-graph node identifier.
func FileNodeID(relPath string) string {
	return "File:" + relPath
}

// NamespaceNodeID formats the canonical namespace-graph node identifier.
func NamespaceNodeID(fqn string) string {
	return "Namespace:" + fqn
}
