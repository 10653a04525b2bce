package csharp

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/fileutil"
	"github.com/codeatlas-dev/codeatlas/internal/model"
)

// MaxFileEdges is the stage 4 edge-count cap (spec §4.4).
const MaxFileEdges = 150_000

var useSiteAncestorTypes = map[string]bool{
	"block":                  true,
	"accessor_declaration":   true,
	"equals_value_clause":    true,
	"arrow_expression_clause": true,
}

// ExtractEdges runs pass 2 of the resolver: walking every identifier
// occurrence in every file, resolving it against table, and emitting
// file->file edges per the algorithm in spec §4.4.
func ExtractEdges(files []*ParsedFile, table *SymbolTable) ([]model.DirectedEdge, error) {
	relPaths := make([]string, len(files))
	for i, f := range files {
		relPaths[i] = f.Doc.RelPath
	}
	known := fileutil.ToSet(relPaths)

	seen := map[model.DirectedEdge]struct{}{}
	var edges []model.DirectedEdge

	for _, f := range files {
		walk(f.Tree.RootNode(), func(n *sitter.Node) bool {
			if n.Type() != "identifier" {
				return true
			}
			if hasAncestorOfType(n, "using_directive") {
				return true
			}
			if isTypeDeclarationName(n) {
				return true
			}

			name := n.Content(f.Content)
			sym, ok := table.Lookup(name)
			if !ok {
				return true
			}

			declFile := declaringFile(sym, known)
			if declFile == "" {
				return true
			}

			from := f.Doc.RelPath
			if declFile != from {
				addEdge(&edges, seen, from, declFile)
			} else if isUseSite(n) {
				addEdge(&edges, seen, from, declFile)
			}
			return true
		})
		if len(edges) > MaxFileEdges {
			return nil, apierr.New(apierr.LimitsExceeded, "file dependency edge count exceeds the analysis cap")
		}
	}

	if len(edges) > MaxFileEdges {
		return nil, apierr.New(apierr.LimitsExceeded, "file dependency edge count exceeds the analysis cap")
	}

	return edges, nil
}

func addEdge(edges *[]model.DirectedEdge, seen map[model.DirectedEdge]struct{}, fromRel, toRel string) {
	e := model.DirectedEdge{From: model.FileNodeID(fromRel), To: model.FileNodeID(toRel)}
	if _, ok := seen[e]; ok {
		return
	}
	seen[e] = struct{}{}
	*edges = append(*edges, e)
}

func hasAncestorOfType(n *sitter.Node, nodeType string) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == nodeType {
			return true
		}
	}
	return false
}

// isTypeDeclarationName reports whether n is the name of the type
// declaration that contains it, so a partial declaration's own name does
// not become a reference to another part of the same type.
func isTypeDeclarationName(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil || !typeDeclarationTypes[p.Type()] {
		return false
	}
	name := p.ChildByFieldName("name")
	return name != nil && name.StartByte() == n.StartByte() && name.EndByte() == n.EndByte()
}

// isUseSite implements the spec §4.4 step 5 self-edge discipline: an
// identifier sits in a use site if any ancestor construct is a method
// body, accessor, field initializer, block, or expression-bodied member.
func isUseSite(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if useSiteAncestorTypes[p.Type()] {
			return true
		}
	}
	return false
}
