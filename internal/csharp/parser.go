// Package csharp implements pipeline stage 4 (spec §4.4): parsing C#
// source documents and resolving cross-file symbol references into a
// deduplicated file dependency edge set.
//
// Parsing wraps a single sitter.Parser bound to the C# grammar and walks
// the resulting tree with node.Type() switches. Resolution runs in two
// passes: a lookup table is built from every declaration, then each
// identifier occurrence is resolved against it.
package csharp

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

// ParsedFile is one accepted document's syntax tree plus the metadata the
// resolver and metrics stages need from it.
type ParsedFile struct {
	Doc         model.SourceDocument
	Content     []byte
	Tree        *sitter.Tree
	Namespace   string // primary namespace, model.GlobalNamespace if none
	LOC         int
	Diagnostics []string // ERROR/MISSING node text, for missing-SDK detection
}

// Close releases the underlying tree-sitter tree.
func (f *ParsedFile) Close() {
	if f.Tree != nil {
		f.Tree.Close()
	}
}

// Parser wraps a single tree-sitter parser instance bound to the C#
// grammar. It is not safe for concurrent use; callers parsing documents in
// parallel should use one Parser per goroutine.
type Parser struct {
	sitter *sitter.Parser
}

// NewParser creates a C# source parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &Parser{sitter: p}
}

// Parse parses one document's content and extracts its primary namespace,
// line-of-code count, and any parse diagnostics.
func (p *Parser) Parse(doc model.SourceDocument, content []byte) (*ParsedFile, error) {
	tree, err := p.sitter.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}

	pf := &ParsedFile{
		Doc:     doc,
		Content: content,
		Tree:    tree,
	}

	root := tree.RootNode()
	pf.Namespace = primaryNamespace(root, content)
	pf.LOC = countLOC(root, content)
	pf.Diagnostics = collectDiagnostics(root, content)

	return pf, nil
}

// primaryNamespace implements the file-scoped-preferred rule (spec §4.5,
// §5 in the glossary: "Primary namespace").
func primaryNamespace(root *sitter.Node, content []byte) string {
	if fqn := firstChildOfType(root, content, "file_scoped_namespace_declaration"); fqn != "" {
		return fqn
	}
	if fqn := firstBlockNamespace(root, content); fqn != "" {
		return fqn
	}
	return model.GlobalNamespace
}

func firstChildOfType(node *sitter.Node, content []byte, nodeType string) string {
	var found string
	walk(node, func(n *sitter.Node) bool {
		if found != "" {
			return false
		}
		if n.Type() == nodeType {
			if name := namespaceName(n, content); name != "" {
				found = name
				return false
			}
		}
		return true
	})
	return found
}

func firstBlockNamespace(node *sitter.Node, content []byte) string {
	var found string
	walk(node, func(n *sitter.Node) bool {
		if found != "" {
			return false
		}
		if n.Type() == "namespace_declaration" {
			if name := namespaceName(n, content); name != "" {
				found = name
				return false
			}
		}
		return true
	})
	return found
}

func namespaceName(n *sitter.Node, content []byte) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "identifier", "qualified_name":
				nameNode = c
			}
			if nameNode != nil {
				break
			}
		}
	}
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(content)
}

// walk performs a pre-order traversal, calling visit on each node. visit
// returns false to stop descending into that node's subtree, but the
// traversal otherwise continues to siblings.
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

func collectDiagnostics(root *sitter.Node, content []byte) []string {
	var diags []string
	walk(root, func(n *sitter.Node) bool {
		if n.IsError() || n.IsMissing() {
			diags = append(diags, n.Content(content))
		}
		return true
	})
	return diags
}
