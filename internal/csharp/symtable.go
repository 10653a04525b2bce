package csharp

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

var typeDeclarationTypes = map[string]bool{
	"class_declaration":     true,
	"struct_declaration":    true,
	"interface_declaration": true,
	"record_declaration":    true,
	"enum_declaration":      true,
	"delegate_declaration":  true,
}

// SymbolTable indexes type declarations by simple name across the parsed
// files it was built from (the pipeline builds one table over every
// surviving project's files).
type SymbolTable struct {
	byName map[string]*model.Symbol
}

// BuildSymbolTable runs pass 1 of the resolver: collecting every
// type-kind declaration across files, in a deterministic file order so
// "first in enumeration order" is reproducible across runs.
func BuildSymbolTable(files []*ParsedFile) *SymbolTable {
	ordered := make([]*ParsedFile, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Doc.RelPath < ordered[j].Doc.RelPath })

	table := &SymbolTable{byName: map[string]*model.Symbol{}}
	for _, f := range ordered {
		walk(f.Tree.RootNode(), func(n *sitter.Node) bool {
			if !typeDeclarationTypes[n.Type()] {
				return true
			}
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				return true
			}
			name := nameNode.Content(f.Content)
			sym, ok := table.byName[name]
			if !ok {
				sym = &model.Symbol{Name: name, Kind: model.SymbolType}
				table.byName[name] = sym
			}
			sym.Locations = append(sym.Locations, model.SymbolLocation{
				DocumentPath: f.Doc.RelPath,
				Span: model.Span{
					StartByte: n.StartByte(),
					EndByte:   n.EndByte(),
					StartLine: int(n.StartPoint().Row) + 1,
					EndLine:   int(n.EndPoint().Row) + 1,
				},
			})
			return true
		})
	}
	return table
}

// Lookup returns the symbol declared under name, if any.
func (t *SymbolTable) Lookup(name string) (*model.Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

// declaringFile returns the repository-relative path of sym's first
// declaration location restricted to paths present in known, or "" if none
// qualify (spec §4.4 step 4).
func declaringFile(sym *model.Symbol, known map[string]bool) string {
	if !sym.InSource() {
		return ""
	}
	for _, loc := range sym.Locations {
		if known[loc.DocumentPath] {
			return loc.DocumentPath
		}
	}
	return ""
}
