package csharp

import (
	"testing"

	"github.com/codeatlas-dev/codeatlas/internal/model"
)

func parseSource(t *testing.T, relPath, source string) *ParsedFile {
	t.Helper()
	p := NewParser()
	pf, err := p.Parse(model.SourceDocument{AbsPath: relPath, RelPath: relPath}, []byte(source))
	if err != nil {
		t.Fatalf("Parse(%s) error: %v", relPath, err)
	}
	return pf
}

func TestPrimaryNamespace_FileScopedPreferredOverBlock(t *testing.T) {
	src := `namespace A.B;
class Foo {}
namespace Legacy { class Bar {} }
`
	pf := parseSource(t, "a.cs", src)
	defer pf.Close()
	if pf.Namespace != "A.B" {
		t.Fatalf("expected A.B, got %q", pf.Namespace)
	}
}

func TestPrimaryNamespace_BlockOnly(t *testing.T) {
	src := `namespace Y { class Bar {} }`
	pf := parseSource(t, "b.cs", src)
	defer pf.Close()
	if pf.Namespace != "Y" {
		t.Fatalf("expected Y, got %q", pf.Namespace)
	}
}

func TestPrimaryNamespace_NoneIsGlobal(t *testing.T) {
	src := `class Bar {}`
	pf := parseSource(t, "c.cs", src)
	defer pf.Close()
	if pf.Namespace != model.GlobalNamespace {
		t.Fatalf("expected global namespace, got %q", pf.Namespace)
	}
}

func TestCountLOC_BlanksAndCommentsExcluded(t *testing.T) {
	src := "// header comment\n\nclass Foo {\n    int x = 1;\n}\n"
	pf := parseSource(t, "d.cs", src)
	defer pf.Close()
	if pf.LOC != 3 {
		t.Fatalf("expected LOC 3, got %d", pf.LOC)
	}
}

func TestCountLOC_EmptyFileIsZero(t *testing.T) {
	pf := parseSource(t, "e.cs", "")
	defer pf.Close()
	if pf.LOC != 0 {
		t.Fatalf("expected LOC 0, got %d", pf.LOC)
	}
}

// S1: a tiny acyclic project.
func TestExtractEdges_TinyAcyclicProject(t *testing.T) {
	a := parseSource(t, "src/A.cs", `namespace X { class A { void M() { var b = new B(); } } }`)
	b := parseSource(t, "src/B.cs", `namespace Y { class B {} }`)
	defer a.Close()
	defer b.Close()

	files := []*ParsedFile{a, b}
	table := BuildSymbolTable(files)
	edges, err := ExtractEdges(files, table)
	if err != nil {
		t.Fatalf("ExtractEdges error: %v", err)
	}
	want := model.DirectedEdge{From: model.FileNodeID("src/A.cs"), To: model.FileNodeID("src/B.cs")}
	if len(edges) != 1 || edges[0] != want {
		t.Fatalf("expected single edge %+v, got %+v", want, edges)
	}
}

// S4: partial declaration across two files, only the first enumerated
// declaring file receives the edge.
func TestExtractEdges_PartialDeclarationUsesFirstInOrder(t *testing.T) {
	p1 := parseSource(t, "P1.cs", `partial class T { void M() {} }`)
	p2 := parseSource(t, "P2.cs", `partial class T { void N() {} }`)
	q := parseSource(t, "Q.cs", `class Q { void Use() { var t = new T(); } }`)
	defer p1.Close()
	defer p2.Close()
	defer q.Close()

	files := []*ParsedFile{p1, p2, q}
	table := BuildSymbolTable(files)
	edges, err := ExtractEdges(files, table)
	if err != nil {
		t.Fatalf("ExtractEdges error: %v", err)
	}
	want := model.DirectedEdge{From: model.FileNodeID("Q.cs"), To: model.FileNodeID("P1.cs")}
	if len(edges) != 1 || edges[0] != want {
		t.Fatalf("expected edge to first declaring file %+v, got %+v", want, edges)
	}
}

// S8: self-edge discipline — the declaration-line occurrence produces no
// edge, but a use inside a method body does.
func TestExtractEdges_SelfEdgeOnlyFromUseSite(t *testing.T) {
	c := parseSource(t, "C.cs", `class C { void Foo() {} void Bar() { C.Foo(); } }`)
	defer c.Close()

	files := []*ParsedFile{c}
	table := BuildSymbolTable(files)
	edges, err := ExtractEdges(files, table)
	if err != nil {
		t.Fatalf("ExtractEdges error: %v", err)
	}
	want := model.DirectedEdge{From: model.FileNodeID("C.cs"), To: model.FileNodeID("C.cs")}
	if len(edges) != 1 || edges[0] != want {
		t.Fatalf("expected single self-edge %+v, got %+v", want, edges)
	}
}

// S6: a reference to a type declared only in an excluded (generated) file
// must not produce an edge, because the declaring file is absent from the
// known-documents set passed to ExtractEdges.
func TestExtractEdges_UnknownDeclaringFileProducesNoEdge(t *testing.T) {
	gen := parseSource(t, "obj/Gen.g.cs", `class G {}`)
	u := parseSource(t, "src/U.cs", `class U { void M() { var g = new G(); } }`)
	defer gen.Close()
	defer u.Close()

	table := BuildSymbolTable([]*ParsedFile{gen, u})
	// obj/Gen.g.cs is excluded from the known-documents set, as the project
	// loader would have done before handing files to the resolver.
	edges, err := ExtractEdges([]*ParsedFile{u}, table)
	if err != nil {
		t.Fatalf("ExtractEdges error: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges, got %+v", edges)
	}
}
