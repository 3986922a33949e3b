package ingest

import (
	"context"
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

type fakeSourceFile struct {
	path      string
	source    []byte
	functions []astkit.FunctionDecl
}

func (f *fakeSourceFile) Path() string                         { return f.path }
func (f *fakeSourceFile) Extension() string                    { return ".ts" }
func (f *fakeSourceFile) Source() []byte                       { return f.source }
func (f *fakeSourceFile) Imports() []astkit.Import              { return nil }
func (f *fakeSourceFile) ReExports() []astkit.ReExport          { return nil }
func (f *fakeSourceFile) Functions() []astkit.FunctionDecl      { return f.functions }
func (f *fakeSourceFile) Classes() []astkit.ClassDecl           { return nil }
func (f *fakeSourceFile) Interfaces() []astkit.InterfaceDecl    { return nil }
func (f *fakeSourceFile) TypeAliases() []astkit.TypeAliasDecl   { return nil }
func (f *fakeSourceFile) Variables() []astkit.VariableDecl      { return nil }
func (f *fakeSourceFile) TypeRefs() map[string][]astkit.TypeRef { return nil }
func (f *fakeSourceFile) ResolveSymbol(string) (astkit.Symbol, bool) {
	return astkit.Symbol{}, false
}

type fakeProject struct {
	pkgs []astkit.Package
}

func (p *fakeProject) Packages() []astkit.Package { return p.pkgs }

func newFakeProject(files ...*fakeSourceFile) *fakeProject {
	sfs := make([]astkit.SourceFile, len(files))
	for i, f := range files {
		sfs[i] = f
	}
	return &fakeProject{pkgs: []astkit.Package{{Name: "app", Files: sfs}}}
}

func oneFuncFile(path, fn string, source string) *fakeSourceFile {
	return &fakeSourceFile{
		path:   path,
		source: []byte(source),
		functions: []astkit.FunctionDecl{
			{Name: fn, Exported: true, Span: astkit.Span{StartLine: 1, EndLine: 1}},
		},
	}
}

func TestDriverIndexesNewFiles(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	proj := newFakeProject(oneFuncFile("src/a.ts", "fnA", "export function fnA() {}\n"))
	d := NewDriver(s, nil, nil)
	d.Parallelism = 2

	res, err := d.Run(context.Background(), proj)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.IndexedFiles != 1 {
		t.Fatalf("expected 1 indexed file, got %d", res.IndexedFiles)
	}
	if res.SkippedFiles != 0 {
		t.Fatalf("expected 0 skipped on first run, got %d", res.SkippedFiles)
	}
	count, err := s.CountNodes()
	if err != nil {
		t.Fatalf("CountNodes: %v", err)
	}
	if count != 2 { // File node + fnA
		t.Fatalf("expected 2 nodes (file + function), got %d", count)
	}
}

func TestDriverSkipsUnchangedFilesOnReindex(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	proj := newFakeProject(oneFuncFile("src/a.ts", "fnA", "export function fnA() {}\n"))
	d := NewDriver(s, nil, nil)

	if _, err := d.Run(context.Background(), proj); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := d.Run(context.Background(), proj)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.IndexedFiles != 0 || res.SkippedFiles != 1 {
		t.Fatalf("expected skip on unchanged content, got indexed=%d skipped=%d", res.IndexedFiles, res.SkippedFiles)
	}
}

func TestDriverReindexesChangedFileContent(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	d := NewDriver(s, nil, nil)
	proj1 := newFakeProject(oneFuncFile("src/a.ts", "fnA", "export function fnA() {}\n"))
	if _, err := d.Run(context.Background(), proj1); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	proj2 := newFakeProject(oneFuncFile("src/a.ts", "fnA", "export function fnA() { return 1; }\n"))
	res, err := d.Run(context.Background(), proj2)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.IndexedFiles != 1 {
		t.Fatalf("expected the changed file to be reindexed, got indexed=%d skipped=%d", res.IndexedFiles, res.SkippedFiles)
	}
}

func TestDriverRemovesDeletedFiles(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	d := NewDriver(s, nil, nil)
	a := oneFuncFile("src/a.ts", "fnA", "export function fnA() {}\n")
	b := oneFuncFile("src/b.ts", "fnB", "export function fnB() {}\n")
	if _, err := d.Run(context.Background(), newFakeProject(a, b)); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	res, err := d.Run(context.Background(), newFakeProject(a))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.RemovedFiles != 1 {
		t.Fatalf("expected 1 removed file, got %d", res.RemovedFiles)
	}
	nodes, err := s.NodesByFile("src/b.ts")
	if err != nil {
		t.Fatalf("NodesByFile: %v", err)
	}
	if len(nodes) != 0 {
		t.Fatalf("expected src/b.ts nodes gone, got %d", len(nodes))
	}
}

func TestDriverAppliesConfiguredModuleGrouping(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	d := NewDriver(s, nil, nil)
	d.ModuleOf = map[string]string{"app": "backend"}

	proj := newFakeProject(oneFuncFile("src/a.ts", "fnA", "export function fnA() {}\n"))
	if _, err := d.Run(context.Background(), proj); err != nil {
		t.Fatalf("Run: %v", err)
	}

	nodes, err := s.NodesByFile("src/a.ts")
	if err != nil {
		t.Fatalf("NodesByFile: %v", err)
	}
	var found bool
	for _, n := range nodes {
		if n.Name == "fnA" {
			found = true
			if n.Module != "backend" {
				t.Fatalf("expected module %q, got %q", "backend", n.Module)
			}
		}
	}
	if !found {
		t.Fatal("expected fnA node")
	}
}

func TestDriverCapturesPerFileErrorsWithoutAbortingRun(t *testing.T) {
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	good := oneFuncFile("src/good.ts", "fnGood", "export function fnGood() {}\n")
	d := NewDriver(s, nil, nil)
	res, err := d.Run(context.Background(), newFakeProject(good))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors for a well-formed file, got %+v", res.Errors)
	}
}
