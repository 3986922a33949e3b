// Package tsast is the concrete astkit.AstProject/SourceFile implementation
// for TypeScript, TSX and JavaScript, built on tree-sitter
// (github.com/tree-sitter/go-tree-sitter plus the typescript and
// javascript grammar bindings).
package tsast

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

// dialect selects which tree-sitter grammar parses a file, via a simple
// per-extension registry.
type dialect int

const (
	dialectTS dialect = iota
	dialectTSX
	dialectJS
)

var (
	languagesOnce sync.Once
	languages     map[dialect]*tree_sitter.Language
	parserPools   map[dialect]*sync.Pool
)

func initLanguages() {
	languagesOnce.Do(func() {
		languages = map[dialect]*tree_sitter.Language{
			dialectTS:  tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			dialectTSX: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			dialectJS:  tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		}
		parserPools = make(map[dialect]*sync.Pool, len(languages))
		for d, tsLang := range languages {
			tsLang := tsLang
			parserPools[d] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("tsast: set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

func dialectForExtension(ext string) (dialect, bool) {
	switch ext {
	case ".ts":
		return dialectTS, true
	case ".tsx":
		return dialectTSX, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return dialectJS, true
	default:
		return 0, false
	}
}

// parse parses source with the dialect's pooled parser. The caller must
// call tree.Close() when done.
func parse(d dialect, source []byte) (*tree_sitter.Tree, error) {
	initLanguages()
	pool := parserPools[d]
	p, _ := pool.Get().(*tree_sitter.Parser)
	tree := p.Parse(source, nil)
	pool.Put(p)
	if tree == nil {
		return nil, fmt.Errorf("tsast: parse failed")
	}
	return tree, nil
}

// nodeText returns the text content of a node.
func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func lineSpan(node *tree_sitter.Node) astkit.Span {
	return astkit.Span{
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

// Project discovers source files under configured package roots and
// parses them on demand, implementing astkit.AstProject.
type Project struct {
	packages []astkit.Package
	byPath   map[string]*sourceFile
}

// PackageConfig is one configured package root, per §4.1/§6's
// tsconfig-equivalent grouping.
type PackageConfig struct {
	Name         string
	Root         string
	TsconfigPath string
}

// excludedDirs is the vendor/build exclusion list for the JS/TS
// ecosystem's own noise directories.
var excludedDirs = map[string]bool{
	"node_modules": true, ".git": true, "dist": true, "build": true,
	"coverage": true, ".next": true, ".turbo": true,
}

// NewProject walks each configured package root, reads every
// .ts/.tsx/.js/.jsx/.mjs/.cjs file found (skipping .d.ts declaration files
// and excludedDirs), and returns a Project ready for SourceFile access;
// each file is parsed on its first access.
func NewProject(configs []PackageConfig) (*Project, error) {
	proj := &Project{byPath: map[string]*sourceFile{}}

	for _, cfg := range configs {
		var files []astkit.SourceFile
		err := filepath.WalkDir(cfg.Root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if excludedDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			ext := filepath.Ext(p)
			if strings.HasSuffix(p, ".d.ts") {
				return nil
			}
			dl, ok := dialectForExtension(ext)
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(cfg.Root, p)
			if err != nil {
				rel = p
			}
			source, err := os.ReadFile(p)
			if err != nil {
				return nil // unreadable file: skip rather than fail the whole sync
			}
			sf := newSourceFile(filepath.ToSlash(rel), dl, source)
			sf.project = proj
			files = append(files, sf)
			proj.byPath[sf.Path()] = sf
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("tsast: walk %s: %w", cfg.Root, err)
		}
		proj.packages = append(proj.packages, astkit.Package{
			Name:         cfg.Name,
			TsconfigPath: cfg.TsconfigPath,
			Files:        files,
		})
	}

	return proj, nil
}

func (p *Project) Packages() []astkit.Package { return p.packages }

// fileByPath resolves a package-relative path to its parsed SourceFile,
// used by ResolveSymbol's alias-chain walk.
func (p *Project) fileByPath(path string) (*sourceFile, bool) {
	sf, ok := p.byPath[path]
	return sf, ok
}
