// Package ingest is the bounded-concurrency ingestion driver of §5:
// one task per file, a shared serialized store, and manifest-based
// incremental sync, using a worker-pool shape (golang.org/x/sync/errgroup
// with SetLimit(NumCPU)) over a single-pass-per-file extraction
// (internal/extract).
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
	"github.com/couzic/ts-graph-mcp-sub001/internal/extract"
	"github.com/couzic/ts-graph-mcp-sub001/internal/graph"
	"github.com/couzic/ts-graph-mcp-sub001/internal/search"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

// FileError is a per-file extraction failure captured rather than aborting
// the run, per §7 error kind 3.
type FileError struct {
	File    string
	Message string
}

// RunResult summarizes one ingestion pass.
type RunResult struct {
	IndexedFiles int
	RemovedFiles int
	SkippedFiles int
	Nodes        int
	Edges        int
	Errors       []FileError
}

// Driver indexes the files of every package in an AstProject into one
// Store, optionally feeding a
// search.Index with embeddings.
type Driver struct {
	Store    *store.Store
	Registry astkit.ProjectRegistry
	Index    *search.Index // optional; nil disables search/embedding wiring
	Logger   *slog.Logger
	// Parallelism bounds concurrent file tasks; zero means runtime.NumCPU().
	Parallelism int
	// ModuleOf maps a package name to its configured module name, per
	// spec §6's optional package->module grouping. Nil (or a package
	// name absent from it) means the package is its own module.
	ModuleOf map[string]string
}

func (d *Driver) moduleOf(pkgName string) string {
	if m, ok := d.ModuleOf[pkgName]; ok {
		return m
	}
	return pkgName
}

// NewDriver constructs a Driver with sane defaults.
func NewDriver(s *store.Store, reg astkit.ProjectRegistry, idx *search.Index) *Driver {
	return &Driver{Store: s, Registry: reg, Index: idx, Logger: slog.Default()}
}

// Run indexes every file in proj's packages, skipping files whose content
// hash matches the stored manifest entry, removing manifest entries (and
// their nodes) for files no longer present. Cancellation via ctx stops
// new file tasks from starting; tasks already running finish. A file's
// writes are separate statements, not one transaction: its manifest
// entry is written last, so a file whose writes stop partway keeps no
// up-to-date entry and is indexed again on the next run.
func (d *Driver) Run(ctx context.Context, proj astkit.AstProject) (*RunResult, error) {
	existing, err := d.Store.AllManifestEntries()
	if err != nil {
		return nil, fmt.Errorf("ingest: load manifest: %w", err)
	}

	type fileTask struct {
		pkgName string
		sf      astkit.SourceFile
	}
	var tasks []fileTask
	seen := map[string]bool{}
	for _, pkg := range proj.Packages() {
		for _, sf := range pkg.Files {
			tasks = append(tasks, fileTask{pkgName: pkg.Name, sf: sf})
			seen[sf.Path()] = true
		}
	}

	parallelism := d.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(tasks) && len(tasks) > 0 {
		parallelism = len(tasks)
	}

	var mu sync.Mutex
	result := &RunResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil // cooperative cancellation: stop launching new work
			}
			hash := contentHash(task.sf.Source())
			if prior, ok := existing[task.sf.Path()]; ok && prior.Hash == hash {
				mu.Lock()
				result.SkippedFiles++
				mu.Unlock()
				return nil
			}

			nodeCount, edgeCount, fileErr := d.indexFile(gctx, task.pkgName, task.sf, hash)
			mu.Lock()
			defer mu.Unlock()
			if fileErr != nil {
				result.Errors = append(result.Errors, FileError{File: task.sf.Path(), Message: fileErr.Error()})
				return nil
			}
			result.IndexedFiles++
			result.Nodes += nodeCount
			result.Edges += edgeCount
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	removed, err := d.removeDeletedFiles(existing, seen)
	if err != nil {
		return nil, err
	}
	result.RemovedFiles = removed

	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].File < result.Errors[j].File })
	return result, nil
}

// indexFile runs one file's full pipeline: remove its prior nodes, extract
// and write new nodes then edges (nodes-before-edges, §5), index it
// for search, and record its manifest entry last, only once the rest has
// committed.
func (d *Driver) indexFile(ctx context.Context, pkgName string, sf astkit.SourceFile, hash string) (nodeCount, edgeCount int, err error) {
	fctx := extract.FileContext{
		FilePath: sf.Path(),
		Module:   d.moduleOf(pkgName),
		Package:  pkgName,
		Registry: d.Registry,
	}

	nodes := extract.Nodes(sf, fctx)
	edges := extract.Edges(sf, fctx)

	if err := d.Store.RemoveFileNodes(sf.Path()); err != nil {
		return 0, 0, fmt.Errorf("remove prior nodes for %s: %w", sf.Path(), err)
	}
	if err := d.Store.UpsertNodes(nodes); err != nil {
		return 0, 0, fmt.Errorf("upsert nodes for %s: %w", sf.Path(), err)
	}
	if err := d.Store.UpsertEdges(edges); err != nil {
		return 0, 0, fmt.Errorf("upsert edges for %s: %w", sf.Path(), err)
	}

	embedFailed := false
	if d.Index != nil {
		model := d.Index.ModelName()
		for _, n := range nodes {
			if n.Kind == graph.KindFile || n.ContentHash == "" {
				continue
			}
			doc := search.Document{ID: n.ID, Symbol: n.Name, File: n.FilePath, Kind: string(n.Kind), Content: n.Snippet}
			if err := d.Index.Add(ctx, doc, n.ContentHash); err != nil {
				// Embedding failures degrade this node to lexical-only;
				// indexing is not aborted (§5 timeout handling).
				d.Logger.Warn("ingest.embed_failed", "node", n.ID, "error", err)
				embedFailed = true
				continue
			}
			if model == "" {
				continue
			}
			if vec, ok := d.Index.Vector(n.ID); ok {
				row := store.EmbeddingRow{NodeID: n.ID, Model: model, ContentHash: n.ContentHash, Vector: vec}
				if err := d.Store.UpsertEmbedding(row); err != nil {
					d.Logger.Warn("ingest.embedding_persist_failed", "node", n.ID, "error", err)
				}
			}
		}
	}

	if embedFailed {
		// No manifest entry: the next run indexes this file again and
		// retries its embeddings.
		return len(nodes), len(edges), nil
	}

	entry := store.ManifestEntry{
		RelPath: sf.Path(),
		Mtime:   "",
		Size:    int64(len(sf.Source())),
		Hash:    hash,
	}
	if err := d.Store.UpsertManifestEntry(entry); err != nil {
		return 0, 0, fmt.Errorf("record manifest entry for %s: %w", sf.Path(), err)
	}

	return len(nodes), len(edges), nil
}

// removeDeletedFiles drops manifest, node, edge and embedding data for any
// previously indexed file no longer present in the current file set.
func (d *Driver) removeDeletedFiles(existing map[string]store.ManifestEntry, seen map[string]bool) (int, error) {
	removed := 0
	for relPath := range existing {
		if seen[relPath] {
			continue
		}
		if err := d.Store.RemoveFileNodes(relPath); err != nil {
			return removed, fmt.Errorf("remove deleted file %s: %w", relPath, err)
		}
		if err := d.Store.DeleteManifestEntry(relPath); err != nil {
			return removed, fmt.Errorf("remove manifest entry %s: %w", relPath, err)
		}
		if d.Index != nil {
			d.Index.Remove(graph.FileID(relPath))
		}
		removed++
	}
	return removed, nil
}

// ProjectKey derives a stable package identifier from a root path: the
// base name of the cleaned path.
func ProjectKey(root string) string {
	return filepath.Base(filepath.Clean(root))
}
