package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/couzic/ts-graph-mcp-sub001/internal/config"
	"github.com/couzic/ts-graph-mcp-sub001/internal/ingest"
	"github.com/couzic/ts-graph-mcp-sub001/internal/query"
	"github.com/couzic/ts-graph-mcp-sub001/internal/registry"
	"github.com/couzic/ts-graph-mcp-sub001/internal/search"
	"github.com/couzic/ts-graph-mcp-sub001/internal/store"
)

// projectSet lazily opens one Store (and hybrid search.Index rebuilt
// from it) per indexed codebase, routed by name through a
// store.StoreRouter, keyed on indexed codebase rather than on an
// individual configured package, since a cross-package monorepo needs
// every configured package of one repo to land in the same store —
// see internal/registry.Registry.AllPackages.
type projectSet struct {
	router *store.StoreRouter

	mu      sync.Mutex
	cfgs    map[string]*config.ProjectConfig
	engines map[string]*query.Engine
	indexes map[string]*search.Index
}

func newProjectSet(router *store.StoreRouter) *projectSet {
	return &projectSet{
		router:  router,
		cfgs:    map[string]*config.ProjectConfig{},
		engines: map[string]*query.Engine{},
		indexes: map[string]*search.Index{},
	}
}

// register associates name with cfg, so a later index/query call against
// name knows which roots to parse and which search settings to use.
func (p *projectSet) register(name string, cfg *config.ProjectConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfgs[name] = cfg
}

// engineFor returns the cached query.Engine for name, building it (store
// + search index rebuilt from storage) on first use.
func (p *projectSet) engineFor(name string) (*query.Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.engines[name]; ok {
		return e, nil
	}
	st, err := p.router.ForPackage(name)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}
	modelName := "local-hash-384"
	if cfg, ok := p.cfgs[name]; ok && cfg.Search.EmbeddingModel != "" {
		modelName = cfg.Search.EmbeddingModel
	}
	idx, err := rebuildIndex(st, modelName)
	if err != nil {
		return nil, fmt.Errorf("project %q: rebuild search index: %w", name, err)
	}
	eng := query.New(st, idx)
	p.engines[name] = eng
	p.indexes[name] = idx
	return eng, nil
}

// configFor returns the registered ProjectConfig for name, if any.
func (p *projectSet) configFor(name string) (*config.ProjectConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, ok := p.cfgs[name]
	return cfg, ok
}

// invalidate drops a project's cached engine/index so the next
// engineFor call rebuilds them from the store, used after indexProject
// completes a (re)index of that project and after a project is deleted.
func (p *projectSet) invalidate(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.engines, name)
	delete(p.indexes, name)
}

// rebuildIndex reconstructs a hybrid search.Index purely from a Store's
// persisted nodes and embeddings tables, so a freshly started server
// process need not re-run ingestion to serve search-graph/search-symbols
// queries against an already-indexed cache directory.
func rebuildIndex(st *store.Store, modelName string) (*search.Index, error) {
	provider := search.NewEmbeddingProvider(modelName)
	idx := search.NewIndex(provider, nil, 0.5)

	nodes, err := st.AllSearchableNodes()
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		idx.AddDocument(search.Document{ID: n.ID, Symbol: n.Name, File: n.FilePath, Kind: string(n.Kind), Content: n.Snippet})
	}

	embeddings, err := st.AllEmbeddings(provider.Name())
	if err != nil {
		return nil, err
	}
	byID := map[string]*store.EmbeddingRow{}
	for i := range embeddings {
		byID[embeddings[i].NodeID] = &embeddings[i]
	}
	for _, n := range nodes {
		if row, ok := byID[n.ID]; ok {
			idx.AddVector(search.Document{ID: n.ID, Symbol: n.Name, File: n.FilePath, Kind: string(n.Kind), Content: n.Snippet}, row.Vector)
		}
	}
	return idx, nil
}

// moduleMap flattens cfg.Modules into a package-name -> module-name
// lookup for ingest.Driver.ModuleOf, per §6's optional module grouping.
func moduleMap(cfg *config.ProjectConfig) map[string]string {
	out := map[string]string{}
	for _, pkg := range cfg.Packages {
		out[pkg.Name] = cfg.ModuleOf(pkg.Name)
	}
	return out
}

// indexProject runs a full ingestion pass for name against cfg, using a
// fresh embedding-backed search.Index whose vectors the driver persists
// to the store; that index is then discarded and the cached engine
// invalidated, so the next query rebuilds the index from storage.
func (p *projectSet) indexProject(ctx context.Context, name string, cfg *config.ProjectConfig) (*ingest.RunResult, error) {
	reg, err := registry.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("project %q: build registry: %w", name, err)
	}
	st, err := p.router.ForPackage(name)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}

	cache, err := search.OpenCache(cfg.CacheDir, cfg.Search.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("project %q: open embedding cache: %w", name, err)
	}
	defer cache.Close()

	provider := search.NewEmbeddingProvider(cfg.Search.EmbeddingModel)
	idx := search.NewIndex(provider, cache, cfg.Search.HybridWeight)

	driver := ingest.NewDriver(st, reg, idx)
	driver.ModuleOf = moduleMap(cfg)
	result, err := driver.Run(ctx, reg.AllPackages())
	if err != nil {
		return nil, fmt.Errorf("project %q: ingest: %w", name, err)
	}

	p.mu.Lock()
	p.cfgs[name] = cfg
	p.mu.Unlock()
	p.invalidate(name)

	return result, nil
}
