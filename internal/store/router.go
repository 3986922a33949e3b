package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PackageInfo describes one package's database file, returned by
// ListPackages for the graph-schema tool's multi-package view.
type PackageInfo struct {
	Name   string
	DBPath string
}

// StoreRouter manages one SQLite database per configured package,
// lazily opened, so a multi-package project (§4.1's PackageConfig
// list) never forces every package's graph into one database.
type StoreRouter struct {
	dir    string
	stores map[string]*Store
	mu     sync.Mutex
}

// NewRouter creates a StoreRouter rooted at dir (typically
// ProjectConfig.CacheDir), creating it if necessary.
func NewRouter(dir string) (*StoreRouter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir cache dir %s: %w", dir, err)
	}
	return &StoreRouter{dir: dir, stores: make(map[string]*Store)}, nil
}

// ForPackage returns the Store for the named package, opening its
// <name>.db lazily on first use.
func (r *StoreRouter) ForPackage(name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("empty package name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		return s, nil
	}
	s, err := OpenPath(filepath.Join(r.dir, name+".db"))
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", name, err)
	}
	r.stores[name] = s
	return s, nil
}

// ListPackages scans the cache directory for .db files already on
// disk, independent of which ones this router has opened so far.
func (r *StoreRouter) ListPackages() ([]PackageInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", r.dir, err)
	}
	var out []PackageInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".db")
		out = append(out, PackageInfo{Name: name, DBPath: filepath.Join(r.dir, e.Name())})
	}
	return out, nil
}

// DeletePackage closes (if open) and removes the package's database
// file along with its WAL/SHM siblings.
func (r *StoreRouter) DeletePackage(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		s.Close()
		delete(r.stores, name)
	}
	dbPath := filepath.Join(r.dir, name+".db")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		p := dbPath + suffix
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// CloseAll closes every store this router has opened.
func (r *StoreRouter) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, s := range r.stores {
		s.Close()
		delete(r.stores, name)
	}
}

// Dir returns the router's cache directory.
func (r *StoreRouter) Dir() string { return r.dir }
