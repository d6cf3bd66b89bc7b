// Package remap rewrites package-self-referential import specifiers.
//
// A document embedded in a module's own source tree may write samples that
// import the enclosing module by its short published name. The remapper
// finds the nearest enclosing go.mod and rewrites such specifiers to the
// module's canonical import path, so the generated test resolves locally
// without a published install. Go rejects relative imports in module mode,
// so the canonical path stands in for the relative path a looser host
// would use.
package remap

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// manifest is one discovered go.mod.
type manifest struct {
	dir  string
	path string // declared module path
	name string // last element of the module path
}

// Resolver maps import specifiers to canonical paths. Lookups are cached
// per directory for the resolver's lifetime; a resolver is scoped to one
// compilation, so staleness across runs never leaks in. The zero value is
// not usable; call New.
type Resolver struct {
	cache map[string]*manifest // nil entry: no manifest above that dir
}

// New returns an empty resolver.
func New() *Resolver {
	return &Resolver{cache: make(map[string]*manifest)}
}

// Resolve maps spec, an import path written in a sample whose document
// lives in dir. A specifier equal to the enclosing module's short name
// becomes the full module path; a specifier under that name keeps its
// remainder. Everything else, including specifiers with no enclosing
// manifest at all, passes through unchanged.
func (r *Resolver) Resolve(dir, spec string) string {
	if dir == "" {
		return spec
	}
	m := r.lookup(filepath.Clean(dir))
	if m == nil {
		return spec
	}
	if spec == m.name {
		return m.path
	}
	if rest, ok := strings.CutPrefix(spec, m.name+"/"); ok {
		return m.path + "/" + rest
	}
	return spec
}

// lookup walks upward from dir to the nearest readable go.mod, caching
// the result (or its absence) for every directory visited.
func (r *Resolver) lookup(dir string) *manifest {
	if m, ok := r.cache[dir]; ok {
		return m
	}
	m := readManifest(dir)
	if m == nil {
		if parent := filepath.Dir(dir); parent != dir {
			m = r.lookup(parent)
		}
	}
	r.cache[dir] = m
	return m
}

// readManifest parses dir/go.mod if present. A missing or malformed file
// is not an error; specifiers simply pass through.
func readManifest(dir string) *manifest {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return nil
	}
	modPath := modfile.ModulePath(data)
	if modPath == "" {
		return nil
	}
	return &manifest{dir: dir, path: modPath, name: path.Base(modPath)}
}
