package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"relicforge/internal/relic"
)

// source abstracts where a catalog document comes from, so tests can supply
// in-memory sources while production code reads files off disk.
type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) { return os.ReadFile(f.path) }
func (f fileSource) Path() string          { return f.path }

type memorySource struct {
	path string
	data []byte
}

func (m memorySource) Load() ([]byte, error) { return m.data, nil }
func (m memorySource) Path() string          { return m.path }

// NewMemorySource wraps an in-memory catalog document, for tests and seed
// fixtures that would rather not touch the filesystem.
func NewMemorySource(name string, data []byte) source {
	return memorySource{path: name, data: data}
}

// DefaultPaths returns the canonical catalog seed locations relative to the
// process working directory.
func DefaultPaths() []string {
	candidates := []string{
		filepath.Join("config", "relics", "catalog.json"),
		filepath.Join("..", "config", "relics", "catalog.json"),
	}
	paths := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		cleaned := filepath.Clean(candidate)
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		paths = append(paths, cleaned)
	}
	return paths
}

// metaBuildsFilename is the companion file each file-backed catalog source
// is checked against: a catalog at "config/relics/catalog.json" picks up
// curated meta builds from "config/relics/meta_builds.json" in the same
// directory, if present. Missing companions are not an error.
const metaBuildsFilename = "meta_builds.json"

// CatalogRepository is a Repository backed by one or more JSON catalog
// documents merged in source order (later sources override earlier ones),
// held entirely in memory. Reload re-parses all sources, supporting local
// overlay files during development.
type CatalogRepository struct {
	mu         sync.RWMutex
	sources    []source
	relics     map[string]relic.Relic
	metaBuilds map[relic.CombatStyle][][]string
}

// LoadCatalog constructs a CatalogRepository from file paths.
func LoadCatalog(paths ...string) (*CatalogRepository, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return NewCatalogRepository(sources...)
}

// NewCatalogRepository constructs a CatalogRepository from arbitrary sources.
func NewCatalogRepository(sources ...source) (*CatalogRepository, error) {
	c := &CatalogRepository{
		sources: append([]source(nil), sources...),
		relics:  make(map[string]relic.Relic),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-parses every source. Missing files are skipped, not fatal, so a
// deployment can layer an optional local overlay on top of the base seed.
func (c *CatalogRepository) Reload() error {
	merged := make(map[string]relic.Relic)
	metaBuilds := make(map[relic.CombatStyle][][]string)
	for _, src := range c.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: load %s: %w", src.Path(), err)
		}
		relics, err := decodeCatalog(data)
		if err != nil {
			return fmt.Errorf("catalog: parse %s: %w", src.Path(), err)
		}
		seen := make(map[string]struct{}, len(relics))
		for _, r := range relics {
			id := strings.TrimSpace(r.ID)
			if id == "" {
				return fmt.Errorf("catalog: relic missing id in %s", src.Path())
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("catalog: duplicate relic id %q in %s", id, src.Path())
			}
			seen[id] = struct{}{}
			for i := range r.Effects {
				r.Effects[i].DisplayOrder = i
			}
			merged[id] = r
		}

		if fileSrc, ok := src.(fileSource); ok {
			companion := filepath.Join(filepath.Dir(fileSrc.path), metaBuildsFilename)
			data, err := os.ReadFile(companion)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return fmt.Errorf("catalog: load %s: %w", companion, err)
			}
			decoded, err := decodeMetaBuilds(data)
			if err != nil {
				return fmt.Errorf("catalog: parse %s: %w", companion, err)
			}
			for style, lists := range decoded {
				metaBuilds[style] = append(metaBuilds[style], lists...)
			}
		}
	}
	c.mu.Lock()
	c.relics = merged
	c.metaBuilds = metaBuilds
	c.mu.Unlock()
	return nil
}

func decodeMetaBuilds(data []byte) (map[relic.CombatStyle][][]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var raw map[relic.CombatStyle][][]string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SetMetaBuilds installs curated candidate id sets directly, bypassing the
// companion-file convention. Tests and in-memory-source repositories use
// this since memorySource has no directory to resolve a companion file
// against.
func (c *CatalogRepository) SetMetaBuilds(builds map[relic.CombatStyle][][]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metaBuilds = builds
}

func decodeCatalog(data []byte) ([]relic.Relic, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var relics []relic.Relic
		if err := json.Unmarshal(trimmed, &relics); err != nil {
			return nil, err
		}
		return relics, nil
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(object))
		for id := range object {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		relics := make([]relic.Relic, 0, len(ids))
		for _, id := range ids {
			var r relic.Relic
			if err := json.Unmarshal(object[id], &r); err != nil {
				return nil, fmt.Errorf("relic %q: %w", id, err)
			}
			if r.ID == "" {
				r.ID = id
			} else if r.ID != id {
				return nil, fmt.Errorf("relic id %q does not match key %q", r.ID, id)
			}
			relics = append(relics, r)
		}
		return relics, nil
	default:
		return nil, fmt.Errorf("unexpected json token %q", string(trimmed[:1]))
	}
}

func (c *CatalogRepository) GetRelic(_ context.Context, id string) (relic.Relic, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.relics[id]
	if !ok {
		return relic.Relic{}, fmt.Errorf("catalog: relic %q not found", id)
	}
	return r, nil
}

// GetRelicsByIDs returns the subset of ids present in the catalog, in no
// particular order. Missing ids are silently omitted rather than failing
// the whole call — callers (validation.Validate) diff the result against
// the requested ids to report exactly which ones are missing.
func (c *CatalogRepository) GetRelicsByIDs(_ context.Context, ids []string) ([]relic.Relic, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]relic.Relic, 0, len(ids))
	for _, id := range ids {
		if r, ok := c.relics[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *CatalogRepository) ListRelics(_ context.Context, filter Filter) ([]relic.Relic, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.relics))
	for id := range c.relics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]relic.Relic, 0, len(ids))
	for _, id := range ids {
		r := c.relics[id]
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *CatalogRepository) DifficultyEstimate(_ context.Context, relicID string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.relics[relicID]
	if !ok {
		return 0, fmt.Errorf("catalog: relic %q not found", relicID)
	}
	return r.ObtainmentDifficulty, nil
}

func (c *CatalogRepository) MetaBuilds(_ context.Context, style relic.CombatStyle) ([][]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lists := c.metaBuilds[style]
	out := make([][]string, len(lists))
	for i, list := range lists {
		out[i] = append([]string(nil), list...)
	}
	return out, nil
}
