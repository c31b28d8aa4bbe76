package source

import (
	"fmt"
	"path/filepath"
	"sync"

	cache "github.com/go-pkgz/expirable-cache/v3"
	log "github.com/go-pkgz/lgr"
	"golang.org/x/sync/singleflight"

	"github.com/ando2022/job-app/app/jobs"
)

// Cache memoizes loaded tables by resolved source path. Entries never expire, they live until
// invalidated. Concurrent requests for the same missing key share a single load. Errors are not cached.
// A load overlapped by invalidation of its key is returned to its callers but not stored.
type Cache struct {
	load   LoadFunc
	tables cache.Cache[string, *jobs.Table]
	group  singleflight.Group

	mu      sync.Mutex
	gens    map[string]uint64 // per-key invalidation counter
	allGens uint64            // InvalidateAll counter
}

// NewCache makes a cache using load to read tables
func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load, tables: cache.NewCache[string, *jobs.Table](), gens: map[string]uint64{}}
}

// Get returns the table for path, loading it on the first request
func (c *Cache) Get(path string) (*jobs.Table, error) {
	key := Key(path)
	if tbl, ok := c.tables.Get(key); ok {
		return tbl, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		if tbl, ok := c.tables.Get(key); ok {
			return tbl, nil
		}
		gen, allGen := c.generation(key)
		tbl, err := c.load(key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gens[key] != gen || c.allGens != allGen {
			log.Printf("[DEBUG] %s invalidated during load, not cached", key)
			return tbl, nil
		}
		c.tables.Set(key, tbl, 0)
		log.Printf("[INFO] loaded %d job records from %s", tbl.Len(), key)
		return tbl, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return res.(*jobs.Table), nil
}

// Invalidate drops the cached table for path, next Get reloads it
func (c *Cache) Invalidate(path string) {
	key := Key(path)
	c.mu.Lock()
	c.gens[key]++
	c.tables.Invalidate(key)
	c.mu.Unlock()
	c.group.Forget(key) // later Get starts a new load instead of joining the running one
	log.Printf("[DEBUG] invalidated cached table %s", key)
}

// InvalidateAll drops all cached tables
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.allGens++
	c.tables.Purge()
	c.mu.Unlock()
}

func (c *Cache) generation(key string) (gen, allGen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key], c.allGens
}

// Len returns the number of cached tables
func (c *Cache) Len() int {
	return c.tables.Len()
}

// Key resolves path to the absolute path with symlinks evaluated. If the file can't be resolved
// (missing, for example) the cleaned absolute path returned.
func Key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
