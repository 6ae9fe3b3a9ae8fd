package texture

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"rf-asset-tools/internal/diag"
)

// DefaultTexture replaces any texture that cannot be found.
const DefaultTexture = "rck_default.tga"

// Source opens files by name. vfs.FS implements it.
type Source interface {
	Open(name string) ([]byte, bool)
}

// Resolver resolves a texture reference to decoded levels.
type Resolver interface {
	Resolve(texName string) *Texture
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu       sync.RWMutex
	items    map[uint64]*Texture // nil records a failed load
	index    *Index
	src      Source
	fallback string
	warnings diag.Collector
}

// NewCache creates a texture cache over src. fallback names the texture
// used for missing references; empty means DefaultTexture.
func NewCache(src Source, index *Index, fallback string) *Cache {
	if fallback == "" {
		fallback = DefaultTexture
	}
	return &Cache{
		items:    make(map[uint64]*Texture),
		index:    index,
		src:      src,
		fallback: fallback,
	}
}

// Resolve loads and caches a texture by name. A missing or undecodable
// texture is replaced by the fallback and reported as a warning. Returns
// nil only when the fallback itself is unavailable.
func (c *Cache) Resolve(texName string) *Texture {
	stem := StemOf(texName)
	if tex := c.load(stem); tex != nil {
		return tex
	}

	c.mu.Lock()
	c.warnings.Missing("texture %q not found, using %s", texName, c.fallback)
	c.mu.Unlock()

	fb := c.load(StemOf(c.fallback))
	if fb == nil {
		return nil
	}
	out := *fb
	out.Name = stem
	out.Fallback = true
	return &out
}

func (c *Cache) load(stem string) *Texture {
	key := xxhash.Sum64String(stem)

	// Fast path: read lock
	c.mu.RLock()
	if tex, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return tex
	}
	c.mu.RUnlock()

	// Slow path: decode outside the lock
	var tex *Texture
	var loadErr error
	if files, ok := c.index.ResolveFiles(stem); ok {
		tex, loadErr = LoadTexture(c.src, stem, files)
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, exists := c.items[key]; exists {
		return cached
	}
	if loadErr != nil {
		c.warnings.Missing("texture %q: %v", stem, loadErr)
	}
	c.items[key] = tex
	return tex
}

// Warnings returns the missing-texture warnings recorded so far.
func (c *Cache) Warnings() []diag.Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]diag.Warning(nil), c.warnings.Warnings()...)
}
