// Package assets handles asset loading and caching.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

// ErrNotFound is returned when no root contains the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager loads files from a stack of asset roots.
type Manager struct {
	roots []root
	cache *Cache
	mu    sync.RWMutex
}

// root is one filesystem in the stack. A root with a prefix only serves
// names below that prefix, with the prefix stripped.
type root struct {
	fsys   fs.FS
	name   string
	prefix string
}

// lookup maps an asset name to a path inside the root.
func (r root) lookup(name string) (string, bool) {
	if r.prefix == "" {
		return name, true
	}
	rest, ok := strings.CutPrefix(name, r.prefix+"/")
	return rest, ok
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddDir adds a directory root to the manager.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddDir(dir string) error {
	return m.MountDir("", dir)
}

// MountDir adds a directory root whose files are addressed as
// prefix/name. Files of two mounts never shadow each other, even when
// they share names.
func (m *Manager) MountDir(prefix, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening asset root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset root %s: not a directory", dir)
	}
	m.Mount(prefix, dir, os.DirFS(dir))
	return nil
}

// AddFS adds an arbitrary filesystem root under a display name.
func (m *Manager) AddFS(name string, fsys fs.FS) {
	m.Mount("", name, fsys)
}

// Mount adds a filesystem root under prefix. An empty prefix serves every
// name.
func (m *Manager) Mount(prefix, name string, fsys fs.FS) {
	if prefix != "" {
		prefix = Clean(prefix)
	}
	m.mu.Lock()
	m.roots = append(m.roots, root{fsys: fsys, name: name, prefix: prefix})
	m.mu.Unlock()
}

// Load reads a file from the roots. Paths use forward slashes.
func (m *Manager) Load(name string) ([]byte, error) {
	name = Clean(name)

	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		r := m.roots[i]
		p, ok := r.lookup(name)
		if !ok {
			continue
		}
		data, err := fs.ReadFile(r.fsys, p)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s from %s: %w", name, r.name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Invalidate drops a cached file so the next Load reads it again.
func (m *Manager) Invalidate(name string) {
	m.cache.Delete(Clean(name))
}

// Close drops all roots and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Clean normalizes an asset path: forward slashes, no leading slash.
func Clean(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean("/" + name)
	return strings.TrimPrefix(name, "/")
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
