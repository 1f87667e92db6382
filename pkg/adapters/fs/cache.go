package fs

import (
	"sync"
	"time"

	"github.com/aretw0/jot/pkg/core"
)

// indexEntry is the parsed form of a single note file.
type indexEntry struct {
	Note         core.Note
	LastModified time.Time
	Size         int64
}

// cache keeps parsed notes in memory so List only re-parses files whose
// mtime or size changed since they were last read.
type cache struct {
	mu      sync.RWMutex
	entries map[string]*indexEntry // Key is the file name (e.g. "20240101000000000000.json")
	hits    int
	misses  int
}

func newCache() *cache {
	return &cache{entries: make(map[string]*indexEntry)}
}

// Get retrieves an entry if it exists and is fresh.
func (c *cache) Get(name string, mtime time.Time, size int64) (core.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[name]
	if !ok || !entry.LastModified.Equal(mtime) || entry.Size != size {
		c.misses++
		return core.Note{}, false
	}
	c.hits++
	return cloneNote(entry.Note), true
}

// Set updates an entry in the cache.
func (c *cache) Set(name string, n core.Note, mtime time.Time, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = &indexEntry{Note: cloneNote(n), LastModified: mtime, Size: size}
}

// Delete removes a single entry from the cache.
func (c *cache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, name)
}

// Prune removes entries that are not in the 'keep' set.
func (c *cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name := range c.entries {
		if !keep[name] {
			delete(c.entries, name)
		}
	}
}

// Len returns the number of entries in the cache.
func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// cloneNote copies the tag slice so cached notes never alias caller data.
func cloneNote(n core.Note) core.Note {
	if n.Tags != nil {
		n.Tags = append([]string(nil), n.Tags...)
	}
	return n
}
