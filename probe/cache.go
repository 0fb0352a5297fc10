package probe

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/mpvsource/mpvsource/filesystem"
	"github.com/mpvsource/mpvsource/playlist"
	"github.com/samber/mo"
)

const cacheLifetime = 30 * 24 * time.Hour

// entry pairs probed metadata with the file identity it was probed from.
type entry struct {
	Size     int64             `json:"size"`
	ModTime  time.Time         `json:"mod_time"`
	Metadata playlist.Metadata `json:"metadata"`
}

type cacheData struct {
	Entries map[string]*entry `json:"entries"`
}

// Cache stores probed metadata on disk keyed by path. Entries are only
// served while the file keeps its size and modification time.
type Cache struct {
	internal *gache.Cache[*cacheData]
	mu       sync.RWMutex
}

// NewCache opens a cache backed by the file at path.
func NewCache(path string) *Cache {
	return &Cache{
		internal: gache.New[*cacheData](&gache.Options{
			Path:       path,
			Lifetime:   cacheLifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// stat identifies a local file; remote paths are never cached.
func stat(path string) (size int64, modTime time.Time, ok bool) {
	info, err := filesystem.API().Stat(path)
	if err != nil || info.IsDir() {
		return 0, time.Time{}, false
	}
	return info.Size(), info.ModTime(), true
}

// Get returns cached metadata for path if the file is unchanged.
func (c *Cache) Get(path string) mo.Option[playlist.Metadata] {
	size, modTime, ok := stat(path)
	if !ok {
		return mo.None[playlist.Metadata]()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[playlist.Metadata]()
	}

	e, found := data.Entries[path]
	if !found || e.Size != size || !e.ModTime.Equal(modTime) {
		return mo.None[playlist.Metadata]()
	}
	return mo.Some(e.Metadata)
}

// Set records metadata for path.
func (c *Cache) Set(path string, meta playlist.Metadata) error {
	size, modTime, ok := stat(path)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}
	if expired || data == nil || data.Entries == nil {
		data = &cacheData{Entries: make(map[string]*entry)}
	}
	data.Entries[path] = &entry{Size: size, ModTime: modTime, Metadata: meta}
	return c.internal.Set(data)
}

// Delete drops the entry for path.
func (c *Cache) Delete(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}
	if expired || data == nil {
		return nil
	}
	delete(data.Entries, path)
	return c.internal.Set(data)
}
