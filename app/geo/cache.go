package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Cache is the persistent address -> coordinates memo. Entries are never
// overwritten or expired: addresses are assumed immutable.
type Cache struct {
	path    string
	entries map[string]Point
	dirty   bool
	mu      sync.RWMutex
	saveMu  sync.Mutex
}

func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]Point),
	}
}

// AddressKey builds the cache key for a street address in a neighborhood.
// Both parts empty yields an empty key.
func AddressKey(address, neighborhood string) string {
	address = strings.TrimSpace(address)
	neighborhood = strings.TrimSpace(neighborhood)
	if address == "" && neighborhood == "" {
		return ""
	}
	return strings.TrimSpace(address + " - " + neighborhood)
}

// PlaceKey builds the cache key for a free-form place description.
func PlaceKey(place string) string {
	return strings.TrimSpace(place)
}

// Load replaces the in-memory entries with the file contents. A missing file
// leaves the cache empty and is not an error.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read geocache: %w", err)
	}

	entries := make(map[string]Point)
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse geocache: %w", err)
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.dirty = false
	c.mu.Unlock()

	return nil
}

func (c *Cache) Lookup(key string) (Point, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

// Store records a point for key unless the key is already present.
// Returns true when the entry was written.
func (c *Cache) Store(key string, p Point) bool {
	if key == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = p
	c.dirty = true
	return true
}

func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Save writes the whole cache to a temp file next to the target and renames
// it over the target, so a crash never leaves a torn file.
func (c *Cache) Save() error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	data, err := json.MarshalIndent(c.entries, "", "    ")
	c.dirty = false
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode geocache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create geocache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		c.markDirty()
		return fmt.Errorf("failed to create temp geocache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		c.markDirty()
		return fmt.Errorf("failed to write temp geocache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		c.markDirty()
		return fmt.Errorf("failed to close temp geocache file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		c.markDirty()
		return fmt.Errorf("failed to set geocache permissions: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		c.markDirty()
		return fmt.Errorf("failed to replace geocache file: %w", err)
	}

	return nil
}

func (c *Cache) SaveIfDirty() error {
	if !c.Dirty() {
		return nil
	}
	return c.Save()
}

func (c *Cache) markDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}
