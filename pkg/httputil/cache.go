package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but is older
// than the cache TTL. The caller should refetch and [Cache.Set] the result.
var ErrExpired = errors.New("cache entry expired")

// DefaultMemoryEntries bounds the in-process layer of a [Cache].
const DefaultMemoryEntries = 512

type memEntry struct {
	data   []byte
	stored time.Time
}

// Cache stores JSON-encoded values on disk, one file per key, with a bounded
// in-memory LRU in front of the directory.
//
// File names are the SHA-256 of the (prefixed) key, so any string is a valid
// key. Entries expire by modification time; a TTL of 0 never expires.
// Writes go through a temp file and rename, so concurrent processes and
// goroutines sharing a directory never observe a torn entry.
//
// Use [Cache.Namespace] to scope keys per data source:
//
//	pypi := cache.Namespace("pypi:")
//	pypi.Set("requests", info) // stored as "pypi:requests"
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
	mem    *lru.Cache[string, memEntry]
}

// DefaultDir is $XDG_CACHE_HOME/depman, or ~/.cache/depman.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "depman"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "depman"), nil
}

// NewCache opens (creating if needed) a cache rooted at dir. An empty dir
// selects [DefaultDir].
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	mem, err := lru.New[string, memEntry](DefaultMemoryEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, mem: mem}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime. Zero means entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get looks up key and unmarshals the stored value into v.
//
//   - (true, nil): hit; v is populated.
//   - (false, nil): miss; v is unchanged.
//   - (false, ErrExpired): the entry is stale; v is unchanged.
//   - (false, err): I/O or decode failure.
func (c *Cache) Get(key string, v any) (bool, error) {
	full := c.prefix + key

	if e, ok := c.mem.Get(full); ok {
		if c.expired(e.stored) {
			c.mem.Remove(full)
			return false, ErrExpired
		}
		return true, json.Unmarshal(e.data, v)
	}

	path := c.keyPath(full)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.expired(info.ModTime()) {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	c.mem.Add(full, memEntry{data: data, stored: info.ModTime()})
	return true, nil
}

// Set stores v under key, replacing any existing entry and restarting its
// TTL. It returns the encoded size in bytes.
func (c *Cache) Set(key string, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	full := c.prefix + key
	if err := writeAtomic(c.dir, c.keyPath(full), data); err != nil {
		return 0, err
	}
	c.mem.Add(full, memEntry{data: data, stored: time.Now()})
	return len(data), nil
}

// Namespace returns a view of the cache whose keys are prefixed with
// prefix. Views share the directory, TTL and memory layer; prefixes nest.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
		mem:    c.mem,
	}
}

// Clear removes every entry in the directory, across all namespaces, and
// returns how many files were deleted.
func (c *Cache) Clear() (int, error) {
	c.mem.Purge()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return n, err
		}
		n++
	}
	return n, nil
}

func (c *Cache) expired(t time.Time) bool {
	return c.ttl > 0 && time.Since(t) > c.ttl
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
