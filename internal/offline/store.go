// Package offline keeps a versioned, cache-first copy of the app's static
// assets so pages keep working when the origin handler fails, and renders
// the browser service worker that does the same on the client.
package offline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"github.com/spf13/afero"
)

// ErrMiss is returned when a cache has no entry for a key.
var ErrMiss = errors.New("offline cache miss")

// Entry is one cached response.
type Entry struct {
	Key         string    `json:"key"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
	Body        []byte    `json:"-"`
}

// Store holds named caches as directories on an afero filesystem.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a store rooted at root on fs.
func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

// Open returns the cache called name, creating it if needed.
func (s *Store) Open(name string) (*Cache, error) {
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid cache name %q", name)
	}
	dir := path.Join(s.root, name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache %s: %w", name, err)
	}
	return &Cache{fs: s.fs, dir: dir, name: name}, nil
}

// Names lists the caches in the store.
func (s *Store) Names() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, fi := range infos {
		if fi.IsDir() {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the cache called name with all its entries.
func (s *Store) Delete(name string) error {
	return s.fs.RemoveAll(path.Join(s.root, name))
}

// Cache is one named set of entries keyed by request path.
type Cache struct {
	fs   afero.Fs
	dir  string
	name string
}

// Name returns the cache name.
func (c *Cache) Name() string { return c.name }

func (c *Cache) files(key string) (meta, body string) {
	sum := sha256.Sum256([]byte(key))
	base := path.Join(c.dir, hex.EncodeToString(sum[:16]))
	return base + ".json", base + ".body"
}

// Put stores e under e.Key, replacing any earlier entry.
func (c *Cache) Put(e Entry) error {
	metaFile, bodyFile := c.files(e.Key)
	if err := afero.WriteFile(c.fs, bodyFile, e.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write cache body: %w", err)
	}
	meta, err := json.Marshal(e)
	if err != nil {
		return err
	}
	// the metadata file is written last; an entry without it is a miss
	return afero.WriteFile(c.fs, metaFile, meta, 0o644)
}

// Match returns the entry stored for key.
func (c *Cache) Match(key string) (*Entry, error) {
	metaFile, bodyFile := c.files(key)
	raw, err := afero.ReadFile(c.fs, metaFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", key, err)
	}
	if e.Body, err = afero.ReadFile(c.fs, bodyFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return &e, nil
}

// Remove deletes the entry for key. Removing a missing key is not an error.
func (c *Cache) Remove(key string) error {
	metaFile, bodyFile := c.files(key)
	for _, f := range []string{metaFile, bodyFile} {
		if err := c.fs.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
