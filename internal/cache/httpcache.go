package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPEntry is the metadata kept next to a cached body for conditional
// revalidation.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// HTTPCache stores GET responses as <sha256(url)>.meta.json plus
// <sha256(url)>.body under Dir. There is no size-based eviction; see Purge.
type HTTPCache struct {
	Dir         string
	StrictPerms bool
}

func (c *HTTPCache) ready() error {
	if c == nil {
		return errNoDir
	}
	return ensureDir(c.Dir, c.StrictPerms)
}

func httpKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *HTTPCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *HTTPCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns the stored metadata for url.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(httpKey(url)))
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the stored body for url.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(httpKey(url)))
}

// Save writes body first and then swaps in the metadata with a rename, so a
// reader never sees metadata without its body.
func (c *HTTPCache) Save(_ context.Context, url, contentType, etag, lastModified string, body []byte) error {
	if err := c.ready(); err != nil {
		return err
	}
	key := httpKey(url)
	mode := fileMode(c.StrictPerms)
	if err := os.WriteFile(c.bodyPath(key), body, mode); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(key) + ".tmp"
	if err := os.WriteFile(tmp, meta, mode); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(key))
}
