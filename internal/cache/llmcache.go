package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"
)

// LLMCache stores model replies keyed by KeyFrom(model, prompt).
type LLMCache struct {
	Dir         string
	StrictPerms bool
}

// KeyFrom builds a cache key from model and prompt.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *LLMCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present. A miss is not an error.
func (c *LLMCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, errNoDir
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	// mtime doubles as last-access time for Purge
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes data under key.
func (c *LLMCache) Save(_ context.Context, key string, data []byte) error {
	if c == nil {
		return errNoDir
	}
	if err := ensureDir(c.Dir, c.StrictPerms); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, fileMode(c.StrictPerms))
}
