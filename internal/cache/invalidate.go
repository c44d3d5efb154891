package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Clear removes dir and everything in it, then recreates it empty.
func Clear(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Purge removes entries older than maxAge below dir. HTTP entries age by the
// SavedAt stamp in their metadata, LLM entries by file mtime. A missing dir
// is not an error.
func Purge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case strings.HasSuffix(name, ".meta.json"):
			b, err := os.ReadFile(path)
			if err != nil {
				return nil // skip unreadable
			}
			var e HTTPEntry
			if err := json.Unmarshal(b, &e); err != nil {
				return nil // skip malformed
			}
			if now.Sub(e.SavedAt) <= maxAge {
				return nil
			}
			removed++
			_ = os.Remove(path)
			_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
		case strings.HasSuffix(name, ".json"):
			info, err := d.Info()
			if err != nil || now.Sub(info.ModTime().UTC()) <= maxAge {
				return nil
			}
			removed++
			_ = os.Remove(path)
		}
		return nil
	})
	return removed, err
}
