package cache

import (
	"errors"
	"os"
	"strings"
)

// errNoDir is returned by cache operations on an unconfigured cache.
var errNoDir = errors.New("cache dir not configured")

func dirMode(strict bool) os.FileMode {
	if strict {
		return 0o700
	}
	return 0o755
}

func fileMode(strict bool) os.FileMode {
	if strict {
		return 0o600
	}
	return 0o644
}

// ensureDir creates dir and, with strict set, tightens an existing
// directory to 0700.
func ensureDir(dir string, strict bool) error {
	if strings.TrimSpace(dir) == "" {
		return errNoDir
	}
	if err := os.MkdirAll(dir, dirMode(strict)); err != nil {
		return err
	}
	if strict {
		if info, err := os.Stat(dir); err == nil && info.Mode().Perm() != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}
