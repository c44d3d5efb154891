package app

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// LoadEnvFiles reads dotenv files of KEY=VALUE lines into the process
// environment. Later files win, variables already set in the environment are
// kept, and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	preset := map[string]bool{}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 && kv[i+1:] != "" {
			preset[kv[:i]] = true
		}
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		vals, err := readEnvFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		for _, kv := range vals {
			if preset[kv[0]] {
				continue
			}
			if err := os.Setenv(kv[0], kv[1]); err != nil {
				return err
			}
		}
	}
	return nil
}

func readEnvFile(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out [][2]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		out = append(out, [2]string{key, val})
	}
	return out, scanner.Err()
}
