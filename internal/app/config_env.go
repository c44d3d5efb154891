package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overwrites cfg with every environment variable that is
// set. It runs after the config file overlay so env beats file while flags
// parsed later still win.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.CacheDir, "CACHE_DIR")
	setString(&cfg.Scorer, "TEXTPULSE_SCORER")
	setString(&cfg.Format, "TEXTPULSE_FORMAT")

	if n, ok := envInt("TEXTPULSE_WORKERS"); ok {
		cfg.Workers = n
	}
	if n, ok := envInt("TEXTPULSE_TOP"); ok {
		cfg.TopK = n
	}
	if d, ok := envDuration("CACHE_MAX_AGE"); ok {
		cfg.CacheMaxAge = d
	}
	if v, ok := envBool("VERBOSE"); ok {
		cfg.Verbose = v
	}
	if v, ok := envBool("CACHE_CLEAR"); ok {
		cfg.CacheClear = v
	}
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
