package app

import "time"

// Defaults shared by the flag set and the config file overlay. A flag still at
// its default counts as unset when a config file is applied.
const (
	DefaultOutput  = "-"
	DefaultFormat  = "markdown"
	DefaultTopK    = 10
	DefaultWorkers = 4
	DefaultScorer  = "lexicon"
	DefaultRetries = 2
	DefaultTimeout = 15 * time.Second
)

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs
	Files []string
	URLs  []string

	// Output
	OutputPath string
	Format     string
	Title      string
	IncludeAll bool

	// Analysis
	TopK        int
	Workers     int
	Encoding    string
	Scorer      string
	LexiconPath string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Cache. An empty CacheDir disables both caches.
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Fetch
	FetchTimeout time.Duration
	FetchRetries int
	UserAgent    string

	Verbose bool
}

// ApplyDefaults fills every zero field that has a default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutput
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if cfg.TopK == 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Scorer == "" {
		cfg.Scorer = DefaultScorer
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultTimeout
	}
	if cfg.FetchRetries == 0 {
		cfg.FetchRetries = DefaultRetries
	}
}
