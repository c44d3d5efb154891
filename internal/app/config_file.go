package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML/JSON configuration file schema.
type FileConfig struct {
	Files  []string `yaml:"files" json:"files"`
	URLs   []string `yaml:"urls" json:"urls"`
	Output string   `yaml:"output" json:"output"`
	Format string   `yaml:"format" json:"format"`
	Title  string   `yaml:"title" json:"title"`
	All    bool     `yaml:"all" json:"all"`

	Top      int    `yaml:"top" json:"top"`
	Workers  int    `yaml:"workers" json:"workers"`
	Encoding string `yaml:"encoding" json:"encoding"`
	Scorer   string `yaml:"scorer" json:"scorer"`
	Lexicon  string `yaml:"lexicon" json:"lexicon"`
	Verbose  bool   `yaml:"verbose" json:"verbose"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Fetch struct {
		Timeout Duration `yaml:"timeout" json:"timeout"`
		Retries int      `yaml:"retries" json:"retries"`
		UA      string   `yaml:"ua" json:"ua"`
	} `yaml:"fetch" json:"fetch"`
}

// Duration accepts "90s"-style strings in config files.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.set(node.Value)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig. Unknown extensions are
// tried as YAML first, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills fields of cfg that are unset or still at their flag
// default from fc.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if len(cfg.Files) == 0 && len(fc.Files) > 0 {
		cfg.Files = append([]string{}, fc.Files...)
	}
	if len(cfg.URLs) == 0 && len(fc.URLs) > 0 {
		cfg.URLs = append([]string{}, fc.URLs...)
	}
	if (cfg.OutputPath == "" || cfg.OutputPath == DefaultOutput) && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if (cfg.Format == "" || cfg.Format == DefaultFormat) && fc.Format != "" {
		cfg.Format = fc.Format
	}
	if cfg.Title == "" && fc.Title != "" {
		cfg.Title = fc.Title
	}
	if !cfg.IncludeAll && fc.All {
		cfg.IncludeAll = true
	}

	if (cfg.TopK == 0 || cfg.TopK == DefaultTopK) && fc.Top > 0 {
		cfg.TopK = fc.Top
	}
	if (cfg.Workers == 0 || cfg.Workers == DefaultWorkers) && fc.Workers > 0 {
		cfg.Workers = fc.Workers
	}
	if cfg.Encoding == "" && fc.Encoding != "" {
		cfg.Encoding = fc.Encoding
	}
	if (cfg.Scorer == "" || cfg.Scorer == DefaultScorer) && fc.Scorer != "" {
		cfg.Scorer = fc.Scorer
	}
	if cfg.LexiconPath == "" && fc.Lexicon != "" {
		cfg.LexiconPath = fc.Lexicon
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if (cfg.FetchTimeout == 0 || cfg.FetchTimeout == DefaultTimeout) && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if (cfg.FetchRetries == 0 || cfg.FetchRetries == DefaultRetries) && fc.Fetch.Retries > 0 {
		cfg.FetchRetries = fc.Fetch.Retries
	}
	if cfg.UserAgent == "" && fc.Fetch.UA != "" {
		cfg.UserAgent = fc.Fetch.UA
	}
}

// ValidateConfig rejects configurations Run cannot act on.
func ValidateConfig(cfg Config) error {
	if len(cfg.Files) == 0 && len(cfg.URLs) == 0 {
		return ErrNoInputs
	}
	if cfg.TopK < 0 || cfg.Workers < 0 || cfg.FetchRetries < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	switch cfg.Format {
	case "", "markdown", "json":
	case "pdf":
		if out := strings.TrimSpace(cfg.OutputPath); out == "" || out == "-" {
			return errors.New("config: pdf format requires an output file")
		}
	default:
		return fmt.Errorf("config: unknown format %q (want markdown, json or pdf)", cfg.Format)
	}
	switch cfg.Scorer {
	case "", "lexicon":
	case "llm":
		if strings.TrimSpace(cfg.LLMModel) == "" {
			return errors.New("config: llm.model is required for the llm scorer (or set LLM_MODEL)")
		}
	default:
		return fmt.Errorf("config: unknown scorer %q (want lexicon or llm)", cfg.Scorer)
	}
	return nil
}
