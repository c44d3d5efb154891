package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/textpulse/internal/app"
)

// Exit codes.
const (
	exitOK          = 0
	exitAllFailed   = 1
	exitConfigError = 2
)

// listFlag collects a flag that may be repeated and may hold comma lists.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("could not read .env")
	}

	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(exitOK)
	}
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(exitConfigError)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}

// parseConfig layers configuration with precedence flags > env > file >
// defaults.
func parseConfig(args []string, stderr io.Writer) (app.Config, error) {
	fs := flag.NewFlagSet("textpulse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		flags      app.Config
		files      listFlag
		urls       listFlag
		configPath string
	)
	fs.Var(&files, "file", "Text file to analyze (repeatable, comma-separated)")
	fs.Var(&urls, "url", "Article URL to analyze (repeatable, comma-separated)")
	fs.StringVar(&configPath, "config", os.Getenv("TEXTPULSE_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&flags.OutputPath, "output", app.DefaultOutput, "Report destination; - writes to stdout")
	fs.StringVar(&flags.Format, "format", app.DefaultFormat, "Report format: markdown, json or pdf")
	fs.StringVar(&flags.Title, "title", "", "Report title")
	fs.BoolVar(&flags.IncludeAll, "all", false, "Include the full word frequency table")
	fs.IntVar(&flags.TopK, "top", app.DefaultTopK, "Number of most frequent words to list")
	fs.IntVar(&flags.Workers, "workers", app.DefaultWorkers, "Number of inputs analyzed in parallel")
	fs.StringVar(&flags.Encoding, "encoding", "", "Force the encoding of -file inputs instead of detecting it")
	fs.StringVar(&flags.Scorer, "scorer", app.DefaultScorer, "Sentiment scorer: lexicon or llm")
	fs.StringVar(&flags.LexiconPath, "lexicon", "", "Path to a YAML sentiment lexicon replacing the built-in one")
	fs.StringVar(&flags.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&flags.LLMModel, "llm.model", "", "Model name for the llm scorer")
	fs.StringVar(&flags.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	fs.StringVar(&flags.CacheDir, "cache.dir", "", "Cache directory for fetched pages and model replies; empty disables caching")
	fs.DurationVar(&flags.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this before the run; 0 disables")
	fs.BoolVar(&flags.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
	fs.BoolVar(&flags.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.DurationVar(&flags.FetchTimeout, "fetch.timeout", app.DefaultTimeout, "Per-request timeout for article downloads")
	fs.IntVar(&flags.FetchRetries, "fetch.retries", app.DefaultRetries, "Maximum attempts per URL on transient errors")
	fs.StringVar(&flags.UserAgent, "fetch.ua", "", "User-Agent for article downloads")
	fs.BoolVar(&flags.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	flags.Files = files
	flags.URLs = urls

	var cfg app.Config
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config %s: %w", configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	overlayFlags(&cfg, flags, set)
	// bare arguments are files too
	cfg.Files = append(cfg.Files, fs.Args()...)
	app.ApplyDefaults(&cfg)
	return cfg, app.ValidateConfig(cfg)
}

// overlayFlags copies the explicitly set flags onto cfg.
func overlayFlags(cfg *app.Config, f app.Config, set map[string]bool) {
	if set["file"] {
		cfg.Files = f.Files
	}
	if set["url"] {
		cfg.URLs = f.URLs
	}
	str := map[string][2]*string{
		"output":    {&cfg.OutputPath, &f.OutputPath},
		"format":    {&cfg.Format, &f.Format},
		"title":     {&cfg.Title, &f.Title},
		"encoding":  {&cfg.Encoding, &f.Encoding},
		"scorer":    {&cfg.Scorer, &f.Scorer},
		"lexicon":   {&cfg.LexiconPath, &f.LexiconPath},
		"llm.base":  {&cfg.LLMBaseURL, &f.LLMBaseURL},
		"llm.model": {&cfg.LLMModel, &f.LLMModel},
		"llm.key":   {&cfg.LLMAPIKey, &f.LLMAPIKey},
		"cache.dir": {&cfg.CacheDir, &f.CacheDir},
		"fetch.ua":  {&cfg.UserAgent, &f.UserAgent},
	}
	for name, p := range str {
		if set[name] {
			*p[0] = *p[1]
		}
	}
	ints := map[string][2]*int{
		"top":           {&cfg.TopK, &f.TopK},
		"workers":       {&cfg.Workers, &f.Workers},
		"fetch.retries": {&cfg.FetchRetries, &f.FetchRetries},
	}
	for name, p := range ints {
		if set[name] {
			*p[0] = *p[1]
		}
	}
	bools := map[string][2]*bool{
		"all":               {&cfg.IncludeAll, &f.IncludeAll},
		"cache.clear":       {&cfg.CacheClear, &f.CacheClear},
		"cache.strictPerms": {&cfg.CacheStrictPerms, &f.CacheStrictPerms},
		"v":                 {&cfg.Verbose, &f.Verbose},
	}
	for name, p := range bools {
		if set[name] {
			*p[0] = *p[1]
		}
	}
	if set["cache.maxAge"] {
		cfg.CacheMaxAge = f.CacheMaxAge
	}
	if set["fetch.timeout"] {
		cfg.FetchTimeout = f.FetchTimeout
	}
}

// run returns the process exit code. Setup failures such as an unreadable
// lexicon count as configuration errors.
func run(ctx context.Context, cfg app.Config) int {
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("init app")
		return exitConfigError
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
		return exitAllFailed
	}
	return exitOK
}
