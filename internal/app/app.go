package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/textpulse/internal/article"
	"github.com/hyperifyio/textpulse/internal/cache"
	"github.com/hyperifyio/textpulse/internal/decode"
	"github.com/hyperifyio/textpulse/internal/extract"
	"github.com/hyperifyio/textpulse/internal/fetch"
	"github.com/hyperifyio/textpulse/internal/pipeline"
	"github.com/hyperifyio/textpulse/internal/report"
	"github.com/hyperifyio/textpulse/internal/sentiment"
)

// ErrNoInputs is returned when neither files nor URLs were given.
var ErrNoInputs = errors.New("no inputs: give at least one -file or -url")

// ErrAllInputsFailed is returned by Run after the report was written when
// not a single input could be analyzed.
var ErrAllInputsFailed = errors.New("no input could be analyzed")

type App struct {
	cfg        Config
	analyzer   *pipeline.Analyzer
	httpClient *http.Client
	stdout     io.Writer
}

// source is one input as named on the command line.
type source struct {
	path string
	url  string
}

func (s source) name() string {
	if s.path != "" {
		return s.path
	}
	return s.url
}

func New(ctx context.Context, cfg Config) (*App, error) {
	ApplyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	httpClient := newHTTPClient(cfg.Workers)

	var (
		httpCache *cache.HTTPCache
		llmCache  *cache.LLMCache
	)
	if dir := strings.TrimSpace(cfg.CacheDir); dir != "" {
		if cfg.CacheClear {
			if err := cache.Clear(dir); err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.Purge(dir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Dur("maxAge", cfg.CacheMaxAge).Msg("purged stale cache entries")
			}
		}
		httpCache = &cache.HTTPCache{Dir: filepath.Join(dir, "http"), StrictPerms: cfg.CacheStrictPerms}
		llmCache = &cache.LLMCache{Dir: filepath.Join(dir, "llm"), StrictPerms: cfg.CacheStrictPerms}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = article.DefaultUserAgent
	}
	fetcher := &article.HTTPFetcher{
		Client: &fetch.Client{
			HTTPClient:        httpClient,
			UserAgent:         ua,
			MaxAttempts:       cfg.FetchRetries,
			PerRequestTimeout: cfg.FetchTimeout,
			Cache:             httpCache,
			RedirectMaxHops:   5,
			MaxConcurrent:     cfg.Workers,
		},
		Extractor: extract.ReadabilityExtractor{Fallback: extract.HeuristicExtractor{}},
	}

	decoder := decode.NewDecoder()
	if enc := strings.TrimSpace(cfg.Encoding); enc != "" {
		decoder = &decode.Decoder{Detector: decode.Static{Name: enc}}
	}

	lex := sentiment.DefaultLexicon()
	if cfg.LexiconPath != "" {
		l, err := sentiment.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lex = l
	}
	var scorer sentiment.Scorer = sentiment.NewLexiconScorer(lex)
	if cfg.Scorer == "llm" {
		scorer = newLLMScorer(ctx, cfg, httpClient, llmCache, scorer)
	}

	return &App{
		cfg:        cfg,
		httpClient: httpClient,
		stdout:     os.Stdout,
		analyzer: &pipeline.Analyzer{
			Decoder:    decoder,
			Fetcher:    fetcher,
			Classifier: sentiment.NewClassifier(scorer),
			TopK:       cfg.TopK,
		},
	}, nil
}

func newLLMScorer(ctx context.Context, cfg Config, hc *http.Client, c *cache.LLMCache, fallback sentiment.Scorer) *sentiment.LLMScorer {
	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	transportCfg.HTTPClient = hc
	client := openai.NewClientWithConfig(transportCfg)

	// Preflight is best-effort; a dead endpoint only means every text falls
	// back to the lexicon.
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := client.ListModels(pctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
	} else {
		log.Debug().Int("count", len(models.Models)).Msg("LLM models available")
	}

	return &sentiment.LLMScorer{
		Client:   client,
		Model:    cfg.LLMModel,
		Cache:    c,
		Fallback: fallback,
	}
}

// Close drops the idle keep-alive connections of the shared HTTP client.
func (a *App) Close() {
	if a == nil || a.httpClient == nil {
		return
	}
	a.httpClient.CloseIdleConnections()
}

// Run analyzes every input on a bounded worker pool and writes the report.
// A failed input is reported in place and does not stop the others.
func (a *App) Run(ctx context.Context) error {
	sources := a.sources()
	if len(sources) == 0 {
		return ErrNoInputs
	}
	entries := make([]report.Entry, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			entries[i] = a.analyze(gctx, src)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
		}
	}
	if err := a.writeReport(entries); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Int("inputs", len(entries)).Int("failed", failed).Str("out", a.cfg.OutputPath).Msg("analysis done")
	if failed == len(entries) {
		return ErrAllInputsFailed
	}
	return nil
}

func (a *App) sources() []source {
	var out []source
	for _, p := range a.cfg.Files {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, source{path: p})
		}
	}
	for _, u := range a.cfg.URLs {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, source{url: u})
		}
	}
	return out
}

func (a *App) analyze(ctx context.Context, src source) report.Entry {
	name := src.name()
	in := pipeline.FromURL(src.url)
	if src.path != "" {
		b, err := os.ReadFile(src.path)
		if err != nil {
			log.Warn().Err(err).Str("input", name).Msg(report.FailureMessage(name))
			return report.Entry{Name: name, Err: fmt.Errorf("read file: %w", err)}
		}
		in = pipeline.FromBytes(b)
	}
	res, err := a.analyzer.Process(ctx, in)
	if err != nil {
		log.Warn().Err(err).Str("input", name).Msg(report.FailureMessage(name))
		return report.Entry{Name: name, Err: err}
	}
	if src.path != "" {
		res.Source = src.path
	}
	log.Info().Str("input", name).Int("tokens", res.TokenCount).Str("label", res.Sentiment.String()).Msg("analyzed")
	return report.Entry{Name: name, Result: res}
}

func (a *App) writeReport(entries []report.Entry) error {
	opts := report.Options{Title: a.cfg.Title, IncludeAll: a.cfg.IncludeAll}
	if a.cfg.Format == "pdf" {
		return report.WritePDF(a.cfg.OutputPath, entries, opts)
	}
	w := a.stdout
	if out := a.cfg.OutputPath; out != "" && out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if a.cfg.Format == "json" {
		return report.JSON(w, entries)
	}
	return report.Markdown(w, entries, opts)
}
