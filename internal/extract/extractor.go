package extract

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
)

// Extractor turns UTF-8 HTML into a Document. pageURL may be nil.
type Extractor interface {
	Extract(input []byte, pageURL *url.URL) Document
}

// HeuristicExtractor uses FromHTML.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input []byte, _ *url.URL) Document {
	return FromHTML(input)
}

// ReadabilityExtractor runs Mozilla's Readability algorithm
// (github.com/go-shiori/go-readability) and falls back to Fallback when it
// fails or finds no text.
type ReadabilityExtractor struct {
	Fallback Extractor
}

func (r ReadabilityExtractor) Extract(input []byte, pageURL *url.URL) Document {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(input), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return Document{Title: strings.TrimSpace(article.Title), Text: tidy(article.TextContent), Method: "readability"}
	}
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL.String()).Msg("readability failed; using fallback extractor")
	}
	fb := r.Fallback
	if fb == nil {
		fb = HeuristicExtractor{}
	}
	return fb.Extract(input, pageURL)
}
