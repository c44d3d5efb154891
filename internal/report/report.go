package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperifyio/textpulse/internal/aggregate"
	"github.com/hyperifyio/textpulse/internal/pipeline"
)

// Entry is one analyzed input. Err is set when the input could not be
// analyzed, in which case Result is the zero value.
type Entry struct {
	Name   string
	Result pipeline.Result
	Err    error
}

// Failed reports whether the entry carries an error.
func (e Entry) Failed() bool { return e.Err != nil }

// Options tunes the Markdown rendering.
type Options struct {
	Title string
	// IncludeAll appends the full frequency map after the top list.
	IncludeAll bool
}

const defaultTitle = "Text analysis report"

// Markdown writes entries as a Markdown document.
func Markdown(w io.Writer, entries []Entry, opts Options) error {
	var sb strings.Builder
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = defaultTitle
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
		}
	}
	fmt.Fprintf(&sb, "Inputs: %d, analyzed: %d, failed: %d\n", len(entries), len(entries)-failed, failed)
	for _, e := range entries {
		sb.WriteString("\n")
		writeEntry(&sb, e, opts)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeEntry(sb *strings.Builder, e Entry, opts Options) {
	fmt.Fprintf(sb, "## %s\n\n", e.Name)
	if e.Failed() {
		fmt.Fprintf(sb, "%s: %v\n", FailureMessage(e.Name), e.Err)
		return
	}
	r := e.Result
	fmt.Fprintf(sb, "- Sentiment: %s (polarity %.3f)\n", r.Sentiment, r.Polarity)
	fmt.Fprintf(sb, "- Tokens: %d total, %d distinct\n", r.TokenCount, r.Frequencies.Len())
	if len(r.Top) == 0 {
		sb.WriteString("\nNo words found.\n")
		return
	}
	sb.WriteString("\n### Top words\n\n")
	writeTable(sb, r.Top)
	if opts.IncludeAll {
		sb.WriteString("\n### All words\n\n")
		writeTable(sb, r.Frequencies.Entries())
	}
}

func writeTable(sb *strings.Builder, rows []aggregate.Entry) {
	sb.WriteString("| Word | Count |\n|------|------:|\n")
	for _, row := range rows {
		fmt.Fprintf(sb, "| %s | %d |\n", escapeCell(row.Token), row.Count)
	}
}

// escapeCell keeps a pipe inside a token from splitting the row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// FailureMessage is the user-facing text for an input that produced no
// analysis.
func FailureMessage(name string) string {
	return "could not retrieve content from " + name
}

type jsonEntry struct {
	Name       string            `json:"name"`
	Error      string            `json:"error,omitempty"`
	Sentiment  string            `json:"sentiment,omitempty"`
	Polarity   float64           `json:"polarity"`
	TokenCount int               `json:"token_count"`
	Top        []aggregate.Entry `json:"top,omitempty"`
	// Frequencies keeps first-seen order, which a JSON object would lose.
	Frequencies []aggregate.Entry `json:"frequencies,omitempty"`
}

// JSON writes entries as an indented JSON array.
func JSON(w io.Writer, entries []Entry) error {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		je := jsonEntry{Name: e.Name}
		if e.Failed() {
			je.Error = FailureMessage(e.Name) + ": " + e.Err.Error()
		} else {
			je.Sentiment = e.Result.Sentiment.String()
			je.Polarity = e.Result.Polarity
			je.TokenCount = e.Result.TokenCount
			je.Top = e.Result.Top
			je.Frequencies = e.Result.Frequencies.Entries()
		}
		out = append(out, je)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
