package decode

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
)

// Detector guesses the character encoding of raw bytes. Implementations
// return ok=false when they have no confident guess.
type Detector interface {
	Detect(b []byte) (name string, confidence int, ok bool)
}

// ChardetDetector runs the ICU-derived statistical detection from
// github.com/saintfish/chardet over the whole input. Of the ranked
// candidates it reports the first one under which the input decodes
// cleanly.
type ChardetDetector struct{}

func (ChardetDetector) Detect(b []byte) (string, int, bool) {
	if len(b) == 0 {
		return "", 0, false
	}
	results, err := chardet.NewTextDetector().DetectAll(b)
	if err != nil {
		return "", 0, false
	}
	for _, res := range results {
		if res.Charset == "" {
			continue
		}
		if _, err := Strict(res.Charset, b); err == nil {
			return res.Charset, res.Confidence, true
		}
	}
	return "", 0, false
}

// UTF8Preferred reports utf-8 for input that already is valid UTF-8. For
// anything else it uses the guess of Next unless that guess is UTF-8 or
// missing, in which case it reports LegacyEncoding.
type UTF8Preferred struct {
	Next Detector
}

func (d UTF8Preferred) Detect(b []byte) (string, int, bool) {
	if len(b) == 0 {
		return "", 0, false
	}
	if utf8.Valid(b) {
		return "utf-8", 100, true
	}
	if d.Next != nil {
		if name, conf, ok := d.Next.Detect(b); ok && !isUTF8Name(name) {
			return name, conf, true
		}
	}
	return LegacyEncoding, 0, true
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

// Static always reports Name. An empty Name means no guess.
type Static struct {
	Name string
}

func (s Static) Detect([]byte) (string, int, bool) {
	if s.Name == "" {
		return "", 0, false
	}
	return s.Name, 100, true
}
