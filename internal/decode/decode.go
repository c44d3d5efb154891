package decode

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// FallbackEncoding is used when the detector has no guess.
const FallbackEncoding = "utf-8"

// LegacyEncoding is assumed for bytes that are not UTF-8 when no detector
// names anything better. Every byte sequence decodes under it.
const LegacyEncoding = "windows-1252"

var (
	errUnknownEncoding = errors.New("unknown encoding")
	errInvalidBytes    = errors.New("invalid byte sequence")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// aliases maps detector charset names that the WHATWG and IANA indexes do
// not recognise to names they do.
var aliases = map[string]string{
	"gb-18030":     "gb18030",
	"iso-8859-8-i": "iso-8859-8",
}

// Decoder turns raw bytes into UTF-8 text. It never fails: bytes that cannot
// be decoded under the detected encoding are re-decoded as UTF-8 with U+FFFD
// substituted for invalid sequences.
type Decoder struct {
	Detector Detector
}

// NewDecoder returns a Decoder that keeps valid UTF-8 as-is and runs
// statistical detection on anything else.
func NewDecoder() *Decoder {
	return &Decoder{Detector: UTF8Preferred{Next: ChardetDetector{}}}
}

// Decode returns the text of b. Empty input yields "".
func (d *Decoder) Decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	name := FallbackEncoding
	if d != nil && d.Detector != nil {
		if guess, confidence, ok := d.Detector.Detect(b); ok {
			name = guess
			log.Debug().Str("encoding", guess).Int("confidence", confidence).Msg("detected encoding")
		}
	}
	text, err := Strict(name, b)
	if err == nil {
		return text
	}
	log.Warn().Err(err).Str("encoding", name).Msg("strict decode failed; decoding as utf-8 with replacement")
	return Replace(b)
}

// Strict decodes b with the named encoding and fails on unknown names or on
// any byte sequence the encoding cannot map.
func Strict(name string, b []byte) (string, error) {
	enc, err := lookup(name)
	if err != nil {
		return "", err
	}
	if isUTF8(enc, name) {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%s: %w", name, errInvalidBytes)
		}
		return string(bytes.TrimPrefix(b, utf8BOM)), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	// x/text decoders substitute U+FFFD rather than failing.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("%s: %w", name, errInvalidBytes)
	}
	return string(bytes.TrimPrefix(out, utf8BOM)), nil
}

// Replace decodes b as UTF-8, replacing every invalid sequence with U+FFFD.
// A leading byte order mark is dropped.
func Replace(b []byte) string {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(b)
	if err != nil {
		// The UTF-8 decoder only substitutes; this is unreachable in practice.
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

func lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	// neither index knows UTF-32; without a BOM it is big-endian
	switch key {
	case "utf-32", "utf-32be", "utf32":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), nil
	case "utf-32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), nil
	}
	if enc, err := htmlindex.Get(key); err == nil && enc != nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%q: %w", name, errUnknownEncoding)
	}
	return enc, nil
}

func isUTF8(enc encoding.Encoding, name string) bool {
	return enc == unicode.UTF8 || isUTF8Name(name)
}
