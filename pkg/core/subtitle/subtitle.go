// Package subtitle defines the subtitles providers return and the content
// checks shared by all of them.
package subtitle

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/video"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

// Key identifies a subtitle across providers.
type Key struct {
	Provider string
	ID       string
}

func (k Key) String() string { return k.Provider + ":" + k.ID }

// ParseKey parses the "provider:id" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	provider, id, ok := strings.Cut(s, ":")
	if !ok || provider == "" || id == "" {
		return Key{}, fmt.Errorf("invalid subtitle key %q (want provider:id)", s)
	}
	return Key{Provider: provider, ID: id}, nil
}

// Subtitle is a candidate returned by a provider. Matches must be a pure
// function of the subtitle and the video: no network access, no mutation.
type Subtitle interface {
	Key() Key
	Info() *Base
	IsValid() bool
	Matches(v video.Video) matches.Set
}

// Base carries the attributes every provider subtitle shares. Provider
// subtitle types embed it and add their own metadata and Matches.
type Base struct {
	Provider        string
	ID              string
	Language        language.Tag
	HearingImpaired bool
	ForeignOnly     bool
	PageLink        string
	// Encoding is an IANA/WHATWG name; empty means detect.
	Encoding  string
	FrameRate float64
	// Content stays nil until downloaded.
	Content []byte
}

func (b *Base) Key() Key { return Key{Provider: b.Provider, ID: b.ID} }

func (b *Base) Info() *Base { return b }

func (b *Base) String() string {
	return fmt.Sprintf("<%s [%s]>", b.Key(), b.Language)
}

// Text decodes Content to UTF-8.
func (b *Base) Text() (string, error) {
	if len(b.Content) == 0 {
		return "", nil
	}
	enc, err := b.encoding()
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), b.Content)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", b.Key(), err)
	}
	return string(out), nil
}

func (b *Base) encoding() (encoding.Encoding, error) {
	if b.Encoding != "" {
		enc, err := htmlindex.Get(b.Encoding)
		if err != nil {
			return nil, fmt.Errorf("subtitle %s: unknown encoding %q: %w", b.Key(), b.Encoding, err)
		}
		return enc, nil
	}
	if utf8.Valid(b.Content) {
		return unicode.UTF8, nil
	}
	return charmap.Windows1252, nil
}

// IsValid reports whether Content is present and parses as a known subtitle
// format.
func (b *Base) IsValid() bool {
	if len(b.Content) == 0 {
		return false
	}
	text, err := b.Text()
	if err != nil {
		return false
	}
	return DetectFormat(text) != ""
}

var (
	srtCue      = regexp.MustCompile(`(?m)^\s*\d+\s*\r?\n\s*\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}`)
	microDVDCue = regexp.MustCompile(`(?m)^\{\d+\}\{\d*\}`)
)

// DetectFormat returns "srt", "ass", "vtt", "sub" or "smi", or "" when text is
// not a recognised subtitle.
func DetectFormat(text string) string {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "WEBVTT"):
		return "vtt"
	case strings.Contains(trimmed, "[Script Info]"):
		return "ass"
	case srtCue.MatchString(trimmed):
		return "srt"
	case microDVDCue.MatchString(trimmed):
		return "sub"
	case strings.Contains(strings.ToUpper(trimmed[:min(len(trimmed), 512)]), "<SAMI>"):
		return "smi"
	}
	return ""
}
