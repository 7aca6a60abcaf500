// Package video defines the videos subtitles are searched for.
package video

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/angelospk/subfinder/pkg/core/languages"
	"golang.org/x/text/language"
)

// Kind discriminates the Video variants.
type Kind int

const (
	KindMovie Kind = iota + 1
	KindEpisode
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindEpisode:
		return "episode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Video is either a *Movie or an *Episode.
type Video interface {
	Kind() Kind
	// Info returns the attributes shared by every variant.
	Info() *Base
	fmt.Stringer
}

// ExistingSubtitle is a subtitle already known for a video, external file
// or embedded stream.
type ExistingSubtitle struct {
	Language language.Tag
	Path     string
	Embedded bool
}

// Base holds the attributes common to movies and episodes. Zero values mean
// unknown.
type Base struct {
	Name         string
	Source       string
	ReleaseGroup string
	Resolution   string
	VideoCodec   string
	AudioCodec   string
	ImdbID       string
	TmdbID       int
	Size         int64
	Year         int
	Country      string
	FrameRate    float64
	// Modified is the file modification time, used for age checks.
	Modified time.Time
	// Hashes maps a hash algorithm name to the digest computed by a refiner.
	Hashes map[string]string

	subtitles []ExistingSubtitle
}

// Info lets embedding types satisfy Video.
func (b *Base) Info() *Base { return b }

// Subtitles returns the known subtitles in insertion order.
func (b *Base) Subtitles() []ExistingSubtitle {
	out := make([]ExistingSubtitle, len(b.subtitles))
	copy(out, b.subtitles)
	return out
}

// AddSubtitles appends subtitles. The list never shrinks.
func (b *Base) AddSubtitles(subs ...ExistingSubtitle) {
	b.subtitles = append(b.subtitles, subs...)
}

// SubtitleLanguages returns the languages of the known subtitles.
func (b *Base) SubtitleLanguages() languages.Set {
	s := languages.NewSet()
	for _, sub := range b.subtitles {
		s.Add(sub.Language)
	}
	return s
}

// SetHash records a digest for the named algorithm.
func (b *Base) SetHash(name, digest string) {
	if b.Hashes == nil {
		b.Hashes = make(map[string]string)
	}
	b.Hashes[name] = digest
}

// Hash returns the digest for the named algorithm.
func (b *Base) Hash(name string) (string, bool) {
	h, ok := b.Hashes[name]
	return h, ok && h != ""
}

// Movie is a feature film.
type Movie struct {
	Base
	Title             string
	AlternativeTitles []string
}

func (m *Movie) Kind() Kind { return KindMovie }

func (m *Movie) String() string {
	if m.Year != 0 {
		return fmt.Sprintf("%s (%d)", m.Title, m.Year)
	}
	if m.Title != "" {
		return m.Title
	}
	return filepath.Base(m.Name)
}

// Episode is a single episode of a series.
type Episode struct {
	Base
	Series            string
	Season            int
	Episode           int
	Title             string
	SeriesImdbID      string
	SeriesTvdbID      int
	SeriesTmdbID      int
	TvdbID            int
	AlternativeSeries []string
	// OriginalSeries is set when the series is the first one to use its name,
	// so a release without a year can still match it.
	OriginalSeries   bool
	StreamingService string
}

func (e *Episode) Kind() Kind { return KindEpisode }

func (e *Episode) String() string {
	series := e.Series
	if e.Year != 0 && !e.OriginalSeries {
		series = fmt.Sprintf("%s (%d)", e.Series, e.Year)
	}
	if series == "" {
		return filepath.Base(e.Name)
	}
	return fmt.Sprintf("%s s%02de%02d", series, e.Season, e.Episode)
}

var (
	_ Video = (*Movie)(nil)
	_ Video = (*Episode)(nil)
)
