// Package matches computes the set of attributes on which a subtitle agrees
// with a video.
package matches

import (
	"sort"
	"strings"

	"github.com/angelospk/subfinder/pkg/core/video"
)

// Match names. They double as keys of the score weight tables.
const (
	Hash             = "hash"
	Title            = "title"
	Series           = "series"
	Season           = "season"
	Episode          = "episode"
	Year             = "year"
	Country          = "country"
	ReleaseGroup     = "release_group"
	StreamingService = "streaming_service"
	Resolution       = "resolution"
	Source           = "source"
	VideoCodec       = "video_codec"
	AudioCodec       = "audio_codec"
	FPS              = "fps"
	ImdbID           = "imdb_id"
	TmdbID           = "tmdb_id"
	TvdbID           = "tvdb_id"
	SeriesImdbID     = "series_imdb_id"
	SeriesTmdbID     = "series_tmdb_id"
	SeriesTvdbID     = "series_tvdb_id"
	HearingImpaired  = "hearing_impaired"
	ForeignOnly      = "foreign_only"
)

// Set is a set of match names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	s.Add(names...)
	return s
}

func (s Set) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every member of o to s and returns s.
func (s Set) Union(o Set) Set {
	for n := range o {
		s[n] = struct{}{}
	}
	return s
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	return out.Union(s)
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s Set) String() string { return "{" + strings.Join(s.Sorted(), ", ") + "}" }

// IDs are the external identifiers a provider may know for a subtitle.
type IDs struct {
	ImdbID       string
	TmdbID       int
	TvdbID       int
	SeriesImdbID string
	SeriesTmdbID int
	SeriesTvdbID int
}

// IDMatches returns the ID matches between a video and ids. A field only
// matches when both sides populate it.
func IDMatches(v video.Video, ids IDs) Set {
	m := NewSet()
	b := v.Info()
	if b.ImdbID != "" && NormalizeImdbID(ids.ImdbID) == NormalizeImdbID(b.ImdbID) {
		m.Add(ImdbID)
	}
	if b.TmdbID != 0 && ids.TmdbID == b.TmdbID {
		m.Add(TmdbID)
	}
	if e, ok := v.(*video.Episode); ok {
		if e.TvdbID != 0 && ids.TvdbID == e.TvdbID {
			m.Add(TvdbID)
		}
		if e.SeriesImdbID != "" && NormalizeImdbID(ids.SeriesImdbID) == NormalizeImdbID(e.SeriesImdbID) {
			m.Add(SeriesImdbID)
		}
		if e.SeriesTmdbID != 0 && ids.SeriesTmdbID == e.SeriesTmdbID {
			m.Add(SeriesTmdbID)
		}
		if e.SeriesTvdbID != 0 && ids.SeriesTvdbID == e.SeriesTvdbID {
			m.Add(SeriesTvdbID)
		}
	}
	return m
}

// HashMatches returns {hash} when the video carries the named digest and it
// equals digest.
func HashMatches(v video.Video, name, digest string) Set {
	if h, ok := v.Info().Hash(name); ok && digest != "" && strings.EqualFold(h, digest) {
		return NewSet(Hash)
	}
	return NewSet()
}

// NormalizeImdbID returns the "tt" prefixed, seven digit minimum form of id.
func NormalizeImdbID(id string) string {
	id = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(id)), "tt")
	if id == "" {
		return ""
	}
	id = strings.TrimLeft(id, "0")
	for len(id) < 7 {
		id = "0" + id
	}
	return "tt" + id
}

// WithEquivalents returns a copy of m extended with the matches implied by an
// ID match: a definitive identifier subsumes the metadata it identifies.
// For episodes the ID is replaced by what it implies, so its weight is not
// counted on top of the implied matches.
func WithEquivalents(kind video.Kind, m Set) Set {
	out := m.Clone()
	switch kind {
	case video.KindEpisode:
		if m.Has(Title) {
			out.Add(Episode)
		}
		for _, id := range []string{SeriesImdbID, SeriesTmdbID, SeriesTvdbID} {
			if m.Has(id) {
				out.Add(Series, Year, Country)
				delete(out, id)
			}
		}
		for _, id := range []string{ImdbID, TmdbID, TvdbID} {
			if m.Has(id) {
				out.Add(Series, Year, Country, Season, Episode)
				delete(out, id)
			}
		}
	case video.KindMovie:
		if m.Has(ImdbID) || m.Has(TmdbID) {
			out.Add(Title, Year, Country)
		}
	}
	return out
}
