package opensubtitles

import (
	"regexp"

	"github.com/angelospk/subfinder/pkg/core/fileops"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
)

// seriesName splits the `"Series" Episode title` form OpenSubtitles uses for
// episode movie names.
var seriesName = regexp.MustCompile(`^"(?P<series>.*)" (?P<title>.*)$`)

// Subtitle is a result of SearchSubtitles.
type Subtitle struct {
	subtitle.Base
	// MatchedBy is the criterion the server matched on: moviehash, imdbid,
	// tag or fulltext.
	MatchedBy        string
	MovieKind        string
	MovieHash        string
	MovieName        string
	MovieReleaseName string
	MovieYear        int
	MovieImdbID      string
	SeriesSeason     int
	SeriesEpisode    int
	FileName         string
}

// SeriesName returns the series part of an episode movie name.
func (s *Subtitle) SeriesName() string {
	if m := seriesName.FindStringSubmatch(s.MovieName); m != nil {
		return m[1]
	}
	return ""
}

// SeriesTitle returns the episode title part of an episode movie name.
func (s *Subtitle) SeriesTitle() string {
	if m := seriesName.FindStringSubmatch(s.MovieName); m != nil {
		return m[2]
	}
	return ""
}

// Release returns the most descriptive name the subtitle carries.
func (s *Subtitle) Release() string {
	if len(s.MovieReleaseName) > len(s.FileName) {
		return s.MovieReleaseName
	}
	if s.FileName != "" {
		return s.FileName
	}
	return s.ID
}

func (s *Subtitle) kindMatches(v video.Video) bool {
	switch v.Kind() {
	case video.KindEpisode:
		return s.MovieKind == "episode"
	case video.KindMovie:
		return s.MovieKind == "movie"
	}
	return false
}

// Matches compares the subtitle metadata with v. The movie hash only counts
// once the title, or the series with season and episode, also matched.
func (s *Subtitle) Matches(v video.Video) matches.Set {
	if !s.kindMatches(v) {
		return matches.NewSet()
	}

	g := matches.Guess{
		Year:    s.MovieYear,
		Season:  s.SeriesSeason,
		Episode: s.SeriesEpisode,
	}
	if s.MovieKind == "episode" {
		g.Title = s.SeriesName()
		g.EpisodeTitle = s.SeriesTitle()
	} else {
		g.Title = s.MovieName
	}
	m := matches.GuessMatches(v, g, false)

	b := v.Info()
	sameImdb := b.ImdbID != "" && matches.NormalizeImdbID(s.MovieImdbID) == matches.NormalizeImdbID(b.ImdbID)
	if s.MatchedBy == "tag" && (b.ImdbID == "" || sameImdb) {
		if s.MovieKind == "episode" {
			m.Add(matches.Series, matches.Year, matches.Season, matches.Episode)
		} else {
			m.Add(matches.Title, matches.Year)
		}
	}

	m = m.Union(matches.GuessMatches(v, matches.ParseRelease(s.MovieReleaseName), false))
	m = m.Union(matches.GuessMatches(v, matches.ParseRelease(s.FileName), false))

	if matches.HashMatches(v, fileops.OSDbHashName, s.MovieHash).Has(matches.Hash) {
		switch {
		case s.MovieKind == "movie" && m.Has(matches.Title):
			m.Add(matches.Hash)
		case s.MovieKind == "episode" && m.Has(matches.Series) && m.Has(matches.Season) && m.Has(matches.Episode):
			m.Add(matches.Hash)
		}
	}

	if sameImdb {
		m.Add(matches.ImdbID)
	}
	return m
}

var _ subtitle.Subtitle = (*Subtitle)(nil)
