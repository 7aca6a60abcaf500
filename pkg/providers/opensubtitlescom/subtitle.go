package opensubtitlescom

import (
	"strconv"
	"strings"

	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
)

// Subtitle is a result of the /subtitles search.
type Subtitle struct {
	subtitle.Base
	FileID            int
	FileName          string
	Release           string
	MovieKind         string // "movie" or "episode"
	MovieTitle        string
	MovieYear         int
	SeriesTitle       string
	SeriesSeason      int
	SeriesEpisode     int
	IDs               matches.IDs
	DownloadCount     int
	MachineTranslated bool
	MovieHashMatch    bool
}

func ref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func newSubtitle(s apiSubtitle) *Subtitle {
	a := s.Attributes
	fd := a.FeatureDetails
	sub := &Subtitle{
		Base: subtitle.Base{
			Provider:        Name,
			ID:              s.ID,
			HearingImpaired: a.HearingImpaired,
			ForeignOnly:     a.ForeignPartsOnly,
			PageLink:        a.URL,
		},
		Release:           a.Release,
		MovieKind:         strings.ToLower(fd.FeatureType),
		MovieTitle:        fd.Title,
		MovieYear:         fd.Year,
		SeriesSeason:      ref(fd.SeasonNumber),
		SeriesEpisode:     ref(fd.EpisodeNumber),
		DownloadCount:     a.DownloadCount,
		MachineTranslated: a.MachineTranslated || a.AITranslated,
		MovieHashMatch:    a.MoviehashMatch != nil && *a.MoviehashMatch,
	}
	if fd.ParentTitle != nil {
		sub.SeriesTitle = *fd.ParentTitle
	}
	if a.FPS != nil {
		sub.FrameRate = *a.FPS
	}
	if id := ref(fd.IMDbID); id != 0 {
		sub.IDs.ImdbID = matches.NormalizeImdbID(strconv.Itoa(id))
	}
	sub.IDs.TmdbID = ref(fd.TMDBID)
	if id := ref(fd.ParentIMDbID); id != 0 {
		sub.IDs.SeriesImdbID = matches.NormalizeImdbID(strconv.Itoa(id))
	}
	sub.IDs.SeriesTmdbID = ref(fd.ParentTMDBID)
	if len(a.Files) > 0 {
		sub.FileID = a.Files[0].FileID
		sub.FileName = a.Files[0].FileName
	}
	return sub
}

// Matches compares the feature details, release and file name with v.
func (s *Subtitle) Matches(v video.Video) matches.Set {
	switch {
	case v.Kind() == video.KindEpisode && s.MovieKind != "episode",
		v.Kind() == video.KindMovie && s.MovieKind != "movie":
		return matches.NewSet()
	}

	g := matches.Guess{
		Year:    s.MovieYear,
		Season:  s.SeriesSeason,
		Episode: s.SeriesEpisode,
	}
	if s.MovieKind == "episode" {
		g.Title, g.EpisodeTitle = s.SeriesTitle, s.MovieTitle
	} else {
		g.Title = s.MovieTitle
	}
	m := matches.GuessMatches(v, g, false)
	m.Union(matches.GuessMatches(v, matches.ParseRelease(s.Release), false))
	m.Union(matches.GuessMatches(v, matches.ParseRelease(s.FileName), false))
	m.Union(matches.IDMatches(v, s.IDs))
	if s.MovieHashMatch {
		m.Add(matches.Hash)
	}
	return m
}

var _ subtitle.Subtitle = (*Subtitle)(nil)
