package matches

import (
	"strings"

	"github.com/angelospk/subfinder/pkg/core/video"
	ptn "github.com/razsteinmetz/go-ptn"
)

// Guess is the metadata extracted from a free-text release or file name.
// Zero values mean the field was not found.
type Guess struct {
	Kind             video.Kind
	Title            string // movie title or series name
	EpisodeTitle     string
	Year             int
	Season           int
	Episode          int
	Country          string
	ReleaseGroup     string
	StreamingService string
	Resolution       string
	Source           string
	VideoCodec       string
	AudioCodec       string
}

// ParseRelease guesses metadata from a release or file name. An unparseable
// name yields the zero Guess.
func ParseRelease(name string) Guess {
	if strings.TrimSpace(name) == "" {
		return Guess{}
	}
	info, err := ptn.Parse(name)
	if err != nil || info == nil {
		return Guess{}
	}
	g := Guess{
		Kind:             video.KindMovie,
		Title:            strings.TrimSpace(info.Title),
		Year:             info.Year,
		Season:           info.Season,
		Episode:          info.Episode,
		ReleaseGroup:     strings.TrimSpace(info.Group),
		StreamingService: streamingService(name),
		Resolution:       NormalizeResolution(info.Resolution),
		Source:           NormalizeSource(info.Quality),
		VideoCodec:       NormalizeVideoCodec(info.Codec),
		AudioCodec:       NormalizeAudioCodec(info.Audio),
	}
	if g.Season > 0 || g.Episode > 0 {
		g.Kind = video.KindEpisode
	}
	return g
}

// GuessMatches compares a guess against a video. With partial set, missing
// guess fields are not counted as information (the year and country rules for
// original series and movies).
func GuessMatches(v video.Video, g Guess, partial bool) Set {
	m := NewSet()
	b := v.Info()

	switch vv := v.(type) {
	case *video.Episode:
		if g.Title != "" && containsSanitized(append([]string{vv.Series}, vv.AlternativeSeries...), g.Title) {
			m.Add(Series)
		}
		if vv.Title != "" && g.EpisodeTitle != "" && Sanitize(vv.Title) == Sanitize(g.EpisodeTitle) {
			m.Add(Title)
		}
		if vv.Season != 0 && g.Season == vv.Season {
			m.Add(Season)
		}
		if vv.Episode != 0 && g.Episode == vv.Episode {
			m.Add(Episode)
		}
		if (b.Year != 0 && g.Year == b.Year) || (!partial && vv.OriginalSeries && g.Year == 0) {
			m.Add(Year)
		}
		if (b.Country != "" && strings.EqualFold(g.Country, b.Country)) || (!partial && vv.OriginalSeries && g.Country == "") {
			m.Add(Country)
		}
		if vv.StreamingService != "" && strings.EqualFold(g.StreamingService, vv.StreamingService) {
			m.Add(StreamingService)
		}
	case *video.Movie:
		if g.Title != "" && containsSanitized(append([]string{vv.Title}, vv.AlternativeTitles...), g.Title) {
			m.Add(Title)
		}
		if b.Year != 0 && g.Year == b.Year {
			m.Add(Year)
		}
		if (b.Country != "" && strings.EqualFold(g.Country, b.Country)) || (b.Country == "" && g.Country == "") {
			m.Add(Country)
		}
	}

	if ReleaseGroupMatches(b.ReleaseGroup, g.ReleaseGroup) {
		m.Add(ReleaseGroup)
	}
	if equalKnown(b.Resolution, g.Resolution) {
		m.Add(Resolution)
	}
	if equalKnown(b.Source, g.Source) {
		m.Add(Source)
	}
	if equalKnown(b.VideoCodec, g.VideoCodec) {
		m.Add(VideoCodec)
	}
	if equalKnown(b.AudioCodec, g.AudioCodec) {
		m.Add(AudioCodec)
	}
	return m
}

func equalKnown(videoValue, guessValue string) bool {
	return videoValue != "" && strings.EqualFold(videoValue, guessValue)
}

func containsSanitized(names []string, candidate string) bool {
	c := Sanitize(candidate)
	if c == "" {
		return false
	}
	for _, n := range names {
		if n != "" && Sanitize(n) == c {
			return true
		}
	}
	return false
}
