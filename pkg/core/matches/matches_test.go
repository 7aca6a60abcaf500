package matches

import (
	"testing"

	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigBangTheory() *video.Episode {
	return &video.Episode{
		Base: video.Base{
			Name:         "The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION.mkv",
			Source:       "HDTV",
			ReleaseGroup: "DIMENSION",
			Resolution:   "720p",
			VideoCodec:   "H.264",
			Year:         2007,
			ImdbID:       "tt3229392",
			Hashes:       map[string]string{"opensubtitles": "6878b3ef7c1bd19e"},
		},
		Series:         "The Big Bang Theory",
		Season:         7,
		Episode:        5,
		Title:          "The Workplace Proximity",
		SeriesImdbID:   "tt0898266",
		SeriesTvdbID:   80379,
		TvdbID:         4668379,
		OriginalSeries: true,
	}
}

func manOfSteel() *video.Movie {
	return &video.Movie{
		Base: video.Base{
			Name:         "Man.of.Steel.2013.720p.BluRay.x264-Felony.mkv",
			Source:       "Blu-ray",
			ReleaseGroup: "felony",
			Resolution:   "720p",
			VideoCodec:   "H.264",
			AudioCodec:   "DTS",
			ImdbID:       "tt0770828",
			Year:         2013,
		},
		Title:             "Man of Steel",
		AlternativeTitles: []string{"Man of Steel 3D"},
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "marvels agents of s h i e l d", Sanitize("Marvel's Agents of S.H.I.E.L.D."))
	assert.Equal(t, "amelie", Sanitize("Amélie"))
	assert.Equal(t, "the office us", Sanitize("  The Office (US) "))
	assert.Equal(t, "", Sanitize(""))
}

func TestSanitizeReleaseGroup(t *testing.T) {
	assert.Equal(t, "LOL", SanitizeReleaseGroup("[eztv] lol "))
	assert.Equal(t, "", SanitizeReleaseGroup(""))
}

func TestReleaseGroupMatches(t *testing.T) {
	assert.True(t, ReleaseGroupMatches("DIMENSION", "lol"))
	assert.True(t, ReleaseGroupMatches("immerse", "FLEET"))
	assert.True(t, ReleaseGroupMatches("Felony", "FELONY[rarbg]"))
	assert.False(t, ReleaseGroupMatches("KILLERS", "LOL"))
	assert.False(t, ReleaseGroupMatches("", "LOL"))
}

func TestFPSMatches(t *testing.T) {
	assert.True(t, FPSMatches(23.976, 23.976))
	assert.True(t, FPSMatches(23.976, 23.98))
	assert.False(t, FPSMatches(25, 23.976))
	assert.True(t, FPSMatches(0, 25), "unknown video frame rate never disqualifies")
	assert.True(t, FPSMatches(25, 0), "unknown subtitle frame rate never disqualifies")
}

func TestNormalizeImdbID(t *testing.T) {
	assert.Equal(t, "tt0770828", NormalizeImdbID("770828"))
	assert.Equal(t, "tt0770828", NormalizeImdbID("tt0770828"))
	assert.Equal(t, "tt12345678", NormalizeImdbID("TT12345678"))
	assert.Equal(t, "", NormalizeImdbID(""))
}

func TestGuessMatchesEpisode(t *testing.T) {
	g := Guess{
		Kind:         video.KindEpisode,
		Title:        "the big bang theory",
		Season:       7,
		Episode:      5,
		Resolution:   "720p",
		Source:       "HDTV",
		VideoCodec:   "H.264",
		ReleaseGroup: "LOL",
	}
	m := GuessMatches(bigBangTheory(), g, false)
	assert.Equal(t, NewSet(Series, Season, Episode, Year, Country, Resolution, Source, VideoCodec, ReleaseGroup), m)

	partial := GuessMatches(bigBangTheory(), g, true)
	assert.False(t, partial.Has(Year), "missing year is not information for a partial guess")
	assert.False(t, partial.Has(Country))
}

func TestGuessMatchesMovie(t *testing.T) {
	g := Guess{
		Kind:         video.KindMovie,
		Title:        "Man of Steel 3D",
		Year:         2013,
		Resolution:   "720p",
		Source:       "Blu-ray",
		AudioCodec:   "DTS",
		ReleaseGroup: "FELONY",
	}
	m := GuessMatches(manOfSteel(), g, false)
	assert.Equal(t, NewSet(Title, Year, Country, Resolution, Source, AudioCodec, ReleaseGroup), m)

	assert.Empty(t, GuessMatches(manOfSteel(), Guess{Title: "Another Movie", Year: 1999, Country: "US"}, false))
}

func TestIDMatches(t *testing.T) {
	e := bigBangTheory()
	m := IDMatches(e, IDs{ImdbID: "3229392", SeriesImdbID: "tt0898266", SeriesTvdbID: 80379, TvdbID: 1})
	assert.Equal(t, NewSet(ImdbID, SeriesImdbID, SeriesTvdbID), m)

	assert.Empty(t, IDMatches(manOfSteel(), IDs{}))
}

func TestHashMatches(t *testing.T) {
	e := bigBangTheory()
	assert.Equal(t, NewSet(Hash), HashMatches(e, "opensubtitles", "6878B3EF7C1BD19E"))
	assert.Empty(t, HashMatches(e, "opensubtitles", "0000000000000000"))
	assert.Empty(t, HashMatches(e, "other", "6878b3ef7c1bd19e"))
	assert.Empty(t, HashMatches(e, "opensubtitles", ""))
}

func TestWithEquivalents(t *testing.T) {
	ep := WithEquivalents(video.KindEpisode, NewSet(ImdbID))
	assert.Equal(t, NewSet(Series, Year, Country, Season, Episode), ep, "the episode ID is replaced")

	ep = WithEquivalents(video.KindEpisode, NewSet(SeriesTvdbID, Title))
	assert.Equal(t, NewSet(Series, Year, Country, Title, Episode), ep)

	mv := WithEquivalents(video.KindMovie, NewSet(TmdbID))
	assert.Equal(t, NewSet(TmdbID, Title, Year, Country), mv)

	in := NewSet(Resolution)
	_ = WithEquivalents(video.KindMovie, in)
	assert.Equal(t, NewSet(Resolution), in, "input set is not mutated")
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "H.264", NormalizeVideoCodec("x264"))
	assert.Equal(t, "H.265", NormalizeVideoCodec("HEVC"))
	assert.Equal(t, "Blu-ray", NormalizeSource("BluRay"))
	assert.Equal(t, "Web", NormalizeSource("WEB-DL"))
	assert.Equal(t, "HDTV", NormalizeSource("hdtv"))
	assert.Equal(t, "Dolby Digital", NormalizeAudioCodec("DD5.1"))
	assert.Equal(t, "Dolby Digital Plus", NormalizeAudioCodec("DDP5.1"))
	assert.Equal(t, "AAC", NormalizeAudioCodec("AAC2.0"))
	assert.Equal(t, "2160p", NormalizeResolution("4K"))
	assert.Equal(t, "720p", NormalizeResolution("720"))
	assert.Equal(t, "Netflix", streamingService("Show.S01E01.1080p.NF.WEB-DL.DDP5.1.x264-NTb"))
}

func TestParseRelease(t *testing.T) {
	g := ParseRelease("The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION")
	require.Equal(t, video.KindEpisode, g.Kind)
	assert.Equal(t, 7, g.Season)
	assert.Equal(t, 5, g.Episode)
	assert.Equal(t, "720p", g.Resolution)
	assert.True(t, GuessMatches(bigBangTheory(), g, false).Has(Series))

	assert.Equal(t, Guess{}, ParseRelease("  "))
}
