package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestSetOperations(t *testing.T) {
	a := NewSet(language.English, language.French, language.German)
	b := NewSet(language.French, language.Spanish)

	assert.Equal(t, NewSet(language.French), a.Intersect(b))
	assert.Equal(t, NewSet(language.English, language.German), a.Difference(b))
	assert.True(t, a.Covers(NewSet(language.English)))
	assert.False(t, a.Covers(b))
	assert.True(t, a.Covers(NewSet()))
	assert.Equal(t, "{de, en, fr}", a.String())
}

func TestParseSet(t *testing.T) {
	s, err := ParseSet("en", "pt-br", "fre", "Greek", " ")
	require.NoError(t, err)
	assert.Equal(t, NewSet(language.English, language.BrazilianPortuguese, language.French, language.Greek), s)

	_, err = ParseSet("not a language")
	assert.Error(t, err)
}

func TestOpenSubtitlesCodes(t *testing.T) {
	tests := []struct {
		tag    language.Tag
		osCode string
		legacy string
	}{
		{language.English, "en", "eng"},
		{language.BrazilianPortuguese, "pt-br", "pob"},
		{language.Portuguese, "pt-pt", "por"},
		{language.French, "fr", "fre"},
		{language.MustParse("en-US"), "en", "eng"},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			code, ok := ToOpenSubtitles(tt.tag)
			require.True(t, ok)
			assert.Equal(t, tt.osCode, code)

			legacy, ok := ToLegacy(tt.tag)
			require.True(t, ok)
			assert.Equal(t, tt.legacy, legacy)
		})
	}

	tag, ok := FromOpenSubtitles("PT-BR")
	require.True(t, ok)
	assert.Equal(t, language.BrazilianPortuguese, tag)

	tag, ok = FromLegacy("ger")
	require.True(t, ok)
	assert.Equal(t, language.German, tag)

	_, ok = FromLegacy("xxx")
	assert.False(t, ok)
}

func TestLookupPortugueseAliases(t *testing.T) {
	for _, key := range []string{"pt", "por", "portuguese", "pt-pt"} {
		tag, ok := Lookup(key)
		require.True(t, ok, key)
		assert.Equal(t, language.Portuguese, tag, key)
	}
	for _, key := range []string{"pb", "pob", "pt-br"} {
		tag, ok := Lookup(key)
		require.True(t, ok, key)
		assert.Equal(t, language.BrazilianPortuguese, tag, key)
	}
}

func TestDetect(t *testing.T) {
	tests := map[string]language.Tag{
		"Movie.2020.1080p.en.srt":        language.English,
		"Show.S01E02.fre.srt":            language.French,
		"Movie.pt-br.srt":                language.BrazilianPortuguese,
		"Movie.pt.br.srt":                language.BrazilianPortuguese,
		"Movie.Greek.sub":                language.Greek,
		"Movie.en.hi.srt":                language.English,
		"the.movie.name.german.forced.srt": language.German,
	}
	for name, want := range tests {
		got, ok := Detect(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := Detect("Movie.2020.srt")
	assert.False(t, ok)
}

func TestFlags(t *testing.T) {
	hi, forced := Flags("Movie.en.sdh.srt")
	assert.True(t, hi)
	assert.False(t, forced)

	hi, forced = Flags("Movie.en.forced.srt")
	assert.False(t, hi)
	assert.True(t, forced)
}
