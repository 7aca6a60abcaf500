package provider

import (
	"context"
	"testing"
	"time"

	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type nopProvider struct{}

func (nopProvider) Initialize(context.Context) error { return nil }
func (nopProvider) Terminate(context.Context) error  { return nil }
func (nopProvider) ListSubtitles(context.Context, video.Video, languages.Set) ([]subtitle.Subtitle, error) {
	return nil, nil
}
func (nopProvider) DownloadSubtitle(context.Context, subtitle.Subtitle) error { return nil }

func nopFactory(Config, Env) (Provider, error) { return nopProvider{}, nil }

func episode() *video.Episode {
	return &video.Episode{Base: video.Base{Name: "Show.S01E02.mkv"}, Series: "Show", Season: 1, Episode: 2}
}

func TestGate(t *testing.T) {
	caps := Capabilities{
		Languages:  languages.NewSet(language.English, language.French),
		VideoKinds: []video.Kind{video.KindEpisode},
	}

	got, reason := Gate(caps, episode(), languages.NewSet(language.English, language.German))
	assert.Equal(t, Eligible, reason)
	assert.Equal(t, languages.NewSet(language.English), got)

	_, reason = Gate(caps, &video.Movie{Base: video.Base{Name: "Film.mkv"}, Title: "Film"}, languages.NewSet(language.English))
	assert.Equal(t, UnsupportedKind, reason)

	got, reason = Gate(caps, episode(), languages.NewSet(language.German))
	assert.Equal(t, NoLanguage, reason)
	assert.Equal(t, 0, got.Len())
}

func TestGateSkipsExistingLanguages(t *testing.T) {
	caps := Capabilities{
		Languages:  languages.NewSet(language.English, language.French),
		VideoKinds: []video.Kind{video.KindEpisode},
	}
	ep := episode()
	ep.AddSubtitles(video.ExistingSubtitle{Language: language.English, Path: "Show.S01E02.en.srt"})

	_, reason := Gate(caps, ep, languages.NewSet(language.English))
	assert.Equal(t, NoLanguage, reason)

	got, reason := Gate(caps, ep, languages.NewSet(language.English, language.French))
	assert.Equal(t, Eligible, reason)
	assert.Equal(t, languages.NewSet(language.French), got)
}

func TestGateRequiredHash(t *testing.T) {
	caps := Capabilities{
		Languages:    languages.NewSet(language.English),
		VideoKinds:   []video.Kind{video.KindEpisode, video.KindMovie},
		RequiredHash: "opensubtitles",
	}
	ep := episode()
	assert.False(t, caps.Check(ep))
	_, reason := Gate(caps, ep, languages.NewSet(language.English))
	assert.Equal(t, MissingHash, reason)
	assert.Equal(t, "missing required hash", reason.String())

	ep.SetHash("opensubtitles", "8e245d9679d31e12")
	assert.True(t, caps.Check(ep))
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(
		Registration{Name: "b", New: nopFactory},
		Registration{Name: "a", New: nopFactory},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	_, ok := r.Lookup("a")
	assert.True(t, ok)
	_, ok = r.Lookup("zzz")
	assert.False(t, ok)

	assert.Error(t, r.Register(Registration{Name: "a", New: nopFactory}), "duplicate")
	assert.Error(t, r.Register(Registration{Name: "c"}), "missing factory")
	assert.Error(t, r.Register(Registration{New: nopFactory}), "missing name")

	var nilRegistry *Registry
	_, ok = nilRegistry.Lookup("a")
	assert.False(t, ok)
}

func TestConfig(t *testing.T) {
	cfg := Config{
		"username": "alice",
		"Timeout":  "15s",
		"retries":  "3",
		"vip":      "true",
		"langs":    []any{"en", "fr"},
	}
	assert.Equal(t, "alice", cfg.String("username"))
	assert.Equal(t, 15*time.Second, cfg.Duration("timeout"))
	assert.Equal(t, 3, cfg.Int("retries"))
	assert.True(t, cfg.Bool("vip"))
	assert.Equal(t, []string{"en", "fr"}, cfg.StringSlice("langs"))
	assert.Equal(t, "fallback", cfg.StringOr("password", "fallback"))
	assert.False(t, cfg.Has("password"))

	var empty Config
	assert.Equal(t, "", empty.String("anything"))
}
