package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	clicmd "github.com/angelospk/subfinder/cmd/cli/cmd"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/angelospk/subfinder/pkg/providers"
	"github.com/angelospk/subfinder/pkg/refiners"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const (
	episodeFile = "The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION.mkv"
	validSRT    = "1\n00:00:01,000 --> 00:00:02,000\nHello\n"
)

// MockProvider is a testify mock of provider.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Initialize(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockProvider) Terminate(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockProvider) ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) ([]subtitle.Subtitle, error) {
	args := m.Called(ctx, v, langs)
	subs, _ := args.Get(0).([]subtitle.Subtitle)
	return subs, args.Error(1)
}

func (m *MockProvider) DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) error {
	return m.Called(ctx, sub).Error(0)
}

type fakeSubtitle struct {
	subtitle.Base
}

func (f *fakeSubtitle) Matches(video.Video) matches.Set {
	return matches.NewSet(matches.Series, matches.Season, matches.Episode)
}

// executeCommand runs the CLI with prov as the only provider and a no-op
// refiner, against an in-memory cache.
func executeCommand(t *testing.T, prov *MockProvider, args ...string) (string, error) {
	t.Helper()
	origRegistry, origRefiners := clicmd.NewRegistryFunc, clicmd.NewRefinerRegistryFunc
	t.Cleanup(func() {
		clicmd.NewRegistryFunc, clicmd.NewRefinerRegistryFunc = origRegistry, origRefiners
	})
	clicmd.NewRegistryFunc = func() *provider.Registry {
		r, err := provider.NewRegistry(provider.Registration{
			Name: "fake",
			Capabilities: provider.Capabilities{
				Languages:  languages.NewSet(language.English, language.French),
				VideoKinds: []video.Kind{video.KindEpisode, video.KindMovie},
			},
			New: func(provider.Config, provider.Env) (provider.Provider, error) { return prov, nil },
		})
		require.NoError(t, err)
		return r
	}
	clicmd.NewRefinerRegistryFunc = func() *refiners.Registry {
		r := refiners.NewRegistry()
		require.NoError(t, r.Register("noop", func(provider.Config, provider.Env) (refiners.Refiner, error) {
			return refiners.RefinerFunc(func(context.Context, video.Video) error { return nil }), nil
		}))
		return r
	}

	orig := viper.GetString(clicmd.CfgKeyCachePath)
	viper.Set(clicmd.CfgKeyCachePath, "memory")
	t.Cleanup(func() { viper.Set(clicmd.CfgKeyCachePath, orig) })

	out := &bytes.Buffer{}
	root := clicmd.NewRootCmd()
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
}

func fillContent(args mock.Arguments) {
	args.Get(1).(subtitle.Subtitle).Info().Content = []byte(validSRT)
}

func TestDownloadCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, episodeFile))
	done := filepath.Join(dir, "Inception.2010.1080p.BluRay.x264-SPARKS.mkv")
	writeFile(t, done)
	writeFile(t, filepath.Join(dir, "Inception.2010.1080p.BluRay.x264-SPARKS.en.srt"))

	sub := &fakeSubtitle{Base: subtitle.Base{Provider: "fake", ID: "42", Language: language.English}}
	prov := &MockProvider{}
	prov.On("Initialize", mock.Anything).Return(nil).Once()
	prov.On("ListSubtitles", mock.Anything, mock.Anything, languages.NewSet(language.English)).Return([]subtitle.Subtitle{sub}, nil).Once()
	prov.On("DownloadSubtitle", mock.Anything, sub).Run(fillContent).Return(nil).Once()
	prov.On("Terminate", mock.Anything).Return(nil).Once()

	out, err := executeCommand(t, prov, "download", "-l", "en", "-r", "noop", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "en from fake:42")
	assert.Contains(t, out, "Downloaded 1 subtitle(s) for 1 video(s), 1 video(s) ignored")

	data, err := os.ReadFile(filepath.Join(dir, "The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION.en.srt"))
	require.NoError(t, err)
	assert.Equal(t, validSRT, string(data))
	prov.AssertExpectations(t)
}

func TestDownloadCommandSingleToDirectory(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, episodeFile))

	sub := &fakeSubtitle{Base: subtitle.Base{Provider: "fake", ID: "42", Language: language.French}}
	prov := &MockProvider{}
	prov.On("Initialize", mock.Anything).Return(nil)
	prov.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return([]subtitle.Subtitle{sub}, nil)
	prov.On("DownloadSubtitle", mock.Anything, sub).Run(fillContent).Return(nil)
	prov.On("Terminate", mock.Anything).Return(nil)

	_, err := executeCommand(t, prov, "download", "-l", "fr", "-r", "noop", "--single", "-d", dst, filepath.Join(src, episodeFile))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION.srt"))
}

func TestDownloadCommandIgnore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, episodeFile))

	sub := &fakeSubtitle{Base: subtitle.Base{Provider: "fake", ID: "42", Language: language.English}}
	prov := &MockProvider{}
	prov.On("Initialize", mock.Anything).Return(nil)
	prov.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return([]subtitle.Subtitle{sub}, nil)
	prov.On("Terminate", mock.Anything).Return(nil)

	out, err := executeCommand(t, prov, "download", "-l", "en", "-r", "noop", "--ignore", "fake:42", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Downloaded 0 subtitle(s) for 1 video(s)")
	prov.AssertNotCalled(t, "DownloadSubtitle", mock.Anything, mock.Anything)
}

func TestDownloadCommandFlagErrors(t *testing.T) {
	dir := t.TempDir()
	for name, args := range map[string][]string{
		"min score":  {"download", "-l", "en", "-r", "noop", "--min-score", "150", dir},
		"preference": {"download", "-l", "en", "-r", "noop", "--hearing-impaired", "sometimes", dir},
		"ignore":     {"download", "-l", "en", "-r", "noop", "--ignore", "42", dir},
		"age":        {"download", "-l", "en", "-r", "noop", "--age", "3x", dir},
		"language":   {"download", "-l", "not a language", dir},
		"refiner":    {"download", "-l", "en", "-r", "nope", dir},
		"no path":    {"download", "-l", "en"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := executeCommand(t, &MockProvider{}, args...)
			assert.Error(t, err)
		})
	}
}

func TestDownloadCommandUnknownProvider(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, episodeFile))
	_, err := executeCommand(t, &MockProvider{}, "download", "-l", "en", "-r", "noop", "-p", "nope", dir)
	assert.ErrorContains(t, err, "nope")
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, episodeFile))

	prov := &MockProvider{}
	prov.On("Initialize", mock.Anything).Return(nil)
	prov.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return([]subtitle.Subtitle{
		&fakeSubtitle{Base: subtitle.Base{Provider: "fake", ID: "7", Language: language.English, HearingImpaired: true}},
	}, nil)
	prov.On("Terminate", mock.Anything).Return(nil)

	out, err := executeCommand(t, prov, "list", "-l", "en", "-r", "noop", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "The Big Bang Theory s07e05 [4 B]")
	assert.Contains(t, out, "episode,season,series")
	assert.Contains(t, out, "fake")
	prov.AssertNotCalled(t, "DownloadSubtitle", mock.Anything, mock.Anything)
}

func TestProvidersCommand(t *testing.T) {
	origRegistry := clicmd.NewRegistryFunc
	t.Cleanup(func() { clicmd.NewRegistryFunc = origRegistry })
	clicmd.NewRegistryFunc = providers.DefaultRegistry

	out := &bytes.Buffer{}
	root := clicmd.NewRootCmd()
	root.SetOut(out)
	root.SetArgs([]string{"providers"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "opensubtitlescom")
	assert.Contains(t, out.String(), "Refiners: hash, imdb, nfo, trakt")
}

func TestCacheClearCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	orig := viper.GetString(clicmd.CfgKeyCachePath)
	viper.Set(clicmd.CfgKeyCachePath, path)
	t.Cleanup(func() { viper.Set(clicmd.CfgKeyCachePath, orig) })

	for _, args := range [][]string{{"cache", "clear"}, {"cache", "prune"}} {
		out := &bytes.Buffer{}
		root := clicmd.NewRootCmd()
		root.SetOut(out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		assert.NotEmpty(t, out.String())
	}
	assert.FileExists(t, path)
}
