package subfinder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	coreerrors "github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/pool"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/angelospk/subfinder/pkg/refiners"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const validSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n"

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Initialize(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockProvider) Terminate(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockProvider) ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) ([]subtitle.Subtitle, error) {
	args := m.Called(ctx, v, langs)
	subs, _ := args.Get(0).([]subtitle.Subtitle)
	return subs, args.Error(1)
}

func (m *mockProvider) DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) error {
	return m.Called(ctx, sub).Error(0)
}

type fakeSubtitle struct {
	subtitle.Base
	matched matches.Set
}

func (f *fakeSubtitle) Matches(video.Video) matches.Set {
	if f.matched == nil {
		return matches.NewSet()
	}
	return f.matched
}

func newSub(provider, id string, lang language.Tag, m ...string) *fakeSubtitle {
	return &fakeSubtitle{
		Base:    subtitle.Base{Provider: provider, ID: id, Language: lang},
		matched: matches.NewSet(m...),
	}
}

func fillContent(args mock.Arguments) {
	args.Get(1).(subtitle.Subtitle).Info().Content = []byte(validSRT)
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func registry(t *testing.T, provs map[string]*mockProvider) *provider.Registry {
	t.Helper()
	var regs []provider.Registration
	for name, p := range provs {
		regs = append(regs, provider.Registration{
			Name: name,
			Capabilities: provider.Capabilities{
				Languages:  languages.NewSet(language.English, language.French),
				VideoKinds: []video.Kind{video.KindEpisode, video.KindMovie},
			},
			New: func(provider.Config, provider.Env) (provider.Provider, error) { return p, nil },
		})
	}
	r, err := provider.NewRegistry(regs...)
	require.NoError(t, err)
	return r
}

func episode() *video.Episode {
	return &video.Episode{
		Base:    video.Base{Name: "The.Big.Bang.Theory.S07E05.720p.HDTV.X264-DIMENSION.mkv"},
		Series:  "The Big Bang Theory",
		Season:  7,
		Episode: 5,
	}
}

func TestCheckVideo(t *testing.T) {
	en := languages.NewSet(language.English)
	both := languages.NewSet(language.English, language.French)

	v := episode()
	assert.True(t, CheckVideo(v, en, 0, false))

	v.AddSubtitles(video.ExistingSubtitle{Language: language.English})
	assert.False(t, CheckVideo(v, en, 0, false), "every language present")
	assert.True(t, CheckVideo(v, both, 0, false))

	v.Modified = time.Now().Add(-48 * time.Hour)
	assert.False(t, CheckVideo(v, both, 24*time.Hour, false), "too old")
	assert.True(t, CheckVideo(v, both, 72*time.Hour, false))

	v.AddSubtitles(video.ExistingSubtitle{Language: language.Und})
	assert.False(t, CheckVideo(v, both, 0, true), "undefined subtitle present")
	assert.True(t, CheckVideo(v, both, 0, false))
}

func TestListSubtitles(t *testing.T) {
	ok, broken := &mockProvider{}, &mockProvider{}
	sub := newSub("ok", "1", language.French)

	ok.On("Initialize", mock.Anything).Return(nil).Once()
	ok.On("ListSubtitles", mock.Anything, mock.Anything, languages.NewSet(language.French)).Return([]subtitle.Subtitle{sub}, nil)
	ok.On("Terminate", mock.Anything).Return(nil).Once()
	broken.On("Initialize", mock.Anything).Return(nil).Once()
	broken.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()
	broken.On("Terminate", mock.Anything).Return(nil).Once()

	v := episode()
	v.AddSubtitles(video.ExistingSubtitle{Language: language.English})
	done := episode()
	done.AddSubtitles(video.ExistingSubtitle{Language: language.English}, video.ExistingSubtitle{Language: language.French})

	got, err := ListSubtitles(context.Background(), []video.Video{v, done},
		languages.NewSet(language.English, language.French),
		Options{Registry: registry(t, map[string]*mockProvider{"ok": ok, "broken": broken}), Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, map[video.Video][]subtitle.Subtitle{v: {sub}}, got, "only the missing language is asked and the complete video is skipped")
	ok.AssertExpectations(t)
	broken.AssertExpectations(t)
}

func TestListSubtitlesUnknownProvider(t *testing.T) {
	_, err := ListSubtitles(context.Background(), []video.Video{episode()}, languages.NewSet(language.English),
		Options{Registry: registry(t, map[string]*mockProvider{}), Providers: []string{"nope"}, Logger: quietLogger()})
	assert.ErrorIs(t, err, coreerrors.ErrUnknownProvider)
}

func TestListSubtitlesNothingToDo(t *testing.T) {
	v := episode()
	v.AddSubtitles(video.ExistingSubtitle{Language: language.English})
	got, err := ListSubtitles(context.Background(), []video.Video{v}, languages.NewSet(language.English),
		Options{Registry: registry(t, map[string]*mockProvider{}), Providers: []string{"nope"}, Logger: quietLogger()})
	require.NoError(t, err, "no pool is built when every video is skipped")
	assert.Empty(t, got)
}

func TestDownloadSubtitles(t *testing.T) {
	p := &mockProvider{}
	good, bad := newSub("p", "1", language.English), newSub("p", "2", language.English)
	p.On("Initialize", mock.Anything).Return(nil).Once()
	p.On("DownloadSubtitle", mock.Anything, good).Run(fillContent).Return(nil)
	p.On("DownloadSubtitle", mock.Anything, bad).Return(nil)
	p.On("Terminate", mock.Anything).Return(nil).Once()

	err := DownloadSubtitles(context.Background(), []subtitle.Subtitle{good, bad},
		Options{Registry: registry(t, map[string]*mockProvider{"p": p}), Logger: quietLogger()})
	require.NoError(t, err)
	assert.True(t, good.IsValid())
	assert.Nil(t, bad.Content)
	p.AssertExpectations(t)
}

func TestDownloadBest(t *testing.T) {
	p1, p2 := &mockProvider{}, &mockProvider{}
	low := newSub("p1", "low", language.English, matches.Series)
	high := newSub("p2", "high", language.English, matches.Series, matches.Season, matches.Episode)
	fr := newSub("p2", "fr", language.French, matches.Series, matches.Season, matches.Episode)

	p1.On("Initialize", mock.Anything).Return(nil)
	p1.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return([]subtitle.Subtitle{low}, nil)
	p1.On("Terminate", mock.Anything).Return(nil)
	p2.On("Initialize", mock.Anything).Return(nil)
	p2.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return([]subtitle.Subtitle{high, fr}, nil)
	p2.On("DownloadSubtitle", mock.Anything, mock.Anything).Run(fillContent).Return(nil)
	p2.On("Terminate", mock.Anything).Return(nil)

	for _, newPool := range []pool.NewFunc{nil, pool.NewAsyncPool} {
		v := episode()
		res, err := DownloadBest(context.Background(), []video.Video{v},
			languages.NewSet(language.English, language.French),
			BestOptions{
				Options: Options{
					Registry:  registry(t, map[string]*mockProvider{"p1": p1, "p2": p2}),
					Providers: []string{"p1", "p2"},
					NewPool:   newPool,
					Logger:    quietLogger(),
				},
				OnlyOne: true,
			})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Listed[v])
		require.Len(t, res.Downloaded[v], 1)
		assert.Equal(t, "high", res.Downloaded[v][0].Key().ID)
		assert.Equal(t, 1, res.Collected())
		assert.Empty(t, res.Discarded)
	}
	p1.AssertNotCalled(t, "DownloadSubtitle", mock.Anything, mock.Anything)
}

func TestDownloadBestMinScoreAndSkip(t *testing.T) {
	p := &mockProvider{}
	weak := newSub("p", "weak", language.English, matches.Season)
	p.On("Initialize", mock.Anything).Return(nil)
	p.On("ListSubtitles", mock.Anything, mock.Anything, mock.Anything).Return([]subtitle.Subtitle{weak}, nil)
	p.On("Terminate", mock.Anything).Return(nil)

	v, undefined := episode(), episode()
	undefined.AddSubtitles(video.ExistingSubtitle{Language: language.Und})

	got, err := DownloadBestSubtitles(context.Background(), []video.Video{v, undefined}, languages.NewSet(language.English),
		BestOptions{
			Options:  Options{Registry: registry(t, map[string]*mockProvider{"p": p}), Logger: quietLogger()},
			MinScore: 1000,
			OnlyOne:  true,
		})
	require.NoError(t, err)
	assert.Empty(t, got[v])
	_, queried := got[undefined]
	assert.False(t, queried)
	p.AssertNotCalled(t, "DownloadSubtitle", mock.Anything, mock.Anything)
	p.AssertNumberOfCalls(t, "ListSubtitles", 1)
}

func TestDownloadBestReportsDiscarded(t *testing.T) {
	p := &mockProvider{}
	p.On("Initialize", mock.Anything).Return(errors.New("login failed"))

	res, err := DownloadBest(context.Background(), []video.Video{episode()}, languages.NewSet(language.English),
		BestOptions{Options: Options{Registry: registry(t, map[string]*mockProvider{"p": p}), Logger: quietLogger()}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, res.Discarded)
	assert.Zero(t, res.Collected())
}

func TestRefine(t *testing.T) {
	r := refiners.NewRegistry()
	require.NoError(t, r.Register("year", func(provider.Config, provider.Env) (refiners.Refiner, error) {
		return refiners.RefinerFunc(func(_ context.Context, v video.Video) error {
			v.Info().Year = 2007
			return nil
		}), nil
	}))

	v := episode()
	require.NoError(t, Refine(context.Background(), v, RefineOptions{Registry: r, Refiners: []string{"year"}, Logger: quietLogger()}))
	assert.Equal(t, 2007, v.Year)

	err := Refine(context.Background(), v, RefineOptions{Registry: r, Refiners: []string{"nope"}, Logger: quietLogger()})
	assert.ErrorIs(t, err, coreerrors.ErrUnknownRefiner)
}
