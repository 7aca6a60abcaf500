// Package subfinder finds, scores and downloads subtitles for batches of
// videos through a set of providers.
package subfinder

import (
	"context"
	"os"
	"time"

	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/pool"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/score"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/angelospk/subfinder/pkg/providers"
	"github.com/angelospk/subfinder/pkg/refiners"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Options select the providers used for one batch.
type Options struct {
	// Registry defaults to providers.DefaultRegistry().
	Registry *provider.Registry
	// Providers in priority order. Nil means every registered provider.
	Providers       []string
	ProviderConfigs map[string]provider.Config
	// NewPool defaults to pool.NewSync.
	NewPool    pool.NewFunc
	MaxWorkers int
	// MaxAge skips videos modified longer ago. Zero disables the check.
	MaxAge time.Duration
	Cache  cache.Store
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(log.InfoLevel)
	return logger
}

// open builds the pool for one batch. The caller must terminate it.
func (o Options) open(logger *log.Logger) (pool.Pool, error) {
	registry := o.Registry
	if registry == nil {
		registry = providers.DefaultRegistry()
	}
	newPool := o.NewPool
	if newPool == nil {
		newPool = pool.NewSync
	}
	return newPool(registry, pool.Options{
		Providers:  o.Providers,
		Configs:    o.ProviderConfigs,
		Cache:      o.Cache,
		Logger:     logger,
		MaxWorkers: o.MaxWorkers,
	})
}

// CheckVideo reports whether v still needs subtitles. It fails when every
// language in langs is already present, when v is older than age (if age is
// positive and the modification time is known), or when undefined is set and
// v already has a subtitle of undetermined language.
func CheckVideo(v video.Video, langs languages.Set, age time.Duration, undefined bool) bool {
	existing := v.Info().SubtitleLanguages()
	if langs.Len() > 0 && langs.Difference(existing).Len() == 0 {
		return false
	}
	if modified := v.Info().Modified; age > 0 && !modified.IsZero() && time.Since(modified) > age {
		return false
	}
	if undefined && existing.Contains(language.Und) {
		return false
	}
	return true
}

// checkVideos keeps the videos that pass CheckVideo.
func checkVideos(logger *log.Logger, videos []video.Video, langs languages.Set, age time.Duration, undefined bool) (checked, skipped []video.Video) {
	for _, v := range videos {
		if !CheckVideo(v, langs, age, undefined) {
			logger.WithField("video", v.String()).Info("Skipping video")
			skipped = append(skipped, v)
			continue
		}
		checked = append(checked, v)
	}
	return checked, skipped
}

// ListSubtitles lists the subtitles of every video for the languages it does
// not have yet. Provider failures are logged and only discard the provider;
// the error is reserved for configuration faults such as an unknown provider.
func ListSubtitles(ctx context.Context, videos []video.Video, langs languages.Set, opts Options) (map[video.Video][]subtitle.Subtitle, error) {
	logger := opts.logger()
	listed := make(map[video.Video][]subtitle.Subtitle)

	checked, _ := checkVideos(logger, videos, langs, opts.MaxAge, false)
	if len(checked) == 0 {
		return listed, nil
	}

	p, err := opts.open(logger)
	if err != nil {
		return nil, err
	}
	defer p.Terminate(ctx)

	for _, v := range checked {
		logger.WithField("video", v.String()).Info("Listing subtitles")
		listed[v] = append(listed[v], p.ListSubtitles(ctx, v, langs.Difference(v.Info().SubtitleLanguages()))...)
	}
	return listed, nil
}

// DownloadSubtitles downloads the content of subs in place. A subtitle that
// fails keeps nil content.
func DownloadSubtitles(ctx context.Context, subs []subtitle.Subtitle, opts Options) error {
	if len(subs) == 0 {
		return nil
	}
	logger := opts.logger()
	p, err := opts.open(logger)
	if err != nil {
		return err
	}
	defer p.Terminate(ctx)

	for _, sub := range subs {
		logger.WithField("subtitle", sub.Key().String()).Info("Downloading subtitle")
		p.DownloadSubtitle(ctx, sub)
	}
	return nil
}

// BestOptions tune DownloadBestSubtitles.
type BestOptions struct {
	Options
	MinScore int
	// MinScorePercent, when positive, replaces MinScore with that share of
	// the best score for each video's kind.
	MinScorePercent int
	HearingImpaired score.Preference
	ForeignOnly     score.Preference
	SkipWrongFPS    bool
	// OnlyOne keeps a single subtitle per video and skips videos that already
	// have one of undetermined language.
	OnlyOne bool
	Ignore  []subtitle.Key
	Compute score.Func
}

func (o BestOptions) selectOptions() pool.SelectOptions {
	return pool.SelectOptions{
		MinScore:     o.MinScore,
		Score:        score.Options{HearingImpaired: o.HearingImpaired, ForeignOnly: o.ForeignOnly},
		SkipWrongFPS: o.SkipWrongFPS,
		OnlyOne:      o.OnlyOne,
		Ignore:       o.Ignore,
		Compute:      o.Compute,
	}
}

// Result summarizes a DownloadBest batch.
type Result struct {
	// Downloaded maps every queried video to its downloaded subtitles.
	Downloaded map[video.Video][]subtitle.Subtitle
	// Listed counts the candidates found per queried video.
	Listed map[video.Video]int
	// Skipped are the videos CheckVideo turned away.
	Skipped []video.Video
	// Discarded are the providers dropped during the batch.
	Discarded []string
}

// Collected counts the downloaded subtitles across videos.
func (r *Result) Collected() int {
	n := 0
	for _, subs := range r.Downloaded {
		n += len(subs)
	}
	return n
}

// DownloadBest lists then downloads the best subtitles of each video with a
// single pool, and reports what happened.
func DownloadBest(ctx context.Context, videos []video.Video, langs languages.Set, opts BestOptions) (*Result, error) {
	logger := opts.logger()
	res := &Result{
		Downloaded: make(map[video.Video][]subtitle.Subtitle),
		Listed:     make(map[video.Video]int),
	}

	checked, skipped := checkVideos(logger, videos, langs, opts.MaxAge, opts.OnlyOne)
	res.Skipped = skipped
	if len(checked) == 0 {
		return res, nil
	}

	p, err := opts.open(logger)
	if err != nil {
		return nil, err
	}
	defer p.Terminate(ctx)

	for _, v := range checked {
		sel := opts.selectOptions()
		if opts.MinScorePercent > 0 {
			sel.MinScore = score.MinScoreFromPercent(score.For(v.Kind()), opts.MinScorePercent)
		}
		entry := logger.WithField("video", v.String())
		entry.Info("Listing subtitles")
		subs := p.ListSubtitles(ctx, v, langs.Difference(v.Info().SubtitleLanguages()))
		res.Listed[v] = len(subs)

		downloaded := p.DownloadBestSubtitles(ctx, subs, v, langs, sel)
		entry.WithFields(log.Fields{"listed": len(subs), "downloaded": len(downloaded)}).Info("Done with video")
		res.Downloaded[v] = downloaded
	}
	res.Discarded = p.Discarded()
	return res, nil
}

// DownloadBestSubtitles downloads the best subtitles of each video and
// returns them per video.
func DownloadBestSubtitles(ctx context.Context, videos []video.Video, langs languages.Set, opts BestOptions) (map[video.Video][]subtitle.Subtitle, error) {
	res, err := DownloadBest(ctx, videos, langs, opts)
	if err != nil {
		return nil, err
	}
	return res.Downloaded, nil
}

// RefineOptions select the refiners applied to a video.
type RefineOptions struct {
	// Registry defaults to refiners.Default().
	Registry *refiners.Registry
	// Refiners in order. Nil means refiners.DefaultOrder.
	Refiners []string
	Configs  map[string]provider.Config
	Cache    cache.Store
	Logger   *log.Logger
}

// Refine runs the configured refiners on v in order. Refiner failures are
// logged; the error is only returned for an unknown or misconfigured refiner.
func Refine(ctx context.Context, v video.Video, opts RefineOptions) error {
	refs, err := BuildRefiners(opts)
	if err != nil {
		return err
	}
	refiners.Run(ctx, v, refs, Options{Logger: opts.Logger}.logger())
	return nil
}

// BuildRefiners constructs the refiners named in opts once, so a batch can
// reuse them across videos.
func BuildRefiners(opts RefineOptions) ([]refiners.Named, error) {
	registry := opts.Registry
	if registry == nil {
		registry = refiners.Default()
	}
	names := opts.Refiners
	if names == nil {
		names = refiners.DefaultOrder
	}
	logger := Options{Logger: opts.Logger}.logger()
	return registry.Build(names, opts.Configs, provider.Env{Logger: logger, Cache: opts.Cache})
}
