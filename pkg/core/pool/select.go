package pool

import (
	"context"
	"sort"

	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/score"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	log "github.com/sirupsen/logrus"
)

// SelectOptions tune DownloadBestSubtitles.
type SelectOptions struct {
	// MinScore is the lowest score worth downloading.
	MinScore int
	Score    score.Options
	// SkipWrongFPS drops subtitles whose known frame rate differs from the
	// video's known frame rate.
	SkipWrongFPS bool
	// OnlyOne stops after the first successful download.
	OnlyOne bool
	Ignore  []subtitle.Key
	// Compute defaults to score.Compute.
	Compute score.Func
}

type scored struct {
	sub   subtitle.Subtitle
	score int
}

type downloadFunc func(ctx context.Context, sub subtitle.Subtitle) bool

// selectBest is a single greedy pass over the candidates sorted by score.
// Ties keep the input order. It stops at the first candidate below
// MinScore, once every language in langs is covered, or after one download
// with OnlyOne. A failed download just moves on to the next candidate.
func selectBest(ctx context.Context, logger *log.Logger, download downloadFunc, subs []subtitle.Subtitle, v video.Video, langs languages.Set, opts SelectOptions) []subtitle.Subtitle {
	compute := opts.Compute
	if compute == nil {
		compute = score.Compute
	}
	ignored := make(map[subtitle.Key]struct{}, len(opts.Ignore))
	for _, k := range opts.Ignore {
		ignored[k] = struct{}{}
	}

	candidates := make([]scored, 0, len(subs))
	for _, s := range subs {
		entry := logger.WithFields(log.Fields{"subtitle": s.Key().String(), "video": v.String()})
		if _, skip := ignored[s.Key()]; skip {
			entry.Debug("Ignoring subtitle")
			continue
		}
		if opts.SkipWrongFPS && !matches.FPSMatches(v.Info().FrameRate, s.Info().FrameRate) {
			entry.WithFields(log.Fields{"video_fps": v.Info().FrameRate, "subtitle_fps": s.Info().FrameRate}).Debug("Skipping subtitle with wrong frame rate")
			continue
		}
		c := scored{sub: s, score: compute(s, v, opts.Score)}
		entry.WithField("score", c.score).Debug("Computed score")
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var downloaded []subtitle.Subtitle
	got := languages.NewSet()
	for _, c := range candidates {
		entry := logger.WithFields(log.Fields{"subtitle": c.sub.Key().String(), "score": c.score})
		if c.score < opts.MinScore {
			entry.WithField("min_score", opts.MinScore).Info("Score is below minimum, stopping")
			break
		}
		lang := c.sub.Info().Language
		if got.Contains(lang) {
			entry.Debug("Language already downloaded")
			continue
		}
		if !download(ctx, c.sub) {
			continue
		}
		entry.Info("Downloaded subtitle")
		downloaded = append(downloaded, c.sub)
		got.Add(lang)

		if got.Covers(langs) {
			logger.WithField("video", v.String()).Debug("All languages downloaded")
			break
		}
		if opts.OnlyOne {
			logger.WithField("video", v.String()).Debug("Only one subtitle downloaded")
			break
		}
	}
	return downloaded
}
