package refiners

import (
	"context"
	"fmt"

	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/trakt"
	"github.com/angelospk/subfinder/pkg/core/video"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

type traktSearcher interface {
	SearchTrakt(ctx context.Context, queryType, query string, year int) ([]trakt.SearchResult, error)
	GetEpisode(ctx context.Context, show string, season, number int) (*trakt.Episode, error)
}

type traktRefiner struct {
	client traktSearcher
	logger *log.Logger
}

// NewTrakt builds the Trakt refiner from the "clientid" setting. Without a
// client id the refiner does nothing.
func NewTrakt(cfg provider.Config, env provider.Env) (Refiner, error) {
	logger := env.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	id := cfg.String("clientid")
	if id == "" {
		return &traktRefiner{logger: logger}, nil
	}
	client, err := trakt.NewClient(id, env.Cache)
	if err != nil {
		return nil, err
	}
	return &traktRefiner{client: client, logger: logger}, nil
}

func (r *traktRefiner) Refine(ctx context.Context, v video.Video) error {
	if r.client == nil {
		r.logger.Debug("Trakt refiner has no client id, skipping")
		return nil
	}
	switch v := v.(type) {
	case *video.Episode:
		return r.refineEpisode(ctx, v)
	case *video.Movie:
		return r.refineMovie(ctx, v)
	}
	return nil
}

// pick returns the first result whose title matches one of names and whose
// year agrees when both are known.
func pick(results []trakt.SearchResult, names []string, year int) (trakt.SearchResult, bool) {
	for _, res := range results {
		if year != 0 && res.Year != 0 && res.Year != year {
			continue
		}
		title := matches.Sanitize(res.Title)
		for _, n := range names {
			if n != "" && matches.Sanitize(n) == title {
				return res, true
			}
		}
	}
	return trakt.SearchResult{}, false
}

func (r *traktRefiner) refineEpisode(ctx context.Context, e *video.Episode) error {
	if e.Series == "" {
		return nil
	}
	results, err := r.client.SearchTrakt(ctx, "show", e.Series, e.Year)
	if err != nil {
		return fmt.Errorf("search show %q: %w", e.Series, err)
	}
	show, ok := pick(results, append([]string{e.Series}, e.AlternativeSeries...), e.Year)
	if !ok {
		r.logger.WithField("series", e.Series).Debug("No matching show on Trakt")
		return nil
	}

	if e.Year == 0 {
		e.Year = show.Year
	}
	if e.Country == "" {
		e.Country = show.Country
	}
	if e.SeriesImdbID == "" {
		e.SeriesImdbID = show.IDs.Imdb
	}
	if e.SeriesTvdbID == 0 {
		e.SeriesTvdbID = cast.ToInt(show.IDs.Tvdb)
	}
	if e.SeriesTmdbID == 0 {
		e.SeriesTmdbID = cast.ToInt(show.IDs.Tmdb)
	}

	if e.Season == 0 || e.Episode == 0 {
		return nil
	}
	ref := show.IDs.Slug
	if ref == "" {
		ref = show.IDs.Trakt
	}
	ep, err := r.client.GetEpisode(ctx, ref, e.Season, e.Episode)
	if err != nil {
		return fmt.Errorf("episode %s s%02de%02d: %w", ref, e.Season, e.Episode, err)
	}
	if e.Title == "" {
		e.Title = ep.Title
	}
	if e.ImdbID == "" {
		e.ImdbID = ep.IDs.Imdb
	}
	if e.TvdbID == 0 {
		e.TvdbID = cast.ToInt(ep.IDs.Tvdb)
	}
	if e.TmdbID == 0 {
		e.TmdbID = cast.ToInt(ep.IDs.Tmdb)
	}
	return nil
}

func (r *traktRefiner) refineMovie(ctx context.Context, m *video.Movie) error {
	if m.Title == "" {
		return nil
	}
	results, err := r.client.SearchTrakt(ctx, "movie", m.Title, m.Year)
	if err != nil {
		return fmt.Errorf("search movie %q: %w", m.Title, err)
	}
	movie, ok := pick(results, append([]string{m.Title}, m.AlternativeTitles...), m.Year)
	if !ok {
		r.logger.WithField("title", m.Title).Debug("No matching movie on Trakt")
		return nil
	}
	if m.Year == 0 {
		m.Year = movie.Year
	}
	if m.Country == "" {
		m.Country = movie.Country
	}
	if m.ImdbID == "" {
		m.ImdbID = movie.IDs.Imdb
	}
	if m.TmdbID == 0 {
		m.TmdbID = cast.ToInt(movie.IDs.Tmdb)
	}
	return nil
}
