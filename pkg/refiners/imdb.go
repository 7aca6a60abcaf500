package refiners

import (
	"context"

	"github.com/angelospk/subfinder/pkg/core/imdb"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/video"
)

type imdbSearcher interface {
	Search(ctx context.Context, query string) ([]imdb.Suggestion, error)
}

type imdbRefiner struct {
	client imdbSearcher
}

// NewIMDb builds the refiner that looks up missing IMDb IDs by title.
func NewIMDb(_ provider.Config, env provider.Env) (Refiner, error) {
	return &imdbRefiner{client: imdb.NewClient(env.Cache, env.Logger)}, nil
}

func (r *imdbRefiner) Refine(ctx context.Context, v video.Video) error {
	switch v := v.(type) {
	case *video.Movie:
		if v.ImdbID != "" || v.Title == "" {
			return nil
		}
		s, err := r.find(ctx, v.Title, v.Year, imdb.KindMovie)
		if err != nil || s == nil {
			return err
		}
		v.ImdbID = s.ID
		if v.Year == 0 {
			v.Year = s.Year
		}
	case *video.Episode:
		if v.SeriesImdbID != "" || v.Series == "" {
			return nil
		}
		s, err := r.find(ctx, v.Series, v.Year, imdb.KindSeries)
		if err != nil || s == nil {
			return err
		}
		v.SeriesImdbID = s.ID
	}
	return nil
}

// find returns the first suggestion of the right kind whose title matches and
// whose year agrees when both are known.
func (r *imdbRefiner) find(ctx context.Context, title string, year int, kind imdb.Kind) (*imdb.Suggestion, error) {
	suggestions, err := r.client.Search(ctx, title)
	if err != nil {
		return nil, err
	}
	want := matches.Sanitize(title)
	for i := range suggestions {
		s := &suggestions[i]
		if s.Kind != kind || matches.Sanitize(s.Title) != want {
			continue
		}
		if year != 0 && s.Year != 0 && s.Year != year {
			continue
		}
		return s, nil
	}
	return nil, nil
}
