package refiners

import (
	"context"

	"github.com/angelospk/subfinder/pkg/core/fileops"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/video"
)

type nfoRefiner struct{}

// NewNFO builds the refiner that reads an IMDb ID from the .nfo file next to
// a movie.
func NewNFO(provider.Config, provider.Env) (Refiner, error) {
	return nfoRefiner{}, nil
}

func (nfoRefiner) Refine(ctx context.Context, v video.Video) error {
	m, ok := v.(*video.Movie)
	if !ok || m.ImdbID != "" {
		return nil
	}
	path := fileops.FindNFO(m.Name)
	if path == "" {
		return nil
	}
	id, err := fileops.ReadNFO(ctx, path)
	if err != nil {
		return err
	}
	if id != "" {
		m.ImdbID = id
	}
	return nil
}
