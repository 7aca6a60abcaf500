package refiners

import (
	"context"
	"os"

	"github.com/angelospk/subfinder/pkg/core/fileops"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/video"
)

type hashRefiner struct{}

// NewHash builds the refiner that computes the OpenSubtitles hash and the
// size of the video file. Videos without a readable file are left alone.
func NewHash(provider.Config, provider.Env) (Refiner, error) {
	return hashRefiner{}, nil
}

func (hashRefiner) Refine(ctx context.Context, v video.Video) error {
	b := v.Info()
	if _, ok := b.Hash(fileops.OSDbHashName); ok {
		return nil
	}
	if info, err := os.Stat(b.Name); err != nil || info.IsDir() {
		return nil
	}
	hash, size, err := fileops.CalculateOSDbHash(b.Name)
	if size > 0 {
		b.Size = size
	}
	if err != nil {
		return err
	}
	b.SetHash(fileops.OSDbHashName, hash)
	return nil
}
