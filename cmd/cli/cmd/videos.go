package cmd

import (
	"context"
	"fmt"

	"github.com/angelospk/subfinder"
	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/pool"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/angelospk/subfinder/pkg/scanner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// commonFlags are shared by the commands that query providers.
type commonFlags struct {
	languages  []string
	providers  []string
	refiners   []string
	recursive  bool
	age        string
	maxWorkers int
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.languages, "language", "l", nil, "Language codes to search for (e.g., en,pt-BR); defaults to the 'languages' setting")
	cmd.Flags().StringSliceVarP(&f.providers, "provider", "p", nil, "Providers to use, in priority order (default: all)")
	cmd.Flags().StringSliceVarP(&f.refiners, "refiner", "r", nil, "Refiners to run, in order (default: hash,nfo,trakt,imdb)")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "R", false, "Scan directories recursively")
	cmd.Flags().StringVarP(&f.age, "age", "a", "", "Skip videos older than this (e.g., 2w, 3d12h)")
	cmd.Flags().IntVarP(&f.maxWorkers, "max-workers", "w", 0, "Providers queried in parallel (default: one per provider)")
}

func (f *commonFlags) languageSet() (languages.Set, error) {
	codes := f.languages
	if len(codes) == 0 {
		codes = viper.GetStringSlice(CfgKeyDefaultLangs)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("at least one --language is required")
	}
	return languages.ParseSet(codes...)
}

func (f *commonFlags) providerNames() []string {
	if len(f.providers) > 0 {
		return f.providers
	}
	if names := viper.GetStringSlice(CfgKeyDefaultProvs); len(names) > 0 {
		return names
	}
	return nil
}

func (f *commonFlags) refinerNames() []string {
	if len(f.refiners) > 0 {
		return f.refiners
	}
	if names := viper.GetStringSlice(CfgKeyDefaultRefiner); len(names) > 0 {
		return names
	}
	return nil
}

// session is the state one command run shares between scanning, refining
// and querying.
type session struct {
	logger *logrus.Logger
	cache  cache.Store
	close  func()
	flags  *commonFlags
}

func newSession(cmd *cobra.Command, flags *commonFlags) (*session, error) {
	logger := newLogger(cmd)
	store, closeCache, err := openCache(logger)
	if err != nil {
		return nil, err
	}
	return &session{logger: logger, cache: store, close: closeCache, flags: flags}, nil
}

func (s *session) options() (subfinder.Options, error) {
	age, err := parseAge(s.flags.age)
	if err != nil {
		return subfinder.Options{}, err
	}
	registry := NewRegistryFunc()
	names := s.flags.providerNames()
	configNames := names
	if configNames == nil {
		configNames = registry.Names()
	}
	return subfinder.Options{
		Registry:        registry,
		Providers:       names,
		ProviderConfigs: sectionConfigs(configNames),
		NewPool:         pool.NewAsyncPool,
		MaxWorkers:      s.flags.maxWorkers,
		MaxAge:          age,
		Cache:           s.cache,
		Logger:          s.logger,
	}, nil
}

// scan collects the videos under paths and refines them. Paths that cannot
// be scanned are counted and logged.
func (s *session) scan(ctx context.Context, paths []string) ([]video.Video, int, error) {
	sc := scanner.New(s.logger)
	var (
		videos  []video.Video
		errored int
	)
	for _, path := range paths {
		found, err := sc.ScanVideos(ctx, path, s.flags.recursive)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errored, ctx.Err()
			}
			s.logger.WithError(err).WithField("path", path).Error("Failed to scan")
			errored++
			continue
		}
		videos = append(videos, found...)
	}

	names := s.flags.refinerNames()
	refs, err := subfinder.BuildRefiners(subfinder.RefineOptions{
		Registry: NewRefinerRegistryFunc(),
		Refiners: names,
		Configs:  sectionConfigs([]string{"trakt"}),
		Cache:    s.cache,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, errored, err
	}
	workers := s.flags.maxWorkers
	if workers < 1 {
		workers = 4
	}
	sc.Refine(ctx, videos, refs, workers)
	return videos, errored, nil
}
