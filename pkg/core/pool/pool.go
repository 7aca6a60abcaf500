// Package pool runs providers for one batch of work: it gates, lazily
// initializes and calls them, discards the ones that fail and terminates the
// rest.
package pool

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/angelospk/subfinder/pkg/core/cache"
	coreerrors "github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	log "github.com/sirupsen/logrus"
)

// Pool is the surface orchestration needs from a provider pool.
type Pool interface {
	ListSubtitlesProvider(ctx context.Context, name string, v video.Video, langs languages.Set) []subtitle.Subtitle
	ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) []subtitle.Subtitle
	DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) bool
	DownloadBestSubtitles(ctx context.Context, subs []subtitle.Subtitle, v video.Video, langs languages.Set, opts SelectOptions) []subtitle.Subtitle
	Terminate(ctx context.Context)
	Discarded() []string
}

// NewFunc constructs a pool. New and NewAsync both satisfy it.
type NewFunc func(registry *provider.Registry, opts Options) (Pool, error)

// Options configure a pool.
type Options struct {
	// Providers to use, in priority order. Nil means every registered one,
	// a non-nil empty slice means none.
	Providers []string
	Configs   map[string]provider.Config
	Cache     cache.Store
	Logger    *log.Logger
	// MaxWorkers bounds the async fan-out. Ignored by the synchronous pool.
	MaxWorkers int
}

var (
	_ Pool    = (*ProviderPool)(nil)
	_ NewFunc = NewSync
)

// ProviderPool queries its providers one after another in the calling
// goroutine. A pool serves one batch and must be terminated afterwards.
type ProviderPool struct {
	registry *provider.Registry
	names    []string
	configs  map[string]provider.Config
	env      provider.Env
	logger   *log.Logger

	mu          sync.Mutex
	initialized map[string]provider.Provider
	discarded   map[string]struct{}
}

// New validates the provider names against the registry and returns a pool.
// Unknown names fail with ErrUnknownProvider.
func New(registry *provider.Registry, opts Options) (*ProviderPool, error) {
	names := opts.Providers
	if names == nil {
		names = registry.Names()
	}
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := registry.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", coreerrors.ErrUnknownProvider, name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetFormatter(&log.TextFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(log.InfoLevel)
	}
	return &ProviderPool{
		registry:    registry,
		names:       unique,
		configs:     opts.Configs,
		env:         provider.Env{Logger: logger, Cache: opts.Cache},
		logger:      logger,
		initialized: make(map[string]provider.Provider),
		discarded:   make(map[string]struct{}),
	}, nil
}

// NewSync is New behind the Pool interface.
func NewSync(registry *provider.Registry, opts Options) (Pool, error) {
	p, err := New(registry, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Providers returns the configured provider names in priority order.
func (p *ProviderPool) Providers() []string {
	return append([]string(nil), p.names...)
}

// Discarded returns the names of providers dropped after a failure, sorted.
func (p *ProviderPool) Discarded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.discarded))
	for name := range p.discarded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p *ProviderPool) isDiscarded(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.discarded[name]
	return ok
}

func (p *ProviderPool) discard(name, op string, err error) {
	p.mu.Lock()
	p.discarded[name] = struct{}{}
	p.mu.Unlock()
	p.logger.WithFields(log.Fields{"provider": name, "op": op}).WithError(err).Warn("Discarding provider")
}

func (p *ProviderPool) configured(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}

// instance returns the initialized provider, initializing it on first use.
// Each name is only ever initialized from one goroutine at a time.
func (p *ProviderPool) instance(ctx context.Context, name string, reg provider.Registration) (provider.Provider, error) {
	p.mu.Lock()
	prov, ok := p.initialized[name]
	p.mu.Unlock()
	if ok {
		return prov, nil
	}

	p.logger.WithField("provider", name).Info("Initializing provider")
	err := safely(func() error {
		var err error
		prov, err = reg.New(p.configs[name], p.env)
		if err != nil {
			return err
		}
		return prov.Initialize(ctx)
	})
	if err != nil {
		return nil, coreerrors.Wrap(name, "initialize", err)
	}

	p.mu.Lock()
	p.initialized[name] = prov
	p.mu.Unlock()
	return prov, nil
}

// gate returns the registration and the languages to ask name for, or false
// when the provider must not be queried for v.
func (p *ProviderPool) gate(name string, v video.Video, langs languages.Set) (provider.Registration, languages.Set, bool) {
	logger := p.logger.WithFields(log.Fields{"provider": name, "video": v.String()})
	if p.isDiscarded(name) {
		logger.Debug("Skipping discarded provider")
		return provider.Registration{}, nil, false
	}
	reg, ok := p.registry.Lookup(name)
	if !ok {
		logger.Warn("Provider not registered")
		return provider.Registration{}, nil, false
	}
	effective, reason := provider.Gate(reg.Capabilities, v, langs)
	if reason != provider.Eligible {
		logger.WithField("reason", reason.String()).Debug("Skipping provider")
		return provider.Registration{}, nil, false
	}
	return reg, effective, true
}

// fetch initializes and queries a provider that already passed the gate.
func (p *ProviderPool) fetch(ctx context.Context, name string, reg provider.Registration, v video.Video, langs languages.Set) []subtitle.Subtitle {
	prov, err := p.instance(ctx, name, reg)
	if err != nil {
		p.discard(name, "initialize", err)
		return nil
	}

	logger := p.logger.WithFields(log.Fields{"provider": name, "video": v.String(), "languages": langs.String()})
	logger.Info("Listing subtitles")
	var subs []subtitle.Subtitle
	err = safely(func() error {
		var err error
		subs, err = prov.ListSubtitles(ctx, v, langs)
		return err
	})
	if err != nil {
		p.discard(name, "list", coreerrors.Wrap(name, "list", err))
		return nil
	}
	logger.WithField("count", len(subs)).Debug("Listed subtitles")
	return subs
}

// ListSubtitlesProvider lists the subtitles of a single provider. Discarded,
// ineligible and failing providers yield nothing.
func (p *ProviderPool) ListSubtitlesProvider(ctx context.Context, name string, v video.Video, langs languages.Set) []subtitle.Subtitle {
	reg, effective, ok := p.gate(name, v, langs)
	if !ok {
		return nil
	}
	return p.fetch(ctx, name, reg, v, effective)
}

// ListSubtitles lists subtitles from every configured provider in order. A
// failing provider is discarded and the others still run.
func (p *ProviderPool) ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) []subtitle.Subtitle {
	var out []subtitle.Subtitle
	dispatched := 0
	for _, name := range p.names {
		reg, effective, ok := p.gate(name, v, langs)
		if !ok {
			continue
		}
		dispatched++
		out = append(out, p.fetch(ctx, name, reg, v, effective)...)
	}
	if dispatched == 0 {
		p.logNoProvider(v)
	}
	return out
}

// logNoProvider tells an empty provider list apart from providers that were
// all turned away for v.
func (p *ProviderPool) logNoProvider(v video.Video) {
	logger := p.logger.WithField("video", v.String())
	if len(p.names) == 0 {
		logger.Info("No provider selected")
		return
	}
	logger.WithField("providers", len(p.names)).Info("No provider matched the video")
}

// DownloadSubtitle downloads sub through its provider and reports whether the
// result holds valid content. On failure the content is cleared.
func (p *ProviderPool) DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) bool {
	key := sub.Key()
	logger := p.logger.WithFields(log.Fields{"provider": key.Provider, "subtitle": key.String()})

	if p.isDiscarded(key.Provider) {
		logger.Warn("Provider discarded, not downloading")
		return false
	}
	reg, ok := p.registry.Lookup(key.Provider)
	if !ok || !p.configured(key.Provider) {
		logger.Warn("Provider not in pool, not downloading")
		return false
	}
	prov, err := p.instance(ctx, key.Provider, reg)
	if err != nil {
		p.discard(key.Provider, "initialize", err)
		return false
	}

	logger.Info("Downloading subtitle")
	err = safely(func() error { return prov.DownloadSubtitle(ctx, sub) })
	if err != nil {
		sub.Info().Content = nil
		if coreerrors.Is(err, coreerrors.ErrArchive) {
			logger.WithError(err).Error("Bad archive")
		} else {
			p.discard(key.Provider, "download", coreerrors.Wrap(key.Provider, "download", err))
		}
	}

	if !sub.IsValid() {
		logger.Error("Invalid subtitle")
		return false
	}
	return true
}

// DownloadBestSubtitles selects and downloads the best candidates. See
// SelectOptions.
func (p *ProviderPool) DownloadBestSubtitles(ctx context.Context, subs []subtitle.Subtitle, v video.Video, langs languages.Set, opts SelectOptions) []subtitle.Subtitle {
	return selectBest(ctx, p.logger, p.DownloadSubtitle, subs, v, langs, opts)
}

// Terminate terminates every initialized provider. Failures are logged and
// do not stop the others. Safe to call more than once.
func (p *ProviderPool) Terminate(ctx context.Context) {
	p.mu.Lock()
	initialized := p.initialized
	p.initialized = make(map[string]provider.Provider)
	p.mu.Unlock()

	for _, name := range p.names {
		prov, ok := initialized[name]
		if !ok {
			continue
		}
		logger := p.logger.WithField("provider", name)
		logger.Info("Terminating provider")
		if err := safely(func() error { return prov.Terminate(ctx) }); err != nil {
			logger.WithError(err).Error("Failed to terminate provider")
		}
	}
}

// safely runs fn and turns a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
