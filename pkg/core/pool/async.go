package pool

import (
	"context"
	"sync"

	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MaxWorkersLimit caps the async fan-out.
const MaxWorkersLimit = 50

var (
	_ Pool    = (*AsyncProviderPool)(nil)
	_ NewFunc = NewAsyncPool
)

// AsyncProviderPool lists subtitles from its providers concurrently.
// Downloads and termination stay sequential.
type AsyncProviderPool struct {
	*ProviderPool
	maxWorkers int
}

// NewAsync returns an async pool. MaxWorkers defaults to the number of
// providers and is capped at MaxWorkersLimit.
func NewAsync(registry *provider.Registry, opts Options) (*AsyncProviderPool, error) {
	p, err := New(registry, opts)
	if err != nil {
		return nil, err
	}
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = len(p.names)
	}
	if workers > MaxWorkersLimit {
		workers = MaxWorkersLimit
	}
	if workers < 1 {
		workers = 1
	}
	return &AsyncProviderPool{ProviderPool: p, maxWorkers: workers}, nil
}

// NewAsyncPool is NewAsync behind the Pool interface.
func NewAsyncPool(registry *provider.Registry, opts Options) (Pool, error) {
	p, err := NewAsync(registry, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MaxWorkers returns the effective fan-out bound.
func (p *AsyncProviderPool) MaxWorkers() int { return p.maxWorkers }

// ListSubtitles runs one task per eligible provider and waits for all of
// them. Result order across providers is unspecified. Tasks are not cancelled
// early; a failing provider only discards itself.
func (p *AsyncProviderPool) ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) []subtitle.Subtitle {
	var (
		mu  sync.Mutex
		out []subtitle.Subtitle
		g   errgroup.Group
	)
	g.SetLimit(p.maxWorkers)

	dispatched := 0
	for _, name := range p.names {
		reg, effective, ok := p.gate(name, v, langs)
		if !ok {
			continue
		}
		dispatched++
		g.Go(func() error {
			subs := p.fetch(ctx, name, reg, v, effective)
			mu.Lock()
			out = append(out, subs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if dispatched == 0 {
		p.logNoProvider(v)
	}

	p.logger.WithFields(log.Fields{"video": v.String(), "providers": dispatched, "count": len(out)}).Debug("Async listing finished")
	return out
}
