// Package refiners enrich videos with metadata (hashes, external IDs, years)
// before providers are queried.
package refiners

import (
	"context"
	"fmt"
	"sort"

	coreerrors "github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/video"
	log "github.com/sirupsen/logrus"
)

// Refiner adds what it can to a video. An error never invalidates what other
// refiners found.
type Refiner interface {
	Refine(ctx context.Context, v video.Video) error
}

// RefinerFunc adapts a function to Refiner.
type RefinerFunc func(ctx context.Context, v video.Video) error

func (f RefinerFunc) Refine(ctx context.Context, v video.Video) error { return f(ctx, v) }

// Factory builds a refiner from its configuration.
type Factory func(cfg provider.Config, env provider.Env) (Refiner, error)

// Registry maps refiner names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing none.
func (r *Registry) Register(name string, f Factory) error {
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("refiner %q registered twice", name)
	}
	r.factories[name] = f
	return nil
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Named is a built refiner with its name.
type Named struct {
	Name    string
	Refiner Refiner
}

// Build constructs the named refiners in order. Unknown names fail with
// ErrUnknownRefiner; factory errors are returned as is.
func (r *Registry) Build(names []string, configs map[string]provider.Config, env provider.Env) ([]Named, error) {
	out := make([]Named, 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", coreerrors.ErrUnknownRefiner, name)
		}
		ref, err := f(configs[name], env)
		if err != nil {
			return nil, fmt.Errorf("refiner %s: %w", name, err)
		}
		out = append(out, Named{Name: name, Refiner: ref})
	}
	return out, nil
}

// Run applies refs to v in order. Failures and panics are logged and the
// remaining refiners still run.
func Run(ctx context.Context, v video.Video, refs []Named, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	for _, r := range refs {
		entry := logger.WithFields(log.Fields{"refiner": r.Name, "video": v.String()})
		entry.Debug("Refining video")
		if err := safely(func() error { return r.Refiner.Refine(ctx, v) }); err != nil {
			entry.WithError(err).Warn("Refiner failed")
		}
	}
}

func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Default returns a registry with the built-in refiners: hash, nfo, trakt
// and imdb.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("hash", NewHash)
	_ = r.Register("nfo", NewNFO)
	_ = r.Register("trakt", NewTrakt)
	_ = r.Register("imdb", NewIMDb)
	return r
}

// DefaultOrder is the order refiners run in when none are configured.
var DefaultOrder = []string{"hash", "nfo", "trakt", "imdb"}
