// Package provider defines the contract subtitle sources implement, their
// static capabilities and the registry pools build them from.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/sirupsen/logrus"
)

// Provider is one subtitle source. ListSubtitles returns an empty slice, not
// an error, when nothing is found. DownloadSubtitle fills sub.Info().Content.
type Provider interface {
	Initialize(ctx context.Context) error
	Terminate(ctx context.Context) error
	ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) ([]subtitle.Subtitle, error)
	DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) error
}

// Env carries the shared collaborators handed to every provider factory.
// Cache may be nil.
type Env struct {
	Logger *logrus.Logger
	Cache  cache.Store
}

// Factory builds an uninitialized provider from its configuration.
type Factory func(cfg Config, env Env) (Provider, error)

// Registration binds a provider name to its capabilities and factory.
type Registration struct {
	Name         string
	Capabilities Capabilities
	New          Factory
}

// Registry maps provider names to registrations. It is built once at startup
// and only read afterwards.
type Registry struct {
	entries map[string]Registration
}

// NewRegistry returns a registry holding regs.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := &Registry{entries: make(map[string]Registration, len(regs))}
	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a registration. Names must be unique and non-empty.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("provider registration without a name")
	}
	if reg.New == nil {
		return fmt.Errorf("provider %q registered without a factory", reg.Name)
	}
	if _, dup := r.entries[reg.Name]; dup {
		return fmt.Errorf("provider %q registered twice", reg.Name)
	}
	r.entries[reg.Name] = reg
	return nil
}

// Lookup returns the registration for name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	if r == nil {
		return Registration{}, false
	}
	reg, ok := r.entries[name]
	return reg, ok
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
