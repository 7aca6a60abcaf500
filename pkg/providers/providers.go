// Package providers wires the built-in subtitle providers into a registry.
package providers

import (
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/providers/opensubtitles"
	"github.com/angelospk/subfinder/pkg/providers/opensubtitlescom"
)

// DefaultRegistry returns a registry holding every built-in provider.
func DefaultRegistry() *provider.Registry {
	r, err := provider.NewRegistry(
		opensubtitles.Registration(),
		opensubtitlescom.Registration(),
	)
	if err != nil {
		// Names are constants, so this only fires on a duplicate registration.
		panic(err)
	}
	return r
}
