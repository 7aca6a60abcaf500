package providers

import (
	"testing"

	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"opensubtitles", "opensubtitlescom"}, r.Names())

	for _, name := range r.Names() {
		reg, ok := r.Lookup(name)
		require.True(t, ok)
		p, err := reg.New(provider.Config{}, provider.Env{})
		require.NoError(t, err, name)
		assert.NotNil(t, p)
	}
}
