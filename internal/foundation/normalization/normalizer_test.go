package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

type mode string

var modes = NewEnum("mode", map[string]mode{"Fast": "fast", "slow": "slow"})

func TestEnum_Normalize(t *testing.T) {
	tests := []struct {
		raw  string
		want mode
	}{
		{"fast", "fast"},
		{"  FAST ", "fast"},
		{"Slow", "slow"},
		{"", "slow"},
		{"   ", "slow"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := modes.Normalize(tt.raw, "slow")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnum_Unknown(t *testing.T) {
	_, err := modes.Normalize("turbo", "slow")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "fast, slow")
}

func TestEnum_Keys(t *testing.T) {
	keys := modes.Keys()
	assert.Equal(t, []string{"fast", "slow"}, keys)
	keys[0] = "x"
	assert.Equal(t, []string{"fast", "slow"}, modes.Keys())
}
