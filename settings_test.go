package fundamentals

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/permute"
)

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings([]byte("address_u: repeat\nmag_filter: linear\n"))
	require.NoError(t, err)
	assert.Equal(t, core.SamplerSettings{AddressU: core.AddressModeRepeat, Mag: core.FilterModeLinear}, s)

	_, err = ParseSettings([]byte("min_filter: cubic\n"))
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = ParseSettings([]byte("address_u: [\n"))
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestSamplerControlsToggle(t *testing.T) {
	c := NewSamplerControls(core.SamplerSettings{})
	assert.Equal(t, permute.Combination{0, 0, 0, 0}, c.Observer().Latest().Permutation)

	c.Toggle(AddressV)
	s := c.Toggle(MinFilter)
	assert.Equal(t, core.SamplerSettings{AddressV: core.AddressModeRepeat, Min: core.FilterModeLinear}, s)
	assert.Equal(t, permute.Combination{0, 1, 0, 1}, c.Observer().Latest().Permutation)

	c.Toggle(AddressV)
	assert.Equal(t, core.AddressModeClampToEdge, c.Current().AddressV)
}

func TestWatchSettingsLoadsAndReloads(t *testing.T) {
	path := writeFile(t, "settings.yaml", "address_u: repeat\n")
	c := NewSamplerControls(core.SamplerSettings{})

	w, err := WatchSettings(path, c, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, core.AddressModeRepeat, c.Current().AddressU)

	require.NoError(t, os.WriteFile(path, []byte("address_u: repeat\nmag_filter: linear\n"), 0o644))
	assert.Eventually(t, func() bool {
		return c.Current().Mag == core.FilterModeLinear
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, permute.Combination{1, 0, 1, 0}, c.Observer().Latest().Permutation)
}

func TestWatchSettingsRejectsBadFile(t *testing.T) {
	path := writeFile(t, "settings.yaml", "mag_filter: bicubic\n")
	_, err := WatchSettings(path, NewSamplerControls(core.SamplerSettings{}), nil)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestDefaultSamplerSettingsSelectLastPermutation(t *testing.T) {
	c := NewSamplerControls(DefaultSamplerSettings)
	assert.Equal(t, permute.Combination{1, 1, 1, 1}, c.Observer().Latest().Permutation)
	assert.Equal(t, "repeat", core.AddressModeRepeat.String())

	s := c.Toggle(MagFilter)
	assert.Equal(t, core.FilterModeNearest, s.Mag)
	assert.Equal(t, core.AddressModeRepeat, s.AddressU)
}
