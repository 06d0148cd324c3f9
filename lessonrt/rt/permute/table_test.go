package permute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/core/coretest"
)

func samplerChoices() []Choice {
	return []Choice{Binary("addressU"), Binary("addressV"), Binary("mag"), Binary("min")}
}

func TestBuildAllBinaryBitPattern(t *testing.T) {
	table, err := BuildAll(samplerChoices(), func(c Combination) (core.SamplerSettings, error) {
		return core.SamplerSettingsFrom(c), nil
	})
	require.NoError(t, err)
	require.Equal(t, 16, table.Len())

	seen := map[core.SamplerSettings]bool{}
	for k := Key(0); k < 16; k++ {
		s, err := table.Lookup(k)
		require.NoError(t, err)
		assert.Equal(t, core.AddressMode(k&1), s.AddressU)
		assert.Equal(t, core.AddressMode(k>>1&1), s.AddressV)
		assert.Equal(t, core.FilterMode(k>>2&1), s.Mag)
		assert.Equal(t, core.FilterMode(k>>3&1), s.Min)
		seen[s] = true
	}
	assert.Len(t, seen, 16)

	linearMin, err := table.Key(core.SamplerSettings{Min: core.FilterModeLinear}.Combination())
	require.NoError(t, err)
	assert.Equal(t, Key(8), linearMin)
}

func TestMixedRadix(t *testing.T) {
	calls := 0
	table, err := BuildAll([]Choice{{Name: "a", Values: 3}, {Name: "b", Values: 2}}, func(c Combination) (string, error) {
		calls++
		return c.String(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, calls)

	k, err := table.Key(Combination{2, 1})
	require.NoError(t, err)
	assert.Equal(t, Key(5), k)
	assert.Equal(t, "[2 1]", table.MustLookup(k))
	assert.Equal(t, Combination{1, 1}, table.Combination(4))

	_, err = table.Key(Combination{3, 0})
	assert.ErrorIs(t, err, core.ErrRange)
	_, err = table.Key(Combination{0})
	assert.ErrorIs(t, err, core.ErrRange)
}

func TestLookupOutOfRange(t *testing.T) {
	table, err := BuildAll([]Choice{Binary("x")}, func(c Combination) (int, error) { return c[0], nil })
	require.NoError(t, err)

	_, err = table.Lookup(2)
	assert.ErrorIs(t, err, core.ErrRange)
	_, err = table.Lookup(-1)
	assert.ErrorIs(t, err, core.ErrRange)
	assert.Panics(t, func() { table.MustLookup(7) })
}

func TestBuildAllRejectsEmptyChoices(t *testing.T) {
	_, err := BuildAll(nil, func(Combination) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = BuildAll([]Choice{{Name: "none", Values: 0}}, func(Combination) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestBuildAllReleasesOnFailure(t *testing.T) {
	dev := coretest.NewDevice()
	boom := errors.New("out of memory")
	table, err := BuildAll(samplerChoices(), func(c Combination) (core.Handle, error) {
		k := c[0] | c[1]<<1 | c[2]<<2 | c[3]<<3
		if k == 5 {
			return nil, boom
		}
		return dev.CreateSampler(core.SamplerSettingsFrom(c).Desc("sampler"))
	})
	assert.Nil(t, table)
	assert.ErrorIs(t, err, boom)

	samplers := dev.ByKind("sampler")
	require.Len(t, samplers, 5)
	for _, s := range samplers {
		assert.Equal(t, 1, s.Released)
	}
}

func TestEachAndRelease(t *testing.T) {
	dev := coretest.NewDevice()
	table, err := BuildAll(samplerChoices(), func(c Combination) (core.Handle, error) {
		return dev.CreateSampler(core.SamplerSettingsFrom(c).Desc("sampler"))
	})
	require.NoError(t, err)

	var keys []Key
	table.Each(func(k Key, _ core.Handle) { keys = append(keys, k) })
	assert.Len(t, keys, 16)
	assert.Equal(t, Key(15), keys[15])

	table.Release(nil)
	assert.Equal(t, 0, table.Len())
	for _, s := range dev.ByKind("sampler") {
		assert.Equal(t, 1, s.Released)
	}
}
