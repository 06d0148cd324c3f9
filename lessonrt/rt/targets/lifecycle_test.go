package targets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/core/coretest"
)

func msaaDepth() Options {
	return Options{ColorFormat: core.TextureFormatBGRA8Unorm, SampleCount: 4, Depth: true}
}

func TestEnsureRecreatesOnlyOnChange(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, msaaDepth(), 8192)
	assert.Equal(t, Uninitialized, lc.State())

	first, recreated, err := lc.Ensure(800, 600)
	require.NoError(t, err)
	assert.True(t, recreated)
	assert.Equal(t, Valid, lc.State())
	require.Len(t, dev.ByKind("texture"), 2)

	again, recreated, err := lc.Ensure(800, 600)
	require.NoError(t, err)
	assert.False(t, recreated)
	assert.Same(t, first, again)
	assert.Len(t, dev.ByKind("texture"), 2)

	_, recreated, err = lc.Ensure(400, 300)
	require.NoError(t, err)
	assert.True(t, recreated)

	textures := dev.ByKind("texture")
	require.Len(t, textures, 4)
	assert.Equal(t, 1, textures[0].Released)
	assert.Equal(t, 1, textures[1].Released)
	assert.Equal(t, 0, textures[2].Released)
	assert.Equal(t, 0, textures[3].Released)
}

func TestEnsureReleasesBeforeCreating(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, msaaDepth(), 8192)
	_, _, err := lc.Ensure(800, 600)
	require.NoError(t, err)

	dev.Events.Reset()
	_, _, err = lc.Ensure(1024, 768)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"release texture surface msaa",
		"release texture surface depth",
		"create texture surface msaa",
		"create texture surface depth",
	}, dev.Events.All())
}

func TestEnsureClampsSize(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, Options{Depth: true}, 2048)

	st, _, err := lc.Ensure(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), st.Width)
	assert.Equal(t, uint32(1), st.Height)

	st, _, err = lc.Ensure(5000, -3)
	require.NoError(t, err)
	assert.Equal(t, uint32(2048), st.Width)
	assert.Equal(t, uint32(1), st.Height)

	// same clamped size is not a change
	_, recreated, err := lc.Ensure(9000, 0)
	require.NoError(t, err)
	assert.False(t, recreated)
}

func TestEnsureWithoutMultisample(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, Options{SampleCount: 1, Depth: true}, 8192)

	st, _, err := lc.Ensure(640, 480)
	require.NoError(t, err)
	assert.Nil(t, st.Multisample)
	require.NotNil(t, st.Depth)

	depth := dev.ByKind("texture")[0].Desc.(core.TextureDesc)
	assert.Equal(t, core.TextureFormatDepth24Plus, depth.Format)
	assert.Equal(t, uint32(1), depth.SampleCount)

	att := st.Attachments()
	assert.Equal(t, uint32(640), att.Width)
	assert.Nil(t, att.Multisample)
}

func TestNoTargetsNeeded(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, Options{}, 8192)

	st, recreated, err := lc.Ensure(320, 200)
	require.NoError(t, err)
	assert.True(t, recreated)
	assert.Nil(t, st.Depth)
	assert.Empty(t, dev.Handles)
}

func TestInvalidateForcesRecreation(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, msaaDepth(), 8192)
	_, _, err := lc.Ensure(800, 600)
	require.NoError(t, err)

	lc.Invalidate()
	assert.Equal(t, Invalid, lc.State())

	_, recreated, err := lc.Ensure(800, 600)
	require.NoError(t, err)
	assert.True(t, recreated)
}

func TestCreateFailureLeavesInvalid(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, msaaDepth(), 8192)
	_, _, err := lc.Ensure(800, 600)
	require.NoError(t, err)

	boom := errors.New("device lost")
	dev.Fail["texture"] = boom
	_, _, err = lc.Ensure(100, 100)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Invalid, lc.State())
	assert.Nil(t, lc.Current())

	_, recreated, err := lc.Ensure(100, 100)
	require.NoError(t, err)
	assert.True(t, recreated)
}

func TestReleaseFreesEverythingOnce(t *testing.T) {
	dev := coretest.NewDevice()
	lc := New(dev, msaaDepth(), 8192)
	_, _, err := lc.Ensure(800, 600)
	require.NoError(t, err)

	lc.Release()
	lc.Release()
	assert.Equal(t, Uninitialized, lc.State())
	for _, tex := range dev.ByKind("texture") {
		assert.Equal(t, 1, tex.Released)
	}
}
