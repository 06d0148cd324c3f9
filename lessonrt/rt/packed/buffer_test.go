package packed

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
)

func staticLayout() *layout.RecordLayout {
	return layout.MustPlan(layout.Padded, layout.Vec4("color"), layout.Vec2("offset"))
}

func TestNewSizesBackingStore(t *testing.T) {
	b, err := New(staticLayout(), 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(3200), b.Len())
	assert.False(t, b.Dirty())

	_, err = New(staticLayout(), 0)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestWriteReadRoundTrip(t *testing.T) {
	b, err := New(staticLayout(), 4)
	require.NoError(t, err)

	require.NoError(t, b.Write(2, "color", mgl32.Vec4{0.25, 0.5, 0.75, 1}))
	require.NoError(t, b.Write(2, "offset", mgl32.Vec2{-0.9, 0.3}))

	got, err := b.Read(2, "color")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, got)

	got, err = b.Read(2, "offset")
	require.NoError(t, err)
	assert.Equal(t, []float32{-0.9, 0.3}, got)

	// little endian IEEE-754 at record*stride+offset
	raw := binary.LittleEndian.Uint32(b.Data()[2*32+16:])
	assert.Equal(t, float32(-0.9), math.Float32frombits(raw))
}

func TestWriteAcceptedValueKinds(t *testing.T) {
	l := layout.MustPlan(layout.Padded,
		layout.Float32("time"), layout.Vec3("light"), layout.Mat4("mvp"))
	b, err := New(l, 1)
	require.NoError(t, err)

	assert.NoError(t, b.Write(0, "time", float32(1.5)))
	assert.NoError(t, b.Write(0, "light", mgl32.Vec3{1, 8, -10}.Normalize()))
	assert.NoError(t, b.Write(0, "mvp", mgl32.Ident4()))
	assert.NoError(t, b.Write(0, "light", []float32{0, 1, 0}))

	m, err := b.Read(0, "mvp")
	require.NoError(t, err)
	assert.Equal(t, float32(1), m[0])
	assert.Equal(t, float32(1), m[15])
}

func TestWriteRejects(t *testing.T) {
	b, err := New(staticLayout(), 2)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Write(2, "color", mgl32.Vec4{}), core.ErrRange)
	assert.ErrorIs(t, b.Write(-1, "color", mgl32.Vec4{}), core.ErrRange)
	assert.ErrorIs(t, b.Write(0, "normal", mgl32.Vec4{}), core.ErrRange)
	assert.ErrorIs(t, b.Write(0, "offset", mgl32.Vec4{}), core.ErrRange)
	assert.ErrorIs(t, b.Write(0, "offset", "left"), core.ErrRange)
	assert.False(t, b.Dirty())
}

func TestUnorm8x4Encoding(t *testing.T) {
	l := layout.MustPlan(layout.Tight, layout.Unorm8x4("color"), layout.Vec2("offset"))
	b, err := New(l, 3)
	require.NoError(t, err)

	require.NoError(t, b.Write(0, "color", [4]uint8{1, 2, 3, 4}))
	require.NoError(t, b.Write(1, "color", mgl32.Vec4{0.1, 1.5, -2, 1}))
	require.NoError(t, b.Write(2, "color", colornames.Red))

	c, err := b.ReadColor(0, "color")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, c)

	c, _ = b.ReadColor(1, "color")
	assert.Equal(t, [4]uint8{26, 255, 0, 255}, c)

	c, _ = b.ReadColor(2, "color")
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, c)

	_, err = b.Read(0, "color")
	assert.ErrorIs(t, err, core.ErrRange)
	_, err = b.ReadColor(0, "offset")
	assert.ErrorIs(t, err, core.ErrRange)
}

func TestFlushReturnsFieldRangesOnce(t *testing.T) {
	l := layout.MustPlan(layout.Tight, layout.Vec2("scale"))
	b, err := New(l, 10)
	require.NoError(t, err)

	require.NoError(t, b.Write(3, "scale", mgl32.Vec2{1, 1}))
	assert.True(t, b.Dirty())

	assert.Equal(t, []Range{{Offset: 24, Size: 8}}, b.Flush())
	assert.Empty(t, b.Flush())
	assert.False(t, b.Dirty())
}

func TestFlushCoalescesAdjacentRanges(t *testing.T) {
	l := layout.MustPlan(layout.Tight, layout.Vec2("scale"))
	b, err := New(l, 10)
	require.NoError(t, err)

	for _, r := range []int{5, 1, 2, 8, 3} {
		require.NoError(t, b.Write(r, "scale", mgl32.Vec2{0.5, 0.5}))
	}
	assert.Equal(t, []Range{
		{Offset: 8, Size: 24},
		{Offset: 40, Size: 8},
		{Offset: 64, Size: 8},
	}, b.Flush())

	// filling the gap merges both neighbours
	require.NoError(t, b.Write(0, "scale", mgl32.Vec2{}))
	require.NoError(t, b.Write(2, "scale", mgl32.Vec2{}))
	require.NoError(t, b.Write(1, "scale", mgl32.Vec2{}))
	assert.Equal(t, []Range{{Offset: 0, Size: 24}}, b.Flush())
}

func TestPaddedFieldsLeaveGaps(t *testing.T) {
	b, err := New(staticLayout(), 2)
	require.NoError(t, err)

	require.NoError(t, b.Write(0, "offset", mgl32.Vec2{}))
	require.NoError(t, b.Write(1, "offset", mgl32.Vec2{}))
	assert.Equal(t, []Range{{Offset: 16, Size: 8}, {Offset: 48, Size: 8}}, b.Flush())
}

func TestIdenticalWritesAreDeterministic(t *testing.T) {
	a, _ := New(staticLayout(), 3)
	b, _ := New(staticLayout(), 3)
	for _, buf := range []*Buffer{a, b} {
		require.NoError(t, buf.Write(1, "color", mgl32.Vec4{0.3, 0.2, 0.1, 1}))
		require.NoError(t, buf.Write(0, "offset", mgl32.Vec2{0.7, -0.7}))
	}
	assert.Equal(t, a.Data(), b.Data())
	assert.Equal(t, a.Flush(), b.Flush())
}

func TestMarkAllDirtyAndBytes(t *testing.T) {
	b, err := New(staticLayout(), 2)
	require.NoError(t, err)
	require.NoError(t, b.Write(1, "color", mgl32.Vec4{1, 1, 1, 1}))

	b.MarkAllDirty()
	ranges := b.Flush()
	require.Len(t, ranges, 1)
	assert.Equal(t, b.Data(), b.Bytes(ranges[0]))
}

func TestMarkDirtyRequeuesRange(t *testing.T) {
	b, err := New(staticLayout(), 4)
	require.NoError(t, err)
	require.NoError(t, b.Write(0, "offset", mgl32.Vec2{1, 2}))
	require.NoError(t, b.Write(3, "offset", mgl32.Vec2{3, 4}))

	ranges := b.Flush()
	require.Len(t, ranges, 2)
	require.NoError(t, b.MarkDirty(ranges[1]))
	assert.Equal(t, []Range{{Offset: 3*32 + 16, Size: 8}}, b.Flush())

	assert.ErrorIs(t, b.MarkDirty(Range{Offset: 120, Size: 16}), core.ErrRange)
	assert.ErrorIs(t, b.MarkDirty(Range{Offset: 0, Size: 0}), core.ErrRange)
	assert.Empty(t, b.Flush())
}
