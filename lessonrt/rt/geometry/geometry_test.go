package geometry

import (
	"encoding/binary"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
)

func ring(outer, inner float32, n int) AnnulusParams {
	return AnnulusParams{OuterRadius: outer, InnerRadius: inner, Subdivisions: n, EndAngle: 2 * math.Pi}
}

func TestAnnulusIndexedCounts(t *testing.T) {
	m, err := GenerateAnnulus(ring(0.5, 0.25, 24), Indexed)
	require.NoError(t, err)

	assert.Len(t, m.Indices, 144)
	assert.Equal(t, 50, m.VertexCount())
	assert.Equal(t, uint32(144), m.DrawCount())
	require.NoError(t, m.Validate())

	for _, p := range m.Positions {
		d := p.Len()
		assert.GreaterOrEqual(t, d, float32(0.25)-1e-6)
		assert.LessOrEqual(t, d, float32(0.5)+1e-6)
	}
}

func TestAnnulusExpandedCounts(t *testing.T) {
	m, err := GenerateAnnulus(ring(0.5, 0.25, 24), Expanded)
	require.NoError(t, err)

	assert.Equal(t, 144, m.VertexCount())
	assert.Nil(t, m.Indices)
	assert.Equal(t, uint32(144), m.DrawCount())
}

func TestAnnulusModesAgree(t *testing.T) {
	p := ring(1, 0.3, 17)
	p.StartAngle = 0.4
	p.EndAngle = 2.9

	exp, err := GenerateAnnulus(p, Expanded)
	require.NoError(t, err)
	idx, err := GenerateAnnulus(p, Indexed)
	require.NoError(t, err)

	require.Len(t, exp.Positions, len(idx.Indices))
	for i, ix := range idx.Indices {
		assert.Equal(t, exp.Positions[i], idx.Positions[ix], "vertex %d", i)
	}
}

func TestAnnulusTriangleOrder(t *testing.T) {
	m, err := GenerateAnnulus(ring(1, 0.5, 4), Indexed)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, m.Indices[:6])
	assert.Equal(t, []uint32{6, 7, 8, 8, 7, 9}, m.Indices[18:])

	// first step sits on the positive x axis
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Positions[0])
	assert.Equal(t, mgl32.Vec3{0.5, 0, 0}, m.Positions[1])
}

func TestAnnulusRejectsBadParams(t *testing.T) {
	cases := map[string]AnnulusParams{
		"no subdivisions": ring(1, 0, 0),
		"inner > outer":   ring(0.2, 0.4, 8),
		"negative":        ring(-1, -2, 8),
		"empty arc":       {OuterRadius: 1, Subdivisions: 8, StartAngle: 1, EndAngle: 1},
	}
	for name, p := range cases {
		_, err := GenerateAnnulus(p, Indexed)
		assert.ErrorIs(t, err, core.ErrConfiguration, name)
	}
}

func TestAnnulusColors(t *testing.T) {
	p := ring(1, 0.5, 3)
	p.OuterColor = color.Gray{Y: 25}
	p.InnerColor = color.White
	m, err := GenerateAnnulus(p, Indexed)
	require.NoError(t, err)

	require.Len(t, m.Colors, m.VertexCount())
	assert.Equal(t, [4]uint8{25, 25, 25, 255}, m.Colors[0])
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, m.Colors[1])

	plain, err := GenerateAnnulus(ring(1, 0.5, 3), Indexed)
	require.NoError(t, err)
	assert.Nil(t, plain.Colors)
}

func TestPackThroughLayout(t *testing.T) {
	p := ring(0.5, 0.25, 24)
	p.OuterColor = color.Gray{Y: 25}
	p.InnerColor = color.White
	m, err := GenerateAnnulus(p, Indexed)
	require.NoError(t, err)

	l := layout.MustPlan(layout.Tight, layout.Vec2("position"), layout.Unorm8x4("color"))
	buf, err := m.Pack(l, Attributes{Position: "position", Color: "color"})
	require.NoError(t, err)

	assert.Equal(t, uint64(50*12), buf.Len())
	pos, err := buf.Read(3, "position")
	require.NoError(t, err)
	assert.Equal(t, []float32{m.Positions[3].X(), m.Positions[3].Y()}, pos)

	c, err := buf.ReadColor(3, "color")
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, c)

	_, err = m.Pack(l, Attributes{Position: "position", Normal: "color"})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestIndexBytes(t *testing.T) {
	cube := Cube()
	require.NoError(t, cube.Validate())
	assert.Equal(t, 24, cube.VertexCount())
	assert.Len(t, cube.Indices, 36)

	b16, err := cube.IndexBytes(core.IndexFormatUint16)
	require.NoError(t, err)
	assert.Len(t, b16, 72)
	assert.Equal(t, uint16(23), binary.LittleEndian.Uint16(b16[70:]))

	b32, err := cube.IndexBytes(core.IndexFormatUint32)
	require.NoError(t, err)
	assert.Len(t, b32, 144)

	odd := &Mesh{Positions: make([]mgl32.Vec3, 3), Indices: []uint32{0, 1, 2}}
	b, err := odd.IndexBytes(core.IndexFormatUint16)
	require.NoError(t, err)
	assert.Len(t, b, 8)
}

func TestValidateCatchesBadIndices(t *testing.T) {
	m := &Mesh{Positions: make([]mgl32.Vec3, 3), Indices: []uint32{0, 1, 3}}
	assert.ErrorIs(t, m.Validate(), core.ErrRange)

	m = &Mesh{Positions: make([]mgl32.Vec3, 3), Colors: make([][4]uint8, 2)}
	assert.ErrorIs(t, m.Validate(), core.ErrConfiguration)
}

func TestQuadAndTriangle(t *testing.T) {
	q := Quad()
	require.NoError(t, q.Validate())
	assert.Equal(t, uint32(6), q.DrawCount())

	tri := Triangle()
	require.NoError(t, tri.Validate())
	assert.Equal(t, uint32(3), tri.DrawCount())
}
