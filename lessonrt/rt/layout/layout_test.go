package layout

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

func TestPlanPaddedUniformStatic(t *testing.T) {
	l, err := Plan(Padded, Vec4("color"), Vec2("offset"))
	require.NoError(t, err)

	assert.Equal(t, uint64(32), l.Stride())
	off, err := l.Offset("offset")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), off)
}

func TestPlanPaddedClampsToMinimum(t *testing.T) {
	l, err := Plan(Padded, Float32("time"))
	require.NoError(t, err)
	assert.Equal(t, uint64(16), l.Stride())

	l, err = Plan(Padded, Vec2("scale"))
	require.NoError(t, err)
	assert.Equal(t, uint64(16), l.Stride())
}

func TestPlanPaddedAlignsVec2AfterScalar(t *testing.T) {
	l, err := Plan(Padded, Float32("a"), Vec2("b"), Vec3("c"), Float32("d"))
	require.NoError(t, err)

	expect := map[string]uint64{"a": 0, "b": 8, "c": 16, "d": 28}
	for name, want := range expect {
		got, err := l.Offset(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	assert.Equal(t, uint64(32), l.Stride())
}

func TestPlanTightVertexInstance(t *testing.T) {
	l, err := Plan(Tight, Unorm8x4("color"), Vec2("offset"))
	require.NoError(t, err)

	assert.Equal(t, uint64(12), l.Stride())
	off, _ := l.Offset("offset")
	assert.Equal(t, uint64(4), off)
}

func TestPlanTightHasNoInterFieldPadding(t *testing.T) {
	l, err := Plan(Tight, Float32("a"), Vec4("b"), Vec3("c"))
	require.NoError(t, err)

	offB, _ := l.Offset("b")
	offC, _ := l.Offset("c")
	assert.Equal(t, uint64(4), offB)
	assert.Equal(t, uint64(20), offC)
	assert.Equal(t, uint64(32), l.Stride())
}

func TestPlanStrideInvariants(t *testing.T) {
	pool := []FieldSpec{
		Float32("s"), Vec2("v2"), Vec3("v3"), Vec4("v4"), Mat4("m"), Unorm8x4("c"),
	}
	// every non-empty ordered subset of the pool, in both classes
	for mask := 1; mask < 1<<len(pool); mask++ {
		var fields []FieldSpec
		for i, f := range pool {
			if mask&(1<<i) != 0 {
				fields = append(fields, f)
			}
		}
		for _, class := range []AlignmentClass{Tight, Padded} {
			l, err := Plan(class, fields...)
			require.NoError(t, err)

			if class == Padded {
				assert.Zero(t, l.Stride()%16, "mask %b", mask)
				assert.GreaterOrEqual(t, l.Stride(), uint64(16))
			} else {
				assert.Zero(t, l.Stride()%4, "mask %b", mask)
			}
			for _, f := range l.Fields() {
				assert.LessOrEqual(t, f.Offset+f.Size, l.Stride())
				if class == Padded {
					assert.Zero(t, f.Offset%f.Align, "field %s", f.Name)
				}
			}
		}
	}
}

func TestPlanRejectsBadFields(t *testing.T) {
	cases := map[string][]FieldSpec{
		"no fields":     nil,
		"zero size":     {Custom("pad", 0, 4)},
		"odd size":      {Custom("pad", 6, 4)},
		"bad alignment": {Custom("pad", 8, 6)},
		"empty name":    {Vec2("")},
		"duplicate":     {Vec2("a"), Vec2("a")},
	}
	for name, fields := range cases {
		_, err := Plan(Tight, fields...)
		assert.ErrorIs(t, err, core.ErrConfiguration, name)
	}
}

func TestOffsetUnknownField(t *testing.T) {
	l := MustPlan(Tight, Vec2("position"))
	_, err := l.Offset("normal")
	assert.ErrorIs(t, err, core.ErrRange)
}

func TestVertexBuffer(t *testing.T) {
	l := MustPlan(Tight, Vec2("position"), Unorm8x4("color"))

	vb, err := l.VertexBuffer(core.StepModeVertex, map[string]uint32{"position": 0, "color": 4})
	require.NoError(t, err)

	assert.Equal(t, uint64(12), vb.Stride)
	require.Len(t, vb.Attributes, 2)
	assert.Equal(t, core.VertexAttribute{Location: 0, Offset: 0, Format: core.VertexFormatFloat32x2}, vb.Attributes[0])
	assert.Equal(t, core.VertexAttribute{Location: 4, Offset: 8, Format: core.VertexFormatUnorm8x4}, vb.Attributes[1])

	_, err = l.VertexBuffer(core.StepModeVertex, map[string]uint32{"normal": 1})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = MustPlan(Padded, Mat4("m")).VertexBuffer(core.StepModeInstance, map[string]uint32{"m": 0})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

type taggedInstance struct {
	Color  [4]uint8   `layout:"color"`
	Offset mgl32.Vec2 `layout:"offset" type:"vec2"`
	note   string
}

func TestFromStruct(t *testing.T) {
	l, err := FromStruct(taggedInstance{}, Tight)
	require.NoError(t, err)

	f, ok := l.Field("color")
	require.True(t, ok)
	assert.Equal(t, Unorm8x4Type, f.Type)
	assert.Equal(t, uint64(12), l.Stride())

	_, err = FromStruct(42, Tight)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
