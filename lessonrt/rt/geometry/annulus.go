package geometry

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

type Mode uint8

const (
	// Expanded emits 6 vertices per subdivision and no index list.
	Expanded Mode = iota
	// Indexed emits one outer and one inner vertex per step and 6 indices per subdivision.
	Indexed
)

func (m Mode) String() string {
	if m == Indexed {
		return "indexed"
	}
	return "expanded"
}

// AnnulusParams describes a ring, or a disc when InnerRadius is zero.
// Angles are in radians. Colors are emitted only when both are set.
type AnnulusParams struct {
	OuterRadius  float32
	InnerRadius  float32
	Subdivisions int
	StartAngle   float32
	EndAngle     float32
	OuterColor   color.Color
	InnerColor   color.Color
}

func DefaultAnnulus() AnnulusParams {
	return AnnulusParams{
		OuterRadius:  1,
		Subdivisions: 24,
		EndAngle:     2 * math.Pi,
	}
}

func (p AnnulusParams) validate() error {
	if p.Subdivisions < 1 {
		return core.Configf("annulus needs at least one subdivision, got %d", p.Subdivisions)
	}
	if p.OuterRadius < 0 || p.InnerRadius < 0 {
		return core.Configf("annulus radii must be non-negative, got %g/%g", p.OuterRadius, p.InnerRadius)
	}
	if p.InnerRadius > p.OuterRadius {
		return core.Configf("annulus inner radius %g exceeds outer radius %g", p.InnerRadius, p.OuterRadius)
	}
	if p.StartAngle == p.EndAngle {
		return core.Configf("annulus start and end angle are both %g", p.StartAngle)
	}
	return nil
}

// ring computes the outer and inner point of every step 0..Subdivisions.
// Both modes read positions from here so they agree bit for bit.
func (p AnnulusParams) ring() (outer, inner []mgl32.Vec3) {
	n := p.Subdivisions
	outer = make([]mgl32.Vec3, n+1)
	inner = make([]mgl32.Vec3, n+1)
	span := float64(p.EndAngle) - float64(p.StartAngle)
	for i := 0; i <= n; i++ {
		angle := float64(p.StartAngle) + float64(i)*span/float64(n)
		c, s := float32(math.Cos(angle)), float32(math.Sin(angle))
		outer[i] = mgl32.Vec3{c * p.OuterRadius, s * p.OuterRadius, 0}
		inner[i] = mgl32.Vec3{c * p.InnerRadius, s * p.InnerRadius, 0}
	}
	return outer, inner
}

func rgba8(c color.Color) [4]uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [4]uint8{n.R, n.G, n.B, n.A}
}

// GenerateAnnulus builds a ring mesh. Triangles per subdivision i are
// (outer_i, inner_i, outer_i+1) and (outer_i+1, inner_i, inner_i+1).
func GenerateAnnulus(p AnnulusParams, mode Mode) (*Mesh, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	outer, inner := p.ring()
	colored := p.OuterColor != nil && p.InnerColor != nil
	var oc, ic [4]uint8
	if colored {
		oc, ic = rgba8(p.OuterColor), rgba8(p.InnerColor)
	}

	n := p.Subdivisions
	m := &Mesh{}
	switch mode {
	case Expanded:
		m.Positions = make([]mgl32.Vec3, 0, 6*n)
		if colored {
			m.Colors = make([][4]uint8, 0, 6*n)
		}
		for i := 0; i < n; i++ {
			m.Positions = append(m.Positions,
				outer[i], inner[i], outer[i+1],
				outer[i+1], inner[i], inner[i+1])
			if colored {
				m.Colors = append(m.Colors, oc, ic, oc, oc, ic, ic)
			}
		}
	case Indexed:
		m.Positions = make([]mgl32.Vec3, 0, 2*(n+1))
		if colored {
			m.Colors = make([][4]uint8, 0, 2*(n+1))
		}
		for i := 0; i <= n; i++ {
			m.Positions = append(m.Positions, outer[i], inner[i])
			if colored {
				m.Colors = append(m.Colors, oc, ic)
			}
		}
		m.Indices = make([]uint32, 0, 6*n)
		for i := 0; i < n; i++ {
			o := uint32(2 * i)
			m.Indices = append(m.Indices, o, o+1, o+2, o+2, o+1, o+3)
		}
	default:
		return nil, core.Configf("unknown annulus mode %d", mode)
	}
	return m, nil
}
