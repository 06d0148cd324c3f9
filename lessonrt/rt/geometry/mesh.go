package geometry

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
)

// Mesh is host-side vertex data. Colors, Normals, UVs and Indices are optional;
// when present the per-vertex slices have one entry per position.
type Mesh struct {
	Positions []mgl32.Vec3
	Colors    [][4]uint8
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

func (m *Mesh) VertexCount() int { return len(m.Positions) }
func (m *Mesh) Indexed() bool    { return len(m.Indices) > 0 }

// DrawCount is the count to pass to Draw or DrawIndexed.
func (m *Mesh) DrawCount() uint32 {
	if m.Indexed() {
		return uint32(len(m.Indices))
	}
	return uint32(len(m.Positions))
}

func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return core.Configf("mesh has no vertices")
	}
	if m.Colors != nil && len(m.Colors) != n {
		return core.Configf("mesh has %d colors for %d vertices", len(m.Colors), n)
	}
	if m.Normals != nil && len(m.Normals) != n {
		return core.Configf("mesh has %d normals for %d vertices", len(m.Normals), n)
	}
	if m.UVs != nil && len(m.UVs) != n {
		return core.Configf("mesh has %d uvs for %d vertices", len(m.UVs), n)
	}
	if len(m.Indices)%3 != 0 {
		return core.Configf("mesh index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return core.Rangef("index %d at %d exceeds vertex count %d", idx, i, n)
		}
	}
	return nil
}

// Attributes names the layout fields Pack writes. Empty names are skipped.
type Attributes struct {
	Position string
	Color    string
	Normal   string
	UV       string
}

// Pack writes one record per vertex through l's offsets.
func (m *Mesh) Pack(l *layout.RecordLayout, attrs Attributes) (*packed.Buffer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	buf, err := packed.New(l, len(m.Positions))
	if err != nil {
		return nil, err
	}

	var posFloats int
	if attrs.Position != "" {
		f, ok := l.Field(attrs.Position)
		if !ok {
			return nil, core.Configf("layout has no position field %q", attrs.Position)
		}
		posFloats = f.Type.Floats()
		if posFloats < 2 || posFloats > 3 {
			return nil, core.Configf("position field %q must be vec2 or vec3, is %s", attrs.Position, f.Type)
		}
	}
	if attrs.Color != "" && m.Colors == nil {
		return nil, core.Configf("mesh has no colors for field %q", attrs.Color)
	}
	if attrs.Normal != "" && m.Normals == nil {
		return nil, core.Configf("mesh has no normals for field %q", attrs.Normal)
	}
	if attrs.UV != "" && m.UVs == nil {
		return nil, core.Configf("mesh has no uvs for field %q", attrs.UV)
	}

	for i, p := range m.Positions {
		if attrs.Position != "" {
			if err := buf.WriteFloats(i, attrs.Position, p[:posFloats]...); err != nil {
				return nil, err
			}
		}
		if attrs.Color != "" {
			if err := buf.Write(i, attrs.Color, m.Colors[i]); err != nil {
				return nil, err
			}
		}
		if attrs.Normal != "" {
			if err := buf.Write(i, attrs.Normal, m.Normals[i]); err != nil {
				return nil, err
			}
		}
		if attrs.UV != "" {
			if err := buf.Write(i, attrs.UV, m.UVs[i]); err != nil {
				return nil, err
			}
		}
	}
	return buf, nil
}

// IndexBytes encodes the indices little endian in the given format.
func (m *Mesh) IndexBytes(format core.IndexFormat) ([]byte, error) {
	switch format {
	case core.IndexFormatUint32:
		out := make([]byte, 4*len(m.Indices))
		for i, idx := range m.Indices {
			binary.LittleEndian.PutUint32(out[i*4:], idx)
		}
		return out, nil
	case core.IndexFormatUint16:
		// buffer sizes must stay 4-byte aligned
		out := make([]byte, (2*len(m.Indices)+3)&^3)
		for i, idx := range m.Indices {
			if idx > 0xFFFF {
				return nil, core.Rangef("index %d does not fit uint16", idx)
			}
			binary.LittleEndian.PutUint16(out[i*2:], uint16(idx))
		}
		return out, nil
	default:
		return nil, core.Configf("unsupported index format %d", format)
	}
}
