package geometry

import "github.com/go-gl/mathgl/mgl32"

// Quad is the unit square as two triangles with matching texture coordinates.
func Quad() *Mesh {
	corners := []mgl32.Vec2{
		{0, 0}, {1, 0}, {0, 1},
		{0, 1}, {1, 0}, {1, 1},
	}
	m := &Mesh{
		Positions: make([]mgl32.Vec3, len(corners)),
		UVs:       make([]mgl32.Vec2, len(corners)),
	}
	for i, c := range corners {
		m.Positions[i] = c.Vec3(0)
		m.UVs[i] = c
	}
	return m
}

// Triangle is the clip-space triangle every first lesson starts from.
func Triangle() *Mesh {
	return &Mesh{
		Positions: []mgl32.Vec3{{0, 0.5, 0}, {-0.5, -0.5, 0}, {0.5, -0.5, 0}},
		Colors:    [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}},
	}
}

// Cube is a 2x2x2 cube centred on the origin with one quad per face, so normals
// and texture coordinates stay per face.
func Cube() *Mesh {
	faces := [6]struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
		uvs     [4]mgl32.Vec2
	}{
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{1, 1, -1}, {1, 1, 1}, {1, -1, 1}, {1, -1, -1}}, [4]mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-1, 1, 1}, {-1, 1, -1}, {-1, -1, -1}, {-1, -1, 1}}, faceUV},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}, faceUV},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, faceUV},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{1, 1, 1}, {-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}}, faceUV},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{-1, 1, -1}, {1, 1, -1}, {1, -1, -1}, {-1, -1, -1}}, faceUV},
	}

	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, 24),
		Normals:   make([]mgl32.Vec3, 0, 24),
		UVs:       make([]mgl32.Vec2, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Positions))
		for i := range f.corners {
			m.Positions = append(m.Positions, f.corners[i])
			m.Normals = append(m.Normals, f.normal)
			m.UVs = append(m.UVs, f.uvs[i])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

var faceUV = [4]mgl32.Vec2{{1, 0}, {0, 0}, {0, 1}, {1, 1}}
