package lessons

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/geometry"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
	"github.com/gekko3d/fundamentals/lessonrt/rt/shaders"
)

type ringVertex struct {
	Position mgl32.Vec2 `layout:"position"`
	Color    [4]uint8   `layout:"color" type:"unorm8x4"`
}

type ringInstance struct {
	Color  [4]uint8   `layout:"color" type:"unorm8x4"`
	Offset mgl32.Vec2 `layout:"offset"`
}

type ringScale struct {
	Scale mgl32.Vec2 `layout:"scale"`
}

// buildVertexBuffers feeds the ring and the per-object data through three vertex
// buffers: ring vertices, per-instance color and offset, per-instance scale.
func buildVertexBuffers(env Env, s *frame.Scene) error {
	vertexLayout, err := layout.FromStruct(ringVertex{}, layout.Tight)
	if err != nil {
		return err
	}
	instanceLayout, err := layout.FromStruct(ringInstance{}, layout.Tight)
	if err != nil {
		return err
	}
	scaleLayout, err := layout.FromStruct(ringScale{}, layout.Tight)
	if err != nil {
		return err
	}

	vertexVB, err := vertexLayout.VertexBuffer(core.StepModeVertex, map[string]uint32{"position": 0, "color": 4})
	if err != nil {
		return err
	}
	instanceVB, err := instanceLayout.VertexBuffer(core.StepModeInstance, map[string]uint32{"color": 1, "offset": 2})
	if err != nil {
		return err
	}
	scaleVB, err := scaleLayout.VertexBuffer(core.StepModeInstance, map[string]uint32{"scale": 3})
	if err != nil {
		return err
	}

	if err := env.pipeline(s, core.PipelineDesc{
		Label:         "vertex buffers",
		Shader:        shaders.VertexBuffersWGSL,
		VertexBuffers: []core.VertexBufferLayout{vertexVB, instanceVB, scaleVB},
	}); err != nil {
		return err
	}

	ring := env.Config.Annulus
	ring.OuterColor = color.RGBA{R: 26, G: 26, B: 26, A: 255}
	ring.InnerColor = colornames.White
	mesh, err := geometry.GenerateAnnulus(ring, geometry.Indexed)
	if err != nil {
		return err
	}
	vertices, err := mesh.Pack(vertexLayout, geometry.Attributes{Position: "position", Color: "color"})
	if err != nil {
		return err
	}
	indices, err := mesh.IndexBytes(core.IndexFormatUint32)
	if err != nil {
		return err
	}

	n, err := env.objectsFitting("vertex buffers", instanceLayout.Stride(), scaleLayout.Stride())
	if err != nil {
		return err
	}
	instances, err := packed.New(instanceLayout, n)
	if err != nil {
		return err
	}
	scaleBuf, err := packed.New(scaleLayout, n)
	if err != nil {
		return err
	}
	scales := make([]float32, n)
	for i := 0; i < n; i++ {
		if err := instances.Write(i, "color", randomColor(env)); err != nil {
			return err
		}
		offset := mgl32.Vec2{randRange(env.Rand, -0.9, 0.9), randRange(env.Rand, -0.9, 0.9)}
		if err := instances.Write(i, "offset", offset); err != nil {
			return err
		}
		scales[i] = randRange(env.Rand, 0.2, 0.5)
	}

	vertexBuf, err := env.upload(s, "ring vertices", vertices.Data(), core.BufferUsageVertex)
	if err != nil {
		return err
	}
	instanceMirror, err := env.mirror(s, "ring instances", instances, core.BufferUsageVertex)
	if err != nil {
		return err
	}
	scaleMirror, err := env.mirror(s, "ring scales", scaleBuf, core.BufferUsageVertex)
	if err != nil {
		return err
	}
	indexBuf, err := env.upload(s, "ring indices", indices, core.BufferUsageIndex)
	if err != nil {
		return err
	}

	s.VertexBuffers = []core.Handle{vertexBuf, instanceMirror.GPU, scaleMirror.GPU}
	s.IndexBuffer = indexBuf
	s.IndexFormat = core.IndexFormatUint32
	s.Draw = frame.DrawCall{Count: mesh.DrawCount(), Instances: uint32(n), Indexed: true}

	s.Update = func(info frame.Info) error {
		if !info.Resized {
			return nil
		}
		for i, sc := range scales {
			if err := scaleBuf.Write(i, "scale", mgl32.Vec2{sc / info.Aspect, sc}); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}
