package lessons

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/geometry"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
	"github.com/gekko3d/fundamentals/lessonrt/rt/shaders"
)

var (
	staticLayout   = layout.MustPlan(layout.Padded, layout.Vec4("color"), layout.Vec2("offset"))
	scaleUniform   = layout.MustPlan(layout.Padded, layout.Vec2("scale"))
	scaleStorage   = layout.MustPlan(layout.Tight, layout.Vec2("scale"))
	positionLayout = layout.MustPlan(layout.Tight, layout.Vec2("position"))
)

func randomColor(env Env) mgl32.Vec4 {
	return mgl32.Vec4{env.Rand.Float32(), env.Rand.Float32(), env.Rand.Float32(), 1}
}

// buildUniforms draws each object with its own pair of uniform buffers and bind group.
// Color and offset are written once; the aspect-corrected scales are rewritten on resize.
func buildUniforms(env Env, s *frame.Scene) error {
	if err := env.pipeline(s, core.PipelineDesc{Label: "uniforms", Shader: shaders.UniformsWGSL}); err != nil {
		return err
	}

	n := env.Config.Objects
	scales := make([]float32, n)
	mirrors := make([]*packed.Buffer, n)
	for i := 0; i < n; i++ {
		static, err := packed.New(staticLayout, 1)
		if err != nil {
			return err
		}
		offset := mgl32.Vec2{randRange(env.Rand, -0.9, 0.9), randRange(env.Rand, -0.9, 0.9)}
		if err := static.Write(0, "color", randomColor(env)); err != nil {
			return err
		}
		if err := static.Write(0, "offset", offset); err != nil {
			return err
		}
		staticMirror, err := env.mirror(s, fmt.Sprintf("uniforms static %d", i), static, core.BufferUsageUniform)
		if err != nil {
			return err
		}

		scale, err := packed.New(scaleUniform, 1)
		if err != nil {
			return err
		}
		scaleMirror, err := env.mirror(s, fmt.Sprintf("uniforms scale %d", i), scale, core.BufferUsageUniform)
		if err != nil {
			return err
		}

		bg, err := env.bindGroup(s, fmt.Sprintf("uniforms object %d", i),
			core.BindEntry{Binding: 0, Buffer: staticMirror.GPU},
			core.BindEntry{Binding: 1, Buffer: scaleMirror.GPU},
		)
		if err != nil {
			return err
		}
		scales[i] = randRange(env.Rand, 0.2, 0.5)
		mirrors[i] = scale
		s.Objects = append(s.Objects, frame.Object{Group: 0, BindGroup: bg, Draw: frame.DrawCall{Count: 3}})
	}

	s.Update = func(info frame.Info) error {
		if !info.Resized {
			return nil
		}
		for i, buf := range mirrors {
			if err := buf.Write(0, "scale", mgl32.Vec2{scales[i] / info.Aspect, scales[i]}); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// buildStorageBuffers draws every object in one instanced call. Per-object data and
// the ring vertices live in storage buffers indexed by instance and vertex index.
func buildStorageBuffers(env Env, s *frame.Scene) error {
	if err := env.pipeline(s, core.PipelineDesc{Label: "storage buffers", Shader: shaders.StorageBuffersWGSL}); err != nil {
		return err
	}

	n, err := env.objectsFitting("storage buffers", staticLayout.Stride(), scaleStorage.Stride())
	if err != nil {
		return err
	}
	statics, err := packed.New(staticLayout, n)
	if err != nil {
		return err
	}
	scaleBuf, err := packed.New(scaleStorage, n)
	if err != nil {
		return err
	}
	scales := make([]float32, n)
	for i := 0; i < n; i++ {
		if err := statics.Write(i, "color", randomColor(env)); err != nil {
			return err
		}
		offset := mgl32.Vec2{randRange(env.Rand, -0.9, 0.9), randRange(env.Rand, -0.8, 0.8)}
		if err := statics.Write(i, "offset", offset); err != nil {
			return err
		}
		scales[i] = randRange(env.Rand, 0.2, 0.5)
	}

	ring := env.Config.Annulus
	ring.OuterColor, ring.InnerColor = nil, nil
	mesh, err := geometry.GenerateAnnulus(ring, geometry.Expanded)
	if err != nil {
		return err
	}
	vertices, err := mesh.Pack(positionLayout, geometry.Attributes{Position: "position"})
	if err != nil {
		return err
	}

	staticMirror, err := env.mirror(s, "storage statics", statics, core.BufferUsageStorage)
	if err != nil {
		return err
	}
	scaleMirror, err := env.mirror(s, "storage scales", scaleBuf, core.BufferUsageStorage)
	if err != nil {
		return err
	}
	vertexBuf, err := env.upload(s, "storage vertices", vertices.Data(), core.BufferUsageStorage)
	if err != nil {
		return err
	}

	bg, err := env.bindGroup(s, "storage buffers",
		core.BindEntry{Binding: 0, Buffer: staticMirror.GPU},
		core.BindEntry{Binding: 1, Buffer: scaleMirror.GPU},
		core.BindEntry{Binding: 2, Buffer: vertexBuf},
	)
	if err != nil {
		return err
	}
	s.BindGroups = []core.Handle{bg}
	s.Draw = frame.DrawCall{Count: mesh.DrawCount(), Instances: uint32(n)}

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
