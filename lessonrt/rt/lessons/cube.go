package lessons

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/geometry"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
	"github.com/gekko3d/fundamentals/lessonrt/rt/shaders"
)

var (
	cubeVertex     = layout.MustPlan(layout.Tight, layout.Vec3("position"), layout.Vec3("normal"), layout.Vec2("texcoord"))
	cubeVSUniforms = layout.MustPlan(layout.Padded, layout.Mat4("world_view_projection"), layout.Mat4("world_inverse_transpose"))
	cubeFSUniforms = layout.MustPlan(layout.Padded, layout.Vec3("light_direction"))

	cubeEye   = mgl32.Vec3{1, 4, -6}
	cubeLight = mgl32.Vec3{1, 8, -10}.Normalize()
)

// clipDepth maps OpenGL clip depth [-1,1] to the [0,1] range WebGPU expects.
var clipDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// cubeTexels is a 2x2 texture: red, green, blue and grey.
var cubeTexels = []byte{
	200, 0, 0, 255,
	0, 200, 0, 255,
	0, 0, 255, 255,
	128, 128, 128, 255,
}

// cubeMatrices returns the world-view-projection and inverse-transpose world matrices
// for the cube spun by angle radians around Y.
func cubeMatrices(aspect, angle float32) (wvp, worldInvT mgl32.Mat4) {
	projection := clipDepth.Mul4(mgl32.Perspective(mgl32.DegToRad(30), aspect, 0.5, 10))
	view := mgl32.LookAtV(cubeEye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	world := mgl32.HomogRotate3DY(angle)
	return projection.Mul4(view).Mul4(world), world.Inv().Transpose()
}

// buildCube draws a textured cube with fake directional lighting, a depth buffer and
// optional multisampling.
func buildCube(env Env, s *frame.Scene) error {
	samples := env.Config.SampleCount
	if samples != 1 && samples != 4 {
		return core.Configf("cube supports 1 or 4 samples, got %d", samples)
	}
	s.SampleCount = samples
	s.Depth = true
	s.Clear = core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}

	vb, err := cubeVertex.VertexBuffer(core.StepModeVertex, map[string]uint32{"position": 0, "normal": 1, "texcoord": 2})
	if err != nil {
		return err
	}
	if err := env.pipeline(s, core.PipelineDesc{
		Label:         "fake lighting",
		Shader:        shaders.CubeWGSL,
		VertexBuffers: []core.VertexBufferLayout{vb},
		SampleCount:   samples,
		DepthFormat:   core.TextureFormatDepth24Plus,
	}); err != nil {
		return err
	}

	mesh := geometry.Cube()
	vertices, err := mesh.Pack(cubeVertex, geometry.Attributes{Position: "position", Normal: "normal", UV: "texcoord"})
	if err != nil {
		return err
	}
	indices, err := mesh.IndexBytes(core.IndexFormatUint16)
	if err != nil {
		return err
	}
	vertexBuf, err := env.upload(s, "cube vertices", vertices.Data(), core.BufferUsageVertex)
	if err != nil {
		return err
	}
	indexBuf, err := env.upload(s, "cube indices", indices, core.BufferUsageIndex)
	if err != nil {
		return err
	}

	vsUniforms, err := packed.New(cubeVSUniforms, 1)
	if err != nil {
		return err
	}
	fsUniforms, err := packed.New(cubeFSUniforms, 1)
	if err != nil {
		return err
	}
	if err := fsUniforms.Write(0, "light_direction", cubeLight); err != nil {
		return err
	}
	vsMirror, err := env.mirror(s, "cube vs uniforms", vsUniforms, core.BufferUsageUniform)
	if err != nil {
		return err
	}
	fsMirror, err := env.mirror(s, "cube fs uniforms", fsUniforms, core.BufferUsageUniform)
	if err != nil {
		return err
	}

	tex, err := env.Device.CreateTexture(core.TextureDesc{
		Label:       "cube texture",
		Width:       2,
		Height:      2,
		Format:      core.TextureFormatRGBA8Unorm,
		SampleCount: 1,
		Usage:       core.TextureUsageTextureBinding | core.TextureUsageCopyDst,
	})
	if err != nil {
		return err
	}
	s.Own(tex)
	if err := env.Device.WriteTexture(tex, cubeTexels, 2, 2); err != nil {
		return err
	}
	sampler, err := env.Device.CreateSampler(core.SamplerSettings{}.Desc("cube sampler"))
	if err != nil {
		return err
	}
	s.Own(sampler)

	bg, err := env.bindGroup(s, "cube",
		core.BindEntry{Binding: 0, Buffer: vsMirror.GPU},
		core.BindEntry{Binding: 1, Buffer: fsMirror.GPU},
		core.BindEntry{Binding: 2, Sampler: sampler},
		core.BindEntry{Binding: 3, Texture: tex},
	)
	if err != nil {
		return err
	}

	s.BindGroups = []core.Handle{bg}
	s.VertexBuffers = []core.Handle{vertexBuf}
	s.IndexBuffer = indexBuf
	s.IndexFormat = core.IndexFormatUint16
	s.Draw = frame.DrawCall{Count: mesh.DrawCount(), Indexed: true}

	s.Update = func(info frame.Info) error {
		wvp, worldInvT := cubeMatrices(info.Aspect, float32(info.Elapsed.Seconds()))
		if err := vsUniforms.Write(0, "world_view_projection", wvp); err != nil {
			return err
		}
		return vsUniforms.Write(0, "world_inverse_transpose", worldInvT)
	}
	return nil
}
