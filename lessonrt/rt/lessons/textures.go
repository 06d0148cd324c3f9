package lessons

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/geometry"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
	"github.com/gekko3d/fundamentals/lessonrt/rt/shaders"
)

// loadedImageScale is how much the loading-images lesson enlarges the F texels.
const loadedImageScale = 16

// fTexels is the 5x7 letter F in yellow on red. The first texel is blue so the
// texture origin is visible on screen.
func fTexels() *image.RGBA {
	r, y, b := colornames.Red, colornames.Yellow, colornames.Blue
	rows := [7][5]color.RGBA{
		{b, r, r, r, r},
		{r, y, y, y, r},
		{r, y, r, r, r},
		{r, y, y, r, r},
		{r, y, r, r, r},
		{r, y, r, r, r},
		{r, r, r, r, r},
	}
	img := image.NewRGBA(image.Rect(0, 0, 5, 7))
	for yy, row := range rows {
		for xx, c := range row {
			img.SetRGBA(xx, yy, c)
		}
	}
	return img
}

func flipVertical(img *image.RGBA) {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := b.Min.Y, b.Max.Y-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[img.PixOffset(b.Min.X, top):][:rowLen]
		u := img.Pix[img.PixOffset(b.Min.X, bottom):][:rowLen]
		copy(tmp, t)
		copy(t, u)
		copy(u, tmp)
	}
}

// rgbaPixels returns tightly packed rows, copying only when img is a sub-image.
func rgbaPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && b.Min == (image.Point{}) {
		return img.Pix[:rowLen*b.Dy()]
	}
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		out = append(out, img.Pix[img.PixOffset(b.Min.X, y):][:rowLen]...)
	}
	return out
}

// loadedImage stands in for a decoded picture: the F texels flipped so row zero is
// the bottom, then enlarged.
func loadedImage() *image.RGBA {
	src := fTexels()
	flipVertical(src)
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx()*loadedImageScale, sb.Dy()*loadedImageScale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}

var textureUniform = layout.MustPlan(layout.Padded, layout.Vec2("scale"), layout.Vec2("offset"))

// buildTextures samples the F texture through one of 16 samplers. The quad stays four
// framebuffer pixels per texel and slides left and right.
func buildTextures(env Env, s *frame.Scene) error {
	if err := env.pipeline(s, core.PipelineDesc{Label: "textures", Shader: shaders.TexturesWGSL}); err != nil {
		return err
	}
	tex, err := env.texture(s, "f texture", fTexels())
	if err != nil {
		return err
	}
	uniforms, err := packed.New(textureUniform, 1)
	if err != nil {
		return err
	}
	uniformMirror, err := env.mirror(s, "textures uniforms", uniforms, core.BufferUsageUniform)
	if err != nil {
		return err
	}

	err = env.samplerPermutations(s, func(sampler core.Handle) []core.BindEntry {
		return []core.BindEntry{
			{Binding: 0, Sampler: sampler},
			{Binding: 1, Texture: tex},
			{Binding: 2, Buffer: uniformMirror.GPU},
		}
	})
	if err != nil {
		return err
	}
	s.Draw = frame.DrawCall{Count: 6}

	s.Update = func(info frame.Info) error {
		if info.Resized {
			scale := mgl32.Vec2{4 / float32(info.Width), 4 / float32(info.Height)}
			if err := uniforms.Write(0, "scale", scale); err != nil {
				return err
			}
		}
		t := info.Elapsed.Seconds()
		return uniforms.Write(0, "offset", mgl32.Vec2{float32(math.Sin(t*0.25) * 0.8), -0.8})
	}
	return nil
}

var quadLayout = layout.MustPlan(layout.Tight, layout.Vec2("position"), layout.Vec2("texcoord"))

// buildLoadingImages draws an image prepared on the host onto a quad from a vertex buffer.
func buildLoadingImages(env Env, s *frame.Scene) error {
	vb, err := quadLayout.VertexBuffer(core.StepModeVertex, map[string]uint32{"position": 0, "texcoord": 1})
	if err != nil {
		return err
	}
	if err := env.pipeline(s, core.PipelineDesc{
		Label:         "loading images",
		Shader:        shaders.LoadingImagesWGSL,
		VertexBuffers: []core.VertexBufferLayout{vb},
	}); err != nil {
		return err
	}

	quad := geometry.Quad()
	vertices, err := quad.Pack(quadLayout, geometry.Attributes{Position: "position", UV: "texcoord"})
	if err != nil {
		return err
	}
	vertexBuf, err := env.upload(s, "quad vertices", vertices.Data(), core.BufferUsageVertex)
	if err != nil {
		return err
	}
	tex, err := env.texture(s, "loaded image", loadedImage())
	if err != nil {
		return err
	}

	err = env.samplerPermutations(s, func(sampler core.Handle) []core.BindEntry {
		return []core.BindEntry{
			{Binding: 0, Sampler: sampler},
			{Binding: 1, Texture: tex},
		}
	})
	if err != nil {
		return err
	}
	s.VertexBuffers = []core.Handle{vertexBuf}
	s.Draw = frame.DrawCall{Count: quad.DrawCount()}
	return nil
}
