package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

func wgpuAddressMode(m core.AddressMode) wgpu.AddressMode {
	if m == core.AddressModeRepeat {
		return wgpu.AddressModeRepeat
	}
	return wgpu.AddressModeClampToEdge
}

func wgpuFilterMode(m core.FilterMode) wgpu.FilterMode {
	if m == core.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func wgpuBufferUsage(u core.BufferUsage) wgpu.BufferUsage {
	usageMap := map[core.BufferUsage]wgpu.BufferUsage{
		core.BufferUsageVertex:  wgpu.BufferUsageVertex,
		core.BufferUsageIndex:   wgpu.BufferUsageIndex,
		core.BufferUsageUniform: wgpu.BufferUsageUniform,
		core.BufferUsageStorage: wgpu.BufferUsageStorage,
		core.BufferUsageCopyDst: wgpu.BufferUsageCopyDst,
		core.BufferUsageCopySrc: wgpu.BufferUsageCopySrc,
	}
	var result wgpu.BufferUsage
	for flag, usage := range usageMap {
		if u&flag != 0 {
			result |= usage
		}
	}
	return result
}

func wgpuTextureUsage(u core.TextureUsage) wgpu.TextureUsage {
	var result wgpu.TextureUsage
	if u&core.TextureUsageTextureBinding != 0 {
		result |= wgpu.TextureUsageTextureBinding
	}
	if u&core.TextureUsageCopyDst != 0 {
		result |= wgpu.TextureUsageCopyDst
	}
	if u&core.TextureUsageRenderAttachment != 0 {
		result |= wgpu.TextureUsageRenderAttachment
	}
	return result
}

// wgpuTextureFormat resolves core.TextureFormatSurface to the configured surface format.
func wgpuTextureFormat(f core.TextureFormat, surface wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case core.TextureFormatSurface:
		return surface, nil
	case core.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case core.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb, nil
	case core.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, nil
	case core.TextureFormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus, nil
	case core.TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float, nil
	default:
		return 0, core.Configf("unsupported texture format %d", f)
	}
}

// coreTextureFormat maps a surface format back; unknown formats report as the surface.
func coreTextureFormat(f wgpu.TextureFormat) core.TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return core.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return core.TextureFormatRGBA8UnormSrgb
	case wgpu.TextureFormatBGRA8Unorm:
		return core.TextureFormatBGRA8Unorm
	default:
		return core.TextureFormatSurface
	}
}

func wgpuVertexFormat(f core.VertexFormat) (wgpu.VertexFormat, error) {
	switch f {
	case core.VertexFormatFloat32:
		return wgpu.VertexFormatFloat32, nil
	case core.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2, nil
	case core.VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3, nil
	case core.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4, nil
	case core.VertexFormatUnorm8x4:
		return wgpu.VertexFormatUnorm8x4, nil
	default:
		return 0, core.Configf("unsupported vertex format %d", f)
	}
}

func wgpuVertexBufferLayouts(layouts []core.VertexBufferLayout) ([]wgpu.VertexBufferLayout, error) {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for i, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			format, err := wgpuVertexFormat(a.Format)
			if err != nil {
				return nil, fmt.Errorf("vertex buffer %d location %d: %w", i, a.Location, err)
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				ShaderLocation: a.Location,
				Offset:         a.Offset,
				Format:         format,
			})
		}
		step := wgpu.VertexStepModeVertex
		if l.StepMode == core.StepModeInstance {
			step = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.Stride,
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out, nil
}

func wgpuIndexFormat(f core.IndexFormat) wgpu.IndexFormat {
	if f == core.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func wgpuCullMode(c core.CullMode) wgpu.CullMode {
	if c == core.CullModeBack {
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

func wgpuColor(c core.Color) wgpu.Color {
	return wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
