package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/shaders"
)

// Texture pairs a texture with its default view; both are released together.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
	Format  wgpu.TextureFormat
}

func (t *Texture) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// Backend implements core.Device and core.Surface on a glfw window.
type Backend struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	log core.Logger
}

func NewBackend(window *glfw.Window, log core.Logger) (*Backend, error) {
	if log == nil {
		log = core.NopLogger()
	}
	b := &Backend{log: log}
	b.Instance = wgpu.CreateInstance(nil)
	b.Surface = b.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := b.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.Adapter = adapter

	b.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "lesson device"})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.Queue = b.Device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := b.Surface.GetCapabilities(adapter)
	b.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	b.Surface.Configure(adapter, b.Device, b.Config)
	log.Infof("surface %dx%d format %v", b.Config.Width, b.Config.Height, b.Config.Format)
	return b, nil
}

func (b *Backend) Release() {
	if b.Queue != nil {
		b.Queue.Release()
		b.Queue = nil
	}
	if b.Device != nil {
		b.Device.Release()
		b.Device = nil
	}
	if b.Adapter != nil {
		b.Adapter.Release()
		b.Adapter = nil
	}
	if b.Surface != nil {
		b.Surface.Release()
		b.Surface = nil
	}
	if b.Instance != nil {
		b.Instance.Release()
		b.Instance = nil
	}
}

func (b *Backend) Limits() core.Limits {
	l := b.Device.GetLimits().Limits
	return core.Limits{
		MaxTextureDimension2D: l.MaxTextureDimension2D,
		MaxBufferSize:         l.MaxBufferSize,
	}
}

func (b *Backend) CreateBuffer(desc core.BufferDesc) (core.Handle, error) {
	size := (desc.Size + 3) &^ 3
	buf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: wgpuBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", desc.Label, err)
	}
	return buf, nil
}

func (b *Backend) CreateTexture(desc core.TextureDesc) (core.Handle, error) {
	format, err := wgpuTextureFormat(desc.Format, b.Config.Format)
	if err != nil {
		return nil, err
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	tex, err := b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Size:          wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpuTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view %s: %w", desc.Label, err)
	}
	return &Texture{Texture: tex, View: view, Width: desc.Width, Height: desc.Height, Format: format}, nil
}

func (b *Backend) CreateSampler(desc core.SamplerDesc) (core.Handle, error) {
	s, err := b.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  wgpuAddressMode(desc.AddressU),
		AddressModeV:  wgpuAddressMode(desc.AddressV),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpuFilterMode(desc.Mag),
		MinFilter:     wgpuFilterMode(desc.Min),
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler %s: %w", desc.Label, err)
	}
	return s, nil
}

func (b *Backend) CreatePipeline(desc core.PipelineDesc) (core.Handle, error) {
	if desc.ValidateShader {
		// validation problems are logged; the device has the final say
		if err := shaders.Validate(desc.Label, desc.Shader); err != nil {
			b.log.Warnf("%v", err)
		}
	}

	module, err := b.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Shader},
	})
	if err != nil {
		return nil, fmt.Errorf("shader module %s: %w", desc.Label, err)
	}
	defer module.Release()

	buffers, err := wgpuVertexBufferLayouts(desc.VertexBuffers)
	if err != nil {
		return nil, err
	}

	vsEntry, fsEntry := desc.VertexEntry, desc.FragmentEntry
	if vsEntry == "" {
		vsEntry = "vs"
	}
	if fsEntry == "" {
		fsEntry = "fs"
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}

	pd := &wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vsEntry,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fsEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    b.Config.Format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpuCullMode(desc.Cull),
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthFormat.IsDepth() {
		depthFormat, err := wgpuTextureFormat(desc.DepthFormat, b.Config.Format)
		if err != nil {
			return nil, err
		}
		keep := wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		}
		pd.DepthStencil = &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      keep,
			StencilBack:       keep,
		}
	}

	pipeline, err := b.Device.CreateRenderPipeline(pd)
	if err != nil {
		return nil, fmt.Errorf("create pipeline %s: %w", desc.Label, err)
	}
	return pipeline, nil
}

func (b *Backend) CreateBindGroup(desc core.BindGroupDesc) (core.Handle, error) {
	pipeline, ok := desc.Pipeline.(*wgpu.RenderPipeline)
	if !ok {
		return nil, core.Configf("bind group %s: pipeline is %T", desc.Label, desc.Pipeline)
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			buf, ok := e.Buffer.(*wgpu.Buffer)
			if !ok {
				return nil, core.Configf("bind group %s binding %d: buffer is %T", desc.Label, e.Binding, e.Buffer)
			}
			entry.Buffer = buf
			entry.Size = wgpu.WholeSize
		case e.Sampler != nil:
			s, ok := e.Sampler.(*wgpu.Sampler)
			if !ok {
				return nil, core.Configf("bind group %s binding %d: sampler is %T", desc.Label, e.Binding, e.Sampler)
			}
			entry.Sampler = s
		case e.Texture != nil:
			t, ok := e.Texture.(*Texture)
			if !ok {
				return nil, core.Configf("bind group %s binding %d: texture is %T", desc.Label, e.Binding, e.Texture)
			}
			entry.TextureView = t.View
		default:
			return nil, core.Configf("bind group %s binding %d: empty entry", desc.Label, e.Binding)
		}
		entries = append(entries, entry)
	}

	layout := pipeline.GetBindGroupLayout(desc.Group)
	defer layout.Release()
	bg, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group %s: %w", desc.Label, err)
	}
	return bg, nil
}

func (b *Backend) WriteBuffer(dst core.Handle, offset uint64, data []byte) error {
	buf, ok := dst.(*wgpu.Buffer)
	if !ok {
		return core.Configf("write buffer: destination is %T", dst)
	}
	return b.Queue.WriteBuffer(buf, offset, data)
}

func (b *Backend) WriteTexture(dst core.Handle, pixels []byte, width, height uint32) error {
	t, ok := dst.(*Texture)
	if !ok {
		return core.Configf("write texture: destination is %T", dst)
	}
	bpp := uint32(wgpuBytesPerPixel(t.Format))
	if bpp == 0 {
		return core.Configf("write texture: format %v is not host writable", t.Format)
	}
	if uint64(len(pixels)) < uint64(width)*uint64(height)*uint64(bpp) {
		return core.Rangef("write texture: %d bytes for %dx%d", len(pixels), width, height)
	}
	extent := wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	return b.Queue.WriteTexture(
		t.Texture.AsImageCopy(),
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * bpp,
			RowsPerImage: height,
		},
		&extent,
	)
}

func wgpuBytesPerPixel(format wgpu.TextureFormat) uint {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		return 4
	default:
		return 0
	}
}
