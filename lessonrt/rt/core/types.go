package core

// Handle is an opaque GPU object owned by a backend: a buffer, texture, sampler,
// pipeline or bind group. Handles are released exactly once by their owner.
type Handle interface {
	Release()
}

type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageCopyDst
	BufferUsageCopySrc
)

type TextureFormat uint32

const (
	// TextureFormatSurface resolves to whatever format the presentation surface uses.
	TextureFormatSurface TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatDepth24Plus
	TextureFormatDepth32Float
)

func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth24Plus || f == TextureFormatDepth32Float
}

// BytesPerPixel is zero for formats that cannot be written from the host.
func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case TextureFormatRGBA8Unorm, TextureFormatRGBA8UnormSrgb, TextureFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

type TextureUsage uint32

const (
	TextureUsageTextureBinding TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageRenderAttachment
)

type VertexFormat uint32

const (
	VertexFormatFloat32 VertexFormat = iota + 1
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUnorm8x4
)

type StepMode uint32

const (
	StepModeVertex StepMode = iota
	StepModeInstance
)

type IndexFormat uint32

const (
	IndexFormatNone IndexFormat = iota
	IndexFormatUint16
	IndexFormatUint32
)

type BufferDesc struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

type TextureDesc struct {
	Label       string
	Width       uint32
	Height      uint32
	Format      TextureFormat
	SampleCount uint32
	Usage       TextureUsage
}

type SamplerDesc struct {
	Label    string
	AddressU AddressMode
	AddressV AddressMode
	Mag      FilterMode
	Min      FilterMode
}

type VertexAttribute struct {
	Location uint32
	Offset   uint64
	Format   VertexFormat
}

type VertexBufferLayout struct {
	Stride     uint64
	StepMode   StepMode
	Attributes []VertexAttribute
}

type CullMode uint32

const (
	CullModeNone CullMode = iota
	CullModeBack
)

type PipelineDesc struct {
	Label          string
	Shader         string
	VertexEntry    string
	FragmentEntry  string
	VertexBuffers  []VertexBufferLayout
	SampleCount    uint32
	DepthFormat    TextureFormat // zero value (surface) means no depth test
	Cull           CullMode
	ValidateShader bool
}

// BindEntry references exactly one of Buffer, Sampler or Texture.
type BindEntry struct {
	Binding uint32
	Buffer  Handle
	Sampler Handle
	Texture Handle
}

type BindGroupDesc struct {
	Label    string
	Pipeline Handle
	Group    uint32
	Entries  []BindEntry
}

type Limits struct {
	MaxTextureDimension2D uint32
	MaxBufferSize         uint64
}

type Color struct {
	R, G, B, A float64
}

// Attachments are the size-dependent render targets for one pass. Nil handles mean the
// pass renders straight into the surface image without depth.
type Attachments struct {
	Width       uint32
	Height      uint32
	SampleCount uint32
	Multisample Handle
	Depth       Handle
}
