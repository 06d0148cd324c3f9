package core

// Device allocates GPU objects and copies host bytes into them.
type Device interface {
	CreateBuffer(desc BufferDesc) (Handle, error)
	CreateTexture(desc TextureDesc) (Handle, error)
	CreateSampler(desc SamplerDesc) (Handle, error)
	CreatePipeline(desc PipelineDesc) (Handle, error)
	CreateBindGroup(desc BindGroupDesc) (Handle, error)
	WriteBuffer(dst Handle, offset uint64, data []byte) error
	WriteTexture(dst Handle, pixels []byte, width, height uint32) error
	Limits() Limits
}

// Surface is the presentable window surface.
type Surface interface {
	Format() TextureFormat
	Configure(width, height uint32) error
	// BeginPass acquires the current surface image and opens a render pass into it,
	// resolving through att.Multisample when set.
	BeginPass(att Attachments, clear Color) (Pass, error)
}

// Pass records one render pass. Submit ends the pass, submits and presents.
type Pass interface {
	SetPipeline(pipeline Handle)
	SetBindGroup(index uint32, group Handle)
	SetVertexBuffer(slot uint32, buffer Handle)
	SetIndexBuffer(buffer Handle, format IndexFormat)
	Draw(vertexCount, instanceCount uint32)
	DrawIndexed(indexCount, instanceCount uint32)
	Submit() error
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// NopLogger discards everything.
func NopLogger() Logger { return nopLogger{} }
