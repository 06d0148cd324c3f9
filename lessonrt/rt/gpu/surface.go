package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

func (b *Backend) Format() core.TextureFormat {
	return coreTextureFormat(b.Config.Format)
}

func (b *Backend) Configure(width, height uint32) error {
	if width == 0 || height == 0 {
		return core.Configf("configure surface with zero size %dx%d", width, height)
	}
	b.Config.Width = width
	b.Config.Height = height
	b.Surface.Configure(b.Adapter, b.Device, b.Config)
	return nil
}

// BeginPass acquires the current surface image and opens a render pass into it.
func (b *Backend) BeginPass(att core.Attachments, clear core.Color) (core.Pass, error) {
	surfaceTex, err := b.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSurfaceUnavailable, err)
	}
	view, err := surfaceTex.CreateView(nil)
	if err != nil {
		surfaceTex.Release()
		return nil, fmt.Errorf("%w: %v", core.ErrSurfaceUnavailable, err)
	}

	encoder, err := b.Device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTex.Release()
		return nil, fmt.Errorf("create command encoder: %w", err)
	}

	color := wgpu.RenderPassColorAttachment{
		View:       view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpuColor(clear),
	}
	if ms, ok := att.Multisample.(*Texture); ok && ms != nil {
		color.View = ms.View
		color.ResolveTarget = view
	}
	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
	}
	if depth, ok := att.Depth.(*Texture); ok && depth != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth.View,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		}
	}

	return &pass{
		backend:    b,
		encoder:    encoder,
		rp:         encoder.BeginRenderPass(desc),
		surfaceTex: surfaceTex,
		view:       view,
	}, nil
}

type pass struct {
	backend    *Backend
	encoder    *wgpu.CommandEncoder
	rp         *wgpu.RenderPassEncoder
	surfaceTex *wgpu.Texture
	view       *wgpu.TextureView
}

func (p *pass) SetPipeline(pipeline core.Handle) {
	if rp, ok := pipeline.(*wgpu.RenderPipeline); ok {
		p.rp.SetPipeline(rp)
	}
}

func (p *pass) SetBindGroup(index uint32, group core.Handle) {
	if bg, ok := group.(*wgpu.BindGroup); ok {
		p.rp.SetBindGroup(index, bg, nil)
	}
}

func (p *pass) SetVertexBuffer(slot uint32, buffer core.Handle) {
	if buf, ok := buffer.(*wgpu.Buffer); ok {
		p.rp.SetVertexBuffer(slot, buf, 0, wgpu.WholeSize)
	}
}

func (p *pass) SetIndexBuffer(buffer core.Handle, format core.IndexFormat) {
	if buf, ok := buffer.(*wgpu.Buffer); ok {
		p.rp.SetIndexBuffer(buf, wgpuIndexFormat(format), 0, wgpu.WholeSize)
	}
}

func (p *pass) Draw(vertexCount, instanceCount uint32) {
	p.rp.Draw(vertexCount, instanceCount, 0, 0)
}

func (p *pass) DrawIndexed(indexCount, instanceCount uint32) {
	p.rp.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

// Submit ends the pass, submits the commands and presents the surface image.
func (p *pass) Submit() error {
	defer p.release()

	if err := p.rp.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}
	cmd, err := p.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()

	p.backend.Queue.Submit(cmd)
	p.backend.Surface.Present()
	return nil
}

func (p *pass) release() {
	p.rp.Release()
	p.encoder.Release()
	p.view.Release()
	p.surfaceTex.Release()
}
