package targets

import (
	"fmt"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

// TextureCreator is the slice of core.Device the lifecycle needs.
type TextureCreator interface {
	CreateTexture(desc core.TextureDesc) (core.Handle, error)
}

type State uint8

const (
	Uninitialized State = iota
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "uninitialized"
	}
}

type Options struct {
	// ColorFormat of the multisampled target; should match the surface.
	ColorFormat core.TextureFormat
	// SampleCount above 1 adds a multisampled color target resolved into the surface.
	SampleCount uint32
	Depth       bool
	DepthFormat core.TextureFormat
	Label       string
}

// SurfaceTargets are the size-dependent textures of one surface size.
type SurfaceTargets struct {
	Width       uint32
	Height      uint32
	SampleCount uint32
	Multisample core.Handle
	Depth       core.Handle
}

func (t *SurfaceTargets) Attachments() core.Attachments {
	return core.Attachments{
		Width:       t.Width,
		Height:      t.Height,
		SampleCount: t.SampleCount,
		Multisample: t.Multisample,
		Depth:       t.Depth,
	}
}

func (t *SurfaceTargets) release() {
	if t.Multisample != nil {
		t.Multisample.Release()
		t.Multisample = nil
	}
	if t.Depth != nil {
		t.Depth.Release()
		t.Depth = nil
	}
}

// Lifecycle owns the render targets that must track the surface size.
type Lifecycle struct {
	dev     TextureCreator
	opts    Options
	maxDim  uint32
	state   State
	current *SurfaceTargets
}

func New(dev TextureCreator, opts Options, maxDim uint32) *Lifecycle {
	if opts.SampleCount == 0 {
		opts.SampleCount = 1
	}
	if opts.Depth && opts.DepthFormat == core.TextureFormatSurface {
		opts.DepthFormat = core.TextureFormatDepth24Plus
	}
	if opts.Label == "" {
		opts.Label = "surface"
	}
	if maxDim == 0 {
		maxDim = 8192
	}
	return &Lifecycle{dev: dev, opts: opts, maxDim: maxDim}
}

func (l *Lifecycle) State() State             { return l.state }
func (l *Lifecycle) Current() *SurfaceTargets { return l.current }
func (l *Lifecycle) Options() Options         { return l.opts }

// Clamp limits a requested dimension to [1, maxDim].
func (l *Lifecycle) Clamp(v int) uint32 {
	if v < 1 {
		return 1
	}
	if uint64(v) > uint64(l.maxDim) {
		return l.maxDim
	}
	return uint32(v)
}

// Ensure makes the targets match the requested size and reports whether they were
// recreated. Old targets are released before new ones are created.
func (l *Lifecycle) Ensure(width, height int) (*SurfaceTargets, bool, error) {
	w, h := l.Clamp(width), l.Clamp(height)
	if l.state == Valid && l.current.Width == w && l.current.Height == h {
		return l.current, false, nil
	}

	if l.current != nil {
		l.current.release()
	}
	l.current = nil
	l.state = Invalid

	next := &SurfaceTargets{Width: w, Height: h, SampleCount: l.opts.SampleCount}
	if l.opts.SampleCount > 1 {
		tex, err := l.dev.CreateTexture(core.TextureDesc{
			Label:       l.opts.Label + " msaa",
			Width:       w,
			Height:      h,
			Format:      l.opts.ColorFormat,
			SampleCount: l.opts.SampleCount,
			Usage:       core.TextureUsageRenderAttachment,
		})
		if err != nil {
			return nil, false, fmt.Errorf("create multisample target %dx%d: %w", w, h, err)
		}
		next.Multisample = tex
	}
	if l.opts.Depth {
		tex, err := l.dev.CreateTexture(core.TextureDesc{
			Label:       l.opts.Label + " depth",
			Width:       w,
			Height:      h,
			Format:      l.opts.DepthFormat,
			SampleCount: l.opts.SampleCount,
			Usage:       core.TextureUsageRenderAttachment,
		})
		if err != nil {
			next.release()
			return nil, false, fmt.Errorf("create depth target %dx%d: %w", w, h, err)
		}
		next.Depth = tex
	}

	l.current = next
	l.state = Valid
	return next, true, nil
}

// Invalidate forces recreation on the next Ensure, e.g. after the device lost its surface.
func (l *Lifecycle) Invalidate() {
	if l.state == Valid {
		l.state = Invalid
	}
}

func (l *Lifecycle) Release() {
	if l.current != nil {
		l.current.release()
	}
	l.current = nil
	l.state = Uninitialized
}
