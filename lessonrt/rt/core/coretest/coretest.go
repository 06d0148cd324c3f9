// Package coretest provides recording implementations of the core device interfaces
// so frame, target and lesson logic can be tested without a GPU.
package coretest

import (
	"fmt"
	"sync"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

// Events is an ordered log shared by a Device, its Surface and their Passes.
type Events struct {
	mu  sync.Mutex
	log []string
}

func (e *Events) add(format string, args ...any) {
	e.mu.Lock()
	e.log = append(e.log, fmt.Sprintf(format, args...))
	e.mu.Unlock()
}

func (e *Events) All() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.log...)
}

func (e *Events) Reset() {
	e.mu.Lock()
	e.log = e.log[:0]
	e.mu.Unlock()
}

// Handle is a fake GPU object.
type Handle struct {
	ID       int
	Kind     string
	Label    string
	Desc     any
	Released int
	events   *Events
}

func (h *Handle) Release() {
	h.Released++
	h.events.add("release %s %s", h.Kind, h.Label)
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s#%d(%s)", h.Kind, h.ID, h.Label)
}

type Write struct {
	Dst    *Handle
	Offset uint64
	Data   []byte
}

type Device struct {
	Events  *Events
	Handles []*Handle
	Writes  []Write
	// Fail makes the next creation of the given kind return the error.
	Fail map[string]error
	// FailWrite, when set, decides per buffer write whether it fails.
	FailWrite func(Write) error
	limits    core.Limits
	nextID    int
}

func NewDevice() *Device {
	return &Device{
		Events: &Events{},
		Fail:   map[string]error{},
		limits: core.Limits{MaxTextureDimension2D: 8192, MaxBufferSize: 256 << 20},
	}
}

func (d *Device) SetLimits(l core.Limits) { d.limits = l }

func (d *Device) create(kind, label string, desc any) (core.Handle, error) {
	if err, ok := d.Fail[kind]; ok {
		delete(d.Fail, kind)
		return nil, err
	}
	d.nextID++
	h := &Handle{ID: d.nextID, Kind: kind, Label: label, Desc: desc, events: d.Events}
	d.Handles = append(d.Handles, h)
	d.Events.add("create %s %s", kind, label)
	return h, nil
}

func (d *Device) CreateBuffer(desc core.BufferDesc) (core.Handle, error) {
	return d.create("buffer", desc.Label, desc)
}

func (d *Device) CreateTexture(desc core.TextureDesc) (core.Handle, error) {
	return d.create("texture", desc.Label, desc)
}

func (d *Device) CreateSampler(desc core.SamplerDesc) (core.Handle, error) {
	return d.create("sampler", desc.Label, desc)
}

func (d *Device) CreatePipeline(desc core.PipelineDesc) (core.Handle, error) {
	return d.create("pipeline", desc.Label, desc)
}

func (d *Device) CreateBindGroup(desc core.BindGroupDesc) (core.Handle, error) {
	return d.create("bindgroup", desc.Label, desc)
}

func (d *Device) WriteBuffer(dst core.Handle, offset uint64, data []byte) error {
	h, ok := dst.(*Handle)
	if !ok {
		return fmt.Errorf("coretest: foreign handle %T", dst)
	}
	w := Write{Dst: h, Offset: offset, Data: append([]byte(nil), data...)}
	if d.FailWrite != nil {
		if err := d.FailWrite(w); err != nil {
			d.Events.add("write-failed %s %d+%d", h.Label, offset, len(data))
			return err
		}
	}
	d.Writes = append(d.Writes, w)
	d.Events.add("write %s %d+%d", h.Label, offset, len(data))
	return nil
}

func (d *Device) WriteTexture(dst core.Handle, pixels []byte, width, height uint32) error {
	h, ok := dst.(*Handle)
	if !ok {
		return fmt.Errorf("coretest: foreign handle %T", dst)
	}
	d.Events.add("write-texture %s %dx%d", h.Label, width, height)
	return nil
}

func (d *Device) Limits() core.Limits { return d.limits }

// ByKind returns every handle created with the given kind, in creation order.
func (d *Device) ByKind(kind string) []*Handle {
	var out []*Handle
	for _, h := range d.Handles {
		if h.Kind == kind {
			out = append(out, h)
		}
	}
	return out
}

// WritesTo returns the writes that targeted h.
func (d *Device) WritesTo(h core.Handle) []Write {
	var out []Write
	for _, w := range d.Writes {
		if w.Dst == h {
			out = append(out, w)
		}
	}
	return out
}

type Surface struct {
	Events     *Events
	Configured [][2]uint32
	Passes     []*Pass
	// Unavailable makes that many upcoming BeginPass calls fail transiently.
	Unavailable int
	format      core.TextureFormat
}

func NewSurface(events *Events) *Surface {
	return &Surface{Events: events, format: core.TextureFormatBGRA8Unorm}
}

func (s *Surface) Format() core.TextureFormat { return s.format }

func (s *Surface) Configure(width, height uint32) error {
	s.Configured = append(s.Configured, [2]uint32{width, height})
	s.Events.add("configure %dx%d", width, height)
	return nil
}

func (s *Surface) BeginPass(att core.Attachments, clear core.Color) (core.Pass, error) {
	if s.Unavailable > 0 {
		s.Unavailable--
		return nil, core.ErrSurfaceUnavailable
	}
	p := &Pass{Attachments: att, Clear: clear, events: s.Events}
	s.Passes = append(s.Passes, p)
	s.Events.add("begin %dx%d samples=%d", att.Width, att.Height, att.SampleCount)
	return p, nil
}

type Draw struct {
	Count     uint32
	Instances uint32
	Indexed   bool
	BindGroup core.Handle
}

type Pass struct {
	Attachments   core.Attachments
	Clear         core.Color
	Pipeline      core.Handle
	BindGroups    map[uint32]core.Handle
	VertexBuffers map[uint32]core.Handle
	IndexBuffer   core.Handle
	IndexFormat   core.IndexFormat
	Draws         []Draw
	Submitted     bool
	events        *Events
}

func (p *Pass) SetPipeline(pipeline core.Handle) {
	p.Pipeline = pipeline
	p.events.add("pipeline %v", pipeline)
}

func (p *Pass) SetBindGroup(index uint32, group core.Handle) {
	if p.BindGroups == nil {
		p.BindGroups = map[uint32]core.Handle{}
	}
	p.BindGroups[index] = group
	p.events.add("bindgroup %d %v", index, group)
}

func (p *Pass) SetVertexBuffer(slot uint32, buffer core.Handle) {
	if p.VertexBuffers == nil {
		p.VertexBuffers = map[uint32]core.Handle{}
	}
	p.VertexBuffers[slot] = buffer
	p.events.add("vertexbuffer %d %v", slot, buffer)
}

func (p *Pass) SetIndexBuffer(buffer core.Handle, format core.IndexFormat) {
	p.IndexBuffer = buffer
	p.IndexFormat = format
	p.events.add("indexbuffer %v", buffer)
}

func (p *Pass) Draw(vertexCount, instanceCount uint32) {
	p.Draws = append(p.Draws, Draw{Count: vertexCount, Instances: instanceCount, BindGroup: p.BindGroups[0]})
	p.events.add("draw %d x%d", vertexCount, instanceCount)
}

func (p *Pass) DrawIndexed(indexCount, instanceCount uint32) {
	p.Draws = append(p.Draws, Draw{Count: indexCount, Instances: instanceCount, Indexed: true, BindGroup: p.BindGroups[0]})
	p.events.add("draw-indexed %d x%d", indexCount, instanceCount)
}

func (p *Pass) Submit() error {
	p.Submitted = true
	p.events.add("submit")
	return nil
}
