package frame

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/targets"
)

// Stats describes one RenderFrame call.
type Stats struct {
	Frame     uint64
	Skipped   bool
	Reason    string
	Width     uint32
	Height    uint32
	Recreated bool
	Uploaded  uint64
	Ranges    int
	Draws     int
}

type Option func(*Driver)

func WithSizeObserver(o *SizeObserver) Option { return func(d *Driver) { d.size = o } }
func WithLogger(l core.Logger) Option         { return func(d *Driver) { d.log = l } }
func WithProfiler(p *Profiler) Option         { return func(d *Driver) { d.prof = p } }

// WithClock replaces time.Now for elapsed and delta time.
func WithClock(now func() time.Time) Option { return func(d *Driver) { d.now = now } }

// Driver runs the per-frame sequence for one scene on one surface.
type Driver struct {
	dev     core.Device
	surf    core.Surface
	scene   *Scene
	targets *targets.Lifecycle
	size    *SizeObserver
	log     core.Logger
	prof    *Profiler
	now     func() time.Time

	busy  atomic.Bool
	fatal error

	frame   uint64
	started time.Time
	last    time.Time
}

func NewDriver(dev core.Device, surf core.Surface, scene *Scene, opts ...Option) (*Driver, error) {
	if err := scene.validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		dev:   dev,
		surf:  surf,
		scene: scene,
		log:   core.NopLogger(),
		prof:  NewProfiler(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.size == nil {
		d.size = &SizeObserver{}
	}
	d.prof.now = d.now

	d.targets = targets.New(dev, targets.Options{
		ColorFormat: surf.Format(),
		SampleCount: scene.SampleCount,
		Depth:       scene.Depth,
		Label:       scene.Name,
	}, dev.Limits().MaxTextureDimension2D)
	return d, nil
}

func (d *Driver) Sizes() *SizeObserver        { return d.size }
func (d *Driver) Profiler() *Profiler         { return d.prof }
func (d *Driver) Targets() *targets.Lifecycle { return d.targets }
func (d *Driver) Scene() *Scene               { return d.scene }

// Err is the fatal error that stopped the driver, if any.
func (d *Driver) Err() error { return d.fatal }

// RenderFrame produces one frame. It must not be called while a frame is in progress.
// Transient surface problems skip the frame without error; configuration and range
// errors stop the driver and are returned from every later call.
func (d *Driver) RenderFrame(settings Settings) (Stats, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return Stats{}, core.ErrReentrant
	}
	defer d.busy.Store(false)

	if d.fatal != nil {
		return Stats{}, d.fatal
	}

	stats, err := d.render(settings)
	if err != nil && core.IsFatal(err) {
		d.fatal = err
		d.log.Errorf("frame %d: %v", stats.Frame, err)
	}
	return stats, err
}

func (d *Driver) render(settings Settings) (Stats, error) {
	d.frame++
	stats := Stats{Frame: d.frame}
	d.prof.Reset()

	// 1. surface size and targets
	d.prof.BeginScope("ensure")
	w, h := d.size.Latest()
	if w <= 0 || h <= 0 {
		d.prof.EndScope("ensure")
		stats.Skipped, stats.Reason = true, "zero size"
		return stats, nil
	}
	st, recreated, err := d.targets.Ensure(w, h)
	if err != nil {
		d.prof.EndScope("ensure")
		return stats, fmt.Errorf("ensure targets: %w", err)
	}
	if recreated {
		if err := d.surf.Configure(st.Width, st.Height); err != nil {
			d.targets.Invalidate()
			d.prof.EndScope("ensure")
			return stats, fmt.Errorf("configure surface %dx%d: %w", st.Width, st.Height, err)
		}
		d.log.Debugf("%s: targets recreated at %dx%d", d.scene.Name, st.Width, st.Height)
	}
	stats.Width, stats.Height, stats.Recreated = st.Width, st.Height, recreated
	d.prof.EndScope("ensure")

	// 2. scene update
	d.prof.BeginScope("update")
	now := d.now()
	if d.started.IsZero() {
		d.started, d.last = now, now
	}
	info := Info{
		Frame:    d.frame,
		Width:    st.Width,
		Height:   st.Height,
		Aspect:   float32(st.Width) / float32(st.Height),
		Elapsed:  now.Sub(d.started),
		Delta:    now.Sub(d.last),
		Resized:  recreated,
		Settings: settings,
	}
	d.last = now
	if d.scene.Update != nil {
		if err := d.scene.Update(info); err != nil {
			d.prof.EndScope("update")
			return stats, fmt.Errorf("update %s: %w", d.scene.Name, err)
		}
	}
	d.prof.EndScope("update")

	// 3. host to GPU transfer of dirty ranges only
	d.prof.BeginScope("upload")
	for _, m := range d.scene.Mirrors {
		ranges := m.Host.Flush()
		for i, r := range ranges {
			if err := d.dev.WriteBuffer(m.GPU, r.Offset, m.Host.Bytes(r)); err != nil {
				for _, unsent := range ranges[i:] {
					m.Host.MarkDirty(unsent)
				}
				d.prof.EndScope("upload")
				return stats, fmt.Errorf("upload %s: %w", m.Label, err)
			}
			stats.Uploaded += r.Size
			stats.Ranges++
		}
	}
	d.prof.EndScope("upload")

	// 4. permutation selection
	var selected core.Handle
	if d.scene.Permutations != nil {
		combination := settings.Permutation
		if combination == nil {
			combination = make([]int, len(d.scene.Permutations.Choices()))
		}
		selected, err = d.scene.Permutations.LookupCombination(combination)
		if err != nil {
			return stats, fmt.Errorf("select bind group: %w", err)
		}
	}

	// 5. encode and submit
	d.prof.BeginScope("pass")
	defer d.prof.EndScope("pass")
	pass, err := d.surf.BeginPass(st.Attachments(), d.scene.Clear)
	if err != nil {
		if core.IsTransient(err) {
			stats.Skipped, stats.Reason = true, err.Error()
			return stats, nil
		}
		return stats, fmt.Errorf("begin pass: %w", err)
	}

	pass.SetPipeline(d.scene.Pipeline)
	for i, bg := range d.scene.BindGroups {
		if bg != nil {
			pass.SetBindGroup(uint32(i), bg)
		}
	}
	if selected != nil {
		pass.SetBindGroup(d.scene.PermutationGroup, selected)
	}
	for slot, vb := range d.scene.VertexBuffers {
		pass.SetVertexBuffer(uint32(slot), vb)
	}
	if d.scene.IndexBuffer != nil {
		pass.SetIndexBuffer(d.scene.IndexBuffer, d.scene.IndexFormat)
	}

	if len(d.scene.Objects) > 0 {
		for _, o := range d.scene.Objects {
			pass.SetBindGroup(o.Group, o.BindGroup)
			issue(pass, o.Draw)
			stats.Draws++
		}
	} else {
		issue(pass, d.scene.Draw)
		stats.Draws++
	}

	if err := pass.Submit(); err != nil {
		return stats, fmt.Errorf("submit: %w", err)
	}

	d.prof.SetCount("uploaded", int(stats.Uploaded))
	d.prof.SetCount("ranges", stats.Ranges)
	d.prof.SetCount("draws", stats.Draws)
	return stats, nil
}

func issue(pass core.Pass, dc DrawCall) {
	instances := dc.Instances
	if instances == 0 {
		instances = 1
	}
	if dc.Indexed {
		pass.DrawIndexed(dc.Count, instances)
	} else {
		pass.Draw(dc.Count, instances)
	}
}

// Release frees the size-dependent targets and the scene.
func (d *Driver) Release() {
	d.targets.Release()
	d.scene.Release()
}
