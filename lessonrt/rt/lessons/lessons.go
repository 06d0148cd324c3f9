// Package lessons builds one frame.Scene per WebGPU lesson. Each lesson shows a
// single way of getting data to a shader: constants, interstage variables,
// uniforms, storage buffers, vertex buffers, textures and a lit cube.
package lessons

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/geometry"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
	"github.com/gekko3d/fundamentals/lessonrt/rt/permute"
)

// Config holds the knobs lessons read. Zero values take defaults, except Clear,
// where zero is transparent black.
type Config struct {
	Objects         int
	Annulus         geometry.AnnulusParams
	SampleCount     uint32
	ValidateShaders bool
	Clear           core.Color
}

func DefaultConfig() Config {
	return Config{
		Objects: 100,
		Annulus: geometry.AnnulusParams{
			OuterRadius:  0.5,
			InnerRadius:  0.25,
			Subdivisions: 24,
			EndAngle:     2 * math.Pi,
		},
		SampleCount: 1,
		Clear:       core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
	}
}

// Env is everything a lesson needs to build its scene.
type Env struct {
	Device        core.Device
	SurfaceFormat core.TextureFormat
	Config        Config
	Rand          *rand.Rand
	Log           core.Logger
}

func (e Env) withDefaults() Env {
	def := DefaultConfig()
	if e.Config.Objects <= 0 {
		e.Config.Objects = def.Objects
	}
	if e.Config.Annulus.Subdivisions == 0 {
		e.Config.Annulus = def.Annulus
	}
	if e.Config.SampleCount == 0 {
		e.Config.SampleCount = def.SampleCount
	}
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(1, 2))
	}
	if e.Log == nil {
		e.Log = core.NopLogger()
	}
	return e
}

type builder func(env Env, s *frame.Scene) error

var registry = map[string]builder{
	"triangle":        buildTriangle,
	"interstage":      buildInterstage,
	"checkerboard":    buildCheckerboard,
	"uniforms":        buildUniforms,
	"storage-buffers": buildStorageBuffers,
	"vertex-buffers":  buildVertexBuffers,
	"textures":        buildTextures,
	"loading-images":  buildLoadingImages,
	"cube":            buildCube,
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build creates every GPU object the named lesson needs. On failure everything
// created so far is released.
func Build(name string, env Env) (*frame.Scene, error) {
	b, ok := registry[name]
	if !ok {
		return nil, core.Configf("unknown lesson %q, have %s", name, strings.Join(Names(), ", "))
	}
	if env.Device == nil {
		return nil, core.Configf("lesson %s needs a device", name)
	}
	env = env.withDefaults()

	s := &frame.Scene{Name: name, Clear: env.Config.Clear, SampleCount: 1}
	if err := b(env, s); err != nil {
		s.Release()
		return nil, fmt.Errorf("lesson %s: %w", name, err)
	}
	env.Log.Debugf("lesson %s: %d resources, %d mirrors", name, len(s.Resources), len(s.Mirrors))
	return s, nil
}

func (e Env) pipeline(s *frame.Scene, desc core.PipelineDesc) error {
	if desc.Label == "" {
		desc.Label = s.Name
	}
	desc.ValidateShader = e.Config.ValidateShaders
	h, err := e.Device.CreatePipeline(desc)
	if err != nil {
		return err
	}
	s.Pipeline = s.Own(h)
	return nil
}

// objectsFitting clamps the configured object count so that an array of records with
// the given strides stays within the device's buffer size limit.
func (e Env) objectsFitting(label string, strides ...uint64) (int, error) {
	n := e.Config.Objects
	limit := e.Device.Limits().MaxBufferSize
	if limit == 0 {
		return n, nil
	}
	for _, stride := range strides {
		fit := limit / stride
		if uint64(n) <= fit {
			continue
		}
		if fit == 0 {
			return 0, fmt.Errorf("%w: %w: %s record of %d bytes exceeds buffer limit %d",
				core.ErrConfiguration, core.ErrCapability, label, stride, limit)
		}
		e.Log.Warnf("%v: %s: %d objects need %d bytes, device allows %d; drawing %d",
			core.ErrCapability, label, n, uint64(n)*stride, limit, fit)
		n = int(fit)
	}
	return n, nil
}

// checkSize rejects a buffer larger than the device allows. Sizes that depend on the
// object count are clamped by objectsFitting first, so this only trips on fixed data.
func (e Env) checkSize(label string, size uint64) error {
	if limit := e.Device.Limits().MaxBufferSize; limit != 0 && size > limit {
		return fmt.Errorf("%w: %w: buffer %s needs %d bytes, device allows %d",
			core.ErrConfiguration, core.ErrCapability, label, size, limit)
	}
	return nil
}

// mirror creates the GPU side of host and registers it with the scene. The whole
// buffer goes up on the first frame.
func (e Env) mirror(s *frame.Scene, label string, host *packed.Buffer, usage core.BufferUsage) (*frame.Mirror, error) {
	if err := e.checkSize(label, host.Len()); err != nil {
		return nil, err
	}
	h, err := e.Device.CreateBuffer(core.BufferDesc{
		Label: label,
		Size:  host.Len(),
		Usage: usage | core.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	s.Own(h)
	host.MarkAllDirty()
	m := &frame.Mirror{Label: label, Host: host, GPU: h}
	s.Mirrors = append(s.Mirrors, m)
	return m, nil
}

// upload creates a buffer for data that never changes and writes it immediately.
func (e Env) upload(s *frame.Scene, label string, data []byte, usage core.BufferUsage) (core.Handle, error) {
	if err := e.checkSize(label, uint64(len(data))); err != nil {
		return nil, err
	}
	h, err := e.Device.CreateBuffer(core.BufferDesc{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | core.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	s.Own(h)
	if err := e.Device.WriteBuffer(h, 0, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return h, nil
}

func (e Env) bindGroup(s *frame.Scene, label string, entries ...core.BindEntry) (core.Handle, error) {
	h, err := e.Device.CreateBindGroup(core.BindGroupDesc{
		Label:    label,
		Pipeline: s.Pipeline,
		Entries:  entries,
	})
	if err != nil {
		return nil, err
	}
	return s.Own(h), nil
}

func (e Env) texture(s *frame.Scene, label string, img *image.RGBA) (core.Handle, error) {
	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())
	tex, err := e.Device.CreateTexture(core.TextureDesc{
		Label:       label,
		Width:       w,
		Height:      h,
		Format:      core.TextureFormatRGBA8Unorm,
		SampleCount: 1,
		Usage:       core.TextureUsageTextureBinding | core.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	s.Own(tex)
	if err := e.Device.WriteTexture(tex, rgbaPixels(img), w, h); err != nil {
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return tex, nil
}

var samplerChoices = []permute.Choice{
	permute.Binary("address_u"),
	permute.Binary("address_v"),
	permute.Binary("mag_filter"),
	permute.Binary("min_filter"),
}

// samplerPermutations builds one sampler and bind group for each of the 16 sampler
// settings; the frame settings pick one per frame.
func (e Env) samplerPermutations(s *frame.Scene, entries func(sampler core.Handle) []core.BindEntry) error {
	table, err := permute.BuildAll(samplerChoices, func(c permute.Combination) (core.Handle, error) {
		settings := core.SamplerSettingsFrom(c)
		sampler, err := e.Device.CreateSampler(settings.Desc(fmt.Sprintf("%s sampler %v", s.Name, c)))
		if err != nil {
			return nil, err
		}
		s.Own(sampler)
		return e.Device.CreateBindGroup(core.BindGroupDesc{
			Label:    fmt.Sprintf("%s bind group %v", s.Name, c),
			Pipeline: s.Pipeline,
			Entries:  entries(sampler),
		})
	})
	if err != nil {
		return err
	}
	s.Permutations = table
	s.PermutationGroup = 0
	return nil
}

func randRange(r *rand.Rand, lo, hi float32) float32 {
	return lo + r.Float32()*(hi-lo)
}
