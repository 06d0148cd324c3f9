package frame

import (
	"time"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/packed"
	"github.com/gekko3d/fundamentals/lessonrt/rt/permute"
)

// Mirror pairs a host buffer with the GPU buffer it is copied into.
type Mirror struct {
	Label string
	Host  *packed.Buffer
	GPU   core.Handle
}

type DrawCall struct {
	Count     uint32
	Instances uint32
	Indexed   bool
}

// Object is one draw with its own bind group.
type Object struct {
	Group     uint32
	BindGroup core.Handle
	Draw      DrawCall
}

// Info is what a scene sees when it updates for a frame.
type Info struct {
	Frame    uint64
	Width    uint32
	Height   uint32
	Aspect   float32
	Elapsed  time.Duration
	Delta    time.Duration
	Resized  bool
	Settings Settings
}

// Scene declares everything one frame draws. Handles listed in Resources are owned
// by the scene and released by Release; the rest are borrowed.
type Scene struct {
	Name     string
	Pipeline core.Handle
	Mirrors  []*Mirror

	// VertexBuffers are bound to slots 0..n-1.
	VertexBuffers []core.Handle
	IndexBuffer   core.Handle
	IndexFormat   core.IndexFormat

	// BindGroups are bound to groups 0..n-1 every frame; nil entries are skipped.
	BindGroups []core.Handle

	// Permutations picks one bind group per frame from the frame settings.
	Permutations     *permute.Table[core.Handle]
	PermutationGroup uint32

	// Objects replace Draw when set: one draw per object.
	Objects []Object
	Draw    DrawCall

	Clear       core.Color
	SampleCount uint32
	Depth       bool

	Update func(Info) error

	Resources []core.Handle
}

// Own records h as a scene resource and returns it.
func (s *Scene) Own(h core.Handle) core.Handle {
	if h != nil {
		s.Resources = append(s.Resources, h)
	}
	return h
}

func (s *Scene) validate() error {
	if s == nil {
		return core.Configf("nil scene")
	}
	if s.Pipeline == nil {
		return core.Configf("scene %q has no pipeline", s.Name)
	}
	if len(s.Objects) == 0 && s.Draw.Count == 0 {
		return core.Configf("scene %q draws nothing", s.Name)
	}
	indexed := s.Draw.Indexed
	for _, o := range s.Objects {
		if o.BindGroup == nil {
			return core.Configf("scene %q has an object without a bind group", s.Name)
		}
		indexed = indexed || o.Draw.Indexed
	}
	if indexed && (s.IndexBuffer == nil || s.IndexFormat == core.IndexFormatNone) {
		return core.Configf("scene %q draws indexed without an index buffer", s.Name)
	}
	for _, m := range s.Mirrors {
		if m == nil || m.Host == nil || m.GPU == nil {
			return core.Configf("scene %q has an incomplete mirror", s.Name)
		}
	}
	return nil
}

// Release frees the permutation table and every owned resource, newest first.
func (s *Scene) Release() {
	if s.Permutations != nil {
		s.Permutations.Release(nil)
		s.Permutations = nil
	}
	for i := len(s.Resources) - 1; i >= 0; i-- {
		s.Resources[i].Release()
	}
	s.Resources = nil
}
