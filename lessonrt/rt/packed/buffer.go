package packed

import (
	"encoding/binary"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/layout"
)

// Range is a byte span of the buffer that must reach the GPU.
type Range struct {
	Offset uint64
	Size   uint64
}

func (r Range) End() uint64 { return r.Offset + r.Size }

// Buffer is the host-side mirror of a GPU buffer holding records of one layout.
// Not safe for concurrent use.
type Buffer struct {
	layout  *layout.RecordLayout
	records int
	data    []byte
	dirty   []Range
}

func New(l *layout.RecordLayout, records int) (*Buffer, error) {
	if l == nil {
		return nil, core.Configf("packed buffer needs a layout")
	}
	if records < 1 {
		return nil, core.Configf("packed buffer needs at least one record, got %d", records)
	}
	return &Buffer{
		layout:  l,
		records: records,
		data:    make([]byte, l.Size(records)),
	}, nil
}

func (b *Buffer) Layout() *layout.RecordLayout { return b.layout }
func (b *Buffer) Records() int                 { return b.records }
func (b *Buffer) Len() uint64                  { return uint64(len(b.data)) }

// Data is the whole backing store. Callers must not modify it.
func (b *Buffer) Data() []byte { return b.data }

func (b *Buffer) Dirty() bool { return len(b.dirty) > 0 }

// MarkDirty queues r for the next Flush, e.g. a range whose transfer failed.
func (b *Buffer) MarkDirty(r Range) error {
	if r.Size == 0 || r.End() > uint64(len(b.data)) {
		return core.Rangef("dirty range %d+%d outside buffer of %d bytes", r.Offset, r.Size, len(b.data))
	}
	b.markDirty(r)
	return nil
}

func (b *Buffer) MarkAllDirty() {
	b.dirty = append(b.dirty[:0], Range{Offset: 0, Size: uint64(len(b.data))})
}

func (b *Buffer) locate(record int, field string) (layout.Field, uint64, error) {
	if record < 0 || record >= b.records {
		return layout.Field{}, 0, core.Rangef("record %d out of range [0,%d)", record, b.records)
	}
	f, ok := b.layout.Field(field)
	if !ok {
		return layout.Field{}, 0, core.Rangef("unknown field %q", field)
	}
	return f, uint64(record)*b.layout.Stride() + f.Offset, nil
}

// WriteFloats encodes values into a float field of one record.
func (b *Buffer) WriteFloats(record int, field string, values ...float32) error {
	f, at, err := b.locate(record, field)
	if err != nil {
		return err
	}
	n := f.Type.Floats()
	if f.Type == layout.CustomType {
		n = int(f.Size / 4)
	}
	if n == 0 || len(values) != n {
		return core.Rangef("field %q (%s) takes %d floats, got %d", field, f.Type, n, len(values))
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(b.data[at+uint64(i)*4:], math.Float32bits(v))
	}
	b.markDirty(Range{Offset: at, Size: uint64(n) * 4})
	return nil
}

// Write encodes value into one field of one record and marks the field dirty.
// Float fields take float32, []float32 or the mgl32 vector and matrix types.
// Unorm8x4 fields take [4]uint8, color.Color or an mgl32.Vec4 in [0,1].
func (b *Buffer) Write(record int, field string, value any) error {
	f, at, err := b.locate(record, field)
	if err != nil {
		return err
	}

	if f.Type == layout.Unorm8x4Type {
		rgba, ok := toUnorm8x4(value)
		if !ok {
			return core.Rangef("field %q (%s) cannot take %T", field, f.Type, value)
		}
		copy(b.data[at:at+4], rgba[:])
		b.markDirty(Range{Offset: at, Size: 4})
		return nil
	}

	switch v := value.(type) {
	case float32:
		return b.WriteFloats(record, field, v)
	case []float32:
		return b.WriteFloats(record, field, v...)
	case mgl32.Vec2:
		return b.WriteFloats(record, field, v[:]...)
	case mgl32.Vec3:
		return b.WriteFloats(record, field, v[:]...)
	case mgl32.Vec4:
		return b.WriteFloats(record, field, v[:]...)
	case mgl32.Mat4:
		return b.WriteFloats(record, field, v[:]...)
	default:
		return core.Rangef("field %q (%s) cannot take %T", field, f.Type, value)
	}
}

// Read decodes a float field of one record.
func (b *Buffer) Read(record int, field string) ([]float32, error) {
	f, at, err := b.locate(record, field)
	if err != nil {
		return nil, err
	}
	if f.Type == layout.Unorm8x4Type {
		return nil, core.Rangef("field %q is a packed color", field)
	}
	out := make([]float32, f.Size/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.data[at+uint64(i)*4:]))
	}
	return out, nil
}

func (b *Buffer) ReadColor(record int, field string) ([4]uint8, error) {
	f, at, err := b.locate(record, field)
	if err != nil {
		return [4]uint8{}, err
	}
	if f.Type != layout.Unorm8x4Type {
		return [4]uint8{}, core.Rangef("field %q is not a packed color", field)
	}
	var out [4]uint8
	copy(out[:], b.data[at:at+4])
	return out, nil
}

// Flush returns the coalesced dirty ranges in offset order and clears them.
func (b *Buffer) Flush() []Range {
	if len(b.dirty) == 0 {
		return nil
	}
	out := b.dirty
	b.dirty = nil
	return out
}

// Bytes is the slice of the backing store covered by r.
func (b *Buffer) Bytes(r Range) []byte {
	return b.data[r.Offset:r.End()]
}

// markDirty inserts r keeping the list sorted and merging touching ranges.
func (b *Buffer) markDirty(r Range) {
	i := sort.Search(len(b.dirty), func(i int) bool { return b.dirty[i].End() >= r.Offset })
	j := i
	for j < len(b.dirty) && b.dirty[j].Offset <= r.End() {
		if b.dirty[j].Offset < r.Offset {
			r.Size += r.Offset - b.dirty[j].Offset
			r.Offset = b.dirty[j].Offset
		}
		if e := b.dirty[j].End(); e > r.End() {
			r.Size = e - r.Offset
		}
		j++
	}
	b.dirty = append(b.dirty[:i], append([]Range{r}, b.dirty[j:]...)...)
}

func toUnorm8x4(value any) ([4]uint8, bool) {
	switch v := value.(type) {
	case [4]uint8:
		return v, true
	case mgl32.Vec4:
		var out [4]uint8
		for i, c := range v {
			out[i] = unorm8(c)
		}
		return out, true
	case color.Color:
		c := color.NRGBAModel.Convert(v).(color.NRGBA)
		return [4]uint8{c.R, c.G, c.B, c.A}, true
	default:
		return [4]uint8{}, false
	}
}

func unorm8(c float32) uint8 {
	if c <= 0 || c != c {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(math.Round(float64(c) * 255))
}
