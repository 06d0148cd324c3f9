package layout

import (
	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

type FieldType uint8

const (
	CustomType FieldType = iota
	Scalar
	Vec2Type
	Vec3Type
	Vec4Type
	Mat4Type
	Unorm8x4Type // four 8-bit normalized channels packed in one word
)

func (t FieldType) String() string {
	switch t {
	case Scalar:
		return "f32"
	case Vec2Type:
		return "vec2f"
	case Vec3Type:
		return "vec3f"
	case Vec4Type:
		return "vec4f"
	case Mat4Type:
		return "mat4x4f"
	case Unorm8x4Type:
		return "unorm8x4"
	default:
		return "custom"
	}
}

// Floats is the number of float32 components, zero for non-float types.
func (t FieldType) Floats() int {
	switch t {
	case Scalar:
		return 1
	case Vec2Type:
		return 2
	case Vec3Type:
		return 3
	case Vec4Type:
		return 4
	case Mat4Type:
		return 16
	default:
		return 0
	}
}

type AlignmentClass uint8

const (
	// Tight packs fields back to back on 4-byte boundaries (vertex and most storage data).
	Tight AlignmentClass = iota
	// Padded aligns each field to its natural alignment and rounds the stride to 16 bytes
	// (uniform data).
	Padded
)

func (c AlignmentClass) String() string {
	if c == Padded {
		return "padded"
	}
	return "tight"
}

func (c AlignmentClass) strideAlign() uint64 {
	if c == Padded {
		return 16
	}
	return 4
}

// minPaddedStride is the smallest uniform binding a device accepts.
const minPaddedStride = 16

type FieldSpec struct {
	Name  string
	Type  FieldType
	Size  uint64
	Align uint64
}

func Float32(name string) FieldSpec { return FieldSpec{Name: name, Type: Scalar, Size: 4, Align: 4} }
func Vec2(name string) FieldSpec    { return FieldSpec{Name: name, Type: Vec2Type, Size: 8, Align: 8} }
func Vec3(name string) FieldSpec    { return FieldSpec{Name: name, Type: Vec3Type, Size: 12, Align: 16} }
func Vec4(name string) FieldSpec    { return FieldSpec{Name: name, Type: Vec4Type, Size: 16, Align: 16} }
func Mat4(name string) FieldSpec    { return FieldSpec{Name: name, Type: Mat4Type, Size: 64, Align: 16} }

func Unorm8x4(name string) FieldSpec {
	return FieldSpec{Name: name, Type: Unorm8x4Type, Size: 4, Align: 4}
}

// Custom declares an opaque field, e.g. explicit padding.
func Custom(name string, size, align uint64) FieldSpec {
	return FieldSpec{Name: name, Type: CustomType, Size: size, Align: align}
}

func (f FieldSpec) validate() error {
	if f.Name == "" {
		return core.Configf("field with empty name")
	}
	if f.Size == 0 || f.Size%4 != 0 {
		return core.Configf("field %q: size %d is not a positive multiple of 4", f.Name, f.Size)
	}
	if f.Align != 0 && (f.Align&(f.Align-1) != 0 || f.Align < 4) {
		return core.Configf("field %q: alignment %d is not a power of two >= 4", f.Name, f.Align)
	}
	return nil
}

// Field is a FieldSpec placed at its byte offset.
type Field struct {
	FieldSpec
	Offset uint64
}

// RecordLayout is the planned byte layout of one record. Immutable.
type RecordLayout struct {
	class  AlignmentClass
	fields []Field
	index  map[string]int
	stride uint64
}

func alignUp(v, a uint64) uint64 {
	if a <= 1 {
		return v
	}
	return (v + a - 1) / a * a
}

// Plan places fields in declaration order for the given alignment class.
func Plan(class AlignmentClass, fields ...FieldSpec) (*RecordLayout, error) {
	if len(fields) == 0 {
		return nil, core.Configf("layout has no fields")
	}

	l := &RecordLayout{
		class:  class,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	var offset uint64
	for _, f := range fields {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, dup := l.index[f.Name]; dup {
			return nil, core.Configf("duplicate field %q", f.Name)
		}
		if f.Align == 0 {
			f.Align = 4
		}
		if class == Padded {
			offset = alignUp(offset, f.Align)
		}
		l.index[f.Name] = len(l.fields)
		l.fields = append(l.fields, Field{FieldSpec: f, Offset: offset})
		offset += f.Size
	}

	l.stride = alignUp(offset, class.strideAlign())
	if class == Padded && l.stride < minPaddedStride {
		l.stride = minPaddedStride
	}
	return l, nil
}

// MustPlan is Plan for layouts fixed at compile time.
func MustPlan(class AlignmentClass, fields ...FieldSpec) *RecordLayout {
	l, err := Plan(class, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *RecordLayout) Class() AlignmentClass { return l.class }
func (l *RecordLayout) Stride() uint64        { return l.stride }

func (l *RecordLayout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

func (l *RecordLayout) Field(name string) (Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// Offset returns the byte offset of name within a record.
func (l *RecordLayout) Offset(name string) (uint64, error) {
	f, ok := l.Field(name)
	if !ok {
		return 0, core.Rangef("unknown field %q", name)
	}
	return f.Offset, nil
}

// Size is the byte size of records consecutive records.
func (l *RecordLayout) Size(records int) uint64 {
	if records < 0 {
		return 0
	}
	return l.stride * uint64(records)
}
