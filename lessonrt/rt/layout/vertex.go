package layout

import (
	"reflect"
	"strings"

	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
)

func vertexFormat(t FieldType) (core.VertexFormat, bool) {
	switch t {
	case Scalar:
		return core.VertexFormatFloat32, true
	case Vec2Type:
		return core.VertexFormatFloat32x2, true
	case Vec3Type:
		return core.VertexFormatFloat32x3, true
	case Vec4Type:
		return core.VertexFormatFloat32x4, true
	case Unorm8x4Type:
		return core.VertexFormatUnorm8x4, true
	default:
		return 0, false
	}
}

// VertexBuffer describes the planned layout as a vertex buffer for a pipeline.
// Every key of locations must name a field; fields without a location are skipped.
func (l *RecordLayout) VertexBuffer(step core.StepMode, locations map[string]uint32) (core.VertexBufferLayout, error) {
	for name := range locations {
		if _, ok := l.index[name]; !ok {
			return core.VertexBufferLayout{}, core.Configf("vertex location for unknown field %q", name)
		}
	}

	out := core.VertexBufferLayout{Stride: l.stride, StepMode: step}
	for _, f := range l.fields {
		loc, ok := locations[f.Name]
		if !ok {
			continue
		}
		format, ok := vertexFormat(f.Type)
		if !ok {
			return core.VertexBufferLayout{}, core.Configf("field %q of type %s cannot be a vertex attribute", f.Name, f.Type)
		}
		out.Attributes = append(out.Attributes, core.VertexAttribute{
			Location: loc,
			Offset:   f.Offset,
			Format:   format,
		})
	}
	if len(out.Attributes) == 0 {
		return core.VertexBufferLayout{}, core.Configf("vertex buffer has no attributes")
	}
	return out, nil
}

func parseFieldType(name string) (FieldSpec, bool) {
	switch strings.ToLower(name) {
	case "f32", "float", "float1":
		return Float32(""), true
	case "vec2", "vec2f", "float2":
		return Vec2(""), true
	case "vec3", "vec3f", "float3":
		return Vec3(""), true
	case "vec4", "vec4f", "float4":
		return Vec4(""), true
	case "mat4", "mat4x4f":
		return Mat4(""), true
	case "unorm8x4", "color":
		return Unorm8x4(""), true
	default:
		return FieldSpec{}, false
	}
}

// FromStruct plans a layout from the tagged fields of a struct value or type:
//
//	type Instance struct {
//		Color  [4]uint8   `layout:"color" type:"unorm8x4"`
//		Offset mgl32.Vec2 `layout:"offset" type:"vec2"`
//	}
//
// Untagged fields are ignored. The type tag defaults from the Go field size.
func FromStruct(v any, class AlignmentClass) (*RecordLayout, error) {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, core.Configf("layout source must be a struct, got %v", t)
	}

	var specs []FieldSpec
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := sf.Tag.Get("layout")
		if name == "" {
			continue
		}
		typeName := sf.Tag.Get("type")
		if typeName == "" {
			typeName = defaultTypeFor(sf.Type)
		}
		spec, ok := parseFieldType(typeName)
		if !ok {
			return nil, core.Configf("field %s: unsupported layout type %q", sf.Name, typeName)
		}
		spec.Name = name
		specs = append(specs, spec)
	}
	return Plan(class, specs...)
}

func defaultTypeFor(t reflect.Type) string {
	switch t.Size() {
	case 4:
		if t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8 {
			return "unorm8x4"
		}
		return "f32"
	case 8:
		return "vec2"
	case 12:
		return "vec3"
	case 16:
		return "vec4"
	case 64:
		return "mat4"
	default:
		return ""
	}
}
