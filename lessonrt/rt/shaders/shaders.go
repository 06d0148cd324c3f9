package shaders

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/gogpu/naga"
)

//go:embed triangle.wgsl
var TriangleWGSL string

//go:embed interstage.wgsl
var InterstageWGSL string

//go:embed checkerboard.wgsl
var CheckerboardWGSL string

//go:embed uniforms.wgsl
var UniformsWGSL string

//go:embed storage_buffers.wgsl
var StorageBuffersWGSL string

//go:embed vertex_buffers.wgsl
var VertexBuffersWGSL string

//go:embed textures.wgsl
var TexturesWGSL string

//go:embed loading_images.wgsl
var LoadingImagesWGSL string

//go:embed cube.wgsl
var CubeWGSL string

var byName = map[string]*string{
	"triangle":        &TriangleWGSL,
	"interstage":      &InterstageWGSL,
	"checkerboard":    &CheckerboardWGSL,
	"uniforms":        &UniformsWGSL,
	"storage_buffers": &StorageBuffersWGSL,
	"vertex_buffers":  &VertexBuffersWGSL,
	"textures":        &TexturesWGSL,
	"loading_images":  &LoadingImagesWGSL,
	"cube":            &CubeWGSL,
}

// Names lists the embedded shaders in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func Source(name string) (string, bool) {
	src, ok := byName[name]
	if !ok {
		return "", false
	}
	return *src, true
}

// Validate compiles WGSL to SPIR-V off the device to catch syntax and type errors
// before pipeline creation.
func Validate(label, source string) error {
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("shader %s: %w", label, err)
	}
	return nil
}
