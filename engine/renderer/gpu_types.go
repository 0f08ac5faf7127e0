package renderer

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-video/common"
)

// VideoQuadShaderSource is the WGSL program that draws a video texture on a full-screen quad.
// Its uniform block matches GPUVideoUniforms exactly.
//
//go:embed assets/video_quad.wgsl
var VideoQuadShaderSource string

// VideoSphereShaderSource is the WGSL program that draws a video texture on the inside of a UV sphere.
// It shares the GPUVideoUniforms block and bind group layout with the quad program.
//
//go:embed assets/video_sphere.wgsl
var VideoSphereShaderSource string

// GPUVideoUniforms is the GPU-aligned uniform block for the video pipelines.
// Size: 128 bytes (two mat4x4<f32>).
type GPUVideoUniforms struct {
	TexTransform  [16]float32 // offset 0: maps mesh uv to texture coordinates
	ClipTransform [16]float32 // offset 64: letterbox scale for the quad, view-projection for the sphere
}

// Size returns the size of the GPUVideoUniforms struct in bytes.
//
// Returns:
//   - int: The size of the struct in bytes.
func (g *GPUVideoUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniforms into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUVideoUniforms) Marshal() []byte {
	data := make([]float32, 0, 32)
	data = append(data, g.TexTransform[:]...)
	data = append(data, g.ClipTransform[:]...)
	return common.SliceToBytes(data)
}
