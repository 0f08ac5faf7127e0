// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// FrameStagingData holds one decoded video frame as RGBA pixel data pending GPU upload.
// Producers hand it to a surface, which uploads the most recent one when the renderer advances.
type FrameStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the frame. It is in RGBA format, with 4 bytes per pixel
	// and Width*4 bytes per row.
	Pixels []byte
	// Width is the width of the frame in pixels.
	Width int
	// Height is the height of the frame in pixels.
	Height int
	// Visible is the region of the frame that should be sampled. Decoders that pad to macroblock
	// boundaries report a smaller rectangle here; it is always contained in (0, 0, Width, Height).
	Visible image.Rectangle
	// Sequence is the producer-assigned, monotonically increasing frame number.
	Sequence uint64
	// PTS is the presentation timestamp of the frame relative to the start of the stream.
	PTS time.Duration
}

// NewFrameStagingData converts a decoded image into RGBA staging data.
// The pixels are copied, so the caller may reuse img after this returns.
// Reference: https://pkg.go.dev/image/draw
//
// Parameters:
//   - img: the decoded image (any color model)
//   - sequence: the producer frame number
//   - pts: the presentation timestamp
//
// Returns:
//   - *FrameStagingData: the converted frame
//   - error: error if img is nil or empty
func NewFrameStagingData(img image.Image, sequence uint64, pts time.Duration) (*FrameStagingData, error) {
	if img == nil {
		return nil, fmt.Errorf("image is nil")
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has empty bounds %v", bounds)
	}

	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &FrameStagingData{
		Pixels:   rgba.Pix,
		Width:    width,
		Height:   height,
		Visible:  rgba.Bounds(),
		Sequence: sequence,
		PTS:      pts,
	}, nil
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero values are replaced with the defaults chosen by the consumer (see Coalesce).
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
