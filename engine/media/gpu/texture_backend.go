package gpu

import (
	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// textureBackend owns the GPU objects behind one surface. All calls come from the render goroutine.
type textureBackend interface {
	// Allocate replaces the backing texture and view with a new width x height texture.
	// The previous texture is released only after the new one exists.
	//
	// Parameters:
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//
	// Returns:
	//   - error: error if the texture or its view could not be created
	Allocate(width, height uint32) error

	// Upload writes frame's pixels to the top-left corner of the texture.
	// The texture must be at least as large as the frame.
	//
	// Parameters:
	//   - frame: the RGBA frame to upload
	//
	// Returns:
	//   - error: error if the write fails
	Upload(frame *common.FrameStagingData) error

	// TextureView returns the view over the current texture, nil before the first Allocate.
	TextureView() *wgpu.TextureView

	// Sampler returns the sampler for the texture.
	Sampler() *wgpu.Sampler

	// Release frees the texture, view and sampler.
	Release()
}
