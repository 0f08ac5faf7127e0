package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// RendererBackend is the GPU API surface the Renderer drives.
// Every method is called from the render goroutine.
type RendererBackend interface {
	// Device returns the GPU device textures are created on.
	Device() *wgpu.Device

	// Queue returns the queue uploads are written through.
	Queue() *wgpu.Queue

	// ConfigureSurface is a wrapper for boilerplate logic required when calling Configure on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterVideoPipeline compiles the video quad shader and creates its pipeline, bind group layout
	// and uniform buffer. Must be called after ConfigureSurface.
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterVideoPipeline() error

	// RegisterSpherePipeline compiles the video sphere shader, creates its pipeline on the video bind
	// group layout and uploads the sphere mesh. Must be called after RegisterVideoPipeline.
	//
	// Parameters:
	//   - vertices: interleaved position xyz and uv, common.SphereVertexStride floats per vertex
	//   - indices: triangle list indices
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterSpherePipeline(vertices []float32, indices []uint16) error

	// BindVideoTexture rebuilds the video bind group around view and sampler.
	//
	// Parameters:
	//   - view: the texture view to sample
	//   - sampler: the sampler to sample it with
	//
	// Returns:
	//   - error: an error if the bind group could not be created
	BindVideoTexture(view *wgpu.TextureView, sampler *wgpu.Sampler) error

	// WriteVideoUniforms uploads the uniform block for the next draw.
	//
	// Parameters:
	//   - data: the marshalled GPUVideoUniforms
	WriteVideoUniforms(data []byte)

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	//
	// Returns:
	//   - error: an error if the surface texture or command encoder could not be acquired
	BeginFrame() error

	// DrawVideo encodes the video quad draw in the current render pass.
	DrawVideo()

	// DrawVideoSphere encodes the indexed video sphere draw in the current render pass.
	DrawVideoSphere()

	// EndFrame ends the render pass and submits the frame's commands.
	EndFrame()

	// Present presents the acquired surface texture.
	Present()

	// Release frees the pipeline, buffers, device and surface.
	Release()
}
