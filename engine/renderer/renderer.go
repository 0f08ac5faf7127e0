package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// ErrNoVideoTexture is returned by DrawVideoFrame while the texture has not been allocated yet.
var ErrNoVideoTexture = errors.New("video texture not allocated")

// VideoTexture is the GPU side of a video surface the renderer samples from.
type VideoTexture interface {
	// TextureView returns the view to sample, nil before the first frame.
	TextureView() *wgpu.TextureView
	// Sampler returns the sampler to sample the view with.
	Sampler() *wgpu.Sampler
	// Generation changes whenever the view is replaced.
	Generation() uint64
}

// Projection selects the geometry the video texture is drawn on.
type Projection int

const (
	// ProjectionFlat letterboxes the frame on a screen-aligned quad.
	ProjectionFlat Projection = iota

	// ProjectionSphere wraps an equirectangular frame around the inside of a sphere viewed
	// through the view-projection set with SetViewProjection.
	ProjectionSphere
)

// String returns the flag spelling of the projection.
func (p Projection) String() string {
	switch p {
	case ProjectionSphere:
		return "sphere"
	default:
		return "quad"
	}
}

// ParseProjection maps "quad" or "sphere" to a Projection.
//
// Parameters:
//   - name: the projection name
//
// Returns:
//   - Projection: the parsed projection
//   - error: an error if the name is unknown
func ParseProjection(name string) (Projection, error) {
	switch name {
	case "quad", "flat":
		return ProjectionFlat, nil
	case "sphere":
		return ProjectionSphere, nil
	}
	return ProjectionFlat, fmt.Errorf("unknown projection %q", name)
}

// sphereSegments is the longitude and latitude resolution of the video sphere.
const sphereSegments = 50

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *logrus.Entry

	viewWidth  int
	viewHeight int

	bound           bool
	boundView       *wgpu.TextureView
	boundGeneration uint64

	uniforms      GPUVideoUniforms
	uniformsValid bool

	projection     Projection
	viewProjection [16]float32

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer draws video textures to the window surface.
//
// The Renderer owns the GPU device. Texture targets for video surfaces are created on Device and Queue,
// and each frame is drawn with BeginFrame, DrawVideoFrame, EndFrame and Present.
type Renderer interface {
	// Resize reconfigures the surface for a new window size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Device returns the GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the GPU queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// Projection returns the geometry frames are drawn on.
	//
	// Returns:
	//   - Projection: the projection chosen at construction
	Projection() Projection

	// SetViewProjection sets the camera matrix used by ProjectionSphere. Ignored by ProjectionFlat.
	//
	// Parameters:
	//   - m: column-major view-projection matrix
	SetViewProjection(m [16]float32)

	// DrawVideoFrame draws texture letterboxed into the window, or onto the sphere for ProjectionSphere.
	// The bind group is rebuilt only when the texture's generation changes and the uniform buffer is
	// written only when the transforms change.
	//
	// Parameters:
	//   - texture: the video texture to sample
	//   - texTransform: the texture-coordinate transform from the video surface
	//   - contentWidth: the visible video width in pixels, used for the quad aspect ratio
	//   - contentHeight: the visible video height in pixels
	//
	// Returns:
	//   - error: ErrNoVideoTexture before the first frame, or an error if binding the texture fails
	DrawVideoFrame(texture VideoTexture, texTransform [16]float32, contentWidth, contentHeight int) error

	// EndFrame ends the render pass and submits the frame.
	EndFrame()

	// Present presents the frame.
	Present()

	// Release frees all GPU resources including the device. Video surfaces created on the device
	// must be released first.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given window, configures the surface to the window size and
// registers the video pipeline for the configured projection.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface is rendered to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if the GPU could not be initialised
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      logrus.WithField("component", "renderer"),
	}
	common.Identity(r.viewProjection[:])

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var backend RendererBackend
	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer backend: %w", err)
	}

	if err := r.init(backend, window.Width(), window.Height()); err != nil {
		backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) init(backend RendererBackend, width, height int) error {
	r.backend = backend
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.viewWidth, r.viewHeight = width, height
	r.backend.ConfigureSurface(width, height)

	if err := r.backend.RegisterVideoPipeline(); err != nil {
		return fmt.Errorf("failed to register video pipeline: %w", err)
	}
	if r.projection == ProjectionSphere {
		vertices, indices := common.UVSphere(sphereSegments, sphereSegments)
		if err := r.backend.RegisterSpherePipeline(vertices, indices); err != nil {
			return fmt.Errorf("failed to register sphere pipeline: %w", err)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"function":   "NewRenderer",
		"width":      width,
		"height":     height,
		"projection": r.projection.String(),
	}).Info("Renderer initialised")
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.viewWidth, r.viewHeight = width, height
	r.uniformsValid = false
	r.mu.Unlock()

	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) Projection() Projection {
	return r.projection
}

func (r *renderer) SetViewProjection(m [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewProjection = m
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawVideoFrame(texture VideoTexture, texTransform [16]float32, contentWidth, contentHeight int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	view := texture.TextureView()
	if view == nil {
		return ErrNoVideoTexture
	}

	generation := texture.Generation()
	if !r.bound || generation != r.boundGeneration || view != r.boundView {
		if err := r.backend.BindVideoTexture(view, texture.Sampler()); err != nil {
			r.bound = false
			return fmt.Errorf("failed to bind video texture: %w", err)
		}
		r.bound = true
		r.boundView = view
		r.boundGeneration = generation

		r.logger.WithFields(logrus.Fields{
			"function":   "DrawVideoFrame",
			"generation": generation,
		}).Debug("Video texture bound")
	}

	next := GPUVideoUniforms{TexTransform: texTransform}
	if r.projection == ProjectionSphere {
		next.ClipTransform = r.viewProjection
	} else {
		common.AspectFit(next.ClipTransform[:], contentWidth, contentHeight, r.viewWidth, r.viewHeight)
	}
	if !r.uniformsValid || next != r.uniforms {
		r.backend.WriteVideoUniforms(next.Marshal())
		r.uniforms = next
		r.uniformsValid = true
	}

	if r.projection == ProjectionSphere {
		r.backend.DrawVideoSphere()
	} else {
		r.backend.DrawVideo()
	}
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	r.bound = false
	r.boundView = nil
	r.mu.Unlock()

	r.backend.Release()
}
