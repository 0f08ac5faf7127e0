package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-video/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	fov    float32
	minFov float32
	maxFov float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	controller LookController
}

// Camera defines the interface for the perspective camera used by the sphere projection.
// The camera holds perspective settings and computes view/projection matrices
// from an attached LookController each frame via Update().
type Camera interface {
	// Up returns the camera's up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the view matrix computed by the last Update.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the projection matrix computed by the last Update.
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view as of the last Update.
	//
	// Returns:
	//   - [16]float32: column-major view-projection matrix
	ViewProjectionMatrix() [16]float32

	// SetFov sets the vertical field of view, clamped to the camera's fov limits.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetViewport sets the aspect ratio from a viewport size. Degenerate sizes are ignored.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	SetViewport(width, height int)

	// Zoom narrows the field of view by delta radians, widening it for negative delta.
	//
	// Parameters:
	//   - delta: change in radians
	Zoom(delta float32)

	// Controller returns the attached look controller.
	Controller() LookController

	// SetController replaces the attached look controller.
	SetController(ctrl LookController)

	// Update recomputes the matrices from the controller's current position and target.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 45 degree field of view and a LookController at the origin
// unless options say otherwise. The matrices are valid immediately.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     [3]float32{0, 1, 0},
		fov:    float32(math.Pi / 4),
		minFov: float32(math.Pi / 9),
		maxFov: float32(2 * math.Pi / 3),
		aspect: 1,
		near:   0.1,
		far:    100,
	}

	for _, opt := range options {
		opt(c)
	}
	if c.controller == nil {
		c.controller = NewLookController()
	}

	c.mu.Lock()
	c.fov = clamp(c.fov, c.minFov, c.maxFov)
	c.updateMatrices()
	c.mu.Unlock()
	return c
}

func (c *cameraImpl) Up() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = clamp(fov, c.minFov, c.maxFov)
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = clamp(c.fov-delta, c.minFov, c.maxFov)
	c.updateMatrices()
}

func (c *cameraImpl) Controller() LookController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl LookController) {
	if ctrl == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// updateMatrices must be called with mu held.
func (c *cameraImpl) updateMatrices() {
	px, py, pz := c.controller.Position()
	tx, ty, tz := c.controller.Target()

	common.LookAt(c.viewMatrix[:], [3]float32{px, py, pz}, [3]float32{tx, ty, tz}, c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
