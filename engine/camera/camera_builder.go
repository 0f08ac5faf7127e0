package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: functional option to set the up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the initial vertical field of view.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: functional option to set the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithFovLimits bounds the field of view reachable through SetFov and Zoom.
// Limits where minFov > maxFov are ignored.
//
// Parameters:
//   - minFov: narrowest field of view in radians
//   - maxFov: widest field of view in radians
//
// Returns:
//   - CameraBuilderOption: functional option to set the limits
func WithFovLimits(minFov, maxFov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if minFov > 0 && minFov <= maxFov {
			c.minFov, c.maxFov = minFov, maxFov
		}
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: functional option to set the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithNear sets the near clipping plane distance.
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithController attaches a look controller.
//
// Parameters:
//   - ctrl: the controller driving position and target
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl LookController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
