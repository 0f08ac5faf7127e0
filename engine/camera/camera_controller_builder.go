package camera

import "math"

// LookControllerOption is a functional option for configuring a LookController.
type LookControllerOption func(*lookControllerImpl)

// WithPosition sets the viewer position.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - LookControllerOption: functional option to set the position
func WithPosition(x, y, z float32) LookControllerOption {
	return func(lc *lookControllerImpl) {
		lc.position = [3]float32{x, y, z}
	}
}

// WithYaw sets the initial horizontal angle.
//
// Parameters:
//   - yaw: angle in radians (0 looks down -Z)
//
// Returns:
//   - LookControllerOption: functional option to set the yaw
func WithYaw(yaw float32) LookControllerOption {
	return func(lc *lookControllerImpl) {
		lc.yaw = yaw
	}
}

// WithPitch sets the initial vertical angle.
func WithPitch(pitch float32) LookControllerOption {
	return func(lc *lookControllerImpl) {
		lc.pitch = pitch
	}
}

// WithMaxPitch bounds how far the view can tilt from the horizon in either direction.
// Values outside (0, Pi/2) are ignored.
//
// Parameters:
//   - maxPitch: limit in radians
//
// Returns:
//   - LookControllerOption: functional option to set the pitch limit
func WithMaxPitch(maxPitch float32) LookControllerOption {
	return func(lc *lookControllerImpl) {
		if maxPitch > 0 && float64(maxPitch) < math.Pi/2 {
			lc.maxPitch = maxPitch
		}
	}
}

// WithLookSpeed sets the keyboard turn step in radians.
func WithLookSpeed(speed float32) LookControllerOption {
	return func(lc *lookControllerImpl) {
		lc.lookSpeed = speed
	}
}

// WithMouseSensitivity sets the mouse look sensitivity.
//
// Parameters:
//   - sensitivity: radians turned per pixel of mouse movement
//
// Returns:
//   - LookControllerOption: functional option to set the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) LookControllerOption {
	return func(lc *lookControllerImpl) {
		lc.mouseSensitivity = sensitivity
	}
}
