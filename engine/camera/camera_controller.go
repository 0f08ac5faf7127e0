package camera

import (
	"math"
	"sync"
)

// LookController turns a fixed viewpoint by yaw and pitch, as a viewer at the center of a video
// sphere does. Yaw 0 and pitch 0 look down -Z; positive yaw turns toward +X and positive pitch
// tilts toward +Y.
type LookController interface {
	// Position returns the viewer's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space position
	Position() (x, y, z float32)

	// SetPosition moves the viewer.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Target returns a point one unit along the view direction.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Look turns the view by a mouse delta scaled by MouseSensitivity.
	// Moving right turns right and moving down (positive dy in window coordinates) tilts down.
	//
	// Parameters:
	//   - dx: horizontal mouse delta in pixels
	//   - dy: vertical mouse delta in pixels
	Look(dx, dy float32)

	// TurnLeft turns left by one look speed step.
	TurnLeft()

	// TurnRight turns right by one look speed step.
	TurnRight()

	// TurnUp tilts up by one look speed step, clamped to the maximum pitch.
	TurnUp()

	// TurnDown tilts down by one look speed step, clamped to the minimum pitch.
	TurnDown()

	// Yaw returns the horizontal angle in radians, wrapped to [-Pi, Pi).
	Yaw() float32

	// SetYaw sets the horizontal angle.
	//
	// Parameters:
	//   - yaw: angle in radians
	SetYaw(yaw float32)

	// Pitch returns the vertical angle in radians.
	Pitch() float32

	// SetPitch sets the vertical angle, clamped to the pitch limits.
	//
	// Parameters:
	//   - pitch: angle in radians
	SetPitch(pitch float32)

	// LookSpeed returns the keyboard turn step in radians.
	LookSpeed() float32

	// MouseSensitivity returns radians turned per pixel of mouse movement.
	MouseSensitivity() float32
}

type lookControllerImpl struct {
	mu *sync.Mutex

	position [3]float32

	yaw      float32
	pitch    float32
	maxPitch float32

	lookSpeed        float32
	mouseSensitivity float32
}

var _ LookController = &lookControllerImpl{}

// NewLookController creates a LookController at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - LookController: the newly created controller
func NewLookController(options ...LookControllerOption) LookController {
	lc := &lookControllerImpl{
		mu:               &sync.Mutex{},
		maxPitch:         float32(math.Pi/2 - 0.01),
		lookSpeed:        0.03,
		mouseSensitivity: 0.005,
	}

	for _, option := range options {
		option(lc)
	}

	lc.yaw = wrapAngle(lc.yaw)
	lc.pitch = clamp(lc.pitch, -lc.maxPitch, lc.maxPitch)
	return lc
}

func (lc *lookControllerImpl) Position() (x, y, z float32) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.position[0], lc.position[1], lc.position[2]
}

func (lc *lookControllerImpl) SetPosition(x, y, z float32) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.position = [3]float32{x, y, z}
}

func (lc *lookControllerImpl) Target() (x, y, z float32) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	cp := float32(math.Cos(float64(lc.pitch)))
	fx := float32(math.Sin(float64(lc.yaw))) * cp
	fy := float32(math.Sin(float64(lc.pitch)))
	fz := -float32(math.Cos(float64(lc.yaw))) * cp
	return lc.position[0] + fx, lc.position[1] + fy, lc.position[2] + fz
}

func (lc *lookControllerImpl) Look(dx, dy float32) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.turn(dx*lc.mouseSensitivity, -dy*lc.mouseSensitivity)
}

func (lc *lookControllerImpl) TurnLeft() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.turn(-lc.lookSpeed, 0)
}

func (lc *lookControllerImpl) TurnRight() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.turn(lc.lookSpeed, 0)
}

func (lc *lookControllerImpl) TurnUp() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.turn(0, lc.lookSpeed)
}

func (lc *lookControllerImpl) TurnDown() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.turn(0, -lc.lookSpeed)
}

func (lc *lookControllerImpl) Yaw() float32 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.yaw
}

func (lc *lookControllerImpl) SetYaw(yaw float32) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.yaw = wrapAngle(yaw)
}

func (lc *lookControllerImpl) Pitch() float32 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.pitch
}

func (lc *lookControllerImpl) SetPitch(pitch float32) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.pitch = clamp(pitch, -lc.maxPitch, lc.maxPitch)
}

func (lc *lookControllerImpl) LookSpeed() float32 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.lookSpeed
}

func (lc *lookControllerImpl) MouseSensitivity() float32 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.mouseSensitivity
}

// turn must be called with mu held.
func (lc *lookControllerImpl) turn(dYaw, dPitch float32) {
	lc.yaw = wrapAngle(lc.yaw + dYaw)
	lc.pitch = clamp(lc.pitch+dPitch, -lc.maxPitch, lc.maxPitch)
}

func wrapAngle(a float32) float32 {
	w := math.Mod(float64(a)+math.Pi, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	return float32(w - math.Pi)
}
