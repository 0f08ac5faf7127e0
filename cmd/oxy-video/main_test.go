package main

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/camera"
	"github.com/stretchr/testify/assert"
)

// TestFrameInterval verifies the frame rate flag converts to an interval and 0 keeps the container's.
func TestFrameInterval(t *testing.T) {
	assert.Equal(t, 40*time.Millisecond, frameInterval(25))
	assert.Zero(t, frameInterval(0))
	assert.Zero(t, frameInterval(-5))
}

// TestMouseLookDrag verifies the view only turns while the button is held, by the movement since the last event.
func TestMouseLookDrag(t *testing.T) {
	look := camera.NewLookController(camera.WithMouseSensitivity(0.01))
	drag := &mouseLook{controller: look}

	drag.move(50, 50)
	assert.Zero(t, look.Yaw())

	drag.press(10, 10)
	drag.move(20, 10)
	drag.move(30, 15)
	assert.InDelta(t, 0.2, look.Yaw(), 1e-6)
	assert.InDelta(t, -0.05, look.Pitch(), 1e-6)

	drag.release(30, 15)
	drag.move(100, 100)
	assert.InDelta(t, 0.2, look.Yaw(), 1e-6)
}

// TestTurnKeys verifies the arrow keys step the view.
func TestTurnKeys(t *testing.T) {
	look := camera.NewLookController(camera.WithLookSpeed(0.1))

	turn(look, common.KeyRight)
	turn(look, common.KeyRight)
	turn(look, common.KeyLeft)
	turn(look, common.KeyUp)
	assert.InDelta(t, 0.1, look.Yaw(), 1e-6)
	assert.InDelta(t, 0.1, look.Pitch(), 1e-6)

	turn(look, common.KeyDown)
	turn(look, common.KeyQ)
	assert.InDelta(t, 0, look.Pitch(), 1e-6)
}
