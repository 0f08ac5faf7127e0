package engine

import (
	"github.com/Carmen-Shannon/oxy-video/engine/camera"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/Carmen-Shannon/oxy-video/engine/profiler"
	"github.com/Carmen-Shannon/oxy-video/engine/renderer"
	"github.com/Carmen-Shannon/oxy-video/engine/window"
	"github.com/sirupsen/logrus"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithCamera attaches the camera whose view-projection is handed to the renderer every frame.
// The camera's aspect follows the window size. Only a renderer built with
// renderer.WithProjection(renderer.ProjectionSphere) makes use of it.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithProfiler replaces the default profiler, e.g. to change its interval or logger.
//
// Parameters:
//   - p: the profiler to use (nil keeps the default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = frameDuration(fps)
	}
}

// WithWindow sets the window the engine runs the message loop on.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer frames are drawn with. The engine releases it on shutdown.
//
// Parameters:
//   - r: a renderer created for the engine's window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithBinding sets the texture binding drawn each frame. The engine closes it on shutdown.
//
// Parameters:
//   - b: a binding whose surface was created on the renderer's device
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBinding(b media.TextureBinding) EngineBuilderOption {
	return func(e *engine) {
		e.binding = b
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}

// WithLogger sets the logger for the engine.
//
// Parameters:
//   - logger: the logrus entry (nil keeps the default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *logrus.Entry) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
