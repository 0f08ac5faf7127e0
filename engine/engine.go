package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/camera"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/Carmen-Shannon/oxy-video/engine/media/gpu"
	"github.com/Carmen-Shannon/oxy-video/engine/profiler"
	"github.com/Carmen-Shannon/oxy-video/engine/renderer"
	"github.com/Carmen-Shannon/oxy-video/engine/window"
	"github.com/sirupsen/logrus"
)

// VideoSurface is the part of a binding's surface the render loop draws from.
// gpu.Surface satisfies it.
type VideoSurface interface {
	renderer.VideoTexture

	// FrameSize returns the visible size of the frame on the texture.
	FrameSize() (int, int)
}

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	logger   *logrus.Entry

	// binding is replaced under mu; transform and drawnBinding belong to the render goroutine.
	// frameMu is held for the whole of renderFrame so SetBinding can wait out a frame in flight.
	binding      media.TextureBinding
	drawnBinding media.TextureBinding
	transform    [16]float32
	frameMu      *sync.Mutex

	camera camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the video player.
// It orchestrates the engine loop, render loop, and window management. Each render frame pulls the
// newest decoded frame through the texture binding and draws it.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Profiler returns the profiler so callers can register extra reporters.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// ProfilerEnabled reports whether profiling output is enabled.
	//
	// Returns:
	//   - bool: true if enabled
	ProfilerEnabled() bool

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Camera returns the camera driving the sphere projection.
	//
	// Returns:
	//   - camera.Camera: the camera, or nil when none was configured
	Camera() camera.Camera

	// SetBinding sets the texture binding drawn each frame. The engine takes ownership and closes
	// it on shutdown. The previous binding, if any, is returned to the caller, who must close it.
	// SetBinding blocks until a frame already drawing the previous binding has finished, so the
	// returned binding is no longer in use by the render goroutine.
	//
	// Parameters:
	//   - b: the binding to draw (nil to draw nothing)
	//
	// Returns:
	//   - media.TextureBinding: the previous binding, or nil
	SetBinding(b media.TextureBinding) media.TextureBinding

	// Binding returns the current texture binding.
	//
	// Returns:
	//   - media.TextureBinding: the binding, or nil
	Binding() media.TextureBinding

	// Run starts the engine and render goroutines and runs the window message loop on the calling
	// goroutine. Blocks until the window closes or Quit is called, then releases the binding, the
	// renderer and the window in that order.
	//
	// Returns:
	//   - error: the joined release errors, if any
	Run() error

	// Quit signals all engine goroutines to stop and asks the window to close.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, binding, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		wg:              sync.WaitGroup{},
		logger:          logrus.WithField("component", "engine"),
		frameMu:         &sync.Mutex{},
		engineTickRate:  time.Second / 60,
	}
	common.Identity(e.transform[:])

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	if e.binding != nil {
		e.registerReporters(e.binding)
	}

	if e.window != nil {
		if e.camera != nil {
			e.camera.SetViewport(e.window.Width(), e.window.Height())
		}
		e.window.SetResizeCallback(func(width, height int) {
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			if e.camera != nil {
				e.camera.SetViewport(width, height)
			}
		})
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.window.RequestClose()
			default:
			}
		})
		e.window.SetCloseCallback(e.signalQuit)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Run() error {
	if e.window == nil {
		return fmt.Errorf("engine has no window")
	}

	e.running.Store(true)
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	return e.shutdown()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		e.window.RequestClose()
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// shutdown releases the binding before the renderer, since the binding's textures live on the
// renderer's device, and closes the window last.
func (e *engine) shutdown() error {
	e.mu.Lock()
	binding := e.binding
	e.binding = nil
	e.mu.Unlock()

	var errs []error
	if binding != nil {
		if err := binding.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close texture binding: %w", err))
		}
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close window: %w", err))
		}
	}

	err := errors.Join(errs...)
	entry := e.logger.WithField("function", "shutdown")
	if err != nil {
		entry.WithField("error", err.Error()).Warn("Engine shut down with errors")
	} else {
		entry.Info("Engine shut down")
	}
	return err
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"function": "handleRender",
				"panic":    fmt.Sprint(r),
			}).Error("Render goroutine recovered from panic")
			e.Quit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame()

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled.Load() && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame pulls the newest decoded frame onto the texture, then draws it. The transform from
// the last successful update is kept while no new frame arrives.
func (e *engine) renderFrame() {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	e.mu.Lock()
	binding := e.binding
	e.mu.Unlock()

	if binding != e.drawnBinding {
		common.Identity(e.transform[:])
		e.drawnBinding = binding
	}
	if binding != nil {
		binding.UpdateTexture(&e.transform)
	}

	if e.renderer == nil {
		return
	}
	if err := e.renderer.BeginFrame(); err != nil {
		e.logger.WithFields(logrus.Fields{
			"function": "renderFrame",
			"error":    err.Error(),
		}).Debug("Skipping frame")
		return
	}

	if e.camera != nil {
		e.camera.Update()
		e.renderer.SetViewProjection(e.camera.ViewProjectionMatrix())
	}

	if binding != nil {
		if surface, ok := binding.Surface().(VideoSurface); ok {
			width, height := surface.FrameSize()
			err := e.renderer.DrawVideoFrame(surface, e.transform, width, height)
			if err != nil && !errors.Is(err, renderer.ErrNoVideoTexture) {
				e.logger.WithFields(logrus.Fields{
					"function": "renderFrame",
					"error":    err.Error(),
				}).Warn("Failed to draw video frame")
			}
		}
	}

	e.renderer.EndFrame()
	e.renderer.Present()
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// registerReporters hooks the binding's counters into the profiler.
func (e *engine) registerReporters(b media.TextureBinding) {
	e.profiler.AddReporter("signal", func() logrus.Fields {
		stats := b.Stats()
		return logrus.Fields{
			"marks":            stats.Marks,
			"consumed":         stats.Consumed,
			"coalesced":        stats.Coalesced,
			"advance_failures": stats.AdvanceFailures,
		}
	})

	if s, ok := b.Surface().(interface{ Stats() gpu.SurfaceStats }); ok {
		e.profiler.AddReporter("surface", func() logrus.Fields {
			stats := s.Stats()
			return logrus.Fields{
				"queued":        stats.Queued,
				"uploaded":      stats.Uploaded,
				"dropped":       stats.Dropped,
				"reallocations": stats.Reallocations,
				"texture":       fmt.Sprintf("%dx%d", stats.TextureWidth, stats.TextureHeight),
				"frame":         fmt.Sprintf("%dx%d", stats.FrameWidth, stats.FrameHeight),
			}
		})
	} else {
		e.profiler.RemoveReporter("surface")
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) ProfilerEnabled() bool {
	return e.profilingEnabled.Load()
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) SetBinding(b media.TextureBinding) media.TextureBinding {
	e.mu.Lock()
	previous := e.binding
	e.binding = b
	e.mu.Unlock()

	// A frame that read previous before the swap still holds frameMu; later frames see b.
	e.frameMu.Lock()
	e.frameMu.Unlock()

	if b != nil {
		e.registerReporters(b)
	} else {
		e.profiler.RemoveReporter("signal")
		e.profiler.RemoveReporter("surface")
	}
	return previous
}

func (e *engine) Binding() media.TextureBinding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.binding
}

// frameDuration converts a frame rate to a frame duration; fps <= 0 yields 0.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
