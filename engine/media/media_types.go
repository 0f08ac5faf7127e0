package media

import (
	"github.com/Carmen-Shannon/oxy-video/common"
)

// FrameSink is the producer-facing half of a renderable surface.
// A MediaSource writes every decoded frame into the sink it was bound to.
type FrameSink interface {
	// QueueFrame stores frame as the newest decoded frame. It must not block on the render side;
	// a frame that was queued but never advanced to is overwritten.
	//
	// Parameters:
	//   - frame: the decoded frame, owned by the sink after the call
	QueueFrame(frame *common.FrameStagingData)
}

// RenderableSurface is the GPU-sampleable target a TextureBinding advances once per render pass.
// The producer writes through the embedded FrameSink; the render goroutine calls the remaining methods.
type RenderableSurface interface {
	FrameSink

	// AdvanceToLatestFrame makes the most recently queued frame the one sampled by the renderer.
	// It is bounded and never waits for the producer. Errors wrap ErrAdvance.
	//
	// Returns:
	//   - error: error if the frame could not be made current
	AdvanceToLatestFrame() error

	// Transform returns the column-major texture-coordinate transform for the current frame.
	//
	// Returns:
	//   - [16]float32: the transform matrix
	Transform() [16]float32

	// Release frees the GPU resources behind the surface. Safe to call more than once.
	//
	// Returns:
	//   - error: error if releasing fails
	Release() error
}

// MediaSource decodes a video stream into a bound FrameSink on its own producer goroutine.
// Callbacks fire on that goroutine and must be registered before Start.
type MediaSource interface {
	// BindOutputSurface sets the sink that receives decoded frames.
	//
	// Parameters:
	//   - sink: the frame sink
	BindOutputSurface(sink FrameSink)

	// SetLooping controls whether playback restarts at the end of the stream.
	//
	// Parameters:
	//   - looping: true to loop
	SetLooping(looping bool)

	// SetFrameReadyCallback registers the handler fired after each frame is queued on the sink.
	//
	// Parameters:
	//   - callback: the handler (nil disables)
	SetFrameReadyCallback(callback func())

	// SetSizeChangedCallback registers the handler fired when the decoded frame size changes,
	// including the first decoded frame.
	//
	// Parameters:
	//   - callback: the handler receiving the new width and height in pixels (nil disables)
	SetSizeChangedCallback(callback func(width, height int))

	// Prepare initialises the decode pipeline (container header, decoder state).
	//
	// Returns:
	//   - error: error if the pipeline cannot be initialised
	Prepare() error

	// Start launches the producer goroutine. Prepare must have succeeded.
	//
	// Returns:
	//   - error: error if playback cannot start
	Start() error

	// Release stops the producer goroutine and frees the stream. Safe to call more than once.
	//
	// Returns:
	//   - error: error if closing the stream fails
	Release() error
}

// TextureTarget allocates the renderable surface a TextureBinding samples from.
type TextureTarget interface {
	// NewSurface allocates a surface bound to this target.
	//
	// Returns:
	//   - RenderableSurface: the new surface
	//   - error: error if allocation fails
	NewSurface() (RenderableSurface, error)
}

// AssetHandle opens the media source a TextureBinding plays.
type AssetHandle interface {
	// Open opens the underlying asset and returns an unprepared source.
	//
	// Returns:
	//   - MediaSource: the opened source
	//   - error: error if the asset cannot be opened
	Open() (MediaSource, error)
}

// BindingState is the lifecycle state of a TextureBinding.
type BindingState int

const (
	// BindingStateConstructed is the state while construction is in progress.
	BindingStateConstructed BindingState = iota

	// BindingStatePlaying is entered once playback has started. It is never re-entered.
	BindingStatePlaying

	// BindingStateClosed is entered after Close. UpdateTexture always reports no update.
	BindingStateClosed
)

func (s BindingState) String() string {
	switch s {
	case BindingStateConstructed:
		return "constructed"
	case BindingStatePlaying:
		return "playing"
	case BindingStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
