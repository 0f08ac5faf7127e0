package media

import "errors"

// Sentinel errors for media package operations.
// Construction errors are wrapped with the underlying cause; use errors.Is to classify them.

// Construction errors.
var (
	// ErrNilTarget indicates no texture target was supplied.
	ErrNilTarget = errors.New("texture target is nil")

	// ErrNilAsset indicates no asset handle was supplied.
	ErrNilAsset = errors.New("asset handle is nil")

	// ErrSurfaceAllocation indicates the texture target could not allocate a surface.
	ErrSurfaceAllocation = errors.New("surface allocation failed")

	// ErrSourceOpen indicates the asset or stream could not be opened.
	ErrSourceOpen = errors.New("media source open failed")

	// ErrPrepare indicates the media pipeline failed to initialise.
	ErrPrepare = errors.New("media source prepare failed")

	// ErrStart indicates playback could not be started.
	ErrStart = errors.New("media source start failed")
)

// Per-frame errors. These are logged and never returned to the renderer.
var (
	// ErrAdvance indicates the surface could not advance to the latest decoded frame.
	ErrAdvance = errors.New("frame advance failed")
)
