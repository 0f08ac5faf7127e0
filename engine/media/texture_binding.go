package media

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// textureBinding is the implementation of the TextureBinding interface.
type textureBinding struct {
	mu    *sync.Mutex
	state BindingState

	surface RenderableSurface
	source  MediaSource
	signal  *FrameSignal

	logger        *logrus.Entry
	looping       bool
	onSizeChanged func(width, height int)
}

// TextureBinding pairs one MediaSource with one RenderableSurface for the lifetime of the binding.
//
// The source's frame-ready notification is the only write path into the binding's FrameSignal; the
// renderer pulls with UpdateTexture once per render pass. The pairing is fixed at construction.
type TextureBinding interface {
	// UpdateTexture advances the surface to the newest decoded frame if one was signalled since the
	// last successful call, and writes its texture-coordinate transform into out.
	// This is the only call the renderer makes per frame. It never fails; no update is not an error.
	//
	// Parameters:
	//   - out: receives the column-major transform when an update happened; untouched otherwise
	//
	// Returns:
	//   - bool: true if the surface advanced and out was written
	UpdateTexture(out *[16]float32) bool

	// Surface returns the renderable surface owned by this binding. Renderers use it to bind the
	// texture; they must not release it.
	//
	// Returns:
	//   - RenderableSurface: the owned surface
	Surface() RenderableSurface

	// Source returns the media source owned by this binding, for stats reporting.
	// Callers must not release it.
	//
	// Returns:
	//   - MediaSource: the owned source
	Source() MediaSource

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - BindingState: the state
	State() BindingState

	// Stats returns the frame signal counters.
	//
	// Returns:
	//   - FrameSignalStats: the snapshot
	Stats() FrameSignalStats

	// Close stops and releases the media source, then releases the surface.
	// Safe to call more than once; later calls return nil.
	//
	// Returns:
	//   - error: the joined release errors, if any
	Close() error
}

var _ TextureBinding = &textureBinding{}

// NewTextureBinding allocates a surface from target, opens asset, wires the frame-ready
// notification into a FrameSignal and starts looping playback.
// Any failure releases what was already acquired (source first, then surface) and is returned
// wrapped in ErrSurfaceAllocation, ErrSourceOpen, ErrPrepare or ErrStart.
//
// Parameters:
//   - target: the texture target that allocates the renderable surface
//   - asset: the asset handle that opens the media source
//   - options: functional options for the binding
//
// Returns:
//   - TextureBinding: the playing binding
//   - error: error if construction fails
func NewTextureBinding(target TextureTarget, asset AssetHandle, options ...TextureBindingBuilderOption) (TextureBinding, error) {
	b := &textureBinding{
		mu:      &sync.Mutex{},
		state:   BindingStateConstructed,
		looping: true,
		logger:  logrus.WithField("component", "texture_binding"),
	}
	for _, opt := range options {
		opt(b)
	}

	b.logger.WithFields(logrus.Fields{
		"function": "NewTextureBinding",
		"looping":  b.looping,
	}).Info("Creating texture binding")

	if target == nil {
		return nil, ErrNilTarget
	}
	if asset == nil {
		return nil, ErrNilAsset
	}

	surface, err := target.NewSurface()
	if err != nil {
		b.logFailure("NewSurface", err)
		return nil, fmt.Errorf("%w: %w", ErrSurfaceAllocation, err)
	}
	b.surface = surface

	source, err := asset.Open()
	if err != nil {
		b.logFailure("Open", err)
		return nil, b.abort(fmt.Errorf("%w: %w", ErrSourceOpen, err))
	}
	b.source = source

	b.signal = NewFrameSignal(surface, b.logger)

	source.BindOutputSurface(surface)
	source.SetFrameReadyCallback(b.signal.Mark)
	source.SetSizeChangedCallback(b.handleSizeChanged)
	source.SetLooping(b.looping)

	if err := source.Prepare(); err != nil {
		b.logFailure("Prepare", err)
		return nil, b.abort(fmt.Errorf("%w: %w", ErrPrepare, err))
	}

	if err := source.Start(); err != nil {
		b.logFailure("Start", err)
		return nil, b.abort(fmt.Errorf("%w: %w", ErrStart, err))
	}

	b.mu.Lock()
	b.state = BindingStatePlaying
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"function": "NewTextureBinding",
		"state":    BindingStatePlaying.String(),
	}).Info("Texture binding playing")

	return b, nil
}

func (b *textureBinding) UpdateTexture(out *[16]float32) bool {
	return b.signal.Sync(out)
}

func (b *textureBinding) Surface() RenderableSurface {
	return b.surface
}

func (b *textureBinding) Source() MediaSource {
	return b.source
}

func (b *textureBinding) State() BindingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *textureBinding) Stats() FrameSignalStats {
	return b.signal.Stats()
}

func (b *textureBinding) Close() error {
	b.mu.Lock()
	if b.state == BindingStateClosed {
		b.mu.Unlock()
		return nil
	}
	b.state = BindingStateClosed
	b.mu.Unlock()

	// The producer must be gone before the surface it writes into is released.
	sourceErr := b.source.Release()
	b.signal.Close()
	surfaceErr := b.surface.Release()

	err := errors.Join(sourceErr, surfaceErr)
	entry := b.logger.WithFields(logrus.Fields{
		"function": "Close",
		"stats":    fmt.Sprintf("%+v", b.signal.Stats()),
	})
	if err != nil {
		entry.WithField("error", err.Error()).Warn("Texture binding closed with errors")
	} else {
		entry.Info("Texture binding closed")
	}
	return err
}

// handleSizeChanged runs on the producer goroutine. The size is informational only.
func (b *textureBinding) handleSizeChanged(width, height int) {
	b.logger.WithFields(logrus.Fields{
		"function": "handleSizeChanged",
		"width":    width,
		"height":   height,
	}).Info("Video size changed")

	if b.onSizeChanged != nil {
		b.onSizeChanged(width, height)
	}
}

// abort releases whatever construction acquired, source before surface, and returns cause
// joined with any release error.
func (b *textureBinding) abort(cause error) error {
	var releaseErrs []error
	if b.source != nil {
		releaseErrs = append(releaseErrs, b.source.Release())
	}
	if b.surface != nil {
		releaseErrs = append(releaseErrs, b.surface.Release())
	}

	b.mu.Lock()
	b.state = BindingStateClosed
	b.mu.Unlock()

	if releaseErr := errors.Join(releaseErrs...); releaseErr != nil {
		return errors.Join(cause, releaseErr)
	}
	return cause
}

func (b *textureBinding) logFailure(step string, err error) {
	b.logger.WithFields(logrus.Fields{
		"function": "NewTextureBinding",
		"step":     step,
		"error":    err.Error(),
	}).Error("Texture binding construction failed")
}
