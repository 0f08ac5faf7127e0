package media

import "github.com/sirupsen/logrus"

// TextureBindingBuilderOption is a functional option applied to a binding during construction via NewTextureBinding.
type TextureBindingBuilderOption func(*textureBinding)

// WithLogger sets the logger used by the binding and its frame signal.
//
// Parameters:
//   - logger: the logrus entry to log through (nil keeps the default)
//
// Returns:
//   - TextureBindingBuilderOption: a function that applies the logger option to a binding
func WithLogger(logger *logrus.Entry) TextureBindingBuilderOption {
	return func(b *textureBinding) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLooping controls whether the media source restarts at the end of the stream.
// Bindings loop by default.
//
// Parameters:
//   - looping: true to loop playback
//
// Returns:
//   - TextureBindingBuilderOption: a function that applies the looping option to a binding
func WithLooping(looping bool) TextureBindingBuilderOption {
	return func(b *textureBinding) {
		b.looping = looping
	}
}

// WithSizeChangedCallback registers a hook fired on the producer goroutine after the binding logs a
// size change. The hook must not block and must not call back into the binding.
//
// Parameters:
//   - callback: function receiving the new video width and height in pixels
//
// Returns:
//   - TextureBindingBuilderOption: a function that applies the callback option to a binding
func WithSizeChangedCallback(callback func(width, height int)) TextureBindingBuilderOption {
	return func(b *textureBinding) {
		b.onSizeChanged = callback
	}
}
