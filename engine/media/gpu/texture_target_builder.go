package gpu

import (
	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/sirupsen/logrus"
)

// TextureTargetBuilderOption is a functional option applied to a texture target during construction via NewTextureTarget.
type TextureTargetBuilderOption func(*textureTarget)

// WithLabel sets the label prefix for GPU objects created by the target.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - TextureTargetBuilderOption: a function that applies the label option to a target
func WithLabel(label string) TextureTargetBuilderOption {
	return func(t *textureTarget) {
		t.label = label
	}
}

// WithAlignment sets the size granularity textures are allocated in. Values below 1 disable rounding.
//
// Parameters:
//   - alignment: the granularity in pixels
//
// Returns:
//   - TextureTargetBuilderOption: a function that applies the alignment option to a target
func WithAlignment(alignment int) TextureTargetBuilderOption {
	return func(t *textureTarget) {
		t.alignment = alignment
	}
}

// WithFlipY makes surface transforms flip texture coordinates vertically.
//
// Parameters:
//   - flip: true to flip
//
// Returns:
//   - TextureTargetBuilderOption: a function that applies the flip option to a target
func WithFlipY(flip bool) TextureTargetBuilderOption {
	return func(t *textureTarget) {
		t.flipY = flip
	}
}

// WithSampler sets the sampler configuration. Zero fields default to clamp-to-edge linear filtering.
//
// Parameters:
//   - samplerData: the sampler configuration
//
// Returns:
//   - TextureTargetBuilderOption: a function that applies the sampler option to a target
func WithSampler(samplerData common.SamplerStagingData) TextureTargetBuilderOption {
	return func(t *textureTarget) {
		t.samplerData = samplerData
	}
}

// WithLogger sets the logger for the target and its surfaces.
//
// Parameters:
//   - logger: the logrus entry (nil keeps the default)
//
// Returns:
//   - TextureTargetBuilderOption: a function that applies the logger option to a target
func WithLogger(logger *logrus.Entry) TextureTargetBuilderOption {
	return func(t *textureTarget) {
		if logger != nil {
			t.logger = logger
		}
	}
}
