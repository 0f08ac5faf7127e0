package ivf

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SourceBuilderOption is a functional option applied to a source during construction via NewSource.
type SourceBuilderOption func(*source)

// WithLogger sets the logger for the source.
//
// Parameters:
//   - logger: the logrus entry (nil keeps the default)
//
// Returns:
//   - SourceBuilderOption: a function that applies the logger option to a source
func WithLogger(logger *logrus.Entry) SourceBuilderOption {
	return func(s *source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDecoder replaces the default VP8 decoder. Use together with WithFourCC for other codecs.
//
// Parameters:
//   - decoder: the frame decoder, owned by the source
//
// Returns:
//   - SourceBuilderOption: a function that applies the decoder option to a source
func WithDecoder(decoder FrameDecoder) SourceBuilderOption {
	return func(s *source) {
		s.decoder = decoder
	}
}

// WithFourCC sets the codec tag the stream header must carry. Defaults to FourCCVP8.
//
// Parameters:
//   - fourCC: the four character codec tag
//
// Returns:
//   - SourceBuilderOption: a function that applies the FourCC option to a source
func WithFourCC(fourCC string) SourceBuilderOption {
	return func(s *source) {
		s.fourCC = fourCC
	}
}

// WithFrameInterval overrides the pacing interval derived from the container timebase.
//
// Parameters:
//   - interval: the time between frames (ignored if not positive)
//
// Returns:
//   - SourceBuilderOption: a function that applies the interval option to a source
func WithFrameInterval(interval time.Duration) SourceBuilderOption {
	return func(s *source) {
		s.intervalOverride = interval
	}
}
