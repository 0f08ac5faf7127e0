package ivf

import "errors"

// Asset and container errors.
var (
	// ErrEmptyAsset indicates an in-memory asset with no data.
	ErrEmptyAsset = errors.New("ivf asset is empty")

	// ErrNilStream indicates a source was created without a stream.
	ErrNilStream = errors.New("ivf stream is nil")

	// ErrInvalidHeader indicates the IVF file header could not be parsed.
	ErrInvalidHeader = errors.New("invalid ivf header")

	// ErrUnsupportedCodec indicates the stream FourCC does not match the configured decoder.
	ErrUnsupportedCodec = errors.New("unsupported ivf codec")

	// ErrInvalidTimebase indicates a zero timebase numerator, which makes frame pacing undefined.
	ErrInvalidTimebase = errors.New("invalid ivf timebase")
)

// Lifecycle errors.
var (
	// ErrNotPrepared indicates Start was called before a successful Prepare.
	ErrNotPrepared = errors.New("ivf source not prepared")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("ivf source already started")

	// ErrNoOutput indicates Start was called with no bound output surface.
	ErrNoOutput = errors.New("ivf source has no output surface")

	// ErrReleased indicates the source was used after Release.
	ErrReleased = errors.New("ivf source released")
)

// Decode errors.
var (
	// ErrFrameSkipped indicates a frame the decoder cannot reconstruct on its own (an interframe).
	// The previous frame stays on screen.
	ErrFrameSkipped = errors.New("frame skipped")

	// ErrDecode indicates a corrupt or truncated frame payload.
	ErrDecode = errors.New("frame decode failed")
)
