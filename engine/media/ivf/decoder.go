package ivf

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/image/vp8"
)

// FourCCVP8 is the IVF codec tag for VP8 streams.
const FourCCVP8 = "VP80"

// FrameDecoder turns one IVF frame payload into an image.
// Decoders are stateful and owned by a single source; they are only called from its producer goroutine.
type FrameDecoder interface {
	// Decode decodes payload. The returned image is only valid until the next call.
	//
	// Parameters:
	//   - payload: the raw frame bytes from the container
	//
	// Returns:
	//   - image.Image: the decoded frame
	//   - error: ErrFrameSkipped for frames that cannot be shown on their own, ErrDecode for corrupt payloads
	Decode(payload []byte) (image.Image, error)
}

// vp8Decoder decodes VP8 key frames with golang.org/x/image/vp8. Interframes are reported as skipped.
type vp8Decoder struct {
	d *vp8.Decoder
}

var _ FrameDecoder = &vp8Decoder{}

// NewVP8Decoder creates a FrameDecoder for VP8 payloads.
//
// Returns:
//   - FrameDecoder: the decoder
func NewVP8Decoder() FrameDecoder {
	return &vp8Decoder{d: vp8.NewDecoder()}
}

func (v *vp8Decoder) Decode(payload []byte) (image.Image, error) {
	v.d.Init(bytes.NewReader(payload), len(payload))

	fh, err := v.d.DecodeFrameHeader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !fh.KeyFrame {
		return nil, ErrFrameSkipped
	}

	img, err := v.d.DecodeFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}
