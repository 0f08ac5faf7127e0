package ivf

import (
	"image"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdata/video-001.vp8 is the VP8 key frame from golang.org/x/image/testdata/video-001.lossy.webp;
// testdata/video-001.ivf holds it three times at 30 fps.
const (
	testKeyFrameWidth  = 150
	testKeyFrameHeight = 103
)

// TestVP8DecoderDecodesKeyFrame verifies a real key frame decodes to its coded size, repeatedly on one decoder.
func TestVP8DecoderDecodesKeyFrame(t *testing.T) {
	payload, err := os.ReadFile("testdata/video-001.vp8")
	require.NoError(t, err)

	d := NewVP8Decoder()
	for i := 0; i < 2; i++ {
		img, err := d.Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, testKeyFrameWidth, testKeyFrameHeight), img.Bounds())
	}
}

// TestVP8DecoderSkipsInterframes verifies payloads with the interframe bit set are reported as skipped.
func TestVP8DecoderSkipsInterframes(t *testing.T) {
	d := NewVP8Decoder()

	img, err := d.Decode([]byte{0x01, 0x00, 0x00, 0x00})
	assert.Nil(t, img)
	assert.ErrorIs(t, err, ErrFrameSkipped)
}

// TestVP8DecoderRejectsCorruptPayloads verifies truncated and malformed key frames fail with ErrDecode.
func TestVP8DecoderRejectsCorruptPayloads(t *testing.T) {
	d := NewVP8Decoder()

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "truncated key frame header", payload: []byte{0x00, 0x00, 0x00, 0x9d}},
		{name: "bad start code", payload: []byte{0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x10, 0x00, 0x10, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Decode(tt.payload)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}
