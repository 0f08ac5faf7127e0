package ivf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIVF writes an IVF container with the given header fields around payloads.
func buildIVF(fourCC string, rate, scale uint32, payloads ...[]byte) []byte {
	var buf bytes.Buffer
	header := make([]byte, fileHeaderSize)
	copy(header[0:4], "DKIF")
	binary.LittleEndian.PutUint16(header[4:6], 0)
	binary.LittleEndian.PutUint16(header[6:8], fileHeaderSize)
	copy(header[8:12], fourCC)
	binary.LittleEndian.PutUint16(header[12:14], 64)
	binary.LittleEndian.PutUint16(header[14:16], 48)
	binary.LittleEndian.PutUint32(header[16:20], rate)
	binary.LittleEndian.PutUint32(header[20:24], scale)
	binary.LittleEndian.PutUint32(header[24:28], uint32(len(payloads)))
	buf.Write(header)

	for i, p := range payloads {
		frameHeader := make([]byte, 12)
		binary.LittleEndian.PutUint32(frameHeader[0:4], uint32(len(p)))
		binary.LittleEndian.PutUint64(frameHeader[4:12], uint64(i))
		buf.Write(frameHeader)
		buf.Write(p)
	}
	return buf.Bytes()
}

// fakeDecoder interprets the first payload byte: 'K' decodes a key frame of payload[1]xpayload[2] pixels,
// 'I' is an interframe, anything else is corrupt.
type fakeDecoder struct{}

func (fakeDecoder) Decode(payload []byte) (image.Image, error) {
	if len(payload) == 0 {
		return nil, ErrDecode
	}
	switch payload[0] {
	case 'K':
		return image.NewYCbCr(image.Rect(0, 0, int(payload[1]), int(payload[2])), image.YCbCrSubsampleRatio420), nil
	case 'I':
		return nil, ErrFrameSkipped
	default:
		return nil, ErrDecode
	}
}

func key(w, h byte) []byte { return []byte{'K', w, h} }

type recordingSink struct {
	mu     sync.Mutex
	frames []*common.FrameStagingData
}

func (r *recordingSink) QueueFrame(frame *common.FrameStagingData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recordingSink) snapshot() []*common.FrameStagingData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*common.FrameStagingData(nil), r.frames...)
}

type closingReader struct {
	*bytes.Reader
	closed int
}

func (c *closingReader) Close() error {
	c.closed++
	return nil
}

func newTestSource(data []byte) Source {
	return NewSource(bytes.NewReader(data), WithDecoder(fakeDecoder{}), WithFrameInterval(time.Millisecond))
}

// TestSourcePrepareParsesHeader verifies header fields and the interval derived from the timebase.
func TestSourcePrepareParsesHeader(t *testing.T) {
	src := NewSource(bytes.NewReader(buildIVF(FourCCVP8, 30, 1, key(4, 4))))
	require.NoError(t, src.Prepare())

	header := src.Header()
	assert.Equal(t, FourCCVP8, header.FourCC)
	assert.Equal(t, 64, header.Width)
	assert.Equal(t, 48, header.Height)
	assert.Equal(t, 1, header.NumFrames)
	assert.Equal(t, time.Second/30, header.FrameInterval)

	// Preparing twice is a no-op.
	assert.NoError(t, src.Prepare())
	assert.NoError(t, src.Release())
}

// TestSourcePrepareErrors verifies invalid containers are rejected with classified errors.
func TestSourcePrepareErrors(t *testing.T) {
	badSignature := buildIVF(FourCCVP8, 30, 1)
	copy(badSignature, "XXXX")

	tests := []struct {
		name string
		src  Source
		want error
	}{
		{name: "nil stream", src: NewSource(nil), want: ErrNilStream},
		{name: "short header", src: NewSource(bytes.NewReader([]byte("DKIF"))), want: ErrInvalidHeader},
		{name: "bad signature", src: NewSource(bytes.NewReader(badSignature)), want: ErrInvalidHeader},
		{name: "zero rate", src: NewSource(bytes.NewReader(buildIVF(FourCCVP8, 0, 1))), want: ErrInvalidHeader},
		{name: "zero scale", src: NewSource(bytes.NewReader(buildIVF(FourCCVP8, 30, 0))), want: ErrInvalidTimebase},
		{name: "codec mismatch", src: NewSource(bytes.NewReader(buildIVF("VP90", 30, 1))), want: ErrUnsupportedCodec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.src.Prepare(), tt.want)
		})
	}
}

// TestSourceStartLifecycleErrors verifies Start refuses to run out of order.
func TestSourceStartLifecycleErrors(t *testing.T) {
	data := buildIVF(FourCCVP8, 30, 1, key(4, 4))

	src := newTestSource(data)
	assert.ErrorIs(t, src.Start(), ErrNotPrepared)

	require.NoError(t, src.Prepare())
	assert.ErrorIs(t, src.Start(), ErrNoOutput)

	src.BindOutputSurface(&recordingSink{})
	require.NoError(t, src.Start())
	assert.ErrorIs(t, src.Start(), ErrAlreadyStarted)

	require.NoError(t, src.Release())
	assert.ErrorIs(t, src.Start(), ErrReleased)
	assert.ErrorIs(t, src.Prepare(), ErrReleased)
}

// TestSourcePlaysToEnd verifies every decodable frame is queued in order and callbacks fire.
func TestSourcePlaysToEnd(t *testing.T) {
	data := buildIVF(FourCCVP8, 30, 1, key(4, 2), []byte{'I'}, key(4, 2), []byte{'X'}, key(8, 6))
	src := newTestSource(data)
	sink := &recordingSink{}

	var mu sync.Mutex
	ready := 0
	var sizes [][2]int

	src.BindOutputSurface(sink)
	src.SetLooping(false)
	src.SetFrameReadyCallback(func() {
		mu.Lock()
		defer mu.Unlock()
		ready++
	})
	src.SetSizeChangedCallback(func(w, h int) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, [2]int{w, h})
	})

	require.NoError(t, src.Prepare())
	require.NoError(t, src.Start())
	defer src.Release()

	assert.Eventually(t, func() bool { return src.Stats().Completed }, 2*time.Second, time.Millisecond)

	frames := sink.snapshot()
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, uint64(i), f.Sequence)
	}
	assert.Equal(t, 8, frames[2].Width)
	assert.Equal(t, 6, frames[2].Height)
	assert.Len(t, frames[2].Pixels, 8*6*4)
	assert.Equal(t, 4*time.Millisecond, frames[2].PTS)

	stats := src.Stats()
	assert.Equal(t, uint64(3), stats.Decoded)
	assert.Equal(t, uint64(1), stats.Skipped)
	assert.Equal(t, uint64(1), stats.DecodeErrors)
	assert.Equal(t, uint64(0), stats.Loops)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, ready)
	assert.Equal(t, [][2]int{{4, 2}, {8, 6}}, sizes)
}

// TestSourceLoops verifies playback rewinds and keeps sequence numbers increasing across loops.
func TestSourceLoops(t *testing.T) {
	src := newTestSource(buildIVF(FourCCVP8, 30, 1, key(2, 2), key(2, 2)))
	sink := &recordingSink{}
	src.BindOutputSurface(sink)
	src.SetLooping(true)

	require.NoError(t, src.Prepare())
	require.NoError(t, src.Start())

	assert.Eventually(t, func() bool { return src.Stats().Loops >= 2 }, 2*time.Second, time.Millisecond)
	require.NoError(t, src.Release())

	frames := sink.snapshot()
	require.GreaterOrEqual(t, len(frames), 4)
	for i := 1; i < len(frames); i++ {
		assert.Equal(t, frames[i-1].Sequence+1, frames[i].Sequence)
	}
	assert.False(t, src.Stats().Completed)
}

// TestSourceLoopWithoutDecodableFrames verifies a looping stream with nothing to show stops instead of spinning.
func TestSourceLoopWithoutDecodableFrames(t *testing.T) {
	src := newTestSource(buildIVF(FourCCVP8, 30, 1, []byte{'I'}, []byte{'I'}))
	sink := &recordingSink{}
	src.BindOutputSurface(sink)
	src.SetLooping(true)

	require.NoError(t, src.Prepare())
	require.NoError(t, src.Start())
	defer src.Release()

	assert.Eventually(t, func() bool { return src.Stats().Completed }, 2*time.Second, time.Millisecond)
	assert.Empty(t, sink.snapshot())
	assert.Equal(t, uint64(2), src.Stats().Skipped)
}

// TestSourceReleaseStopsProducer verifies Release waits for the producer and closes the stream once.
func TestSourceReleaseStopsProducer(t *testing.T) {
	stream := &closingReader{Reader: bytes.NewReader(buildIVF(FourCCVP8, 30, 1, key(2, 2)))}
	src := NewSource(stream, WithDecoder(fakeDecoder{}), WithFrameInterval(time.Hour))
	sink := &recordingSink{}
	src.BindOutputSurface(sink)
	src.SetLooping(true)

	require.NoError(t, src.Prepare())
	require.NoError(t, src.Start())
	assert.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, 2*time.Second, time.Millisecond)

	// The producer is parked on an hour-long tick; Release must still return promptly.
	released := make(chan error, 1)
	go func() { released <- src.Release() }()
	select {
	case err := <-released:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("release blocked on the producer")
	}

	assert.NoError(t, src.Release())
	assert.Equal(t, 1, stream.closed)
	assert.Len(t, sink.snapshot(), 1)
}

// TestBytesAsset verifies in-memory assets open prepared-ready sources and reject empty data.
func TestBytesAsset(t *testing.T) {
	_, err := BytesAsset{}.Open()
	assert.ErrorIs(t, err, ErrEmptyAsset)

	src, err := BytesAsset{Data: buildIVF(FourCCVP8, 25, 1, key(2, 2))}.Open()
	require.NoError(t, err)
	require.NoError(t, src.Prepare())
	assert.Equal(t, 40*time.Millisecond, src.(Source).Header().FrameInterval)
	assert.NoError(t, src.Release())
}

// TestFileAsset verifies file assets open from disk and report missing files.
func TestFileAsset(t *testing.T) {
	_, err := FileAsset{Path: filepath.Join(t.TempDir(), "missing.ivf")}.Open()
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "clip.ivf")
	require.NoError(t, os.WriteFile(path, buildIVF(FourCCVP8, 30, 1, key(2, 2)), 0o600))

	src, err := FileAsset{Path: path, Options: []SourceBuilderOption{WithDecoder(fakeDecoder{})}}.Open()
	require.NoError(t, err)
	require.NoError(t, src.Prepare())
	assert.NoError(t, src.Release())
}
