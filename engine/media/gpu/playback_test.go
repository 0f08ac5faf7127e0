package gpu_test

import (
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/Carmen-Shannon/oxy-video/engine/media/gpu"
	"github.com/Carmen-Shannon/oxy-video/engine/media/ivf"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend stands in for the wgpu texture and remembers what reached it.
type recordingBackend struct {
	mu          sync.Mutex
	allocations [][2]uint32
	uploads     []image.Rectangle
	view        *wgpu.TextureView
	released    bool
}

func (b *recordingBackend) Allocate(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocations = append(b.allocations, [2]uint32{width, height})
	b.view = &wgpu.TextureView{}
	return nil
}

func (b *recordingBackend) Upload(frame *common.FrameStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, frame.Visible)
	return nil
}

func (b *recordingBackend) TextureView() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

func (b *recordingBackend) Sampler() *wgpu.Sampler { return nil }

func (b *recordingBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
}

// TestIVFPlaybackThroughTextureBinding decodes a real VP8 file on the source goroutine, streams it through a
// texture binding into a surface, and checks the crop transform against the surface size on every update.
func TestIVFPlaybackThroughTextureBinding(t *testing.T) {
	backend := &recordingBackend{}
	target := gpu.NewTextureTarget(nil, nil,
		gpu.WithBackendFactory(func(string) (gpu.TextureBackend, error) { return backend, nil }),
	)
	asset := ivf.FileAsset{
		Path:    filepath.Join("..", "ivf", "testdata", "video-001.ivf"),
		Options: []ivf.SourceBuilderOption{ivf.WithFrameInterval(2 * time.Millisecond)},
	}

	binding, err := media.NewTextureBinding(target, asset, media.WithLooping(false))
	require.NoError(t, err)

	surface, ok := binding.Surface().(gpu.Surface)
	require.True(t, ok)
	source, ok := binding.Source().(ivf.Source)
	require.True(t, ok)
	assert.Equal(t, ivf.FourCCVP8, source.Header().FourCC)

	updates := 0
	var transform [16]float32
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if binding.UpdateTexture(&transform) {
			updates++

			width, height := surface.FrameSize()
			assert.Equal(t, 150, width)
			assert.Equal(t, 103, height)

			stats := surface.Stats()
			assert.InDelta(t, float64(width)/float64(stats.TextureWidth), transform[0], 1e-6)
			assert.InDelta(t, float64(height)/float64(stats.TextureHeight), transform[5], 1e-6)
			assert.Zero(t, transform[12])
			assert.Zero(t, transform[13])
			assert.Equal(t, surface.Transform(), transform)
			assert.NotNil(t, surface.TextureView())
		}
		if source.Stats().Completed && !binding.Stats().Pending {
			break
		}
		time.Sleep(time.Millisecond)
	}

	require.True(t, source.Stats().Completed, "source did not reach the end of the stream")
	assert.Equal(t, uint64(3), source.Stats().Decoded)
	assert.GreaterOrEqual(t, updates, 1)

	stats := surface.Stats()
	assert.Equal(t, uint64(3), stats.Queued)
	assert.Equal(t, uint64(updates), stats.Uploaded)
	assert.Equal(t, stats.Queued, stats.Uploaded+stats.Dropped)
	assert.Equal(t, 160, stats.TextureWidth)
	assert.Equal(t, 112, stats.TextureHeight)

	backend.mu.Lock()
	assert.Equal(t, [][2]uint32{{160, 112}}, backend.allocations)
	for _, visible := range backend.uploads {
		assert.Equal(t, image.Rect(0, 0, 150, 103), visible)
	}
	backend.mu.Unlock()

	require.NoError(t, binding.Close())
	backend.mu.Lock()
	assert.True(t, backend.released)
	backend.mu.Unlock()
}
