package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// SurfaceStats is a snapshot of a surface's frame and texture counters.
type SurfaceStats struct {
	// Queued is the number of frames handed to the surface by the producer.
	Queued uint64
	// Uploaded is the number of frames written to the texture.
	Uploaded uint64
	// Dropped is the number of frames overwritten in the slot before an advance picked them up.
	Dropped uint64
	// Reallocations is the number of times the backing texture was (re)created.
	Reallocations uint64
	// TextureWidth and TextureHeight are the allocated texture size.
	TextureWidth, TextureHeight int
	// FrameWidth and FrameHeight are the visible size of the frame currently on the texture.
	FrameWidth, FrameHeight int
}

// surface is the implementation of the Surface interface.
// slotMu guards the single pending frame; gpuMu guards the backend and the current transform.
type surface struct {
	slotMu *sync.Mutex
	latest *common.FrameStagingData

	gpuMu      *sync.Mutex
	backend    textureBackend
	texWidth   int
	texHeight  int
	frameW     int
	frameH     int
	transform  [16]float32
	alignment  int
	flipY      bool
	generation atomic.Uint64

	released atomic.Bool
	logger   *logrus.Entry

	queued   atomic.Uint64
	uploaded atomic.Uint64
	dropped  atomic.Uint64
}

// Surface is a media.RenderableSurface backed by a GPU texture.
// The producer queues frames into a one-frame slot; AdvanceToLatestFrame uploads the newest one.
type Surface interface {
	media.RenderableSurface

	// TextureView returns the view over the current texture, nil until the first frame is advanced to.
	// The view changes when the texture is reallocated; compare Generation to detect that.
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view
	TextureView() *wgpu.TextureView

	// Sampler returns the sampler for the texture.
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	Sampler() *wgpu.Sampler

	// Generation returns a counter incremented every time the backing texture is reallocated.
	//
	// Returns:
	//   - uint64: the generation, zero before the first allocation
	Generation() uint64

	// FrameSize returns the visible size of the frame currently on the texture, which is the size the
	// transform crops to.
	//
	// Returns:
	//   - int: the frame width in pixels, zero before the first frame
	//   - int: the frame height in pixels
	FrameSize() (int, int)

	// Stats returns the surface counters.
	//
	// Returns:
	//   - SurfaceStats: the snapshot
	Stats() SurfaceStats
}

var _ Surface = &surface{}

func newSurface(backend textureBackend, alignment int, flipY bool, logger *logrus.Entry) *surface {
	s := &surface{
		slotMu:    &sync.Mutex{},
		gpuMu:     &sync.Mutex{},
		backend:   backend,
		alignment: alignment,
		flipY:     flipY,
		logger:    logger,
	}
	common.Identity(s.transform[:])
	return s
}

func (s *surface) QueueFrame(frame *common.FrameStagingData) {
	if frame == nil || s.released.Load() {
		return
	}

	s.slotMu.Lock()
	if s.latest != nil {
		s.dropped.Add(1)
	}
	s.latest = frame
	s.slotMu.Unlock()

	s.queued.Add(1)
}

func (s *surface) AdvanceToLatestFrame() error {
	if s.released.Load() {
		return fmt.Errorf("%w: %w", media.ErrAdvance, ErrSurfaceReleased)
	}

	s.slotMu.Lock()
	frame := s.latest
	s.latest = nil
	s.slotMu.Unlock()

	// Nothing newer than what is on the texture.
	if frame == nil {
		return nil
	}

	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()

	if err := s.ensureCapacity(frame.Width, frame.Height); err != nil {
		s.restore(frame)
		return fmt.Errorf("%w: %w: %w", media.ErrAdvance, ErrTextureAllocation, err)
	}

	if err := s.backend.Upload(frame); err != nil {
		s.restore(frame)
		return fmt.Errorf("%w: %w: %w", media.ErrAdvance, ErrUpload, err)
	}

	s.frameW, s.frameH = frame.Width, frame.Height
	if !frame.Visible.Empty() {
		s.frameW, s.frameH = frame.Visible.Dx(), frame.Visible.Dy()
	}
	common.CropTransform(s.transform[:], frame.Visible, s.texWidth, s.texHeight, s.flipY)
	s.uploaded.Add(1)
	return nil
}

func (s *surface) Transform() [16]float32 {
	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	return s.transform
}

func (s *surface) Release() error {
	if s.released.Swap(true) {
		return nil
	}

	s.slotMu.Lock()
	s.latest = nil
	s.slotMu.Unlock()

	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	s.backend.Release()

	s.logger.WithFields(logrus.Fields{
		"function": "Release",
		"uploaded": s.uploaded.Load(),
		"dropped":  s.dropped.Load(),
	}).Debug("Surface released")
	return nil
}

func (s *surface) TextureView() *wgpu.TextureView {
	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	return s.backend.TextureView()
}

func (s *surface) Sampler() *wgpu.Sampler {
	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	return s.backend.Sampler()
}

func (s *surface) Generation() uint64 {
	return s.generation.Load()
}

func (s *surface) FrameSize() (int, int) {
	s.gpuMu.Lock()
	defer s.gpuMu.Unlock()
	return s.frameW, s.frameH
}

func (s *surface) Stats() SurfaceStats {
	s.gpuMu.Lock()
	texW, texH, frameW, frameH := s.texWidth, s.texHeight, s.frameW, s.frameH
	s.gpuMu.Unlock()

	return SurfaceStats{
		Queued:        s.queued.Load(),
		Uploaded:      s.uploaded.Load(),
		Dropped:       s.dropped.Load(),
		Reallocations: s.generation.Load(),
		TextureWidth:  texW,
		TextureHeight: texH,
		FrameWidth:    frameW,
		FrameHeight:   frameH,
	}
}

// ensureCapacity grows the texture to hold a width x height frame. The texture never shrinks, so
// a smaller frame reuses it and the transform crops the unused region. Callers hold gpuMu.
func (s *surface) ensureCapacity(width, height int) error {
	if width <= s.texWidth && height <= s.texHeight {
		return nil
	}

	newW := max(s.texWidth, alignUp(width, s.alignment))
	newH := max(s.texHeight, alignUp(height, s.alignment))
	if err := s.backend.Allocate(uint32(newW), uint32(newH)); err != nil {
		return err
	}

	s.texWidth, s.texHeight = newW, newH
	gen := s.generation.Add(1)

	s.logger.WithFields(logrus.Fields{
		"function":   "ensureCapacity",
		"width":      newW,
		"height":     newH,
		"generation": gen,
	}).Info("Video texture allocated")
	return nil
}

// restore puts frame back in the slot unless the producer already queued a newer one.
func (s *surface) restore(frame *common.FrameStagingData) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if s.latest == nil {
		s.latest = frame
	}
}

func alignUp(n, alignment int) int {
	if alignment <= 1 {
		return n
	}
	return (n + alignment - 1) / alignment * alignment
}
