package media

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-video/common"
)

// fakeSurface stamps every successful advance into the transform so tests can tell advances apart.
type fakeSurface struct {
	mu         sync.Mutex
	advances   int
	advanceErr error
	transform  [16]float32
	queued     []*common.FrameStagingData
	released   int
	releaseErr error
	calls      *[]string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{}
}

func (f *fakeSurface) QueueFrame(frame *common.FrameStagingData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, frame)
}

func (f *fakeSurface) AdvanceToLatestFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.advanceErr != nil {
		return f.advanceErr
	}
	f.advances++
	common.Identity(f.transform[:])
	f.transform[12] = float32(f.advances)
	return nil
}

func (f *fakeSurface) Transform() [16]float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transform
}

func (f *fakeSurface) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	if f.calls != nil {
		*f.calls = append(*f.calls, "surface.Release")
	}
	return f.releaseErr
}

func (f *fakeSurface) setAdvanceErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advanceErr = err
}

func (f *fakeSurface) advanceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advances
}

type fakeTarget struct {
	surface *fakeSurface
	err     error
}

func (t *fakeTarget) NewSurface() (RenderableSurface, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.surface, nil
}

// fakeSource captures the callbacks a binding registers so tests can play the producer role.
type fakeSource struct {
	sink          FrameSink
	looping       bool
	onFrameReady  func()
	onSizeChanged func(width, height int)

	prepareErr error
	startErr   error
	releaseErr error

	prepared bool
	started  bool
	released int
	calls    *[]string
}

func (s *fakeSource) BindOutputSurface(sink FrameSink) { s.sink = sink }
func (s *fakeSource) SetLooping(looping bool) { s.looping = looping }
func (s *fakeSource) SetFrameReadyCallback(callback func()) { s.onFrameReady = callback }

func (s *fakeSource) SetSizeChangedCallback(callback func(width, height int)) {
	s.onSizeChanged = callback
}

func (s *fakeSource) Prepare() error {
	if s.prepareErr != nil {
		return s.prepareErr
	}
	s.prepared = true
	return nil
}

func (s *fakeSource) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeSource) Release() error {
	s.released++
	if s.calls != nil {
		*s.calls = append(*s.calls, "source.Release")
	}
	return s.releaseErr
}

// produce queues one frame and fires the frame-ready callback, like a real producer.
func (s *fakeSource) produce() {
	s.sink.QueueFrame(&common.FrameStagingData{Width: 2, Height: 2, Pixels: make([]byte, 16)})
	if s.onFrameReady != nil {
		s.onFrameReady()
	}
}

type fakeAsset struct {
	source *fakeSource
	err    error
}

func (a *fakeAsset) Open() (MediaSource, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.source, nil
}

var errFake = errors.New("fake failure")
