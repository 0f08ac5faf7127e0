package media

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// FrameSignal is the single-slot mailbox between the producer goroutine and the render goroutine.
// Mark publishes "a newer frame is queued on the surface"; Sync consumes it by advancing the surface
// and copying the resulting transform out.
//
// The pending flag is atomic so Mark never blocks. The advance and the transform copy run under one
// mutex, so a transform handed out by Sync always comes from the advance performed in the same call.
type FrameSignal struct {
	mu        *sync.Mutex
	pending   atomic.Bool
	transform [16]float32
	closed    bool

	// failureRun counts consecutive failed advances; only the first of a run is logged at Warn.
	failureRun uint64

	surface RenderableSurface
	logger  *logrus.Entry

	marks           atomic.Uint64
	consumed        atomic.Uint64
	advanceFailures atomic.Uint64
}

// FrameSignalStats is a point-in-time snapshot of a FrameSignal's counters.
type FrameSignalStats struct {
	// Marks is the number of frame-ready notifications received.
	Marks uint64
	// Consumed is the number of Sync calls that advanced the surface and returned true.
	Consumed uint64
	// Coalesced is the number of notifications folded into a later consume (latest frame wins).
	Coalesced uint64
	// AdvanceFailures is the number of advances that failed and were retried on a later Sync.
	AdvanceFailures uint64
	// Pending reports whether a notification is waiting to be consumed.
	Pending bool
}

// NewFrameSignal creates a FrameSignal that advances surface when a marked frame is consumed.
//
// Parameters:
//   - surface: the surface advanced by Sync
//   - logger: the logger for advance failures (nil uses the package default)
//
// Returns:
//   - *FrameSignal: the new signal, initially idle with a zero transform
func NewFrameSignal(surface RenderableSurface, logger *logrus.Entry) *FrameSignal {
	if logger == nil {
		logger = logrus.WithField("component", "frame_signal")
	}
	return &FrameSignal{
		mu:      &sync.Mutex{},
		surface: surface,
		logger:  logger,
	}
}

// Mark records that a newer frame is available. Safe to call from any goroutine; never blocks.
func (s *FrameSignal) Mark() {
	s.marks.Add(1)
	s.pending.Store(true)
}

// Sync consumes a pending notification. If one is pending, the surface is advanced to the latest
// frame and its transform is copied into out. A Mark that lands while Sync runs stays pending for the
// next call. A failed advance is left pending for a retry and reported as no update. The first
// failure of a run is logged at Warn, repeats at Debug.
//
// Parameters:
//   - out: receives the transform when Sync returns true; untouched otherwise (may be nil)
//
// Returns:
//   - bool: true if the surface advanced and out was written
func (s *FrameSignal) Sync(out *[16]float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.pending.Swap(false) {
		return false
	}

	if err := s.surface.AdvanceToLatestFrame(); err != nil {
		s.advanceFailures.Add(1)
		s.pending.Store(true)
		s.failureRun++
		entry := s.logger.WithFields(logrus.Fields{
			"function": "Sync",
			"error":    err.Error(),
			"attempt":  s.failureRun,
		})
		if s.failureRun == 1 {
			entry.Warn("Frame advance failed, keeping previous frame")
		} else {
			entry.Debug("Frame advance still failing")
		}
		return false
	}
	if s.failureRun > 0 {
		s.logger.WithFields(logrus.Fields{
			"function": "Sync",
			"failures": s.failureRun,
		}).Info("Frame advance recovered")
		s.failureRun = 0
	}

	s.transform = s.surface.Transform()
	if out != nil {
		*out = s.transform
	}
	s.consumed.Add(1)
	return true
}

// Close disarms the signal. It waits for an in-flight Sync to finish; afterwards Sync always
// returns false and never touches the surface.
func (s *FrameSignal) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending.Store(false)
}

// Stats returns a snapshot of the signal counters without blocking Mark or Sync.
//
// Returns:
//   - FrameSignalStats: the snapshot
func (s *FrameSignal) Stats() FrameSignalStats {
	// consumed is loaded before marks so that consumed <= marks holds for the snapshot.
	consumed := s.consumed.Load()
	failures := s.advanceFailures.Load()
	pending := s.pending.Load()
	marks := s.marks.Load()

	coalesced := marks - consumed
	if pending && coalesced > 0 {
		coalesced--
	}

	return FrameSignalStats{
		Marks:           marks,
		Consumed:        consumed,
		Coalesced:       coalesced,
		AdvanceFailures: failures,
		Pending:         pending,
	}
}
