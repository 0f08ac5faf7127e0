package ivf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"github.com/sirupsen/logrus"
)

// fileHeaderSize is the fixed IVF file header length; frames start right after it.
const fileHeaderSize = 32

// Header describes a prepared IVF stream.
type Header struct {
	// FourCC is the codec tag, e.g. "VP80".
	FourCC string
	// Width and Height are the frame size declared by the container.
	Width, Height int
	// FrameInterval is the pacing interval derived from the timebase (or the configured override).
	FrameInterval time.Duration
	// NumFrames is the frame count declared by the container. Writers often leave it zero.
	NumFrames int
}

// SourceStats is a snapshot of a source's producer counters.
type SourceStats struct {
	// Decoded is the number of frames queued on the output surface.
	Decoded uint64
	// Skipped is the number of frames the decoder could not show on their own.
	Skipped uint64
	// DecodeErrors is the number of corrupt or truncated frames.
	DecodeErrors uint64
	// Loops is the number of times playback rewound to the first frame.
	Loops uint64
	// Completed reports whether the producer reached the end of the stream and stopped.
	Completed bool
}

// source is the implementation of the Source interface.
type source struct {
	mu     *sync.Mutex
	stream io.ReadSeeker
	reader *ivfreader.IVFReader
	header Header

	decoder          FrameDecoder
	fourCC           string
	intervalOverride time.Duration
	looping          atomic.Bool

	sink          media.FrameSink
	onFrameReady  func()
	onSizeChanged func(width, height int)

	pool   worker.DynamicWorkerPool
	cancel context.CancelFunc
	done   chan struct{}

	prepared bool
	started  bool
	released bool

	logger *logrus.Entry

	decoded      atomic.Uint64
	skipped      atomic.Uint64
	decodeErrors atomic.Uint64
	loops        atomic.Uint64
	completed    atomic.Bool
}

// Source is a media.MediaSource that demuxes an IVF stream and decodes it on a single producer goroutine,
// pacing frames by the container timebase.
type Source interface {
	media.MediaSource

	// Header returns the parsed container header. It is zero until Prepare succeeds.
	//
	// Returns:
	//   - Header: the stream header
	Header() Header

	// Stats returns the producer counters.
	//
	// Returns:
	//   - SourceStats: the snapshot
	Stats() SourceStats
}

var _ Source = &source{}

// NewSource creates an unprepared IVF source reading from stream.
// If stream implements io.Closer it is closed by Release.
//
// Parameters:
//   - stream: the IVF byte stream, seekable so playback can loop
//   - options: functional options for the source
//
// Returns:
//   - Source: the new source
func NewSource(stream io.ReadSeeker, options ...SourceBuilderOption) Source {
	s := &source{
		mu:     &sync.Mutex{},
		stream: stream,
		fourCC: FourCCVP8,
		logger: logrus.WithField("component", "ivf_source"),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = NewVP8Decoder()
	}
	return s
}

func (s *source) BindOutputSurface(sink media.FrameSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *source) SetLooping(looping bool) {
	s.looping.Store(looping)
}

func (s *source) SetFrameReadyCallback(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrameReady = callback
}

func (s *source) SetSizeChangedCallback(callback func(width, height int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSizeChanged = callback
}

func (s *source) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}
	if s.prepared {
		return nil
	}
	if s.stream == nil {
		return ErrNilStream
	}

	reader, fh, err := ivfreader.NewWith(s.stream)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if fh.FourCC != s.fourCC {
		return fmt.Errorf("%w: got %q, want %q", ErrUnsupportedCodec, fh.FourCC, s.fourCC)
	}
	if fh.TimebaseNumerator == 0 {
		return fmt.Errorf("%w: numerator is zero", ErrInvalidTimebase)
	}

	interval := time.Duration(fh.TimebaseNumerator) * time.Second / time.Duration(fh.TimebaseDenominator)
	if s.intervalOverride > 0 {
		interval = s.intervalOverride
	}
	if interval <= 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidTimebase, fh.TimebaseNumerator, fh.TimebaseDenominator)
	}

	s.reader = reader
	s.header = Header{
		FourCC:        fh.FourCC,
		Width:         int(fh.Width),
		Height:        int(fh.Height),
		FrameInterval: interval,
		NumFrames:     int(fh.NumFrames),
	}
	s.prepared = true

	s.logger.WithFields(logrus.Fields{
		"function": "Prepare",
		"fourcc":   fh.FourCC,
		"width":    fh.Width,
		"height":   fh.Height,
		"interval": interval.String(),
		"frames":   fh.NumFrames,
	}).Info("IVF stream prepared")
	return nil
}

// runConfig is the callback set captured at Start; the producer never reads the mutable fields.
type runConfig struct {
	sink          media.FrameSink
	onFrameReady  func()
	onSizeChanged func(width, height int)
	interval      time.Duration
}

func (s *source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.released:
		return ErrReleased
	case !s.prepared:
		return ErrNotPrepared
	case s.started:
		return ErrAlreadyStarted
	case s.sink == nil:
		return ErrNoOutput
	}

	run := runConfig{
		sink:          s.sink,
		onFrameReady:  s.onFrameReady,
		onSizeChanged: s.onSizeChanged,
		interval:      s.header.FrameInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.started = true

	s.pool = worker.NewDynamicWorkerPool(1, 1, time.Second)
	s.pool.SubmitTask(worker.Task{
		ID: 0,
		Do: func() (any, error) {
			defer close(done)
			err := s.decodeLoop(ctx, run)
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"function": "decodeLoop",
					"error":    err.Error(),
				}).Error("IVF producer stopped")
			}
			return nil, err
		},
	})

	s.logger.WithFields(logrus.Fields{
		"function": "Start",
		"looping":  s.looping.Load(),
	}).Info("IVF playback started")
	return nil
}

func (s *source) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	cancel, done, pool := s.cancel, s.done, s.pool
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		pool.Stop()
	}

	var err error
	if closer, ok := s.stream.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil {
			err = fmt.Errorf("failed to close ivf stream: %w", cerr)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"function": "Release",
		"stats":    fmt.Sprintf("%+v", s.Stats()),
	}).Info("IVF source released")
	return err
}

func (s *source) Header() Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

func (s *source) Stats() SourceStats {
	return SourceStats{
		Decoded:      s.decoded.Load(),
		Skipped:      s.skipped.Load(),
		DecodeErrors: s.decodeErrors.Load(),
		Loops:        s.loops.Load(),
		Completed:    s.completed.Load(),
	}
}

// decodeLoop is the producer. It parses, decodes and queues one container frame per interval until the
// stream ends without looping, the context is cancelled, or a rewind finds nothing decodable.
func (s *source) decodeLoop(ctx context.Context, run runConfig) error {
	ticker := time.NewTicker(run.interval)
	defer ticker.Stop()

	var (
		sequence      uint64
		index         int64
		sinceRewind   int
		width, height int
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		payload, _, err := s.reader.ParseNextFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.WithFields(logrus.Fields{
					"function": "decodeLoop",
					"error":    err.Error(),
				}).Warn("Truncated IVF frame, treating as end of stream")
			}

			if !s.looping.Load() {
				s.completed.Store(true)
				s.logger.WithField("function", "decodeLoop").Info("IVF playback reached end of stream")
				return nil
			}
			if sinceRewind == 0 {
				s.completed.Store(true)
				s.logger.WithField("function", "decodeLoop").Warn("No decodable frames in IVF stream, stopping playback")
				return nil
			}
			if err := s.rewind(); err != nil {
				s.completed.Store(true)
				return err
			}
			s.loops.Add(1)
			sinceRewind = 0
			index = 0
			continue
		}

		pts := time.Duration(index) * run.interval
		index++

		if frame, ok := s.decodeFrame(payload, sequence, pts); ok {
			sequence++
			sinceRewind++

			if frame.Width != width || frame.Height != height {
				width, height = frame.Width, frame.Height
				if run.onSizeChanged != nil {
					run.onSizeChanged(width, height)
				}
			}

			run.sink.QueueFrame(frame)
			s.decoded.Add(1)
			if run.onFrameReady != nil {
				run.onFrameReady()
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// decodeFrame decodes one payload into staging data. Skipped and corrupt frames are counted and logged.
func (s *source) decodeFrame(payload []byte, sequence uint64, pts time.Duration) (*common.FrameStagingData, bool) {
	img, err := s.decoder.Decode(payload)
	if err != nil {
		if errors.Is(err, ErrFrameSkipped) {
			s.skipped.Add(1)
			s.logger.WithFields(logrus.Fields{
				"function": "decodeFrame",
				"pts":      pts.String(),
			}).Debug("Frame skipped")
			return nil, false
		}
		s.decodeErrors.Add(1)
		s.logger.WithFields(logrus.Fields{
			"function": "decodeFrame",
			"pts":      pts.String(),
			"error":    err.Error(),
		}).Warn("Frame decode failed")
		return nil, false
	}

	frame, err := common.NewFrameStagingData(img, sequence, pts)
	if err != nil {
		s.decodeErrors.Add(1)
		s.logger.WithFields(logrus.Fields{
			"function": "decodeFrame",
			"error":    err.Error(),
		}).Warn("Decoded frame unusable")
		return nil, false
	}
	return frame, true
}

func (s *source) rewind() error {
	if _, err := s.stream.Seek(fileHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind ivf stream: %w", err)
	}
	s.reader.ResetReader(func(int64) io.Reader { return s.stream })

	s.logger.WithFields(logrus.Fields{
		"function": "rewind",
		"loop":     s.loops.Load() + 1,
	}).Debug("IVF playback looped")
	return nil
}
