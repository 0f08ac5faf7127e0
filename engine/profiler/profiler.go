package profiler

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// StatsReporter returns a snapshot of counters to log alongside the frame statistics.
type StatsReporter func() logrus.Fields

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval, together with every registered reporter.
type Profiler struct {
	mu *sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	logger    *logrus.Entry
	reporters map[string]StatsReporter
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		lastTime:       time.Now(),
		updateInterval: time.Second,
		logger:         logrus.WithField("component", "profiler"),
		reporters:      make(map[string]StatsReporter),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// AddReporter registers a reporter whose fields are logged on every profiler interval.
// Each field is prefixed with name and a dot. Registering the same name again replaces the reporter.
//
// Parameters:
//   - name: the prefix for the reporter's fields
//   - reporter: the function returning the fields
func (p *Profiler) AddReporter(name string, reporter StatsReporter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reporters[name] = reporter
}

// RemoveReporter unregisters the reporter with the given name.
//
// Parameters:
//   - name: the name the reporter was registered with
func (p *Profiler) RemoveReporter(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.reporters, name)
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory and reporter fields.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	fps := float64(p.frameCount) / seconds

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / seconds

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	fields := logrus.Fields{
		"function":       "Tick",
		"fps":            fps,
		"heap_mb":        allocMB,
		"alloc_rate_mbs": allocRateMB,
		"gc":             gcCount,
		"gc_last_us":     lastPauseUs,
		"gc_max_us":      maxPauseUs,
		"sys_mb":         sysMB,
	}

	names := make([]string, 0, len(p.reporters))
	for name := range p.reporters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for k, v := range p.reporters[name]() {
			fields[name+"."+k] = v
		}
	}

	p.logger.WithFields(fields).Info("Profiler stats")

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
