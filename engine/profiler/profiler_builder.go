package profiler

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often Tick logs statistics.
//
// Parameters:
//   - interval: the logging interval (values < 0 are treated as 0, which logs every tick)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval < 0 {
			interval = 0
		}
		p.updateInterval = interval
	}
}

// WithLogger sets the logger the statistics are written to.
//
// Parameters:
//   - logger: the logrus entry (nil keeps the default)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger *logrus.Entry) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
