package profiler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTickWaitsForInterval verifies nothing is logged before the interval elapses.
func TestTickWaitsForInterval(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewProfiler(WithUpdateInterval(time.Hour), WithLogger(logrus.NewEntry(logger)))

	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
	assert.Empty(t, hook.AllEntries())
}

// TestTickLogsReporterFields verifies reporter fields are prefixed and merged into the stats entry.
func TestTickLogsReporterFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewProfiler(WithUpdateInterval(0), WithLogger(logrus.NewEntry(logger)))

	p.AddReporter("signal", func() logrus.Fields {
		return logrus.Fields{"marks": uint64(7), "consumed": uint64(3)}
	})
	p.AddReporter("surface", func() logrus.Fields {
		return logrus.Fields{"dropped": uint64(4)}
	})

	require.True(t, p.Tick())
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Profiler stats", entry.Message)
	assert.Equal(t, uint64(7), entry.Data["signal.marks"])
	assert.Equal(t, uint64(3), entry.Data["signal.consumed"])
	assert.Equal(t, uint64(4), entry.Data["surface.dropped"])
	assert.Contains(t, entry.Data, "fps")

	p.RemoveReporter("surface")
	require.True(t, p.Tick())
	assert.NotContains(t, hook.LastEntry().Data, "surface.dropped")
}
