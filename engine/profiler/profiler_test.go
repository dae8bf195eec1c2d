package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickLogsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(
		WithClock(clock.now),
		WithInterval(600*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	// 60 frames of 10ms fill the interval exactly
	for range 59 {
		clock.advance(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Empty(t, buf.String())

	clock.advance(10 * time.Millisecond)
	require.True(t, p.Tick())
	assert.InDelta(t, 100, p.Last().FPS, 0.01)
	assert.Positive(t, p.Last().HeapMB)
	assert.Contains(t, buf.String(), "component=profiler")
	assert.Contains(t, buf.String(), "fps=")

	clock.advance(300 * time.Millisecond)
	assert.False(t, p.Tick(), "counter restarts after logging")
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)

	p = NewProfiler(WithClock(clock.now), WithInterval(250*time.Millisecond))
	clock.advance(250 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 4, p.Last().FPS, 0.01)
}
