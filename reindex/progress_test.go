package reindex

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	assert.True(t, tracker.started, "should be started")

	tracker.Increment(25)
	tracker.Increment(25)
	tracker.Increment(50)

	elapsed := tracker.Elapsed()
	assert.Greater(t, elapsed, time.Duration(0), "elapsed time should be positive")

	output := buf.String()
	assert.Contains(t, output, "100/100", "should show completion")
	assert.Contains(t, output, "100.0%", "should show 100%")
}

func TestProgressTracker_UpdateCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 50, 10)

	tracker.Start()
	tracker.Update(500)

	tracker.mu.Lock()
	current := tracker.current
	tracker.mu.Unlock()
	assert.Equal(t, 50, current, "progress should cap at total")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 1000)

	tracker.Start()
	tracker.Increment(30)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "100/100", "finish should report full progress")
	assert.Contains(t, output, "\n", "finish should end with a newline")
}

func TestProgressTracker_IgnoredBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Increment(50)
	tracker.Update(80)
	tracker.Finish()

	assert.Empty(t, buf.String(), "unstarted tracker should produce no output")
	assert.Equal(t, time.Duration(0), tracker.Elapsed())
}
