package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownTracker(t *testing.T) {
	now := at(12, 0)
	clock := func() time.Time { return now }
	tracker := NewCooldownTracker(5*time.Second, clock)

	assert.True(t, tracker.Allow("r1"), "unknown rule is always allowed")

	tracker.MarkFired("r1")
	assert.False(t, tracker.Allow("r1"), "just fired")

	now = at(12, 0).Add(5*time.Second - time.Millisecond)
	assert.False(t, tracker.Allow("r1"), "still inside the window")

	now = at(12, 0).Add(5*time.Second + time.Millisecond)
	assert.True(t, tracker.Allow("r1"), "window elapsed")

	assert.True(t, tracker.Allow("r2"), "independent per rule")
}

func TestCooldownAllowDoesNotConsumeSlot(t *testing.T) {
	tracker := NewCooldownTracker(5*time.Second, fixedClock(at(12, 0)))

	// repeated checks without a fire must not start the window
	assert.True(t, tracker.Allow("r1"))
	assert.True(t, tracker.Allow("r1"))
}

func TestCooldownForget(t *testing.T) {
	tracker := NewCooldownTracker(time.Hour, fixedClock(at(12, 0)))
	tracker.MarkFired("r1")
	assert.False(t, tracker.Allow("r1"))

	tracker.Forget("r1")
	assert.True(t, tracker.Allow("r1"))
}
