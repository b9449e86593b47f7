package engine

import (
	"sync"
	"time"
)

// CooldownTracker suppresses re-firing of a rule within a fixed window.
// Process-lifetime only; restarting the engine clears all cooldowns. Owned
// by the periodic evaluator, but guarded so additional callers stay safe.
type CooldownTracker struct {
	mu        sync.Mutex
	lastFired map[string]time.Time
	window    time.Duration
	now       Clock
}

// NewCooldownTracker creates a tracker. A nil clock defaults to time.Now.
func NewCooldownTracker(window time.Duration, now Clock) *CooldownTracker {
	if now == nil {
		now = time.Now
	}
	return &CooldownTracker{
		lastFired: make(map[string]time.Time),
		window:    window,
		now:       now,
	}
}

// Allow reports whether the rule is outside its cooldown window. It does
// not consume the slot; callers record an actual fire with MarkFired, so a
// tick that evaluates without firing leaves the rule eligible.
func (t *CooldownTracker) Allow(ruleID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.lastFired[ruleID]
	if !ok {
		return true
	}
	return t.now().Sub(last) >= t.window
}

// MarkFired records that the rule fired now
func (t *CooldownTracker) MarkFired(ruleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastFired[ruleID] = t.now()
}

// Forget drops a rule's cooldown entry, e.g. after the rule is deleted
func (t *CooldownTracker) Forget(ruleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lastFired, ruleID)
}
