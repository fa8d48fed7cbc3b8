package editor

import (
	"sync"
	"time"
)

// DefaultIdleGrace is how long the service waits with no pending command
// before reporting idle.
const DefaultIdleGrace = 5 * time.Second

// idleTimer fires once the grace period passes without being cancelled.
// Every arm or cancel starts a new generation so a timer that already fired
// but lost the race against a new command is ignored.
type idleTimer struct {
	mu    sync.Mutex
	grace time.Duration
	timer *time.Timer
	gen   uint64
	fire  func(gen uint64)
}

func newIdleTimer(grace time.Duration, fire func(gen uint64)) *idleTimer {
	if grace <= 0 {
		grace = DefaultIdleGrace
	}
	return &idleTimer{grace: grace, fire: fire}
}

func (t *idleTimer) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	gen := t.gen
	t.timer = time.AfterFunc(t.grace, func() { t.fire(gen) })
}

func (t *idleTimer) cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// current reports whether gen is still the armed generation
func (t *idleTimer) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil && t.gen == gen
}

func (t *idleTimer) stopLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
