/*
Package chat is the realtime layer: it authenticates WebSocket
connections, tracks presence, routes room broadcasts, relays delivery and
read acknowledgments, and throttles message sends per user.
*/
package chat

import (
	"sync"
	"time"
)

const sweepInterval = 3 * time.Minute

// SlidingWindow admits at most maxEvents events per key within a rolling
// window. Every Allow call is recorded, accepted or not, so hammering the
// limiter never buys extra admissions within the same window.
type SlidingWindow struct {
	mu        sync.Mutex
	maxEvents int
	window    time.Duration
	events    map[int64][]time.Time

	// now is replaceable in tests.
	now func() time.Time

	done chan struct{}
}

// NewSlidingWindow creates a limiter admitting maxEvents per window for
// each key and starts a background sweep that drops keys idle for longer
// than the window. Close stops the sweep.
func NewSlidingWindow(maxEvents int, window time.Duration) *SlidingWindow {
	l := &SlidingWindow{
		maxEvents: maxEvents,
		window:    window,
		events:    make(map[int64][]time.Time),
		now:       time.Now,
		done:      make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

// Allow records an event for key and reports whether it is admitted.
// Timestamps at or before now-window are pruned first; the call is then
// admitted iff the remaining count, including this call, is within the
// limit.
func (l *SlidingWindow) Allow(key int64) bool {
	now := l.now()
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	events := l.events[key]
	kept := events[:0]
	for _, t := range events {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.events[key] = kept

	return len(kept) <= l.maxEvents
}

// Close stops the background sweep goroutine.
func (l *SlidingWindow) Close() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}

// sweepLoop periodically removes keys whose newest event is outside the
// window, so users who stopped sending do not pin memory forever.
func (l *SlidingWindow) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

func (l *SlidingWindow) sweep() {
	windowStart := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, events := range l.events {
		if len(events) == 0 || !events[len(events)-1].After(windowStart) {
			delete(l.events, key)
		}
	}
}
