package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Stopwatch counts elapsed match time in whole seconds.
//
// The session starts, stops and resets it as events are dispatched; a
// Run loop (or a test calling Tick) advances it. All methods are safe for
// concurrent use so the tick loop can run in its own goroutine.
type Stopwatch struct {
	mu      sync.Mutex
	seconds int
	running bool
}

// NewStopwatch returns a stopped stopwatch at 0.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{}
}

func (w *Stopwatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = true
}

func (w *Stopwatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}

// Toggle pauses a running stopwatch or resumes a stopped one and reports
// whether it is now running.
func (w *Stopwatch) Toggle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = !w.running
	return w.running
}

// Reset stops the stopwatch and zeroes it.
func (w *Stopwatch) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	w.seconds = 0
}

// Tick advances a running stopwatch by one second.
func (w *Stopwatch) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.seconds++
	}
}

func (w *Stopwatch) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Seconds returns the elapsed whole seconds.
func (w *Stopwatch) Seconds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seconds
}

func (w *Stopwatch) Elapsed() time.Duration {
	return time.Duration(w.Seconds()) * time.Second
}

// autoStart starts the stopwatch if it has never run since the last reset.
// A paused stopwatch with time on it stays paused.
func (w *Stopwatch) autoStart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running && w.seconds == 0 {
		w.running = true
	}
}

// String formats the elapsed time as MM:SS. Minutes keep counting past 59.
func (w *Stopwatch) String() string {
	s := w.Seconds()
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// Run calls Tick once per interval until ctx is cancelled. Ticks while the
// stopwatch is stopped are ignored, so Run can be started once per session.
func (w *Stopwatch) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick()
		}
	}
}
