package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes a single-line progress report while entries are
// embedded and stored. It is safe for concurrent use by pool workers.
type ProgressTracker struct {
	mu sync.Mutex

	out          io.Writer
	total        int
	done         int
	every        int
	lastReported int
	started      time.Time
	running      bool
}

// NewProgressTracker reports to out every `every` entries out of total.
// A nil out discards reports.
func NewProgressTracker(out io.Writer, total, every int) *ProgressTracker {
	if out == nil {
		out = io.Discard
	}
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{out: out, total: total, every: every}
}

// Start resets the counters and starts the clock.
func (t *ProgressTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = time.Now()
	t.running = true
	t.done = 0
	t.lastReported = 0
}

// Add records n more processed entries.
func (t *ProgressTracker) Add(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.done = min(t.done+n, t.total)
	if t.done-t.lastReported >= t.every {
		t.report()
		t.lastReported = t.done
	}
}

// Done returns the number of processed entries.
func (t *ProgressTracker) Done() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Finish prints the final report and ends the line.
func (t *ProgressTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.report()
	fmt.Fprintln(t.out)
	t.running = false
}

// Elapsed returns the time since Start.
func (t *ProgressTracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started.IsZero() {
		return 0
	}
	return time.Since(t.started)
}

// report must be called with the lock held.
func (t *ProgressTracker) report() {
	elapsed := time.Since(t.started).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(t.done) / elapsed
	}
	pct := 100.0
	if t.total > 0 {
		pct = float64(t.done) / float64(t.total) * 100.0
	}
	fmt.Fprintf(t.out, "\rSeeding: %d/%d (%.1f%%) - %.1f entries/s", t.done, t.total, pct, rate)
}
