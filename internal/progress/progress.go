// Package progress holds the cosmetic four-step indicator shown while an
// audit is running. It is driven by a timer only and never reports whether
// the audit has finished.
package progress

import (
	"context"
	"time"
)

// Interval is the time each step stays on screen.
const Interval = 4 * time.Second

// Steps are the labels cycled through during processing.
var Steps = []string{
	"Agent 1: Discovering Industry & Market Context",
	"Agent 2: Mapping Buyer Intent & Personas",
	"Agent 3: Scoring Strategic Content Maturity",
	"Finalizing Content Intelligence Report",
}

// Next returns the step after i, staying on the last step once reached.
func Next(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(Steps)-1 {
		return len(Steps) - 1
	}
	return i + 1
}

// Label returns the label for step i, clamped to the valid range.
func Label(i int) string {
	if i < 0 {
		i = 0
	}
	if i >= len(Steps) {
		i = len(Steps) - 1
	}
	return Steps[i]
}

// Run calls fn with step 0 immediately and then with each following step every
// interval until ctx is done. It returns once the ticker goroutine has exited.
func Run(ctx context.Context, interval time.Duration, fn func(step int)) (wait func()) {
	if interval <= 0 {
		interval = Interval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		step := 0
		fn(step)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if next := Next(step); next != step {
					step = next
					fn(step)
				}
			}
		}
	}()
	return func() { <-done }
}
