// Package sampler maintains a rolling window of recent frame durations for
// the performance governor.
package sampler

import "time"

const (
	// Capacity covers roughly two seconds of samples at 60Hz.
	Capacity = 120
	// MinSamples is the cold-start threshold below which the average is
	// reported as unavailable and the governor skips adjustment.
	MinSamples = 60
)

// FrameSample is a single timestamped frame duration. The timestamp is the
// deterministic cycle time in seconds, not wall clock.
type FrameSample struct {
	At       float64
	Duration time.Duration
}

// Window is a fixed-capacity ring of frame samples, overwritten oldest-first.
type Window struct {
	samples [Capacity]FrameSample
	head    int
	count   int
	sum     time.Duration
}

func NewWindow() *Window {
	return &Window{}
}

// Record adds one sample, evicting the oldest once the window is full.
func (w *Window) Record(at float64, d time.Duration) {
	if d < 0 {
		d = 0
	}

	if w.count == Capacity {
		w.sum -= w.samples[w.head].Duration
	} else {
		w.count++
	}

	w.samples[w.head] = FrameSample{At: at, Duration: d}
	w.sum += d
	w.head = (w.head + 1) % Capacity
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	return w.count
}

// Average returns the rolling average frame duration. The boolean is false
// while fewer than MinSamples samples exist.
func (w *Window) Average() (time.Duration, bool) {
	if w.count < MinSamples {
		return 0, false
	}

	return w.sum / time.Duration(w.count), true
}

// Reset discards all samples.
func (w *Window) Reset() {
	*w = Window{}
}
