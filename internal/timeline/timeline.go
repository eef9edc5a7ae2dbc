// Package timeline maps elapsed wall-clock time to animation frame indices.
package timeline

import (
	"sort"
	"time"
)

// MinFrameDuration is the display time given to frames that declare zero
// duration, so they cannot stall frame selection.
const MinFrameDuration = 100 * time.Millisecond

// Timeline holds the cumulative display time of an animation.
// Entry i of the table is the total time elapsed through frame i.
//
// Timeline is immutable after New and safe for concurrent use.
type Timeline struct {
	cumulative []time.Duration
}

// New builds a timeline from per-frame durations.
// Non-positive durations are normalized to MinFrameDuration.
func New(durations []time.Duration) *Timeline {
	cum := make([]time.Duration, len(durations))
	var total time.Duration
	for i, d := range durations {
		if d <= 0 {
			d = MinFrameDuration
		}
		total += d
		cum[i] = total
	}
	return &Timeline{cumulative: cum}
}

// Len returns the number of frames.
func (t *Timeline) Len() int {
	return len(t.cumulative)
}

// Total returns the duration of one animation cycle.
func (t *Timeline) Total() time.Duration {
	if len(t.cumulative) == 0 {
		return 0
	}
	return t.cumulative[len(t.cumulative)-1]
}

// Duration returns the normalized display time of frame i.
func (t *Timeline) Duration(i int) time.Duration {
	if i < 0 || i >= len(t.cumulative) {
		return 0
	}
	if i == 0 {
		return t.cumulative[0]
	}
	return t.cumulative[i] - t.cumulative[i-1]
}

// FrameAt returns the frame displayed after elapsed time.
//
// Elapsed time is reduced modulo Total, so FrameAt(e) == FrameAt(e mod Total).
// The result is the smallest index whose cumulative time is >= the position
// within the cycle. Negative elapsed values select frame 0.
func (t *Timeline) FrameAt(elapsed time.Duration) int {
	n := len(t.cumulative)
	if n <= 1 || elapsed <= 0 {
		return 0
	}
	pos := elapsed % t.Total()
	return sort.Search(n, func(i int) bool {
		return t.cumulative[i] >= pos
	})
}
