package timer

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDefinition is returned by Start when the workout definition
// cannot be played: fewer than two intervals, or a negative duration.
var ErrInvalidDefinition = errors.New("invalid workout definition")

// ErrSessionActive is returned by Start when a session is already loaded.
// Call Stop first.
var ErrSessionActive = errors.New("a session is already active")

// Interval is one named, timed, colored segment of a workout. Immutable;
// a zero Duration is legal and passes through instantly during playback.
type Interval struct {
	ID       string
	Title    string
	Duration time.Duration
	Color    string // tview color name, e.g. "red", "green"
	Cue      string // spoken/announced text; empty means use Title
}

// CueText returns the voice cue for this interval, falling back to the title.
func (iv Interval) CueText() string {
	if iv.Cue != "" {
		return iv.Cue
	}
	return iv.Title
}

// WorkoutDefinition is an ordered list of intervals played Cycles times.
// Cycles == 0 means repeat until stopped. Definitions are plain values owned
// by the caller; the engine never mutates them.
type WorkoutDefinition struct {
	Name      string
	Intervals []Interval
	Cycles    int
}

// Unbounded reports whether the definition repeats until stopped.
func (d WorkoutDefinition) Unbounded() bool {
	return d.Cycles == 0
}

// CycleDuration returns the duration of one full pass through the intervals.
func (d WorkoutDefinition) CycleDuration() time.Duration {
	var total time.Duration
	for _, iv := range d.Intervals {
		total += iv.Duration
	}
	return total
}

// TotalDuration returns the full playing time of the definition. The second
// return value is false for unbounded definitions.
func (d WorkoutDefinition) TotalDuration() (time.Duration, bool) {
	if d.Unbounded() {
		return 0, false
	}
	return time.Duration(d.Cycles) * d.CycleDuration(), true
}

// Validate checks that the definition is playable. Incomplete drafts are
// legal values; validation happens when a session starts, not at
// construction.
func (d WorkoutDefinition) Validate() error {
	if len(d.Intervals) < 2 {
		return fmt.Errorf("%w: need at least 2 intervals, got %d", ErrInvalidDefinition, len(d.Intervals))
	}
	for i, iv := range d.Intervals {
		if iv.Duration < 0 {
			return fmt.Errorf("%w: interval %d (%q) has negative duration %v", ErrInvalidDefinition, i, iv.Title, iv.Duration)
		}
	}
	return nil
}
