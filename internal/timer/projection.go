package timer

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is everything that is true about a session at one instant. It is
// a plain value: safe to hand to any goroutine, and stable while paused.
type Snapshot struct {
	Status    Status
	SessionID uuid.UUID
	Workout   string

	Interval      Interval
	IntervalIndex int       // ordinal of the current interval within its cycle
	Cycle         int       // 1-based for display
	TotalCycles   int       // 0 when the definition repeats until stopped
	NextInterval  *Interval // nil when the current interval is the last

	Remaining time.Duration // time left in the current interval, >= 0
	Elapsed   time.Duration // time since the session anchor
	Progress  float64       // position within the current interval, [0,1]
}

// project computes the Snapshot for now against t. It is a pure function of
// its inputs. The second return value is false when now is at or past the
// final boundary, i.e. the session is over.
//
// The caller fills in Status and SessionID; projection knows nothing about
// the state machine.
func project(t Timeline, now time.Time) (Snapshot, bool) {
	idx := t.boundaryIndexAt(now)
	if idx >= len(t.Boundaries) {
		return Snapshot{}, false
	}

	b := t.Boundaries[idx]
	start := t.Anchor
	if idx > 0 {
		start = t.Boundaries[idx-1].At
	}

	remaining := b.At.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	width := b.At.Sub(start)
	progress := 1.0
	if width > 0 {
		progress = float64(now.Sub(start)) / float64(width)
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
	}

	var next *Interval
	if idx+1 < len(t.Boundaries) {
		iv := t.Boundaries[idx+1].Interval
		next = &iv
	}

	return Snapshot{
		Workout:       t.Definition.Name,
		Interval:      b.Interval,
		IntervalIndex: b.IntervalIndex,
		Cycle:         b.Cycle + 1,
		TotalCycles:   t.Definition.Cycles,
		NextInterval:  next,
		Remaining:     remaining,
		Elapsed:       now.Sub(t.Anchor),
		Progress:      progress,
	}, true
}

// finishedSnapshot is the terminal projection: remaining zero, progress one,
// elapsed frozen at the full session length.
func finishedSnapshot(t Timeline) Snapshot {
	snap := Snapshot{
		Workout:     t.Definition.Name,
		TotalCycles: t.Definition.Cycles,
		Remaining:   0,
		Elapsed:     t.end().Sub(t.Anchor),
		Progress:    1,
	}
	if n := len(t.Boundaries); n > 0 {
		last := t.Boundaries[n-1]
		snap.Interval = last.Interval
		snap.IntervalIndex = last.IntervalIndex
		snap.Cycle = last.Cycle + 1
	}
	return snap
}
