package timer

import (
	"sort"
	"time"
)

// infiniteCycleCap bounds the expansion of an unbounded definition. The
// engine rebuilds with a larger cycle count before playback reaches the final
// expanded cycle, so the cap is never observable from outside.
const infiniteCycleCap = 1000

// Boundary marks the absolute instant at which one interval occurrence ends.
type Boundary struct {
	At            time.Time
	Interval      Interval
	IntervalIndex int // ordinal of the interval within one cycle
	Cycle         int // zero-based cycle the occurrence belongs to
}

// Timeline is the complete ordered boundary sequence for a session, anchored
// to a start instant. Timelines are immutable once built: pause, resume and
// skip produce fresh Timeline values rather than editing boundaries in
// place.
type Timeline struct {
	Anchor     time.Time
	Definition WorkoutDefinition
	Boundaries []Boundary

	expandedCycles int
}

// buildTimeline expands def into its boundary sequence starting at anchor.
// Purely deterministic: identical inputs give identical output, and the only
// time involved is the supplied anchor.
func buildTimeline(def WorkoutDefinition, anchor time.Time) Timeline {
	cycles := def.Cycles
	if cycles == 0 {
		cycles = infiniteCycleCap
	}
	return buildTimelineCycles(def, anchor, cycles)
}

func buildTimelineCycles(def WorkoutDefinition, anchor time.Time, cycles int) Timeline {
	boundaries := make([]Boundary, 0, cycles*len(def.Intervals))
	var offset time.Duration
	for cycle := 0; cycle < cycles; cycle++ {
		for index, iv := range def.Intervals {
			offset += iv.Duration
			boundaries = append(boundaries, Boundary{
				At:            anchor.Add(offset),
				Interval:      iv,
				IntervalIndex: index,
				Cycle:         cycle,
			})
		}
	}
	return Timeline{
		Anchor:         anchor,
		Definition:     def,
		Boundaries:     boundaries,
		expandedCycles: cycles,
	}
}

// shifted returns a new Timeline with the anchor and every boundary moved by
// d. Spacing between boundaries is preserved exactly.
func (t Timeline) shifted(d time.Duration) Timeline {
	boundaries := make([]Boundary, len(t.Boundaries))
	for i, b := range t.Boundaries {
		b.At = b.At.Add(d)
		boundaries[i] = b
	}
	return Timeline{
		Anchor:         t.Anchor.Add(d),
		Definition:     t.Definition,
		Boundaries:     boundaries,
		expandedCycles: t.expandedCycles,
	}
}

// boundaryIndexAt returns the index of the first boundary strictly after
// now, or len(t.Boundaries) when now is at or past the final boundary. A
// boundary exactly equal to now counts as already crossed; the skip and
// rewind math relies on the same convention.
func (t Timeline) boundaryIndexAt(now time.Time) int {
	return sort.Search(len(t.Boundaries), func(i int) bool {
		return t.Boundaries[i].At.After(now)
	})
}

// end returns the instant of the final boundary, or the anchor for an empty
// timeline.
func (t Timeline) end() time.Time {
	if len(t.Boundaries) == 0 {
		return t.Anchor
	}
	return t.Boundaries[len(t.Boundaries)-1].At
}
