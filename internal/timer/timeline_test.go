package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWalkDefinition() WorkoutDefinition {
	return WorkoutDefinition{
		Name: "Run/Walk",
		Intervals: []Interval{
			{ID: "run", Title: "Run", Duration: 240 * time.Second},
			{ID: "walk", Title: "Walk", Duration: 60 * time.Second},
		},
		Cycles: 3,
	}
}

func TestBuildTimelineBoundaryCount(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tl := buildTimeline(runWalkDefinition(), anchor)
	assert.Len(t, tl.Boundaries, 2*3)

	unbounded := runWalkDefinition()
	unbounded.Cycles = 0
	tl = buildTimeline(unbounded, anchor)
	assert.Len(t, tl.Boundaries, 2*infiniteCycleCap)
}

func TestBuildTimelineAbsoluteDates(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tl := buildTimeline(runWalkDefinition(), anchor)

	assert.Equal(t, anchor.Add(240*time.Second), tl.Boundaries[0].At)
	assert.Equal(t, anchor.Add(300*time.Second), tl.Boundaries[1].At)
	assert.Equal(t, anchor.Add(540*time.Second), tl.Boundaries[2].At)
	assert.Equal(t, anchor.Add(900*time.Second), tl.end())

	assert.Equal(t, 0, tl.Boundaries[0].Cycle)
	assert.Equal(t, 1, tl.Boundaries[2].Cycle)
	assert.Equal(t, 0, tl.Boundaries[2].IntervalIndex)
	assert.Equal(t, "Walk", tl.Boundaries[3].Interval.Title)
}

func TestBuildTimelineDatesNonDecreasing(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	def := WorkoutDefinition{
		Name: "With chime",
		Intervals: []Interval{
			{Title: "Warmup", Duration: 10 * time.Second},
			{Title: "Chime", Duration: 0},
			{Title: "Work", Duration: 20 * time.Second},
		},
		Cycles: 4,
	}

	tl := buildTimeline(def, anchor)
	require.Len(t, tl.Boundaries, 12)
	for i := 1; i < len(tl.Boundaries); i++ {
		prev, cur := tl.Boundaries[i-1].At, tl.Boundaries[i].At
		assert.False(t, cur.Before(prev), "boundary %d precedes boundary %d", i, i-1)
	}
	// The chime shares its end instant with the warmup it follows.
	assert.Equal(t, tl.Boundaries[0].At, tl.Boundaries[1].At)
}

func TestShiftedPreservesSpacing(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tl := buildTimeline(runWalkDefinition(), anchor)

	moved := tl.shifted(-17 * time.Second)
	assert.Equal(t, anchor.Add(-17*time.Second), moved.Anchor)
	require.Len(t, moved.Boundaries, len(tl.Boundaries))
	for i := range tl.Boundaries {
		assert.Equal(t, tl.Boundaries[i].At.Add(-17*time.Second), moved.Boundaries[i].At)
	}

	// The original is untouched.
	assert.Equal(t, anchor.Add(240*time.Second), tl.Boundaries[0].At)
}

func TestBoundaryIndexAt(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tl := buildTimeline(runWalkDefinition(), anchor)

	assert.Equal(t, 0, tl.boundaryIndexAt(anchor))
	assert.Equal(t, 0, tl.boundaryIndexAt(anchor.Add(239*time.Second)))
	// A boundary exactly equal to now counts as already crossed.
	assert.Equal(t, 1, tl.boundaryIndexAt(anchor.Add(240*time.Second)))
	assert.Equal(t, 5, tl.boundaryIndexAt(anchor.Add(899*time.Second)))
	assert.Equal(t, 6, tl.boundaryIndexAt(anchor.Add(900*time.Second)))
	assert.Equal(t, 6, tl.boundaryIndexAt(anchor.Add(time.Hour)))
}
