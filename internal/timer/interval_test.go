package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionValidate(t *testing.T) {
	assert.NoError(t, runWalkDefinition().Validate())

	solo := WorkoutDefinition{Intervals: []Interval{{Title: "Only", Duration: time.Minute}}}
	assert.ErrorIs(t, solo.Validate(), ErrInvalidDefinition)

	assert.ErrorIs(t, WorkoutDefinition{}.Validate(), ErrInvalidDefinition)

	negative := runWalkDefinition()
	negative.Intervals[1].Duration = -time.Second
	assert.ErrorIs(t, negative.Validate(), ErrInvalidDefinition)

	zeroWidth := runWalkDefinition()
	zeroWidth.Intervals[1].Duration = 0
	assert.NoError(t, zeroWidth.Validate())
}

func TestDefinitionDurations(t *testing.T) {
	def := runWalkDefinition()
	assert.Equal(t, 300*time.Second, def.CycleDuration())

	total, bounded := def.TotalDuration()
	require.True(t, bounded)
	assert.Equal(t, 900*time.Second, total)

	def.Cycles = 0
	assert.True(t, def.Unbounded())
	_, bounded = def.TotalDuration()
	assert.False(t, bounded)
}

func TestIntervalCueText(t *testing.T) {
	assert.Equal(t, "Go!", Interval{Title: "Work", Cue: "Go!"}.CueText())
	assert.Equal(t, "Work", Interval{Title: "Work"}.CueText())
}

func TestBuiltinDefinitionsPlayable(t *testing.T) {
	defs := BuiltinDefinitions()
	require.NotEmpty(t, defs)
	unboundedSeen := false
	for _, def := range defs {
		assert.NoError(t, def.Validate(), def.Name)
		if def.Unbounded() {
			unboundedSeen = true
		}
	}
	assert.True(t, unboundedSeen)
}
