package store

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DominicStewart/Intervally/internal/timer"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefinitionsWithoutFileReturnsBuiltins(t *testing.T) {
	s := NewPresetStore(filepath.Join(t.TempDir(), "missing.yaml"), discardLogger())

	defs, err := s.Definitions()
	require.NoError(t, err)
	assert.Equal(t, timer.BuiltinDefinitions(), defs)
}

func TestDefinitionsAppendsUserPresets(t *testing.T) {
	path := writePresets(t, `
workouts:
  - name: Hill Repeats
    cycles: 6
    intervals:
      - id: climb
        title: Climb
        seconds: 90
        color: red
        cue: Up!
      - id: descend
        title: Descend
        seconds: 120
        color: green
`)
	s := NewPresetStore(path, discardLogger())

	defs, err := s.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, len(timer.BuiltinDefinitions())+1)

	hill := defs[len(defs)-1]
	assert.Equal(t, "Hill Repeats", hill.Name)
	assert.Equal(t, 6, hill.Cycles)
	require.Len(t, hill.Intervals, 2)
	assert.Equal(t, 90*time.Second, hill.Intervals[0].Duration)
	assert.Equal(t, "Up!", hill.Intervals[0].Cue)
	assert.NoError(t, hill.Validate())
}

func TestDefinitionsUserPresetOverridesBuiltin(t *testing.T) {
	path := writePresets(t, `
workouts:
  - name: Tabata
    cycles: 10
    intervals:
      - title: Work
        seconds: 40
      - title: Rest
        seconds: 20
`)
	s := NewPresetStore(path, discardLogger())

	defs, err := s.Definitions()
	require.NoError(t, err)
	assert.Len(t, defs, len(timer.BuiltinDefinitions()))

	var tabata timer.WorkoutDefinition
	for _, def := range defs {
		if def.Name == "Tabata" {
			tabata = def
		}
	}
	assert.Equal(t, 10, tabata.Cycles)
	assert.Equal(t, 40*time.Second, tabata.Intervals[0].Duration)
}

func TestDefinitionsRejectsMalformedFile(t *testing.T) {
	path := writePresets(t, "workouts: [not a workout")
	s := NewPresetStore(path, discardLogger())

	_, err := s.Definitions()
	assert.Error(t, err)
}

func TestDefinitionsRejectsUnplayablePreset(t *testing.T) {
	path := writePresets(t, `
workouts:
  - name: Solo
    cycles: 1
    intervals:
      - title: Only
        seconds: 60
`)
	s := NewPresetStore(path, discardLogger())

	_, err := s.Definitions()
	require.Error(t, err)
	assert.ErrorIs(t, err, timer.ErrInvalidDefinition)
}
