package companion

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DominicStewart/Intervally/internal/timer"
)

func testDefinition() timer.WorkoutDefinition {
	return timer.WorkoutDefinition{
		Name: "Tabata",
		Intervals: []timer.Interval{
			{Title: "Work", Duration: 20 * time.Second},
			{Title: "Rest", Duration: 10 * time.Second},
		},
		Cycles: 8,
	}
}

func TestBroadcasterPublishesStartAndEnd(t *testing.T) {
	b := NewBroadcaster(log.New(io.Discard, "", 0))

	var got []Update
	defer b.Subscribe(func(u Update) { got = append(got, u) })()

	sid := uuid.New()
	b.SessionStarted(testDefinition(), timer.Snapshot{SessionID: sid, Workout: "Tabata"})
	b.SessionEnded(sid)

	require.Len(t, got, 2)
	assert.Equal(t, "Tabata", got[0].Definition.Name)
	assert.Equal(t, sid, got[0].SessionID)
	assert.False(t, got[0].Ended)
	assert.True(t, got[1].Ended)
}

func TestBroadcasterReplaysLatestToLateJoiner(t *testing.T) {
	b := NewBroadcaster(log.New(io.Discard, "", 0))

	_, ok := b.Latest()
	assert.False(t, ok)

	sid := uuid.New()
	b.SessionStarted(testDefinition(), timer.Snapshot{SessionID: sid})

	// A subscriber attaching mid-session sees the session immediately.
	var replayed *Update
	defer b.Subscribe(func(u Update) { replayed = &u })()
	require.NotNil(t, replayed)
	assert.Equal(t, sid, replayed.SessionID)

	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, sid, latest.SessionID)
}
