package alert

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DominicStewart/Intervally/internal/timer"
)

func TestAnnouncerRingsAndLogsCues(t *testing.T) {
	var logBuf, bell bytes.Buffer
	logger := log.New(&logBuf, "", 0)

	a := &Announcer{logger: logger, bell: &bell}
	a.handle(timer.Event{
		Kind:     timer.EventIntervalStart,
		Interval: timer.Interval{Title: "Run", Cue: "Run!"},
		Cycle:    2,
	})

	assert.Equal(t, "\a", bell.String())
	assert.Contains(t, logBuf.String(), "Run!")
	assert.Contains(t, logBuf.String(), "cycle 2")
}

func TestAnnouncerFallsBackToTitle(t *testing.T) {
	var logBuf bytes.Buffer
	a := &Announcer{logger: log.New(&logBuf, "", 0), bell: io.Discard}

	a.handle(timer.Event{
		Kind:     timer.EventIntervalStart,
		Interval: timer.Interval{Title: "Walk"},
		Cycle:    1,
	})
	assert.Contains(t, logBuf.String(), "Walk")
}

func TestAnnouncerDoubleRingsOnFinish(t *testing.T) {
	var bell bytes.Buffer
	a := &Announcer{logger: log.New(io.Discard, "", 0), bell: &bell}

	a.handle(timer.Event{Kind: timer.EventSessionFinished})
	assert.Equal(t, "\a\a", bell.String())
}

func TestAnnouncerEndToEnd(t *testing.T) {
	var logBuf bytes.Buffer
	logger := log.New(&logBuf, "", 0)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e := timer.NewEngine(logger,
		timer.WithClock(func() time.Time { return clock }),
		timer.WithPollInterval(time.Hour))
	defer e.Shutdown()

	a := NewAnnouncer(logger, io.Discard, e)
	defer a.Close()

	require.NoError(t, e.Start(timer.WorkoutDefinition{
		Name: "Quick",
		Intervals: []timer.Interval{
			{Title: "Sprint", Duration: time.Second, Cue: "Sprint now"},
			{Title: "Recover", Duration: time.Second},
		},
		Cycles: 1,
	}))

	require.Eventually(t, func() bool {
		return strings.Contains(logBuf.String(), "Sprint now")
	}, time.Second, time.Millisecond)
}

func TestLogSchedulerArmAndClear(t *testing.T) {
	var logBuf bytes.Buffer
	s := NewLogScheduler(log.New(&logBuf, "", 0))

	s.Arm([]timer.Boundary{
		{At: time.Date(2026, 3, 1, 9, 4, 0, 0, time.UTC)},
		{At: time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)},
	})
	assert.Contains(t, logBuf.String(), "armed 2 notifications")

	s.Arm(nil) // nothing to arm, nothing logged
	s.Clear()
	assert.Contains(t, logBuf.String(), "cleared")
}
