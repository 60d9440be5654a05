package ui

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DominicStewart/Intervally/internal/timer"
)

func newTestModel(t *testing.T) (*UIModel, *timer.Engine, chan string) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	engine := timer.NewEngine(logger, timer.WithPollInterval(time.Hour))
	t.Cleanup(engine.Shutdown)

	logChan := make(chan string, 16)
	model := NewUIModel(engine, logger, logChan)
	t.Cleanup(model.Shutdown)
	return model, engine, logChan
}

func TestLogTail(t *testing.T) {
	model, _, logChan := newTestModel(t)

	logChan <- "one\n"
	logChan <- "two\n"
	logChan <- "three\n"

	require.Eventually(t, func() bool {
		return len(model.GetLogTail(10)) == 3
	}, time.Second, time.Millisecond)

	assert.Equal(t, []string{"two\n", "three\n"}, model.GetLogTail(2))
	assert.Empty(t, model.GetLogTail(0))
}

func TestSetModeNotifiesOnChangeOnly(t *testing.T) {
	model, _, _ := newTestModel(t)

	ch := make(chan UIState, 4)
	defer model.ListenToUIState(ch)()
	<-ch // replayed initial state

	model.SetMode(UIModeWorkoutSelection) // already current, no notification
	model.SetMode(UIModeSessionDashboard)

	select {
	case state := <-ch:
		assert.Equal(t, UIModeSessionDashboard, state.Mode)
	case <-time.After(time.Second):
		t.Fatal("no state change notification")
	}
	assert.Empty(t, ch)
	assert.Equal(t, UIModeSessionDashboard, model.GetUIState().Mode)
}

func TestModelTracksEngineSnapshots(t *testing.T) {
	model, engine, _ := newTestModel(t)

	require.NoError(t, engine.Start(timer.BuiltinDefinitions()[0]))

	require.Eventually(t, func() bool {
		return model.GetSnapshot().Status == timer.StatusRunning
	}, time.Second, time.Millisecond)
	assert.Equal(t, "Run", model.GetSnapshot().Interval.Title)
}

func TestHeartRate(t *testing.T) {
	model, _, _ := newTestModel(t)

	assert.Equal(t, 0, model.GetHeartRate())

	ch := make(chan int, 4)
	defer model.ListenToHeartRate(ch)()

	model.SetHeartRate(142)
	select {
	case bpm := <-ch:
		assert.Equal(t, 142, bpm)
	case <-time.After(time.Second):
		t.Fatal("no heart rate notification")
	}
	assert.Equal(t, 142, model.GetHeartRate())
}
