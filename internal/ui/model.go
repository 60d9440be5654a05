package ui

import (
	"context"
	"log"
	"sync"

	"github.com/DominicStewart/Intervally/internal/events"
	"github.com/DominicStewart/Intervally/internal/safego"
	"github.com/DominicStewart/Intervally/internal/timer"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

const maxLogLines = 1000

// UIModel is the view-facing state: the engine's latest snapshot, the heart
// rate, the UI mode, and the log tail shown in the log pane. Views observe
// it through listener channels; controllers mutate it.
type UIModel struct {
	logTopic         *events.Topic[string]
	uiStateTopic     *events.Topic[UIState]
	snapshotTopic    *events.Topic[timer.Snapshot]
	heartRateTopic   *events.Topic[int]
	closeApplication *events.Topic[struct{}]

	mu        sync.RWMutex
	uiState   UIState
	snapshot  timer.Snapshot
	heartRate int

	logMu    sync.RWMutex
	logLines []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger
}

// NewUIModel creates the model and starts pumping the engine's snapshots and
// the log channel into it.
func NewUIModel(engine *timer.Engine, logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logTopic:         events.NewTopic[string](false),
		uiStateTopic:     events.NewTopic[UIState](true),
		snapshotTopic:    events.NewTopic[timer.Snapshot](true),
		heartRateTopic:   events.NewTopic[int](true),
		closeApplication: events.NewTopic[struct{}](true),
		uiState:          UIState{Mode: UIModeWorkoutSelection},
		snapshot:         timer.Snapshot{Status: timer.StatusIdle},
		logLines:         make([]string, 0, maxLogLines),
		ctx:              ctx,
		cancel:           cancel,
		logger:           logger,
	}

	model.wg.Add(1)
	safego.Go(logger, func() { model.readFromLogChannel(uiLogChan) })

	snapChan := make(chan timer.Snapshot, 8)
	unregister := engine.ListenToSnapshots(snapChan)
	model.wg.Add(1)
	safego.Go(logger, func() {
		defer model.wg.Done()
		defer unregister()
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapChan:
				if !ok {
					return
				}
				model.setSnapshot(snap)
			}
		}
	})

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log lines as they arrive
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logTopic.SubscribeChan(ch)
}

// ListenToUIState registers a channel to receive UI state changes
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateTopic.SubscribeChan(ch)
}

// ListenToSnapshot registers a channel to receive session snapshots
func (m *UIModel) ListenToSnapshot(ch chan<- timer.Snapshot) func() {
	return m.snapshotTopic.SubscribeChan(ch)
}

// ListenToHeartRate registers a channel to receive BPM updates
func (m *UIModel) ListenToHeartRate(ch chan<- int) func() {
	return m.heartRateTopic.SubscribeChan(ch)
}

// ListenToCloseApplication registers a channel to receive close signals
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplication.SubscribeChan(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplication.Publish(struct{}{})
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateTopic.Publish(state)
}

// GetSnapshot returns the most recent session snapshot
func (m *UIModel) GetSnapshot() timer.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *UIModel) setSnapshot(snap timer.Snapshot) {
	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	m.snapshotTopic.Publish(snap)
}

// GetHeartRate returns the last BPM reading, 0 before any arrives
func (m *UIModel) GetHeartRate() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.heartRate
}

// SetHeartRate records a BPM reading and notifies listeners
func (m *UIModel) SetHeartRate(bpm int) {
	m.mu.Lock()
	m.heartRate = bpm
	m.mu.Unlock()

	m.heartRateTopic.Publish(bpm)
}

func (m *UIModel) readFromLogChannel(logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logTopic.Publish(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n >= len(m.logLines) {
		result := make([]string, len(m.logLines))
		copy(result, m.logLines)
		return result
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
