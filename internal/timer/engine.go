package timer

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DominicStewart/Intervally/internal/events"
	"github.com/DominicStewart/Intervally/internal/safego"
)

// EventKind discriminates engine events.
type EventKind int

const (
	// EventIntervalStart fires exactly once per boundary crossing, including
	// the synthetic crossing into the first interval at Start.
	EventIntervalStart EventKind = iota
	// EventSessionFinished fires exactly once when the session ends on its
	// own or via a skip past the final boundary.
	EventSessionFinished
)

func (k EventKind) String() string {
	switch k {
	case EventIntervalStart:
		return "interval-start"
	case EventSessionFinished:
		return "session-finished"
	default:
		return "unknown"
	}
}

// Event is one boundary crossing or session completion.
type Event struct {
	Kind          EventKind
	SessionID     uuid.UUID
	Interval      Interval
	IntervalIndex int
	Cycle         int // 1-based
	At            time.Time
}

const (
	defaultPollInterval = 50 * time.Millisecond
	eventQueueSize      = 256
)

// Engine owns one workout session. It is the single writer of the session
// state: every transition and every tick runs under one mutex, while queries
// read the snapshot captured by the most recent tick or transition.
//
// Position is never accumulated tick by tick. The timeline holds absolute
// boundary instants, and each tick projects "now" onto it, so suspension,
// scheduler jitter and coarse polling delay event delivery but cannot drift
// the clock.
type Engine struct {
	logger    *log.Logger
	now       func() time.Time
	pollEvery time.Duration

	mu            sync.RWMutex
	status        Status
	sessionID     uuid.UUID
	definition    WorkoutDefinition
	timeline      Timeline
	frozenElapsed time.Duration
	lastBoundary  int
	snap          Snapshot

	snapshotTopic *events.Topic[Snapshot]
	eventTopic    *events.Topic[Event]
	eventQueue    chan Event

	scheduler BoundaryScheduler
	keepAlive KeepAlive
	companion CompanionSync

	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewEngine creates an Engine and starts its tick and event-dispatch
// goroutines. Call Shutdown when done.
func NewEngine(logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		panic("Engine: logger cannot be nil")
	}

	e := &Engine{
		logger:        logger,
		now:           time.Now,
		pollEvery:     defaultPollInterval,
		status:        StatusIdle,
		snap:          Snapshot{Status: StatusIdle},
		snapshotTopic: events.NewTopic[Snapshot](true),
		eventTopic:    events.NewTopic[Event](false),
		eventQueue:    make(chan Event, eventQueueSize),
		scheduler:     noopScheduler{},
		keepAlive:     noopKeepAlive{},
		companion:     noopCompanion{},
		doneChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.wg.Add(2)
	safego.Go(logger, func() { e.runLoop() })
	safego.Go(logger, func() { e.dispatchLoop() })

	return e
}

// Shutdown stops the engine goroutines. Safe to call more than once.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		close(e.doneChan)
		e.wg.Wait()
		e.logger.Printf("Engine: shutdown complete")
	})
}

// Start validates def, anchors a fresh timeline at now and enters Running.
// Returns ErrInvalidDefinition for unplayable definitions and
// ErrSessionActive when a session is already loaded; in both cases the state
// is unchanged.
func (e *Engine) Start(def WorkoutDefinition) error {
	if err := def.Validate(); err != nil {
		e.logger.Printf("Engine: start rejected: %v", err)
		return err
	}

	now := e.now()

	e.mu.Lock()
	if e.status != StatusIdle {
		e.mu.Unlock()
		e.logger.Printf("Engine: start rejected, session is %s", e.status)
		return ErrSessionActive
	}

	e.sessionID = uuid.New()
	e.definition = def
	e.timeline = buildTimeline(def, now)
	e.status = StatusRunning
	e.frozenElapsed = 0
	e.lastBoundary = -1

	idx := e.timeline.boundaryIndexAt(now)
	e.emitCrossingsLocked(idx, now)
	finished := idx >= len(e.timeline.Boundaries)
	if finished {
		// Every interval was zero-width.
		e.finishLocked(now)
	} else {
		e.lastBoundary = idx
		e.updateSnapshotLocked(now)
	}
	snap := e.snap
	arm := e.armBoundariesLocked(now)
	sid := e.sessionID
	e.mu.Unlock()

	e.logger.Printf("Engine: session %s started (%s)", sid, def.Name)
	e.keepAlive.Begin()
	if finished {
		e.keepAlive.End()
	} else {
		e.scheduler.Arm(arm)
	}
	e.companion.SessionStarted(def, snap)
	e.publishSnapshot()
	return nil
}

// Pause freezes elapsed time at the current instant. No-op unless Running.
func (e *Engine) Pause() {
	now := e.now()

	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		e.logger.Printf("Engine: pause ignored, session is %s", e.status)
		return
	}

	idx := e.timeline.boundaryIndexAt(now)
	if idx >= len(e.timeline.Boundaries) {
		// The session already ran out; a missed tick, not a pause.
		e.emitCrossingsLocked(idx, now)
		e.finishLocked(now)
		e.mu.Unlock()
		e.scheduler.Clear()
		e.keepAlive.End()
		e.publishSnapshot()
		return
	}

	// Report any boundary crossed since the last tick before freezing, so
	// the interval the session pauses into still gets its event.
	e.emitCrossingsLocked(idx, now)
	e.lastBoundary = idx

	e.frozenElapsed = now.Sub(e.timeline.Anchor)
	e.status = StatusPaused
	e.updateSnapshotLocked(now)
	e.mu.Unlock()

	e.logger.Printf("Engine: paused at %v elapsed", e.ElapsedTime())
	e.scheduler.Clear()
	e.publishSnapshot()
}

// Resume shifts the whole timeline so that elapsed time continues from the
// frozen value, then re-enters Running. No-op unless Paused.
func (e *Engine) Resume() {
	now := e.now()

	e.mu.Lock()
	if e.status != StatusPaused {
		e.mu.Unlock()
		e.logger.Printf("Engine: resume ignored, session is %s", e.status)
		return
	}

	newAnchor := now.Add(-e.frozenElapsed)
	e.timeline = e.timeline.shifted(newAnchor.Sub(e.timeline.Anchor))
	e.status = StatusRunning
	e.frozenElapsed = 0
	e.lastBoundary = e.timeline.boundaryIndexAt(now)
	e.updateSnapshotLocked(now)
	arm := e.armBoundariesLocked(now)
	e.mu.Unlock()

	e.logger.Printf("Engine: resumed")
	e.scheduler.Arm(arm)
	e.publishSnapshot()
}

// SkipForward collapses the remainder of the current interval by shifting
// every boundary earlier, entering the next interval immediately. Skipping
// out of the final interval finishes the session. No-op unless Running.
func (e *Engine) SkipForward() {
	now := e.now()

	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		e.logger.Printf("Engine: skip forward ignored, session is %s", e.status)
		return
	}

	e.extendTimelineLocked(now)

	idx := e.timeline.boundaryIndexAt(now)
	if idx >= len(e.timeline.Boundaries) {
		e.emitCrossingsLocked(idx, now)
		e.finishLocked(now)
		e.mu.Unlock()
		e.scheduler.Clear()
		e.keepAlive.End()
		e.publishSnapshot()
		return
	}

	delta := e.timeline.Boundaries[idx].At.Sub(now)
	e.timeline = e.timeline.shifted(-delta)

	newIdx := e.timeline.boundaryIndexAt(now)
	e.emitCrossingsLocked(newIdx, now)
	finished := newIdx >= len(e.timeline.Boundaries)
	if finished {
		e.finishLocked(now)
	} else {
		e.lastBoundary = newIdx
		e.updateSnapshotLocked(now)
	}
	arm := e.armBoundariesLocked(now)
	e.mu.Unlock()

	if finished {
		e.scheduler.Clear()
		e.keepAlive.End()
	} else {
		e.scheduler.Arm(arm)
	}
	e.publishSnapshot()
}

// SkipBackward re-enters the previous interval occurrence at its full
// duration. From within the first or second interval occurrence the whole
// timeline is rebuilt at now, restarting interval one of cycle one. No-op
// unless Running.
func (e *Engine) SkipBackward() {
	now := e.now()

	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		e.logger.Printf("Engine: skip backward ignored, session is %s", e.status)
		return
	}

	idx := e.timeline.boundaryIndexAt(now)
	if idx <= 1 {
		e.timeline = buildTimeline(e.definition, now)
		e.lastBoundary = 0
		e.queueEventLocked(e.crossingEventLocked(0, now))
	} else {
		// The current interval starts at boundary idx-1; the one before
		// that starts the occurrence we are rewinding into.
		prevStart := e.timeline.Boundaries[idx-2].At
		e.timeline = e.timeline.shifted(now.Sub(prevStart))
		newIdx := e.timeline.boundaryIndexAt(now)
		e.lastBoundary = newIdx
		if newIdx < len(e.timeline.Boundaries) {
			e.queueEventLocked(e.crossingEventLocked(newIdx, now))
		}
	}
	e.updateSnapshotLocked(now)
	arm := e.armBoundariesLocked(now)
	e.mu.Unlock()

	e.scheduler.Arm(arm)
	e.publishSnapshot()
}

// Stop discards the session unconditionally and returns to Idle. It is the
// only cancellation primitive: collaborators are cleared synchronously as
// part of the transition.
func (e *Engine) Stop() {
	e.mu.Lock()
	wasLoaded := e.status != StatusIdle
	wasLive := e.status == StatusRunning || e.status == StatusPaused
	sid := e.sessionID
	e.status = StatusIdle
	e.sessionID = uuid.Nil
	e.definition = WorkoutDefinition{}
	e.timeline = Timeline{}
	e.frozenElapsed = 0
	e.lastBoundary = -1
	e.snap = Snapshot{Status: StatusIdle}
	e.mu.Unlock()

	if !wasLoaded {
		e.logger.Printf("Engine: stop ignored, no session")
		return
	}
	e.logger.Printf("Engine: session %s stopped", sid)
	e.scheduler.Clear()
	if wasLive {
		e.keepAlive.End()
	}
	e.companion.SessionEnded(sid)
	e.publishSnapshot()
}

// Tick projects now onto the timeline, refreshes the cached snapshot and
// emits one EventIntervalStart per boundary crossed since the previous tick.
// Ticking twice with the same now is a no-op the second time. The engine's
// own loop calls this; it is exported so tests can drive time directly.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		return
	}

	e.extendTimelineLocked(now)

	idx := e.timeline.boundaryIndexAt(now)
	e.emitCrossingsLocked(idx, now)
	finished := idx >= len(e.timeline.Boundaries)
	if finished {
		e.finishLocked(now)
	} else {
		e.lastBoundary = idx
		e.updateSnapshotLocked(now)
	}
	e.mu.Unlock()

	if finished {
		e.scheduler.Clear()
		e.keepAlive.End()
	}
	e.publishSnapshot()
}

// LateJoin re-sends the definition and current position to the companion
// channel, for a device that attached mid-session.
func (e *Engine) LateJoin() {
	e.mu.RLock()
	active := e.status == StatusRunning || e.status == StatusPaused
	def := e.definition
	snap := e.snap
	e.mu.RUnlock()

	if !active {
		e.logger.Printf("Engine: late join ignored, no active session")
		return
	}
	e.companion.SessionStarted(def, snap)
}

// --- queries ---

// Status returns the current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Snapshot returns the state captured by the most recent tick or transition.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// CurrentInterval returns the interval in play. ok is false when Idle.
func (e *Engine) CurrentInterval() (Interval, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.status == StatusIdle {
		return Interval{}, false
	}
	return e.snap.Interval, true
}

// NextInterval returns the upcoming interval, if any.
func (e *Engine) NextInterval() (Interval, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap.NextInterval == nil {
		return Interval{}, false
	}
	return *e.snap.NextInterval, true
}

// RemainingTime returns the time left in the current interval.
func (e *Engine) RemainingTime() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Remaining
}

// ElapsedTime returns time since the session anchor.
func (e *Engine) ElapsedTime() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Elapsed
}

// Progress returns the position within the current interval, in [0,1].
func (e *Engine) Progress() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Progress
}

// CurrentCycle returns the 1-based cycle in play, 0 when Idle.
func (e *Engine) CurrentCycle() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Cycle
}

// TotalCycles returns the definition's cycle count, 0 for unbounded.
func (e *Engine) TotalCycles() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.TotalCycles
}

// ListenToSnapshots registers a channel for snapshot updates. The most
// recent snapshot is delivered on registration. Returns a deregistration
// function.
func (e *Engine) ListenToSnapshots(ch chan<- Snapshot) func() {
	return e.snapshotTopic.SubscribeChan(ch)
}

// ListenToEvents registers a channel for boundary and finish events.
// Returns a deregistration function.
func (e *Engine) ListenToEvents(ch chan<- Event) func() {
	return e.eventTopic.SubscribeChan(ch)
}

// SubscribeEvents registers a callback for boundary and finish events. The
// callback runs on the engine's dispatch goroutine, never inside the tick
// path, so a slow consumer delays other consumers but not the timer itself.
// Returns a deregistration function.
func (e *Engine) SubscribeEvents(fn func(Event)) func() {
	return e.eventTopic.Subscribe(fn)
}

// --- internals; every *Locked method requires e.mu held ---

// extendTimelineLocked grows an unbounded session's timeline before playback
// can reach the capped final cycle. The rebuilt timeline reproduces every
// existing boundary exactly (the builder is deterministic), so the swap is
// invisible to projection.
func (e *Engine) extendTimelineLocked(now time.Time) {
	if !e.definition.Unbounded() {
		return
	}
	perCycle := len(e.definition.Intervals)
	if len(e.timeline.Boundaries)-e.timeline.boundaryIndexAt(now) > perCycle {
		return
	}
	grown := buildTimelineCycles(e.definition, e.timeline.Anchor, e.timeline.expandedCycles*2)
	e.logger.Printf("Engine: extended unbounded timeline to %d cycles", grown.expandedCycles)
	e.timeline = grown
}

// emitCrossingsLocked queues one EventIntervalStart for every boundary index
// in (lastBoundary, newIdx], capped at the final boundary. Zero-width
// intervals crossed in a single tick each get their event, in order.
func (e *Engine) emitCrossingsLocked(newIdx int, now time.Time) {
	last := len(e.timeline.Boundaries) - 1
	for i := e.lastBoundary + 1; i <= newIdx && i <= last; i++ {
		e.queueEventLocked(e.crossingEventLocked(i, now))
	}
}

func (e *Engine) crossingEventLocked(idx int, now time.Time) Event {
	b := e.timeline.Boundaries[idx]
	return Event{
		Kind:          EventIntervalStart,
		SessionID:     e.sessionID,
		Interval:      b.Interval,
		IntervalIndex: b.IntervalIndex,
		Cycle:         b.Cycle + 1,
		At:            now,
	}
}

func (e *Engine) queueEventLocked(ev Event) {
	select {
	case e.eventQueue <- ev:
	default:
		e.logger.Printf("Engine: event queue full, dropped %v event for %q", ev.Kind, ev.Interval.Title)
	}
}

func (e *Engine) finishLocked(now time.Time) {
	e.status = StatusFinished
	e.lastBoundary = len(e.timeline.Boundaries)
	snap := finishedSnapshot(e.timeline)
	snap.Status = StatusFinished
	snap.SessionID = e.sessionID
	e.snap = snap
	e.queueEventLocked(Event{
		Kind:      EventSessionFinished,
		SessionID: e.sessionID,
		At:        now,
	})
	e.logger.Printf("Engine: session %s finished", e.sessionID)
}

func (e *Engine) updateSnapshotLocked(now time.Time) {
	snap, ok := project(e.timeline, now)
	if !ok {
		return
	}
	snap.Status = e.status
	snap.SessionID = e.sessionID
	e.snap = snap
}

// armBoundariesLocked copies the boundaries still ahead of now, for the
// scheduler.
func (e *Engine) armBoundariesLocked(now time.Time) []Boundary {
	idx := e.timeline.boundaryIndexAt(now)
	if idx >= len(e.timeline.Boundaries) {
		return nil
	}
	remaining := make([]Boundary, len(e.timeline.Boundaries)-idx)
	copy(remaining, e.timeline.Boundaries[idx:])
	return remaining
}

func (e *Engine) publishSnapshot() {
	e.mu.RLock()
	snap := e.snap
	e.mu.RUnlock()
	e.snapshotTopic.Publish(snap)
}

func (e *Engine) runLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-e.doneChan:
			return
		case <-ticker.C:
			e.Tick(e.now())
		}
	}
}

// dispatchLoop drains the event queue onto the event topic, decoupling
// consumers from the tick path.
func (e *Engine) dispatchLoop() {
	defer e.wg.Done()

	for {
		select {
		case ev := <-e.eventQueue:
			e.eventTopic.Publish(ev)
		case <-e.doneChan:
			// Flush whatever is already queued before exiting.
			for {
				select {
				case ev := <-e.eventQueue:
					e.eventTopic.Publish(ev)
				default:
					return
				}
			}
		}
	}
}
