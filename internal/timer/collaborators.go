package timer

import (
	"time"

	"github.com/google/uuid"
)

// BoundaryScheduler is the fallback notification hook. The engine re-arms it
// with the remaining boundaries every time the timeline is rebuilt while
// running, and clears it on pause, stop and finish. Implementations live
// outside the core; their failures must not reach the engine.
type BoundaryScheduler interface {
	Arm(boundaries []Boundary)
	Clear()
}

// KeepAlive brackets a running session, for platforms that need an explicit
// "workout in progress" claim to avoid being suspended.
type KeepAlive interface {
	Begin()
	End()
}

// CompanionSync mirrors the session to a companion device. It receives the
// full definition and the current position at session start and again on
// explicit late-join requests.
type CompanionSync interface {
	SessionStarted(def WorkoutDefinition, snap Snapshot)
	SessionEnded(id uuid.UUID)
}

type noopScheduler struct{}

func (noopScheduler) Arm([]Boundary) {}
func (noopScheduler) Clear()         {}

type noopKeepAlive struct{}

func (noopKeepAlive) Begin() {}
func (noopKeepAlive) End()   {}

type noopCompanion struct{}

func (noopCompanion) SessionStarted(WorkoutDefinition, Snapshot) {}
func (noopCompanion) SessionEnded(uuid.UUID)                     {}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithPollInterval sets the cadence of the internal tick loop. Correctness
// does not depend on it; it only bounds event delivery latency and display
// smoothness.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollEvery = d
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithScheduler attaches a BoundaryScheduler.
func WithScheduler(s BoundaryScheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithKeepAlive attaches a KeepAlive.
func WithKeepAlive(k KeepAlive) Option {
	return func(e *Engine) {
		if k != nil {
			e.keepAlive = k
		}
	}
}

// WithCompanion attaches a CompanionSync.
func WithCompanion(c CompanionSync) Option {
	return func(e *Engine) {
		if c != nil {
			e.companion = c
		}
	}
}
