package alert

import (
	"io"
	"log"
	"time"

	"github.com/DominicStewart/Intervally/internal/timer"
)

// Announcer turns engine events into user-facing cues: a terminal bell plus
// a cue line in the log, which the UI surfaces in its log pane. It runs on
// the engine's dispatch goroutine, so a slow terminal cannot stall the
// timer.
type Announcer struct {
	logger      *log.Logger
	bell        io.Writer
	unsubscribe func()
}

// NewAnnouncer subscribes to engine events. bell receives the BEL byte on
// every interval start; pass io.Discard to silence it.
func NewAnnouncer(logger *log.Logger, bell io.Writer, engine *timer.Engine) *Announcer {
	if logger == nil {
		panic("Announcer: logger cannot be nil")
	}
	a := &Announcer{logger: logger, bell: bell}
	a.unsubscribe = engine.SubscribeEvents(a.handle)
	return a
}

// Close detaches the announcer from the engine.
func (a *Announcer) Close() {
	a.unsubscribe()
}

func (a *Announcer) handle(ev timer.Event) {
	switch ev.Kind {
	case timer.EventIntervalStart:
		a.ring()
		a.logger.Printf("Announcer: >>> %s (cycle %d)", ev.Interval.CueText(), ev.Cycle)
	case timer.EventSessionFinished:
		a.ring()
		a.ring()
		a.logger.Printf("Announcer: >>> Workout complete!")
	}
}

func (a *Announcer) ring() {
	if a.bell == nil {
		return
	}
	if _, err := a.bell.Write([]byte{'\a'}); err != nil {
		a.logger.Printf("Announcer: bell write failed: %v", err)
	}
}

// LogScheduler is the fallback notification scheduler. On a platform with
// real OS notifications this would arm one per boundary; here it records
// what would be armed so the behavior is observable in the log.
type LogScheduler struct {
	logger *log.Logger
}

func NewLogScheduler(logger *log.Logger) *LogScheduler {
	if logger == nil {
		panic("LogScheduler: logger cannot be nil")
	}
	return &LogScheduler{logger: logger}
}

func (s *LogScheduler) Arm(boundaries []timer.Boundary) {
	if len(boundaries) == 0 {
		return
	}
	last := boundaries[len(boundaries)-1]
	s.logger.Printf("Scheduler: armed %d notifications through %s",
		len(boundaries), last.At.Format(time.Kitchen))
}

func (s *LogScheduler) Clear() {
	s.logger.Printf("Scheduler: cleared")
}

// LogKeepAlive stands in for a platform workout-session keep-alive. The
// engine drives Begin/End around the live part of a session.
type LogKeepAlive struct {
	logger *log.Logger
}

func NewLogKeepAlive(logger *log.Logger) *LogKeepAlive {
	if logger == nil {
		panic("LogKeepAlive: logger cannot be nil")
	}
	return &LogKeepAlive{logger: logger}
}

func (k *LogKeepAlive) Begin() {
	k.logger.Printf("KeepAlive: session begin")
}

func (k *LogKeepAlive) End() {
	k.logger.Printf("KeepAlive: session end")
}
