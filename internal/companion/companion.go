package companion

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/DominicStewart/Intervally/internal/events"
	"github.com/DominicStewart/Intervally/internal/timer"
)

// Update is what a companion device needs to render the session on its own:
// the full definition plus the current position. Position-only deltas are
// not enough for a device that joined late.
type Update struct {
	SessionID  uuid.UUID
	Definition timer.WorkoutDefinition
	Snapshot   timer.Snapshot
	Ended      bool
}

// Broadcaster fans session updates out to companion listeners. It implements
// the engine's companion hook; transports (a watch app, a second screen)
// subscribe to the topic and render what arrives.
type Broadcaster struct {
	logger *log.Logger
	topic  *events.Topic[Update]

	mu   sync.RWMutex
	last *Update
}

func NewBroadcaster(logger *log.Logger) *Broadcaster {
	if logger == nil {
		panic("Broadcaster: logger cannot be nil")
	}
	return &Broadcaster{
		logger: logger,
		topic:  events.NewTopic[Update](true),
	}
}

// SessionStarted pushes the definition and position. The engine also calls
// this on explicit late-join requests, so an update here is not necessarily
// a brand new session.
func (b *Broadcaster) SessionStarted(def timer.WorkoutDefinition, snap timer.Snapshot) {
	update := Update{
		SessionID:  snap.SessionID,
		Definition: def,
		Snapshot:   snap,
	}
	b.mu.Lock()
	b.last = &update
	b.mu.Unlock()

	b.logger.Printf("Companion: session %s sync (%s)", snap.SessionID, def.Name)
	b.topic.Publish(update)
}

// SessionEnded tells listeners the session is gone.
func (b *Broadcaster) SessionEnded(sessionID uuid.UUID) {
	update := Update{SessionID: sessionID, Ended: true}
	b.mu.Lock()
	b.last = &update
	b.mu.Unlock()

	b.logger.Printf("Companion: session %s ended", sessionID)
	b.topic.Publish(update)
}

// Latest returns the most recent update, for a transport polling instead of
// subscribing. ok is false before any session has started.
func (b *Broadcaster) Latest() (Update, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return Update{}, false
	}
	return *b.last, true
}

// Subscribe registers a callback for every update and returns a function
// that removes it. The latest update is replayed on registration.
func (b *Broadcaster) Subscribe(fn func(Update)) func() {
	return b.topic.Subscribe(fn)
}
