package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeChallengeDay       EventType = "challenge_day"
	EventTypeSubmissionRecorded EventType = "submission_recorded"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ChallengeDayEvent marks the start of a new challenge day for a channel.
// Emitted by the scheduler at timezone midnight, or by a manual trigger.
type ChallengeDayEvent struct {
	ChannelID int64
	Day       string
	Timezone  string
	Manual    bool
}

func (e ChallengeDayEvent) Type() EventType {
	return EventTypeChallengeDay
}

// SubmissionRecordedEvent represents an accepted, scored submission
type SubmissionRecordedEvent struct {
	ChannelID int64
	DiscordID int64
	Day       string
	Score     float64
	Rank      int
}

func (e SubmissionRecordedEvent) Type() EventType {
	return EventTypeSubmissionRecorded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
