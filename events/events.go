package events

import (
	"context"
	"sync"

	"skillswap/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserRegistered  EventType = "user_registered"
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeRequestSent     EventType = "request_sent"
	EventTypeRequestResolved EventType = "request_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserRegisteredEvent represents a new user registration
type UserRegisteredEvent struct {
	UserID          int64
	Email           string
	StartingBalance int64
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// BalanceChangeEvent represents a wallet balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	Available       int64
	Outgoing        int64
	Incoming        int64
	TransactionType models.TransactionType
	Amount          int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// RequestSentEvent represents a new connection request
type RequestSentEvent struct {
	RequestID   int64
	SenderID    int64
	ReceiverID  int64
	CreditsHeld int64
}

func (e RequestSentEvent) Type() EventType {
	return EventTypeRequestSent
}

// RequestResolvedEvent represents a request reaching a terminal status
type RequestResolvedEvent struct {
	RequestID  int64
	SenderID   int64
	ReceiverID int64
	Status     models.RequestStatus
}

func (e RequestResolvedEvent) Type() EventType {
	return EventTypeRequestResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching. Notification delivery
// hangs off this bus; the ledger never depends on it for correctness.
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

	// Call handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the underlying bus only after the DB commit succeeds.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Emit on a background context so event delivery outlives the
	// request-scoped transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback to drop un-flushed events.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
