package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{}, 1)

	bus.Subscribe(EventTypeRequestSent, func(ctx context.Context, event Event) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		done <- struct{}{}
	})

	// A handler for a different type never fires
	bus.Subscribe(EventTypeUserRegistered, func(ctx context.Context, event Event) {
		t.Error("unexpected handler invocation")
	})

	bus.Emit(ctx, RequestSentEvent{RequestID: 42, SenderID: 1, ReceiverID: 2, CreditsHeld: 5})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 1)
	assert.Equal(t, EventTypeRequestSent, received[0].Type())
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	done := make(chan struct{}, 1)

	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		panic("handler exploded")
	})
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		done <- struct{}{}
	})

	bus.Emit(ctx, BalanceChangeEvent{UserID: 1, Available: 95})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("surviving handler was not invoked")
	}
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 2)

	bus.Subscribe(EventTypeRequestResolved, func(ctx context.Context, event Event) {
		mu.Lock()
		count++
		mu.Unlock()
		done <- struct{}{}
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(RequestResolvedEvent{RequestID: 1})
	txBus.Publish(RequestResolvedEvent{RequestID: 2})

	// Nothing is delivered before the flush
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, count)
	mu.Unlock()

	assert.NoError(t, txBus.Flush(ctx))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("flushed event was not delivered")
		}
	}
}

func TestTransactionalBus_DiscardOnRollback(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	bus.Subscribe(EventTypeRequestResolved, func(ctx context.Context, event Event) {
		t.Error("discarded event must not be delivered")
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(RequestResolvedEvent{RequestID: 1})
	txBus.Discard()

	assert.NoError(t, txBus.Flush(ctx))
	time.Sleep(50 * time.Millisecond)
}
