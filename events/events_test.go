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
	var received []ChallengeDayEvent
	done := make(chan struct{})

	bus.Subscribe(EventTypeChallengeDay, func(ctx context.Context, event Event) {
		mu.Lock()
		received = append(received, event.(ChallengeDayEvent))
		mu.Unlock()
		close(done)
	})

	bus.Emit(ctx, ChallengeDayEvent{ChannelID: 42, Day: "2024-03-31", Timezone: "Europe/London"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 1)
	assert.Equal(t, int64(42), received[0].ChannelID)
	assert.Equal(t, "2024-03-31", received[0].Day)
}

func TestBus_EmitWithoutHandlers(t *testing.T) {
	bus := NewBus()

	// Emitting with no subscribers must not panic or block
	bus.Emit(context.Background(), SubmissionRecordedEvent{ChannelID: 1, DiscordID: 2, Day: "2024-01-01", Score: 90})
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})

	bus.Subscribe(EventTypeChallengeDay, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeChallengeDay, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), ChallengeDayEvent{ChannelID: 1, Day: "2024-01-01"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handler was not invoked after first panicked")
	}
}
