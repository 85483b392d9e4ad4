package service

import (
	"context"
	"testing"
	"time"

	"circler/events"
	"circler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeScheduler_Trigger(t *testing.T) {
	settingsRepo := new(MockChannelSettingsRepository)
	settings := NewSettingsService(settingsRepo, NewChallengeClock(), "UTC")
	bus := events.NewBus()

	scheduler := NewChallengeScheduler(settingsRepo, settings, NewChallengeClock(), bus)

	fired := make(chan events.ChallengeDayEvent, 1)
	bus.Subscribe(events.EventTypeChallengeDay, func(ctx context.Context, event events.Event) {
		fired <- event.(events.ChallengeDayEvent)
	})

	ctx := context.Background()
	settingsRepo.On("Get", ctx, int64(100)).Return(settingsWithTimezone(100, "Asia/Tokyo"), nil)

	require.NoError(t, scheduler.Trigger(ctx, 100))

	select {
	case event := <-fired:
		assert.Equal(t, int64(100), event.ChannelID)
		assert.Equal(t, "Asia/Tokyo", event.Timezone)
		assert.True(t, event.Manual)
		assert.NotEmpty(t, event.Day)
	case <-time.After(2 * time.Second):
		t.Fatal("challenge day event was not emitted")
	}
}

func TestChallengeScheduler_Trigger_UnconfiguredChannel(t *testing.T) {
	settingsRepo := new(MockChannelSettingsRepository)
	settings := NewSettingsService(settingsRepo, NewChallengeClock(), "UTC")

	scheduler := NewChallengeScheduler(settingsRepo, settings, NewChallengeClock(), events.NewBus())

	ctx := context.Background()
	settingsRepo.On("Get", ctx, int64(999)).Return(nil, nil)

	err := scheduler.Trigger(ctx, 999)
	assert.ErrorIs(t, err, ErrChannelNotConfigured)
}

func TestChallengeScheduler_StartAndStop(t *testing.T) {
	settingsRepo := new(MockChannelSettingsRepository)
	settings := NewSettingsService(settingsRepo, NewChallengeClock(), "UTC")

	scheduler := NewChallengeScheduler(settingsRepo, settings, NewChallengeClock(), events.NewBus())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settingsRepo.On("ListConfigured", ctx).Return([]*models.ChannelSettings{
		settingsWithTimezone(100, "UTC"),
		settingsWithTimezone(101, "Asia/Tokyo"),
	}, nil)
	settingsRepo.On("Get", ctx, int64(100)).Return(settingsWithTimezone(100, "UTC"), nil)
	settingsRepo.On("Get", ctx, int64(101)).Return(settingsWithTimezone(101, "Asia/Tokyo"), nil)

	stop, err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Stopping twice must not panic: once via stop, once via cancel
	stop()
	cancel()
}

func TestChallengeScheduler_FiresAtMidnightBoundary(t *testing.T) {
	settingsRepo := new(MockChannelSettingsRepository)
	settings := NewSettingsService(settingsRepo, NewChallengeClock(), "UTC")
	clock := new(MockClock)
	bus := events.NewBus()

	scheduler := NewChallengeScheduler(settingsRepo, settings, clock, bus)

	fired := make(chan events.ChallengeDayEvent, 1)
	bus.Subscribe(events.EventTypeChallengeDay, func(ctx context.Context, event events.Event) {
		select {
		case fired <- event.(events.ChallengeDayEvent):
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settingsRepo.On("ListConfigured", ctx).Return([]*models.ChannelSettings{
		settingsWithTimezone(100, "Europe/London"),
	}, nil)
	settingsRepo.On("Get", ctx, int64(100)).Return(settingsWithTimezone(100, "Europe/London"), nil)

	// The first boundary arrives almost immediately; later loops park on
	// a long wait so exactly one fire is observed.
	clock.On("UntilNextMidnight", "Europe/London").Return(5*time.Millisecond, nil).Once()
	clock.On("UntilNextMidnight", "Europe/London").Return(time.Hour, nil)
	clock.On("DayKey", "Europe/London").Return("2024-03-31", nil)

	stop, err := scheduler.Start(ctx)
	require.NoError(t, err)
	defer stop()

	select {
	case event := <-fired:
		assert.Equal(t, int64(100), event.ChannelID)
		assert.Equal(t, "2024-03-31", event.Day)
		assert.Equal(t, "Europe/London", event.Timezone)
		assert.False(t, event.Manual)
	case <-time.After(2 * time.Second):
		t.Fatal("midnight boundary did not fire a challenge day event")
	}
}

func TestChallengeScheduler_WatchIsIdempotent(t *testing.T) {
	settingsRepo := new(MockChannelSettingsRepository)
	settings := NewSettingsService(settingsRepo, NewChallengeClock(), "UTC")

	scheduler := NewChallengeScheduler(settingsRepo, settings, NewChallengeClock(), events.NewBus())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settingsRepo.On("ListConfigured", ctx).Return(nil, nil)
	settingsRepo.On("Get", ctx, int64(200)).Return(settingsWithTimezone(200, "UTC"), nil)

	stop, err := scheduler.Start(ctx)
	require.NoError(t, err)
	defer stop()

	scheduler.Watch(200)
	scheduler.Watch(200)

	scheduler.mu.Lock()
	count := len(scheduler.watches)
	scheduler.mu.Unlock()
	assert.Equal(t, 1, count)

	scheduler.Unwatch(200)

	scheduler.mu.Lock()
	count = len(scheduler.watches)
	scheduler.mu.Unlock()
	assert.Equal(t, 0, count)
}
