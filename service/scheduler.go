package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"circler/events"
	"circler/metrics"

	log "github.com/sirupsen/logrus"
)

// ChallengeScheduler fires a ChallengeDayEvent at local midnight for every
// configured channel. Each channel has its own goroutine and stop handle,
// so channels can be registered or torn down independently and a timezone
// change takes effect at the next loop iteration.
type ChallengeScheduler struct {
	settingsRepo ChannelSettingsRepository
	settings     SettingsService
	clock        Clock
	eventBus     *events.Bus

	mu      sync.Mutex
	watches map[int64]chan struct{}
	ctx     context.Context
}

// NewChallengeScheduler creates a new challenge scheduler
func NewChallengeScheduler(settingsRepo ChannelSettingsRepository, settings SettingsService, clock Clock, eventBus *events.Bus) *ChallengeScheduler {
	return &ChallengeScheduler{
		settingsRepo: settingsRepo,
		settings:     settings,
		clock:        clock,
		eventBus:     eventBus,
		watches:      make(map[int64]chan struct{}),
	}
}

// Start launches a midnight watch for every configured channel and returns
// a stop function that tears all of them down.
func (s *ChallengeScheduler) Start(ctx context.Context) (func(), error) {
	channels, err := s.settingsRepo.ListConfigured(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list configured channels: %w", err)
	}

	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	for _, settings := range channels {
		s.Watch(settings.ChannelID)
	}

	log.Infof("Challenge scheduler started with %d channels", len(channels))

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for channelID, stopChan := range s.watches {
			close(stopChan)
			delete(s.watches, channelID)
		}
	}, nil
}

// Watch registers a midnight watch for one channel. Watching an already
// watched channel is a no-op, so a freshly enabled channel can always be
// handed to the running scheduler.
func (s *ChallengeScheduler) Watch(channelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		log.Warnf("Scheduler not started, ignoring watch for channel %d", channelID)
		return
	}
	if _, ok := s.watches[channelID]; ok {
		return
	}

	stopChan := make(chan struct{})
	s.watches[channelID] = stopChan
	go s.run(s.ctx, channelID, stopChan)
}

// Unwatch stops the midnight watch for one channel.
func (s *ChallengeScheduler) Unwatch(channelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stopChan, ok := s.watches[channelID]; ok {
		close(stopChan)
		delete(s.watches, channelID)
	}
}

// Trigger fires a challenge day event for a channel immediately without
// touching its midnight timer.
func (s *ChallengeScheduler) Trigger(ctx context.Context, channelID int64) error {
	timezone, err := s.settings.Timezone(ctx, channelID)
	if err != nil {
		return err
	}

	day, err := s.clock.DayKey(timezone)
	if err != nil {
		return err
	}

	s.emit(ctx, channelID, day, timezone, true)
	return nil
}

// run is the per-channel midnight loop. The timezone is re-read on every
// iteration so a /timezone change reschedules the next boundary without a
// restart. A boundary that passes while the process is down is never
// back-fired; the loop always waits for the next one.
func (s *ChallengeScheduler) run(ctx context.Context, channelID int64, stopChan chan struct{}) {
	log.Infof("Midnight watch started for channel %d", channelID)

	for {
		timezone, err := s.settings.Timezone(ctx, channelID)
		if err != nil {
			log.Errorf("Failed to resolve timezone for channel %d: %v", channelID, err)
			select {
			case <-ctx.Done():
				return
			case <-stopChan:
				return
			case <-time.After(time.Minute):
				continue
			}
		}

		wait, err := s.clock.UntilNextMidnight(timezone)
		if err != nil {
			log.Errorf("Failed to compute next midnight for channel %d: %v", channelID, err)
			select {
			case <-ctx.Done():
				return
			case <-stopChan:
				return
			case <-time.After(time.Minute):
				continue
			}
		}

		log.WithFields(log.Fields{
			"channel_id": channelID,
			"timezone":   timezone,
			"wait":       wait,
		}).Debug("Waiting for next midnight")

		select {
		case <-ctx.Done():
			log.Infof("Midnight watch for channel %d shutting down (context cancelled)", channelID)
			return
		case <-stopChan:
			log.Infof("Midnight watch for channel %d shutting down (stop requested)", channelID)
			return
		case <-time.After(wait):
		}

		day, err := s.clock.DayKey(timezone)
		if err != nil {
			log.Errorf("Failed to resolve day key for channel %d: %v", channelID, err)
			continue
		}

		s.emit(ctx, channelID, day, timezone, false)
	}
}

func (s *ChallengeScheduler) emit(ctx context.Context, channelID int64, day, timezone string, manual bool) {
	log.WithFields(log.Fields{
		"channel_id": channelID,
		"day":        day,
		"timezone":   timezone,
		"manual":     manual,
	}).Info("Challenge day fired")

	metrics.ChallengesFiredTotal.Inc()

	s.eventBus.Emit(ctx, events.ChallengeDayEvent{
		ChannelID: channelID,
		Day:       day,
		Timezone:  timezone,
		Manual:    manual,
	})
}
