package service

import (
	"context"
	"errors"
	"fmt"

	"circler/models"

	log "github.com/sirupsen/logrus"
)

// ErrChannelNotConfigured indicates an operation on a channel that has
// never been enabled for daily challenges.
var ErrChannelNotConfigured = errors.New("channel not configured for challenges")

// settingsService implements the SettingsService interface
type settingsService struct {
	settingsRepo    ChannelSettingsRepository
	clock           Clock
	defaultTimezone string
}

// NewSettingsService creates a new settings service. defaultTimezone is
// used for channels that have no explicit timezone; it is validated at
// config load time.
func NewSettingsService(settingsRepo ChannelSettingsRepository, clock Clock, defaultTimezone string) SettingsService {
	return &settingsService{
		settingsRepo:    settingsRepo,
		clock:           clock,
		defaultTimezone: defaultTimezone,
	}
}

// Enable configures a channel for daily challenges. Enabling an already
// configured channel is a no-op that returns the existing settings.
func (s *settingsService) Enable(ctx context.Context, channelID, guildID int64) (*models.ChannelSettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, channelID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to enable channel %d: %w", channelID, err)
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"guild_id":   guildID,
	}).Info("Channel enabled for daily challenges")

	return settings, nil
}

// SetTimezone validates the zone name against the tz database before
// anything is persisted, so a bad name never reaches storage.
func (s *settingsService) SetTimezone(ctx context.Context, channelID int64, timezone string) error {
	if err := s.clock.ValidateTimezone(timezone); err != nil {
		return err
	}

	settings, err := s.settingsRepo.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to load settings for channel %d: %w", channelID, err)
	}
	if settings == nil {
		return ErrChannelNotConfigured
	}

	if err := s.settingsRepo.UpdateTimezone(ctx, channelID, timezone); err != nil {
		return fmt.Errorf("failed to set timezone for channel %d: %w", channelID, err)
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"timezone":   timezone,
	}).Info("Channel timezone updated")

	return nil
}

// Timezone resolves a channel's effective timezone. Channels without an
// explicit zone use the configured default.
func (s *settingsService) Timezone(ctx context.Context, channelID int64) (string, error) {
	settings, err := s.settingsRepo.Get(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("failed to load settings for channel %d: %w", channelID, err)
	}
	if settings == nil {
		return "", ErrChannelNotConfigured
	}

	if settings.HasTimezone() {
		return *settings.Timezone, nil
	}
	return s.defaultTimezone, nil
}
