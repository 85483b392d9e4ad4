package service

import (
	"context"
	"time"

	"circler/models"
	"circler/scoring"
)

// Clock defines the interface for day-key and midnight-boundary resolution
type Clock interface {
	// DayKey returns the current challenge day key in a timezone
	DayKey(timezone string) (string, error)

	// UntilNextMidnight returns the duration until the next local midnight
	UntilNextMidnight(timezone string) (time.Duration, error)

	// ValidateTimezone reports whether the tz database knows the name
	ValidateTimezone(timezone string) error
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	// InsertIfAbsent records a submission unless one exists for the same
	// (channel, user, day). Returns true if the row was inserted.
	InsertIfAbsent(ctx context.Context, submission *models.Submission) (bool, error)

	// GetByUserDay returns a user's submission for a day, or nil if none
	GetByUserDay(ctx context.Context, channelID, discordID int64, day string) (*models.Submission, error)

	// RankedEntries returns the ordered leaderboard for a channel and day
	RankedEntries(ctx context.Context, channelID int64, day string) ([]*models.LeaderboardEntry, error)

	// Rank returns a user's 1-based rank within a day's leaderboard
	Rank(ctx context.Context, channelID int64, day string, discordID int64) (int, error)
}

// ChannelSettingsRepository defines the interface for channel settings access
type ChannelSettingsRepository interface {
	// Get returns a channel's settings, or nil if never configured
	Get(ctx context.Context, channelID int64) (*models.ChannelSettings, error)

	// GetOrCreate returns existing settings or creates a default row
	GetOrCreate(ctx context.Context, channelID, guildID int64) (*models.ChannelSettings, error)

	// UpdateTimezone sets the timezone for a configured channel
	UpdateTimezone(ctx context.Context, channelID int64, timezone string) error

	// ListConfigured returns every configured challenge channel
	ListConfigured(ctx context.Context) ([]*models.ChannelSettings, error)
}

// Scorer defines the interface for circularity scoring
type Scorer interface {
	// Score analyzes image bytes and returns the circularity result
	Score(imageBytes []byte) (*scoring.Result, error)
}

// SubmissionService defines the interface for submission handling
type SubmissionService interface {
	// Submit scores an image and records it as the user's submission for
	// the current challenge day in the channel's timezone
	Submit(ctx context.Context, channelID, discordID int64, imageBytes []byte, timezone string) (*models.SubmissionResult, error)
}

// LeaderboardService defines the interface for leaderboard reads
type LeaderboardService interface {
	// Today returns the current day's leaderboard for a channel
	Today(ctx context.Context, channelID int64) ([]*models.LeaderboardEntry, string, error)

	// ForDay returns the leaderboard for an explicit day key
	ForDay(ctx context.Context, channelID int64, day string) ([]*models.LeaderboardEntry, error)
}

// SettingsService defines the interface for channel challenge configuration
type SettingsService interface {
	// Enable configures a channel for daily challenges
	Enable(ctx context.Context, channelID, guildID int64) (*models.ChannelSettings, error)

	// SetTimezone validates and stores a channel's timezone
	SetTimezone(ctx context.Context, channelID int64, timezone string) error

	// Timezone resolves a channel's effective timezone, falling back to
	// the configured default when the channel has none
	Timezone(ctx context.Context, channelID int64) (string, error)
}
