package service

import (
	"context"
	"time"

	"circler/models"
	"circler/scoring"

	"github.com/stretchr/testify/mock"
)

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) InsertIfAbsent(ctx context.Context, submission *models.Submission) (bool, error) {
	args := m.Called(ctx, submission)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) GetByUserDay(ctx context.Context, channelID, discordID int64, day string) (*models.Submission, error) {
	args := m.Called(ctx, channelID, discordID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) RankedEntries(ctx context.Context, channelID int64, day string) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, channelID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockSubmissionRepository) Rank(ctx context.Context, channelID int64, day string, discordID int64) (int, error) {
	args := m.Called(ctx, channelID, day, discordID)
	return args.Int(0), args.Error(1)
}

// MockChannelSettingsRepository is a mock implementation of ChannelSettingsRepository
type MockChannelSettingsRepository struct {
	mock.Mock
}

func (m *MockChannelSettingsRepository) Get(ctx context.Context, channelID int64) (*models.ChannelSettings, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelSettings), args.Error(1)
}

func (m *MockChannelSettingsRepository) GetOrCreate(ctx context.Context, channelID, guildID int64) (*models.ChannelSettings, error) {
	args := m.Called(ctx, channelID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelSettings), args.Error(1)
}

func (m *MockChannelSettingsRepository) UpdateTimezone(ctx context.Context, channelID int64, timezone string) error {
	args := m.Called(ctx, channelID, timezone)
	return args.Error(0)
}

func (m *MockChannelSettingsRepository) ListConfigured(ctx context.Context) ([]*models.ChannelSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ChannelSettings), args.Error(1)
}

// MockClock is a mock implementation of Clock
type MockClock struct {
	mock.Mock
}

func (m *MockClock) DayKey(timezone string) (string, error) {
	args := m.Called(timezone)
	return args.String(0), args.Error(1)
}

func (m *MockClock) UntilNextMidnight(timezone string) (time.Duration, error) {
	args := m.Called(timezone)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockClock) ValidateTimezone(timezone string) error {
	args := m.Called(timezone)
	return args.Error(0)
}

// MockScorer is a mock implementation of Scorer
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(imageBytes []byte) (*scoring.Result, error) {
	args := m.Called(imageBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Result), args.Error(1)
}
