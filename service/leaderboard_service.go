package service

import (
	"context"
	"fmt"

	"circler/models"
)

// leaderboardService implements the LeaderboardService interface
type leaderboardService struct {
	submissionRepo SubmissionRepository
	settings       SettingsService
	clock          Clock
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(submissionRepo SubmissionRepository, settings SettingsService, clock Clock) LeaderboardService {
	return &leaderboardService{
		submissionRepo: submissionRepo,
		settings:       settings,
		clock:          clock,
	}
}

// Today returns the current day's leaderboard along with the day key it
// resolved, so callers can display which challenge day they are seeing.
func (s *leaderboardService) Today(ctx context.Context, channelID int64) ([]*models.LeaderboardEntry, string, error) {
	timezone, err := s.settings.Timezone(ctx, channelID)
	if err != nil {
		return nil, "", err
	}

	day, err := s.clock.DayKey(timezone)
	if err != nil {
		return nil, "", err
	}

	entries, err := s.submissionRepo.RankedEntries(ctx, channelID, day)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load leaderboard for %s: %w", day, err)
	}

	return entries, day, nil
}

// ForDay returns the leaderboard for an explicit day key. Past days stay
// readable forever; an unknown day is simply empty.
func (s *leaderboardService) ForDay(ctx context.Context, channelID int64, day string) ([]*models.LeaderboardEntry, error) {
	entries, err := s.submissionRepo.RankedEntries(ctx, channelID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard for %s: %w", day, err)
	}
	return entries, nil
}
