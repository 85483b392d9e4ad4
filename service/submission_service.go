package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circler/events"
	"circler/metrics"
	"circler/models"
	"circler/scoring"

	log "github.com/sirupsen/logrus"
)

// ErrAlreadySubmitted indicates the user already has a scored submission
// for the current challenge day in this channel.
var ErrAlreadySubmitted = errors.New("already submitted today")

// submissionService implements the SubmissionService interface
type submissionService struct {
	submissionRepo SubmissionRepository
	scorer         Scorer
	clock          Clock
	eventBus       *events.Bus
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(submissionRepo SubmissionRepository, scorer Scorer, clock Clock, eventBus *events.Bus) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		scorer:         scorer,
		clock:          clock,
		eventBus:       eventBus,
	}
}

// Submit scores an image and records it for the current day. The
// one-submission-per-day rule is enforced twice: a cheap read before
// scoring, and the atomic insert afterwards which is the authority when
// two submissions race.
func (s *submissionService) Submit(ctx context.Context, channelID, discordID int64, imageBytes []byte, timezone string) (*models.SubmissionResult, error) {
	day, err := s.clock.DayKey(timezone)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	existing, err := s.submissionRepo.GetByUserDay(ctx, channelID, discordID, day)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if existing != nil {
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadySubmitted
	}

	started := time.Now()
	result, err := s.scorer.Score(imageBytes)
	metrics.ScoringDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		// Scoring failures never consume the user's daily attempt
		switch {
		case errors.Is(err, scoring.ErrUndecodable):
			metrics.SubmissionsTotal.WithLabelValues("undecodable").Inc()
		case errors.Is(err, scoring.ErrNoShapeFound):
			metrics.SubmissionsTotal.WithLabelValues("no_shape").Inc()
		default:
			metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	submission := &models.Submission{
		ChannelID: channelID,
		DiscordID: discordID,
		Day:       day,
		Score:     float64(result.Score),
		Area:      result.Area,
		Perimeter: result.Perimeter,
	}

	inserted, err := s.submissionRepo.InsertIfAbsent(ctx, submission)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}
	if !inserted {
		// Lost a race against a concurrent submission from the same user
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadySubmitted
	}

	rank, err := s.submissionRepo.Rank(ctx, channelID, day, discordID)
	if err != nil {
		// The submission is recorded; a missing rank only degrades the reply
		log.WithFields(log.Fields{
			"channel_id": channelID,
			"discord_id": discordID,
			"day":        day,
		}).Warnf("Failed to resolve rank after submission: %v", err)
		rank = 0
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"discord_id": discordID,
		"day":        day,
		"score":      result.Score,
		"rank":       rank,
	}).Info("Submission recorded")

	metrics.SubmissionsTotal.WithLabelValues("scored").Inc()

	s.eventBus.Emit(ctx, events.SubmissionRecordedEvent{
		ChannelID: channelID,
		DiscordID: discordID,
		Day:       day,
		Score:     submission.Score,
		Rank:      rank,
	})

	return &models.SubmissionResult{
		Score: submission.Score,
		Rank:  rank,
		Day:   day,
	}, nil
}
