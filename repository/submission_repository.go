package repository

import (
	"context"
	"fmt"

	"circler/database"
	"circler/models"
	"github.com/jackc/pgx/v5"
)

// SubmissionRepository is the durable store of scored submissions and the
// source of ranked leaderboard reads.
type SubmissionRepository struct {
	db *database.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// InsertIfAbsent records a submission unless one already exists for the
// same (channel, user, day). The insert and the uniqueness check are a
// single statement, so concurrent submissions from the same user cannot
// both be recorded. Returns true if the row was inserted.
func (r *SubmissionRepository) InsertIfAbsent(ctx context.Context, submission *models.Submission) (bool, error) {
	query := `
		INSERT INTO submissions (channel_id, discord_id, day, score, area, perimeter)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT submissions_one_per_day DO NOTHING
		RETURNING id, recorded_at
	`

	err := r.db.QueryRow(ctx, query,
		submission.ChannelID,
		submission.DiscordID,
		submission.Day,
		submission.Score,
		submission.Area,
		submission.Perimeter,
	).Scan(&submission.ID, &submission.RecordedAt)

	if err == pgx.ErrNoRows {
		// Conflict: a submission already exists for this key
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert submission for user %d on %s: %w",
			submission.DiscordID, submission.Day, err)
	}

	return true, nil
}

// GetByUserDay returns a user's submission for a given channel and day,
// or nil if none exists.
func (r *SubmissionRepository) GetByUserDay(ctx context.Context, channelID, discordID int64, day string) (*models.Submission, error) {
	query := `
		SELECT id, channel_id, discord_id, day, score, area, perimeter, recorded_at
		FROM submissions
		WHERE channel_id = $1 AND discord_id = $2 AND day = $3
	`

	var submission models.Submission
	err := r.db.QueryRow(ctx, query, channelID, discordID, day).Scan(
		&submission.ID,
		&submission.ChannelID,
		&submission.DiscordID,
		&submission.Day,
		&submission.Score,
		&submission.Area,
		&submission.Perimeter,
		&submission.RecordedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission for user %d on %s: %w", discordID, day, err)
	}

	return &submission, nil
}

// RankedEntries returns the leaderboard for a channel and day, ordered by
// score descending with ties broken by earlier submission. Ranks are
// 1-based and contiguous. An unknown day yields an empty slice.
func (r *SubmissionRepository) RankedEntries(ctx context.Context, channelID int64, day string) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT discord_id, score, recorded_at,
		       ROW_NUMBER() OVER (ORDER BY score DESC, recorded_at ASC) AS rank
		FROM submissions
		WHERE channel_id = $1 AND day = $2
		ORDER BY score DESC, recorded_at ASC
	`

	rows, err := r.db.Query(ctx, query, channelID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard for %s: %w", day, err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		var rank int64
		if err := rows.Scan(&entry.DiscordID, &entry.Score, &entry.RecordedAt, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = int(rank)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard entries: %w", err)
	}

	return entries, nil
}

// Rank returns a user's 1-based rank within a day's leaderboard.
func (r *SubmissionRepository) Rank(ctx context.Context, channelID int64, day string, discordID int64) (int, error) {
	query := `
		SELECT rank FROM (
			SELECT discord_id,
			       ROW_NUMBER() OVER (ORDER BY score DESC, recorded_at ASC) AS rank
			FROM submissions
			WHERE channel_id = $1 AND day = $2
		) ranked
		WHERE discord_id = $3
	`

	var rank int64
	err := r.db.QueryRow(ctx, query, channelID, day, discordID).Scan(&rank)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("no submission for user %d on %s", discordID, day)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rank for user %d on %s: %w", discordID, day, err)
	}

	return int(rank), nil
}
