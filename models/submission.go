package models

import (
	"time"
)

// Submission is one scored circle drawing. At most one exists per
// (channel, user, day); the first accepted submission of a day is final.
type Submission struct {
	ID         int64     `db:"id"`
	ChannelID  int64     `db:"channel_id"`
	DiscordID  int64     `db:"discord_id"`
	Day        string    `db:"day"` // calendar date, YYYY-MM-DD, in the channel's timezone
	Score      float64   `db:"score"`
	Area       float64   `db:"area"`      // enclosed area of the scored contour, diagnostic
	Perimeter  float64   `db:"perimeter"` // boundary length of the scored contour, diagnostic
	RecordedAt time.Time `db:"recorded_at"`
}

// LeaderboardEntry is one row of a day's ranked leaderboard.
// Ranks are 1-based and contiguous; ties rank by earlier RecordedAt.
type LeaderboardEntry struct {
	DiscordID  int64
	Score      float64
	Rank       int
	RecordedAt time.Time
}

// SubmissionResult is returned to the submitter after an accepted submission.
type SubmissionResult struct {
	Score float64
	Rank  int
	Day   string
}
