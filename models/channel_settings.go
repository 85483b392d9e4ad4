package models

import (
	"time"
)

// ChannelSettings holds per-channel challenge configuration.
// Timezone is nil until an admin sets one; callers fall back to the
// process-wide default.
type ChannelSettings struct {
	ChannelID int64     `db:"channel_id"`
	GuildID   int64     `db:"guild_id"`
	Timezone  *string   `db:"timezone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasTimezone reports whether an explicit timezone is configured.
func (s *ChannelSettings) HasTimezone() bool {
	return s.Timezone != nil && *s.Timezone != ""
}
