package repository

import (
	"context"
	"fmt"

	"circler/database"
	"circler/models"
	"github.com/jackc/pgx/v5"
)

// ChannelSettingsRepository stores per-channel challenge configuration.
type ChannelSettingsRepository struct {
	db *database.DB
}

// NewChannelSettingsRepository creates a new channel settings repository
func NewChannelSettingsRepository(db *database.DB) *ChannelSettingsRepository {
	return &ChannelSettingsRepository{db: db}
}

// Get returns the settings for a channel, or nil if the channel has never
// been configured.
func (r *ChannelSettingsRepository) Get(ctx context.Context, channelID int64) (*models.ChannelSettings, error) {
	query := `
		SELECT channel_id, guild_id, timezone, created_at, updated_at
		FROM channel_settings
		WHERE channel_id = $1
	`

	var settings models.ChannelSettings
	err := r.db.QueryRow(ctx, query, channelID).Scan(
		&settings.ChannelID,
		&settings.GuildID,
		&settings.Timezone,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for channel %d: %w", channelID, err)
	}

	return &settings, nil
}

// GetOrCreate returns existing settings for a channel or creates a row
// with no explicit timezone.
func (r *ChannelSettingsRepository) GetOrCreate(ctx context.Context, channelID, guildID int64) (*models.ChannelSettings, error) {
	settings, err := r.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	insertQuery := `
		INSERT INTO channel_settings (channel_id, guild_id, timezone)
		VALUES ($1, $2, NULL)
		ON CONFLICT (channel_id) DO UPDATE SET updated_at = now()
		RETURNING channel_id, guild_id, timezone, created_at, updated_at
	`

	var created models.ChannelSettings
	err = r.db.QueryRow(ctx, insertQuery, channelID, guildID).Scan(
		&created.ChannelID,
		&created.GuildID,
		&created.Timezone,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings for channel %d: %w", channelID, err)
	}

	return &created, nil
}

// UpdateTimezone sets the timezone for a configured channel. Validation
// happens in the service layer before anything is persisted.
func (r *ChannelSettingsRepository) UpdateTimezone(ctx context.Context, channelID int64, timezone string) error {
	query := `
		UPDATE channel_settings
		SET timezone = $2, updated_at = now()
		WHERE channel_id = $1
	`

	result, err := r.db.Exec(ctx, query, channelID, timezone)
	if err != nil {
		return fmt.Errorf("failed to update timezone for channel %d: %w", channelID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("settings for channel %d not found", channelID)
	}

	return nil
}

// ListConfigured returns every configured challenge channel; the
// scheduler starts one timer per row.
func (r *ChannelSettingsRepository) ListConfigured(ctx context.Context) ([]*models.ChannelSettings, error) {
	query := `
		SELECT channel_id, guild_id, timezone, created_at, updated_at
		FROM channel_settings
		ORDER BY channel_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel settings: %w", err)
	}
	defer rows.Close()

	var all []*models.ChannelSettings
	for rows.Next() {
		var settings models.ChannelSettings
		if err := rows.Scan(
			&settings.ChannelID,
			&settings.GuildID,
			&settings.Timezone,
			&settings.CreatedAt,
			&settings.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan channel settings: %w", err)
		}
		all = append(all, &settings)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel settings: %w", err)
	}

	return all, nil
}
