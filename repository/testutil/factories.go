package testutil

import (
	"circler/models"
)

// CreateTestSubmission creates a submission with plausible scoring metrics
func CreateTestSubmission(channelID, discordID int64, day string, score float64) *models.Submission {
	return &models.Submission{
		ChannelID: channelID,
		DiscordID: discordID,
		Day:       day,
		Score:     score,
		Area:      20106.19,
		Perimeter: 502.65,
	}
}

// CreateTestChannelSettings creates channel settings with an explicit timezone
func CreateTestChannelSettings(channelID, guildID int64, timezone string) *models.ChannelSettings {
	return &models.ChannelSettings{
		ChannelID: channelID,
		GuildID:   guildID,
		Timezone:  &timezone,
	}
}
