package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func commandInteraction(channelID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ChannelID: channelID,
			Type:      discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Options: options,
			},
		},
	}
}

func TestTargetChannelID(t *testing.T) {
	t.Run("defaults to the invoking channel", func(t *testing.T) {
		i := commandInteraction("111")
		assert.Equal(t, "111", targetChannelID(i))
	})

	t.Run("explicit channel option wins", func(t *testing.T) {
		i := commandInteraction("111", &discordgo.ApplicationCommandInteractionDataOption{
			Name:  "channel",
			Type:  discordgo.ApplicationCommandOptionChannel,
			Value: "222",
		})
		assert.Equal(t, "222", targetChannelID(i))
	})

	t.Run("unrelated options are ignored", func(t *testing.T) {
		i := commandInteraction("111", &discordgo.ApplicationCommandInteractionDataOption{
			Name:  "zone",
			Type:  discordgo.ApplicationCommandOptionString,
			Value: "Europe/London",
		})
		assert.Equal(t, "111", targetChannelID(i))
	})
}

func TestStringOption(t *testing.T) {
	t.Run("returns the value when present", func(t *testing.T) {
		i := commandInteraction("111", &discordgo.ApplicationCommandInteractionDataOption{
			Name:  "zone",
			Type:  discordgo.ApplicationCommandOptionString,
			Value: "Asia/Tokyo",
		})
		assert.Equal(t, "Asia/Tokyo", stringOption(i, "zone"))
	})

	t.Run("empty when omitted, selecting view mode", func(t *testing.T) {
		i := commandInteraction("111")
		assert.Equal(t, "", stringOption(i, "zone"))
	})
}
