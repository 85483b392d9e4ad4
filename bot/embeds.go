package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"circler/events"
	"circler/models"
)

// leaderboardRow pairs a ranked entry with its resolved display name.
type leaderboardRow struct {
	Rank        int
	DisplayName string
	Score       float64
}

func toRows(s *discordgo.Session, guildID string, entries []*models.LeaderboardEntry) []*leaderboardRow {
	rows := make([]*leaderboardRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, &leaderboardRow{
			Rank:        entry.Rank,
			DisplayName: GetDisplayNameInt64(s, guildID, entry.DiscordID),
			Score:       entry.Score,
		})
	}
	return rows
}

// buildLeaderboardEmbed renders a day's ranked submissions as a table.
func buildLeaderboardEmbed(day string, rows []*leaderboardRow) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⭕ Circle Challenge — %s", day),
		Color: 0x5865f2,
	}

	if len(rows) == 0 {
		embed.Description = "No submissions yet. Draw a circle and post it here!"
		return embed
	}

	var table strings.Builder
	table.WriteString("```\n")
	table.WriteString(fmt.Sprintf("%-4s %-20s %s\n", "Rank", "Player", "Score"))
	table.WriteString(strings.Repeat("-", 34) + "\n")

	for _, row := range rows {
		rankStr := fmt.Sprintf("#%d", row.Rank)
		switch row.Rank {
		case 1:
			rankStr = "🥇"
		case 2:
			rankStr = "🥈"
		case 3:
			rankStr = "🥉"
		}

		name := truncateName(row.DisplayName, 18)

		table.WriteString(fmt.Sprintf("%-4s %-20s %s\n", rankStr, name, FormatScore(row.Score)))
	}

	table.WriteString("```")
	embed.Description = table.String()
	return embed
}

// truncateName shortens a display name for the table, cutting on rune
// boundaries so multi-byte names never render as mojibake.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-3]) + "..."
}

// buildResultEmbed renders an accepted submission's score and rank.
func buildResultEmbed(displayName string, result *models.SubmissionResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "⭕ Circle scored!",
		Color: scoreColor(result.Score),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Player", Value: displayName, Inline: true},
			{Name: "Score", Value: FormatScore(result.Score) + " / 100", Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Challenge day " + result.Day,
		},
	}

	if result.Rank > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Rank", Value: fmt.Sprintf("#%d today", result.Rank), Inline: true,
		})
	}

	return embed
}

// scoreColor maps a score to a traffic-light embed color.
func scoreColor(score float64) int {
	switch {
	case score >= 90:
		return 0x57f287
	case score >= 70:
		return 0xfee75c
	default:
		return 0xed4245
	}
}

// postChallengeAnnouncement posts the daily challenge message when a new
// challenge day fires.
func (b *Bot) postChallengeAnnouncement(event events.ChallengeDayEvent) {
	loc, err := time.LoadLocation(event.Timezone)
	if err != nil {
		log.Errorf("Cannot announce challenge for channel %d, bad timezone %q: %v", event.ChannelID, event.Timezone, err)
		return
	}

	dayStart, err := time.ParseInLocation("2006-01-02", event.Day, loc)
	if err != nil {
		log.Errorf("Cannot parse challenge day %q: %v", event.Day, err)
		return
	}
	deadline := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day()+1, 0, 0, 0, 0, loc)

	embed := &discordgo.MessageEmbed{
		Title:       "🎯 Daily Circle Challenge — " + event.Day,
		Description: "Draw the roundest freehand circle you can and post the image in this channel. One scored attempt per person per day, so make it count!",
		Color:       0x5865f2,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Deadline",
				Value:  fmt.Sprintf("%s (midnight, %s)", FormatDiscordTimestamp(deadline, "F"), event.Timezone),
				Inline: false,
			},
			{
				Name:   "Scoring",
				Value:  "Your drawing is scored 0-100 on how close its shape is to a perfect circle.",
				Inline: false,
			},
		},
	}

	channelID := strconv.FormatInt(event.ChannelID, 10)
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Errorf("Failed to post challenge announcement to channel %s: %v", channelID, err)
	}
}
