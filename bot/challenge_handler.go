package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"circler/service"
)

var dayKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// isAdmin reports whether the invoking member can manage the channel.
func isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionManageChannels != 0 ||
		i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// stringOption returns the named string option's value, or "" when the
// option was omitted.
func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// targetChannelID resolves the channel a command acts on: the channel
// option when given, otherwise the invoking channel.
func targetChannelID(i *discordgo.InteractionCreate) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "channel" && opt.Type == discordgo.ApplicationCommandOptionChannel {
			return opt.ChannelValue(nil).ID
		}
	}
	return i.ChannelID
}

// handleSet enables daily challenges in the targeted channel
func (b *Bot) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if !isAdmin(i) {
		b.respondWithError(s, i, "You need channel management permission to enable challenges.")
		return
	}

	target := targetChannelID(i)
	channelID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", target, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		log.Printf("Error parsing guild ID %s: %v", i.GuildID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if _, err := b.settingsService.Enable(ctx, channelID, guildID); err != nil {
		log.Printf("Error enabling channel %d: %v", channelID, err)
		b.respondWithError(s, i, "Unable to enable challenges here. Please try again.")
		return
	}

	// Hand the channel to the running scheduler right away
	b.scheduler.Watch(channelID)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🎯 Daily circle challenges are now enabled in <#%s>! Post an image of your best freehand circle there to enter.", target),
		},
	})
	if err != nil {
		log.Printf("Error responding to set command: %v", err)
	}
}

// handleTimezone sets or shows the channel's challenge timezone
func (b *Bot) handleTimezone(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if !isAdmin(i) {
		b.respondWithError(s, i, "You need channel management permission to manage the timezone.")
		return
	}

	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	zone := stringOption(i, "zone")

	// No zone given means show the current one
	if zone == "" {
		current, err := b.settingsService.Timezone(ctx, channelID)
		if err != nil {
			if errors.Is(err, service.ErrChannelNotConfigured) {
				b.respondWithError(s, i, "This channel isn't set up for challenges yet. Run `/set` first.")
			} else {
				log.Printf("Error resolving timezone for channel %d: %v", channelID, err)
				b.respondWithError(s, i, "Unable to look up the timezone. Please try again.")
			}
			return
		}

		err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "🌍 Challenge timezone is set to **" + current + "**.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.Printf("Error responding to timezone command: %v", err)
		}
		return
	}

	if err := b.settingsService.SetTimezone(ctx, channelID, zone); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownTimezone):
			b.respondWithError(s, i, "I don't recognize that timezone. Use an IANA name like `Europe/London` or `America/New_York`.")
		case errors.Is(err, service.ErrChannelNotConfigured):
			b.respondWithError(s, i, "This channel isn't set up for challenges yet. Run `/set` first.")
		default:
			log.Printf("Error setting timezone for channel %d: %v", channelID, err)
			b.respondWithError(s, i, "Unable to update the timezone. Please try again.")
		}
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "🕛 Timezone updated to **" + zone + "**. The next challenge fires at midnight in that zone.",
		},
	})
	if err != nil {
		log.Printf("Error responding to timezone command: %v", err)
	}
}

// handleChallenge fires a challenge announcement immediately
func (b *Bot) handleChallenge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if !isAdmin(i) {
		b.respondWithError(s, i, "You need channel management permission to trigger a challenge.")
		return
	}

	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := b.scheduler.Trigger(ctx, channelID); err != nil {
		if errors.Is(err, service.ErrChannelNotConfigured) {
			b.respondWithError(s, i, "This channel isn't set up for challenges yet. Run `/set` first.")
		} else {
			log.Printf("Error triggering challenge for channel %d: %v", channelID, err)
			b.respondWithError(s, i, "Unable to trigger the challenge. Please try again.")
		}
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "📣 Challenge announcement on its way!",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to challenge command: %v", err)
	}
}

// handleLeaderboard shows the ranked submissions for a day
func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	requestedDay := stringOption(i, "date")

	var (
		entries []*leaderboardRow
		day     string
	)
	if requestedDay != "" {
		if !dayKeyPattern.MatchString(requestedDay) {
			b.respondWithError(s, i, "Dates look like `2024-06-01`.")
			return
		}
		raw, err := b.leaderboardService.ForDay(ctx, channelID, requestedDay)
		if err != nil {
			log.Printf("Error loading leaderboard for channel %d day %s: %v", channelID, requestedDay, err)
			b.respondWithError(s, i, "Unable to load the leaderboard. Please try again.")
			return
		}
		entries, day = toRows(s, i.GuildID, raw), requestedDay
	} else {
		raw, resolvedDay, err := b.leaderboardService.Today(ctx, channelID)
		if err != nil {
			if errors.Is(err, service.ErrChannelNotConfigured) {
				b.respondWithError(s, i, "This channel isn't set up for challenges yet. Run `/set` first.")
				return
			}
			log.Printf("Error loading today's leaderboard for channel %d: %v", channelID, err)
			b.respondWithError(s, i, "Unable to load the leaderboard. Please try again.")
			return
		}
		entries, day = toRows(s, i.GuildID, raw), resolvedDay
	}

	embed := buildLeaderboardEmbed(day, entries)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Error responding to leaderboard command: %v", err)
	}
}
