package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"circler/events"
	"circler/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config             Config
	session            *discordgo.Session
	submissionService  service.SubmissionService
	leaderboardService service.LeaderboardService
	settingsService    service.SettingsService
	scheduler          *service.ChallengeScheduler
	eventBus           *events.Bus
}

func New(config Config, submissionService service.SubmissionService, leaderboardService service.LeaderboardService, settingsService service.SettingsService, scheduler *service.ChallengeScheduler, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	bot := &Bot{
		config:             config,
		session:            dg,
		submissionService:  submissionService,
		leaderboardService: leaderboardService,
		settingsService:    settingsService,
		scheduler:          scheduler,
		eventBus:           eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Image submissions arrive as plain messages with attachments
	dg.AddHandler(bot.handleMessageCreate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// A new challenge day means a fresh announcement in the channel
	eventBus.Subscribe(events.EventTypeChallengeDay, func(ctx context.Context, event events.Event) {
		if dayEvent, ok := event.(events.ChallengeDayEvent); ok {
			bot.postChallengeAnnouncement(dayEvent)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "set",
			Description: "Enable daily circle challenges in a channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to enable (defaults to this one)",
					Required:    false,
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the circle challenge leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "date",
					Description: "Challenge day to show (YYYY-MM-DD, defaults to today)",
					Required:    false,
				},
			},
		},
		{
			Name:        "challenge",
			Description: "Post today's challenge announcement now",
		},
		{
			Name:        "timezone",
			Description: "Set or view the timezone for this channel's daily challenges",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "zone",
					Description: "IANA timezone name, e.g. Europe/London",
					Required:    false,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "set":
		b.handleSet(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "challenge":
		b.handleChallenge(s, i)
	case "timezone":
		b.handleTimezone(s, i)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending error response: %v", err)
	}
}
