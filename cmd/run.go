package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"circler/bot"
	"circler/config"
	"circler/database"
	"circler/events"
	"circler/metrics"
	"circler/repository"
	"circler/scoring"
	"circler/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting circler bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories
	submissionRepo := repository.NewSubmissionRepository(db)
	settingsRepo := repository.NewChannelSettingsRepository(db)

	// Initialize services
	log.Println("Initializing services...")
	clock := service.NewChallengeClock()
	engine := scoring.NewEngine()
	settingsService := service.NewSettingsService(settingsRepo, clock, cfg.DefaultTimezone)
	submissionService := service.NewSubmissionService(submissionRepo, engine, clock, eventBus)
	leaderboardService := service.NewLeaderboardService(submissionRepo, settingsService, clock)
	scheduler := service.NewChallengeScheduler(settingsRepo, settingsService, clock, eventBus)
	log.Println("Services initialized successfully")

	// Start metrics endpoint when configured
	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr)
	}

	// Start per-channel midnight watches before the bot accepts commands
	stopScheduler, err := scheduler.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start challenge scheduler: %w", err)
	}

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, submissionService, leaderboardService, settingsService, scheduler, eventBus)
	if err != nil {
		stopScheduler()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	stopScheduler()

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
