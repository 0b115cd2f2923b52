package main

import (
	"os"
	"os/signal"
	"syscall"

	"ecstasy/internal/config"
	"ecstasy/internal/database"
	"ecstasy/internal/discord"
	"ecstasy/internal/logging"
	"ecstasy/internal/metrics"
	"ecstasy/internal/stats"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repository := database.NewRepository(db)

	// Rehydrate the in-memory store. Starting with an empty store when
	// history exists would silently reset lifetime totals, so load
	// failures are fatal.
	store := stats.NewStore()
	userRows, err := repository.LoadUserStats()
	if err != nil {
		logger.Fatalf("Failed to load user stats: %v", err)
	}
	dailyRows, err := repository.LoadDailyStats()
	if err != nil {
		logger.Fatalf("Failed to load daily stats: %v", err)
	}
	store.Rehydrate(userRows, dailyRows)
	logger.WithField("users", len(userRows)).Info("stats loaded from database")

	tracker := stats.NewVoiceTracker(store, logger.WithField("component", "voice"))
	ingestor := stats.NewIngestor(store, tracker, logger.WithField("component", "ingestor"))
	analytics := stats.NewAnalytics(store)

	flusher := stats.NewFlusher(store, repository, cfg.FlushInterval, logger.WithField("component", "flusher"))
	if err := flusher.Start(); err != nil {
		logger.Fatalf("Failed to start flush scheduler: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logger.WithError(err).Error("metrics listener stopped")
			}
		}()
	}

	// Initialize Discord bot
	bot, err := discord.New(cfg.DiscordToken, ingestor, analytics, cfg.RateLimit, logger.WithField("component", "discord"))
	if err != nil {
		logger.Fatalf("Failed to create Discord bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		logger.Fatalf("Failed to start bot: %v", err)
	}

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("Shutting down bot...")
	if err := bot.Stop(); err != nil {
		logger.WithError(err).Error("failed to close Discord session")
	}

	// Stop the schedule and run the final flush before releasing the
	// database handle.
	flusher.Stop()
}
