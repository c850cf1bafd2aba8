package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"travelbot/internal/config"
	"travelbot/internal/conversation"
	"travelbot/internal/logger"
	"travelbot/internal/providers"
	"travelbot/internal/scheduler"
	"travelbot/internal/storage"
	"travelbot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("travelbot: %v", err)
	}
}

// delivery late-binds the Telegram transport so the scheduler can be built
// before the bot exists.
type delivery struct {
	bot atomic.Pointer[telegram.Bot]
}

func (d *delivery) deliver(chatID int64, message string) error {
	b := d.bot.Load()
	if b == nil {
		return errors.New("telegram transport not ready")
	}
	return b.Deliver(chatID, message)
}

func run() error {
	// Missing .env is fine; real deployments configure the environment
	// directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			cfgPath = "config.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(&cfg.Logging)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		trips   storage.TripLog
		journal scheduler.Journal
	)
	if cfg.Database.Host != "" {
		db, err := storage.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := storage.RunMigrations(cfg.Database); err != nil {
			return err
		}
		trips = storage.NewPostgresTripLog(db)
		journal = storage.NewPostgresJournal(db)
	} else {
		logger.Warn(ctx, "app", "storage.memory_mode")
		trips = storage.NewMemoryTripLog()
		journal = storage.NewMemoryJournal()
	}

	del := &delivery{}
	sched := scheduler.New(del.deliver, journal)
	defer sched.Stop()

	httpClient := providers.NewHTTPClient(time.Duration(cfg.Providers.TimeoutSeconds) * time.Second)
	flights := providers.NewFlightClient(httpClient, cfg.Providers.SkyscannerURL, cfg.Providers.SkyscannerKey)
	hotels := providers.NewHotelClient(httpClient, cfg.Providers.BookingURL, cfg.Providers.BookingKey)
	routes := providers.NewRouteClient(httpClient, cfg.Providers.GoogleMapsURL, cfg.Providers.GoogleMapsKey)

	engine := conversation.New(conversation.NewMemoryStore(), trips, flights, hotels, routes, sched)

	bot, err := telegram.New(cfg, engine)
	if err != nil {
		return err
	}
	del.bot.Store(bot)

	if restored, err := sched.Restore(ctx); err != nil {
		logger.Warn(ctx, "app", "reminders.restore_failed", slog.String("err", err.Error()))
	} else if restored > 0 {
		logger.Info(ctx, "app", "reminders.restore", slog.Int("count", restored))
	}

	logger.Info(ctx, "app", "ready")
	return bot.Run(ctx)
}
