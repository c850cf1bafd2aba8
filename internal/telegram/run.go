package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"travelbot/internal/config"
	"travelbot/internal/conversation"
	"travelbot/internal/logger"
	"travelbot/internal/providers"
)

// Bot owns the telebot instance and its routing.
type Bot struct {
	bot    *tele.Bot
	reg    *Registry
	engine *conversation.Engine
}

// New builds the bot, wires all routes, and leaves it ready to Run.
func New(cfg *config.Config, engine *conversation.Engine) (*Bot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: buildPoller(cfg),
		Client: providers.NewHTTPClient(30 * time.Second),
	}

	start := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	reg := NewRegistry()
	registerHandlers(reg, engine)

	for name, cmd := range reg.Commands() {
		handler := cmd.Handler
		bot.Handle(name, LoggerMiddleware(strings.TrimPrefix(name, "/"), RecoverMiddleware(handler)))
	}
	bot.Handle(tele.OnText, LoggerMiddleware("text", RecoverMiddleware(textHandler(reg, engine))))
	bot.Handle(tele.OnCallback, LoggerMiddleware("callback", RecoverMiddleware(callbackHandler(reg))))

	if err := bot.SetCommands(reg.ListCommands()); err != nil {
		logger.Warn(context.Background(), "tg.wire", "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)

	return &Bot{bot: bot, reg: reg, engine: engine}, nil
}

func buildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}

// Deliver sends a reminder message to the chat. Used as the scheduler's
// delivery callback.
func (b *Bot) Deliver(chatID int64, message string) error {
	_, err := b.bot.Send(&tele.User{ID: chatID}, "Reminder: "+message)
	return err
}

// Run starts the update loop and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	runDone := make(chan struct{})
	go func() {
		b.bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		b.bot.Stop()
		<-runDone
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-runDone:
		return nil
	}
}
