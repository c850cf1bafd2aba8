package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"travelbot/internal/logger"
)

const contextKey = "logger_ctx"

// storeContext attaches a reusable context to tele.Context for downstream use.
func storeContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// buildContext constructs a context.Context from tele.Context, enriched with
// the correlation id and update metadata for consistent logging.
func buildContext(c tele.Context) context.Context {
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}

	upd := c.Update()
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := context.Background()
	ctx = logger.WithRID(ctx, rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	storeContext(c, ctx)
	return ctx
}

// RecoverMiddleware catches panics in handlers and prevents the bot from
// crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(buildContext(c), "tg", "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}

// LoggerMiddleware sets the correlation id and logs one summary line per
// handled update.
func LoggerMiddleware(name string, next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		if user := c.Sender(); user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.WithUpdateMeta(context.Background(), upd.ID, userID, chatID), rid)
		ctx = logger.WithHandler(ctx, name)
		storeContext(c, ctx)

		err := next(c)

		attrs := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.Int("update_id", upd.ID),
			slog.Int64("chat_id", chatID),
			slog.Int64("user_id", userID),
			slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
		}
		if payload := payloadFor(c); payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
		if err != nil {
			attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		}
		logger.Info(ctx, "tg", "handler.handled", attrs...)
		return err
	}
}

func payloadFor(c tele.Context) string {
	if cb := c.Callback(); cb != nil {
		key, payload := parseCallback(cb)
		if payload != "" {
			return key + "|" + payload
		}
		return key
	}
	return c.Text()
}

// parseCallback parses Telebot's \f<unique>|<payload> callback encoding.
func parseCallback(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}
