package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"travelbot/internal/config"
)

var (
	initOnce sync.Once
	levelVar slog.LevelVar

	// L is the base logger shared across packages.
	L *slog.Logger = slog.Default()
)

// Init configures the global structured logger. It may be called only once;
// subsequent calls are no-ops.
func Init(cfg *config.LoggingConfig) {
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))

		opts := &slog.HandlerOptions{Level: &levelVar}
		var handler slog.Handler
		if selectFormat(cfg) == "kv" {
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		}

		L = slog.New(handler)
		slog.SetDefault(L)
	})
}

func selectLevel(cfg *config.LoggingConfig) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectFormat(cfg *config.LoggingConfig) string {
	if cfg == nil {
		return "json"
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "kv", "text", "pretty":
		return "kv"
	case "json":
		return "json"
	}
	// Prefer human-friendly format when profile indicates debug/dev mode.
	if strings.EqualFold(cfg.Profile, "debug") || strings.EqualFold(cfg.Profile, "dev") {
		return "kv"
	}
	return "json"
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	base := L
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return base
	}
	return base.With("component", trimmed)
}

// Event logs an event for the given component, enriching attributes with
// correlation metadata carried by the context.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := FromContext(ctx)
	if strings.TrimSpace(component) != "" {
		logg = logg.With("component", strings.TrimSpace(component))
	}
	all := make([]slog.Attr, 0, len(attrs)+5)
	if event != "" {
		all = append(all, slog.String("event", event))
	}
	if rid := RIDFrom(ctx); rid != "" {
		all = append(all, slog.String("rid", rid))
	}
	if handler := HandlerFrom(ctx); handler != "" {
		all = append(all, slog.String("handler", handler))
	}
	all = append(all, attrs...)
	logg.LogAttrs(ctx, level, "", all...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// Status maps error to a unified status string for logs.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RoundMS rounds duration to the nearest millisecond for consistent logging.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Sanitize trims control runes from s to keep logs clean.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	b := strings.Builder{}
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeLimit applies Sanitize and limits the output length in runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	r := []rune(cleaned)
	if len(r) <= max {
		return cleaned
	}
	return string(r[:max])
}
