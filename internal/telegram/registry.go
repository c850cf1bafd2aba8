// Package telegram bridges Telegram updates into the conversation engine and
// owns the bot lifecycle.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	tele "gopkg.in/telebot.v4"

	"travelbot/internal/logger"
)

// Command represents a bot command with its handler and menu description.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
}

// Registry holds bot commands and callback handlers.
type Registry struct {
	commands         map[string]Command
	callbacks        map[string]tele.HandlerFunc
	callbacksMu      sync.RWMutex
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry with default fallbacks.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// RegisterCommand adds a new command. Names must carry the slash prefix.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	if r == nil || name == "" || name[0] != '/' || cmd.Handler == nil {
		logger.Warn(context.Background(), "tg.wire", "register.command.skip",
			slog.String("name", name),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(context.Background(), "tg.wire", "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]Command {
	return r.commands
}

// ListCommands returns the visible commands as tele.Command entries.
func (r *Registry) ListCommands() []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if meta.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback adds a callback handler mapped to its key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback safely returns handler by key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns sorted callback keys for diagnostics.
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetTextFallback sets a global fallback handler for text outside an active
// conversation.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// CallbackNotFound returns the fallback handler for unknown callbacks.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}
