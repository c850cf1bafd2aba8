package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"travelbot/internal/logger"
	"travelbot/internal/providers"
	"travelbot/internal/scheduler"
	"travelbot/internal/storage"
)

// Menu actions, matching the callback keys of the main menu.
const (
	ActionFlight = "flight"
	ActionHotel  = "hotel"
	ActionRoute  = "route"
	ActionRemind = "remind"
)

// Format prompts shown after a menu selection.
const (
	PromptFlight = "Enter: ORIGIN DESTINATION DATE(YYYY-MM-DD)"
	PromptHotel  = "Enter: CITY CHECKIN CHECKOUT(YYYY-MM-DD)"
	PromptRoute  = "Enter cities separated by spaces: START CITY1 CITY2 ..."
	PromptRemind = "Enter: YYYY-MM-DD_HH:MM MESSAGE"
)

// Fixed user-facing error messages. Any parse failure resets the chat to
// idle and replies with the action's message instead of re-prompting.
const (
	MsgFlightFormat   = "Error. Format: ORIGIN DESTINATION DATE"
	MsgHotelFormat    = "Error. Format: CITY CHECKIN CHECKOUT"
	MsgRouteTooFew    = "Need at least 2 cities"
	MsgRouteFailed    = "Error building the route"
	MsgRemindFormat   = "Error. Format: YYYY-MM-DD_HH:MM MESSAGE"
	MsgRemindPast     = "The reminder time is already in the past"
	MsgUnavailable    = "Service is unavailable, try again later"
	MsgChooseAction   = "Hi! I am your travel assistant ✈️\nChoose an action:"
	MsgUnknownAction  = "Unsupported action"
	MsgNothingPending = "Choose an action:"
)

// Reply is what the transport layer sends back to the chat. ShowMenu asks it
// to re-attach the main menu keyboard.
type Reply struct {
	Text     string
	ShowMenu bool
}

// FlightSearcher searches flight quotes.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, origin, destination, date string) ([]string, error)
}

// HotelSearcher searches hotel offers.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, city, checkIn, checkOut string) ([]string, error)
}

// RoutePlanner builds leg-by-leg directions for an ordered city list.
type RoutePlanner interface {
	PlanRoute(ctx context.Context, cities []string) ([]string, error)
}

// ReminderScheduler arms a future reminder delivery.
type ReminderScheduler interface {
	Schedule(ctx context.Context, chatID int64, message string, fireAt time.Time) (scheduler.Reminder, error)
}

// Engine is the conversation state machine. It owns no transport: the
// Telegram layer translates updates into Choose/Input calls and sends the
// returned replies.
type Engine struct {
	store     Store
	trips     storage.TripLog
	flights   FlightSearcher
	hotels    HotelSearcher
	routes    RoutePlanner
	reminders ReminderScheduler
	now       func() time.Time
}

// New wires an Engine from its collaborators.
func New(store Store, trips storage.TripLog, flights FlightSearcher, hotels HotelSearcher, routes RoutePlanner, reminders ReminderScheduler) *Engine {
	return &Engine{
		store:     store,
		trips:     trips,
		flights:   flights,
		hotels:    hotels,
		routes:    routes,
		reminders: reminders,
		now:       time.Now,
	}
}

// Start resets the chat to idle and greets with the main menu.
func (e *Engine) Start(_ context.Context, chatID int64) Reply {
	e.store.ClearState(chatID)
	return Reply{Text: MsgChooseAction, ShowMenu: true}
}

// InProgress reports whether the chat is currently awaiting typed input.
func (e *Engine) InProgress(chatID int64) bool {
	return e.store.InProgress(chatID)
}

// Choose handles a menu selection: it moves the chat into the matching
// awaiting state and returns the action's format prompt.
func (e *Engine) Choose(ctx context.Context, chatID int64, action string) Reply {
	var (
		st     State
		prompt string
	)
	switch action {
	case ActionFlight:
		st, prompt = StateAwaitingFlight, PromptFlight
	case ActionHotel:
		st, prompt = StateAwaitingHotel, PromptHotel
	case ActionRoute:
		st, prompt = StateAwaitingRoute, PromptRoute
	case ActionRemind:
		st, prompt = StateAwaitingRemind, PromptRemind
	default:
		logger.Warn(ctx, "engine", "menu.unknown_action",
			slog.Int64("chat_id", chatID),
			slog.String("action", logger.SanitizeLimit(action, 64)),
		)
		return Reply{Text: MsgUnknownAction, ShowMenu: true}
	}

	e.store.SetState(chatID, st)
	logger.Debug(ctx, "engine", "menu.selected",
		slog.Int64("chat_id", chatID),
		slog.String("action", action),
		slog.String("state", string(st)),
	)
	return Reply{Text: prompt}
}

// Input dispatches free text according to the chat's current state. The chat
// always returns to idle afterwards, whether the action succeeded or not.
func (e *Engine) Input(ctx context.Context, chatID int64, text string) Reply {
	st := e.store.GetState(chatID)
	e.store.ClearState(chatID)

	switch st {
	case StateAwaitingFlight:
		return e.handleFlight(ctx, chatID, text)
	case StateAwaitingHotel:
		return e.handleHotel(ctx, chatID, text)
	case StateAwaitingRoute:
		return e.handleRoute(ctx, chatID, text)
	case StateAwaitingRemind:
		return e.handleRemind(ctx, chatID, text)
	default:
		return Reply{Text: MsgNothingPending, ShowMenu: true}
	}
}

func (e *Engine) handleFlight(ctx context.Context, chatID int64, text string) Reply {
	query, err := parseFlightQuery(text)
	if err != nil {
		return e.failure(ctx, chatID, ActionFlight, err, MsgFlightFormat)
	}

	flights, err := e.flights.SearchFlights(ctx, query.Origin, query.Destination, query.Date)
	if err != nil {
		return e.failure(ctx, chatID, ActionFlight, err, MsgUnavailable)
	}

	for _, line := range flights {
		e.record(ctx, chatID, storage.KindFlight, line)
	}
	return Reply{Text: strings.Join(flights, "\n"), ShowMenu: true}
}

func (e *Engine) handleHotel(ctx context.Context, chatID int64, text string) Reply {
	query, err := parseHotelQuery(text)
	if err != nil {
		return e.failure(ctx, chatID, ActionHotel, err, MsgHotelFormat)
	}

	hotels, err := e.hotels.SearchHotels(ctx, query.City, query.CheckIn, query.CheckOut)
	if err != nil {
		return e.failure(ctx, chatID, ActionHotel, err, MsgUnavailable)
	}

	for _, line := range hotels {
		e.record(ctx, chatID, storage.KindHotel, line)
	}
	return Reply{Text: strings.Join(hotels, "\n"), ShowMenu: true}
}

func (e *Engine) handleRoute(ctx context.Context, chatID int64, text string) Reply {
	cities, err := parseRouteQuery(text)
	if err != nil {
		return e.failure(ctx, chatID, ActionRoute, err, MsgRouteTooFew)
	}

	legs, err := e.routes.PlanRoute(ctx, cities)
	if err != nil {
		return e.failure(ctx, chatID, ActionRoute, err, MsgRouteFailed)
	}

	e.record(ctx, chatID, storage.KindRoute, strings.Join(cities, " → "))
	return Reply{Text: strings.Join(legs, "\n\n"), ShowMenu: true}
}

func (e *Engine) handleRemind(ctx context.Context, chatID int64, text string) Reply {
	query, err := parseReminderQuery(text)
	if err != nil {
		return e.failure(ctx, chatID, ActionRemind, err, MsgRemindFormat)
	}

	rem, err := e.reminders.Schedule(ctx, chatID, query.Message, query.FireAt)
	if err != nil {
		var schedErr *scheduler.SchedulingError
		if errors.As(err, &schedErr) {
			return e.failure(ctx, chatID, ActionRemind, err, MsgRemindPast)
		}
		return e.failure(ctx, chatID, ActionRemind, err, MsgUnavailable)
	}

	e.record(ctx, chatID, storage.KindReminder, query.Message)
	logger.Info(ctx, "engine", "reminder.accepted",
		slog.Int64("chat_id", chatID),
		slog.String("reminder_id", rem.ID),
	)
	return Reply{
		Text:     "Reminder set for " + query.FireAt.Format("2006-01-02 15:04"),
		ShowMenu: true,
	}
}

// failure converts any action error into a user-visible reply. Expected
// error kinds log at their usual levels; anything else is logged distinctly
// so it is never silently swallowed.
func (e *Engine) failure(ctx context.Context, chatID int64, action string, err error, msg string) Reply {
	attrs := []slog.Attr{
		slog.Int64("chat_id", chatID),
		slog.String("action", action),
		slog.String("err", err.Error()),
	}

	var formatErr *FormatError
	var provErr *providers.ProviderError
	var schedErr *scheduler.SchedulingError
	switch {
	case errors.As(err, &formatErr):
		logger.Debug(ctx, "engine", "input.format_error", attrs...)
	case errors.As(err, &provErr):
		logger.Warn(ctx, "engine", "provider.failed", attrs...)
	case errors.As(err, &schedErr):
		logger.Debug(ctx, "engine", "schedule.rejected", attrs...)
	default:
		logger.Error(ctx, "engine", "action.unexpected_error", attrs...)
	}

	return Reply{Text: msg}
}

// record appends a trip log entry. Log failures are reported but never fail
// the user action.
func (e *Engine) record(ctx context.Context, chatID int64, kind, description string) {
	rec := storage.TripRecord{
		ChatID:      chatID,
		Kind:        kind,
		Description: description,
		CreatedAt:   e.now().UTC(),
	}
	if err := e.trips.Append(ctx, rec); err != nil {
		logger.Error(ctx, "engine", "triplog.append_failed",
			slog.Int64("chat_id", chatID),
			slog.String("kind", kind),
			slog.String("err", err.Error()),
		)
	}
}
