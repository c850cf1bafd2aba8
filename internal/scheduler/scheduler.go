// Package scheduler arms one timer per reminder entry and guarantees each
// entry fires at most once, even when scheduling, cancellation and timer
// expiry interleave.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"travelbot/internal/logger"
)

type entry struct {
	reminder Reminder
	timer    Timer
}

// Scheduler owns the set of armed reminder entries.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry

	deliver DeliverFunc
	journal Journal
	clock   Clock
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the system clock, used by tests to control time.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a Scheduler delivering through the given callback. The journal
// may be nil, in which case entries do not survive restarts.
func New(deliver DeliverFunc, journal Journal, opts ...Option) *Scheduler {
	s := &Scheduler{
		entries: make(map[string]*entry),
		deliver: deliver,
		journal: journal,
		clock:   SystemClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule validates the fire time, persists the entry, and arms its timer.
// A fire time not strictly in the future is rejected with a SchedulingError.
func (s *Scheduler) Schedule(ctx context.Context, chatID int64, message string, fireAt time.Time) (Reminder, error) {
	now := s.clock.Now()
	if !fireAt.After(now) {
		return Reminder{}, &SchedulingError{FireAt: fireAt, Reason: "fire time is not in the future"}
	}

	rem := Reminder{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Message:   message,
		FireAt:    fireAt,
		Status:    StatusScheduled,
		CreatedAt: now,
	}

	if s.journal != nil {
		if err := s.journal.Insert(ctx, rem); err != nil {
			return Reminder{}, fmt.Errorf("journal insert: %w", err)
		}
	}

	s.arm(rem, fireAt.Sub(now))

	logger.Info(ctx, "scheduler", "reminder.scheduled",
		slog.String("reminder_id", rem.ID),
		slog.Int64("chat_id", chatID),
		slog.Time("fire_at", fireAt),
	)
	return rem, nil
}

func (s *Scheduler) arm(rem Reminder, in time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entry{reminder: rem}
	s.entries[rem.ID] = e
	e.timer = s.clock.AfterFunc(in, func() { s.fire(rem.ID) })
}

// fire transitions an entry to fired exactly once and runs delivery outside
// the lock so a slow delivery never delays other entries.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.reminder.Status != StatusScheduled {
		s.mu.Unlock()
		return
	}
	e.reminder.Status = StatusFired
	rem := e.reminder
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.deliver(rem.ChatID, rem.Message); err != nil {
		fail := &DeliveryFailure{ChatID: rem.ChatID, Err: err}
		logger.Error(ctx, "scheduler", "reminder.delivery_failed",
			slog.String("reminder_id", rem.ID),
			slog.Int64("chat_id", rem.ChatID),
			slog.String("err", fail.Error()),
		)
	} else {
		logger.Info(ctx, "scheduler", "reminder.fired",
			slog.String("reminder_id", rem.ID),
			slog.Int64("chat_id", rem.ChatID),
		)
	}

	if s.journal != nil {
		if err := s.journal.UpdateStatus(ctx, rem.ID, StatusFired); err != nil {
			logger.Warn(ctx, "scheduler", "reminder.journal_update_failed",
				slog.String("reminder_id", rem.ID),
				slog.String("err", err.Error()),
			)
		}
	}
}

// Cancel stops a scheduled entry before it fires. It reports whether the
// entry was still scheduled.
func (s *Scheduler) Cancel(ctx context.Context, id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.reminder.Status != StatusScheduled {
		s.mu.Unlock()
		return false
	}
	e.reminder.Status = StatusCancelled
	if e.timer != nil {
		e.timer.Stop()
	}
	s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.UpdateStatus(ctx, id, StatusCancelled); err != nil {
			logger.Warn(ctx, "scheduler", "reminder.journal_update_failed",
				slog.String("reminder_id", id),
				slog.String("err", err.Error()),
			)
		}
	}
	logger.Info(ctx, "scheduler", "reminder.cancelled", slog.String("reminder_id", id))
	return true
}

// Get returns a snapshot of an entry by id.
func (s *Scheduler) Get(id string) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e.reminder, true
	}
	return Reminder{}, false
}

// Pending returns the number of entries still scheduled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.reminder.Status == StatusScheduled {
			n++
		}
	}
	return n
}

// Restore re-arms journaled entries after a restart. Entries whose fire time
// already passed fire immediately. Returns the number of restored entries.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	rems, err := s.journal.ListScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("journal list: %w", err)
	}
	now := s.clock.Now()
	for _, rem := range rems {
		in := rem.FireAt.Sub(now)
		if in < 0 {
			in = 0
		}
		s.arm(rem, in)
	}
	if len(rems) > 0 {
		logger.Info(ctx, "scheduler", "reminders.restored", slog.Int("count", len(rems)))
	}
	return len(rems), nil
}

// Stop disarms all pending timers. Scheduled entries stay journaled and are
// re-armed by Restore on the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.reminder.Status == StatusScheduled && e.timer != nil {
			e.timer.Stop()
		}
	}
}
