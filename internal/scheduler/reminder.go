package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Status describes the lifecycle stage of a reminder entry.
type Status string

const (
	// StatusScheduled marks an entry whose timer is armed.
	StatusScheduled Status = "scheduled"
	// StatusFired marks an entry that has been delivered (or delivery was
	// attempted). Terminal.
	StatusFired Status = "fired"
	// StatusCancelled marks an entry cancelled before firing. Terminal.
	StatusCancelled Status = "cancelled"
)

// Reminder is a single scheduled delivery of a message to a chat.
type Reminder struct {
	ID        string    `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Message   string    `db:"message"`
	FireAt    time.Time `db:"fire_at"`
	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// DeliverFunc delivers a reminder message to a chat at fire time.
type DeliverFunc func(chatID int64, message string) error

// Journal persists reminder entries so they survive process restarts.
type Journal interface {
	Insert(ctx context.Context, rem Reminder) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListScheduled(ctx context.Context) ([]Reminder, error)
}

// SchedulingError reports an invalid schedule request, such as a fire time
// that is already in the past.
type SchedulingError struct {
	FireAt time.Time
	Reason string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling rejected: %s (fire_at=%s)", e.Reason, e.FireAt.Format(time.RFC3339))
}

// DeliveryFailure reports that the delivery callback could not reach the
// chat. The entry is still marked fired; delivery is at-most-once.
type DeliveryFailure struct {
	ChatID int64
	Err    error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("reminder delivery to chat %d failed: %v", e.ChatID, e.Err)
}

func (e *DeliveryFailure) Unwrap() error { return e.Err }
