// Package storage persists trip history and reminder entries. Postgres
// implementations back the long-lived deployment; in-memory implementations
// serve tests and database-less runs.
package storage

import (
	"context"
	"time"
)

// Trip record kinds, one per user-triggered action.
const (
	KindFlight   = "flight"
	KindHotel    = "hotel"
	KindRoute    = "route"
	KindReminder = "reminder"
)

// TripRecord is one immutable log line describing a completed action.
type TripRecord struct {
	ChatID      int64     `db:"chat_id"`
	Kind        string    `db:"kind"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// TripLog appends completed actions. Appends from concurrent chats must not
// lose entries.
type TripLog interface {
	Append(ctx context.Context, rec TripRecord) error
}
