package storage

import (
	"context"
	"sync"

	"travelbot/internal/scheduler"
)

// MemoryTripLog is a concurrency-safe in-memory TripLog.
type MemoryTripLog struct {
	mu   sync.Mutex
	recs []TripRecord
}

// NewMemoryTripLog returns an empty in-memory trip log.
func NewMemoryTripLog() *MemoryTripLog {
	return &MemoryTripLog{}
}

// Append stores the record in insertion order.
func (l *MemoryTripLog) Append(_ context.Context, rec TripRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, rec)
	return nil
}

// Records returns a copy of all appended records.
func (l *MemoryTripLog) Records() []TripRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]TripRecord, len(l.recs))
	copy(out, l.recs)
	return out
}

// MemoryJournal is an in-memory scheduler.Journal. Entries do not survive
// process restarts.
type MemoryJournal struct {
	mu   sync.Mutex
	rems map[string]scheduler.Reminder
}

// NewMemoryJournal returns an empty in-memory reminder journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{rems: make(map[string]scheduler.Reminder)}
}

// Insert stores the reminder keyed by id.
func (j *MemoryJournal) Insert(_ context.Context, rem scheduler.Reminder) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rems[rem.ID] = rem
	return nil
}

// UpdateStatus replaces the status of a stored reminder, if present.
func (j *MemoryJournal) UpdateStatus(_ context.Context, id string, status scheduler.Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rem, ok := j.rems[id]; ok {
		rem.Status = status
		j.rems[id] = rem
	}
	return nil
}

// ListScheduled returns all reminders still in the scheduled state.
func (j *MemoryJournal) ListScheduled(_ context.Context) ([]scheduler.Reminder, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []scheduler.Reminder
	for _, rem := range j.rems {
		if rem.Status == scheduler.StatusScheduled {
			out = append(out, rem)
		}
	}
	return out, nil
}
