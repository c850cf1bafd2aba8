package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives timers deterministically from test code.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, deadline: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and runs every due timer callback outside
// the clock lock, mirroring time.AfterFunc goroutine semantics.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.fired && !t.stopped && !t.deadline.After(c.now) {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

type recordingDeliver struct {
	mu    sync.Mutex
	calls []struct {
		ChatID  int64
		Message string
	}
	err error
}

func (d *recordingDeliver) deliver(chatID int64, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, struct {
		ChatID  int64
		Message string
	}{chatID, message})
	return d.err
}

func (d *recordingDeliver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type memJournal struct {
	mu   sync.Mutex
	rems map[string]Reminder
}

func newMemJournal() *memJournal {
	return &memJournal{rems: make(map[string]Reminder)}
}

func (j *memJournal) Insert(_ context.Context, rem Reminder) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rems[rem.ID] = rem
	return nil
}

func (j *memJournal) UpdateStatus(_ context.Context, id string, status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rem, ok := j.rems[id]; ok {
		rem.Status = status
		j.rems[id] = rem
	}
	return nil
}

func (j *memJournal) ListScheduled(_ context.Context) ([]Reminder, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Reminder
	for _, rem := range j.rems {
		if rem.Status == StatusScheduled {
			out = append(out, rem)
		}
	}
	return out, nil
}

func TestScheduleFiresExactlyOnce(t *testing.T) {
	clk := newFakeClock()
	del := &recordingDeliver{}
	s := New(del.deliver, nil, WithClock(clk))

	rem, err := s.Schedule(context.Background(), 42, "pack bags", clk.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, StatusScheduled, rem.Status)
	require.NotEmpty(t, rem.ID)

	clk.Advance(30 * time.Minute)
	assert.Equal(t, 0, del.count())

	clk.Advance(31 * time.Minute)
	require.Equal(t, 1, del.count())
	assert.Equal(t, int64(42), del.calls[0].ChatID)
	assert.Equal(t, "pack bags", del.calls[0].Message)

	got, ok := s.Get(rem.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFired, got.Status)

	// Advancing again must never produce a second delivery.
	clk.Advance(24 * time.Hour)
	assert.Equal(t, 1, del.count())
}

func TestSchedulePastFireTimeRejected(t *testing.T) {
	clk := newFakeClock()
	del := &recordingDeliver{}
	s := New(del.deliver, nil, WithClock(clk))

	_, err := s.Schedule(context.Background(), 1, "too late", clk.Now().Add(-time.Minute))
	var schedErr *SchedulingError
	require.ErrorAs(t, err, &schedErr)

	_, err = s.Schedule(context.Background(), 1, "right now", clk.Now())
	require.ErrorAs(t, err, &schedErr)

	clk.Advance(time.Hour)
	assert.Equal(t, 0, del.count())
}

func TestConcurrentSchedulesEachFireOnce(t *testing.T) {
	clk := newFakeClock()
	del := &recordingDeliver{}
	s := New(del.deliver, newMemJournal(), WithClock(clk))

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			fireAt := clk.Now().Add(time.Duration(i+1) * time.Second)
			_, err := s.Schedule(context.Background(), int64(i), fmt.Sprintf("reminder %d", i), fireAt)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	require.Equal(t, n, s.Pending())

	clk.Advance(2 * n * time.Second)
	require.Equal(t, n, del.count())

	seen := make(map[int64]int)
	for _, call := range del.calls {
		seen[call.ChatID]++
	}
	require.Len(t, seen, n)
	for chatID, count := range seen {
		assert.Equal(t, 1, count, "chat %d", chatID)
	}
}

func TestCancelPreventsFire(t *testing.T) {
	clk := newFakeClock()
	del := &recordingDeliver{}
	j := newMemJournal()
	s := New(del.deliver, j, WithClock(clk))

	rem, err := s.Schedule(context.Background(), 7, "cancel me", clk.Now().Add(time.Minute))
	require.NoError(t, err)

	require.True(t, s.Cancel(context.Background(), rem.ID))
	// Cancelling twice reports false.
	assert.False(t, s.Cancel(context.Background(), rem.ID))

	clk.Advance(time.Hour)
	assert.Equal(t, 0, del.count())

	got, ok := s.Get(rem.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, got.Status)

	scheduled, err := j.ListScheduled(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scheduled)
}

func TestDeliveryFailureStillMarksFired(t *testing.T) {
	clk := newFakeClock()
	del := &recordingDeliver{err: errors.New("transport down")}
	j := newMemJournal()
	s := New(del.deliver, j, WithClock(clk))

	rem, err := s.Schedule(context.Background(), 9, "doomed", clk.Now().Add(time.Second))
	require.NoError(t, err)

	clk.Advance(2 * time.Second)
	require.Equal(t, 1, del.count())

	got, ok := s.Get(rem.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFired, got.Status)

	// No retry: at-most-once delivery.
	clk.Advance(time.Hour)
	assert.Equal(t, 1, del.count())
}

func TestRestoreReArmsJournaledEntries(t *testing.T) {
	clk := newFakeClock()
	j := newMemJournal()

	firstDel := &recordingDeliver{}
	first := New(firstDel.deliver, j, WithClock(clk))
	future, err := first.Schedule(context.Background(), 1, "future", clk.Now().Add(time.Hour))
	require.NoError(t, err)
	overdue, err := first.Schedule(context.Background(), 2, "overdue", clk.Now().Add(time.Minute))
	require.NoError(t, err)
	first.Stop()

	// Simulated restart: a new scheduler on the same journal, with the
	// overdue entry's fire time already behind the clock.
	clk.Advance(30 * time.Minute)
	del := &recordingDeliver{}
	second := New(del.deliver, j, WithClock(clk))
	restored, err := second.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	// Past-due entries fire as soon as the clock ticks.
	clk.Advance(0)
	require.Equal(t, 1, del.count())
	assert.Equal(t, "overdue", del.calls[0].Message)
	got, ok := second.Get(overdue.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFired, got.Status)

	clk.Advance(31 * time.Minute)
	require.Equal(t, 2, del.count())
	got, ok = second.Get(future.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFired, got.Status)
}

func TestStopKeepsEntriesScheduled(t *testing.T) {
	clk := newFakeClock()
	del := &recordingDeliver{}
	j := newMemJournal()
	s := New(del.deliver, j, WithClock(clk))

	_, err := s.Schedule(context.Background(), 3, "later", clk.Now().Add(time.Minute))
	require.NoError(t, err)
	s.Stop()

	clk.Advance(time.Hour)
	assert.Equal(t, 0, del.count())

	scheduled, err := j.ListScheduled(context.Background())
	require.NoError(t, err)
	assert.Len(t, scheduled, 1)
}
