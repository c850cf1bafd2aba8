package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbot/internal/scheduler"
)

func TestMemoryTripLogConcurrentAppends(t *testing.T) {
	log := NewMemoryTripLog()
	ctx := context.Background()

	const writers = 16
	const perWriter = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := TripRecord{
					ChatID:      int64(w),
					Kind:        KindFlight,
					Description: fmt.Sprintf("writer %d entry %d", w, i),
					CreatedAt:   time.Now(),
				}
				assert.NoError(t, log.Append(ctx, rec))
			}
		}(w)
	}
	wg.Wait()

	recs := log.Records()
	require.Len(t, recs, writers*perWriter)

	perChat := make(map[int64]int)
	for _, rec := range recs {
		perChat[rec.ChatID]++
	}
	for w := 0; w < writers; w++ {
		assert.Equal(t, perWriter, perChat[int64(w)], "writer %d", w)
	}
}

func TestMemoryTripLogRecordsReturnsCopy(t *testing.T) {
	log := NewMemoryTripLog()
	require.NoError(t, log.Append(context.Background(), TripRecord{ChatID: 1, Kind: KindHotel, Description: "original"}))

	recs := log.Records()
	recs[0].Description = "mutated"
	assert.Equal(t, "original", log.Records()[0].Description)
}

func TestMemoryJournalLifecycle(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()

	rem := scheduler.Reminder{
		ID:      "r1",
		ChatID:  5,
		Message: "check in",
		FireAt:  time.Now().Add(time.Hour),
		Status:  scheduler.StatusScheduled,
	}
	require.NoError(t, j.Insert(ctx, rem))

	scheduled, err := j.ListScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "r1", scheduled[0].ID)

	require.NoError(t, j.UpdateStatus(ctx, "r1", scheduler.StatusFired))
	scheduled, err = j.ListScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, scheduled)

	// Unknown ids are ignored.
	require.NoError(t, j.UpdateStatus(ctx, "missing", scheduler.StatusCancelled))
}
