package conversation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefaultsToIdle(t *testing.T) {
	store := NewMemoryStore()
	assert.Equal(t, StateIdle, store.GetState(1))
	assert.False(t, store.InProgress(1))
}

func TestStoreSetAndClearState(t *testing.T) {
	store := NewMemoryStore()

	store.SetState(1, StateAwaitingFlight)
	assert.Equal(t, StateAwaitingFlight, store.GetState(1))
	assert.True(t, store.InProgress(1))

	// Other chats are unaffected.
	assert.Equal(t, StateIdle, store.GetState(2))

	store.ClearState(1)
	assert.Equal(t, StateIdle, store.GetState(1))
	assert.False(t, store.InProgress(1))
}

func TestStoreTempData(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.GetTemp(5, "draft")
	require.False(t, ok)

	store.SetTemp(5, "draft", "PAR LON")
	val, ok := store.GetTemp(5, "draft")
	require.True(t, ok)
	assert.Equal(t, "PAR LON", val)

	store.ClearTemp(5, "draft")
	_, ok = store.GetTemp(5, "draft")
	assert.False(t, ok)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	const chats = 64
	var wg sync.WaitGroup
	wg.Add(chats)
	for i := 0; i < chats; i++ {
		go func(chatID int64) {
			defer wg.Done()
			store.SetState(chatID, StateAwaitingHotel)
			store.SetTemp(chatID, "city", chatID)
			_ = store.GetState(chatID)
			store.ClearState(chatID)
			store.SetState(chatID, StateAwaitingRoute)
		}(int64(i))
	}
	wg.Wait()

	for i := 0; i < chats; i++ {
		assert.Equal(t, StateAwaitingRoute, store.GetState(int64(i)))
	}
}
