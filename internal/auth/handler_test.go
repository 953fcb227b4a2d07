package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureHandlerRunsOnce(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(validSession()))

	var pathCalls int
	handler := NewFailureHandler(store, func() string {
		pathCalls++
		return "datasets list"
	}, nil)

	handler.Handle()
	handler.Handle()
	handler.Handle()

	assert.Equal(t, 1, pathCalls, "side effect must run exactly once")
	assert.True(t, handler.Fired())

	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session, "session must be cleared")

	expired, path, err := store.ConsumeAuthExpired()
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, "datasets list", path)
}

func TestFailureHandlerConcurrentCallsDoNotPanic(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(validSession()))

	handler := NewFailureHandler(store, func() string { return "jobs watch j1" }, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.Handle()
		}()
	}
	wg.Wait()

	expired, _, err := store.ConsumeAuthExpired()
	require.NoError(t, err)
	assert.True(t, expired)
}
