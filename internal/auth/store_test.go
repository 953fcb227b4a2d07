package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kginsights/datapuur/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func validSession() *domain.Session {
	return &domain.Session{
		Token: "tok-abc",
		User: domain.User{
			Username:    "alice",
			Role:        "analyst",
			Permissions: []string{"datapuur:read", "datapuur:write"},
		},
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(validSession()))

	session, err := store.Session()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "tok-abc", session.Token)
	assert.Equal(t, "alice", session.User.Username)
	assert.True(t, session.Capabilities.Has(domain.CapDatapuurRead))
	assert.Equal(t, "tok-abc", store.Token())
}

func TestSaveRejectsIncompleteSession(t *testing.T) {
	store := newTestStore(t)

	// A token without a user would break the set-together invariant.
	err := store.Save(&domain.Session{Token: "tok-only"})
	require.Error(t, err)

	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session, "neither token nor user should be persisted")
	assert.Empty(t, store.Token())
}

func TestHalfWrittenSessionTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.yaml"), []byte("token: orphan\n"), 0o644))

	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestClearRemovesSession(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(validSession()))
	require.NoError(t, store.Clear())

	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestConsumeAuthExpiredIsOneShot(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetAuthExpired("transform run demo-cleanup"))

	expired, path, err := store.ConsumeAuthExpired()
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, "transform run demo-cleanup", path)

	expired, path, err = store.ConsumeAuthExpired()
	require.NoError(t, err)
	assert.False(t, expired, "flag reads exactly once")
	assert.Empty(t, path)
}

func TestConsumeLoggingOutIsOneShot(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetLoggingOut())

	loggingOut, err := store.ConsumeLoggingOut()
	require.NoError(t, err)
	assert.True(t, loggingOut)

	loggingOut, err = store.ConsumeLoggingOut()
	require.NoError(t, err)
	assert.False(t, loggingOut)
}

func TestAuthExpiredPeekDoesNotClear(t *testing.T) {
	store := newTestStore(t)

	expired, err := store.AuthExpired()
	require.NoError(t, err)
	assert.False(t, expired)

	require.NoError(t, store.SetAuthExpired("schema list"))

	// Peeking any number of times leaves the flag and return path intact.
	for i := 0; i < 2; i++ {
		expired, err = store.AuthExpired()
		require.NoError(t, err)
		assert.True(t, expired)
	}

	expired, returnPath, err := store.ConsumeAuthExpired()
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, "schema list", returnPath)
}
