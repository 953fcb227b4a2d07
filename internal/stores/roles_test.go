package stores

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newStoreClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := api.New(server.URL, staticToken("test-token"), nil)
	require.NoError(t, err)
	return client
}

func TestRoleRefreshNormalizesBothPermissionFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/roles", func(w http.ResponseWriter, r *http.Request) {
		// Old deployments serve permissions_list only.
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "legacy", "permissions_list": ["datapuur:read"]},
			{"id": 2, "name": "modern", "permissions": ["admin:read"]}
		]`))
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)

	require.NoError(t, store.Refresh(context.Background()))
	roles := store.Roles()
	require.Len(t, roles, 2)

	assert.Equal(t, []string{"datapuur:read"}, roles[0].Permissions)
	assert.Equal(t, roles[0].Permissions, roles[0].PermissionsList)
	assert.Equal(t, []string{"admin:read"}, roles[1].PermissionsList)

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "legacy", selected.Name)
	assert.False(t, store.Degraded())
}

func TestRoleRefreshDegradesToDemoData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/roles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)

	require.NoError(t, store.Refresh(context.Background()))
	assert.True(t, store.Degraded())
	assert.Len(t, store.Roles(), len(DemoRoles()))

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "admin", selected.Name)
}

func TestRoleRefreshPropagatesAuthFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/roles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)

	err := store.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthFailure(err))
	assert.False(t, store.Degraded(), "auth failure must not substitute demo data")
	assert.Empty(t, store.Roles())
}

func TestRoleCreateAddsToCache(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/roles", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		var role domain.Role
		require.NoError(t, json.NewDecoder(r.Body).Decode(&role))
		role.ID = 42
		_ = json.NewEncoder(w).Encode(role)
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)
	require.NoError(t, store.Refresh(context.Background()))

	err := store.Create(context.Background(), domain.Role{
		Name:        "auditor",
		Permissions: []string{"admin:read"},
	})
	require.NoError(t, err)

	roles := store.Roles()
	require.Len(t, roles, 1)
	assert.Equal(t, 42, roles[0].ID)

	// The first created role becomes the selection.
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "auditor", selected.Name)
}

func TestRoleDeleteRefusesSystemRoles(t *testing.T) {
	var deleted bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/roles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway) // forces the demo set
	})
	mux.HandleFunc("/api/admin/roles/", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.WriteHeader(http.StatusOK)
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)
	require.NoError(t, store.Refresh(context.Background()))

	err := store.Delete(context.Background(), "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "system role")
	assert.False(t, deleted, "system role deletion must not reach the backend")

	// viewer is not a system role in the demo set.
	require.NoError(t, store.Delete(context.Background(), "viewer"))
	assert.True(t, deleted)
	assert.Len(t, store.Roles(), 2)
}

func TestPermissionsFallBackToKnownSet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/permissions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)

	perms, err := store.Permissions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DemoPermissions(), perms)
}

func TestPermissionsServeBackendList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/permissions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["datapuur:read", "future:perm"]`))
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)

	perms, err := store.Permissions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"datapuur:read", "future:perm"}, perms)
}

func TestRoleDeleteSelectedReselects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/roles", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "one", "permissions": []},
			{"id": 2, "name": "two", "permissions": []}
		]`))
	})
	mux.HandleFunc("/api/admin/roles/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	store := NewRoleStore(newStoreClient(t, mux), nil)
	require.NoError(t, store.Refresh(context.Background()))
	require.NoError(t, store.Select("one"))

	require.NoError(t, store.Delete(context.Background(), "one"))
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "two", selected.Name)
}
