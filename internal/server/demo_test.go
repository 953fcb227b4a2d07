package restapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/auth"
	"github.com/kginsights/datapuur/internal/domain"
	"github.com/kginsights/datapuur/internal/poller"
	"github.com/kginsights/datapuur/internal/stores"
)

// newDemoClient spins up the demo backend and wires a real session store,
// manager and client against it, the same shape the CLI assembles.
func newDemoClient(t *testing.T) (*api.Client, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewDemoHandler(engine, nil)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	store, err := auth.NewStore(t.TempDir())
	require.NoError(t, err)
	client, err := api.New(server.URL, store, nil)
	require.NoError(t, err)
	return client, auth.NewManager(store, client, nil)
}

func TestDemoLoginGrantsCapabilities(t *testing.T) {
	_, manager := newDemoClient(t)

	session, _, err := manager.Login(context.Background(), "admin", "anything")
	require.NoError(t, err)
	assert.True(t, session.Capabilities.Has(domain.CapAdminRead))
	assert.True(t, session.Capabilities.Has(domain.CapDatapuurRead))

	session, _, err = manager.Login(context.Background(), "analyst", "anything")
	require.NoError(t, err)
	assert.False(t, session.Capabilities.Has(domain.CapAdminRead))
	assert.True(t, session.Capabilities.Has(domain.CapDatapuurRead))
}

func TestDemoRejectsMissingSession(t *testing.T) {
	client, _ := newDemoClient(t)

	// No login happened, so the store has no token and the client refuses to
	// even reach the network.
	err := client.Do(context.Background(), "GET", "/api/datapuur/sources", nil, nil)
	assert.ErrorIs(t, err, api.ErrNoSession)
}

func TestDemoStoresServeFixtures(t *testing.T) {
	client, manager := newDemoClient(t)
	_, _, err := manager.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)

	datasets := stores.NewDatasetStore(client, nil)
	require.NoError(t, datasets.Refresh(context.Background()))
	assert.False(t, datasets.Degraded())
	assert.Len(t, datasets.Datasets(), len(stores.DemoDatasets()))

	roles := stores.NewRoleStore(client, nil)
	require.NoError(t, roles.Refresh(context.Background()))
	assert.False(t, roles.Degraded())
	selected, ok := roles.Selected()
	require.True(t, ok)
	assert.Equal(t, "admin", selected.Name)

	profile, err := datasets.Profile(context.Background(), "demo-sales")
	require.NoError(t, err)
	assert.Equal(t, "demo-sales", profile.DatasetID)
	require.NotEmpty(t, profile.Columns)
}

func TestDemoSchemaChatAndSaveFlow(t *testing.T) {
	client, manager := newDemoClient(t)
	_, _, err := manager.Login(context.Background(), "analyst", "pw")
	require.NoError(t, err)

	schemas := stores.NewSchemaStore(client, nil)
	resp, err := schemas.Chat(context.Background(), []domain.ChatMessage{
		{Role: "user", Content: "model my customer orders"},
	}, "demo-sales")
	require.NoError(t, err)
	require.NotNil(t, resp.Schema)
	assert.Empty(t, resp.Schema.Name, "draft arrives unnamed")
	assert.Equal(t, "demo-sales", resp.Schema.SourceID)

	// Name the draft and save it, then make sure the backend serves it back.
	draft := resp.Schema
	draft.Name = "Orders Graph"
	saved, err := schemas.Save(context.Background(), draft)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	require.NoError(t, schemas.Refresh(context.Background()))
	var found bool
	for _, s := range schemas.Schemas() {
		if s.ID == saved.ID {
			found = true
			assert.Equal(t, "Orders Graph", s.Name)
		}
	}
	assert.True(t, found, "saved schema must appear in the refreshed list")
}

func TestDemoExecuteThenPollToCompletion(t *testing.T) {
	client, manager := newDemoClient(t)
	_, _, err := manager.Login(context.Background(), "analyst", "pw")
	require.NoError(t, err)

	transforms := stores.NewTransformStore(client, nil)
	require.NoError(t, transforms.Refresh(context.Background()))
	plan, ok := transforms.Selected()
	require.True(t, ok)

	job, err := transforms.Execute(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, job.Status)

	p := poller.New(client, poller.WithInterval(5*time.Millisecond))
	var seen []domain.Job
	for update := range p.Start(context.Background(), job.ID) {
		require.NoError(t, update.Err)
		seen = append(seen, update.Job)
	}

	// The scripted lifecycle: running at 40%, then completed with an output
	// file, at which point polling stops on its own.
	require.Len(t, seen, 2)
	assert.Equal(t, domain.JobRunning, seen[0].Status)
	assert.Equal(t, 40, seen[0].Progress)
	assert.Equal(t, domain.JobCompleted, seen[1].Status)
	require.NotNil(t, seen[1].Result)
	assert.NotEmpty(t, seen[1].Result.OutputFile)
}

func TestDemoAdminMutations(t *testing.T) {
	client, manager := newDemoClient(t)
	_, _, err := manager.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)

	roles := stores.NewRoleStore(client, nil)
	require.NoError(t, roles.Refresh(context.Background()))
	before := len(roles.Roles())

	require.NoError(t, roles.Create(context.Background(), domain.Role{
		Name:        "auditor",
		Description: "Read-only audit access",
		Permissions: []string{"admin:read"},
	}))
	assert.Len(t, roles.Roles(), before+1)

	require.NoError(t, roles.Refresh(context.Background()))
	require.NoError(t, roles.Delete(context.Background(), "auditor"))

	admin := stores.NewAdminStore(client, nil)
	require.NoError(t, admin.Refresh(context.Background()))
	settings := admin.Settings()
	settings.SessionTimeoutMins = 15
	require.NoError(t, admin.UpdateSettings(context.Background(), settings))

	require.NoError(t, admin.Refresh(context.Background()))
	assert.Equal(t, 15, admin.Settings().SessionTimeoutMins)

	require.NoError(t, admin.DeleteUser(context.Background(), "analyst"))
	require.NoError(t, admin.Refresh(context.Background()))
	for _, u := range admin.Users() {
		assert.NotEqual(t, "analyst", u.Username)
	}
}

func TestDemoStaleTokenTearsDownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewDemoHandler(engine, nil)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	store, err := auth.NewStore(t.TempDir())
	require.NoError(t, err)
	// A token the demo server never issued, as if the server restarted.
	require.NoError(t, store.Save(&domain.Session{
		Token: "stale-token",
		User:  domain.User{Username: "admin", Role: "admin"},
	}))

	handler := auth.NewFailureHandler(store, func() string { return "dataset list" }, nil)
	client, err := api.New(server.URL, store, handler.Handle)
	require.NoError(t, err)

	datasets := stores.NewDatasetStore(client, nil)
	err = datasets.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthFailure(err))

	// The teardown cleared the session and queued the return path.
	session, err := store.Session()
	require.NoError(t, err)
	assert.Nil(t, session)

	expired, returnPath, err := store.ConsumeAuthExpired()
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, "dataset list", returnPath)
}
