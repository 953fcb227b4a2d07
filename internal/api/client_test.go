package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token() string { return s.token }

func TestDoWithoutTokenSkipsNetwork(t *testing.T) {
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
	}))
	defer server.Close()

	var handlerCalls int
	client, err := New(server.URL, staticTokens{}, func() { handlerCalls++ })
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodGet, "/api/datapuur/sources", nil, nil)
	require.ErrorIs(t, err, ErrNoSession)
	assert.True(t, IsAuthFailure(err))
	assert.Equal(t, 1, handlerCalls)
	assert.Equal(t, int64(0), atomic.LoadInt64(&requests), "request must not be issued without a token")
}

func TestDoAttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client, err := New(server.URL, staticTokens{token: "tok-123"}, nil)
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/api/ping", nil, &out))
	assert.True(t, out.OK)
}

func TestDo401FiresHandlerAndReturnsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var handlerCalls int
	client, err := New(server.URL, staticTokens{token: "expired"}, func() { handlerCalls++ })
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodGet, "/api/datapuur/sources", nil, nil)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.True(t, IsAuthFailure(err))
	assert.Equal(t, 1, handlerCalls)
}

func TestPublic401DoesNotFireHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var handlerCalls int
	client, err := New(server.URL, staticTokens{}, func() { handlerCalls++ })
	require.NoError(t, err)

	err = client.DoPublic(context.Background(), http.MethodPost, "/api/auth/register", map[string]string{"u": "x"}, nil)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 0, handlerCalls, "bad credentials on a public endpoint are not a session teardown")
}

func TestDoServerErrorReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client, err := New(server.URL, staticTokens{token: "tok"}, nil)
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodGet, "/api/ping", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)
	assert.False(t, IsAuthFailure(err))
}

func TestDoMalformedJSONReturnsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client, err := New(server.URL, staticTokens{token: "tok"}, nil)
	require.NoError(t, err)

	var out map[string]any
	err = client.Do(context.Background(), http.MethodGet, "/api/ping", nil, &out)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.False(t, IsAuthFailure(err))
}

func TestPostFormEncodesCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok"}`))
	}))
	defer server.Close()

	client, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "s3cret")

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, client.PostForm(context.Background(), "/api/auth/token", form, &out))
	assert.Equal(t, "tok", out.AccessToken)
}
