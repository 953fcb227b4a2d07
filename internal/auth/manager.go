package auth

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// State is the session lifecycle position.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// tokenResponse is the payload of POST /api/auth/token.
type tokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type,omitempty"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Manager drives the auth state machine: anonymous -> authenticating ->
// authenticated, and back to anonymous on logout or forced teardown. It is a
// per-process singleton owned by the CLI wiring.
type Manager struct {
	store  *Store
	client *api.Client
	log    *slog.Logger

	mu    sync.Mutex
	state State
}

// NewManager builds a manager over the session store and transport. The
// initial state reflects whatever session is already persisted.
func NewManager(store *Store, client *api.Client, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{store: store, client: client, log: log, state: Anonymous}
	if session, err := store.Session(); err == nil && session.Valid() {
		m.state = Authenticated
	}
	return m
}

// State returns the current lifecycle position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the persisted session, nil when anonymous.
func (m *Manager) Session() (*domain.Session, error) {
	return m.store.Session()
}

// Login exchanges credentials for a token via the form-encoded token
// endpoint, persists token+user atomically, and returns the session along
// with any saved path to resume. On failure the state stays anonymous and
// nothing is persisted.
func (m *Manager) Login(ctx context.Context, username, password string) (*domain.Session, string, error) {
	if username == "" || password == "" {
		return nil, "", errors.New("username and password are required")
	}

	m.setState(Authenticating)

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp tokenResponse
	if err := m.client.PostForm(ctx, "/api/auth/token", form, &resp); err != nil {
		m.setState(Anonymous)
		return nil, "", errors.Wrap(err, "login")
	}
	if resp.AccessToken == "" {
		m.setState(Anonymous)
		return nil, "", errors.New("login: backend returned no token")
	}

	session := &domain.Session{
		Token: resp.AccessToken,
		User: domain.User{
			Username:    resp.Username,
			Role:        resp.Role,
			Permissions: resp.Permissions,
		},
	}
	var unknown []string
	session.Capabilities, unknown = domain.ParseCapabilities(resp.Permissions)
	if len(unknown) > 0 {
		m.log.Debug("ignoring unrecognized permissions", "permissions", unknown)
	}

	if err := m.store.Save(session); err != nil {
		m.setState(Anonymous)
		return nil, "", errors.Wrap(err, "persist session")
	}
	m.setState(Authenticated)

	_, returnPath, err := m.store.ConsumeAuthExpired()
	if err != nil {
		m.log.Warn("failed to read saved return path", "error", err)
		returnPath = ""
	}
	m.log.Info("logged in", "username", resp.Username, "role", resp.Role)
	return session, returnPath, nil
}

// registerRequest is the payload of POST /api/auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates the account and immediately logs in with the same
// credentials.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := m.client.DoPublic(ctx, "POST", "/api/auth/register", req, nil); err != nil {
		return nil, errors.Wrap(err, "register")
	}
	session, _, err := m.Login(ctx, username, password)
	return session, err
}

// ForgotPassword requests a reset email. One-shot, no retry.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	body := map[string]string{"email": email}
	return errors.Wrap(m.client.DoPublic(ctx, "POST", "/api/auth/forgot-password", body, nil), "forgot password")
}

// ResetPassword completes an emailed reset with the token from the message.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return errors.New("reset token and new password are required")
	}
	body := map[string]string{"token": token, "new_password": newPassword}
	return errors.Wrap(m.client.DoPublic(ctx, "POST", "/api/auth/reset-password", body, nil), "reset password")
}

// ResetPasswordDirect changes a password with the old one in hand, skipping
// the email loop.
func (m *Manager) ResetPasswordDirect(ctx context.Context, username, oldPassword, newPassword string) error {
	if username == "" || oldPassword == "" || newPassword == "" {
		return errors.New("username, old password and new password are required")
	}
	body := map[string]string{
		"username":     username,
		"old_password": oldPassword,
		"new_password": newPassword,
	}
	return errors.Wrap(m.client.DoPublic(ctx, "POST", "/api/auth/reset-password-direct", body, nil), "reset password")
}

// Logout marks the teardown as voluntary, clears the session, and returns to
// anonymous. The marker lets shared output distinguish this from a forced
// expiry.
func (m *Manager) Logout() error {
	if err := m.store.SetLoggingOut(); err != nil {
		m.log.Warn("failed to set logout marker", "error", err)
	}
	if err := m.store.Clear(); err != nil {
		return errors.Wrap(err, "logout")
	}
	m.setState(Anonymous)
	m.log.Info("logged out")
	return nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
