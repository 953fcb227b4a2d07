package stores

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// AdminStore caches the admin dashboard blocks: stats, users, activity and
// settings. Each block degrades to demo data independently when its endpoint
// is unreachable; auth failures always propagate.
type AdminStore struct {
	client *api.Client
	log    *slog.Logger

	users Collection[domain.AdminUser]

	mu       sync.Mutex
	stats    domain.AdminStats
	activity []domain.ActivityEntry
	settings domain.AdminSettings
	degraded bool
}

// NewAdminStore builds an empty store over the given transport.
func NewAdminStore(client *api.Client, log *slog.Logger) *AdminStore {
	if log == nil {
		log = slog.Default()
	}
	return &AdminStore{client: client, log: log}
}

// Refresh re-fetches all four admin blocks.
func (s *AdminStore) Refresh(ctx context.Context) error {
	degraded := false

	var stats domain.AdminStats
	if err := s.client.Do(ctx, http.MethodGet, "/api/admin/stats", nil, &stats); err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("stats endpoint unavailable, serving demo data", "error", err)
		stats = DemoStats()
		degraded = true
	}

	var users []domain.AdminUser
	if err := s.client.Do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("users endpoint unavailable, serving demo data", "error", err)
		s.users.ReplaceDegraded(DemoUsers())
		degraded = true
	} else {
		s.users.Replace(users)
	}

	var activity []domain.ActivityEntry
	if err := s.client.Do(ctx, http.MethodGet, "/api/admin/activity", nil, &activity); err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("activity endpoint unavailable, serving demo data", "error", err)
		activity = DemoActivity()
		degraded = true
	}

	var settings domain.AdminSettings
	if err := s.client.Do(ctx, http.MethodGet, "/api/admin/settings", nil, &settings); err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("settings endpoint unavailable, serving demo data", "error", err)
		settings = DemoSettings()
		degraded = true
	}

	s.mu.Lock()
	s.stats = stats
	s.activity = activity
	s.settings = settings
	s.degraded = degraded
	s.mu.Unlock()
	return nil
}

// Stats returns the cached dashboard summary.
func (s *AdminStore) Stats() domain.AdminStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Users returns the cached user collection.
func (s *AdminStore) Users() []domain.AdminUser { return s.users.Items() }

// SelectedUser returns the selected user row.
func (s *AdminStore) SelectedUser() (domain.AdminUser, bool) { return s.users.Selected() }

// SelectUser changes the user selection.
func (s *AdminStore) SelectUser(username string) error { return s.users.Select(username) }

// Activity returns the cached audit log.
func (s *AdminStore) Activity() []domain.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ActivityEntry, len(s.activity))
	copy(out, s.activity)
	return out
}

// Settings returns the cached settings block.
func (s *AdminStore) Settings() domain.AdminSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Degraded reports whether any block is currently demo data.
func (s *AdminStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded || s.users.Degraded()
}

// UpdateSettings writes the settings block server-side and caches the copy
// the backend returns.
func (s *AdminStore) UpdateSettings(ctx context.Context, settings domain.AdminSettings) error {
	var updated domain.AdminSettings
	if err := s.client.Do(ctx, http.MethodPut, "/api/admin/settings", settings, &updated); err != nil {
		return errors.Wrap(err, "update settings")
	}
	s.mu.Lock()
	s.settings = updated
	s.mu.Unlock()
	return nil
}

// DeleteUser removes a user server-side, then from the cache.
func (s *AdminStore) DeleteUser(ctx context.Context, username string) error {
	if err := s.client.Do(ctx, http.MethodDelete, "/api/admin/users/"+username, nil, nil); err != nil {
		return errors.Wrap(err, "delete user")
	}
	return s.users.Remove(username)
}
