package stores

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// RoleStore caches /api/admin/roles with selection by role name. Both
// permission fields on every role are normalized on the way in and out.
type RoleStore struct {
	client *api.Client
	log    *slog.Logger
	col    Collection[domain.Role]
}

// NewRoleStore builds an empty store over the given transport.
func NewRoleStore(client *api.Client, log *slog.Logger) *RoleStore {
	if log == nil {
		log = slog.Default()
	}
	return &RoleStore{client: client, log: log}
}

// Refresh re-fetches the role collection. Auth failures propagate; any other
// failure degrades to the demo role set.
func (s *RoleStore) Refresh(ctx context.Context) error {
	var roles []domain.Role
	err := s.client.Do(ctx, http.MethodGet, "/api/admin/roles", nil, &roles)
	if err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("roles endpoint unavailable, serving demo data", "error", err)
		s.col.ReplaceDegraded(DemoRoles())
		return nil
	}
	for i := range roles {
		roles[i].Normalize()
	}
	s.col.Replace(roles)
	return nil
}

// Roles returns the cached collection.
func (s *RoleStore) Roles() []domain.Role { return s.col.Items() }

// Selected returns the selected role.
func (s *RoleStore) Selected() (domain.Role, bool) { return s.col.Selected() }

// Select changes the selection to the named role.
func (s *RoleStore) Select(name string) error { return s.col.Select(name) }

// Degraded reports whether the store holds fallback data.
func (s *RoleStore) Degraded() bool { return s.col.Degraded() }

// Permissions fetches the permission strings roles can be granted. Auth
// failures propagate; any other failure degrades to the closed set the client
// already knows about.
func (s *RoleStore) Permissions(ctx context.Context) ([]string, error) {
	var perms []string
	if err := s.client.Do(ctx, http.MethodGet, "/api/admin/permissions", nil, &perms); err != nil {
		if api.IsAuthFailure(err) {
			return nil, err
		}
		s.log.Warn("permissions endpoint unavailable, serving known set", "error", err)
		return DemoPermissions(), nil
	}
	return perms, nil
}

// Create posts a new role and adds it to the cache unless the name already
// exists locally.
func (s *RoleStore) Create(ctx context.Context, role domain.Role) error {
	role.Normalize()
	var created domain.Role
	if err := s.client.Do(ctx, http.MethodPost, "/api/admin/roles", role, &created); err != nil {
		return errors.Wrap(err, "create role")
	}
	created.Normalize()
	s.col.AddIfNotExists(created)
	return nil
}

// Update replaces a role server-side and refreshes the cached copy.
func (s *RoleStore) Update(ctx context.Context, role domain.Role) error {
	role.Normalize()
	path := fmt.Sprintf("/api/admin/roles/%d", role.ID)
	var updated domain.Role
	if err := s.client.Do(ctx, http.MethodPut, path, role, &updated); err != nil {
		return errors.Wrap(err, "update role")
	}
	return s.Refresh(ctx)
}

// Delete removes the named role server-side, then from the cache. Deleting
// the selected role moves the selection to the first remaining role.
func (s *RoleStore) Delete(ctx context.Context, name string) error {
	role, ok := s.find(name)
	if !ok {
		return errors.Wrapf(ErrNotFound, "role %q", name)
	}
	if role.IsSystemRole {
		return errors.Errorf("role %q is a system role and cannot be deleted", name)
	}
	path := fmt.Sprintf("/api/admin/roles/%d", role.ID)
	if err := s.client.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return errors.Wrap(err, "delete role")
	}
	return s.col.Remove(name)
}

func (s *RoleStore) find(name string) (domain.Role, bool) {
	for _, r := range s.col.Items() {
		if r.Name == name {
			return r, true
		}
	}
	return domain.Role{}, false
}
