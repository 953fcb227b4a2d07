package domain

import "time"

// Role is an access-control role as served by /api/admin/roles. The backend
// exposes the permission list under two names for compatibility with older
// deployments; Normalize keeps them identical so either one can be read.
type Role struct {
	ID              int       `json:"id,omitempty"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Permissions     []string  `json:"permissions"`
	PermissionsList []string  `json:"permissions_list,omitempty"`
	IsSystemRole    bool      `json:"is_system_role,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// Normalize reconciles the two permission fields. Whichever field is populated
// wins (Permissions takes precedence when both are), and both end up holding
// the same slice. Call it after every decode and before every encode.
func (r *Role) Normalize() {
	switch {
	case len(r.Permissions) > 0:
		r.PermissionsList = r.Permissions
	case len(r.PermissionsList) > 0:
		r.Permissions = r.PermissionsList
	default:
		r.Permissions = []string{}
		r.PermissionsList = r.Permissions
	}
}

// HasPermission reports whether the role grants the given permission string.
func (r *Role) HasPermission(perm string) bool {
	for _, p := range r.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
