package domain

import "time"

// AdminStats is the dashboard summary block from /api/admin/stats.
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	ActiveSessions int `json:"active_sessions"`
	TotalDatasets  int `json:"total_datasets"`
	TotalSchemas   int `json:"total_schemas"`
	JobsRunning    int `json:"jobs_running"`
	JobsCompleted  int `json:"jobs_completed"`
}

// AdminUser is a row from /api/admin/users.
type AdminUser struct {
	ID        int       `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	LastLogin time.Time `json:"last_login,omitempty"`
}

// ActivityEntry is an audit-log row from /api/admin/activity.
type ActivityEntry struct {
	ID        int       `json:"id,omitempty"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminSettings is the mutable platform configuration block.
type AdminSettings struct {
	AllowRegistration  bool   `json:"allow_registration"`
	SessionTimeoutMins int    `json:"session_timeout_minutes"`
	MaxUploadSizeMB    int    `json:"max_upload_size_mb"`
	DefaultRole        string `json:"default_role"`
}
