package stores

import (
	"time"

	"github.com/kginsights/datapuur/internal/domain"
)

// The demo fixtures below serve two purposes: stores substitute them when an
// endpoint is unreachable, so commands degrade to demo data instead of empty
// output, and the built-in demo server replays them. Callers can tell a
// degraded store via its Degraded flag and print a notice.

// DemoRoles is the fallback role set.
func DemoRoles() []domain.Role {
	roles := []domain.Role{
		{
			ID:           1,
			Name:         "admin",
			Description:  "Full platform access",
			Permissions:  []string{"datapuur:read", "datapuur:write", "datapuur:manage", "kginsights:read", "kginsights:write", "admin:read", "admin:manage"},
			IsSystemRole: true,
		},
		{
			ID:           2,
			Name:         "analyst",
			Description:  "Read and transform datasets",
			Permissions:  []string{"datapuur:read", "datapuur:write", "kginsights:read"},
			IsSystemRole: true,
		},
		{
			ID:          3,
			Name:        "viewer",
			Description: "Read-only dashboard access",
			Permissions: []string{"datapuur:read", "kginsights:read"},
		},
	}
	for i := range roles {
		roles[i].Normalize()
	}
	return roles
}

// DemoPermissions is the fallback grantable-permission list: the closed set
// the client recognizes.
func DemoPermissions() []string {
	return []string{
		string(domain.CapDatapuurRead),
		string(domain.CapDatapuurWrite),
		string(domain.CapDatapuurManage),
		string(domain.CapKGInsightsRead),
		string(domain.CapKGInsightsWrite),
		string(domain.CapAdminRead),
		string(domain.CapAdminManage),
	}
}

// DemoSchemas is the fallback schema list.
func DemoSchemas() []domain.GraphSchema {
	return []domain.GraphSchema{
		{
			ID:          "demo-customers",
			Name:        "Customer Graph (demo)",
			Description: "Sample schema shown while the backend is unreachable",
			Nodes: []domain.SchemaNode{
				{Label: "Customer", Properties: map[string]string{"id": "string", "name": "string", "segment": "string"}},
				{Label: "Order", Properties: map[string]string{"id": "string", "total": "float", "placed_at": "datetime"}},
			},
			Relationships: []domain.SchemaRelationship{
				{Type: "PLACED", StartNode: "Customer", EndNode: "Order"},
			},
			CSVFilePath: "demo/customers.csv",
		},
	}
}

// DemoDatasets is the fallback dataset list.
func DemoDatasets() []domain.Dataset {
	return []domain.Dataset{
		{ID: "demo-sales", Name: "sales_2024.csv (demo)", Type: "file", Status: "ingested", UploadedBy: "demo"},
		{ID: "demo-crm", Name: "crm_export.csv (demo)", Type: "file", Status: "ingested", UploadedBy: "demo"},
	}
}

// DemoStats is the fallback dashboard summary.
func DemoStats() domain.AdminStats {
	return domain.AdminStats{
		TotalUsers:     4,
		ActiveSessions: 1,
		TotalDatasets:  2,
		TotalSchemas:   1,
		JobsCompleted:  7,
	}
}

// DemoUsers is the fallback user list.
func DemoUsers() []domain.AdminUser {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return []domain.AdminUser{
		{ID: 1, Username: "admin", Role: "admin", IsActive: true, CreatedAt: now},
		{ID: 2, Username: "analyst", Role: "analyst", IsActive: true, CreatedAt: now},
	}
}

// DemoActivity is the fallback audit log.
func DemoActivity() []domain.ActivityEntry {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return []domain.ActivityEntry{
		{ID: 1, Username: "admin", Action: "login", Timestamp: ts},
		{ID: 2, Username: "analyst", Action: "dataset.upload", Details: "sales_2024.csv", Timestamp: ts.Add(5 * time.Minute)},
	}
}

// DemoSettings is the fallback settings block.
func DemoSettings() domain.AdminSettings {
	return domain.AdminSettings{
		AllowRegistration:  true,
		SessionTimeoutMins: 60,
		MaxUploadSizeMB:    100,
		DefaultRole:        "viewer",
	}
}
