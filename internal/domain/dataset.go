package domain

import "time"

// Dataset is a row from /api/datapuur/sources. Read-only on the client.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Status      string    `json:"status,omitempty"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Profile is the backend-computed statistical profile of a dataset. The
// client formats these numbers; it never recomputes them.
type Profile struct {
	DatasetID   string          `json:"dataset_id"`
	RowCount    int64           `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []ColumnProfile `json:"columns"`
	GeneratedAt time.Time       `json:"generated_at,omitempty"`
}

// ColumnProfile holds per-column statistics. Numeric aggregates are pointers
// because they are absent for non-numeric columns.
type ColumnProfile struct {
	Name        string       `json:"name"`
	DataType    string       `json:"data_type"`
	Count       int64        `json:"count"`
	NullCount   int64        `json:"null_count"`
	UniqueCount int64        `json:"unique_count"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Mean        *float64     `json:"mean,omitempty"`
	TopValues   []ValueCount `json:"top_values,omitempty"`
}

// ValueCount is a frequent value and how often it occurs.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
