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

// GraphPrefs are the client-side visualization settings layered over the
// schema selection. They never leave the client.
type GraphPrefs struct {
	Layout     string
	ShowLabels bool
	NodeLimit  int
}

// DefaultGraphPrefs matches the dashboard's initial view.
func DefaultGraphPrefs() GraphPrefs {
	return GraphPrefs{Layout: "force", ShowLabels: true, NodeLimit: 100}
}

// GraphPreview is a size-bounded projection of a schema's graph for display.
type GraphPreview struct {
	SchemaID  string              `json:"schema_id"`
	NodeCount int                 `json:"node_count"`
	EdgeCount int                 `json:"edge_count"`
	Nodes     []domain.SchemaNode `json:"nodes,omitempty"`
}

// GraphStore tracks which schema is being visualized plus the view prefs.
type GraphStore struct {
	client *api.Client
	log    *slog.Logger
	col    Collection[domain.GraphSchema]

	mu    sync.Mutex
	prefs GraphPrefs
}

// NewGraphStore builds a store with default prefs.
func NewGraphStore(client *api.Client, log *slog.Logger) *GraphStore {
	if log == nil {
		log = slog.Default()
	}
	return &GraphStore{client: client, log: log, prefs: DefaultGraphPrefs()}
}

// Refresh re-fetches the visualizable schema list, degrading to demo data
// when the endpoint is unreachable.
func (s *GraphStore) Refresh(ctx context.Context) error {
	var schemas []domain.GraphSchema
	err := s.client.Do(ctx, http.MethodGet, "/api/graphschema/schemas", nil, &schemas)
	if err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("graph endpoint unavailable, serving demo data", "error", err)
		s.col.ReplaceDegraded(DemoSchemas())
		return nil
	}
	s.col.Replace(schemas)
	return nil
}

// Schemas returns the cached collection.
func (s *GraphStore) Schemas() []domain.GraphSchema { return s.col.Items() }

// Selected returns the schema being visualized.
func (s *GraphStore) Selected() (domain.GraphSchema, bool) { return s.col.Selected() }

// Select changes which schema is visualized.
func (s *GraphStore) Select(id string) error { return s.col.Select(id) }

// Degraded reports whether the store holds fallback data.
func (s *GraphStore) Degraded() bool { return s.col.Degraded() }

// Prefs returns the current visualization settings.
func (s *GraphStore) Prefs() GraphPrefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetPrefs replaces the visualization settings.
func (s *GraphStore) SetPrefs(p GraphPrefs) {
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
}

// Preview fetches the display projection for the selected schema, bounded by
// the node limit pref.
func (s *GraphStore) Preview(ctx context.Context) (*GraphPreview, error) {
	selected, ok := s.col.Selected()
	if !ok {
		return nil, errors.New("no schema selected")
	}
	prefs := s.Prefs()

	var preview GraphPreview
	path := "/api/graphschema/visualize/" + selected.ID
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &preview); err != nil {
		if api.IsAuthFailure(err) {
			return nil, err
		}
		// Degrade to a preview built from the cached schema shape.
		s.log.Warn("visualization endpoint unavailable, previewing cached schema", "error", err)
		preview = GraphPreview{
			SchemaID:  selected.ID,
			NodeCount: len(selected.Nodes),
			EdgeCount: len(selected.Relationships),
			Nodes:     selected.Nodes,
		}
	}
	if prefs.NodeLimit > 0 && len(preview.Nodes) > prefs.NodeLimit {
		preview.Nodes = preview.Nodes[:prefs.NodeLimit]
	}
	return &preview, nil
}
