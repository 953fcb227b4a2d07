package stores

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// SchemaStore caches the saved graph schema drafts and runs the chat exchange
// that generates new ones.
type SchemaStore struct {
	client *api.Client
	log    *slog.Logger
	col    Collection[domain.GraphSchema]
}

// NewSchemaStore builds an empty store over the given transport.
func NewSchemaStore(client *api.Client, log *slog.Logger) *SchemaStore {
	if log == nil {
		log = slog.Default()
	}
	return &SchemaStore{client: client, log: log}
}

// Refresh re-fetches the schema list. Auth failures propagate; other
// failures degrade to the demo schema.
func (s *SchemaStore) Refresh(ctx context.Context) error {
	var schemas []domain.GraphSchema
	err := s.client.Do(ctx, http.MethodGet, "/api/graphschema/schemas", nil, &schemas)
	if err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("schema endpoint unavailable, serving demo data", "error", err)
		s.col.ReplaceDegraded(DemoSchemas())
		return nil
	}
	s.col.Replace(schemas)
	return nil
}

// Schemas returns the cached collection.
func (s *SchemaStore) Schemas() []domain.GraphSchema { return s.col.Items() }

// Selected returns the selected schema.
func (s *SchemaStore) Selected() (domain.GraphSchema, bool) { return s.col.Selected() }

// Select changes the selection.
func (s *SchemaStore) Select(id string) error { return s.col.Select(id) }

// Degraded reports whether the store holds fallback data.
func (s *SchemaStore) Degraded() bool { return s.col.Degraded() }

// Chat sends the conversation so far to the generator and returns its reply,
// which may carry a schema draft.
func (s *SchemaStore) Chat(ctx context.Context, messages []domain.ChatMessage, sourceID string) (*domain.ChatResponse, error) {
	req := struct {
		Messages []domain.ChatMessage `json:"messages"`
		SourceID string               `json:"source_id,omitempty"`
	}{Messages: messages, SourceID: sourceID}

	var resp domain.ChatResponse
	if err := s.client.Do(ctx, http.MethodPost, "/api/graphschema/chat", req, &resp); err != nil {
		return nil, errors.Wrap(err, "schema chat")
	}
	return &resp, nil
}

// Save validates the draft, persists it, and adds the saved copy to the
// cache. Validation failures are caught before any network call.
func (s *SchemaStore) Save(ctx context.Context, schema *domain.GraphSchema) (*domain.GraphSchema, error) {
	if err := ValidateDraft(schema); err != nil {
		return nil, err
	}
	var saved domain.GraphSchema
	if err := s.client.Do(ctx, http.MethodPost, "/api/graphschema/schemas", schema, &saved); err != nil {
		return nil, errors.Wrap(err, "save schema")
	}
	s.col.AddIfNotExists(saved)
	return &saved, nil
}

// Delete removes a schema server-side, then from the cache with the shared
// selection semantics.
func (s *SchemaStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Do(ctx, http.MethodDelete, "/api/graphschema/schemas/"+id, nil, nil); err != nil {
		return errors.Wrap(err, "delete schema")
	}
	return s.col.Remove(id)
}
