package stores

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kginsights/datapuur/internal/domain"
)

func validDraft() *domain.GraphSchema {
	return &domain.GraphSchema{
		Name: "Customer Graph",
		Nodes: []domain.SchemaNode{
			{Label: "Customer", Properties: map[string]string{"id": "string"}},
			{Label: "Order"},
		},
		Relationships: []domain.SchemaRelationship{
			{Type: "PLACED", StartNode: "Customer", EndNode: "Order"},
		},
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.GraphSchema)
		wantErr string
	}{
		{name: "valid draft", mutate: func(s *domain.GraphSchema) {}},
		{
			name:    "missing name",
			mutate:  func(s *domain.GraphSchema) { s.Name = "" },
			wantErr: "name",
		},
		{
			name:    "no nodes",
			mutate:  func(s *domain.GraphSchema) { s.Nodes = nil },
			wantErr: "nodes",
		},
		{
			name: "relationship without endpoints",
			mutate: func(s *domain.GraphSchema) {
				s.Relationships = []domain.SchemaRelationship{{Type: "PLACED"}}
			},
			wantErr: "start_node",
		},
		{
			name: "node without label",
			mutate: func(s *domain.GraphSchema) {
				s.Nodes = []domain.SchemaNode{{Properties: map[string]string{"x": "string"}}}
			},
			wantErr: "label",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(draft)
			err := ValidateDraft(draft)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchemaSaveRejectsInvalidDraftBeforeNetwork(t *testing.T) {
	var hit bool
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hit = true })
	store := NewSchemaStore(newStoreClient(t, mux), nil)

	draft := validDraft()
	draft.Nodes = nil
	_, err := store.Save(context.Background(), draft)
	require.Error(t, err)
	assert.False(t, hit, "invalid draft must be rejected client-side")
}

func TestSchemaSaveRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graphschema/schemas", func(w http.ResponseWriter, r *http.Request) {
		var schema domain.GraphSchema
		require.NoError(t, json.NewDecoder(r.Body).Decode(&schema))
		schema.ID = uuid.NewString()
		_ = json.NewEncoder(w).Encode(schema)
	})
	store := NewSchemaStore(newStoreClient(t, mux), nil)

	saved, err := store.Save(context.Background(), validDraft())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Customer Graph", saved.Name)

	// The saved copy lands in the cache and, being first, is selected.
	schemas := store.Schemas()
	require.Len(t, schemas, 1)
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, saved.ID, selected.ID)
}

func TestSchemaChatReturnsDraft(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graphschema/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []domain.ChatMessage `json:"messages"`
			SourceID string               `json:"source_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "ds-1", req.SourceID)

		_ = json.NewEncoder(w).Encode(domain.ChatResponse{
			Message: "Here is a draft",
			Schema:  validDraft(),
		})
	})
	store := NewSchemaStore(newStoreClient(t, mux), nil)

	resp, err := store.Chat(context.Background(), []domain.ChatMessage{
		{Role: "user", Content: "model my customers"},
	}, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "Here is a draft", resp.Message)
	require.NotNil(t, resp.Schema)
	assert.Len(t, resp.Schema.Nodes, 2)
}

func TestSchemaRefreshDegradesToDemoData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graphschema/schemas", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	store := NewSchemaStore(newStoreClient(t, mux), nil)

	require.NoError(t, store.Refresh(context.Background()))
	assert.True(t, store.Degraded())
	require.Len(t, store.Schemas(), 1)
	assert.Equal(t, "demo-customers", store.Schemas()[0].ID)
}

func TestSchemaDeleteSelected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graphschema/schemas", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "s1", "name": "one", "nodes": [], "relationships": []},
			{"id": "s2", "name": "two", "nodes": [], "relationships": []}]`))
	})
	mux.HandleFunc("/api/graphschema/schemas/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	store := NewSchemaStore(newStoreClient(t, mux), nil)
	require.NoError(t, store.Refresh(context.Background()))

	require.NoError(t, store.Delete(context.Background(), "s1"))
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "s2", selected.ID)
}
