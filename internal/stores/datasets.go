package stores

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// DatasetStore caches /api/datapuur/sources and fetches per-dataset profiles.
type DatasetStore struct {
	client *api.Client
	log    *slog.Logger
	col    Collection[domain.Dataset]
}

// NewDatasetStore builds an empty store over the given transport.
func NewDatasetStore(client *api.Client, log *slog.Logger) *DatasetStore {
	if log == nil {
		log = slog.Default()
	}
	return &DatasetStore{client: client, log: log}
}

// Refresh re-fetches the dataset list, degrading to demo data when the
// endpoint is unreachable.
func (s *DatasetStore) Refresh(ctx context.Context) error {
	var datasets []domain.Dataset
	err := s.client.Do(ctx, http.MethodGet, "/api/datapuur/sources", nil, &datasets)
	if err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("sources endpoint unavailable, serving demo data", "error", err)
		s.col.ReplaceDegraded(DemoDatasets())
		return nil
	}
	s.col.Replace(datasets)
	return nil
}

// Datasets returns the cached collection.
func (s *DatasetStore) Datasets() []domain.Dataset { return s.col.Items() }

// Selected returns the selected dataset.
func (s *DatasetStore) Selected() (domain.Dataset, bool) { return s.col.Selected() }

// Select changes the selection.
func (s *DatasetStore) Select(id string) error { return s.col.Select(id) }

// Degraded reports whether the store holds fallback data.
func (s *DatasetStore) Degraded() bool { return s.col.Degraded() }

// Profile fetches the backend-computed statistics for a dataset. Profiles
// are not cached; the dashboard re-fetched them on every view.
func (s *DatasetStore) Profile(ctx context.Context, datasetID string) (*domain.Profile, error) {
	var profile domain.Profile
	path := "/api/datapuur/sources/" + datasetID + "/profile"
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "fetch profile")
	}
	return &profile, nil
}
