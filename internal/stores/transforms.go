package stores

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// TransformStore caches transformation plans and starts executions. Plan
// status is whatever the server last reported; the client never advances it.
type TransformStore struct {
	client *api.Client
	log    *slog.Logger
	col    Collection[domain.TransformationPlan]
}

// NewTransformStore builds an empty store over the given transport.
func NewTransformStore(client *api.Client, log *slog.Logger) *TransformStore {
	if log == nil {
		log = slog.Default()
	}
	return &TransformStore{client: client, log: log}
}

// Refresh re-fetches the plan list, degrading to demo data when the endpoint
// is unreachable.
func (s *TransformStore) Refresh(ctx context.Context) error {
	var plans []domain.TransformationPlan
	err := s.client.Do(ctx, http.MethodGet, "/api/datapuur-ai/transformations", nil, &plans)
	if err != nil {
		if api.IsAuthFailure(err) {
			return err
		}
		s.log.Warn("transformations endpoint unavailable, serving demo data", "error", err)
		s.col.ReplaceDegraded(DemoPlans())
		return nil
	}
	s.col.Replace(plans)
	return nil
}

// Plans returns the cached collection.
func (s *TransformStore) Plans() []domain.TransformationPlan { return s.col.Items() }

// Selected returns the selected plan.
func (s *TransformStore) Selected() (domain.TransformationPlan, bool) { return s.col.Selected() }

// Select changes the selection.
func (s *TransformStore) Select(id string) error { return s.col.Select(id) }

// Degraded reports whether the store holds fallback data.
func (s *TransformStore) Degraded() bool { return s.col.Degraded() }

// Get fetches one plan by id, bypassing the cache.
func (s *TransformStore) Get(ctx context.Context, id string) (*domain.TransformationPlan, error) {
	var plan domain.TransformationPlan
	if err := s.client.Do(ctx, http.MethodGet, "/api/datapuur-ai/transformations/"+id, nil, &plan); err != nil {
		return nil, errors.Wrap(err, "fetch plan")
	}
	return &plan, nil
}

// Delete removes a plan server-side, then from the cache.
func (s *TransformStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Do(ctx, http.MethodDelete, "/api/datapuur-ai/transformations/"+id, nil, nil); err != nil {
		return errors.Wrap(err, "delete plan")
	}
	return s.col.Remove(id)
}

// Execute starts a plan run and returns the job handle to poll.
func (s *TransformStore) Execute(ctx context.Context, planID string) (*domain.Job, error) {
	req := struct {
		PlanID string `json:"plan_id"`
	}{PlanID: planID}

	var job domain.Job
	if err := s.client.Do(ctx, http.MethodPost, "/api/datapuur-ai/execute", req, &job); err != nil {
		return nil, errors.Wrap(err, "start execution")
	}
	if job.ID == "" {
		return nil, errors.New("start execution: backend returned no job id")
	}
	return &job, nil
}

// DemoPlans is the fallback plan list.
func DemoPlans() []domain.TransformationPlan {
	created := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	return []domain.TransformationPlan{
		{
			ID:          "demo-cleanup",
			Name:        "Sales cleanup (demo)",
			Description: "Sample plan shown while the backend is unreachable",
			Status:      domain.PlanCompleted,
			TransformationSteps: []domain.TransformationStep{
				{Order: 1, Operation: "drop_nulls", Description: "Drop rows with null order ids"},
				{Order: 2, Operation: "normalize_dates", Description: "Normalize placed_at to UTC"},
			},
			ExpectedImprovements: []string{"0 null order ids", "uniform timestamps"},
			CreatedAt:            created,
			UpdatedAt:            created,
		},
	}
}
