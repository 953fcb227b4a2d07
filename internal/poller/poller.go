// Package poller implements the fire-and-poll mechanic for long-running
// backend jobs: a fixed-interval GET-by-id until the status is terminal. No
// backoff, no attempt cap; teardown is the caller cancelling the context.
// Concurrent jobs poll independently.
package poller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
)

// DefaultInterval matches the dashboard's 2-second poll period.
const DefaultInterval = 2 * time.Second

// Update is one poll observation: a job snapshot or the error that poll hit.
type Update struct {
	Job domain.Job
	Err error
}

// Poller polls job status endpoints.
type Poller struct {
	client   *api.Client
	interval time.Duration
	log      *slog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the poll period, mainly for tests.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// New builds a poller over the given transport.
func New(client *api.Client, opts ...Option) *Poller {
	p := &Poller{client: client, interval: DefaultInterval, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start installs the poll loop for one job and returns its update channel.
// The channel closes when the job reaches a terminal status, the context is
// cancelled, or an auth failure ends the session. Transient request errors
// are reported on the channel and polling continues, the way the dashboard's
// interval kept firing through outages.
func (p *Poller) Start(ctx context.Context, jobID string) <-chan Update {
	updates := make(chan Update, 1)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.log.Debug("poll cancelled", "job", jobID)
				return
			case <-ticker.C:
			}

			var job domain.Job
			err := p.client.Do(ctx, http.MethodGet, "/api/datapuur-ai/jobs/"+jobID, nil, &job)
			if err != nil {
				if api.IsAuthFailure(err) || ctx.Err() != nil {
					updates <- Update{Err: err}
					return
				}
				updates <- Update{Err: err}
				continue
			}

			updates <- Update{Job: job}
			if job.Status.Terminal() {
				p.log.Debug("poll finished", "job", jobID, "status", job.Status)
				return
			}
		}
	}()

	return updates
}

// Wait polls until the job is terminal and returns the final snapshot.
// Transient errors along the way are logged and skipped; only auth failure
// or cancellation abort early.
func (p *Poller) Wait(ctx context.Context, jobID string) (domain.Job, error) {
	var last domain.Job
	for update := range p.Start(ctx, jobID) {
		if update.Err != nil {
			if api.IsAuthFailure(update.Err) {
				return last, update.Err
			}
			p.log.Warn("poll attempt failed", "job", jobID, "error", update.Err)
			continue
		}
		last = update.Job
	}
	if ctx.Err() != nil && !last.Status.Terminal() {
		return last, ctx.Err()
	}
	return last, nil
}
