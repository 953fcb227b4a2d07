package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/domain"
	"github.com/kginsights/datapuur/internal/history"
)

func newJobsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect asynchronous jobs",
	}

	status := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Fetch a job's current status once",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			var job domain.Job
			if err := a.Client.Do(c.Context(), http.MethodGet, "/api/datapuur-ai/jobs/"+args[0], nil, &job); err != nil {
				return err
			}
			if a.JSONOutput {
				return printJSON(job)
			}
			return reportJob(job)
		},
	}

	watch := &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			final, err := watchJob(a, c, args[0])
			if err != nil {
				return err
			}
			return reportJob(final)
		},
	}

	var limit int
	hist := &cobra.Command{
		Use:   "history",
		Short: "List jobs started from this machine",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			store, err := history.Open(a.HistoryPath())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.List(limit)
			if err != nil {
				return err
			}
			if a.JSONOutput {
				return printJSON(entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				finished := ""
				if e.FinishedAt != nil {
					finished = e.FinishedAt.Format(time.RFC3339)
				}
				rows = append(rows, []string{e.JobID, e.Kind, string(e.Status), e.OutputFile, e.StartedAt.Format(time.RFC3339), finished})
			}
			printTable([]string{"JOB", "KIND", "STATUS", "OUTPUT", "STARTED", "FINISHED"}, rows)
			return nil
		},
	}
	hist.Flags().IntVarP(&limit, "limit", "n", 20, "max entries to show")

	cmd.AddCommand(status, watch, hist)
	return cmd
}

// watchJob runs the fixed-interval poll for one job, echoing progress until
// the status is terminal. Command teardown (ctx cancel) stops the poll.
func watchJob(a *App, c *cobra.Command, jobID string) (domain.Job, error) {
	var last domain.Job
	for update := range a.Poller.Start(c.Context(), jobID) {
		if update.Err != nil {
			if api.IsAuthFailure(update.Err) {
				return last, update.Err
			}
			a.Log.Warn("poll attempt failed", "job", jobID, "error", update.Err)
			continue
		}
		last = update.Job
		if !last.Status.Terminal() {
			fmt.Printf("Job %s: %s (%d%%)\n", jobID, last.Status, last.Progress)
		}
	}
	if err := c.Context().Err(); err != nil && !last.Status.Terminal() {
		return last, err
	}
	return last, nil
}
