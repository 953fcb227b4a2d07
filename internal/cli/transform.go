package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/domain"
	"github.com/kginsights/datapuur/internal/history"
)

func newTransformCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Manage and run transformation plans",
	}
	cmd.AddCommand(
		newTransformListCmd(app),
		newTransformShowCmd(app),
		newTransformDeleteCmd(app),
		newTransformRunCmd(app),
	)
	return cmd
}

func newTransformListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transformation plans",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Transforms.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Transforms.Degraded() {
				degradedNotice()
			}
			plans := a.Transforms.Plans()
			if a.JSONOutput {
				return printJSON(plans)
			}
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				rows = append(rows, []string{p.ID, p.Name, string(p.Status), fmt.Sprintf("%d steps", len(p.TransformationSteps))})
			}
			printTable([]string{"ID", "NAME", "STATUS", "STEPS"}, rows)
			return nil
		},
	}
}

func newTransformShowCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show one plan in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			plan, err := app().Transforms.Get(c.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(plan)
		},
	}
}

func newTransformDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Transforms.Refresh(c.Context()); err != nil {
				return err
			}
			if err := a.Transforms.Delete(c.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted plan %s\n", args[0])
			return nil
		},
	}
}

func newTransformRunCmd(app func() *App) *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "run <plan-id>",
		Short: "Execute a plan and watch the job",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			planID := args[0]

			job, err := a.Transforms.Execute(c.Context(), planID)
			if err != nil {
				return err
			}
			fmt.Printf("Started job %s\n", job.ID)

			hist, err := history.Open(a.HistoryPath())
			if err != nil {
				a.Log.Warn("job history unavailable", "error", err)
			} else {
				defer func() { _ = hist.Close() }()
				if err := hist.RecordStart(job.ID, "transform", planID, job.Status); err != nil {
					a.Log.Warn("failed to record job start", "error", err)
				}
			}

			if noWait {
				fmt.Printf("Check on it with: datapuur jobs watch %s\n", job.ID)
				return nil
			}

			final, err := watchJob(a, c, job.ID)
			if err != nil {
				return err
			}
			if hist != nil {
				if err := hist.RecordFinish(final); err != nil {
					a.Log.Warn("failed to record job finish", "error", err)
				}
			}
			return reportJob(final)
		},
	}
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "start the job and return immediately")
	return cmd
}

// reportJob prints the terminal snapshot, including the download hint when
// the run produced an output file.
func reportJob(job domain.Job) error {
	switch job.Status {
	case domain.JobCompleted:
		fmt.Printf("Job %s completed\n", job.ID)
		if job.Result != nil && job.Result.OutputFile != "" {
			fmt.Printf("Output file ready to download: %s\n", job.Result.OutputFile)
		}
	case domain.JobFailed:
		fmt.Printf("Job %s failed", job.ID)
		if job.Error != "" {
			fmt.Printf(": %s", job.Error)
		}
		fmt.Println()
	default:
		fmt.Printf("Job %s is %s\n", job.ID, job.Status)
	}
	return nil
}
