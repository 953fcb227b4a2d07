package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/export"
)

func newDatasetsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Browse ingested datasets and their profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List data sources",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Datasets.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Datasets.Degraded() {
				degradedNotice()
			}
			datasets := a.Datasets.Datasets()
			if a.JSONOutput {
				return printJSON(datasets)
			}
			rows := make([][]string, 0, len(datasets))
			for _, d := range datasets {
				rows = append(rows, []string{d.ID, d.Name, d.Type, d.Status, d.UploadedBy})
			}
			printTable([]string{"ID", "NAME", "TYPE", "STATUS", "UPLOADED BY"}, rows)
			return nil
		},
	}

	var format, outPath string
	profile := &cobra.Command{
		Use:   "profile <dataset-id>",
		Short: "Show or export a dataset's profiling statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			p, err := a.Datasets.Profile(c.Context(), args[0])
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.Wrap(err, "create output file")
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			switch format {
			case "csv":
				if err := export.ProfileCSV(out, p); err != nil {
					return err
				}
			case "json":
				if err := export.ProfileJSON(out, p); err != nil {
					return err
				}
			default:
				return errors.Errorf("unknown format %q (want csv or json)", format)
			}
			if outPath != "" {
				fmt.Printf("Wrote %s profile to %s\n", args[0], outPath)
			}
			return nil
		},
	}
	profile.Flags().StringVar(&format, "format", "json", "output format: csv or json")
	profile.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")

	cmd.AddCommand(list, profile)
	return cmd
}
