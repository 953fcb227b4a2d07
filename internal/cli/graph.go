package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/stores"
)

func newGraphCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize graph schemas",
	}

	var layout string
	var nodeLimit int
	var hideLabels bool
	show := &cobra.Command{
		Use:   "show [schema-id]",
		Short: "Preview a schema's graph shape",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Graph.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Graph.Degraded() {
				degradedNotice()
			}
			if len(args) == 1 {
				if err := a.Graph.Select(args[0]); err != nil {
					return err
				}
			}

			prefs := a.Graph.Prefs()
			if layout != "" {
				prefs.Layout = layout
			}
			if nodeLimit > 0 {
				prefs.NodeLimit = nodeLimit
			}
			prefs.ShowLabels = !hideLabels
			a.Graph.SetPrefs(prefs)

			preview, err := a.Graph.Preview(c.Context())
			if err != nil {
				return err
			}
			if a.JSONOutput {
				return printJSON(preview)
			}

			fmt.Printf("Schema %s: %d nodes, %d relationships (layout: %s)\n",
				preview.SchemaID, preview.NodeCount, preview.EdgeCount, prefs.Layout)
			if prefs.ShowLabels {
				for _, n := range preview.Nodes {
					fmt.Printf("  (%s) %d properties\n", n.Label, len(n.Properties))
				}
			}
			return nil
		},
	}
	show.Flags().StringVar(&layout, "layout", "", "layout hint: force, circular, hierarchic")
	show.Flags().IntVar(&nodeLimit, "limit", 0, "max nodes to display")
	show.Flags().BoolVar(&hideLabels, "no-labels", false, "hide node labels")

	prefs := &cobra.Command{
		Use:   "prefs",
		Short: "Show current visualization preferences",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			p := a.Graph.Prefs()
			if a.JSONOutput {
				return printJSON(p)
			}
			fmt.Printf("layout=%s labels=%v limit=%d (defaults: %+v)\n",
				p.Layout, p.ShowLabels, p.NodeLimit, stores.DefaultGraphPrefs())
			return nil
		},
	}

	cmd.AddCommand(show, prefs)
	return cmd
}
