package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/domain"
)

const draftFile = "schema_draft.json"

func newSchemaCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Generate, edit and manage graph schemas",
	}
	cmd.AddCommand(
		newSchemaListCmd(app),
		newSchemaShowCmd(app),
		newSchemaSelectCmd(app),
		newSchemaDeleteCmd(app),
		newSchemaChatCmd(app),
		newSchemaSaveCmd(app),
	)
	return cmd
}

func newSchemaListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved schemas",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Schemas.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Schemas.Degraded() {
				degradedNotice()
			}
			schemas := a.Schemas.Schemas()
			if a.JSONOutput {
				return printJSON(schemas)
			}
			selectedID := ""
			if selected, ok := a.Schemas.Selected(); ok {
				selectedID = selected.ID
			}
			rows := make([][]string, 0, len(schemas))
			for _, s := range schemas {
				marker := ""
				if s.ID == selectedID {
					marker = "*"
				}
				rows = append(rows, []string{marker, s.ID, s.Name, fmt.Sprintf("%d nodes", len(s.Nodes)), fmt.Sprintf("%d rels", len(s.Relationships))})
			}
			printTable([]string{"", "ID", "NAME", "NODES", "RELATIONSHIPS"}, rows)
			return nil
		},
	}
}

func newSchemaShowCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [schema-id]",
		Short: "Show one schema (default: the selected one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Schemas.Refresh(c.Context()); err != nil {
				return err
			}
			if len(args) == 1 {
				if err := a.Schemas.Select(args[0]); err != nil {
					return err
				}
			}
			schema, ok := a.Schemas.Selected()
			if !ok {
				return errors.New("no schema selected")
			}
			return printJSON(schema)
		},
	}
}

func newSchemaSelectCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select <schema-id>",
		Short: "Select the working schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Schemas.Refresh(c.Context()); err != nil {
				return err
			}
			if err := a.Schemas.Select(args[0]); err != nil {
				return err
			}
			fmt.Printf("Selected schema %s\n", args[0])
			return nil
		},
	}
}

func newSchemaDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <schema-id>",
		Short: "Delete a saved schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Schemas.Refresh(c.Context()); err != nil {
				return err
			}
			if err := a.Schemas.Delete(c.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted schema %s\n", args[0])
			if selected, ok := a.Schemas.Selected(); ok {
				fmt.Printf("Selection moved to %s\n", selected.ID)
			}
			return nil
		},
	}
}

func newSchemaChatCmd(app func() *App) *cobra.Command {
	var sourceID string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant for a schema draft",
		Long: `Chat sends your message to the schema assistant. When the reply contains a
schema draft it is written to the draft file in the config directory, ready
for "datapuur schema save".`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			messages := []domain.ChatMessage{{Role: "user", Content: args[0]}}
			resp, err := a.Schemas.Chat(c.Context(), messages, sourceID)
			if err != nil {
				return err
			}
			fmt.Println(resp.Message)
			if resp.Schema == nil {
				return nil
			}
			path := filepath.Join(a.Config.ConfigDir, draftFile)
			data, err := json.MarshalIndent(resp.Schema, "", "  ")
			if err != nil {
				return errors.Wrap(err, "encode draft")
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return errors.Wrap(err, "write draft")
			}
			fmt.Printf("Draft written to %s (%d nodes, %d relationships)\n",
				path, len(resp.Schema.Nodes), len(resp.Schema.Relationships))
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceID, "source", "", "dataset id to ground the draft on")
	return cmd
}

func newSchemaSaveCmd(app func() *App) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Name the current draft and save it",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			path := filepath.Join(a.Config.ConfigDir, draftFile)
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return errors.New("no schema draft; run \"datapuur schema chat\" first")
				}
				return errors.Wrap(err, "read draft")
			}
			var draft domain.GraphSchema
			if err := json.Unmarshal(data, &draft); err != nil {
				return errors.Wrap(err, "decode draft")
			}
			if name != "" {
				draft.Name = name
			}
			if description != "" {
				draft.Description = description
			}

			saved, err := a.Schemas.Save(c.Context(), &draft)
			if err != nil {
				return err
			}
			_ = os.Remove(path)
			fmt.Printf("Saved schema %q as %s\n", saved.Name, saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "schema name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "schema description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
