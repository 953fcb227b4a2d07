package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/domain"
)

func newAdminCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Platform administration",
	}
	cmd.AddCommand(
		newAdminStatsCmd(app),
		newAdminUsersCmd(app),
		newAdminActivityCmd(app),
		newAdminSettingsCmd(app),
		newAdminRolesCmd(app),
	)
	return cmd
}

func newAdminStatsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dashboard summary",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Admin.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Admin.Degraded() {
				degradedNotice()
			}
			stats := a.Admin.Stats()
			if a.JSONOutput {
				return printJSON(stats)
			}
			fmt.Printf("users=%d sessions=%d datasets=%d schemas=%d jobs running=%d completed=%d\n",
				stats.TotalUsers, stats.ActiveSessions, stats.TotalDatasets,
				stats.TotalSchemas, stats.JobsRunning, stats.JobsCompleted)
			return nil
		},
	}
}

func newAdminUsersCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List platform users",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Admin.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Admin.Degraded() {
				degradedNotice()
			}
			users := a.Admin.Users()
			if a.JSONOutput {
				return printJSON(users)
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				active := "inactive"
				if u.IsActive {
					active = "active"
				}
				rows = append(rows, []string{u.Username, u.Role, active, u.Email})
			}
			printTable([]string{"USERNAME", "ROLE", "STATE", "EMAIL"}, rows)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Admin.Refresh(c.Context()); err != nil {
				return err
			}
			if err := a.Admin.DeleteUser(c.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted user %s\n", args[0])
			return nil
		},
	}
	cmd.AddCommand(del)
	return cmd
}

func newAdminActivityCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activity",
		Short: "Recent platform activity",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Admin.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Admin.Degraded() {
				degradedNotice()
			}
			activity := a.Admin.Activity()
			if a.JSONOutput {
				return printJSON(activity)
			}
			rows := make([][]string, 0, len(activity))
			for _, e := range activity {
				rows = append(rows, []string{e.Timestamp.Format(time.RFC3339), e.Username, e.Action, e.Details})
			}
			printTable([]string{"TIME", "USER", "ACTION", "DETAILS"}, rows)
			return nil
		},
	}
}

func newAdminSettingsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show platform settings",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Admin.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Admin.Degraded() {
				degradedNotice()
			}
			return printJSON(a.Admin.Settings())
		},
	}

	var allowReg bool
	var timeoutMins, maxUpload int
	var defaultRole string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update platform settings",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Admin.Refresh(c.Context()); err != nil {
				return err
			}
			settings := a.Admin.Settings()
			if c.Flags().Changed("allow-registration") {
				settings.AllowRegistration = allowReg
			}
			if timeoutMins > 0 {
				settings.SessionTimeoutMins = timeoutMins
			}
			if maxUpload > 0 {
				settings.MaxUploadSizeMB = maxUpload
			}
			if defaultRole != "" {
				settings.DefaultRole = defaultRole
			}
			if err := a.Admin.UpdateSettings(c.Context(), settings); err != nil {
				return err
			}
			fmt.Println("Settings updated.")
			return nil
		},
	}
	update.Flags().BoolVar(&allowReg, "allow-registration", true, "allow self-service registration")
	update.Flags().IntVar(&timeoutMins, "session-timeout", 0, "session timeout in minutes")
	update.Flags().IntVar(&maxUpload, "max-upload-mb", 0, "max upload size in MB")
	update.Flags().StringVar(&defaultRole, "default-role", "", "role for new accounts")
	cmd.AddCommand(update)
	return cmd
}

func newAdminRolesCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage access-control roles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List roles",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Roles.Refresh(c.Context()); err != nil {
				return err
			}
			if a.Roles.Degraded() {
				degradedNotice()
			}
			roles := a.Roles.Roles()
			if a.JSONOutput {
				return printJSON(roles)
			}
			selectedID := a.rolesSelectedName()
			rows := make([][]string, 0, len(roles))
			for _, r := range roles {
				marker := ""
				if r.Name == selectedID {
					marker = "*"
				}
				rows = append(rows, []string{marker, r.Name, r.Description, strings.Join(r.Permissions, ",")})
			}
			printTable([]string{"", "NAME", "DESCRIPTION", "PERMISSIONS"}, rows)
			return nil
		},
	}

	var description string
	var perms []string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			role := domain.Role{Name: args[0], Description: description, Permissions: perms}
			if err := a.Roles.Create(c.Context(), role); err != nil {
				return err
			}
			fmt.Printf("Created role %s\n", args[0])
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "role description")
	create.Flags().StringSliceVar(&perms, "permission", nil, "permission string, repeatable")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Roles.Refresh(c.Context()); err != nil {
				return err
			}
			if err := a.Roles.Delete(c.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted role %s\n", args[0])
			if selected, ok := a.Roles.Selected(); ok {
				fmt.Printf("Selection moved to %s\n", selected.Name)
			}
			return nil
		},
	}

	sel := &cobra.Command{
		Use:   "select <name>",
		Short: "Select the working role",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			if err := a.Roles.Refresh(c.Context()); err != nil {
				return err
			}
			if err := a.Roles.Select(args[0]); err != nil {
				return err
			}
			fmt.Printf("Selected role %s\n", args[0])
			return nil
		},
	}

	permissions := &cobra.Command{
		Use:   "permissions",
		Short: "List permission strings roles can be granted",
		RunE: func(c *cobra.Command, args []string) error {
			a := app()
			perms, err := a.Roles.Permissions(c.Context())
			if err != nil {
				return err
			}
			if a.JSONOutput {
				return printJSON(perms)
			}
			for _, p := range perms {
				fmt.Println(p)
			}
			return nil
		},
	}

	cmd.AddCommand(list, create, del, sel, permissions)
	return cmd
}

func (a *App) rolesSelectedName() string {
	if selected, ok := a.Roles.Selected(); ok {
		return selected.Name
	}
	return ""
}
