package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app func() *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()

			// Peek only; a failed login attempt must not burn the one-shot
			// flag or the saved return path.
			expired, err := a.Store.AuthExpired()
			if err != nil {
				a.Log.Warn("could not read session state", "error", err)
			}
			if expired {
				fmt.Println("Your previous session expired; please log in again.")
			}

			session, returnPath, err := a.Auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%s)\n", session.User.Username, session.User.Role)
			if returnPath != "" {
				fmt.Printf("To pick up where you left off: datapuur %s\n", returnPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.Auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newRegisterCmd(app func() *App) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			session, err := a.Auth.Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Account created; logged in as %s (%s)\n", session.User.Username, session.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newPasswordCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password recovery and reset",
	}

	var email string
	forgot := &cobra.Command{
		Use:   "forgot",
		Short: "Request a password reset email",
		RunE: func(c *cobra.Command, args []string) error {
			if err := app().Auth.ForgotPassword(c.Context(), email); err != nil {
				return err
			}
			fmt.Println("If the address exists, a reset email is on its way.")
			return nil
		},
	}
	forgot.Flags().StringVarP(&email, "email", "e", "", "account email")
	_ = forgot.MarkFlagRequired("email")

	var resetToken, newPassword string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Complete an emailed password reset",
		RunE: func(c *cobra.Command, args []string) error {
			if err := app().Auth.ResetPassword(c.Context(), resetToken, newPassword); err != nil {
				return err
			}
			fmt.Println("Password updated.")
			return nil
		},
	}
	reset.Flags().StringVar(&resetToken, "token", "", "reset token from the email")
	reset.Flags().StringVar(&newPassword, "new-password", "", "new password")
	_ = reset.MarkFlagRequired("token")
	_ = reset.MarkFlagRequired("new-password")

	var username, oldPassword, directNew string
	change := &cobra.Command{
		Use:   "change",
		Short: "Change a password with the old one in hand",
		RunE: func(c *cobra.Command, args []string) error {
			if err := app().Auth.ResetPasswordDirect(c.Context(), username, oldPassword, directNew); err != nil {
				return err
			}
			fmt.Println("Password updated.")
			return nil
		},
	}
	change.Flags().StringVarP(&username, "username", "u", "", "account username")
	change.Flags().StringVar(&oldPassword, "old-password", "", "current password")
	change.Flags().StringVar(&directNew, "new-password", "", "new password")
	_ = change.MarkFlagRequired("username")
	_ = change.MarkFlagRequired("old-password")
	_ = change.MarkFlagRequired("new-password")

	cmd.AddCommand(forgot, reset, change)
	return cmd
}

func newWhoamiCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			session, err := a.Auth.Session()
			if err != nil {
				return err
			}
			if session == nil {
				loggedOut, _ := a.Store.ConsumeLoggingOut()
				if loggedOut {
					fmt.Println("Not logged in (you logged out).")
				} else {
					fmt.Println("Not logged in.")
				}
				return nil
			}
			if a.JSONOutput {
				return printJSON(session.User)
			}
			fmt.Printf("%s (%s)\n", session.User.Username, session.User.Role)
			for _, cap := range session.Capabilities.Strings() {
				fmt.Printf("  %s\n", cap)
			}
			return nil
		},
	}
}
