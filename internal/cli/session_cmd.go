package cli

import (
	"errors"
	"fmt"

	"todomcp/internal/cli/formatter"
	"todomcp/internal/store"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id>",
		Short: "Set the session user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			user, err := st.Login(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("user not found: %q", args[0])
			}
			if err != nil {
				return err
			}
			if app.jsonOutput() {
				return formatter.WriteJSON(cmd.OutOrStdout(), map[string]any{"success": true, "user": user})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", formatter.FormatUser(user))
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Logout(cmd.Context()); err != nil {
				return err
			}
			if app.jsonOutput() {
				return formatter.WriteJSON(cmd.OutOrStdout(), map[string]any{"success": true, "message": "Logged out"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session user and their permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := app.Store(ctx)
			if err != nil {
				return err
			}
			user, err := st.CurrentUser(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if app.jsonOutput() {
				if user == nil {
					return formatter.WriteJSON(out, map[string]any{"error": "Not logged in"})
				}
				return formatter.WriteJSON(out, map[string]any{"user": user, "permissions": st.Permissions(ctx)})
			}
			fmt.Fprintln(out, formatter.FormatUser(user))
			return nil
		},
	}
}
