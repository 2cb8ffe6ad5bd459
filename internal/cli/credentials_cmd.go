package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"todomcp/internal/cli/formatter"

	"github.com/spf13/cobra"
)

func newCredentialsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage secrets kept in the OS keyring",
	}
	cmd.AddCommand(
		newSecretSetCmd(app, "set-dsn", "Store the Postgres connection string", func(v string) error {
			return app.Credentials.StoreDatabaseURL(v)
		}),
		newSecretDeleteCmd(app, "delete-dsn", "Remove the Postgres connection string", func() error {
			return app.Credentials.DeleteDatabaseURL()
		}),
		newSecretSetCmd(app, "set-s3-secret", "Store the S3 secret access key", func(v string) error {
			return app.Credentials.StoreS3Secret(v)
		}),
		newSecretDeleteCmd(app, "delete-s3-secret", "Remove the S3 secret access key", func() error {
			return app.Credentials.DeleteS3Secret()
		}),
		newCredentialsStatusCmd(app),
	)
	return cmd
}

// newSecretSetCmd takes the value as an argument, or reads one line from
// stdin so it stays out of shell history.
func newSecretSetCmd(app *App, use, short string, set func(string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [value]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Credentials == nil {
				return errors.New("credential store not configured")
			}
			value := ""
			if len(args) == 1 {
				value = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read value from stdin: %w", err)
				}
				value = strings.TrimSpace(line)
			}
			if err := set(value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved.")
			return nil
		},
	}
}

func newSecretDeleteCmd(app *App, use, short string, del func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Credentials == nil {
				return errors.New("credential store not configured")
			}
			if err := del(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
}

func newCredentialsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the keyring and list stored secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Credentials == nil {
				return errors.New("credential store not configured")
			}
			st := app.Credentials.Status()
			out := cmd.OutOrStdout()
			if app.jsonOutput() {
				return formatter.WriteJSON(out, st)
			}

			if !st.Available {
				fmt.Fprintf(out, "%s %s\n", formatter.StyleRed.Render("✗ keyring unavailable:"), st.Error)
				return nil
			}
			fmt.Fprintln(out, formatter.StyleGreen.Render("✓ keyring available"))
			if st.Warning != "" {
				fmt.Fprintln(out, formatter.StyleYellow.Render("! "+st.Warning))
			}
			fmt.Fprintf(out, "database_url          %s\n", present(st.HasDatabaseURL))
			fmt.Fprintf(out, "s3_secret_access_key  %s\n", present(st.HasS3Secret))
			return nil
		},
	}
}

func present(ok bool) string {
	if ok {
		return formatter.StyleGreen.Render("stored")
	}
	return formatter.Dim("not stored")
}
