package cli

import (
	"fmt"
	"os"
	"strings"

	"todomcp/internal/cli/formatter"
	"todomcp/internal/editors"

	"github.com/spf13/cobra"
)

func newEditorsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editors",
		Short: "List MCP clients todo-mcp can be registered with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if app.jsonOutput() {
				type row struct {
					ID         string   `json:"id"`
					Name       string   `json:"name"`
					ConfigPath string   `json:"configPath"`
					Registered []string `json:"registered"`
				}
				rows := make([]row, 0, len(editors.EditorConfigs))
				for _, c := range editors.EditorConfigs {
					names, _ := c.Registered()
					rows = append(rows, row{ID: c.ID, Name: c.Name, ConfigPath: c.ResolvedPath(), Registered: names})
				}
				return formatter.WriteJSON(out, rows)
			}

			rows := make([][]string, 0, len(editors.EditorConfigs))
			for _, c := range editors.EditorConfigs {
				names, err := c.Registered()
				state := formatter.Dim("-")
				switch {
				case err != nil:
					state = formatter.StyleRed.Render("unreadable")
				case len(names) > 0:
					state = strings.Join(names, ", ")
				}
				rows = append(rows, []string{c.ID, formatter.Bold(c.Name), c.ConfigPath, state})
			}
			fmt.Fprintln(out, formatter.RenderTable([]string{"ID", "CLIENT", "CONFIG", "SERVERS"}, rows))
			return nil
		},
	}
	cmd.AddCommand(newEditorsRegisterCmd(app))
	return cmd
}

func newEditorsRegisterCmd(app *App) *cobra.Command {
	var (
		name    string
		command string
		write   bool
		withWeb bool
	)

	cmd := &cobra.Command{
		Use:   "register <client>",
		Short: "Print (or write) the config entry that launches this server",
		Long: "Print the JSON entry a client needs to launch todo-mcp over stdio.\n" +
			"With --write the entry is merged into the client's config file.\n" +
			"Clients: " + strings.Join(editors.IDs(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ok := editors.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown client %q (known: %s)", args[0], strings.Join(editors.IDs(), ", "))
			}
			if command == "" {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("locate executable: %w", err)
				}
				command = exe
			}
			srv := editors.Server{Name: name, Command: command, Args: app.launchArgs(withWeb)}

			if !write {
				snippet, err := client.Snippet(srv)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(snippet))
				return nil
			}
			path, err := client.Register(srv)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", editors.DefaultServerName, "server name in the client config")
	cmd.Flags().StringVar(&command, "command", "", "executable to launch (default: this binary)")
	cmd.Flags().BoolVar(&write, "write", false, "merge the entry into the client's config file")
	cmd.Flags().BoolVar(&withWeb, "web", false, "also start the dashboard when the client launches the server")
	return cmd
}

// launchArgs reproduces the storage flags of this invocation so the client
// launches the server against the same data.
func (a *App) launchArgs(withWeb bool) []string {
	args := []string{"serve"}
	if withWeb {
		args = append(args, "--web")
	}
	if a.flags.configPath != "" {
		args = append(args, "--config", a.flags.configPath)
	}
	if a.flags.driver != "" {
		args = append(args, "--driver", a.flags.driver)
	}
	if a.flags.dataPath != "" {
		args = append(args, "--data", a.flags.dataPath)
	}
	return args
}
