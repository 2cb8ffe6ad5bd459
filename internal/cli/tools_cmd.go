package cli

import (
	"fmt"

	"todomcp/internal/cli/formatter"
	"todomcp/internal/mcp"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

const catalogueWrap = 100

func newToolsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Describe the MCP tools this server exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools := mcp.Tools()
			out := cmd.OutOrStdout()

			if app.flags.json {
				return formatter.WriteJSON(out, tools)
			}
			doc := mcp.CatalogueMarkdown(tools)
			if raw || !app.isTerminal() {
				_, err := fmt.Fprint(out, doc)
				return err
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(catalogueWrap),
			)
			if err != nil {
				return fmt.Errorf("create markdown renderer: %w", err)
			}
			rendered, err := renderer.Render(doc)
			if err != nil {
				return fmt.Errorf("render tool catalogue: %w", err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "markdown", false, "print the Markdown source instead of rendering it")
	return cmd
}
