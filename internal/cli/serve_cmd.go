package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todomcp/internal/mcp"
	"todomcp/internal/store"
	"todomcp/internal/web"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var withWeb bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools on stdio",
		Long: "Serve the MCP tools over JSON-RPC on stdin/stdout. With --web the HTTP\n" +
			"dashboard runs in the same process against the same store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.serve(cmd, withWeb)
		},
	}
	cmd.Flags().BoolVar(&withWeb, "web", false, "also start the web dashboard")
	return cmd
}

func newWebCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Serve only the HTTP API and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			st, err := app.Store(ctx)
			if err != nil {
				return err
			}
			srv := app.newWebServer(st)
			fmt.Fprintf(cmd.ErrOrStderr(), "Todo web UI running at http://localhost:%d\n", app.Config.Web.Port)
			return srv.Start(ctx)
		},
	}
}

func (a *App) serve(cmd *cobra.Command, withWeb bool) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	st, err := a.Store(ctx)
	if err != nil {
		return err
	}
	srv, err := mcp.NewServer(st, a.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webErr := make(chan error, 1)
	if withWeb {
		httpSrv := a.newWebServer(st)
		fmt.Fprintf(cmd.ErrOrStderr(), "Todo web UI running at http://localhost:%d\n", a.Config.Web.Port)
		go func() {
			err := httpSrv.Start(ctx)
			if err != nil {
				a.Logger.Error("Web server stopped", "error", err)
			}
			webErr <- err
		}()
	} else {
		close(webErr)
	}

	err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	// The dashboard goes down with the MCP session.
	cancel()
	return errors.Join(err, <-webErr)
}

func (a *App) newWebServer(st *store.Store) *web.Server {
	return web.New(st, a.Logger, web.Options{
		Port:        a.Config.Web.Port,
		CORSOrigins: a.Config.Web.CORSOrigins,
		Metrics:     a.Metrics(),
	})
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
