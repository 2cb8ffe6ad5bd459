// Package cli wires configuration, storage and the two front-ends behind a
// cobra command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"todomcp/internal/config"
	"todomcp/internal/credentials"
	"todomcp/internal/domain"
	"todomcp/internal/logging"
	"todomcp/internal/storage"
	"todomcp/internal/store"
	"todomcp/internal/web"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// CredentialStore is the subset of the keyring manager the commands use.
type CredentialStore interface {
	config.SecretSource
	StoreDatabaseURL(dsn string) error
	DeleteDatabaseURL() error
	StoreS3Secret(secret string) error
	DeleteS3Secret() error
	Status() credentials.Status
}

// App carries the injectable dependencies of the command tree. Zero fields
// are filled from configuration when a command first needs them.
type App struct {
	// Config, when set, is used as-is instead of being loaded.
	Config *config.Config
	// Backend, when set, replaces the one named by the configuration.
	Backend      storage.Backend
	Logger       *logging.AppLogger
	Credentials  CredentialStore
	StoreOptions []store.Option
	// Now overrides the clock used by the store and the CLI output.
	Now func() time.Time
	// IsTerminal reports whether stdout is a terminal.
	IsTerminal func() bool

	flags   globalFlags
	metrics *web.Metrics
	store   *store.Store
	opened  storage.Backend
}

type globalFlags struct {
	configPath string
	dataPath   string
	driver     string
	ephemeral  bool
	json       bool
	web        bool
}

// NewApp returns an App wired to the OS keyring and the real terminal.
func NewApp() *App {
	return &App{
		Credentials: credentials.NewManager(),
		IsTerminal: func() bool {
			fd := os.Stdout.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	app := NewApp()
	defer app.Close()
	return NewRootCmd(app).ExecuteContext(ctx)
}

// NewRootCmd builds the "todo-mcp" command. Without a subcommand it serves
// MCP on stdio.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo-mcp",
		Short:         "Multi-user task tracker served over MCP and HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.serve(cmd, app.flags.web)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/todo-mcp/config.yaml)")
	pf.StringVar(&app.flags.dataPath, "data", "", "data file for the file driver")
	pf.StringVar(&app.flags.driver, "driver", "", "storage driver: file, memory, sqlite, postgres, s3")
	pf.BoolVar(&app.flags.ephemeral, "ephemeral", false, "keep data in memory only")
	pf.BoolVar(&app.flags.json, "json", false, "print JSON instead of styled output")
	root.Flags().BoolVar(&app.flags.web, "web", false, "also start the web dashboard")

	root.AddCommand(
		newServeCmd(app),
		newWebCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newUsersCmd(app),
		newProjectsCmd(app),
		newTodosCmd(app),
		newSummaryCmd(app),
		newToolsCmd(app),
		newEditorsCmd(app),
		newDoctorCmd(app),
		newCredentialsCmd(app),
	)
	return root
}

// setup resolves configuration and the logger. Storage is opened lazily.
func (a *App) setup() error {
	if a.Config == nil {
		cfg, err := config.Load(a.flags.configPath)
		if err != nil {
			return err
		}
		a.Config = cfg
	}
	if err := a.applyFlags(); err != nil {
		return err
	}
	if a.Logger == nil {
		a.Logger = logging.NewAppLoggerWithOptions(logging.Options{Debug: a.Config.Log.Debug})
		logging.SetDefault(a.Logger)
	}
	a.Logger.Debug("Configuration resolved", "driver", a.Config.Storage.Driver)
	return nil
}

// applyFlags overlays the global flags, which rank above every other source.
func (a *App) applyFlags() error {
	s := &a.Config.Storage
	if a.flags.driver != "" {
		s.Driver = a.flags.driver
	}
	if a.flags.dataPath != "" {
		s.DataPath = a.flags.dataPath
	}
	if a.flags.ephemeral {
		s.Driver = storage.DriverMemory
	}
	return a.Config.Validate()
}

// Metrics returns the shared collector set, creating it on first use.
func (a *App) Metrics() *web.Metrics {
	if a.metrics == nil {
		a.metrics = web.NewMetrics()
	}
	return a.metrics
}

// Store opens the backend and builds the store on first use.
func (a *App) Store(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	backend := a.Backend
	if backend == nil {
		var secrets config.SecretSource
		if a.Credentials != nil {
			secrets = a.Credentials
		}
		b, err := storage.Open(ctx, a.Config.StorageOptions(secrets))
		if err != nil {
			return nil, err
		}
		a.opened = b
		backend = b
	}
	a.Logger.Debug("Storage ready", "backend", backend.Describe())

	opts := []store.Option{store.WithObserver(a.Metrics().ObserveStore)}
	if a.Now != nil {
		opts = append(opts, store.WithClock(a.Now))
	}
	opts = append(opts, a.StoreOptions...)
	a.store = store.New(backend, a.Logger, opts...)
	return a.store, nil
}

// Close releases the backend opened by Store. Injected backends are left
// to their owner.
func (a *App) Close() error {
	if a.opened == nil {
		return nil
	}
	err := a.opened.Close()
	a.opened = nil
	a.store = nil
	if err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

func (a *App) today() string {
	if a.Now != nil {
		return domain.Today(a.Now())
	}
	return domain.Today(time.Now())
}

// jsonOutput is true with --json or when stdout is not a terminal.
func (a *App) jsonOutput() bool {
	if a.flags.json {
		return true
	}
	return !a.isTerminal()
}

func (a *App) isTerminal() bool {
	return a.IsTerminal != nil && a.IsTerminal()
}
