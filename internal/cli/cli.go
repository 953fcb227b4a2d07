// Package cli wires the command tree. All services are constructed here and
// handed down explicitly; no package-level state beyond the cobra tree.
package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kginsights/datapuur/internal/api"
	"github.com/kginsights/datapuur/internal/auth"
	"github.com/kginsights/datapuur/internal/config"
	"github.com/kginsights/datapuur/internal/poller"
	"github.com/kginsights/datapuur/internal/stores"
)

// App carries the wired services every command runs against.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Store   *auth.Store
	Failure *auth.FailureHandler
	Client  *api.Client
	Auth    *auth.Manager

	Roles      *stores.RoleStore
	Schemas    *stores.SchemaStore
	Graph      *stores.GraphStore
	Admin      *stores.AdminStore
	Datasets   *stores.DatasetStore
	Transforms *stores.TransformStore
	Poller     *poller.Poller

	JSONOutput bool
}

// NewApp resolves configuration and wires the service graph, leaves first:
// config, session store, auth-failure handler, transport, session manager,
// domain stores, poller.
func NewApp(configDir, apiURL string, verbose, jsonOut bool) (*App, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := auth.NewStore(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	failure := auth.NewFailureHandler(store, currentCommandPath, log)
	client, err := api.New(cfg.BaseURL, store, failure.Handle, api.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Failure:    failure,
		Client:     client,
		Auth:       auth.NewManager(store, client, log),
		Roles:      stores.NewRoleStore(client, log),
		Schemas:    stores.NewSchemaStore(client, log),
		Graph:      stores.NewGraphStore(client, log),
		Admin:      stores.NewAdminStore(client, log),
		Datasets:   stores.NewDatasetStore(client, log),
		Transforms: stores.NewTransformStore(client, log),
		Poller:     poller.New(client, poller.WithLogger(log)),
		JSONOutput: jsonOut || cfg.JSONOutput,
	}, nil
}

// HistoryPath is where the local job history database lives.
func (a *App) HistoryPath() string {
	return filepath.Join(a.Config.ConfigDir, "history.db")
}

// currentCommandPath is the "where was the user" record saved on forced
// teardown, so login can suggest re-running it.
func currentCommandPath() string {
	if len(os.Args) < 2 {
		return ""
	}
	return strings.Join(os.Args[1:], " ")
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	var (
		flagConfigDir string
		flagAPIURL    string
		flagVerbose   bool
		flagJSON      bool
	)

	var app *App

	root := &cobra.Command{
		Use:           "datapuur",
		Short:         "Terminal client for the DataPuur/KGInsights data platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = NewApp(flagConfigDir, flagAPIURL, flagVerbose, flagJSON)
			return err
		},
	}

	root.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "client state directory (default: OS user config dir)")
	root.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend base URL (overrides config and DATAPUUR_API_URL)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	appRef := func() *App { return app }
	root.AddCommand(
		newLoginCmd(appRef),
		newLogoutCmd(appRef),
		newRegisterCmd(appRef),
		newPasswordCmd(appRef),
		newWhoamiCmd(appRef),
		newDatasetsCmd(appRef),
		newSchemaCmd(appRef),
		newGraphCmd(appRef),
		newTransformCmd(appRef),
		newJobsCmd(appRef),
		newAdminCmd(appRef),
		newServeCmd(appRef),
	)
	return root
}
