package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/wareader/internal/api"
	"github.com/ccollicutt/wareader/pkg/store"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	Listen  string
	NoStore bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(globals *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve parse and transcript endpoints over HTTP until interrupted.

Endpoints:
  GET    /health
  POST   /api/v1/parse?self=NAME&format=json|text|markdown&save=true
  GET    /api/v1/transcripts
  GET    /api/v1/transcripts/{id}?self=NAME
  DELETE /api/v1/transcripts/{id}

The transcript endpoints answer 503 when started with --no-store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, globals, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "Address to bind (overrides server.listen)")
	cmd.Flags().BoolVar(&opts.NoStore, "no-store", false, "Serve the parse endpoint only")

	return cmd
}

func runServe(cmd *cobra.Command, globals *GlobalOptions, opts *ServeOptions) error {
	ctx := commandContext(cmd)

	cfg, err := globals.LoadConfig(ctx)
	if err != nil {
		return err
	}

	listen := opts.Listen
	if listen == "" {
		listen = cfg.Server.Listen
	}

	var st store.Store
	if !opts.NoStore {
		sqlite, err := globals.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = sqlite.Close() }()
		st = sqlite
	}

	server := api.NewServer(api.Options{
		Listen:        listen,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		SystemPhrases: cfg.Phrases(),
		Colors:        cfg.Colors(),
		Store:         st,
		Logger:        slog.Default(),
	})

	return server.Start(ctx)
}
