package cli

import (
	"github.com/spf13/cobra"

	"github.com/driftwatch/deadscan/internal/api"
	"github.com/driftwatch/deadscan/internal/config"
)

// newServeCmd creates the serve command running the HTTP scan API.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scan API",
		Long: `Run the HTTP scan API.

Endpoints:
  POST /api/scans      analyze a manifest ({"content": "...", "ecosystem": "npm"})
  GET  /api/scans      list recent scans
  GET  /api/scans/{id} fetch one scan
  GET  /healthz        liveness probe

With redis_url configured the registry response cache is shared across
instances; with mongo_url scans persist across restarts.`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			backend, err := buildCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			store, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			server := api.NewServer(api.Options{
				Analyzer:    buildAnalyzer(backend),
				Store:       store,
				GitHubToken: cfg.GitHubToken,
				Logger:      logger,
			})
			return server.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
