package cli

import (
	"github.com/spf13/cobra"

	"github.com/dnamaps/arlequin/internal/server"
)

// serveCommand creates the serve command for running the rendering HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the figure-rendering HTTP API",
		Long: `Serve runs an HTTP API that accepts figure requests as JSON and
returns the rendered artifacts. The endpoint mirrors the render command:
POST /api/v1/figures with the same source, layout, and output options.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close(ctx)

			c.Logger.Info("starting server", "addr", addr)
			return server.New(runner, c.Logger, addr).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable table and artifact caching")

	return cmd
}
