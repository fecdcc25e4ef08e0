package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redscorpix/npf-sub003/internal/config"
	"github.com/redscorpix/npf-sub003/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the patch server",
		Long: `Start the HTTP server.

Routes:
  POST /api/patch  patch base markup with a JSON tree
  GET  /live       WebSocket: JSON trees in, mutation frames out
  GET  /metrics    Prometheus metrics
  GET  /healthz    liveness

Settings come from incdom.json when --config is given, then from
INCDOM_* environment variables, then from flags.

Examples:
  incdom serve
  incdom serve --config incdom.json --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sc, err := cfg.ServerConfig(logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(sc).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to incdom.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

// loadConfig reads path, or starts from defaults when path is empty, and
// applies environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.New()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
