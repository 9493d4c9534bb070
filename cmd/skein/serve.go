package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skein-dev/skein/internal/lisd"
)

func serveCmd() *cobra.Command {
	var (
		address    string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run lisd, the offload daemon",
		Long: `Run lisd, the offload daemon.

lisd answers longest-increasing-subsequence requests over websocket so
heavy reorder computations can leave the caller's scheduler loop.
Endpoints: /offload (websocket), /healthz, /metrics (Prometheus).

Configuration resolves in order: defaults, SKEIND_* environment
variables, --config file, flags.

Examples:
  skein serve
  skein serve --address=:9000
  skein serve --config=lisd.yaml
  SKEIND_LOGGING_LEVEL=debug skein serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(address, configFile)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (overrides config)")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a config file")

	return cmd
}

func runServe(address, configFile string) error {
	v, err := lisd.NewViper(configFile)
	if err != nil {
		return err
	}
	if address != "" {
		v.Set("server.address", address)
	}

	cfg, err := lisd.Load(v)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Logging.LogLevel(),
	}))

	return lisd.NewServer(cfg, logger).Start()
}
