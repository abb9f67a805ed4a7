package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-times/internal/api"
	"github.com/smokyabdulrahman/prayer-times/internal/cache"
)

var (
	flagServeAddr    string
	flagServeRate    int
	flagServeOrigins []string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prayer times over HTTP",
		Long: "Start a JSON HTTP API.\n\n" +
			"Endpoints:\n" +
			"  GET /health\n" +
			"  GET /v1/timings?latitude=&longitude=&timezone=&method=&madhab=&date=DD-MM-YYYY\n" +
			"  GET /v1/qibla?latitude=&longitude=\n" +
			"  GET /v1/schedule?latitude=&longitude=&dhikr=true\n" +
			"  GET /v1/methods\n\n" +
			"Configured values are the defaults for omitted query parameters.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default: server_addr from config, then :8080)")
	cmd.Flags().IntVar(&flagServeRate, "rate", 60, "Requests per minute per client IP (0 disables limiting)")
	cmd.Flags().StringSliceVar(&flagServeOrigins, "cors-origins", []string{"*"}, "Allowed CORS origins")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}

	addr := cfg.ServerAddr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	opts := api.Options{
		Defaults:       *cfg,
		AllowedOrigins: flagServeOrigins,
		RatePerMinute:  flagServeRate,
		Now:            nowFunc,
	}
	if c, err := cache.New(cfg.CacheDir); err == nil {
		opts.Compute = c.Compute
	} else {
		logger.Warn().Err(err).Msg("cache disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.New(opts, logger).ListenAndServe(ctx, addr)
}
