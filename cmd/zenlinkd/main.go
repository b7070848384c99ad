package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/config"
	"github.com/caffeinepub/zenlink-5/internal/devserver"
	"github.com/caffeinepub/zenlink-5/internal/logfile"
	"github.com/caffeinepub/zenlink-5/internal/logging"
)

func main() {
	var (
		flagConfig string
		flagAddr   string
		flagAdmins []string
		flagDebug  bool
	)

	root := &cobra.Command{
		Use:   "zenlinkd",
		Short: "ZenLink development backend",
		Long: `zenlinkd serves the ZenLink operation protocol from memory, for local
development and integration tests. All state is lost on exit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if flagConfig != "" {
				opts = append(opts, config.WithConfigFile(flagConfig))
			}
			cfg, err := config.Load(opts...)
			if err != nil {
				return err
			}
			if flagAddr != "" {
				cfg.ListenAddr = flagAddr
			}
			logfile.GetLogger().SetLevel(logfile.ParseLevel(cfg.LogLevel))

			admins := make([]backend.Principal, 0, len(flagAdmins))
			for _, a := range flagAdmins {
				p, err := backend.ParsePrincipal(a)
				if err != nil {
					return fmt.Errorf("--admin %q: %w", a, err)
				}
				admins = append(admins, p)
			}

			return run(cmd.Context(), cfg, admins, flagDebug)
		},
	}

	root.Flags().StringVar(&flagConfig, "config", "", "config file (default ~/.zenlink.yaml)")
	root.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides listen_addr)")
	root.Flags().StringSliceVar(&flagAdmins, "admin", nil, "principals granted the admin role")
	root.Flags().BoolVar(&flagDebug, "debug", false, "verbose request logging")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, admins []backend.Principal, debug bool) error {
	logger := logging.NewComponentLogger("DevServer")

	srv := devserver.NewServer(&devserver.ServerConfig{
		Addr:   cfg.ListenAddr,
		Admins: admins,
		Debug:  debug,
		Logger: logger,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		logger.Info("metrics on %s/metrics", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener stopped: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
