package main

import (
	"context"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/zenlink-5/internal/logging"
	"github.com/caffeinepub/zenlink-5/internal/querycache"
	"github.com/caffeinepub/zenlink-5/internal/tui"
)

var flagMetrics bool

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&flagMetrics, "metrics", false, "expose cache metrics on metrics_addr")
	return cmd
}

func runTUI(ctx context.Context) error {
	if !isTTY() {
		return fmt.Errorf("the interactive interface needs a terminal; use the subcommands instead")
	}

	var metrics *querycache.Metrics
	if flagMetrics {
		var err error
		metrics, err = querycache.NewPrometheusMetrics()
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	s, err := newSession(metrics)
	if err != nil {
		return err
	}
	defer s.close()

	if flagMetrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger := logging.NewComponentLogger("Metrics")
			logger.Info("cache metrics on %s/metrics", s.cfg.MetricsAddr)
			if err := http.ListenAndServe(s.cfg.MetricsAddr, mux); err != nil {
				logger.Warn("metrics listener stopped: %v", err)
			}
		}()
	}

	opts := tui.Options{StatsInterval: s.cfg.StatsInterval}
	hasIdentity := s.cfg.IdentityToken != ""

	// The live feed is best effort; the page still works from fetches alone.
	if hasIdentity {
		feedCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if feed, err := s.client.WatchGlobalFeed(feedCtx); err == nil {
			opts.Feed = feed
		} else {
			s.logger.Debug("global feed watch unavailable: %v", err)
		}
	}

	// The TUI drives the periodic stats refresh itself through StatsInterval;
	// StartStatsRefresher stays for headless embedders of the data layer.
	app := tui.New(ctx, s.store, hasIdentity, opts)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}
