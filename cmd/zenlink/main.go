package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/config"
	"github.com/caffeinepub/zenlink-5/internal/data"
	"github.com/caffeinepub/zenlink-5/internal/logfile"
	"github.com/caffeinepub/zenlink-5/internal/logging"
	"github.com/caffeinepub/zenlink-5/internal/querycache"
)

// isTTY checks if the current environment has a TTY available
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Color helpers for plain-command output
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var (
	flagConfig  string
	flagBackend string
	flagToken   string
)

func main() {
	root := &cobra.Command{
		Use:   "zenlink",
		Short: "ZenLink - mindful connections from your terminal",
		Long: `ZenLink connects you with like-minded people through personality
profiles, weekly highlights, debates, and direct conversations.

Running without a subcommand opens the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.zenlink.yaml)")
	root.PersistentFlags().StringVar(&flagBackend, "backend", "", "backend base URL")
	root.PersistentFlags().StringVar(&flagToken, "token", "", "identity token")

	root.AddCommand(newTUICmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newMomentsCmd())
	root.AddCommand(newFeedCmd())
	root.AddCommand(newAdminCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("error: ")+err.Error())
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	var opts []config.Option
	if flagConfig != "" {
		opts = append(opts, config.WithConfigFile(flagConfig))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, err
	}
	if flagBackend != "" {
		cfg.BackendURL = flagBackend
	}
	if flagToken != "" {
		cfg.IdentityToken = flagToken
	}
	return cfg, nil
}

// session bundles the SDK pieces a command needs.
type session struct {
	cfg    config.Config
	client *backend.Client
	store  *data.Store
	logger logging.Logger
}

func (s *session) close() {
	if s.client != nil {
		s.client.Close()
	}
}

// newSession builds the client, cache and store from config. Commands that
// require an identity should check cfg.IdentityToken first.
func newSession(metrics *querycache.Metrics) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logfile.GetLogger().SetLevel(logfile.ParseLevel(cfg.LogLevel))
	logger := logging.NewComponentLogger("CLI")

	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL:       cfg.BackendURL,
		IdentityToken: cfg.IdentityToken,
		Timeout:       cfg.HTTPTimeout,
		BodyLimit:     cfg.BodyLimit,
		Logger:        logging.NewComponentLogger("Backend"),
	})
	if err != nil {
		return nil, err
	}

	cache, err := querycache.New(querycache.Config{
		MaxEntries: cfg.CacheSize,
		StaleTime:  cfg.StaleTime,
		Logger:     logging.NewComponentLogger("Cache"),
		Metrics:    metrics,
	})
	if err != nil {
		client.Close()
		return nil, err
	}

	return &session{
		cfg:    cfg,
		client: client,
		store:  data.NewStore(data.StaticProvider{C: client}, cache, logger),
		logger: logger,
	}, nil
}

func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 30*time.Second)
}
