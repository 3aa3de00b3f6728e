// Package commands provides the CLI commands of the dashboard binary.
package commands

import (
	"fmt"

	"fixxyadmin/internal/api"
	"fixxyadmin/internal/complaint"
	"fixxyadmin/internal/config"
	"fixxyadmin/internal/dashboard"
	"fixxyadmin/internal/health"
	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/notify"
	"fixxyadmin/internal/telegram"

	"github.com/spf13/cobra"
)

// Root returns the root command. Running it without a subcommand serves the
// dashboard.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "fixxy-admin",
		Short: "Fixxy complaint administration dashboard",
		Long: `Fixxy admin dashboard.

Available commands:
  serve     - Run the dashboard HTTP server (default)
  summary   - Write the current complaint list as a PNG table
  smoke     - Walk a running dashboard with a headless browser`,
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, summaryCmd(), smokeCmd())
	return root
}

// app holds the collaborators shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	monitor  *health.Monitor
	client   *api.Client
	dates    *complaint.DateFormatter
	service  *dashboard.Service
	notifier *notify.Notifier
}

// newApp loads configuration and wires the API client and screen service.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	monitor := health.NewMonitor()

	client, err := api.NewClient(cfg.APIBaseURL,
		api.WithHTTPClient(api.NewHTTPClient(cfg.HTTPTimeout, cfg.HTTPMaxConns)),
		api.WithDebugMode(cfg.DebugMode),
		api.WithObserver(monitor),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	dates, err := complaint.NewDateFormatter(cfg.DefaultLocale, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create date formatter: %w", err)
	}

	var mirror notify.Mirror
	if cfg.TelegramEnabled() {
		mirror = telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, nil)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		monitor:  monitor,
		client:   client,
		dates:    dates,
		service:  dashboard.NewService(client, dates, logger),
		notifier: notify.New(mirror, logger),
	}, nil
}
