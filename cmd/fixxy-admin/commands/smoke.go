package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fixxyadmin/internal/browser"
	"fixxyadmin/internal/logging"

	"github.com/spf13/cobra"
)

func smokeCmd() *cobra.Command {
	var (
		cfg      browser.SmokeConfig
		headful  bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Walk a running dashboard with a headless browser",
		Long: `Log in to a running dashboard with Chrome, read the complaint list, open
the first complaint and print what was seen as JSON.

Credentials default to SMOKE_USERNAME and SMOKE_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Username == "" {
				cfg.Username = os.Getenv("SMOKE_USERNAME")
			}
			if cfg.Password == "" {
				cfg.Password = os.Getenv("SMOKE_PASSWORD")
			}
			cfg.Headless = !headful

			logger := logging.New(logLevel, "development")
			defer func() { _ = logger.Sync() }()

			report, runErr := browser.RunSmoke(cmd.Context(), cfg, logger)
			if report != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			}
			if runErr != nil {
				return fmt.Errorf("smoke run failed: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "dashboard base URL")
	cmd.Flags().StringVar(&cfg.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&cfg.Password, "password", "", "admin password")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", time.Minute, "time limit for the whole walk")
	cmd.Flags().BoolVar(&headful, "headful", false, "show the browser window")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}
