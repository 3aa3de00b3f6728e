package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fixxyadmin/internal/logging"
	"fixxyadmin/internal/tracing"
	"fixxyadmin/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Long: `Run the dashboard HTTP server.

Configuration is read from the environment (see .env). SESSION_SECRET is
required. The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.cfg.ValidateServer(); err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(web.ServiceName)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.logger.Warn(ctx, "error shutting down tracer provider", logging.Fields{"error": err.Error()})
		}
	}()

	if a.cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := web.NewRouter(web.Deps{
		Config:     a.cfg,
		Service:    a.service,
		Complaints: a.client,
		Notifier:   a.notifier,
		Monitor:    a.monitor,
		Dates:      a.dates,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info(ctx, "dashboard starting", logging.Fields{
		"port":          a.cfg.Port,
		"api_base_url":  a.cfg.APIBaseURL,
		"require_login": a.cfg.RequireLogin,
		"debug_mode":    a.cfg.DebugMode,
		"telegram":      a.cfg.TelegramEnabled(),
	})
	if !a.cfg.RequireLogin {
		a.logger.Warn(ctx, "REQUIRE_LOGIN is off, dashboard routes are not guarded")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
