package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/scanconfirm/internal/app"
	"github.com/raysh454/scanconfirm/internal/config"
	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/server"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port     int
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 4000, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&logLevel, "log-level", "INFO", "DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")
	return cmd
}

// serve runs until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := logging.NewLogger(cfg.LogLevel, "scanconfirm")

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(context.Background()); err != nil {
			logger.Warn("application shutdown", logging.Err(err))
		}
	}()

	srv := server.NewServer(server.Config{
		ListenAddr:    cfg.Addr(),
		AllowedOrigin: cfg.CORSAllowedOrigin,
		PollInterval:  cfg.ProgressPollInterval,
		Logger:        logger,
	}, application.Orch).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
