package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abodks10-ai/Pred-Guard/internal/api"
	"github.com/abodks10-ai/Pred-Guard/internal/application"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring scheduler and REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		container, err := application.NewContainer(ctx, appConfig(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer container.Close()

		schedulerDone := make(chan struct{})
		go func() {
			defer close(schedulerDone)
			container.Scheduler.Start(ctx)
		}()

		server := api.NewServer(api.Config{
			Websites:    container.Websites,
			Alerts:      container.Alerts,
			Analysis:    container.Analysis,
			Dashboard:   container.Dashboard,
			Defense:     container.Defender,
			Health:      &containerHealth{container: container},
			AuthToken:   authToken,
			Logger:      logger,
			CORSOrigins: corsOrigins,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		})

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s API server listening on %s\n", colorInfo("→"), addr)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			// Stop scheduling new checks, then drain the HTTP server.
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			select {
			case <-schedulerDone:
			case <-shutdownCtx.Done():
				fmt.Printf("%s Scheduler did not drain in time\n", colorWarn("!"))
			}

			fmt.Printf("%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

// containerHealth adapts the DI container to the API health endpoints.
type containerHealth struct {
	container *application.Container
}

func (h *containerHealth) Check(ctx context.Context) error { return nil }

func (h *containerHealth) Ready(ctx context.Context) error {
	return h.container.Ping(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address for the API server")
	serveCmd.Flags().String("auth-token", "", "Optional shared secret for API requests")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")
	serveCmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (empty allows all)")
	serveCmd.Flags().Int("rate-limit", 0, "Per-IP requests per second (0 disables)")
	serveCmd.Flags().Int("rate-burst", 0, "Per-IP burst size (defaults to rate-limit)")
}
