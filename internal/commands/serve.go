package commands

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

	"github.com/balkashynov/timesheet/internal/api"
	"github.com/balkashynov/timesheet/internal/config"
	"github.com/balkashynov/timesheet/internal/db"
	"github.com/balkashynov/timesheet/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST backend",
	Long: `Serve labels, sessions and settings over HTTP from the local database.
Every /api route requires the shared auth token (auth_token in the config
file or TIMESHEET_AUTH_TOKEN).

Examples:
  timesheet serve
  timesheet serve --port 8080`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fail("start server", err)
			return
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		if cfg.AuthToken == "" {
			fail("start server", errors.New("auth_token must be set to run the server"))
			return
		}

		if err := serve(cmd.Context(), cfg); err != nil {
			fail("run server", err)
		}
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := observability.Setup(cfg.LogLevel, os.Stderr)

	if err := db.Initialize(cfg.DBPath); err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(db.NewStore(db.DB), cfg.AuthToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "db", cfg.DBPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config, 3000)")
}
