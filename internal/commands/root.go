package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/client"
	"github.com/balkashynov/timesheet/internal/config"
	"github.com/balkashynov/timesheet/internal/db"
	"github.com/balkashynov/timesheet/internal/localstate"
	"github.com/balkashynov/timesheet/internal/observability"
	"github.com/balkashynov/timesheet/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
	failed     bool
)

// ErrFailed is returned by Execute when a command already reported its failure
var ErrFailed = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "A personal time tracker",
	Long: `timesheet clocks you in and out of labelled work sessions and keeps a
history of how long you spent on each label, locally or on a shared backend.`,
	SilenceUsage: true,
}

// backend is what the commands need from either the local database or the REST client
type backend interface {
	tracker.SessionStore
	ListLabels(ctx context.Context) ([]string, error)
	CreateLabel(ctx context.Context, name string) error
	DeleteLabel(ctx context.Context, name string) error
	GetSettings(ctx context.Context) (map[string]string, error)
	SaveSettings(ctx context.Context, values map[string]string) error
}

// stores bundles everything a command runs against
type stores struct {
	cfg     config.Config
	logger  *slog.Logger
	backend backend
	ctrl    *tracker.Controller
	health  func(ctx context.Context) error
}

// openStores loads config, sets up logging and picks the backend for the mode
func openStores(ctx context.Context) (*stores, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := observability.Setup(cfg.LogLevel, os.Stderr)

	s := &stores{cfg: cfg, logger: logger}
	cleanup := func() {}

	switch cfg.Mode {
	case config.ModeRemote:
		c := client.New(cfg.APIURL, cfg.AuthToken, cfg.RequestTimeout)
		s.backend = c
		s.health = c.Health
	default:
		if err := db.Initialize(cfg.DBPath); err != nil {
			return nil, nil, err
		}
		store := db.NewStore(db.DB)
		s.backend = store
		s.health = func(context.Context) error { return store.Ping() }
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Warn("close database", "error", err)
			}
		}
	}

	local := localstate.NewFileStore(cfg.StateDir)
	s.ctrl = tracker.New(ctx, s.backend, local, tracker.WithLogger(logger))
	return s, cleanup, nil
}

// withStores wraps a command function to open the stores first
func withStores(fn func(*cobra.Command, []string, *stores)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		s, cleanup, err := openStores(cmd.Context())
		if err != nil {
			fail("start timesheet", err)
			return
		}
		defer cleanup()
		fn(cmd, args, s)
	}
}

// fail prints the user-facing message for err and marks the run as failed
func fail(action string, err error) {
	failed = true
	if apperr.Known(err) {
		fmt.Printf("❌ %s\n", apperr.UserMessage(action, err))
	} else {
		fmt.Printf("❌ Error: %v\n", err)
	}
	slog.Debug("command failed", "action", action, "error", err)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("timesheet %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return err
	}
	if failed {
		return ErrFailed
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.timesheet/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
