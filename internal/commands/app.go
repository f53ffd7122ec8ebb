package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/activity"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/store"
)

// Store locations inside the data directory.
const (
	ledgerDir  = "ledger"
	sqliteFile = "tally.db"
)

// app bundles what a command needs once the data directory is open.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	ledger   *ledger.Service
	activity *activity.Log
	repo     *gitops.Repo // nil unless auto_commit is on
	out      io.Writer
	closer   io.Closer
}

// withApp opens the data directory, runs fn and closes the store.
func withApp(opts *rootOptions, fn func(a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, args)
	}
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	dataDir, err := filepath.Abs(opts.dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	cfg, err := loadConfig(dataDir)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.verbose)

	st, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := ledger.Open(st, logger)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		ledger:   svc,
		activity: activity.New(cfg.DataDir),
		out:      cmd.OutOrStdout(),
		closer:   closer,
	}
	if cfg.Git.AutoCommit && gitops.IsRepo(cfg.DataDir) {
		a.repo = &gitops.Repo{
			Dir:         cfg.DataDir,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		}
	}
	return a, nil
}

// loadConfig reads <dataDir>/tally.yaml, falling back to defaults when the
// directory has not been initialized.
func loadConfig(dataDir string) (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(dataDir, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(dataDir), nil
	}
	return cfg, err
}

func newLogger(w io.Writer, cfg *config.Config, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "tally",
		ReportTimestamp: true,
		Level:           cfg.Level(),
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func openStore(cfg *config.Config) (store.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err := store.OpenSQLite(filepath.Join(cfg.DataDir, sqliteFile))
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		dir, err := store.OpenDir(filepath.Join(cfg.DataDir, ledgerDir))
		if err != nil {
			return nil, nil, err
		}
		return dir, nil, nil
	}
}

// Close releases the store.
func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// record appends to the activity log and, with auto_commit on, commits the
// data directory. Failures are logged, not returned.
func (a *app) record(action, details, recordID string) {
	if err := a.activity.Record(action, details, recordID); err != nil {
		a.logger.Warn("activity log not written", "action", action, "err", err)
	}
	if a.repo == nil {
		return
	}
	msg := action
	if details != "" {
		msg += ": " + details
	}
	hash, err := a.repo.Commit(context.Background(), msg)
	switch {
	case errors.Is(err, gitops.ErrNoChanges):
	case err != nil:
		a.logger.Warn("data directory not committed", "action", action, "err", err)
	default:
		a.logger.Debug("committed", "hash", hash, "action", action)
	}
}

// printf writes to the command's output.
func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
