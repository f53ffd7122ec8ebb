package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/importer"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var (
		storeKind string
		useGit    bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a tally data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.dataDir = args[0]
			}
			absDir, err := filepath.Abs(opts.dataDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if err := runInit(absDir, storeKind, useGit); err != nil {
				return err
			}

			// Opening the ledger writes nothing; seed the balance key so the
			// store exists on disk.
			return withApp(opts, func(a *app, _ []string) error {
				if err := a.ledger.SetStartingBalance(a.ledger.StartingBalance()); err != nil {
					return err
				}
				a.record("init", "store="+a.cfg.Store, "")
				a.printf("Initialized tally data directory at %s\n", a.cfg.DataDir)
				return nil
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&storeKind, "store", config.StoreDir, "ledger backend: dir or sqlite")
	cmd.Flags().BoolVar(&useGit, "git", false, "version the data directory with git, committing after every change")

	return cmd
}

func runInit(dir, storeKind string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	for _, d := range []string{
		importer.ImportDir,
		filepath.Join(importer.ImportDir, "processed"),
	} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(dir)
	cfg.Store = storeKind
	cfg.Git.AutoCommit = useGit
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Keep secrets and the binary store out of version control.
	gitignore := config.EnvFile + "\n" + sqliteFile + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if useGit {
		if !gitops.Available() {
			return fmt.Errorf("--git: git executable not found on PATH")
		}
		if err := (gitops.Repo{Dir: dir}).Init(context.Background()); err != nil {
			return err
		}
	}
	return nil
}
