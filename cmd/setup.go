package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/subx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file when missing, then initializes the local database and runs migrations.
// With --status it lists migrations instead, and with --rollback it reverts the most recent one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("status") && cmd.Bool("rollback") {
		return fmt.Errorf("%w: --status and --rollback cannot be combined", shared.ErrInvalidFlag)
	}

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = r.configPath
	}
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.writePlain("✓ Config file created: %s\n", configPath)
		}
	}

	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	switch {
	case cmd.Bool("status"):
		return r.migrationStatus(config.Database.Path)
	case cmd.Bool("rollback"):
		return r.rollbackMigration(config.Database.Path)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenMigrated(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready: %s\n", config.Database.Path)
}

func (r *Runner) migrationStatus(path string) error {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}
	for _, m := range states {
		mark := "pending"
		if m.Applied {
			mark = "applied"
		}
		if err := r.writePlain("%04d %-24s %s\n", m.Version, m.Name, mark); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) rollbackMigration(path string) error {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("rolling back latest migration", "path", path)
	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back latest migration: %s\n", path)
}
