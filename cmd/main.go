package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/subx/internal/repositories"
	"github.com/desertthunder/subx/internal/services"
	"github.com/desertthunder/subx/internal/session"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		HTTPClient: services.NewHTTPClient(config.API.RequestTimeout()),
		Logger:     logger,
	}

	db := openDatabase(config, logger)
	if db != nil {
		defer db.Close()
		opts.Session = session.New(repositories.NewKVStore(db))
		opts.Drafts = repositories.NewDraftRepository(db)
	}

	if token := strings.TrimSpace(os.Getenv(shared.EnvToken)); token != "" {
		logger.Debug("using token from environment", "env", shared.EnvToken)
		opts.Session = session.New(session.NewMemoryStore(session.TokenKey, token))
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "subx",
		Usage:    "Generate, check and translate video subtitles from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// openDatabase opens the local database. Without it the token lives only for this process and drafts are unavailable.
func openDatabase(config *shared.Config, logger *log.Logger) *sql.DB {
	db, err := shared.OpenMigrated(config.Database)
	if err != nil {
		logger.Warn("local database unavailable, token will not be remembered", "path", config.Database.Path, "error", err)
		return nil
	}
	return db
}
