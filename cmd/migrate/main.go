package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"usermgmt/config"
	"usermgmt/internal/domain/lifecycle"
	logs "usermgmt/internal/infra/log"
	"usermgmt/internal/infra/persistence/model"
	"usermgmt/internal/infra/persistence/postgres"
	"usermgmt/internal/infra/persistence/sqlite"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// migrate creates or alters the users table for the configured driver and exits.
func main() {
	driver := flag.String("driver", "", "Override persistence.driver (postgres, sqlite)")
	sqlitePath := flag.String("sqlite-path", "", "Override persistence.sqlitePath")
	flag.Parse()

	if err := run(*driver, *sqlitePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(driver, sqlitePath string) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if driver != "" {
		cfg.Persistence.Driver = strings.ToLower(driver)
	}
	if sqlitePath != "" {
		cfg.Persistence.SQLitePath = sqlitePath
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "create logger")
	}

	db, err := open(cfg, logger)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := model.AutoMigrate(db.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "migrate users table")
	}

	logger.Info("Schema migrated", slog.String("driver", cfg.Persistence.Driver))

	return nil
}

func open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	switch cfg.Persistence.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg, logger)
	case config.DriverSQLite:
		return sqlite.Open(cfg.Persistence.SQLitePath, logs.NewGormLogger(logger, cfg.Env.Debug))
	default:
		return nil, errors.Errorf("unsupported persistence driver %q", cfg.Persistence.Driver)
	}
}
