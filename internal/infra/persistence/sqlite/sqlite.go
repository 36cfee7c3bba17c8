// Package sqlite opens a local SQLite database for the GORM repositories.
// It backs single-node deployments and the repository tests.
package sqlite

import (
	"context"
	"log/slog"
	"strings"

	"usermgmt/config"
	logs "usermgmt/internal/infra/log"
	"usermgmt/internal/infra/metrics"
	"usermgmt/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultPath = "usermgmt.db"

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	Prom   *metrics.Prom `optional:"true"`
}

// New opens the configured SQLite file, optionally migrates it, and closes it on stop.
func New(params Params) (*gorm.DB, error) {
	path := params.Config.Persistence.SQLitePath
	db, err := Open(path, logs.NewGormLogger(params.Logger, params.Config.Env.Debug))
	if err != nil {
		return nil, err
	}

	if params.Config.Persistence.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, errors.Wrap(err, "failed to migrate SQLite schema")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}
	if err := params.Prom.Register(collectors.NewDBStatsCollector(sqlDB, "sqlite")); err != nil {
		return nil, errors.Wrap(err, "failed to register SQLite pool metrics")
	}

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Logger.InfoContext(ctx, "SQLite database opened", slog.String("path", path))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to path with foreign keys on and a busy timeout. ":memory:"
// databases are pinned to a single connection so every query sees the same data.
func Open(path string, logger gormlogger.Interface) (*gorm.DB, error) {
	if path == "" {
		path = defaultPath
	}
	inMemory := strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")

	if logger == nil {
		logger = gormlogger.Discard
	}

	db, err := gorm.Open(sqlitedriver.Open(path), &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open SQLite database %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	}

	// journal_mode is not supported by every database kind (in-memory); ignore it.
	_ = db.Exec("PRAGMA journal_mode=WAL").Error
	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if err := db.Exec(pragma).Error; err != nil {
			_ = sqlDB.Close()

			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	return db, nil
}
