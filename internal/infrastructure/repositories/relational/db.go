// Package relational stores identity, RBAC, token and comment data through
// gorm on postgres or sqlite.
package relational

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/pkg/retry"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Options selects the driver and pool settings.
type Options struct {
	Driver          string // postgres or sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool // log every statement
	// Connect retries the initial connection; the zero value tries once.
	Connect retry.Policy
}

// Open connects and migrates the schema.
func Open(opts Options, logger *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(opts.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	level := gormLogger.Silent
	if opts.Debug {
		level = gormLogger.Info
	}

	gormConfig := &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
	}
	var db *gorm.DB
	err := retry.Do(context.Background(), opts.Connect, func(ctx context.Context) error {
		conn, err := gorm.Open(dialector, gormConfig)
		if err != nil {
			if logger != nil {
				logger.Warnw("database connection attempt failed", "driver", opts.Driver, "error", err)
			}
			return err
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Infow("connected to database",
			"driver", opts.Driver,
			"max_open_conns", opts.MaxOpenConns,
		)
	}
	return db, nil
}

// sqliteDSN turns on foreign key enforcement, which sqlite leaves off per
// connection unless the DSN asks for it.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if dsn == ":memory:" {
		dsn = "file::memory:"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&roleModel{},
		&rolePermissionModel{},
		&userRoleModel{},
		&bindingModel{},
		&authTokenModel{},
		&passwordResetModel{},
		&commentModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// classify maps driver errors onto domain kinds.
func classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s is still referenced or refers to a missing row: %w", what, domain.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
