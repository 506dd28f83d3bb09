// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crewz/internal/config"
	"crewz/internal/middleware"
	"crewz/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// SlogGormLogger routes GORM's statement log through slog so query records carry the request,
// user and trace ids of the context they ran under.
type SlogGormLogger struct {
	log           *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger returns a logger that reports failed and slow statements.
func NewGormLogger(l *slog.Logger) *SlogGormLogger {
	return &SlogGormLogger{log: l, level: logger.Warn, slowThreshold: 200 * time.Millisecond}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.emit(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.emit(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.emit(ctx, logger.Error, slog.LevelError, msg, data)
}

func (l *SlogGormLogger) emit(ctx context.Context, min logger.LogLevel, level slog.Level, msg string, data []any) {
	if l.level >= min {
		l.log.Log(ctx, level, fmt.Sprintf(msg, data...))
	}
}

// Trace logs a statement when it failed or ran slow. Slow statements are also counted.
// Record-not-found is an expected outcome and never logged.
func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	if slow {
		observability.SlowQueries.Inc()
	}

	var (
		level slog.Level
		msg   string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		level, msg = slog.LevelError, "query failed"
	case slow && l.level >= logger.Warn:
		level, msg = slog.LevelWarn, "slow query"
	case l.level >= logger.Info:
		level, msg = slog.LevelDebug, "query"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log.LogAttrs(ctx, level, msg, attrs...)
}

// DSN builds the PostgreSQL connection string for cfg.
func DSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode,
	)
}

// Connect opens the PostgreSQL connection and brings the schema up to date. Outside production
// (or with DB_AUTO_MIGRATE) GORM AutoMigrate is used; production runs the versioned SQL migrations.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dbInstance, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.IsProduction() && !cfg.DBAutoMigrate {
		if err := MigrateUp(dbInstance); err != nil {
			return nil, err
		}
	} else {
		if err := AutoMigrate(ctx, dbInstance); err != nil {
			return nil, err
		}
	}

	if err := configurePool(dbInstance); err != nil {
		return nil, err
	}

	DB = dbInstance
	return DB, nil
}

// Open connects to PostgreSQL without touching the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dbInstance, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: NewGormLogger(middleware.Logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	middleware.Logger.Info("Database connected successfully")
	return dbInstance, nil
}

// AutoMigrate creates or updates tables for every persistent model.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "Database migration completed")
	return nil
}

func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

// Ping verifies the connection is usable within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
