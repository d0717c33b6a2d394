package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/catalogo-backend/config"
	appLogger "github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const pingTimeout = 5 * time.Second

// gormWriter forwards gorm's slow query and error lines to the app logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	appLogger.Warn("gorm", map[string]interface{}{
		"detail": fmt.Sprintf(format, args...),
	})
}

// newGormLogger reports queries slower than slow; a zero threshold
// only reports errors.
func newGormLogger(slow time.Duration) logger.Interface {
	level := logger.Warn
	if slow <= 0 {
		level = logger.Error
	}
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Open connects to postgres and applies the pool settings of cfg.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: newGormLogger(cfg.SlowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ConfigurePool(conn, cfg); err != nil {
		return nil, err
	}
	return conn, nil
}

// ConfigurePool sets the connection limits; zero values keep database/sql defaults.
func ConfigurePool(conn *gorm.DB, cfg *config.DatabaseConfig) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}

// Ping checks the connection within a bounded time.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Initialize opens the shared connection used by the server and the CLI.
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	if err := Ping(context.Background(), conn); err != nil {
		return fmt.Errorf("database did not answer ping: %w", err)
	}
	DB = conn

	appLogger.Info("Database connection established", map[string]interface{}{
		"max_idle_conns":     cfg.MaxIdleConns,
		"max_open_conns":     cfg.MaxOpenConns,
		"conn_max_lifetime":  cfg.ConnMaxLifetime.String(),
		"slow_query_warning": cfg.SlowQuery.String(),
	})
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
