// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/orbitfit/mealplan/internal/infrastructure/config"
)

const slowQueryThreshold = 200 * time.Millisecond

// ConnectionManager owns the primary connection pool and any read replicas
type ConnectionManager struct {
	logger  *zap.Logger
	db      *gorm.DB
	writeDB *sql.DB
}

// NewConnectionManager opens the primary database, applies pool settings and
// registers read replicas when configured
func NewConnectionManager(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*ConnectionManager, error) {
	log = log.Named("postgres")

	db, err := gorm.Open(postgres.Open(cfg.DSN(cfg.Host)), &gorm.Config{
		Logger:         newGORMLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cm := &ConnectionManager{logger: log, db: db, writeDB: sqlDB}

	if err := cm.registerReplicas(cfg); err != nil {
		log.Warn("Failed to register read replicas", zap.Error(err))
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("replicas", len(cfg.ReplicaHosts)),
	)

	return cm, nil
}

// registerReplicas routes plain reads to the replica hosts. Transactions and
// locking reads stay on the primary.
func (cm *ConnectionManager) registerReplicas(cfg config.DatabaseConfig) error {
	if len(cfg.ReplicaHosts) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, 0, len(cfg.ReplicaHosts))
	for _, host := range cfg.ReplicaHosts {
		replicas = append(replicas, postgres.Open(cfg.DSN(host)))
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cfg.MaxOpenConns).
		SetMaxIdleConns(cfg.MaxIdleConns).
		SetConnMaxLifetime(cfg.ConnMaxLifetime).
		SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return cm.db.Use(resolver)
}

// DB returns the gorm handle
func (cm *ConnectionManager) DB() *gorm.DB {
	return cm.db
}

// SQLDB returns the primary pool
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// Close closes the primary pool
func (cm *ConnectionManager) Close() error {
	if err := cm.writeDB.Close(); err != nil {
		cm.logger.Error("Failed to close primary database", zap.Error(err))
		return err
	}
	return nil
}

// gormLogWriter forwards gorm's formatted log lines to zap
type gormLogWriter struct {
	logger *zap.SugaredLogger
}

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.logger.Infof(format, args...)
}

func newGORMLogger(log *zap.Logger) logger.Interface {
	level := logger.Warn
	if log.Core().Enabled(zap.DebugLevel) {
		level = logger.Info
	}

	return logger.New(
		gormLogWriter{logger: log.WithOptions(zap.AddCallerSkip(3)).Sugar()},
		logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
