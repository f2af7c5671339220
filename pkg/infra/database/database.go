package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultMaxOpenConns     = 100
	defaultMaxIdleConns     = 25
	defaultConnMaxLifetime  = 5 * time.Minute
	defaultConnMaxIdleTime  = time.Minute
	defaultSlowQuery        = 200 * time.Millisecond
	defaultMigrationTimeout = 30 * time.Second
	pingTimeout             = 10 * time.Second
)

// DB wraps the gorm handle shared by the session, message, audio buffer,
// function call and rate limit repositories.
type DB struct {
	logger *logrus.Logger
	*gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	SlowQuery        time.Duration
	MigrationTimeout time.Duration
}

func (c *Config) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxOpenConns <= 0 {
		out.MaxOpenConns = defaultMaxOpenConns
	}
	if out.MaxIdleConns <= 0 {
		out.MaxIdleConns = defaultMaxIdleConns
	}
	if out.MaxIdleConns > out.MaxOpenConns {
		out.MaxIdleConns = out.MaxOpenConns
	}
	if out.ConnMaxLifetime <= 0 {
		out.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if out.SlowQuery <= 0 {
		out.SlowQuery = defaultSlowQuery
	}
	if out.MigrationTimeout <= 0 {
		out.MigrationTimeout = defaultMigrationTimeout
	}
	return out
}

// NewDB connects, sizes the pool and applies every registered migration.
func NewDB(logger *logrus.Logger, config *Config) (*DB, error) {
	cfg := config.withDefaults()
	logger.WithFields(logrus.Fields{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"db":      cfg.DBName,
		"user":    cfg.User,
		"sslmode": cfg.SSLMode,
	}).Info("connecting to database")

	gormDB, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             cfg.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	logger.WithFields(logrus.Fields{
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	}).Info("configured database connection pool")

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	db := &DB{logger: logger, DB: gormDB}

	migCtx, migCancel := context.WithTimeout(context.Background(), cfg.MigrationTimeout)
	defer migCancel()
	applied, err := NewMigrationsManager(gormDB).ApplyPending(migCtx)
	if err != nil {
		logger.WithError(err).Error("failed to apply database migrations")
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	logger.WithField("applied", applied).Info("database migrations up to date")

	return db, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	db.logger.Info("closing database connection")
	return sqlDB.Close()
}
