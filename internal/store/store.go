package store

import (
	"context"
	"database/sql"
	errs "errors"
	"fmt"
	"time"

	"github.com/DaanHessen/grimoire-tui/internal/util"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNoChange = errs.New("no change")
	ErrNotFound = errs.New("not found")
)

// DB wraps gorm.DB for the remote reference-data store and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error { return d.sql.Close() }

// Open connects to the remote store per config.
func Open(ctx context.Context, cfg util.Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres handle")
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(4)
	sdb.SetMaxIdleConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		sdb.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// WithTx executes fn within a database transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(fn)
}

func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
