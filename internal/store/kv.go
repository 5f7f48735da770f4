package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// KV is the on-device string store behind the persisted game state.
type KV struct {
	db *sql.DB
}

// OpenKV opens (creating if needed) the SQLite file at path.
func OpenKV(path string) (*KV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	dsn := "file:" + clean + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create kv table")
	}
	return &KV{db: db}, nil
}

func (k *KV) Close() error { return k.db.Close() }

// Get returns the value under key; ok is false when the key is absent.
func (k *KV) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = k.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %s", key)
	}
	return value, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return k.Apply(ctx, map[string]string{key: value}, nil)
}

// Apply writes sets and removes deletes in one transaction.
func (k *KV) Apply(ctx context.Context, sets map[string]string, deletes []string) error {
	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()
	for key, value := range sets {
		if _, err := tx.ExecContext(ctx, `INSERT INTO kv(key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return errors.Wrapf(err, "set %s", key)
		}
	}
	for _, key := range deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return errors.Wrapf(err, "delete %s", key)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}
