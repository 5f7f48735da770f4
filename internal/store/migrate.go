package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator handles the remote schema using golang-migrate with migrations
// compiled into the binary.
type Migrator struct {
	dsn string
}

func NewMigrator(dsn string) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	return &Migrator{dsn: dsn}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Up() })
}

func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(mig *migrate.Migrate) error { return mig.Steps(-1) })
}

// Version reports the applied schema version.
func (m *Migrator) Version(ctx context.Context) (uint, bool, error) {
	var (
		v     uint
		dirty bool
	)
	err := m.run(ctx, func(mig *migrate.Migrate) error {
		var err error
		v, dirty, err = mig.Version()
		return err
	})
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return v, dirty, err
}

func (m *Migrator) run(ctx context.Context, fn func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mig, closer, err := m.migrateInstance()
	if err != nil {
		return err
	}
	defer closer()
	done := make(chan error, 1)
	go func() { done <- fn(mig) }()
	select {
	case <-ctx.Done():
		mig.GracefulStop <- true
		<-done
		return ctx.Err()
	case err := <-done:
		if err == migrate.ErrNoChange {
			return ErrNoChange
		}
		return err
	}
}

func (m *Migrator) migrateInstance() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, func() {}, wrap(err, "open embedded migrations")
	}
	mig, err := migrate.NewWithSourceInstance("iofs", src, m.dsn)
	if err != nil {
		return nil, func() {}, wrap(err, "init migrate")
	}
	return mig, func() { mig.Close() }, nil
}
