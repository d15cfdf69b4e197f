package migrations

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed *.sql
var migrationFiles embed.FS

// Apply runs the embedded migrations against the MySQL database behind dsn
// (go-sql-driver format). Already applied migrations are skipped.
func Apply(dsn string) error {
	src, err := iofs.New(migrationFiles, ".")
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "mysql://"+dsn)
	if err != nil {
		return errors.Wrap(err, "init migrate")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// Version reports the current schema version.
func Version(dsn string) (uint, bool, error) {
	src, err := iofs.New(migrationFiles, ".")
	if err != nil {
		return 0, false, errors.Wrap(err, "read migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "mysql://"+dsn)
	if err != nil {
		return 0, false, errors.Wrap(err, "init migrate")
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "read version")
	}
	return version, dirty, nil
}
