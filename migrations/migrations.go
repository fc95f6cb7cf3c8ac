// Package migrations embeds the database schema so binaries can migrate
// without a migrations directory on disk.
package migrations

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var FS embed.FS

// DatabaseURL rewrites a postgres:// connection string to the pgx:// scheme
// the migrate pgx driver is registered under.
func DatabaseURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

// Up applies every embedded migration not yet applied to databaseURL.
// It reports whether anything changed.
func Up(databaseURL string) (bool, error) {
	src, err := iofs.New(FS, ".")
	if err != nil {
		return false, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return false, err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
