package sqlite

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	// Import the pure Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/Keksclan/rawrmenu/internal/profile"
	"github.com/Keksclan/rawrmenu/store"
	"github.com/Keksclan/rawrmenu/store/db/internal/sqlstore"
)

var dialect = sqlstore.Dialect{
	Name:             "sqlite",
	Placeholder:      func(int) string { return "?" },
	InitializedQuery: `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'menus')`,
}

// NewDB opens the SQLite database named by profile.DSN. ":memory:" gives a
// private in-memory database.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	db, err := sql.Open("sqlite", withForeignKeys(profile.DSN))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite allows one writer at a time, and an in-memory database only
	// exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return sqlstore.New(db, dialect), nil
}

// withForeignKeys turns on foreign key enforcement, which ON DELETE
// CASCADE relies on, for every connection the pool opens.
func withForeignKeys(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
