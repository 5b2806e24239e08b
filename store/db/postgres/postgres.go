package postgres

import (
	"database/sql"
	"strconv"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Keksclan/rawrmenu/internal/profile"
	"github.com/Keksclan/rawrmenu/store"
	"github.com/Keksclan/rawrmenu/store/db/internal/sqlstore"
)

var dialect = sqlstore.Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	InitializedQuery: `SELECT EXISTS (SELECT 1 FROM information_schema.tables
		WHERE table_catalog = current_database() AND table_name = 'menus' AND table_type = 'BASE TABLE')`,
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return sqlstore.New(db, dialect), nil
}
