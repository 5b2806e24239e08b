package db

import (
	"github.com/pkg/errors"

	"github.com/Keksclan/rawrmenu/internal/profile"
	"github.com/Keksclan/rawrmenu/store"
	"github.com/Keksclan/rawrmenu/store/db/postgres"
	"github.com/Keksclan/rawrmenu/store/db/sqlite"
)

// NewDBDriver creates the db driver named by profile.Driver.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
