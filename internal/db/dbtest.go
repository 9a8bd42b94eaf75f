package db

import (
	"errors"
	"os"
)

// ErrNoTestDatabase is returned by OpenTestStore when TEST_DATABASE_URL is unset.
var ErrNoTestDatabase = errors.New("TEST_DATABASE_URL environment variable is not set")

// OpenTestStore connects to TEST_DATABASE_URL and applies migrations.
func OpenTestStore(migrationsPath string) (Store, error) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		return nil, ErrNoTestDatabase
	}

	conn, err := Init(dbURL)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(conn, migrationsPath); err != nil {
		return nil, err
	}

	return NewStore(conn), nil
}
