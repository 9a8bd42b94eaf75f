// exposes a Store interface that is passed to the identity and document layers
package db

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

// ErrNotFound is returned when a user or document does not exist.
var ErrNotFound = errors.New("not found")

type Store interface {
	// user functions
	CreateUser(ctx context.Context, id string, anonymous bool) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	TouchUser(ctx context.Context, id string) error

	// document functions
	GetDocument(ctx context.Context, path string) (*model.Document, error)
	MergeDocument(ctx context.Context, path string, patch []byte) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
