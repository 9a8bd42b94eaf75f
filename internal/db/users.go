package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

// CreateUser inserts a user row. Creating an id that already exists is not
// an error; the existing row is returned.
func (s *pgStore) CreateUser(ctx context.Context, id string, anonymous bool) (*model.User, error) {
	query := `
	INSERT INTO users (id, anonymous, created_at, last_seen_at)
	VALUES ($1, $2, now(), now())
	ON CONFLICT (id) DO UPDATE SET last_seen_at = now()
	RETURNING id, anonymous, created_at, last_seen_at;
	`
	var u model.User
	if err := s.db.GetContext(ctx, &u, query, id, anonymous); err != nil {
		log.Error().Err(err).Str("user", id).Msg("failed to create user")
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user by id. Returns nil, ErrNotFound if not found.
func (s *pgStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	query := `
	SELECT id, anonymous, created_at, last_seen_at
	FROM users
	WHERE id = $1;
	`
	err := s.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("failed to get user by id")
		return nil, err
	}
	return &u, nil
}

// TouchUser bumps last_seen_at.
func (s *pgStore) TouchUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_seen_at = now() WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to touch user - exec")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
