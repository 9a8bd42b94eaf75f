package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

// GetDocument fetches the document stored at path. Returns nil, ErrNotFound
// if nothing was ever written there.
func (s *pgStore) GetDocument(ctx context.Context, path string) (*model.Document, error) {
	var d model.Document
	query := `
	SELECT path, data, updated_at
	FROM documents
	WHERE path = $1;
	`
	err := s.db.GetContext(ctx, &d, query, path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("path", path).Msg("failed to get document")
		return nil, err
	}
	return &d, nil
}

// MergeDocument upserts patch (a JSON object) into the document at path.
// Top-level keys in patch replace the stored ones; other keys are kept.
func (s *pgStore) MergeDocument(ctx context.Context, path string, patch []byte) error {
	query := `
	INSERT INTO documents (path, data, updated_at)
	VALUES ($1, $2::jsonb, now())
	ON CONFLICT (path) DO UPDATE
	SET data = documents.data || EXCLUDED.data,
	    updated_at = now();
	`
	if _, err := s.db.ExecContext(ctx, query, path, string(patch)); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to merge document")
		return err
	}
	return nil
}
