package main

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/config"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/content"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/storage"
)

// InitContent selects where the declarations and prayer topics come from:
// Spaces, a local file, or the embedded bundle.
func InitContent(ctx context.Context, cfg *config.Config) (*content.Content, error) {
	if cfg.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.SpacesBucket).Str("key", cfg.SpacesKey).Msg("loading content from Spaces")
		return content.Load(ctx, spacesStorage, cfg.SpacesKey)
	}

	if cfg.ContentPath != "" {
		dir, name := filepath.Split(cfg.ContentPath)
		log.Info().Str("path", cfg.ContentPath).Msg("loading content from local file")
		return content.Load(ctx, storage.NewLocalStorage(dir), name)
	}

	log.Info().Msg("using embedded content")
	return content.Default(), nil
}
