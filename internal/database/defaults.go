package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

// SeedDefaults ensures the baseline theme taxonomy exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	themeRepo := repository.NewThemeRepo(db)
	existing, err := themeRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	defaults := []string{
		"Historical/Museums",
		"Food/Dining",
		"Outdoor/Nature",
		"Nightlife/Entertainment",
		"Shopping/Markets",
		"historical",
		"culture",
		"outdoor",
		"adventure",
		"food",
		"dining",
		"landmark",
		"art",
		"family-friendly",
	}
	for idx, name := range defaults {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("theme:"+name)).String()
		theme := repository.Theme{ID: id, Name: name, SortOrder: idx}
		if err := themeRepo.Upsert(ctx, theme); err != nil {
			return err
		}
	}
	return nil
}
