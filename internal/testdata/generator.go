package testdata

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Attractions *repository.AttractionRepo
}

// Seed creates a deterministic sample city the tests and the TUI demo can
// plan against. Mirrors the mock rows the data pipeline produces.
func Seed(ctx context.Context, repos Repos) error {
	type row struct {
		Name     string
		Lat, Lon float64
		Rating   float64
		Reviews  int
		Open     int
		Close    int
		Duration int
		Price    int
		Themes   []string
		Text     string
	}
	rows := []row{
		{"Museum A", 40.71, -74.00, 4.8, 1200, 540, 1020, 120, 2,
			[]string{"historical", "culture"}, "great museum a must see"},
		{"Park B", 40.72, -74.01, 4.2, 300, 480, 1320, 180, 1,
			[]string{"outdoor", "adventure"}, "beautiful park excellent trails"},
		{"Restaurant C", 40.73, -74.02, 4.5, 800, 720, 1380, 90, 3,
			[]string{"food", "dining"}, "amazing food very expensive"},
		{"Landmark D", 40.74, -74.03, 4.9, 5000, 600, 1200, 60, 1,
			[]string{"historical", "landmark"}, "iconic landmark worth the visit"},
		{"Gallery E", 40.75, -74.04, 3.9, 150, 570, 960, 150, 3,
			[]string{"culture", "art"}, "nice art but small and dated"},
	}
	for i, r := range rows {
		a := repository.Attraction{
			ID:               uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("seed:%d:%s", i, r.Name))).String(),
			City:             "Sample City",
			Name:             r.Name,
			Latitude:         r.Lat,
			Longitude:        r.Lon,
			Rating:           r.Rating,
			ReviewCount:      r.Reviews,
			OpenTime:         r.Open,
			CloseTime:        r.Close,
			AvgVisitDuration: r.Duration,
			PriceLevel:       r.Price,
			Themes:           r.Themes,
			RawReviews:       r.Text,
		}
		if err := repos.Attractions.Upsert(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
