package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripweaver/tripweaver/internal/database"
	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/recommend"
	"github.com/tripweaver/tripweaver/internal/testdata"
)

func newItineraryService(t *testing.T) *ItineraryService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	attractions := repository.NewAttractionRepo(db)
	require.NoError(t, testdata.Seed(context.Background(), testdata.Repos{Attractions: attractions}))

	return &ItineraryService{
		Attractions: attractions,
		Itineraries: repository.NewItineraryRepo(db),
		Engine:      &recommend.Engine{ThemeVocabulary: []string{"historical", "culture", "outdoor", "food", "art"}},
		Solver:      &planner.Solver{SpeedKmph: 20},
	}
}

func TestGenerateTwoDayTrip(t *testing.T) {
	t.Parallel()

	svc := newItineraryService(t)
	req := recommend.Request{
		City:        "Sample City",
		Budget:      4,
		Preferences: []string{"historical", "culture"},
		StartDate:   "2026-06-01",
		EndDate:     "2026-06-02",
	}

	id, plans, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, plans, 2)
	require.Equal(t, "2026-06-01", plans[0].Day)
	require.Equal(t, "2026-06-02", plans[1].Day)

	// each scheduled attraction appears on exactly one day
	seen := map[string]string{}
	total := 0
	for _, p := range plans {
		require.Empty(t, p.Note)
		require.LessOrEqual(t, len(p.Stops), 4)
		for _, st := range p.Stops {
			day, dup := seen[st.AttractionName]
			require.False(t, dup, "%s on both %s and %s", st.AttractionName, day, p.Day)
			seen[st.AttractionName] = p.Day
			total++
		}
	}
	require.Equal(t, 5, total)

	// stops within a day are ordered and non-overlapping
	for _, p := range plans {
		for i := 1; i < len(p.Stops); i++ {
			require.GreaterOrEqual(t, p.Stops[i].StartMinutes, p.Stops[i-1].EndMinutes)
		}
	}
}

func TestGeneratePersistsItinerary(t *testing.T) {
	t.Parallel()

	svc := newItineraryService(t)
	req := recommend.Request{
		City:      "Sample City",
		Budget:    4,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-01",
	}

	id, plans, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	saved, err := svc.Itineraries.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Sample City", saved.City)
	require.Equal(t, "2026-06-01", saved.StartDate)
	require.Equal(t, "2026-06-01", saved.EndDate)
	require.Len(t, saved.Stops, len(plans[0].Stops))
	for i, st := range saved.Stops {
		require.Equal(t, plans[0].Stops[i].AttractionName, st.AttractionName)
		require.NotNil(t, st.AttractionID)
		require.NotNil(t, st.ArrivalTime)
	}
}

func TestGenerateBudgetLimitsPool(t *testing.T) {
	t.Parallel()

	svc := newItineraryService(t)
	req := recommend.Request{
		City:      "Sample City",
		Budget:    1, // only Park B and Landmark D are price level 1
		StartDate: "2026-06-01",
		EndDate:   "2026-06-02",
	}

	_, plans, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Stops, 2)
	for _, st := range plans[0].Stops {
		require.Contains(t, []string{"Park B", "Landmark D"}, st.AttractionName)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := newItineraryService(t)
	base := recommend.Request{
		City:      "Sample City",
		Budget:    2,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-02",
	}

	cases := []struct {
		name   string
		mutate func(*recommend.Request)
	}{
		{"bad start date", func(r *recommend.Request) { r.StartDate = "June 1st" }},
		{"bad end date", func(r *recommend.Request) { r.EndDate = "2026-13-40" }},
		{"end before start", func(r *recommend.Request) { r.EndDate = "2026-05-30" }},
		{"budget too low", func(r *recommend.Request) { r.Budget = 0 }},
		{"budget too high", func(r *recommend.Request) { r.Budget = 9 }},
		{"inverted day hours", func(r *recommend.Request) {
			r.DailyStartHour = 20
			r.DailyEndHour = 10
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, _, err := svc.Generate(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestGenerateSolveTimeoutStillReturns(t *testing.T) {
	t.Parallel()

	svc := newItineraryService(t)
	svc.SolveTimeout = time.Nanosecond

	req := recommend.Request{
		City:      "Sample City",
		Budget:    4,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-01",
	}
	_, plans, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plans, 1)
}
