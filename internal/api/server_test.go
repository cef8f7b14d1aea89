package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripweaver/tripweaver/internal/database"
	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/recommend"
	"github.com/tripweaver/tripweaver/internal/service"
	"github.com/tripweaver/tripweaver/internal/testdata"
)

func newTestServer(t *testing.T) (*Server, *sql.DB) {
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

	srv := &Server{
		DB:          db,
		Attractions: attractions,
		Saved:       repository.NewItineraryRepo(db),
		Itineraries: &service.ItineraryService{
			Attractions: attractions,
			Itineraries: repository.NewItineraryRepo(db),
			Engine:      &recommend.Engine{},
			Solver:      &planner.Solver{SpeedKmph: 20},
		},
	}
	return srv, db
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, db := newTestServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	require.NoError(t, db.Close())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenerateItinerary(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	body := `{
		"city": "Sample City",
		"start_date": "2026-06-01",
		"end_date": "2026-06-02",
		"budget": 4,
		"preferences": ["historical", "culture"]
	}`

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate_itinerary", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID        string `json:"id"`
		Itinerary []struct {
			Day  string `json:"day"`
			Plan []struct {
				AttractionName   string `json:"attraction_name"`
				StartTimeMinutes *int   `json:"start_time_minutes"`
				EndTimeMinutes   *int   `json:"end_time_minutes"`
				ArrivalTime      string `json:"arrival_time"`
				Note             string `json:"note"`
			} `json:"plan"`
		} `json:"itinerary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.Len(t, resp.Itinerary, 2)
	require.Equal(t, "2026-06-01", resp.Itinerary[0].Day)
	require.NotEmpty(t, resp.Itinerary[0].Plan)

	first := resp.Itinerary[0].Plan[0]
	require.NotEmpty(t, first.AttractionName)
	require.NotNil(t, first.StartTimeMinutes)
	require.NotNil(t, first.EndTimeMinutes)
	require.Regexp(t, `^\d{2}:\d{2}$`, first.ArrivalTime)
}

func TestGenerateItineraryBadRequests(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	handler := srv.Handler()

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"city": `},
		{"unknown field", `{"city": "Sample City", "hotel": "Ritz"}`},
		{"missing city", `{"start_date": "2026-06-01", "end_date": "2026-06-02", "budget": 2}`},
		{"bad dates", `{"city": "Sample City", "start_date": "soon", "end_date": "later", "budget": 2}`},
		{"budget out of range", `{"city": "Sample City", "start_date": "2026-06-01", "end_date": "2026-06-02", "budget": 7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate_itinerary", strings.NewReader(tc.body)))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Contains(t, resp["error"], "invalid input data")
		})
	}
}

func TestListAttractions(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attractions?city=Sample+City", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Attractions []struct {
			Name       string   `json:"name"`
			PriceLevel int      `json:"price_level"`
			Themes     []string `json:"themes"`
		} `json:"attractions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Attractions, 5)
	// rating sorts Landmark D (4.9) first
	require.Equal(t, "Landmark D", resp.Attractions[0].Name)
	require.Contains(t, resp.Attractions[0].Themes, "historical")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attractions?max_price=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Attractions, 2)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attractions?max_price=9", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateItineraryStorageFailureIs500(t *testing.T) {
	t.Parallel()

	srv, db := newTestServer(t)
	require.NoError(t, db.Close())

	body := `{"city": "Sample City", "start_date": "2026-06-01", "end_date": "2026-06-01", "budget": 2}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate_itinerary", strings.NewReader(body)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "internal error", resp["error"])
}

func TestGetAttraction(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	handler := srv.Handler()

	list, err := srv.Attractions.List(context.Background(), repository.AttractionFilters{Search: "Museum A"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attractions/"+list[0].ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Name   string  `json:"name"`
		Rating float64 `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Museum A", got.Name)
	require.InDelta(t, 4.8, got.Rating, 0.001)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attractions/no-such-id", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAttractionsThemeFilter(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attractions?theme=historical", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Attractions []struct {
			Name string `json:"name"`
		} `json:"attractions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Attractions, 2)
	require.Equal(t, "Landmark D", resp.Attractions[0].Name)
	require.Equal(t, "Museum A", resp.Attractions[1].Name)
}

func TestListItineraries(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/itineraries", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Itineraries []struct {
			ID   string `json:"id"`
			City string `json:"city"`
		} `json:"itineraries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Itineraries)

	body := `{"city": "Sample City", "start_date": "2026-06-01", "end_date": "2026-06-01", "budget": 4}`
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate_itinerary", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/itineraries?city=Sample+City", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Itineraries, 1)
	require.Equal(t, "Sample City", resp.Itineraries[0].City)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate_itinerary", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
