// Package api exposes the itinerary planner over HTTP.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/recommend"
	"github.com/tripweaver/tripweaver/internal/service"
)

// Server routes planner requests.
type Server struct {
	DB          *sql.DB
	Attractions *repository.AttractionRepo
	Saved       *repository.ItineraryRepo
	Itineraries *service.ItineraryService

	httpServer *http.Server
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate_itinerary", s.handleGenerateItinerary)
	mux.HandleFunc("GET /attractions", s.handleListAttractions)
	mux.HandleFunc("GET /attractions/{id}", s.handleGetAttraction)
	mux.HandleFunc("GET /itineraries", s.handleListItineraries)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// ListenAndServe blocks until ctx is cancelled, then drains for up to 10s.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// itineraryRequest mirrors the planning request body.
type itineraryRequest struct {
	City           string   `json:"city"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Budget         int      `json:"budget"`
	Preferences    []string `json:"preferences"`
	DailyStartHour int      `json:"daily_start_hour"`
	DailyEndHour   int      `json:"daily_end_hour"`
}

type planEntry struct {
	AttractionName   string `json:"attraction_name,omitempty"`
	StartTimeMinutes *int   `json:"start_time_minutes,omitempty"`
	EndTimeMinutes   *int   `json:"end_time_minutes,omitempty"`
	ArrivalTime      string `json:"arrival_time,omitempty"`
	Note             string `json:"note,omitempty"`
}

type dayEntry struct {
	Day  string      `json:"day"`
	Plan []planEntry `json:"plan"`
}

type itineraryResponse struct {
	ID        string     `json:"id"`
	Itinerary []dayEntry `json:"itinerary"`
}

func (s *Server) handleGenerateItinerary(w http.ResponseWriter, r *http.Request) {
	var req itineraryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid input data: "+err.Error())
		return
	}
	if req.City == "" {
		writeError(w, http.StatusBadRequest, "invalid input data: city required")
		return
	}

	id, plans, err := s.Itineraries.Generate(r.Context(), recommend.Request{
		City:           req.City,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Budget:         req.Budget,
		Preferences:    req.Preferences,
		DailyStartHour: req.DailyStartHour,
		DailyEndHour:   req.DailyEndHour,
	})
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, service.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "invalid input data: "+err.Error())
		default:
			log.Printf("generate itinerary: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	resp := itineraryResponse{ID: id, Itinerary: []dayEntry{}}
	for _, p := range plans {
		day := dayEntry{Day: p.Day, Plan: []planEntry{}}
		if p.Note != "" {
			day.Plan = append(day.Plan, planEntry{Note: p.Note})
		}
		for _, st := range p.Stops {
			start, end := st.StartMinutes, st.EndMinutes
			day.Plan = append(day.Plan, planEntry{
				AttractionName:   st.AttractionName,
				StartTimeMinutes: &start,
				EndTimeMinutes:   &end,
				ArrivalTime:      st.ArrivalTime,
			})
		}
		resp.Itinerary = append(resp.Itinerary, day)
	}
	writeJSON(w, http.StatusOK, resp)
}

type attractionEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"review_count"`
	PriceLevel     int      `json:"price_level"`
	Themes         []string `json:"themes"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
	DominantTheme  *string  `json:"dominant_theme,omitempty"`
}

func (s *Server) handleListAttractions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repository.AttractionFilters{
		City:  q.Get("city"),
		Theme: q.Get("theme"),
	}
	if raw := q.Get("max_price"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 4 {
			writeError(w, http.StatusBadRequest, "max_price must be 1-4")
			return
		}
		filters.MaxPrice = n
	}

	list, err := s.Attractions.List(r.Context(), filters)
	if err != nil {
		log.Printf("list attractions: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]attractionEntry, 0, len(list))
	for _, a := range list {
		out = append(out, toAttractionEntry(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attractions": out})
}

func (s *Server) handleGetAttraction(w http.ResponseWriter, r *http.Request) {
	a, err := s.Attractions.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "attraction not found")
		return
	}
	if err != nil {
		log.Printf("get attraction: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toAttractionEntry(a))
}

type itinerarySummary struct {
	ID        string `json:"id"`
	City      string `json:"city"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleListItineraries(w http.ResponseWriter, r *http.Request) {
	list, err := s.Saved.List(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		log.Printf("list itineraries: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]itinerarySummary, 0, len(list))
	for _, it := range list {
		out = append(out, itinerarySummary{
			ID: it.ID, City: it.City,
			StartDate: it.StartDate, EndDate: it.EndDate,
			CreatedAt: it.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"itineraries": out})
}

func toAttractionEntry(a repository.Attraction) attractionEntry {
	return attractionEntry{
		ID: a.ID, Name: a.Name, City: a.City,
		Latitude: a.Latitude, Longitude: a.Longitude,
		Rating: a.Rating, ReviewCount: a.ReviewCount,
		PriceLevel: a.PriceLevel, Themes: a.Themes,
		SentimentScore: a.SentimentScore, DominantTheme: a.DominantTheme,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "db unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
