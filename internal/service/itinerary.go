package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/planner"
	"github.com/tripweaver/tripweaver/internal/recommend"
)

// ErrInvalidRequest marks planning failures caused by the request itself,
// as opposed to storage or solver errors.
var ErrInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// ItineraryService turns a planning request into a persisted day-by-day plan.
type ItineraryService struct {
	Attractions *repository.AttractionRepo
	Itineraries *repository.ItineraryRepo
	Engine      *recommend.Engine
	Solver      *planner.Solver

	AttractionsPerDay int           // 0 = 4
	SolveTimeout      time.Duration // per-day cap, 0 = 5s
}

// DayPlan is one day of the generated itinerary.
type DayPlan struct {
	Day   string // YYYY-MM-DD
	Stops []planner.Stop
	Note  string // set when the day could not be routed
}

// Generate ranks the city's attractions against the request, routes up to
// AttractionsPerDay of them per day, and saves the result. Scheduled
// attractions leave the pool, so later days draw from what remains.
func (s *ItineraryService) Generate(ctx context.Context, req recommend.Request) (string, []DayPlan, error) {
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return "", nil, invalidf("start_date: %v", err)
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return "", nil, invalidf("end_date: %v", err)
	}
	if end.Before(start) {
		return "", nil, invalidf("end_date %s before start_date %s", req.EndDate, req.StartDate)
	}
	if req.Budget < 1 || req.Budget > 4 {
		return "", nil, invalidf("budget must be 1-4, got %d", req.Budget)
	}
	dayStart := req.DailyStartHour
	if dayStart == 0 {
		dayStart = 9
	}
	dayEnd := req.DailyEndHour
	if dayEnd == 0 {
		dayEnd = 21
	}
	if dayEnd <= dayStart {
		return "", nil, invalidf("daily_end_hour %d must be after daily_start_hour %d", dayEnd, dayStart)
	}

	all, err := s.Attractions.List(ctx, repository.AttractionFilters{City: req.City})
	if err != nil {
		return "", nil, err
	}
	ranked := s.Engine.Rank(all, req)

	tripDays := int(end.Sub(start).Hours()/24) + 1
	perDay := s.AttractionsPerDay
	if perDay <= 0 {
		perDay = 4
	}
	maxAttractions := tripDays * perDay
	if len(ranked) < maxAttractions {
		maxAttractions = len(ranked)
	}
	pool := make([]repository.Attraction, 0, maxAttractions)
	for _, sc := range ranked[:maxAttractions] {
		pool = append(pool, sc.Attraction)
	}

	window := planner.DayWindow{Start: dayStart * 60, End: dayEnd * 60}
	timeout := s.SolveTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var plans []DayPlan
	for day := 0; day < tripDays; day++ {
		if len(pool) == 0 {
			break
		}
		current := start.AddDate(0, 0, day).Format(time.DateOnly)

		daily := pool
		if len(daily) > perDay {
			daily = daily[:perDay]
		}

		solveCtx, cancel := context.WithTimeout(ctx, timeout)
		stops, err := s.Solver.SolveDay(solveCtx, daily, window)
		cancel()
		if err != nil {
			plans = append(plans, DayPlan{
				Day:  current,
				Note: "no feasible route for this day's attractions",
			})
			continue
		}

		plans = append(plans, DayPlan{Day: current, Stops: stops})

		scheduled := make(map[string]struct{}, len(stops))
		for _, st := range stops {
			scheduled[st.AttractionID] = struct{}{}
		}
		next := pool[:0]
		for _, a := range pool {
			if _, ok := scheduled[a.ID]; !ok {
				next = append(next, a)
			}
		}
		pool = next
	}

	id := uuid.NewString()
	if err := s.Itineraries.Insert(ctx, s.toRecord(id, req, plans)); err != nil {
		return "", nil, fmt.Errorf("save itinerary: %w", err)
	}
	return id, plans, nil
}

func (s *ItineraryService) toRecord(id string, req recommend.Request, plans []DayPlan) repository.Itinerary {
	it := repository.Itinerary{
		ID:        id,
		City:      req.City,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	for _, p := range plans {
		if p.Note != "" {
			note := p.Note
			it.Stops = append(it.Stops, repository.ItineraryStop{
				ItineraryID: id,
				Day:         p.Day,
				Position:    0,
				Note:        &note,
			})
			continue
		}
		for i, st := range p.Stops {
			attrID := st.AttractionID
			startMin, endMin, arrival := st.StartMinutes, st.EndMinutes, st.ArrivalTime
			it.Stops = append(it.Stops, repository.ItineraryStop{
				ItineraryID:    id,
				Day:            p.Day,
				Position:       i,
				AttractionID:   &attrID,
				AttractionName: st.AttractionName,
				StartMinutes:   &startMin,
				EndMinutes:     &endMin,
				ArrivalTime:    &arrival,
			})
		}
	}
	return it
}
