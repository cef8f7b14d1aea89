package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

// ErrInfeasible reports that no route satisfies the time windows.
var ErrInfeasible = errors.New("no feasible route for the day")

// Stop is one scheduled visit in a day route.
type Stop struct {
	AttractionID   string
	AttractionName string
	StartMinutes   int
	EndMinutes     int
	ArrivalTime    string // HH:MM
}

// DayWindow bounds the traveler's day in minutes from midnight.
type DayWindow struct {
	Start int
	End   int
}

// Solver plans one day at a time.
type Solver struct {
	SpeedKmph float64
}

// SolveDay routes the pool of attractions for a single day. The depot is the
// first attraction's location (hotel/city-center stand-in, as the data has no
// depot of its own). Visits must start inside the attraction's open window
// and finish before the day ends. Construction is cheapest feasible
// insertion; a feasibility-checked 2-opt pass then shortens travel until no
// gain remains or ctx is done. Attractions that cannot be placed are left
// out; an empty result is ErrInfeasible.
func (s *Solver) SolveDay(ctx context.Context, pool []repository.Attraction, day DayWindow) ([]Stop, error) {
	if len(pool) == 0 {
		return nil, ErrInfeasible
	}
	if day.End <= day.Start {
		return nil, fmt.Errorf("day window [%d, %d): %w", day.Start, day.End, ErrInfeasible)
	}

	// index 0 is the depot
	locations := make([]Location, 0, len(pool)+1)
	locations = append(locations, Location{Lat: pool[0].Latitude, Lon: pool[0].Longitude})
	for _, a := range pool {
		locations = append(locations, Location{Lat: a.Latitude, Lon: a.Longitude})
	}
	matrix := TravelTimeMatrix(locations, s.SpeedKmph)

	route := s.construct(pool, matrix, day)
	if len(route) == 0 {
		return nil, ErrInfeasible
	}
	route = s.improve(ctx, route, pool, matrix, day)

	schedule, ok := simulate(route, pool, matrix, day)
	if !ok {
		return nil, ErrInfeasible
	}
	stops := make([]Stop, len(route))
	for i, p := range route {
		a := pool[p-1]
		start := schedule[i]
		stops[i] = Stop{
			AttractionID:   a.ID,
			AttractionName: a.Name,
			StartMinutes:   start,
			EndMinutes:     start + a.AvgVisitDuration,
			ArrivalTime:    fmt.Sprintf("%02d:%02d", start/60, start%60),
		}
	}
	return stops, nil
}

// construct inserts attractions one at a time at the cheapest feasible
// position (node indices are 1-based into pool; 0 is the depot).
func (s *Solver) construct(pool []repository.Attraction, matrix [][]int, day DayWindow) []int {
	var route []int
	remaining := make(map[int]struct{}, len(pool))
	for i := range pool {
		remaining[i+1] = struct{}{}
	}

	for len(remaining) > 0 {
		bestNode, bestPos, bestCost := 0, -1, 0
		for node := range remaining {
			for pos := 0; pos <= len(route); pos++ {
				candidate := insertAt(route, pos, node)
				if _, ok := simulate(candidate, pool, matrix, day); !ok {
					continue
				}
				cost := travelCost(candidate, matrix)
				if bestPos == -1 || cost < bestCost ||
					(cost == bestCost && node < bestNode) {
					bestNode, bestPos, bestCost = node, pos, cost
				}
			}
		}
		if bestPos == -1 {
			break // nothing else fits today
		}
		route = insertAt(route, bestPos, bestNode)
		delete(remaining, bestNode)
	}
	return route
}

// improve runs 2-opt segment reversals while they shorten total travel and
// stay feasible.
func (s *Solver) improve(ctx context.Context, route []int, pool []repository.Attraction, matrix [][]int, day DayWindow) []int {
	improved := true
	for improved {
		improved = false
		if ctx.Err() != nil {
			return route
		}
		base := travelCost(route, matrix)
		for i := 0; i < len(route)-1 && !improved; i++ {
			for j := i + 1; j < len(route); j++ {
				candidate := reverseSegment(route, i, j)
				if travelCost(candidate, matrix) >= base {
					continue
				}
				if _, ok := simulate(candidate, pool, matrix, day); !ok {
					continue
				}
				route = candidate
				improved = true
				break
			}
		}
	}
	return route
}

// simulate walks the route from the depot at day start and returns each
// visit's start minute. Waiting for a window to open is allowed; a visit
// must start by close time and finish inside the day.
func simulate(route []int, pool []repository.Attraction, matrix [][]int, day DayWindow) ([]int, bool) {
	starts := make([]int, len(route))
	clock := day.Start
	prev := 0
	for i, node := range route {
		a := pool[node-1]
		arrive := clock + matrix[prev][node]
		if arrive < a.OpenTime {
			arrive = a.OpenTime
		}
		if arrive > a.CloseTime {
			return nil, false
		}
		depart := arrive + a.AvgVisitDuration
		if depart > day.End {
			return nil, false
		}
		starts[i] = arrive
		clock = depart
		prev = node
	}
	return starts, true
}

func travelCost(route []int, matrix [][]int) int {
	cost := 0
	prev := 0
	for _, node := range route {
		cost += matrix[prev][node]
		prev = node
	}
	return cost
}

func insertAt(route []int, pos, node int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, node)
	out = append(out, route[pos:]...)
	return out
}

func reverseSegment(route []int, i, j int) []int {
	out := make([]int, len(route))
	copy(out, route)
	for i < j {
		out[i], out[j] = out[j], out[i]
		i++
		j--
	}
	return out
}
