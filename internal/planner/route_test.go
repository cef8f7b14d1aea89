package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	// NYC to Philadelphia, roughly 130 km
	km := Haversine(40.7128, -74.0060, 39.9526, -75.1652)
	require.InDelta(t, 130, km, 10)
	require.Zero(t, Haversine(40.7, -74.0, 40.7, -74.0))
}

func TestTravelTimeMatrix(t *testing.T) {
	t.Parallel()

	locs := []Location{
		{Lat: 40.71, Lon: -74.00},
		{Lat: 40.72, Lon: -74.01},
	}
	m := TravelTimeMatrix(locs, 20)
	require.Zero(t, m[0][0])
	require.Equal(t, m[0][1], m[1][0])
	require.Greater(t, m[0][1], 0)
	require.Less(t, m[0][1], 15) // ~1.4 km at 20 km/h
}

func attraction(id string, lat, lon float64, open, close, dur int) repository.Attraction {
	return repository.Attraction{
		ID: id, Name: "Attraction " + id,
		Latitude: lat, Longitude: lon,
		OpenTime: open, CloseTime: close, AvgVisitDuration: dur,
	}
}

func TestSolveDayOrdersByTimeWindows(t *testing.T) {
	t.Parallel()

	// windows force the visit order A, B, C regardless of geometry
	pool := []repository.Attraction{
		attraction("C", 40.71, -74.00, 900, 1000, 30),
		attraction("A", 40.712, -74.002, 540, 600, 30),
		attraction("B", 40.714, -74.004, 700, 800, 30),
	}
	s := &Solver{SpeedKmph: 20}
	stops, err := s.SolveDay(context.Background(), pool, DayWindow{Start: 540, End: 1260})
	require.NoError(t, err)
	require.Len(t, stops, 3)
	require.Equal(t, "A", stops[0].AttractionID)
	require.Equal(t, "B", stops[1].AttractionID)
	require.Equal(t, "C", stops[2].AttractionID)

	for i := 1; i < len(stops); i++ {
		require.GreaterOrEqual(t, stops[i].StartMinutes, stops[i-1].EndMinutes)
	}
}

func TestSolveDayRespectsOpeningHours(t *testing.T) {
	t.Parallel()

	pool := []repository.Attraction{
		attraction("late", 40.71, -74.00, 660, 1020, 60), // opens 11:00
	}
	s := &Solver{SpeedKmph: 20}
	stops, err := s.SolveDay(context.Background(), pool, DayWindow{Start: 540, End: 1260})
	require.NoError(t, err)
	require.Len(t, stops, 1)
	// waits for the window to open
	require.Equal(t, 660, stops[0].StartMinutes)
	require.Equal(t, "11:00", stops[0].ArrivalTime)
	require.Equal(t, 720, stops[0].EndMinutes)
}

func TestSolveDayInfeasible(t *testing.T) {
	t.Parallel()

	// closes before the day starts
	pool := []repository.Attraction{
		attraction("early", 40.71, -74.00, 300, 500, 30),
	}
	s := &Solver{SpeedKmph: 20}
	_, err := s.SolveDay(context.Background(), pool, DayWindow{Start: 540, End: 1260})
	require.ErrorIs(t, err, ErrInfeasible)
}

func TestSolveDayEmptyPool(t *testing.T) {
	t.Parallel()

	s := &Solver{}
	_, err := s.SolveDay(context.Background(), nil, DayWindow{Start: 540, End: 1260})
	require.ErrorIs(t, err, ErrInfeasible)
}

func TestSolveDayBadWindow(t *testing.T) {
	t.Parallel()

	s := &Solver{}
	_, err := s.SolveDay(context.Background(),
		[]repository.Attraction{attraction("x", 40.71, -74.0, 540, 1020, 30)},
		DayWindow{Start: 600, End: 600})
	require.ErrorIs(t, err, ErrInfeasible)
}

func TestSolveDayDropsWhatCannotFit(t *testing.T) {
	t.Parallel()

	// day only has room for one long visit
	pool := []repository.Attraction{
		attraction("one", 40.71, -74.00, 540, 1020, 300),
		attraction("two", 40.712, -74.002, 540, 1020, 300),
	}
	s := &Solver{SpeedKmph: 20}
	stops, err := s.SolveDay(context.Background(), pool, DayWindow{Start: 540, End: 900})
	require.NoError(t, err)
	require.Len(t, stops, 1)
}
