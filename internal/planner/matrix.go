// Package planner builds optimized single-day visit routes under attraction
// opening hours and a traveler's day window.
package planner

import "math"

const earthRadiusKm = 6371

// Haversine returns the great-circle distance in km between two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Location is a coordinate pair.
type Location struct {
	Lat float64
	Lon float64
}

// TravelTimeMatrix returns whole-minute pairwise travel times at speedKmph.
// A map-API distance matrix would slot in here; haversine at a fixed urban
// speed stands in for it.
func TravelTimeMatrix(locations []Location, speedKmph float64) [][]int {
	if speedKmph <= 0 {
		speedKmph = 20
	}
	n := len(locations)
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
		for j := range matrix[i] {
			if i == j {
				continue
			}
			km := Haversine(locations[i].Lat, locations[i].Lon, locations[j].Lat, locations[j].Lon)
			matrix[i][j] = int(km / speedKmph * 60)
		}
	}
	return matrix
}
