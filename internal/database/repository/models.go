package repository

import "time"

// Attraction represents an attraction row.
type Attraction struct {
	ID               string
	City             string
	Name             string
	URL              *string
	Address          *string
	Latitude         float64
	Longitude        float64
	Rating           float64
	ReviewCount      int
	OpenTime         int // minutes from midnight
	CloseTime        int // minutes from midnight
	AvgVisitDuration int // minutes
	PriceLevel       int // 1 to 4
	Themes           []string
	RawReviews       string
	SentimentScore   *float64 // nil until enriched
	DominantTheme    *string  // nil until enriched
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Theme represents a taxonomy row.
type Theme struct {
	ID        string
	Name      string
	SortOrder int
}

// Itinerary represents a saved plan.
type Itinerary struct {
	ID        string
	City      string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	CreatedAt time.Time
	Stops     []ItineraryStop
}

// ItineraryStop is one scheduled visit, or a note row for an
// infeasible day (AttractionID nil, Note set).
type ItineraryStop struct {
	ItineraryID    string
	Day            string // YYYY-MM-DD
	Position       int
	AttractionID   *string
	AttractionName string
	StartMinutes   *int
	EndMinutes     *int
	ArrivalTime    *string // HH:MM
	Note           *string
}
