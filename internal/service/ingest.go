package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

// IngestService handles CSV imports of attraction data.
type IngestService struct {
	Attractions *repository.AttractionRepo
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportProcessedCSV ingests enumerated attraction rows:
// name, latitude, longitude, rating, review_count, open_time, close_time,
// avg_visit_duration, price_level, themes, raw_reviews.
// A header row starting with "name" is skipped. Duplicate (city, name) rows
// are counted as skipped.
func (s *IngestService) ImportProcessedCSV(ctx context.Context, r io.Reader, city string) (IngestResult, error) {
	if strings.TrimSpace(city) == "" {
		return IngestResult{}, fmt.Errorf("city required")
	}
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 11 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected 11 columns", line))
			continue
		}

		a := repository.Attraction{
			ID:         uuid.NewString(),
			City:       city,
			Name:       strings.TrimSpace(rec[0]),
			Themes:     splitTags(rec[9]),
			RawReviews: strings.TrimSpace(rec[10]),
		}
		fields := []struct {
			name string
			dst  interface{}
			raw  string
		}{
			{"latitude", &a.Latitude, rec[1]},
			{"longitude", &a.Longitude, rec[2]},
			{"rating", &a.Rating, rec[3]},
			{"review_count", &a.ReviewCount, rec[4]},
			{"open_time", &a.OpenTime, rec[5]},
			{"close_time", &a.CloseTime, rec[6]},
			{"avg_visit_duration", &a.AvgVisitDuration, rec[7]},
			{"price_level", &a.PriceLevel, rec[8]},
		}
		bad := false
		for _, f := range fields {
			if err := parseNumber(f.raw, f.dst); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("line %d %s: %w", line, f.name, err))
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		if a.Name == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: name required", line))
			continue
		}

		if err := s.Attractions.Insert(ctx, a); err != nil {
			// skip duplicates on unique constraint
			if strings.Contains(err.Error(), "UNIQUE") {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// ImportCrawlCSV ingests raw crawler exports:
// name, url, rating, review_count, address, raw_reviews, open_hours_text,
// latitude, longitude. Open hours are parsed from text; missing duration
// defaults to 60 minutes and missing price to level 2.
func (s *IngestService) ImportCrawlCSV(ctx context.Context, r io.Reader, city string) (IngestResult, error) {
	if strings.TrimSpace(city) == "" {
		return IngestResult{}, fmt.Errorf("city required")
	}
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}
		if len(rec) < 9 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected 9 columns", line))
			continue
		}

		name := strings.TrimSpace(rec[0])
		if name == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: name required", line))
			continue
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d rating: %w", line, err))
			continue
		}
		reviewCount, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d review_count: %w", line, err))
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[7]), 64)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d latitude: %w", line, err))
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[8]), 64)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d longitude: %w", line, err))
			continue
		}
		open, close, err := ParseOpenHours(rec[6])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d open_hours: %w", line, err))
			continue
		}

		a := repository.Attraction{
			ID:               uuid.NewString(),
			City:             city,
			Name:             name,
			URL:              nullableStr(rec[1]),
			Address:          nullableStr(rec[4]),
			Latitude:         lat,
			Longitude:        lon,
			Rating:           rating,
			ReviewCount:      reviewCount,
			OpenTime:         open,
			CloseTime:        close,
			AvgVisitDuration: 60,
			PriceLevel:       2,
			RawReviews:       strings.TrimSpace(rec[5]),
		}
		if err := s.Attractions.Insert(ctx, a); err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				res.Skipped++
				continue
			}
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

// ParseOpenHours extracts an open/close window in minutes from midnight out
// of text like "Mon-Fri: 9am-5pm" or "9:30am - 10pm". Empty text yields the
// 9:00-17:00 default.
func ParseOpenHours(text string) (int, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 540, 1020, nil
	}
	if idx := strings.Index(text, ":"); idx != -1 && !strings.ContainsAny(text[:idx], "0123456789") {
		// strip a "Mon-Fri:" style day prefix
		text = text[idx+1:]
	}
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected open-close range in %q", text)
	}
	open, err := parseClockTime(parts[0])
	if err != nil {
		return 0, 0, err
	}
	close, err := parseClockTime(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if close <= open {
		return 0, 0, fmt.Errorf("close %d before open %d in %q", close, open, text)
	}
	return open, close, nil
}

// parseClockTime accepts "9am", "9:30am", "17:00".
func parseClockTime(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}
	hh, mm := s, "0"
	if idx := strings.Index(s, ":"); idx != -1 {
		hh, mm = s[:idx], s[idx+1:]
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("minute in %q: %w", s, err)
	}
	if meridiem == "pm" && hour != 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour*60 + minute, nil
}

func parseNumber(raw string, dst interface{}) error {
	raw = strings.TrimSpace(raw)
	switch d := dst.(type) {
	case *float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*d = f
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*d = n
	default:
		return fmt.Errorf("unsupported field type %T", dst)
	}
	return nil
}

func nullableStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// splitTags splits a themes cell on commas or semicolons.
func splitTags(s string) []string {
	s = strings.ReplaceAll(s, ";", ",")
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
