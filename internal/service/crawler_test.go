package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

func TestCrawlPaginatesAndSavesReviews(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/attractions", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `<html><body>
				<div class="attraction-card">
					<a href="/detail/tower"><span class="name">Old Tower</span></a>
					<span class="rating-value">4.9</span>
				</div>
			</body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body>
			<div class="attraction-card">
				<a href="/detail/museum"><span class="name">City Museum</span></a>
				<span class="rating-value">4.6</span>
			</div>
			<div class="attraction-card">
				<a href="/detail/park"><span class="name">River Park</span></a>
				<span class="rating-value">4.1</span>
			</div>
			<a class="next-page" href="/attractions?page=2">next</a>
		</body></html>`)
	})
	mux.HandleFunc("/detail/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<p class="review-text">wonderful place loved every minute</p>
			<p class="review-text">great experience would come back</p>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	repo := newTestDB(t)
	crawler := &Crawler{Attractions: repo, CityLat: 40.7, CityLon: -74.0}

	res, err := crawler.Crawl(context.Background(), srv.URL+"/attractions", "New York")
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 2, res.PagesVisited)
	require.Equal(t, 3, res.Saved)

	list, err := repo.List(context.Background(), repository.AttractionFilters{City: "New York"})
	require.NoError(t, err)
	require.Len(t, list, 3)

	museum, err := findByName(list, "City Museum")
	require.NoError(t, err)
	require.Equal(t, 4.6, museum.Rating)
	require.Equal(t, 2, museum.ReviewCount)
	require.Contains(t, museum.RawReviews, "wonderful place")
	require.Contains(t, museum.RawReviews, "great experience")
	require.NotNil(t, museum.URL)
	require.Equal(t, srv.URL+"/detail/museum", *museum.URL)
	require.NotEqual(t, 0.0, museum.Latitude)
}

func TestCrawlRespectsPageBudget(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// every page links to another, without a budget this never ends
		fmt.Fprintf(w, `<html><body>
			<div class="attraction-card"><span class="name">Stop %s</span></div>
			<a class="next-page" href="/next%s">next</a>
		</body></html>`, r.URL.Path, r.URL.Path)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	crawler := &Crawler{Attractions: newTestDB(t), MaxPages: 3}
	res, err := crawler.Crawl(context.Background(), srv.URL+"/", "New York")
	require.NoError(t, err)
	require.Equal(t, 3, res.PagesVisited)
	require.Equal(t, 3, res.Saved)
}

func TestCrawlReportsNamelessCards(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div class="attraction-card"><span class="rating-value">4.0</span></div>
			<div class="attraction-card"><span class="name">Named Spot</span></div>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	crawler := &Crawler{Attractions: newTestDB(t)}
	res, err := crawler.Crawl(context.Background(), srv.URL+"/", "New York")
	require.NoError(t, err)
	require.Equal(t, 1, res.Saved)
	require.Len(t, res.Errors, 1)
}

func TestCrawlListingFetchFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	crawler := &Crawler{Attractions: newTestDB(t)}
	_, err := crawler.Crawl(context.Background(), srv.URL+"/", "New York")
	require.Error(t, err)
	require.Contains(t, err.Error(), "listing")
}

func findByName(list []repository.Attraction, name string) (repository.Attraction, error) {
	for _, a := range list {
		if a.Name == name {
			return a, nil
		}
	}
	return repository.Attraction{}, fmt.Errorf("attraction %q not found", name)
}
