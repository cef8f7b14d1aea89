package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/tripweaver/tripweaver/internal/database/repository"
)

// CrawlerSelectors names the CSS classes the crawler reads. Defaults match
// the listing-card layout the ingestion pipeline was built against.
type CrawlerSelectors struct {
	Card       string // listing card container
	Name       string // attraction name inside a card
	Rating     string // rating value inside a card
	ReviewText string // review paragraphs on the detail page
	NextPage   string // pagination link
}

// DefaultSelectors returns the stock selector set.
func DefaultSelectors() CrawlerSelectors {
	return CrawlerSelectors{
		Card:       "attraction-card",
		Name:       "name",
		Rating:     "rating-value",
		ReviewText: "review-text",
		NextPage:   "next-page",
	}
}

// CrawlResult summarizes a crawl.
type CrawlResult struct {
	PagesVisited int
	Saved        int
	Errors       []error
}

// Crawler walks listing pages, follows attraction detail links for review
// text, and persists what it finds. Coordinates are not scraped (they need a
// map API); cards without them get a city-center offset so routing still has
// something to chew on.
type Crawler struct {
	Attractions *repository.AttractionRepo
	Client      *http.Client // nil = http.DefaultClient
	Selectors   CrawlerSelectors
	MaxPages    int // listing page budget, 0 = 10

	CityLat float64
	CityLon float64
}

// Crawl runs from startURL until pagination ends or the page budget runs out.
func (c *Crawler) Crawl(ctx context.Context, startURL, city string) (CrawlResult, error) {
	if strings.TrimSpace(city) == "" {
		return CrawlResult{}, fmt.Errorf("city required")
	}
	sel := c.Selectors
	if sel.Card == "" {
		sel = DefaultSelectors()
	}
	budget := c.MaxPages
	if budget <= 0 {
		budget = 10
	}

	res := CrawlResult{}
	pageURL := startURL
	for pageURL != "" && res.PagesVisited < budget {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		doc, base, err := c.fetch(ctx, pageURL)
		if err != nil {
			return res, fmt.Errorf("listing %s: %w", pageURL, err)
		}
		res.PagesVisited++

		for i, card := range elementsByClass(doc, sel.Card) {
			name := textByClass(card, sel.Name)
			if name == "" {
				res.Errors = append(res.Errors, fmt.Errorf("%s: card %d has no name", pageURL, i))
				continue
			}
			rating := 0.0
			if raw := textByClass(card, sel.Rating); raw != "" {
				if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
					rating = f
				}
			}
			detail := firstLinkHref(card)

			var reviewTexts []string
			if detail != "" {
				detailURL := resolveRef(base, detail)
				detailDoc, _, err := c.fetch(ctx, detailURL)
				if err != nil {
					res.Errors = append(res.Errors, fmt.Errorf("detail %s: %w", detailURL, err))
				} else {
					reviewTexts = textsByClass(detailDoc, sel.ReviewText)
				}
			}

			a := repository.Attraction{
				ID:          uuid.NewString(),
				City:        city,
				Name:        name,
				Rating:      rating,
				RawReviews:  strings.Join(reviewTexts, " "),
				OpenTime:    540,
				CloseTime:   1020,
				PriceLevel:  2,
				ReviewCount: len(reviewTexts),
			}
			a.AvgVisitDuration = 60
			a.Latitude, a.Longitude = c.placeholderCoords(name)
			if detail != "" {
				u := resolveRef(base, detail)
				a.URL = &u
			}
			if err := c.Attractions.Upsert(ctx, a); err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("save %q: %w", name, err))
				continue
			}
			res.Saved++
		}

		next := ""
		for _, link := range elementsByClass(doc, sel.NextPage) {
			if href := attrValue(link, "href"); href != "" {
				next = resolveRef(base, href)
				break
			}
		}
		pageURL = next
	}
	return res, nil
}

// placeholderCoords spreads cards around the configured city center so
// distinct attractions don't collapse onto one point.
func (c *Crawler) placeholderCoords(name string) (float64, float64) {
	h := 0
	for _, r := range name {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	offset := float64(h%100) / 1000.0
	return c.CityLat + offset, c.CityLon + offset
}

func (c *Crawler) fetch(ctx context.Context, rawURL string) (*html.Node, *url.URL, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, err
	}
	return doc, base, nil
}

func resolveRef(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// --- minimal html helpers ---

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func elementsByClass(root *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, class) {
			out = append(out, n)
			return // don't descend into a match
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func textsByClass(root *html.Node, class string) []string {
	var out []string
	for _, n := range elementsByClass(root, class) {
		if t := strings.TrimSpace(nodeText(n)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func textByClass(root *html.Node, class string) string {
	texts := textsByClass(root, class)
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}

func firstLinkHref(root *html.Node) string {
	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); href != "" {
				found = href
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
