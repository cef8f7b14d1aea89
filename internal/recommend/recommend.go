// Package recommend ranks attractions against a user preference profile.
package recommend

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/nlp"
)

// fuzzyThreshold is the minimum levenshtein similarity ratio for a free-text
// preference to snap onto a known theme term.
const fuzzyThreshold = 0.75

// Request carries the planning parameters that drive ranking.
type Request struct {
	City           string
	Budget         int // 1 to 4
	Preferences    []string
	StartDate      string // YYYY-MM-DD
	EndDate        string // YYYY-MM-DD
	DailyStartHour int
	DailyEndHour   int
}

// Scored pairs an attraction with its ranking scores.
type Scored struct {
	Attraction repository.Attraction
	Similarity float64
	Composite  float64
}

// Engine ranks attractions for a request.
type Engine struct {
	// ThemeVocabulary is the known theme taxonomy used to canonicalize
	// free-text preferences. Optional.
	ThemeVocabulary []string
}

// Rank filters attractions by budget and orders them by composite score:
// cosine similarity of theme profiles, boosted by review sentiment and
// normalized rating. Ties break by name for determinism.
func (e *Engine) Rank(attractions []repository.Attraction, req Request) []Scored {
	prefs := e.CanonicalizePreferences(req.Preferences)
	userDoc := strings.Join(prefs, " ")

	docs := make([]string, 0, len(attractions)+1)
	docs = append(docs, userDoc)
	kept := make([]repository.Attraction, 0, len(attractions))
	for _, a := range attractions {
		if req.Budget > 0 && a.PriceLevel > req.Budget {
			continue
		}
		kept = append(kept, a)
		docs = append(docs, attractionDoc(a))
	}
	if len(kept) == 0 {
		return nil
	}

	matrix := countVectors(docs)
	user := matrix[0]

	out := make([]Scored, 0, len(kept))
	for i, a := range kept {
		sim := cosine(user, matrix[i+1])
		sentiment := 0.0
		if a.SentimentScore != nil {
			sentiment = *a.SentimentScore
		}
		composite := sim * (1 + sentiment) * (a.Rating / 5.0)
		out = append(out, Scored{Attraction: a, Similarity: sim, Composite: composite})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Composite != out[j].Composite {
			return out[i].Composite > out[j].Composite
		}
		return out[i].Attraction.Name < out[j].Attraction.Name
	})
	return out
}

// CanonicalizePreferences snaps free-text preferences onto the theme
// vocabulary when close enough, and keeps them as typed otherwise.
func (e *Engine) CanonicalizePreferences(prefs []string) []string {
	out := make([]string, 0, len(prefs))
	for _, p := range prefs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		best := p
		bestRatio := 0.0
		for _, term := range e.ThemeVocabulary {
			t := strings.ToLower(term)
			r := similarityRatio(p, t)
			if r > bestRatio {
				best, bestRatio = t, r
			}
		}
		if bestRatio >= fuzzyThreshold {
			out = append(out, best)
		} else {
			out = append(out, p)
		}
	}
	return out
}

func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func attractionDoc(a repository.Attraction) string {
	parts := append([]string{}, a.Themes...)
	if a.DominantTheme != nil {
		parts = append(parts, *a.DominantTheme)
	}
	return strings.Join(parts, " ")
}

// countVectors builds raw term-count vectors over the combined vocabulary of
// all docs. Theme labels like "Food/Dining" contribute both words.
func countVectors(docs []string) [][]float64 {
	index := make(map[string]int)
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		toks := nlp.Words(doc)
		tokenized[i] = toks
		for _, t := range toks {
			if _, ok := index[t]; !ok {
				index[t] = len(index)
			}
		}
	}
	out := make([][]float64, len(docs))
	for i, toks := range tokenized {
		row := make([]float64, len(index))
		for _, t := range toks {
			row[index[t]]++
		}
		out[i] = row
	}
	return out
}

func cosine(a, b []float64) float64 {
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
