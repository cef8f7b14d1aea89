package nlp

import (
	"bufio"
	"math"
	"os"
	"sort"
	"strings"
)

// Vectorizer builds a vocabulary over documents and produces TF-IDF rows.
// Terms appearing in more than MaxDF of documents or fewer than MinDF
// documents are dropped; the vocabulary is capped at MaxFeatures terms by
// corpus frequency.
type Vectorizer struct {
	StopWords   map[string]struct{}
	MaxDF       float64 // proportion of documents, 0 = 1.0
	MinDF       int     // absolute document count, 0 = 1
	MaxFeatures int     // 0 = unlimited

	vocab []string
	index map[string]int
	idf   []float64
}

// Fit learns the vocabulary and IDF weights.
func (v *Vectorizer) Fit(docs []string) {
	maxDF := v.MaxDF
	if maxDF <= 0 {
		maxDF = 1.0
	}
	minDF := v.MinDF
	if minDF <= 0 {
		minDF = 1
	}

	df := make(map[string]int)
	total := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Words(doc) {
			if _, stop := v.StopWords[tok]; stop {
				continue
			}
			total[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}

	n := len(docs)
	var terms []string
	for term, count := range df {
		if count < minDF {
			continue
		}
		if float64(count) > maxDF*float64(n) {
			continue
		}
		terms = append(terms, term)
	}
	// keep the most frequent terms, alphabetical tiebreak for determinism
	sort.Slice(terms, func(i, j int) bool {
		if total[terms[i]] != total[terms[j]] {
			return total[terms[i]] > total[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	v.vocab = terms
	v.index = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.index[term] = i
		// smoothed idf, as sklearn computes it
		v.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string { return v.vocab }

// Counts returns raw term counts for each document over the fitted vocabulary.
func (v *Vectorizer) Counts(docs []string) [][]int {
	out := make([][]int, len(docs))
	for d, doc := range docs {
		row := make([]int, len(v.vocab))
		for _, tok := range Words(doc) {
			if i, ok := v.index[tok]; ok {
				row[i]++
			}
		}
		out[d] = row
	}
	return out
}

// Transform returns l2-normalized TF-IDF rows.
func (v *Vectorizer) Transform(docs []string) [][]float64 {
	counts := v.Counts(docs)
	out := make([][]float64, len(counts))
	for d, row := range counts {
		vec := make([]float64, len(row))
		norm := 0.0
		for i, c := range row {
			if c == 0 {
				continue
			}
			vec[i] = float64(c) * v.idf[i]
			norm += vec[i] * vec[i]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i] /= norm
			}
		}
		out[d] = vec
	}
	return out
}

// LoadStopwords reads one word per line from path, falling back to a compact
// built-in english list when the file is absent.
func LoadStopwords(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return builtinStopwords(), nil
		}
		return nil, err
	}
	defer f.Close()

	set := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" && !strings.HasPrefix(w, "#") {
			set[w] = struct{}{}
		}
	}
	return set, sc.Err()
}

func builtinStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
		"from", "had", "has", "have", "he", "her", "his", "i", "in", "is",
		"it", "its", "my", "of", "on", "or", "our", "she", "so", "that",
		"the", "their", "them", "there", "they", "this", "to", "was", "we",
		"were", "what", "when", "which", "who", "will", "with", "you", "your",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
