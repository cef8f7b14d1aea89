package nlp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Lexicon maps lowercase words to polarity in [-1, 1].
type Lexicon map[string]float64

// ParseLexicon reads tab-separated `word<TAB>score` lines (VADER layout:
// extra trailing columns are ignored). Scores outside [-1,1] are assumed to
// be on the VADER -4..4 scale and normalized.
func ParseLexicon(r io.Reader) (Lexicon, error) {
	lex := make(Lexicon)
	sc := bufio.NewScanner(r)
	maxAbs := 0.0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("lexicon line %d: expected word<TAB>score", line)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", line, err)
		}
		word := strings.ToLower(strings.TrimSpace(fields[0]))
		lex[word] = score
		if math.Abs(score) > maxAbs {
			maxAbs = math.Abs(score)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if maxAbs > 1 {
		for w, s := range lex {
			lex[w] = s / maxAbs
		}
	}
	return lex, nil
}

// LoadLexicon reads the lexicon resource at path, falling back to the
// built-in lexicon when the file is absent.
func LoadLexicon(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return builtinLexicon(), nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseLexicon(f)
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nor": {},
	"n't": {}, "don't": {}, "doesn't": {}, "didn't": {}, "isn't": {},
	"wasn't": {}, "aren't": {}, "won't": {}, "can't": {}, "couldn't": {},
	"wouldn't": {}, "shouldn't": {}, "without": {},
}

var intensifiers = map[string]float64{
	"very": 1.25, "really": 1.25, "extremely": 1.5, "absolutely": 1.5,
	"incredibly": 1.5, "so": 1.15, "quite": 1.1,
	"slightly": 0.75, "somewhat": 0.8, "barely": 0.6,
}

// Analyzer scores text polarity against a lexicon, with negation flipping
// inside a 3-token lookback window and intensifier scaling.
type Analyzer struct {
	Lexicon Lexicon
}

// Polarity returns the mean polarity of matched tokens, clamped to [-1, 1].
// Text with no lexicon hits scores 0.
func (a *Analyzer) Polarity(text string) float64 {
	tokens := Words(text)
	sum := 0.0
	hits := 0
	for i, tok := range tokens {
		score, ok := a.Lexicon[tok]
		if !ok {
			continue
		}
		scale := 1.0
		negated := false
		lo := i - 3
		if lo < 0 {
			lo = 0
		}
		for _, prev := range tokens[lo:i] {
			if _, neg := negations[prev]; neg {
				negated = !negated
			}
			if s, ok := intensifiers[prev]; ok {
				scale *= s
			}
		}
		if negated {
			score = -score
		}
		sum += score * scale
		hits++
	}
	if hits == 0 {
		return 0
	}
	mean := sum / float64(hits)
	if mean > 1 {
		return 1
	}
	if mean < -1 {
		return -1
	}
	return mean
}

// builtinLexicon is a compact fallback so enrichment works before the
// resource pack has been fetched.
func builtinLexicon() Lexicon {
	return Lexicon{
		"amazing": 0.9, "awesome": 0.9, "excellent": 0.9, "wonderful": 0.85,
		"fantastic": 0.85, "great": 0.8, "beautiful": 0.8, "stunning": 0.8,
		"lovely": 0.7, "good": 0.6, "nice": 0.5, "enjoyable": 0.6,
		"fun": 0.6, "friendly": 0.5, "clean": 0.4, "worth": 0.5,
		"iconic": 0.5, "impressive": 0.7, "must": 0.3, "recommend": 0.6,
		"charming": 0.6, "delicious": 0.8, "relaxing": 0.5, "peaceful": 0.5,
		"bad": -0.6, "poor": -0.6, "terrible": -0.9, "awful": -0.9,
		"horrible": -0.9, "disappointing": -0.7, "boring": -0.6,
		"dirty": -0.6, "crowded": -0.4, "overpriced": -0.6,
		"expensive": -0.3, "rude": -0.7, "small": -0.2, "dated": -0.4,
		"mediocre": -0.5, "noisy": -0.4, "long": -0.1, "waste": -0.7,
		"avoid": -0.7, "broken": -0.5,
	}
}
