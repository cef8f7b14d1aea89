package nlp

import (
	"bufio"
	"os"
	"strings"
	"unicode"
)

// Words lowercases text and splits it into letter/digit runs. Apostrophes
// inside a word are kept so "don't" survives as one token.
func Words(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	runes := []rune(strings.ToLower(text))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' && b.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}

// SentenceSplitter splits text on sentence terminators, holding back splits
// after known abbreviations ("mr.", "st.", ...).
type SentenceSplitter struct {
	abbreviations map[string]struct{}
}

// NewSentenceSplitter builds a splitter. abbrevs entries are compared
// case-insensitively without the trailing period.
func NewSentenceSplitter(abbrevs []string) *SentenceSplitter {
	set := make(map[string]struct{}, len(abbrevs))
	for _, a := range abbrevs {
		a = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(a), "."))
		if a != "" {
			set[a] = struct{}{}
		}
	}
	return &SentenceSplitter{abbreviations: set}
}

func (s *SentenceSplitter) Split(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		sent := strings.TrimSpace(b.String())
		if sent != "" {
			out = append(out, sent)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && s.isAbbreviation(b.String()) {
			continue
		}
		// only split when followed by whitespace or end of text
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return out
}

func (s *SentenceSplitter) isAbbreviation(sofar string) bool {
	trimmed := strings.TrimSuffix(sofar, ".")
	idx := strings.LastIndexFunc(trimmed, unicode.IsSpace)
	word := strings.ToLower(trimmed[idx+1:])
	_, ok := s.abbreviations[word]
	return ok
}

// LoadAbbreviations reads the non-breaking-prefix resource at path, one
// prefix per line, # comments ignored. Falls back to DefaultAbbreviations
// when the resource pack has not been fetched.
func LoadAbbreviations(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAbbreviations, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		// the prefix file tags some entries inline (#NUMERIC_ONLY#)
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return DefaultAbbreviations, nil
	}
	return out, nil
}

// DefaultAbbreviations covers the common English non-breaking prefixes and is
// used when the abbreviations resource has not been fetched.
var DefaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "st", "ave", "blvd", "no",
	"vs", "etc", "approx", "dept", "est", "jan", "feb", "mar",
	"apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
}
