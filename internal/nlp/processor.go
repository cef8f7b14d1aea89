package nlp

import (
	"context"
	"path/filepath"

	"github.com/tripweaver/tripweaver/internal/database/repository"
	"github.com/tripweaver/tripweaver/internal/resources"
)

// TopicLabels maps topic index to a thematic label.
var TopicLabels = []string{
	"Historical/Museums",
	"Food/Dining",
	"Outdoor/Nature",
	"Nightlife/Entertainment",
	"Shopping/Markets",
}

// Processor enriches stored attractions with sentiment scores and dominant
// topic themes derived from their review text.
type Processor struct {
	Attractions *repository.AttractionRepo
	Analyzer    *Analyzer
	Splitter    *SentenceSplitter
	StopWords   map[string]struct{}

	Topics      int
	MaxFeatures int
	MaxDF       float64
	MinDF       int
	Seed        int64
	Labels      []string // defaults to TopicLabels
}

// NewProcessor loads lexicon, stopword and abbreviation resources from dir
// (built-in fallbacks apply when the resource pack has not been fetched).
func NewProcessor(attractions *repository.AttractionRepo, dir string) (*Processor, error) {
	lex, err := LoadLexicon(filepath.Join(dir, resources.LexiconFile))
	if err != nil {
		return nil, err
	}
	stop, err := LoadStopwords(filepath.Join(dir, resources.StopwordsFile))
	if err != nil {
		return nil, err
	}
	abbrevs, err := LoadAbbreviations(filepath.Join(dir, resources.AbbreviationsFile))
	if err != nil {
		return nil, err
	}
	return &Processor{
		Attractions: attractions,
		Analyzer:    &Analyzer{Lexicon: lex},
		Splitter:    NewSentenceSplitter(abbrevs),
		StopWords:   stop,
		Seed:        42,
	}, nil
}

// EnrichResult summarizes one enrichment pass.
type EnrichResult struct {
	Processed int
	FellBack  int // rows labeled from scraped tags instead of the topic model
}

// EnrichAll fits the topic model over every attraction in city (empty =
// all cities) and persists sentiment + dominant theme for rows that lack
// them. The model is fit over the whole corpus so topic assignments stay
// stable as new rows arrive.
func (p *Processor) EnrichAll(ctx context.Context, city string) (EnrichResult, error) {
	res := EnrichResult{}
	all, err := p.Attractions.List(ctx, repository.AttractionFilters{City: city})
	if err != nil {
		return res, err
	}
	if len(all) == 0 {
		return res, nil
	}

	docs := make([]string, len(all))
	for i, a := range all {
		docs[i] = a.RawReviews
	}

	vec := &Vectorizer{
		StopWords:   p.StopWords,
		MaxDF:       p.maxDF(),
		MinDF:       p.minDF(),
		MaxFeatures: p.maxFeatures(),
	}
	vec.Fit(docs)

	var model *TopicModel
	if len(vec.Vocabulary()) > 0 {
		model = &TopicModel{Topics: p.topics(), Seed: p.Seed}
		model.Fit(vec.Counts(docs))
	}

	labels := p.Labels
	if len(labels) == 0 {
		labels = TopicLabels
	}

	for i, a := range all {
		if a.SentimentScore != nil {
			continue
		}
		sentiment := p.sentiment(a.RawReviews)

		theme := ""
		if model != nil {
			if t := model.DominantTopic(i); t >= 0 && t < len(labels) {
				theme = labels[t]
			}
		}
		if theme == "" || len(Words(a.RawReviews)) == 0 {
			// corpus too small for the model; fall back to scraped tags
			if len(a.Themes) > 0 {
				theme = a.Themes[0]
			} else {
				theme = labels[0]
			}
			res.FellBack++
		}

		if err := p.Attractions.UpdateEnrichment(ctx, a.ID, sentiment, theme); err != nil {
			return res, err
		}
		res.Processed++
	}
	return res, nil
}

// sentiment averages polarity per sentence so one long gushing sentence does
// not drown a short complaint.
func (p *Processor) sentiment(text string) float64 {
	if p.Splitter == nil {
		return p.Analyzer.Polarity(text)
	}
	sentences := p.Splitter.Split(text)
	if len(sentences) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sentences {
		sum += p.Analyzer.Polarity(s)
	}
	return sum / float64(len(sentences))
}

func (p *Processor) topics() int {
	if p.Topics > 0 {
		return p.Topics
	}
	return len(TopicLabels)
}

func (p *Processor) maxFeatures() int {
	if p.MaxFeatures > 0 {
		return p.MaxFeatures
	}
	return 1000
}

func (p *Processor) maxDF() float64 {
	if p.MaxDF > 0 {
		return p.MaxDF
	}
	return 0.85
}

func (p *Processor) minDF() int {
	if p.MinDF > 0 {
		return p.MinDF
	}
	return 2
}
