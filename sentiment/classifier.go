package sentiment

import (
	"github.com/jonreiter/govader"
	"github.com/kova98/nbainsights/enums"
)

const (
	PositiveThreshold = 0.2
	NegativeThreshold = -0.2
)

// Scorer produces a compound polarity score in [-1, 1].
type Scorer interface {
	Compound(text string) float64
}

type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

type Classifier struct {
	scorer Scorer
}

func NewClassifier(scorer Scorer) *Classifier {
	return &Classifier{scorer: scorer}
}

func (c *Classifier) Classify(text string) enums.Sentiment {
	return Label(c.scorer.Compound(text))
}

// Label maps a compound score to a sentiment. Scores exactly on a threshold
// are Neutral.
func Label(score float64) enums.Sentiment {
	switch {
	case score > PositiveThreshold:
		return enums.SentimentPositive
	case score < NegativeThreshold:
		return enums.SentimentNegative
	default:
		return enums.SentimentNeutral
	}
}
