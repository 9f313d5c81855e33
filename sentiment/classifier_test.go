package sentiment

import (
	"testing"

	"github.com/kova98/nbainsights/enums"
	"github.com/stretchr/testify/assert"
)

type fixedScorer map[string]float64

func (f fixedScorer) Compound(text string) float64 {
	return f[text]
}

func TestLabel_Thresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  enums.Sentiment
	}{
		{1.0, enums.SentimentPositive},
		{0.2001, enums.SentimentPositive},
		{0.2, enums.SentimentNeutral},
		{0, enums.SentimentNeutral},
		{-0.2, enums.SentimentNeutral},
		{-0.2001, enums.SentimentNegative},
		{-1.0, enums.SentimentNegative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score %v", tt.score)
	}
}

func TestClassifier_UsesScorer(t *testing.T) {
	c := NewClassifier(fixedScorer{"up": 0.2001, "flat": 0.2, "down": -0.2001, "also flat": -0.2})

	assert.Equal(t, enums.SentimentPositive, c.Classify("up"))
	assert.Equal(t, enums.SentimentNeutral, c.Classify("flat"))
	assert.Equal(t, enums.SentimentNeutral, c.Classify("also flat"))
	assert.Equal(t, enums.SentimentNegative, c.Classify("down"))
	assert.Equal(t, enums.SentimentNeutral, c.Classify("unknown"))
}

func TestClassifier_Vader(t *testing.T) {
	c := NewClassifier(NewVaderScorer())

	assert.Equal(t, enums.SentimentPositive, c.Classify("Lakers win big, everyone happy"))
	assert.Equal(t, enums.SentimentNegative, c.Classify("Lakers lose badly, fans furious"))
	assert.Equal(t, enums.SentimentNeutral, c.Classify("Lakers face Celtics Tuesday"))
}

func TestClassifier_VaderLexiconWords(t *testing.T) {
	c := NewClassifier(NewVaderScorer())

	// "play" carries a positive valence in the VADER lexicon (about +0.34).
	assert.Equal(t, enums.SentimentPositive, c.Classify("Lakers play Tuesday"))
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier(NewVaderScorer())
	titles := []string{
		"Lakers win big, everyone happy",
		"Refs were terrible tonight",
		"Injury report for Game 3",
	}

	for _, title := range titles {
		first := c.Classify(title)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, c.Classify(title), title)
		}
	}
}

func TestVaderScorer_Range(t *testing.T) {
	s := NewVaderScorer()
	for _, text := range []string{"GREAT GREAT GREAT!!!", "worst trade ever, awful, horrible", "Box score"} {
		score := s.Compound(text)
		assert.GreaterOrEqual(t, score, -1.0, text)
		assert.LessOrEqual(t, score, 1.0, text)
	}
}
