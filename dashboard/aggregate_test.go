package dashboard

import (
	"testing"
	"time"

	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsWithScores(scores ...int) []Row {
	rows := make([]Row, len(scores))
	for i, s := range scores {
		rows[i] = Row{Post: data.Post{Score: s}}
	}
	return rows
}

func TestCountSentiments_AllLabelsInOrder(t *testing.T) {
	rows := []Row{{Sentiment: enums.SentimentNegative}, {Sentiment: enums.SentimentNegative}}

	assert.Equal(t, []SentimentCount{
		{enums.SentimentPositive, 0},
		{enums.SentimentNeutral, 0},
		{enums.SentimentNegative, 2},
	}, CountSentiments(rows))
}

func TestScoreHistogram(t *testing.T) {
	bins := ScoreHistogram(rowsWithScores(0, 5, 10, 99, 100), 10)

	require.Len(t, bins, 10)
	assert.Equal(t, 0.0, bins[0].Low)
	assert.Equal(t, 100.0, bins[9].High)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 1, bins[1].Count)
	assert.Equal(t, 2, bins[9].Count)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
}

func TestScoreHistogram_SingleValue(t *testing.T) {
	bins := ScoreHistogram(rowsWithScores(7, 7, 7), 30)
	assert.Equal(t, []Bin{{Low: 7, High: 7, Count: 3}}, bins)
	assert.Nil(t, ScoreHistogram(nil, 30))
}

func TestPostsOverTime_AlignedWithEmptyBins(t *testing.T) {
	day := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{Post: data.Post{CreatedUTC: day.Add(1 * time.Hour)}},
		{Post: data.Post{CreatedUTC: day.Add(5*time.Hour + 59*time.Minute)}},
		{Post: data.Post{CreatedUTC: day.Add(19 * time.Hour)}},
	}

	bins := PostsOverTime(rows, 6*time.Hour)

	require.Len(t, bins, 4)
	assert.Equal(t, day, bins[0].Start)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 0, bins[1].Count)
	assert.Equal(t, 0, bins[2].Count)
	assert.Equal(t, day.Add(18*time.Hour), bins[3].Start)
	assert.Equal(t, 1, bins[3].Count)
}

func TestWordFrequencies(t *testing.T) {
	rows := []Row{
		{Post: data.Post{Title: "LeBron James scores 40 in the win"}},
		{Post: data.Post{Title: "LeBron's injury: what we know"}},
		{Post: data.Post{Title: "Win or go home, LeBron!"}},
	}

	words := WordFrequencies(rows, 3)

	assert.Equal(t, []WordCount{{"lebron", 3}, {"win", 2}, {"40", 1}}, words)
}

func TestTokenize_DropsStopwordsAndShortWords(t *testing.T) {
	assert.Equal(t, []string{"lakers", "beat", "celtics", "sure"}, tokenize("The Lakers beat a Celtics, I'm sure it's x"))
}
