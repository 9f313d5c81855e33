package enums

type Sentiment string

const (
	// SentimentPositive is assigned when the compound score is above the positive threshold.
	SentimentPositive Sentiment = "Positive"

	// SentimentNeutral covers every score between the thresholds, boundaries included.
	SentimentNeutral Sentiment = "Neutral"

	// SentimentNegative is assigned when the compound score is below the negative threshold.
	SentimentNegative Sentiment = "Negative"
)

// Sentiments lists the labels in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func ParseSentiment(s string) (Sentiment, bool) {
	for _, v := range Sentiments {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}
