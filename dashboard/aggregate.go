package dashboard

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/kova98/nbainsights/enums"
)

const (
	HistogramBins   = 30
	TimelineBinSize = 6 * time.Hour
	WordCloudSize   = 60
)

type SentimentCount struct {
	Sentiment enums.Sentiment
	Count     int
}

// Bin is a histogram bucket covering [Low, High). The last bin also
// includes High.
type Bin struct {
	Low   float64
	High  float64
	Count int
}

type TimeBin struct {
	Start time.Time
	Count int
}

type WordCount struct {
	Word  string
	Count int
}

// CountSentiments returns one entry per label in display order, zeros
// included.
func CountSentiments(rows []Row) []SentimentCount {
	counts := make(map[enums.Sentiment]int, len(enums.Sentiments))
	for _, r := range rows {
		counts[r.Sentiment]++
	}
	out := make([]SentimentCount, 0, len(enums.Sentiments))
	for _, s := range enums.Sentiments {
		out = append(out, SentimentCount{Sentiment: s, Count: counts[s]})
	}
	return out
}

// ScoreHistogram splits the score range into n equal-width bins.
func ScoreHistogram(rows []Row, n int) []Bin {
	if len(rows) == 0 || n <= 0 {
		return nil
	}

	lo, hi := rows[0].Score, rows[0].Score
	for _, r := range rows[1:] {
		lo = min(lo, r.Score)
		hi = max(hi, r.Score)
	}
	if lo == hi {
		return []Bin{{Low: float64(lo), High: float64(hi), Count: len(rows)}}
	}

	width := float64(hi-lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Low = float64(lo) + float64(i)*width
		bins[i].High = bins[i].Low + width
	}
	bins[n-1].High = float64(hi)

	for _, r := range rows {
		i := int(float64(r.Score-lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}

// PostsOverTime counts posts per UTC-aligned window, oldest first, with
// empty windows kept so the series is continuous.
func PostsOverTime(rows []Row, size time.Duration) []TimeBin {
	if len(rows) == 0 || size <= 0 {
		return nil
	}

	first, last := rows[0].CreatedUTC, rows[0].CreatedUTC
	for _, r := range rows[1:] {
		if r.CreatedUTC.Before(first) {
			first = r.CreatedUTC
		}
		if r.CreatedUTC.After(last) {
			last = r.CreatedUTC
		}
	}
	start := first.UTC().Truncate(size)
	n := int(last.UTC().Truncate(size).Sub(start)/size) + 1

	bins := make([]TimeBin, n)
	for i := range bins {
		bins[i].Start = start.Add(time.Duration(i) * size)
	}
	for _, r := range rows {
		bins[int(r.CreatedUTC.UTC().Sub(start)/size)].Count++
	}
	return bins
}

// WordFrequencies counts title words for the word cloud, most frequent
// first, ties alphabetical.
func WordFrequencies(rows []Row, limit int) []WordCount {
	counts := make(map[string]int)
	for _, r := range rows {
		for _, w := range tokenize(r.Title) {
			counts[w]++
		}
	}

	words := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		words = append(words, WordCount{Word: w, Count: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}

func tokenize(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		f = strings.TrimSuffix(f, "'s")
		if len([]rune(f)) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopwords = func() map[string]bool {
	words := strings.Fields(`
		a about above after again against all am an and any are aren't as at be because been before
		being below between both but by can can't cannot could couldn't did didn't do does doesn't doing
		don't down during each few for from further get got had hadn't has hasn't have haven't having he
		he'd he'll he's her here here's hers herself him himself his how how's however i i'd i'll i'm i've
		if in into is isn't it it's its itself just let's like me more most mustn't my myself no nor not of
		off on once only or other ought our ours ourselves out over own same shall shan't she she'd she'll
		she's should shouldn't so some such than that that's the their theirs them themselves then there
		there's these they they'd they'll they're they've this those through to too under until up very
		vs was wasn't we we'd we'll we're we've were weren't what what's when when's where where's which
		while who who's whom why why's will with won't would wouldn't you you'd you'll you're you've your
		yours yourself yourselves also ever www http https com reddit
	`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()
