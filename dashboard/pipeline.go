package dashboard

import (
	"errors"
	"sort"
	"strings"

	"github.com/kova98/nbainsights/data"
	"github.com/kova98/nbainsights/enums"
	"github.com/kova98/nbainsights/matchers"
	"github.com/kova98/nbainsights/sentiment"
)

const TopPostsCount = 10

// ErrNoPosts means the filter left nothing to show. Nothing downstream of
// the filter may run on an empty set.
var ErrNoPosts = errors.New("no posts match the filter")

type Filter struct {
	MinUpvotes int
	Player     string
	Language   string
}

// Derived holds the per-post columns computed by the viewer.
type Derived struct {
	Sentiment enums.Sentiment
	Language  string
}

type Row struct {
	data.Post
	PlayerTag string
	Sentiment enums.Sentiment
	Language  string
}

type View struct {
	Filter      Filter
	Rows        []Row // newest first
	Top         []Row // highest score first, at most TopPostsCount
	Total       int
	AvgComments float64
	AvgScore    float64
	Sentiments  []SentimentCount
	Histogram   []Bin
	Timeline    []TimeBin
	Words       []WordCount
	// Computed holds derived columns that were not supplied by the caller.
	Computed map[string]Derived
}

type Pipeline struct {
	classifier *sentiment.Classifier
	detector   *sentiment.LanguageDetector
}

// NewPipeline builds a pipeline; a nil detector disables language tagging
// and language filtering.
func NewPipeline(classifier *sentiment.Classifier, detector *sentiment.LanguageDetector) *Pipeline {
	return &Pipeline{classifier: classifier, detector: detector}
}

func (p *Pipeline) DetectsLanguage() bool {
	return p.detector != nil
}

// Languages lists the codes usable in Filter.Language, or nil when language
// detection is off.
func (p *Pipeline) Languages() []string {
	if p.detector == nil {
		return nil
	}
	return p.detector.Languages()
}

// Players lists the player names found in a batch.
func Players(posts []data.Post) []string {
	titles := make([]string, len(posts))
	for i, post := range posts {
		titles[i] = post.Title
	}
	return matchers.ExtractPlayerNames(titles)
}

// Run filters posts and computes everything the dashboard shows. known may
// carry previously computed derived columns keyed by post ID.
func (p *Pipeline) Run(posts []data.Post, players []string, f Filter, known map[string]Derived) (*View, error) {
	rows := make([]Row, 0, len(posts))
	for _, post := range posts {
		if post.Score < f.MinUpvotes {
			continue
		}
		if matchers.IsPlayerSelected(f.Player) && !matchers.MatchesPlayer(post.Title, f.Player) {
			continue
		}
		rows = append(rows, Row{Post: post})
	}

	// Languages detected while filtering. Sentiment is only computed for rows
	// that survive every filter.
	detected := make(map[string]string)
	language := func(post data.Post) string {
		if d := known[post.ID]; d.Language != "" {
			return d.Language
		}
		if l, ok := detected[post.ID]; ok {
			return l
		}
		l := p.detector.Detect(post.Title)
		detected[post.ID] = l
		return l
	}

	lang := strings.ToLower(strings.TrimSpace(f.Language))
	if lang != "" && p.detector != nil {
		kept := rows[:0]
		for _, r := range rows {
			if language(r.Post) == lang {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	if len(rows) == 0 {
		return nil, ErrNoPosts
	}

	computed := make(map[string]Derived)
	derive := func(post data.Post) Derived {
		d, ok := known[post.ID]
		changed := false
		if !ok {
			d.Sentiment = p.classifier.Classify(post.Title)
			changed = true
		}
		if p.detector != nil && d.Language == "" {
			d.Language = language(post)
			changed = changed || d.Language != ""
		}
		if changed {
			computed[post.ID] = d
		}
		return d
	}

	for i := range rows {
		d := derive(rows[i].Post)
		rows[i].Sentiment = d.Sentiment
		rows[i].Language = d.Language
		rows[i].PlayerTag = matchers.PlayerTag(rows[i].Title, players)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedUTC.After(rows[j].CreatedUTC)
	})

	top := make([]Row, len(rows))
	copy(top, rows)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if len(top) > TopPostsCount {
		top = top[:TopPostsCount]
	}

	view := &View{
		Filter:     f,
		Rows:       rows,
		Top:        top,
		Total:      len(rows),
		Sentiments: CountSentiments(rows),
		Histogram:  ScoreHistogram(rows, HistogramBins),
		Timeline:   PostsOverTime(rows, TimelineBinSize),
		Words:      WordFrequencies(rows, WordCloudSize),
		Computed:   computed,
	}
	view.AvgComments, view.AvgScore = averages(rows)

	return view, nil
}

func averages(rows []Row) (comments, score float64) {
	var c, s int
	for _, r := range rows {
		c += r.NumComments
		s += r.Score
	}
	n := float64(len(rows))
	return float64(c) / n, float64(s) / n
}
