package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/kova98/nbainsights/dashboard"
	"github.com/kova98/nbainsights/enums"
	"github.com/kova98/nbainsights/matchers"
	"github.com/kova98/nbainsights/metrics"
	"github.com/pkg/errors"
)

const (
	NoFilesWarning   = "No data files found in bucket!"
	NoMatchesWarning = "No posts match your filter. Try different player or lower upvote filter."
	DateLayout       = "2006-01-02 15:04"
)

//go:embed templates/dashboard.html
var pageTemplates embed.FS

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format(DateLayout) },
	"sentimentClass": func(s enums.Sentiment) string {
		return "sentiment-" + strings.ToLower(string(s))
	},
}).ParseFS(pageTemplates, "templates/dashboard.html"))

type charts struct {
	Sentiment template.HTML
	Histogram template.HTML
	Timeline  template.HTML
	WordCloud template.HTML
}

type page struct {
	Warning    string
	Files      []string
	File       string
	Players    []string
	Player     string
	MinUpvotes int
	MaxUpvotes int
	Languages  []string
	Language   string
	View       *dashboard.View
	Charts     charts
}

type DashboardHandler struct {
	loader  *BatchLoader
	metrics *metrics.ViewerMetrics
}

func NewDashboardHandler(loader *BatchLoader, m *metrics.ViewerMetrics) *DashboardHandler {
	return &DashboardHandler{loader: loader, metrics: m}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) Result {
	ts := time.Now()
	ctx := r.Context()

	p := page{
		MaxUpvotes: MaxMinUpvotes,
		Languages:  h.loader.Pipeline().Languages(),
	}

	files, err := h.loader.Files(ctx)
	if err != nil {
		return InternalError(err, "list batch files: ")
	}
	if len(files) == 0 {
		p.Warning = NoFilesWarning
		return render(p)
	}
	p.Files = files

	filter, msg := parseFilter(r.URL.Query())
	if msg != "" {
		return BadRequest(msg)
	}
	p.Player, p.MinUpvotes, p.Language = filter.Player, filter.MinUpvotes, filter.Language

	p.File, err = resolveFile(files, r.URL.Query().Get("file"))
	if err != nil {
		return InternalError(err, "resolve batch file: ")
	}

	batch, err := h.loader.Load(ctx, p.File)
	if err != nil {
		return InternalError(err, "load batch: ")
	}
	p.Players = append([]string{matchers.AllPlayers}, batch.Players...)

	view, err := h.loader.Analyze(batch, filter)
	if errors.Is(err, dashboard.ErrNoPosts) {
		p.Warning = NoMatchesWarning
		return render(p)
	}
	if err != nil {
		return InternalError(err, "analyze batch: ")
	}

	p.View = view
	p.Charts = charts{
		Sentiment: dashboard.SentimentChart(view.Sentiments),
		Histogram: dashboard.HistogramChart(view.Histogram),
		Timeline:  dashboard.TimelineChart(view.Timeline),
		WordCloud: dashboard.WordCloud(view.Words),
	}

	res := render(p)
	if h.metrics != nil {
		h.metrics.RenderTime.Observe(time.Since(ts).Seconds())
	}
	return res
}

func render(p page) Result {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, p); err != nil {
		return InternalError(err, "render dashboard: ")
	}
	return Page(buf.Bytes())
}
