package dashboard

import (
	"bytes"
	"html/template"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/kova98/nbainsights/enums"
)

const (
	chartWidth  = 640
	chartHeight = 320
	marginLeft  = 56
	marginRight = 16
	marginTop   = 24
	marginBot   = 48
)

var sentimentColors = map[enums.Sentiment]string{
	enums.SentimentPositive: "#22c55e",
	enums.SentimentNeutral:  "#64748b",
	enums.SentimentNegative: "#ef4444",
}

const (
	histogramColor = "#8b5cf6"
	timelineColor  = "#38bdf8"
	axisStyle      = "stroke:#94a3b8;stroke-width:1"
	labelStyle     = "font-family:sans-serif;font-size:11px;fill:#475569"
)

type plotArea struct {
	x, y, w, h int
}

func newPlotArea() plotArea {
	return plotArea{
		x: marginLeft,
		y: marginTop,
		w: chartWidth - marginLeft - marginRight,
		h: chartHeight - marginTop - marginBot,
	}
}

func (a plotArea) bottom() int { return a.y + a.h }

// scaleY maps v in [0, max] to a pixel row inside the plot area.
func (a plotArea) scaleY(v, maxV float64) int {
	if maxV <= 0 {
		return a.bottom()
	}
	return a.bottom() - int(math.Round(v/maxV*float64(a.h)))
}

func (a plotArea) axes(canvas *svg.SVG, maxV float64, yLabel string) {
	canvas.Line(a.x, a.bottom(), a.x+a.w, a.bottom(), axisStyle)
	canvas.Line(a.x, a.y, a.x, a.bottom(), axisStyle)
	for _, tick := range yTicks(maxV) {
		y := a.scaleY(tick, maxV)
		canvas.Line(a.x-4, y, a.x, y, axisStyle)
		canvas.Text(a.x-8, y+4, strconv.Itoa(int(tick)), labelStyle+";text-anchor:end")
	}
	canvas.TranslateRotate(14, a.y+a.h/2, -90)
	canvas.Text(0, 0, yLabel, labelStyle+";text-anchor:middle")
	canvas.Gend()
}

// yTicks returns up to five whole-number ticks from 0 to maxV.
func yTicks(maxV float64) []float64 {
	if maxV <= 0 {
		return []float64{0}
	}
	step := math.Max(1, math.Ceil(maxV/4))
	var ticks []float64
	for v := 0.0; v <= maxV; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// SentimentChart draws one bar per sentiment label.
func SentimentChart(counts []SentimentCount) template.HTML {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(chartWidth, chartHeight, `viewBox="0 0 640 320"`, `role="img"`)
	canvas.Title("Sentiment Distribution")

	area := newPlotArea()
	maxV := 0.0
	for _, c := range counts {
		maxV = math.Max(maxV, float64(c.Count))
	}
	area.axes(canvas, maxV, "Number of Posts")

	if len(counts) > 0 {
		slot := area.w / len(counts)
		barW := slot * 3 / 5
		for i, c := range counts {
			x := area.x + i*slot + (slot-barW)/2
			y := area.scaleY(float64(c.Count), maxV)
			canvas.Rect(x, y, barW, area.bottom()-y, "fill:"+sentimentColors[c.Sentiment])
			canvas.Text(x+barW/2, y-6, strconv.Itoa(c.Count), labelStyle+";text-anchor:middle")
			canvas.Text(x+barW/2, area.bottom()+18, string(c.Sentiment), labelStyle+";text-anchor:middle")
		}
	}
	canvas.Text(area.x+area.w/2, chartHeight-8, "Sentiment", labelStyle+";text-anchor:middle")
	canvas.End()
	return inline(&buf)
}

// HistogramChart draws the score distribution.
func HistogramChart(bins []Bin) template.HTML {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(chartWidth, chartHeight, `viewBox="0 0 640 320"`, `role="img"`)
	canvas.Title("Upvotes Distribution")

	area := newPlotArea()
	maxV := 0.0
	for _, b := range bins {
		maxV = math.Max(maxV, float64(b.Count))
	}
	area.axes(canvas, maxV, "Number of Posts")

	if len(bins) > 0 {
		barW := area.w / len(bins)
		for i, b := range bins {
			x := area.x + i*barW
			y := area.scaleY(float64(b.Count), maxV)
			if b.Count > 0 {
				canvas.Rect(x+1, y, barW-2, area.bottom()-y, "fill:"+histogramColor)
			}
		}
		canvas.Text(area.x, area.bottom()+18, formatScore(bins[0].Low), labelStyle)
		canvas.Text(area.x+area.w, area.bottom()+18, formatScore(bins[len(bins)-1].High), labelStyle+";text-anchor:end")
	}
	canvas.Text(area.x+area.w/2, chartHeight-8, "Upvotes", labelStyle+";text-anchor:middle")
	canvas.End()
	return inline(&buf)
}

// TimelineChart draws posts per time window as a filled area with markers.
func TimelineChart(bins []TimeBin) template.HTML {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(chartWidth, chartHeight, `viewBox="0 0 640 320"`, `role="img"`)
	canvas.Title("Posts Over Time")

	area := newPlotArea()
	maxV := 0.0
	for _, b := range bins {
		maxV = math.Max(maxV, float64(b.Count))
	}
	area.axes(canvas, maxV, "Posts")

	if len(bins) > 0 {
		xs := make([]int, len(bins))
		ys := make([]int, len(bins))
		for i, b := range bins {
			xs[i] = area.x + area.w/2
			if len(bins) > 1 {
				xs[i] = area.x + i*area.w/(len(bins)-1)
			}
			ys[i] = area.scaleY(float64(b.Count), maxV)
		}

		px := append([]int{xs[0]}, xs...)
		px = append(px, xs[len(xs)-1])
		py := append([]int{area.bottom()}, ys...)
		py = append(py, area.bottom())
		canvas.Polygon(px, py, "fill:"+timelineColor+";fill-opacity:0.35;stroke:none")
		canvas.Polyline(xs, ys, "fill:none;stroke:"+timelineColor+";stroke-width:2")
		for i := range xs {
			canvas.Circle(xs[i], ys[i], 3, "fill:"+timelineColor)
		}

		canvas.Text(xs[0], area.bottom()+18, bins[0].Start.Format("Jan 2 15:04"), labelStyle)
		canvas.Text(xs[len(xs)-1], area.bottom()+18, bins[len(bins)-1].Start.Format("Jan 2 15:04"), labelStyle+";text-anchor:end")
	}
	canvas.Text(area.x+area.w/2, chartHeight-8, "Date", labelStyle+";text-anchor:middle")
	canvas.End()
	return inline(&buf)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// inline drops the XML prolog svgo writes so the SVG can sit inside HTML.
func inline(buf *bytes.Buffer) template.HTML {
	s := buf.String()
	if i := strings.Index(s, "<svg"); i > 0 {
		s = s[i:]
	}
	return template.HTML(s)
}
