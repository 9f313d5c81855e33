package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	svg "github.com/ajstarks/svgo"
)

const (
	cloudWidth   = 360
	cloudHeight  = 260
	minFontSize  = 10
	maxFontSize  = 42
	spiralStep   = 0.35
	spiralGrowth = 1.6
	maxSpiral    = 4000
)

// Dark-to-bright ramp in the style of the inferno colormap.
var cloudPalette = []string{"#000004", "#320a5e", "#781b6c", "#bb3754", "#ec6824", "#fbb41a", "#d8a500"}

type box struct {
	x, y, w, h float64
}

func (b box) overlaps(o box) bool {
	return b.x < o.x+o.w && o.x < b.x+b.w && b.y < o.y+o.h && o.y < b.y+b.h
}

func (b box) inside(w, h float64) bool {
	return b.x >= 0 && b.y >= 0 && b.x+b.w <= w && b.y+b.h <= h
}

type placedWord struct {
	WordCount
	X, Y     int
	FontSize int
	Color    string
}

// layoutCloud places words along an Archimedean spiral from the centre,
// largest first. Words that do not fit are dropped.
func layoutCloud(words []WordCount, width, height int) []placedWord {
	if len(words) == 0 {
		return nil
	}

	maxCount, minCount := words[0].Count, words[0].Count
	for _, w := range words {
		maxCount = max(maxCount, w.Count)
		minCount = min(minCount, w.Count)
	}

	var placed []placedWord
	var taken []box
	cx, cy := float64(width)/2, float64(height)/2

	for i, w := range words {
		size := fontSize(w.Count, minCount, maxCount)
		bw := float64(len([]rune(w.Word))) * float64(size) * 0.6
		bh := float64(size)

		for step := 0; step < maxSpiral; step++ {
			t := float64(step) * spiralStep
			r := spiralGrowth * t
			x := cx + r*math.Cos(t) - bw/2
			y := cy + r*math.Sin(t) - bh/2
			candidate := box{x: x, y: y, w: bw, h: bh}
			if !candidate.inside(float64(width), float64(height)) {
				continue
			}
			free := true
			for _, b := range taken {
				if candidate.overlaps(b) {
					free = false
					break
				}
			}
			if !free {
				continue
			}

			taken = append(taken, candidate)
			placed = append(placed, placedWord{
				WordCount: w,
				X:         int(math.Round(x)),
				// SVG text is positioned by its baseline.
				Y:        int(math.Round(y + bh*0.85)),
				FontSize: size,
				Color:    cloudPalette[i%len(cloudPalette)],
			})
			break
		}
	}
	return placed
}

func fontSize(count, minCount, maxCount int) int {
	if maxCount == minCount {
		return (minFontSize + maxFontSize) / 2
	}
	ratio := float64(count-minCount) / float64(maxCount-minCount)
	return minFontSize + int(math.Round(ratio*float64(maxFontSize-minFontSize)))
}

// WordCloud renders the most frequent title words as an SVG image.
func WordCloud(words []WordCount) template.HTML {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(cloudWidth, cloudHeight, fmt.Sprintf(`viewBox="0 0 %d %d"`, cloudWidth, cloudHeight), `role="img"`)
	canvas.Title("Wordcloud")
	canvas.Rect(0, 0, cloudWidth, cloudHeight, "fill:white")
	for _, p := range layoutCloud(words, cloudWidth, cloudHeight) {
		canvas.Text(p.X, p.Y, p.Word, fmt.Sprintf("font-family:sans-serif;font-weight:600;font-size:%dpx;fill:%s", p.FontSize, p.Color))
	}
	canvas.End()
	return inline(&buf)
}
