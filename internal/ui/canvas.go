package ui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/DaanHessen/grimoire-tui/internal/seating"
)

// Terminal cells are mapped onto a virtual pixel plane so the seating layout
// keeps its proportions. A cell is roughly twice as tall as it is wide.
const (
	cellW = 8.0
	cellH = 16.0
)

func toPixels(col, row int) seating.Point {
	return seating.Point{X: (float64(col) + 0.5) * cellW, Y: (float64(row) + 0.5) * cellH}
}

func toCell(p seating.Point) (col, row int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

type span struct {
	col   int
	text  string
	style lipgloss.Style
	// hit is the seat index the span belongs to, or -1.
	hit int
}

func (s span) width() int { return runewidth.StringWidth(s.text) }

// canvas is a sparse grid of styled text spans.
type canvas struct {
	w, h int
	rows [][]span
}

func newCanvas(w, h int) *canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &canvas{w: w, h: h, rows: make([][]span, h)}
}

// put writes text centred on col. Spans that would overlap an existing span
// on the same row are shifted right until they fit, or dropped.
func (c *canvas) put(row, col int, text string, style lipgloss.Style, hit int) {
	if row < 0 || row >= c.h || text == "" {
		return
	}
	text = runewidth.Truncate(text, c.w, "…")
	w := runewidth.StringWidth(text)
	start := col - w/2
	if start < 0 {
		start = 0
	}
	if start+w > c.w {
		start = c.w - w
	}
	for moved := true; moved; {
		moved = false
		for _, s := range c.rows[row] {
			if start < s.col+s.width() && s.col < start+w {
				start = s.col + s.width() + 1
				moved = true
			}
		}
	}
	if start+w > c.w {
		return
	}
	c.rows[row] = append(c.rows[row], span{col: start, text: text, style: style, hit: hit})
}

// hitTest returns the seat index drawn at the given cell, or -1.
func (c *canvas) hitTest(col, row int) int {
	if row < 0 || row >= c.h {
		return -1
	}
	for _, s := range c.rows[row] {
		if s.hit >= 0 && col >= s.col && col < s.col+s.width() {
			return s.hit
		}
	}
	return -1
}

func (c *canvas) render() string {
	lines := make([]string, c.h)
	for i, row := range c.rows {
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
		var b strings.Builder
		x := 0
		for _, s := range row {
			if s.col < x {
				continue
			}
			b.WriteString(strings.Repeat(" ", s.col-x))
			b.WriteString(s.style.Render(s.text))
			x = s.col + s.width()
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// indicatorGlyph picks the line character closest to a tangent rotated by
// deg degrees from horizontal.
func indicatorGlyph(deg float64) string {
	// The indicator is perpendicular to the seat ring, so at 0° (top) it is
	// vertical.
	d := math.Mod(deg, 180)
	if d < 0 {
		d += 180
	}
	switch {
	case d < 22.5 || d >= 157.5:
		return "│"
	case d < 67.5:
		return "╱"
	case d < 112.5:
		return "─"
	default:
		return "╲"
	}
}
