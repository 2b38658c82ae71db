package board

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/catalog"
)

// canvas is a fixed character grid with one style per cell. Board points
// are scaled into it.
type canvas struct {
	w, h   int
	cells  [][]rune
	styles [][]*lipgloss.Style
	maxX   int
	maxY   int
}

func newCanvas(w, h int, bounds catalog.Point) *canvas {
	c := &canvas{w: w, h: h, maxX: max(bounds.X, 1), maxY: max(bounds.Y, 1)}
	c.cells = make([][]rune, h)
	c.styles = make([][]*lipgloss.Style, h)
	for y := range h {
		c.cells[y] = []rune(strings.Repeat(" ", w))
		c.styles[y] = make([]*lipgloss.Style, w)
	}
	return c
}

// cell maps a board point to a grid position.
func (c *canvas) cell(p catalog.Point) (int, int) {
	x := p.X * (c.w - 1) / c.maxX
	y := p.Y * (c.h - 1) / c.maxY
	return min(max(x, 0), c.w-1), min(max(y, 0), c.h-1)
}

// label writes text centred on p, clipped to the grid.
func (c *canvas) label(p catalog.Point, text string, style lipgloss.Style) {
	x, y := c.cell(p)
	runes := []rune(text)
	start := min(max(x-len(runes)/2, 0), max(c.w-len(runes), 0))
	for i, r := range runes {
		if start+i >= c.w {
			break
		}
		c.cells[y][start+i] = r
		c.styles[y][start+i] = &style
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.h {
		row := c.cells[y]
		for x := 0; x < c.w; {
			st := c.styles[y][x]
			end := x + 1
			for end < c.w && c.styles[y][end] == st {
				end++
			}
			seg := string(row[x:end])
			if st != nil {
				seg = st.Render(seg)
			}
			b.WriteString(seg)
			x = end
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// boardBounds returns the largest target coordinates plus a margin.
func boardBounds(factors []catalog.Factor) catalog.Point {
	var p catalog.Point
	for _, f := range factors {
		p.X = max(p.X, f.Target.X)
		p.Y = max(p.Y, f.Target.Y)
	}
	return catalog.Point{X: p.X + 60, Y: p.Y + 40}
}
