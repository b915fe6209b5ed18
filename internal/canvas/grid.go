// Package canvas provides a character grid that rendering passes paint into
// before it is turned into a styled string.
package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Rect is a rectangle of cells.
type Rect struct {
	X, Y, W, H int
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Cell is one character position.
type Cell struct {
	Rune  rune
	Style Style
	// cont marks the second column of a wide rune.
	cont bool
}

// Grid is a fixed-size buffer of cells. Writes outside the grid or outside
// the current clip rectangle are dropped.
type Grid struct {
	w, h  int
	cells []Cell
	clip  Rect
}

// New creates a blank grid.
func New(w, h int) *Grid {
	w, h = max(w, 0), max(h, 0)
	g := &Grid{w: w, h: h, cells: make([]Cell, w*h)}
	for i := range g.cells {
		g.cells[i].Rune = ' '
	}
	g.clip = g.Bounds()
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Bounds returns the full grid rectangle.
func (g *Grid) Bounds() Rect { return Rect{W: g.w, H: g.h} }

// Clip restricts subsequent writes to r and returns the previous clip.
func (g *Grid) Clip(r Rect) Rect {
	prev := g.clip
	g.clip = r.Intersect(g.Bounds())
	return prev
}

func (g *Grid) writable(x, y int) bool {
	return g.clip.Contains(x, y)
}

// Cell returns the cell at (x, y).
func (g *Grid) Cell(x, y int) (Cell, bool) {
	if !g.Bounds().Contains(x, y) {
		return Cell{}, false
	}
	return g.cells[y*g.w+x], true
}

// Set writes a rune and returns its display width.
func (g *Grid) Set(x, y int, r rune, st Style) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 0
	}
	if !g.writable(x, y) || (w == 2 && !g.writable(x+1, y)) {
		return w
	}
	g.cells[y*g.w+x] = Cell{Rune: r, Style: st}
	if w == 2 {
		g.cells[y*g.w+x+1] = Cell{Rune: ' ', Style: st, cont: true}
	}
	return w
}

// SetString writes s starting at (x, y) and returns the number of columns
// it spans, including clipped ones.
func (g *Grid) SetString(x, y int, s string, st Style) int {
	col := x
	for _, r := range s {
		col += g.Set(col, y, r, st)
	}
	return col - x
}

// PatchStyle overlays st onto the cell at (x, y) without touching its rune.
func (g *Grid) PatchStyle(x, y int, st Style) {
	if !g.writable(x, y) {
		return
	}
	c := &g.cells[y*g.w+x]
	c.Style = c.Style.Patch(st)
}

// Row returns the runes of row y without styling.
func (g *Grid) Row(y int) string {
	if y < 0 || y >= g.h {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < g.w; x++ {
		c := g.cells[y*g.w+x]
		if c.cont {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

// Plain returns the grid content without styling, one line per row.
func (g *Grid) Plain() string {
	rows := make([]string, g.h)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return strings.Join(rows, "\n")
}

// Render returns the grid as a styled string, one line per row.
func (g *Grid) Render() string {
	rows := make([]string, g.h)
	for y := range rows {
		rows[y] = g.renderRow(y)
	}
	return strings.Join(rows, "\n")
}

func (g *Grid) renderRow(y int) string {
	var sb, run strings.Builder
	var runStyle Style
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runStyle == (Style{}) {
			sb.WriteString(run.String())
		} else {
			sb.WriteString(runStyle.Lipgloss().Render(run.String()))
		}
		run.Reset()
	}
	for x := 0; x < g.w; x++ {
		c := g.cells[y*g.w+x]
		if c.cont {
			continue
		}
		if c.Style != runStyle {
			flush()
			runStyle = c.Style
		}
		run.WriteRune(c.Rune)
	}
	flush()
	return sb.String()
}
