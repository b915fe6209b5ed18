package pipelineview

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/layout"
	"github.com/waabox/stagedeck/internal/theme"
)

// connectorColor is the color of the connector leaving stage i.
func connectorColor(stages []domain.Stage, i, selected int) colorful.Color {
	c := theme.StageColor(stages[i])
	if stages[i].Status().IsActive() {
		c = theme.Dim(c)
	}
	if selected == i || selected == i+1 {
		c = theme.Brighten(c)
	}
	return c
}

// drawRowConnector joins two stages on the same row with ├────→┤ and
// returns the cells it drew in travel order.
func drawRowConnector(g *canvas.Grid, cur, next frame, src, line, dst colorful.Color) []point {
	y := cur.midY()
	x := cur.right()
	path := make([]point, 0, layout.ConnectorWidth+2)
	g.Set(x, y, '├', canvas.Fg(src))
	path = append(path, point{x, y})
	for i := 1; i <= layout.ConnectorWidth; i++ {
		r := '─'
		if i == layout.ConnectorWidth {
			r = '→'
		}
		g.Set(x+i, y, r, canvas.Fg(line))
		path = append(path, point{x + i, y})
	}
	g.Set(next.x, y, '┤', canvas.Fg(dst))
	return append(path, point{next.x, y})
}

// wrapTeeX is the column where the wrap connector leaves a stage's bottom
// border.
func wrapTeeX(f frame) int {
	return max(f.x+f.w-5, f.x+1)
}

// drawWrapConnector joins the last stage of a row to the first stage of the
// next one: a tee on the bottom border, a turn along the gap row, a run down
// the left margin and an arrow into the next box. minX is the leftmost
// column the path may use.
func drawWrapConnector(g *canvas.Grid, cur, next frame, minX int, line, dst colorful.Color) []point {
	st := canvas.Fg(line)
	var path []point
	put := func(x, y int, r rune, st canvas.Style) {
		g.Set(x, y, r, st)
		path = append(path, point{x, y})
	}

	teeX := wrapTeeX(cur)
	turnY := cur.bottom() + 1
	leftX := max(next.x-3, minX)
	targetY := next.midY()

	put(teeX, cur.bottom(), '┬', st)
	put(teeX, turnY, '╯', st)
	for x := teeX - 1; x > leftX; x-- {
		put(x, turnY, '─', st)
	}
	put(leftX, turnY, '╭', st)
	for y := turnY + 1; y < targetY; y++ {
		put(leftX, y, '│', st)
	}
	put(leftX, targetY, '╰', st)
	arrowX := next.x - 1
	for x := leftX + 1; x < arrowX; x++ {
		put(x, targetY, '─', st)
	}
	if arrowX > leftX {
		put(arrowX, targetY, '→', st)
	}
	put(next.x, targetY, '┤', canvas.Fg(dst))
	return path
}
