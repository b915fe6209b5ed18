package pipelineview

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/theme"
)

const (
	// paneSweepSpeed scales the tick for sweeps inside the pipeline pane.
	paneSweepSpeed = 2
	// hashSweepSpeed scales the tick for sweeps over commit hashes.
	hashSweepSpeed = 8

	glowCycle  = 16
	glowTravel = 12
)

// SweepColor is the color of character pos of a total-character text while
// a light sweeps back and forth across it. A full back-and-forth takes 256
// ticks.
func SweepColor(base colorful.Color, pos, total int, tick uint8) colorful.Color {
	phase := float64(tick) / 255 * 2
	span := float64(total) + 2
	sweep := (2-phase)*span - 1
	if phase < 1 {
		sweep = phase*span - 1
	}
	glow := max(0, 1-math.Abs(float64(pos)-sweep)/2.5)
	return theme.Blend(base, theme.TextBright, glow*glow)
}

// sweepText writes text with a sweep over base and returns its width.
func sweepText(g *canvas.Grid, x, y int, text string, base colorful.Color, tick uint8, bold bool) int {
	runes := []rune(text)
	col := x
	for i, r := range runes {
		st := canvas.Fg(SweepColor(base, i, len(runes), tick))
		st.Bold = bold
		col += g.Set(col, y, r, st)
	}
	return col - x
}

// glowPhase returns how far the border lights have travelled, in [0,1], and
// their intensity for the given tick.
func glowPhase(tick uint8) (progress, intensity float64) {
	step := int(tick) % glowCycle
	if step < glowTravel {
		return float64(step+1) / glowTravel, 1
	}
	fade := float64(step-glowTravel+1) / float64(glowCycle-glowTravel+1)
	return 1, 1 - fade
}

// lightAt is the brightness of a point at distance d from a light.
func lightAt(d, radius float64) float64 {
	g := max(0, 1-math.Abs(d)/radius)
	return g * g
}

// point is a cell position.
type point struct{ x, y int }

// lightPath brightens the cells of path with a light that has travelled the
// given fraction of it.
func lightPath(g *canvas.Grid, path []point, target colorful.Color, progress, intensity float64) {
	if len(path) == 0 || intensity <= 0 {
		return
	}
	head := progress * float64(len(path)-1)
	for i, p := range path {
		glow := lightAt(float64(i)-head, 2) * intensity
		if glow <= 0 {
			continue
		}
		brighten(g, p, target, glow)
	}
}

func brighten(g *canvas.Grid, p point, target colorful.Color, t float64) {
	c, ok := g.Cell(p.x, p.y)
	if !ok {
		return
	}
	base := theme.Border
	if c.Style.HasFg {
		base = c.Style.Fg
	}
	g.PatchStyle(p.x, p.y, canvas.Fg(theme.Blend(base, target, t)))
}
