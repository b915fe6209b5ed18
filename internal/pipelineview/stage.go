package pipelineview

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/theme"
)

// frame is a stage box in screen coordinates.
type frame struct {
	x, y, w, h int
}

func (f frame) right() int  { return f.x + f.w - 1 }
func (f frame) bottom() int { return f.y + f.h - 1 }
func (f frame) midY() int   { return f.y + f.h/2 }

// truncate shortens s to fit max columns, marking the cut with an ellipsis
// when there is room for one.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max > 2 {
		return runewidth.Truncate(s, max, "…")
	}
	return runewidth.Truncate(s, max, "")
}

func stageBorder(st domain.Stage, selected bool) colorful.Color {
	if selected {
		return theme.StageColor(st)
	}
	return theme.Border
}

// drawStage paints one stage box. selectedJob is the highlighted job index,
// or -1 when the stage is not selected. It returns the column offset of the
// middle of the header text.
func drawStage(g *canvas.Grid, f frame, st domain.Stage, selectedJob int, tick uint8) int {
	if f.w < 6 || f.h < 2 {
		return 0
	}
	status := st.Status()
	color := theme.StageColor(st)
	border := canvas.Fg(stageBorder(st, selectedJob >= 0))
	innerW := f.w - 2
	sweepTick := tick * paneSweepSpeed

	header := truncate(status.AnimatedSymbol(tick)+" "+st.Name, innerW-3)
	hw := runewidth.StringWidth(header)
	g.SetString(f.x, f.y, "╭─ ", border)
	if status.IsActive() {
		sweepText(g, f.x+3, f.y, header, color, sweepTick, false)
	} else {
		g.SetString(f.x+3, f.y, header, canvas.Fg(color))
	}
	col := f.x + 3 + hw
	g.Set(col, f.y, ' ', border)
	for col++; col < f.right(); col++ {
		g.Set(col, f.y, '─', border)
	}
	g.Set(f.right(), f.y, '╮', border)

	g.Set(f.x, f.bottom(), '╰', border)
	g.SetString(f.x+1, f.bottom(), strings.Repeat("─", innerW), border)
	g.Set(f.right(), f.bottom(), '╯', border)
	for y := f.y + 1; y < f.bottom(); y++ {
		g.Set(f.x, y, '│', border)
		g.Set(f.right(), y, '│', border)
	}

	interior := f.h - 2
	visible, more := min(len(st.Jobs), interior), false
	if len(st.Jobs) > interior && interior > 0 {
		visible, more = interior-1, true
	}
	for k, j := range st.Jobs[:visible] {
		y := f.y + 1 + k
		selected := k == selectedJob
		name := truncate(j.Name, innerW-3)
		line := " " + j.Status.AnimatedSymbol(tick) + " " + name
		if selected {
			line = " ▸ " + name
		}
		line = runewidth.FillRight(line, innerW)
		if j.Status.IsActive() {
			sweepText(g, f.x+1, y, line, theme.StatusColor(j.Status), sweepTick, selected)
			continue
		}
		style := canvas.Fg(theme.StatusColor(j.Status))
		if selected {
			style = style.WithBold()
		}
		g.SetString(f.x+1, y, line, style)
	}
	if more {
		text := runewidth.FillRight(fmt.Sprintf(" +%d more", len(st.Jobs)-visible), innerW)
		g.SetString(f.x+1, f.y+1+visible, truncate(text, innerW), canvas.Fg(theme.TextDim))
	}
	return 3 + hw/2
}

// perimeter lists the border cells of f clockwise from the top-left corner.
func perimeter(f frame) []point {
	if f.w < 2 || f.h < 2 {
		return nil
	}
	pts := make([]point, 0, 2*f.w+2*f.h-4)
	for i := 0; i < f.w; i++ {
		pts = append(pts, point{f.x + i, f.y})
	}
	for j := 1; j < f.h; j++ {
		pts = append(pts, point{f.right(), f.y + j})
	}
	for i := 1; i < f.w; i++ {
		pts = append(pts, point{f.right() - i, f.bottom()})
	}
	for j := 1; j < f.h-1; j++ {
		pts = append(pts, point{f.x, f.bottom() - j})
	}
	return pts
}

// rightIndex is the perimeter index of the right border at row offset dy.
func rightIndex(f frame, dy int) int { return f.w - 1 + dy }

// bottomIndex is the perimeter index of the bottom border at column offset dx.
func bottomIndex(f frame, dx int) int { return f.w + f.h - 2 + (f.w - 1 - dx) }

// borderGlow sends two lights from perimeter index start around f in
// opposite directions so that both reach index end at the same time.
func borderGlow(g *canvas.Grid, f frame, start, end int, target colorful.Color, tick uint8) {
	pts := perimeter(f)
	n := len(pts)
	if n == 0 {
		return
	}
	progress, intensity := glowPhase(tick)
	if intensity <= 0 {
		return
	}
	cw := ((end-start)%n + n) % n
	ccw := n - cw
	a := float64(start) + progress*float64(cw)
	b := float64(start) - progress*float64(ccw)
	for i, p := range pts {
		glow := max(lightAt(ringDist(float64(i), a, n), 2.5), lightAt(ringDist(float64(i), b, n), 2.5))
		if glow *= intensity; glow > 0 {
			brighten(g, p, target, glow)
		}
	}
}

func ringDist(i, pos float64, n int) float64 {
	d := math.Mod(math.Abs(i-pos), float64(n))
	return min(d, float64(n)-d)
}
