package pipelineview

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/layout"
	"github.com/waabox/stagedeck/internal/theme"
)

// Messages shown instead of the diagram.
const (
	MsgLoading  = "Loading pipeline..."
	MsgNotFound = "No pipeline for this commit"
	MsgNoStages = "Pipeline has no stages"
)

type viewport struct {
	layout    layout.Layout
	width     int
	height    int
	scrollbar bool
}

// viewport lays out the current pipeline for a content area of w×h,
// giving up one column for a scrollbar when the diagram is taller than h.
func (s *State) viewport(w, h int) viewport {
	l := layout.Compute(s.details.Stages, w)
	if l.TotalHeight > h && w > 1 {
		return viewport{layout: layout.Compute(s.details.Stages, w-1), width: w - 1, height: h, scrollbar: true}
	}
	return viewport{layout: l, width: w, height: h}
}

// clampedScroll returns the scroll offsets limited to the content of v.
func (s *State) clampedScroll(v viewport) (x, y int) {
	y = min(max(s.scrollY, 0), max(v.layout.TotalHeight-v.height, 0))
	x = min(max(s.scrollX, 0), max(v.layout.TotalWidth-v.width, 0))
	return x, y
}

// Scroll returns the horizontal and vertical scroll offsets.
func (s *State) Scroll() (x, y int) { return s.scrollX, s.scrollY }

// ScrollToSelection shifts the scroll offsets as little as possible so the
// selected stage is fully visible in a pane of w×h, the size later passed
// to Render.
func (s *State) ScrollToSelection(w, h int) {
	if s.details == nil || len(s.details.Stages) == 0 {
		return
	}
	v := s.viewport(w, max(h-1, 0))
	b := v.layout.Boxes[s.stage]
	s.scrollY = follow(s.scrollY, b.Y, b.Height, v.height)
	s.scrollX = follow(s.scrollX, b.X, b.Width, v.width)
	s.scrollX, s.scrollY = s.clampedScroll(v)
}

func follow(offset, start, size, view int) int {
	if start < offset {
		return start
	}
	if start+size > offset+view {
		return min(start+size-view, start)
	}
	return offset
}

// Render paints the pipeline pane into area. The last row of area holds
// the status line. Render only reads s; offsets past the content are
// clamped for drawing and left as they are.
func Render(g *canvas.Grid, area canvas.Rect, s *State) {
	if area.W < 1 || area.H < 1 {
		return
	}
	prev := g.Clip(area)
	defer g.Clip(prev)

	switch {
	case s.loading && s.details == nil:
		centered(g, area, MsgLoading, canvas.Fg(theme.TextDim))
		return
	case s.err != "":
		centered(g, area, "Error: "+s.err, canvas.Fg(theme.Error))
		return
	case s.details == nil:
		centered(g, area, MsgNotFound, canvas.Fg(theme.TextDim))
		return
	case len(s.details.Stages) == 0:
		centered(g, area, MsgNoStages, canvas.Fg(theme.TextDim))
		return
	}

	content := canvas.Rect{X: area.X, Y: area.Y, W: area.W, H: area.H - 1}
	v := s.viewport(content.W, content.H)
	sx, sy := s.clampedScroll(v)

	g.Clip(canvas.Rect{X: content.X, Y: content.Y, W: v.width, H: content.H})
	s.paintDiagram(g, v, content.X-sx, content.Y-sy)
	g.Clip(area)

	if v.scrollbar {
		drawScrollbar(g, content.X+content.W-1, content.Y, content.H, v.layout.TotalHeight, sy)
	}
	s.drawStatusLine(g, area)
}

func (s *State) paintDiagram(g *canvas.Grid, v viewport, ox, oy int) {
	stages := s.details.Stages
	boxes := v.layout.Boxes
	frames := make([]frame, len(boxes))
	mids := make([]int, len(boxes))
	for i, b := range boxes {
		frames[i] = frame{x: ox + b.X, y: oy + b.Y, w: b.Width, h: b.Height}
		sel := -1
		if i == s.stage {
			sel = s.job
		}
		mids[i] = drawStage(g, frames[i], stages[i], sel, s.tick)
	}

	paths := make([][]point, len(boxes))
	for i := 0; i+1 < len(boxes); i++ {
		line := connectorColor(stages, i, s.stage)
		dst := stageBorder(stages[i+1], i+1 == s.stage)
		if boxes[i+1].Row == boxes[i].Row {
			src := stageBorder(stages[i], i == s.stage)
			paths[i] = drawRowConnector(g, frames[i], frames[i+1], src, line, dst)
		} else {
			paths[i] = drawWrapConnector(g, frames[i], frames[i+1], ox, line, dst)
		}
	}

	progress, intensity := glowPhase(s.tick)
	for i, st := range stages {
		if !st.Status().IsActive() {
			continue
		}
		f := frames[i]
		var end int
		switch {
		case i+1 == len(stages):
			end = bottomIndex(f, f.w/2)
		case boxes[i+1].Row == boxes[i].Row:
			end = rightIndex(f, f.h/2)
		default:
			end = bottomIndex(f, wrapTeeX(f)-f.x)
		}
		target := theme.Brighten(theme.StageColor(st))
		borderGlow(g, f, mids[i], end, target, s.tick)
		lightPath(g, paths[i], target, progress, intensity)
	}
}

func (s *State) drawStatusLine(g *canvas.Grid, area canvas.Rect) {
	p := s.details.Pipeline
	if p == nil {
		return
	}
	indicator := ""
	if s.IsRunning() {
		indicator = " ⟳"
	}
	text := truncate(fmt.Sprintf("Pipeline #%d - %s%s", p.ID, p.Status, indicator), area.W)
	y := area.Bottom() - 1
	color := theme.StatusColor(p.Status)
	if p.Status.IsActive() {
		sweepText(g, area.X, y, text, color, s.tick*paneSweepSpeed, false)
		return
	}
	g.SetString(area.X, y, text, canvas.Fg(color))
}

func drawScrollbar(g *canvas.Grid, x, y, h, total, offset int) {
	if h <= 0 || total <= h {
		return
	}
	thumb := max(h*h/total, 1)
	pos := offset * (h - thumb) / (total - h)
	for i := 0; i < h; i++ {
		if i >= pos && i < pos+thumb {
			g.Set(x, y+i, '┃', canvas.Fg(theme.Accent))
		} else {
			g.Set(x, y+i, '│', canvas.Fg(theme.Border))
		}
	}
}

func centered(g *canvas.Grid, area canvas.Rect, msg string, st canvas.Style) {
	msg = truncate(msg, area.W)
	x := area.X + (area.W-runewidth.StringWidth(msg))/2
	g.SetString(x, area.Y+area.H/2, msg, st)
}
