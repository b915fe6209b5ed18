package tui

import (
	"fmt"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/pipelineview"
	"github.com/waabox/stagedeck/internal/theme"
)

// paintLogPane draws the job log title bar on the first row of area and the
// log below it.
func paintLogPane(g *canvas.Grid, area canvas.Rect, pane *pipelineview.State, focused bool) {
	if area.W < 1 || area.H < 1 {
		return
	}
	prev := g.Clip(area)
	defer g.Clip(prev)

	rule := canvas.Fg(theme.Border)
	if focused {
		rule = canvas.Fg(theme.Accent)
	}
	for x := area.X; x < area.Right(); x++ {
		g.Set(x, area.Y, '─', rule)
	}
	if j, ok := logJob(pane); ok {
		x := area.X + 1
		x += g.SetString(x, area.Y, " "+j.Status.AnimatedSymbol(pane.Tick())+" ", canvas.Fg(theme.StatusColor(j.Status)))
		g.SetString(x, area.Y, jobTitle(j)+" ", canvas.Fg(theme.TextBright).WithBold())
	}
	pipelineview.RenderLog(g, canvas.Rect{X: area.X, Y: area.Y + 1, W: area.W, H: area.H - 1}, pane)
}

// logJob returns the job whose log is open.
func logJob(pane *pipelineview.State) (domain.Job, bool) {
	id := pane.LogJobID()
	if id == 0 || pane.Details() == nil {
		return domain.Job{}, false
	}
	for _, st := range pane.Details().Stages {
		for _, j := range st.Jobs {
			if j.ID == id {
				return j, true
			}
		}
	}
	return domain.Job{}, false
}

func jobTitle(j domain.Job) string {
	title := fmt.Sprintf("%s #%d", j.Name, j.ID)
	if j.Duration > 0 {
		title += " " + formatDuration(j.Duration.Seconds())
	}
	return title
}

func formatDuration(secs float64) string {
	s := int(secs)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", s/60, s%60)
}
