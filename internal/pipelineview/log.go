package pipelineview

import (
	"fmt"
	"strconv"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/theme"
)

// Messages shown in the log pane.
const (
	MsgLogLoading = "Loading log..."
	MsgLogEmpty   = "Select a job to view its log"
)

// RenderLog paints the job log into area. The scroll range is sized by
// SetLogHeight, not here.
func RenderLog(g *canvas.Grid, area canvas.Rect, s *State) {
	if area.W < 1 || area.H < 1 {
		return
	}
	prev := g.Clip(area)
	defer g.Clip(prev)

	switch {
	case s.logErr != "":
		centered(g, area, "Error: "+s.logErr, canvas.Fg(theme.Error))
		return
	case s.logLoading && len(s.log) == 0:
		centered(g, area, MsgLogLoading, canvas.Fg(theme.TextDim))
		return
	case len(s.log) == 0:
		centered(g, area, MsgLogEmpty, canvas.Fg(theme.TextDim))
		return
	}

	digits := len(strconv.Itoa(len(s.log)))
	dim := canvas.Fg(theme.TextDim)
	for row := 0; row < area.H; row++ {
		i := s.logScroll + row
		if i >= len(s.log) {
			break
		}
		l := s.log[i]
		y := area.Y + row
		x := area.X
		x += g.SetString(x, y, fmt.Sprintf("%*d ", digits, i+1), dim)
		ts := l.Timestamp
		if ts == "" {
			ts = "        "
		}
		x += g.SetString(x, y, ts+"  ", dim)
		for _, r := range l.Runs {
			st := r.Style
			if !st.HasFg {
				st.Fg, st.HasFg = theme.Text, true
			}
			x += g.SetString(x, y, r.Text, st)
		}
		if l.Duration != "" {
			g.SetString(x+1, y, l.Duration, canvas.Fg(theme.Accent))
		}
	}
}
