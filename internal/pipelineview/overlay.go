package pipelineview

import (
	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/theme"
)

// HashRow says that the commit SHA is drawn somewhere on grid row Y.
type HashRow struct {
	Y   int
	SHA string
}

// OverlayCommitHashes recolors the short hash of every listed commit whose
// pipeline outcome is cached, sweeping the ones still running. The commit
// list must already be painted.
func (s *State) OverlayCommitHashes(g *canvas.Grid, rows []HashRow) {
	for _, r := range rows {
		o, ok := s.pipelines.Get(r.SHA)
		if !ok {
			continue
		}
		status, ok := o.Status()
		if !ok {
			continue
		}
		short := []rune(domain.Commit{SHA: r.SHA}.ShortSHA())
		x, ok := findRunes(g, r.Y, short)
		if !ok {
			continue
		}
		base := theme.CommitHashColor(status)
		for i := range short {
			c := base
			if status.IsActive() {
				c = SweepColor(base, i, len(short), s.tick*hashSweepSpeed)
			}
			g.PatchStyle(x+i, r.Y, canvas.Fg(c))
		}
	}
}

// findRunes returns the first column of row y where want appears.
func findRunes(g *canvas.Grid, y int, want []rune) (int, bool) {
	if len(want) == 0 {
		return 0, false
	}
	for x := 0; x+len(want) <= g.Width(); x++ {
		match := true
		for i, r := range want {
			c, _ := g.Cell(x+i, y)
			if c.Rune != r {
				match = false
				break
			}
		}
		if match {
			return x, true
		}
	}
	return 0, false
}
