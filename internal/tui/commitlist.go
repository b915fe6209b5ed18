package tui

import (
	"github.com/mattn/go-runewidth"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/pipelineview"
	"github.com/waabox/stagedeck/internal/theme"
)

// CommitListModel is an immutable model for the commit list panel.
type CommitListModel struct {
	commits []domain.Commit
	cursor  int
}

// NewCommitListModel creates a commit list model with the given commits.
func NewCommitListModel(commits []domain.Commit) CommitListModel {
	return CommitListModel{commits: commits}
}

// Commits returns the listed commits.
func (m CommitListModel) Commits() []domain.Commit {
	return m.commits
}

// MoveDown returns a new model with the cursor moved down by n rows.
func (m CommitListModel) MoveDown(n int) CommitListModel {
	m.cursor = min(m.cursor+n, max(len(m.commits)-1, 0))
	return m
}

// MoveUp returns a new model with the cursor moved up by n rows.
func (m CommitListModel) MoveUp(n int) CommitListModel {
	m.cursor = max(m.cursor-n, 0)
	return m
}

// SelectedIndex returns the current cursor position.
func (m CommitListModel) SelectedIndex() int {
	return m.cursor
}

// SelectedCommit returns the highlighted commit. The bool is false when
// the list is empty.
func (m CommitListModel) SelectedCommit() (domain.Commit, bool) {
	if len(m.commits) == 0 {
		return domain.Commit{}, false
	}
	return m.commits[m.cursor], true
}

// Paint draws the visible window of the list into area and reports where
// each commit hash landed, for the pipeline status overlay.
func (m CommitListModel) Paint(g *canvas.Grid, area canvas.Rect, focused bool) []pipelineview.HashRow {
	if area.W < 1 || area.H < 1 {
		return nil
	}
	prev := g.Clip(area)
	defer g.Clip(prev)

	if len(m.commits) == 0 {
		g.SetString(area.X+1, area.Y, "No commits found.", canvas.Fg(theme.TextDim))
		return nil
	}

	start := 0
	if m.cursor >= area.H {
		start = m.cursor - area.H + 1
	}
	rows := make([]pipelineview.HashRow, 0, area.H)
	for row := 0; row < area.H && start+row < len(m.commits); row++ {
		i := start + row
		c := m.commits[i]
		y := area.Y + row

		text := canvas.Fg(theme.Text)
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
			if focused {
				text = canvas.Fg(theme.TextBright).WithBold()
			}
		}
		x := area.X
		x += g.SetString(x, y, prefix, canvas.Fg(theme.Accent))
		x += g.SetString(x, y, c.ShortSHA(), canvas.Fg(theme.TextDim))
		x++
		subject := runewidth.Truncate(c.Subject, max(area.Right()-x, 0), "…")
		g.SetString(x, y, subject, text)

		rows = append(rows, pipelineview.HashRow{Y: y, SHA: c.SHA})
	}
	return rows
}
