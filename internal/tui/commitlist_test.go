package tui_test

import (
	"strings"
	"testing"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/tui"
)

func manyCommits(n int) []domain.Commit {
	commits := make([]domain.Commit, n)
	for i := range commits {
		commits[i] = domain.Commit{SHA: strings.Repeat(string(rune('a'+i)), 10), Subject: "change"}
	}
	return commits
}

func TestCommitListModel_Navigates(t *testing.T) {
	m := tui.NewCommitListModel(manyCommits(3))

	m = m.MoveDown(1)
	if m.SelectedIndex() != 1 {
		t.Errorf("expected selected index 1 after moving down, got %d", m.SelectedIndex())
	}
	m = m.MoveDown(10)
	if m.SelectedIndex() != 2 {
		t.Errorf("expected cursor to stop at the last commit, got %d", m.SelectedIndex())
	}
	m = m.MoveUp(10)
	if m.SelectedIndex() != 0 {
		t.Errorf("expected cursor to stop at 0, got %d", m.SelectedIndex())
	}
}

func TestCommitListModel_EmptyList(t *testing.T) {
	m := tui.NewCommitListModel(nil).MoveDown(1)
	if _, ok := m.SelectedCommit(); ok {
		t.Error("expected no selected commit")
	}
	g := canvas.New(30, 3)
	if rows := m.Paint(g, g.Bounds(), true); rows != nil {
		t.Errorf("expected no hash rows, got %v", rows)
	}
	if !strings.Contains(g.Plain(), "No commits found.") {
		t.Errorf("expected empty message, got:\n%s", g.Plain())
	}
}

func TestCommitListModel_PaintReportsHashRows(t *testing.T) {
	m := tui.NewCommitListModel([]domain.Commit{
		{SHA: "abc1234def", Subject: "fix: login timeout"},
		{SHA: "0011223344", Subject: "a subject far too long for the pane"},
	})
	g := canvas.New(24, 2)

	rows := m.Paint(g, g.Bounds(), true)

	if len(rows) != 2 || rows[0].Y != 0 || rows[1].SHA != "0011223344" {
		t.Fatalf("unexpected hash rows: %+v", rows)
	}
	if got := g.Row(0); got != "> abc1234 fix: login ti…" {
		t.Errorf("unexpected first row %q", got)
	}
	if got := g.Row(1); got != "  0011223 a subject far…" {
		t.Errorf("unexpected second row %q", got)
	}
}

func TestCommitListModel_PaintKeepsCursorVisible(t *testing.T) {
	m := tui.NewCommitListModel(manyCommits(6)).MoveDown(4)
	g := canvas.New(20, 3)

	rows := m.Paint(g, g.Bounds(), false)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2].SHA != manyCommits(6)[4].SHA {
		t.Errorf("expected the cursor commit on the last row, got %s", rows[2].SHA)
	}
	if !strings.HasPrefix(g.Row(2), "> eeeeeee") {
		t.Errorf("unexpected cursor row %q", g.Row(2))
	}
}
