package tui_test

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/tui"
)

// runCmd executes cmd, expanding batches, and returns every message produced.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, runCmd(c)...)
	}
	return msgs
}

func startedRefreshingApp(t *testing.T, source *fakeSource) tui.AppModel {
	t.Helper()
	repo := domain.Repository{Host: "gitlab.example.com", Owner: "g", Name: "p"}
	commits := func(context.Context) ([]domain.Commit, error) { return testCommits, nil }
	m := tui.NewAppModel(repo, source, commits, tui.Options{RefreshInterval: time.Millisecond})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return settle(t, m, tui.CommitsLoadedMsg{Commits: testCommits})
}

func TestApp_RefreshTick_RefetchesRunningPipeline(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusRunning)

	m := startedRefreshingApp(t, source)
	source.pipelines[a] = testDetails(a, domain.StatusSuccess)

	m, cmd := send(t, m, tui.RefreshTickMsg{})

	if view := m.View(); !strings.Contains(view, "Pipeline #42 - running") {
		t.Errorf("expected the previous diagram while refreshing, got:\n%s", view)
	}
	if _, ok := m.Pane().Cached(a); ok {
		t.Error("expected the cache entry to be invalidated before the refetch")
	}

	msgs := runCmd(cmd)
	var loaded, ticks int
	for _, msg := range msgs {
		switch msg.(type) {
		case tui.PipelineLoadedMsg:
			loaded++
		case tui.RefreshTickMsg:
			ticks++
		}
	}
	if loaded != 1 || ticks != 1 {
		t.Fatalf("expected one fetch and one rescheduled tick, got %d fetches and %d ticks", loaded, ticks)
	}
	if n := source.callCount(a); n != 2 {
		t.Errorf("expected 2 fetches after the refresh tick, got %d", n)
	}

	for _, msg := range msgs {
		if _, ok := msg.(tui.PipelineLoadedMsg); ok {
			m, _ = send(t, m, msg)
		}
	}
	if view := m.View(); !strings.Contains(view, "Pipeline #42 - success") {
		t.Errorf("expected the refreshed status, got:\n%s", view)
	}
}

func TestApp_RefreshTick_OneFetchAtATime(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusRunning)

	m := startedRefreshingApp(t, source)
	m, _ = send(t, m, tui.RefreshTickMsg{})
	_, cmd := send(t, m, tui.RefreshTickMsg{})

	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(tui.PipelineLoadedMsg); ok {
			t.Error("expected no second fetch while a refresh is in flight")
		}
	}
}

func TestApp_RefreshTick_FinishedPipelineNotRefetched(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusSuccess)

	m := startedRefreshingApp(t, source)
	_, cmd := send(t, m, tui.RefreshTickMsg{})

	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected only the rescheduled tick, got %v", msgs)
	}
	if _, ok := msgs[0].(tui.RefreshTickMsg); !ok {
		t.Errorf("expected RefreshTickMsg, got %T", msgs[0])
	}
	if n := source.callCount(a); n != 1 {
		t.Errorf("expected no refetch of a finished pipeline, got %d fetches", n)
	}
}
