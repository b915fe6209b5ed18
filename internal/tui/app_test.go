package tui_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/tui"
)

// fakeSource satisfies domain.PipelineSource for TUI tests.
type fakeSource struct {
	mu        sync.Mutex
	pipelines map[string]*domain.PipelineDetails
	traces    map[int64]string
	err       error
	calls     map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pipelines: make(map[string]*domain.PipelineDetails),
		traces:    make(map[int64]string),
		calls:     make(map[string]int),
	}
}

func (f *fakeSource) PipelineDetails(_ context.Context, _ string, sha string) (*domain.PipelineDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[sha]++
	if f.err != nil {
		return nil, f.err
	}
	return f.pipelines[sha], nil
}

func (f *fakeSource) JobTrace(_ context.Context, _ string, jobID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.traces[jobID], nil
}

func (f *fakeSource) callCount(sha string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sha]
}

var testCommits = []domain.Commit{
	{SHA: "aaaaaaa1111111", Subject: "fix: flaky test", Author: "ada"},
	{SHA: "bbbbbbb2222222", Subject: "feat: add stages", Author: "grace"},
}

func testDetails(sha string, status domain.PipelineStatus) *domain.PipelineDetails {
	return domain.NewPipelineDetails(
		domain.Pipeline{ID: 42, Status: status, SHA: sha, WebURL: "https://gitlab.example.com/g/p/-/pipelines/42"},
		[]domain.Job{
			{ID: 7, Name: "compile", Stage: "build", Status: status, WebURL: "https://gitlab.example.com/g/p/-/jobs/7"},
		},
	)
}

func newTestApp(source *fakeSource) tui.AppModel {
	repo := domain.Repository{Host: "gitlab.example.com", Owner: "g", Name: "p"}
	commits := func(context.Context) ([]domain.Commit, error) { return testCommits, nil }
	return tui.NewAppModel(repo, source, commits, tui.Options{})
}

// send delivers msg and returns the updated model and command.
func send(t *testing.T, m tui.AppModel, msg tea.Msg) (tui.AppModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(tui.AppModel), cmd
}

// settle delivers msg and then feeds back the message produced by the
// returned command, if any.
func settle(t *testing.T, m tui.AppModel, msg tea.Msg) tui.AppModel {
	t.Helper()
	m, cmd := send(t, m, msg)
	if cmd != nil {
		m, _ = send(t, m, cmd())
	}
	return m
}

func startedApp(t *testing.T, source *fakeSource) tui.AppModel {
	t.Helper()
	m := newTestApp(source)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return settle(t, m, tui.CommitsLoadedMsg{Commits: testCommits})
}

func TestApp_CommitsLoaded_ShowsSelectedPipeline(t *testing.T) {
	source := newFakeSource()
	source.pipelines[testCommits[0].SHA] = testDetails(testCommits[0].SHA, domain.StatusFailed)

	m := startedApp(t, source)
	view := m.View()

	if !strings.Contains(view, "Pipeline #42 - failed") {
		t.Errorf("expected status line in view, got:\n%s", view)
	}
	if !strings.Contains(view, "compile") {
		t.Errorf("expected job name in view, got:\n%s", view)
	}
	if !strings.Contains(view, "fix: flaky test") {
		t.Errorf("expected commit subject in view, got:\n%s", view)
	}
}

func TestApp_CommitsError_ShowsError(t *testing.T) {
	m := newTestApp(newFakeSource())
	m, _ = send(t, m, tui.CommitsLoadedMsg{Err: errors.New("not a git repository")})

	view := m.View()
	if !strings.Contains(view, "Error: not a git repository") {
		t.Errorf("expected error in view, got:\n%s", view)
	}
}

func TestApp_NoPipeline_ShowsNotFound(t *testing.T) {
	m := startedApp(t, newFakeSource())

	view := m.View()
	if !strings.Contains(view, "No pipeline for this commit") {
		t.Errorf("expected not-found message, got:\n%s", view)
	}
}

func TestApp_PipelineFailure_ShowsMessage(t *testing.T) {
	source := newFakeSource()
	source.err = errors.New("gitlab API error: 500 Internal Server Error")

	m := startedApp(t, source)

	if got := m.Pane().Err(); got != "gitlab API error: 500 Internal Server Error" {
		t.Errorf("expected error on pane, got %q", got)
	}
	if !strings.Contains(m.View(), "Error: gitlab API error") {
		t.Errorf("expected error in view, got:\n%s", m.View())
	}
}

func TestApp_StalePipelineIsDiscarded(t *testing.T) {
	source := newFakeSource()
	a, b := testCommits[0].SHA, testCommits[1].SHA

	m := newTestApp(source)
	m, _ = send(t, m, tui.CommitsLoadedMsg{Commits: testCommits})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m, _ = send(t, m, tui.PipelineLoadedMsg{SHA: a, Details: testDetails(a, domain.StatusSuccess)})

	if m.Pane().SHA() != b {
		t.Fatalf("expected pane to show %s, got %s", b, m.Pane().SHA())
	}
	if !m.Pane().Loading() {
		t.Error("expected the fetch for the current commit to still be pending")
	}
	if _, ok := m.Pane().Cached(a); ok {
		t.Error("expected the stale result not to be cached")
	}
}

func TestApp_CachedCommitSkipsFetch(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusSuccess)

	m := startedApp(t, source)
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyUp})

	if cmd != nil {
		t.Error("expected no fetch for a cached commit")
	}
	if n := source.callCount(a); n != 1 {
		t.Errorf("expected 1 fetch for %s, got %d", a, n)
	}
	if m.Pane().Details() == nil {
		t.Error("expected cached pipeline on display")
	}
}

func TestApp_RefreshKey_Refetches(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusSuccess)

	m := startedApp(t, source)
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	if n := source.callCount(a); n != 2 {
		t.Errorf("expected 2 fetches after refresh, got %d", n)
	}
	if m.Pane().Details() == nil {
		t.Error("expected pipeline on display after refresh")
	}
}

func TestApp_OpenLog_LoadsTraceAndFocusesLog(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusFailed)
	source.traces[7] = "hello world\nsecond line"

	m := startedApp(t, source)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Pane().LogFocused() {
		t.Error("expected log to have focus")
	}
	if got := len(m.Pane().LogLines()); got != 2 {
		t.Fatalf("expected 2 log lines, got %d", got)
	}
	view := m.View()
	if !strings.Contains(view, "hello world") {
		t.Errorf("expected log content in view, got:\n%s", view)
	}
	if !strings.Contains(view, "compile #7") {
		t.Errorf("expected job title in view, got:\n%s", view)
	}
}

func TestApp_LogEsc_ReturnsFocusThenCloses(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusFailed)
	source.traces[7] = "line1"

	m := startedApp(t, source)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Pane().LogFocused() {
		t.Error("expected first esc to release log focus")
	}
	if m.Pane().LogJobID() != 7 {
		t.Error("expected log to stay open after first esc")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Pane().LogJobID() != 0 {
		t.Error("expected second esc to close the log")
	}
}

func TestApp_CopyLog_UsesPlainText(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusFailed)
	source.traces[7] = "\x1b[31mboom\x1b[0m"

	m := startedApp(t, source)
	var copied string
	m.CopyText = func(text string) error {
		copied = text
		return nil
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})

	if copied != "1           boom" {
		t.Errorf("unexpected clipboard text %q", copied)
	}
	if !strings.Contains(m.View(), "copy done") {
		t.Errorf("expected notice in view, got:\n%s", m.View())
	}
}

func TestApp_Browse_OpensSelectedJob(t *testing.T) {
	source := newFakeSource()
	a := testCommits[0].SHA
	source.pipelines[a] = testDetails(a, domain.StatusFailed)

	m := startedApp(t, source)
	var opened string
	m.OpenURL = func(url string) error {
		opened = url
		return errors.New("no browser")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})

	if opened != "https://gitlab.example.com/g/p/-/jobs/7" {
		t.Errorf("unexpected URL %q", opened)
	}
	if !strings.Contains(m.View(), "open failed: no browser") {
		t.Errorf("expected failure notice in view, got:\n%s", m.View())
	}
}

func TestApp_AnimationTick_AdvancesPane(t *testing.T) {
	m := newTestApp(newFakeSource())
	m, cmd := send(t, m, tui.AnimationTickMsg{})

	if m.Pane().Tick() != 1 {
		t.Errorf("expected tick 1, got %d", m.Pane().Tick())
	}
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
}

func TestApp_QuitKey(t *testing.T) {
	m := newTestApp(newFakeSource())
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
