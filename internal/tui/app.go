package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"

	"github.com/waabox/stagedeck/internal/cache"
	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/pipelineview"
	"github.com/waabox/stagedeck/internal/theme"
)

// CommitsLoadedMsg is sent when the commit list has been read from git.
// It is exported so that tests can inject it directly into AppModel.Update.
type CommitsLoadedMsg struct {
	Commits []domain.Commit
	Err     error
}

// AnimationTickMsg advances the pipeline animation by one frame.
type AnimationTickMsg struct{}

// RefreshTickMsg is sent by the auto-refresh ticker.
type RefreshTickMsg struct{}

// actionResultMsg is sent when a job action (open, copy) completes.
type actionResultMsg struct {
	action string
	err    error
}

// CommitLoader lists the commits shown in the commit pane.
type CommitLoader func(ctx context.Context) ([]domain.Commit, error)

// Options tunes the application model. Zero values select the defaults.
type Options struct {
	AnimationInterval time.Duration
	RefreshInterval   time.Duration
	CacheSize         int
	Log               logrus.FieldLogger
}

const (
	defaultAnimationInterval = 50 * time.Millisecond
	defaultRefreshInterval   = 10 * time.Second
)

// focusArea says which pane receives navigation keys.
type focusArea int

const (
	focusCommits focusArea = iota
	focusPipeline
)

// AppModel is the root Bubbletea model for stagedeck.
type AppModel struct {
	repo    domain.Repository
	fetcher *Fetcher
	commits CommitLoader
	pane    *pipelineview.State
	log     logrus.FieldLogger

	list  CommitListModel
	focus focusArea
	keys  keyMap
	help  help.Model

	animEvery    time.Duration
	refreshEvery time.Duration

	commitsLoading bool
	err            error
	notice         string
	width          int
	height         int

	// OpenURL and CopyText perform the job actions. They default to the
	// system browser and clipboard and may be replaced by the caller.
	OpenURL  func(url string) error
	CopyText func(text string) error
}

// NewAppModel creates the root application model.
func NewAppModel(repo domain.Repository, source domain.PipelineSource, commits CommitLoader, opts Options) AppModel {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if opts.AnimationInterval <= 0 {
		opts.AnimationInterval = defaultAnimationInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = cache.DefaultCapacity
	}
	return AppModel{
		repo:           repo,
		fetcher:        NewFetcher(source, repo.ProjectPath(), log),
		commits:        commits,
		pane:           pipelineview.NewState(opts.CacheSize),
		log:            log,
		keys:           defaultKeyMap(),
		help:           help.New(),
		animEvery:      opts.AnimationInterval,
		refreshEvery:   opts.RefreshInterval,
		commitsLoading: true,
		OpenURL:        open.Start,
		CopyText:       clipboard.WriteAll,
	}
}

// Pane returns the pipeline pane state.
func (m AppModel) Pane() *pipelineview.State {
	return m.pane
}

// Init triggers the commit load and starts the tickers.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.loadCommits(), animate(m.animEvery), refreshAfter(m.refreshEvery))
}

func (m AppModel) loadCommits() tea.Cmd {
	return func() tea.Msg {
		commits, err := m.commits(context.Background())
		return CommitsLoadedMsg{Commits: commits, Err: err}
	}
}

func animate(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return AnimationTickMsg{}
	})
}

func refreshAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return RefreshTickMsg{}
	})
}

// Update handles all incoming messages and key events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.followSelection()

	case CommitsLoadedMsg:
		m.commitsLoading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.list = NewCommitListModel(msg.Commits)
		return m, m.visitSelected()

	case PipelineLoadedMsg:
		if !m.pane.SetPipeline(msg.SHA, msg.Details) {
			m.log.WithField("sha", msg.SHA).Debug("discarding pipeline for a commit no longer shown")
			return m, nil
		}
		m.followSelection()
		return m, m.syncLog()

	case PipelineFailedMsg:
		if !m.pane.SetError(msg.SHA, msg.Err.Error()) {
			m.log.WithField("sha", msg.SHA).Debug("discarding failure for a commit no longer shown")
		}

	case LogLoadedMsg:
		m.followSelection()
		if !m.pane.SetJobLog(msg.JobID, msg.Trace) {
			m.log.WithField("job", msg.JobID).Debug("discarding trace for a job no longer shown")
		}

	case LogFailedMsg:
		m.pane.SetLogError(msg.JobID, msg.Err.Error())

	case AnimationTickMsg:
		m.pane.Advance()
		return m, animate(m.animEvery)

	case RefreshTickMsg:
		cmds := []tea.Cmd{refreshAfter(m.refreshEvery)}
		if m.pane.IsRunning() && m.pane.Refresh() {
			sha := m.pane.SHA()
			m.pane.Invalidate(sha)
			m.log.WithField("sha", sha).Debug("refreshing active pipeline")
			cmds = append(cmds, m.fetcher.LoadPipeline(sha))
		}
		return m, tea.Batch(cmds...)

	case actionResultMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.notice = msg.action + " done"
		}

	case tea.KeyMsg:
		m.notice = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.followSelection()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.reload()
		case key.Matches(msg, m.keys.Focus):
			m.cycleFocus()
			return m, nil
		}
		switch {
		case m.pane.LogFocused():
			return m.updateLog(msg)
		case m.focus == focusPipeline:
			return m.updatePipeline(msg)
		default:
			return m.updateCommits(msg)
		}
	}
	return m, nil
}

func (m AppModel) updateCommits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := max(m.panes().list.H, 1)
	switch {
	case key.Matches(msg, m.keys.Down):
		m.list = m.list.MoveDown(1)
	case key.Matches(msg, m.keys.Up):
		m.list = m.list.MoveUp(1)
	case key.Matches(msg, m.keys.PageDown):
		m.list = m.list.MoveDown(page)
	case key.Matches(msg, m.keys.PageUp):
		m.list = m.list.MoveUp(page)
	case key.Matches(msg, m.keys.Top):
		m.list = m.list.MoveUp(len(m.list.Commits()))
	case key.Matches(msg, m.keys.Bottom):
		m.list = m.list.MoveDown(len(m.list.Commits()))
	case key.Matches(msg, m.keys.OpenLog), key.Matches(msg, m.keys.Right):
		m.focus = focusPipeline
		return m, nil
	default:
		return m, nil
	}
	return m, m.visitSelected()
}

func (m AppModel) updatePipeline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Right):
		m.pane.NextStage()
	case key.Matches(msg, m.keys.Left):
		m.pane.PrevStage()
	case key.Matches(msg, m.keys.Down):
		m.pane.NextJob()
	case key.Matches(msg, m.keys.Up):
		m.pane.PrevJob()
	case key.Matches(msg, m.keys.OpenLog):
		cmd := m.openLog()
		m.pane.SetLogFocus(m.pane.LogJobID() != 0)
		m.followSelection()
		return m, cmd
	case key.Matches(msg, m.keys.Browse):
		return m, m.browse()
	case key.Matches(msg, m.keys.CopyLog):
		return m, m.copyLog()
	case key.Matches(msg, m.keys.Back):
		if m.pane.LogJobID() != 0 {
			m.pane.ClearJobLog()
			m.followSelection()
		} else {
			m.focus = focusCommits
		}
		return m, nil
	default:
		return m, nil
	}
	m.followSelection()
	if m.pane.LogJobID() != 0 {
		return m, m.openLog()
	}
	return m, nil
}

func (m AppModel) updateLog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := max(m.panes().log.H-1, 1)
	switch {
	case key.Matches(msg, m.keys.Down):
		m.pane.ScrollLog(1)
	case key.Matches(msg, m.keys.Up):
		m.pane.ScrollLog(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.pane.ScrollLog(page)
	case key.Matches(msg, m.keys.PageUp):
		m.pane.ScrollLog(-page)
	case key.Matches(msg, m.keys.Top):
		m.pane.ScrollLog(-m.pane.LogScroll())
	case key.Matches(msg, m.keys.Bottom):
		m.pane.ScrollLogToEnd()
	case key.Matches(msg, m.keys.Browse):
		return m, m.browse()
	case key.Matches(msg, m.keys.CopyLog):
		return m, m.copyLog()
	case key.Matches(msg, m.keys.Back):
		m.pane.SetLogFocus(false)
	}
	return m, nil
}

func (m *AppModel) cycleFocus() {
	switch {
	case m.pane.LogFocused():
		m.pane.SetLogFocus(false)
		m.focus = focusCommits
	case m.focus == focusPipeline && m.pane.LogJobID() != 0:
		m.pane.SetLogFocus(true)
	case m.focus == focusPipeline:
		m.focus = focusCommits
	default:
		m.focus = focusPipeline
	}
}

// visitSelected shows the pipeline of the highlighted commit, fetching it
// when it is not cached.
func (m AppModel) visitSelected() tea.Cmd {
	c, ok := m.list.SelectedCommit()
	if !ok {
		return nil
	}
	if m.pane.Visit(c.SHA) {
		return m.fetcher.LoadPipeline(c.SHA)
	}
	m.followSelection()
	return nil
}

// reload drops the cached pipeline and trace on display and fetches them
// again.
func (m AppModel) reload() tea.Cmd {
	c, ok := m.list.SelectedCommit()
	if !ok {
		return nil
	}
	m.pane.Invalidate(c.SHA)
	var cmds []tea.Cmd
	if m.pane.Visit(c.SHA) {
		cmds = append(cmds, m.fetcher.LoadPipeline(c.SHA))
	}
	if id := m.pane.LogJobID(); id != 0 {
		m.pane.InvalidateLog(id)
		cmds = append(cmds, m.openLog())
	}
	return tea.Batch(cmds...)
}

// openLog shows the trace of the selected job.
func (m AppModel) openLog() tea.Cmd {
	j, ok := m.pane.SelectedJob()
	if !ok {
		return nil
	}
	if m.pane.VisitLog(j) {
		return m.fetcher.LoadLog(j.ID)
	}
	return nil
}

// syncLog refetches the open trace when the job may have written more.
func (m AppModel) syncLog() tea.Cmd {
	if !m.pane.LogStale() {
		return nil
	}
	j, ok := logJob(m.pane)
	if !ok {
		return nil
	}
	if m.pane.VisitLog(j) {
		return m.fetcher.LoadLog(j.ID)
	}
	return nil
}

func (m AppModel) browse() tea.Cmd {
	url := ""
	if j, ok := m.pane.SelectedJob(); ok {
		url = j.WebURL
	}
	if d := m.pane.Details(); url == "" && d != nil && d.Pipeline != nil {
		url = d.Pipeline.WebURL
	}
	if url == "" {
		return nil
	}
	openURL := m.OpenURL
	return func() tea.Msg {
		return actionResultMsg{action: "open", err: openURL(url)}
	}
}

func (m AppModel) copyLog() tea.Cmd {
	if len(m.pane.LogLines()) == 0 {
		return nil
	}
	text := m.pane.JobLogText()
	copyText := m.CopyText
	return func() tea.Msg {
		return actionResultMsg{action: "copy", err: copyText(text)}
	}
}

// panes is the screen split for the current terminal size.
type panes struct {
	body     canvas.Rect
	list     canvas.Rect
	sepX     int
	pipeline canvas.Rect
	log      canvas.Rect
}

const headerHeight = 1

func (m AppModel) panes() panes {
	footer := lipgloss.Height(m.help.View(m.keys))
	bodyH := max(m.height-headerHeight-footer, 0)
	listW := m.width / 2
	if m.width >= 48 {
		listW = min(max(m.width/3, 24), 56)
	}
	p := panes{
		body: canvas.Rect{W: m.width, H: bodyH},
		list: canvas.Rect{W: listW, H: bodyH},
		sepX: listW,
	}
	right := canvas.Rect{X: listW + 1, W: max(m.width-listW-1, 0), H: bodyH}
	p.pipeline = right
	if m.pane.LogJobID() != 0 {
		p.pipeline.H = max(bodyH/2, min(bodyH, 4))
		p.log = canvas.Rect{X: right.X, Y: p.pipeline.H, W: right.W, H: bodyH - p.pipeline.H}
	}
	return p
}

// followSelection keeps the selected stage in view and sizes the log
// scroll range to the current screen.
func (m AppModel) followSelection() {
	p := m.panes()
	m.pane.ScrollToSelection(p.pipeline.W, p.pipeline.H)
	if p.log.H > 1 {
		m.pane.SetLogHeight(p.log.H - 1)
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Accent.Hex()))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.TextDim.Hex()))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Info.Hex()))
)

// View renders the full TUI.
func (m AppModel) View() string {
	if m.commitsLoading {
		return "Loading commits...\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit.\n", m.err)
	}
	if m.width == 0 || m.height == 0 {
		return ""
	}

	p := m.panes()
	g := canvas.New(p.body.W, p.body.H)
	rows := m.list.Paint(g, p.list, m.focus == focusCommits)
	m.pane.OverlayCommitHashes(g, rows)

	sep := canvas.Fg(theme.Border)
	if m.focus == focusPipeline && !m.pane.LogFocused() {
		sep = canvas.Fg(theme.Accent)
	}
	for y := 0; y < p.body.H; y++ {
		g.Set(p.sepX, y, '│', sep)
	}
	pipelineview.Render(g, p.pipeline, m.pane)
	paintLogPane(g, p.log, m.pane, m.pane.LogFocused())

	return m.header() + "\n" + g.Render() + "\n" + m.help.View(m.keys)
}

func (m AppModel) header() string {
	h := titleStyle.Render(" stagedeck ") + headerStyle.Render(m.repo.Host+" / "+m.repo.ProjectPath())
	if m.notice != "" {
		h += "  " + noticeStyle.Render(m.notice)
	}
	return h
}

// Run starts the Bubbletea program.
func Run(m AppModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("stagedeck: %w", err)
	}
	return nil
}
