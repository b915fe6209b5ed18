// Package pipelineview holds the state of the pipeline pane and paints it
// onto a canvas grid.
package pipelineview

import (
	"github.com/waabox/stagedeck/internal/cache"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/joblog"
)

// State is everything the pipeline pane shows. It is owned by the UI loop
// and is not safe for concurrent use.
type State struct {
	pipelines *cache.Pipelines
	logs      *cache.JobLogs

	sha        string
	details    *domain.PipelineDetails
	loading    bool
	refreshing bool
	err        string

	stage, job       int
	scrollX, scrollY int
	tick             uint8

	log        []joblog.Line
	logJobID   int64
	logLoading bool
	logErr     string
	logScroll  int
	logHeight  int
	logFocused bool
}

// NewState creates a State whose caches hold up to capacity entries each.
func NewState(capacity int) *State {
	return &State{
		pipelines: cache.NewPipelines(capacity),
		logs:      cache.NewJobLogs(capacity),
	}
}

// SHA returns the commit the pane is showing.
func (s *State) SHA() string { return s.sha }

// Details returns the pipeline on display, or nil.
func (s *State) Details() *domain.PipelineDetails { return s.details }

// Loading reports whether a pipeline fetch for the current commit is in flight.
func (s *State) Loading() bool { return s.loading }

// Err returns the fetch error message for the current commit, or "".
func (s *State) Err() string { return s.err }

// Tick returns the animation counter.
func (s *State) Tick() uint8 { return s.tick }

// Advance moves the animation one step. The counter wraps.
func (s *State) Advance() { s.tick++ }

// IsRunning reports whether the pipeline on display still has work to do.
func (s *State) IsRunning() bool {
	st, ok := s.details.Status()
	if !ok {
		return false
	}
	switch st {
	case domain.StatusRunning, domain.StatusPending, domain.StatusPreparing:
		return true
	}
	return false
}

// Cached returns the cached outcome for sha without changing the display.
func (s *State) Cached(sha string) (cache.Outcome, bool) {
	return s.pipelines.Get(sha)
}

// Visit switches the pane to sha. It returns true when the caller must fetch
// the pipeline; cached commits are shown directly and a fetch already in
// flight for sha is not repeated.
func (s *State) Visit(sha string) bool {
	if o, ok := s.pipelines.Get(sha); ok {
		s.ApplyCached(sha, o)
		return false
	}
	if s.loading && s.sha == sha {
		return false
	}
	s.SetLoading(sha)
	return true
}

// SetLoading marks a fetch for sha as in flight. Moving to another commit
// drops the previous pipeline and selection.
func (s *State) SetLoading(sha string) {
	if sha != s.sha {
		s.switchTo(sha)
		s.details = nil
	}
	s.loading = true
	s.err = ""
}

// Refresh starts a background refresh of the pipeline on display. The old
// pipeline stays visible until the new one arrives. It returns false when
// there is nothing to refresh or a fetch is already running.
func (s *State) Refresh() bool {
	if s.details == nil || s.loading || s.refreshing {
		return false
	}
	s.refreshing = true
	return true
}

// SetPipeline stores the fetch result for sha. A nil details means the
// commit has no pipeline. Results for a commit that is no longer shown are
// dropped and false is returned.
func (s *State) SetPipeline(sha string, details *domain.PipelineDetails) bool {
	if sha != s.sha {
		return false
	}
	if details == nil {
		s.pipelines.Insert(sha, cache.NotFound())
	} else {
		s.pipelines.Insert(sha, cache.Found(details))
	}
	fresh := s.details == nil
	s.details = details
	s.loading, s.refreshing = false, false
	s.err = ""
	if fresh {
		s.AutoFocus()
	}
	s.clampSelection()
	return true
}

// SetError stores a fetch failure for sha. Like SetPipeline it ignores
// results for commits that are no longer shown.
func (s *State) SetError(sha, msg string) bool {
	if sha != s.sha {
		return false
	}
	s.pipelines.Insert(sha, cache.Failed(msg))
	s.loading, s.refreshing = false, false
	s.err = msg
	return true
}

// ApplyCached shows a previously cached outcome for sha.
func (s *State) ApplyCached(sha string, o cache.Outcome) {
	moved := sha != s.sha
	if moved {
		s.switchTo(sha)
	}
	s.loading, s.refreshing = false, false
	switch o.Kind {
	case cache.KindFound:
		s.details, s.err = o.Details, ""
	case cache.KindNotFound:
		s.details, s.err = nil, ""
	case cache.KindError:
		s.details, s.err = nil, o.Err
	}
	if moved {
		s.AutoFocus()
	}
	s.clampSelection()
}

// Invalidate forgets the cached outcome for sha so the next Visit fetches it.
func (s *State) Invalidate(sha string) {
	s.pipelines.Invalidate(sha)
}

func (s *State) switchTo(sha string) {
	s.sha = sha
	s.stage, s.job = 0, 0
	s.scrollX, s.scrollY = 0, 0
	s.refreshing = false
	s.ClearJobLog()
}
