package pipelineview

import (
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/joblog"
)

// VisitLog switches the log pane to job. It returns true when the caller
// must fetch the trace. Traces of finished jobs are served from the cache;
// active jobs are always refetched because their trace keeps growing.
func (s *State) VisitLog(job domain.Job) bool {
	if raw, ok := s.logs.Get(job.ID); ok && !job.Status.IsActive() {
		s.applyLog(job.ID, raw)
		return false
	}
	if s.logLoading && s.logJobID == job.ID {
		return false
	}
	if s.logJobID != job.ID {
		s.log = nil
		s.logScroll = 0
	}
	s.logJobID = job.ID
	s.logLoading = true
	s.logErr = ""
	return true
}

// SetJobLog stores a fetched trace. Traces for a job that is no longer
// shown are dropped and false is returned. Only traces of finished jobs are
// cached.
func (s *State) SetJobLog(jobID int64, raw string) bool {
	if jobID != s.logJobID {
		return false
	}
	if j, ok := s.jobByID(jobID); ok && !j.Status.IsActive() {
		s.logs.Insert(jobID, raw)
	}
	s.applyLog(jobID, raw)
	return true
}

// SetLogError records a trace fetch failure for jobID.
func (s *State) SetLogError(jobID int64, msg string) bool {
	if jobID != s.logJobID {
		return false
	}
	s.logLoading = false
	s.logErr = msg
	return true
}

// LogStale reports whether the open trace may have grown since it was
// fetched: its job is still active, or it finished after the fetch.
func (s *State) LogStale() bool {
	if s.logJobID == 0 || s.logLoading {
		return false
	}
	j, ok := s.jobByID(s.logJobID)
	if !ok {
		return false
	}
	if j.Status.IsActive() {
		return true
	}
	_, cached := s.logs.Get(s.logJobID)
	return !cached && s.logErr == ""
}

// InvalidateLog forgets the cached trace of jobID.
func (s *State) InvalidateLog(jobID int64) {
	s.logs.Invalidate(jobID)
}

// ClearJobLog empties the log pane.
func (s *State) ClearJobLog() {
	s.log = nil
	s.logJobID = 0
	s.logLoading = false
	s.logErr = ""
	s.logScroll = 0
	s.logFocused = false
}

func (s *State) applyLog(jobID int64, raw string) {
	s.log = joblog.Parse(raw)
	s.logJobID = jobID
	s.logLoading = false
	s.logErr = ""
	s.logScroll = 0
	if j, ok := s.jobByID(jobID); ok && (j.Status == domain.StatusRunning || j.Status == domain.StatusPending) {
		s.logScroll = s.maxLogScroll()
	}
}

// LogLines returns the parsed trace on display.
func (s *State) LogLines() []joblog.Line { return s.log }

// LogJobID returns the job whose trace is on display, or 0.
func (s *State) LogJobID() int64 { return s.logJobID }

// LogLoading reports whether a trace fetch is in flight.
func (s *State) LogLoading() bool { return s.logLoading }

// LogErr returns the trace fetch error, or "".
func (s *State) LogErr() string { return s.logErr }

// LogFocused reports whether keys scroll the log instead of moving the
// selection.
func (s *State) LogFocused() bool { return s.logFocused }

// SetLogFocus sets log focus.
func (s *State) SetLogFocus(focused bool) { s.logFocused = focused }

// LogScroll returns the index of the first visible log line.
func (s *State) LogScroll() int { return s.logScroll }

// ScrollLog moves the log by delta lines, clamped to the content.
func (s *State) ScrollLog(delta int) {
	s.logScroll = min(max(s.logScroll+delta, 0), s.maxLogScroll())
}

// ScrollLogToEnd shows the last page of the log.
func (s *State) ScrollLogToEnd() { s.logScroll = s.maxLogScroll() }

// SetLogHeight records how many log lines fit on screen.
func (s *State) SetLogHeight(h int) {
	s.logHeight = max(h, 0)
	s.logScroll = min(s.logScroll, s.maxLogScroll())
}

func (s *State) maxLogScroll() int {
	return max(len(s.log)-s.logHeight, 0)
}

// JobLogText returns the log on display as numbered plain text.
func (s *State) JobLogText() string {
	return joblog.AsText(s.log)
}
