package pipelineview

import (
	"time"

	"github.com/waabox/stagedeck/internal/domain"
)

// Selection returns the selected stage and job indices.
func (s *State) Selection() (stage, job int) { return s.stage, s.job }

// NextStage moves to the following stage and its first job.
func (s *State) NextStage() {
	if s.details == nil || s.stage >= len(s.details.Stages)-1 {
		return
	}
	s.stage++
	s.job = 0
}

// PrevStage moves to the preceding stage and its first job.
func (s *State) PrevStage() {
	if s.stage == 0 {
		return
	}
	s.stage--
	s.job = 0
}

// NextJob moves down within the selected stage.
func (s *State) NextJob() {
	if s.details == nil || s.stage >= len(s.details.Stages) {
		return
	}
	if s.job < len(s.details.Stages[s.stage].Jobs)-1 {
		s.job++
	}
}

// PrevJob moves up within the selected stage.
func (s *State) PrevJob() {
	if s.job > 0 {
		s.job--
	}
}

// AutoFocus selects the running job that started last, or failing that the
// first failed job. Otherwise the selection is left alone.
func (s *State) AutoFocus() {
	if s.details == nil {
		return
	}
	bestStage, bestJob := -1, -1
	var bestStart time.Time
	for si, st := range s.details.Stages {
		for ji, j := range st.Jobs {
			if j.Status != domain.StatusRunning {
				continue
			}
			if bestStage < 0 || j.StartedAt.After(bestStart) {
				bestStage, bestJob, bestStart = si, ji, j.StartedAt
			}
		}
	}
	if bestStage >= 0 {
		s.stage, s.job = bestStage, bestJob
		return
	}
	for si, st := range s.details.Stages {
		for ji, j := range st.Jobs {
			if j.Status == domain.StatusFailed {
				s.stage, s.job = si, ji
				return
			}
		}
	}
}

// SelectedJob returns the job under the cursor.
func (s *State) SelectedJob() (domain.Job, bool) {
	return s.details.Job(s.stage, s.job)
}

// SelectedJobID returns the id of the job under the cursor.
func (s *State) SelectedJobID() (int64, bool) {
	j, ok := s.SelectedJob()
	return j.ID, ok
}

func (s *State) clampSelection() {
	if s.details == nil || len(s.details.Stages) == 0 {
		s.stage, s.job = 0, 0
		return
	}
	s.stage = min(max(s.stage, 0), len(s.details.Stages)-1)
	s.job = min(max(s.job, 0), max(len(s.details.Stages[s.stage].Jobs)-1, 0))
}

func (s *State) jobByID(id int64) (domain.Job, bool) {
	if s.details == nil {
		return domain.Job{}, false
	}
	for _, st := range s.details.Stages {
		for _, j := range st.Jobs {
			if j.ID == id {
				return j, true
			}
		}
	}
	return domain.Job{}, false
}
