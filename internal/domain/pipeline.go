package domain

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// Pipeline is the header of a GitLab pipeline run.
type Pipeline struct {
	ID        int64
	IID       int64
	Status    PipelineStatus
	SHA       string
	Ref       string
	WebURL    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Job represents a single unit of work within a pipeline.
// Zero times and a zero Duration mean GitLab did not report them.
type Job struct {
	ID           int64
	Name         string
	Status       PipelineStatus
	Stage        string
	WebURL       string
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
	AllowFailure bool
}

// failsStage reports whether the job is a failure that counts against its stage.
func (j Job) failsStage() bool {
	return j.Status == StatusFailed && !j.AllowFailure
}

// Stage groups the jobs of one pipeline phase in API order.
type Stage struct {
	Name string
	Jobs []Job
}

// Status derives the stage status from its jobs.
func (s Stage) Status() PipelineStatus {
	if len(s.Jobs) == 0 {
		return StatusCreated
	}
	var running, pending, failed bool
	allSuccess, allSkipped := true, true
	for _, j := range s.Jobs {
		switch {
		case j.failsStage():
			failed = true
		case j.Status == StatusRunning:
			running = true
		case j.Status.isPendingLike():
			pending = true
		}
		if j.Status != StatusSuccess {
			allSuccess = false
		}
		if j.Status != StatusSkipped {
			allSkipped = false
		}
	}
	switch {
	case failed:
		return StatusFailed
	case running:
		return StatusRunning
	case pending:
		return StatusPending
	case allSuccess:
		return StatusSuccess
	case allSkipped:
		return StatusSkipped
	}
	return StatusCreated
}

// HasMixedFailure is true when the stage has a real failure next to at least
// one job that did not really fail.
func (s Stage) HasMixedFailure() bool {
	var real, other bool
	for _, j := range s.Jobs {
		if j.failsStage() {
			real = true
		} else {
			other = true
		}
	}
	return real && other
}

func (s Stage) minJobID() int64 {
	lowest := int64(math.MaxInt64)
	for _, j := range s.Jobs {
		if j.ID < lowest {
			lowest = j.ID
		}
	}
	return lowest
}

// PipelineDetails is a pipeline header plus its stages. A value is never
// modified after construction; refreshed data produces a new value.
type PipelineDetails struct {
	Pipeline *Pipeline
	Stages   []Stage
}

// NewPipelineDetails groups jobs by stage in first-seen order and orders the
// stages by the smallest job id each one contains. GitLab does not guarantee
// stage order, but job ids grow with execution order.
func NewPipelineDetails(p Pipeline, jobs []Job) *PipelineDetails {
	var stages []Stage
	index := make(map[string]int)
	for _, j := range jobs {
		i, ok := index[j.Stage]
		if !ok {
			i = len(stages)
			index[j.Stage] = i
			stages = append(stages, Stage{Name: j.Stage})
		}
		stages[i].Jobs = append(stages[i].Jobs, j)
	}
	slices.SortStableFunc(stages, func(a, b Stage) int {
		return cmp.Compare(a.minJobID(), b.minJobID())
	})
	return &PipelineDetails{Pipeline: &p, Stages: stages}
}

// Status returns the pipeline header status, if there is a header.
func (d *PipelineDetails) Status() (PipelineStatus, bool) {
	if d == nil || d.Pipeline == nil {
		return "", false
	}
	return d.Pipeline.Status, true
}

// Job returns the job at the given stage and job index.
func (d *PipelineDetails) Job(stage, job int) (Job, bool) {
	if d == nil || stage < 0 || stage >= len(d.Stages) {
		return Job{}, false
	}
	jobs := d.Stages[stage].Jobs
	if job < 0 || job >= len(jobs) {
		return Job{}, false
	}
	return jobs[job], true
}
