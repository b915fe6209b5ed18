package cache

import "github.com/waabox/stagedeck/internal/domain"

// OutcomeKind tags a cached pipeline lookup.
type OutcomeKind int

const (
	KindFound OutcomeKind = iota
	KindNotFound
	KindError
)

// Outcome is the cached result of looking up the pipeline of a commit.
type Outcome struct {
	Kind    OutcomeKind
	Details *domain.PipelineDetails
	Err     string
}

// Found caches a pipeline.
func Found(d *domain.PipelineDetails) Outcome {
	return Outcome{Kind: KindFound, Details: d}
}

// NotFound caches the absence of a pipeline. It is not an error.
func NotFound() Outcome {
	return Outcome{Kind: KindNotFound}
}

// Failed caches a fetch error message so the commit is not refetched until
// the entry is invalidated.
func Failed(msg string) Outcome {
	return Outcome{Kind: KindError, Err: msg}
}

// Status returns the pipeline status carried by a Found outcome.
func (o Outcome) Status() (domain.PipelineStatus, bool) {
	if o.Kind != KindFound {
		return "", false
	}
	return o.Details.Status()
}

// Pipelines caches pipeline outcomes by commit SHA.
type Pipelines = FIFO[string, Outcome]

// JobLogs caches raw job traces by job id.
type JobLogs = FIFO[int64, string]

// NewPipelines creates a pipeline cache.
func NewPipelines(capacity int) *Pipelines {
	return NewFIFO[string, Outcome](capacity)
}

// NewJobLogs creates a job-log cache.
func NewJobLogs(capacity int) *JobLogs {
	return NewFIFO[int64, string](capacity)
}
