package domain

import "context"

// PipelineSource is the port the pipeline pane fetches through.
// The pane does not know which CI system sits behind it.
type PipelineSource interface {
	// PipelineDetails returns the newest pipeline for sha with its stages,
	// or nil when the commit has no pipeline.
	PipelineDetails(ctx context.Context, project, sha string) (*PipelineDetails, error)
	// JobTrace returns the raw console output of a job.
	JobTrace(ctx context.Context, project string, jobID int64) (string, error)
}
