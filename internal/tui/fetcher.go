package tui

import (
	"context"
	"io"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/waabox/stagedeck/internal/domain"
)

// PipelineLoadedMsg carries the pipeline of a commit. Details is nil when
// the commit has no pipeline.
type PipelineLoadedMsg struct {
	SHA     string
	Details *domain.PipelineDetails
}

// PipelineFailedMsg is sent when a pipeline fetch fails.
type PipelineFailedMsg struct {
	SHA string
	Err error
}

// LogLoadedMsg carries the raw trace of a job.
type LogLoadedMsg struct {
	JobID int64
	Trace string
}

// LogFailedMsg is sent when a trace fetch fails.
type LogFailedMsg struct {
	JobID int64
	Err   error
}

// defaultFetchTimeout bounds a single fetch including retries.
const defaultFetchTimeout = 30 * time.Second

// Fetcher turns PipelineSource calls into bubbletea commands. Concurrent
// requests for the same commit or job share one network call.
type Fetcher struct {
	source  domain.PipelineSource
	project string
	timeout time.Duration
	log     logrus.FieldLogger
	group   singleflight.Group
}

// NewFetcher creates a Fetcher for project.
func NewFetcher(source domain.PipelineSource, project string, log logrus.FieldLogger) *Fetcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Fetcher{
		source:  source,
		project: project,
		timeout: defaultFetchTimeout,
		log:     log,
	}
}

// LoadPipeline returns a command fetching the pipeline of sha.
func (f *Fetcher) LoadPipeline(sha string) tea.Cmd {
	return func() tea.Msg {
		v, err, shared := f.group.Do("pipeline:"+sha, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
			defer cancel()
			return f.source.PipelineDetails(ctx, f.project, sha)
		})
		if shared {
			f.log.WithField("sha", sha).Debug("pipeline fetch shared with an in-flight request")
		}
		if err != nil {
			return PipelineFailedMsg{SHA: sha, Err: err}
		}
		details, _ := v.(*domain.PipelineDetails)
		return PipelineLoadedMsg{SHA: sha, Details: details}
	}
}

// LoadLog returns a command fetching the trace of jobID.
func (f *Fetcher) LoadLog(jobID int64) tea.Cmd {
	return func() tea.Msg {
		v, err, _ := f.group.Do("trace:"+strconv.FormatInt(jobID, 10), func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
			defer cancel()
			return f.source.JobTrace(ctx, f.project, jobID)
		})
		if err != nil {
			return LogFailedMsg{JobID: jobID, Err: err}
		}
		return LogLoadedMsg{JobID: jobID, Trace: v.(string)}
	}
}
