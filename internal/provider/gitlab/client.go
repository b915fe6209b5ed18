// Package gitlab reads pipelines, jobs and job traces from the GitLab REST API.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/waabox/stagedeck/internal/domain"
)

const (
	defaultBaseURL  = "https://gitlab.com"
	defaultRetryMax = 2
	jobsPerPage     = 100
	// maxJobPages bounds pagination for pipelines with very many jobs.
	maxJobPages = 10
)

// Client talks to one GitLab instance.
type Client struct {
	token   string
	baseURL string
	http    *retryablehttp.Client
}

// Ensure Client fully implements domain.PipelineSource.
var _ domain.PipelineSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRetryMax sets how many times transport failures and 5xx responses are
// retried.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = max(n, 0) }
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.HTTPClient.Timeout = d }
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(lo, hi time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = lo
		c.http.RetryWaitMax = hi
	}
}

// WithLogger routes request and retry logging to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.http.Logger = leveledLogger{l} }
}

// NewClient creates a GitLab client. baseURL can be a self-hosted instance;
// pass an empty string for gitlab.com.
func NewClient(token, baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = defaultRetryMax
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 15 * time.Second
	rc.Logger = nil
	// Hand the last response back so its status can be classified.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{token: token, baseURL: baseURL, http: rc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) projectURL(project string) string {
	return fmt.Sprintf("%s/api/v4/projects/%s", c.baseURL, url.PathEscape(project))
}

// PipelineForCommit returns the newest pipeline built for sha, or nil when
// the commit has none.
func (c *Client) PipelineForCommit(ctx context.Context, project, sha string) (*domain.Pipeline, error) {
	apiURL := c.projectURL(project) + "/pipelines?sha=" + url.QueryEscape(sha)
	var runs []gitLabPipeline
	if _, err := c.get(ctx, "fetching pipelines", apiURL, &runs); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	p := runs[0].toPipeline()
	return &p, nil
}

// PipelineJobs returns the jobs of a pipeline in API order.
func (c *Client) PipelineJobs(ctx context.Context, project string, pipelineID int64) ([]domain.Job, error) {
	base := fmt.Sprintf("%s/pipelines/%d/jobs?per_page=%d", c.projectURL(project), pipelineID, jobsPerPage)
	var jobs []domain.Job
	apiURL := base
	for page := 1; page <= maxJobPages; page++ {
		var raw []gitLabJob
		header, err := c.get(ctx, "fetching jobs", apiURL, &raw)
		if err != nil {
			return nil, err
		}
		for _, j := range raw {
			jobs = append(jobs, j.toJob())
		}
		next := header.Get("X-Next-Page")
		if next == "" {
			break
		}
		apiURL = base + "&page=" + url.QueryEscape(next)
	}
	return jobs, nil
}

// PipelineDetails returns the newest pipeline for sha grouped into stages,
// or nil when the commit has no pipeline.
func (c *Client) PipelineDetails(ctx context.Context, project, sha string) (*domain.PipelineDetails, error) {
	p, err := c.PipelineForCommit(ctx, project, sha)
	if err != nil || p == nil {
		return nil, err
	}
	jobs, err := c.PipelineJobs(ctx, project, p.ID)
	if err != nil {
		return nil, err
	}
	return domain.NewPipelineDetails(*p, jobs), nil
}

// JobTrace returns the full raw log trace for the given job.
func (c *Client) JobTrace(ctx context.Context, project string, jobID int64) (string, error) {
	apiURL := fmt.Sprintf("%s/jobs/%d/trace", c.projectURL(project), jobID)
	resp, err := c.do(ctx, "fetching job trace", apiURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.FetchError{Kind: domain.KindTransport, Op: "reading job trace", Err: err}
	}
	return string(b), nil
}

func (c *Client) get(ctx context.Context, op, apiURL string, target any) (http.Header, error) {
	resp, err := c.do(ctx, op, apiURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return nil, &domain.FetchError{Kind: domain.KindDecode, Op: op, Err: err}
	}
	return resp.Header, nil
}

// do issues a GET and returns the response when its status is a success.
func (c *Client) do(ctx context.Context, op, apiURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.KindTransport, Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, &domain.FetchError{Kind: domain.KindTransport, Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		perr := fmt.Errorf("gitlab API error: %s", resp.Status)
		if resp.StatusCode == http.StatusUnauthorized {
			perr = fmt.Errorf("gitlab API error: %s: %w", resp.Status, domain.ErrUnauthorized)
		}
		return nil, &domain.FetchError{Kind: domain.KindProtocol, Op: op, Err: perr}
	}
	return resp, nil
}

type gitLabPipeline struct {
	ID        int64                 `json:"id"`
	IID       int64                 `json:"iid"`
	Ref       string                `json:"ref"`
	SHA       string                `json:"sha"`
	Status    domain.PipelineStatus `json:"status"`
	WebURL    string                `json:"web_url"`
	CreatedAt *time.Time            `json:"created_at"`
	UpdatedAt *time.Time            `json:"updated_at"`
}

func (r gitLabPipeline) toPipeline() domain.Pipeline {
	return domain.Pipeline{
		ID:        r.ID,
		IID:       r.IID,
		Status:    r.Status,
		SHA:       r.SHA,
		Ref:       r.Ref,
		WebURL:    r.WebURL,
		CreatedAt: deref(r.CreatedAt),
		UpdatedAt: deref(r.UpdatedAt),
	}
}

type gitLabJob struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name"`
	Stage        string                `json:"stage"`
	Status       domain.PipelineStatus `json:"status"`
	WebURL       string                `json:"web_url"`
	StartedAt    *time.Time            `json:"started_at"`
	FinishedAt   *time.Time            `json:"finished_at"`
	Duration     *float64              `json:"duration"`
	AllowFailure bool                  `json:"allow_failure"`
}

func (j gitLabJob) toJob() domain.Job {
	job := domain.Job{
		ID:           j.ID,
		Name:         j.Name,
		Status:       j.Status,
		Stage:        j.Stage,
		WebURL:       j.WebURL,
		StartedAt:    deref(j.StartedAt),
		FinishedAt:   deref(j.FinishedAt),
		AllowFailure: j.AllowFailure,
	}
	if j.Duration != nil {
		job.Duration = time.Duration(*j.Duration * float64(time.Second))
	}
	return job
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// leveledLogger adapts a logrus logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l logrus.FieldLogger
}

func (l leveledLogger) fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}

func (l leveledLogger) Error(msg string, kv ...any) { l.l.WithFields(l.fields(kv)).Error(msg) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.l.WithFields(l.fields(kv)).Info(msg) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.l.WithFields(l.fields(kv)).Debug(msg) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.l.WithFields(l.fields(kv)).Warn(msg) }

var _ retryablehttp.LeveledLogger = leveledLogger{}

