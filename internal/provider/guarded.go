package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/waabox/stagedeck/internal/domain"
)

// AuthError is returned when a host rejects the configured token.
type AuthError struct {
	Host string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s rejected the access token: set GITLAB_TOKEN or [hosts.%q] token in the config file", e.Host, e.Host)
}

func (e *AuthError) Unwrap() error { return e.Err }

// GuardedSource wraps a PipelineSource, logging every fetch and turning
// 401 responses into an AuthError that tells the user what to fix.
type GuardedSource struct {
	inner domain.PipelineSource
	host  string
	log   logrus.FieldLogger
}

// Ensure GuardedSource implements PipelineSource.
var _ domain.PipelineSource = (*GuardedSource)(nil)

// NewGuardedSource creates a GuardedSource for the given host.
func NewGuardedSource(inner domain.PipelineSource, host string, log logrus.FieldLogger) *GuardedSource {
	return &GuardedSource{
		inner: inner,
		host:  host,
		log:   log.WithField("host", host),
	}
}

func (g *GuardedSource) PipelineDetails(ctx context.Context, project, sha string) (*domain.PipelineDetails, error) {
	start := time.Now()
	d, err := g.inner.PipelineDetails(ctx, project, sha)
	entry := g.log.WithFields(logrus.Fields{
		"project": project,
		"sha":     sha,
		"elapsed": time.Since(start).Round(time.Millisecond),
	})
	switch {
	case err != nil:
		entry.WithError(err).Warn("pipeline fetch failed")
	case d == nil:
		entry.Debug("no pipeline for commit")
	default:
		entry.WithField("pipeline", d.Pipeline.ID).Debug("pipeline fetched")
	}
	return d, g.wrap(err)
}

func (g *GuardedSource) JobTrace(ctx context.Context, project string, jobID int64) (string, error) {
	start := time.Now()
	trace, err := g.inner.JobTrace(ctx, project, jobID)
	entry := g.log.WithFields(logrus.Fields{
		"project": project,
		"job":     jobID,
		"elapsed": time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		entry.WithError(err).Warn("job trace fetch failed")
	} else {
		entry.WithField("bytes", len(trace)).Debug("job trace fetched")
	}
	return trace, g.wrap(err)
}

func (g *GuardedSource) wrap(err error) error {
	if err != nil && errors.Is(err, domain.ErrUnauthorized) {
		return &AuthError{Host: g.host, Err: err}
	}
	return err
}
