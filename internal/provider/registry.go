package provider

import (
	"fmt"
	"strings"

	"github.com/waabox/stagedeck/internal/domain"
)

// Registry maps remote URL hosts to PipelineSource implementations.
type Registry struct {
	entries []entry
}

type entry struct {
	host   string
	source domain.PipelineSource
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates a host (e.g., "gitlab.com") with a source. A later
// registration for the same host is ignored.
func (r *Registry) Register(host string, s domain.PipelineSource) {
	r.entries = append(r.entries, entry{host: host, source: s})
}

// Hosts returns the registered hosts in registration order.
func (r *Registry) Hosts() []string {
	hosts := make([]string, len(r.entries))
	for i, e := range r.entries {
		hosts[i] = e.host
	}
	return hosts
}

// Lookup returns the source registered for host. Host names compare
// case-insensitively and must match exactly; "mygitlab.com" never resolves
// to the "gitlab.com" source.
func (r *Registry) Lookup(host string) (domain.PipelineSource, error) {
	for _, e := range r.entries {
		if strings.EqualFold(e.host, host) {
			return e.source, nil
		}
	}
	return nil, fmt.Errorf("no pipeline source registered for host %q", host)
}
