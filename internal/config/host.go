package config

import (
	"net/url"
	"strings"
)

// hostOf extracts the host name from a base URL such as
// "https://gitlab.example.com:8443/". A bare host is returned unchanged.
func hostOf(raw string) string {
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
