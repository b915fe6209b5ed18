package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// GitLabConfig holds the default GitLab instance and credentials.
type GitLabConfig struct {
	Token   string `toml:"token"`
	URL     string `toml:"url"`
	Project string `toml:"project"`
}

// HostConfig holds credentials for one GitLab host, keyed by host name.
type HostConfig struct {
	Token string `toml:"token"`
	URL   string `toml:"url"`
}

// UIConfig tunes the terminal interface.
type UIConfig struct {
	AnimationIntervalMS int `toml:"animation_interval_ms"`
	RefreshIntervalS    int `toml:"refresh_interval_s"`
	CacheSize           int `toml:"cache_size"`
	CommitLimit         int `toml:"commit_limit"`
}

// Config holds all stagedeck configuration.
type Config struct {
	GitLab  GitLabConfig          `toml:"gitlab"`
	Hosts   map[string]HostConfig `toml:"hosts"`
	UI      UIConfig              `toml:"ui"`
	LogFile string                `toml:"log_file"`
}

const (
	defaultHost              = "gitlab.com"
	defaultAnimationInterval = 50 * time.Millisecond
	defaultRefreshInterval   = 10 * time.Second
	defaultCacheSize         = 100
	defaultCommitLimit       = 200
)

// AnimationIntervalOrDefault returns the animation tick period.
func (c Config) AnimationIntervalOrDefault() time.Duration {
	if c.UI.AnimationIntervalMS > 0 {
		return time.Duration(c.UI.AnimationIntervalMS) * time.Millisecond
	}
	return defaultAnimationInterval
}

// RefreshIntervalOrDefault returns how often an active pipeline is refetched.
func (c Config) RefreshIntervalOrDefault() time.Duration {
	if c.UI.RefreshIntervalS > 0 {
		return time.Duration(c.UI.RefreshIntervalS) * time.Second
	}
	return defaultRefreshInterval
}

// CacheSizeOrDefault returns the capacity of the pipeline and log caches.
func (c Config) CacheSizeOrDefault() int {
	if c.UI.CacheSize > 0 {
		return c.UI.CacheSize
	}
	return defaultCacheSize
}

// CommitLimitOrDefault returns how many commits the commit list loads.
func (c Config) CommitLimitOrDefault() int {
	if c.UI.CommitLimit > 0 {
		return c.UI.CommitLimit
	}
	return defaultCommitLimit
}

// WithDefaults returns c with every unset [gitlab] URL and [ui] value
// replaced by the value stagedeck would use.
func (c Config) WithDefaults() Config {
	if c.GitLab.URL == "" {
		c.GitLab.URL = "https://" + defaultHost
	}
	c.UI.AnimationIntervalMS = int(c.AnimationIntervalOrDefault() / time.Millisecond)
	c.UI.RefreshIntervalS = int(c.RefreshIntervalOrDefault() / time.Second)
	c.UI.CacheSize = c.CacheSizeOrDefault()
	c.UI.CommitLimit = c.CommitLimitOrDefault()
	return c
}

// TokenFor returns the token for host. A [hosts."<host>"] entry wins over
// the [gitlab] section, which only applies to its own host.
func (c Config) TokenFor(host string) string {
	if h, ok := c.Hosts[host]; ok && h.Token != "" {
		return h.Token
	}
	if c.GitLabHost() == host {
		return c.GitLab.Token
	}
	return ""
}

// BaseURLFor returns the API base URL for host.
func (c Config) BaseURLFor(host string) string {
	if h, ok := c.Hosts[host]; ok && h.URL != "" {
		return h.URL
	}
	if c.GitLab.URL != "" && c.GitLabHost() == host {
		return c.GitLab.URL
	}
	return "https://" + host
}

// KnownHosts returns every host that has configuration, the [gitlab]
// host first.
func (c Config) KnownHosts() []string {
	hosts := []string{c.GitLabHost()}
	for h := range c.Hosts {
		if h != hosts[0] {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// GitLabHost returns the host of the [gitlab] section, gitlab.com by default.
func (c Config) GitLabHost() string {
	if c.GitLab.URL == "" {
		return defaultHost
	}
	return hostOf(c.GitLab.URL)
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values:
//   - GITLAB_TOKEN overrides gitlab.token
//   - GITLAB_URL   overrides gitlab.url
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// DefaultConfigPath returns the default path for the stagedeck config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "stagedeck", "config.toml")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		cfg.GitLab.Token = v
	}
	if v := os.Getenv("GITLAB_URL"); v != "" {
		cfg.GitLab.URL = v
	}
}

// Save writes cfg to the given TOML file path, creating parent directories as needed.
// Existing file contents are overwritten. Permissions on the written file are 0600.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	if encErr := toml.NewEncoder(f).Encode(cfg); encErr != nil {
		f.Close()
		return encErr
	}
	return f.Close()
}
