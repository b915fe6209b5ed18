package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/waabox/stagedeck/internal/config"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/git"
	"github.com/waabox/stagedeck/internal/provider"
	gitlabprovider "github.com/waabox/stagedeck/internal/provider/gitlab"
	"github.com/waabox/stagedeck/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

type options struct {
	Config  string `long:"config" short:"c" value-name:"PATH" description:"Config file (default ~/.config/stagedeck/config.toml)"`
	LogFile string `long:"log-file" value-name:"PATH" description:"Write debug logs to this file"`
	Project string `long:"project" short:"p" value-name:"GROUP/NAME" description:"GitLab project path; detected from the git remote when empty"`
	SHA     string `long:"sha" value-name:"REV" description:"Commit to print with --print (default HEAD)"`
	Print   bool   `long:"print" description:"Print the pipeline of one commit and exit"`
	Width   int    `long:"width" default:"100" description:"Diagram width for --print"`
	Version bool   `long:"version" description:"Print version and exit"`

	WriteConfig bool `long:"write-config" description:"Write the effective configuration with defaults filled in to the config file and exit"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println("stagedeck", version)
		os.Exit(0)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "stagedeck: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	configPath := opts.Config
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	if opts.WriteConfig {
		return writeConfig(os.Stdout, configPath, cfg, opts.Project)
	}
	log, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	repo, err := resolveRepository(cwd, opts.Project, cfg)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"host": repo.Host, "project": repo.ProjectPath()}).Info("starting")

	source, err := newRegistry(cfg, repo.Host, log).Lookup(repo.Host)
	if err != nil {
		return err
	}

	if opts.Print {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		rev := opts.SHA
		if rev == "" {
			rev = "HEAD"
		}
		sha, err := git.ResolveCommit(ctx, cwd, rev)
		if err != nil {
			if opts.SHA == "" {
				return err
			}
			sha = opts.SHA
		}
		return printPipeline(ctx, os.Stdout, source, repo, sha, opts.Width)
	}

	limit := cfg.CommitLimitOrDefault()
	commits := func(ctx context.Context) ([]domain.Commit, error) {
		return git.ListCommits(ctx, cwd, limit)
	}
	return tui.Run(tui.NewAppModel(repo, source, commits, tui.Options{
		AnimationInterval: cfg.AnimationIntervalOrDefault(),
		RefreshInterval:   cfg.RefreshIntervalOrDefault(),
		CacheSize:         cfg.CacheSizeOrDefault(),
		Log:               log,
	}))
}

// resolveRepository picks the project from the flag, then the config file,
// then the git remote of dir.
func resolveRepository(dir, project string, cfg config.Config) (domain.Repository, error) {
	if project == "" {
		project = cfg.GitLab.Project
	}
	if project == "" {
		repo, err := git.DetectRepository(dir)
		if err != nil {
			return domain.Repository{}, fmt.Errorf("detecting git remote: %w", err)
		}
		return repo, nil
	}
	host := cfg.GitLabHost()
	repo, err := git.ParseRemoteURL("https://" + host + "/" + project)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("invalid project %q: %w", project, err)
	}
	return repo, nil
}

// writeConfig saves cfg with defaults filled in, so users get a file listing
// every setting. Values from GITLAB_TOKEN and GITLAB_URL are written too.
func writeConfig(w io.Writer, path string, cfg config.Config, project string) error {
	if project != "" {
		cfg.GitLab.Project = project
	}
	if err := config.Save(path, cfg.WithDefaults()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(w, "wrote %s\n", path)
	return nil
}

// newRegistry registers a GitLab client for every configured host and for
// the host of the repository itself.
func newRegistry(cfg config.Config, repoHost string, log logrus.FieldLogger) *provider.Registry {
	hosts := cfg.KnownHosts()
	known := false
	for _, h := range hosts {
		known = known || h == repoHost
	}
	if !known && repoHost != "" {
		hosts = append(hosts, repoHost)
	}

	registry := provider.NewRegistry()
	for _, h := range hosts {
		client := gitlabprovider.NewClient(cfg.TokenFor(h), cfg.BaseURLFor(h), gitlabprovider.WithLogger(log.WithField("host", h)))
		registry.Register(h, provider.NewGuardedSource(client, h, log))
	}
	return registry
}

// newLogger returns a logger writing to path. Without a path logs are
// discarded, since the terminal belongs to the UI.
func newLogger(path string) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	if path == "" {
		log.SetOutput(io.Discard)
		return log, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	log.SetLevel(logrus.DebugLevel)
	return log, func() { _ = f.Close() }, nil
}
