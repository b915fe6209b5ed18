package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/waabox/stagedeck/internal/domain"
)

// fieldSep separates fields in the git log format; it never appears in
// commit subjects.
const fieldSep = "\x1f"

// ListCommits returns the newest commits reachable from HEAD in dir.
func ListCommits(ctx context.Context, dir string, limit int) ([]domain.Commit, error) {
	out, err := run(ctx, dir, "log", "-n", strconv.Itoa(limit), "--format=%H"+fieldSep+"%s"+fieldSep+"%an")
	if err != nil {
		return nil, err
	}
	return ParseLog(out), nil
}

// ResolveCommit expands a revision such as "HEAD" or a short hash into a
// full commit SHA.
func ResolveCommit(ctx context.Context, dir, rev string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "--verify", rev+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ParseLog parses the output of git log in the ListCommits format.
func ParseLog(out string) []domain.Commit {
	var commits []domain.Commit
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, fieldSep, 3)
		c := domain.Commit{SHA: fields[0]}
		if len(fields) > 1 {
			c.Subject = fields[1]
		}
		if len(fields) > 2 {
			c.Author = fields[2]
		}
		commits = append(commits, c)
	}
	return commits
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
