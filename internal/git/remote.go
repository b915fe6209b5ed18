package git

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/waabox/stagedeck/internal/domain"
)

// preferredRemotes are tried in order when detecting the repository.
var preferredRemotes = []string{"gitlab", "origin"}

// DetectRepository reads the .git/config in the given directory and returns
// a Repository built from the "gitlab" remote, or "origin" when there is none.
func DetectRepository(dir string) (domain.Repository, error) {
	configPath := filepath.Join(dir, ".git", "config")
	f, err := os.Open(configPath)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("could not open .git/config: %w", err)
	}
	defer f.Close()

	remotes := make(map[string]string)
	var current string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			current = ""
			if name, ok := strings.CutPrefix(line, `[remote "`); ok {
				current = strings.TrimSuffix(name, `"]`)
			}
			continue
		}
		if current != "" && strings.HasPrefix(line, "url") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				remotes[current] = strings.TrimSpace(parts[1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.Repository{}, fmt.Errorf("reading .git/config: %w", err)
	}
	for _, name := range preferredRemotes {
		if u, ok := remotes[name]; ok {
			return ParseRemoteURL(u)
		}
	}
	return domain.Repository{}, errors.New("no gitlab or origin remote found in .git/config")
}

// ParseRemoteURL parses a git remote URL and returns a Repository.
// Supports HTTPS (https://gitlab.com/group/sub/repo.git), scp-like SSH
// (git@gitlab.com:group/repo.git) and ssh:// URLs. The last path segment is
// the project name; everything before it is the namespace.
// The RemoteURL field in the returned Repository is the input URL unchanged.
func ParseRemoteURL(rawURL string) (domain.Repository, error) {
	var host, path string
	switch {
	case strings.HasPrefix(rawURL, "https://"), strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "ssh://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return domain.Repository{}, fmt.Errorf("invalid remote URL %s: %w", rawURL, err)
		}
		host, path = u.Hostname(), u.Path
	case strings.Contains(rawURL, "@") && strings.Contains(rawURL, ":"):
		// scp-like: user@host:path
		rest := rawURL[strings.Index(rawURL, "@")+1:]
		parts := strings.SplitN(rest, ":", 2)
		host, path = parts[0], parts[1]
	default:
		return domain.Repository{}, fmt.Errorf("unsupported remote URL format: %s", rawURL)
	}

	path = strings.Trim(strings.TrimSuffix(path, ".git"), "/")
	slash := strings.LastIndex(path, "/")
	if host == "" || slash <= 0 || slash == len(path)-1 {
		return domain.Repository{}, fmt.Errorf("invalid remote URL path: %s", rawURL)
	}
	return domain.Repository{
		Host:      host,
		Owner:     path[:slash],
		Name:      path[slash+1:],
		RemoteURL: rawURL,
	}, nil
}
