// Package git detects which organization a working directory belongs to from
// its git remote.
package git

import (
	"net/url"
	"os/exec"
	"strings"
)

// Remote holds the origin remote of a repository
type Remote struct {
	URL string
}

// DetectRemote returns the origin remote of the repository containing dir.
// Returns nil (not an error) when dir is not inside a repository or the
// repository has no origin.
func DetectRemote(dir string) (*Remote, error) {
	if !isGitRepo(dir) {
		return nil, nil
	}

	cmd := exec.Command("git", "config", "--get", "remote.origin.url")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		// git config exits 1 when the key is missing
		return nil, nil
	}
	u := strings.TrimSpace(string(output))
	if u == "" {
		return nil, nil
	}
	return &Remote{URL: u}, nil
}

// Owner returns the account that owns the remote repository
func (r *Remote) Owner() string {
	if r == nil {
		return ""
	}
	return ParseOwner(r.URL)
}

// DetectOrganization returns the owner of dir's origin remote, or "" when
// there is none
func DetectOrganization(dir string) (string, error) {
	remote, err := DetectRemote(dir)
	if err != nil {
		return "", err
	}
	return remote.Owner(), nil
}

// ParseOwner extracts the first path segment of a remote URL. Both URL
// remotes (https://host/owner/repo.git, ssh://git@host/owner/repo) and scp-like
// remotes (git@host:owner/repo.git) are understood.
func ParseOwner(remote string) string {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return ""
	}

	var path string
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return ""
		}
		path = u.Path
	} else if i := strings.Index(remote, ":"); i >= 0 {
		path = remote[i+1:]
	} else {
		return ""
	}

	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	return parts[0]
}

// isGitRepo checks if the directory is within a git repository
func isGitRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}
