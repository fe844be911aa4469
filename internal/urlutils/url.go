// Package urlutils splits git remote URLs into the host and path segments used
// to lay out clones and timing data on disk. It understands scheme URLs
// (https, ssh, git, file) as well as scp-style "user@host:path" remotes.
package urlutils

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrMissingHost indicates that the URL does not name a remote host
	ErrMissingHost = errors.New("remote URL has no host")

	// user@host:path, where the part before the colon has no slash
	scpRegex = regexp.MustCompile(`^(?:[^@/]+@)?([^:/\[\]]+):(.*)$`)
)

// RepoURL is a remote URL reduced to what path derivation needs.
type RepoURL struct {
	Host     string
	Segments []string
}

// Parts returns host followed by the path segments, skipping an empty host.
func (r RepoURL) Parts() []string {
	parts := make([]string, 0, len(r.Segments)+1)
	if r.Host != "" {
		parts = append(parts, r.Host)
	}
	return append(parts, r.Segments...)
}

// Parse reduces rawURL to its host and path segments. Scheme, credentials and
// port are discarded. Parse never fails: input that is not a URL is treated as
// a bare path, so derivation stays total.
func Parse(rawURL string) RepoURL {
	rawURL = strings.TrimSpace(rawURL)

	if !strings.Contains(rawURL, "://") {
		if m := scpRegex.FindStringSubmatch(rawURL); m != nil {
			return RepoURL{Host: m[1], Segments: splitPath(m[2])}
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return RepoURL{Segments: splitPath(rawURL)}
	}
	return RepoURL{Host: u.Hostname(), Segments: splitPath(u.Path)}
}

// ValidateURL checks that rawURL names a remote host and a repository path.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrInvalidURL
	}
	if strings.Contains(rawURL, "://") {
		if _, err := url.Parse(rawURL); err != nil {
			return errors.Join(ErrInvalidURL, err)
		}
	}
	r := Parse(rawURL)
	if r.Host == "" && !strings.HasPrefix(rawURL, "file://") {
		return ErrMissingHost
	}
	if len(r.Segments) == 0 {
		return ErrInvalidURL
	}
	return nil
}

// RedactURL removes any credentials from the URL so it can be logged.
func RedactURL(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		return rawURL
	}
	if u, err := url.Parse(rawURL); err == nil && u.User != nil {
		u.User = nil
		return u.String()
	}
	return rawURL
}

// splitPath drops empty, "." and ".." segments so derived paths cannot
// escape their base directory.
func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		switch s {
		case "", ".", "..":
			continue
		}
		segments = append(segments, s)
	}
	return segments
}
