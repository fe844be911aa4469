// Package repopath maps remote repository URLs onto stable local directories.
//
// A clone of ssh://scm.example.com/box/www lives at
// {repo_directory}/scm.example.com/box/www and its per-job timing data at
// {timings_directory}/{branch}/scm.example.com/box/www/{job}.timing.json, so
// repeated builds of the same project reuse the same clone and timing history.
//
// Nothing in this package touches the filesystem; creating the directories is
// up to the caller.
package repopath

import (
	"path/filepath"
	"strings"

	"github.com/NicabarNimble/go-buildrepo/internal/urlutils"
)

const (
	// DefaultBranch labels timing data when no branch is given.
	DefaultBranch = "master"

	timingFileSuffix = ".timing.json"
)

// Layout holds the base directories paths are derived under.
type Layout struct {
	RepoRoot    string
	TimingsRoot string
}

// RepoDirectory returns the clone directory for url.
func (l Layout) RepoDirectory(url string) string {
	return join(l.RepoRoot, url)
}

// TimingFileDirectory returns the directory holding timing data for url.
func (l Layout) TimingFileDirectory(url string) string {
	return join(l.TimingsRoot, url)
}

// TimingFilePath returns the timing file for job, qualified by branch
// (DefaultBranch when empty). A branch may nest, as in release/1.0, but its
// empty and dot segments are dropped; separators in job are replaced, so the
// file always lands in the URL's timing directory.
func (l Layout) TimingFilePath(url, branch, job string) string {
	branchParts := cleanSegments(branch)
	if len(branchParts) == 0 {
		branchParts = []string{DefaultBranch}
	}
	dir := join(filepath.Join(append([]string{l.TimingsRoot}, branchParts...)...), url)
	return filepath.Join(dir, jobFileName(job))
}

func cleanSegments(p string) []string {
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

func jobFileName(job string) string {
	return strings.ReplaceAll(job, "/", "_") + timingFileSuffix
}

func join(base, url string) string {
	return filepath.Join(append([]string{base}, urlutils.Parse(url).Parts()...)...)
}
