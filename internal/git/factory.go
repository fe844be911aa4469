package git

import (
	"github.com/NicabarNimble/go-buildrepo/internal/command"
	"github.com/NicabarNimble/go-buildrepo/internal/config"
	"github.com/NicabarNimble/go-buildrepo/internal/progress"
	"github.com/NicabarNimble/go-buildrepo/internal/remote"
	"github.com/NicabarNimble/go-buildrepo/internal/repopath"
)

// NewLayout returns the path layout configured in cfg.
func NewLayout(cfg *config.Config) repopath.Layout {
	return repopath.Layout{
		RepoRoot:    cfg.RepoDirectory,
		TimingsRoot: cfg.TimingsDirectory,
	}
}

// NewDriver returns a remote driver that consults cfg for the host trust
// policy on every command.
func NewDriver(cfg *config.Config) *remote.Driver {
	d := remote.NewDriver(cfg)
	d.PromptTimeout = cfg.PromptTimeout()
	d.CommandTimeout = cfg.CommandTimeout()
	return d
}

// Option adjusts the options New builds from the configuration.
type Option func(*SessionOptions)

// WithClean removes untracked files after checkout.
func WithClean(clean bool) Option {
	return func(o *SessionOptions) { o.Clean = clean }
}

// WithLocalExecutor replaces the shell executor used for local commands.
func WithLocalExecutor(exec command.Executor) Option {
	return func(o *SessionOptions) { o.Local = exec }
}

// New creates a session for spec wired to real processes, with the clone
// directory derived from the URL.
func New(cfg *config.Config, spec RemoteSpec, tracker progress.Tracker, opts ...Option) (*Session, error) {
	so := SessionOptions{
		Spec:     spec,
		Layout:   NewLayout(cfg),
		Shallow:  cfg.GitShallowClone,
		Remote:   NewDriver(cfg),
		Local:    command.NewShellExecutor(),
		Progress: tracker,
	}
	for _, opt := range opts {
		opt(&so)
	}
	return NewSession(so)
}
