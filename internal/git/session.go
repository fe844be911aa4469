package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NicabarNimble/go-buildrepo/internal/command"
	"github.com/NicabarNimble/go-buildrepo/internal/errors"
	"github.com/NicabarNimble/go-buildrepo/internal/progress"
	"github.com/NicabarNimble/go-buildrepo/internal/repopath"
	"github.com/NicabarNimble/go-buildrepo/internal/urlutils"
)

const (
	// CloneDepth is the history depth of a shallow clone.
	CloneDepth = 50

	DefaultRemote = "origin"
	DefaultRef    = "master"

	// Fetched commits are pinned under this namespace so other hosts can fetch
	// the exact commit from this clone.
	localRefPrefix = "refs/buildrepo/"

	dirPerm = 0o755
)

// ErrInvalidOptions indicates that the provided session options are invalid
var ErrInvalidOptions = errors.New("session", fmt.Errorf("invalid session options"))

var commitHashRegex = regexp.MustCompile(`^[0-9a-f]{40}([0-9a-f]{24})?$`)

// RemoteSpec identifies what to clone and which ref to end up on.
type RemoteSpec struct {
	URL        string
	RemoteName string
	Ref        string
}

// RemoteExecutor runs commands that may need to answer ssh prompts.
type RemoteExecutor interface {
	ExecuteRemote(ctx context.Context, dir, cmd string) (command.CommandResult, error)
}

// SessionOptions contains configuration for a repository session
type SessionOptions struct {
	Spec           RemoteSpec
	LocalDirectory string // Defaults to the clone directory derived from Spec.URL
	Layout         repopath.Layout
	Shallow        bool
	Clean          bool // Run git clean -dfx after checkout
	Remote         RemoteExecutor
	Local          command.Executor
	Progress       progress.Tracker
}

// BuildState describes the tree SetupBuild left behind.
type BuildState struct {
	CommitHash string
	LocalRef   string
	Cloned     bool
}

// Session brings one local clone to a requested ref.
type Session struct {
	spec           RemoteSpec
	localDirectory string
	layout         repopath.Layout
	shallow        bool
	clean          bool
	remote         RemoteExecutor
	local          command.Executor
	progress       progress.Tracker
}

// NewSession validates opts and fills defaults.
func NewSession(opts SessionOptions) (*Session, error) {
	if strings.TrimSpace(opts.Spec.URL) == "" {
		return nil, errors.New("session", fmt.Errorf("%w: repository URL must be specified", ErrInvalidOptions))
	}
	if opts.Remote == nil || opts.Local == nil {
		return nil, errors.New("session", fmt.Errorf("%w: remote and local executors are required", ErrInvalidOptions))
	}

	spec := opts.Spec
	if spec.RemoteName == "" {
		spec.RemoteName = DefaultRemote
	}
	if spec.Ref == "" {
		spec.Ref = DefaultRef
	}

	dir := opts.LocalDirectory
	if dir == "" {
		if opts.Layout.RepoRoot == "" {
			return nil, errors.New("session", fmt.Errorf("%w: local directory or repo directory must be specified", ErrInvalidOptions))
		}
		dir = opts.Layout.RepoDirectory(spec.URL)
	}

	tracker := opts.Progress
	if tracker == nil {
		tracker = &progress.DefaultTracker{}
	}

	return &Session{
		spec:           spec,
		localDirectory: dir,
		layout:         opts.Layout,
		shallow:        opts.Shallow,
		clean:          opts.Clean,
		remote:         opts.Remote,
		local:          opts.Local,
		progress:       tracker,
	}, nil
}

// Spec returns the remote spec the session was created with.
func (s *Session) Spec() RemoteSpec { return s.spec }

// LocalDirectory returns the clone directory.
func (s *Session) LocalDirectory() string { return s.localDirectory }

// TimingFilePath returns where timing data for job is kept for this repository.
func (s *Session) TimingFilePath(job string) string {
	return s.layout.TimingFilePath(s.spec.URL, repopath.DefaultBranch, job)
}

// ExecuteCommandInProject runs cmd locally. When the clone directory exists
// the command runs there with PROJECT_DIR exported; otherwise it runs from
// the current working directory without PROJECT_DIR.
func (s *Session) ExecuteCommandInProject(ctx context.Context, cmd string) (command.CommandResult, error) {
	line, cwd := command.ProjectCommand(s.localDirectory, cmd)
	return s.local.Run(ctx, cwd, line)
}

// SetupBuild clones the repository if needed, fetches the ref and checks out
// the fetched commit. It stops at the first failing step.
func (s *Session) SetupBuild(ctx context.Context) (*BuildState, error) {
	if err := os.MkdirAll(filepath.Dir(s.localDirectory), dirPerm); err != nil {
		return nil, errors.New(errors.OpClone, fmt.Errorf("failed to create parent of %s: %w", s.localDirectory, err))
	}

	state := &BuildState{}

	exists, err := s.repoExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := s.remoteStep(ctx, errors.OpClone, "", s.cloneCommand()); err != nil {
			return nil, err
		}
		state.Cloned = true
	}

	fetch := fmt.Sprintf("git fetch --update-head-ok %s %s", s.spec.RemoteName, s.spec.Ref)
	if _, err := s.remoteStep(ctx, errors.OpFetch, s.localDirectory, fetch); err != nil {
		return nil, err
	}

	out, err := s.localStep(ctx, errors.OpCheckout, "git rev-parse FETCH_HEAD")
	if err != nil {
		return nil, err
	}
	hash := strings.TrimSpace(out)
	if !commitHashRegex.MatchString(hash) {
		return nil, errors.New(errors.OpCheckout, fmt.Errorf("unexpected FETCH_HEAD %q for ref %s", hash, s.spec.Ref))
	}
	state.CommitHash = hash
	state.LocalRef = localRefPrefix + hash

	steps := []string{
		fmt.Sprintf("git update-ref %s %s", state.LocalRef, hash),
		// "--" keeps git from reading the hash as a path.
		fmt.Sprintf("git checkout --force %s --", hash),
	}
	if s.clean {
		steps = append(steps, "git clean -dfx")
	}
	for _, step := range steps {
		if _, err := s.localStep(ctx, errors.OpCheckout, step); err != nil {
			return nil, err
		}
	}

	return state, nil
}

func (s *Session) cloneCommand() string {
	parts := []string{"git", "clone"}
	if s.shallow {
		parts = append(parts, "--depth", fmt.Sprint(CloneDepth))
	}
	parts = append(parts, s.spec.URL, s.localDirectory)
	return strings.Join(parts, " ")
}

// repoExists reports whether the local directory is the top of a git work tree.
func (s *Session) repoExists(ctx context.Context) (bool, error) {
	info, err := os.Stat(s.localDirectory)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.New(errors.OpClone, err)
	}
	if !info.IsDir() {
		return false, errors.New(errors.OpClone, fmt.Errorf("%s exists and is not a directory", s.localDirectory))
	}

	result, err := s.ExecuteCommandInProject(ctx, "git rev-parse --git-dir")
	if err != nil {
		return false, err
	}
	return result.Success() && strings.TrimSpace(result.Output) == ".git", nil
}

func (s *Session) remoteStep(ctx context.Context, op, dir, cmd string) (string, error) {
	s.progress.Start(fmt.Sprintf("%s %s", op, urlutils.RedactURL(s.spec.URL)))
	result, err := s.remote.ExecuteRemote(ctx, dir, cmd)
	if err == nil {
		s.reportTransfer(result.Output)
	}
	return s.finish(op, cmd, result, err)
}

func (s *Session) localStep(ctx context.Context, op, cmd string) (string, error) {
	s.progress.Start(cmd)
	result, err := s.ExecuteCommandInProject(ctx, cmd)
	return s.finish(op, cmd, result, err)
}

// redact strips credentials embedded in the remote URL from cmd.
func (s *Session) redact(cmd string) string {
	return strings.ReplaceAll(cmd, s.spec.URL, urlutils.RedactURL(s.spec.URL))
}

func (s *Session) finish(op, cmd string, result command.CommandResult, err error) (string, error) {
	if err == nil && !result.Success() {
		err = errors.New(op, errors.NewCommandError(op, s.redact(cmd), result.ExitStatus, result.Output))
	}
	if err != nil {
		s.progress.Error(err)
		return result.Output, err
	}
	s.progress.Complete()
	return result.Output, nil
}
