package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	// ErrHostKeyRejected is matched by errors raised when ssh asks to trust an
	// unknown host while strict host key checking is enabled.
	ErrHostKeyRejected = stderrors.New("host key confirmation rejected")

	// ErrCommandFailed is matched by errors raised when a git step exits nonzero.
	ErrCommandFailed = stderrors.New("command failed")

	// ErrCommandDeadline indicates a child process was killed because it did not
	// reach end-of-stream within the configured command timeout.
	ErrCommandDeadline = stderrors.New("command deadline exceeded")
)

// HostKeyError is returned by the remote driver when it refuses to answer an
// ssh host key confirmation prompt.
type HostKeyError struct {
	Command string
	Prompt  string // Output seen up to and including the prompt
}

func (e *HostKeyError) Error() string {
	return fmt.Sprintf("ssh asked to confirm an unknown host key while running %q and strict host key checking is enabled; add the host to known_hosts first", e.Command)
}

func (e *HostKeyError) Is(target error) bool {
	return target == ErrHostKeyRejected
}

// CommandError describes a git step that finished with a nonzero exit status.
type CommandError struct {
	Step       string
	Command    string
	ExitStatus int
	Output     string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %q exited with status %d", e.Step, e.Command, e.ExitStatus)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

// NewCommandError creates a CommandError for the given step.
func NewCommandError(step, command string, exitStatus int, output string) *CommandError {
	return &CommandError{
		Step:       step,
		Command:    command,
		ExitStatus: exitStatus,
		Output:     output,
	}
}

// IsHostKeyRejected reports whether err was caused by a rejected host key prompt.
func IsHostKeyRejected(err error) bool {
	return stderrors.Is(err, ErrHostKeyRejected)
}

// IsCommandFailed reports whether err was caused by a nonzero git step.
func IsCommandFailed(err error) bool {
	return stderrors.Is(err, ErrCommandFailed)
}

// ExitCode maps an error onto the exit status used by the command line tools.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, ErrHostKeyRejected):
		return 3
	case stderrors.Is(err, ErrCommandDeadline):
		return 4
	case stderrors.Is(err, ErrCommandFailed):
		// A user command passes its own status through.
		var cmdErr *CommandError
		if stderrors.As(err, &cmdErr) && cmdErr.Step == OpCommand && cmdErr.ExitStatus > 0 && cmdErr.ExitStatus < 256 {
			return cmdErr.ExitStatus
		}
		return 10
	default:
		var opErr *OperationError
		if stderrors.As(err, &opErr) && opErr.Op == OpConfig {
			return 2
		}
		return 1
	}
}
