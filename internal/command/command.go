// Package command runs shell command lines that never need a terminal, such as
// local git operations against an existing clone.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/NicabarNimble/go-buildrepo/internal/errors"
)

// waitDelay bounds how long Run waits for output pipes after cancellation.
const waitDelay = 2 * time.Second

// ProjectDirEnv is exported to commands run inside a project directory.
const ProjectDirEnv = "PROJECT_DIR"

// CommandResult is the outcome of one command line.
type CommandResult struct {
	ExitStatus int
	Output     string
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitStatus == 0
}

// Executor runs a shell command line in dir. An empty dir leaves the working
// directory of the current process in place. A nonzero exit status is reported
// in the result, not as an error.
type Executor interface {
	Run(ctx context.Context, dir, command string) (CommandResult, error)
}

// ShellExecutor runs command lines through /bin/sh.
type ShellExecutor struct {
	Shell string
	Env   []string // Appended to the process environment
}

// NewShellExecutor returns an executor that disables git's credential prompts,
// since nothing can answer them.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{
		Shell: "/bin/sh",
		Env:   []string{"GIT_TERMINAL_PROMPT=0"},
	}
}

func (e *ShellExecutor) Run(ctx context.Context, dir, command string) (CommandResult, error) {
	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(inheritedEnv(), e.Env...)
	// Own process group, so a build's child processes are not tied to our terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	result := CommandResult{Output: out.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitStatus = exitErr.ExitCode()
		return result, nil
	}
	return result, errors.New(errors.OpCommand, fmt.Errorf("running %q: %w", command, err))
}

// inheritedEnv is the parent environment minus PROJECT_DIR. A command only
// sees PROJECT_DIR when ProjectCommand exports it for an existing directory.
func inheritedEnv() []string {
	env := os.Environ()
	kept := env[:0:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, ProjectDirEnv+"=") {
			continue
		}
		kept = append(kept, kv)
	}
	return kept
}

// ProjectCommand prepares command to run inside projectDir. When the directory
// exists the command line exports PROJECT_DIR and the returned cwd is the
// directory; otherwise the command is returned unchanged with an empty cwd, so
// a first clone runs from the ambient working directory. The command itself is
// not escaped.
func ProjectCommand(projectDir, command string) (line, cwd string) {
	if projectDir == "" {
		return command, ""
	}
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return command, ""
	}
	return fmt.Sprintf(`export %s="%s"; %s`, ProjectDirEnv, projectDir, command), projectDir
}
