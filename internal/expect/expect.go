// Package expect runs a command under a pseudo-terminal and watches its output
// for patterns, the way an operator would watch a terminal for a prompt.
//
// Output is read continuously in the background. Expect consumes the buffer up
// to the end of the first match, so each prompt is only reported once.
package expect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
)

var (
	// ErrTimeout is returned when no pattern matched within the wait window.
	ErrTimeout = errors.New("expect: timed out waiting for output")

	// ErrEOF is returned when the child closed its terminal before a match.
	ErrEOF = errors.New("expect: end of stream")
)

const (
	readChunk = 4096
	// Wide enough that ssh prompts are never wrapped.
	terminalCols = 512
	terminalRows = 24
)

// Process is a child attached to the slave side of a pty.
type Process struct {
	cmd *exec.Cmd
	pty *os.File

	mu         sync.Mutex
	pending    []byte // read but not yet consumed by Expect
	transcript []byte
	eof        bool
	notify     chan struct{}

	waitOnce   sync.Once
	waited     bool
	exitStatus int
	waitErr    error

	closeOnce sync.Once
	closeErr  error
}

// Spawn starts command through /bin/sh under a new pty. dir may be empty to
// keep the current working directory. Cancelling ctx kills the child's
// process group.
func Spawn(ctx context.Context, dir, command string, env ...string) (*Process, error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = append(os.Environ(), env...)
	cmd.Cancel = func() error {
		// pty.Start puts the child in its own session, so its pid is the group id.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: terminalRows, Cols: terminalCols})
	if err != nil {
		return nil, fmt.Errorf("starting %q under a pty: %w", command, err)
	}

	p := &Process{
		cmd:    cmd,
		pty:    f,
		notify: make(chan struct{}, 1),
	}
	go p.readLoop()
	return p, nil
}

func (p *Process) readLoop() {
	buf := make([]byte, readChunk)
	for {
		n, err := p.pty.Read(buf)
		p.mu.Lock()
		if n > 0 {
			p.pending = append(p.pending, buf[:n]...)
			p.transcript = append(p.transcript, buf[:n]...)
		}
		if err != nil {
			// Linux reports EIO on the master once the slave side is gone.
			p.eof = true
		}
		p.mu.Unlock()
		p.signal()
		if err != nil {
			return
		}
	}
}

func (p *Process) signal() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Expect waits until one of patterns matches the unconsumed output and returns
// its index. Patterns are tried in order, so an earlier pattern wins when
// several match. timeout bounds the wait; zero waits until EOF or ctx is done.
func (p *Process) Expect(ctx context.Context, patterns []*regexp.Regexp, timeout time.Duration) (int, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		p.mu.Lock()
		for i, re := range patterns {
			if loc := re.FindIndex(p.pending); loc != nil {
				p.pending = p.pending[loc[1]:]
				p.mu.Unlock()
				return i, nil
			}
		}
		eof := p.eof
		p.mu.Unlock()

		if eof {
			return -1, ErrEOF
		}

		select {
		case <-p.notify:
		case <-expired:
			return -1, ErrTimeout
		case <-ctx.Done():
			return -1, ctx.Err()
		}
	}
}

// ExpectEOF waits until the child closes its terminal. timeout zero waits
// until ctx is done.
func (p *Process) ExpectEOF(ctx context.Context, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		p.mu.Lock()
		eof := p.eof
		p.pending = p.pending[:0]
		p.mu.Unlock()

		if eof {
			return nil
		}

		select {
		case <-p.notify:
		case <-expired:
			return ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SendLine writes s and a line terminator to the child's terminal.
func (p *Process) SendLine(s string) error {
	_, err := p.pty.Write([]byte(s + "\n"))
	return err
}

// Output returns everything the child has written so far.
func (p *Process) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.transcript)
}

// Wait reaps the child and returns its exit status. A child killed by a
// signal reports -1.
func (p *Process) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		p.mu.Lock()
		p.waited = true
		p.mu.Unlock()

		var exitErr *exec.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			p.exitStatus = exitErr.ExitCode()
		default:
			p.exitStatus = -1
			p.waitErr = err
		}
	})
	return p.exitStatus, p.waitErr
}

// Close kills the child if it is still running, reaps it and releases the pty.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		running := !p.waited
		p.mu.Unlock()
		if running {
			_ = syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
			_, _ = p.Wait()
		}
		p.closeErr = p.pty.Close()
	})
	return p.closeErr
}
