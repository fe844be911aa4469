// Package remote runs git commands that may talk to a remote over ssh and
// answers the host key confirmation prompt ssh raises for unknown hosts.
//
// Whether a prompt appears depends on the known_hosts state of the machine,
// so the driver watches the live output instead of pre-answering. A run with
// the host already trusted and a run with an unknown host both end in the
// same place.
package remote

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/NicabarNimble/go-buildrepo/internal/command"
	"github.com/NicabarNimble/go-buildrepo/internal/errors"
	"github.com/NicabarNimble/go-buildrepo/internal/expect"
)

const (
	defaultPromptTimeout  = 40 * time.Second
	defaultCommandTimeout = 10 * time.Minute

	hostKeyAnswer = "yes"
)

// Prompt patterns in priority order.
var promptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^User.*: `),
	regexp.MustCompile(`(?m)^Pass.*: `),
	regexp.MustCompile(`.*Are you sure you want to continue connecting.*`),
}

// Channel is the interactive side of a spawned child.
type Channel interface {
	Expect(ctx context.Context, patterns []*regexp.Regexp, timeout time.Duration) (int, error)
	ExpectEOF(ctx context.Context, timeout time.Duration) error
	SendLine(s string) error
	Output() string
	Wait() (int, error)
	Close() error
}

// Spawner starts command in dir and returns its interactive channel.
type Spawner func(ctx context.Context, dir, command string) (Channel, error)

// HostTrustPolicy decides whether unknown ssh hosts may be trusted. It is
// consulted on every command, so the answer may change between calls.
type HostTrustPolicy interface {
	StrictHostKeyChecking() bool
}

// Driver executes network-touching commands under a pty.
type Driver struct {
	Policy         HostTrustPolicy
	Spawn          Spawner
	PromptTimeout  time.Duration // Silence window while watching for prompts
	CommandTimeout time.Duration // Bound on the wait for end-of-stream; zero means none
}

// NewDriver returns a Driver spawning real processes.
func NewDriver(policy HostTrustPolicy) *Driver {
	return &Driver{
		Policy:         policy,
		Spawn:          SpawnPTY,
		PromptTimeout:  defaultPromptTimeout,
		CommandTimeout: defaultCommandTimeout,
	}
}

// SpawnPTY is the default Spawner.
func SpawnPTY(ctx context.Context, dir, cmd string) (Channel, error) {
	p, err := expect.Spawn(ctx, dir, cmd)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ExecuteRemote runs cmd in dir (empty for the current directory) and returns
// its exit status and output once the child closes its terminal. A nonzero
// exit status is not an error here. Errors are limited to a rejected host key
// prompt, a failure to spawn, and the command deadline.
func (d *Driver) ExecuteRemote(ctx context.Context, dir, cmd string) (command.CommandResult, error) {
	strict := d.Policy != nil && d.Policy.StrictHostKeyChecking()

	ch, err := d.Spawn(ctx, dir, cmd)
	if err != nil {
		return command.CommandResult{}, errors.New(errors.OpRemote, err)
	}
	defer ch.Close()

	w := &watcher{ch: ch, strict: strict, timeout: d.promptTimeout()}
	if err := w.run(ctx); err != nil {
		if errors.Is(err, errors.ErrHostKeyRejected) {
			err = &errors.HostKeyError{Command: cmd, Prompt: ch.Output()}
		}
		return command.CommandResult{Output: ch.Output()}, errors.New(errors.OpRemote, err)
	}

	if !w.eof {
		if err := ch.ExpectEOF(ctx, d.CommandTimeout); err != nil {
			if errors.Is(err, expect.ErrTimeout) {
				err = fmt.Errorf("%w: %q still running after %s", errors.ErrCommandDeadline, cmd, d.CommandTimeout)
			}
			return command.CommandResult{Output: ch.Output()}, errors.New(errors.OpRemote, err)
		}
	}

	status, err := ch.Wait()
	result := command.CommandResult{ExitStatus: status, Output: ch.Output()}
	if ctx.Err() != nil {
		return result, errors.New(errors.OpRemote, ctx.Err())
	}
	if err != nil {
		return result, errors.New(errors.OpRemote, err)
	}
	return result, nil
}

func (d *Driver) promptTimeout() time.Duration {
	if d.PromptTimeout > 0 {
		return d.PromptTimeout
	}
	return defaultPromptTimeout
}
