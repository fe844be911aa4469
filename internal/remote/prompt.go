package remote

import (
	"context"
	"time"

	"github.com/NicabarNimble/go-buildrepo/internal/errors"
	"github.com/NicabarNimble/go-buildrepo/internal/expect"
)

// PromptOutcome is the result of one watch over a child's output.
type PromptOutcome int

const (
	NoPrompt PromptOutcome = iota
	UsernamePrompt
	PasswordPrompt
	HostKeyPrompt
	Timeout
	EndOfStream
)

func (o PromptOutcome) String() string {
	switch o {
	case NoPrompt:
		return "no-prompt"
	case UsernamePrompt:
		return "username-prompt"
	case PasswordPrompt:
		return "password-prompt"
	case HostKeyPrompt:
		return "host-key-prompt"
	case Timeout:
		return "timeout"
	case EndOfStream:
		return "eof"
	default:
		return "unknown"
	}
}

// outcomeFor maps an index into promptPatterns onto an outcome.
var outcomeFor = [...]PromptOutcome{UsernamePrompt, PasswordPrompt, HostKeyPrompt}

// action is what the watch loop does after an outcome.
type action int

const (
	keepWatching action = iota
	answerYes
	reject
	awaitEOF
	finished
)

// step is the transition table of the watch loop.
//
// Credential prompts are never answered: nothing here holds credentials. The
// loop keeps watching, the prompt goes quiet, and the silence timeout hands
// the child over to the end-of-stream wait, which is bounded by the command
// deadline.
func step(outcome PromptOutcome, strict bool) action {
	switch outcome {
	case HostKeyPrompt:
		if strict {
			return reject
		}
		return answerYes
	case UsernamePrompt, PasswordPrompt:
		return keepWatching
	case Timeout:
		return awaitEOF
	case EndOfStream:
		return finished
	default:
		return keepWatching
	}
}

type watcher struct {
	ch      Channel
	strict  bool
	timeout time.Duration

	eof     bool
	answers int
}

// run watches for prompts until the child goes quiet or closes its terminal.
func (w *watcher) run(ctx context.Context) error {
	for {
		outcome, err := w.watch(ctx)
		if err != nil {
			return err
		}

		switch step(outcome, w.strict) {
		case answerYes:
			if err := w.ch.SendLine(hostKeyAnswer); err != nil {
				return err
			}
			w.answers++
		case reject:
			return errors.ErrHostKeyRejected
		case awaitEOF:
			return nil
		case finished:
			w.eof = true
			return nil
		}
	}
}

func (w *watcher) watch(ctx context.Context) (PromptOutcome, error) {
	idx, err := w.ch.Expect(ctx, promptPatterns, w.timeout)
	switch {
	case err == nil && idx >= 0 && idx < len(outcomeFor):
		return outcomeFor[idx], nil
	case err == nil:
		return NoPrompt, nil
	case errors.Is(err, expect.ErrTimeout):
		return Timeout, nil
	case errors.Is(err, expect.ErrEOF):
		return EndOfStream, nil
	default:
		return NoPrompt, err
	}
}
