package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostKeyError(t *testing.T) {
	err := New(OpRemote, &HostKeyError{Command: "git fetch origin"})

	assert.True(t, IsHostKeyRejected(err))
	assert.True(t, errors.Is(err, ErrHostKeyRejected))
	assert.False(t, IsCommandFailed(err))
	assert.Contains(t, err.Error(), "git fetch origin")
	assert.Contains(t, err.Error(), "strict host key checking")
}

func TestCommandError(t *testing.T) {
	tests := []struct {
		name     string
		err      *CommandError
		expected string
	}{
		{
			name:     "with output",
			err:      NewCommandError(OpClone, "git clone url dir", 128, "fatal: repository not found\n"),
			expected: `clone: "git clone url dir" exited with status 128: fatal: repository not found`,
		},
		{
			name:     "without output",
			err:      NewCommandError(OpCheckout, "git checkout abc --", 1, "  "),
			expected: `checkout: "git checkout abc --" exited with status 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.True(t, IsCommandFailed(tt.err))
			assert.False(t, IsHostKeyRejected(tt.err))
		})
	}
}

func TestCommandErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("setup: %w", New(OpFetch, NewCommandError(OpFetch, "git fetch", 1, "boom")))

	var cmdErr *CommandError
	if assert.True(t, As(wrapped, &cmdErr)) {
		assert.Equal(t, 1, cmdErr.ExitStatus)
		assert.Equal(t, "boom", cmdErr.Output)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"host key", New(OpRemote, &HostKeyError{}), 3},
		{"deadline", New(OpRemote, ErrCommandDeadline), 4},
		{"command failed", NewCommandError(OpClone, "git clone", 128, ""), 10},
		{"wrapped fetch failure", New(OpFetch, NewCommandError(OpFetch, "git fetch", 1, "")), 10},
		{"user command status", NewCommandError(OpCommand, "make test", 2, ""), 2},
		{"user command status out of range", NewCommandError(OpCommand, "kill -9 $$", -1, ""), 10},
		{"config", New(OpConfig, errors.New("bad value")), 2},
		{"other", errors.New("unexpected"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}
