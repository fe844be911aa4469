package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTracker_Start(t *testing.T) {
	tracker := &DefaultTracker{}
	op := tracker.Start("clone")

	if op == nil {
		t.Fatal("Expected non-nil operation")
	}
	if op.Name != "clone" {
		t.Errorf("Expected operation name 'clone', got '%s'", op.Name)
	}
	if op.StartTime.IsZero() {
		t.Error("Expected non-zero start time")
	}
	if op.Status != StatusInProgress {
		t.Errorf("Expected status '%s', got '%s'", StatusInProgress, op.Status)
	}
}

func TestDefaultTracker_Update(t *testing.T) {
	tracker := &DefaultTracker{}
	tracker.Start("setup")

	tracker.Update(2, 5)
	if tracker.CurrentOperation.LastCurrent != 2 {
		t.Errorf("Expected LastCurrent 2, got %d", tracker.CurrentOperation.LastCurrent)
	}
	if tracker.CurrentOperation.LastTotal != 5 {
		t.Errorf("Expected LastTotal 5, got %d", tracker.CurrentOperation.LastTotal)
	}
}

func TestDefaultTracker_CompleteAndError(t *testing.T) {
	tracker := &DefaultTracker{}
	tracker.Start("fetch")
	tracker.Complete()

	testErr := errors.New("exit status 128")
	tracker.Start("checkout")
	tracker.Error(testErr)

	assert.Len(t, tracker.History, 2)
	assert.Equal(t, StatusCompleted, tracker.History[0].Status)
	assert.Equal(t, StatusFailed, tracker.History[1].Status)
	assert.Equal(t, testErr, tracker.History[1].Err)
	assert.GreaterOrEqual(t, tracker.History[0].Duration().Nanoseconds(), int64(0))
}

func TestDefaultTracker_EdgeCases(t *testing.T) {
	tracker := &DefaultTracker{}

	// No operation started yet
	tracker.Update(1, 2)
	tracker.Complete()
	tracker.Error(errors.New("ignored"))
	assert.Nil(t, tracker.CurrentOperation)
}

func TestConsoleTracker(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	tracker := NewConsoleTracker(&out)

	tracker.Start("Clone repository")
	tracker.Update(1, 3)
	tracker.Complete()

	tracker.Start("Fetch origin")
	tracker.Error(errors.New("exit status 128"))

	// Ignored without a current operation
	tracker.Update(1, 1)
	tracker.Complete()

	got := out.String()
	assert.Contains(t, got, "==> Clone repository\n")
	assert.Contains(t, got, "    1/3\n")
	assert.Contains(t, got, "done Clone repository (took ")
	assert.Contains(t, got, "==> Fetch origin\n")
	assert.Contains(t, got, "failed Fetch origin: exit status 128\n")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("/")))
}

func TestNewConsoleTrackerDefaultsToStderr(t *testing.T) {
	assert.NotNil(t, NewConsoleTracker(nil).out)
}
