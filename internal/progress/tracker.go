package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Status values of an Operation.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Tracker interface defines methods for tracking operation progress
type Tracker interface {
	Start(operation string) *Operation
	Update(current, total int64)
	Complete()
	Error(err error)
}

// Operation represents a tracked operation
type Operation struct {
	Name        string
	StartTime   time.Time
	Status      string
	LastUpdate  time.Time
	LastCurrent int64
	LastTotal   int64
	Err         error
}

// Duration returns how long the operation has been running.
func (o *Operation) Duration() time.Duration {
	return o.LastUpdate.Sub(o.StartTime)
}

func newOperation(name string) *Operation {
	now := time.Now()
	return &Operation{
		Name:       name,
		StartTime:  now,
		LastUpdate: now,
		Status:     StatusInProgress,
	}
}

// DefaultTracker records operations without printing anything.
type DefaultTracker struct {
	CurrentOperation *Operation
	History          []*Operation
}

// Start begins tracking a new operation
func (t *DefaultTracker) Start(operation string) *Operation {
	t.CurrentOperation = newOperation(operation)
	t.History = append(t.History, t.CurrentOperation)
	return t.CurrentOperation
}

// Complete marks the operation as completed
func (t *DefaultTracker) Complete() {
	if t.CurrentOperation != nil {
		t.CurrentOperation.Status = StatusCompleted
		t.CurrentOperation.LastUpdate = time.Now()
	}
}

// Error marks the operation as failed with an error
func (t *DefaultTracker) Error(err error) {
	if t.CurrentOperation != nil {
		t.CurrentOperation.Status = StatusFailed
		t.CurrentOperation.Err = err
		t.CurrentOperation.LastUpdate = time.Now()
	}
}

// Update records step progress of the current operation
func (t *DefaultTracker) Update(current, total int64) {
	if t.CurrentOperation == nil {
		return
	}
	t.CurrentOperation.LastUpdate = time.Now()
	t.CurrentOperation.LastCurrent = current
	t.CurrentOperation.LastTotal = total
}

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	stepLabel = color.New(color.FgHiBlack).SprintFunc()
)

// ConsoleTracker implements Tracker for console output
type ConsoleTracker struct {
	out              io.Writer
	currentOperation *Operation
}

// NewConsoleTracker creates a console tracker writing to out, or stderr when
// out is nil.
func NewConsoleTracker(out io.Writer) *ConsoleTracker {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleTracker{out: out}
}

// Start begins tracking a new operation
func (t *ConsoleTracker) Start(operation string) *Operation {
	t.currentOperation = newOperation(operation)
	fmt.Fprintf(t.out, "==> %s\n", operation)
	return t.currentOperation
}

// Update prints the progress counters of the operation
func (t *ConsoleTracker) Update(current, total int64) {
	if t.currentOperation == nil {
		return
	}
	t.currentOperation.LastUpdate = time.Now()
	t.currentOperation.LastCurrent = current
	t.currentOperation.LastTotal = total
	fmt.Fprintf(t.out, "    %s\n", stepLabel(fmt.Sprintf("%d/%d", current, total)))
}

// Complete marks the current operation as completed
func (t *ConsoleTracker) Complete() {
	if t.currentOperation == nil {
		return
	}
	duration := time.Since(t.currentOperation.StartTime).Round(time.Millisecond)
	fmt.Fprintf(t.out, "    %s %s (took %v)\n", okLabel("done"), t.currentOperation.Name, duration)
	t.currentOperation = nil
}

// Error marks the current operation as failed
func (t *ConsoleTracker) Error(err error) {
	if t.currentOperation == nil {
		return
	}
	fmt.Fprintf(t.out, "    %s %s: %v\n", failLabel("failed"), t.currentOperation.Name, err)
	t.currentOperation = nil
}
