package batch

import (
	"time"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/driver"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

// TaskState represents the current state of a batch task.
type TaskState string

const (
	// StatePending indicates the task is waiting for its first dispatch.
	StatePending TaskState = "pending"

	// StateDispatched indicates a worker slot has claimed the task and is
	// about to run the session driver.
	StateDispatched TaskState = "dispatched"

	// StateAwaitingResult indicates the driver accepted the submission and
	// is waiting on the external surface.
	StateAwaitingResult TaskState = "awaiting_result"

	// StateRetrying indicates a retryable failure occurred and the task is
	// waiting out its backoff delay before becoming eligible again.
	StateRetrying TaskState = "retrying"

	// StateSucceeded indicates a well-formed result payload was received.
	StateSucceeded TaskState = "succeeded"

	// StateFailed indicates a terminal failure or exhausted retries.
	StateFailed TaskState = "failed"

	// StateCancelled indicates the batch was cancelled before the task
	// could run to completion.
	StateCancelled TaskState = "cancelled"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsTerminal returns true if this state represents a final state.
func (s TaskState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Task is the per-coordinate unit of work. Its mutable fields are owned by
// the Batch and mutated only inside Batch transition methods; callers only
// ever see copies.
type Task struct {
	// Index ties the task back to its position in the input (zero-based,
	// counting non-blank lines).
	Index int `json:"index"`

	// Input is the trimmed raw input line.
	Input string `json:"input"`

	// Coord is the normalized (and possibly converted) coordinate.
	Coord coordinate.Coordinate `json:"coord"`

	// Accession is the RefSeq accession the submission targets.
	Accession string `json:"accession"`

	// State is the current lifecycle state.
	State TaskState `json:"state"`

	// Attempts is the number of driver executions started so far.
	Attempts int `json:"attempts"`

	// NotBefore gates re-dispatch of a retrying task until its backoff
	// delay has elapsed.
	NotBefore time.Time `json:"not_before,omitzero"`

	// LastKind is the failure kind from the most recent failed attempt.
	LastKind errors.FailureKind `json:"last_kind,omitempty"`

	// LastDetail is the error text from the most recent failed attempt.
	LastDetail string `json:"last_detail,omitempty"`

	// Payload holds the structured result once the task succeeds.
	Payload *driver.ResultPayload `json:"payload,omitempty"`

	// CompletedAt is when the task reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RejectedLine records an input line that failed validation and was never
// scheduled.
type RejectedLine struct {
	Index  int                   `json:"index"`
	Line   int                   `json:"line"`
	Input  string                `json:"input"`
	Kind   errors.ValidationKind `json:"kind"`
	Reason string                `json:"reason"`
}

// TerminalRecord is the per-input-line outcome handed to exporters. Exactly
// one of Payload, FailureKind, and ValidationKind carries the detail:
// Payload for successes, FailureKind for submitted-but-failed tasks, and
// ValidationKind for lines that could not even be submitted.
type TerminalRecord struct {
	Index          int                   `json:"index"`
	Input          string                `json:"input"`
	FinalState     TaskState             `json:"final_state"`
	Attempts       int                   `json:"attempts"`
	Payload        *driver.ResultPayload `json:"payload,omitempty"`
	FailureKind    errors.FailureKind    `json:"failure_kind,omitempty"`
	ValidationKind errors.ValidationKind `json:"validation_kind,omitempty"`
	Detail         string                `json:"detail,omitempty"`
}

// StateRejected is the terminal record state for lines excluded by
// validation. It never appears on a Task.
const StateRejected TaskState = "rejected"

// Counts is a snapshot of per-state task counts.
type Counts struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Dispatched     int `json:"dispatched"`
	AwaitingResult int `json:"awaiting_result"`
	Retrying       int `json:"retrying"`
	Succeeded      int `json:"succeeded"`
	Failed         int `json:"failed"`
	Cancelled      int `json:"cancelled"`
}

// Terminal returns the number of tasks in a terminal state.
func (c Counts) Terminal() int {
	return c.Succeeded + c.Failed + c.Cancelled
}
