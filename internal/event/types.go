// Package event defines event types for decoupling the batch orchestrator
// from the components that observe it. The aggregator, progress reporting,
// and logging all consume events rather than reaching into the orchestrator.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.transitioned", "batch.finished")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Task Lifecycle Events
// -----------------------------------------------------------------------------

// TaskTransitionEvent is emitted on every task state change. States are
// plain strings so observers do not need to import the batch package.
type TaskTransitionEvent struct {
	baseEvent
	BatchID   string // Batch the task belongs to
	TaskIndex int    // Zero-based position of the input line within the batch
	From      string // Previous state
	To        string // New state
	Attempt   int    // Attempt number at the time of the transition
	Kind      string // Failure kind if the transition was caused by a failure
	Reason    string // Human-readable context (error message, cancel reason)
}

// NewTaskTransitionEvent creates a TaskTransitionEvent.
func NewTaskTransitionEvent(batchID string, taskIndex int, from, to string, attempt int, kind, reason string) TaskTransitionEvent {
	return TaskTransitionEvent{
		baseEvent: newBaseEvent("task.transitioned"),
		BatchID:   batchID,
		TaskIndex: taskIndex,
		From:      from,
		To:        to,
		Attempt:   attempt,
		Kind:      kind,
		Reason:    reason,
	}
}

// TaskRetryScheduledEvent is emitted when a failed attempt is scheduled
// for another try after a backoff delay.
type TaskRetryScheduledEvent struct {
	baseEvent
	BatchID     string        // Batch the task belongs to
	TaskIndex   int           // Zero-based position of the input line
	NextAttempt int           // Attempt number the task will run next
	Delay       time.Duration // Backoff delay before the task is eligible again
}

// NewTaskRetryScheduledEvent creates a TaskRetryScheduledEvent.
func NewTaskRetryScheduledEvent(batchID string, taskIndex, nextAttempt int, delay time.Duration) TaskRetryScheduledEvent {
	return TaskRetryScheduledEvent{
		baseEvent:   newBaseEvent("task.retry_scheduled"),
		BatchID:     batchID,
		TaskIndex:   taskIndex,
		NextAttempt: nextAttempt,
		Delay:       delay,
	}
}

// -----------------------------------------------------------------------------
// Input Events
// -----------------------------------------------------------------------------

// LineRejectedEvent is emitted when an input line fails validation and is
// excluded from the batch before any task is created for it.
type LineRejectedEvent struct {
	baseEvent
	BatchID string // Batch the line belonged to
	Line    int    // One-based line number in the input
	Input   string // Raw line content
	Kind    string // Validation kind (malformed input, unmapped region)
	Reason  string // Why the line was rejected
}

// NewLineRejectedEvent creates a LineRejectedEvent.
func NewLineRejectedEvent(batchID string, line int, input, kind, reason string) LineRejectedEvent {
	return LineRejectedEvent{
		baseEvent: newBaseEvent("input.rejected"),
		BatchID:   batchID,
		Line:      line,
		Input:     input,
		Kind:      kind,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Batch Lifecycle Events
// -----------------------------------------------------------------------------

// BatchProgressEvent is emitted whenever the aggregated counts change.
type BatchProgressEvent struct {
	baseEvent
	BatchID    string // Batch the progress belongs to
	Version    uint64 // Monotonic snapshot version
	Total      int    // Total tasks in the batch
	Pending    int    // Tasks not yet dispatched
	Dispatched int    // Tasks claimed by a worker slot
	Awaiting   int    // Tasks waiting on the external surface
	Retrying   int    // Tasks waiting out a backoff delay
	Succeeded  int    // Tasks with a result payload
	Failed     int    // Tasks that exhausted retries or failed terminally
	Cancelled  int    // Tasks cancelled before completion
}

// NewBatchProgressEvent creates a BatchProgressEvent.
func NewBatchProgressEvent(batchID string, version uint64, total, pending, dispatched, awaiting, retrying, succeeded, failed, cancelled int) BatchProgressEvent {
	return BatchProgressEvent{
		baseEvent:  newBaseEvent("batch.progress"),
		BatchID:    batchID,
		Version:    version,
		Total:      total,
		Pending:    pending,
		Dispatched: dispatched,
		Awaiting:   awaiting,
		Retrying:   retrying,
		Succeeded:  succeeded,
		Failed:     failed,
		Cancelled:  cancelled,
	}
}

// Terminal returns the number of tasks in a terminal state.
func (e BatchProgressEvent) Terminal() int {
	return e.Succeeded + e.Failed + e.Cancelled
}

// Active returns the number of tasks currently held by a worker slot.
func (e BatchProgressEvent) Active() int {
	return e.Dispatched + e.Awaiting
}

// BatchFinishedEvent is emitted once, when every task in the batch has
// reached a terminal state.
type BatchFinishedEvent struct {
	baseEvent
	BatchID   string        // Batch that finished
	Total     int           // Total tasks in the batch
	Succeeded int           // Tasks with a result payload
	Failed    int           // Tasks that failed terminally
	Cancelled int           // Tasks cancelled before completion
	Elapsed   time.Duration // Wall time from batch start to the last terminal transition
}

// NewBatchFinishedEvent creates a BatchFinishedEvent.
func NewBatchFinishedEvent(batchID string, total, succeeded, failed, cancelled int, elapsed time.Duration) BatchFinishedEvent {
	return BatchFinishedEvent{
		baseEvent: newBaseEvent("batch.finished"),
		BatchID:   batchID,
		Total:     total,
		Succeeded: succeeded,
		Failed:    failed,
		Cancelled: cancelled,
		Elapsed:   elapsed,
	}
}

// -----------------------------------------------------------------------------
// Pause Events
// -----------------------------------------------------------------------------

// BatchPausedEvent is emitted when dispatch of new attempts is suspended.
type BatchPausedEvent struct {
	baseEvent
	BatchID string // Batch that was paused
}

// NewBatchPausedEvent creates a BatchPausedEvent.
func NewBatchPausedEvent(batchID string) BatchPausedEvent {
	return BatchPausedEvent{
		baseEvent: newBaseEvent("batch.paused"),
		BatchID:   batchID,
	}
}

// BatchResumedEvent is emitted when dispatch resumes after a pause.
type BatchResumedEvent struct {
	baseEvent
	BatchID string // Batch that was resumed
}

// NewBatchResumedEvent creates a BatchResumedEvent.
func NewBatchResumedEvent(batchID string) BatchResumedEvent {
	return BatchResumedEvent{
		baseEvent: newBaseEvent("batch.resumed"),
		BatchID:   batchID,
	}
}
