// Package batch implements the coordinate-to-result engine core: the task
// state machine, retry policy, worker-pool orchestrator, and progress
// aggregator. One Batch serves one submitted set of input lines.
package batch

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/coordinate"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/driver"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/event"
)

// Sentinel errors returned by batch transitions.
var (
	ErrTaskNotFound      = stderrors.New("task not found")
	ErrInvalidTransition = stderrors.New("invalid state transition")
)

// Batch is one user-submitted set of coordinates processed as a unit of
// progress and cancellation. All methods are safe for concurrent use via an
// internal mutex; transitions are the only place task state is mutated.
type Batch struct {
	mu       sync.Mutex
	id       string
	tasks    []*Task // index-aligned with input order
	rejected []RejectedLine
	version  uint64
	created  time.Time
	finished bool

	bus *event.Bus
}

// New builds a Batch from normalization results. Valid lines become Pending
// tasks; invalid lines and lines whose chromosome has no accession in the
// assembly become rejected records, published as input.rejected events.
// Rejected lines never schedule a task and do not abort the batch.
func New(results []coordinate.LineResult, bus *event.Bus) *Batch {
	if bus == nil {
		bus = event.NewBus()
	}
	b := &Batch{
		id:      uuid.NewString(),
		created: time.Now(),
		bus:     bus,
	}

	for _, r := range results {
		if r.Err != nil {
			b.reject(r, validationKind(r.Err), r.Err.Error())
			continue
		}
		acc, ok := coordinate.Accession(r.Coord.Chrom, r.Coord.Assembly)
		if !ok {
			b.reject(r, errors.MalformedInput,
				fmt.Sprintf("no %s accession for chromosome %q", r.Coord.Assembly, r.Coord.Chrom))
			continue
		}
		b.tasks = append(b.tasks, &Task{
			Index:     r.Index,
			Input:     r.Input,
			Coord:     r.Coord,
			Accession: acc,
			State:     StatePending,
		})
	}
	return b
}

func validationKind(err error) errors.ValidationKind {
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return verr.Kind
	}
	return errors.MalformedInput
}

func (b *Batch) reject(r coordinate.LineResult, kind errors.ValidationKind, reason string) {
	b.rejected = append(b.rejected, RejectedLine{
		Index:  r.Index,
		Line:   r.Line,
		Input:  r.Input,
		Kind:   kind,
		Reason: reason,
	})
	b.bus.Publish(event.NewLineRejectedEvent(b.id, r.Line, r.Input, string(kind), reason))
}

// ID returns the batch's unique identifier.
func (b *Batch) ID() string { return b.id }

// Bus returns the event bus transitions publish to.
func (b *Batch) Bus() *event.Bus { return b.bus }

// Version returns the monotonic transition counter. Consumers use it to
// discard stale progress snapshots.
func (b *Batch) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Rejected returns the lines excluded by validation.
func (b *Batch) Rejected() []RejectedLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RejectedLine, len(b.rejected))
	copy(out, b.rejected)
	return out
}

// Task returns a copy of the task at the given input index.
func (b *Batch) Task(index int) (Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.find(index)
	if t == nil {
		return Task{}, fmt.Errorf("%w: index %d", ErrTaskNotFound, index)
	}
	return *t, nil
}

// Len returns the number of scheduled tasks.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}

// Counts returns a snapshot of per-state task counts.
func (b *Batch) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts()
}

// Done reports whether every task has reached a terminal state. A batch
// with no scheduled tasks is done immediately.
func (b *Batch) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done()
}

// ClaimNext claims the lowest-index task eligible for dispatch: Pending, or
// Retrying with an elapsed backoff. The claimed task moves to Dispatched
// with its attempt count incremented and a copy is returned. A nil return
// means nothing is currently eligible.
func (b *Batch) ClaimNext(now time.Time) *Task {
	b.mu.Lock()

	for _, t := range b.tasks {
		eligible := t.State == StatePending ||
			(t.State == StateRetrying && !now.Before(t.NotBefore))
		if !eligible {
			continue
		}
		from := t.State
		t.State = StateDispatched
		t.Attempts++
		cp := *t
		events := b.transitioned(t, from, "", "")
		b.mu.Unlock()
		b.publish(events)
		return &cp
	}

	b.mu.Unlock()
	return nil
}

// MarkAwaiting records that the driver accepted the submission and the task
// is waiting on the external surface.
func (b *Batch) MarkAwaiting(index int) error {
	return b.transition(index, StateDispatched, StateAwaitingResult, "", "")
}

// MarkSucceeded records a well-formed result payload. Terminal.
func (b *Batch) MarkSucceeded(index int, payload *driver.ResultPayload) error {
	b.mu.Lock()

	t := b.find(index)
	if t == nil {
		b.mu.Unlock()
		return fmt.Errorf("%w: index %d", ErrTaskNotFound, index)
	}
	if t.State != StateAwaitingResult {
		b.mu.Unlock()
		return fmt.Errorf("%w: cannot succeed task %d in state %s", ErrInvalidTransition, index, t.State)
	}

	from := t.State
	t.State = StateSucceeded
	t.Payload = payload
	now := time.Now()
	t.CompletedAt = &now
	events := b.transitioned(t, from, "", "")

	b.mu.Unlock()
	b.publish(events)
	return nil
}

// RecordFailure applies a failed attempt to the task. Retryable kinds
// schedule another attempt under the policy while attempts remain and
// allowRetry is true; an exhausted or terminal-kind failure is Failed, and
// a retryable failure denied retry (batch cancelled) is Cancelled. The
// resulting state is returned.
func (b *Batch) RecordFailure(index int, kind errors.FailureKind, detail string, policy RetryPolicy, allowRetry bool) (TaskState, error) {
	b.mu.Lock()

	t := b.find(index)
	if t == nil {
		b.mu.Unlock()
		return "", fmt.Errorf("%w: index %d", ErrTaskNotFound, index)
	}
	if t.State != StateAwaitingResult && t.State != StateDispatched {
		b.mu.Unlock()
		return "", fmt.Errorf("%w: cannot fail task %d in state %s", ErrInvalidTransition, index, t.State)
	}

	from := t.State
	t.LastKind = kind
	t.LastDetail = detail

	var events []event.Event
	switch {
	case kind == errors.FailureCancelled:
		t.State = StateCancelled
		now := time.Now()
		t.CompletedAt = &now
		events = b.transitioned(t, from, string(kind), detail)

	case kind.Retryable() && allowRetry && t.Attempts < policy.MaxAttempts:
		delay := policy.Delay(t.Attempts)
		t.State = StateRetrying
		t.NotBefore = time.Now().Add(delay)
		events = b.transitioned(t, from, string(kind), detail)
		events = append(events, event.NewTaskRetryScheduledEvent(b.id, t.Index, t.Attempts+1, delay))

	case kind.Retryable() && !allowRetry:
		// Cancelled mid-flight: the attempt could not complete and no
		// further dispatch is permitted.
		t.State = StateCancelled
		now := time.Now()
		t.CompletedAt = &now
		events = b.transitioned(t, from, string(kind), detail)

	default:
		t.State = StateFailed
		now := time.Now()
		t.CompletedAt = &now
		events = b.transitioned(t, from, string(kind), detail)
	}

	state := t.State
	b.mu.Unlock()
	b.publish(events)
	return state, nil
}

// CancelUnstarted marks every Pending and Retrying task Cancelled. Returns
// the indexes of the cancelled tasks.
func (b *Batch) CancelUnstarted(reason string) []int {
	b.mu.Lock()

	var cancelled []int
	var events []event.Event
	for _, t := range b.tasks {
		if t.State != StatePending && t.State != StateRetrying {
			continue
		}
		from := t.State
		t.State = StateCancelled
		t.LastKind = errors.FailureCancelled
		t.LastDetail = reason
		now := time.Now()
		t.CompletedAt = &now
		cancelled = append(cancelled, t.Index)
		events = append(events, b.transitioned(t, from, string(errors.FailureCancelled), reason)...)
	}

	b.mu.Unlock()
	b.publish(events)
	return cancelled
}

// TerminalRecords returns one record per terminal input line (rejected
// lines included), ordered by original input index.
func (b *Batch) TerminalRecords() []TerminalRecord {
	b.mu.Lock()

	records := make([]TerminalRecord, 0, len(b.tasks)+len(b.rejected))
	for _, r := range b.rejected {
		records = append(records, TerminalRecord{
			Index:          r.Index,
			Input:          r.Input,
			FinalState:     StateRejected,
			ValidationKind: r.Kind,
			Detail:         r.Reason,
		})
	}
	for _, t := range b.tasks {
		if !t.State.IsTerminal() {
			continue
		}
		rec := TerminalRecord{
			Index:      t.Index,
			Input:      t.Input,
			FinalState: t.State,
			Attempts:   t.Attempts,
		}
		if t.State == StateSucceeded {
			rec.Payload = t.Payload
		} else {
			rec.FailureKind = t.LastKind
			rec.Detail = t.LastDetail
		}
		records = append(records, rec)
	}
	b.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].Index < records[j].Index })
	return records
}

// transition applies a simple from→to state change under the mutex.
func (b *Batch) transition(index int, from, to TaskState, kind, reason string) error {
	b.mu.Lock()

	t := b.find(index)
	if t == nil {
		b.mu.Unlock()
		return fmt.Errorf("%w: index %d", ErrTaskNotFound, index)
	}
	if t.State != from {
		b.mu.Unlock()
		return fmt.Errorf("%w: cannot move task %d from %s to %s", ErrInvalidTransition, index, t.State, to)
	}
	t.State = to
	events := b.transitioned(t, from, kind, reason)

	b.mu.Unlock()
	b.publish(events)
	return nil
}

// find returns the task with the given input index. Caller holds the mutex.
func (b *Batch) find(index int) *Task {
	for _, t := range b.tasks {
		if t.Index == index {
			return t
		}
	}
	return nil
}

// transitioned bumps the version and builds the events for a state change.
// Caller holds the mutex; events are published after it is released so
// handlers can safely call back into the Batch.
func (b *Batch) transitioned(t *Task, from TaskState, kind, reason string) []event.Event {
	b.version++

	events := []event.Event{
		event.NewTaskTransitionEvent(b.id, t.Index, string(from), string(t.State), t.Attempts, kind, reason),
	}

	c := b.counts()
	events = append(events, event.NewBatchProgressEvent(b.id, b.version, c.Total,
		c.Pending, c.Dispatched, c.AwaitingResult, c.Retrying,
		c.Succeeded, c.Failed, c.Cancelled))

	if !b.finished && b.done() && len(b.tasks) > 0 {
		b.finished = true
		events = append(events, event.NewBatchFinishedEvent(b.id, c.Total,
			c.Succeeded, c.Failed, c.Cancelled, time.Since(b.created)))
	}
	return events
}

// counts tallies per-state totals. Caller holds the mutex.
func (b *Batch) counts() Counts {
	c := Counts{Total: len(b.tasks)}
	for _, t := range b.tasks {
		switch t.State {
		case StatePending:
			c.Pending++
		case StateDispatched:
			c.Dispatched++
		case StateAwaitingResult:
			c.AwaitingResult++
		case StateRetrying:
			c.Retrying++
		case StateSucceeded:
			c.Succeeded++
		case StateFailed:
			c.Failed++
		case StateCancelled:
			c.Cancelled++
		}
	}
	return c
}

// done reports terminal completion. Caller holds the mutex.
func (b *Batch) done() bool {
	for _, t := range b.tasks {
		if !t.State.IsTerminal() {
			return false
		}
	}
	return true
}

func (b *Batch) publish(events []event.Event) {
	for _, e := range events {
		b.bus.Publish(e)
	}
}
