package batch

import (
	"sync"
	"time"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/event"
)

// Transition summarizes one task state change for presentation layers.
type Transition struct {
	TaskIndex int       `json:"task_index"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Attempt   int       `json:"attempt"`
	Kind      string    `json:"kind,omitempty"`
	At        time.Time `json:"at"`
}

// Snapshot is a consistent point-in-time view of batch progress. Version is
// monotonic: consumers holding a newer snapshot can discard older ones.
type Snapshot struct {
	BatchID        string      `json:"batch_id"`
	Version        uint64      `json:"version"`
	Counts         Counts      `json:"counts"`
	LastTransition *Transition `json:"last_transition,omitempty"`
	Finished       bool        `json:"finished"`
}

// Aggregator consumes the batch's event feed and maintains progress
// snapshots plus the ordered terminal result set. Snapshots never regress:
// progress events older than the current version are dropped, so a
// previously-terminal count can never be observed reverting.
type Aggregator struct {
	mu    sync.Mutex
	batch *Batch
	snap  Snapshot

	subs []string
}

// NewAggregator creates an aggregator subscribed to the batch's bus. Call
// Close to detach it.
func NewAggregator(b *Batch) *Aggregator {
	a := &Aggregator{
		batch: b,
		snap: Snapshot{
			BatchID: b.ID(),
			Counts:  b.Counts(),
		},
	}

	bus := b.Bus()
	a.subs = append(a.subs,
		bus.Subscribe("task.transitioned", a.onTransition),
		bus.Subscribe("batch.progress", a.onProgress),
		bus.Subscribe("batch.finished", a.onFinished),
	)
	return a
}

func (a *Aggregator) onTransition(e event.Event) {
	te, ok := e.(event.TaskTransitionEvent)
	if !ok || te.BatchID != a.batch.ID() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.LastTransition = &Transition{
		TaskIndex: te.TaskIndex,
		From:      te.From,
		To:        te.To,
		Attempt:   te.Attempt,
		Kind:      te.Kind,
		At:        te.Timestamp(),
	}
}

func (a *Aggregator) onProgress(e event.Event) {
	pe, ok := e.(event.BatchProgressEvent)
	if !ok || pe.BatchID != a.batch.ID() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	// Workers publish concurrently, so events can arrive out of order.
	if pe.Version <= a.snap.Version {
		return
	}
	a.snap.Version = pe.Version
	a.snap.Counts = Counts{
		Total:          pe.Total,
		Pending:        pe.Pending,
		Dispatched:     pe.Dispatched,
		AwaitingResult: pe.Awaiting,
		Retrying:       pe.Retrying,
		Succeeded:      pe.Succeeded,
		Failed:         pe.Failed,
		Cancelled:      pe.Cancelled,
	}
}

func (a *Aggregator) onFinished(e event.Event) {
	fe, ok := e.(event.BatchFinishedEvent)
	if !ok || fe.BatchID != a.batch.ID() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.Finished = true
}

// Snapshot returns a consistent copy of the current progress view.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.snap
	if snap.LastTransition != nil {
		t := *snap.LastTransition
		snap.LastTransition = &t
	}
	return snap
}

// Records returns the terminal records accumulated so far, ordered by
// original input index.
func (a *Aggregator) Records() []TerminalRecord {
	return a.batch.TerminalRecords()
}

// Close detaches the aggregator from the event bus.
func (a *Aggregator) Close() {
	bus := a.batch.Bus()
	for _, id := range a.subs {
		bus.Unsubscribe(id)
	}
	a.subs = nil
}
