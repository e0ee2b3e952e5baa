package batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/driver"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/event"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/logging"
	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/primer"
)

// How often an idle worker re-checks the ready queue.
const pollInterval = 25 * time.Millisecond

// Options configures one orchestrator run.
type Options struct {
	// Workers is the dispatch concurrency. The external service tolerates
	// limited parallelism, so keep this small.
	Workers int

	// PerTaskTimeout bounds each driver execution.
	PerTaskTimeout time.Duration

	// Retry bounds the retry loop for retryable failures.
	Retry RetryPolicy

	// Params are the form parameters submitted with every task.
	Params primer.Params
}

// Validate reports the first problem with the options, or nil.
func (o Options) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("orchestrator: workers must be at least 1, got %d", o.Workers)
	}
	if o.PerTaskTimeout <= 0 {
		return fmt.Errorf("orchestrator: per-task timeout must be positive, got %v", o.PerTaskTimeout)
	}
	return o.Retry.Validate()
}

// Orchestrator owns the worker pool for one batch. Workers claim eligible
// tasks, run them through per-slot session drivers, and apply state machine
// transitions; a fault in one task never stops the rest of the batch.
type Orchestrator struct {
	batch   *Batch
	opts    Options
	factory driver.Factory
	log     *logging.Logger

	paused    atomic.Bool
	cancelled atomic.Bool
}

// NewOrchestrator creates an orchestrator for the batch. A nil logger
// disables logging.
func NewOrchestrator(b *Batch, opts Options, factory driver.Factory, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Orchestrator{
		batch:   b,
		opts:    opts,
		factory: factory,
		log:     log.WithBatch(b.ID()),
	}
}

// Cancel stops all future dispatch. In-flight driver calls finish or time
// out naturally; tasks that had not started are recorded Cancelled once the
// workers drain.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
}

// Pause suspends dispatch without losing queued or backing-off tasks.
func (o *Orchestrator) Pause() {
	if !o.paused.Swap(true) {
		o.batch.Bus().Publish(event.NewBatchPausedEvent(o.batch.ID()))
	}
}

// Resume restarts dispatch after a pause. Attempt counts are untouched.
func (o *Orchestrator) Resume() {
	if o.paused.Swap(false) {
		o.batch.Bus().Publish(event.NewBatchResumedEvent(o.batch.ID()))
	}
}

// Paused reports whether dispatch is currently suspended.
func (o *Orchestrator) Paused() bool {
	return o.paused.Load()
}

// Run validates the options, then drives the batch to completion with the
// configured worker pool. It blocks until every task is terminal, the batch
// is cancelled, or ctx expires. The only fatal errors are invalid options
// detected before any dispatch and total failure to acquire session
// drivers.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.opts.Validate(); err != nil {
		return err
	}

	o.log.Info("batch starting", "tasks", o.batch.Len(), "workers", o.opts.Workers)

	var mu sync.Mutex
	var driverErrs []error

	var wg sync.WaitGroup
	for slot := range o.opts.Workers {
		wg.Go(func() {
			if err := o.worker(ctx, slot); err != nil {
				mu.Lock()
				driverErrs = append(driverErrs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	if ctx.Err() != nil && !o.cancelled.Load() {
		o.cancelled.Store(true)
	}
	if o.cancelled.Load() {
		indexes := o.batch.CancelUnstarted("batch cancelled")
		if len(indexes) > 0 {
			o.log.Info("cancelled unstarted tasks", "count", len(indexes))
		}
	}

	if len(driverErrs) == o.opts.Workers {
		o.batch.CancelUnstarted("no session drivers available")
		return fmt.Errorf("all %d workers failed to acquire a session driver: %w",
			o.opts.Workers, stderrors.Join(driverErrs...))
	}

	c := o.batch.Counts()
	o.log.Info("batch drained",
		"succeeded", c.Succeeded, "failed", c.Failed, "cancelled", c.Cancelled)
	return nil
}

// worker runs one slot: acquire a driver, then claim and execute tasks
// until the batch drains, is cancelled, or ctx expires. The returned error
// is non-nil only when the slot never obtained a driver.
func (o *Orchestrator) worker(ctx context.Context, slot int) error {
	log := o.log.WithWorker(slot)

	d, err := o.factory(ctx, slot)
	if err != nil {
		log.Error("session driver acquisition failed", "error", err)
		return fmt.Errorf("slot %d: %w", slot, err)
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			log.Warn("session driver close failed", "error", cerr)
		}
	}()

	for {
		if ctx.Err() != nil || o.cancelled.Load() {
			return nil
		}
		if o.paused.Load() {
			o.idle(ctx)
			continue
		}

		task := o.batch.ClaimNext(time.Now())
		if task == nil {
			if o.batch.Done() {
				return nil
			}
			// Everything eligible is in flight or backing off.
			o.idle(ctx)
			continue
		}

		o.execute(ctx, d, task, log.WithTask(task.Index))
	}
}

// idle sleeps one poll interval, returning early on ctx expiry.
func (o *Orchestrator) idle(ctx context.Context) {
	select {
	case <-time.After(pollInterval):
	case <-ctx.Done():
	}
}

// execute runs one claimed task through the driver and applies the
// resulting transition. A panic anywhere below is converted into a terminal
// protocol failure for this task; the worker survives.
func (o *Orchestrator) execute(ctx context.Context, d driver.SessionDriver, task *Task, log *logging.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("worker panic", "panic", r, "stack", string(debug.Stack()))
			if _, err := o.batch.RecordFailure(task.Index, errors.FailureProtocol,
				fmt.Sprintf("worker panic: %v", r), o.opts.Retry, false); err != nil {
				log.Error("panic transition failed", "error", err)
			}
		}
	}()

	if err := o.batch.MarkAwaiting(task.Index); err != nil {
		log.Error("dispatch transition failed", "error", err)
		return
	}

	log.Debug("executing", "attempt", task.Attempts, "accession", task.Accession, "coord", task.Coord.String())

	tctx, cancel := context.WithTimeout(ctx, o.opts.PerTaskTimeout)
	payload, err := d.Execute(tctx, driver.Submission{
		Index:     task.Index,
		Accession: task.Accession,
		Coord:     task.Coord,
		Params:    o.opts.Params,
	})
	cancel()

	if err != nil {
		kind := errors.KindOf(err)
		state, terr := o.batch.RecordFailure(task.Index, kind, err.Error(), o.opts.Retry, !o.cancelled.Load())
		if terr != nil {
			log.Error("failure transition failed", "error", terr)
			return
		}
		log.Warn("attempt failed", "attempt", task.Attempts, "kind", string(kind), "state", string(state), "error", err)
		return
	}

	if err := o.batch.MarkSucceeded(task.Index, payload); err != nil {
		log.Error("success transition failed", "error", err)
		return
	}
	log.Info("task succeeded", "attempt", task.Attempts, "result_url", payload.ResultURL)
}
