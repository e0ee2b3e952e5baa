package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

// Outcome is one scripted Execute result.
type Outcome struct {
	Payload *ResultPayload
	Err     error
}

// Succeed builds a successful outcome with a synthetic result URL.
func Succeed(resultURL string) Outcome {
	return Outcome{Payload: &ResultPayload{
		ResultURL:   resultURL,
		SubmittedAt: time.Now(),
	}}
}

// Fail builds a failed outcome with the given kind.
func Fail(kind errors.FailureKind) Outcome {
	return Outcome{Err: errors.NewDriverError(kind, "scripted",
		fmt.Errorf("scripted %s failure", kind))}
}

// ScriptedDriver replays predetermined outcomes per submission index, making
// batch runs fully deterministic. Each call consumes the next outcome in
// that index's script; once a script is exhausted its last outcome repeats.
// Indexes with no script succeed. Safe for concurrent use.
type ScriptedDriver struct {
	mu      sync.Mutex
	scripts map[int][]Outcome
	calls   map[int]int
	closed  bool

	// Delay, when set, is slept (context-aware) before every outcome to
	// exercise timing-sensitive paths.
	Delay time.Duration
}

// NewScriptedDriver creates an empty scripted driver.
func NewScriptedDriver() *ScriptedDriver {
	return &ScriptedDriver{
		scripts: make(map[int][]Outcome),
		calls:   make(map[int]int),
	}
}

// Script sets the outcome sequence for a submission index, replacing any
// previous script.
func (d *ScriptedDriver) Script(index int, outcomes ...Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts[index] = outcomes
}

// Calls returns how many times Execute has run for a submission index.
func (d *ScriptedDriver) Calls(index int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[index]
}

// Execute implements SessionDriver.
func (d *ScriptedDriver) Execute(ctx context.Context, sub Submission) (*ResultPayload, error) {
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return nil, errors.NewDriverError(errors.FailureTimeout, "scripted", ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDriverError(errors.FailureTimeout, "scripted", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	call := d.calls[sub.Index]
	d.calls[sub.Index]++

	script, ok := d.scripts[sub.Index]
	if !ok || len(script) == 0 {
		return &ResultPayload{
			ResultURL:   fmt.Sprintf("scripted://result/%d", sub.Index),
			SubmittedAt: time.Now(),
		}, nil
	}

	if call >= len(script) {
		call = len(script) - 1
	}
	outcome := script[call]
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	payload := *outcome.Payload
	return &payload, nil
}

// Close implements SessionDriver.
func (d *ScriptedDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *ScriptedDriver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// SharedFactory returns a Factory handing the same driver to every worker
// slot, which is what deterministic tests want.
func SharedFactory(d SessionDriver) Factory {
	return func(ctx context.Context, slot int) (SessionDriver, error) {
		return d, nil
	}
}
