// Package event provides a pub-sub event bus for decoupled inter-component
// communication in the batch engine.
//
// This package enables loose coupling between the orchestrator, the result
// aggregator, and presentation layers by allowing them to communicate through
// events rather than direct method calls. Components can publish events
// without knowing who will receive them, and subscribe to events without
// knowing who will produce them.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// The package defines several categories of events:
//
// Task Lifecycle:
//   - [TaskTransitionEvent]: Emitted on every task state change
//   - [TaskRetryScheduledEvent]: Emitted when an attempt is scheduled for retry
//
// Input:
//   - [LineRejectedEvent]: Emitted when an input line fails validation
//
// Batch Lifecycle:
//   - [BatchProgressEvent]: Emitted whenever the aggregated counts change
//   - [BatchFinishedEvent]: Emitted once all tasks reach a terminal state
//   - [BatchPausedEvent], [BatchResumedEvent]: Emitted on pause and resume
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously and protected
// against panics - a panicking handler will not prevent other handlers from
// being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	// Subscribe to specific event types
//	bus.Subscribe("task.transitioned", func(e event.Event) {
//	    tr := e.(event.TaskTransitionEvent)
//	    log.Printf("task %d: %s -> %s", tr.TaskIndex, tr.From, tr.To)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
//	// Publish events
//	bus.Publish(event.NewBatchPausedEvent("batch-1"))
//
//	// Unsubscribe when done
//	id := bus.Subscribe("batch.finished", handler)
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - task.transitioned, task.retry_scheduled
//   - input.rejected
//   - batch.progress, batch.finished, batch.paused, batch.resumed
package event
