// Package reactor provides a single-threaded, cooperative concurrency
// runtime: an Executor that drains queued callbacks, a ScheduledExecutor
// that additionally fires time-based callbacks, a Promise layered on top
// with proper chaining and recursive flattening, and a reactive-streams
// layer (Publisher, Subscriber, Subscription, Operation, and the
// combining publishers Merge/Concat/Zip) implementing pull-on-demand
// backpressure atop the executor.
//
// Nothing in this package is safe for concurrent use from more than one
// goroutine. An Executor and everything wired to it (promises,
// publishers, subscriptions) must be confined to a single goroutine;
// forward progress happens only when that goroutine calls Tick or Run.
//
// Constructors
//   - NewExecutor(opts ...Option): a bare FIFO thunk scheduler.
//   - NewScheduledExecutor(opts ...Option): adds ScheduleDelayed/CancelScheduled.
//   - NewPromise(executor, opts ...Option): a settleable value bound to an executor.
//   - NewPublisher(executor, opts ...Option): a push source with pull-on-demand delivery.
//
// Defaults
// Unless overridden via Option, a newly constructed Executor uses a
// no-op metrics.Provider and a no-op zerolog.Logger.
package reactor
