package reactor

import (
	"github.com/rs/zerolog"

	"github.com/ygrebnov/reactor/metrics"
)

// Runner is the common surface shared by Executor and ScheduledExecutor.
// Executor chaining (SetNext) stores a Runner rather than a concrete
// *Executor so that a chain into a ScheduledExecutor still advances its
// clock when the chain is driven through Run.
type Runner interface {
	NextTick(thunk func())
	Tick()
	IsDone() bool
	Run()
	SetNext(next Runner) error
}

type execMetrics struct {
	ticks      metrics.Counter
	queueDepth metrics.UpDownCounter
}

// Executor is a single-threaded FIFO scheduler for thunks. Thunks
// execute in submission order; a thunk enqueued during a Tick is left
// for the next Tick. Executor is not safe for concurrent use — every
// method must be called from the single goroutine that owns it.
type Executor struct {
	queue  []func()
	next   Runner
	logger zerolog.Logger
	m      execMetrics
}

// NewExecutor constructs an empty Executor.
func NewExecutor(opts ...Option) *Executor {
	cfg := buildRuntimeConfig(opts)
	return &Executor{
		logger: cfg.logger,
		m: execMetrics{
			ticks:      cfg.metricsProvider.Counter("reactor_executor_thunks_total"),
			queueDepth: cfg.metricsProvider.UpDownCounter("reactor_executor_queue_depth"),
		},
	}
}

// NextTick appends thunk to the pending queue.
func (e *Executor) NextTick(thunk func()) {
	e.queue = append(e.queue, thunk)
	e.m.queueDepth.Add(1)
}

// IsDone reports whether the pending queue is empty.
func (e *Executor) IsDone() bool {
	return len(e.queue) == 0
}

// Tick drains every thunk currently queued, in FIFO order, exactly
// once. Thunks enqueued by a running thunk are left for the next Tick.
// If a thunk panics, Tick restores the not-yet-run remainder of the
// current batch to the front of the queue, logs the panic (if a
// logger is attached), and re-raises it — aborting this Tick while
// preserving the remaining queued work, per the executor's failure
// semantics.
func (e *Executor) Tick() {
	pending := e.queue
	e.queue = nil
	e.m.queueDepth.Add(-int64(len(pending)))

	for i, thunk := range pending {
		e.runOne(pending, i, thunk)
	}
}

func (e *Executor) runOne(pending []func(), i int, thunk func()) {
	defer func() {
		if r := recover(); r != nil {
			remainder := append([]func(){}, pending[i+1:]...)
			e.queue = append(remainder, e.queue...)
			e.m.queueDepth.Add(int64(len(remainder)))
			e.logger.Error().Interface("panic", r).Msg("reactor: thunk panicked")
			panic(r)
		}
	}()
	thunk()
	e.m.ticks.Add(1)
}

// Run drains this executor and, once it is idle, drives any chained
// next executor, looping until the entire chain is quiescent. A thunk
// that enqueues further work — on this executor or another — keeps
// the loop going.
func (e *Executor) Run() {
	for {
		if !e.IsDone() {
			e.Tick()
			continue
		}
		if e.next != nil && !e.next.IsDone() {
			e.next.Run()
			continue
		}
		break
	}
}

// SetNext installs the forward link used for executor chaining. It is
// an error to call SetNext twice on the same executor. Linking an
// executor to itself is a no-op and leaves the link free.
func (e *Executor) SetNext(next Runner) error {
	if next == Runner(e) {
		return nil
	}
	if e.next != nil {
		return errNextAlreadySet()
	}
	e.next = next
	return nil
}
