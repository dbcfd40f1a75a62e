package reactor

import (
	"github.com/google/uuid"

	"github.com/ygrebnov/reactor/metrics"
)

type promiseState int

const (
	stateInProgress promiseState = iota
	stateResolved
	stateRejected
)

// handlerRecord holds the onResolve/onReject callbacks registered on a
// pending promise (by Then, flattening, or Timeout); each callback
// settles its downstream Promise through its closure.
type handlerRecord struct {
	onResolve func(value any)
	onReject  func(reason error)
}

type promiseMetrics struct {
	settled metrics.Counter
}

// Promise is a single-assignment, three-state settleable value bound to
// an Executor. Resolve/Reject change the state at once; handler
// dispatch is always deferred to the next tick of that executor via
// NextTick, so a handler never runs synchronously inside
// Resolve/Reject/Then.
//
// Resolving a Promise with another Promise flattens recursively: the
// outer promise does not settle until the inner one (and any promise it
// in turn resolves to) settles. Flattening attaches directly to the
// inner promise's handler list rather than calling Then again, so
// cancelling the outer chain (see Timeout) can unwind without leaving
// an orphaned intermediate promise.
type Promise struct {
	executor *Executor
	id       string

	state  promiseState
	value  any
	reason error

	handlers []handlerRecord

	m promiseMetrics
}

// NewPromise constructs a pending Promise bound to executor.
func NewPromise(executor *Executor, opts ...Option) *Promise {
	cfg := buildRuntimeConfig(opts)
	return &Promise{
		executor: executor,
		id:       uuid.NewString(),
		state:    stateInProgress,
		m: promiseMetrics{
			settled: cfg.metricsProvider.Counter("reactor_promise_settled_total"),
		},
	}
}

// ID returns a correlation id for diagnostics; it never participates in
// ordering or equality logic.
func (p *Promise) ID() string { return p.id }

// IsInProgress reports whether the promise has not yet settled.
func (p *Promise) IsInProgress() bool { return p.state == stateInProgress }

// IsResolved reports whether the promise settled successfully.
func (p *Promise) IsResolved() bool { return p.state == stateResolved }

// IsRejected reports whether the promise settled with a failure.
func (p *Promise) IsRejected() bool { return p.state == stateRejected }

// Resolve settles the promise with value. If value is itself a
// *Promise, this promise flattens into it instead of resolving with the
// promise value directly: it adopts the inner promise's eventual
// outcome, recursively, however deep the chain goes.
//
// Resolve on an already-settled promise returns ErrAlreadySettled.
func (p *Promise) Resolve(value any) error {
	if p.state != stateInProgress {
		return errAlreadySettled()
	}

	if inner, ok := value.(*Promise); ok {
		p.flattenInto(inner)
		return nil
	}

	p.state = stateResolved
	p.value = value
	p.m.settled.Add(1)
	p.scheduleDispatch()
	return nil
}

// Reject settles the promise with reason as its rejection cause.
// Reject on an already-settled promise returns ErrAlreadySettled.
func (p *Promise) Reject(reason error) error {
	if p.state != stateInProgress {
		return errAlreadySettled()
	}
	p.state = stateRejected
	p.reason = reason
	p.m.settled.Add(1)
	p.scheduleDispatch()
	return nil
}

// flattenInto attaches p's fate directly to inner's handler list: when
// inner resolves, p resolves (recursively flattening again if inner
// resolved with yet another promise); when inner rejects, p rejects
// with the same reason.
func (p *Promise) flattenInto(inner *Promise) {
	switch inner.state {
	case stateResolved:
		_ = p.Resolve(inner.value)
	case stateRejected:
		_ = p.Reject(inner.reason)
	default:
		inner.handlers = append(inner.handlers, handlerRecord{
			onResolve: func(value any) { _ = p.Resolve(value) },
			onReject:  func(reason error) { _ = p.Reject(reason) },
		})
	}
}

// scheduleDispatch defers handler invocation to the owning executor's
// next tick, detaching the handler list so handlers added afterward
// (there shouldn't be any post-settlement, but belt and suspenders)
// don't get double-fired.
func (p *Promise) scheduleDispatch() {
	handlers := p.handlers
	p.handlers = nil
	if len(handlers) == 0 {
		return
	}
	value, reason, resolved := p.value, p.reason, p.state == stateResolved
	p.executor.NextTick(func() {
		for _, h := range handlers {
			if resolved {
				if h.onResolve != nil {
					h.onResolve(value)
				}
			} else if h.onReject != nil {
				h.onReject(reason)
			}
		}
	})
}

// Then registers onResolve/onReject callbacks and returns a new Promise
// that settles with whatever the invoked callback returns (flattened,
// if it returns a *Promise). A nil onResolve or onReject simply
// propagates the corresponding outcome to the returned promise
// unchanged.
func (p *Promise) Then(onResolve func(value any) any, onReject func(reason error) any) *Promise {
	next := NewPromise(p.executor)

	wrappedResolve := func(value any) {
		if onResolve == nil {
			_ = next.Resolve(value)
			return
		}
		next.settleFromCallback(func() any { return onResolve(value) })
	}
	wrappedReject := func(reason error) {
		if onReject == nil {
			_ = next.Reject(reason)
			return
		}
		next.settleFromCallback(func() any { return onReject(reason) })
	}

	switch p.state {
	case stateResolved:
		value := p.value
		p.executor.NextTick(func() { wrappedResolve(value) })
	case stateRejected:
		reason := p.reason
		p.executor.NextTick(func() { wrappedReject(reason) })
	default:
		p.handlers = append(p.handlers, handlerRecord{onResolve: wrappedResolve, onReject: wrappedReject})
	}

	return next
}

// settleFromCallback runs fn and resolves the receiver with its result,
// or rejects it with a panic recovered from fn, converting a non-error
// panic value via toError.
func (p *Promise) settleFromCallback(fn func() any) {
	defer func() {
		if r := recover(); r != nil {
			_ = p.Reject(toError(r))
		}
	}()
	_ = p.Resolve(fn())
}

// Delay returns a Promise that resolves with value after delay ticks of
// the scheduler's simulated clock.
func Delay(se *ScheduledExecutor, value any, delay int64) *Promise {
	p := NewPromise(se.Executor)
	se.ScheduleDelayed(func() { _ = p.Resolve(value) }, delay)
	return p
}

// Timeout returns a Promise that adopts p's outcome if it settles
// within delay ticks, or rejects with a KindTimeout RuntimeError
// otherwise. Once either outcome fires, the other is made inert: if p
// settles first, the pending timer is cancelled; if the timer fires
// first, p's eventual settlement (if it arrives late) is simply
// ignored by the returned promise, since it has already settled.
func (p *Promise) Timeout(se *ScheduledExecutor, delay int64) *Promise {
	if se.Executor != p.executor {
		result := NewPromise(p.executor)
		_ = result.Reject(errRequireScheduledExecutor())
		return result
	}

	result := NewPromise(p.executor)

	var timerID int64
	timerFired := false

	timerID = se.ScheduleDelayed(func() {
		timerFired = true
		_ = result.Reject(NewTimeoutError(delay))
	}, delay)

	switch p.state {
	case stateResolved:
		value := p.value
		p.executor.NextTick(func() {
			if !timerFired {
				se.CancelScheduled(timerID)
				_ = result.Resolve(value)
			}
		})
	case stateRejected:
		reason := p.reason
		p.executor.NextTick(func() {
			if !timerFired {
				se.CancelScheduled(timerID)
				_ = result.Reject(reason)
			}
		})
	default:
		p.handlers = append(p.handlers, handlerRecord{
			onResolve: func(value any) {
				if !timerFired {
					se.CancelScheduled(timerID)
					_ = result.Resolve(value)
				}
			},
			onReject: func(reason error) {
				if !timerFired {
					se.CancelScheduled(timerID)
					_ = result.Reject(reason)
				}
			},
		})
	}

	return result
}
