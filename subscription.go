package reactor

import (
	"github.com/ygrebnov/reactor/metrics"
	"github.com/ygrebnov/reactor/pool"
)

// deliveryToken is a pooled carrier for one buffered element, recycled
// through tokenPool instead of letting the buffer grow a fresh boxed
// value per element.
type deliveryToken struct {
	value any
}

type subscriptionMetrics struct {
	delivered metrics.Counter
	buffered  metrics.UpDownCounter
}

type terminalKind int

const (
	terminalNone terminalKind = iota
	terminalCompleted
	terminalErrored
)

// Subscription mediates between a Publisher and one Subscriber,
// implementing pull-on-demand backpressure: elements offered by the
// publisher sit in a buffer until the subscriber has outstanding
// demand (via Request), and delivery is always deferred two ticks from
// the Offer that queued it — one tick to drain the buffer into a
// pending delivery, one more to actually invoke OnNext. This gives
// downstream code a stable, testable cadence instead of a
// same-tick reentrant callback.
//
// A terminal signal (OnCompleted/OnError) raised while elements are
// still buffered is held back until the buffer fully drains, so a
// Publisher that Submits a batch and immediately Closes never causes
// its subscriber to see completion ahead of the data.
type Subscription struct {
	executor   *Executor
	subscriber Subscriber

	buffer    []*deliveryToken
	requested int64

	cancelled  bool
	dispatched bool // terminal signal has been handed to the subscriber
	pending    terminalKind
	pendingErr error
	draining   bool

	tokenPool pool.Pool
	m         subscriptionMetrics
}

func newSubscription(executor *Executor, subscriber Subscriber, cfg runtimeConfig) *Subscription {
	return &Subscription{
		executor:   executor,
		subscriber: subscriber,
		tokenPool:  pool.NewDynamic(func() interface{} { return &deliveryToken{} }),
		m: subscriptionMetrics{
			delivered: cfg.metricsProvider.Counter("reactor_subscription_delivered_total"),
			buffered:  cfg.metricsProvider.UpDownCounter("reactor_subscription_buffered"),
		},
	}
}

// Request adds n to the outstanding demand and schedules a drain, unless
// one is already pending.
func (s *Subscription) Request(n int64) {
	if s.cancelled || n <= 0 {
		return
	}
	s.requested += n
	s.scheduleDrain()
}

// Offer enqueues value for delivery. It is a no-op once the
// subscription is cancelled, or once a terminal signal has already
// been raised (Close/Fail after further Submits is already a Publisher
// contract violation; Subscription just ignores it defensively).
func (s *Subscription) Offer(value any) {
	if s.cancelled || s.pending != terminalNone {
		return
	}
	tok := s.tokenPool.Get().(*deliveryToken)
	tok.value = value
	s.buffer = append(s.buffer, tok)
	s.m.buffered.Add(1)
	s.scheduleDrain()
}

// scheduleDrain defers drainBuffer to the executor's next tick, unless
// a drain is already pending.
func (s *Subscription) scheduleDrain() {
	if s.draining {
		return
	}
	s.draining = true
	s.executor.NextTick(s.drainBuffer)
}

// drainBuffer runs one tick after Offer or Request. If there is both
// demand and a buffered element, it pops the head of the buffer and
// defers the actual OnNext call to the following tick — the second of
// the two-tick delivery invariant. Once the buffer is empty, it
// dispatches any terminal signal that had been held back.
func (s *Subscription) drainBuffer() {
	s.draining = false

	if s.cancelled || s.dispatched {
		return
	}

	if s.requested <= 0 || len(s.buffer) == 0 {
		s.maybeDispatchTerminal()
		return
	}

	tok := s.buffer[0]
	s.buffer[0] = nil
	s.buffer = s.buffer[1:]
	s.requested--
	s.m.buffered.Add(-1)

	value := tok.value
	s.executor.NextTick(func() {
		tok.value = nil
		s.tokenPool.Put(tok)
		if s.cancelled {
			return
		}
		s.m.delivered.Add(1)
		s.subscriber.OnNext(value)
		s.maybeDispatchTerminal()
	})

	if s.requested > 0 && len(s.buffer) > 0 {
		s.scheduleDrain()
	}
}

// maybeDispatchTerminal fires the held-back terminal signal once the
// buffer is fully drained.
func (s *Subscription) maybeDispatchTerminal() {
	if s.cancelled || s.dispatched || s.pending == terminalNone || len(s.buffer) != 0 {
		return
	}
	s.dispatched = true
	kind, err := s.pending, s.pendingErr
	s.executor.NextTick(func() {
		if s.cancelled {
			return
		}
		if kind == terminalCompleted {
			s.subscriber.OnCompleted()
		} else {
			s.subscriber.OnError(err)
		}
	})
}

// Cancel marks the subscription cancelled. Any element not yet
// delivered (buffered, or already popped but whose deferred OnNext
// hasn't run) is suppressed; no further OnNext, OnError, or
// OnCompleted call reaches the subscriber after Cancel.
func (s *Subscription) Cancel() {
	s.cancelled = true
	s.buffer = nil
}

// IsCancelled reports whether Cancel has been called.
func (s *Subscription) IsCancelled() bool { return s.cancelled }

// OnCompleted raises a normal-termination signal. If elements are still
// buffered, actual dispatch to the subscriber is held back until the
// buffer drains; otherwise it is scheduled immediately.
func (s *Subscription) OnCompleted() {
	if s.cancelled || s.pending != terminalNone {
		return
	}
	s.pending = terminalCompleted
	s.maybeDispatchTerminal()
}

// OnError raises an error-termination signal, held back the same way
// as OnCompleted until any buffered elements drain.
func (s *Subscription) OnError(err error) {
	if s.cancelled || s.pending != terminalNone {
		return
	}
	s.pending = terminalErrored
	s.pendingErr = err
	s.maybeDispatchTerminal()
}
