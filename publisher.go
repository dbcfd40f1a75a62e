package reactor

import "github.com/ygrebnov/reactor/metrics"

type publisherMetrics struct {
	submitted metrics.Counter
}

// Publisher is a single-subscription push source. Values handed to
// Submit before a subscriber has attached are held in a pre-subscription
// buffer and drained, in order, into the Subscription as soon as one
// attaches. A Close or Fail raised before any subscription is likewise
// held and delivered only once the pre-subscription buffer has drained.
type Publisher struct {
	executor *Executor
	sub      *Subscription
	closed   bool
	closeErr error

	preBuffer []any

	cfg runtimeConfig
	m   publisherMetrics
}

// NewPublisher constructs a Publisher bound to executor.
func NewPublisher(executor *Executor, opts ...Option) *Publisher {
	cfg := buildRuntimeConfig(opts)
	return &Publisher{
		executor: executor,
		cfg:      cfg,
		m: publisherMetrics{
			submitted: cfg.metricsProvider.Counter("reactor_publisher_submitted_total"),
		},
	}
}

// Executor returns the executor this publisher is bound to.
func (p *Publisher) Executor() *Executor { return p.executor }

// Subscription returns the current subscription, or nil if none has
// subscribed yet.
func (p *Publisher) Subscription() *Subscription { return p.sub }

// Subscribe attaches subscriber, moving any pre-subscription buffer into
// the new Subscription in submission order right away and invoking the
// subscriber's OnSubscribe handshake on the next tick. A Publisher supports exactly
// one live subscription at a time; subscribing again before
// Unsubscribe returns ErrAlreadySubscribed. Subscribing to an
// already-closed publisher still hands the subscriber a Subscription
// and drains whatever was buffered before close, then signals
// completion (or the failure that closed it) once that drains.
func (p *Publisher) Subscribe(subscriber Subscriber) error {
	if p.sub != nil {
		return errAlreadySubscribed()
	}

	sub := newSubscription(p.executor, subscriber, p.cfg)
	p.sub = sub

	for _, value := range p.preBuffer {
		sub.Offer(value)
	}
	p.preBuffer = nil
	closed, closeErr := p.closed, p.closeErr

	p.executor.NextTick(func() {
		subscriber.OnSubscribe(sub)
		if closed {
			if closeErr != nil {
				sub.OnError(closeErr)
			} else {
				sub.OnCompleted()
			}
		}
	})
	return nil
}

// Unsubscribe cancels and detaches the current subscription, if any.
func (p *Publisher) Unsubscribe() {
	if p.sub == nil {
		return
	}
	p.sub.Cancel()
	p.sub = nil
}

// Submit offers value to the current subscription, or appends it to
// the pre-subscription buffer if nobody has subscribed yet. It is a
// no-op once the publisher is closed.
func (p *Publisher) Submit(value any) {
	if p.closed {
		return
	}
	p.m.submitted.Add(1)
	if p.sub == nil {
		p.preBuffer = append(p.preBuffer, value)
		return
	}
	p.sub.Offer(value)
}

// Close marks the publisher closed and signals completion to the
// current subscription, if any. Submit after Close is a no-op. If
// Close is called before any subscription exists, completion is held
// back and delivered once a subscriber attaches and drains whatever
// was buffered first.
func (p *Publisher) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.sub != nil {
		p.sub.OnCompleted()
	}
}

// Fail marks the publisher closed and signals an error to the current
// subscription, if any, with the same pre-subscription hold-back
// behavior as Close.
func (p *Publisher) Fail(err error) {
	if p.closed {
		return
	}
	p.closed = true
	p.closeErr = err
	if p.sub != nil {
		p.sub.OnError(err)
	}
}

// IsClosed reports whether Close or Fail has been called.
func (p *Publisher) IsClosed() bool { return p.closed }
