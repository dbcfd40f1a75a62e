package reactor

// FlowBuilder assembles a chain of Operations atop a source Publisher
// using a fluent API. Each Map/Filter/Take/Skip call constructs its
// Operation and subscribes it to the previous stage immediately.
type FlowBuilder struct {
	executor *Executor
	current  *Publisher
	opts     []Option
}

// From starts a FlowBuilder rooted at source.
func From(source *Publisher, opts ...Option) *FlowBuilder {
	return &FlowBuilder{executor: source.Executor(), current: source, opts: opts}
}

// Map appends a Map operation to the chain.
func (f *FlowBuilder) Map(fn func(value any) any) *FlowBuilder {
	f.current = Map(f.current, fn, f.opts...)
	return f
}

// Filter appends a Grep/Filter operation to the chain.
func (f *FlowBuilder) Filter(pred func(value any) bool) *FlowBuilder {
	f.current = Filter(f.current, pred, f.opts...)
	return f
}

// Take appends a Take operation to the chain.
func (f *FlowBuilder) Take(n int64) *FlowBuilder {
	f.current = Take(f.current, n, f.opts...)
	return f
}

// Skip appends a Skip operation to the chain.
func (f *FlowBuilder) Skip(n int64) *FlowBuilder {
	f.current = Skip(f.current, n, f.opts...)
	return f
}

// Build returns the Publisher at the end of the chain, for callers who
// want to Subscribe manually.
func (f *FlowBuilder) Build() *Publisher { return f.current }

// To subscribes sink to the end of the chain and returns the error from
// that Subscribe call, matching the shape of a plain Publisher.Subscribe.
func (f *FlowBuilder) To(sink Subscriber) error {
	return f.current.Subscribe(sink)
}

// ToFunc subscribes a ConsumerSubscriber built from the given callbacks
// to the end of the chain. Any nil callback is simply not invoked.
func (f *FlowBuilder) ToFunc(onNext func(any), onError func(error), onCompleted func()) error {
	return f.current.Subscribe(NewConsumer(onNext, onError, onCompleted))
}

// ConsumerSubscriber adapts plain callbacks to the Subscriber
// interface, requesting one element at a time as soon as it receives
// the previous one (or at subscribe time, for the first element).
type ConsumerSubscriber struct {
	onNext      func(any)
	onError     func(error)
	onCompleted func()
	sub         *Subscription
}

// NewConsumer builds a ConsumerSubscriber from callbacks. nil callbacks
// are simply skipped.
func NewConsumer(onNext func(any), onError func(error), onCompleted func()) *ConsumerSubscriber {
	return &ConsumerSubscriber{onNext: onNext, onError: onError, onCompleted: onCompleted}
}

func (c *ConsumerSubscriber) OnSubscribe(sub *Subscription) {
	c.sub = sub
	sub.Request(1)
}

func (c *ConsumerSubscriber) OnNext(value any) {
	if c.onNext != nil {
		c.onNext(value)
	}
	c.sub.Request(1)
}

func (c *ConsumerSubscriber) OnError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *ConsumerSubscriber) OnCompleted() {
	if c.onCompleted != nil {
		c.onCompleted()
	}
}
