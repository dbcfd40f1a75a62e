package reactor

// transformer is the behavior each concrete Operation kind (Map, Grep,
// Take, Skip) plugs into operationCore. next is called once per
// upstream element; it returns the downstream value to submit and
// whether to submit it at all (false drops the element, e.g. a Grep
// predicate miss or a Skip still inside its skip count). Returning
// done=true tells operationCore to cancel upstream and complete
// downstream immediately after this call, used by Take once its limit
// is reached.
type transformer interface {
	next(value any) (out any, emit bool, done bool)
}

// operationCore is the shared machinery behind every concrete Operation:
// it is a Subscriber to its upstream Publisher and is itself a
// Publisher to whatever subscribes downstream, owning its own Executor
// distinct from upstream's. Every operation requests exactly one
// element at a time from upstream, re-requesting only after it has
// finished reacting to the previous one — this is what makes an
// Operation a genuine backpressure relay rather than a buffering stage.
type operationCore struct {
	*Publisher
	upstreamPub *Publisher
	upstream    *Subscription
	xf          transformer
}

func newOperationCore(upstream *Publisher, xf transformer, opts ...Option) *operationCore {
	op := &operationCore{
		Publisher:   NewPublisher(NewExecutor(opts...), opts...),
		upstreamPub: upstream,
		xf:          xf,
	}
	_ = upstream.Subscribe(op)
	return op
}

// OnSubscribe stores upstream and chains upstream's executor into this
// operation's own executor, so draining upstream (e.g. via its
// Publisher's Close) also drains the work this operation enqueues.
func (op *operationCore) OnSubscribe(sub *Subscription) {
	op.upstream = sub
	_ = op.upstreamPub.Executor().SetNext(op.Executor())
	sub.Request(1)
}

func (op *operationCore) OnNext(value any) {
	out, emit, done := op.xf.next(value)
	if emit {
		op.Submit(out)
	}
	if done {
		op.upstream.Cancel()
		op.Close()
		return
	}
	op.upstream.Request(1)
}

func (op *operationCore) OnError(err error) {
	op.Fail(err)
}

func (op *operationCore) OnCompleted() {
	op.Close()
}
