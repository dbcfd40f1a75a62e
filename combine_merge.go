package reactor

// mergeCombiner interleaves the elements of several source publishers
// as they arrive, completing once every source has completed and
// failing as soon as any source fails.
type mergeCombiner struct {
	*Publisher
	subs      []*Subscription
	remaining int
	failed    bool
}

type mergeSourceSub struct {
	parent *mergeCombiner
	src    *Publisher
}

func (s *mergeSourceSub) OnSubscribe(sub *Subscription) {
	s.parent.subs = append(s.parent.subs, sub)
	_ = s.src.Executor().SetNext(s.parent.Executor())
	sub.Request(1)
}

func (s *mergeSourceSub) OnNext(value any) {
	if s.parent.failed {
		return
	}
	s.parent.Submit(value)
}

func (s *mergeSourceSub) OnError(err error) {
	if s.parent.failed {
		return
	}
	s.parent.failed = true
	for _, sub := range s.parent.subs {
		sub.Cancel()
	}
	s.parent.Fail(err)
}

func (s *mergeSourceSub) OnCompleted() {
	if s.parent.failed {
		return
	}
	s.parent.remaining--
	if s.parent.remaining == 0 {
		s.parent.Close()
	}
}

// Merge returns a Publisher that emits every element from every source
// as it arrives, in arrival order (no attempt at fairness beyond each
// source's own delivery cadence), completing once all sources have
// completed. With zero sources it completes immediately once
// subscribed. If any source fails, Merge cancels the remaining sources
// and fails immediately with that error.
func Merge(executor *Executor, sources []*Publisher, opts ...Option) *Publisher {
	m := &mergeCombiner{
		Publisher: NewPublisher(executor, opts...),
		remaining: len(sources),
	}

	if len(sources) == 0 {
		m.Close()
		return m.Publisher
	}

	for _, src := range sources {
		sourceSub := &mergeSourceSub{parent: m, src: src}
		_ = src.Subscribe(&mergeSourceRequester{mergeSourceSub: sourceSub})
	}
	return m.Publisher
}

// mergeSourceRequester wraps mergeSourceSub so OnNext can re-request
// demand from the specific Subscription it was handed at OnSubscribe
// time, rather than guessing which source delivered.
type mergeSourceRequester struct {
	*mergeSourceSub
	sub *Subscription
}

func (r *mergeSourceRequester) OnSubscribe(sub *Subscription) {
	r.sub = sub
	r.mergeSourceSub.OnSubscribe(sub)
}

func (r *mergeSourceRequester) OnNext(value any) {
	r.mergeSourceSub.OnNext(value)
	if !r.parent.failed && !r.sub.IsCancelled() {
		r.sub.Request(1)
	}
}
