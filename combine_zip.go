package reactor

// zipCombiner pairs one element from every source and reduces the pair
// through combiner, emitted in arrival-index order. Completion is
// state-based rather than timing-based: as soon as any source has both
// completed and drained its buffer (no element left to pair), the
// combiner completes and any already-buffered-but-unpaired elements
// from other sources are discarded, matching zip's well-known
// shortest-source semantics.
type zipCombiner struct {
	*Publisher
	buffers  [][]any
	subs     []*Subscription
	done     []bool
	failed   bool
	combiner func(values ...any) any
}

type zipSourceSub struct {
	parent *zipCombiner
	src    *Publisher
	index  int
}

func (s *zipSourceSub) OnSubscribe(sub *Subscription) {
	s.parent.subs[s.index] = sub
	_ = s.src.Executor().SetNext(s.parent.Executor())
	sub.Request(1)
}

func (s *zipSourceSub) OnNext(value any) {
	if s.parent.failed {
		return
	}
	s.parent.buffers[s.index] = append(s.parent.buffers[s.index], value)
	s.parent.tryEmit()
}

func (s *zipSourceSub) OnError(err error) {
	if s.parent.failed {
		return
	}
	s.parent.failed = true
	s.parent.cancelAll()
	s.parent.Fail(err)
}

func (s *zipSourceSub) OnCompleted() {
	if s.parent.failed {
		return
	}
	s.parent.done[s.index] = true
	s.parent.tryEmit()
}

func (z *zipCombiner) cancelAll() {
	for _, sub := range z.subs {
		if sub != nil {
			sub.Cancel()
		}
	}
}

// tryEmit pairs off as many full rounds as are currently available,
// then checks whether the zip as a whole is now exhausted.
func (z *zipCombiner) tryEmit() {
	for z.allBuffersNonEmpty() {
		tuple := make([]any, len(z.buffers))
		for i := range z.buffers {
			tuple[i] = z.buffers[i][0]
			z.buffers[i] = z.buffers[i][1:]
		}
		z.Submit(z.combiner(tuple...))
		for i, sub := range z.subs {
			if !z.done[i] && sub != nil {
				sub.Request(1)
			}
		}
	}

	for i := range z.buffers {
		if z.done[i] && len(z.buffers[i]) == 0 {
			z.cancelAll()
			z.Close()
			return
		}
	}
}

func (z *zipCombiner) allBuffersNonEmpty() bool {
	for _, b := range z.buffers {
		if len(b) == 0 {
			return false
		}
	}
	return true
}

// Zip returns a Publisher that, for each round, draws one element from
// every source, in source order, reduces them through combiner, and
// emits the result. It completes as soon as any source is exhausted
// with nothing left to pair, so uneven-length sources never produce a
// partial round. With zero sources it completes immediately.
func Zip(executor *Executor, sources []*Publisher, combiner func(values ...any) any, opts ...Option) *Publisher {
	n := len(sources)
	z := &zipCombiner{
		Publisher: NewPublisher(executor, opts...),
		buffers:   make([][]any, n),
		subs:      make([]*Subscription, n),
		done:      make([]bool, n),
		combiner:  combiner,
	}

	if n == 0 {
		z.Close()
		return z.Publisher
	}

	for i, src := range sources {
		_ = src.Subscribe(&zipSourceSub{parent: z, src: src, index: i})
	}
	return z.Publisher
}
