package reactor

// concatCombiner exhausts each source publisher fully, in order,
// before subscribing to the next. Only one source subscription is ever
// live at a time.
type concatCombiner struct {
	*Publisher
	sources []*Publisher
	index   int
}

type concatSourceSub struct {
	parent *concatCombiner
	src    *Publisher
	sub    *Subscription
}

func (s *concatSourceSub) OnSubscribe(sub *Subscription) {
	s.sub = sub
	_ = s.src.Executor().SetNext(s.parent.Executor())
	sub.Request(1)
}

func (s *concatSourceSub) OnNext(value any) {
	s.parent.Submit(value)
	s.sub.Request(1)
}

func (s *concatSourceSub) OnError(err error) {
	s.parent.Fail(err)
}

func (s *concatSourceSub) OnCompleted() {
	s.parent.advance()
}

func (c *concatCombiner) advance() {
	c.index++
	if c.index >= len(c.sources) {
		c.Close()
		return
	}
	src := c.sources[c.index]
	_ = src.Subscribe(&concatSourceSub{parent: c, src: src})
}

// Concat returns a Publisher that emits every element of sources[0],
// then sources[1], and so on, completing once the last source
// completes. With zero sources it completes immediately. A failure in
// any source is propagated immediately without advancing to the next
// source.
func Concat(executor *Executor, sources []*Publisher, opts ...Option) *Publisher {
	c := &concatCombiner{
		Publisher: NewPublisher(executor, opts...),
		sources:   sources,
		index:     -1,
	}
	c.advance()
	return c.Publisher
}
