package reactor

// mapTransformer applies fn to every element and always emits.
type mapTransformer struct {
	fn func(value any) any
}

func (t *mapTransformer) next(value any) (any, bool, bool) {
	return t.fn(value), true, false
}

// Map returns an Operation publisher that applies fn to every element
// of upstream.
func Map(upstream *Publisher, fn func(value any) any, opts ...Option) *Publisher {
	return newOperationCore(upstream, &mapTransformer{fn: fn}, opts...).Publisher
}

// grepTransformer emits only elements satisfying pred.
type grepTransformer struct {
	pred func(value any) bool
}

func (t *grepTransformer) next(value any) (any, bool, bool) {
	return value, t.pred(value), false
}

// Grep returns an Operation publisher that emits only the elements of
// upstream satisfying pred. It is the filter operation named for the
// teacher's vocabulary of stream-scanning primitives.
func Grep(upstream *Publisher, pred func(value any) bool, opts ...Option) *Publisher {
	return newOperationCore(upstream, &grepTransformer{pred: pred}, opts...).Publisher
}

// Filter is an alias for Grep using the more common reactive-streams name.
func Filter(upstream *Publisher, pred func(value any) bool, opts ...Option) *Publisher {
	return Grep(upstream, pred, opts...)
}

// takeTransformer emits the first n elements then signals done.
type takeTransformer struct {
	remaining int64
}

func (t *takeTransformer) next(value any) (any, bool, bool) {
	if t.remaining <= 0 {
		return nil, false, true
	}
	t.remaining--
	return value, true, t.remaining == 0
}

// Take returns an Operation publisher that emits at most the first n
// elements of upstream, then cancels upstream and completes. n <= 0
// completes immediately without subscribing to upstream at all.
func Take(upstream *Publisher, n int64, opts ...Option) *Publisher {
	if n <= 0 {
		empty := NewPublisher(upstream.Executor(), opts...)
		empty.Close()
		return empty
	}
	return newOperationCore(upstream, &takeTransformer{remaining: n}, opts...).Publisher
}

// skipTransformer drops the first n elements, then forwards the rest.
type skipTransformer struct {
	remaining int64
}

func (t *skipTransformer) next(value any) (any, bool, bool) {
	if t.remaining > 0 {
		t.remaining--
		return nil, false, false
	}
	return value, true, false
}

// Skip returns an Operation publisher that drops the first n elements
// of upstream and forwards the rest unchanged.
func Skip(upstream *Publisher, n int64, opts ...Option) *Publisher {
	return newOperationCore(upstream, &skipTransformer{remaining: n}, opts...).Publisher
}
