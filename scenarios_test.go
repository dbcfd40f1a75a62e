package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenario_SimpleMapFilter submits 1..10, closes, and pipes the
// stream through filter(even).map(double).
func TestScenario_SimpleMapFilter(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)
	pipeline := Map(
		Filter(source, func(v any) bool { return v.(int)%2 == 0 }),
		func(v any) any { return v.(int) * 2 },
	)

	var got []any
	_ = pipeline.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, nil))

	for i := 1; i <= 10; i++ {
		source.Submit(i)
	}
	source.Close()
	e.Run()

	require.Equal(t, []any{4, 8, 12, 16, 20}, got)
}

// TestScenario_PingPong bounces values through a Publisher/Subscriber
// feedback loop at demand 1: the terminal consumer resubmits e+1 back
// into the same source publisher for every e < 10, so the loop keeps
// feeding itself until it reaches 10.
func TestScenario_PingPong(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)

	var seen []any
	_ = source.Subscribe(NewConsumer(func(v any) {
		seen = append(seen, v)
		if v.(int) < 10 {
			source.Submit(v.(int) + 1)
		}
	}, nil, nil))

	source.Submit(1)
	e.Run()

	require.Equal(t, []any{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seen)
}

// TestScenario_MergeThenTake has P1 submit 1..10 and P2 submit 11..20,
// both closing, piped through merge(P1,P2).take(5).
func TestScenario_MergeThenTake(t *testing.T) {
	e := NewExecutor()
	a := NewPublisher(e)
	b := NewPublisher(e)
	capped := Take(Merge(e, []*Publisher{a, b}), 5)

	var got []any
	completedCount := 0
	_ = capped.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, func() { completedCount++ }))

	for i := 1; i <= 10; i++ {
		a.Submit(i)
	}
	for i := 11; i <= 20; i++ {
		b.Submit(i)
	}
	a.Close()
	b.Close()
	e.Run()

	require.Len(t, got, 5)
	require.Equal(t, 1, completedCount, "downstream must see exactly one on_completed")
}

// TestScenario_ConcatThenFilter has P1 submit 1..5 then close, P2
// submit 6..10 then close, piped through concat(P1,P2).filter(even).
func TestScenario_ConcatThenFilter(t *testing.T) {
	e := NewExecutor()
	a := NewPublisher(e)
	b := NewPublisher(e)
	pipeline := Filter(Concat(e, []*Publisher{a, b}), func(v any) bool { return v.(int)%2 == 0 })

	var got []any
	_ = pipeline.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, nil))

	for i := 1; i <= 5; i++ {
		a.Submit(i)
	}
	a.Close()
	e.Run()

	for i := 6; i <= 10; i++ {
		b.Submit(i)
	}
	b.Close()
	e.Run()

	require.Equal(t, []any{2, 4, 6, 8, 10}, got)
}

// TestScenario_ZipUnevenLengths has P1 submit 1..5 and P2 submit 10..13
// (four elements), both closing, combined with an arithmetic (a,b) →
// a+b combiner.
func TestScenario_ZipUnevenLengths(t *testing.T) {
	e := NewExecutor()
	a := NewPublisher(e)
	b := NewPublisher(e)
	zipped := Zip(e, []*Publisher{a, b}, func(values ...any) any {
		return values[0].(int) + values[1].(int)
	})

	var got []any
	completedCount := 0
	_ = zipped.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, func() { completedCount++ }))

	for i := 1; i <= 5; i++ {
		a.Submit(i)
	}
	for i := 10; i <= 13; i++ {
		b.Submit(i)
	}
	a.Close()
	b.Close()
	e.Run()

	require.Equal(t, []any{11, 13, 15, 17}, got)
	require.Equal(t, 1, completedCount, "downstream must see exactly one on_completed and no lost tuples")
}

// TestScenario_PromiseTimeoutRace schedules resolve("OK") at t=50 and
// wraps the promise in timeout(100): the resolution wins, and the
// timeout's timer is cancelled so TimerCount reaches 0.
func TestScenario_PromiseTimeoutRace(t *testing.T) {
	t.Run("promise settles first", func(t *testing.T) {
		se := NewScheduledExecutor()
		p := NewPromise(se.Executor)
		se.ScheduleDelayed(func() { _ = p.Resolve("OK") }, 50)

		result := p.Timeout(se, 100)
		se.Run()

		require.True(t, result.IsResolved())
		require.Equal(t, "OK", result.value)
		require.Equal(t, 0, se.TimerCount())
	})

	t.Run("timeout fires first", func(t *testing.T) {
		se := NewScheduledExecutor()
		p := NewPromise(se.Executor)
		se.ScheduleDelayed(func() { _ = p.Resolve("too late") }, 100)

		result := p.Timeout(se, 50)
		se.Run()
		require.True(t, result.IsRejected())
	})
}

// TestScenario_RecursivePromiseFlattening chains
// P.then(x → delay(delay(x*2, 5, s), 5, s)).then(y → result = y) with
// P.resolve(7); the inner delay resolves with a Promise rather than a
// plain value, so the outer delay must recursively flatten it.
func TestScenario_RecursivePromiseFlattening(t *testing.T) {
	se := NewScheduledExecutor()
	p := NewPromise(se.Executor)

	chained := p.Then(func(v any) any {
		x := v.(int)
		inner := Delay(se, x*2, 5)
		return Delay(se, inner, 5)
	}, nil)

	var result any
	chained.Then(func(v any) any { result = v; return nil }, nil)

	require.NoError(t, p.Resolve(7))
	se.Run()

	require.Equal(t, 14, result)
}
