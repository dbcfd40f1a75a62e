package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drive(e *Executor, values []int, source *Publisher) {
	for _, v := range values {
		source.Submit(v)
	}
	source.Close()
}

func TestMap_AppliesFunction(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)
	mapped := Map(source, func(v any) any { return v.(int) * 2 })

	var got []any
	_ = mapped.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, nil))

	drive(e, []int{1, 2, 3}, source)
	e.Run()
	require.Equal(t, []any{2, 4, 6}, got)
}

func TestGrep_FiltersElements(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)
	filtered := Grep(source, func(v any) bool { return v.(int)%2 == 0 })

	var got []any
	_ = filtered.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, nil))

	drive(e, []int{1, 2, 3, 4, 5, 6}, source)
	e.Run()
	require.Equal(t, []any{2, 4, 6}, got)
}

func TestTake_StopsAfterN(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)
	taken := Take(source, 2)

	var got []any
	completed := false
	_ = taken.Subscribe(NewConsumer(
		func(v any) { got = append(got, v) },
		nil,
		func() { completed = true },
	))

	drive(e, []int{1, 2, 3, 4}, source)
	e.Run()
	require.Equal(t, []any{1, 2}, got)
	require.True(t, completed)
}

func TestTake_ZeroCompletesImmediately(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)
	taken := Take(source, 0)

	completed := false
	_ = taken.Subscribe(NewConsumer(nil, nil, func() { completed = true }))
	e.Run()
	require.True(t, completed)
}

func TestSkip_DropsFirstN(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)
	skipped := Skip(source, 2)

	var got []any
	_ = skipped.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, nil))

	drive(e, []int{1, 2, 3, 4}, source)
	e.Run()
	require.Equal(t, []any{3, 4}, got)
}

// TestOperation_ChainsUpstreamExecutorIntoItsOwn verifies that an
// Operation owns a distinct Executor from its upstream and links them
// via SetNext, so driving only the upstream's executor is enough to
// drain the whole pipeline.
func TestOperation_ChainsUpstreamExecutorIntoItsOwn(t *testing.T) {
	sourceExec := NewExecutor()
	source := NewPublisher(sourceExec)
	mapped := Map(source, func(v any) any { return v.(int) * 10 })
	require.NotSame(t, sourceExec, mapped.Executor(), "operation must own its own executor, not reuse upstream's")

	var got []any
	_ = mapped.Subscribe(NewConsumer(func(v any) { got = append(got, v) }, nil, nil))

	source.Submit(1)
	source.Submit(2)
	source.Close()
	sourceExec.Run() // only the upstream executor is driven directly

	require.Equal(t, []any{10, 20}, got)
}

func TestFlowBuilder_MapFilterChain(t *testing.T) {
	e := NewExecutor()
	source := NewPublisher(e)

	var got []any
	err := From(source).
		Map(func(v any) any { return v.(int) + 1 }).
		Filter(func(v any) bool { return v.(int)%2 == 0 }).
		ToFunc(func(v any) { got = append(got, v) }, nil, nil)
	require.NoError(t, err)

	drive(e, []int{1, 2, 3, 4, 5}, source)
	e.Run()
	require.Equal(t, []any{2, 4, 6}, got)
}
