package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	values    []any
	errs      []error
	completed bool
	sub       *Subscription
}

func (r *recordingSubscriber) OnSubscribe(sub *Subscription) { r.sub = sub }
func (r *recordingSubscriber) OnNext(v any)                  { r.values = append(r.values, v) }
func (r *recordingSubscriber) OnError(err error)             { r.errs = append(r.errs, err) }
func (r *recordingSubscriber) OnCompleted()                  { r.completed = true }

func TestPublisher_SubscribeIsDeferredOneTick(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	sub := &recordingSubscriber{}
	require.NoError(t, p.Subscribe(sub))
	require.Nil(t, sub.sub, "OnSubscribe must not fire synchronously")

	e.Tick()
	require.NotNil(t, sub.sub)
}

func TestPublisher_DoubleSubscribeErrors(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	require.NoError(t, p.Subscribe(&recordingSubscriber{}))
	require.ErrorIs(t, p.Subscribe(&recordingSubscriber{}), ErrAlreadySubscribed)
}

func TestSubscription_TwoTickDeliveryInvariant(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	sub := &recordingSubscriber{}
	require.NoError(t, p.Subscribe(sub))
	e.Tick() // OnSubscribe fires

	sub.sub.Request(1)
	p.Submit("x")
	require.Empty(t, sub.values)

	e.Tick() // tick 1: drainBuffer pops and schedules the deferred OnNext
	require.Empty(t, sub.values, "value must not be delivered on the same tick drainBuffer runs")

	e.Tick() // tick 2: OnNext actually fires
	require.Equal(t, []any{"x"}, sub.values)
}

func TestSubscription_NoDeliveryWithoutDemand(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	sub := &recordingSubscriber{}
	require.NoError(t, p.Subscribe(sub))
	e.Tick()

	p.Submit("x")
	e.Run()
	require.Empty(t, sub.values, "no Request call means no delivery ever happens")

	sub.sub.Request(1)
	e.Run()
	require.Equal(t, []any{"x"}, sub.values)
}

func TestSubscription_CancelSuppressesPendingDelivery(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	sub := &recordingSubscriber{}
	require.NoError(t, p.Subscribe(sub))
	e.Tick()

	sub.sub.Request(1)
	p.Submit("x")
	sub.sub.Cancel()

	e.Run()
	require.Empty(t, sub.values)
}

func TestPublisher_CloseSignalsOnCompleted(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	sub := &recordingSubscriber{}
	require.NoError(t, p.Subscribe(sub))
	e.Tick()

	p.Close()
	e.Run()
	require.True(t, sub.completed)
}

func TestPublisher_SubscribeAfterCloseStillCompletes(t *testing.T) {
	e := NewExecutor()
	p := NewPublisher(e)
	p.Close()

	sub := &recordingSubscriber{}
	require.NoError(t, p.Subscribe(sub))
	e.Run()
	require.True(t, sub.completed)
}
