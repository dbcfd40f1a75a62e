package reactor

// Subscriber receives the lifecycle callbacks of a Subscription: an
// initial OnSubscribe handshake carrying the Subscription used to
// pull elements, zero or more OnNext deliveries, and exactly one
// terminal callback (OnCompleted or OnError).
type Subscriber interface {
	OnSubscribe(sub *Subscription)
	OnNext(value any)
	OnError(err error)
	OnCompleted()
}
