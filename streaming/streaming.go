// Package streaming provides the pull-based producer/consumer contract used to
// move data through a transfer, plus the transforms that sit between the two
// ends of it.
//
// The contract follows credit-based flow control: a Subscriber signals demand
// through its Subscription, and the Publisher delivers at most that many items
// before waiting for more demand. Exactly one terminal signal (OnComplete or
// OnError) ends the stream; after cancellation a publisher stops promptly and
// may skip the terminal signal entirely.
//
// Signals on a single stream are delivered sequentially: implementations never
// invoke two subscriber callbacks concurrently, so subscriber state needs no
// additional locking.
package streaming

// Subscription is the link a Publisher hands to its Subscriber. The Subscriber
// uses it to signal demand and to cancel the stream.
type Subscription interface {
	// Request grants the publisher credit to deliver up to n more items.
	// n must be positive; a non-positive n is a protocol violation and
	// terminates the stream with ErrInvalidDemand.
	Request(n int64)

	// Cancel asks the publisher to stop delivering items. The publisher stops
	// promptly and may omit the terminal signal.
	Cancel()
}

// Subscriber is the consuming end of a stream.
type Subscriber[T any] interface {
	// OnSubscribe is called exactly once, before any other signal, with the
	// subscription the subscriber uses to request items.
	OnSubscribe(s Subscription)

	// OnNext delivers the next item. It is never called more times than the
	// cumulative demand requested, and never after a terminal signal.
	OnNext(item T)

	// OnComplete signals successful end of stream. Terminal; mutually
	// exclusive with OnError.
	OnComplete()

	// OnError signals stream failure. Terminal; mutually exclusive with
	// OnComplete.
	OnError(err error)
}

// Publisher is the producing end of a stream. A Publisher accepts at most one
// subscriber for its lifetime.
type Publisher[T any] interface {
	// Subscribe attaches the subscriber and delivers OnSubscribe to it.
	// A second call returns ErrAlreadySubscribed.
	Subscribe(s Subscriber[T]) error
}
