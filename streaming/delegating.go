package streaming

// DelegatingSubscriber is the base for transforms that sit between an upstream
// publisher of In items and a downstream subscriber of Out items. It forwards
// OnSubscribe and the terminal signals downstream unchanged and guards the
// terminal invariants: at most one terminal signal is forwarded, and nothing is
// emitted after it.
//
// Concrete transforms embed DelegatingSubscriber and implement OnNext,
// reshaping each upstream item into zero or more downstream emissions via Emit.
//
// No locking is used here: callers must confine all signals to the stream's
// sequential delivery path, or serialize them externally.
type DelegatingSubscriber[In, Out any] struct {
	downstream Subscriber[Out]
	done       bool
}

// NewDelegatingSubscriber returns a delegating base forwarding to downstream.
func NewDelegatingSubscriber[In, Out any](downstream Subscriber[Out]) DelegatingSubscriber[In, Out] {
	return DelegatingSubscriber[In, Out]{downstream: downstream}
}

// OnSubscribe forwards the subscription downstream. Demand requested by the
// downstream subscriber flows through it directly to the upstream publisher.
func (d *DelegatingSubscriber[In, Out]) OnSubscribe(s Subscription) {
	d.downstream.OnSubscribe(s)
}

// Emit delivers an item downstream, unless a terminal signal was already
// forwarded.
func (d *DelegatingSubscriber[In, Out]) Emit(item Out) {
	if d.done {
		return
	}
	d.downstream.OnNext(item)
}

// OnComplete forwards completion downstream, at most once.
func (d *DelegatingSubscriber[In, Out]) OnComplete() {
	if d.done {
		return
	}
	d.done = true
	d.downstream.OnComplete()
}

// OnError forwards the failure downstream, at most once.
func (d *DelegatingSubscriber[In, Out]) OnError(err error) {
	if d.done {
		return
	}
	d.done = true
	d.downstream.OnError(err)
}

// Terminated reports whether a terminal signal has been forwarded downstream.
func (d *DelegatingSubscriber[In, Out]) Terminated() bool {
	return d.done
}
