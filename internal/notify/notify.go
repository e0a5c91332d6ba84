// Package notify provides transparent observation wrappers for byte streams.
// The wrappers interpose on a flow-controlled channel without altering the
// chunks, their ordering, or the demand and cancellation signals flowing
// through it.
package notify

import (
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
)

// Callbacks receives observations from a wrapped stream. Nil fields are skipped.
type Callbacks struct {
	// OnBytes is called with the size of each chunk, before the chunk is
	// forwarded downstream.
	OnBytes func(n int)
}

// Publisher wraps a byte publisher so every subscriber attached to it observes
// the stream through a notifying Subscriber. Used on the upload path, where
// the transfer engine subscribes to the caller's body.
type Publisher struct {
	inner streaming.Publisher[[]byte]
	cb    Callbacks
}

// NewPublisher creates a notifying wrapper around inner.
func NewPublisher(inner streaming.Publisher[[]byte], cb Callbacks) *Publisher {
	return &Publisher{inner: inner, cb: cb}
}

// Subscribe interposes the notifying subscriber and subscribes it upstream.
func (p *Publisher) Subscribe(s streaming.Subscriber[[]byte]) error {
	return p.inner.Subscribe(NewSubscriber(s, p.cb))
}

// Subscriber forwards a byte stream unchanged while reporting every chunk to
// the callbacks. Used on the download path, wrapping the caller's sink.
type Subscriber struct {
	streaming.DelegatingSubscriber[[]byte, []byte]

	cb Callbacks
}

// NewSubscriber creates a notifying pass-through in front of downstream.
func NewSubscriber(downstream streaming.Subscriber[[]byte], cb Callbacks) *Subscriber {
	return &Subscriber{
		DelegatingSubscriber: streaming.NewDelegatingSubscriber[[]byte, []byte](downstream),
		cb:                   cb,
	}
}

// OnNext reports the chunk size, then forwards the chunk unchanged.
// Reporting first guarantees a listener observing the resulting snapshot that
// the counted bytes are already on their way downstream.
func (s *Subscriber) OnNext(chunk []byte) {
	if s.cb.OnBytes != nil {
		s.cb.OnBytes(len(chunk))
	}
	s.Emit(chunk)
}
