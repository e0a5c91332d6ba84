// Package testutil provides stream test doubles.
package testutil

import (
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
)

// ChunkPublisher emits a fixed sequence of byte chunks, honoring demand one
// chunk per unit. After the last chunk it signals completion, or the
// configured terminal error when one is set. It records every Request call
// so tests can assert demand accounting.
type ChunkPublisher struct {
	chunks   [][]byte
	finalErr error

	mu         sync.Mutex
	sub        streaming.Subscriber[[]byte]
	subscribed bool
	idx        int
	demand     int64
	emitting   bool
	cancelled  bool
	done       bool
	requests   []int64
}

// NewChunkPublisher creates a publisher that delivers the given chunks in
// order and then completes.
func NewChunkPublisher(chunks ...[]byte) *ChunkPublisher {
	return &ChunkPublisher{chunks: chunks}
}

// FailWith sets a terminal error emitted after the last chunk instead of
// completion.
func (p *ChunkPublisher) FailWith(err error) *ChunkPublisher {
	p.finalErr = err
	return p
}

// Requests returns a copy of the demand values received so far.
func (p *ChunkPublisher) Requests() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, len(p.requests))
	copy(out, p.requests)
	return out
}

// Cancelled reports whether the subscriber cancelled the stream.
func (p *ChunkPublisher) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Subscribe attaches the subscriber and begins delivery as demand arrives.
func (p *ChunkPublisher) Subscribe(s streaming.Subscriber[[]byte]) error {
	p.mu.Lock()
	if p.subscribed {
		p.mu.Unlock()
		return errors.ErrAlreadySubscribed
	}
	p.subscribed = true
	p.sub = s
	p.mu.Unlock()

	s.OnSubscribe(&chunkSubscription{p: p})
	return nil
}

type chunkSubscription struct {
	p *ChunkPublisher
}

func (s *chunkSubscription) Request(n int64) {
	p := s.p
	p.mu.Lock()
	p.requests = append(p.requests, n)
	if p.done || p.cancelled {
		p.mu.Unlock()
		return
	}
	if n <= 0 {
		p.done = true
		p.mu.Unlock()
		p.sub.OnError(errors.ErrInvalidDemand)
		return
	}
	p.demand += n
	if p.emitting {
		p.mu.Unlock()
		return
	}
	p.emitting = true
	p.mu.Unlock()

	p.drain()
}

func (s *chunkSubscription) Cancel() {
	s.p.mu.Lock()
	s.p.cancelled = true
	s.p.mu.Unlock()
}

func (p *ChunkPublisher) drain() {
	for {
		p.mu.Lock()
		if p.done || p.cancelled {
			p.emitting = false
			p.mu.Unlock()
			return
		}
		if p.idx >= len(p.chunks) {
			p.done = true
			p.emitting = false
			err := p.finalErr
			p.mu.Unlock()
			if err != nil {
				p.sub.OnError(err)
			} else {
				p.sub.OnComplete()
			}
			return
		}
		if p.demand == 0 {
			p.emitting = false
			p.mu.Unlock()
			return
		}
		chunk := p.chunks[p.idx]
		p.idx++
		p.demand--
		p.mu.Unlock()

		p.sub.OnNext(chunk)
	}
}

// CollectSubscriber accumulates every value a stream delivers, requesting one
// unit of demand at a time. Set Clone before subscribing when values must be
// copied out of reused buffers.
type CollectSubscriber[T any] struct {
	// Clone, when non-nil, is applied to each value before it is stored.
	Clone func(T) T

	mu        sync.Mutex
	sub       streaming.Subscription
	values    []T
	completed bool
	err       error
	done      chan struct{}
}

// NewCollectSubscriber creates a collector ready to subscribe.
func NewCollectSubscriber[T any]() *CollectSubscriber[T] {
	return &CollectSubscriber[T]{done: make(chan struct{})}
}

// NewBytesCollector creates a collector for byte-chunk streams that copies
// each chunk, since chunks are only valid for the duration of OnNext.
func NewBytesCollector() *CollectSubscriber[[]byte] {
	c := NewCollectSubscriber[[]byte]()
	c.Clone = func(b []byte) []byte {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	return c
}

// OnSubscribe stores the subscription and requests the first value.
func (c *CollectSubscriber[T]) OnSubscribe(sub streaming.Subscription) {
	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()
	sub.Request(1)
}

// OnNext records the value and requests the next one.
func (c *CollectSubscriber[T]) OnNext(v T) {
	c.mu.Lock()
	if c.Clone != nil {
		v = c.Clone(v)
	}
	c.values = append(c.values, v)
	sub := c.sub
	c.mu.Unlock()
	sub.Request(1)
}

// OnComplete records normal completion.
func (c *CollectSubscriber[T]) OnComplete() {
	c.mu.Lock()
	c.completed = true
	c.mu.Unlock()
	close(c.done)
}

// OnError records stream failure.
func (c *CollectSubscriber[T]) OnError(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	close(c.done)
}

// Values returns the collected values.
func (c *CollectSubscriber[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Completed reports whether the stream finished normally.
func (c *CollectSubscriber[T]) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Err returns the terminal error, if any.
func (c *CollectSubscriber[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done returns a channel closed once the stream terminates.
func (c *CollectSubscriber[T]) Done() <-chan struct{} {
	return c.done
}
