package streaming

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// SinkSubscriber is a terminal subscriber that feeds every item to a caller
// function, requesting items one at a time so upstream buffering stays bounded.
// It records the stream's terminal state and exposes it through Done and Wait.
//
// If the sink function returns an error, the subscriber cancels the upstream
// subscription and resolves with that error. Fail resolves the sink from
// outside the stream, for producers that abandon the stream without a terminal
// signal.
type SinkSubscriber[T any] struct {
	fn func(T) error

	mu  sync.Mutex
	sub Subscription

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// NewSinkSubscriber creates a sink delivering every item to fn.
func NewSinkSubscriber[T any](fn func(T) error) *SinkSubscriber[T] {
	return &SinkSubscriber[T]{
		fn:   fn,
		done: make(chan struct{}),
	}
}

// OnSubscribe stores the subscription and requests the first item.
func (s *SinkSubscriber[T]) OnSubscribe(sub Subscription) {
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	sub.Request(1)
}

// OnNext delivers the item to the sink function and requests the next one.
func (s *SinkSubscriber[T]) OnNext(item T) {
	if err := s.fn(item); err != nil {
		s.Cancel()
		s.terminate(err)
		return
	}
	s.subscription().Request(1)
}

// OnComplete resolves the sink successfully.
func (s *SinkSubscriber[T]) OnComplete() {
	s.terminate(nil)
}

// OnError resolves the sink with the stream failure.
func (s *SinkSubscriber[T]) OnError(err error) {
	s.terminate(err)
}

// Cancel cancels the upstream subscription, if any.
func (s *SinkSubscriber[T]) Cancel() {
	if sub := s.subscription(); sub != nil {
		sub.Cancel()
	}
}

// Fail cancels the upstream subscription, if any, and resolves the sink with
// err. Safe to call from any goroutine; a no-op once the sink has resolved.
func (s *SinkSubscriber[T]) Fail(err error) {
	s.Cancel()
	s.terminate(err)
}

func (s *SinkSubscriber[T]) subscription() Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub
}

// Done returns a channel closed once the sink has resolved.
func (s *SinkSubscriber[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error. Valid only after Done is closed.
func (s *SinkSubscriber[T]) Err() error {
	return s.err
}

// Wait blocks until the sink resolves or the context is cancelled. On context
// cancellation it cancels the upstream subscription and returns the context
// error.
func (s *SinkSubscriber[T]) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		s.Cancel()
		return ctx.Err()
	}
}

func (s *SinkSubscriber[T]) terminate(err error) {
	s.closeOnce.Do(func() {
		s.err = err
		close(s.done)
	})
}

// WriterSubscriber is a SinkSubscriber that copies every byte chunk into an
// io.Writer and counts the bytes written. A write error cancels the stream.
type WriterSubscriber struct {
	*SinkSubscriber[[]byte]

	written atomic.Int64
}

// NewWriterSubscriber creates a sink writing every chunk to w.
func NewWriterSubscriber(w io.Writer) *WriterSubscriber {
	ws := &WriterSubscriber{}
	ws.SinkSubscriber = NewSinkSubscriber(func(chunk []byte) error {
		n, err := w.Write(chunk)
		ws.written.Add(int64(n))
		return err
	})
	return ws
}

// BytesWritten returns the number of bytes written so far. Safe to call from
// any goroutine.
func (w *WriterSubscriber) BytesWritten() int64 {
	return w.written.Load()
}

// Wait blocks until the stream resolves or the context is cancelled, returning
// the byte count alongside the terminal error.
func (w *WriterSubscriber) Wait(ctx context.Context) (int64, error) {
	err := w.SinkSubscriber.Wait(ctx)
	return w.written.Load(), err
}
