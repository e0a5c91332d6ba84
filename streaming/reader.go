package streaming

import (
	"io"
	"sync"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/pool"
)

// ReaderPublisher adapts an io.Reader into a Publisher of byte chunks,
// honoring credit-based flow control: it reads and delivers one chunk per unit
// of outstanding demand and never emits beyond the cumulative credit granted.
//
// Delivery happens on the goroutine that signals demand. Re-entrant Request
// calls made from inside OnNext only extend the credit of the drain loop
// already running, so subscriber callbacks are always invoked sequentially.
//
// The chunk passed to OnNext is only valid until OnNext returns; subscribers
// that retain the data must copy it. This keeps the chunk buffers eligible for
// pooling via WithBufferPool.
type ReaderPublisher struct {
	r         io.Reader
	chunkSize int
	bufs      *pool.ChunkPool

	mu         sync.Mutex
	sub        Subscriber[[]byte]
	subscribed bool
	demand     int64
	emitting   bool
	cancelled  bool
	done       bool
	pendingErr error
}

// NewReaderPublisher creates a publisher that emits chunks of up to chunkSize
// bytes read from r. Non-positive chunk sizes fall back to pool.DefaultChunkSize.
func NewReaderPublisher(r io.Reader, chunkSize int) *ReaderPublisher {
	if chunkSize <= 0 {
		chunkSize = pool.DefaultChunkSize
	}
	return &ReaderPublisher{
		r:         r,
		chunkSize: chunkSize,
	}
}

// WithBufferPool makes the publisher draw its chunk buffers from bp instead of
// allocating per read. The pool's buffer size must match the chunk size.
func (p *ReaderPublisher) WithBufferPool(bp *pool.ChunkPool) *ReaderPublisher {
	if bp != nil && bp.Size() == p.chunkSize {
		p.bufs = bp
	}
	return p
}

// Subscribe attaches the subscriber. A second call returns ErrAlreadySubscribed.
func (p *ReaderPublisher) Subscribe(s Subscriber[[]byte]) error {
	p.mu.Lock()
	if p.subscribed {
		p.mu.Unlock()
		return transfererrors.ErrAlreadySubscribed
	}
	p.subscribed = true
	p.sub = s
	p.mu.Unlock()

	s.OnSubscribe(&readerSubscription{p: p})
	return nil
}

type readerSubscription struct {
	p *ReaderPublisher
}

func (s *readerSubscription) Request(n int64) { s.p.request(n) }

func (s *readerSubscription) Cancel() { s.p.cancel() }

func (p *ReaderPublisher) request(n int64) {
	p.mu.Lock()
	if p.done || p.cancelled {
		p.mu.Unlock()
		return
	}
	if n <= 0 {
		if p.emitting {
			// Defer the failure so it is not delivered re-entrantly from
			// inside a subscriber callback.
			p.pendingErr = transfererrors.ErrInvalidDemand
			p.mu.Unlock()
			return
		}
		p.done = true
		sub := p.sub
		p.mu.Unlock()
		sub.OnError(transfererrors.ErrInvalidDemand)
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

func (p *ReaderPublisher) cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
}

// drain reads and delivers chunks while demand remains. It runs on at most one
// goroutine at a time, guarded by the emitting flag.
func (p *ReaderPublisher) drain() {
	for {
		p.mu.Lock()
		if p.pendingErr != nil {
			p.done = true
			p.emitting = false
			err := p.pendingErr
			sub := p.sub
			p.mu.Unlock()
			sub.OnError(err)
			return
		}
		if p.done || p.cancelled || p.demand == 0 {
			p.emitting = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		buf := p.getBuf()
		n, err := p.r.Read(buf)
		if n > 0 {
			p.mu.Lock()
			if p.done || p.cancelled {
				p.emitting = false
				p.mu.Unlock()
				p.putBuf(buf)
				return
			}
			p.demand--
			sub := p.sub
			p.mu.Unlock()
			sub.OnNext(buf[:n])
		}
		p.putBuf(buf)

		if err != nil {
			p.mu.Lock()
			if p.done || p.cancelled {
				p.emitting = false
				p.mu.Unlock()
				return
			}
			p.done = true
			p.emitting = false
			sub := p.sub
			p.mu.Unlock()
			if err == io.EOF {
				sub.OnComplete()
			} else {
				sub.OnError(err)
			}
			return
		}
	}
}

func (p *ReaderPublisher) getBuf() []byte {
	if p.bufs != nil {
		return p.bufs.Get()
	}
	return make([]byte, p.chunkSize)
}

func (p *ReaderPublisher) putBuf(buf []byte) {
	if p.bufs != nil {
		p.bufs.Put(buf)
	}
}
