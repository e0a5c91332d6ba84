package streaming_test

import (
	"bytes"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
)

// steppingSubscriber requests a fixed amount of demand up front and records
// everything it receives without requesting more.
type steppingSubscriber struct {
	initial int64

	sub       streaming.Subscription
	chunks    [][]byte
	completed bool
	err       error
}

func (s *steppingSubscriber) OnSubscribe(sub streaming.Subscription) {
	s.sub = sub
	if s.initial > 0 {
		sub.Request(s.initial)
	}
}

func (s *steppingSubscriber) OnNext(chunk []byte) {
	c := make([]byte, len(chunk))
	copy(c, chunk)
	s.chunks = append(s.chunks, c)
}

func (s *steppingSubscriber) OnComplete() { s.completed = true }

func (s *steppingSubscriber) OnError(err error) { s.err = err }

func TestReaderPublisher_DeliversAllData(t *testing.T) {
	data := testutil.GenerateRandomData(10*16 + 7) // uneven tail chunk
	pub := streaming.NewReaderPublisher(bytes.NewReader(data), 16)

	collector := testutil.NewBytesCollector()
	require.NoError(t, pub.Subscribe(collector))

	assert.True(t, collector.Completed())
	require.NoError(t, collector.Err())

	var got []byte
	for _, chunk := range collector.Values() {
		assert.LessOrEqual(t, len(chunk), 16)
		got = append(got, chunk...)
	}
	assert.Equal(t, data, got)
}

func TestReaderPublisher_NeverExceedsDemand(t *testing.T) {
	data := testutil.GenerateRandomData(16 * 8)
	pub := streaming.NewReaderPublisher(bytes.NewReader(data), 16)

	sub := &steppingSubscriber{initial: 3}
	require.NoError(t, pub.Subscribe(sub))

	// Exactly the granted credit was consumed, and no terminal signal fired.
	assert.Len(t, sub.chunks, 3)
	assert.False(t, sub.completed)
	require.NoError(t, sub.err)

	// Granting more credit resumes delivery from where it stopped.
	sub.sub.Request(100)
	assert.Len(t, sub.chunks, 8)
	assert.True(t, sub.completed)

	var got []byte
	for _, chunk := range sub.chunks {
		got = append(got, chunk...)
	}
	assert.Equal(t, data, got)
}

func TestReaderPublisher_SecondSubscribeFails(t *testing.T) {
	pub := streaming.NewReaderPublisher(bytes.NewReader([]byte("data")), 16)

	require.NoError(t, pub.Subscribe(testutil.NewBytesCollector()))
	err := pub.Subscribe(testutil.NewBytesCollector())
	assert.ErrorIs(t, err, transfererrors.ErrAlreadySubscribed)
}

func TestReaderPublisher_InvalidDemand(t *testing.T) {
	t.Run("zero demand on subscribe", func(t *testing.T) {
		pub := streaming.NewReaderPublisher(bytes.NewReader([]byte("data")), 16)

		sub := &steppingSubscriber{initial: 0}
		require.NoError(t, pub.Subscribe(sub))

		sub.sub.Request(0)
		assert.ErrorIs(t, sub.err, transfererrors.ErrInvalidDemand)
		assert.Empty(t, sub.chunks)
	})

	t.Run("negative demand during delivery", func(t *testing.T) {
		pub := streaming.NewReaderPublisher(bytes.NewReader(testutil.GenerateRandomData(64)), 16)

		var sub *reentrantSubscriber
		sub = &reentrantSubscriber{onNext: func() { sub.sub.Request(-1) }}
		require.NoError(t, pub.Subscribe(sub))

		// The violation is deferred past the in-flight chunk, then terminal.
		assert.Equal(t, 1, sub.received)
		assert.ErrorIs(t, sub.err, transfererrors.ErrInvalidDemand)
	})
}

func TestReaderPublisher_CancelStopsDelivery(t *testing.T) {
	data := testutil.GenerateRandomData(16 * 8)
	pub := streaming.NewReaderPublisher(bytes.NewReader(data), 16)

	var sub *reentrantSubscriber
	sub = &reentrantSubscriber{
		initial: 100,
		onNext: func() {
			if sub.received == 2 {
				sub.sub.Cancel()
			}
		},
	}
	require.NoError(t, pub.Subscribe(sub))

	// Delivery stopped at the cancellation; no terminal signal after cancel.
	assert.Equal(t, 2, sub.received)
	assert.False(t, sub.completed)
	require.NoError(t, sub.err)
}

func TestReaderPublisher_ReadErrorFailsStream(t *testing.T) {
	readErr := stderrors.New("disk on fire")
	r := io.MultiReader(bytes.NewReader(testutil.GenerateRandomData(16)), &failingReader{err: readErr})

	pub := streaming.NewReaderPublisher(r, 16)
	collector := testutil.NewBytesCollector()
	require.NoError(t, pub.Subscribe(collector))

	assert.False(t, collector.Completed())
	assert.ErrorIs(t, collector.Err(), readErr)
	assert.Len(t, collector.Values(), 1)
}

func TestReaderPublisher_WithBufferPool(t *testing.T) {
	data := testutil.GenerateRandomData(16 * 4)

	t.Run("matching pool is used", func(t *testing.T) {
		bp := pool.NewChunkPool(16)
		pub := streaming.NewReaderPublisher(bytes.NewReader(data), 16).WithBufferPool(bp)

		collector := testutil.NewBytesCollector()
		require.NoError(t, pub.Subscribe(collector))

		assert.True(t, collector.Completed())
		var got []byte
		for _, chunk := range collector.Values() {
			got = append(got, chunk...)
		}
		assert.Equal(t, data, got)
	})

	t.Run("mismatched pool is ignored", func(t *testing.T) {
		bp := pool.NewChunkPool(32)
		pub := streaming.NewReaderPublisher(bytes.NewReader(data), 16).WithBufferPool(bp)

		collector := testutil.NewBytesCollector()
		require.NoError(t, pub.Subscribe(collector))
		assert.True(t, collector.Completed())
	})
}

// reentrantSubscriber issues calls back into the subscription from inside
// OnNext, exercising the trampoline in the drain loop.
type reentrantSubscriber struct {
	initial int64
	onNext  func()

	sub       streaming.Subscription
	received  int
	completed bool
	err       error
}

func (s *reentrantSubscriber) OnSubscribe(sub streaming.Subscription) {
	s.sub = sub
	n := s.initial
	if n <= 0 {
		n = 1
	}
	sub.Request(n)
}

func (s *reentrantSubscriber) OnNext(chunk []byte) {
	s.received++
	if s.onNext != nil {
		s.onNext()
	}
	if s.initial <= 0 {
		s.sub.Request(1)
	}
}

func (s *reentrantSubscriber) OnComplete() { s.completed = true }

func (s *reentrantSubscriber) OnError(err error) { s.err = err }

// failingReader always fails.
type failingReader struct {
	err error
}

func (f *failingReader) Read([]byte) (int, error) {
	return 0, f.err
}
