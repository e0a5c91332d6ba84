package streaming_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
)

func TestSinkSubscriber_ConsumesOneAtATime(t *testing.T) {
	pub := testutil.NewChunkPublisher([]byte("a"), []byte("b"), []byte("c"))

	var got []string
	sink := streaming.NewSinkSubscriber(func(chunk []byte) error {
		got = append(got, string(chunk))
		return nil
	})

	require.NoError(t, pub.Subscribe(sink))
	require.NoError(t, sink.Wait(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, got)

	// Demand was issued one unit at a time.
	for _, n := range pub.Requests() {
		assert.Equal(t, int64(1), n)
	}
}

func TestSinkSubscriber_FunctionErrorCancelsStream(t *testing.T) {
	pub := testutil.NewChunkPublisher([]byte("a"), []byte("b"), []byte("c"))

	sinkErr := errors.New("sink full")
	calls := 0
	sink := streaming.NewSinkSubscriber(func(chunk []byte) error {
		calls++
		if calls == 2 {
			return sinkErr
		}
		return nil
	})

	require.NoError(t, pub.Subscribe(sink))

	assert.ErrorIs(t, sink.Wait(context.Background()), sinkErr)
	assert.Equal(t, 2, calls)
	assert.True(t, pub.Cancelled())
}

func TestSinkSubscriber_StreamError(t *testing.T) {
	streamErr := errors.New("upstream failed")
	pub := testutil.NewChunkPublisher([]byte("a")).FailWith(streamErr)

	sink := streaming.NewSinkSubscriber(func([]byte) error { return nil })
	require.NoError(t, pub.Subscribe(sink))

	<-sink.Done()
	assert.ErrorIs(t, sink.Err(), streamErr)
}

func TestSinkSubscriber_WaitHonorsContext(t *testing.T) {
	// A sink that never gets subscribed never resolves.
	sink := streaming.NewSinkSubscriber(func([]byte) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, sink.Wait(ctx), context.DeadlineExceeded)
}

func TestWriterSubscriber_WritesAndCounts(t *testing.T) {
	data := testutil.GenerateRandomData(16 * 3)
	pub := streaming.NewReaderPublisher(bytes.NewReader(data), 16)

	var buf bytes.Buffer
	sink := streaming.NewWriterSubscriber(&buf)
	require.NoError(t, pub.Subscribe(sink))

	n, err := sink.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, buf.Bytes())
	assert.Equal(t, int64(len(data)), sink.BytesWritten())
}

func TestWriterSubscriber_WriteErrorCancelsStream(t *testing.T) {
	writeErr := errors.New("no space left")
	pub := testutil.NewChunkPublisher([]byte("aaaa"), []byte("bbbb"))

	sink := streaming.NewWriterSubscriber(&failingWriter{err: writeErr})
	require.NoError(t, pub.Subscribe(sink))

	_, err := sink.Wait(context.Background())
	assert.ErrorIs(t, err, writeErr)
	assert.True(t, pub.Cancelled())
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

type recordedSubscription struct {
	requested int64
	cancelled bool
}

func (s *recordedSubscription) Request(n int64) { s.requested += n }
func (s *recordedSubscription) Cancel()         { s.cancelled = true }

func TestSinkSubscriber_FailCancelsAndResolves(t *testing.T) {
	sink := streaming.NewSinkSubscriber(func([]byte) error { return nil })
	sub := &recordedSubscription{}
	sink.OnSubscribe(sub)

	failErr := errors.New("producer abandoned stream")
	sink.Fail(failErr)

	<-sink.Done()
	assert.True(t, sub.cancelled)
	assert.ErrorIs(t, sink.Err(), failErr)

	// A terminal signal arriving afterwards does not override the resolution.
	sink.OnError(errors.New("late failure"))
	assert.ErrorIs(t, sink.Err(), failErr)
}

func TestSinkSubscriber_FailBeforeSubscribe(t *testing.T) {
	sink := streaming.NewSinkSubscriber(func([]byte) error { return nil })

	failErr := errors.New("never started")
	sink.Fail(failErr)

	assert.ErrorIs(t, sink.Wait(context.Background()), failErr)
}
