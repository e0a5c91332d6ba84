package transfer

import (
	"context"
	"sync"
	"time"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/engine"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/listener"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/notify"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// Download is the handle of an in-flight download. It resolves exactly once:
// either with a DownloadResult or with an error. Progress is observable at
// any time through Progress, and resolution through Wait or Done.
type Download struct {
	bucket  string
	key     string
	tracker *progress.Tracker

	done   chan struct{}
	result *transfertypes.DownloadResult
	err    error
}

func newDownload(bucket, key string, tracker *progress.Tracker) *Download {
	return &Download{
		bucket:  bucket,
		key:     key,
		tracker: tracker,
		done:    make(chan struct{}),
	}
}

// Progress returns the current progress snapshot. It never blocks and stays
// valid after the download has resolved.
func (d *Download) Progress() transfertypes.Snapshot {
	return d.tracker.Snapshot()
}

// Done returns a channel closed once the download has resolved.
func (d *Download) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the download resolves or the context is cancelled.
// Cancelling the wait does not cancel the download itself.
func (d *Download) Wait(ctx context.Context) (*transfertypes.DownloadResult, error) {
	select {
	case <-d.done:
		return d.result, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Download) resolve(result *transfertypes.DownloadResult, err error) {
	d.result = result
	d.err = err
	close(d.done)
}

// Download starts an asynchronous download delivered to sink as a
// flow-controlled byte stream: the object body is read one chunk per unit of
// demand the sink signals. Chunks passed to the sink are only valid for the
// duration of OnNext.
//
// The returned handle resolves when the download finishes; a validation
// failure resolves it immediately without starting the stream.
func (m *Manager) Download(
	ctx context.Context,
	bucket, key string,
	sink streaming.Subscriber[[]byte],
	opts ...transfertypes.DownloadOption,
) *Download {
	config := applyDownloadOptions(opts)

	if sink == nil {
		return m.failedDownload(bucket, key, config, transfererrors.
			NewObjectError("download", bucket, key, transfererrors.ErrInvalidInput).
			WithMessage("sink cannot be nil"))
	}

	watcher := newTerminalWatcher(sink)
	return m.startDownload(ctx, "download", bucket, key, config, watcher, watcher.Done(), watcher.TerminalErr, watcher.Abort)
}

// DownloadFile starts an asynchronous download writing the object to a local
// file created through the manager's filesystem.
//
// Example:
//
//	dl := mgr.DownloadFile(ctx, "my-bucket", "docs/report.pdf", "/tmp/report.pdf")
//	result, err := dl.Wait(ctx)
func (m *Manager) DownloadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...transfertypes.DownloadOption,
) *Download {
	config := applyDownloadOptions(opts)

	if path == "" {
		return m.failedDownload(bucket, key, config, transfererrors.
			NewObjectError("downloadFile", bucket, key, transfererrors.ErrInvalidInput).
			WithMessage("path cannot be empty"))
	}

	file, err := m.filesystem().Create(path)
	if err != nil {
		return m.failedDownload(bucket, key, config,
			transfererrors.NewObjectError("downloadFile", bucket, key, err))
	}

	sink := streaming.NewWriterSubscriber(file)
	dl := m.startDownload(ctx, "downloadFile", bucket, key, config, sink, sink.Done(), sink.Err, sink.Fail)

	go func() {
		<-dl.Done()
		_ = file.Close()
	}()

	return dl
}

// DownloadLines starts an asynchronous download split into delimiter-separated
// records, delivered to each in batches. The delimiter defaults to "\n" and is
// configurable with WithLineDelimiter. If each returns an error the download
// is cancelled and the handle resolves with that error.
//
// Example:
//
//	dl := mgr.DownloadLines(ctx, "my-bucket", "logs/app.log", func(lines []string) error {
//	    for _, line := range lines {
//	        fmt.Println(line)
//	    }
//	    return nil
//	})
//	_, err := dl.Wait(ctx)
func (m *Manager) DownloadLines(
	ctx context.Context,
	bucket, key string,
	each func(records []string) error,
	opts ...transfertypes.DownloadOption,
) *Download {
	config := applyDownloadOptions(opts)

	if each == nil {
		return m.failedDownload(bucket, key, config, transfererrors.
			NewObjectError("downloadLines", bucket, key, transfererrors.ErrInvalidInput).
			WithMessage("record callback cannot be nil"))
	}

	sink := streaming.NewSinkSubscriber(each)
	lines := streaming.NewLineSubscriber(sink, streaming.WithDelimiter(config.Delimiter))
	text := streaming.NewTextSubscriber(lines)

	return m.startDownload(ctx, "downloadLines", bucket, key, config, text, sink.Done(), sink.Err, sink.Fail)
}

// startDownload wires the progress instrumentation around head and runs the
// transfer engine. done and termErr describe the terminal state of the stream's
// final consumer: done closes once it has resolved, termErr reports its error
// and is only read after done is closed. abort resolves the consumer with an
// error when the engine fails while the stream is still live; it must be safe
// to call concurrently with stream delivery.
func (m *Manager) startDownload(
	ctx context.Context,
	op, bucket, key string,
	config *transfertypes.DownloadOptionConfig,
	head streaming.Subscriber[[]byte],
	done <-chan struct{},
	termErr func() error,
	abort func(error),
) *Download {
	tracker := progress.NewTracker(transfertypes.Snapshot{})
	dl := newDownload(bucket, key, tracker)
	invoker := listener.NewInvoker(config.Listeners, m.logger)
	tctx := transfertypes.TransferContext{
		Bucket:    bucket,
		Key:       key,
		Direction: transfertypes.DirectionDownload,
	}

	if err := validateTarget(bucket, key); err != nil {
		failDownload(dl, invoker, tctx, transfererrors.NewError(op, err).WithBucket(bucket).WithKey(key))
		return dl
	}

	invoker.TransferInitiated(tctx.WithSnapshot(tracker.Snapshot()))

	observed := notify.NewSubscriber(head, notify.Callbacks{
		OnBytes: func(n int) {
			snap := tracker.UpdateAndGet(func(b *transfertypes.SnapshotBuilder) {
				b.AddTransferredBytes(int64(n))
			})
			invoker.BytesTransferred(tctx.WithSnapshot(snap))
		},
	})

	start := time.Now()
	go func() {
		res, err := m.engine.GetObject(ctx, &engine.GetRequest{
			Bucket:    bucket,
			Key:       key,
			RangeSpec: config.RangeSpec,
			Sink:      observed,
			Done:      done,
			OnResponse: func(contentLength int64) {
				tracker.UpdateAndGet(func(b *transfertypes.SnapshotBuilder) {
					b.SetTotalBytes(contentLength)
				})
			},
		})
		if err != nil {
			// The stream never started or was abandoned; resolve the consumer
			// so it does not wait forever.
			select {
			case <-done:
			default:
				abort(err)
			}
			failDownload(dl, invoker, tctx, err)
			return
		}

		if serr := termErr(); serr != nil {
			failDownload(dl, invoker, tctx, transfererrors.NewObjectError(op, bucket, key, serr))
			return
		}

		snap := tracker.Snapshot()
		invoker.TransferComplete(tctx.WithSnapshot(snap))
		dl.resolve(&transfertypes.DownloadResult{
			Key:      key,
			Size:     snap.TransferredBytes(),
			ETag:     res.ETag,
			Duration: time.Since(start),
		}, nil)
	}()

	return dl
}

func (m *Manager) failedDownload(bucket, key string, config *transfertypes.DownloadOptionConfig, err error) *Download {
	dl := newDownload(bucket, key, progress.NewTracker(transfertypes.Snapshot{}))
	invoker := listener.NewInvoker(config.Listeners, m.logger)
	tctx := transfertypes.TransferContext{
		Bucket:    bucket,
		Key:       key,
		Direction: transfertypes.DirectionDownload,
	}
	failDownload(dl, invoker, tctx, err)
	return dl
}

func failDownload(dl *Download, invoker *listener.Invoker, tctx transfertypes.TransferContext, err error) {
	invoker.TransferFailed(transfertypes.FailedContext{
		TransferContext: tctx.WithSnapshot(dl.tracker.Snapshot()),
		Err:             err,
	})
	dl.resolve(nil, err)
}

func applyDownloadOptions(opts []transfertypes.DownloadOption) *transfertypes.DownloadOptionConfig {
	config := &transfertypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// terminalWatcher sits directly above a caller-supplied sink so the manager
// can observe when the stream reaches the sink: a terminal signal, a
// cancellation the sink issues through the subscription, or an Abort issued
// by the manager when the engine fails mid-stream. Every signal into the sink
// passes through mu, so an abort never interleaves with a chunk the producer
// is delivering.
type terminalWatcher struct {
	streaming.DelegatingSubscriber[[]byte, []byte]

	mu    sync.Mutex
	inner streaming.Subscription

	once      sync.Once
	done      chan struct{}
	err       error
	cancelled bool
}

func newTerminalWatcher(sink streaming.Subscriber[[]byte]) *terminalWatcher {
	return &terminalWatcher{
		DelegatingSubscriber: streaming.NewDelegatingSubscriber[[]byte, []byte](sink),
		done:                 make(chan struct{}),
	}
}

// OnSubscribe records the inner subscription before forwarding, so the sink's
// synchronous first Request does not race with Abort reading it.
func (w *terminalWatcher) OnSubscribe(s streaming.Subscription) {
	w.mu.Lock()
	w.inner = s
	w.mu.Unlock()
	w.DelegatingSubscriber.OnSubscribe(&watchedSubscription{inner: s, watcher: w})
}

func (w *terminalWatcher) OnNext(chunk []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Emit(chunk)
}

func (w *terminalWatcher) OnComplete() {
	w.mu.Lock()
	w.DelegatingSubscriber.OnComplete()
	w.mu.Unlock()
	w.settle(nil, false)
}

func (w *terminalWatcher) OnError(err error) {
	w.mu.Lock()
	w.DelegatingSubscriber.OnError(err)
	w.mu.Unlock()
	w.settle(err, false)
}

// Abort cancels the stream and fails the sink with err. Unlike OnError it may
// run on a different goroutine than the producer's delivery, so the downstream
// signal is serialized under mu. If the stream already settled the sink sees
// nothing further.
func (w *terminalWatcher) Abort(err error) {
	w.mu.Lock()
	inner := w.inner
	w.mu.Unlock()
	if inner != nil {
		inner.Cancel()
	}

	w.mu.Lock()
	w.DelegatingSubscriber.OnError(err)
	w.mu.Unlock()
	w.settle(err, false)
}

// Done returns a channel closed once the stream has settled at the sink.
func (w *terminalWatcher) Done() <-chan struct{} {
	return w.done
}

// TerminalErr reports how the stream settled. Only valid after Done is
// closed. A consumer-issued cancellation surfaces as context.Canceled.
func (w *terminalWatcher) TerminalErr() error {
	if w.cancelled {
		return context.Canceled
	}
	return w.err
}

func (w *terminalWatcher) settle(err error, cancelled bool) {
	w.once.Do(func() {
		w.err = err
		w.cancelled = cancelled
		close(w.done)
	})
}

// watchedSubscription forwards demand unchanged and reports cancellation to
// the watcher, since a cancelled stream may never see a terminal signal.
type watchedSubscription struct {
	inner   streaming.Subscription
	watcher *terminalWatcher
}

func (s *watchedSubscription) Request(n int64) {
	s.inner.Request(n)
}

func (s *watchedSubscription) Cancel() {
	s.inner.Cancel()
	s.watcher.settle(nil, true)
}
