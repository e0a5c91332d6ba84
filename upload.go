package transfer

import (
	"context"
	"mime"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/engine"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/listener"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/notify"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/progress"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// Upload is the handle of an in-flight upload. It resolves exactly once:
// either with an UploadResult or with an error. Progress is observable at any
// time through Progress, and resolution through Wait or Done.
type Upload struct {
	bucket  string
	key     string
	tracker *progress.Tracker

	done   chan struct{}
	result *transfertypes.UploadResult
	err    error
}

func newUpload(bucket, key string, tracker *progress.Tracker) *Upload {
	return &Upload{
		bucket:  bucket,
		key:     key,
		tracker: tracker,
		done:    make(chan struct{}),
	}
}

// Progress returns the current progress snapshot. It never blocks and stays
// valid after the upload has resolved.
func (u *Upload) Progress() transfertypes.Snapshot {
	return u.tracker.Snapshot()
}

// Done returns a channel closed once the upload has resolved.
func (u *Upload) Done() <-chan struct{} {
	return u.done
}

// Wait blocks until the upload resolves or the context is cancelled.
// Cancelling the wait does not cancel the upload itself.
func (u *Upload) Wait(ctx context.Context) (*transfertypes.UploadResult, error) {
	select {
	case <-u.done:
		return u.result, u.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (u *Upload) resolve(result *transfertypes.UploadResult, err error) {
	u.result = result
	u.err = err
	close(u.done)
}

// Upload starts an asynchronous upload of the byte stream produced by body.
// The body is consumed with bounded buffering: chunks are pulled on demand as
// the request body drains them. The returned handle resolves when the upload
// finishes; a validation failure resolves it immediately without starting the
// stream.
//
// Example:
//
//	up := mgr.Upload(ctx, "my-bucket", "logs/app.log", body,
//	    transfer.WithContentLength(size),
//	    transfer.WithListeners(myListener),
//	)
//	result, err := up.Wait(ctx)
func (m *Manager) Upload(
	ctx context.Context,
	bucket, key string,
	body streaming.Publisher[[]byte],
	opts ...transfertypes.UploadOption,
) *Upload {
	config := &transfertypes.UploadOptionConfig{
		ContentLength: -1,
		StorageClass:  transfertypes.StorageClassStandard,
	}
	for _, opt := range opts {
		opt(config)
	}

	builder := transfertypes.Snapshot{}.ToBuilder()
	if config.ContentLength >= 0 {
		builder.SetTotalBytes(config.ContentLength)
	}
	tracker := progress.NewTracker(builder.Build())

	up := newUpload(bucket, key, tracker)
	invoker := listener.NewInvoker(config.Listeners, m.logger)
	tctx := transfertypes.TransferContext{
		Bucket:    bucket,
		Key:       key,
		Direction: transfertypes.DirectionUpload,
	}

	if err := validateTarget(bucket, key); err != nil {
		failUpload(up, invoker, tctx, transfererrors.NewError("upload", err).WithBucket(bucket).WithKey(key))
		return up
	}
	if body == nil {
		err := transfererrors.NewObjectError("upload", bucket, key, transfererrors.ErrInvalidInput).
			WithMessage("body cannot be nil")
		failUpload(up, invoker, tctx, err)
		return up
	}

	invoker.TransferInitiated(tctx.WithSnapshot(tracker.Snapshot()))

	observed := notify.NewPublisher(body, notify.Callbacks{
		OnBytes: func(n int) {
			snap := tracker.UpdateAndGet(func(b *transfertypes.SnapshotBuilder) {
				b.AddTransferredBytes(int64(n))
			})
			invoker.BytesTransferred(tctx.WithSnapshot(snap))
		},
	})

	start := time.Now()
	go func() {
		res, err := m.engine.PutObject(ctx, &engine.PutRequest{
			Bucket:        bucket,
			Key:           key,
			Body:          observed,
			ContentLength: config.ContentLength,
			ContentType:   config.ContentType,
			Metadata:      config.Metadata,
			StorageClass:  string(config.StorageClass),
		})
		if err != nil {
			failUpload(up, invoker, tctx, err)
			return
		}

		snap := tracker.Snapshot()
		invoker.TransferComplete(tctx.WithSnapshot(snap))
		up.resolve(&transfertypes.UploadResult{
			Key:       key,
			Size:      snap.TransferredBytes(),
			ETag:      res.ETag,
			VersionID: res.VersionID,
			Duration:  time.Since(start),
		}, nil)
	}()

	return up
}

// UploadFile starts an asynchronous upload of a local file. The file size is
// taken from the filesystem so progress snapshots report a known total, and
// the content type is detected from the file content unless set explicitly.
//
// Example:
//
//	up := mgr.UploadFile(ctx, "my-bucket", "docs/report.pdf", "/path/to/report.pdf",
//	    transfer.WithMetadata(map[string]string{"Author": "Jane Doe"}),
//	)
//	result, err := up.Wait(ctx)
func (m *Manager) UploadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...transfertypes.UploadOption,
) *Upload {
	config := &transfertypes.UploadOptionConfig{ContentLength: -1}
	for _, opt := range opts {
		opt(config)
	}
	fail := func(err error) *Upload {
		up := newUpload(bucket, key, progress.NewTracker(transfertypes.Snapshot{}))
		invoker := listener.NewInvoker(config.Listeners, m.logger)
		tctx := transfertypes.TransferContext{
			Bucket:    bucket,
			Key:       key,
			Direction: transfertypes.DirectionUpload,
		}
		failUpload(up, invoker, tctx, err)
		return up
	}

	if path == "" {
		return fail(transfererrors.NewObjectError("uploadFile", bucket, key, transfererrors.ErrInvalidInput).
			WithMessage("path cannot be empty"))
	}

	fsys := m.filesystem()

	info, err := fsys.Stat(path)
	if err != nil {
		return fail(transfererrors.NewObjectError("uploadFile", bucket, key, err))
	}
	if info.IsDir() {
		return fail(transfererrors.NewObjectError("uploadFile", bucket, key, transfererrors.ErrInvalidInput).
			WithMessage("path points to a directory, not a file"))
	}

	file, err := fsys.Open(path)
	if err != nil {
		return fail(transfererrors.NewObjectError("uploadFile", bucket, key, err))
	}

	// Computed options go first so explicit caller options win.
	derived := []transfertypes.UploadOption{WithContentLength(info.Size())}
	if config.ContentType == "" {
		derived = append(derived, WithContentType(m.detectContentType(path)))
	}

	body := streaming.NewReaderPublisher(file, m.engine.ChunkSize())
	up := m.Upload(ctx, bucket, key, body, append(derived, opts...)...)

	go func() {
		<-up.Done()
		_ = file.Close()
	}()

	return up
}

func failUpload(up *Upload, invoker *listener.Invoker, tctx transfertypes.TransferContext, err error) {
	invoker.TransferFailed(transfertypes.FailedContext{
		TransferContext: tctx.WithSnapshot(up.tracker.Snapshot()),
		Err:             err,
	})
	up.resolve(nil, err)
}

// validateTarget checks the bucket and key of a transfer before it starts.
func validateTarget(bucket, key string) error {
	if err := validation.ValidateBucket(bucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}
	return nil
}

// detectContentType determines the content type using mimetype where possible,
// falling back to extension-based lookup when the path is not a local file.
func (m *Manager) detectContentType(path string) string {
	fsys := m.filesystem()

	info, err := fsys.Stat(path)
	if err != nil || info.IsDir() {
		return detectContentTypeFromExtension(path)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return detectContentTypeFromExtension(path)
	}
	defer file.Close()

	// Read first 512 bytes for content detection
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return detectContentTypeFromExtension(path)
}

func detectContentTypeFromExtension(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return DefaultContentType
}
