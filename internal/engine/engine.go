// Package engine performs the actual S3 network transfer for a
// flow-controlled byte stream. Uploads drain a publisher into the request
// body; downloads pump the response body into a subscriber, one chunk per
// unit of demand.
//
// The engine owns the blocking I/O; the streaming core it drives stays
// callback-only.
package engine

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/streaming"
)

// Engine executes uploads and downloads against S3.
type Engine struct {
	client    s3api.S3API
	chunkSize int
	bufs      *pool.ChunkPool
}

// New creates an engine over the given S3 client. Non-positive chunk sizes
// fall back to pool.DefaultChunkSize.
func New(client s3api.S3API, chunkSize int) *Engine {
	if chunkSize <= 0 {
		chunkSize = pool.DefaultChunkSize
	}
	return &Engine{
		client:    client,
		chunkSize: chunkSize,
		bufs:      pool.NewChunkPool(chunkSize),
	}
}

// ChunkSize returns the chunk size the engine pumps data with.
func (e *Engine) ChunkSize() int {
	return e.chunkSize
}

// PutRequest describes an upload whose body is a flow-controlled byte stream.
type PutRequest struct {
	Bucket string
	Key    string

	// Body supplies the object content. The engine subscribes to it exactly once.
	Body streaming.Publisher[[]byte]

	// ContentLength is the body size in bytes, or -1 when unknown.
	ContentLength int64

	ContentType  string
	Metadata     map[string]string
	StorageClass string
}

// PutResult reports the outcome of a completed upload.
type PutResult struct {
	ETag      string
	VersionID string
}

// PutObject uploads the body stream to S3. The body is drained on a separate
// goroutine with demand issued one chunk at a time, so buffering between the
// stream and the request body stays bounded at a single chunk.
func (e *Engine) PutObject(ctx context.Context, req *PutRequest) (*PutResult, error) {
	pr, pw := io.Pipe()
	sink := streaming.NewWriterSubscriber(pw)

	go func() {
		if err := req.Body.Subscribe(sink); err != nil {
			pw.CloseWithError(err)
			return
		}
		_, err := sink.Wait(ctx)
		// A nil error closes the pipe with io.EOF, completing the request body.
		pw.CloseWithError(err)
	}()

	input := &s3.PutObjectInput{
		Bucket: aws.String(req.Bucket),
		Key:    aws.String(req.Key),
		Body:   pr,
	}
	if req.ContentLength >= 0 {
		input.ContentLength = aws.Int64(req.ContentLength)
	}
	if req.ContentType != "" {
		input.ContentType = aws.String(req.ContentType)
	}
	if len(req.Metadata) > 0 {
		input.Metadata = req.Metadata
	}
	if req.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(req.StorageClass)
	}

	output, err := e.client.PutObject(ctx, input)
	if err != nil {
		// Unblock the pump; its next write fails and cancels the stream.
		pr.CloseWithError(err)
		return nil, errors.NewObjectError("putObject", req.Bucket, req.Key, err)
	}

	return &PutResult{
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionId),
	}, nil
}

// GetRequest describes a download delivered to a flow-controlled subscriber.
type GetRequest struct {
	Bucket string
	Key    string

	// RangeSpec is an optional HTTP byte-range expression.
	RangeSpec string

	// Sink receives the object content as a chunk stream.
	Sink streaming.Subscriber[[]byte]

	// Done, when non-nil, is closed by the sink once it reaches its terminal
	// state; the engine keeps the response body open until then.
	Done <-chan struct{}

	// OnResponse is invoked once with the object size, before any chunk is
	// delivered, when the response reports a content length.
	OnResponse func(contentLength int64)
}

// GetResult reports the outcome of a completed download.
type GetResult struct {
	ETag          string
	ContentLength int64
}

// GetObject downloads the object and pumps its body into the sink, reading
// one chunk per unit of demand the sink signals.
func (e *Engine) GetObject(ctx context.Context, req *GetRequest) (*GetResult, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(req.Bucket),
		Key:    aws.String(req.Key),
	}
	if req.RangeSpec != "" {
		input.Range = aws.String(req.RangeSpec)
	}

	output, err := e.client.GetObject(ctx, input)
	if err != nil {
		if isObjectNotFound(err) {
			return nil, errors.NewObjectError("getObject", req.Bucket, req.Key, errors.ErrObjectNotFound)
		}
		return nil, errors.NewObjectError("getObject", req.Bucket, req.Key, err)
	}
	defer output.Body.Close()

	contentLength := int64(-1)
	if output.ContentLength != nil {
		contentLength = *output.ContentLength
		if req.OnResponse != nil {
			req.OnResponse(contentLength)
		}
	}

	publisher := streaming.NewReaderPublisher(output.Body, e.chunkSize).WithBufferPool(e.bufs)
	if err := publisher.Subscribe(req.Sink); err != nil {
		return nil, errors.NewObjectError("getObject", req.Bucket, req.Key, err)
	}

	// Sinks that request synchronously are fully pumped by now; wait for the
	// rest before the deferred body close.
	if req.Done != nil {
		select {
		case <-req.Done:
		case <-ctx.Done():
			return nil, errors.NewObjectError("getObject", req.Bucket, req.Key, ctx.Err())
		}
	}

	return &GetResult{
		ETag:          aws.ToString(output.ETag),
		ContentLength: contentLength,
	}, nil
}

// isObjectNotFound checks if an error indicates that an object was not found.
func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound")
}
