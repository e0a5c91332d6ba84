// Package engine provides unit tests for the streaming transfer engine.
package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/testutil"
)

func TestEngine_New_ChunkSize(t *testing.T) {
	assert.Equal(t, 1024, New(&testutil.MockS3Client{}, 1024).ChunkSize())
	assert.Equal(t, pool.DefaultChunkSize, New(&testutil.MockS3Client{}, 0).ChunkSize())
	assert.Equal(t, pool.DefaultChunkSize, New(&testutil.MockS3Client{}, -5).ChunkSize())
}

func TestEngine_PutObject(t *testing.T) {
	ctx := context.Background()
	content := []byte("chunked upload body")

	var body []byte
	var input *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			input = params
			var err error
			body, err = io.ReadAll(params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{
				ETag:      testutil.StringPtr(`"etag"`),
				VersionId: testutil.StringPtr("v2"),
			}, nil
		},
	}

	eng := New(mock, 8)
	result, err := eng.PutObject(ctx, &PutRequest{
		Bucket:        "test-bucket",
		Key:           "test-key",
		Body:          testutil.NewChunkPublisher(content[:10], content[10:]),
		ContentLength: int64(len(content)),
		ContentType:   "text/plain",
	})

	require.NoError(t, err)
	assert.Equal(t, content, body)
	assert.Equal(t, `"etag"`, result.ETag)
	assert.Equal(t, "v2", result.VersionID)
	require.NotNil(t, input.ContentLength)
	assert.Equal(t, int64(len(content)), *input.ContentLength)
}

func TestEngine_PutObject_UnknownLength(t *testing.T) {
	ctx := context.Background()

	var input *s3.PutObjectInput
	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			input = params
			_, _ = io.ReadAll(params.Body)
			return &s3.PutObjectOutput{}, nil
		},
	}

	eng := New(mock, 8)
	_, err := eng.PutObject(ctx, &PutRequest{
		Bucket:        "test-bucket",
		Key:           "test-key",
		Body:          testutil.NewChunkPublisher([]byte("data")),
		ContentLength: -1,
	})

	require.NoError(t, err)
	assert.Nil(t, input.ContentLength)
}

func TestEngine_PutObject_StreamError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("source failed")

	pub := testutil.NewChunkPublisher([]byte("partial"))
	pub.FailWith(sentinel)

	mock := &testutil.MockS3Client{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			// Reading the body surfaces the stream failure.
			_, err := io.ReadAll(params.Body)
			return nil, err
		},
	}

	eng := New(mock, 8)
	_, err := eng.PutObject(ctx, &PutRequest{
		Bucket:        "test-bucket",
		Key:           "test-key",
		Body:          pub,
		ContentLength: -1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestEngine_GetObject(t *testing.T) {
	ctx := context.Background()
	data := []byte("downloaded object content, pumped in small chunks")

	var input *s3.GetObjectInput
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			input = params
			return testutil.CreateGetObjectOutput(data, "text/plain"), nil
		},
	}

	var reported int64
	sink := testutil.NewBytesCollector()

	eng := New(mock, 16)
	result, err := eng.GetObject(ctx, &GetRequest{
		Bucket:     "test-bucket",
		Key:        "test-key",
		RangeSpec:  "bytes=0-49",
		Sink:       sink,
		Done:       sink.Done(),
		OnResponse: func(n int64) { reported = n },
	})

	require.NoError(t, err)
	require.NotNil(t, input.Range)
	assert.Equal(t, "bytes=0-49", *input.Range)
	assert.Equal(t, int64(len(data)), reported)
	assert.Equal(t, int64(len(data)), result.ContentLength)
	assert.Equal(t, testutil.CalculateETag(data), result.ETag)
	assert.Equal(t, data, bytes.Join(sink.Values(), nil))
	assert.True(t, sink.Completed())
}

func TestEngine_GetObject_NotFound(t *testing.T) {
	ctx := context.Background()

	mock := &testutil.MockS3Client{
		GetObjectFunc: func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, errors.New("NoSuchKey: The specified key does not exist")
		},
	}

	eng := New(mock, 16)
	_, err := eng.GetObject(ctx, &GetRequest{
		Bucket: "test-bucket",
		Key:    "missing",
		Sink:   testutil.NewBytesCollector(),
	})

	assert.ErrorIs(t, err, transfererrors.ErrObjectNotFound)
}

func TestEngine_GetObject_APIError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("access denied")

	mock := &testutil.MockS3Client{
		GetObjectFunc: func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, sentinel
		},
	}

	eng := New(mock, 16)
	_, err := eng.GetObject(ctx, &GetRequest{
		Bucket: "test-bucket",
		Key:    "test-key",
		Sink:   testutil.NewBytesCollector(),
	})

	assert.ErrorIs(t, err, sentinel)
}
