// Package transfer provides functional options for configuring manager behavior.
// These options follow the functional options pattern for clean, composable configuration.
package transfer

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// WithRegion sets the AWS region for transfer operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed operations.
// Default is 3 retries. Set to 0 to disable retries.
func WithMaxRetries(maxRetries int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 requests.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithChunkSize sets the chunk size used when pumping object data through a
// transfer. Smaller chunks mean finer-grained progress events at the cost of
// more round trips through the stream. Default is 64KB.
func WithChunkSize(chunkSize int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if chunkSize > 0 {
			c.ChunkSize = chunkSize
		}
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets the filesystem abstraction used by UploadFile and
// DownloadFile. Default is the OS filesystem rooted at /.
func WithFilesystem(filesystem fs.Filesystem) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger used to report suppressed listener panics.
// A nil logger disables logging entirely, which is also the default.
func WithLogger(logger *slog.Logger) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Logger = logger
	}
}

// Upload options

// WithContentType sets the Content-Type for the uploaded object.
// If not specified, UploadFile detects the type from the file content and
// falls back to extension-based lookup.
func WithContentType(contentType string) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithContentLength declares the total size of the upload body in bytes.
// When set, the upload's progress snapshots report a known total and the
// request carries an explicit Content-Length.
func WithContentLength(size int64) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		if size >= 0 {
			c.ContentLength = size
		}
	}
}

// WithMetadata attaches user-defined metadata to the uploaded object.
func WithMetadata(metadata map[string]string) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.Metadata = metadata
	}
}

// WithStorageClass sets the S3 storage class for the uploaded object.
// Default is STANDARD.
func WithStorageClass(storageClass transfertypes.StorageClass) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithListeners attaches progress listeners to an upload. Listeners are
// invoked in registration order; see transfertypes.Listener for the rules
// implementations must follow.
func WithListeners(listeners ...transfertypes.Listener) transfertypes.UploadOption {
	return func(c *transfertypes.UploadOptionConfig) {
		c.Listeners = append(c.Listeners, listeners...)
	}
}

// Download options

// WithRange restricts a download to the given HTTP byte-range expression,
// for example "bytes=0-1023".
func WithRange(rangeSpec string) transfertypes.DownloadOption {
	return func(c *transfertypes.DownloadOptionConfig) {
		c.RangeSpec = rangeSpec
	}
}

// WithDownloadListeners attaches progress listeners to a download. Listeners
// are invoked in registration order; see transfertypes.Listener for the rules
// implementations must follow.
func WithDownloadListeners(listeners ...transfertypes.Listener) transfertypes.DownloadOption {
	return func(c *transfertypes.DownloadOptionConfig) {
		c.Listeners = append(c.Listeners, listeners...)
	}
}

// WithLineDelimiter sets the record delimiter DownloadLines splits on.
// Default is "\n". An empty delimiter is ignored.
func WithLineDelimiter(delimiter string) transfertypes.DownloadOption {
	return func(c *transfertypes.DownloadOptionConfig) {
		if delimiter != "" {
			c.Delimiter = delimiter
		}
	}
}
