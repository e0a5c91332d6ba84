// Package transfertypes provides shared type definitions for the transfer module.
package transfertypes

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// StorageClass represents the S3 storage class for uploaded objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"
)

// UploadResult contains the result of a completed upload.
type UploadResult struct {
	// Key is the S3 object key that was uploaded
	Key string

	// Size is the number of bytes uploaded
	Size int64

	// ETag is the S3 entity tag for the uploaded object
	ETag string

	// VersionID is the version ID if versioning is enabled
	VersionID string

	// Duration is how long the upload took
	Duration time.Duration
}

// DownloadResult contains the result of a completed download.
type DownloadResult struct {
	// Key is the S3 object key that was downloaded
	Key string

	// Size is the number of bytes downloaded
	Size int64

	// ETag is the S3 entity tag for the downloaded object
	ETag string

	// Duration is how long the download took
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for the transfer Manager.
type ClientConfig struct {
	Region          string
	MaxRetries      int
	Timeout         time.Duration
	ChunkSize       int
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	Logger          *slog.Logger
	Filesystem      fs.Filesystem // Filesystem abstraction for file operations
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType   string
	ContentLength int64 // -1 when unknown
	Metadata      map[string]string
	StorageClass  StorageClass
	Listeners     []Listener
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	RangeSpec string // HTTP byte-range expression, e.g. "bytes=0-1023"
	Delimiter string // record delimiter for DownloadLines
	Listeners []Listener
}

// Option is a functional option for configuring the transfer Manager.
type (
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring upload operations.
	UploadOption func(*UploadOptionConfig)
	// DownloadOption is a functional option for configuring download operations.
	DownloadOption func(*DownloadOptionConfig)
)
