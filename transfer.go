// Package transfer provides manager initialization and configuration.
//
// The Manager provides a high-level, asynchronous interface for moving
// objects to and from Amazon S3. Uploads and downloads run in the
// background and hand back a handle that resolves when the transfer
// finishes; progress is observable at any time through snapshots and
// event-driven listeners.
package transfer

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	transfererrors "github.com/input-output-hk/catalyst-forge-libs/aws/transfer/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/engine"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// DefaultContentType is the content type applied to uploads when detection
// is not possible.
const DefaultContentType = "application/octet-stream"

// Manager coordinates asynchronous S3 transfers. It is safe for concurrent
// use; any number of transfers may be in flight at once.
type Manager struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// engine executes the actual network transfers
	engine *engine.Engine

	// logger receives suppressed listener panics and nothing else
	logger *slog.Logger

	// mu protects concurrent access to manager configuration
	mu sync.RWMutex

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem
}

// New creates a new transfer Manager with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	mgr, err := transfer.New(
//	    transfer.WithRegion("us-west-2"),
//	    transfer.WithMaxRetries(3),
//	)
func New(opts ...transfertypes.Option) (*Manager, error) {
	clientCfg := &transfertypes.ClientConfig{
		MaxRetries: 3, // Default retry count
		Timeout:    0, // No timeout by default
		ChunkSize:  pool.DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	// Start with default AWS configuration or use custom config
	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, transfererrors.NewError("manager initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	// Handle custom HTTP client for timeout
	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	// Initialize filesystem - use provided one or default to OS filesystem
	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		// Default to OS filesystem rooted at /
		filesystem = billy.NewOSFS("/")
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		s3Client: s3Client,
		config:   cfg,
		engine:   engine.New(s3Client, clientCfg.ChunkSize),
		logger:   logger,
		fs:       filesystem,
	}, nil
}

// NewWithClient creates a new transfer Manager with a custom S3API
// implementation. This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...transfertypes.Option) *Manager {
	clientCfg := &transfertypes.ClientConfig{
		ChunkSize: pool.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/") // Default to OS filesystem
	}
	logger := clientCfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		s3Client: s3Client,
		config:   aws.Config{},
		engine:   engine.New(s3Client, clientCfg.ChunkSize),
		logger:   logger,
		fs:       filesystem,
	}
}

// SetFilesystem sets the filesystem implementation for the manager.
// This is useful for testing or when the filesystem needs to be changed after creation.
func (m *Manager) SetFilesystem(filesystem fs.Filesystem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fs = filesystem
}

func (m *Manager) filesystem() fs.Filesystem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fs
}

// Close releases any resources held by the manager.
// Currently a no-op but included for future extensibility.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return nil
}
