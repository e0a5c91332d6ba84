// Package pool provides memory management optimizations.
// This includes buffer pooling to reduce allocations on the chunked data path.
//
// The pool package helps optimize performance for high-throughput transfers
// by reusing the per-chunk buffers the streaming pump reads into.
package pool
