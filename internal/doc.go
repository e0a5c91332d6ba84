// Package internal contains private implementation details for the transfer module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - engine: Bridges flow-controlled streams to the S3 API
//   - progress: Per-transfer progress snapshot tracking
//   - listener: Panic-isolated listener fan-out
//   - notify: Transparent byte-count stream observation
//   - validation: Input validation logic
//   - pool: Memory management optimizations
//   - s3api: S3 client interface subset for mocking
//   - testutil: Test doubles and integration harness
package internal
