// Package transfer provides a high-level Go module for asynchronous AWS S3
// transfers. It wraps AWS SDK v2 behind a manager that starts uploads and
// downloads in the background and returns handles exposing completion,
// progress snapshots, and event-driven progress listeners.
//
// Object data moves through a flow-controlled stream (see the streaming
// package): consumers signal demand, producers never emit beyond it, and
// buffering between the two stays bounded. Progress instrumentation observes
// the stream transparently without altering its chunks or its demand.
//
// Key features:
//   - Simple, zero-configuration usage with AWS credential chain
//   - Progressive enhancement through functional options
//   - Asynchronous transfer handles with Wait, Done, and Progress
//   - Thread-safe, monotonic progress snapshots
//   - Failure-isolated progress listeners
//   - Streaming record splitting for line-oriented downloads
//
// Example usage:
//
//	mgr, err := transfer.New()
//	if err != nil {
//	    return err
//	}
//
//	// Upload a file
//	up := mgr.UploadFile(ctx, "my-bucket", "path/file.txt", "/local/file.txt")
//	result, err := up.Wait(ctx)
//	if err != nil {
//	    return err
//	}
package transfer
