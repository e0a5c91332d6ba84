package transfertypes

// Direction identifies whether a transfer moves data to or from S3.
type Direction string

// Transfer directions.
const (
	// DirectionUpload indicates data flowing from the caller to S3
	DirectionUpload Direction = "upload"

	// DirectionDownload indicates data flowing from S3 to the caller
	DirectionDownload Direction = "download"
)

// TransferContext carries the transfer identity and the progress snapshot
// current at the time a listener callback is invoked. Contexts are immutable
// values; listeners may retain them freely.
type TransferContext struct {
	// Bucket is the S3 bucket involved in the transfer
	Bucket string

	// Key is the S3 object key involved in the transfer
	Key string

	// Direction indicates whether the transfer is an upload or a download
	Direction Direction

	// Snapshot is the progress snapshot current when the callback fired
	Snapshot Snapshot
}

// WithSnapshot returns a copy of the context carrying the given snapshot.
func (c TransferContext) WithSnapshot(snap Snapshot) TransferContext {
	c.Snapshot = snap
	return c
}

// FailedContext extends TransferContext with the failure cause.
type FailedContext struct {
	TransferContext

	// Err is the error that terminated the transfer
	Err error
}

// Listener receives event-driven updates on the progress of a transfer.
// Callers may attach any number of listeners to an upload or download via
// the WithListeners / WithDownloadListeners options; the listener set is
// fixed once the transfer starts.
//
// Rules governing listener implementations:
//
//   - Callbacks are invoked from the transfer's I/O goroutine and must not
//     block, sleep, or otherwise delay the calling goroutine.
//   - BytesTransferred may be called very often (once per chunk). Keep side
//     effects cheap or rate-limit them.
//   - Listeners may be invoked from different goroutines across transfers;
//     stateful listeners must be safe for concurrent use.
//   - Listeners are not control flow. A panic inside a callback is recovered,
//     logged, and suppressed; it never affects the transfer or the other
//     listeners.
type Listener interface {
	// TransferInitiated is called once when the transfer begins.
	TransferInitiated(ctx TransferContext)

	// BytesTransferred is called each time additional bytes move through the
	// transfer, with the snapshot that resulted from counting them.
	BytesTransferred(ctx TransferContext)

	// TransferComplete is called once when the transfer succeeds.
	TransferComplete(ctx TransferContext)

	// TransferFailed is called once when the transfer fails.
	TransferFailed(ctx FailedContext)
}
