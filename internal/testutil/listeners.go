// Package testutil provides listener test doubles.
package testutil

import (
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// RecordingListener captures every callback it receives. It is safe for
// concurrent use and implements transfertypes.Listener.
type RecordingListener struct {
	mu        sync.Mutex
	initiated []transfertypes.TransferContext
	bytes     []transfertypes.TransferContext
	completed []transfertypes.TransferContext
	failed    []transfertypes.FailedContext
}

// TransferInitiated records the initiation event.
func (l *RecordingListener) TransferInitiated(ctx transfertypes.TransferContext) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initiated = append(l.initiated, ctx)
}

// BytesTransferred records a byte-count event.
func (l *RecordingListener) BytesTransferred(ctx transfertypes.TransferContext) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bytes = append(l.bytes, ctx)
}

// TransferComplete records the completion event.
func (l *RecordingListener) TransferComplete(ctx transfertypes.TransferContext) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed = append(l.completed, ctx)
}

// TransferFailed records the failure event.
func (l *RecordingListener) TransferFailed(ctx transfertypes.FailedContext) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, ctx)
}

// Initiated returns the recorded initiation events.
func (l *RecordingListener) Initiated() []transfertypes.TransferContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transfertypes.TransferContext(nil), l.initiated...)
}

// Bytes returns the recorded byte-count events.
func (l *RecordingListener) Bytes() []transfertypes.TransferContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transfertypes.TransferContext(nil), l.bytes...)
}

// Completed returns the recorded completion events.
func (l *RecordingListener) Completed() []transfertypes.TransferContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transfertypes.TransferContext(nil), l.completed...)
}

// Failed returns the recorded failure events.
func (l *RecordingListener) Failed() []transfertypes.FailedContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transfertypes.FailedContext(nil), l.failed...)
}

// PanickingListener panics in every callback. It exercises the isolation
// guarantee of the listener invoker.
type PanickingListener struct{}

// TransferInitiated panics.
func (PanickingListener) TransferInitiated(transfertypes.TransferContext) {
	panic("listener panic: initiated")
}

// BytesTransferred panics.
func (PanickingListener) BytesTransferred(transfertypes.TransferContext) {
	panic("listener panic: bytes")
}

// TransferComplete panics.
func (PanickingListener) TransferComplete(transfertypes.TransferContext) {
	panic("listener panic: complete")
}

// TransferFailed panics.
func (PanickingListener) TransferFailed(transfertypes.FailedContext) {
	panic("listener panic: failed")
}

var (
	_ transfertypes.Listener = (*RecordingListener)(nil)
	_ transfertypes.Listener = PanickingListener{}
)
