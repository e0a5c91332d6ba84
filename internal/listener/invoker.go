// Package listener fans transfer lifecycle events out to caller-supplied
// listeners. Each callback is isolated: a panicking listener is logged and
// suppressed, and never affects the transfer or the remaining listeners.
package listener

import (
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/aws/transfer/transfertypes"
)

// Invoker broadcasts lifecycle events to an ordered, fixed set of listeners.
// The listener set is copied at construction and read-only afterwards, so the
// invoker is safe for concurrent use without synchronization.
type Invoker struct {
	listeners []transfertypes.Listener
	logger    *slog.Logger
}

// NewInvoker creates an invoker over the given listeners, invoked in order.
// A nil logger disables logging of suppressed listener panics.
func NewInvoker(listeners []transfertypes.Listener, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Invoker{
		listeners: append([]transfertypes.Listener(nil), listeners...),
		logger:    logger,
	}
}

// TransferInitiated notifies every listener that the transfer began.
func (i *Invoker) TransferInitiated(ctx transfertypes.TransferContext) {
	for _, l := range i.listeners {
		i.invoke("TransferInitiated", func() { l.TransferInitiated(ctx) })
	}
}

// BytesTransferred notifies every listener of additional transferred bytes.
func (i *Invoker) BytesTransferred(ctx transfertypes.TransferContext) {
	for _, l := range i.listeners {
		i.invoke("BytesTransferred", func() { l.BytesTransferred(ctx) })
	}
}

// TransferComplete notifies every listener that the transfer succeeded.
func (i *Invoker) TransferComplete(ctx transfertypes.TransferContext) {
	for _, l := range i.listeners {
		i.invoke("TransferComplete", func() { l.TransferComplete(ctx) })
	}
}

// TransferFailed notifies every listener that the transfer failed.
func (i *Invoker) TransferFailed(ctx transfertypes.FailedContext) {
	for _, l := range i.listeners {
		i.invoke("TransferFailed", func() { l.TransferFailed(ctx) })
	}
}

// invoke runs one listener callback, recovering and logging any panic so a
// misbehaving listener cannot abort the transfer or starve later listeners.
func (i *Invoker) invoke(callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("transfer listener panicked",
				"callback", callback,
				"panic", r,
			)
		}
	}()
	fn()
}
