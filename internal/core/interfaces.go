// Package core holds the transport seam between the fan-out layer and the
// websocket adapter, plus the event vocabulary that crosses it.
package core

// Frame is a marshaled outbound payload.
type Frame []byte

// ConnID identifies one live connection. A user may hold several.
type ConnID string

// SignalConnection abstracts the outbound side of a connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues a frame without blocking; it fails under
	// backpressure or after close.
	TrySend(Frame) error
	Close()
}
