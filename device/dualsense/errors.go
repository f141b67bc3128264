package dualsense

import "errors"

var (
	// ErrNotFound is returned when no controller with a matching vendor and
	// product id is enumerated.
	ErrNotFound = errors.New("no DualSense controller found")
	// ErrInvalidReport is returned for a recognized report id whose buffer is
	// shorter than the transport minimum.
	ErrInvalidReport = errors.New("invalid report")
	// ErrConnectionLost is reserved for callers that detect repeated failures.
	ErrConnectionLost = errors.New("connection lost")
	// ErrTimeout means no new data arrived within the poll timeout. It is
	// expected under low activity and not a failure.
	ErrTimeout = errors.New("read timeout")
	// ErrDisconnected is returned by every operation after a transport error
	// has moved the connection to the disconnected state.
	ErrDisconnected = errors.New("controller disconnected")
)

// Error wraps a transport failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "dualsense." + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
