package bufbus

import "errors"

// Sentinel errors for the emitter.
var (
	// ErrBufferExists is returned when creating a buffer whose id is already live.
	ErrBufferExists = errors.New("buffer already exists")

	// ErrBufferNotFound is returned when operating on a buffer id that is not live.
	ErrBufferNotFound = errors.New("buffer not found")

	// ErrInvalidEventName is returned when an event name is empty.
	ErrInvalidEventName = errors.New("invalid event name")

	// ErrInvalidBufferID is returned when a buffer id is neither a string nor an int.
	ErrInvalidBufferID = errors.New("invalid buffer id")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")
)
