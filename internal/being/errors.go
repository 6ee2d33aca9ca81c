package being

import "errors"

var (
	// ErrDuplicateActivity is returned when registering a name twice.
	ErrDuplicateActivity = errors.New("activity already registered")
	// ErrUnknownActivity is returned for operations on an unregistered name.
	ErrUnknownActivity = errors.New("unknown activity")
	// ErrNilMemory is returned when a shared context is built without a
	// memory log.
	ErrNilMemory = errors.New("shared context requires a memory log")
)
