package bend

import (
	"fmt"

	"cogentcore.org/core/base/errors"
)

var (
	// ErrNotLinked is returned when unlinking a segment that has no link group
	// or connector.
	ErrNotLinked = errors.New("segment is not linked")
	// ErrAlreadyLinked is returned when linking a segment that already belongs
	// to a group or connector.
	ErrAlreadyLinked = errors.New("segment is already linked")
	// ErrNoAnchors is returned by anchor linking when fewer than two anchors
	// coincide with the requested point.
	ErrNoAnchors = errors.New("fewer than two anchors at point")
	// ErrNoConnector is returned when no connector lies at the requested
	// point, or a connector ID is unknown.
	ErrNoConnector = errors.New("no connector at point")
	// ErrPinned is returned when moving an anchor that is held by a
	// connector.
	ErrPinned = errors.New("anchor is pinned by a connector")
	// ErrUnknownSegment is returned for segment IDs the registry doesn't know.
	ErrUnknownSegment = errors.New("unknown segment")
	// ErrRegistered is returned when registering a spline that already
	// belongs to a registry.
	ErrRegistered = errors.New("spline already registered")
	// ErrSegmentIndex is returned for out of range segment indices.
	ErrSegmentIndex = errors.New("segment index out of range")
	// ErrBatchRunning is returned when a batch is modified or started while a
	// job is in flight.
	ErrBatchRunning = errors.New("batch job in flight")
	// ErrInvalidSettings is returned by [Settings.Validate].
	ErrInvalidSettings = errors.New("invalid settings")
)

// warn logs a recoverable contract violation and returns it to the caller.
func warn(err error, args ...any) error {
	Logger().Warn(err.Error(), args...)
	return err
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d not in [0, %d)", ErrSegmentIndex, i, n)
}
