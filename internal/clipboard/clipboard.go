package clipboard

import "errors"

// Common errors
var (
	// ErrUnavailable means the underlying clipboard could not be accessed.
	// Transient by nature: callers retry or skip the tick, never abort.
	ErrUnavailable = errors.New("clipboard unavailable")

	// ErrUnsupported means the backend cannot carry the snapshot's formats
	ErrUnsupported = errors.New("format not supported by clipboard backend")
)

// Clipboard is the capability interface the sync loop consumes. Platform
// backends are swappable behind it; reads stamp the snapshot with the local
// clock, writes replace the clipboard contents wholesale.
type Clipboard interface {
	// Read returns the current clipboard contents as a snapshot
	Read() (*Snapshot, error)

	// Write replaces the clipboard contents with the snapshot
	Write(*Snapshot) error
}
