package clipboard

import "time"

// DefaultGrace is the window after a remote update during which local reads
// are presumed to be artifacts of applying that update, not new changes.
// Applying a snapshot round-trips through the OS clipboard (focus events,
// re-serialization), and that round-trip shows up as a "change" on the next
// poll. The value is a heuristic, kept configurable.
const DefaultGrace = 5 * time.Second

// Classifier decides whether an observed snapshot is a genuine new change,
// an echo of something just applied, or a replay of something just sent.
//
// A classifier is owned by exactly one sync loop and is not safe for
// concurrent use on its own; the owning loop serializes access.
type Classifier struct {
	grace int64 // seconds

	lastAccepted Fingerprint
	hasAccepted  bool
	lastServerTS int64
	hasServerTS  bool
	lastSent     Fingerprint
	hasSent      bool
}

// NewClassifier creates a classifier with the given grace window.
// A non-positive grace falls back to DefaultGrace.
func NewClassifier(grace time.Duration) *Classifier {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Classifier{grace: int64(grace / time.Second)}
}

// ClassifyLocal reports whether a locally read snapshot is a genuine new
// change. A duplicate of the last accepted change, or a read taken within
// the grace window of the last known server update, is rejected.
func (c *Classifier) ClassifyLocal(s *Snapshot) bool {
	fp := ComputeFingerprint(s)

	if c.hasAccepted && c.lastAccepted == fp {
		return false
	}
	if c.hasServerTS && s.Timestamp <= c.lastServerTS+c.grace {
		return false
	}

	c.lastAccepted = fp
	c.hasAccepted = true
	return true
}

// ClassifyRemote reports whether a snapshot received from the relay is new.
// The server timestamp is recorded unconditionally, even when the change is
// rejected, because it anchors echo suppression for subsequent local reads.
// Remote acceptance deliberately does not update the accepted fingerprint:
// that happens in NoteApplied, after the snapshot has actually been written
// to the clipboard.
func (c *Classifier) ClassifyRemote(s *Snapshot, serverTimestamp int64) bool {
	c.lastServerTS = serverTimestamp
	c.hasServerTS = true

	fp := ComputeFingerprint(s)
	if c.hasAccepted && c.lastAccepted == fp {
		return false
	}
	return true
}

// NoteApplied records a remote snapshot as applied. The snapshot passed in
// must be the clipboard contents re-read after the write, not the original
// message: the OS may transform the value (newline normalization and the
// like), and anchoring on the transformed bytes is what keeps the next poll
// tick from seeing a spurious local change.
func (c *Classifier) NoteApplied(readBack *Snapshot, serverTimestamp int64) {
	c.lastAccepted = ComputeFingerprint(readBack)
	c.hasAccepted = true
	c.lastServerTS = serverTimestamp
	c.hasServerTS = true
}

// MarkSent records the fingerprint of a snapshot about to be pushed to the
// relay, so the relay's own broadcast of it can be recognized as an echo.
func (c *Classifier) MarkSent(s *Snapshot) {
	c.lastSent = ComputeFingerprint(s)
	c.hasSent = true
}

// IsEcho reports whether a snapshot from the relay is simply this client's
// own most recently sent change bouncing back. The relay broadcasts to every
// session including the originator, so this check is the client's job.
func (c *Classifier) IsEcho(s *Snapshot) bool {
	return c.hasSent && c.lastSent == ComputeFingerprint(s)
}
