package clipboard

import (
	"hash/fnv"
	"strings"
)

// Fingerprint is the 64-bit digest used as the sole equality notion for
// snapshots. Collisions are treated as equality; at 64 bits the birthday
// bound is acceptable for a clipboard workload.
type Fingerprint uint64

// ComputeFingerprint derives a deterministic fingerprint from a snapshot.
//
// The text component is canonicalized first: a plain-text value that looks
// like a raw HTML fragment (trimmed value starts with '<' and ends with '>')
// is trimmed before hashing, so that the same markup arriving as plain text
// on one machine and as HTML on another collapses to one fingerprint. The
// html field is only fed when it differs from the canonical text, which keeps
// sources that publish identical HTML and plain text from producing a second
// fingerprint for the same value.
//
// Fields are fed in a fixed order (text, html, rtf, image) for determinism.
func ComputeFingerprint(s *Snapshot) Fingerprint {
	h := fnv.New64a()

	canonical := s.Content
	trimmed := strings.TrimSpace(s.Content)
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		canonical = trimmed
	}
	h.Write([]byte(canonical))

	if s.HTML != "" && strings.TrimSpace(s.HTML) != strings.TrimSpace(canonical) {
		h.Write([]byte(s.HTML))
	}
	if s.RTF != "" {
		h.Write([]byte(s.RTF))
	}
	if s.Image != "" {
		h.Write([]byte(s.Image))
	}

	return Fingerprint(h.Sum64())
}
