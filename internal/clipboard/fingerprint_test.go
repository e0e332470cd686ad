package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFingerprint_Deterministic(t *testing.T) {
	a := NewSnapshot("hello world", "", "", "", 100)
	b := NewSnapshot("hello world", "", "", "", 999)

	// Timestamp is metadata, not content
	assert.Equal(t, ComputeFingerprint(a), ComputeFingerprint(b))
}

func TestComputeFingerprint_DiffersByContent(t *testing.T) {
	a := NewSnapshot("hello", "", "", "", 0)
	b := NewSnapshot("goodbye", "", "", "", 0)

	assert.NotEqual(t, ComputeFingerprint(a), ComputeFingerprint(b))
}

func TestComputeFingerprint_HTMLFragmentAliasing(t *testing.T) {
	// A raw HTML fragment pasted as plain text is canonicalized by trimming,
	// so surrounding whitespace does not produce a different fingerprint.
	a := NewSnapshot("<b>hi</b>", "", "", "", 0)
	b := NewSnapshot("  <b>hi</b>\n", "", "", "", 0)

	assert.Equal(t, ComputeFingerprint(a), ComputeFingerprint(b))
}

func TestComputeFingerprint_IdenticalHTMLNotDoubleFed(t *testing.T) {
	// When html duplicates the plain text, it must not contribute a second
	// time: the value with and without the redundant html field is the same
	// value.
	plain := NewSnapshot("<p>same</p>", "", "", "", 0)
	withHTML := NewSnapshot("<p>same</p>", "<p>same</p>", "", "", 0)

	assert.Equal(t, ComputeFingerprint(plain), ComputeFingerprint(withHTML))
}

func TestComputeFingerprint_DistinctHTMLContributes(t *testing.T) {
	plain := NewSnapshot("same text", "", "", "", 0)
	withHTML := NewSnapshot("same text", "<p>same text</p>", "", "", 0)

	assert.NotEqual(t, ComputeFingerprint(plain), ComputeFingerprint(withHTML))
}

func TestComputeFingerprint_RTFAndImageContribute(t *testing.T) {
	base := NewSnapshot("text", "", "", "", 0)
	withRTF := NewSnapshot("text", "", "{\\rtf1 text}", "", 0)
	withImage := NewSnapshot("text", "", "", "aW1hZ2U=", 0)

	assert.NotEqual(t, ComputeFingerprint(base), ComputeFingerprint(withRTF))
	assert.NotEqual(t, ComputeFingerprint(base), ComputeFingerprint(withImage))
	assert.NotEqual(t, ComputeFingerprint(withRTF), ComputeFingerprint(withImage))
}

func TestComputeFingerprint_EmptySnapshot(t *testing.T) {
	// A cleared clipboard is a valid snapshot and fingerprints like any other
	empty := Empty()
	assert.Equal(t, ComputeFingerprint(empty), ComputeFingerprint(Empty()))
	assert.NotEqual(t, ComputeFingerprint(empty), ComputeFingerprint(NewSnapshot("x", "", "", "", 0)))
}
