package clipboard

// ContentType classifies which formats a snapshot carries
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeHTML  ContentType = "html"
	ContentTypeRTF   ContentType = "rtf"
	ContentTypeImage ContentType = "image"
	ContentTypeMixed ContentType = "mixed"
)

// Snapshot is one immutable clipboard value at a point in time.
// Content is always present (possibly empty); the other format fields are
// optional and empty when absent. Timestamp is seconds since epoch, assigned
// by whichever side produced the snapshot.
type Snapshot struct {
	Content     string      `json:"content"`
	HTML        string      `json:"html,omitempty"`
	RTF         string      `json:"rtf,omitempty"`
	Image       string      `json:"image,omitempty"` // base64-encoded image frame, see image.go
	ContentType ContentType `json:"content_type"`
	Timestamp   int64       `json:"timestamp"`
}

// Message kinds exchanged over the websocket session and push endpoint
const (
	MessageUpdate = "clipboard_update"
	MessageSet    = "clipboard_set"
)

// Message is the envelope for snapshots on the wire
type Message struct {
	Type string    `json:"type"`
	Data *Snapshot `json:"data"`
}

// DeriveContentType computes the content type from which optional fields are
// populated. It is the only way a snapshot's ContentType should be assigned.
func DeriveContentType(html, rtf, image string) ContentType {
	switch {
	case image != "" && (html != "" || rtf != ""):
		return ContentTypeMixed
	case image != "":
		return ContentTypeImage
	case html != "" && rtf != "":
		return ContentTypeMixed
	case html != "":
		return ContentTypeHTML
	case rtf != "":
		return ContentTypeRTF
	default:
		return ContentTypeText
	}
}

// NewSnapshot builds a snapshot with a derived content type
func NewSnapshot(content, html, rtf, image string, timestamp int64) *Snapshot {
	return &Snapshot{
		Content:     content,
		HTML:        html,
		RTF:         rtf,
		Image:       image,
		ContentType: DeriveContentType(html, rtf, image),
		Timestamp:   timestamp,
	}
}

// Empty returns the default snapshot served before anything has been copied
func Empty() *Snapshot {
	return &Snapshot{Content: "", ContentType: ContentTypeText, Timestamp: 0}
}

// Clone returns a copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	return &c
}

// IsText returns true if the snapshot carries only plain text
func (s *Snapshot) IsText() bool {
	return s.ContentType == ContentTypeText
}
