package clipboard

import (
	"sync"
	"time"
)

// Memory is an in-process clipboard. It backs tests and headless
// deployments where no OS clipboard is reachable.
type Memory struct {
	mu      sync.Mutex
	content string
	html    string
	rtf     string
	image   string
	now     func() time.Time
}

// NewMemory creates an empty in-memory clipboard
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// SetClock overrides the clock used to stamp reads. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Read returns the stored value stamped with the current local clock
func (m *Memory) Read() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewSnapshot(m.content, m.html, m.rtf, m.image, m.now().Unix()), nil
}

// Write replaces the stored value
func (m *Memory) Write(s *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = s.Content
	m.html = s.HTML
	m.rtf = s.RTF
	m.image = s.Image
	return nil
}

// SetText replaces the stored value with plain text, as if the user copied
func (m *Memory) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = text
	m.html = ""
	m.rtf = ""
	m.image = ""
}

// Text returns the stored plain text
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}
