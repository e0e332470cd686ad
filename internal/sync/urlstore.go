package sync

import "sync"

// urlStore holds the relay endpoint URL as a single-writer, multi-reader
// value with change notification. Readers take the current value together
// with a channel that is closed when the value next changes.
type urlStore struct {
	mu      sync.Mutex
	url     string
	changed chan struct{}
}

func newURLStore(url string) *urlStore {
	return &urlStore{url: url, changed: make(chan struct{})}
}

// Get returns the current URL and a channel closed on the next change
func (s *urlStore) Get() (string, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, s.changed
}

// Set replaces the URL. Setting the current value again is a no-op: no
// notification fires and false is returned.
func (s *urlStore) Set(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url == s.url {
		return false
	}
	s.url = url
	close(s.changed)
	s.changed = make(chan struct{})
	return true
}
