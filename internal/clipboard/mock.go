package clipboard

import "sync"

// Mock is a configurable clipboard for tests. Function fields override
// behavior per call; unset fields delegate to an internal Memory instance.
type Mock struct {
	ReadFunc  func() (*Snapshot, error)
	WriteFunc func(*Snapshot) error

	mu         sync.Mutex
	mem        *Memory
	readCalls  int
	writeCalls int
}

// NewMock creates a mock backed by an empty in-memory clipboard
func NewMock() *Mock {
	return &Mock{mem: NewMemory()}
}

func (m *Mock) Read() (*Snapshot, error) {
	m.mu.Lock()
	m.readCalls++
	fn := m.ReadFunc
	m.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return m.mem.Read()
}

func (m *Mock) Write(s *Snapshot) error {
	m.mu.Lock()
	m.writeCalls++
	fn := m.WriteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(s)
	}
	return m.mem.Write(s)
}

// Memory exposes the backing store for direct manipulation in tests
func (m *Mock) Memory() *Memory {
	return m.mem
}

// ReadCalls returns how many times Read was invoked
func (m *Mock) ReadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCalls
}

// WriteCalls returns how many times Write was invoked
func (m *Mock) WriteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeCalls
}
