package sync

// CommandKind identifies a command delivered into the lifecycle manager
type CommandKind int

const (
	// CommandSetURL changes the relay endpoint URL
	CommandSetURL CommandKind = iota
	// CommandQuit shuts the engine down
	CommandQuit
)

// Command is an instruction from a UI collaborator (tray, settings window)
type Command struct {
	Kind CommandKind
	URL  string
}

// EventKind identifies an event emitted for UI consumption
type EventKind int

const (
	// EventConnected fires when a session reaches the active state
	EventConnected EventKind = iota
	// EventDisconnected fires when an active session ends, however it ends
	EventDisconnected
	// EventURLChanged fires when a new endpoint URL has been accepted
	EventURLChanged
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventURLChanged:
		return "url_changed"
	default:
		return "unknown"
	}
}

// Event notifies UI collaborators of engine state changes
type Event struct {
	Kind EventKind
	URL  string
}
