package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Reconnect policy defaults
const (
	DefaultBackoffInitial = time.Second
	DefaultBackoffMax     = 60 * time.Second

	// DefaultActiveReset is the minimum active-session duration that counts
	// as a recovery and resets the backoff. A session that dies immediately
	// after connecting is still a failing endpoint.
	DefaultActiveReset = time.Second
)

// DialFunc opens a session against a relay base URL
type DialFunc func(ctx context.Context, base string) (Session, error)

// PusherFunc builds the push client for a relay base URL
type PusherFunc func(base string) Pusher

// ManagerConfig carries the lifecycle manager tunables and test hooks
type ManagerConfig struct {
	URL            string
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	ActiveReset    time.Duration

	// Dial and NewPusher default to the websocket transport and HTTP push
	// client; tests substitute fakes.
	Dial      DialFunc
	NewPusher PusherFunc
}

// Manager owns the relay endpoint URL and runs the sync loop against it,
// reconnecting with exponential backoff on session failure. Changing the URL
// tears the in-flight session down proactively and reconnects immediately;
// that path never grows the backoff.
type Manager struct {
	loop   *Loop
	logger *slog.Logger

	urls        *urlStore
	backoff     *Backoff
	activeReset time.Duration
	dial        DialFunc
	newPusher   PusherFunc

	events   chan Event
	quit     chan struct{}
	quitOnce sync.Once
}

// NewManager creates a lifecycle manager around a sync loop
func NewManager(loop *Loop, logger *slog.Logger, cfg ManagerConfig) *Manager {
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = DefaultBackoffInitial
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = DefaultBackoffMax
	}
	if cfg.ActiveReset <= 0 {
		cfg.ActiveReset = DefaultActiveReset
	}
	if cfg.Dial == nil {
		cfg.Dial = Dial
	}
	if cfg.NewPusher == nil {
		cfg.NewPusher = func(base string) Pusher { return NewHTTPPusher(base) }
	}
	return &Manager{
		loop:        loop,
		logger:      logger,
		urls:        newURLStore(cfg.URL),
		backoff:     NewBackoff(cfg.BackoffInitial, cfg.BackoffMax),
		activeReset: cfg.ActiveReset,
		dial:        cfg.Dial,
		newPusher:   cfg.NewPusher,
		events:      make(chan Event, 16),
		quit:        make(chan struct{}),
	}
}

// Events returns the channel of engine events for UI consumption.
// Events are dropped, not queued, when the consumer falls behind.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// URL returns the current relay endpoint URL
func (m *Manager) URL() string {
	current, _ := m.urls.Get()
	return current
}

// SetURL validates and applies a new relay endpoint URL. Setting the current
// value again is a no-op. A malformed URL is rejected without touching the
// connection; the caller surfaces the error to the UI.
func (m *Manager) SetURL(raw string) error {
	if err := validateURL(raw); err != nil {
		return err
	}
	if m.urls.Set(raw) {
		m.emit(Event{Kind: EventURLChanged, URL: raw})
	}
	return nil
}

// Handle dispatches a command from a UI collaborator
func (m *Manager) Handle(cmd Command) error {
	switch cmd.Kind {
	case CommandSetURL:
		return m.SetURL(cmd.URL)
	case CommandQuit:
		m.Stop()
		return nil
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

// Stop asks a running manager to shut down. Safe to call from any number of
// goroutines, any number of times.
func (m *Manager) Stop() {
	m.quitOnce.Do(func() { close(m.quit) })
}

// Run connects and reconnects until stopped. Session failures back off
// exponentially; a session that stays active long enough resets the backoff.
func (m *Manager) Run(ctx context.Context) error {
	for {
		if stop, err := m.stopped(ctx); stop {
			return err
		}

		base, changed := m.urls.Get()
		if base == "" {
			// Nothing to connect to until a URL arrives
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-m.quit:
				return nil
			case <-changed:
			}
			continue
		}

		session, err := m.dial(ctx, base)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := m.backoff.Next()
			m.logger.Warn("connect failed", "url", base, "retry_in", delay, "err", err)
			m.wait(ctx, delay, changed)
			continue
		}

		m.logger.Info("connected", "url", base)
		m.emit(Event{Kind: EventConnected, URL: base})

		loopCtx, cancel := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		go func() {
			// Proactive teardown on URL change or shutdown
			select {
			case <-changed:
				cancel()
			case <-m.quit:
				cancel()
			case <-watchDone:
			}
		}()

		start := time.Now()
		err = m.loop.Run(loopCtx, session, m.newPusher(base))
		cancel()
		close(watchDone)

		m.logger.Info("session ended", "url", base, "duration", time.Since(start), "err", err)
		m.emit(Event{Kind: EventDisconnected, URL: base})

		if time.Since(start) >= m.activeReset {
			m.backoff.Reset()
		}

		select {
		case <-changed:
			// URL change is a distinct termination path: reconnect
			// immediately, no backoff growth
			continue
		default:
		}
		if stop, err := m.stopped(ctx); stop {
			return err
		}

		delay := m.backoff.Next()
		m.logger.Info("reconnecting", "retry_in", delay)
		m.wait(ctx, delay, changed)
	}
}

// wait sleeps for the backoff delay. Returns false if interrupted by a URL
// change or shutdown.
func (m *Manager) wait(ctx context.Context, delay time.Duration, changed <-chan struct{}) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-m.quit:
		return false
	case <-changed:
		return false
	case <-timer.C:
		return true
	}
}

func (m *Manager) stopped(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return true, ctx.Err()
	case <-m.quit:
		return true, nil
	default:
		return false, nil
	}
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.logger.Debug("dropping event, consumer not keeping up", "kind", ev.Kind.String())
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid relay URL %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("invalid relay URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid relay URL %q: missing host", raw)
	}
	return nil
}
