package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// scriptedDialer fails the first N dial attempts, then hands out fake
// sessions, recording every attempt
type scriptedDialer struct {
	mu       sync.Mutex
	failures int
	attempts []dialAttempt
	sessions []*fakeSession
}

type dialAttempt struct {
	at   time.Time
	base string
}

var errDialRefused = errors.New("connection refused")

func (d *scriptedDialer) dial(ctx context.Context, base string) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts = append(d.attempts, dialAttempt{at: time.Now(), base: base})
	if len(d.attempts) <= d.failures {
		return nil, errDialRefused
	}
	s := newFakeSession()
	d.sessions = append(d.sessions, s)
	return s, nil
}

func (d *scriptedDialer) attemptCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.attempts)
}

func (d *scriptedDialer) attemptsCopy() []dialAttempt {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dialAttempt, len(d.attempts))
	copy(out, d.attempts)
	return out
}

// quietLoop builds a loop whose poll activity never fires during a test
func quietLoop() *Loop {
	return NewLoop(clipboard.NewMemory(), clipboard.NewClassifier(0), testLogger(),
		LoopConfig{PollInterval: time.Hour})
}

func newTestManager(dialer *scriptedDialer, cfg ManagerConfig) *Manager {
	cfg.Dial = dialer.dial
	cfg.NewPusher = func(base string) Pusher { return &recordingPusher{} }
	return NewManager(quietLoop(), testLogger(), cfg)
}

func waitForEvent(t *testing.T, events <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func TestManagerBackoffGrowsBetweenFailures(t *testing.T) {
	dialer := &scriptedDialer{failures: 3}
	mgr := newTestManager(dialer, ManagerConfig{
		URL:            "http://relay.test",
		BackoffInitial: 20 * time.Millisecond,
		BackoffMax:     time.Second,
		ActiveReset:    time.Hour,
	})

	done := make(chan error, 1)
	go func() { done <- mgr.Run(context.Background()) }()

	assert.Eventually(t, func() bool { return dialer.attemptCount() >= 4 },
		2*time.Second, 5*time.Millisecond)

	attempts := dialer.attemptsCopy()
	assert.GreaterOrEqual(t, attempts[1].at.Sub(attempts[0].at), 20*time.Millisecond)
	assert.GreaterOrEqual(t, attempts[2].at.Sub(attempts[1].at), 40*time.Millisecond)
	assert.GreaterOrEqual(t, attempts[3].at.Sub(attempts[2].at), 80*time.Millisecond)

	waitForEvent(t, mgr.Events(), EventConnected)

	mgr.Stop()
	require.NoError(t, <-done)
}

func TestManagerURLChangeReconnectsImmediately(t *testing.T) {
	dialer := &scriptedDialer{}
	// A huge initial backoff proves the URL-change path skips the wait
	mgr := newTestManager(dialer, ManagerConfig{
		URL:            "http://first.test",
		BackoffInitial: time.Hour,
		BackoffMax:     time.Hour,
	})

	done := make(chan error, 1)
	go func() { done <- mgr.Run(context.Background()) }()

	waitForEvent(t, mgr.Events(), EventConnected)
	require.Equal(t, 1, dialer.attemptCount())

	require.NoError(t, mgr.SetURL("http://second.test"))
	waitForEvent(t, mgr.Events(), EventURLChanged)

	assert.Eventually(t, func() bool { return dialer.attemptCount() == 2 },
		2*time.Second, 5*time.Millisecond)
	attempts := dialer.attemptsCopy()
	assert.Equal(t, "http://first.test", attempts[0].base)
	assert.Equal(t, "http://second.test", attempts[1].base)
	assert.Equal(t, "http://second.test", mgr.URL())

	mgr.Stop()
	require.NoError(t, <-done)
}

func TestManagerWaitsForURL(t *testing.T) {
	dialer := &scriptedDialer{}
	mgr := newTestManager(dialer, ManagerConfig{
		BackoffInitial: 10 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- mgr.Run(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, dialer.attemptCount(), "no endpoint, no dial")

	require.NoError(t, mgr.SetURL("ws://relay.test"))
	assert.Eventually(t, func() bool { return dialer.attemptCount() == 1 },
		2*time.Second, 5*time.Millisecond)

	mgr.Stop()
	require.NoError(t, <-done)
}

func TestManagerSetURLValidation(t *testing.T) {
	mgr := newTestManager(&scriptedDialer{}, ManagerConfig{URL: "http://relay.test"})

	assert.Error(t, mgr.SetURL("://broken"))
	assert.Error(t, mgr.SetURL("ftp://relay.test"))
	assert.Error(t, mgr.SetURL("http://"))
	assert.Equal(t, "http://relay.test", mgr.URL(), "rejected URLs leave state untouched")
}

func TestManagerSetURLDeduplicates(t *testing.T) {
	mgr := newTestManager(&scriptedDialer{}, ManagerConfig{URL: "http://relay.test"})

	require.NoError(t, mgr.SetURL("http://relay.test"))
	select {
	case ev := <-mgr.Events():
		t.Fatalf("unexpected event %s for unchanged URL", ev.Kind)
	default:
	}

	require.NoError(t, mgr.SetURL("http://other.test"))
	ev := waitForEvent(t, mgr.Events(), EventURLChanged)
	assert.Equal(t, "http://other.test", ev.URL)
}

func TestManagerQuitCommand(t *testing.T) {
	dialer := &scriptedDialer{}
	mgr := newTestManager(dialer, ManagerConfig{URL: "http://relay.test"})

	done := make(chan error, 1)
	go func() { done <- mgr.Run(context.Background()) }()

	waitForEvent(t, mgr.Events(), EventConnected)

	require.NoError(t, mgr.Handle(Command{Kind: CommandQuit}))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
}

func TestManagerStopFromManyGoroutines(t *testing.T) {
	dialer := &scriptedDialer{}
	mgr := newTestManager(dialer, ManagerConfig{URL: "http://relay.test"})

	done := make(chan error, 1)
	go func() { done <- mgr.Run(context.Background()) }()
	waitForEvent(t, mgr.Events(), EventConnected)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mgr.Stop()
		}()
	}
	wg.Wait()
	mgr.Stop()

	require.NoError(t, <-done)
}

func TestManagerHandleUnknownCommand(t *testing.T) {
	mgr := newTestManager(&scriptedDialer{}, ManagerConfig{URL: "http://relay.test"})
	assert.Error(t, mgr.Handle(Command{Kind: CommandKind(99)}))
}

func TestManagerRunReturnsOnContextCancel(t *testing.T) {
	mgr := newTestManager(&scriptedDialer{}, ManagerConfig{URL: "http://relay.test"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	waitForEvent(t, mgr.Events(), EventConnected)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
