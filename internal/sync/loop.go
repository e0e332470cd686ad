package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// Reference timings for the poll/push cycle. All overridable via LoopConfig;
// none of them is load-bearing beyond "fast enough to feel instant, slow
// enough not to hammer the clipboard".
const (
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultPushMinInterval = 200 * time.Millisecond
	DefaultReadRetries     = 3
	DefaultReadRetryDelay  = 10 * time.Millisecond
)

// LoopConfig carries the sync loop tunables. Zero values fall back to the
// defaults above.
type LoopConfig struct {
	PollInterval    time.Duration
	PushMinInterval time.Duration
	ReadRetries     int
	ReadRetryDelay  time.Duration
}

// Loop runs one client's synchronization: a poll activity that reads the
// local clipboard and pushes accepted changes, and a receive activity that
// applies relay updates locally. Both share one classifier and one clipboard
// handle behind a single lock; the lock is never held across a network call.
//
// The classifier and clipboard survive across sessions, so reconnecting does
// not reset echo suppression.
type Loop struct {
	clip   clipboard.Clipboard
	cls    *clipboard.Classifier
	logger *slog.Logger

	pollInterval   time.Duration
	pushMin        time.Duration
	readRetries    int
	readRetryDelay time.Duration

	mu     sync.Mutex // guards clip, cls and paused
	paused bool

	lastPush time.Time // poll activity only
}

// NewLoop creates a sync loop around a clipboard capability and classifier
func NewLoop(clip clipboard.Clipboard, cls *clipboard.Classifier, logger *slog.Logger, cfg LoopConfig) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PushMinInterval <= 0 {
		cfg.PushMinInterval = DefaultPushMinInterval
	}
	if cfg.ReadRetries <= 0 {
		cfg.ReadRetries = DefaultReadRetries
	}
	if cfg.ReadRetryDelay <= 0 {
		cfg.ReadRetryDelay = DefaultReadRetryDelay
	}
	return &Loop{
		clip:           clip,
		cls:            cls,
		logger:         logger,
		pollInterval:   cfg.PollInterval,
		pushMin:        cfg.PushMinInterval,
		readRetries:    cfg.ReadRetries,
		readRetryDelay: cfg.ReadRetryDelay,
	}
}

// SetPaused pauses or resumes synchronization. A paused loop keeps its
// session open but neither pushes local changes nor applies remote ones.
func (l *Loop) SetPaused(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = paused
}

// Paused returns the current pause state
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Run drives one active session until the context is cancelled or the
// session fails. The returned error is the session's terminal error; context
// cancellation returns ctx.Err().
func (l *Loop) Run(ctx context.Context, session Session, pusher Pusher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblock Receive when the context is torn down
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-closed:
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.poll(ctx, pusher)
	}()

	err := l.receive(ctx, session)
	cancel()
	wg.Wait()
	return err
}

// receive applies inbound clipboard_update messages to the local clipboard
func (l *Loop) receive(ctx context.Context, session Session) error {
	for {
		msg, err := session.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if msg.Type != clipboard.MessageUpdate || msg.Data == nil {
			continue
		}
		l.apply(msg.Data)
	}
}

// apply writes a remote snapshot locally, then re-reads the clipboard and
// anchors the classifier on what actually landed there. The write may be
// transformed by the OS (newline normalization and the like); anchoring on
// the original snapshot instead would make the next poll tick see a
// spurious local change.
func (l *Loop) apply(snap *clipboard.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return
	}
	if l.cls.IsEcho(snap) {
		l.logger.Debug("dropping echo of own change", "timestamp", snap.Timestamp)
		return
	}

	// ClassifyRemote anchors the server timestamp even when the snapshot is
	// a duplicate of what the clipboard already holds; only the write and
	// read-back are skipped.
	if !l.cls.ClassifyRemote(snap, snap.Timestamp) {
		l.logger.Debug("skipping duplicate remote snapshot", "timestamp", snap.Timestamp)
		return
	}

	if err := l.clip.Write(snap); err != nil {
		l.logger.Error("failed to apply remote snapshot", "err", err)
		return
	}

	readBack, err := l.clip.Read()
	if err != nil {
		// Anchor on the original snapshot; better than no anchor at all
		l.logger.Error("failed to read back applied snapshot", "err", err)
		readBack = snap
	}
	l.cls.NoteApplied(readBack, snap.Timestamp)
	l.logger.Debug("applied remote snapshot", "content_type", snap.ContentType, "timestamp", snap.Timestamp)
}

// poll reads the clipboard on a fixed interval and pushes accepted changes
func (l *Loop) poll(ctx context.Context, pusher Pusher) {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.pollTick(ctx, pusher)
		}
	}
}

func (l *Loop) pollTick(ctx context.Context, pusher Pusher) {
	snap, err := l.readWithRetry(ctx)
	if err != nil {
		// Clipboard access failures are expected; skip the tick
		l.logger.Debug("clipboard read failed", "err", err)
		return
	}

	l.mu.Lock()
	if l.paused {
		l.mu.Unlock()
		return
	}
	accepted := l.cls.ClassifyLocal(snap)
	if accepted {
		l.cls.MarkSent(snap)
	}
	l.mu.Unlock()

	if !accepted {
		return
	}

	if !l.lastPush.IsZero() && time.Since(l.lastPush) < l.pushMin {
		// Only the latest value matters; drop rather than queue
		l.logger.Debug("dropping push inside minimum interval")
		return
	}

	if err := pusher.Push(ctx, snap); err != nil {
		l.logger.Error("push failed", "err", err)
		return
	}
	l.lastPush = time.Now()
	l.logger.Debug("pushed local change", "content_type", snap.ContentType, "timestamp", snap.Timestamp)
}

// readWithRetry reads the clipboard, retrying transient failures. The lock
// covers each read individually so the receive activity is never starved.
func (l *Loop) readWithRetry(ctx context.Context) (*clipboard.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt < l.readRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.readRetryDelay):
			}
		}

		l.mu.Lock()
		snap, err := l.clip.Read()
		l.mu.Unlock()

		if err == nil {
			return snap, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
