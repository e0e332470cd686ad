package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dev-someuser/shared-clipboard/internal/clipboard"
)

// pushTimeout bounds a single push or probe request
const pushTimeout = 10 * time.Second

// Pusher delivers accepted local changes to the relay
type Pusher interface {
	Push(ctx context.Context, s *clipboard.Snapshot) error
}

// HTTPPusher posts snapshots to the relay's push endpoint
type HTTPPusher struct {
	base   string
	client *http.Client
}

// NewHTTPPusher creates a pusher for the given relay base URL. Websocket
// schemes are accepted and mapped to their HTTP equivalents.
func NewHTTPPusher(base string) *HTTPPusher {
	base = strings.TrimRight(base, "/")
	if rest, ok := strings.CutPrefix(base, "wss://"); ok {
		base = "https://" + rest
	} else if rest, ok := strings.CutPrefix(base, "ws://"); ok {
		base = "http://" + rest
	}
	return &HTTPPusher{
		base:   base,
		client: &http.Client{Timeout: pushTimeout},
	}
}

// Push sends the snapshot to POST /api/clipboard. The relay echoes the
// stored snapshot; the body is checked for status only.
func (p *HTTPPusher) Push(ctx context.Context, s *clipboard.Snapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/api/clipboard", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push: relay returned %s", resp.Status)
	}
	return nil
}

// Probe fetches the current snapshot from GET /api/clipboard. Used as a
// reachability check when a new URL is applied.
func (p *HTTPPusher) Probe(ctx context.Context) (*clipboard.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/api/clipboard", nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("probe: relay returned %s", resp.Status)
	}

	var snap clipboard.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("probe: decode response: %w", err)
	}
	return &snap, nil
}
