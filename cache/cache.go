// Package cache provides the shared snapshot store the dashboard endpoints
// sit behind: stable key derivation, TTL-based freshness decisions, and
// best-effort write-behind persistence to a shared key-value store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot is the cached unit of provider output. Payload is whatever the
// owning endpoint wrote; the store never looks inside it.
type Snapshot struct {
	CapturedAt time.Time       `json:"captured_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Store is the contract over the shared key-value store.
//
// Get is awaited on the read path; implementations log read failures and
// report them as absent, never as errors, so a flaky store degrades to extra
// upstream fetches instead of failed requests. Put returns its error so the
// caller can decide whether the write matters.
type Store interface {
	Get(ctx context.Context, key string) (*Snapshot, bool)
	Put(ctx context.Context, key string, snap *Snapshot) error
}

// writeTimeout bounds a detached write so an unresponsive store cannot pile
// up goroutines forever.
const writeTimeout = 5 * time.Second

// WriteBehind persists a snapshot off the request path. The write is
// dispatched on its own goroutine and never awaited; failures are logged and
// stay invisible to the client.
func WriteBehind(store Store, key string, snap *Snapshot, log zerolog.Logger) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := store.Put(ctx, key, snap); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("snapshot write failed")
		}
	}()
}
