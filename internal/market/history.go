package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/homedash/homedash/cache"
)

// ClosePoint is one daily close. Stored and served oldest-first, ready for
// charting.
type ClosePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// SeriesFetcher returns up to count daily closes for a symbol, newest first.
type SeriesFetcher interface {
	DailySeries(ctx context.Context, symbol string, count int) ([]ClosePoint, error)
}

const (
	// HistoryTTL is deliberately decoupled from the board's freshness:
	// intraday quotes move all day, yesterday's close does not.
	HistoryTTL = 6 * time.Hour

	historyPoints   = 30
	historyRawCount = 100
)

// HistoryCache caches each symbol's daily close series in the shared store
// under its own key, so its refresh cadence stays independent of the quotes
// board.
type HistoryCache struct {
	store cache.Store
	fetch SeriesFetcher
	log   zerolog.Logger
}

func NewHistoryCache(store cache.Store, fetch SeriesFetcher, log zerolog.Logger) *HistoryCache {
	return &HistoryCache{store: store, fetch: fetch, log: log}
}

func historyKey(symbol string) string {
	return cache.KeyFor("history", symbol)
}

// GetOrRefresh returns the symbol's chart series, hitting upstream only when
// the cached entry is missing or older than HistoryTTL. The raw series
// arrives newest-first and much longer than needed; it is cut down to the
// last historyPoints trading days and reversed to oldest-first.
//
// Unlike board snapshots the refreshed entry is written in-line: the next
// request must see it, or every request inside the TTL window would re-fetch.
// The write still never fails the call, it is only logged.
func (h *HistoryCache) GetOrRefresh(ctx context.Context, symbol string, now time.Time) ([]ClosePoint, error) {
	key := historyKey(symbol)
	if snap, ok := h.store.Get(ctx, key); ok && cache.IsFresh(snap, now, HistoryTTL) {
		var series []ClosePoint
		if err := json.Unmarshal(snap.Payload, &series); err == nil {
			return series, nil
		}
		h.log.Warn().Str("symbol", symbol).Msg("cached history undecodable, refetching")
	}

	raw, err := h.fetch.DailySeries(ctx, symbol, historyRawCount)
	if err != nil {
		return nil, fmt.Errorf("daily series %s: %w", symbol, err)
	}
	if len(raw) > historyPoints {
		raw = raw[:historyPoints]
	}
	series := make([]ClosePoint, len(raw))
	for i, p := range raw {
		series[len(raw)-1-i] = p
	}

	payload, err := json.Marshal(series)
	if err != nil {
		return nil, fmt.Errorf("encode history %s: %w", symbol, err)
	}
	snap := &cache.Snapshot{CapturedAt: now, Payload: payload}
	if err := h.store.Put(ctx, key, snap); err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("history write failed")
	}
	return series, nil
}
