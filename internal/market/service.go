package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/homedash/homedash/cache"
)

// QuoteFetcher returns the current quote for one symbol.
type QuoteFetcher interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// Quote is the per-symbol live state on the board.
type Quote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
}

// SymbolQuote is one symbol's slice of the board: the live quote plus its
// close history for charting.
type SymbolQuote struct {
	Quote
	History []ClosePoint `json:"history,omitempty"`
}

// Board is the quotes payload served to the dashboard. UpdatedAt is the
// capture time of the underlying snapshot and is null when nothing was ever
// captured. ObservedAt is set when serving outside the trading window so a
// client can tell "last session's data, observed as of now".
type Board struct {
	UpdatedAt  *time.Time              `json:"updated_at"`
	MarketOpen bool                    `json:"market_open"`
	ObservedAt *time.Time              `json:"observed_at,omitempty"`
	Note       string                  `json:"note,omitempty"`
	Symbols    map[string]*SymbolQuote `json:"symbols"`
}

// noDataNote marks the valid empty response served before anything was ever
// captured.
const noDataNote = "no quote data captured yet"

// Service assembles, caches and serves the quotes board.
type Service struct {
	store   cache.Store
	quotes  QuoteFetcher
	history *HistoryCache
	hours   *HoursPolicy
	symbols []string
	log     zerolog.Logger

	// Now is the clock; tests swap it for a fixed one.
	Now func() time.Time
}

func NewService(store cache.Store, quotes QuoteFetcher, history *HistoryCache, hours *HoursPolicy, symbols []string, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		quotes:  quotes,
		history: history,
		hours:   hours,
		symbols: symbols,
		log:     log,
		Now:     time.Now,
	}
}

// boardKey pins the snapshot to the configured symbol set: changing the set
// starts a fresh board instead of serving one that is missing symbols.
func (s *Service) boardKey() string {
	return cache.KeyFor(append([]string{"quotes"}, s.symbols...)...)
}

// Board returns the current quotes board. While the market trades every call
// refreshes from upstream; after close the last captured board is served at
// any age, annotated with the observation time. An empty store outside the
// window yields a valid all-null board, never an error.
func (s *Service) Board(ctx context.Context) (*Board, error) {
	now := s.Now()
	key := s.boardKey()
	snap, ok := s.store.Get(ctx, key)

	if s.hours.ShouldRefresh(snap, now) {
		return s.Refresh(ctx)
	}
	if !ok {
		return s.emptyBoard(now), nil
	}

	board, err := decodeBoard(snap)
	if err != nil {
		// written by an incompatible build; treat like a missing entry
		s.log.Warn().Err(err).Str("key", key).Msg("stored board undecodable")
		return s.emptyBoard(now), nil
	}

	s.backfillHistory(ctx, key, board, snap.CapturedAt, now)

	observed := now
	board.MarketOpen = false
	board.ObservedAt = &observed
	return board, nil
}

// Refresh fetches quotes and history for every configured symbol in parallel,
// assembles a new board and writes it behind the response path. Any single
// fetch failure aborts the whole cycle before anything is written: the store
// never holds a partially assembled board.
func (s *Service) Refresh(ctx context.Context) (*Board, error) {
	now := s.Now()
	board := &Board{
		MarketOpen: s.hours.ActiveNow(now),
		Symbols:    make(map[string]*SymbolQuote, len(s.symbols)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range s.symbols {
		g.Go(func() error {
			q, err := s.quotes.Quote(gctx, symbol)
			if err != nil {
				return fmt.Errorf("quote %s: %w", symbol, err)
			}
			series, err := s.history.GetOrRefresh(gctx, symbol, now)
			if err != nil {
				return err
			}
			mu.Lock()
			board.Symbols[symbol] = &SymbolQuote{Quote: q, History: series}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	updated := now
	board.UpdatedAt = &updated

	payload, err := json.Marshal(board)
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	cache.WriteBehind(s.store, s.boardKey(), &cache.Snapshot{CapturedAt: now, Payload: payload}, s.log)
	return board, nil
}

// backfillHistory repairs boards captured before per-symbol history existed
// in the payload: a missing series is fetched on its own cadence and the
// patched board is written back under the original capture time, so later
// reads come out complete. Failures only cost the chart, never the response.
func (s *Service) backfillHistory(ctx context.Context, key string, board *Board, capturedAt, now time.Time) {
	patched := false
	for _, symbol := range s.symbols {
		sq := board.Symbols[symbol]
		if sq == nil || len(sq.History) > 0 {
			continue
		}
		series, err := s.history.GetOrRefresh(ctx, symbol, now)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("history backfill failed")
			continue
		}
		sq.History = series
		patched = true
	}
	if !patched {
		return
	}

	payload, err := json.Marshal(board)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("encode backfilled board failed")
		return
	}
	cache.WriteBehind(s.store, key, &cache.Snapshot{CapturedAt: capturedAt, Payload: payload}, s.log)
}

// emptyBoard is the answer outside the trading window when nothing was ever
// captured: every value field null plus an explanatory note. "Never fetched
// yet" is an expected steady state, not a fault.
func (s *Service) emptyBoard(now time.Time) *Board {
	observed := now
	symbols := make(map[string]*SymbolQuote, len(s.symbols))
	for _, sym := range s.symbols {
		symbols[sym] = nil
	}
	return &Board{
		MarketOpen: false,
		ObservedAt: &observed,
		Note:       noDataNote,
		Symbols:    symbols,
	}
}

func decodeBoard(snap *cache.Snapshot) (*Board, error) {
	var b Board
	if err := json.Unmarshal(snap.Payload, &b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return &b, nil
}
