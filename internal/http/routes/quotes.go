package routes

import "net/http"

// handleQuotes delegates entirely to the market service: freshness is
// decided by the trading-hours policy, not a TTL.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	board, err := s.Market.Board(r.Context())
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.respond(w, r, "quotes", board)
}
