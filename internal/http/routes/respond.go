package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/homedash/homedash/cache"
)

// scriptNamespace is the global the embedded-script variant assigns onto.
const scriptNamespace = "HOMEDASH"

// respond writes payload as JSON, or as an embedded script assigning onto
// window.HOMEDASH.<field> when the client asked for format=js.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, field string, payload any) {
	if r.URL.Query().Get("format") == "js" {
		s.respondScript(w, field, payload)
		return
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.Log.Error().Err(err).Msg("write response failed")
	}
}

func (s *Server) respondScript(w http.ResponseWriter, field string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		s.Log.Error().Err(err).Msg("encode script payload failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	fmt.Fprintf(w, "window.%[1]s = window.%[1]s || {};\nwindow.%[1]s.%[2]s = %[3]s;\n", scriptNamespace, field, b)
}

// serveSnapshot returns a stored payload as-is.
func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request, field string, snap *cache.Snapshot) {
	s.respond(w, r, field, snap.Payload)
}

func (s *Server) clientError(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error().Err(err).Str("path", r.URL.Path).Msg("upstream fetch failed")
	s.respondJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream fetch failed"})
}

// writeBehind encodes payload and dispatches the snapshot write off the
// response path.
func (s *Server) writeBehind(key string, now time.Time, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		s.Log.Error().Err(err).Str("key", key).Msg("encode snapshot failed")
		return
	}
	cache.WriteBehind(s.Store, key, &cache.Snapshot{CapturedAt: now, Payload: b}, s.Log)
}
