package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/homedash/homedash/cache"
	"github.com/homedash/homedash/tomtom"
)

// mockTomTom serves the search and routing shapes the client consumes and
// counts how often each is hit.
type mockTomTom struct {
	server      *httptest.Server
	geocodes    atomic.Int64
	routes      atomic.Int64
	failRouting atomic.Bool
}

func newMockTomTom(t *testing.T) *mockTomTom {
	t.Helper()
	m := &mockTomTom{}
	mux := http.NewServeMux()
	mux.HandleFunc("/search/2/search/", func(w http.ResponseWriter, r *http.Request) {
		m.geocodes.Add(1)
		w.Write([]byte(`{"results":[{"address":{"freeformAddress":"Somewhere 1, Berlin"},"position":{"lat":52.52,"lon":13.40}}]}`))
	})
	mux.HandleFunc("/routing/1/calculateRoute/", func(w http.ResponseWriter, r *http.Request) {
		m.routes.Add(1)
		if m.failRouting.Load() {
			http.Error(w, "routing unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"routes":[{"summary":{"travelTimeInSeconds":1820,"noTrafficTravelTimeInSeconds":1500,"lengthInMeters":24300}}]}`))
	})
	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func newCommuteServer(t *testing.T, m *mockTomTom) (*Server, *cache.MemoryStore) {
	t.Helper()
	planner, err := tomtom.New("test-key", tomtom.WithBaseURL(m.server.URL), tomtom.WithHTTPClient(m.server.Client()))
	require.NoError(t, err)
	store := cache.NewMemoryStore()
	s := New(ServerOptions{Store: store, Planner: planner, Log: zerolog.Nop()})
	return s, store
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func TestCommuteValidation(t *testing.T) {
	s, _ := newCommuteServer(t, newMockTomTom(t))

	tests := []struct {
		name   string
		target string
	}{
		{"missing both", "/api/commute"},
		{"missing destination", "/api/commute?origin=home"},
		{"blank origin", "/api/commute?origin=%20&destination=work"},
		{"bad bias", "/api/commute?origin=home&destination=work&lat=abc&lon=13.4"},
	}
	for _, tt := range tests {
		rec := get(s, tt.target)
		require.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
	}
}

func TestCommuteFetchThenServeFromCache(t *testing.T) {
	m := newMockTomTom(t)
	s, store := newCommuteServer(t, m)
	now := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	rec := get(s, "/api/commute?origin=home&destination=work")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload commutePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, 1820, payload.TravelTimeSec)
	require.Equal(t, 320, payload.DelaySec)
	require.Equal(t, 24300, payload.DistanceMeters)
	require.Equal(t, "Somewhere 1, Berlin", payload.Origin.Label)
	require.True(t, payload.CapturedAt.Equal(now))
	require.EqualValues(t, 2, m.geocodes.Load())
	require.EqualValues(t, 1, m.routes.Load())

	// Wait for the detached write, then a request inside the TTL must not
	// touch upstream.
	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
	s.now = func() time.Time { return now.Add(2 * time.Minute) }

	rec = get(s, "/api/commute?origin=home&destination=work")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, m.routes.Load())

	var cached commutePayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	require.True(t, cached.CapturedAt.Equal(now), "cached capture time served as-is")

	// Past the TTL the same key refreshes.
	s.now = func() time.Time { return now.Add(6 * time.Minute) }
	rec = get(s, "/api/commute?origin=home&destination=work")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, m.routes.Load())
}

func TestCommuteKeyNormalization(t *testing.T) {
	m := newMockTomTom(t)
	s, store := newCommuteServer(t, m)
	now := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	rec := get(s, "/api/commute?origin=Home&destination=Work")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)

	// Same endpoints modulo case and padding: same key, no second fetch.
	rec = get(s, "/api/commute?origin=++home&destination=WORK++")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, m.routes.Load())

	// A different pair is a different key.
	rec = get(s, "/api/commute?origin=home&destination=gym")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, m.routes.Load())
}

func TestCommuteUpstreamFailure(t *testing.T) {
	m := newMockTomTom(t)
	m.failRouting.Store(true)
	s, store := newCommuteServer(t, m)

	rec := get(s, "/api/commute?origin=home&destination=work")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	// A failed cycle writes nothing.
	require.Never(t, func() bool { return store.Len() != 0 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestCommuteScriptFormat(t *testing.T) {
	s, _ := newCommuteServer(t, newMockTomTom(t))

	rec := get(s, "/api/commute?origin=home&destination=work&format=js")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "window.HOMEDASH = window.HOMEDASH || {};"), body)
	require.Contains(t, body, "window.HOMEDASH.commute = {")
	require.Contains(t, body, `"travel_time_sec":1820`)
}

func TestCommuteServedSnapshotKeepsShape(t *testing.T) {
	// Round-trip: what was assembled and written is exactly what a FRESH
	// read returns.
	m := newMockTomTom(t)
	s, store := newCommuteServer(t, m)
	now := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	first := get(s, "/api/commute?origin=home&destination=work")
	require.Equal(t, http.StatusOK, first.Code)
	require.Eventually(t, func() bool {
		_, ok := store.Get(context.Background(), cache.KeyFor("commute", "home", "work"))
		return ok
	}, time.Second, 5*time.Millisecond)

	second := get(s, "/api/commute?origin=home&destination=work")
	require.Equal(t, http.StatusOK, second.Code)
	require.JSONEq(t, first.Body.String(), second.Body.String())
}
