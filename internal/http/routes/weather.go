package routes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/homedash/homedash/cache"
	"github.com/homedash/homedash/openmeteo"
)

type weatherPayload struct {
	CapturedAt time.Time       `json:"captured_at"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Current    json.RawMessage `json:"current"`
	Daily      json.RawMessage `json:"daily"`
	Hourly     json.RawMessage `json:"hourly,omitempty"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr := strings.TrimSpace(q.Get("lat"))
	lonStr := strings.TrimSpace(q.Get("lon"))
	if latStr == "" || lonStr == "" {
		s.clientError(w, "lat and lon are required")
		return
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		s.clientError(w, "lat and lon must be valid decimal coordinates")
		return
	}
	tz := strings.TrimSpace(q.Get("tz"))

	now := s.now()
	key := cache.KeyFor("weather", latStr, lonStr, tz)
	snap, _ := s.Store.Get(r.Context(), key)
	if cache.IsFresh(snap, now, weatherTTL) {
		s.serveSnapshot(w, r, "weather", snap)
		return
	}

	forecast, err := s.Weather.Forecast(r.Context(), openmeteo.Coord{Lat: lat, Lon: lon}, tz)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	payload := &weatherPayload{
		CapturedAt: now,
		Latitude:   lat,
		Longitude:  lon,
		Current:    forecast.Current,
		Daily:      forecast.Daily,
		Hourly:     forecast.Hourly,
	}
	s.writeBehind(key, now, payload)
	s.respond(w, r, "weather", payload)
}
