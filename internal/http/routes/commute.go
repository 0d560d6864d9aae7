package routes

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/homedash/homedash/cache"
	"github.com/homedash/homedash/tomtom"
)

type commutePayload struct {
	CapturedAt             time.Time     `json:"captured_at"`
	Origin                 *tomtom.Place `json:"origin"`
	Destination            *tomtom.Place `json:"destination"`
	TravelTimeSec          int           `json:"travel_time_sec"`
	NoTrafficTravelTimeSec int           `json:"no_traffic_travel_time_sec"`
	DelaySec               int           `json:"delay_sec"`
	DistanceMeters         int           `json:"distance_m"`
}

func (s *Server) handleCommute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := strings.TrimSpace(q.Get("origin"))
	destination := strings.TrimSpace(q.Get("destination"))
	if origin == "" || destination == "" {
		s.clientError(w, "origin and destination are required")
		return
	}

	var opts tomtom.GeocodeOptions
	if latStr, lonStr := q.Get("lat"), q.Get("lon"); latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			s.clientError(w, "lat and lon must be decimal coordinates")
			return
		}
		opts.Bias = &tomtom.Coord{Lat: lat, Lon: lon}
	}

	now := s.now()
	key := cache.KeyFor("commute", origin, destination)
	snap, _ := s.Store.Get(r.Context(), key)
	if cache.IsFresh(snap, now, commuteTTL) {
		s.serveSnapshot(w, r, "commute", snap)
		return
	}

	payload, err := s.refreshCommute(r.Context(), origin, destination, opts, now)
	if err != nil {
		s.upstreamError(w, r, err)
		return
	}
	s.writeBehind(key, now, payload)
	s.respond(w, r, "commute", payload)
}

// refreshCommute geocodes both endpoints concurrently and then requests the
// route; either geocode failing aborts the cycle before anything is written.
func (s *Server) refreshCommute(ctx context.Context, origin, destination string, opts tomtom.GeocodeOptions, now time.Time) (*commutePayload, error) {
	var from, to *tomtom.Place
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Planner.Geocode(gctx, origin, opts)
		if err != nil {
			return fmt.Errorf("geocode origin: %w", err)
		}
		from = p
		return nil
	})
	g.Go(func() error {
		p, err := s.Planner.Geocode(gctx, destination, opts)
		if err != nil {
			return fmt.Errorf("geocode destination: %w", err)
		}
		to = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	route, err := s.Planner.Route(ctx,
		tomtom.Coord{Lat: from.Lat, Lon: from.Lon},
		tomtom.Coord{Lat: to.Lat, Lon: to.Lon})
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}

	delay := route.TravelTimeSec - route.NoTrafficTravelTimeSec
	if delay < 0 {
		delay = 0
	}
	return &commutePayload{
		CapturedAt:             now,
		Origin:                 from,
		Destination:            to,
		TravelTimeSec:          route.TravelTimeSec,
		NoTrafficTravelTimeSec: route.NoTrafficTravelTimeSec,
		DelaySec:               delay,
		DistanceMeters:         route.DistanceMeters,
	}, nil
}
