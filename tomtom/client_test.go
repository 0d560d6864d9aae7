package tomtom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := New("test-key", WithBaseURL(ts.URL), WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, ts
}

func TestRoute(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/routing/1/calculateRoute/") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"routes":[{"summary":{"travelTimeInSeconds":1820,"noTrafficTravelTimeInSeconds":1500,"lengthInMeters":24300}}]}`))
	}))

	route, err := c.Route(context.Background(), Coord{Lat: 52.52, Lon: 13.40}, Coord{Lat: 52.50, Lon: 13.45})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if route.TravelTimeSec != 1820 || route.NoTrafficTravelTimeSec != 1500 || route.DistanceMeters != 24300 {
		t.Errorf("unexpected route: %+v", route)
	}
}

func TestRouteMissingTravelTimes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[{"summary":{"lengthInMeters":24300}}]}`))
	}))

	if _, err := c.Route(context.Background(), Coord{}, Coord{}); err == nil {
		t.Fatal("expected error for summary without travel times")
	}
}

func TestRouteUpstreamStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no healthy upstream", http.StatusBadGateway)
	}))

	if _, err := c.Route(context.Background(), Coord{}, Coord{}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestGeocode(t *testing.T) {
	var gotBias bool
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBias = r.URL.Query().Get("lat") != "" && r.URL.Query().Get("lon") != ""
		w.Write([]byte(`{"results":[{"address":{"freeformAddress":"Alexanderplatz 1, 10178 Berlin"},"position":{"lat":52.5219,"lon":13.4132}}]}`))
	}))

	place, err := c.Geocode(context.Background(), "alexanderplatz", GeocodeOptions{
		Bias: &Coord{Lat: 52.52, Lon: 13.40},
	})
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if place.Label != "Alexanderplatz 1, 10178 Berlin" {
		t.Errorf("unexpected label %q", place.Label)
	}
	if place.Lat != 52.5219 || place.Lon != 13.4132 {
		t.Errorf("unexpected position %+v", place)
	}
	if !gotBias {
		t.Error("bias coordinates were not sent")
	}
}

func TestGeocodeNoResults(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))

	if _, err := c.Geocode(context.Background(), "nowhere at all", GeocodeOptions{}); err == nil {
		t.Fatal("expected error when no candidate is returned")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
