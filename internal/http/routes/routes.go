// Package routes wires the dashboard endpoints: thin handlers that derive a
// cache key, consult the snapshot store through a freshness policy, and only
// reach upstream when the stored snapshot cannot be served.
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/homedash/homedash/cache"
	"github.com/homedash/homedash/internal/market"
	"github.com/homedash/homedash/openmeteo"
	"github.com/homedash/homedash/tomtom"
)

// Endpoint TTLs. Commute conditions move by the minute, forecasts by the
// quarter hour.
const (
	commuteTTL = 5 * time.Minute
	weatherTTL = 15 * time.Minute
)

// RoutePlanner is the slice of the TomTom client the commute endpoint needs.
type RoutePlanner interface {
	Route(ctx context.Context, origin, dest tomtom.Coord) (*tomtom.Route, error)
	Geocode(ctx context.Context, query string, opts tomtom.GeocodeOptions) (*tomtom.Place, error)
}

// ForecastFetcher is the slice of the Open-Meteo client the weather endpoint
// needs.
type ForecastFetcher interface {
	Forecast(ctx context.Context, loc openmeteo.Coord, tz string) (*openmeteo.Forecast, error)
}

type Server struct {
	Router  *chi.Mux
	Store   cache.Store
	Planner RoutePlanner
	Weather ForecastFetcher
	Market  *market.Service
	Log     zerolog.Logger

	now func() time.Time // swapped in tests
}

type ServerOptions struct {
	Store   cache.Store
	Planner RoutePlanner
	Weather ForecastFetcher
	Market  *market.Service
	Log     zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:  r,
		Store:   opts.Store,
		Planner: opts.Planner,
		Weather: opts.Weather,
		Market:  opts.Market,
		Log:     opts.Log,
		now:     time.Now,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			s.Log.Error().Err(err).Msg("write health check response failed")
		}
	})

	r.Get("/api/commute", s.handleCommute)
	r.Get("/api/weather", s.handleWeather)
	r.Get("/api/quotes", s.handleQuotes)

	return s
}
