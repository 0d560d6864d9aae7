// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/homedash/homedash/alphavantage"
	"github.com/homedash/homedash/cache"
	"github.com/homedash/homedash/internal/config"
	"github.com/homedash/homedash/internal/http/routes"
	"github.com/homedash/homedash/internal/market"
	"github.com/homedash/homedash/internal/providers"
	"github.com/homedash/homedash/openmeteo"
	"github.com/homedash/homedash/tomtom"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	// Shared snapshot store
	store, err := cache.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	defer store.Close()

	// One outbound client for every provider, with a caching transport so
	// repeat calls inside upstream cache headers never leave the process.
	transport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{Transport: transport, Timeout: 15 * time.Second}

	planner, err := tomtom.New(cfg.TomTomKey, tomtom.WithHTTPClient(httpClient))
	if err != nil {
		logger.Fatal().Err(err).Msg("build tomtom client")
	}
	weather := openmeteo.New(openmeteo.WithHTTPClient(httpClient))
	av, err := alphavantage.New(cfg.AlphaVantageKey, alphavantage.WithHTTPClient(httpClient))
	if err != nil {
		logger.Fatal().Err(err).Msg("build alphavantage client")
	}

	hours, err := market.NewHoursPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("build market hours policy")
	}
	quotes := providers.AlphaVantage{Client: av}
	history := market.NewHistoryCache(store, quotes, logger)
	svc := market.NewService(store, quotes, history, hours, cfg.Symbols, logger)

	s := routes.New(routes.ServerOptions{
		Store:   store,
		Planner: planner,
		Weather: weather,
		Market:  svc,
		Log:     logger,
	})
	h := hlog.NewHandler(logger)(s.Router)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h}
	logger.Info().Str("port", cfg.Port).Strs("symbols", cfg.Symbols).Msg("starting api")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
