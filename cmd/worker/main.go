// cmd/worker/main.go
//
// The worker pre-warms the quotes board on a schedule during trading hours,
// so the first dashboard load of the day is served from the store instead of
// waiting on upstream.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/homedash/homedash/alphavantage"
	"github.com/homedash/homedash/cache"
	"github.com/homedash/homedash/internal/config"
	"github.com/homedash/homedash/internal/jobs"
	"github.com/homedash/homedash/internal/market"
	"github.com/homedash/homedash/internal/providers"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "worker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	store, err := cache.NewRedisStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	defer store.Close()

	httpClient := &http.Client{Transport: httpcache.NewMemoryCacheTransport(), Timeout: 15 * time.Second}
	av, err := alphavantage.New(cfg.AlphaVantageKey, alphavantage.WithHTTPClient(httpClient))
	if err != nil {
		logger.Fatal().Err(err).Msg("build alphavantage client")
	}

	hours, err := market.NewHoursPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("build market hours policy")
	}
	quotes := providers.AlphaVantage{Client: av}
	svc := market.NewService(store, quotes, market.NewHistoryCache(store, quotes, logger), hours, cfg.Symbols, logger)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TaskPrewarmQuotes, func(ctx context.Context, t *asynq.Task) error {
		runID := uuid.NewString()
		// The schedule already tracks the window, but a task can sit in the
		// queue past the close; re-check before fetching.
		if !hours.ActiveNow(time.Now()) {
			logger.Info().Str("run_id", runID).Msg("market closed, skipping prewarm")
			return nil
		}
		start := time.Now()
		if _, err := svc.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Str("run_id", runID).Dur("took", time.Since(start)).Msg("prewarm failed")
			return err
		}
		logger.Info().Str("run_id", runID).Dur("took", time.Since(start)).Msg("prewarm done")
		return nil
	})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: hours.Location()})
	if _, err := scheduler.Register("*/10 9-16 * * MON-FRI",
		asynq.NewTask(jobs.TaskPrewarmQuotes, nil), asynq.Queue("prewarm")); err != nil {
		logger.Fatal().Err(err).Msg("register prewarm schedule")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	defer scheduler.Shutdown()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			"prewarm": 10,
			"default": 5,
		},
	})

	logger.Info().Strs("symbols", cfg.Symbols).Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker exited")
	}
}
