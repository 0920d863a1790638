package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hbnb_web/internal/adapters/hbnbapi"
	"hbnb_web/internal/adapters/observability"
	redisad "hbnb_web/internal/adapters/redis"
	"hbnb_web/internal/app"
	"hbnb_web/internal/shared"
	mysqlrepo "hbnb_web/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("api", cfg.APIBase).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := hbnbapi.New(cfg.APIBase, cfg.APIRPS, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HBnB API client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	warm := app.NewWarmService(client, repo, cache, cfg.CacheTTL)
	ids, err := warm.WarmList(ctx, "")
	if err != nil {
		log.Fatal().Err(err).Msg("warm list failed")
	}

	workers := cfg.WarmWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("warming interrupted")
			break
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := warm.WarmPlace(ctx, placeID, ""); err != nil {
				failed.Add(1)
				log.Warn().Str("id", placeID).Err(err).Msg("warm failed")
				return
			}
			log.Debug().Str("id", placeID).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().
		Int("places", len(ids)).
		Int64("failed", failed.Load()).
		Msg("warming completed")
}
