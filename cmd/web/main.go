package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/adapters/hbnbapi"
	server "hbnb_web/internal/adapters/http_server"
	"hbnb_web/internal/adapters/observability"
	redisad "hbnb_web/internal/adapters/redis"
	"hbnb_web/internal/adapters/session"
	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/mockup"
	"hbnb_web/internal/shared"
	mysqlrepo "hbnb_web/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db: snapshots and favorites are optional, the site still works without them
	var (
		places domain.PlaceRepository
		favs   domain.FavoriteRepository
	)
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn().Err(err).Msg("database unavailable; running without snapshots and favorites")
	} else {
		log.Info().Msg("database connection ok")
		repo := mysqlrepo.New(db)
		places, favs = repo, repo
	}
	cancel()

	// cache: a Redis outage only turns every read into a miss
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; caching disabled until it returns")
	}
	cancel()

	api, err := hbnbapi.New(cfg.APIBase, cfg.APIRPS, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HBnB API client")
	}

	h := &server.Handlers{
		Places:    app.NewPlaceService(api, cache, places, mockup.MustLoad(), cfg.SampleData, cfg.CacheTTL).WithAPILimits(cfg.ReadBudget, cfg.OutageHold),
		Accounts:  app.NewAccountService(api),
		Reviews:   app.NewReviewService(api, cache),
		Favorites: app.NewFavoriteService(favs),
	}

	// http
	srv := server.New(session.NewReader(cfg.JWTSecret), cfg.CookieSecure)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("api", cfg.APIBase).
		Str("sample_data", cfg.SampleData).
		Msg("web listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}

	_ = cache.Close()
	_ = db.Close()
	log.Info().Msg("web stopped")
}
