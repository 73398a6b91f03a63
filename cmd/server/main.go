package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/config"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/infra"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/repository"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/router"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_URL empty: per-shop lock falls back to row locks and shortage alerts are disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to the infrastructure dependencies.
	if rdb != nil {
		mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
		alerts := worker.NewShortageAlertWorker(
			repository.NewReportRepository(db),
			repository.NewShopRepository(db),
			infra.NewMailer(cfg),
			mailCB,
			cfg.ExportStoragePath,
			cfg.Location(),
		)
		pool := worker.NewPool(rdb, map[string]worker.Handler{worker.JobShortageAlert: alerts})
		pool.Start(ctx, cfg.WorkerPoolSize)
		worker.StartReplayCron(ctx, worker.ReplayCronConfig{RDB: rdb, CB: mailCB, Queue: worker.QueueAlerts})
	}

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("timezone", cfg.Timezone).Int("reports_per_day", cfg.ReportsPerDay).
			Msgf("back-office listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
