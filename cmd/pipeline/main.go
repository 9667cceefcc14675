package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/observability"
	redisad "github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/redis"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/app"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/shared"
	fsstore "github.com/Alice-Macchia/hotel-data-pipeline-project/internal/storage/fs"
	mysqlstore "github.com/Alice-Macchia/hotel-data-pipeline-project/internal/storage/mysql"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/storage/throttle"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := newLakeStore(ctx, cfg)

	ingest := app.NewIngestionService(store, cfg.LandingContainer, cfg.LakeContainer, cfg.Workers)
	cleanse := app.NewCleansingService(store, cfg.LakeContainer)
	kpi := app.NewKPIService(store, cfg.LakeContainer)
	runner := app.NewRunner(ingest, cleanse, kpi)

	log.Info().
		Str("backend", cfg.LakeBackend).
		Str("landing", cfg.LandingContainer).
		Str("lake", cfg.LakeContainer).
		Int("workers", cfg.Workers).
		Msg("pipeline starting")

	if err := runner.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}
	log.Info().Msg("pipeline completed")
}

func newLakeStore(ctx context.Context, cfg shared.Config) domain.LakeStore {
	var store domain.LakeStore
	switch cfg.LakeBackend {
	case "fs":
		store = fsstore.New(cfg.LakeDir)
	case "redis":
		store = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		s := mysqlstore.New(db)
		if err := s.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("schema setup failed")
		}
		store = s
	default:
		log.Fatal().Str("backend", cfg.LakeBackend).Msg("unknown LAKE_BACKEND")
	}
	return throttle.Wrap(store, cfg.LakeRPS)
}
