package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/http_server"
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
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	store := newLakeStore(ctx, cfg)

	ingest := app.NewIngestionService(store, cfg.LandingContainer, cfg.LakeContainer, cfg.Workers)
	cleanse := app.NewCleansingService(store, cfg.LakeContainer)
	kpi := app.NewKPIService(store, cfg.LakeContainer)
	runner := app.NewRunner(ingest, cleanse, kpi)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Runner: runner})

	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.LakeBackend).Msg("pipeline API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
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
