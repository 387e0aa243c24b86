package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meter-compare/internal/config"
	"github.com/ANIKETSHETTY47/meter-compare/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/meter-compare/internal/http"
	"github.com/ANIKETSHETTY47/meter-compare/internal/metrics"
	"github.com/ANIKETSHETTY47/meter-compare/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if config.AutoMigrate() {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	m := metrics.New()
	opts := []service.Option{
		service.WithMetrics(m),
		service.WithParallelWindows(config.CompareParallel()),
	}
	if config.UseConversionCache() {
		rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr()})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Str("addr", config.RedisAddr()).Msg("redis unreachable; conversions will be read from the database")
		}
		opts = append(opts, service.WithConversionCache(rdb, config.ConversionCacheTTL()))
	}
	if len(config.JWTSecret()) == 0 {
		log.Warn().Msg("JWT_SECRET is empty; administration routes will reject every request")
	}

	svcs := service.New(db, opts...)
	app := fiber.New()

	httpHandlers.Register(app, svcs, httpHandlers.Options{
		JWTSecret: config.JWTSecret(),
		Metrics:   m.Handler(),
	})

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
