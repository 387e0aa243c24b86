package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meter-compare/internal/auth"
	"github.com/ANIKETSHETTY47/meter-compare/internal/config"
	"github.com/ANIKETSHETTY47/meter-compare/internal/database"
	"github.com/ANIKETSHETTY47/meter-compare/internal/repository"
	"github.com/ANIKETSHETTY47/meter-compare/internal/service"
)

func main() {
	from := flag.String("from", "2022-10-01", "first day of readings (UTC)")
	to := flag.String("to", "2022-11-01", "day after the last reading (UTC)")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	start, err := time.Parse(time.DateOnly, *from)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -from")
	}
	end, err := time.Parse(time.DateOnly, *to)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -to")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if err := service.SeedDemo(ctx, repository.New(db), start, end); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	if secret := config.JWTSecret(); len(secret) > 0 {
		token, err := auth.Issue(secret, "admin@example.com", auth.RoleAdmin, 24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("token issue failed")
		}
		fmt.Println(token)
	}
	log.Info().Msg("seeding done")
}
