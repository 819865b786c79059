package main

import (
	"os"

	"github.com/rotalog/internal/config"
	"github.com/rotalog/internal/db"
	"github.com/rotalog/internal/handler"
	"github.com/rotalog/internal/router"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load()

	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	api := handler.NewAPI(gdb, cfg, log)
	r := router.Setup(api, cfg)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to run server")
	}
}
