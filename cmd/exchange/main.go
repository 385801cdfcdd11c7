package main

import (
	"log"

	"github.com/rs/zerolog"

	"github.com/exim-exchange/core/internal/api"
	"github.com/exim-exchange/core/internal/config"
	"github.com/exim-exchange/core/internal/ledger"
	"github.com/exim-exchange/core/internal/logging"
	"github.com/exim-exchange/core/internal/metrics"
)

func main() {
	cfg := config.Load()

	logLevel := zerolog.InfoLevel
	if cfg.Verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := logging.New(nil, logLevel)

	m := metrics.New()
	exchange := ledger.New(logger, m)
	exchange.Verbose = cfg.Verbose

	server := api.New(cfg.ListenAddr, exchange, m)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("exchange starting")
	if err := server.Run(); err != nil {
		log.Fatalf("could not start server: %s\n", err)
	}
}
